// Package cmd implements the CLI subcommands.
package cmd

import "grimm.is/sincelast/internal/i18n"

// Printer localizes CLI output based on the environment locale.
var Printer = i18n.NewCLIPrinter()
