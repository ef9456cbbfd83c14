package cmd

import (
	"context"

	"grimm.is/sincelast/internal/client"
	"grimm.is/sincelast/internal/i18n"
	"grimm.is/sincelast/internal/tui"
)

// RunWatch starts the interactive terminal client.
func RunWatch(serverURL, lang string) error {
	tag := i18n.CLILang()
	if lang != "" {
		tag = i18n.ParseLang(lang)
	}

	c := client.NewHTTPClient(serverURL, client.WithLanguage(lang))
	return tui.Run(context.Background(), c, tag)
}
