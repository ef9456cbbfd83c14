package main

import (
	"flag"
	"os"
	"time"

	"grimm.is/sincelast/cmd"
	"grimm.is/sincelast/internal/brand"
	"grimm.is/sincelast/internal/i18n"
)

var printer = i18n.NewCLIPrinter()

const defaultServer = "http://localhost:8080"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		serveFlags := flag.NewFlagSet("serve", flag.ExitOnError)
		configFile := serveFlags.String("config", "", "Configuration file")
		serveFlags.StringVar(configFile, "c", "", "Configuration file (short)")
		listen := serveFlags.String("listen", "", "Override listen address")
		serveFlags.StringVar(listen, "l", "", "Override listen address (short)")
		statePath := serveFlags.String("state", "", "Override state database path")
		serveFlags.Parse(os.Args[2:])

		if err := cmd.RunServe(*configFile, *listen, *statePath); err != nil {
			printer.Fprintf(os.Stderr, "Serve failed: %v\n", err)
			os.Exit(1)
		}

	case "count":
		countFlags := flag.NewFlagSet("count", flag.ExitOnError)
		server := countFlags.String("server", defaultServer, "Server URL")
		countFlags.StringVar(server, "s", defaultServer, "Server URL (short)")
		lang := countFlags.String("lang", "", "Display language (en, de)")
		follow := countFlags.Bool("follow", false, "Keep updating once per interval")
		countFlags.BoolVar(follow, "f", false, "Keep updating (short)")
		interval := countFlags.Duration("interval", time.Second, "Update interval with --follow")
		countFlags.Parse(os.Args[2:])

		if err := cmd.RunCount(*server, *lang, *follow, *interval); err != nil {
			printer.Fprintf(os.Stderr, "Count failed: %v\n", err)
			os.Exit(1)
		}

	case "reset":
		resetFlags := flag.NewFlagSet("reset", flag.ExitOnError)
		server := resetFlags.String("server", defaultServer, "Server URL")
		resetFlags.StringVar(server, "s", defaultServer, "Server URL (short)")
		lang := resetFlags.String("lang", "", "Display language (en, de)")
		resetFlags.Parse(os.Args[2:])

		if err := cmd.RunReset(*server, *lang); err != nil {
			printer.Fprintf(os.Stderr, "Reset failed: %v\n", err)
			os.Exit(1)
		}

	case "watch":
		watchFlags := flag.NewFlagSet("watch", flag.ExitOnError)
		server := watchFlags.String("server", defaultServer, "Server URL")
		watchFlags.StringVar(server, "s", defaultServer, "Server URL (short)")
		lang := watchFlags.String("lang", "", "Display language (en, de)")
		watchFlags.Parse(os.Args[2:])

		if err := cmd.RunWatch(*server, *lang); err != nil {
			printer.Fprintf(os.Stderr, "Watch failed: %v\n", err)
			os.Exit(1)
		}

	case "status":
		statusFlags := flag.NewFlagSet("status", flag.ExitOnError)
		server := statusFlags.String("server", defaultServer, "Server URL")
		statusFlags.StringVar(server, "s", defaultServer, "Server URL (short)")
		statusFlags.Parse(os.Args[2:])

		if err := cmd.RunStatus(*server); err != nil {
			printer.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}

	case "check":
		checkFlags := flag.NewFlagSet("check", flag.ExitOnError)
		checkFlags.Parse(os.Args[2:])

		configFile := ""
		if len(checkFlags.Args()) > 0 {
			configFile = checkFlags.Arg(0)
		}

		if err := cmd.RunCheck(configFile); err != nil {
			printer.Fprintf(os.Stderr, "Check failed: %v\n", err)
			os.Exit(1)
		}

	case "version":
		printer.Printf("%s %s\n", brand.BinaryName, brand.Version)

	case "help", "-h", "--help":
		printUsage()

	default:
		printer.Printf("Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	printer.Printf(`%s - %s

Usage:
  %s <command> [options]

Server:
  serve     Run the counter server
            Options: --config (-c) <file>, --listen (-l) <addr>, --state <path>

Client:
  count     Print the time since the last reset
            Options: --server (-s) <url>, --lang <en|de>, --follow (-f), --interval <dur>
  reset     Reset the counter to now
            Options: --server (-s) <url>, --lang <en|de>
  watch     Interactive terminal view
            Options: --server (-s) <url>, --lang <en|de>
  status    Show server status
            Options: --server (-s) <url>

Utility:
  check     Validate a configuration file
  version   Print the version

Examples:
  %s serve --config %s
  %s count --lang de
  %s count --follow
  %s reset
  %s watch --server http://counter.local:8080
`,
		brand.Name, brand.Description,
		brand.BinaryName,
		brand.BinaryName, brand.ConfigFileName,
		brand.BinaryName, brand.BinaryName, brand.BinaryName, brand.BinaryName)
}
