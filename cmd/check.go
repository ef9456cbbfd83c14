package cmd

import (
	"fmt"

	"grimm.is/sincelast/internal/brand"
	"grimm.is/sincelast/internal/config"
)

// RunCheck validates the configuration file.
func RunCheck(configFile string) error {
	if configFile == "" {
		return fmt.Errorf("usage: %s check <config-file>", brand.BinaryName)
	}

	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	tick, err := cfg.Tick()
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	Printer.Printf("Configuration valid!\n")
	Printer.Printf("Listen:        %s\n", cfg.Listen)
	Printer.Printf("State path:    %s\n", cfg.StatePath)
	Printer.Printf("Log level:     %s\n", cfg.LogLevel)
	Printer.Printf("Tick interval: %s\n", tick)
	return nil
}
