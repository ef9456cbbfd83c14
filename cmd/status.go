package cmd

import (
	"fmt"

	"grimm.is/sincelast/internal/client"
)

// RunStatus queries the server and prints its status.
func RunStatus(serverURL string) error {
	c := client.NewHTTPClient(serverURL)

	info, err := c.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	Printer.Printf("Status:        %s\n", info.Status)
	Printer.Printf("Version:       %s\n", info.Version)
	Printer.Printf("Uptime:        %s\n", info.Uptime)
	Printer.Printf("Started:       %s\n", info.StartTime)
	Printer.Printf("Epoch:         %d\n", info.Epoch)
	Printer.Printf("Elapsed:       %s\n", info.Elapsed)
	Printer.Printf("State version: %d\n", info.StateVersion)
	return nil
}
