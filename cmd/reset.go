package cmd

import (
	"fmt"

	"grimm.is/sincelast/internal/client"
	"grimm.is/sincelast/internal/clock"
)

// RunReset sets the counter to the current time. The timestamp is taken
// once, before the request, so the confirmation shows exactly what was
// persisted.
func RunReset(serverURL, lang string) error {
	p := printerFor(lang)
	c := client.NewHTTPClient(serverURL, client.WithLanguage(lang))

	now := clock.NowUnix()
	epoch, err := c.ResetCount(now)
	if err != nil {
		return fmt.Errorf("%s: %w", p.Sprintf("Reset failed"), err)
	}

	p.Printf("%s\n", p.Sprintf("Counter was reset"))
	p.Printf("Epoch: %d\n", epoch)
	return nil
}
