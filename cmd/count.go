package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/text/message"

	"grimm.is/sincelast/internal/client"
	"grimm.is/sincelast/internal/clock"
	"grimm.is/sincelast/internal/elapsed"
	"grimm.is/sincelast/internal/i18n"
	"grimm.is/sincelast/internal/ticker"
)

// printerFor returns a printer for an explicit language override, or
// the environment-locale printer when none is given.
func printerFor(lang string) *message.Printer {
	if lang == "" {
		return Printer
	}
	return i18n.NewPrinter(i18n.ParseLang(lang))
}

func sentence(p *message.Printer, epoch, now int64) string {
	var diff uint64
	if now > epoch {
		diff = uint64(now - epoch)
	}
	return elapsed.Sentence(p, elapsed.Compute(diff))
}

// RunCount prints the time since the last reset. With follow enabled it
// keeps updating in place once per interval until interrupted, tracking
// resets pushed by the server.
func RunCount(serverURL, lang string, follow bool, interval time.Duration) error {
	p := printerFor(lang)
	c := client.NewHTTPClient(serverURL, client.WithLanguage(lang))

	initial, err := c.GetCount(clock.NowUnix())
	if err != nil {
		return fmt.Errorf("failed to fetch counter: %w", err)
	}

	if !follow {
		p.Println(sentence(p, initial, clock.NowUnix()))
		return nil
	}

	var epoch atomic.Int64
	epoch.Store(initial)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		// Best effort: without the push stream the display still ticks.
		_ = c.WatchResets(ctx, func(e int64) {
			epoch.Store(e)
		})
	}()

	p.Printf("\r%s\033[K", sentence(p, epoch.Load(), clock.NowUnix()))
	tk, err := ticker.New(interval, func() {
		p.Printf("\r%s\033[K", sentence(p, epoch.Load(), clock.NowUnix()))
	})
	if err != nil {
		return fmt.Errorf("failed to start ticker: %w", err)
	}
	defer tk.Stop()

	<-ctx.Done()
	p.Println()
	return nil
}
