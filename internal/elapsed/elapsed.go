// Package elapsed converts a duration in whole seconds into a
// years/months/days/hours/minutes/seconds breakdown and renders it as a
// localized sentence.
//
// The breakdown deliberately uses fixed unit lengths (365-day year,
// 30-day month) instead of calendar arithmetic. That keeps the
// decomposition an exact base conversion: reassembling the six values
// with the same unit lengths always yields the original second count.
// Display output depends on this, so the constants must not change.
package elapsed

import (
	"fmt"

	"golang.org/x/text/message"
)

// Fixed unit lengths in seconds.
const (
	SecondsPerMinute uint64 = 60
	SecondsPerHour   uint64 = 3600
	SecondsPerDay    uint64 = 86400
	SecondsPerMonth  uint64 = 2592000  // 30 days
	SecondsPerYear   uint64 = 31536000 // 365 days
)

// Breakdown is a duration decomposed into fixed-length units.
// All fields are non-negative; no field is normalized against calendar
// month or year lengths.
type Breakdown struct {
	Years   uint64
	Months  uint64
	Days    uint64
	Hours   uint64
	Minutes uint64
	Seconds uint64
}

// Compute decomposes a duration in seconds. Divisions are integer floor
// divisions and remainders cascade strictly from years down to seconds.
func Compute(seconds uint64) Breakdown {
	var b Breakdown
	b.Years = seconds / SecondsPerYear
	rem := seconds % SecondsPerYear
	b.Months = rem / SecondsPerMonth
	rem %= SecondsPerMonth
	b.Days = rem / SecondsPerDay
	rem %= SecondsPerDay
	b.Hours = rem / SecondsPerHour
	rem %= SecondsPerHour
	b.Minutes = rem / SecondsPerMinute
	b.Seconds = rem % SecondsPerMinute
	return b
}

// TotalSeconds reassembles the original duration from the breakdown.
// For every b = Compute(d), b.TotalSeconds() == d.
func (b Breakdown) TotalSeconds() uint64 {
	return b.Years*SecondsPerYear +
		b.Months*SecondsPerMonth +
		b.Days*SecondsPerDay +
		b.Hours*SecondsPerHour +
		b.Minutes*SecondsPerMinute +
		b.Seconds
}

// String returns a compact, non-localized form like "0y 0mo 0d 0h 1m 30s".
func (b Breakdown) String() string {
	return fmt.Sprintf("%dy %dmo %dd %dh %dm %ds",
		b.Years, b.Months, b.Days, b.Hours, b.Minutes, b.Seconds)
}

// Sentence renders the breakdown as a single human-readable sentence in
// the printer's language. All six units are always present, including
// zero values; the separator is ", " with a localized conjunction before
// the final unit, and the sentence ends with a period.
func Sentence(p *message.Printer, b Breakdown) string {
	head := p.Sprintf("%d years", b.Years) + ", " +
		p.Sprintf("%d months", b.Months) + ", " +
		p.Sprintf("%d days", b.Days) + ", " +
		p.Sprintf("%d hours", b.Hours) + ", " +
		p.Sprintf("%d minutes", b.Minutes)
	return p.Sprintf("%s and %s.", head, p.Sprintf("%d seconds", b.Seconds))
}
