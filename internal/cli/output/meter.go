package output

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// DefaultMeterWidth is the number of cells in a lifetime bar.
const DefaultMeterWidth = 30

// Meter renders how much of a session's lifetime remains.
type Meter struct {
	w     io.Writer
	title string
	width int
}

// NewMeter creates a meter writing to w.
func NewMeter(w io.Writer, title string) *Meter {
	return &Meter{
		w:     w,
		title: title,
		width: DefaultMeterWidth,
	}
}

// Render writes one line such as
//
//	Session [██████████░░░░░░░░░░] 50% (12h0m0s of 24h0m0s left)
func (m *Meter) Render(remaining, total time.Duration) error {
	_, err := fmt.Fprintln(m.w, m.line(remaining, total))
	return err
}

func (m *Meter) line(remaining, total time.Duration) string {
	if total <= 0 || remaining <= 0 {
		return fmt.Sprintf("%s [%s] expired", m.title, strings.Repeat("░", m.width))
	}

	fraction := float64(remaining) / float64(total)
	if fraction > 1 {
		fraction = 1
	}

	filled := int(float64(m.width) * fraction)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", m.width-filled)

	return fmt.Sprintf("%s [%s] %3.0f%% (%s of %s left)",
		m.title,
		bar,
		fraction*100,
		remaining.Truncate(time.Second),
		total.Truncate(time.Second),
	)
}
