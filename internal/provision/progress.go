package provision

import (
	"fmt"
	"io"
)

// countdown prints "<label> n n-1 ... 1 0" while items are processed
type countdown struct {
	w     io.Writer
	total int
}

func newCountdown(w io.Writer, label string, total int) *countdown {
	if w == nil {
		w = io.Discard
	}
	if total > 0 {
		fmt.Fprintf(w, "%s ", label)
	}
	return &countdown{w: w, total: total}
}

// Tick marks the start of item i
func (c *countdown) Tick(i int) {
	fmt.Fprintf(c.w, "%d ", c.total-i)
}

// Done ends the line
func (c *countdown) Done() {
	if c.total > 0 {
		fmt.Fprintln(c.w, "0")
	}
}
