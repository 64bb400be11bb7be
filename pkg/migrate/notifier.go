package migrate

import (
	"io"

	"github.com/fatih/color"
)

// Notifier writes one human-readable line per converted record. The zero
// value is silent.
type Notifier struct {
	w     io.Writer
	style *color.Color
}

// NewNotifier returns a notifier writing to `w`. When `colorize` is set (e.g.,
// `w` is a terminal) the lines are printed in green; the text is the same
// either way.
func NewNotifier(w io.Writer, colorize bool) (n Notifier) {
	n.w = w
	n.style = color.New(color.FgGreen)
	if colorize {
		n.style.EnableColor()
	} else {
		n.style.DisableColor()
	}
	return
}

// Updated notes that the record `name` in `namespace` was converted.
func (n Notifier) Updated(name, namespace string) {
	if n.w == nil {
		return
	}
	n.style.Fprintf(n.w, "Updated %s in %s\n", name, namespace)
}
