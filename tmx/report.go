package tmx

import (
	"fmt"
	"strings"
)

// Warning is a recoverable problem found during a non-strict import.
type Warning struct {
	Layer string
	Col   int
	Row   int
	GID   GID
	Err   error
}

func (w Warning) String() string {
	if w.GID != 0 {
		return fmt.Sprintf("layer %q (%d, %d) gid %v: %v", w.Layer, w.Col, w.Row, w.GID, w.Err)
	}
	return fmt.Sprintf("layer %q: %v", w.Layer, w.Err)
}

type Report struct {
	Warnings []Warning
}

// Clean reports whether the import skipped nothing.
func (r *Report) Clean() bool {
	return len(r.Warnings) == 0
}

func (r *Report) String() string {
	if r.Clean() {
		return "clean"
	}
	lines := make([]string, len(r.Warnings))
	for i, w := range r.Warnings {
		lines[i] = w.String()
	}
	return strings.Join(lines, "\n")
}
