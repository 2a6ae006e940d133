// Package reporter renders evaluation results for the command line.
package reporter

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/Skufu/refractplan/internal/model"
)

const (
	FormatTerminal = "terminal"
	FormatJSON     = "json"
)

// Reporter writes case and batch results.
type Reporter interface {
	ReportCase(res model.CaseResult) error
	ReportBatch(res model.BatchResult) error
}

// New returns the reporter for format writing to w. Terminal output is
// styled only when w is a TTY.
func New(format string, w io.Writer) (Reporter, error) {
	switch format {
	case FormatJSON:
		return NewJSONReporter(w), nil
	case FormatTerminal, "":
		return NewTerminalReporter(w, NewStyles(Interactive(w))), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want %s or %s)", format, FormatTerminal, FormatJSON)
	}
}

// Interactive reports whether w is a terminal.
func Interactive(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
