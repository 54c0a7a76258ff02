package stdout

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/crimson-sun/synccheck/internal/model"
	"github.com/crimson-sun/synccheck/internal/output"
)

// Output prints the verdict line the monitoring scheduler reads.
type Output struct {
	w io.Writer
}

// New creates an Output writing to w, or to os.Stdout when w is nil.
func New(w io.Writer) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{w: w}
}

func (o *Output) Write(_ context.Context, v model.Verdict) error {
	if _, err := fmt.Fprintln(o.w, output.FormatLine(v)); err != nil {
		return fmt.Errorf("stdout output: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	return nil
}
