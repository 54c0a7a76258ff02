package multi

import (
	"context"
	"errors"

	"github.com/crimson-sun/synccheck/internal/model"
	"github.com/crimson-sun/synccheck/internal/output"
)

// Multi delivers one verdict to several outputs in order, typically the
// stdout line followed by the history file. A failing output does not stop
// delivery to the ones after it.
type Multi struct {
	outputs []output.Output
}

// New creates a Multi over outputs. Nil entries are ignored so optional
// destinations can be passed unconditionally.
func New(outputs ...output.Output) *Multi {
	m := &Multi{}
	for _, o := range outputs {
		if o != nil {
			m.outputs = append(m.outputs, o)
		}
	}
	return m
}

// Write delivers v to every wrapped output and joins their errors.
func (m *Multi) Write(ctx context.Context, v model.Verdict) error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Write(ctx, v); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close closes every wrapped output and joins their errors.
func (m *Multi) Close() error {
	var errs []error
	for _, o := range m.outputs {
		if err := o.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
