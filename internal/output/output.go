package output

import (
	"context"

	"github.com/crimson-sun/synccheck/internal/model"
)

// Output defines the interface for verdict destinations.
type Output interface {
	Write(ctx context.Context, v model.Verdict) error
	Close() error
}
