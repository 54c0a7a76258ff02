package connector

import (
	"context"
	"time"

	"github.com/crimson-sun/synccheck/internal/diagnostics"
)

// Connector defines the interface every dashboard source must implement.
type Connector interface {
	// Snapshot returns the raw HTML of the sync dashboard. Raw responses are
	// handed to diag, which may be nil.
	Snapshot(ctx context.Context, cfg ConnectorConfig, diag *diagnostics.Collector) (string, error)
}

// ConnectorConfig holds source-specific connection settings.
type ConnectorConfig struct {
	Provider string
	Endpoint string
	Username string
	Password string
	HTMLPath string
	Timeout  time.Duration

	// View holds the dashboard view form fields; keys override the source's defaults.
	View map[string]string

	// SelectCompanyAction is the action posted when the login lands on the
	// company-selection screen.
	SelectCompanyAction string
}
