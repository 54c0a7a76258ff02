// Package file replays a saved dashboard snapshot instead of contacting the ERP.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/crimson-sun/synccheck/internal/connector"
	"github.com/crimson-sun/synccheck/internal/diagnostics"
)

func init() {
	connector.Register("file", func(logger *zap.Logger) connector.Connector {
		return New(logger)
	})
}

// Connector implements the connector.Connector interface over a local HTML file.
type Connector struct {
	logger *zap.Logger
}

// New creates a Connector. A nil logger disables logging.
func New(logger *zap.Logger) *Connector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Connector{logger: logger}
}

// Snapshot returns the contents of cfg.HTMLPath.
func (c *Connector) Snapshot(ctx context.Context, cfg connector.ConnectorConfig, _ *diagnostics.Collector) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &connector.FetchError{Reason: "snapshot file", Err: err}
	}
	if cfg.HTMLPath == "" {
		return "", &connector.FetchError{Reason: "snapshot file", Err: errors.New("no html path configured")}
	}
	data, err := os.ReadFile(cfg.HTMLPath)
	if err != nil {
		return "", &connector.FetchError{Reason: fmt.Sprintf("snapshot file %s", cfg.HTMLPath), Err: err}
	}
	c.logger.Info("replaying saved dashboard", zap.String("path", cfg.HTMLPath), zap.Int("bytes", len(data)))
	return string(data), nil
}
