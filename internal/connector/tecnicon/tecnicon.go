// Package tecnicon reads the sync dashboard from a Tecnicon ERP through its
// form-POST controller.
package tecnicon

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/crimson-sun/synccheck/internal/connector"
	"github.com/crimson-sun/synccheck/internal/connector/httpclient"
	"github.com/crimson-sun/synccheck/internal/diagnostics"
)

// userAgent identifies the probe in the ERP access logs.
const userAgent = "synccheck/1"

func init() {
	connector.Register("tecnicon", func(logger *zap.Logger) connector.Connector {
		return New(logger)
	})
}

// Connector implements the connector.Connector interface: one login followed by
// one view request, with no retries.
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

// Snapshot logs in and returns the dashboard HTML.
func (c *Connector) Snapshot(ctx context.Context, cfg connector.ConnectorConfig, diag *diagnostics.Collector) (string, error) {
	client, err := httpclient.New(cfg.Endpoint,
		httpclient.WithTimeout(cfg.Timeout),
		httpclient.WithHeader("User-Agent", userAgent),
	)
	if err != nil {
		return "", fmt.Errorf("tecnicon: %w", err)
	}

	auth := NewAuthenticator(client, cfg.SelectCompanyAction, c.logger)
	sess, err := auth.Login(ctx, cfg.Username, cfg.Password, diag)
	if err != nil {
		return "", err
	}
	c.logger.Info("logged in", zap.String("endpoint", sess.Endpoint), zap.String("user", cfg.Username))

	return NewFetcher(cfg.View, c.logger).FetchDashboard(ctx, sess, diag)
}
