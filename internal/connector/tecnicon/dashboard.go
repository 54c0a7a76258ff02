package tecnicon

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/crimson-sun/synccheck/internal/connector"
	"github.com/crimson-sun/synccheck/internal/diagnostics"
)

const (
	dashboardAction = "TecniconVista.CarregaVista.carregaVista"
	dashboardDialog = "dv4"
)

// DefaultView returns the form fields that render the "Status Sincronismo"
// view.
func DefaultView() map[string]string {
	return map[string]string{
		"smenuvChamado": "11327",
		"telaChamou":    "Status Sincronismo 2",
		"empresa":       "17",
		"filial":        "1",
		"local":         "1",
		"vista":         "2052",
		"mobile":        "false",
		"svistaaba":     "2902",
		"idTbl":         "2902",
		"param1":        `{"parametros":[]}`,
		"param2":        "svistaaba|2902",
		"tamGridVista":  "681",
		"tituloPainel":  "Status Sincronismo",
	}
}

// Fetcher retrieves the dashboard view with an authenticated session.
type Fetcher struct {
	view   map[string]string
	logger *zap.Logger
}

// NewFetcher creates a Fetcher. Entries in overrides replace or extend
// DefaultView; an override whose name differs only in case replaces the
// default field, since environment variables lose the original casing.
func NewFetcher(overrides map[string]string, logger *zap.Logger) *Fetcher {
	view := DefaultView()
	for k, v := range overrides {
		view[canonicalField(view, k)] = v
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{view: view, logger: logger}
}

func canonicalField(view map[string]string, name string) string {
	if _, ok := view[name]; ok {
		return name
	}
	for k := range view {
		if strings.EqualFold(k, name) {
			return k
		}
	}
	return name
}

// FetchDashboard posts the view request and returns the raw HTML.
func (f *Fetcher) FetchDashboard(ctx context.Context, sess *Session, diag *diagnostics.Collector) (string, error) {
	if sess == nil || sess.Token() == "" {
		return "", &connector.FetchError{Reason: "no session"}
	}
	form := url.Values{}
	for k, v := range f.view {
		form.Set(k, v)
	}
	headers := map[string]string{"Authorization": sess.Token()}

	body, err := sess.client.PostForm(ctx, controllerPath, action(dashboardAction, dashboardDialog), form, headers)
	if err != nil {
		return "", &connector.FetchError{Reason: "view " + f.view["vista"], Err: err}
	}
	diag.Snapshot("status-page", body)

	if strings.TrimSpace(body) == "" {
		return "", &connector.FetchError{Reason: "view " + f.view["vista"], Err: errors.New("empty response")}
	}
	f.logger.Debug("dashboard fetched", zap.Int("bytes", len(body)), zap.String("vista", f.view["vista"]))
	return body, nil
}
