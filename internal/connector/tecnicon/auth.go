package tecnicon

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/crimson-sun/synccheck/internal/connector"
	"github.com/crimson-sun/synccheck/internal/connector/httpclient"
	"github.com/crimson-sun/synccheck/internal/diagnostics"
	"github.com/crimson-sun/synccheck/internal/engine/dom"
	"github.com/crimson-sun/synccheck/internal/engine/vocab"
)

const (
	controllerPath = "/Tecnicon/Controller"
	loginAction    = "Tecnicon.EfetuaLogin.obterTelaHtml"
	loginDialog    = "dv0"

	// DefaultSelectCompanyAction is posted when the login lands on the
	// company-selection screen.
	DefaultSelectCompanyAction = "Tecnicon.EfetuaLogin.selecionaEmpresa"

	// anonymousAuthorization is the Authorization value the login form expects
	// before a session exists.
	anonymousAuthorization = "-9876"
)

// tokenPattern captures the session token passed to the page's client-side
// initialisation call, e.g. preencheSessao('abc').
var tokenPattern = regexp.MustCompile(`preencheSessao\s*\(\s*(?:'([^']+)'|"([^"]+)")`)

// companyMarkers identify the company-selection screen, compared on the folded
// visible text so script identifiers never match.
var companyMarkers = []string{
	"SELECIONE A EMPRESA",
	"SELECAO DE EMPRESA",
	"ESCOLHA A EMPRESA",
}

// companyTitles are the column titles of the companies table, used to skip a
// title row written with td cells.
var companyTitles = []string{"CODIGO", "COD.", "EMPRESA", "NOME", "RAZAO"}

var errNoToken = errors.New("session token not found in response")

// Session is an authenticated ERP session. The token is fixed once obtained.
type Session struct {
	Endpoint string
	token    string
	client   *httpclient.Client
}

// Token returns the value sent as Authorization on authenticated requests.
func (s *Session) Token() string {
	return s.token
}

// Authenticator performs the login exchange.
type Authenticator struct {
	client              *httpclient.Client
	selectCompanyAction string
	logger              *zap.Logger
}

// NewAuthenticator creates an Authenticator that posts through client. An empty
// selectCompanyAction uses DefaultSelectCompanyAction.
func NewAuthenticator(client *httpclient.Client, selectCompanyAction string, logger *zap.Logger) *Authenticator {
	if selectCompanyAction == "" {
		selectCompanyAction = DefaultSelectCompanyAction
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{client: client, selectCompanyAction: selectCompanyAction, logger: logger}
}

// Login posts the credentials and returns the session. When the ERP answers
// with the company-selection screen instead of a token, the first company
// listed is selected.
func (a *Authenticator) Login(ctx context.Context, username, password string, diag *diagnostics.Collector) (*Session, error) {
	form := loginForm(username, password)
	body, err := a.client.PostForm(ctx, controllerPath, action(loginAction, loginDialog), form, anonymousHeaders())
	if err != nil {
		return nil, &connector.AuthError{Reason: "login request", Err: err}
	}
	diag.Snapshot("login", body)

	if token, ok := extractToken(body); ok {
		return a.session(token), nil
	}
	if !isCompanySelection(body) {
		return nil, &connector.AuthError{Reason: "login response", Err: errNoToken}
	}

	a.logger.Info("company selection requested")
	token, err := a.selectCompany(ctx, body, form, diag)
	if err != nil {
		return nil, err
	}
	return a.session(token), nil
}

func (a *Authenticator) session(token string) *Session {
	a.logger.Debug("session established", zap.Int("token_len", len(token)))
	return &Session{Endpoint: a.client.BaseURL(), token: token, client: a.client}
}

// selectCompany posts the first listed company code and reads the token from
// the answer, falling back to the selection screen itself.
func (a *Authenticator) selectCompany(ctx context.Context, screen string, login url.Values, diag *diagnostics.Collector) (string, error) {
	code, err := firstCompanyCode(screen)
	if err != nil {
		return "", &connector.AuthError{Reason: "company selection", Err: err}
	}
	a.logger.Info("selecting company", zap.String("company", code))

	form := url.Values{}
	for k, v := range login {
		form[k] = v
	}
	form.Set("empresa", code)

	body, err := a.client.PostForm(ctx, controllerPath, action(a.selectCompanyAction, loginDialog), form, anonymousHeaders())
	if err != nil {
		return "", &connector.AuthError{Reason: "company selection request", Err: err}
	}
	diag.Snapshot("company-selection", body)

	if token, ok := extractToken(body); ok {
		return token, nil
	}
	if token, ok := extractToken(screen); ok {
		a.logger.Debug("token taken from the selection screen")
		return token, nil
	}
	return "", &connector.AuthError{Reason: "company selection", Err: errNoToken}
}

func extractToken(body string) (string, bool) {
	m := tokenPattern.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	if m[1] != "" {
		return m[1], true
	}
	return m[2], m[2] != ""
}

func isCompanySelection(body string) bool {
	doc, err := dom.Parse(body)
	if err != nil {
		return false
	}
	return vocab.ContainsAny(vocab.Fold(doc.Text()), companyMarkers)
}

// firstCompanyCode reads the first cell of the first data row of the companies
// table: the tblBody table if present, otherwise the first table holding data.
// A first row titling the columns is not a company.
func firstCompanyCode(screen string) (string, error) {
	doc, err := dom.Parse(screen)
	if err != nil {
		return "", err
	}
	candidates := doc.Tables
	if t := doc.TableByID("tblBody"); t != nil {
		candidates = []*dom.Table{t}
	}
	for _, t := range candidates {
		for i, row := range t.Rows {
			if !row.HasData() || len(row.Cells) == 0 {
				continue
			}
			if i == 0 && vocab.ContainsAny(vocab.Fold(row.Cells[0].Text), companyTitles) {
				continue
			}
			if code := strings.TrimSpace(row.Cells[0].Text); code != "" {
				return code, nil
			}
		}
	}
	return "", errors.New("company table not found")
}

func loginForm(username, password string) url.Values {
	return url.Values{
		"smenuvChamado":      {"null"},
		"telaChamou":         {"null"},
		"painel":             {"false"},
		"usuario":            {username},
		"senha":              {password},
		"tipologin":          {"L"},
		"modal":              {"false"},
		"tipoTela":           {"O"},
		"telafechar":         {"false"},
		"telamaximizar":      {"false"},
		"telaminimizar":      {"false"},
		"iddialog":           {loginDialog},
		"width":              {"820px"},
		"min-height":         {"107px"},
		"height":             {"325px"},
		"carregouJsDinamico": {"false"},
		"logintimeout":       {"false"},
		"empresaURL":         {"Portal"},
	}
}

func anonymousHeaders() map[string]string {
	return map[string]string{
		"Cookie":        "nerroslog=0",
		"Authorization": anonymousAuthorization,
	}
}

func action(name, dialog string) url.Values {
	return url.Values{"acao": {name}, "idDialog": {dialog}}
}
