package config

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version is reported by --version.
const Version = "1.2.0"

// ViewEnvPrefix marks environment variables that override dashboard view fields,
// e.g. SYNCCHECK_VIEW_EMPRESA=3.
const ViewEnvPrefix = "SYNCCHECK_VIEW_"

// Config holds all synccheck configuration.
type Config struct {
	Connector ConnectorConfig
	Engine    EngineConfig
	Output    OutputConfig
	Log       LogConfig
	Debug     DebugConfig
}

// ConnectorConfig holds the dashboard source settings.
type ConnectorConfig struct {
	Provider            string            `env:"SYNCCHECK_SOURCE" validate:"oneof=tecnicon file"`
	Endpoint            string            `env:"ERP_BASE_URL" validate:"required_if=Provider tecnicon"`
	Username            string            `env:"ERP_USERNAME" validate:"required_if=Provider tecnicon"`
	Password            string            `env:"ERP_PASSWORD" validate:"required_if=Provider tecnicon"`
	PasswordFile        string            `env:"ERP_PASSWORD_FILE"`
	HTMLPath            string            `env:"SYNCCHECK_HTML" validate:"required_if=Provider file"`
	Timeout             time.Duration     `env:"SYNCCHECK_TIMEOUT" validate:"gt=0"`
	SelectCompanyAction string            `env:"SYNCCHECK_SELECT_COMPANY_ACTION"`
	View                map[string]string `env:"SYNCCHECK_VIEW_*"`
}

// EngineConfig holds extraction and decision settings.
type EngineConfig struct {
	MaxDelay  time.Duration `env:"MAX_SECONDS_DELAY" validate:"gt=0"`
	Columns   ColumnConfig
	RulesFile string `env:"SYNCCHECK_RULES_FILE"`
	// AssumeNow substitutes the current time when the dashboard shows none.
	AssumeNow bool   `env:"SYNCCHECK_ASSUME_NOW"`
	Timezone  string `env:"SYNCCHECK_TIMEZONE"`
}

// ColumnConfig holds the positional fallback indices; -1 disables one.
type ColumnConfig struct {
	Date   int `env:"SYNCCHECK_COLUMN_DATE" validate:"gte=-1"`
	Time   int `env:"SYNCCHECK_COLUMN_TIME" validate:"gte=-1"`
	Log    int `env:"SYNCCHECK_COLUMN_LOG" validate:"gte=-1"`
	Branch int `env:"SYNCCHECK_COLUMN_BRANCH" validate:"gte=-1"`
}

// OutputConfig holds verdict destinations besides stdout.
type OutputConfig struct {
	HistoryFile     string `env:"SYNCCHECK_HISTORY_FILE"`
	HistoryMaxBytes int64  `env:"SYNCCHECK_HISTORY_MAX_BYTES" validate:"gte=0"`
	WebhookURL      string `env:"SYNCCHECK_WEBHOOK_URL"`
	WebhookToken    string `env:"SYNCCHECK_WEBHOOK_TOKEN"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `env:"SYNCCHECK_LOG_LEVEL" validate:"oneof=debug info warn warning error"`
	File  string `env:"SYNCCHECK_LOG_FILE"`
	JSON  bool   `env:"SYNCCHECK_LOG_JSON"`
}

// DebugConfig holds diagnostic snapshot settings.
type DebugConfig struct {
	Enabled bool   `env:"SYNCCHECK_DEBUG"`
	Dir     string `env:"SYNCCHECK_DEBUG_DIR" validate:"required_if=Enabled true"`
}

// binding ties a viper key to its environment variable and, optionally, a flag.
type binding struct {
	key  string
	env  string
	flag string
}

var bindings = []binding{
	{"endpoint", "ERP_BASE_URL", "url"},
	{"username", "ERP_USERNAME", "username"},
	{"password", "ERP_PASSWORD", "password"},
	{"password_file", "ERP_PASSWORD_FILE", "password-file"},
	{"max_delay", "MAX_SECONDS_DELAY", "max-delay"},
	{"debug", "SYNCCHECK_DEBUG", "debug"},
	{"source", "SYNCCHECK_SOURCE", "source"},
	{"html", "SYNCCHECK_HTML", "html"},
	{"timeout", "SYNCCHECK_TIMEOUT", "timeout"},
	{"log_level", "SYNCCHECK_LOG_LEVEL", "log-level"},
	{"log_file", "SYNCCHECK_LOG_FILE", ""},
	{"log_json", "SYNCCHECK_LOG_JSON", ""},
	{"debug_dir", "SYNCCHECK_DEBUG_DIR", ""},
	{"history_file", "SYNCCHECK_HISTORY_FILE", ""},
	{"history_max_bytes", "SYNCCHECK_HISTORY_MAX_BYTES", ""},
	{"webhook_url", "SYNCCHECK_WEBHOOK_URL", ""},
	{"webhook_token", "SYNCCHECK_WEBHOOK_TOKEN", ""},
	{"column_date", "SYNCCHECK_COLUMN_DATE", ""},
	{"column_time", "SYNCCHECK_COLUMN_TIME", ""},
	{"column_log", "SYNCCHECK_COLUMN_LOG", ""},
	{"column_branch", "SYNCCHECK_COLUMN_BRANCH", ""},
	{"rules_file", "SYNCCHECK_RULES_FILE", ""},
	{"assume_now", "SYNCCHECK_ASSUME_NOW", ""},
	{"timezone", "SYNCCHECK_TIMEZONE", ""},
	{"select_company_action", "SYNCCHECK_SELECT_COMPANY_ACTION", ""},
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source", "tecnicon")
	v.SetDefault("timeout", "30s")
	v.SetDefault("log_level", "info")
	v.SetDefault("debug_dir", "debug")
	v.SetDefault("history_max_bytes", 1<<20)
	v.SetDefault("column_date", 7)
	v.SetDefault("column_time", 8)
	v.SetDefault("column_log", 12)
	v.SetDefault("column_branch", 0)
	v.SetDefault("timezone", "Local")
}

// Load reads configuration from a .env file, the environment, an optional YAML
// file named by the "config" flag or SYNCCHECK_CONFIG, and flags, in increasing
// order of precedence. flags may be nil.
func Load(flags *pflag.FlagSet) (Config, error) {
	// A missing .env is normal; variables already set in the environment win.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	for _, b := range bindings {
		if err := v.BindEnv(b.key, b.env); err != nil {
			return Config{}, err
		}
		if b.flag == "" || flags == nil {
			continue
		}
		if f := flags.Lookup(b.flag); f != nil {
			if err := v.BindPFlag(b.key, f); err != nil {
				return Config{}, err
			}
		}
	}
	_ = v.BindEnv("config", "SYNCCHECK_CONFIG")
	if flags != nil {
		if f := flags.Lookup("config"); f != nil {
			_ = v.BindPFlag("config", f)
		}
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	var errs []error
	maxDelay, err := seconds(v.GetString("max_delay"))
	if err != nil {
		errs = append(errs, fmt.Errorf("MAX_SECONDS_DELAY: %w", err))
	}
	timeout, err := duration(v.GetString("timeout"))
	if err != nil {
		errs = append(errs, fmt.Errorf("SYNCCHECK_TIMEOUT: %w", err))
	}

	cfg := Config{
		Connector: ConnectorConfig{
			Provider:            strings.ToLower(strings.TrimSpace(v.GetString("source"))),
			Endpoint:            strings.TrimSpace(v.GetString("endpoint")),
			Username:            v.GetString("username"),
			Password:            v.GetString("password"),
			PasswordFile:        v.GetString("password_file"),
			HTMLPath:            v.GetString("html"),
			Timeout:             timeout,
			SelectCompanyAction: v.GetString("select_company_action"),
			View:                loadView(v.GetStringMapString("view")),
		},
		Engine: EngineConfig{
			MaxDelay: maxDelay,
			Columns: ColumnConfig{
				Date:   v.GetInt("column_date"),
				Time:   v.GetInt("column_time"),
				Log:    v.GetInt("column_log"),
				Branch: v.GetInt("column_branch"),
			},
			RulesFile: v.GetString("rules_file"),
			AssumeNow: v.GetBool("assume_now"),
			Timezone:  v.GetString("timezone"),
		},
		Output: OutputConfig{
			HistoryFile:     v.GetString("history_file"),
			HistoryMaxBytes: v.GetInt64("history_max_bytes"),
			WebhookURL:      strings.TrimSpace(v.GetString("webhook_url")),
			WebhookToken:    strings.TrimSpace(v.GetString("webhook_token")),
		},
		Log: LogConfig{
			Level: strings.ToLower(v.GetString("log_level")),
			File:  v.GetString("log_file"),
			JSON:  v.GetBool("log_json"),
		},
		Debug: DebugConfig{
			Enabled: v.GetBool("debug"),
			Dir:     v.GetString("debug_dir"),
		},
	}

	if cfg.Connector.Password == "" && cfg.Connector.PasswordFile != "" {
		pw, err := readFirstLine(cfg.Connector.PasswordFile)
		if err != nil {
			errs = append(errs, fmt.Errorf("ERP_PASSWORD_FILE: %w", err))
		}
		cfg.Connector.Password = pw
	}
	return cfg, errors.Join(errs...)
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(envName)
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			errs = append(errs, fieldError(fe))
		}
	}

	if c.Connector.Endpoint != "" && !isHTTPURL(c.Connector.Endpoint) {
		errs = append(errs, fmt.Errorf("ERP_BASE_URL must be an http(s) URL, got %q", c.Connector.Endpoint))
	}
	if c.Output.WebhookURL != "" && !isHTTPURL(c.Output.WebhookURL) {
		errs = append(errs, fmt.Errorf("SYNCCHECK_WEBHOOK_URL must be an http(s) URL, got %q", c.Output.WebhookURL))
	}
	if c.Engine.Timezone != "" {
		if _, err := time.LoadLocation(c.Engine.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("SYNCCHECK_TIMEZONE: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Location returns the time zone dashboard timestamps are read in.
func (c Config) Location() *time.Location {
	if c.Engine.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Engine.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func envName(f reflect.StructField) string {
	if name := f.Tag.Get("env"); name != "" {
		return name
	}
	return f.Name
}

func fieldError(fe validator.FieldError) error {
	name := fe.Field()
	switch fe.Tag() {
	case "required_if":
		return fmt.Errorf("%s is required", name)
	case "oneof":
		return fmt.Errorf("%s must be one of [%s], got %q", name, fe.Param(), fe.Value())
	case "gt":
		return fmt.Errorf("%s must be greater than %s", name, fe.Param())
	case "gte":
		return fmt.Errorf("%s must be at least %s", name, fe.Param())
	default:
		return fmt.Errorf("%s failed %q validation", name, fe.Tag())
	}
}

// loadView merges the "view" map of the config file with SYNCCHECK_VIEW_*
// variables; the environment wins. Variable suffixes are lower-cased.
func loadView(fromFile map[string]string) map[string]string {
	var m map[string]string
	set := func(k, v string) {
		if m == nil {
			m = make(map[string]string)
		}
		m[k] = v
	}
	for k, v := range fromFile {
		set(k, v)
	}
	for _, kv := range os.Environ() {
		key, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, ViewEnvPrefix) || len(key) == len(ViewEnvPrefix) {
			continue
		}
		set(strings.ToLower(strings.TrimPrefix(key, ViewEnvPrefix)), val)
	}
	return m
}

// seconds parses a whole number of seconds. Empty means unset.
func seconds(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid number of seconds %q", s)
	}
	return time.Duration(n) * time.Second, nil
}

// duration accepts Go durations ("45s") and bare seconds ("45").
func duration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

func readFirstLine(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	if sc.Scan() {
		return strings.TrimSpace(sc.Text()), nil
	}
	if err := sc.Err(); err != nil {
		return "", err
	}
	return "", fmt.Errorf("%s is empty", path)
}
