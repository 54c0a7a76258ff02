package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/crimson-sun/synccheck/internal/config"
	"github.com/crimson-sun/synccheck/internal/connector"
	"github.com/crimson-sun/synccheck/internal/diagnostics"
	"github.com/crimson-sun/synccheck/internal/engine"
	"github.com/crimson-sun/synccheck/internal/engine/columns"
	"github.com/crimson-sun/synccheck/internal/engine/health"
	"github.com/crimson-sun/synccheck/internal/engine/vocab"
	"github.com/crimson-sun/synccheck/internal/logging"
	"github.com/crimson-sun/synccheck/internal/model"
	"github.com/crimson-sun/synccheck/internal/output"
	"github.com/crimson-sun/synccheck/internal/output/file"
	"github.com/crimson-sun/synccheck/internal/output/multi"
	"github.com/crimson-sun/synccheck/internal/output/stdout"
	"github.com/crimson-sun/synccheck/internal/output/webhook"
	"github.com/crimson-sun/synccheck/internal/pipeline"

	// Register connector implementations.
	_ "github.com/crimson-sun/synccheck/internal/connector/file"
	_ "github.com/crimson-sun/synccheck/internal/connector/tecnicon"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout)
	stop()
	os.Exit(code)
}

// run executes one check and returns the process exit code. Whatever happens,
// exactly one status line is written to stdout.
func run(ctx context.Context, args []string, w io.Writer) int {
	a := &app{stdout: w, code: 1}
	cmd := a.command()
	cmd.SetArgs(args)
	cmd.SetOut(w)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(w, output.FormatLine(model.Problem(err.Error(), time.Now())))
		return 1
	}
	if a.versionOnly(cmd) {
		return 0
	}
	return a.code
}

type app struct {
	stdout io.Writer
	cfg    config.Config
	logger *zap.Logger
	code   int
}

func (a *app) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synccheck",
		Short: "Report the branch synchronization health of a Tecnicon ERP",
		Long: `synccheck logs into the ERP, reads the "Status Sincronismo" dashboard and
prints a single line for the monitoring scheduler:

  STATUS_OK
  STATUS_PROBLEMA: <reason>

The exit code is 0 for STATUS_OK and 1 otherwise. Settings come from flags,
the environment, a .env file or a YAML file given with --config.`,
		Version:           config.Version,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		RunE: a.check,
	}

	f := cmd.Flags()
	f.String("url", "", "ERP base URL [ERP_BASE_URL]")
	f.String("username", "", "ERP user [ERP_USERNAME]")
	f.String("password", "", "ERP password [ERP_PASSWORD]")
	f.String("password-file", "", "file whose first line is the ERP password [ERP_PASSWORD_FILE]")
	f.Int("max-delay", 0, "maximum sync delay in seconds [MAX_SECONDS_DELAY]")
	f.Bool("debug", false, "save raw responses and an extraction summary [SYNCCHECK_DEBUG]")
	f.String("source", "", "dashboard source: tecnicon or file [SYNCCHECK_SOURCE]")
	f.String("html", "", "saved dashboard to read with --source file [SYNCCHECK_HTML]")
	f.String("config", "", "YAML configuration file [SYNCCHECK_CONFIG]")
	f.String("log-level", "", "debug, info, warn or error [SYNCCHECK_LOG_LEVEL]")
	f.String("timeout", "", "HTTP timeout, e.g. 30s [SYNCCHECK_TIMEOUT]")
	return cmd
}

// versionOnly reports whether the run only printed the version.
func (a *app) versionOnly(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("version")
	return v
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.New(logging.Options{
		Level: logging.ParseLevel(cfg.Log.Level),
		File:  cfg.Log.File,
		JSON:  cfg.Log.JSON,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = logger.Named("synccheck")
	return nil
}

func (a *app) check(cmd *cobra.Command, _ []string) error {
	cfg, logger := a.cfg, a.logger

	settings, err := engineSettings(cfg.Engine)
	if err != nil {
		return err
	}
	eng := engine.NewDefault(settings, logger.Named("engine"))
	dec := health.New(health.WithLocation(cfg.Location()))

	diag := diagnostics.New(cfg.Debug.Enabled, cfg.Debug.Dir, logger.Named("diagnostics"))
	out := a.outputs(diag.RunID())

	ctor, err := connector.Get(cfg.Connector.Provider)
	if err != nil {
		return err
	}
	conn := ctor(logger.Named(cfg.Connector.Provider))

	p := pipeline.New(conn, eng, dec, out, diag, logger)
	defer p.Close()

	logger.Info("starting check",
		zap.String("source", cfg.Connector.Provider),
		zap.Duration("max_delay", cfg.Engine.MaxDelay),
		zap.String("run_id", diag.RunID()),
	)
	v, err := p.Run(cmd.Context(), connectorConfig(cfg.Connector), cfg.Engine.MaxDelay)
	if err != nil {
		logger.Error("verdict output failed", zap.Error(err))
	}
	if v.IsOK() {
		a.code = 0
	}
	return nil
}

// outputs returns stdout plus the history file and webhook when configured.
// Stdout comes first so the status line is printed even if the others fail. A
// history file that cannot be opened is logged and skipped.
func (a *app) outputs(runID string) output.Output {
	outs := []output.Output{stdout.New(a.stdout)}
	oc := a.cfg.Output
	if oc.HistoryFile != "" {
		hist, err := file.New(oc.HistoryFile, file.WithMaxSize(oc.HistoryMaxBytes), file.WithRunID(runID))
		if err != nil {
			a.logger.Warn("history file unavailable", zap.String("path", oc.HistoryFile), zap.Error(err))
		} else {
			outs = append(outs, hist)
		}
	}
	if oc.WebhookURL != "" {
		opts := []webhook.Option{
			webhook.WithTimeout(a.cfg.Connector.Timeout),
			webhook.WithRunID(runID),
		}
		if oc.WebhookToken != "" {
			opts = append(opts, webhook.WithHeaders(map[string]string{"Authorization": "Bearer " + oc.WebhookToken}))
		}
		outs = append(outs, webhook.New(oc.WebhookURL, opts...))
	}
	if len(outs) == 1 {
		return outs[0]
	}
	return multi.New(outs...)
}

func engineSettings(c config.EngineConfig) (engine.Settings, error) {
	s := engine.Settings{
		Positions: columns.Positions{
			model.SendDate:    c.Columns.Date,
			model.SendTime:    c.Columns.Time,
			model.SyncLog:     c.Columns.Log,
			model.BranchLabel: c.Columns.Branch,
		},
	}
	if c.RulesFile != "" {
		rules, err := vocab.LoadRules(c.RulesFile)
		if err != nil {
			return s, fmt.Errorf("rules file: %w", err)
		}
		s.Rules = rules
	}
	if c.AssumeNow {
		s.ClockFallback = time.Now
	}
	return s, nil
}

func connectorConfig(c config.ConnectorConfig) connector.ConnectorConfig {
	return connector.ConnectorConfig{
		Provider:            c.Provider,
		Endpoint:            c.Endpoint,
		Username:            c.Username,
		Password:            c.Password,
		HTMLPath:            c.HTMLPath,
		Timeout:             c.Timeout,
		View:                c.View,
		SelectCompanyAction: c.SelectCompanyAction,
	}
}
