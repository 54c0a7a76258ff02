// Package diagnostics persists the raw responses and extraction decisions of a
// run for offline inspection. A Collector is created once per run and passed
// explicitly to every stage that has something to record.
package diagnostics

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Collector records snapshots and notes. All methods are safe on a nil
// *Collector and do nothing unless the collector is enabled.
type Collector struct {
	runID     string
	dir       string
	enabled   bool
	logger    *zap.Logger
	startedAt time.Time

	notes     map[string]any
	snapshots []string
}

// New creates a Collector writing under dir. A disabled collector still has a
// run id so log lines can be correlated.
func New(enabled bool, dir string, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Collector{
		runID:     uuid.NewString(),
		dir:       dir,
		enabled:   enabled,
		logger:    logger,
		startedAt: time.Now(),
		notes:     make(map[string]any),
	}
}

// RunID identifies the run in file names and logs.
func (c *Collector) RunID() string {
	if c == nil {
		return ""
	}
	return c.runID
}

// Enabled reports whether anything will be persisted.
func (c *Collector) Enabled() bool {
	return c != nil && c.enabled
}

// Snapshot writes body to <dir>/<run-id>-<name>.html and returns the path, or
// "" when disabled or the write failed. Failures are logged, never returned:
// diagnostics must not change the verdict.
func (c *Collector) Snapshot(name, body string) string {
	if !c.Enabled() {
		return ""
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		c.logger.Warn("diagnostics dir unavailable", zap.String("dir", c.dir), zap.Error(err))
		return ""
	}
	path := filepath.Join(c.dir, fmt.Sprintf("%s-%s.html", c.runID, unsafeName.ReplaceAllString(name, "_")))
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		c.logger.Warn("snapshot write failed", zap.String("path", path), zap.Error(err))
		return ""
	}
	c.snapshots = append(c.snapshots, path)
	c.logger.Debug("snapshot saved", zap.String("name", name), zap.String("path", path), zap.Int("bytes", len(body)))
	return path
}

// Note records one extraction decision for the run summary. Later notes with
// the same key replace earlier ones.
func (c *Collector) Note(key string, value any) {
	if !c.Enabled() {
		return
	}
	c.notes[key] = value
}

// Paths returns the snapshot files written so far.
func (c *Collector) Paths() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.snapshots...)
}

type summary struct {
	RunID     string         `yaml:"run_id"`
	StartedAt time.Time      `yaml:"started_at"`
	Snapshots []string       `yaml:"snapshots,omitempty"`
	Notes     map[string]any `yaml:"notes,omitempty"`
}

// Flush writes <dir>/<run-id>-extraction.yaml with every note and snapshot.
func (c *Collector) Flush() error {
	if !c.Enabled() {
		return nil
	}
	data, err := yaml.Marshal(summary{
		RunID:     c.runID,
		StartedAt: c.startedAt,
		Snapshots: c.snapshots,
		Notes:     c.notes,
	})
	if err != nil {
		return fmt.Errorf("diagnostics: marshal summary: %w", err)
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("diagnostics: create %s: %w", c.dir, err)
	}
	path := filepath.Join(c.dir, c.runID+"-extraction.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("diagnostics: write %s: %w", path, err)
	}
	c.logger.Info("diagnostics written", zap.String("summary", path), zap.Int("snapshots", len(c.snapshots)))
	return nil
}
