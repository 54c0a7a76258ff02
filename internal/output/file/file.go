package file

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/crimson-sun/synccheck/internal/model"
	"github.com/crimson-sun/synccheck/internal/output"
)

const defaultKeep = 5

// Option configures a file Output.
type Option func(*Output)

// WithMaxSize sets the file size (bytes) at which rotation triggers.
// 0 (default) disables rotation.
func WithMaxSize(bytes int64) Option {
	return func(o *Output) { o.maxSize = bytes }
}

// WithKeep sets how many rotated files ({path}.1 ... {path}.N) are kept.
func WithKeep(n int) Option {
	return func(o *Output) {
		if n > 0 {
			o.keep = n
		}
	}
}

// WithRunID stamps every record with the id of the run that produced it.
func WithRunID(id string) Option {
	return func(o *Output) { o.runID = id }
}


// Output appends one NDJSON record per verdict to a history file, rotating it
// by size.
type Output struct {
	mu      sync.Mutex
	w       *bufio.Writer
	f       *os.File
	path    string
	runID   string
	maxSize int64 // 0 = no rotation
	keep    int
	written int64
}

// New opens (or creates) the history file at path.
func New(path string, opts ...Option) (*Output, error) {
	o := &Output{path: path, keep: defaultKeep}
	for _, opt := range opts {
		opt(o)
	}
	if err := o.openFile(); err != nil {
		return nil, err
	}
	return o, nil
}

// Write appends v as a JSON line.
func (o *Output) Write(_ context.Context, v model.Verdict) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	data, err := json.Marshal(output.NewRecord(v, o.runID))
	if err != nil {
		return fmt.Errorf("file output: marshal: %w", err)
	}
	data = append(data, '\n')

	if o.maxSize > 0 && o.written > 0 && o.written+int64(len(data)) > o.maxSize {
		if err := o.rotate(); err != nil {
			return fmt.Errorf("file output: rotate: %w", err)
		}
	}

	n, err := o.w.Write(data)
	o.written += int64(n)
	if err != nil {
		return fmt.Errorf("file output: write: %w", err)
	}
	return nil
}

// Close flushes the buffer and closes the file.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.w.Flush(); err != nil {
		o.f.Close()
		return fmt.Errorf("file output: flush: %w", err)
	}
	return o.f.Close()
}

func (o *Output) openFile() error {
	f, err := os.OpenFile(o.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("file output: open %s: %w", o.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("file output: stat %s: %w", o.path, err)
	}
	o.f = f
	o.w = bufio.NewWriter(f)
	o.written = info.Size()
	return nil
}

// rotate shifts {path}.N-1 → {path}.N down to {path} → {path}.1, dropping the
// oldest, then reopens an empty file.
func (o *Output) rotate() error {
	if err := o.w.Flush(); err != nil {
		return err
	}
	if err := o.f.Close(); err != nil {
		return err
	}
	os.Remove(fmt.Sprintf("%s.%d", o.path, o.keep))
	for i := o.keep - 1; i >= 1; i-- {
		os.Rename(fmt.Sprintf("%s.%d", o.path, i), fmt.Sprintf("%s.%d", o.path, i+1))
	}
	if err := os.Rename(o.path, o.path+".1"); err != nil {
		return err
	}
	return o.openFile()
}
