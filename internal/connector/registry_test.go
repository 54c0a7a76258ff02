package connector

import (
	"context"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/crimson-sun/synccheck/internal/diagnostics"
)

type stubConnector struct{}

func (stubConnector) Snapshot(context.Context, ConnectorConfig, *diagnostics.Collector) (string, error) {
	return "<table></table>", nil
}

func TestRegistry(t *testing.T) {
	Register("zz-stub", func(*zap.Logger) Connector { return stubConnector{} })
	Register("aa-stub", func(*zap.Logger) Connector { return stubConnector{} })
	t.Cleanup(func() {
		delete(registry, "zz-stub")
		delete(registry, "aa-stub")
	})

	ctor, err := Get("zz-stub")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	html, _ := ctor(nil).Snapshot(context.Background(), ConnectorConfig{}, nil)
	if html != "<table></table>" {
		t.Fatalf("unexpected snapshot %q", html)
	}

	if _, err := Get("missing"); err == nil {
		t.Fatal("expected error for unknown provider")
	}
	if got := Providers(); !reflect.DeepEqual(got, []string{"aa-stub", "zz-stub"}) {
		t.Fatalf("Providers() = %v", got)
	}
}

func TestErrorsUnwrap(t *testing.T) {
	inner := context.DeadlineExceeded
	auth := &AuthError{Reason: "login request", Err: inner}
	if auth.Error() != "authentication failed: login request: context deadline exceeded" {
		t.Errorf("AuthError.Error() = %q", auth.Error())
	}
	if auth.Unwrap() != inner {
		t.Error("AuthError should unwrap to its cause")
	}
	fetch := &FetchError{Reason: "empty response"}
	if fetch.Error() != "dashboard fetch failed: empty response" {
		t.Errorf("FetchError.Error() = %q", fetch.Error())
	}
}
