package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"
)

func newClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	c, err := New(baseURL, opts...)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func TestPostForm_Success(t *testing.T) {
	var gotMethod, gotQuery, gotType string
	var gotForm url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotQuery = r.URL.RawQuery
		gotType = r.Header.Get("Content-Type")
		r.ParseForm()
		gotForm = r.PostForm
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	c := newClient(t, srv.URL+"/")
	query := url.Values{"acao": {"Tecnicon.EfetuaLogin.obterTelaHtml"}}
	form := url.Values{"usuario": {"zabbix"}, "senha": {"s3cr3t"}}
	body, err := c.PostForm(context.Background(), "/Tecnicon/Controller", query, form, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != "<html>ok</html>" {
		t.Fatalf("unexpected body: %q", body)
	}
	if gotMethod != http.MethodPost {
		t.Errorf("method = %s", gotMethod)
	}
	if gotQuery != "acao=Tecnicon.EfetuaLogin.obterTelaHtml" {
		t.Errorf("query = %q", gotQuery)
	}
	if gotType != "application/x-www-form-urlencoded" {
		t.Errorf("content type = %q", gotType)
	}
	if gotForm.Get("usuario") != "zabbix" || gotForm.Get("senha") != "s3cr3t" {
		t.Errorf("form = %v", gotForm)
	}
}

func TestPostForm_Headers(t *testing.T) {
	var gotAuth, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAgent = r.Header.Get("User-Agent")
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, WithHeader("User-Agent", "synccheck-test"))
	_, err := c.PostForm(context.Background(), "/", nil, nil, map[string]string{"Authorization": "-9876"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "-9876" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotAgent != "synccheck-test" {
		t.Errorf("User-Agent = %q", gotAgent)
	}
}

func TestPostForm_KeepsCookies(t *testing.T) {
	var second string
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "abc123", Path: "/"})
			return
		}
		if c, err := r.Cookie("JSESSIONID"); err == nil {
			second = c.Value
		}
	}))
	defer srv.Close()

	c := newClient(t, srv.URL)
	for i := 0; i < 2; i++ {
		if _, err := c.PostForm(context.Background(), "/", nil, nil, nil); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	if second != "abc123" {
		t.Fatalf("session cookie not replayed, got %q", second)
	}
}

func TestPostForm_DecodesCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=ISO-8859-1")
		// "Cód." in Latin-1.
		w.Write([]byte{'C', 0xF3, 'd', '.'})
	}))
	defer srv.Close()

	body, err := newClient(t, srv.URL).PostForm(context.Background(), "/", nil, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body != "Cód." {
		t.Fatalf("body = %q, want %q", body, "Cód.")
	}
}

func TestPostForm_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(strings.Repeat("x", 2000)))
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).PostForm(context.Background(), "/", nil, nil, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
	if len(apiErr.Body) != 512 {
		t.Errorf("body not truncated: %d bytes", len(apiErr.Body))
	}
}

func TestPostForm_APIErrorKeepsRunes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=UTF-8")
		w.WriteHeader(http.StatusInternalServerError)
		// One ASCII byte shifts every two-byte rune so byte 512 is mid-rune.
		w.Write([]byte("x" + strings.Repeat("é", 600)))
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).PostForm(context.Background(), "/", nil, nil, nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if !utf8.ValidString(apiErr.Body) {
		t.Fatalf("body cut inside a rune: %q", apiErr.Body[len(apiErr.Body)-4:])
	}
	if len(apiErr.Body) != 511 {
		t.Errorf("body length = %d, want 511", len(apiErr.Body))
	}
}

func TestPostForm_NoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newClient(t, srv.URL).PostForm(context.Background(), "/", nil, nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if n := calls.Load(); n != 1 {
		t.Fatalf("expected exactly 1 request, got %d", n)
	}
}

func TestPostForm_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := newClient(t, srv.URL, WithTimeout(50*time.Millisecond))
	start := time.Now()
	_, err := c.PostForm(context.Background(), "/", nil, nil, nil)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if time.Since(start) > time.Second {
		t.Fatalf("timeout not applied, took %s", time.Since(start))
	}
}

func TestPostForm_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "late")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newClient(t, srv.URL).PostForm(ctx, "/", nil, nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
