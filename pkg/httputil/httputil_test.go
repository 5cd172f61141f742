package httputil

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/ringtower/pkg/buildinfo"
	apperr "github.com/matzehuels/ringtower/pkg/errors"
)

func TestGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			if !strings.HasPrefix(r.UserAgent(), buildinfo.Name+"/") {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			_, _ = w.Write([]byte("glTF"))
		case "/busy":
			w.WriteHeader(http.StatusServiceUnavailable)
		case "/limited":
			w.WriteHeader(http.StatusTooManyRequests)
		case "/forbidden":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tests := []struct {
		path      string
		wantBody  string
		wantCode  apperr.Code
		retryable bool
	}{
		{"/ok", "glTF", "", false},
		{"/busy", "", apperr.ErrCodeNetwork, true},
		{"/limited", "", apperr.ErrCodeNetwork, true},
		{"/forbidden", "", apperr.ErrCodeNetwork, false},
		{"/missing", "", apperr.ErrCodeNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			body, err := Get(context.Background(), srv.Client(), srv.URL+tt.path)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("Get: %v", err)
				}
				if string(body) != tt.wantBody {
					t.Errorf("body = %q, want %q", body, tt.wantBody)
				}
				return
			}
			if !apperr.Is(err, tt.wantCode) {
				t.Errorf("error = %v, want code %s", err, tt.wantCode)
			}
			if IsRetryable(err) != tt.retryable {
				t.Errorf("IsRetryable = %v, want %v", IsRetryable(err), tt.retryable)
			}
		})
	}
}

func TestGetTransportErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := Get(context.Background(), nil, url)
	if !IsRetryable(err) {
		t.Errorf("connection refused should be retryable: %v", err)
	}
}

func TestIsURL(t *testing.T) {
	tests := map[string]bool{
		"https://example.com/a.glb": true,
		"http://localhost:8080/x":   true,
		"file:///tmp/a.glb":         false,
		"./module.glb":              false,
		"https://":                  false,
	}
	for in, want := range tests {
		if got := IsURL(in); got != want {
			t.Errorf("IsURL(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()
	errTransient := errors.New("transient")
	errFatal := errors.New("fatal")

	calls := 0
	err := Retry(ctx, 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return Retryable(errTransient)
		}
		return nil
	})
	if err != nil || calls != 3 {
		t.Errorf("Retry = %v after %d calls, want success after 3", err, calls)
	}

	calls = 0
	err = Retry(ctx, 3, time.Millisecond, func() error {
		calls++
		return errFatal
	})
	if !errors.Is(err, errFatal) || calls != 1 {
		t.Errorf("non-retryable error: %v after %d calls", err, calls)
	}

	calls = 0
	err = Retry(ctx, 2, time.Millisecond, func() error {
		calls++
		return Retryable(errTransient)
	})
	if !errors.Is(err, errTransient) || calls != 2 {
		t.Errorf("exhausted retries: %v after %d calls", err, calls)
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Hour, func() error {
		return Retryable(errors.New("down"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry = %v, want context.Canceled", err)
	}
}

func TestRetryableNil(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
}

func TestRetryAfter(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 0},
		{"2", 2 * time.Second},
		{"-5", 0},
		{"3600", maxRetryAfter},
		{now.Add(4 * time.Second).Format(http.TimeFormat), 4 * time.Second},
		{"soon", 0},
	}
	for _, tt := range tests {
		h := http.Header{}
		if tt.value != "" {
			h.Set("Retry-After", tt.value)
		}
		if got := retryAfter(h, now); got != tt.want {
			t.Errorf("retryAfter(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestGetHonoursRetryAfter(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := Get(context.Background(), srv.Client(), srv.URL)
	var re *RetryableError
	if !errors.As(err, &re) {
		t.Fatalf("Get error = %v, want RetryableError", err)
	}
	if re.After != time.Second {
		t.Errorf("After = %v, want 1s", re.After)
	}
}
