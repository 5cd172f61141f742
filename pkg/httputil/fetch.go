package httputil

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/ringtower/pkg/buildinfo"
	apperr "github.com/matzehuels/ringtower/pkg/errors"
	"github.com/matzehuels/ringtower/pkg/observability"
)

// MaxBodySize bounds downloaded bodies.
const MaxBodySize = 256 << 20

// Get fetches rawURL and returns the body. Transport failures, 5xx and 429
// responses are returned as [RetryableError]; 404 maps to NOT_FOUND and
// other non-2xx statuses to NETWORK_ERROR.
func Get(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "invalid URL %q", rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "build request for %s", rawURL)
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, u.Host, u.Path)
	start := time.Now()

	resp, err := client.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, u.Host, u.Path, err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, Retryable(apperr.Wrap(apperr.ErrCodeNetwork, err, "GET %s", rawURL))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, u.Host, u.Path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperr.New(apperr.ErrCodeNotFound, "GET %s: %s", rawURL, resp.Status)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &RetryableError{
			Err:   apperr.New(apperr.ErrCodeNetwork, "GET %s: %s", rawURL, resp.Status),
			After: retryAfter(resp.Header, time.Now()),
		}
	case resp.StatusCode >= 300:
		return nil, apperr.New(apperr.ErrCodeNetwork, "GET %s: %s", rawURL, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, Retryable(apperr.Wrap(apperr.ErrCodeNetwork, err, "read %s", rawURL))
	}
	if len(body) > MaxBodySize {
		return nil, apperr.New(apperr.ErrCodeInvalidInput, "GET %s: body exceeds %d bytes", rawURL, MaxBodySize)
	}
	return body, nil
}

// IsURL reports whether s is an http or https URL.
func IsURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

