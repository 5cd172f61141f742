package template

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/ringtower/pkg/cache"
	apperr "github.com/matzehuels/ringtower/pkg/errors"
	"github.com/matzehuels/ringtower/pkg/httputil"
)

// Source names where a template comes from: a local path or an http(s) URL.
type Source string

// IsURL reports whether s is fetched over HTTP.
func (s Source) IsURL() bool { return httputil.IsURL(string(s)) }

// Name returns the file name part of the source.
func (s Source) Name() string { return filepath.Base(string(s)) }

// Options configures a [Loader].
type Options struct {
	Client     *http.Client
	Cache      cache.Cache
	Keyer      cache.Keyer
	TTL        time.Duration
	Attempts   int
	RetryDelay time.Duration
	Logger     *log.Logger
}

// SetDefaults fills zero fields.
func (o *Options) SetDefaults() {
	if o.Client == nil {
		o.Client = &http.Client{Timeout: 60 * time.Second}
	}
	if o.Cache == nil {
		o.Cache = cache.NewNullCache()
	}
	if o.Keyer == nil {
		o.Keyer = cache.NewDefaultKeyer()
	}
	if o.TTL == 0 {
		o.TTL = 7 * 24 * time.Hour
	}
	if o.Attempts == 0 {
		o.Attempts = 3
	}
	if o.RetryDelay == 0 {
		o.RetryDelay = time.Second
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
}

// Loader holds the current template source and its decoded geometry.
// It is safe for concurrent use.
type Loader struct {
	opts Options

	mu     sync.Mutex
	source Source
	buf    []byte
	geom   *Geometry
}

// NewLoader returns a loader with no source.
func NewLoader(opts Options) *Loader {
	opts.SetDefaults()
	return &Loader{opts: opts}
}

// SetSource points the loader at src and drops the cached geometry.
func (l *Loader) SetSource(src Source) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.source, l.buf, l.geom = src, nil, nil
}

// SetBuffer installs an in-memory template buffer and drops the cached
// geometry.
func (l *Loader) SetBuffer(name string, buf []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.source, l.buf, l.geom = Source(name), buf, nil
}

// Source returns the current source.
func (l *Loader) Source() Source {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.source
}

// Resident returns the decoded geometry if it is already cached.
func (l *Loader) Resident() *Geometry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.geom
}

// Geometry returns the decoded template, fetching and decoding it on first
// use. It fails with TEMPLATE_UNAVAILABLE when no source is set.
func (l *Loader) Geometry(ctx context.Context) (*Geometry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.geom != nil {
		return l.geom, nil
	}
	if l.source == "" && l.buf == nil {
		return nil, apperr.New(apperr.ErrCodeTemplateUnavailable, "no module template source configured")
	}

	buf := l.buf
	if buf == nil {
		var err error
		if buf, err = l.fetch(ctx, l.source); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	geom, err := Decode(string(l.source), buf)
	if err != nil {
		return nil, err
	}
	for _, w := range geom.Warnings {
		l.opts.Logger.Warn("template container truncated", "source", l.source, "declared", w.Declared, "available", w.Available)
	}
	l.opts.Logger.Debug("template decoded",
		"source", l.source,
		"primitives", geom.Primitives(),
		"bytes", len(buf),
		"duration", time.Since(start))

	l.buf = buf
	l.geom = geom
	return geom, nil
}

// Buffer returns the raw bytes of the resident template, or nil.
func (l *Loader) Buffer() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.geom == nil {
		return nil
	}
	return l.buf
}

func (l *Loader) fetch(ctx context.Context, src Source) ([]byte, error) {
	if !src.IsURL() {
		buf, err := os.ReadFile(string(src))
		if os.IsNotExist(err) {
			return nil, apperr.Wrap(apperr.ErrCodeNotFound, err, "template %s", src)
		}
		if err != nil {
			return nil, apperr.Wrap(apperr.ErrCodeTemplateUnavailable, err, "read template %s", src)
		}
		return buf, nil
	}

	key := l.opts.Keyer.TemplateKey(string(src))
	if data, hit, err := l.opts.Cache.Get(ctx, key); err == nil && hit {
		l.opts.Logger.Debug("template cache hit", "url", src)
		return data, nil
	}

	var body []byte
	err := httputil.Retry(ctx, l.opts.Attempts, l.opts.RetryDelay, func() error {
		var err error
		body, err = httputil.Get(ctx, l.opts.Client, string(src))
		if httputil.IsRetryable(err) {
			l.opts.Logger.Debug("template download failed, retrying", "url", src, "error", err)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := l.opts.Cache.Set(ctx, key, body, l.opts.TTL); err != nil {
		l.opts.Logger.Warn("cache template", "url", src, "error", err)
	}
	return body, nil
}
