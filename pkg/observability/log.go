package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks logs every event at debug level. Failures are logged at warn.
type LogHooks struct {
	Logger *log.Logger
}

// UseLogger registers [LogHooks] writing to logger for all hook kinds.
func UseLogger(logger *log.Logger) {
	h := LogHooks{Logger: logger}
	SetPipelineHooks(h)
	SetCacheHooks(h)
	SetHTTPHooks(h)
	SetStoreHooks(h)
}

func (h LogHooks) done(msg string, err error, keyvals ...any) {
	if err != nil {
		h.Logger.Warn(msg, append(keyvals, "err", err)...)
		return
	}
	h.Logger.Debug(msg, keyvals...)
}

func (h LogHooks) OnCommand(_ context.Context, command string, err error) {
	h.done("command", err, "name", command)
}

func (h LogHooks) OnGenerateStart(_ context.Context, rings, instances int) {
	h.Logger.Debug("generate start", "rings", rings, "instances", instances)
}

func (h LogHooks) OnGenerateComplete(_ context.Context, instances int, d time.Duration, err error) {
	h.done("generate done", err, "instances", instances, "elapsed", d)
}

func (h LogHooks) OnExportStart(_ context.Context, name string) {
	h.Logger.Debug("export start", "name", name)
}

func (h LogHooks) OnExportComplete(_ context.Context, name string, size int, d time.Duration, err error) {
	h.done("export done", err, "name", name, "bytes", size, "elapsed", d)
}

func (h LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("http request", "method", method, "host", host, "path", path)
}

func (h LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.Logger.Debug("http response", "method", method, "host", host, "path", path, "status", status, "elapsed", d)
}

func (h LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Warn("http error", "method", method, "host", host, "path", path, "err", err)
}

func (h LogHooks) OnStorePut(_ context.Context, backend, name string, size int, err error) {
	h.done("store put", err, "backend", backend, "name", name, "bytes", size)
}

func (h LogHooks) OnStoreGet(_ context.Context, backend, name string, size int, err error) {
	h.done("store get", err, "backend", backend, "name", name, "bytes", size)
}

var (
	_ PipelineHooks = LogHooks{}
	_ CacheHooks    = LogHooks{}
	_ HTTPHooks     = LogHooks{}
	_ StoreHooks    = LogHooks{}
)
