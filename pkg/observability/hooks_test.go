package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

type testPipelineHooks struct{ NoopPipelineHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
type testStoreHooks struct{ NoopStoreHooks }

func TestRegistryDefaultsSetAndReset(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should default to NoopPipelineHooks")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should default to NoopCacheHooks")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should default to NoopHTTPHooks")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should default to NoopStoreHooks")
	}

	p, c, h, s := &testPipelineHooks{}, &testCacheHooks{}, &testHTTPHooks{}, &testStoreHooks{}
	SetPipelineHooks(p)
	SetCacheHooks(c)
	SetHTTPHooks(h)
	SetStoreHooks(s)
	if Pipeline() != p || Cache() != c || HTTP() != h || Store() != s {
		t.Error("registered hooks should be returned")
	}

	SetPipelineHooks(nil)
	if Pipeline() != p {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	Reset()
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Reset() should restore NoopStoreHooks")
	}
}

func TestUseLogger(t *testing.T) {
	t.Cleanup(Reset)

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	UseLogger(logger)

	ctx := context.Background()
	Pipeline().OnCommand(ctx, "set-param", nil)
	Pipeline().OnGenerateComplete(ctx, 200, time.Millisecond, nil)
	Cache().OnCacheHit(ctx, "template")
	HTTP().OnResponse(ctx, "GET", "example.com", "/module.glb", 200, time.Millisecond)
	Store().OnStorePut(ctx, "file", "tower.glb", 10, errors.New("disk full"))

	out := buf.String()
	for _, want := range []string{
		"command name=set-param",
		"generate done instances=200",
		"cache hit type=template",
		"status=200",
		"store put",
		"disk full",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "WARN") {
		t.Errorf("failed store put should log at warn:\n%s", out)
	}
}

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	NoopPipelineHooks{}.OnExportComplete(ctx, "tower.glb", 1024, time.Second, nil)
	NoopCacheHooks{}.OnCacheSet(ctx, "template", 1024)
	NoopHTTPHooks{}.OnError(ctx, "GET", "example.com", "/module.glb", nil)
	NoopStoreHooks{}.OnStoreGet(ctx, "file", "tower.glb", 10, nil)
}
