package cache

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullCache.Get should always miss")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}

	if _, hit, err := c.Get(ctx, "template:a"); err != nil || hit {
		t.Fatalf("Get on empty cache = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "template:a", []byte("glb"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "template:a")
	if err != nil || !hit || string(data) != "glb" {
		t.Fatalf("Get = %q, %v, %v; want glb hit", data, hit, err)
	}

	if err := c.Delete(ctx, "template:a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "template:a"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "template:a"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned as hit")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	_ = c.Set(ctx, "k", []byte("v"), 0)

	if err := os.WriteFile(c.path("k"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v; want clean miss", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	_ = c.Set(ctx, "a", []byte("1"), 0)
	_ = c.Set(ctx, "b", []byte("2"), 0)

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("entry survived Clear")
	}
	if _, err := os.Stat(c.Dir()); err != nil {
		t.Errorf("cache dir missing after Clear: %v", err)
	}
}

func TestFileCacheStatsAndPrune(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	_ = c.Set(ctx, "template:a", []byte("glb"), 0)
	_ = c.Set(ctx, "export:b", []byte("out"), time.Nanosecond)
	_ = c.Set(ctx, "export:c", []byte("out"), 0)
	if err := os.WriteFile(c.path("export:c"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)

	st, err := c.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if st.Entries != 2 || st.Expired != 1 || st.Bytes == 0 {
		t.Errorf("Stats() = %+v, want 2 entries, 1 expired", st)
	}

	removed, err := c.Prune()
	if err != nil || removed != 2 {
		t.Fatalf("Prune() = %d, %v; want 2 removed", removed, err)
	}
	if _, hit, _ := c.Get(ctx, "template:a"); !hit {
		t.Error("live entry removed by Prune")
	}
	if st, _ := c.Stats(); st.Entries != 1 || st.Expired != 0 {
		t.Errorf("Stats() after Prune = %+v", st)
	}
}

func TestFileCacheStatsMissingDir(t *testing.T) {
	c, _ := NewFileCache(t.TempDir())
	if err := os.RemoveAll(c.Dir()); err != nil {
		t.Fatal(err)
	}
	if st, err := c.Stats(); err != nil || st.Entries != 0 {
		t.Errorf("Stats() = %+v, %v; want empty", st, err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	t1 := k.TemplateKey("https://example.com/a.glb")
	t2 := k.TemplateKey("https://example.com/b.glb")
	if t1 == t2 {
		t.Error("different sources should produce different template keys")
	}
	if !strings.HasPrefix(t1, "template:") {
		t.Errorf("TemplateKey should be namespaced: %s", t1)
	}

	e1 := k.ExportKey("abc", ExportKeyOpts{Snapshot: []byte("[]"), Colors: []byte("{}")})
	e2 := k.ExportKey("abc", ExportKeyOpts{Snapshot: []byte("[]"), Colors: []byte(`{"a":1}`)})
	if e1 == e2 {
		t.Error("different colors should produce different export keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "ws:1:")

	if got := scoped.ExportKey("abc", ExportKeyOpts{}); !strings.HasPrefix(got, "ws:1:export:") {
		t.Errorf("ScopedKeyer ExportKey should be prefixed: %s", got)
	}
	if got := scoped.TemplateKey("a"); !strings.HasPrefix(got, "ws:1:template:") {
		t.Errorf("ScopedKeyer TemplateKey should be prefixed: %s", got)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "prefix:")
	want := "prefix:" + NewDefaultKeyer().TemplateKey("module.glb")
	if key := scoped.TemplateKey("module.glb"); key != want {
		t.Errorf("TemplateKey with nil inner = %s, want %s", key, want)
	}
}

func TestKeyType(t *testing.T) {
	tests := map[string]string{
		"template:abc":    "template",
		"export:x":        "export",
		"v1.2.0:export:x": "export",
		"plain":           "unknown",
		":leading":        "unknown",
	}
	for key, want := range tests {
		if got := keyType(key); got != want {
			t.Errorf("keyType(%q) = %q, want %q", key, got, want)
		}
	}
}
