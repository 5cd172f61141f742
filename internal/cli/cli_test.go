package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"
)

// isolate points every XDG directory at a fresh temp dir so commands
// never touch the real config, cache or asset store.
func isolate(t *testing.T) {
	t.Helper()
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(base, "cache"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(base, "data"))
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func writeTemplate(t *testing.T) string {
	t.Helper()
	return writeFileBytes(t, t.TempDir(), "module.glb", moduleGLB())
}

func writeFileBytes(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRootCommandSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	sort.Strings(names)

	want := []string{"cache", "completion", "edit", "export", "generate", "import", "plan", "serve", "solve", "store", "watch"}
	for _, name := range want {
		if i := sort.SearchStrings(names, name); i >= len(names) || names[i] != name {
			t.Errorf("missing subcommand %q (have %v)", name, names)
		}
	}
}

func TestSolveCommand(t *testing.T) {
	isolate(t)

	out, err := execute(t, "solve", "--add", "1", "--set", "1.scale=2", "--format", "json")
	if err != nil {
		t.Fatalf("solve error: %v", err)
	}
	var doc []map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("solve output is not JSON: %v\n%s", err, out)
	}
	if len(doc) != 2 {
		t.Fatalf("rings = %d, want 2", len(doc))
	}
	if doc[1]["scale"] != 2.0 || doc[1]["radius"] != 2.0 {
		t.Errorf("ring 1 = %v", doc[1])
	}
}

func TestSolveCommandTOMLFile(t *testing.T) {
	isolate(t)
	path := writeFile(t, t.TempDir(), "rings.toml", "[[ring]]\nmodules = 10\narc = 180\n")

	out, err := execute(t, "solve", path, "-f", "toml")
	if err != nil {
		t.Fatalf("solve error: %v", err)
	}
	if !strings.Contains(out, "modules = 10") || !strings.Contains(out, "[[ring]]") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestPlanCommandDOT(t *testing.T) {
	isolate(t)

	out, err := execute(t, "plan", "--format", "dot")
	if err != nil {
		t.Fatalf("plan error: %v", err)
	}
	if !strings.HasPrefix(out, "digraph rings {") {
		t.Errorf("unexpected output:\n%s", out)
	}

	if _, err := execute(t, "plan", "--format", "png"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestGenerateCommand(t *testing.T) {
	isolate(t)
	tmpl := writeTemplate(t)

	out, err := execute(t, "generate", "--template", tmpl, "--no-cache", "--compact")
	if err != nil {
		t.Fatalf("generate error: %v", err)
	}
	var tree struct {
		Rings []struct {
			Instances []json.RawMessage `json:"instances"`
		} `json:"rings"`
	}
	if err := json.Unmarshal([]byte(out), &tree); err != nil {
		t.Fatalf("generate output: %v\n%s", err, out)
	}
	if len(tree.Rings) != 1 || len(tree.Rings[0].Instances) != 200 {
		t.Errorf("tree shape = %d rings", len(tree.Rings))
	}
}

func TestGenerateCommandNeedsTemplate(t *testing.T) {
	isolate(t)
	if _, err := execute(t, "generate"); err == nil {
		t.Error("expected error without a template")
	}
}

func TestExportImportFile(t *testing.T) {
	isolate(t)
	tmpl := writeTemplate(t)
	out := filepath.Join(t.TempDir(), "tower.glb")

	if _, err := execute(t, "export", "--template", tmpl, "--set", "0.modules=12",
		"--paint", "ring-0=#ff0000", "-o", out); err != nil {
		t.Fatalf("export error: %v", err)
	}

	got, err := execute(t, "import", out, "-f", "json")
	if err != nil {
		t.Fatalf("import error: %v", err)
	}
	var doc []map[string]any
	if err := json.Unmarshal([]byte(got), &doc); err != nil {
		t.Fatalf("import output: %v\n%s", err, got)
	}
	if len(doc) != 1 || doc[0]["modules"] != 12.0 {
		t.Errorf("imported rings = %v", doc)
	}
}

func TestExportToStore(t *testing.T) {
	isolate(t)
	tmpl := writeTemplate(t)

	if _, err := execute(t, "export", "--template", tmpl, "--name", "tower.glb"); err != nil {
		t.Fatalf("export error: %v", err)
	}

	list, err := execute(t, "store", "list")
	if err != nil {
		t.Fatalf("store list error: %v", err)
	}
	if !strings.Contains(list, "tower.glb") {
		t.Errorf("store list missing asset:\n%s", list)
	}

	got, err := execute(t, "import", "--from-store", "tower.glb", "-f", "json")
	if err != nil {
		t.Fatalf("import error: %v", err)
	}
	if !strings.Contains(got, `"modules": 20`) {
		t.Errorf("unexpected import:\n%s", got)
	}

	if _, err := execute(t, "store", "delete", "tower.glb"); err != nil {
		t.Fatalf("store delete error: %v", err)
	}
	if _, err := execute(t, "store", "get", "tower.glb"); err == nil {
		t.Error("deleted asset should be gone")
	}
}

func TestStorePutGet(t *testing.T) {
	isolate(t)
	src := writeFileBytes(t, t.TempDir(), "module.glb", moduleGLB())

	if _, err := execute(t, "store", "put", src); err != nil {
		t.Fatalf("store put error: %v", err)
	}
	out, err := execute(t, "store", "get", "module.glb")
	if err != nil {
		t.Fatalf("store get error: %v", err)
	}
	if !bytes.Equal([]byte(out), moduleGLB()) {
		t.Error("store get returned different bytes")
	}

	if _, err := execute(t, "store", "put", src, "--name", "../escape.glb"); err == nil {
		t.Error("invalid name should be rejected")
	}
}

func TestCachePathCommand(t *testing.T) {
	isolate(t)

	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path error: %v", err)
	}
	want := filepath.Join(os.Getenv("XDG_CACHE_HOME"), appName)
	if strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", strings.TrimSpace(out), want)
	}
}

func TestCacheClearCommand(t *testing.T) {
	isolate(t)
	dir := filepath.Join(os.Getenv("XDG_CACHE_HOME"), appName, "ab")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, dir, "entry.json", "{}")

	if _, err := execute(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "entry.json")); !os.IsNotExist(err) {
		t.Error("cache entry should be removed")
	}
}

func TestExplicitConfigMissing(t *testing.T) {
	isolate(t)
	if _, err := execute(t, "--config", filepath.Join(t.TempDir(), "nope.toml"), "solve"); err == nil {
		t.Error("expected error for missing --config file")
	}
}

func TestCacheClearExpired(t *testing.T) {
	isolate(t)
	root := filepath.Join(os.Getenv("XDG_CACHE_HOME"), appName)
	for _, dir := range []string{"ab", "cd"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	writeFile(t, filepath.Join(root, "ab"), "fresh.json", "{}")
	writeFile(t, filepath.Join(root, "cd"), "old.json", `{"data":null,"expires_at":"2000-01-01T00:00:00Z"}`)

	buf := captureStdout(t)
	if _, err := execute(t, "cache", "info"); err != nil {
		t.Fatalf("cache info error: %v", err)
	}
	if !strings.Contains(buf.String(), "Entries") || !strings.Contains(buf.String(), "Expired") {
		t.Errorf("cache info output = %q", buf.String())
	}

	if _, err := execute(t, "cache", "clear", "--expired"); err != nil {
		t.Fatalf("cache clear --expired error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "cd", "old.json")); !os.IsNotExist(err) {
		t.Error("expired entry should be removed")
	}
	if _, err := os.Stat(filepath.Join(root, "ab", "fresh.json")); err != nil {
		t.Error("fresh entry should be kept")
	}
}
