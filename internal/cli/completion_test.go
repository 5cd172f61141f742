package cli

import (
	"strings"
	"testing"
)

func completions(out string) []string {
	var names []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		names = append(names, strings.SplitN(line, "\t", 2)[0])
	}
	return names
}

func TestCompleteAssetNames(t *testing.T) {
	isolate(t)
	src := writeFileBytes(t, t.TempDir(), "module.glb", moduleGLB())
	for _, name := range []string{"tower.glb", "temple.glb", "arch.glb"} {
		if _, err := execute(t, "store", "put", src, "--name", name); err != nil {
			t.Fatalf("store put %s: %v", name, err)
		}
	}

	out, err := execute(t, "__complete", "store", "get", "t")
	if err != nil {
		t.Fatalf("__complete error: %v", err)
	}
	got := strings.Join(completions(out), ",")
	if got != "temple.glb,tower.glb" && got != "tower.glb,temple.glb" {
		t.Errorf("completions = %q", got)
	}

	out, err = execute(t, "__complete", "store", "delete", "arch.glb", "")
	if err != nil {
		t.Fatalf("__complete error: %v", err)
	}
	for _, name := range completions(out) {
		if name == "arch.glb" {
			t.Error("already named asset should not be offered again")
		}
	}
}

func TestCompleteFormats(t *testing.T) {
	isolate(t)

	out, err := execute(t, "__complete", "plan", "--format", "")
	if err != nil {
		t.Fatalf("__complete error: %v", err)
	}
	if got := strings.Join(completions(out), ","); got != "svg,dot" {
		t.Errorf("plan formats = %q", got)
	}

	out, err = execute(t, "__complete", "solve", "--format", "")
	if err != nil {
		t.Fatalf("__complete error: %v", err)
	}
	if got := strings.Join(completions(out), ","); got != "table,json,toml" {
		t.Errorf("solve formats = %q", got)
	}
}

func TestCompletionCommand(t *testing.T) {
	isolate(t)
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, err := execute(t, "completion", shell)
		if err != nil {
			t.Fatalf("completion %s: %v", shell, err)
		}
		if !strings.Contains(out, appName) {
			t.Errorf("%s script does not mention %s", shell, appName)
		}
	}
	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}
