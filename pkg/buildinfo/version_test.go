package buildinfo

import (
	"strings"
	"testing"
)

func setBuild(t *testing.T, version, commit string) {
	t.Helper()
	prevV, prevC := Version, Commit
	Version, Commit = version, commit
	t.Cleanup(func() { Version, Commit = prevV, prevC })
}

func TestGenerator(t *testing.T) {
	setBuild(t, "v1.2.0", "none")
	if got := Generator(); got != "ringtower v1.2.0" {
		t.Errorf("Generator() = %q", got)
	}
}

func TestUserAgent(t *testing.T) {
	tests := []struct {
		version, commit, want string
	}{
		{"v1.2.0", "0123456789abcdef", "ringtower/v1.2.0 (0123456)"},
		{"dev", "none", "ringtower/dev (none)"},
	}
	for _, tt := range tests {
		setBuild(t, tt.version, tt.commit)
		if got := UserAgent(); got != tt.want {
			t.Errorf("UserAgent() = %q, want %q", got, tt.want)
		}
	}
}

func TestTemplate(t *testing.T) {
	setBuild(t, "v0.3.1", "abc")
	tmpl := Template()
	if !strings.Contains(tmpl, "version v0.3.1") || !strings.Contains(tmpl, "commit: abc") {
		t.Errorf("Template() = %q", tmpl)
	}
	if got := Get(); got.Version != "v0.3.1" || got.Commit != "abc" {
		t.Errorf("Get() = %+v", got)
	}
}
