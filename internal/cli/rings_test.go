package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/matzehuels/ringtower/pkg/container"
	"github.com/matzehuels/ringtower/pkg/paint"
	"github.com/matzehuels/ringtower/pkg/ring"
)

const moduleJSON = `{
	"asset": {"version": "2.0"},
	"meshes": [{"name": "module", "primitives": [{"attributes": {"POSITION": 0}}]}],
	"accessors": [{"bufferView": 0, "componentType": 5126, "count": 1, "type": "VEC3"}],
	"bufferViews": [{"buffer": 0, "byteLength": 12}],
	"buffers": [{"byteLength": 12}]
}`

func moduleGLB() []byte {
	return container.Encode([]byte(moduleJSON), make([]byte, 12))
}

func TestLoadRingsDefault(t *testing.T) {
	set, err := loadRings("")
	if err != nil {
		t.Fatalf("loadRings() error: %v", err)
	}
	if set.Len() != 1 {
		t.Errorf("Len() = %d, want 1", set.Len())
	}
}

func TestDecodeRings(t *testing.T) {
	two := ring.NewSet()
	two.Add()
	snap, err := snapshotJSON(two)
	if err != nil {
		t.Fatal(err)
	}
	patched, err := container.Patch(moduleGLB(), nil, ring.ToSnapshot(two))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		file    string
		data    []byte
		want    int
		wantErr bool
	}{
		{"toml", "rings.toml", []byte("[[ring]]\nmodules = 12\n[[ring]]\n[[ring]]\n"), 3, false},
		{"toml upper case", "RINGS.TOML", []byte("[[ring]]\n"), 1, false},
		{"json snapshot", "rings.json", snap, 2, false},
		{"exported glb", "tower.glb", patched.Buffer, 2, false},
		{"glb without snapshot", "module.glb", moduleGLB(), 0, true},
		{"garbage", "rings.json", []byte("rings!"), 0, true},
		{"bad toml", "rings.toml", []byte("[[ring]"), 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := decodeRings(tt.file, tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decodeRings() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && set.Len() != tt.want {
				t.Errorf("Len() = %d, want %d", set.Len(), tt.want)
			}
		})
	}
}

func TestParseAssignment(t *testing.T) {
	tests := []struct {
		in      string
		want    assignment
		wantErr bool
	}{
		{"0.scale=2", assignment{0, ring.Scale, 2}, false},
		{" 1 . modules = 36 ", assignment{1, ring.Modules, 36}, false},
		{"2.arc=180.5", assignment{2, ring.Arc, 180.5}, false},
		{"scale=2", assignment{}, true},
		{"0.scale", assignment{}, true},
		{"x.scale=2", assignment{}, true},
		{"0.diameter=2", assignment{}, true},
		{"0.scale=big", assignment{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAssignment(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseAssignment(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseAssignment(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestApplyAssignments(t *testing.T) {
	set := ring.NewSet()
	// Scale is pinned by default, so the radius follows it.
	if err := applyAssignments(&set, []string{"0.scale=2"}); err != nil {
		t.Fatalf("applyAssignments() error: %v", err)
	}
	r, _ := set.At(0)
	if r.Scale != 2 || r.Radius != 2 {
		t.Errorf("scale, radius = %v, %v; want 2, 2", r.Scale, r.Radius)
	}

	if err := applyAssignments(&set, []string{"3.scale=1"}); err == nil {
		t.Error("expected error for missing ring")
	}
}

func TestWriteRings(t *testing.T) {
	set := ring.NewSet()
	set.Add()
	if err := set.SetLocked(1, true); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := writeRings(&buf, set, formatJSON); err != nil {
		t.Fatal(err)
	}
	var doc []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil || len(doc) != 2 {
		t.Fatalf("json output = %s (%v)", buf.String(), err)
	}

	buf.Reset()
	if err := writeRings(&buf, set, formatTOML); err != nil {
		t.Fatal(err)
	}
	back, err := ring.DecodeTOML(buf.Bytes())
	if err != nil || back.Len() != 2 {
		t.Fatalf("toml round trip: %d rings, %v", back.Len(), err)
	}

	buf.Reset()
	if err := writeRings(&buf, set, formatTable); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"Modules", "20 *", "1 ~", "locked"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}

	if err := writeRings(&buf, set, "yaml"); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestParsePaint(t *testing.T) {
	set := ring.NewSet()
	if err := set.SetLayers(0, 2); err != nil {
		t.Fatal(err)
	}

	cmd, err := parsePaint("ring-0.layer-1.module-3=#ff0000", set)
	if err != nil {
		t.Fatalf("parsePaint() error: %v", err)
	}
	if len(cmd.Keys) != 1 || cmd.Keys[0] != (paint.Key{Ring: 0, Layer: 1, Module: 3}) {
		t.Errorf("Keys = %v", cmd.Keys)
	}
	if cmd.Color.Hex() != "#ff0000" {
		t.Errorf("Color = %s", cmd.Color.Hex())
	}

	cmd, err = parsePaint("ring-0=#00ff00", set)
	if err != nil {
		t.Fatalf("parsePaint() error: %v", err)
	}
	if len(cmd.Keys) != 2*20 {
		t.Errorf("whole ring paint = %d keys, want 40", len(cmd.Keys))
	}

	for _, bad := range []string{"ring-0", "ring-0=#zzzzzz", "ring-9=#ff0000", "ring-x=#ff0000", "layer-1=#ff0000"} {
		if _, err := parsePaint(bad, set); err == nil {
			t.Errorf("parsePaint(%q) should fail", bad)
		}
	}
}
