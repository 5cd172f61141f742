package cli

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	apperr "github.com/matzehuels/ringtower/pkg/errors"
	"github.com/matzehuels/ringtower/pkg/pipeline"
	"github.com/matzehuels/ringtower/pkg/ring"
)

// fakeEditor records commands and applies the ones it understands to a
// local ring set.
type fakeEditor struct {
	set      ring.Set
	applied  []string
	applyErr error
	exports  int
}

func (f *fakeEditor) Apply(_ context.Context, cmd pipeline.Command) error {
	f.applied = append(f.applied, cmd.Name())
	if f.applyErr != nil {
		return f.applyErr
	}
	switch c := cmd.(type) {
	case pipeline.AddRing:
		f.set.Add()
	case pipeline.SetLayers:
		return f.set.SetLayers(c.Ring, c.Layers)
	case pipeline.SetParam:
		return f.set.SetParam(c.Ring, c.Param, c.Value)
	case pipeline.ToggleFixed:
		return f.set.ToggleFixed(c.Ring, c.Param)
	}
	return nil
}

func (f *fakeEditor) Export(context.Context, string) (*pipeline.ExportResult, error) {
	f.exports++
	return &pipeline.ExportResult{Name: "tower.glb", Customized: 3}, nil
}

func (f *fakeEditor) Rings() ring.Set { return f.set.Clone() }

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press feeds one key and runs the resulting command, if any, back into
// the model.
func press(t *testing.T, m EditModel, k string) EditModel {
	t.Helper()
	next, cmd := m.Update(key(k))
	m = next.(EditModel)
	if cmd == nil {
		return m
	}
	msg := cmd()
	if _, quit := msg.(tea.QuitMsg); quit {
		return m
	}
	next, _ = m.Update(msg)
	return next.(EditModel)
}

func newTestEditor() (*fakeEditor, EditModel) {
	f := &fakeEditor{set: ring.NewSet()}
	return f, NewEditModel(context.Background(), f)
}

func TestEditModelNavigation(t *testing.T) {
	f, m := newTestEditor()
	f.set.Add()
	m.Rings = f.Rings()

	m = press(t, m, "down")
	m = press(t, m, "down")
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1 (clamped)", m.Cursor)
	}
	m = press(t, m, "k")
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d, want 0", m.Cursor)
	}

	for range 10 {
		m = press(t, m, "right")
	}
	if m.Column != numColumns-1 {
		t.Errorf("Column = %d, want %d", m.Column, numColumns-1)
	}
	m = press(t, m, "left")
	if m.Column != colYOffset {
		t.Errorf("Column = %d, want %d", m.Column, colYOffset)
	}
	if len(f.applied) != 0 {
		t.Errorf("navigation applied commands: %v", f.applied)
	}
}

func TestEditModelAddAndLayers(t *testing.T) {
	f, m := newTestEditor()

	m = press(t, m, "a")
	if m.Rings.Len() != 2 {
		t.Fatalf("Rings.Len() = %d, want 2", m.Rings.Len())
	}
	if m.Status != "add-ring" || m.Busy {
		t.Errorf("Status = %q, Busy = %v", m.Status, m.Busy)
	}

	m.Column = colLayers
	m = press(t, m, "+")
	r, _ := m.Rings.At(0)
	if r.Layers != 11 {
		t.Errorf("Layers = %d, want 11", r.Layers)
	}
	if got := strings.Join(f.applied, ","); got != "add-ring,set-layers" {
		t.Errorf("applied = %s", got)
	}
}

func TestEditModelNudgeRequiresPin(t *testing.T) {
	f, m := newTestEditor()
	m.Column = colRadius

	m = press(t, m, "+")
	if m.Err == nil {
		t.Fatal("nudging the solved parameter should fail")
	}
	if len(f.applied) != 0 {
		t.Errorf("applied = %v, want none", f.applied)
	}

	m.Column = colScale
	m = press(t, m, ">")
	if m.Err != nil {
		t.Fatalf("Err = %v", m.Err)
	}
	r, _ := m.Rings.At(0)
	if r.Scale != 2 {
		t.Errorf("Scale = %v, want 2", r.Scale)
	}
}

func TestEditModelPinOnlyCoupledColumns(t *testing.T) {
	f, m := newTestEditor()
	m.Column = colLayers
	m = press(t, m, "f")
	if m.Err == nil {
		t.Error("pinning layers should fail")
	}

	m.Column = colArc
	m = press(t, m, "f")
	if got := strings.Join(f.applied, ","); got != "toggle-fixed" {
		t.Errorf("applied = %s", got)
	}
}

func TestEditModelErrors(t *testing.T) {
	f, m := newTestEditor()

	f.applyErr = apperr.New(apperr.ErrCodeTemplateUnavailable, "no template")
	m = press(t, m, "v")
	if m.Err != nil {
		t.Errorf("missing template should not be reported: %v", m.Err)
	}

	f.applyErr = errors.New("boom")
	m = press(t, m, "L")
	if m.Err == nil || !strings.Contains(m.View(), "boom") {
		t.Errorf("Err = %v, view should show it", m.Err)
	}
}

func TestEditModelExport(t *testing.T) {
	f, m := newTestEditor()
	m = press(t, m, "e")
	if f.exports != 1 || m.LastExport != "tower.glb" {
		t.Errorf("exports = %d, LastExport = %q", f.exports, m.LastExport)
	}
	if !strings.Contains(m.View(), "exported tower.glb") {
		t.Errorf("view should report the export:\n%s", m.View())
	}
}

func TestEditModelIgnoresKeysWhileBusy(t *testing.T) {
	f, m := newTestEditor()
	m.Busy = true
	next, cmd := m.Update(key("a"))
	if cmd != nil || len(f.applied) != 0 {
		t.Error("busy editor should ignore edits")
	}
	if !strings.Contains(next.(EditModel).View(), "working") {
		t.Error("busy view should say so")
	}
}

func TestEditModelQuit(t *testing.T) {
	_, m := newTestEditor()
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}
