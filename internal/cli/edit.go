package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/ringtower/pkg/errors"
	"github.com/matzehuels/ringtower/pkg/pipeline"
	"github.com/matzehuels/ringtower/pkg/ring"
	"github.com/matzehuels/ringtower/pkg/store"
)

// Editor styles
var (
	editSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	editNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	editDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	editErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// =============================================================================
// editCommand
// =============================================================================

// editCommand opens the interactive ring editor.
func (c *CLI) editCommand() *cobra.Command {
	var flags studioFlags

	cmd := &cobra.Command{
		Use:   "edit [rings-file]",
		Short: "Edit a ring set interactively",
		Long: `Edit opens a terminal editor over a ring set. Every keystroke becomes a
studio command; the scene is regenerated in the background and exports go
to the configured store.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeRingFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var path string
			if len(args) == 1 {
				path = args[0]
			}
			set, err := loadRings(path)
			if err != nil {
				return err
			}

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			opts, err := c.studioOptions(flags, set)
			if err != nil {
				return err
			}
			opts.Store = st
			// The terminal belongs to the editor; it reports errors itself.
			opts.Logger = newLogger(io.Discard, LogInfo)

			rs, err := startStudio(ctx, opts)
			if err != nil {
				return err
			}
			defer rs.stop()

			model := NewEditModel(ctx, rs.Studio)
			final, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
			if err != nil {
				return err
			}
			if m, ok := final.(EditModel); ok && m.LastExport != "" {
				printSuccess("Last export %s", StyleHighlight.Render(m.LastExport))
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// =============================================================================
// EditModel - Interactive ring editor
// =============================================================================

// editor is the part of a studio the ring editor drives.
type editor interface {
	Apply(ctx context.Context, cmd pipeline.Command) error
	Export(ctx context.Context, name string) (*pipeline.ExportResult, error)
	Rings() ring.Set
}

// editColumn is one editable column of the ring table.
type editColumn int

const (
	colModules editColumn = iota
	colArc
	colScale
	colRadius
	colLayers
	colYOffset
	colOrigin
	numColumns
)

var columnNames = [numColumns]string{"Modules", "Arc", "Scale", "Radius", "Layers", "Y", "Origin"}

// param returns the coupled parameter shown in c, if any.
func (c editColumn) param() (ring.Param, bool) {
	if c > colRadius {
		return 0, false
	}
	return ring.Params[c], true
}

// appliedMsg reports the outcome of a studio command.
type appliedMsg struct {
	name  string
	rings ring.Set
	err   error
}

// exportedMsg reports the outcome of an export.
type exportedMsg struct {
	res *pipeline.ExportResult
	err error
}

// EditModel is the bubbletea model for the ring editor.
type EditModel struct {
	ctx    context.Context
	studio editor

	Rings  ring.Set
	Cursor int
	Column editColumn

	// Status is the outcome of the last action, Err its failure.
	Status     string
	Err        error
	Busy       bool
	LastExport string
}

// NewEditModel creates an editor over studio.
func NewEditModel(ctx context.Context, studio editor) EditModel {
	return EditModel{ctx: ctx, studio: studio, Rings: studio.Rings()}
}

func (m EditModel) Init() tea.Cmd {
	return nil
}

func (m EditModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case appliedMsg:
		m.Busy = false
		m.Rings = msg.rings
		if m.Cursor >= m.Rings.Len() {
			m.Cursor = m.Rings.Len() - 1
		}
		m.Err = msg.err
		if msg.err == nil {
			m.Status = msg.name
		}
		return m, nil
	case exportedMsg:
		m.Busy = false
		m.Err = msg.err
		if msg.err == nil {
			m.LastExport = msg.res.Name
			m.Status = fmt.Sprintf("exported %s (%d painted)", msg.res.Name, msg.res.Customized)
		}
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m EditModel) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, nil
	case "down", "j":
		if m.Cursor < m.Rings.Len()-1 {
			m.Cursor++
		}
		return m, nil
	case "left", "h":
		if m.Column > 0 {
			m.Column--
		}
		return m, nil
	case "right", "l":
		if m.Column < numColumns-1 {
			m.Column++
		}
		return m, nil
	}

	if m.Busy {
		return m, nil
	}

	r, err := m.Rings.At(m.Cursor)
	if err != nil {
		return m, nil
	}

	var cmd pipeline.Command
	switch key {
	case "+", "=":
		cmd, err = m.nudge(r, 1)
	case "-", "_":
		cmd, err = m.nudge(r, -1)
	case ">", ".":
		cmd, err = m.nudge(r, 10)
	case "<", ",":
		cmd, err = m.nudge(r, -10)
	case "f":
		p, ok := m.Column.param()
		if !ok {
			err = fmt.Errorf("%s cannot be pinned", strings.ToLower(columnNames[m.Column]))
			break
		}
		cmd = pipeline.ToggleFixed{Ring: m.Cursor, Param: p}
	case "r":
		cmd = pipeline.ResetYOffset{Ring: m.Cursor}
	case "a":
		cmd = pipeline.AddRing{}
	case "x", "d":
		cmd = pipeline.DeleteRing{Ring: m.Cursor}
	case "L":
		cmd = pipeline.SetLocked{Ring: m.Cursor, Locked: !r.Locked}
	case "v":
		cmd = pipeline.SetVisible{Ring: m.Cursor, Visible: !r.Visible}
	case "e":
		m.Busy = true
		m.Err = nil
		return m, m.export()
	default:
		return m, nil
	}

	if err != nil {
		m.Err = err
		return m, nil
	}
	m.Busy = true
	m.Err = nil
	return m, m.apply(cmd)
}

// nudge builds the command that moves the selected column by steps.
func (m EditModel) nudge(r ring.Ring, steps int) (pipeline.Command, error) {
	i := m.Cursor
	switch m.Column {
	case colLayers:
		return pipeline.SetLayers{Ring: i, Layers: r.Layers + steps}, nil
	case colYOffset:
		return pipeline.SetYOffset{Ring: i, YOffset: r.YOffset + float64(steps)*ring.VStepBase}, nil
	case colOrigin:
		return pipeline.SetOriginModule{Ring: i, Origin: r.OriginModule + steps}, nil
	}
	p, _ := m.Column.param()
	if !r.Fixed.Get(p) {
		return nil, fmt.Errorf("%s is solved; press f to pin it first", p)
	}
	return pipeline.SetParam{Ring: i, Param: p, Value: r.Value(p) + float64(steps)*p.Step()}, nil
}

func (m EditModel) apply(cmd pipeline.Command) tea.Cmd {
	ctx, studio := m.ctx, m.studio
	return func() tea.Msg {
		err := studio.Apply(ctx, cmd)
		if apperr.Is(err, apperr.ErrCodeTemplateUnavailable) {
			// The edit landed; only the scene could not be rebuilt.
			err = nil
		}
		return appliedMsg{name: cmd.Name(), rings: studio.Rings(), err: err}
	}
}

func (m EditModel) export() tea.Cmd {
	ctx, studio := m.ctx, m.studio
	return func() tea.Msg {
		res, err := studio.Export(ctx, store.NewName())
		return exportedMsg{res: res, err: err}
	}
}

func (m EditModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Ring Editor"))
	b.WriteString("\n")
	b.WriteString(editDimStyle.Render("↑/↓ ring  ←/→ column  +/- step  </> ×10  f pin  r reset y  a add  x delete  L lock  v show  e export  q quit"))
	b.WriteString("\n\n")

	rows := make([][]string, 0, m.Rings.Len())
	for i, r := range m.Rings.Rings {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		row := []string{cursor}
		for _, p := range ring.Params {
			row = append(row, paramCell(r, p))
		}
		row = append(row,
			strconv.Itoa(r.Layers),
			strconv.FormatFloat(r.YOffset, 'f', 2, 64),
			strconv.Itoa(r.OriginModule),
			ringFlags(r))
		rows = append(rows, row)
	}

	headers := append([]string{""}, columnNames[:]...)
	headers = append(headers, "Flags")
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				if col-1 == int(m.Column) {
					return headerStyle.Foreground(colorCyan)
				}
				return headerStyle
			}
			if row == m.Cursor {
				if col-1 == int(m.Column) {
					return editSelectedStyle.Underline(true)
				}
				return editSelectedStyle
			}
			return editNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")

	switch {
	case m.Busy:
		b.WriteString(editDimStyle.Render("  working..."))
	case m.Err != nil:
		b.WriteString(editErrorStyle.Render("  " + iconError + " " + apperr.UserMessage(m.Err)))
	case m.Status != "":
		b.WriteString(editDimStyle.Render("  " + iconSuccess + " " + m.Status))
	}
	b.WriteString("\n")
	b.WriteString(editDimStyle.Render(fmt.Sprintf("  [%d/%d] %d instances", m.Cursor+1, m.Rings.Len(), m.Rings.InstanceCount())))

	return b.String()
}
