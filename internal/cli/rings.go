package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/h2non/filetype"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ringtower/pkg/container"
	apperr "github.com/matzehuels/ringtower/pkg/errors"
	"github.com/matzehuels/ringtower/pkg/ring"
	"github.com/matzehuels/ringtower/pkg/template"
)

const (
	formatTable = "table"
	formatJSON  = "json"
	formatTOML  = "toml"
)

// =============================================================================
// Loading
// =============================================================================

// loadRings reads a ring set from path. TOML files are ring definitions,
// GLB files must carry an embedded snapshot, anything else is read as a
// JSON snapshot. An empty path yields the default set.
func loadRings(path string) (ring.Set, error) {
	if path == "" {
		return ring.NewSet(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ring.Set{}, fmt.Errorf("read %s: %w", path, err)
	}
	return decodeRings(path, data)
}

func decodeRings(name string, data []byte) (ring.Set, error) {
	switch {
	case strings.EqualFold(filepath.Ext(name), ".toml"):
		return ring.DecodeTOML(data)
	case filetype.IsType(data, template.GLB):
		set, ok, err := container.ExtractSnapshot(data)
		if err != nil {
			return ring.Set{}, err
		}
		if !ok {
			return ring.Set{}, apperr.New(apperr.ErrCodeInvalidInput, "%s carries no ring snapshot", name)
		}
		return set, nil
	}
	set, ok := ring.FromSnapshot(data)
	if !ok {
		return ring.Set{}, apperr.New(apperr.ErrCodeInvalidInput, "%s is not a ring snapshot", name)
	}
	return set, nil
}

// snapshotJSON renders set as the JSON snapshot document accepted by the
// import-snapshot command.
func snapshotJSON(set ring.Set) ([]byte, error) {
	return json.Marshal(ring.ToSnapshot(set))
}

// =============================================================================
// Assignments
// =============================================================================

// assignment is one "--set ring.param=value" flag.
type assignment struct {
	ring  int
	param ring.Param
	value float64
}

// parseAssignment parses "1.scale=2" into an assignment.
func parseAssignment(s string) (assignment, error) {
	lhs, rhs, ok := strings.Cut(s, "=")
	if !ok {
		return assignment{}, fmt.Errorf("invalid assignment %q: want RING.PARAM=VALUE", s)
	}
	idx, name, ok := strings.Cut(lhs, ".")
	if !ok {
		return assignment{}, fmt.Errorf("invalid assignment %q: want RING.PARAM=VALUE", s)
	}
	i, err := strconv.Atoi(strings.TrimSpace(idx))
	if err != nil {
		return assignment{}, fmt.Errorf("invalid ring index in %q: %w", s, err)
	}
	p, err := ring.ParseParam(strings.TrimSpace(name))
	if err != nil {
		return assignment{}, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(rhs), 64)
	if err != nil {
		return assignment{}, fmt.Errorf("invalid value in %q: %w", s, err)
	}
	return assignment{ring: i, param: p, value: v}, nil
}

// applyAssignments pins and sets every assigned parameter in order.
func applyAssignments(set *ring.Set, raw []string) error {
	for _, s := range raw {
		a, err := parseAssignment(s)
		if err != nil {
			return err
		}
		r, err := set.At(a.ring)
		if err != nil {
			return err
		}
		if !r.Fixed.Get(a.param) {
			if err := set.ToggleFixed(a.ring, a.param); err != nil {
				return err
			}
		}
		if err := set.SetParam(a.ring, a.param, a.value); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// solve
// =============================================================================

type solveOpts struct {
	format  string
	assign  []string
	addRing int
}

// solveCommand prints a solved and cascaded ring set.
func (c *CLI) solveCommand() *cobra.Command {
	opts := solveOpts{format: formatTable}

	cmd := &cobra.Command{
		Use:   "solve [rings-file]",
		Short: "Solve and stack a ring set",
		Long: `Solve a ring set read from a TOML definition, a JSON snapshot or an
exported GLB, and print the derived values of every ring.

Parameters can be pinned and changed with --set RING.PARAM=VALUE:

  ringtower solve rings.toml --set 0.scale=2 --set 1.modules=36`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeRingFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			set, err := loadRings(path)
			if err != nil {
				return err
			}
			for range opts.addRing {
				set.Add()
			}
			if err := applyAssignments(&set, opts.assign); err != nil {
				return err
			}
			return writeRings(cmd.OutOrStdout(), set, opts.format)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: table, json, toml")
	cmd.Flags().StringArrayVar(&opts.assign, "set", nil, "pin and set a parameter (RING.PARAM=VALUE)")
	cmd.Flags().IntVar(&opts.addRing, "add", 0, "append this many rings before solving")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats(formatTable, formatJSON, formatTOML))

	return cmd
}

func writeRings(w io.Writer, set ring.Set, format string) error {
	switch format {
	case formatTable:
		_, err := fmt.Fprintln(w, ringTable(set))
		return err
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(ring.ToSnapshot(set))
	case formatTOML:
		return ring.EncodeTOML(w, set)
	}
	return apperr.New(apperr.ErrCodeInvalidInput, "unknown format %q (must be one of: table, json, toml)", format)
}

// ringTable renders one row per ring. Pinned values are marked with "*",
// the solved parameter with "~".
func ringTable(set ring.Set) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, set.Len())
	for i, r := range set.Rings {
		row := []string{strconv.Itoa(i)}
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

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("#", "Modules", "Arc", "Scale", "Radius", "Layers", "Y", "Origin", "Flags").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	return t.Render()
}

func paramCell(r ring.Ring, p ring.Param) string {
	var v string
	if p == ring.Modules {
		v = strconv.Itoa(r.Modules)
	} else {
		v = strconv.FormatFloat(r.Value(p), 'f', -1, 64)
	}
	switch {
	case r.Fixed.Get(p):
		return v + " *"
	case p == r.AutoKey:
		return v + " ~"
	}
	return v
}

func ringFlags(r ring.Ring) string {
	var flags []string
	if r.Locked {
		flags = append(flags, "locked")
	}
	if !r.Visible {
		flags = append(flags, "hidden")
	}
	if !r.YOffsetAuto {
		flags = append(flags, "manual-y")
	}
	return strings.Join(flags, ",")
}
