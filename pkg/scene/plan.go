package scene

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/ringtower/pkg/ring"
)

// PlanDOT describes the ring stack as a Graphviz digraph, bottom ring last.
// Each ring is a box listing its parameters; pinned parameters are marked
// with '*' and the auto key with '~'. Edges point from a ring to the ring it
// rests on.
func PlanDOT(set ring.Set) string {
	var buf bytes.Buffer
	buf.WriteString("digraph rings {\n")
	buf.WriteString("  rankdir=BT;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for i, r := range set.Rings {
		fmt.Fprintf(&buf, "  %q [%s];\n", ringID(i), strings.Join(planAttrs(r, i), ", "))
	}

	buf.WriteString("\n")
	for i := 1; i < len(set.Rings); i++ {
		style := "solid"
		if !set.Rings[i].YOffsetAuto {
			style = "dashed"
		}
		fmt.Fprintf(&buf, "  %q -> %q [style=%s];\n", ringID(i), ringID(i-1), style)
	}
	buf.WriteString("}\n")
	return buf.String()
}

func ringID(i int) string { return fmt.Sprintf("ring-%d", i) }

func planLabel(r ring.Ring, i int) string {
	lines := []string{ringID(i)}
	for _, p := range ring.Params {
		mark := " "
		switch {
		case r.Fixed.Get(p):
			mark = "*"
		case p == r.AutoKey:
			mark = "~"
		}
		lines = append(lines, fmt.Sprintf("%s%s: %s", mark, p, strconv.FormatFloat(r.Value(p), 'f', -1, 64)))
	}
	lines = append(lines,
		fmt.Sprintf("layers: %d", r.Layers),
		fmt.Sprintf("y: %.2f", r.YOffset))
	return strings.Join(lines, "\n")
}

func planAttrs(r ring.Ring, i int) []string {
	attrs := []string{fmt.Sprintf("label=%q", planLabel(r, i))}
	if !r.Visible {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	}
	if r.Locked {
		attrs = append(attrs, "peripheries=2")
	}
	return attrs
}

// RenderPlanSVG renders a DOT graph to SVG using Graphviz.
func RenderPlanSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element to a zero-origin viewBox so the
// plan scales cleanly when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
