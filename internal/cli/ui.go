package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/ringtower/pkg/paint"
)

// stdout receives every status line. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleHighlight for asset names, paths and parameter values.
	StyleHighlight = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconSwatch  = "██"
)

// =============================================================================
// Status Output
// =============================================================================

func printLine(line string) { fmt.Fprintln(stdout, line) }

func printSuccess(format string, args ...any) {
	printLine(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	printLine(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	printLine(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	printLine(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line under the previous status.
func printDetail(format string, args ...any) {
	printLine("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written file path.
func printFile(path string) {
	printLine("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	printLine(styleKey.Render(key) + " " + StyleValue.Render(value))
}

func printNewline() { printLine("") }

// printNextStep prints a suggested follow-up command.
func printNextStep(description, cmd string) {
	printLine(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Export Output
// =============================================================================

// printStats prints export statistics on a single line.
func printStats(primitives, customized, size int, cached bool) {
	var parts []string
	if primitives > 0 {
		parts = append(parts, fmt.Sprintf("%d primitives", primitives))
	}
	parts = append(parts, fmt.Sprintf("%d painted", customized))
	if size > 0 {
		parts = append(parts, formatBytes(size))
	}

	status := styleComputed.Render("fresh")
	if cached {
		status = styleCached.Render("cached")
	}

	for i, p := range parts {
		parts[i] = StyleDim.Render(p)
	}
	parts = append(parts, status)
	printLine("  " + strings.Join(parts, StyleDim.Render(" · ")))
}

// formatBytes renders n as a short human size ("512 B", "1.4 MB").
func formatBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGT"[exp])
}

// swatch renders a block in the given color followed by its hex code.
func swatch(c paint.Color) string {
	hex := c.Hex()
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render(iconSwatch) + " " + hex
}

type paletteEntry struct {
	color paint.Color
	count int
}

// palette groups painted keys by color, most used first and by hex code
// among equals.
func palette(colors paint.ColorMap) []paletteEntry {
	byHex := make(map[string]*paletteEntry)
	for _, c := range colors {
		hex := c.Hex()
		if e, ok := byHex[hex]; ok {
			e.count++
			continue
		}
		byHex[hex] = &paletteEntry{color: c, count: 1}
	}
	out := make([]paletteEntry, 0, len(byHex))
	for _, e := range byHex {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].count != out[j].count {
			return out[i].count > out[j].count
		}
		return out[i].color.Hex() < out[j].color.Hex()
	})
	return out
}

// printPalette lists the colors painted into an export.
func printPalette(colors paint.ColorMap) {
	for _, e := range palette(colors) {
		printLine(fmt.Sprintf("  %s %s", swatch(e.color), StyleDim.Render(fmt.Sprintf("× %d", e.count))))
	}
}
