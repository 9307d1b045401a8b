package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/mediatopo/pkg/analysis"
	"github.com/matzehuels/mediatopo/pkg/mediactl"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success, enabled links
	colorYellow = lipgloss.Color("220") // Amber - warnings, unknown links
	colorRed    = lipgloss.Color("167") // Soft red - errors, disabled links
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

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)

	styleEnabled  = lipgloss.NewStyle().Foreground(colorGreen)
	styleDisabled = lipgloss.NewStyle().Foreground(colorRed)
	styleUnknown  = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// stdout is where status lines go. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, styleIconSuccess.Render(iconSuccess)+" "+msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, styleIconError.Render(iconError)+" "+msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, styleIconInfo.Render(iconInfo)+" "+msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(stdout, "  "+StyleDim.Render(msg))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Fprintln(stdout, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

// printNewline prints an empty line.
func printNewline() {
	fmt.Fprintln(stdout)
}

// =============================================================================
// Topology Display
// =============================================================================

// printStats prints topology statistics on a single line.
func printStats(entities, links int, cached bool) {
	status := iconFresh
	statusStyle := styleComputed
	if cached {
		status = iconCached
		statusStyle = styleCached
	}

	parts := []string{
		StyleDim.Render(fmt.Sprintf("%d entities", entities)),
		StyleDim.Render(fmt.Sprintf("%d links", links)),
		statusStyle.Render(status),
	}
	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += part
	}
	fmt.Fprintln(stdout, line)
}

// printFormatReport prints the sensor-to-receiver format comparison.
func printFormatReport(r analysis.FormatReport) {
	printNewline()
	fmt.Fprintln(stdout, StyleTitle.Render("Format Check"))
	if r.Sensor == nil {
		printWarning("No sensor source pad with a format found")
		return
	}
	printKeyValue("Sensor", fmt.Sprintf("%s pad%d: %s", r.Sensor.Entity, r.Sensor.Pad, r.Sensor.Codec))
	for _, b := range r.Bridge {
		printKeyValue("Receiver", fmt.Sprintf("%s pad%d: %s", b.Entity, b.Pad, b.Codec))
	}
	if r.OK() {
		printSuccess("Formats match")
		return
	}
	for _, m := range r.Mismatches {
		printWarning("Format mismatch: %s", m)
	}
}

// printLinkSummary prints links grouped by status.
func printLinkSummary(s analysis.LinkSummary) {
	printNewline()
	fmt.Fprintln(stdout, StyleTitle.Render(fmt.Sprintf("Links (%d)", s.Total())))
	printLinkGroup("Enabled", s.Enabled, styleEnabled)
	printLinkGroup("Disabled", s.Disabled, styleDisabled)
	printLinkGroup("Other", s.Unknown, styleUnknown)
}

func printLinkGroup(title string, items []analysis.LinkItem, style lipgloss.Style) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(stdout, style.Render(fmt.Sprintf("%s (%d)", title, len(items))))
	for _, it := range items {
		fmt.Fprintln(stdout, "  "+it.Description+" "+StyleDim.Render("["+it.Status+"]"))
	}
}

// deviceTable renders probed media devices.
func deviceTable(devices []mediactl.Device) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(devices))
	for _, d := range devices {
		marker := ""
		if d.HasMarker {
			marker = iconSuccess
		}
		status := "ok"
		if d.Err != nil {
			status = "error"
		}
		rows = append(rows, []string{
			d.Path,
			d.Info.Driver,
			d.Info.Model,
			strconv.Itoa(d.Entities),
			strconv.Itoa(d.Links),
			marker,
			status,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Device", "Driver", "Model", "Entities", "Links", "Sensor", "Status").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if row < 0 || row >= len(devices) {
				return lipgloss.NewStyle()
			}
			d := devices[row]
			switch {
			case d.Err != nil:
				return lipgloss.NewStyle().Foreground(colorDim)
			case d.HasMarker:
				return lipgloss.NewStyle().Foreground(colorGreen)
			default:
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
		})
	return t.Render()
}
