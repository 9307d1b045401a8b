package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/mediatopo/pkg/errors"
	"github.com/matzehuels/mediatopo/pkg/mediactl"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// DeviceListModel - Interactive media device selection
// =============================================================================

// DeviceListModel is the bubbletea model for picking a media device.
// Devices that failed to probe are shown but cannot be selected.
type DeviceListModel struct {
	Devices  []mediactl.Device
	Cursor   int
	Selected *mediactl.Device
}

// NewDeviceListModel creates a device list with the cursor on the first
// device that carries the sensor marker.
func NewDeviceListModel(devices []mediactl.Device) DeviceListModel {
	m := DeviceListModel{Devices: devices}
	for i, d := range devices {
		if d.HasMarker {
			m.Cursor = i
			break
		}
	}
	return m
}

func (m DeviceListModel) Init() tea.Cmd {
	return nil
}

func (m DeviceListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Devices)-1 {
			m.Cursor++
		}
	case "enter":
		if len(m.Devices) == 0 {
			return m, tea.Quit
		}
		d := m.Devices[m.Cursor]
		if d.Err != nil {
			return m, nil
		}
		m.Selected = &d
		return m, tea.Quit
	}
	return m, nil
}

func (m DeviceListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Media Device"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, d := range m.Devices {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		mark := " "
		if d.HasMarker {
			mark = StyleSuccess.Render(iconSuccess)
		}

		detail := fmt.Sprintf("%s  %d entities, %d links", d.Info.Driver, d.Entities, d.Links)
		if d.Err != nil {
			detail = errors.UserMessage(d.Err)
		}

		line := fmt.Sprintf("%s%s %-14s %s", cursor, mark, d.Path, listDimStyle.Render(detail))
		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case d.Err != nil:
			b.WriteString(listDimStyle.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]  %s sensor found", m.Cursor+1, len(m.Devices), iconSuccess)))
	return b.String()
}

// selectDevice probes the media devices and lets the user pick one.
func selectDevice(ctx context.Context, opts mediactl.DiscoverOptions) (string, error) {
	devices, err := mediactl.Probe(ctx, opts)
	if err != nil {
		return "", err
	}
	if len(devices) == 0 {
		return "", errors.New(errors.ErrCodeDeviceNotFound, "no media devices under %s", opts.Prefix)
	}

	final, err := tea.NewProgram(NewDeviceListModel(devices), tea.WithContext(ctx)).Run()
	if err != nil {
		return "", fmt.Errorf("device picker: %w", err)
	}
	m, ok := final.(DeviceListModel)
	if !ok || m.Selected == nil {
		return "", context.Canceled
	}
	return m.Selected.Path, nil
}
