package cli

import (
	stderrors "errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/mediatopo/pkg/mediactl"
)

func testDevices() []mediactl.Device {
	return []mediactl.Device{
		{Path: "/dev/media0", Err: stderrors.New("Failed to enumerate /dev/media0")},
		{Path: "/dev/media1", Entities: 7, Links: 14, HasMarker: true, Info: mediactl.Info{Driver: "rp1-cfe"}},
		{Path: "/dev/media2", Entities: 3, Links: 2, Info: mediactl.Info{Driver: "pispbe"}},
	}
}

func press(m DeviceListModel, keys ...string) (DeviceListModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		var next tea.Model
		next, cmd = m.Update(msg)
		m = next.(DeviceListModel)
	}
	return m, cmd
}

func TestDeviceListStartsOnMarker(t *testing.T) {
	m := NewDeviceListModel(testDevices())
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1 (first device with the sensor)", m.Cursor)
	}
}

func TestDeviceListSelect(t *testing.T) {
	m, cmd := press(NewDeviceListModel(testDevices()), "down", "enter")
	if m.Selected == nil || m.Selected.Path != "/dev/media2" {
		t.Fatalf("Selected = %+v, want /dev/media2", m.Selected)
	}
	if cmd == nil {
		t.Error("enter should quit the program")
	}
}

func TestDeviceListBounds(t *testing.T) {
	m, _ := press(NewDeviceListModel(testDevices()), "down", "down", "j")
	if m.Cursor != 2 {
		t.Errorf("Cursor = %d, should stop at the last device", m.Cursor)
	}
	m, _ = press(m, "up", "k", "up", "up")
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d, should stop at the first device", m.Cursor)
	}
}

func TestDeviceListFailedDeviceNotSelectable(t *testing.T) {
	m, cmd := press(NewDeviceListModel(testDevices()), "up", "enter")
	if m.Selected != nil {
		t.Errorf("a device that failed to probe was selected: %+v", m.Selected)
	}
	if cmd != nil {
		t.Error("enter on a failed device should not quit")
	}
}

func TestDeviceListQuit(t *testing.T) {
	m, cmd := press(NewDeviceListModel(testDevices()), "q")
	if m.Selected != nil || cmd == nil {
		t.Error("q should quit without a selection")
	}
}

func TestDeviceListView(t *testing.T) {
	view := NewDeviceListModel(testDevices()).View()
	for _, want := range []string{"Select Media Device", "/dev/media1", "rp1-cfe", "7 entities, 14 links", "Failed to enumerate", "[2/3]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
