package cli

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/matzehuels/mediatopo/pkg/analysis"
	"github.com/matzehuels/mediatopo/pkg/mediactl"
)

func TestPrintFormatReport(t *testing.T) {
	sensor := analysis.PadCodec{Entity: "rs300 10-003c", Pad: 0, Codec: "YUYV8_2X8"}
	bridge := analysis.PadCodec{Entity: "csi2", Pad: 4, Codec: "UYVY8_1X16"}

	tests := []struct {
		name   string
		report analysis.FormatReport
		want   []string
	}{
		{
			name:   "no sensor",
			report: analysis.FormatReport{},
			want:   []string{"No sensor source pad"},
		},
		{
			name:   "match",
			report: analysis.FormatReport{Sensor: &sensor, Bridge: []analysis.PadCodec{sensor}},
			want:   []string{"rs300 10-003c pad0: YUYV8_2X8", "Formats match"},
		},
		{
			name: "mismatch",
			report: analysis.FormatReport{
				Sensor:     &sensor,
				Bridge:     []analysis.PadCodec{bridge},
				Mismatches: []analysis.Mismatch{{Sensor: sensor, Bridge: bridge}},
			},
			want: []string{"csi2 pad4: UYVY8_1X16", "Format mismatch: rs300 10-003c(YUYV8_2X8) != csi2 pad4(UYVY8_1X16)"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureStdout(t)
			printFormatReport(tt.report)
			for _, w := range tt.want {
				if !strings.Contains(out.String(), w) {
					t.Errorf("output missing %q:\n%s", w, out.String())
				}
			}
		})
	}
}

func TestPrintLinkSummarySkipsEmptyGroups(t *testing.T) {
	out := captureStdout(t)
	printLinkSummary(analysis.LinkSummary{
		Enabled: []analysis.LinkItem{{Description: "rs300 10-003c:pad0 -> csi2:pad0", Status: "ENABLED"}},
	})

	got := out.String()
	if !strings.Contains(got, "Links (1)") || !strings.Contains(got, "Enabled (1)") {
		t.Errorf("output = %q", got)
	}
	if strings.Contains(got, "Disabled") {
		t.Error("empty groups should be omitted")
	}
}

func TestDeviceTable(t *testing.T) {
	table := deviceTable([]mediactl.Device{
		{Path: "/dev/media0", Err: stderrors.New("boom")},
		{Path: "/dev/media1", Entities: 7, Links: 14, HasMarker: true, Info: mediactl.Info{Driver: "rp1-cfe"}},
	})
	for _, want := range []string{"Device", "/dev/media0", "error", "/dev/media1", "rp1-cfe", "14"} {
		if !strings.Contains(table, want) {
			t.Errorf("table missing %q", want)
		}
	}
}
