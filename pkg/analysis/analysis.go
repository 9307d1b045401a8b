// Package analysis reports on a parsed topology: whether the sensor and
// the CSI-2 receiver agree on a media-bus code, and which links are active.
package analysis

import (
	"fmt"
	"regexp"

	"github.com/matzehuels/mediatopo/pkg/render/nodelink"
	"github.com/matzehuels/mediatopo/pkg/topology"
)

// UnknownCodec is never reported as a mismatch.
const UnknownCodec = "unknown"

// NoStatus describes a link whose status brackets were empty.
const NoStatus = "No status"

var codecRe = regexp.MustCompile(`fmt:([^/\s\]]+)`)

// Codec returns the media-bus code of a pad format line, or "" when the
// line has no fmt: field.
func Codec(format string) string {
	m := codecRe.FindStringSubmatch(format)
	if m == nil {
		return ""
	}
	return m[1]
}

// PadCodec is the media-bus code configured on one pad.
type PadCodec struct {
	Entity string `json:"entity" yaml:"entity"`
	Pad    int    `json:"pad" yaml:"pad"`
	Codec  string `json:"codec" yaml:"codec"`
}

// Mismatch is a bridge pad whose codec differs from the sensor output.
type Mismatch struct {
	Sensor PadCodec `json:"sensor" yaml:"sensor"`
	Bridge PadCodec `json:"bridge" yaml:"bridge"`
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s(%s) != %s pad%d(%s)",
		m.Sensor.Entity, m.Sensor.Codec, m.Bridge.Entity, m.Bridge.Pad, m.Bridge.Codec)
}

// FormatReport is the result of [CheckFormats].
type FormatReport struct {
	// Sensor is the codec on the sensor's source pad; nil when no sensor
	// source pad carries a format.
	Sensor     *PadCodec  `json:"sensor,omitempty" yaml:"sensor,omitempty"`
	Bridge     []PadCodec `json:"bridge" yaml:"bridge"`
	Mismatches []Mismatch `json:"mismatches" yaml:"mismatches"`
}

// OK reports whether no mismatch was found.
func (r FormatReport) OK() bool { return len(r.Mismatches) == 0 }

// CheckFormats compares the sensor's output codec with every codec
// configured on the bridge entities. Entities are classified with
// [nodelink.Classify]. When several sensor source pads carry a format the
// last one in entity and pad order is used. Without a sensor codec nothing
// is compared.
func CheckFormats(g *topology.Graph, markers nodelink.Markers) FormatReport {
	markers = markers.WithDefaults()
	report := FormatReport{Bridge: []PadCodec{}, Mismatches: []Mismatch{}}

	for _, e := range g.SortedEntities() {
		switch nodelink.Classify(e, markers) {
		case nodelink.ClassSensor:
			for _, id := range e.PadIDs() {
				p := e.Pads[id]
				if p.Direction != topology.Source {
					continue
				}
				if c := Codec(p.Format); c != "" {
					report.Sensor = &PadCodec{Entity: e.Name, Pad: id, Codec: c}
				}
			}
		case nodelink.ClassBridge:
			for _, id := range e.PadIDs() {
				if c := Codec(e.Pads[id].Format); c != "" {
					report.Bridge = append(report.Bridge, PadCodec{Entity: e.Name, Pad: id, Codec: c})
				}
			}
		}
	}

	if report.Sensor == nil {
		return report
	}
	for _, b := range report.Bridge {
		if b.Codec != report.Sensor.Codec && b.Codec != UnknownCodec {
			report.Mismatches = append(report.Mismatches, Mismatch{Sensor: *report.Sensor, Bridge: b})
		}
	}
	return report
}

// LinkItem is one line of a [LinkSummary].
type LinkItem struct {
	Description string `json:"description" yaml:"description"`
	Status      string `json:"status" yaml:"status"`
}

func (i LinkItem) String() string {
	return i.Description + " [" + i.Status + "]"
}

// LinkSummary buckets links by state, each in model order.
type LinkSummary struct {
	Enabled  []LinkItem `json:"enabled" yaml:"enabled"`
	Disabled []LinkItem `json:"disabled" yaml:"disabled"`
	Unknown  []LinkItem `json:"unknown" yaml:"unknown"`
}

// Total returns the number of links summarized.
func (s LinkSummary) Total() int {
	return len(s.Enabled) + len(s.Disabled) + len(s.Unknown)
}

// SummarizeLinks splits the graph's links into enabled, disabled and
// unknown buckets. Unknown links with an empty status are reported as
// [NoStatus].
func SummarizeLinks(g *topology.Graph) LinkSummary {
	s := LinkSummary{Enabled: []LinkItem{}, Disabled: []LinkItem{}, Unknown: []LinkItem{}}
	for _, l := range g.Links {
		item := LinkItem{Description: l.String(), Status: l.Status}
		switch l.State() {
		case topology.LinkEnabled:
			s.Enabled = append(s.Enabled, item)
		case topology.LinkDisabled:
			s.Disabled = append(s.Disabled, item)
		default:
			if item.Status == "" {
				item.Status = NoStatus
			}
			s.Unknown = append(s.Unknown, item)
		}
	}
	return s
}
