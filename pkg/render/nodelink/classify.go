package nodelink

import (
	"regexp"
	"strings"

	"github.com/matzehuels/mediatopo/pkg/topology"
)

// Markers are the name tokens and device prefix that decide node classes.
type Markers struct {
	Sensor      string `toml:"sensor" json:"sensor"`
	Bridge      string `toml:"bridge" json:"bridge"`
	Capture     string `toml:"capture" json:"capture"`
	VideoPrefix string `toml:"video_prefix" json:"video_prefix"`
}

// DefaultMarkers returns the markers for an RS300 thermal sensor behind the
// Raspberry Pi 5 RP1 CSI-2 front end.
func DefaultMarkers() Markers {
	return Markers{
		Sensor:      "rs300",
		Bridge:      "csi2",
		Capture:     "rp1-cfe",
		VideoPrefix: "/dev/video",
	}
}

// WithDefaults fills empty fields from [DefaultMarkers].
func (m Markers) WithDefaults() Markers {
	d := DefaultMarkers()
	if m.Sensor == "" {
		m.Sensor = d.Sensor
	}
	if m.Bridge == "" {
		m.Bridge = d.Bridge
	}
	if m.Capture == "" {
		m.Capture = d.Capture
	}
	if m.VideoPrefix == "" {
		m.VideoPrefix = d.VideoPrefix
	}
	return m
}

// NodeClass is the visual class of an entity.
type NodeClass int

const (
	ClassOther NodeClass = iota
	ClassSensor
	ClassBridge
	ClassCapture
	ClassVideo
)

var classNames = [...]string{"other", "sensor", "bridge", "capture", "video"}

func (c NodeClass) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "unknown"
}

// FillColor returns the Graphviz fill colour for the class.
func (c NodeClass) FillColor() string {
	switch c {
	case ClassSensor:
		return "lightblue"
	case ClassBridge:
		return "lightcyan"
	case ClassCapture:
		return "lightgreen"
	case ClassVideo:
		return "lightyellow"
	default:
		return "white"
	}
}

// Shape returns the Graphviz node shape for the class.
func (c NodeClass) Shape() string {
	switch c {
	case ClassSensor:
		return "doubleoctagon"
	case ClassBridge:
		return "hexagon"
	case ClassVideo:
		return "oval"
	default:
		return "box"
	}
}

// ShowsFormats reports whether pad formats are listed in the node label.
func (c NodeClass) ShowsFormats() bool {
	return c == ClassSensor || c == ClassBridge
}

// Classify returns the class of e. Name markers are tested case-insensitively
// in priority order sensor, bridge, capture; the device-node prefix comes
// last. An empty marker never matches.
func Classify(e *topology.Entity, m Markers) NodeClass {
	name := strings.ToLower(e.Name)
	switch {
	case containsFold(name, m.Sensor):
		return ClassSensor
	case containsFold(name, m.Bridge):
		return ClassBridge
	case containsFold(name, m.Capture):
		return ClassCapture
	case m.VideoPrefix != "" && strings.HasPrefix(e.DeviceNode, m.VideoPrefix):
		return ClassVideo
	default:
		return ClassOther
	}
}

func containsFold(lowerName, marker string) bool {
	return marker != "" && strings.Contains(lowerName, strings.ToLower(marker))
}

// EdgeStyle holds the Graphviz attributes of one link.
type EdgeStyle struct {
	Color    string
	Style    string
	PenWidth int
}

// EdgeStyleFor maps a raw link status to edge attributes.
func EdgeStyleFor(status string) EdgeStyle {
	switch topology.StateOf(status) {
	case topology.LinkEnabled:
		return EdgeStyle{Color: "green", Style: "solid", PenWidth: 2}
	case topology.LinkDisabled:
		return EdgeStyle{Color: "red", Style: "dashed", PenWidth: 1}
	default:
		return EdgeStyle{Color: "gray", Style: "dotted", PenWidth: 1}
	}
}

var formatRe = regexp.MustCompile(`fmt:([^/\s]+)/([^/\s\]]+)`)

// ParseFormat extracts the media-bus code and frame size from a pad format
// line such as "[fmt:YUYV8_2X8/640x512 field:none]". ok is false when the
// line has no "fmt:<code>/<size>" segment.
func ParseFormat(format string) (codec, resolution string, ok bool) {
	m := formatRe.FindStringSubmatch(format)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

var invalidIDChars = regexp.MustCompile(`[^A-Za-z0-9_]`)

// SanitizeID maps an entity name to a DOT node identifier. Every character
// outside [A-Za-z0-9_] becomes '_', a leading digit gets the "entity_"
// prefix, and an empty name maps to "unknown". The mapping depends only on
// name, so links to the same peer always meet at the same node.
func SanitizeID(name string) string {
	id := invalidIDChars.ReplaceAllString(name, "_")
	if id == "" {
		return "unknown"
	}
	if id[0] >= '0' && id[0] <= '9' {
		id = "entity_" + id
	}
	return id
}
