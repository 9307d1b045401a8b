package topology

import (
	"io"
	"regexp"
	"strconv"
	"strings"
)

// LineKind identifies which rule consumed a line.
type LineKind int

const (
	LineIgnored LineKind = iota
	LineEntity
	LineType
	LineDeviceNode
	LinePad
	LineFormat
	LineLink
)

var lineKindNames = [...]string{"ignored", "entity", "type", "device-node", "pad", "format", "link"}

func (k LineKind) String() string {
	if int(k) < len(lineKindNames) {
		return lineKindNames[k]
	}
	return "LineKind(" + strconv.Itoa(int(k)) + ")"
}

const (
	typePrefix       = "type "
	deviceNodePrefix = "device node name "
	formatPrefix     = "[fmt:"
)

var (
	entityRe = regexp.MustCompile(`^- entity (\d+): (.+?) \((\d+) pads?, (\d+) links?\)`)
	padRe    = regexp.MustCompile(`^pad(\d+): (Source|Sink)`)
	linkRe   = regexp.MustCompile(`^(->|<-) "([^"]+)":(\d+) \[([^\]]*)\]`)
)

// State is the parser's cursor state between lines.
//
// Entity is the entity whose header was matched last. Pad is the pad whose
// header was matched last under Entity; a new entity header clears it.
type State struct {
	Graph  *Graph
	Entity *Entity
	Pad    *Pad
}

// NewState returns the state before the first line: an empty graph and no
// open entity or pad.
func NewState() State {
	return State{Graph: NewGraph()}
}

// rule is one row of the dispatch table. match returns the captures for a
// line it accepts in the given state, or ok=false.
type rule struct {
	kind  LineKind
	match func(st State, line string) (caps []string, ok bool)
	apply func(st State, line string, caps []string) State
}

// rules is evaluated top to bottom; the first match wins.
var rules = []rule{
	{LineEntity, matchEntity, applyEntity},
	{LineType, matchType, applyType},
	{LineDeviceNode, matchDeviceNode, applyDeviceNode},
	{LinePad, matchPad, applyPad},
	{LineFormat, matchFormat, applyFormat},
	{LineLink, matchLink, applyLink},
}

// Step consumes one line. The line is trimmed before matching; blank and
// unrecognised lines leave the state unchanged.
func Step(st State, line string) State {
	st, _ = step(st, line)
	return st
}

// Classify reports which rule would consume line in the given state,
// without applying it.
func Classify(st State, line string) LineKind {
	line = strings.TrimSpace(line)
	if line == "" {
		return LineIgnored
	}
	for _, r := range rules {
		if _, ok := r.match(st, line); ok {
			return r.kind
		}
	}
	return LineIgnored
}

func step(st State, line string) (State, LineKind) {
	line = strings.TrimSpace(line)
	if line == "" {
		return st, LineIgnored
	}
	if st.Graph == nil {
		st.Graph = NewGraph()
	}
	for _, r := range rules {
		if caps, ok := r.match(st, line); ok {
			return r.apply(st, line, caps), r.kind
		}
	}
	return st, LineIgnored
}

// Parse builds a graph from the complete text of a topology dump. It never
// fails; worst case the graph is empty or partial.
func Parse(text string) *Graph {
	st := NewState()
	for _, line := range strings.Split(text, "\n") {
		st = Step(st, line)
	}
	return st.Graph
}

// Stats counts the lines consumed by each rule during a parse.
type Stats struct {
	Lines  int
	ByKind map[LineKind]int
}

// Ignored returns the number of lines no rule accepted, blank lines included.
func (s Stats) Ignored() int { return s.ByKind[LineIgnored] }

// ParseWithStats is [Parse] plus per-rule line counts. Blank lines count
// toward Lines and LineIgnored.
func ParseWithStats(text string) (*Graph, Stats) {
	st := NewState()
	stats := Stats{ByKind: make(map[LineKind]int)}
	for _, line := range strings.Split(text, "\n") {
		var kind LineKind
		st, kind = step(st, line)
		stats.Lines++
		stats.ByKind[kind]++
	}
	return st.Graph, stats
}

// ParseReader reads r to the end and parses it. Only read errors are returned.
func ParseReader(r io.Reader) (*Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(string(data)), nil
}

func matchEntity(_ State, line string) ([]string, bool) {
	m := entityRe.FindStringSubmatch(line)
	return m, m != nil
}

// applyEntity opens a new entity. A header whose id does not fit an int
// still closes the previous entity, so the pads and links below it are
// dropped instead of landing on the wrong entity.
func applyEntity(st State, _ string, m []string) State {
	st.Entity = nil
	st.Pad = nil
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return st
	}
	e := NewEntity(id, m[2])
	st.Graph.Entities[id] = e
	st.Entity = e
	return st
}

func matchType(st State, line string) ([]string, bool) {
	return nil, st.Entity != nil && strings.HasPrefix(line, typePrefix)
}

func applyType(st State, line string, _ []string) State {
	st.Entity.Type = line
	return st
}

func matchDeviceNode(st State, line string) ([]string, bool) {
	return nil, st.Entity != nil && strings.HasPrefix(line, deviceNodePrefix)
}

func applyDeviceNode(st State, line string, _ []string) State {
	st.Entity.DeviceNode = strings.TrimPrefix(line, deviceNodePrefix)
	return st
}

func matchPad(st State, line string) ([]string, bool) {
	if st.Entity == nil {
		return nil, false
	}
	m := padRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	if _, err := strconv.Atoi(m[1]); err != nil {
		return nil, false
	}
	return m, true
}

func applyPad(st State, _ string, m []string) State {
	id, _ := strconv.Atoi(m[1])
	p := &Pad{ID: id, Direction: Direction(m[2])}
	st.Entity.Pads[id] = p
	st.Pad = p
	return st
}

func matchFormat(st State, line string) ([]string, bool) {
	return nil, st.Pad != nil && strings.HasPrefix(line, formatPrefix)
}

func applyFormat(st State, line string, _ []string) State {
	st.Pad.Format = line
	return st
}

func matchLink(st State, line string) ([]string, bool) {
	if st.Entity == nil || st.Pad == nil {
		return nil, false
	}
	m := linkRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	if _, err := strconv.Atoi(m[3]); err != nil {
		return nil, false
	}
	return m, true
}

func applyLink(st State, _ string, m []string) State {
	peerPad, _ := strconv.Atoi(m[3])
	var l *Link
	if m[1] == "->" {
		l = &Link{
			SourceEntity: st.Entity.Name,
			SourcePad:    st.Pad.ID,
			SinkEntity:   m[2],
			SinkPad:      peerPad,
			Status:       m[4],
		}
	} else {
		l = &Link{
			SourceEntity: m[2],
			SourcePad:    peerPad,
			SinkEntity:   st.Entity.Name,
			SinkPad:      st.Pad.ID,
			Status:       m[4],
		}
	}
	st.Graph.Links = append(st.Graph.Links, l)
	st.Pad.Links = append(st.Pad.Links, l)
	return st
}
