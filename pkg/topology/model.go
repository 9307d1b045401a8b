package topology

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// UnknownType is the type descriptor of an entity whose dump carried no
// "type ..." line.
const UnknownType = "unknown"

// Direction is the data-flow direction of a pad.
type Direction string

const (
	// Source pads emit data toward a linked sink.
	Source Direction = "Source"
	// Sink pads receive data from a linked source.
	Sink Direction = "Sink"
)

// LinkState classifies a link by its status flags.
type LinkState int

const (
	// LinkUnknown is a link whose status is empty or carries neither flag.
	LinkUnknown LinkState = iota
	// LinkEnabled is a link whose status contains ENABLED.
	LinkEnabled
	// LinkDisabled is a link whose status contains DISABLED but not ENABLED.
	LinkDisabled
)

// String returns the flag name used in dumps, or "UNKNOWN".
func (s LinkState) String() string {
	switch s {
	case LinkEnabled:
		return "ENABLED"
	case LinkDisabled:
		return "DISABLED"
	default:
		return "UNKNOWN"
	}
}

// StateOf classifies a raw status string. ENABLED is tested before DISABLED,
// so a status carrying both is enabled.
func StateOf(status string) LinkState {
	switch {
	case strings.Contains(status, "ENABLED"):
		return LinkEnabled
	case strings.Contains(status, "DISABLED"):
		return LinkDisabled
	default:
		return LinkUnknown
	}
}

// Link is a directed edge between two (entity name, pad id) endpoints.
// Status is the raw text between the brackets, e.g. "ENABLED,IMMUTABLE".
type Link struct {
	SourceEntity string `json:"source_entity" yaml:"source_entity"`
	SourcePad    int    `json:"source_pad" yaml:"source_pad"`
	SinkEntity   string `json:"sink_entity" yaml:"sink_entity"`
	SinkPad      int    `json:"sink_pad" yaml:"sink_pad"`
	Status       string `json:"status" yaml:"status"`
}

// State classifies the link status. See [StateOf].
func (l *Link) State() LinkState { return StateOf(l.Status) }

// Enabled reports whether the status contains ENABLED.
func (l *Link) Enabled() bool { return l.State() == LinkEnabled }

// Disabled reports whether the link is classified as disabled.
func (l *Link) Disabled() bool { return l.State() == LinkDisabled }

// String formats the link as "src:padN -> sink:padM".
func (l *Link) String() string {
	return fmt.Sprintf("%s:pad%d -> %s:pad%d", l.SourceEntity, l.SourcePad, l.SinkEntity, l.SinkPad)
}

// Pad is a connection point on an entity.
//
// Links holds the links recorded while this pad was current in the dump. A
// link appears on at most one pad even though it has two endpoints.
type Pad struct {
	ID        int       `json:"id" yaml:"id"`
	Direction Direction `json:"direction" yaml:"direction"`
	Format    string    `json:"format,omitempty" yaml:"format,omitempty"`
	Links     []*Link   `json:"-" yaml:"-"`
}

// Entity is a processing node of the media pipeline.
type Entity struct {
	ID         int          `json:"id" yaml:"id"`
	Name       string       `json:"name" yaml:"name"`
	Type       string       `json:"type" yaml:"type"`
	DeviceNode string       `json:"device_node,omitempty" yaml:"device_node,omitempty"`
	Pads       map[int]*Pad `json:"pads" yaml:"pads"`
}

// NewEntity returns an entity with an initialised pad map and the
// [UnknownType] descriptor.
func NewEntity(id int, name string) *Entity {
	return &Entity{ID: id, Name: name, Type: UnknownType, Pads: make(map[int]*Pad)}
}

// PadIDs returns the entity's pad ids in ascending order.
func (e *Entity) PadIDs() []int {
	return slices.Sorted(maps.Keys(e.Pads))
}

// Graph is the parsed topology: entities keyed by id, links in dump order.
//
// The zero value is not usable; use [NewGraph].
type Graph struct {
	Entities map[int]*Entity `json:"entities" yaml:"entities"`
	Links    []*Link         `json:"links" yaml:"links"`
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{Entities: make(map[int]*Entity)}
}

// EntityIDs returns the entity ids in ascending order. This is the iteration
// order used by every consumer that needs deterministic output.
func (g *Graph) EntityIDs() []int {
	return slices.Sorted(maps.Keys(g.Entities))
}

// SortedEntities returns the entities in id order.
func (g *Graph) SortedEntities() []*Entity {
	ids := g.EntityIDs()
	out := make([]*Entity, len(ids))
	for i, id := range ids {
		out[i] = g.Entities[id]
	}
	return out
}

// EntityByName returns the lowest-id entity with the given name, or nil if
// the name is only known from link records.
func (g *Graph) EntityByName(name string) *Entity {
	for _, id := range g.EntityIDs() {
		if e := g.Entities[id]; e.Name == name {
			return e
		}
	}
	return nil
}

// PadCount returns the number of pads across all entities.
func (g *Graph) PadCount() int {
	n := 0
	for _, e := range g.Entities {
		n += len(e.Pads)
	}
	return n
}
