package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/mediatopo/pkg/topology"
)

// ReadJSON decodes a JSON document from r into a graph.
//
// ReadJSON returns an error if the JSON is malformed, a pad has an unknown
// direction, or a pad references a link index that does not exist. Each
// link is attached to at most one pad; a second reference is an error.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*topology.Graph, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return fromDocument(doc)
}

// ReadYAML decodes a YAML document from r into a graph, with the same
// checks as [ReadJSON].
func ReadYAML(r io.Reader) (*topology.Graph, error) {
	var doc document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return fromDocument(doc)
}

// ImportFile reads a document from path, choosing the decoder by extension.
func ImportFile(path string) (*topology.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if EncodingFor(path) == EncodingYAML {
		return ReadYAML(f)
	}
	return ReadJSON(f)
}

func fromDocument(doc document) (*topology.Graph, error) {
	g := topology.NewGraph()
	for _, l := range doc.Links {
		lk := l.Link
		g.Links = append(g.Links, &lk)
	}

	owned := make(map[int]bool, len(g.Links))
	for _, e := range doc.Entities {
		ent := topology.NewEntity(e.ID, e.Name)
		if e.Type != "" {
			ent.Type = e.Type
		}
		ent.DeviceNode = e.DeviceNode
		for _, p := range e.Pads {
			if p.Direction != topology.Source && p.Direction != topology.Sink {
				return nil, fmt.Errorf("entity %d pad %d: unknown direction %q", e.ID, p.ID, p.Direction)
			}
			pd := &topology.Pad{ID: p.ID, Direction: p.Direction, Format: p.Format}
			for _, i := range p.Links {
				if i < 0 || i >= len(g.Links) {
					return nil, fmt.Errorf("entity %d pad %d: link index %d out of range", e.ID, p.ID, i)
				}
				if owned[i] {
					return nil, fmt.Errorf("entity %d pad %d: link %d already attached to another pad", e.ID, p.ID, i)
				}
				owned[i] = true
				pd.Links = append(pd.Links, g.Links[i])
			}
			ent.Pads[p.ID] = pd
		}
		g.Entities[e.ID] = ent
	}
	return g, nil
}
