package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/mediatopo/pkg/render/nodelink"
	"github.com/matzehuels/mediatopo/pkg/topology"
)

// Encoding names accepted by [Write] and [EncodingFor].
const (
	EncodingJSON = "json"
	EncodingYAML = "yaml"
)

type document struct {
	Entities []entity `json:"entities" yaml:"entities"`
	Links    []link   `json:"links" yaml:"links"`
}

type entity struct {
	ID         int    `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type" yaml:"type"`
	DeviceNode string `json:"device_node,omitempty" yaml:"device_node,omitempty"`
	Class      string `json:"class,omitempty" yaml:"class,omitempty"`
	Pads       []pad  `json:"pads" yaml:"pads"`
}

type pad struct {
	ID        int                `json:"id" yaml:"id"`
	Direction topology.Direction `json:"direction" yaml:"direction"`
	Format    string             `json:"format,omitempty" yaml:"format,omitempty"`
	Links     []int              `json:"links,omitempty" yaml:"links,omitempty,flow"`
}

type link struct {
	topology.Link `yaml:",inline"`
	State         string `json:"state,omitempty" yaml:"state,omitempty"`
}

// toDocument flattens g. Markers drive the derived "class" field.
func toDocument(g *topology.Graph, markers nodelink.Markers) document {
	markers = markers.WithDefaults()
	index := make(map[*topology.Link]int, len(g.Links))
	doc := document{Entities: []entity{}, Links: make([]link, len(g.Links))}
	for i, l := range g.Links {
		index[l] = i
		doc.Links[i] = link{Link: *l, State: l.State().String()}
	}

	for _, e := range g.SortedEntities() {
		out := entity{
			ID:         e.ID,
			Name:       e.Name,
			Type:       e.Type,
			DeviceNode: e.DeviceNode,
			Class:      nodelink.Classify(e, markers).String(),
			Pads:       []pad{},
		}
		for _, id := range e.PadIDs() {
			p := e.Pads[id]
			pd := pad{ID: p.ID, Direction: p.Direction, Format: p.Format}
			for _, l := range p.Links {
				if i, ok := index[l]; ok {
					pd.Links = append(pd.Links, i)
				}
			}
			out.Pads = append(out.Pads, pd)
		}
		doc.Entities = append(doc.Entities, out)
	}
	return doc
}

// WriteJSON encodes g as indented JSON and writes it to w.
func WriteJSON(g *topology.Graph, markers nodelink.Markers, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(toDocument(g, markers)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes g as YAML and writes it to w.
func WriteYAML(g *topology.Graph, markers nodelink.Markers, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toDocument(g, markers)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// Write encodes g in the named encoding ("json" or "yaml").
func Write(g *topology.Graph, markers nodelink.Markers, encoding string, w io.Writer) error {
	switch encoding {
	case EncodingJSON:
		return WriteJSON(g, markers, w)
	case EncodingYAML:
		return WriteYAML(g, markers, w)
	default:
		return fmt.Errorf("unknown encoding %q", encoding)
	}
}

// EncodingFor returns the encoding implied by a file extension, defaulting
// to JSON.
func EncodingFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return EncodingYAML
	default:
		return EncodingJSON
	}
}

// ExportFile writes g to path, choosing the encoding by extension.
func ExportFile(g *topology.Graph, markers nodelink.Markers, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(g, markers, EncodingFor(path), f)
}
