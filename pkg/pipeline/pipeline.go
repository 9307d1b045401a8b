// Package pipeline provides the topology visualization pipeline.
//
// This package implements the complete acquire → parse → generate → render
// pipeline shared by the CLI commands and the HTTP server, so every entry
// point writes the same files and applies the same cache and cleanup rules.
//
// # Architecture
//
// The pipeline consists of five stages:
//
//  1. Acquire: obtain the dump from a [mediactl.Source]
//  2. Parse: build the [topology.Graph]
//  3. Generate: produce DOT text with [nodelink.ToDOT]
//  4. WriteDOT: write <output>.dot next to the requested outputs
//  5. Render: run the layout engine for every non-DOT format
//
// After a successful render the DOT file is removed again unless
// [Options.KeepDOT] is set or "dot" is itself a requested format. When the
// engine fails the DOT file stays behind for inspection.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	src, err := pipeline.SourceFor(ctx, opts)
//	result, err := runner.Execute(ctx, src, opts)
//	png := result.Artifacts["png"]
//
// [mediactl.Source]: github.com/matzehuels/mediatopo/pkg/mediactl.Source
// [topology.Graph]: github.com/matzehuels/mediatopo/pkg/topology.Graph
// [nodelink.ToDOT]: github.com/matzehuels/mediatopo/pkg/render/nodelink.ToDOT
package pipeline

import (
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mediatopo/pkg/cache"
	"github.com/matzehuels/mediatopo/pkg/errors"
	"github.com/matzehuels/mediatopo/pkg/render/nodelink"
	"github.com/matzehuels/mediatopo/pkg/topology"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultOutput is the output file written when none is given.
	DefaultOutput = "media_topology.png"

	// DefaultDevice is used when discovery finds no marked device.
	DefaultDevice = "/dev/media0"

	// TTLArtifact is how long rendered artifacts stay cached.
	TTLArtifact = 7 * 24 * time.Hour
)

// Format constants for output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// Engine constants for layout engines.
const (
	EngineGraphviz = "graphviz" // in-process go-graphviz
	EngineDot      = "dot"      // system Graphviz binary
)

// DefaultFormat is the output format used when none is requested.
const DefaultFormat = FormatPNG

// DefaultEngine is the default layout engine.
const DefaultEngine = EngineGraphviz

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
	FormatPNG: true,
	FormatPDF: true,
}

// ValidEngines is the set of supported layout engines.
var ValidEngines = map[string]bool{
	EngineGraphviz: true,
	EngineDot:      true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the visualization pipeline.
type Options struct {
	// Source options
	Device   string `json:"device,omitempty"`    // media device; discovered when empty
	Input    string `json:"input,omitempty"`     // saved dump, "-" for stdin; overrides Device
	MediaCtl string `json:"media_ctl,omitempty"` // media-ctl binary
	Marker   string `json:"marker,omitempty"`    // discovery marker

	// Output options. With an empty Output nothing is written to disk and
	// the artifacts are only returned.
	Output   string           `json:"output,omitempty"`
	Formats  []string         `json:"formats,omitempty"`
	Engine   string           `json:"engine,omitempty"`
	KeepDOT  bool             `json:"keep_dot,omitempty"`
	Detailed bool             `json:"detailed,omitempty"`
	Markers  nodelink.Markers `json:"markers"`
	Refresh  bool             `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// ID identifies this snapshot of the topology.
	ID string

	// Source names where the dump came from.
	Source string

	// Graph is the parsed topology.
	Graph *topology.Graph

	// DOT is the generated graph description and DOTHash its content hash.
	DOT     string
	DOTHash string

	// Artifacts contains rendered outputs keyed by format, including "dot"
	// when requested.
	Artifacts map[string][]byte

	// Paths lists the files left on disk, keyed by format.
	Paths map[string]string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	DumpBytes    int
	Entities     int
	Pads         int
	Links        int
	AcquireTime  time.Duration
	ParseTime    time.Duration
	GenerateTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for the render stage.
type CacheInfo struct {
	RenderHit bool     // Whether all artifacts came from cache
	Hits      []string // Formats served from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: dot, svg, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEngine checks that an engine is valid.
func ValidateEngine(engine string) error {
	if !ValidEngines[engine] {
		return errors.New(errors.ErrCodeInvalidEngine, "invalid engine: %q (must be one of: graphviz, dot)", engine)
	}
	return nil
}

// FormatFromPath returns the format implied by a file extension, or "".
func FormatFromPath(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ValidFormats[ext] {
		return ext
	}
	return ""
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
//
// Without explicit formats the extension of Output decides, falling back to
// [DefaultFormat].
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Device != "" && o.Input == "" {
		if err := errors.ValidateDevicePath(o.Device); err != nil {
			return err
		}
	}
	if o.Output != "" {
		if err := errors.ValidateOutputPath(o.Output); err != nil {
			return err
		}
	}

	if len(o.Formats) == 0 {
		if f := FormatFromPath(o.Output); f != "" {
			o.Formats = []string{f}
		} else {
			o.Formats = []string{DefaultFormat}
		}
	}
	o.Formats = dedupe(o.Formats)
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	if err := ValidateEngine(o.Engine); err != nil {
		return err
	}

	o.Markers = o.Markers.WithDefaults()
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// WantsDOT reports whether the DOT text is itself a requested output.
func (o *Options) WantsDOT() bool {
	return slices.Contains(o.Formats, FormatDOT)
}

// RenderFormats returns the requested formats that need the layout engine.
func (o *Options) RenderFormats() []string {
	var out []string
	for _, f := range o.Formats {
		if f != FormatDOT {
			out = append(out, f)
		}
	}
	return out
}

// OutputPath returns the file written for format: Output with its extension
// replaced. A bare Output without a format extension gets one appended.
func (o *Options) OutputPath(format string) string {
	if o.Output == "" {
		return ""
	}
	base := o.Output
	if FormatFromPath(base) != "" {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return base + "." + format
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Engine: o.Engine,
	}
}

func dedupe(formats []string) []string {
	seen := make(map[string]bool, len(formats))
	out := formats[:0:0]
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
