package pipeline

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/mediatopo/pkg/cache"
	"github.com/matzehuels/mediatopo/pkg/errors"
	"github.com/matzehuels/mediatopo/pkg/mediactl"
	"github.com/matzehuels/mediatopo/pkg/observability"
	"github.com/matzehuels/mediatopo/pkg/render/nodelink"
	"github.com/matzehuels/mediatopo/pkg/topology"
)

// cacheKeyType labels artifact cache events for the observability hooks.
const cacheKeyType = "artifact"

// Runner encapsulates pipeline execution with caching.
// Both the CLI and the HTTP server use it.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// Renderer overrides the engine selected by Options.Engine.
	Renderer RenderFunc
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete pipeline against src.
//
// With opts.Output set, the requested formats are written next to each
// other (see [Options.OutputPath]). A render failure returns a
// RENDER_FAILED or RENDERER_MISSING error and leaves the DOT file on disk.
func (r *Runner) Execute(ctx context.Context, src mediactl.Source, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &Result{
		ID:        uuid.NewString(),
		Source:    src.Name(),
		Artifacts: make(map[string][]byte),
		Paths:     make(map[string]string),
	}

	// Stage 1: Acquire
	start := time.Now()
	text, err := r.Acquire(ctx, src)
	if err != nil {
		return nil, err
	}
	result.Stats.DumpBytes = len(text)
	result.Stats.AcquireTime = time.Since(start)

	// Stage 2: Parse
	start = time.Now()
	g := r.Parse(ctx, text)
	result.Graph = g
	result.Stats.ParseTime = time.Since(start)
	result.Stats.Entities = len(g.Entities)
	result.Stats.Pads = g.PadCount()
	result.Stats.Links = len(g.Links)

	r.Logger.Info("parsed topology",
		"source", result.Source,
		"entities", result.Stats.Entities,
		"links", result.Stats.Links,
		"duration", result.Stats.ParseTime)

	// Stage 3: Generate
	start = time.Now()
	result.DOT = r.Generate(ctx, g, opts)
	result.DOTHash = cache.Hash([]byte(result.DOT))
	result.Stats.GenerateTime = time.Since(start)
	if opts.WantsDOT() {
		result.Artifacts[FormatDOT] = []byte(result.DOT)
	}

	// Stage 4: WriteDOT
	dotPath := opts.OutputPath(FormatDOT)
	if dotPath != "" {
		if err := WriteDOT(result.DOT, dotPath); err != nil {
			return nil, err
		}
		r.Logger.Debug("wrote DOT file", "path", dotPath)
	}

	// Stage 5: Render
	formats := opts.RenderFormats()
	if len(formats) > 0 {
		start = time.Now()
		keyer := cache.NewScopedKeyer(r.Keyer, cache.DeviceScope(src.Name()))
		artifacts, info, err := r.Render(ctx, keyer, result.DOT, dotPath, opts)
		if err != nil {
			if dotPath != "" {
				r.Logger.Warn("render failed, keeping DOT file", "path", dotPath)
			}
			return nil, err
		}
		result.Stats.RenderTime = time.Since(start)
		result.CacheInfo = info

		for format, data := range artifacts {
			result.Artifacts[format] = data
			if path := opts.OutputPath(format); path != "" {
				if err := os.WriteFile(path, data, 0o644); err != nil {
					return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
				}
				result.Paths[format] = path
			}
		}

		r.Logger.Info("rendered outputs",
			"formats", formats,
			"engine", opts.Engine,
			"cached", info.RenderHit,
			"duration", result.Stats.RenderTime)
	}

	if dotPath != "" {
		if opts.KeepDOT || opts.WantsDOT() {
			result.Paths[FormatDOT] = dotPath
		} else if err := os.Remove(dotPath); err != nil && !os.IsNotExist(err) {
			r.Logger.Warn("could not remove DOT file", "path", dotPath, "error", err)
		}
	}

	return result, nil
}

// Acquire reads the dump from src.
func (r *Runner) Acquire(ctx context.Context, src mediactl.Source) (string, error) {
	hooks := observability.Pipeline()
	hooks.OnAcquireStart(ctx, src.Name())
	start := time.Now()

	text, err := src.Topology(ctx)
	hooks.OnAcquireComplete(ctx, src.Name(), len(text), time.Since(start), err)
	if err != nil {
		return "", err
	}
	r.Logger.Debug("acquired topology", "source", src.Name(), "bytes", len(text))
	return text, nil
}

// Parse builds the graph. It never fails.
func (r *Runner) Parse(ctx context.Context, text string) *topology.Graph {
	start := time.Now()
	g, stats := topology.ParseWithStats(text)
	observability.Pipeline().OnParseComplete(ctx, len(g.Entities), len(g.Links), time.Since(start))
	r.Logger.Debug("parse stats", "lines", stats.Lines, "ignored", stats.Ignored())
	return g
}

// Generate produces the DOT text for g.
func (r *Runner) Generate(ctx context.Context, g *topology.Graph, opts Options) string {
	start := time.Now()
	dot := nodelink.ToDOT(g, nodelink.Options{Markers: opts.Markers, Detailed: opts.Detailed})
	observability.Pipeline().OnGenerateComplete(ctx, len(dot), time.Since(start))
	return dot
}

// WriteDOT writes the DOT text to path.
func WriteDOT(dot, path string) error {
	if err := os.WriteFile(path, []byte(dot), 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "write DOT file %s", path)
	}
	return nil
}

// Render produces every non-DOT format, serving what it can from the cache.
// dotPath, when set, is the DOT file already on disk for the system engine.
func (r *Runner) Render(ctx context.Context, keyer cache.Keyer, dot, dotPath string, opts Options) (map[string][]byte, CacheInfo, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, CacheInfo{}, err
	}
	if keyer == nil {
		keyer = r.Keyer
	}
	formats := opts.RenderFormats()
	hash := cache.Hash([]byte(dot))
	cacheHooks := observability.Cache()

	artifacts := make(map[string][]byte, len(formats))
	var info CacheInfo
	var missing []string

	for _, format := range formats {
		if !opts.Refresh {
			key := keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				cacheHooks.OnCacheHit(ctx, cacheKeyType)
				artifacts[format] = data
				info.Hits = append(info.Hits, format)
				continue
			}
			cacheHooks.OnCacheMiss(ctx, cacheKeyType)
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		info.RenderHit = true
		return artifacts, info, nil
	}

	renderFn := r.Renderer
	if renderFn == nil {
		renderFn = EngineFor(opts.Engine)
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Engine, missing)
	start := time.Now()
	var renderErr error
	for _, format := range missing {
		data, err := renderFn(ctx, dot, dotPath, format)
		if err != nil {
			renderErr = wrapRenderError(err, format)
			break
		}
		artifacts[format] = data

		key := keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, TTLArtifact); err != nil {
			r.Logger.Debug("cache write failed", "format", format, "error", err)
		} else {
			cacheHooks.OnCacheSet(ctx, cacheKeyType, len(data))
		}
	}
	hooks.OnRenderComplete(ctx, opts.Engine, missing, time.Since(start), renderErr)
	if renderErr != nil {
		return nil, info, renderErr
	}
	return artifacts, info, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// wrapRenderError keeps coded and context errors and marks everything else
// as RENDER_FAILED.
func wrapRenderError(err error, format string) error {
	if errors.GetCode(err) != "" || err == context.Canceled || err == context.DeadlineExceeded {
		return err
	}
	return errors.Wrap(errors.ErrCodeRenderFailed, err, "render %s", format)
}

// String summarizes the result for logs.
func (r *Result) String() string {
	return fmt.Sprintf("%s: %d entities, %d links", r.Source, r.Stats.Entities, r.Stats.Links)
}
