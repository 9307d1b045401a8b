package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/mediatopo/pkg/cache"
	"github.com/matzehuels/mediatopo/pkg/errors"
	"github.com/matzehuels/mediatopo/pkg/mediactl"
)

const sensorDump = `- entity 1: rs300 10-003c (2 pads, 1 links)
type V4L2 subdev subtype Sensor flags 0
pad0: Source
[fmt:YUYV8_2X8/640x512 field:none]
-> "csi2":0 [ENABLED]
`

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"json", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) wrong code: %v", tt.format, err)
		}
	}
}

func TestValidateEngine(t *testing.T) {
	for _, e := range []string{"graphviz", "dot"} {
		if err := ValidateEngine(e); err != nil {
			t.Errorf("ValidateEngine(%q) = %v", e, err)
		}
	}
	if err := ValidateEngine("neato"); !errors.Is(err, errors.ErrCodeInvalidEngine) {
		t.Errorf("ValidateEngine(neato) = %v, want INVALID_ENGINE", err)
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name        string
		opts        Options
		wantFormats []string
		wantCode    errors.Code
	}{
		{"default format", Options{}, []string{"png"}, ""},
		{"format from output", Options{Output: "topo.svg"}, []string{"svg"}, ""},
		{"dot output", Options{Output: "topo.dot"}, []string{"dot"}, ""},
		{"unknown extension", Options{Output: "topo.txt"}, []string{"png"}, ""},
		{"explicit formats win", Options{Output: "topo.svg", Formats: []string{"png", "dot"}}, []string{"png", "dot"}, ""},
		{"dedupe", Options{Formats: []string{"svg", "SVG", " svg"}}, []string{"svg"}, ""},
		{"bad format", Options{Formats: []string{"gif"}}, nil, errors.ErrCodeInvalidFormat},
		{"bad engine", Options{Engine: "neato"}, nil, errors.ErrCodeInvalidEngine},
		{"bad device", Options{Device: "media0"}, nil, errors.ErrCodeInvalidPath},
		{"input ignores device", Options{Device: "media0", Input: "dump.txt"}, []string{"png"}, ""},
		{"bad output", Options{Output: "out/"}, nil, errors.ErrCodeInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := tt.opts
			err := opts.ValidateAndSetDefaults()
			if tt.wantCode != "" {
				assert.True(t, errors.Is(err, tt.wantCode), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFormats, opts.Formats)
			assert.Equal(t, EngineGraphviz, opts.Engine)
			assert.Equal(t, "rs300", opts.Markers.Sensor)
			assert.NotNil(t, opts.Logger)
		})
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		output, format, want string
	}{
		{"media_topology.png", "dot", "media_topology.dot"},
		{"media_topology.png", "svg", "media_topology.svg"},
		{"out/board", "png", "out/board.png"},
		{"topo.txt", "png", "topo.txt.png"},
		{"", "png", ""},
	}
	for _, tt := range tests {
		o := Options{Output: tt.output}
		assert.Equal(t, tt.want, o.OutputPath(tt.format), "%s/%s", tt.output, tt.format)
	}
}

// fakeRenderer records calls and returns "<format>:<len>" bytes.
type fakeRenderer struct {
	calls []string
	fail  error
}

func (f *fakeRenderer) render(ctx context.Context, dot, dotPath, format string) ([]byte, error) {
	f.calls = append(f.calls, format)
	if f.fail != nil {
		return nil, f.fail
	}
	return []byte(fmt.Sprintf("%s:%d", format, len(dot))), nil
}

func newTestRunner(t *testing.T, c cache.Cache) (*Runner, *fakeRenderer) {
	t.Helper()
	fr := &fakeRenderer{}
	r := NewRunner(c, nil, nil)
	r.Renderer = fr.render
	return r, fr
}

func TestExecute_WritesOutputAndRemovesDOT(t *testing.T) {
	dir := t.TempDir()
	r, fr := newTestRunner(t, nil)
	out := filepath.Join(dir, "media_topology.png")

	res, err := r.Execute(context.Background(), mediactl.Static{Text: sensorDump}, Options{Output: out})
	require.NoError(t, err)

	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "static", res.Source)
	assert.Equal(t, 1, res.Stats.Entities)
	assert.Equal(t, 1, res.Stats.Links)
	assert.Contains(t, res.DOT, "rs300_10_003c -> csi2")
	assert.Equal(t, cache.Hash([]byte(res.DOT)), res.DOTHash)
	assert.Equal(t, []string{"png"}, fr.calls)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "png:"))
	assert.Equal(t, map[string]string{"png": out}, res.Paths)

	_, err = os.Stat(filepath.Join(dir, "media_topology.dot"))
	assert.True(t, os.IsNotExist(err), "DOT file should be removed after a successful render")
}

func TestExecute_KeepDOT(t *testing.T) {
	dir := t.TempDir()
	r, _ := newTestRunner(t, nil)
	out := filepath.Join(dir, "topo.png")

	res, err := r.Execute(context.Background(), mediactl.Static{Text: sensorDump}, Options{Output: out, KeepDOT: true})
	require.NoError(t, err)

	dot, err := os.ReadFile(filepath.Join(dir, "topo.dot"))
	require.NoError(t, err)
	assert.Equal(t, res.DOT, string(dot))
	assert.Equal(t, filepath.Join(dir, "topo.dot"), res.Paths["dot"])
}

func TestExecute_DOTOnly(t *testing.T) {
	dir := t.TempDir()
	r, fr := newTestRunner(t, nil)

	res, err := r.Execute(context.Background(), mediactl.Static{Text: sensorDump}, Options{Output: filepath.Join(dir, "topo.dot")})
	require.NoError(t, err)

	assert.Empty(t, fr.calls, "DOT output needs no engine")
	assert.Equal(t, res.DOT, string(res.Artifacts["dot"]))
	_, err = os.Stat(filepath.Join(dir, "topo.dot"))
	assert.NoError(t, err)
}

func TestExecute_RenderFailureKeepsDOT(t *testing.T) {
	dir := t.TempDir()
	r, fr := newTestRunner(t, nil)
	fr.fail = fmt.Errorf("syntax error in line 3")

	_, err := r.Execute(context.Background(), mediactl.Static{Text: sensorDump}, Options{Output: filepath.Join(dir, "topo.png")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeRenderFailed), "got %v", err)

	_, statErr := os.Stat(filepath.Join(dir, "topo.dot"))
	assert.NoError(t, statErr, "DOT file must survive a failed render")
	_, statErr = os.Stat(filepath.Join(dir, "topo.png"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestExecute_CodedRenderErrorPassesThrough(t *testing.T) {
	r, fr := newTestRunner(t, nil)
	fr.fail = errors.New(errors.ErrCodeRendererMissing, "dot not installed")

	_, err := r.Execute(context.Background(), mediactl.Static{Text: sensorDump}, Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeRendererMissing), "got %v", err)
}

func TestExecute_AcquireError(t *testing.T) {
	r, fr := newTestRunner(t, nil)
	src := mediactl.Command{Device: "/dev/media0", Binary: filepath.Join(t.TempDir(), "missing")}

	_, err := r.Execute(context.Background(), src, Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeUpstreamUnavailable), "got %v", err)
	assert.Empty(t, fr.calls)
}

func TestExecute_InMemory(t *testing.T) {
	r, _ := newTestRunner(t, nil)

	res, err := r.Execute(context.Background(), mediactl.Static{Text: sensorDump}, Options{Formats: []string{"svg", "dot", "png"}})
	require.NoError(t, err)
	assert.Len(t, res.Artifacts, 3)
	assert.Empty(t, res.Paths)
}

func TestExecute_Cache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	r, fr := newTestRunner(t, c)
	src := mediactl.Static{Label: "/dev/media1", Text: sensorDump}
	opts := Options{Formats: []string{"svg", "png"}}

	first, err := r.Execute(context.Background(), src, opts)
	require.NoError(t, err)
	assert.False(t, first.CacheInfo.RenderHit)
	assert.Len(t, fr.calls, 2)

	second, err := r.Execute(context.Background(), src, opts)
	require.NoError(t, err)
	assert.True(t, second.CacheInfo.RenderHit)
	assert.ElementsMatch(t, []string{"svg", "png"}, second.CacheInfo.Hits)
	assert.Len(t, fr.calls, 2, "cached formats are not re-rendered")
	assert.Equal(t, first.Artifacts, second.Artifacts)
	assert.NotEqual(t, first.ID, second.ID)

	refresh := opts
	refresh.Refresh = true
	_, err = r.Execute(context.Background(), src, refresh)
	require.NoError(t, err)
	assert.Len(t, fr.calls, 4, "refresh bypasses the cache")

	other := Options{Formats: []string{"svg"}, Engine: EngineDot}
	_, err = r.Execute(context.Background(), src, other)
	require.NoError(t, err)
	assert.Len(t, fr.calls, 5, "engine is part of the cache key")
}

func TestSourceFor(t *testing.T) {
	src, err := SourceFor(context.Background(), Options{Input: "dump.txt", Device: "/dev/media2"})
	require.NoError(t, err)
	assert.Equal(t, mediactl.File{Path: "dump.txt"}, src)

	src, err = SourceFor(context.Background(), Options{Device: "/dev/media2", MediaCtl: "/usr/bin/media-ctl"})
	require.NoError(t, err)
	assert.Equal(t, mediactl.Command{Device: "/dev/media2", Binary: "/usr/bin/media-ctl"}, src)
}

func TestRenderWithGraphviz(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping graphviz render in short mode")
	}
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), mediactl.Static{Text: sensorDump}, Options{Formats: []string{"svg"}})
	require.NoError(t, err)
	assert.Contains(t, string(res.Artifacts["svg"]), "<svg")
	assert.Contains(t, string(res.Artifacts["svg"]), "MediaTopology")
}

func TestRenderWithGraphviz_Unsupported(t *testing.T) {
	_, err := RenderWithGraphviz(context.Background(), "digraph{}", "", "dot")
	assert.True(t, errors.Is(err, errors.ErrCodeUnsupported))
}
