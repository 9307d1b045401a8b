package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/matzehuels/mediatopo/pkg/errors"
	"github.com/matzehuels/mediatopo/pkg/render"
	"github.com/matzehuels/mediatopo/pkg/render/nodelink"
)

// RenderFunc turns DOT text into one output format. dotPath is the DOT file
// on disk, or "" when the text was not written.
type RenderFunc func(ctx context.Context, dot, dotPath, format string) ([]byte, error)

// EngineFor returns the renderer for an engine name; unknown names get the
// in-process engine.
func EngineFor(engine string) RenderFunc {
	if engine == EngineDot {
		return RenderWithDot
	}
	return RenderWithGraphviz
}

// RenderWithGraphviz renders with the embedded Graphviz library.
func RenderWithGraphviz(ctx context.Context, dot, _ string, format string) ([]byte, error) {
	switch format {
	case FormatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case FormatPNG:
		return nodelink.RenderPNG(ctx, dot)
	case FormatPDF:
		return nodelink.RenderPDF(ctx, dot)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "graphviz engine cannot render %q", format)
	}
}

// RenderWithDot renders with the system dot binary. The output goes through
// a temporary directory, which also holds the DOT text when dotPath is "".
func RenderWithDot(ctx context.Context, dot, dotPath, format string) ([]byte, error) {
	tmp, err := os.MkdirTemp("", "mediatopo-*")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create temp dir")
	}
	defer os.RemoveAll(tmp)

	if dotPath == "" {
		dotPath = filepath.Join(tmp, "topology.dot")
		if err := os.WriteFile(dotPath, []byte(dot), 0o600); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "write temp DOT")
		}
	}
	out := filepath.Join(tmp, "out."+format)
	if err := render.Dot(ctx, dotPath, format, out); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(out)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "read %s output", format)
	}
	return data, nil
}
