package render

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/matzehuels/mediatopo/pkg/errors"
)

// DotBinary is the Graphviz layout engine used by [Dot].
const DotBinary = "dot"

// Formats accepted by [Dot].
var dotFormats = map[string]bool{"svg": true, "png": true, "pdf": true}

// ToPDF converts SVG bytes to PDF using rsvg-convert.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return rsvgConvert(ctx, svg, "pdf")
}

// Dot renders the DOT file at dotPath to outPath with the system Graphviz
// binary, equivalent to "dot -T<format> <dotPath> -o <outPath>".
func Dot(ctx context.Context, dotPath, format, outPath string) error {
	if !dotFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "dot cannot render %q", format)
	}
	bin, err := exec.LookPath(DotBinary)
	if err != nil {
		return errors.Wrap(errors.ErrCodeRendererMissing, err,
			"%s export requires Graphviz. Install with:\n  macOS:  brew install graphviz\n  Linux:  apt install graphviz", format)
	}

	cmd := exec.CommandContext(ctx, bin, "-T"+format, dotPath, "-o", outPath)
	var errBuf bytes.Buffer
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "dot -T%s: %s", format, strings.TrimSpace(errBuf.String()))
	}
	return nil
}

func rsvgConvert(ctx context.Context, svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return nil, errors.New(errors.ErrCodeRendererMissing,
			"%s export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.CommandContext(ctx, "rsvg-convert", args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "rsvg-convert: %s", strings.TrimSpace(errBuf.String()))
	}
	return out.Bytes(), nil
}
