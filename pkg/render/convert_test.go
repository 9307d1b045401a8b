package render

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/matzehuels/mediatopo/pkg/errors"
)

func TestDot_RejectsFormat(t *testing.T) {
	err := Dot(context.Background(), "in.dot", "gif", "out.gif")
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Fatalf("Dot(gif) error = %v, want INVALID_FORMAT", err)
	}
}

func TestDot_MissingBinary(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	err := Dot(context.Background(), "in.dot", "png", "out.png")
	if !errors.Is(err, errors.ErrCodeRendererMissing) {
		t.Fatalf("Dot() error = %v, want RENDERER_MISSING", err)
	}
}

func TestToPDF_MissingBinary(t *testing.T) {
	t.Setenv("PATH", t.TempDir())
	_, err := ToPDF(context.Background(), []byte("<svg/>"))
	if !errors.Is(err, errors.ErrCodeRendererMissing) {
		t.Fatalf("ToPDF() error = %v, want RENDERER_MISSING", err)
	}
}

func TestDot_Renders(t *testing.T) {
	if _, err := exec.LookPath(DotBinary); err != nil {
		t.Skip("graphviz not installed")
	}
	dir := t.TempDir()
	in := filepath.Join(dir, "t.dot")
	out := filepath.Join(dir, "t.svg")
	if err := os.WriteFile(in, []byte("digraph T { a -> b; }\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Dot(context.Background(), in, "svg", out); err != nil {
		t.Fatalf("Dot() error = %v", err)
	}
	if fi, err := os.Stat(out); err != nil || fi.Size() == 0 {
		t.Fatalf("output missing or empty: %v", err)
	}
}

func TestDot_BadInput(t *testing.T) {
	if _, err := exec.LookPath(DotBinary); err != nil {
		t.Skip("graphviz not installed")
	}
	dir := t.TempDir()
	in := filepath.Join(dir, "broken.dot")
	if err := os.WriteFile(in, []byte("digraph {{{"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := Dot(context.Background(), in, "png", filepath.Join(dir, "out.png"))
	if !errors.Is(err, errors.ErrCodeRenderFailed) {
		t.Fatalf("Dot() error = %v, want RENDER_FAILED", err)
	}
}
