package mediactl

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/matzehuels/mediatopo/pkg/errors"
)

// DefaultBinary is the v4l-utils tool that prints the topology.
const DefaultBinary = "media-ctl"

// Source yields a raw topology dump.
type Source interface {
	// Topology returns the full dump text.
	Topology(ctx context.Context) (string, error)
	// Name identifies the source in logs and cache keys.
	Name() string
}

// Command runs media-ctl against a media device.
type Command struct {
	Device string // e.g. /dev/media0
	Binary string // defaults to DefaultBinary
}

// Name returns the device path.
func (c Command) Name() string { return c.Device }

// Topology runs "media-ctl -d <device> --print-topology". A missing binary,
// a failed run or an empty dump are reported as UPSTREAM_UNAVAILABLE.
func (c Command) Topology(ctx context.Context) (string, error) {
	bin := c.Binary
	if bin == "" {
		bin = DefaultBinary
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeUpstreamUnavailable, err,
			"%s not found. Install the v4l-utils package", bin)
	}

	cmd := exec.CommandContext(ctx, path, "-d", c.Device, "--print-topology")
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", errors.Wrap(errors.ErrCodeUpstreamUnavailable, err,
			"%s -d %s: %s", bin, c.Device, strings.TrimSpace(errBuf.String()))
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", errors.New(errors.ErrCodeUpstreamUnavailable, "%s -d %s printed no topology", bin, c.Device)
	}
	return out.String(), nil
}

// File reads a saved dump from disk. Path "-" reads Stdin, or os.Stdin when
// Stdin is nil.
type File struct {
	Path  string
	Stdin io.Reader
}

// Name returns the file path, or "stdin".
func (f File) Name() string {
	if f.Path == "-" {
		return "stdin"
	}
	return f.Path
}

// Topology returns the file contents.
func (f File) Topology(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.Path == "-" {
		r := f.Stdin
		if r == nil {
			r = os.Stdin
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read stdin")
		}
		return string(data), nil
	}

	data, err := os.ReadFile(f.Path)
	if os.IsNotExist(err) {
		return "", errors.Wrap(errors.ErrCodeFileNotFound, err, "topology dump %s", f.Path)
	}
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", f.Path)
	}
	return string(data), nil
}

// Static is an in-memory dump.
type Static struct {
	Label string
	Text  string
}

// Name returns the label, or "static".
func (s Static) Name() string {
	if s.Label == "" {
		return "static"
	}
	return s.Label
}

// Topology returns the stored text.
func (s Static) Topology(ctx context.Context) (string, error) {
	return s.Text, ctx.Err()
}
