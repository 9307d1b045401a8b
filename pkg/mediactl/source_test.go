package mediactl

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/mediatopo/pkg/errors"
)

const fixturePath = "../topology/testdata/rp1_cfe_rs300.txt"

// fakeMediaCtl writes a shell script that behaves like media-ctl: it prints
// the fixture for devices ending in "1", prints nothing for devices ending
// in "2" and fails for everything else.
func fakeMediaCtl(t *testing.T) string {
	t.Helper()
	fixture, err := filepath.Abs(fixturePath)
	require.NoError(t, err)

	script := `#!/bin/sh
case "$2" in
  *1) cat "` + fixture + `" ;;
  *2) exit 0 ;;
  *) echo "Failed to enumerate $2" >&2; exit 1 ;;
esac
`
	bin := filepath.Join(t.TempDir(), "media-ctl")
	require.NoError(t, os.WriteFile(bin, []byte(script), 0o755))
	return bin
}

func TestCommand_Topology(t *testing.T) {
	bin := fakeMediaCtl(t)

	text, err := Command{Device: "/dev/media1", Binary: bin}.Topology(context.Background())
	require.NoError(t, err)
	assert.Contains(t, text, DefaultMarker)
}

func TestCommand_Failures(t *testing.T) {
	bin := fakeMediaCtl(t)

	tests := []struct {
		name string
		cmd  Command
		want string
	}{
		{"non-zero exit", Command{Device: "/dev/media0", Binary: bin}, "Failed to enumerate"},
		{"empty dump", Command{Device: "/dev/media2", Binary: bin}, "printed no topology"},
		{"missing binary", Command{Device: "/dev/media0", Binary: filepath.Join(t.TempDir(), "nope")}, "v4l-utils"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.cmd.Topology(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeUpstreamUnavailable), "got %v", err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCommand_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Command{Device: "/dev/media1", Binary: fakeMediaCtl(t)}.Topology(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFile_Topology(t *testing.T) {
	text, err := File{Path: fixturePath}.Topology(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "Media controller API version"))

	_, err = File{Path: filepath.Join(t.TempDir(), "missing.txt")}.Topology(context.Background())
	assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound), "got %v", err)
}

func TestFile_Stdin(t *testing.T) {
	f := File{Path: "-", Stdin: strings.NewReader("- entity 1: a (0 pads, 0 links)\n")}
	assert.Equal(t, "stdin", f.Name())

	text, err := f.Topology(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "- entity 1: a (0 pads, 0 links)\n", text)
}

func TestStatic(t *testing.T) {
	s := Static{Text: "x"}
	assert.Equal(t, "static", s.Name())
	text, err := s.Topology(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "x", text)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Topology(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseInfo(t *testing.T) {
	data, err := os.ReadFile(fixturePath)
	require.NoError(t, err)

	info := ParseInfo(string(data))
	assert.Equal(t, Info{
		APIVersion:    "6.6.51",
		Driver:        "rp1-cfe",
		Model:         "rp1-cfe",
		BusInfo:       "platform:1f00128000.csi",
		HWRevision:    "0x114666",
		DriverVersion: "6.6.51",
	}, info)

	assert.Equal(t, Info{}, ParseInfo("- entity 1: a (0 pads, 0 links)"))
}
