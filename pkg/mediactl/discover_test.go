package mediactl

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/mediatopo/pkg/errors"
)

// fakeDevices creates placeholder device nodes <dir>/media<i> and returns
// the prefix.
func fakeDevices(t *testing.T, indices ...int) string {
	t.Helper()
	dir := t.TempDir()
	for _, i := range indices {
		path := filepath.Join(dir, "media"+string(rune('0'+i)))
		require.NoError(t, os.WriteFile(path, nil, 0o644))
	}
	return filepath.Join(dir, "media")
}

func TestDiscover(t *testing.T) {
	prefix := fakeDevices(t, 0, 1, 2)
	dev, err := Discover(context.Background(), DiscoverOptions{Prefix: prefix, Binary: fakeMediaCtl(t)})
	require.NoError(t, err)
	assert.Equal(t, prefix+"1", dev)
}

func TestDiscover_StopsAtFirstHit(t *testing.T) {
	prefix := fakeDevices(t, 0, 1, 2, 3)
	var opened []string
	opts := DiscoverOptions{
		Prefix: prefix,
		Open: func(device string) Source {
			opened = append(opened, device)
			return Static{Label: device, Text: "- entity 1: rs300 10-003c (1 pad, 0 links)"}
		},
	}

	dev, err := Discover(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, prefix+"0", dev)
	assert.Equal(t, []string{prefix + "0"}, opened)
}

func TestDiscover_NotFound(t *testing.T) {
	prefix := fakeDevices(t, 0, 2)
	_, err := Discover(context.Background(), DiscoverOptions{Prefix: prefix, Binary: fakeMediaCtl(t)})
	assert.True(t, errors.Is(err, errors.ErrCodeDeviceNotFound), "got %v", err)
}

func TestDiscover_CustomMarker(t *testing.T) {
	prefix := fakeDevices(t, 1)
	_, err := Discover(context.Background(), DiscoverOptions{Prefix: prefix, Binary: fakeMediaCtl(t), Marker: "imx708"})
	assert.True(t, errors.Is(err, errors.ErrCodeDeviceNotFound))
}

func TestProbe(t *testing.T) {
	prefix := fakeDevices(t, 0, 1, 4)
	devices, err := Probe(context.Background(), DiscoverOptions{Prefix: prefix, Binary: fakeMediaCtl(t)})
	require.NoError(t, err)
	require.Len(t, devices, 3)

	assert.Equal(t, prefix+"0", devices[0].Path)
	assert.Error(t, devices[0].Err)
	assert.False(t, devices[0].HasMarker)

	d := devices[1]
	assert.Equal(t, prefix+"1", d.Path)
	assert.NoError(t, d.Err)
	assert.True(t, d.HasMarker)
	assert.Equal(t, 7, d.Entities)
	assert.Equal(t, 14, d.Links)
	assert.Equal(t, "rp1-cfe", d.Info.Model)

	assert.Equal(t, prefix+"4", devices[2].Path)
}

func TestProbe_Canceled(t *testing.T) {
	prefix := fakeDevices(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Probe(ctx, DiscoverOptions{Prefix: prefix, Open: func(string) Source { return Static{} }})
	assert.ErrorIs(t, err, context.Canceled)
}
