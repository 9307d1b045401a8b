package mediactl

import (
	"context"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mediatopo/pkg/errors"
	"github.com/matzehuels/mediatopo/pkg/topology"
)

const (
	// DefaultPrefix is the path prefix of media controller nodes.
	DefaultPrefix = "/dev/media"
	// DefaultCount is how many device indices are probed (media0..media5).
	DefaultCount = 6
	// DefaultMarker identifies the RS300 thermal sensor on I2C bus 10.
	DefaultMarker = "rs300 10-003c"
)

// DiscoverOptions configures [Discover] and [Probe].
type DiscoverOptions struct {
	Prefix string // device path prefix, default DefaultPrefix
	Count  int    // indices 0..Count-1 are probed, default DefaultCount
	Marker string // substring searched in each dump, default DefaultMarker

	// Open returns the source for a device path. Defaults to a [Command]
	// using Binary.
	Open   func(device string) Source
	Binary string

	Logger *log.Logger
}

// WithDefaults returns a copy with zero fields filled.
func (o DiscoverOptions) WithDefaults() DiscoverOptions {
	if o.Prefix == "" {
		o.Prefix = DefaultPrefix
	}
	if o.Count <= 0 {
		o.Count = DefaultCount
	}
	if o.Marker == "" {
		o.Marker = DefaultMarker
	}
	if o.Open == nil {
		bin := o.Binary
		o.Open = func(device string) Source { return Command{Device: device, Binary: bin} }
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o
}

// Device summarizes one probed media controller.
type Device struct {
	Path      string `json:"path"`
	Info      Info   `json:"info"`
	Entities  int    `json:"entities"`
	Links     int    `json:"links"`
	HasMarker bool   `json:"has_marker"`
	Err       error  `json:"-"`
}

// Discover returns the first device, in index order, whose dump contains
// the marker. Missing devices and devices whose dump cannot be read are
// skipped. A DEVICE_NOT_FOUND error is returned when nothing matches.
func Discover(ctx context.Context, opts DiscoverOptions) (string, error) {
	opts = opts.WithDefaults()
	for _, path := range opts.paths() {
		if !exists(path) {
			continue
		}
		text, err := opts.Open(path).Topology(ctx)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if err != nil {
			opts.Logger.Debug("skipping device", "device", path, "error", err)
			continue
		}
		if strings.Contains(text, opts.Marker) {
			opts.Logger.Debug("marker found", "device", path, "marker", opts.Marker)
			return path, nil
		}
	}
	return "", errors.New(errors.ErrCodeDeviceNotFound, "%q not found in any of %s0..%d", opts.Marker, opts.Prefix, opts.Count-1)
}

// Probe summarizes every present device. Devices that fail to dump are
// still returned with Err set.
func Probe(ctx context.Context, opts DiscoverOptions) ([]Device, error) {
	opts = opts.WithDefaults()
	var devices []Device
	for _, path := range opts.paths() {
		if !exists(path) {
			continue
		}
		text, err := opts.Open(path).Topology(ctx)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		d := Device{Path: path, Err: err}
		if err == nil {
			g := topology.Parse(text)
			d.Info = ParseInfo(text)
			d.Entities = len(g.Entities)
			d.Links = len(g.Links)
			d.HasMarker = strings.Contains(text, opts.Marker)
		}
		devices = append(devices, d)
	}
	return devices, nil
}

func (o DiscoverOptions) paths() []string {
	paths := make([]string, o.Count)
	for i := range paths {
		paths[i] = o.Prefix + strconv.Itoa(i)
	}
	return paths
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
