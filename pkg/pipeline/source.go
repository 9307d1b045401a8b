package pipeline

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mediatopo/pkg/errors"
	"github.com/matzehuels/mediatopo/pkg/mediactl"
)

// SourceFor picks the topology source described by opts.
//
// An Input wins over a Device. With neither set the media devices are
// searched for opts.Marker; when none matches, [DefaultDevice] is used and
// a warning is logged.
func SourceFor(ctx context.Context, opts Options) (mediactl.Source, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	switch {
	case opts.Input != "":
		return mediactl.File{Path: opts.Input}, nil
	case opts.Device != "":
		return mediactl.Command{Device: opts.Device, Binary: opts.MediaCtl}, nil
	}

	dev, err := mediactl.Discover(ctx, mediactl.DiscoverOptions{
		Marker: opts.Marker,
		Binary: opts.MediaCtl,
		Logger: logger,
	})
	switch {
	case err == nil:
		logger.Info("auto-detected media device", "device", dev)
		return mediactl.Command{Device: dev, Binary: opts.MediaCtl}, nil
	case errors.Is(err, errors.ErrCodeDeviceNotFound):
		logger.Warn("marker not found in any media device, using default", "device", DefaultDevice)
		return mediactl.Command{Device: DefaultDevice, Binary: opts.MediaCtl}, nil
	default:
		return nil, err
	}
}
