package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mediatopo/pkg/mediactl"
	"github.com/matzehuels/mediatopo/pkg/pipeline"
)

// devicesCommand creates the devices command that lists media controllers.
func (c *CLI) devicesCommand() *cobra.Command {
	var (
		mediaCtl string
		marker   string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List media devices and mark the one carrying the sensor",
		Long: `List media devices and mark the one carrying the sensor.

Every /dev/mediaN node is read with media-ctl. The driver, model and the
size of its graph are shown, and devices whose topology contains the
sensor marker are highlighted. The first highlighted device is the one
"visualize" picks when --device is omitted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			opts := cfg.DiscoverOptions()
			if cmd.Flags().Changed("media-ctl") {
				opts.Binary = mediaCtl
				opts.Open = nil
			}
			if cmd.Flags().Changed("marker") {
				opts.Marker = marker
			}
			opts.Logger = c.Logger
			opts = opts.WithDefaults()

			ctx := cmd.Context()
			prog := newProgress(loggerFromContext(ctx))
			devices, err := mediactl.Probe(ctx, opts)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Probed %d devices", len(devices)))

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(devices)
			}
			if len(devices) == 0 {
				printInfo("No media devices under %s", opts.Prefix)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), deviceTable(devices))
			for _, d := range devices {
				if d.HasMarker {
					printSuccess("Sensor %q found on %s", opts.Marker, d.Path)
					return nil
				}
			}
			printWarning("Sensor %q not found; visualize falls back to %s", opts.Marker, pipeline.DefaultDevice)
			return nil
		},
	}

	cmd.Flags().StringVar(&mediaCtl, "media-ctl", "", "media-ctl binary (default \"media-ctl\")")
	cmd.Flags().StringVar(&marker, "marker", "", "entity name that identifies the sensor (default \"rs300 10-003c\")")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the device list as JSON")

	return cmd
}
