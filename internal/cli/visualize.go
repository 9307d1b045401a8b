package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mediatopo/pkg/analysis"
	"github.com/matzehuels/mediatopo/pkg/pipeline"
)

// visualizeOptions are the visualize-only switches.
type visualizeOptions struct {
	checkFormats bool
	showLinks    bool
	selectDevice bool
}

// visualizeCommand creates the visualize command, the main acquire → render flow.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		src  sourceFlags
		out  outputFlags
		vopt visualizeOptions
	)

	cmd := &cobra.Command{
		Use:   "visualize",
		Short: "Draw the media-controller topology",
		Long: `Draw the media-controller topology.

The topology is read with "media-ctl -d <device> --print-topology" (or from
--input), parsed, and rendered to the requested formats. Output files share
the base name of --output, so "-o cam.png -f png,svg,dot" writes cam.png,
cam.svg and cam.dot.

Sensor entities are drawn as blue double octagons, CSI-2 receivers as cyan
hexagons, capture entities as green boxes and video nodes as yellow ovals.
Enabled links are solid green, disabled links dashed red.

Rendered images are cached per device and DOT content.`,
		Example: `  mediatopo visualize
  mediatopo visualize -d /dev/media1 -o topo.svg --check-formats
  media-ctl -d /dev/media0 -p | mediatopo visualize -i - -f png,dot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &src, &out)
			if err != nil {
				return err
			}
			if vopt.showLinks {
				opts.KeepDOT = true
			}
			return c.runVisualize(cmd.Context(), opts, vopt, out.noCache)
		},
	}

	src.register(cmd)
	out.register(cmd)
	cmd.Flags().BoolVar(&vopt.checkFormats, "check-formats", false, "compare the sensor and CSI-2 receiver media-bus codes")
	cmd.Flags().BoolVar(&vopt.showLinks, "show-links", false, "list links by status (keeps the .dot file)")
	cmd.Flags().BoolVar(&vopt.selectDevice, "select", false, "pick the media device interactively")
	cmd.MarkFlagsMutuallyExclusive("select", "device", "input")

	return cmd
}

// runVisualize acquires the topology and renders it.
func (c *CLI) runVisualize(ctx context.Context, opts pipeline.Options, vopt visualizeOptions, noCache bool) error {
	if vopt.selectDevice {
		cfg, err := c.config()
		if err != nil {
			return err
		}
		dev, err := selectDevice(ctx, cfg.DiscoverOptions())
		if err != nil {
			return err
		}
		opts.Device = dev
	}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	src, err := pipeline.SourceFor(ctx, opts)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, fmt.Sprintf("Reading topology from %s...", src.Name()))
	spinner.Start()

	result, err := runner.Execute(ctx, src, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return err
	}
	spinner.Stop()

	printSuccess("Visualized %s", src.Name())
	printStats(result.Stats.Entities, result.Stats.Links, result.CacheInfo.RenderHit)
	for _, path := range sortedPaths(result.Paths) {
		printFile(path)
	}

	if vopt.checkFormats {
		printFormatReport(analysis.CheckFormats(result.Graph, opts.Markers))
	}
	if vopt.showLinks {
		printLinkSummary(analysis.SummarizeLinks(result.Graph))
		if dotPath, ok := result.Paths[pipeline.FormatDOT]; ok {
			printNewline()
			printNextStep("Render manually", fmt.Sprintf("dot -Tpng %s -o %s", dotPath, opts.OutputPath(pipeline.FormatPNG)))
		}
	}
	return nil
}

// sortedPaths returns the values of paths ordered by format.
func sortedPaths(paths map[string]string) []string {
	formats := make([]string, 0, len(paths))
	for f := range paths {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = paths[f]
	}
	return out
}
