package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/mediatopo/pkg/pipeline"
)

// sourceFlags selects where the topology dump comes from.
type sourceFlags struct {
	device   string
	input    string
	mediaCtl string
	marker   string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.device, "device", "d", "", "media device (auto-detected when omitted)")
	cmd.Flags().StringVarP(&f.input, "input", "i", "", "read a saved topology dump instead (- for stdin)")
	cmd.Flags().StringVar(&f.mediaCtl, "media-ctl", "", "media-ctl binary (default \"media-ctl\")")
	cmd.Flags().StringVar(&f.marker, "marker", "", "entity name searched for during auto-detection (default \"rs300 10-003c\")")
}

// apply overlays the flags the user actually set on opts.
func (f *sourceFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	flags := cmd.Flags()
	if flags.Changed("device") {
		opts.Device = f.device
	}
	if flags.Changed("input") {
		opts.Input = f.input
	}
	if flags.Changed("media-ctl") {
		opts.MediaCtl = f.mediaCtl
	}
	if flags.Changed("marker") {
		opts.Marker = f.marker
	}
}

// outputFlags control what is written and how it is drawn.
type outputFlags struct {
	output   string
	formats  string
	engine   string
	keepDOT  bool
	detailed bool
	noCache  bool
	refresh  bool

	sensor  string
	bridge  string
	capture string
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", pipeline.DefaultOutput, "output file; other formats are written next to it")
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): dot, svg, png, pdf (comma-separated, default from --output)")
	cmd.Flags().StringVar(&f.engine, "engine", "", "layout engine: graphviz (built in, default), dot (system binary)")
	cmd.Flags().BoolVar(&f.keepDOT, "keep-dot", false, "keep the intermediate .dot file")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "add entity types to node labels")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "re-render even when cached")
	registerMarkerFlags(cmd, &f.sensor, &f.bridge, &f.capture)

	_ = cmd.RegisterFlagCompletionFunc("engine", cobra.FixedCompletions(
		[]string{pipeline.EngineGraphviz, pipeline.EngineDot}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions(
		[]string{pipeline.FormatPNG, pipeline.FormatSVG, pipeline.FormatPDF, pipeline.FormatDOT}, cobra.ShellCompDirectiveNoFileComp))
}

func registerMarkerFlags(cmd *cobra.Command, sensor, bridge, capture *string) {
	cmd.Flags().StringVar(sensor, "sensor", "", "name token of sensor entities (default \"rs300\")")
	cmd.Flags().StringVar(bridge, "bridge", "", "name token of CSI-2 receiver entities (default \"csi2\")")
	cmd.Flags().StringVar(capture, "capture", "", "name token of capture entities (default \"rp1-cfe\")")
}

// apply overlays the flags the user actually set on opts. The output
// default applies unless the config file names one.
func (f *outputFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	flags := cmd.Flags()
	if flags.Changed("output") || opts.Output == "" {
		opts.Output = f.output
	}
	if flags.Changed("format") {
		opts.Formats = parseFormats(f.formats)
	}
	if flags.Changed("engine") {
		opts.Engine = f.engine
	}
	opts.KeepDOT = opts.KeepDOT || f.keepDOT
	opts.Detailed = opts.Detailed || f.detailed
	opts.Refresh = f.refresh
	applyMarkerFlags(cmd, opts, f.sensor, f.bridge, f.capture)
}

func applyMarkerFlags(cmd *cobra.Command, opts *pipeline.Options, sensor, bridge, capture string) {
	flags := cmd.Flags()
	if flags.Changed("sensor") {
		opts.Markers.Sensor = sensor
	}
	if flags.Changed("bridge") {
		opts.Markers.Bridge = bridge
	}
	if flags.Changed("capture") {
		opts.Markers.Capture = capture
	}
}

// options merges the config file with the flags of cmd.
func (c *CLI) options(cmd *cobra.Command, src *sourceFlags, out *outputFlags) (pipeline.Options, error) {
	cfg, err := c.config()
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := cfg.Options()
	if src != nil {
		src.apply(cmd, &opts)
	}
	if out != nil {
		out.apply(cmd, &opts)
	}
	opts.Logger = c.Logger
	return opts, nil
}
