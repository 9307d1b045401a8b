package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mediatopo/pkg/cache"
	topoio "github.com/matzehuels/mediatopo/pkg/io"
	"github.com/matzehuels/mediatopo/pkg/pipeline"
	"github.com/matzehuels/mediatopo/pkg/topology"
)

// parseCommand creates the parse command that exports the topology model.
func (c *CLI) parseCommand() *cobra.Command {
	var (
		src      sourceFlags
		output   string
		encoding string
		sensor   string
		bridge   string
		capture  string
	)

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Write the parsed topology as JSON or YAML",
		Long: `Write the parsed topology as JSON or YAML.

Every entity is listed with its pads, formats and node class, and every link
with its status. The result can be turned back into a diagram with
"mediatopo dot --model".`,
		Example: `  mediatopo parse -d /dev/media0 -o topology.yaml
  mediatopo parse -i dump.txt --encoding json | jq '.links[] | select(.state == "ENABLED")'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, &src, nil)
			if err != nil {
				return err
			}
			applyMarkerFlags(cmd, &opts, sensor, bridge, capture)
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			g, err := c.loadGraph(cmd.Context(), opts)
			if err != nil {
				return err
			}

			if output != "" {
				if err := topoio.ExportFile(g, opts.Markers, output); err != nil {
					return err
				}
				printSuccess("Parsed %d entities, %d links", len(g.Entities), len(g.Links))
				printFile(output)
				return nil
			}
			if encoding == "" {
				encoding = topoio.EncodingJSON
			}
			return topoio.Write(g, opts.Markers, encoding, cmd.OutOrStdout())
		},
	}

	src.register(cmd)
	registerMarkerFlags(cmd, &sensor, &bridge, &capture)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file; .yaml/.yml selects YAML (default stdout)")
	cmd.Flags().StringVar(&encoding, "encoding", "", "stdout encoding: json (default), yaml")

	return cmd
}

// loadGraph acquires and parses the topology without rendering anything.
func (c *CLI) loadGraph(ctx context.Context, opts pipeline.Options) (*topology.Graph, error) {
	src, err := pipeline.SourceFor(ctx, opts)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(cache.NewNullCache(), nil, c.Logger)
	text, err := runner.Acquire(ctx, src)
	if err != nil {
		return nil, err
	}
	return runner.Parse(ctx, text), nil
}

// loadModel reads a model written by "mediatopo parse".
func loadModel(path string) (*topology.Graph, error) {
	if path == "-" {
		return topoio.ReadJSON(os.Stdin)
	}
	g, err := topoio.ImportFile(path)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", path, err)
	}
	return g, nil
}
