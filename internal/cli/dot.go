package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mediatopo/pkg/pipeline"
	"github.com/matzehuels/mediatopo/pkg/render/nodelink"
	"github.com/matzehuels/mediatopo/pkg/topology"
)

// dotCommand creates the dot command that prints the graph description.
func (c *CLI) dotCommand() *cobra.Command {
	var (
		src      sourceFlags
		output   string
		model    string
		detailed bool
		sensor   string
		bridge   string
		capture  string
	)

	cmd := &cobra.Command{
		Use:   "dot",
		Short: "Print the Graphviz DOT description without rendering",
		Long: `Print the Graphviz DOT description without rendering.

The topology comes from a device, a saved dump (--input) or a model written
by "mediatopo parse" (--model). Pipe the output to any Graphviz tool:

  mediatopo dot | dot -Tsvg > topology.svg`,
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

			var g *topology.Graph
			if model != "" {
				g, err = loadModel(model)
			} else {
				g, err = c.loadGraph(cmd.Context(), opts)
			}
			if err != nil {
				return err
			}

			dot := nodelink.ToDOT(g, nodelink.Options{Markers: opts.Markers, Detailed: detailed})
			if output == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), dot)
				return err
			}
			if err := pipeline.WriteDOT(dot, output); err != nil {
				return err
			}
			printSuccess("Wrote DOT for %d entities, %d links", len(g.Entities), len(g.Links))
			printFile(output)
			return nil
		},
	}

	src.register(cmd)
	registerMarkerFlags(cmd, &sensor, &bridge, &capture)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&model, "model", "", "read a JSON/YAML model from \"mediatopo parse\" (- for JSON on stdin)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "add entity types to node labels")
	cmd.MarkFlagsMutuallyExclusive("model", "device", "input")

	return cmd
}
