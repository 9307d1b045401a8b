package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mediatopo/internal/cli"
	mterrors "github.com/matzehuels/mediatopo/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		if hint := hintFor(err); hint != "" {
			fmt.Fprintln(os.Stderr, hint)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// The level is only known after flag parsing.
	inner := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		if inner != nil {
			return inner(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}

func hintFor(err error) string {
	switch mterrors.GetCode(err) {
	case mterrors.ErrCodeUpstreamUnavailable:
		return "Is media-ctl installed (v4l-utils) and readable by this user? Try --input with a saved dump."
	case mterrors.ErrCodeRendererMissing:
		return "Use --engine graphviz, or install Graphviz/librsvg for the requested format."
	case mterrors.ErrCodeInvalidConfig:
		return "Check the config file, or point --config at another one."
	default:
		return ""
	}
}
