package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mediatopo/pkg/errors"
	"github.com/matzehuels/mediatopo/pkg/pipeline"
)

// watchDebounce batches the burst of events an editor or a redirect emits
// for one save.
const watchDebounce = 300 * time.Millisecond

// watchCommand creates the watch command that re-renders on dump changes.
func (c *CLI) watchCommand() *cobra.Command {
	var out outputFlags

	cmd := &cobra.Command{
		Use:   "watch <dump.txt>",
		Short: "Re-render whenever a saved topology dump changes",
		Long: `Re-render whenever a saved topology dump changes.

The outputs are written once at start and again after every change to the
dump file, e.g. while re-running

  media-ctl -d /dev/media0 --print-topology > dump.txt

in another terminal. Stop with Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := c.options(cmd, nil, &out)
			if err != nil {
				return err
			}
			opts.Input = args[0]
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}

			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, out.noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			render := func(ctx context.Context) error {
				src, err := pipeline.SourceFor(ctx, opts)
				if err != nil {
					return err
				}
				result, err := runner.Execute(ctx, src, opts)
				if err != nil {
					return err
				}
				printSuccess("Rendered %s", result)
				for _, path := range sortedPaths(result.Paths) {
					printFile(path)
				}
				return nil
			}

			if err := render(ctx); err != nil {
				printWarning("%s", errors.UserMessage(err))
			}
			printInfo("Watching %s for changes (Ctrl+C to stop)", opts.Input)
			return watchFile(ctx, opts.Input, watchDebounce, func(ctx context.Context) {
				if err := render(ctx); err != nil {
					printWarning("%s", errors.UserMessage(err))
				}
			})
		},
	}

	out.register(cmd)

	return cmd
}

// watchFile calls onChange after path is written, created or renamed into
// place, at most once per debounce window. The parent directory is watched
// so editors that replace the file are followed. It blocks until ctx ends.
func watchFile(ctx context.Context, path string, debounce time.Duration, onChange func(context.Context)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	logger := loggerFromContext(ctx)
	timer := time.NewTimer(debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("dump changed", "path", event.Name, "op", event.Op.String())
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)

		case <-timer.C:
			onChange(ctx)
		}
	}
}
