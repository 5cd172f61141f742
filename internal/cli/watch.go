package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/ringtower/pkg/errors"
	"github.com/matzehuels/ringtower/pkg/pipeline"
	"github.com/matzehuels/ringtower/pkg/scene"
	"github.com/matzehuels/ringtower/pkg/store"
)

// watchCommand regenerates the scene whenever a ring file changes.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		flags  studioFlags
		export bool
	)

	cmd := &cobra.Command{
		Use:   "watch <rings-file>",
		Short: "Regenerate the scene whenever a ring file changes",
		Long: `Watch loads a ring file (TOML, JSON snapshot or exported GLB) and imports
it again every time it is saved. Each regeneration is logged per ring; with
--export every settled scene is also exported to the configured store.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeRingFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			set, err := loadRings(path)
			if err != nil {
				return err
			}
			opts, err := c.studioOptions(flags, set)
			if err != nil {
				return err
			}
			opts.Renderer = scene.LogRenderer{Logger: componentLogger(ctx, "scene")}
			if export {
				st, err := c.openStore(ctx)
				if err != nil {
					return err
				}
				defer st.Close()
				opts.Store = st
			}

			rs, err := startStudio(ctx, opts)
			if err != nil {
				return err
			}
			defer rs.stop()

			w, err := fsnotify.NewWatcher()
			if err != nil {
				return err
			}
			defer w.Close()
			// Editors often replace the file, so watch its directory.
			if err := w.Add(filepath.Dir(path)); err != nil {
				return err
			}

			printInfo("Watching %s", StyleHighlight.Render(path))
			reload := func() error { return reloadRings(ctx, rs.Studio, path, export, logger) }
			if err := reload(); err != nil {
				logger.Warn("initial load", "error", err)
			}
			err = watchFile(ctx, w, path, reload, logger)
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&export, "export", false, "export every regenerated scene to the store")

	return cmd
}

// watchFile calls onChange for every write, create or rename of path until
// ctx is done. Failed reloads are logged and watching continues.
func watchFile(ctx context.Context, w *fsnotify.Watcher, path string, onChange func() error, logger *log.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			logger.Debug("ring file changed", "op", event.Op.String())
			if err := onChange(); err != nil {
				logger.Warn("reload failed", "path", path, "error", err)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "error", err)
		}
	}
}

// reloadRings imports the ring file into the studio and optionally exports
// the settled scene.
func reloadRings(ctx context.Context, studio *pipeline.Studio, path string, export bool, logger *log.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	set, err := decodeRings(path, data)
	if err != nil {
		return err
	}
	doc, err := snapshotJSON(set)
	if err != nil {
		return err
	}
	if err := studio.Apply(ctx, pipeline.ImportSnapshot{Doc: doc}); err != nil {
		if apperr.Is(err, apperr.ErrCodeTemplateUnavailable) {
			logger.Warn("rings loaded without a template", "rings", set.Len())
			return nil
		}
		return err
	}
	logger.Info("rings loaded", "rings", set.Len(), "instances", set.InstanceCount(), "generation", studio.Generation())

	if !export {
		return nil
	}
	res, err := studio.Export(ctx, store.NewName())
	if err != nil {
		return err
	}
	printSuccess("Stored %s", StyleHighlight.Render(res.Name))
	return nil
}
