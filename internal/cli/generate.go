package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ringtower/pkg/paint"
	"github.com/matzehuels/ringtower/pkg/pipeline"
	"github.com/matzehuels/ringtower/pkg/ring"
	"github.com/matzehuels/ringtower/pkg/scene"
	"github.com/matzehuels/ringtower/pkg/store"
)

// sceneOpts are the flags shared by commands that build a scene.
type sceneOpts struct {
	studio studioFlags
	assign []string
	paint  []string

	// store receives exports; nil keeps them in memory.
	store store.Store
}

func (o *sceneOpts) register(cmd *cobra.Command) {
	o.studio.register(cmd)
	cmd.Flags().StringArrayVar(&o.assign, "set", nil, "pin and set a parameter (RING.PARAM=VALUE)")
	cmd.Flags().StringArrayVar(&o.paint, "paint", nil, "paint instances (ring-R[.layer-L.module-M]=#rrggbb)")
}

// buildScene loads the ring set, starts a studio on it and applies the
// paint flags. The caller stops the studio.
func (c *CLI) buildScene(ctx context.Context, path string, o sceneOpts, renderer scene.Renderer) (*runningStudio, error) {
	set, err := loadRings(path)
	if err != nil {
		return nil, err
	}
	if err := applyAssignments(&set, o.assign); err != nil {
		return nil, err
	}

	opts, err := c.studioOptions(o.studio, set)
	if err != nil {
		return nil, err
	}
	if opts.Template == "" {
		return nil, fmt.Errorf("no module template: pass --template or set template in the config file")
	}
	opts.Renderer = renderer
	opts.Store = o.store

	rs, err := startStudio(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := rs.Sync(ctx); err != nil {
		_ = rs.stop()
		return nil, err
	}
	for _, raw := range o.paint {
		cmd, err := parsePaint(raw, set)
		if err != nil {
			_ = rs.stop()
			return nil, err
		}
		if err := rs.Apply(ctx, cmd); err != nil {
			_ = rs.stop()
			return nil, err
		}
	}
	return rs, nil
}

// parsePaint parses "KEY=#hex" where KEY is a full instance key or
// "ring-R" for every instance of a ring.
func parsePaint(s string, set ring.Set) (pipeline.Paint, error) {
	target, hex, ok := strings.Cut(s, "=")
	if !ok {
		return pipeline.Paint{}, fmt.Errorf("invalid paint %q: want KEY=#rrggbb", s)
	}
	col, err := paint.ParseHex(hex)
	if err != nil {
		return pipeline.Paint{}, err
	}

	if num, whole := strings.CutPrefix(target, "ring-"); whole && !strings.Contains(num, ".") {
		var idx int
		if _, err := fmt.Sscanf(num, "%d", &idx); err != nil {
			return pipeline.Paint{}, fmt.Errorf("invalid ring in paint %q", s)
		}
		r, err := set.At(idx)
		if err != nil {
			return pipeline.Paint{}, err
		}
		keys := make([]paint.Key, 0, r.Layers*r.Modules)
		for l := range r.Layers {
			for m := range r.Modules {
				keys = append(keys, paint.Key{Ring: idx, Layer: l, Module: m})
			}
		}
		return pipeline.Paint{Color: col, Keys: keys}, nil
	}

	k, err := paint.ParseKey(target)
	if err != nil {
		return pipeline.Paint{}, err
	}
	return pipeline.Paint{Color: col, Keys: []paint.Key{k}}, nil
}

// =============================================================================
// generate
// =============================================================================

// generateCommand places every module and writes the scene tree as JSON.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		opts    sceneOpts
		output  string
		compact bool
	)

	cmd := &cobra.Command{
		Use:   "generate [rings-file]",
		Short: "Place every module of a ring set and print the scene",
		Long: `Generate places one template instance per ring, layer and module and
writes the resulting scene tree (rings with their instance transforms and
colors) as JSON.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeRingFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			prog := newProgress(logger)

			var path string
			if len(args) == 1 {
				path = args[0]
			}
			rs, err := c.buildScene(ctx, path, opts, scene.LogRenderer{Logger: componentLogger(ctx, "scene")})
			if err != nil {
				return err
			}
			defer rs.stop()

			tree := rs.Tree()
			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := (scene.JSONRenderer{W: w, Indent: !compact}).Render(ctx, tree); err != nil {
				return err
			}

			prog.done("generated", "instances", tree.Len(), "rings", len(tree.Rings))
			if output != "" {
				printFile(output)
			}
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write JSON to this file instead of stdout")
	cmd.Flags().BoolVar(&compact, "compact", false, "write compact JSON")

	return cmd
}
