package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ringtower/pkg/container"
	"github.com/matzehuels/ringtower/pkg/paint"
	"github.com/matzehuels/ringtower/pkg/pipeline"
	"github.com/matzehuels/ringtower/pkg/store"
)

// =============================================================================
// export
// =============================================================================

type exportOpts struct {
	scene  sceneOpts
	output string
	name   string
}

// exportCommand builds, patches and stores a GLB of the ring set.
func (c *CLI) exportCommand() *cobra.Command {
	var opts exportOpts

	cmd := &cobra.Command{
		Use:   "export [rings-file]",
		Short: "Export a ring set as a painted GLB",
		Long: `Export places every module, writes the scene as a GLB container, applies
instance colors to the materials and embeds the ring definition so the file
can be imported again.

With --output the GLB is written to a file; otherwise it goes to the
configured asset store.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeRingFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var path string
			if len(args) == 1 {
				path = args[0]
			}

			var st store.Store
			if opts.output == "" {
				s, err := c.openStore(ctx)
				if err != nil {
					return err
				}
				defer s.Close()
				st = s
			}

			var (
				res    *pipeline.ExportResult
				colors paint.ColorMap
			)
			err := withSpinner(ctx, "Generating scene...", "Export failed", func(sp *Spinner) error {
				var err error
				res, colors, err = c.export(cmd, path, opts, st, sp)
				return err
			})
			if err != nil {
				return err
			}

			if opts.output != "" {
				if err := os.WriteFile(opts.output, res.Buffer, 0o644); err != nil {
					return err
				}
				printSuccess("Exported %s", filepath.Base(opts.output))
				printFile(opts.output)
			} else {
				printSuccess("Stored %s", StyleHighlight.Render(res.Name))
				printDetail("Backend: %s", c.Config.Store.Backend)
			}
			printExportStats(res)
			printPalette(colors)
			for _, w := range res.Warnings {
				printWarning("%s", w)
			}
			if opts.output == "" {
				printNextStep("Fetch it with", appName+" store get "+res.Name+" -o "+res.Name)
			}
			return nil
		},
	}

	opts.scene.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "write the GLB to this file instead of the store")
	cmd.Flags().StringVar(&opts.name, "name", "", "asset name in the store (default: generated)")

	return cmd
}

func (c *CLI) export(cmd *cobra.Command, path string, opts exportOpts, st store.Store, sp *Spinner) (*pipeline.ExportResult, paint.ColorMap, error) {
	ctx := cmd.Context()
	o := opts.scene
	o.store = st

	rs, err := c.buildScene(ctx, path, o, nil)
	if err != nil {
		return nil, nil, err
	}
	defer rs.stop()

	sp.Update("Patching %d instances...", len(rs.Instances()))
	res, err := rs.Export(ctx, opts.name)
	if err != nil {
		return nil, nil, err
	}
	return res, rs.Colors(), nil
}

func printExportStats(res *pipeline.ExportResult) {
	printStats(res.Primitives, res.Customized, len(res.Buffer), res.CacheHit)
}

// =============================================================================
// import
// =============================================================================

// importCommand reads the ring definition embedded in an exported GLB.
func (c *CLI) importCommand() *cobra.Command {
	var (
		output    string
		format    string
		fromStore bool
	)

	cmd := &cobra.Command{
		Use:   "import <glb-file|asset-name>",
		Short: "Recover the ring set from an exported GLB",
		Long: `Import reads the ring definition embedded by "export" and prints it as a
TOML ring file, a JSON snapshot or a table. With --from-store the argument
names an asset in the configured store.`,
		Args: cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if fromStore {
				return c.completeAssetNames(cmd, args, toComplete)
			}
			return []string{"glb"}, cobra.ShellCompDirectiveFilterFileExt
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var (
				buf []byte
				err error
			)
			if fromStore {
				st, err := c.openStore(ctx)
				if err != nil {
					return err
				}
				defer st.Close()
				if buf, err = st.Get(ctx, args[0]); err != nil {
					return err
				}
			} else if buf, err = os.ReadFile(args[0]); err != nil {
				return err
			}

			set, ok, err := container.ExtractSnapshot(buf)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s carries no ring definition", args[0])
			}

			if output == "" {
				return writeRings(cmd.OutOrStdout(), set, format)
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := writeRings(f, set, format); err != nil {
				return err
			}
			printSuccess("Imported %d rings", set.Len())
			printFile(output)
			printNextStep("Edit them with", appName+" edit "+output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the rings to this file")
	cmd.Flags().StringVarP(&format, "format", "f", formatTOML, "output format: toml, json, table")
	cmd.Flags().BoolVar(&fromStore, "from-store", false, "read the GLB from the asset store")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats(formatTOML, formatJSON, formatTable))

	return cmd
}
