package cli

import (
	"os"

	"github.com/spf13/cobra"

	apperr "github.com/matzehuels/ringtower/pkg/errors"
	"github.com/matzehuels/ringtower/pkg/scene"
)

const (
	formatDOT = "dot"
	formatSVG = "svg"
)

// planCommand draws the ring stack as a diagram.
func (c *CLI) planCommand() *cobra.Command {
	var (
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "plan [rings-file]",
		Short: "Draw the ring stack as a Graphviz diagram",
		Long: `Plan draws one node per ring, bottom to top, with its solved parameters.
Pinned parameters are marked with "*", the solved one with "~". Dashed edges
mark rings with a manual height; hidden rings are grey and locked rings are
drawn with a double outline.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeRingFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			set, err := loadRings(path)
			if err != nil {
				return err
			}

			dot := scene.PlanDOT(set)
			var out []byte
			switch format {
			case formatDOT:
				out = []byte(dot)
			case formatSVG:
				err = withSpinner(cmd.Context(), "Rendering plan...", "Plan failed", func(*Spinner) error {
					var err error
					out, err = scene.RenderPlanSVG(cmd.Context(), dot)
					return err
				})
				if err != nil {
					return err
				}
			default:
				return apperr.New(apperr.ErrCodeInvalidInput, "unknown format %q (must be one of: dot, svg)", format)
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(out)
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return err
			}
			printSuccess("Planned %d rings", set.Len())
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the diagram to this file")
	cmd.Flags().StringVarP(&format, "format", "f", formatSVG, "output format: svg, dot")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats(formatSVG, formatDOT))

	return cmd
}
