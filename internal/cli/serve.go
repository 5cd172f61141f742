package cli

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/ringtower/pkg/pipeline"
	"github.com/matzehuels/ringtower/pkg/server"
)

// serveCommand runs the HTTP API over a single studio.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags  studioFlags
		listen string
	)

	cmd := &cobra.Command{
		Use:   "serve [rings-file]",
		Short: "Serve the ring studio over HTTP",
		Long: `Serve runs one studio and exposes it as a JSON API: ring edits, painting,
template uploads, plan diagrams, exports and the asset store. Edits from all
clients go through the same command queue.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeRingFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var path string
			if len(args) == 1 {
				path = args[0]
			}
			set, err := loadRings(path)
			if err != nil {
				return err
			}

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			opts, err := c.studioOptions(flags, set)
			if err != nil {
				return err
			}
			opts.Store = st

			studio, err := pipeline.NewStudio(opts)
			if err != nil {
				return err
			}

			addr := listen
			if addr == "" {
				addr = c.Config.Listen
			}
			printKeyValue("Listening", StyleLink.Render("http://"+addr))
			printKeyValue("Store", c.Config.Store.Backend)
			if opts.Template != "" {
				printKeyValue("Template", opts.Template)
			}
			printNewline()

			srv := server.New(studio, st, c.Logger)
			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error { return studio.Run(gctx) })
			g.Go(func() error { return srv.ListenAndServe(gctx, addr) })

			if err := g.Wait(); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&listen, "listen", "", "listen address (default "+defaultListen+")")

	return cmd
}
