package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ringtower/pkg/store"
)

// storeCommand creates the asset store command.
func (c *CLI) storeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage exported assets",
		Long: `Manage exported GLB assets in the configured store. The backend is chosen
with [store] backend in the config file or RINGTOWER_STORE (file, redis,
mongo, sqlite).`,
	}

	cmd.AddCommand(c.storeListCommand())
	cmd.AddCommand(c.storeGetCommand())
	cmd.AddCommand(c.storePutCommand())
	cmd.AddCommand(c.storeDeleteCommand())

	return cmd
}

// storeListCommand creates the "store list" subcommand.
func (c *CLI) storeListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored assets",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			assets, err := st.List(ctx)
			if err != nil {
				return err
			}
			if len(assets) == 0 {
				printInfo("No assets stored")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), assetTable(assets))
			return nil
		},
	}
}

func assetTable(assets []store.Asset) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := make([][]string, 0, len(assets))
	for _, a := range assets {
		rows = append(rows, []string{a.Name, formatBytes(a.Size), a.Modified.Local().Format("2006-01-02 15:04")})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Name", "Size", "Modified").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorCyan)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		}).
		Render()
}

// storeGetCommand creates the "store get" subcommand.
func (c *CLI) storeGetCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:               "get <name>",
		Short:             "Fetch a stored asset",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeAssetNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			buf, err := st.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if output == "" {
				_, err := cmd.OutOrStdout().Write(buf)
				return err
			}
			if err := os.WriteFile(output, buf, 0o644); err != nil {
				return err
			}
			printSuccess("Fetched %s (%s)", args[0], formatBytes(len(buf)))
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the asset to this file instead of stdout")
	return cmd
}

// storePutCommand creates the "store put" subcommand.
func (c *CLI) storePutCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "put <file>",
		Short: "Store a GLB file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			// Assets without an embedded ring set are stored all the same.
			if _, err := decodeRings(args[0], buf); err != nil {
				printWarning("%s carries no ring definition", filepath.Base(args[0]))
			}

			if name == "" {
				name = filepath.Base(args[0])
			}
			if err := store.ValidateName(name); err != nil {
				return err
			}

			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Put(ctx, name, buf); err != nil {
				return err
			}
			printSuccess("Stored %s (%s)", StyleHighlight.Render(name), formatBytes(len(buf)))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "asset name (default: file name)")
	return cmd
}

// storeDeleteCommand creates the "store delete" subcommand.
func (c *CLI) storeDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:               "delete <name>...",
		Aliases:           []string{"rm"},
		Short:             "Delete stored assets",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: c.completeAssetNames,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			for _, name := range args {
				if err := st.Delete(ctx, name); err != nil {
					return err
				}
			}
			printSuccess("Deleted %d assets", len(args))
			return nil
		},
	}
}
