package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ringtower/pkg/cache"
)

// cacheCommand groups the download and export cache commands.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the template and export cache",
		Long: `Downloaded module templates and patched exports are cached on disk,
by default under $XDG_CACHE_HOME/ringtower. Entries expire on their own;
"clear --expired" removes only those.`,
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cacheInfoCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// openCacheDir opens the configured cache directory, or returns nil when
// it does not exist yet.
func (c *CLI) openCacheDir() (*cache.FileCache, string, error) {
	dir, err := c.Config.cacheDir()
	if err != nil {
		return nil, "", fmt.Errorf("get cache dir: %w", err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, dir, nil
	}
	fc, err := cache.NewFileCache(dir)
	return fc, dir, err
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	var expired bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear downloaded templates and cached exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, dir, err := c.openCacheDir()
			if err != nil {
				return err
			}
			if fc == nil {
				printInfo("Cache is empty")
				return nil
			}

			if expired {
				n, err := fc.Prune()
				if err != nil {
					return err
				}
				printSuccess("Removed %d expired entries", n)
				return nil
			}

			st, err := fc.Stats()
			if err != nil {
				return err
			}
			if err := fc.Clear(); err != nil {
				return err
			}
			printSuccess("Cleared %d cached entries (%s)", st.Entries, formatBytes(int(st.Bytes)))
			printDetail("Directory: %s", dir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&expired, "expired", false, "only remove expired or unreadable entries")
	return cmd
}

func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache size and entry counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, dir, err := c.openCacheDir()
			if err != nil {
				return err
			}
			var st cache.Stats
			if fc != nil {
				if st, err = fc.Stats(); err != nil {
					return err
				}
			}
			printKeyValue("Directory", dir)
			printKeyValue("Entries", strconv.Itoa(st.Entries))
			printKeyValue("Expired", strconv.Itoa(st.Expired))
			printKeyValue("Size", formatBytes(int(st.Bytes)))
			if c.Config.NoCache {
				printWarning("Caching is disabled in the config")
			}
			return nil
		},
	}
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.Config.cacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dir)
			return nil
		},
	}
}
