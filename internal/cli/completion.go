package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ringtower/pkg/store"
)

// completionTimeout bounds store lookups made while the shell waits.
const completionTimeout = 2 * time.Second

func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for ringtower. Besides commands and
flags, completions cover asset names in the configured store, output
formats and template files.

  $ source <(ringtower completion bash)
  $ ringtower completion zsh > "${fpath[1]}/_ringtower"
  $ ringtower completion fish > ~/.config/fish/completions/ringtower.fish
  PS> ringtower completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// completeAssetNames completes stored asset names. Completion runs without
// the root's pre-run hook, so the config is loaded here.
func (c *CLI) completeAssetNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ctx, cancel := context.WithTimeout(context.Background(), completionTimeout)
	defer cancel()

	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	defer st.Close()
	assets, err := st.List(ctx)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	taken := make(map[string]bool, len(args))
	for _, a := range args {
		taken[a] = true
	}
	var names []string
	for _, a := range assets {
		if !taken[a.Name] && strings.HasPrefix(a.Name, toComplete) {
			names = append(names, a.Name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeFormats returns a completion function for a fixed format list.
func completeFormats(formats ...string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return cobra.FixedCompletions(formats, cobra.ShellCompDirectiveNoFileComp)
}

// ringFileExts are the file types a ring set can be loaded from.
var ringFileExts = []string{"toml", "json", "glb"}

func completeRingFiles(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return ringFileExts, cobra.ShellCompDirectiveFilterFileExt
}

func completeTemplateFiles(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return []string{"glb", "gltf", "json"}, cobra.ShellCompDirectiveFilterFileExt
}
