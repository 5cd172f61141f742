// Package cli implements the ringtower command-line interface.
package cli

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/ringtower/pkg/buildinfo"
	"github.com/matzehuels/ringtower/pkg/cache"
	"github.com/matzehuels/ringtower/pkg/observability"
	"github.com/matzehuels/ringtower/pkg/pipeline"
	"github.com/matzehuels/ringtower/pkg/ring"
	"github.com/matzehuels/ringtower/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "ringtower"

	// defaultListen is the address "serve" binds when none is configured.
	defaultListen = "127.0.0.1:8321"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded before any subcommand runs.
	Config Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Ringtower builds stacked rings of modules from a template",
		Long: `Ringtower arranges copies of a 3D module template into stacked rings.
Each ring couples module count, arc, scale and radius; pin any three and the
fourth is solved. Rings stack on top of each other, can be painted, and are
exported as GLB files that carry their own ring definition.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			c.Config = cfg
			if cfg.LogLevel != "" && c.Logger.GetLevel() > LogDebug {
				level, err := parseLogLevel(cfg.LogLevel)
				if err != nil {
					return err
				}
				c.SetLogLevel(level)
			}
			if c.Logger.GetLevel() <= LogDebug {
				observability.UseLogger(c.Logger.WithPrefix("trace"))
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+defaultConfigHint()+")")

	root.AddCommand(c.solveCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.planCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Studio Factory
// =============================================================================

// studioFlags are the flags shared by every command that runs a studio.
type studioFlags struct {
	template string
	noCache  bool
}

func (f *studioFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.template, "template", "t", "", "module template (GLB or glTF JSON, path or URL)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the template and export cache")
	_ = cmd.RegisterFlagCompletionFunc("template", completeTemplateFiles)
}

// studioOptions merges flags, config and the ring set into studio options.
func (c *CLI) studioOptions(f studioFlags, set ring.Set) (pipeline.Options, error) {
	tmpl := f.template
	if tmpl == "" {
		tmpl = c.Config.Template
	}
	cch, err := newCache(c.Config, f.noCache)
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Template: tmpl,
		Rings:    set,
		Cache:    cch,
		Logger:   c.Logger,
	}, nil
}

// runningStudio is a studio whose Run loop is active until stop is called.
type runningStudio struct {
	*pipeline.Studio
	cancel context.CancelFunc
	done   chan error
}

// startStudio creates a studio and runs it in the background.
func startStudio(ctx context.Context, opts pipeline.Options) (*runningStudio, error) {
	studio, err := pipeline.NewStudio(opts)
	if err != nil {
		return nil, err
	}
	runCtx, cancel := context.WithCancel(ctx)
	rs := &runningStudio{Studio: studio, cancel: cancel, done: make(chan error, 1)}
	go func() { rs.done <- studio.Run(runCtx) }()
	return rs, nil
}

// stop cancels the run loop and waits for it to release its instances.
func (rs *runningStudio) stop() error {
	rs.cancel()
	err := <-rs.done
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// =============================================================================
// Cache & Store
// =============================================================================

func newCache(cfg Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.NoCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cfg.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, c.Config.Store)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("store opened", "backend", c.Config.Store.Backend)
	return st, nil
}
