package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/ringtower/pkg/cache"
	apperr "github.com/matzehuels/ringtower/pkg/errors"
	"github.com/matzehuels/ringtower/pkg/store"
)

// envPrefix prefixes every environment override.
const envPrefix = "RINGTOWER_"

// Config is the on-disk CLI configuration:
//
//	template  = "https://example.com/module.glb"
//	listen    = "127.0.0.1:8321"
//	log_level = "warn"
//
//	[store]
//	backend = "sqlite"
//	sqlite_path = "/var/lib/ringtower/assets.db"
type Config struct {
	// Template is the default module template source.
	Template string `toml:"template"`

	// Listen is the address used by "serve".
	Listen string `toml:"listen"`

	CacheDir string `toml:"cache_dir"`
	NoCache  bool   `toml:"no_cache"`

	// LogLevel is the default level; --verbose still forces debug.
	LogLevel string `toml:"log_level"`

	Store store.Config `toml:"store"`
}

// SetDefaults fills empty fields.
func (c *Config) SetDefaults() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	c.Store.SetDefaults()
}

// applyEnv overrides fields from RINGTOWER_* variables read through getenv.
func (c *Config) applyEnv(getenv func(string) string) error {
	str := map[string]*string{
		"TEMPLATE":         &c.Template,
		"LISTEN":           &c.Listen,
		"CACHE_DIR":        &c.CacheDir,
		"LOG_LEVEL":        &c.LogLevel,
		"STORE":            &c.Store.Backend,
		"STORE_DIR":        &c.Store.Dir,
		"REDIS_ADDR":       &c.Store.RedisAddr,
		"REDIS_PASSWORD":   &c.Store.RedisPassword,
		"MONGO_URI":        &c.Store.MongoURI,
		"MONGO_DATABASE":   &c.Store.MongoDatabase,
		"MONGO_COLLECTION": &c.Store.MongoCollection,
		"SQLITE_PATH":      &c.Store.SQLitePath,
	}
	for name, dst := range str {
		if v := getenv(envPrefix + name); v != "" {
			*dst = v
		}
	}

	if v := getenv(envPrefix + "NO_CACHE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return apperr.Wrap(apperr.ErrCodeConfiguration, err, "%sNO_CACHE", envPrefix)
		}
		c.NoCache = b
	}
	if v := getenv(envPrefix + "REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return apperr.Wrap(apperr.ErrCodeConfiguration, err, "%sREDIS_DB", envPrefix)
		}
		c.Store.RedisDB = n
	}
	return nil
}

// cacheDir returns the configured cache directory or the XDG default.
func (c Config) cacheDir() (string, error) {
	if c.CacheDir != "" {
		return c.CacheDir, nil
	}
	return cacheDir()
}

// loadConfig reads the config file at path, applies environment overrides
// and fills defaults. An empty path means the default location, which may
// be missing; an explicit path must exist.
func loadConfig(path string) (Config, error) {
	var cfg Config

	explicit := path != ""
	if !explicit {
		p, err := configPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		_, err := toml.DecodeFile(path, &cfg)
		switch {
		case err == nil:
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return Config{}, apperr.Wrap(apperr.ErrCodeConfiguration, err, "load config %s", path)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	cfg.SetDefaults()
	if cfg.LogLevel != "" {
		if _, err := parseLogLevel(cfg.LogLevel); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// =============================================================================
// Paths
// =============================================================================

// configPath returns the config file using XDG standard
// (~/.config/ringtower/config.toml).
func configPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

func defaultConfigHint() string {
	return "~/.config/" + appName + "/config.toml"
}

// cacheDir returns the cache directory using XDG standard (~/.cache/ringtower/).
func cacheDir() (string, error) {
	return cache.DefaultDir()
}
