// Package store persists exported containers.
//
// A [Store] maps asset names to byte buffers. Four backends are provided:
//   - file: one file per asset in a directory (default for the CLI)
//   - redis: values plus a sorted-set index
//   - mongo: one document per asset
//   - sqlite: one row per asset in an embedded database
//
// Use [Open] to construct a backend from a [Config]. Stores returned by
// [Open] report every Put and Get to the observability store hooks.
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	apperr "github.com/matzehuels/ringtower/pkg/errors"
	"github.com/matzehuels/ringtower/pkg/observability"
)

// Store persists named binary assets.
type Store interface {
	// Put creates or replaces the asset.
	Put(ctx context.Context, name string, buf []byte) error

	// Get returns the asset. A missing asset is a NOT_FOUND error.
	Get(ctx context.Context, name string) ([]byte, error)

	// List returns every asset ordered by name.
	List(ctx context.Context) ([]Asset, error)

	// Delete removes the asset. Deleting a missing asset is not an error.
	Delete(ctx context.Context, name string) error

	Close() error
}

// Asset describes a stored asset.
type Asset struct {
	Name     string    `json:"name"`
	Size     int       `json:"size"`
	Modified time.Time `json:"modified"`
}

// Extension is appended to generated asset names.
const Extension = ".glb"

// MaxNameLength bounds asset names.
const MaxNameLength = 200

// NewName returns a fresh random asset name.
func NewName() string {
	return uuid.NewString() + Extension
}

// ValidateName rejects names that are empty, too long, or could escape a
// directory.
func ValidateName(name string) error {
	switch {
	case name == "":
		return apperr.New(apperr.ErrCodeInvalidInput, "asset name is empty")
	case len(name) > MaxNameLength:
		return apperr.New(apperr.ErrCodeInvalidInput, "asset name longer than %d bytes", MaxNameLength)
	case strings.ContainsAny(name, `/\`+"\x00"):
		return apperr.New(apperr.ErrCodeInvalidInput, "asset name %q contains a path separator", name)
	case name == "." || name == ".." || strings.HasPrefix(name, "."):
		return apperr.New(apperr.ErrCodeInvalidInput, "asset name %q is reserved", name)
	}
	return nil
}

func notFound(name string) error {
	return apperr.New(apperr.ErrCodeNotFound, "asset %q not found", name)
}

func sortAssets(assets []Asset) {
	sort.Slice(assets, func(i, j int) bool { return assets[i].Name < assets[j].Name })
}

func storeError(err error, format string, args ...any) error {
	return apperr.Wrap(apperr.ErrCodeStore, err, format, args...)
}

// =============================================================================
// Backends
// =============================================================================

// Backend names.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
)

// Config selects and configures a backend.
type Config struct {
	Backend string `toml:"backend"`

	// Dir is the file backend directory. Empty means [DefaultDir].
	Dir string `toml:"dir"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	RedisPrefix   string `toml:"redis_prefix"`

	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`

	// SQLitePath is the database file. Empty means assets.db in [DefaultDir].
	SQLitePath string `toml:"sqlite_path"`
}

// SetDefaults fills empty fields.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = BackendFile
	}
	if c.RedisAddr == "" {
		c.RedisAddr = "localhost:6379"
	}
	if c.RedisPrefix == "" {
		c.RedisPrefix = "ringtower:asset:"
	}
	if c.MongoURI == "" {
		c.MongoURI = "mongodb://localhost:27017"
	}
	if c.MongoDatabase == "" {
		c.MongoDatabase = "ringtower"
	}
	if c.MongoCollection == "" {
		c.MongoCollection = "assets"
	}
}

// Open constructs the configured backend.
func Open(ctx context.Context, cfg Config) (Store, error) {
	cfg.SetDefaults()

	var (
		s   Store
		err error
	)
	switch cfg.Backend {
	case BackendFile:
		s, err = NewFileStore(cfg.Dir)
	case BackendRedis:
		s, err = NewRedisStore(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
	case BackendMongo:
		s, err = NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	case BackendSQLite:
		s, err = NewSQLiteStore(ctx, cfg.SQLitePath)
	default:
		return nil, apperr.New(apperr.ErrCodeConfiguration, "unknown store backend %q (must be one of: file, redis, mongo, sqlite)", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(s, cfg.Backend), nil
}

// Instrument wraps s so that Put and Get are reported to the observability
// store hooks under backend.
func Instrument(s Store, backend string) Store {
	return &instrumented{Store: s, backend: backend}
}

type instrumented struct {
	Store
	backend string
}

func (s *instrumented) Put(ctx context.Context, name string, buf []byte) error {
	err := s.Store.Put(ctx, name, buf)
	observability.Store().OnStorePut(ctx, s.backend, name, len(buf), err)
	return err
}

func (s *instrumented) Get(ctx context.Context, name string) ([]byte, error) {
	buf, err := s.Store.Get(ctx, name)
	observability.Store().OnStoreGet(ctx, s.backend, name, len(buf), err)
	return buf, err
}

func (s *instrumented) String() string { return fmt.Sprintf("%s store", s.backend) }
