// Package config loads the settings of a graph database from the environment
// and from an optional .env file in the data directory.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"go-simpler.org/env"
)

// AppName names the default data directory.
const AppName = "graphkv"

// C is the configuration of a database.
type C struct {
	DataDir        string `env:"GRAPHKV_DATA_DIR" usage:"root directory holding one directory per keyspace, default $XDG_DATA_HOME/graphkv"`
	LogLevel       string `env:"GRAPHKV_LOG_LEVEL" default:"info" usage:"log level: off fatal error warn info debug trace"`
	DBLogLevel     string `env:"GRAPHKV_DB_LOG_LEVEL" default:"warn" usage:"storage engine log level: off fatal error warn info debug trace"`
	BlockCacheMB   int    `env:"GRAPHKV_BLOCK_CACHE_MB" default:"64" usage:"storage engine block cache in megabytes"`
	IndexCacheMB   int    `env:"GRAPHKV_INDEX_CACHE_MB" default:"0" usage:"storage engine index cache in megabytes, 0 keeps indexes in memory"`
	MemTableMB     int    `env:"GRAPHKV_MEMTABLE_MB" default:"64" usage:"storage engine memtable size in megabytes"`
	Compression    string `env:"GRAPHKV_COMPRESSION" default:"none" usage:"table compression [none|snappy|zstd]"`
	SyncWrites     bool   `env:"GRAPHKV_SYNC_WRITES" default:"false" usage:"fsync every commit"`
	InMemory       bool   `env:"GRAPHKV_IN_MEMORY" default:"false" usage:"keep keyspaces in memory only, nothing is written to DATA_DIR"`
	FlattenOnClose bool   `env:"GRAPHKV_FLATTEN_ON_CLOSE" default:"false" usage:"flatten the LSM tree of a keyspace when it closes"`
	// value log garbage collection
	GCInterval       time.Duration `env:"GRAPHKV_GC_INTERVAL" default:"10m" usage:"how often each keyspace rewrites its value log, 0 disables"`
	GCDiscardPercent int           `env:"GRAPHKV_GC_DISCARD_PERCENT" default:"50" usage:"rewrite a value log file once this percent of it is stale"`
}

var options = &env.Options{SliceSep: ","}

// New loads the configuration from the environment, then lets a .env file in
// the data directory fill in what the environment left unset.
func New() (cfg *C, err error) {
	cfg = &C{}
	if err = env.Load(cfg, options); chk.T(err) {
		return
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(xdg.DataHome, AppName)
	}
	envPath := filepath.Join(cfg.DataDir, ".env")
	if _, statErr := os.Stat(envPath); statErr == nil {
		var e Env
		if e, err = GetEnv(envPath); chk.T(err) {
			return
		}
		if err = env.Load(cfg, &env.Options{
			Source:   overlay{e},
			SliceSep: ",",
		}); chk.E(err) {
			return
		}
	}
	err = cfg.Validate()
	return
}

// Default is the configuration with every default applied and the
// environment ignored.
func Default() (cfg *C) {
	cfg = &C{}
	if err := env.Load(cfg, &env.Options{Source: Env{}}); chk.E(err) {
		panic(err)
	}
	cfg.DataDir = filepath.Join(xdg.DataHome, AppName)
	return
}

// Validate checks the values that the loader cannot.
func (c *C) Validate() (err error) {
	switch strings.ToLower(c.Compression) {
	case "none", "snappy", "zstd":
	default:
		return errorf.E("unknown compression %q, want none, snappy or zstd", c.Compression)
	}
	if c.BlockCacheMB < 0 || c.IndexCacheMB < 0 || c.MemTableMB < 0 {
		return errorf.E("cache and memtable sizes must not be negative")
	}
	if c.GCInterval < 0 {
		return errorf.E("negative GC interval %v", c.GCInterval)
	}
	if c.GCDiscardPercent < 1 || c.GCDiscardPercent > 99 {
		return errorf.E("GC discard percent %d is not within 1 to 99", c.GCDiscardPercent)
	}
	if !c.InMemory && c.DataDir == "" {
		return errorf.E("no data directory")
	}
	return
}

// overlay reads the process environment first and the .env file second.
type overlay struct{ file Env }

func (o overlay) LookupEnv(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	return o.file.LookupEnv(key)
}

// HelpRequested returns true if any of the common types of help invocation are
// found as the first command line parameter/flag.
func HelpRequested() (help bool) {
	if len(os.Args) > 1 {
		switch strings.ToLower(os.Args[1]) {
		case "help", "-h", "--h", "-help", "--help", "?":
			help = true
		}
	}
	return
}

// PrintHelp outputs a help text listing the configuration options and default
// values to a provided io.Writer (usually os.Stderr or os.Stdout).
func PrintHelp(cfg *C, printer io.Writer) {
	_, _ = fmt.Fprintf(printer,
		"Environment variables that configure %s:\n\n", AppName)
	env.Usage(cfg, printer, options)
	_, _ = fmt.Fprintf(printer,
		"\nA .env file in %s is loaded for any variable the environment does "+
			"not set.\n\nset the environment using\n\n\t%s env > %s/.env\n\n",
		cfg.DataDir, os.Args[0], cfg.DataDir)
}
