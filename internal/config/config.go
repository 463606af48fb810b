// Package config loads service settings from a .env file, the environment
// and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"

	"github.com/erazemk/narocila/internal/db"
)

// Config holds the settings for the narocila service.
type Config struct {
	Addr      string
	Driver    string
	DSN       string
	LogPath   string
	LogLevel  string
	LogFormat string
	Seed      bool
}

// Usage describes the flags accepted by Load.
const Usage = `Flags:
  -a, -addr <host:port>   listen address (default: :8080, env NAROCILA_ADDR)
  -driver <name>          sqlite, mysql or postgres (default: sqlite, env NAROCILA_DB_DRIVER)
  -d, -db <dsn>           database file or DSN (default: narocila.sqlite3, env NAROCILA_DB)
  -l, -log <path>         log file path (default: stdout/stderr only, env NAROCILA_LOG)
  -log-level <level>      debug, info, warn or error (default: info, env NAROCILA_LOG_LEVEL)
  -log-format <format>    text or json (default: text, env NAROCILA_LOG_FORMAT)
  -seed                   insert demo data into an empty database (env NAROCILA_SEED)
  -h, -help               show this help and exit
`

func defaults() *Config {
	return &Config{
		Addr:      ":8080",
		Driver:    db.SQLite.Name,
		DSN:       "narocila.sqlite3",
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load builds a Config from .env, the environment and args. A missing .env
// file is not an error. flag.ErrHelp is returned as-is when -h is given.
func Load(name string, args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := defaults()
	if err := cfg.fromEnv(); err != nil {
		return nil, err
	}

	fset := flag.NewFlagSet(name, flag.ContinueOnError)
	fset.SetOutput(io.Discard)
	fset.StringVar(&cfg.Addr, "addr", cfg.Addr, "")
	fset.StringVar(&cfg.Addr, "a", cfg.Addr, "")
	fset.StringVar(&cfg.Driver, "driver", cfg.Driver, "")
	fset.StringVar(&cfg.DSN, "db", cfg.DSN, "")
	fset.StringVar(&cfg.DSN, "d", cfg.DSN, "")
	fset.StringVar(&cfg.LogPath, "log", cfg.LogPath, "")
	fset.StringVar(&cfg.LogPath, "l", cfg.LogPath, "")
	fset.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "")
	fset.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "")
	fset.BoolVar(&cfg.Seed, "seed", cfg.Seed, "")

	if err := fset.Parse(args); err != nil {
		return nil, err
	}
	if fset.NArg() > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", fset.Arg(0))
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) fromEnv() error {
	if v := os.Getenv("NAROCILA_ADDR"); v != "" {
		c.Addr = v
	}
	if v := os.Getenv("NAROCILA_DB_DRIVER"); v != "" {
		c.Driver = v
	}
	if v := os.Getenv("NAROCILA_DB"); v != "" {
		c.DSN = v
	}
	if v := os.Getenv("NAROCILA_LOG"); v != "" {
		c.LogPath = v
	}
	if v := os.Getenv("NAROCILA_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("NAROCILA_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("NAROCILA_SEED"); v != "" {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid NAROCILA_SEED %q: %w", v, err)
		}
		c.Seed = seed
	}
	return nil
}

func (c *Config) validate() error {
	if _, err := db.LookupDialect(c.Driver); err != nil {
		return err
	}
	if c.DSN == "" {
		return errors.New("database DSN required")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q", c.LogFormat)
	}
	return nil
}
