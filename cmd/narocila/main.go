package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/erazemk/narocila/internal/api"
	"github.com/erazemk/narocila/internal/config"
	"github.com/erazemk/narocila/internal/db"
	"github.com/erazemk/narocila/internal/logging"
	"github.com/erazemk/narocila/internal/seed"
	"github.com/erazemk/narocila/internal/store"
)

const usage = `Usage: narocila [serve|seed] [flags]

Commands:
  serve   run the HTTP API (default)
  seed    insert demo items and an order, then exit

`

const shutdownTimeout = 5 * time.Second

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one command and returns the process exit code. Deferred
// cleanup (log file, database) always runs before the caller exits.
func run(args []string) int {
	cmd := "serve"
	if len(args) > 0 && (args[0] == "serve" || args[0] == "seed") {
		cmd, args = args[0], args[1:]
	}

	cfg, err := config.Load("narocila "+cmd, args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fmt.Fprint(os.Stdout, usage+config.Usage)
			return 0
		}
		fmt.Fprintf(os.Stderr, "error: %v\n\n%s%s", err, usage, config.Usage)
		return 1
	}

	// INFO/WARN go to stdout, ERROR to stderr, optionally also to a file.
	closeLog, err := logging.Setup(cfg.LogLevel, cfg.LogFormat, cfg.LogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer closeLog()

	database, s, err := openStore(cfg)
	if err != nil {
		log.WithError(err).Error("failed to open database")
		return 1
	}
	defer database.Close()

	switch cmd {
	case "seed":
		err = runSeed(s)
	default:
		err = runServe(cfg, s)
	}
	if err != nil {
		log.WithError(err).Error(cmd + " failed")
		return 1
	}
	return 0
}

// openStore opens the configured database and makes sure the schema exists.
func openStore(cfg *config.Config) (*sql.DB, *store.Store, error) {
	database, dialect, err := db.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	if err := db.EnsureSchema(database, dialect); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("ensuring schema: %w", err)
	}
	log.WithField("driver", dialect.Name).Info("database ready")
	return database, store.New(database, dialect), nil
}

func runSeed(s *store.Store) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return seed.Demo(ctx, s, s)
}

func runServe(cfg *config.Config, s *store.Store) error {
	if cfg.Seed {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		seeded, err := seed.IfEmpty(ctx, s, s)
		cancel()
		if err != nil {
			return fmt.Errorf("seeding: %w", err)
		}
		if !seeded {
			log.Info("database not empty, skipping demo data")
		}
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", cfg.Addr, err)
	}

	server := &http.Server{
		Handler:           api.NewRouter(s, s, s),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.WithField("addr", ln.Addr().String()).Info("server started")
	if err := serveUntil(ctx, server, ln); err != nil {
		return err
	}

	log.Info("server stopped, closing database")
	return nil
}

// serveUntil serves on ln until ctx is done, then shuts the server down and
// returns only after in-flight requests have finished or the drain timed out.
func serveUntil(ctx context.Context, server *http.Server, ln net.Listener) error {
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(ln)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server forced to shutdown")
		server.Close()
	}
	if err := <-serveErr; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
