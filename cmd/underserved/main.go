package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	underserved "github.com/JohnnyAddis/underserved-sports-mvp"
	"github.com/JohnnyAddis/underserved-sports-mvp/logging"
	"github.com/JohnnyAddis/underserved-sports-mvp/store"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "serve":
		exitOn(runServe())
	case "seed":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: underserved seed <fixtures.yaml>")
			os.Exit(1)
		}
		exitOn(runSeed(os.Args[2]))
	case "version":
		fmt.Printf("underserved %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func exitOn(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`underserved - news site for underserved sports leagues

Usage:
  underserved [command] [arguments]

Commands:
  serve             Run the web server (default)
  seed <file.yaml>  Load fixtures into the local SQLite content mirror
  version           Print the version
  help              Show this help message

Configuration is read from .env, the YAML file named by CONFIG_FILE, and
environment variables such as SITE_URL, SANITY_PROJECT_ID and CONTENT_BACKEND.`)
}

func newLogger(cfg underserved.SiteConfig) zerolog.Logger {
	return logging.New(cfg.LogLevel, cfg.LogFormat, "underserved").With().Str("version", version).Logger()
}

func runServe() error {
	cfg, err := underserved.LoadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	app, err := underserved.New(cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return app.Start(ctx)
}

// runSeed only needs the database path, so it does not require Sanity
// settings to be present.
func runSeed(path string) error {
	cfg, err := underserved.LoadConfig()
	if err != nil && cfg.DatabasePath == "" {
		return err
	}
	log := newLogger(cfg)

	fixtures, err := store.LoadFixtures(path)
	if err != nil {
		return err
	}
	st, err := store.NewStore(cfg.DatabasePath, store.WithLogger(log))
	if err != nil {
		return err
	}
	defer st.Close()

	res, err := st.Seed(context.Background(), fixtures)
	if err != nil {
		return err
	}
	log.Info().
		Str("database", cfg.DatabasePath).
		Int("authors", res.Authors).
		Int("leagues", res.Leagues).
		Int("teams", res.Teams).
		Int("articles", res.Articles).
		Int("evergreens", res.Evergreen).
		Msg("seeded content mirror")
	return nil
}
