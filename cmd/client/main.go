package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.etcd.io/bbolt"

	"github.com/medigrid/layoutsync/internal/client/cli"
	"github.com/medigrid/layoutsync/internal/client/identity"
	"github.com/medigrid/layoutsync/internal/client/iocli"
	"github.com/medigrid/layoutsync/internal/client/session"
	"github.com/medigrid/layoutsync/internal/client/sync"
	"github.com/medigrid/layoutsync/internal/client/transport"
	"github.com/medigrid/layoutsync/internal/client/transport/docstore"
	"github.com/medigrid/layoutsync/internal/client/transport/rest"
	"github.com/medigrid/layoutsync/internal/config"
	"github.com/medigrid/layoutsync/internal/models"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	configPath := flag.String("config", "", "Path to TOML config file")
	serverURL := flag.String("server", "", "Server URL")
	backend := flag.String("backend", "", "Transport backend: rest or docstore")
	dbPath := flag.String("db", "", "Path to local database")
	role := flag.String("role", "", "Participant role: surgeon, admin or viewer")
	verbose := flag.Bool("verbose", false, "Enable debug logging")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage()
		os.Exit(1)
	}

	cfg := config.DefaultClient()
	if *configPath != "" {
		loaded, err := config.LoadClient(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	// Flags override file values.
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *role != "" {
		cfg.Role = *role
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	parsedRole, ok := models.ParseRole(cfg.Role)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown role: %s\n", cfg.Role)
		os.Exit(1)
	}

	db, err := bbolt.Open(cfg.DBPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	idStore, err := identity.NewStore(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open identity store: %v\n", err)
		os.Exit(1)
	}
	userID, err := idStore.UserID(parsedRole)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to resolve identity: %v\n", err)
		os.Exit(1)
	}

	var (
		adapter   transport.Adapter
		authority transport.Authority
	)
	switch cfg.Backend {
	case "rest", "":
		tokens := identity.NewTokenSource(cfg.ServerURL, userID, parsedRole, logger)
		restAdapter := rest.NewAdapter(rest.NewClient(cfg.ServerURL, tokens, logger), logger)
		adapter, authority = restAdapter, restAdapter
	case "docstore":
		store, err := docstore.NewStore(db)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open document store: %v\n", err)
			os.Exit(1)
		}
		docAdapter := docstore.NewAdapter(store, logger)
		adapter, authority = docAdapter, docAdapter
	default:
		fmt.Fprintf(os.Stderr, "Unknown backend: %s\n", cfg.Backend)
		os.Exit(1)
	}

	stdio := iocli.NewStdio()
	printer := cli.NewPrinter(stdio)

	core := sync.NewCore(adapter, transport.Identity{UserID: userID, Role: parsedRole}, sync.Options{
		OnNotice: printer.Notice,
		OnStatus: printer.Status,
		Logger:   logger,
	})
	defer core.Close()

	control := session.NewController(authority, core, parsedRole, logger)

	ctx, cancel := signalContext()
	defer cancel()

	cli.Run(ctx, args[0], args[1:], cli.Deps{
		IO:        stdio,
		Authority: authority,
		Control:   control,
		Core:      core,
	})
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func printVersion() {
	fmt.Printf("layoutsync Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
