package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/okian/matchpoint/internal/adapters/dispatch"
	"github.com/okian/matchpoint/internal/adapters/repository"
	"github.com/okian/matchpoint/internal/config"
	"github.com/okian/matchpoint/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	// Apply configured log level (fallback to info on invalid input).
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		log.Error(ctx, "store setup failed", logger.Error(err))
		return 1
	}

	registry := dispatch.NewRegistry(store,
		dispatch.WithLogger(log.Named("engine")),
		dispatch.WithDefaultCourts(cfg.DefaultMaxCourts),
	)

	if len(os.Args) < 2 {
		printUsage(registry)
		return 0
	}

	name := os.Args[1]
	args, err := parseArgs(os.Args[2:])
	if err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		return 1
	}

	result := registry.Invoke(ctx, name, args)
	fmt.Println(result)
	if strings.HasPrefix(result, "Error:") {
		return 1
	}
	return 0
}

// buildStore constructs the configured item store. Table provisioning
// failures are fatal: nothing works without the table.
func buildStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	if cfg.StoreBackend == config.BackendMemory {
		return repository.NewMemoryStore(), nil
	}
	store, err := repository.NewDynamoStore(ctx,
		repository.WithTable(cfg.TableName),
		repository.WithRegion(cfg.AWSRegion),
		repository.WithEndpoint(cfg.DynamoEndpoint),
	)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureTable(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// parseArgs turns trailing key=value tokens into command arguments.
func parseArgs(tokens []string) (dispatch.Args, error) {
	args := make(dispatch.Args, len(tokens))
	for _, tok := range tokens {
		key, value, found := strings.Cut(tok, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("argument %q is not key=value", tok)
		}
		args[key] = value
	}
	return args, nil
}

func printUsage(registry *dispatch.Registry) {
	fmt.Println("matchpoint - recreational doubles tournament engine")
	fmt.Println("\nUsage: matchpoint <command> [key=value ...]")
	fmt.Println("\nCommands:")
	for _, cmd := range registry.Commands() {
		fmt.Printf("  %s\n", cmd.Usage)
	}
}
