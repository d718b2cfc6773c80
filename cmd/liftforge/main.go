package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/liftforge/liftforge/internal/envstruct"
	"github.com/liftforge/liftforge/internal/errors"
	"github.com/liftforge/liftforge/internal/logging"
	"github.com/liftforge/liftforge/internal/sqlite"
	"github.com/liftforge/liftforge/internal/workout"
)

type application struct {
	logger         *slog.Logger
	workoutService *workout.Service
	queryTool      *sqlite.ReadOnlyQueryTool
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"LIFTFORGE_ADDR" envDefault:"localhost:8080"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"LIFTFORGE_SQLITE_URL" envDefault:"./liftforge.sqlite3"`
	// OpenAIAPIKey enables the LLM workout drafting strategy when set.
	OpenAIAPIKey string `env:"LIFTFORGE_OPENAI_API_KEY" envDefault:""`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	app := application{
		logger:         logger,
		workoutService: workout.NewService(db, logger, cfg.OpenAIAPIKey),
		queryTool:      sqlite.NewReadOnlyQueryTool(db),
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
