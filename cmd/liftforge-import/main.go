// Command liftforge-import loads an exercise catalog from a YAML file into the
// database. Entries are matched by name, so re-running an import updates
// existing exercises in place.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/liftforge/liftforge/internal/envstruct"
	"github.com/liftforge/liftforge/internal/errors"
	"github.com/liftforge/liftforge/internal/logging"
	"github.com/liftforge/liftforge/internal/sqlite"
	"github.com/liftforge/liftforge/internal/workout"
	"gopkg.in/yaml.v3"
)

type config struct {
	// SqliteURL is the URL to the SQLite database.
	SqliteURL string `env:"LIFTFORGE_SQLITE_URL" envDefault:"./liftforge.sqlite3"`
}

// catalogEntry mirrors workout.Exercise with YAML field names.
type catalogEntry struct {
	Name          string   `yaml:"name"`
	Type          string   `yaml:"type"`
	BodyPart      string   `yaml:"body_part"`
	Equipment     string   `yaml:"equipment"`
	TargetMuscle  string   `yaml:"target_muscle"`
	Synergists    []string `yaml:"synergists"`
	Complexity    int      `yaml:"complexity"`
	NotesMarkdown string   `yaml:"notes"`
}

type catalogFile struct {
	Exercises []catalogEntry `yaml:"exercises"`
}

func (e catalogEntry) toExercise() workout.Exercise {
	synergists := make([]workout.MuscleGroup, 0, len(e.Synergists))
	for _, muscle := range e.Synergists {
		synergists = append(synergists, workout.MuscleGroup(muscle))
	}
	return workout.Exercise{
		Name:          e.Name,
		Type:          workout.ExerciseType(e.Type),
		BodyPart:      e.BodyPart,
		Equipment:     e.Equipment,
		TargetMuscle:  workout.MuscleGroup(e.TargetMuscle),
		Synergists:    synergists,
		Complexity:    e.Complexity,
		NotesMarkdown: e.NotesMarkdown,
	}
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool), path string) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read catalog file", slog.String("path", path))
	}

	var catalog catalogFile
	if err = yaml.Unmarshal(raw, &catalog); err != nil {
		return errors.Wrap(err, "parse catalog file", slog.String("path", path))
	}
	if len(catalog.Exercises) == 0 {
		return errors.Wrap(errors.New("catalog file contains no exercises"), "parse catalog file",
			slog.String("path", path))
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}

	exercises := make([]workout.Exercise, 0, len(catalog.Exercises))
	for _, entry := range catalog.Exercises {
		exercises = append(exercises, entry.toExercise())
	}

	service := workout.NewService(db, logger, "")
	imported, err := service.ImportExercises(ctx, exercises)
	if err != nil {
		return errors.Wrap(err, "import exercises")
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "catalog imported",
		slog.Int("imported", imported), slog.String("path", path))

	return nil
}

func main() {
	path := flag.String("catalog", "catalog.yaml", "path to the YAML catalog file")
	flag.Parse()

	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelInfo,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv, *path); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "import failed", errors.SlogError(err))
		os.Exit(1)
	}
}
