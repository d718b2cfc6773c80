package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/liftforge/liftforge/internal/logging"
)

func TestContextHandlerEnrichesFromContext(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(&buf, nil)))

	ctx := logging.WithAttrs(context.Background(),
		slog.String("method", "GET"), slog.String("path", "/api/healthy"))
	ctx = logging.WithAttrs(ctx, slog.Int("attempt", 2))

	logger.LogAttrs(ctx, slog.LevelInfo, "request completed")

	out := buf.String()
	for _, want := range []string{"method=GET", "path=/api/healthy", "attempt=2", "request completed"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestContextHandlerWithoutContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(&buf, nil)))

	logger.LogAttrs(context.Background(), slog.LevelInfo, "plain message", slog.String("key", "value"))

	out := buf.String()
	if !strings.Contains(out, "plain message") || !strings.Contains(out, "key=value") {
		t.Errorf("unexpected log output: %s", out)
	}
}
