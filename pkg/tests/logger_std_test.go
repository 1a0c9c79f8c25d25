package tests

import (
	"log/slog"
	"strings"
	"testing"

	"github.com/confspace/conference-service/pkg/logger"
)

func TestInit_DevStd_TextOutput(t *testing.T) {
	cfg := logger.Config{
		Service: "conference-service",
		Version: "v0.0.1",
		Env:     logger.EnvDev,
		Backend: logger.BackendStd,
		Level:   slog.LevelDebug,
	}

	out := captureStdOut(func() {
		logger.Init(cfg)
		slog.Info("room created", slog.String("room", "r1"))
	})

	if strings.Contains(out, "{") && strings.Contains(out, "}") {
		t.Fatalf("expected text output in dev/std, got JSON: %s", out)
	}
	if !strings.Contains(out, "room created") {
		t.Fatalf("message missing: %s", out)
	}
	if !strings.Contains(out, "service=conference-service") {
		t.Fatalf("service attr missing: %s", out)
	}
	if !strings.Contains(out, "room=r1") {
		t.Fatalf("custom attr missing: %s", out)
	}
}
