package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"boidrace/pkg/boidrace"
)

func TestRunMissingCommand(t *testing.T) {
	err := run(context.Background(), nil)
	if err == nil || !strings.Contains(err.Error(), "missing command") {
		t.Fatalf("err = %v, want missing command usage", err)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	err := run(context.Background(), []string{"bogus"})
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("err = %v, want unknown command usage", err)
	}
}

func TestInitCommandMemoryStore(t *testing.T) {
	if err := run(context.Background(), []string{"init", "-store", "memory"}); err != nil {
		t.Fatalf("init: %v", err)
	}
}

func TestRunCommandMemoryStore(t *testing.T) {
	args := []string{
		"run",
		"-store", "memory",
		"-pop", "4",
		"-gens", "2",
		"-max-lifespan", "1",
		"-seed", "7",
	}
	if err := run(context.Background(), args); err != nil {
		t.Fatalf("run command: %v", err)
	}
}

func TestTrackCommand(t *testing.T) {
	if err := run(context.Background(), []string{"track", "-seed", "5"}); err != nil {
		t.Fatalf("track command: %v", err)
	}
}

func TestFitnessRequiresRunID(t *testing.T) {
	err := run(context.Background(), []string{"fitness", "-store", "memory"})
	if err == nil || !strings.Contains(err.Error(), "-run-id") {
		t.Fatalf("err = %v, want run-id usage", err)
	}
}

func TestExportUnknownRun(t *testing.T) {
	err := run(context.Background(), []string{"export", "-store", "memory", "-run-id", "nope"})
	if err == nil {
		t.Fatal("expected error for unknown run")
	}
}

func TestImportRejectsInvalidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "champion.json")
	if err := os.WriteFile(path, []byte(`{"generation": 3}`), 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}

	err := run(context.Background(), []string{"import", "-store", "memory", "-in", path})
	if !errors.Is(err, boidrace.ErrInvalidChampionDocument) {
		t.Fatalf("err = %v, want ErrInvalidChampionDocument", err)
	}
}

func TestImportRequiresPath(t *testing.T) {
	err := run(context.Background(), []string{"import", "-store", "memory"})
	if err == nil || !strings.Contains(err.Error(), "-in") {
		t.Fatalf("err = %v, want -in usage", err)
	}
}

func TestImportAcceptsValidDocument(t *testing.T) {
	doc := `{
		"generation": 2,
		"fitness": 2100,
		"network": {"layers": [{}, {"weights": [[0.1]], "biases": [0.2]}]}
	}`
	path := filepath.Join(t.TempDir(), "champion.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write document: %v", err)
	}

	if err := run(context.Background(), []string{"import", "-store", "memory", "-in", path}); err != nil {
		t.Fatalf("import: %v", err)
	}
}
