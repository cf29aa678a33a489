package mcp

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/tmm/rustdoc-twoslash/pkg/engine"
	"github.com/tmm/rustdoc-twoslash/pkg/manifest"
	"github.com/tmm/rustdoc-twoslash/pkg/twoslash"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewServer(t *testing.T) {
	s := NewServer(testLogger())
	defer s.Close()

	if s.Service() == nil {
		t.Fatal("Expected a service on a fresh server")
	}
}

func TestResetServiceSwapsService(t *testing.T) {
	s := NewServer(testLogger())
	defer s.Close()

	before := s.Service()
	s.ResetService()
	after := s.Service()

	if before == after {
		t.Error("Expected ResetService to install a fresh service")
	}
}

func TestManifestPath(t *testing.T) {
	t.Setenv(manifest.OverrideEnv, "/tmp/override/Cargo.toml")
	path, ok := manifestPath()
	if !ok || path != "/tmp/override/Cargo.toml" {
		t.Errorf("Expected override path, got (%q, %v)", path, ok)
	}

	os.Unsetenv(manifest.OverrideEnv)
	dir := t.TempDir()
	t.Chdir(dir)
	if _, ok := manifestPath(); ok {
		t.Error("Expected no manifest path in empty directory")
	}

	if err := os.WriteFile(filepath.Join(dir, manifest.DefaultFile), []byte("[package]\nname = \"demo\"\n"), 0o644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}
	path, ok = manifestPath()
	if !ok || path != manifest.DefaultFile {
		t.Errorf("Expected default manifest path, got (%q, %v)", path, ok)
	}
}

func TestWatchManifestResetsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Cargo.toml")
	if err := os.WriteFile(path, []byte("[package]\nname = \"demo\"\n"), 0o644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}
	t.Setenv(manifest.OverrideEnv, path)

	s := NewServer(testLogger())
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.WatchManifest(ctx)

	before := s.Service()
	if err := os.WriteFile(path, []byte("[package]\nname = \"demo\"\nversion = \"0.2.0\"\n"), 0o644); err != nil {
		t.Fatalf("Failed to rewrite manifest: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.Service() == before {
		if time.Now().After(deadline) {
			t.Fatal("Service was not reset after manifest change")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

// watchGoroutines counts live goroutines parked inside WatchManifest.
func watchGoroutines() int {
	buf := make([]byte, 1<<20)
	n := runtime.Stack(buf, true)
	return strings.Count(string(buf[:n]), "WatchManifest")
}

func TestCloseStopsWatchGoroutines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Cargo.toml")
	if err := os.WriteFile(path, []byte("[package]\nname = \"demo\"\n"), 0o644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}
	t.Setenv(manifest.OverrideEnv, path)

	s := NewServer(testLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.WatchManifest(ctx)

	s.Close()

	deadline := time.Now().Add(2 * time.Second)
	for watchGoroutines() > 0 {
		if time.Now().After(deadline) {
			t.Fatal("Watcher goroutines still running after Close")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestProcessSnippet_DisabledGate(t *testing.T) {
	t.Setenv(twoslash.EnableEnv, "unused")
	os.Unsetenv(twoslash.EnableEnv)

	s := NewServer(testLogger())
	defer s.Close()

	result := processSnippet(context.Background(), s, "let y = 5;")

	if len(result.Annotations) != 0 {
		t.Errorf("Expected no annotations while disabled, got %v", result.Annotations)
	}
	if len(result.Diagnostics) != 1 || result.Diagnostics[0].Code != twoslash.CodeDisabled {
		t.Fatalf("Expected a disabled diagnostic, got %v", result.Diagnostics)
	}
}

func TestProcessSnippet_EnabledReachesService(t *testing.T) {
	t.Setenv(twoslash.EnableEnv, "1")
	// No analyzer configured: the engine fails to construct and the
	// call degrades, proving the gate let it through to the service.
	t.Setenv(engine.CommandEnv, "")

	s := NewServer(testLogger())
	defer s.Close()

	result := processSnippet(context.Background(), s, "let y = 5;")

	if len(result.Annotations) != 0 {
		t.Errorf("Expected empty annotations without an analyzer, got %v", result.Annotations)
	}
	if len(result.Diagnostics) != 1 || result.Diagnostics[0].Code != twoslash.CodeEngineUnavailable {
		t.Fatalf("Expected an engine_unavailable diagnostic, got %v", result.Diagnostics)
	}
}
