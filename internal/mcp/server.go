package mcp

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/tmm/rustdoc-twoslash/pkg/engine"
	"github.com/tmm/rustdoc-twoslash/pkg/manifest"
	"github.com/tmm/rustdoc-twoslash/pkg/twoslash"
	"github.com/tmm/rustdoc-twoslash/pkg/watch"
)

// Server holds the shared state for the MCP tool handlers: the snippet
// processing service and an optional manifest watcher that rebuilds the
// analysis engine when the manifest changes.
type Server struct {
	mu      sync.Mutex
	svc     *twoslash.Service
	watcher *watch.Watcher
	cancel  context.CancelFunc // stops watcher goroutine
	logger  *slog.Logger

	// ScratchDir is handed to the analyzer for build caching.
	ScratchDir string
}

// NewServer creates a Server with a fresh snippet-processing service.
func NewServer(logger *slog.Logger) *Server {
	s := &Server{logger: logger}
	s.svc = s.newService()
	return s
}

// newService builds a service whose engine picks up the current
// manifest state on first use.
func (s *Server) newService() *twoslash.Service {
	build := func() (engine.Engine, error) {
		return engine.NewSubprocess(engine.Settings{
			Manifest:   manifest.EngineText(s.logger),
			ScratchDir: s.ScratchDir,
			Logger:     s.logger,
		})
	}
	return twoslash.NewService(build, s.logger)
}

// Service returns the current snippet-processing service.
func (s *Server) Service() *twoslash.Service {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.svc
}

// WatchManifest starts a background watcher on the resolved manifest
// file. When the manifest changes, the engine is discarded so the next
// snippet picks up the new dependency context. Without a resolvable
// manifest path this is a no-op.
func (s *Server) WatchManifest(ctx context.Context) {
	path, ok := manifestPath()
	if !ok {
		s.logger.Info("no manifest to watch")
		return
	}

	w, err := watch.NewWatcher(path, 200*time.Millisecond, s.logger)
	if err != nil {
		s.logger.Warn("manifest watcher unavailable", "path", path, "err", err)
		return
	}

	s.mu.Lock()
	s.watcher = w
	watchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	ch := make(chan watch.ChangeEvent, 4)
	go func() {
		if err := w.Run(watchCtx, ch); err != nil && watchCtx.Err() == nil {
			s.logger.Error("manifest watcher error", "err", err)
		}
		// Run owns the channel; closing it lets the consumer exit.
		close(ch)
	}()
	go func() {
		for ev := range ch {
			s.logger.Info("manifest changed, resetting engine", "path", ev.Path)
			s.ResetService()
		}
	}()
}

// ResetService tears down the current engine and installs a fresh
// service so subsequent snippets get a newly configured engine.
func (s *Server) ResetService() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.svc.Close(); err != nil {
		s.logger.Warn("engine shutdown failed", "err", err)
	}
	s.svc = s.newService()
}

// Close stops the watcher and releases the engine.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.watcher != nil {
		_ = s.watcher.Close()
		s.watcher = nil
	}
	if err := s.svc.Close(); err != nil {
		s.logger.Warn("engine shutdown failed", "err", err)
	}
}

// manifestPath mirrors manifest.Resolve but only reports the path, for
// deciding what to watch.
func manifestPath() (string, bool) {
	if path, ok := os.LookupEnv(manifest.OverrideEnv); ok {
		return path, true
	}
	if _, err := os.Stat(manifest.DefaultFile); err == nil {
		return manifest.DefaultFile, true
	}
	return "", false
}
