package twoslash

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/tmm/rustdoc-twoslash/pkg/engine"
)

// EnableEnv gates snippet processing. Presence is all that matters;
// the value is ignored.
const EnableEnv = "RUSTDOC_TWOSLASH"

// Enabled reports whether twoslash processing is turned on for this
// process.
func Enabled() bool {
	_, ok := os.LookupEnv(EnableEnv)
	return ok
}

// Service owns exclusive access to the shared analysis engine. The
// engine is constructed lazily on first use and lives for the Service's
// lifetime; all analyses are serialized through the Service mutex, so
// at most one Analyze call is in flight at a time.
//
// The classify/wrap/remap stages are pure and run outside the lock.
// Engine trouble never propagates to callers: construction failures and
// panics latch the Service into a degraded state in which every call
// returns an empty annotation list.
type Service struct {
	mu     sync.Mutex
	build  func() (engine.Engine, error)
	eng    engine.Engine
	tried  bool
	broken bool
	logger *slog.Logger
}

// Status is a point-in-time snapshot of the Service's engine state.
type Status struct {
	Enabled bool `json:"enabled"`
	Started bool `json:"started"`
	Broken  bool `json:"broken"`
}

// NewService creates a Service that obtains its engine from build on
// first use. A nil logger falls back to slog.Default.
func NewService(build func() (engine.Engine, error), logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{build: build, logger: logger}
}

// ProcessCodeBlock classifies, wraps, analyzes, and remaps one snippet.
// The returned annotations are positioned against the original snippet
// bytes. It never fails: every error degrades to an empty (or partial)
// annotation list.
func (s *Service) ProcessCodeBlock(ctx context.Context, snippet string) []TypeAnnotation {
	annotations, _ := s.ProcessCodeBlockDiag(ctx, snippet)
	return annotations
}

// ProcessCodeBlockDiag is ProcessCodeBlock plus the structured
// diagnostics describing any failures that were recovered along the
// way.
func (s *Service) ProcessCodeBlockDiag(ctx context.Context, snippet string) ([]TypeAnnotation, []Diagnostic) {
	if strings.TrimSpace(snippet) == "" {
		return nil, nil
	}

	c := Classify(snippet)
	w := Wrap(c)

	raw, diags := s.analyze(ctx, w.Text)
	return Remap(raw, w.PreambleLen, w.WrapperPrefixLen, len(snippet)), diags
}

// analyze runs the engine under the Service lock. Panics from the
// engine are recovered and latch the broken state.
func (s *Service) analyze(ctx context.Context, program string) (raw []engine.RawAnnotation, diags []Diagnostic) {
	s.mu.Lock()
	defer s.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.broken = true
			s.logger.Error("analysis engine panicked", "panic", r)
			raw = nil
			diags = []Diagnostic{{
				Code:    CodeEngineUnavailable,
				Message: fmt.Sprintf("engine panicked: %v", r),
			}}
		}
	}()

	if s.broken {
		return nil, []Diagnostic{{
			Code:    CodeEngineUnavailable,
			Message: "analysis engine is unavailable",
		}}
	}

	if !s.tried {
		s.tried = true
		eng, err := s.build()
		if err != nil {
			s.broken = true
			s.logger.Warn("analysis engine construction failed", "err", err)
			return nil, []Diagnostic{{
				Code:    CodeEngineUnavailable,
				Message: err.Error(),
			}}
		}
		s.eng = eng
	}

	out, err := s.eng.Analyze(ctx, program)
	if err != nil {
		s.logger.Warn("analysis failed", "err", err)
		return nil, []Diagnostic{{Code: CodeAnalysis, Message: err.Error()}}
	}
	return out, nil
}

// Status reports the engine state without touching it.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Enabled: Enabled(),
		Started: s.eng != nil,
		Broken:  s.broken,
	}
}

// Close releases the engine if one was constructed.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.eng == nil {
		return nil
	}
	err := s.eng.Close()
	s.eng = nil
	s.broken = true // no further analyses after close
	return err
}
