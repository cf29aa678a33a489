// Package engine adapts an external static type-analysis engine.
// The engine is a black box: it accepts a complete program text and
// returns hover annotations in that program's byte coordinates, or an
// error. Nothing in this package crashes the caller on engine trouble.
package engine

import "context"

// RawAnnotation is a hover result in the coordinates of the analyzed
// program text, exactly as reported by the engine.
type RawAnnotation struct {
	Start  int    `json:"start"`
	Length int    `json:"length"`
	Text   string `json:"text"`
	Docs   string `json:"docs,omitempty"`
}

// Engine is a stateless pure function over full program text for the
// duration of the process. Implementations are not assumed reentrant;
// callers serialize Analyze invocations.
type Engine interface {
	Analyze(ctx context.Context, program string) ([]RawAnnotation, error)
	Close() error
}
