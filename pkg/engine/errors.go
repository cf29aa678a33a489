package engine

import "fmt"

// Kind categorizes engine adapter failures.
type Kind int

const (
	// KindConfig: the adapter was misconfigured (no analyzer command).
	KindConfig Kind = iota
	// KindSpawn: the analyzer process could not be started or died.
	KindSpawn
	// KindProtocol: the analyzer sent a frame we could not understand.
	KindProtocol
	// KindAnalysis: the analyzer ran but rejected the program.
	KindAnalysis
)

// Error represents a failure in the analysis engine adapter.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}
