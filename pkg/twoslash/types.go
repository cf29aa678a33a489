// Package twoslash prepares documentation code snippets for static type
// analysis and maps the resulting hover annotations back onto the
// original snippet text.
//
// Many snippets are statement fragments that only parse inside a
// function body. The package classifies a snippet into a preamble of
// complete top-level items and a trailing statement body, wraps the
// body in a synthetic fn main, feeds the combined program to an
// external analysis engine, and remaps the engine's byte offsets onto
// the original snippet.
package twoslash

// Classification splits a snippet into a leading preamble of complete
// top-level items and a trailing body of statement-level code.
// An empty Body means no wrapping is required: the snippet is already a
// complete program or consists only of items.
//
// Invariant: Preamble + Body == the classified snippet, byte for byte.
type Classification struct {
	Preamble string
	Body     string
}

// NeedsWrap reports whether the snippet has statement-level code that
// must be enclosed in a synthetic entry point before analysis.
func (c Classification) NeedsWrap() bool {
	return c.Body != ""
}

// WrappedProgram is the analyzable program derived from a snippet,
// together with the byte lengths needed to invert the transform.
// When no wrapping occurred both lengths are zero and Text equals the
// original snippet.
type WrappedProgram struct {
	Text             string
	PreambleLen      int
	WrapperPrefixLen int
}

// TypeAnnotation is a hover-type result positioned against the
// original snippet text. Start and Length are byte-based; Start is
// zero-based.
type TypeAnnotation struct {
	Start    int    `json:"start"`
	Length   int    `json:"length"`
	TypeText string `json:"type_text"`
	Docs     string `json:"docs,omitempty"`
}
