package twoslash

import "github.com/tmm/rustdoc-twoslash/pkg/engine"

// Remap converts raw engine annotations from wrapped-program
// coordinates back to original-snippet coordinates.
//
// Wrapped-program regions:
//
//	[0, preambleLen)                                preamble, unchanged
//	[preambleLen, preambleLen+wrapperPrefixLen)     synthetic header, dropped
//	[preambleLen+wrapperPrefixLen, ...)             body, shifted left by wrapperPrefixLen
//
// When wrapperPrefixLen is zero no wrapping occurred and positions pass
// through unchanged. Annotations that land at or past originalLen after
// adjustment (e.g. inside the synthetic suffix) are dropped, as are
// single-byte annotations, which are punctuation noise rather than
// hover targets. Engine output is untrusted: out-of-range positions are
// dropped, never an error. Surviving annotations keep the engine's
// order.
func Remap(raw []engine.RawAnnotation, preambleLen, wrapperPrefixLen, originalLen int) []TypeAnnotation {
	out := make([]TypeAnnotation, 0, len(raw))
	for _, a := range raw {
		start := a.Start
		switch {
		case wrapperPrefixLen == 0:
			// Identity mapping.
		case start < preambleLen:
			// Preamble positions are unaffected by wrapping.
		case start < preambleLen+wrapperPrefixLen:
			// Inside the synthetic header; no correspondent in the snippet.
			continue
		default:
			start -= wrapperPrefixLen
		}

		if start < 0 || start >= originalLen {
			continue
		}
		if a.Length <= 1 {
			continue
		}

		out = append(out, TypeAnnotation{
			Start:    start,
			Length:   a.Length,
			TypeText: a.Text,
			Docs:     a.Docs,
		})
	}
	return out
}
