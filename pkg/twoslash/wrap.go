package twoslash

import "strings"

// Text inserted around the body when a snippet needs a synthetic entry
// point. WrapperPrefix length is the compile-time constant every offset
// adjustment hinges on.
const (
	WrapperPrefix = "fn main() {\n"
	WrapperSuffix = "\n}"
)

// Wrap builds the analyzable program for a classification. When the
// body is non-empty the result is preamble + WrapperPrefix + body +
// WrapperSuffix with the two byte lengths recorded for remapping.
// When the body is empty the original snippet passes through untouched
// and both lengths are zero, signalling identity mapping.
func Wrap(c Classification) WrappedProgram {
	if !c.NeedsWrap() {
		return WrappedProgram{Text: c.Preamble}
	}

	var b strings.Builder
	b.Grow(len(c.Preamble) + len(WrapperPrefix) + len(c.Body) + len(WrapperSuffix))
	b.WriteString(c.Preamble)
	b.WriteString(WrapperPrefix)
	b.WriteString(c.Body)
	b.WriteString(WrapperSuffix)

	return WrappedProgram{
		Text:             b.String(),
		PreambleLen:      len(c.Preamble),
		WrapperPrefixLen: len(WrapperPrefix),
	}
}
