package twoslash

import "strings"

// itemPrefixes are the tokens that can begin a top-level Rust item:
// declarations, imports, and attribute markers. A trimmed line starting
// with one of these stays in the preamble.
var itemPrefixes = []string{
	"fn ", "struct ", "enum ", "impl ", "trait ", "mod ",
	"pub ", "extern ", "const ", "static ", "type ", "use ",
	"#[", "#!",
}

// Classify scans a snippet and finds the boundary between the leading
// preamble of complete top-level items and the trailing statement body.
// The scan is line-oriented with a brace-depth counter: while inside a
// braced item the depth tracks opening and closing braces, and the line
// that returns it to zero is still preamble. At depth zero, blank lines
// and item-prefix lines extend the preamble; the first line matching
// neither is a statement and everything from the current split point to
// the end of the snippet becomes the body.
//
// A snippet that already contains an entry-point function is never
// split, and a body that is only whitespace collapses to no split.
func Classify(snippet string) Classification {
	if strings.Contains(snippet, "fn main") {
		return Classification{Preamble: snippet}
	}

	depth := 0
	split := 0 // byte offset just past the last preamble line
	off := 0

scan:
	for off < len(snippet) {
		lineEnd := strings.IndexByte(snippet[off:], '\n')
		if lineEnd < 0 {
			lineEnd = len(snippet)
		} else {
			lineEnd = off + lineEnd + 1
		}
		line := strings.TrimSuffix(snippet[off:lineEnd], "\n")

		if depth > 0 {
			depth = nextDepth(depth, line)
			split = lineEnd
			off = lineEnd
			continue
		}

		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			// Blank lines between items belong to the preamble.
			split = lineEnd
		case isItemLine(trimmed):
			depth = nextDepth(depth, line)
			split = lineEnd
		default:
			// First statement line; the rest of the snippet is body.
			break scan
		}
		off = lineEnd
	}

	body := snippet[split:]
	if strings.TrimSpace(body) == "" {
		return Classification{Preamble: snippet}
	}
	return Classification{Preamble: snippet[:split], Body: body}
}

// nextDepth applies the braces on line to depth. Depth is clamped at
// zero so unbalanced closing braces cannot wedge the scanner into a
// permanent "inside item" state.
func nextDepth(depth int, line string) int {
	depth += strings.Count(line, "{") - strings.Count(line, "}")
	if depth < 0 {
		depth = 0
	}
	return depth
}

func isItemLine(trimmed string) bool {
	for _, prefix := range itemPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}
