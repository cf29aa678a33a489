package twoslash

import "testing"

func TestWrap_StatementOnly(t *testing.T) {
	w := Wrap(Classification{Body: "let y = 5;"})

	if w.Text != "fn main() {\nlet y = 5;\n}" {
		t.Errorf("Unexpected wrapped text: %q", w.Text)
	}
	if w.PreambleLen != 0 {
		t.Errorf("Expected PreambleLen 0, got %d", w.PreambleLen)
	}
	if w.WrapperPrefixLen != len(WrapperPrefix) {
		t.Errorf("Expected WrapperPrefixLen %d, got %d", len(WrapperPrefix), w.WrapperPrefixLen)
	}
}

func TestWrap_PreambleAndBody(t *testing.T) {
	c := Classification{
		Preamble: "fn helper() -> i32 { 1 }\n",
		Body:     "let z = helper();",
	}
	w := Wrap(c)

	want := "fn helper() -> i32 { 1 }\nfn main() {\nlet z = helper();\n}"
	if w.Text != want {
		t.Errorf("Expected wrapped text %q, got %q", want, w.Text)
	}
	if w.PreambleLen != len(c.Preamble) {
		t.Errorf("Expected PreambleLen %d, got %d", len(c.Preamble), w.PreambleLen)
	}

	// The recorded lengths must locate the body exactly.
	bodyStart := w.PreambleLen + w.WrapperPrefixLen
	if got := w.Text[bodyStart : bodyStart+len(c.Body)]; got != c.Body {
		t.Errorf("Recorded lengths do not locate the body: got %q", got)
	}
}

func TestWrap_NoBodyIsIdentity(t *testing.T) {
	snippet := "use foo::Bar;\n"
	w := Wrap(Classification{Preamble: snippet})

	if w.Text != snippet {
		t.Errorf("Expected identity text, got %q", w.Text)
	}
	if w.PreambleLen != 0 || w.WrapperPrefixLen != 0 {
		t.Errorf("Expected zero lengths for identity mapping, got (%d, %d)",
			w.PreambleLen, w.WrapperPrefixLen)
	}
}

func TestWrapperPrefixLength(t *testing.T) {
	// The remapping arithmetic depends on this exact literal.
	if len(WrapperPrefix) != 12 {
		t.Errorf("Expected wrapper prefix of 12 bytes, got %d", len(WrapperPrefix))
	}
}
