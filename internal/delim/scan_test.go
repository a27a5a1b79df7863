package delim

import (
	"strings"
	"testing"
)

func split(src string) []string {
	return strings.Split(strings.TrimSuffix(src, "\n"), "\n")
}

func TestScanIgnoresTrivia(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"line comment", "fn a() { // {{{ ((\n}"},
		{"block comment", "fn a() { /* { ( */ }"},
		{"nested block comment", "/* outer /* inner { */ still ( */ fn a() {}"},
		{"multi-line block comment", "fn a() {\n/*\n{\n*/\n}"},
		{"string", "let s = \"{ ( [\";"},
		{"escaped quote", "let s = \"\\\" {\";"},
		{"string continues on next line", "let s = \"abc\\\n{ (\";"},
		{"raw string", "let s = r#\"a \" { \"#;"},
		{"byte raw string", "let s = br\"{\";"},
		{"char literal brace", "let c = '{';"},
		{"escaped char literal", "let c = '\\'';\nlet d = '(';"},
		{"unicode char literal", "let c = 'é'; let d = ')';"},
		{"backtick", "x := `{ (`"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Scan(split(tc.src))
			if !res.Balance().Zero() {
				t.Fatalf("expected balanced result, got %+v", res.Balance())
			}
			if res.EndMode != ModeCode {
				t.Fatalf("expected to end in code mode, got %d", res.EndMode)
			}
		})
	}
}

func TestScanLifetimesAreNotCharLiterals(t *testing.T) {
	res := Scan(split("fn f<'a>(x: &'a str) -> &'a str {\n    'outer: loop { break 'outer; }\n    x\n}"))
	if !res.Balance().Zero() {
		t.Fatalf("expected balanced, got %+v", res.Balance())
	}
	if len(res.Open) != 0 || len(res.Stray) != 0 {
		t.Fatalf("expected no unmatched tokens, got open=%v stray=%v", res.Open, res.Stray)
	}
}

func TestScanUnclosed(t *testing.T) {
	lines := split("fn main() {\n    if x {\n        call(1,\n")
	res := Scan(lines)
	b := res.Balance()
	if b.Brace != 2 || b.Paren != 1 {
		t.Fatalf("unexpected balance %+v", b)
	}
	if res.Imbalance() != 3 {
		t.Fatalf("expected imbalance 3, got %d", res.Imbalance())
	}
	if len(res.Open) != 3 {
		t.Fatalf("expected 3 open tokens, got %d", len(res.Open))
	}
	if res.Open[0].Line != 0 || res.Open[2].Ch != '(' {
		t.Fatalf("unexpected open stack %+v", res.Open)
	}
}

func TestScanStrayCloser(t *testing.T) {
	res := Scan(split("fn a() {\n    x)\n}"))
	if len(res.Stray) != 1 || res.Stray[0].Ch != ')' || res.Stray[0].Line != 1 {
		t.Fatalf("expected one stray ')', got %+v", res.Stray)
	}
}

func TestStartModeTracksComments(t *testing.T) {
	res := Scan(split("a\n/* x\n{\n*/\nb"))
	want := []Mode{ModeCode, ModeCode, ModeBlockComment, ModeBlockComment, ModeCode}
	for i, m := range want {
		if got := res.StartMode(i); got != m {
			t.Fatalf("line %d: expected mode %d, got %d", i, m, got)
		}
	}
	if len(res.Line(2)) != 0 {
		t.Fatalf("expected no tokens inside comment, got %v", res.Line(2))
	}
}

func TestEndModeInsideString(t *testing.T) {
	res := Scan(split("let s = \"abc\nstill"))
	if res.EndMode != ModeString {
		t.Fatalf("expected ModeString, got %d", res.EndMode)
	}
}

func TestIndent(t *testing.T) {
	if IndentOf("\t  x") != "\t  " {
		t.Fatalf("unexpected indent %q", IndentOf("\t  x"))
	}
	if Width("\t  x") != 6 {
		t.Fatalf("expected width 6, got %d", Width("\t  x"))
	}
	if !Blank(" \t") || Blank(" x") {
		t.Fatal("Blank misclassified lines")
	}
}
