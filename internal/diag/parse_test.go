package diag

import (
	"testing"
)

const cargoOutput = `    Checking demo v0.1.0 (/work/demo)
error: this file contains an unclosed delimiter
  --> src/system/core/mod.rs:120:3
   |
12 | impl Core {
   |           - unclosed delimiter
...
120|
   |  ^

error[E0425]: cannot find value ` + "`x`" + ` in this scope
 --> src/main.rs:7:13
  |
7 |     let y = x;
  |             ^ not found in this scope

warning: unused variable: ` + "`z`" + `
 --> src/main.rs:9:9

error: aborting due to 2 previous errors
`

func TestParseExtractsLocationsInOrder(t *testing.T) {
	bag := Parse(cargoOutput, "")
	items := bag.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 locations, got %d: %+v", len(items), items)
	}
	first := items[0]
	if first.Path != "src/system/core/mod.rs" || first.Line != 120 || first.Column != 3 {
		t.Fatalf("unexpected first location %+v", first)
	}
	if first.Message != "error: this file contains an unclosed delimiter" {
		t.Fatalf("unexpected message %q", first.Message)
	}
	if first.Raw != "--> src/system/core/mod.rs:120:3" {
		t.Fatalf("unexpected raw line %q", first.Raw)
	}
	if items[1].Severity != SevError || items[1].Line != 7 {
		t.Fatalf("unexpected second location %+v", items[1])
	}
	if items[2].Severity != SevWarning {
		t.Fatalf("expected warning severity, got %v", items[2].Severity)
	}
}

func TestParseDeduplicatesByPathAndLine(t *testing.T) {
	text := "error: a\n --> src/a.rs:3:1\nerror: b\n --> src/a.rs:3:9\n --> ./src/a.rs:4\n --> src/a.rs:3\n"
	bag := Parse(text, DefaultMarker)
	if bag.Len() != 2 {
		t.Fatalf("expected 2 unique locations, got %d: %+v", bag.Len(), bag.Items())
	}
	if bag.Items()[0].Message != "error: a" {
		t.Fatalf("expected first-seen diagnostic to win, got %q", bag.Items()[0].Message)
	}
	if got := bag.Items()[1]; got.Path != "src/a.rs" || got.Line != 4 {
		t.Fatalf("expected ./src/a.rs to be cleaned to src/a.rs, got %+v", got)
	}
}

func TestParseErrorAfterWarningAtSameLocation(t *testing.T) {
	text := "warning: unused variable\n --> src/a.rs:4:9\nerror: this file contains an unclosed delimiter\n --> src/a.rs:4:9\n"
	bag := Parse(text, "")
	if bag.Len() != 1 {
		t.Fatalf("expected 1 location, got %d: %+v", bag.Len(), bag.Items())
	}
	if !bag.HasErrors() {
		t.Fatal("expected the repeated error to upgrade the warning")
	}
	act := bag.Actionable()
	if act.Len() != 1 {
		t.Fatalf("expected 1 actionable location, got %d", act.Len())
	}
	d := act.Items()[0]
	if d.Severity != SevError || d.Message != "error: this file contains an unclosed delimiter" {
		t.Fatalf("expected the error diagnostic to be kept, got %+v", d)
	}
}

func TestParseWarningAfterErrorKeepsError(t *testing.T) {
	text := "error: a\n --> src/a.rs:4:9\nwarning: b\n --> src/a.rs:4:1\n"
	bag := Parse(text, "")
	if bag.Len() != 1 || bag.Items()[0].Message != "error: a" {
		t.Fatalf("expected error to win, got %+v", bag.Items())
	}
}

func TestParseWithoutMarkers(t *testing.T) {
	bag := Parse("error: linker `cc` not found\n", "")
	if bag.Len() != 0 {
		t.Fatalf("expected no locations, got %d", bag.Len())
	}
}

func TestParseColumnOptional(t *testing.T) {
	bag := Parse(" --> lib.rs:12\n", "")
	if bag.Len() != 1 {
		t.Fatalf("expected 1 location, got %d", bag.Len())
	}
	d := bag.Items()[0]
	if d.Line != 12 || d.Column != 0 {
		t.Fatalf("unexpected location %+v", d)
	}
	if d.Severity != SevError {
		t.Fatalf("expected headerless location to count as error, got %v", d.Severity)
	}
}

func TestParseCustomMarker(t *testing.T) {
	bag := Parse("at: pkg/x.go:5:2\n --> ignored.rs:1\n", "at:")
	if bag.Len() != 1 || bag.Items()[0].Path != "pkg/x.go" {
		t.Fatalf("unexpected result %+v", bag.Items())
	}
}

func TestParseNormalizesUnicodePaths(t *testing.T) {
	decomposed := "src/cafe\u0301.rs"
	composed := "src/caf\u00e9.rs"
	bag := Parse(" --> "+decomposed+":1\n --> "+composed+":1\n", "")
	if bag.Len() != 1 {
		t.Fatalf("expected NFD and NFC spellings to dedup, got %d", bag.Len())
	}
	if bag.Items()[0].Path != composed {
		t.Fatalf("expected NFC path, got %q", bag.Items()[0].Path)
	}
}

func TestActionableDropsWarnings(t *testing.T) {
	bag := Parse(cargoOutput, "")
	act := bag.Actionable()
	if act.Len() != 2 {
		t.Fatalf("expected 2 actionable locations, got %d", act.Len())
	}
	if !bag.HasErrors() {
		t.Fatal("expected HasErrors")
	}
	warnOnly := Parse("warning: x\n --> a.rs:1\n", "")
	if warnOnly.Actionable().Len() != 0 {
		t.Fatal("expected warnings to be dropped")
	}
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Path: "a.rs", Line: 3, Column: 2, Message: "error: x"}
	if got := d.String(); got != "a.rs:3:2: error: x" {
		t.Fatalf("unexpected String %q", got)
	}
}
