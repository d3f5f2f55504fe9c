package mutators

import (
	"strings"
	"testing"

	"github.com/hwpx-surgeon/hwpx-surgeon/internal/mutationlog"
)

func TestApplyDirectTextUpdateMatchesOldText(t *testing.T) {
	para := `<hp:p id="p1"><hp:run><hp:t>hello</hp:t></hp:run></hp:p>`

	out, err := ApplyDirectTextUpdate(para, mutationlog.DirectTextUpdate{OldText: "hello", NewText: "goodbye"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "<hp:t>goodbye</hp:t>") {
		t.Fatalf("expected updated text, got: %s", out)
	}
}

func TestApplyDirectTextUpdateRejectsMismatch(t *testing.T) {
	para := `<hp:p id="p1"><hp:run><hp:t>actual</hp:t></hp:run></hp:p>`

	_, err := ApplyDirectTextUpdate(para, mutationlog.DirectTextUpdate{OldText: "expected", NewText: "new"})
	if err == nil {
		t.Fatalf("expected mismatch error")
	}
}

func TestApplyTextReplacementLiteralCaseSensitive(t *testing.T) {
	section := `<hp:p><hp:run><hp:t>Hello World</hp:t></hp:run></hp:p><hp:p><hp:run><hp:t>hello again</hp:t></hp:run></hp:p>`

	out, n, err := ApplyTextReplacement(section, mutationlog.TextReplacement{Pattern: "Hello", Replacement: "Hi", CaseSensitive: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected exactly 1 replacement, got %d", n)
	}
	if !strings.Contains(out, "<hp:t>Hi World</hp:t>") || !strings.Contains(out, "<hp:t>hello again</hp:t>") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestApplyTextReplacementCaseInsensitive(t *testing.T) {
	section := `<hp:p><hp:run><hp:t>Hello World</hp:t></hp:run></hp:p><hp:p><hp:run><hp:t>hello again</hp:t></hp:run></hp:p>`

	out, n, err := ApplyTextReplacement(section, mutationlog.TextReplacement{Pattern: "hello", Replacement: "Hi", CaseSensitive: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 replacements, got %d", n)
	}
	if !strings.Contains(out, "Hi World") || !strings.Contains(out, "Hi again") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestApplyTextReplacementRegex(t *testing.T) {
	section := `<hp:p><hp:run><hp:t>order-123</hp:t></hp:run></hp:p>`

	out, n, err := ApplyTextReplacement(section, mutationlog.TextReplacement{Pattern: `order-(\d+)`, Replacement: "ORD#$1", Regex: true, CaseSensitive: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 replacement, got %d", n)
	}
	if !strings.Contains(out, "<hp:t>ORD#123</hp:t>") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestApplyTextReplacementEscapesAmpersandCorrectly(t *testing.T) {
	section := `<hp:p><hp:run><hp:t>Tom &amp; Jerry</hp:t></hp:run></hp:p>`

	out, n, err := ApplyTextReplacement(section, mutationlog.TextReplacement{Pattern: "Jerry", Replacement: "Spike", CaseSensitive: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 replacement, got %d", n)
	}
	if !strings.Contains(out, "<hp:t>Tom &amp; Spike</hp:t>") {
		t.Fatalf("expected ampersand preserved, got: %s", out)
	}
}

func TestApplyTextReplacementNoMatchLeavesTextUnchanged(t *testing.T) {
	section := `<hp:p><hp:run><hp:t>nothing here</hp:t></hp:run></hp:p>`

	out, n, err := ApplyTextReplacement(section, mutationlog.TextReplacement{Pattern: "missing", Replacement: "x", CaseSensitive: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 || out != section {
		t.Fatalf("expected no change, got n=%d out=%s", n, out)
	}
}
