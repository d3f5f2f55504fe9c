package hwpxlog

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)
	l.Info("should not appear")
	l.Warn("should appear")

	out := buf.String()
	if strings.Contains(out, "should not appear") {
		t.Fatalf("expected info line to be suppressed, got: %s", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Fatalf("expected warn line to be emitted, got: %s", out)
	}
}

func TestWithFieldAddsStructuredField(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelDebug).WithField("section", 2)
	l.Debug("mutated")

	if !strings.Contains(buf.String(), "section=2") {
		t.Fatalf("expected field in output, got: %s", buf.String())
	}
}

func TestWithFieldsDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, LevelDebug)
	_ = base.WithFields(Fields{"a": 1})

	base.Debug("plain")
	if strings.Contains(buf.String(), "a=1") {
		t.Fatalf("expected parent logger unaffected by WithFields, got: %s", buf.String())
	}
}

func TestIsDebugMode(t *testing.T) {
	l := New(nil, LevelDebug)
	if !l.IsDebugMode() {
		t.Fatalf("expected debug mode true")
	}
	l.SetLevel(LevelInfo)
	if l.IsDebugMode() {
		t.Fatalf("expected debug mode false after SetLevel")
	}
}

func TestDebugMutationSuppressedAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelInfo)
	l.DebugMutation("cell-update", "t1")
	if buf.Len() != 0 {
		t.Fatalf("expected no output at info level, got: %s", buf.String())
	}
}

func TestWithFieldsRendersInStableSortedOrder(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelDebug).WithFields(Fields{"section": 1, "part": "Contents/section0.xml", "kind": "cell-update"})
	l.Debug("applying")

	const want = "kind=cell-update part=Contents/section0.xml section=1"
	if !strings.Contains(buf.String(), want) {
		t.Fatalf("expected fields rendered in sorted-key order, got: %s", buf.String())
	}
}

func TestWithFieldChainingPreservesAppendOrder(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelDebug).WithField("a", 1).WithField("b", 2)
	l.Debug("chained")

	if !strings.Contains(buf.String(), "a=1 b=2") {
		t.Fatalf("expected chained WithField calls to render in call order, got: %s", buf.String())
	}
}
