package hwpx

import "testing"

func TestSectionCountAndSection(t *testing.T) {
	doc := buildTestDocument(t, testParagraphSection, testTableSection)

	if doc.SectionCount() != 2 {
		t.Fatalf("expected 2 sections, got %d", doc.SectionCount())
	}
	if _, err := doc.Section(0); err != nil {
		t.Fatalf("Section(0): %v", err)
	}
	if _, err := doc.Section(5); err == nil {
		t.Fatalf("expected a NotFoundError for an out-of-range section")
	}
}

func TestUndoRevertsLastMutatingVerb(t *testing.T) {
	doc := buildTestDocument(t, testParagraphSection)

	if err := doc.AppendText(0, "para-1", "!!!"); err != nil {
		t.Fatalf("AppendText: %v", err)
	}
	p, _ := doc.Paragraph(0, "para-1")
	if p.Text() != "hello world!!!" {
		t.Fatalf("expected appended text before undo, got %q", p.Text())
	}

	if !doc.Undo() {
		t.Fatalf("expected Undo to report success")
	}
	p, _ = doc.Paragraph(0, "para-1")
	if p.Text() != "hello world" {
		t.Fatalf("expected text reverted after Undo, got %q", p.Text())
	}
}

func TestRedoReappliesUndoneVerb(t *testing.T) {
	doc := buildTestDocument(t, testParagraphSection)

	if err := doc.AppendText(0, "para-1", "!!!"); err != nil {
		t.Fatalf("AppendText: %v", err)
	}
	if !doc.Undo() {
		t.Fatalf("expected Undo to report success")
	}
	if !doc.Redo() {
		t.Fatalf("expected Redo to report success")
	}
	p, _ := doc.Paragraph(0, "para-1")
	if p.Text() != "hello world!!!" {
		t.Fatalf("expected text restored after Redo, got %q", p.Text())
	}
}

func TestUndoWithNothingToUndoReportsFalse(t *testing.T) {
	doc := buildTestDocument(t, testParagraphSection)

	if doc.Undo() {
		t.Fatalf("expected Undo on a freshly opened document to report false")
	}
}

func TestSaveAsWritesAppliedMutation(t *testing.T) {
	doc := buildTestDocument(t, testParagraphSection)
	if err := doc.AppendText(0, "para-1", "!"); err != nil {
		t.Fatalf("AppendText: %v", err)
	}

	path := t.TempDir() + "/out.hwpx"
	if err := doc.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	if doc.IsDirty() {
		t.Fatalf("expected document clean after a successful save")
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	p, err := reopened.Paragraph(0, "para-1")
	if err != nil {
		t.Fatalf("Paragraph: %v", err)
	}
	if p.Text() != "hello world!" {
		t.Fatalf("expected saved edit to round-trip, got %q", p.Text())
	}
}
