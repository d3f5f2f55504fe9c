package hwpx

import (
	"testing"

	"github.com/hwpx-surgeon/hwpx-surgeon/internal/mutationlog"
)

func TestUpdateTextOfRunQueuesDirectTextUpdate(t *testing.T) {
	doc := buildTestDocument(t, testParagraphSection)

	if err := doc.UpdateTextOfRun(0, "para-1", "hello world", "goodbye world"); err != nil {
		t.Fatalf("UpdateTextOfRun: %v", err)
	}
	p, err := doc.Paragraph(0, "para-1")
	if err != nil {
		t.Fatalf("Paragraph: %v", err)
	}
	if p.Text() != "goodbye world" {
		t.Fatalf("expected in-memory run text updated, got %q", p.Text())
	}
	entries := doc.log.Peek()
	if len(entries) != 1 || entries[0].Kind != mutationlog.KindDirectTextUpdate {
		t.Fatalf("expected one queued DirectTextUpdate entry, got %+v", entries)
	}
}

func TestAppendTextExtendsLastRun(t *testing.T) {
	doc := buildTestDocument(t, testParagraphSection)

	if err := doc.AppendText(0, "para-1", "!"); err != nil {
		t.Fatalf("AppendText: %v", err)
	}
	p, err := doc.Paragraph(0, "para-1")
	if err != nil {
		t.Fatalf("Paragraph: %v", err)
	}
	if p.Text() != "hello world!" {
		t.Fatalf("expected appended text, got %q", p.Text())
	}
}

func TestInsertParagraphAfterSynthesizesFreshID(t *testing.T) {
	doc := buildTestDocument(t, testParagraphSection)

	p, err := doc.InsertParagraphAfter(0, "para-1", "brand new")
	if err != nil {
		t.Fatalf("InsertParagraphAfter: %v", err)
	}
	if p.ID == "" || p.ID == "para-1" {
		t.Fatalf("expected a fresh, non-empty paragraph id, got %q", p.ID)
	}
	if p.Text() != "brand new" {
		t.Fatalf("expected new paragraph to carry its text, got %q", p.Text())
	}
}

func TestDeleteParagraphRemovesIt(t *testing.T) {
	doc := buildTestDocument(t, testParagraphSection)

	if err := doc.DeleteParagraph(0, "para-1"); err != nil {
		t.Fatalf("DeleteParagraph: %v", err)
	}
	if _, err := doc.Paragraph(0, "para-1"); err == nil {
		t.Fatalf("expected paragraph to be gone after delete")
	}
}

func TestApplyCharacterStyleRejectsUnknownCharShape(t *testing.T) {
	doc := buildTestDocument(t, testParagraphSection)

	err := doc.ApplyCharacterStyle(0, "para-1", 999)
	if err == nil {
		t.Fatalf("expected an error for an unresolvable char shape id")
	}
}
