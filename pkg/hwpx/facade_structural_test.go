package hwpx

import (
	"strings"
	"testing"
)

func TestCopyParagraphReIdentifiesCopy(t *testing.T) {
	doc := buildTestDocument(t, testParagraphSection)

	copyP, err := doc.CopyParagraph(0, "para-1", 0)
	if err != nil {
		t.Fatalf("CopyParagraph: %v", err)
	}
	if copyP.ID == "para-1" || copyP.ID == "" {
		t.Fatalf("expected copy to carry a fresh id, got %q", copyP.ID)
	}
	sec, err := doc.Section(0)
	if err != nil {
		t.Fatalf("Section: %v", err)
	}
	if len(sec.Paragraphs()) != 2 {
		t.Fatalf("expected 2 paragraphs after copy, got %d", len(sec.Paragraphs()))
	}
}

func TestMoveParagraphToSectionStart(t *testing.T) {
	doc := buildTestDocument(t, testParagraphSection)
	if _, err := doc.CopyParagraph(0, "para-1", 0); err != nil {
		t.Fatalf("CopyParagraph: %v", err)
	}
	sec, _ := doc.Section(0)
	second := sec.Paragraphs()[1].ID

	if err := doc.MoveParagraph(0, second, ""); err != nil {
		t.Fatalf("MoveParagraph: %v", err)
	}
	sec, _ = doc.Section(0)
	if sec.Paragraphs()[0].ID != second {
		t.Fatalf("expected moved paragraph at section start, got order %v", sec.Paragraphs())
	}
}

func TestInsertSectionRenumbersLaterSections(t *testing.T) {
	doc := buildTestDocument(t, testParagraphSection, testTableSection)

	if err := doc.InsertSection(1); err != nil {
		t.Fatalf("InsertSection: %v", err)
	}
	if doc.SectionCount() != 3 {
		t.Fatalf("expected 3 sections, got %d", doc.SectionCount())
	}
	xml, err := doc.GetSectionXML(2)
	if err != nil {
		t.Fatalf("GetSectionXML: %v", err)
	}
	if !strings.Contains(xml, "tbl-1") {
		t.Fatalf("expected former section 1 shifted to index 2, got: %s", xml)
	}
}

func TestDeleteSectionClosesGap(t *testing.T) {
	doc := buildTestDocument(t, testParagraphSection, testTableSection)

	if err := doc.DeleteSection(0); err != nil {
		t.Fatalf("DeleteSection: %v", err)
	}
	if doc.SectionCount() != 1 {
		t.Fatalf("expected 1 section remaining, got %d", doc.SectionCount())
	}
	xml, err := doc.GetSectionXML(0)
	if err != nil {
		t.Fatalf("GetSectionXML: %v", err)
	}
	if !strings.Contains(xml, "tbl-1") {
		t.Fatalf("expected remaining section to be the former table section, got: %s", xml)
	}
}
