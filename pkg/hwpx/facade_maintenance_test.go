package hwpx

import "testing"

const sectionWithOrphanTblCloser = `<?xml version="1.0"?><hs:sec xmlns:hp="uri" xmlns:hs="uri2">` +
	`<hp:p id="1"><hp:run><hp:t>hi</hp:t></hp:run></hp:p>` +
	`</hp:tbl>` +
	`</hs:sec>`

// corruptSection injects raw bytes straight into the container, bypassing
// the well-formedness-checked parse Open() runs, mirroring how a stray
// orphan closer would actually reach an already-open document: introduced
// by a prior SetRawXML/partial-save escape hatch, not by a fresh Open.
func corruptSection(t *testing.T, doc *Document, sectionIndex int, xml string) {
	t.Helper()
	name, err := doc.sectionPartName(sectionIndex)
	if err != nil {
		t.Fatalf("sectionPartName: %v", err)
	}
	doc.container.Set(name, []byte(xml))
}

func TestAnalyzeXMLReportsOrphanCloser(t *testing.T) {
	doc := buildTestDocument(t, testParagraphSection)
	corruptSection(t, doc, 0, sectionWithOrphanTblCloser)

	report, err := doc.AnalyzeXML(0)
	if err != nil {
		t.Fatalf("AnalyzeXML: %v", err)
	}
	if len(report.OrphanTblClose) != 1 {
		t.Fatalf("expected one orphan </hp:tbl> reported, got %d", len(report.OrphanTblClose))
	}
	if report.TagBalance.Balanced {
		t.Fatalf("expected tag balance check to flag the imbalance")
	}
}

func TestRepairXMLRemovesOrphanCloser(t *testing.T) {
	doc := buildTestDocument(t, testParagraphSection)
	corruptSection(t, doc, 0, sectionWithOrphanTblCloser)

	removed, err := doc.RepairXML(0)
	if err != nil {
		t.Fatalf("RepairXML: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 orphan closer removed, got %d", removed)
	}
	report, err := doc.AnalyzeXML(0)
	if err != nil {
		t.Fatalf("AnalyzeXML: %v", err)
	}
	if len(report.OrphanTblClose) != 0 {
		t.Fatalf("expected no orphan closers remaining after repair, got %d", len(report.OrphanTblClose))
	}
}

func TestRepairXMLIsNoOpOnCleanSection(t *testing.T) {
	doc := buildTestDocument(t, testParagraphSection)

	removed, err := doc.RepairXML(0)
	if err != nil {
		t.Fatalf("RepairXML: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected no-op on an already-balanced section, got %d removed", removed)
	}
}
