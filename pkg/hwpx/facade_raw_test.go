package hwpx

import (
	"strings"
	"testing"
)

func TestSetSectionXMLRejectsTagImbalance(t *testing.T) {
	doc := buildTestDocument(t, testParagraphSection)

	broken := `<?xml version="1.0"?><hs:sec xmlns:hp="uri"><hp:p id="1"></hs:sec>`
	err := doc.SetSectionXML(0, broken)
	if err == nil {
		t.Fatalf("expected a tag-imbalance error")
	}
	xml, getErr := doc.GetSectionXML(0)
	if getErr != nil {
		t.Fatalf("GetSectionXML: %v", getErr)
	}
	if xml != testParagraphSection {
		t.Fatalf("expected section left untouched after a rejected SetSectionXML, got: %s", xml)
	}
}

func TestSetSectionXMLAcceptsWellFormedReplacement(t *testing.T) {
	doc := buildTestDocument(t, testParagraphSection)

	replacement := `<?xml version="1.0"?><hs:sec xmlns:hp="uri" xmlns:hs="uri2">` +
		`<hp:p id="new-1"><hp:run><hp:t>fresh content</hp:t></hp:run></hp:p></hs:sec>`
	if err := doc.SetSectionXML(0, replacement); err != nil {
		t.Fatalf("SetSectionXML: %v", err)
	}
	p, err := doc.Paragraph(0, "new-1")
	if err != nil {
		t.Fatalf("Paragraph: %v", err)
	}
	if p.Text() != "fresh content" {
		t.Fatalf("expected resynced model to reflect the new XML, got %q", p.Text())
	}
}

func TestGetSetRawXMLRoundTrips(t *testing.T) {
	doc := buildTestDocument(t, testParagraphSection)

	if err := doc.SetRawXML("Contents/header.xml", `<hh:head xmlns:hh="uri"><hh:title>New</hh:title></hh:head>`); err != nil {
		t.Fatalf("SetRawXML: %v", err)
	}
	got, err := doc.GetRawXML("Contents/header.xml")
	if err != nil {
		t.Fatalf("GetRawXML: %v", err)
	}
	if !strings.Contains(got, "New") {
		t.Fatalf("expected raw overwrite to stick, got: %s", got)
	}
}

func TestGetRawXMLUnknownPartErrors(t *testing.T) {
	doc := buildTestDocument(t, testParagraphSection)

	if _, err := doc.GetRawXML("Contents/nonexistent.xml"); err == nil {
		t.Fatalf("expected a NotFoundError for an unknown part")
	}
}
