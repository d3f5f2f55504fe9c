package hwpx

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/hwpx-surgeon/hwpx-surgeon/internal/savepipeline"
)

// buildTestDocument assembles a minimal in-memory HWPX package carrying one
// section per entry in sectionXMLs and opens it through the same path Open
// uses, mirroring internal/savepipeline's buildZip/minimalHWPXParts fixture
// style.
func buildTestDocument(t *testing.T, sectionXMLs ...string) *Document {
	t.Helper()
	parts := map[string]string{
		"mimetype":             "application/hwp+zip",
		"Contents/content.hpf": `<?xml version="1.0"?><hh:manifest xmlns:hh="uri"></hh:manifest>`,
		"Contents/header.xml":  `<?xml version="1.0"?><hh:head xmlns:hh="uri"><hh:title>Untitled</hh:title></hh:head>`,
	}
	order := []string{"mimetype", "Contents/content.hpf", "Contents/header.xml"}
	for i, xml := range sectionXMLs {
		name := sectionPartNameForTest(i)
		parts[name] = xml
		order = append(order, name)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(parts[name])); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	c, err := savepipeline.OpenContainer(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("OpenContainer: %v", err)
	}
	doc, err := newDocument("test.hwpx", c)
	if err != nil {
		t.Fatalf("newDocument: %v", err)
	}
	return doc
}

func sectionPartNameForTest(i int) string {
	if i == 0 {
		return "Contents/section0.xml"
	}
	return "Contents/section" + itoa(i) + ".xml"
}

const testParagraphSection = `<?xml version="1.0"?><hs:sec xmlns:hp="uri" xmlns:hs="uri2">` +
	`<hp:p id="para-1"><hp:run><hp:t>hello world</hp:t></hp:run></hp:p>` +
	`</hs:sec>`

const testTableSection = `<?xml version="1.0"?><hs:sec xmlns:hp="uri" xmlns:hs="uri2">` +
	`<hp:tbl id="tbl-1" rowCnt="1" colCnt="1"><hp:tr><hp:tc>` +
	`<hp:subList><hp:p><hp:run charPrIDRef="0"><hp:t>old</hp:t></hp:run></hp:p></hp:subList>` +
	`</hp:tc></hp:tr></hp:tbl>` +
	`<hp:p id="para-1"><hp:run><hp:t>greetings</hp:t></hp:run></hp:p>` +
	`</hs:sec>`
