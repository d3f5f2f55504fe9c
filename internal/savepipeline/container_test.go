package savepipeline

import (
	"archive/zip"
	"bytes"
	"testing"
)

// buildZip assembles an in-memory zip archive from name->content pairs, in
// the order given, for feeding to OpenContainer.
func buildZip(t *testing.T, parts map[string]string, order []string) []byte {
	t.Helper()
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
	return buf.Bytes()
}

func minimalHWPXParts() (map[string]string, []string) {
	parts := map[string]string{
		"mimetype":              "application/hwp+zip",
		"Contents/content.hpf":  `<?xml version="1.0"?><hh:manifest xmlns:hh="uri"></hh:manifest>`,
		"Contents/header.xml":   `<?xml version="1.0"?><hh:head xmlns:hh="uri"><hh:title>Untitled</hh:title></hh:head>`,
		"Contents/section0.xml": `<?xml version="1.0"?><hs:sec xmlns:hp="uri"><hp:p id="1"><hp:run><hp:t>hello</hp:t></hp:run></hp:p></hs:sec>`,
	}
	order := []string{"mimetype", "Contents/content.hpf", "Contents/header.xml", "Contents/section0.xml"}
	return parts, order
}

func TestOpenContainerIndexesAllParts(t *testing.T) {
	parts, order := minimalHWPXParts()
	data := buildZip(t, parts, order)

	c, err := OpenContainer(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("OpenContainer: %v", err)
	}
	if len(c.Parts) != len(order) {
		t.Fatalf("expected %d parts, got %d", len(order), len(c.Parts))
	}
	content, ok := c.Get("Contents/header.xml")
	if !ok || len(content) == 0 {
		t.Fatalf("expected header.xml content")
	}
}

func TestOpenContainerMissingRequiredPartFails(t *testing.T) {
	parts, order := minimalHWPXParts()
	delete(parts, "Contents/header.xml")
	order = order[:2] // mimetype, content.hpf only
	data := buildZip(t, parts, order)

	_, err := OpenContainer(bytes.NewReader(data), int64(len(data)))
	if err == nil {
		t.Fatalf("expected error for missing required part")
	}
}

func TestOpenContainerMissingFirstSectionFails(t *testing.T) {
	parts, order := minimalHWPXParts()
	delete(parts, "Contents/section0.xml")
	order = order[:3] // mimetype, content.hpf, header.xml only, no sections
	data := buildZip(t, parts, order)

	_, err := OpenContainer(bytes.NewReader(data), int64(len(data)))
	if err == nil {
		t.Fatalf("expected error for a container with no section parts")
	}
}

func TestContainerSetAddsOrReplaces(t *testing.T) {
	parts, order := minimalHWPXParts()
	data := buildZip(t, parts, order)
	c, err := OpenContainer(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("OpenContainer: %v", err)
	}

	c.Set("Contents/section0.xml", []byte("replaced"))
	content, _ := c.Get("Contents/section0.xml")
	if string(content) != "replaced" {
		t.Fatalf("expected replaced content, got %q", content)
	}

	c.Set("Contents/section1.xml", []byte("new section"))
	content, ok := c.Get("Contents/section1.xml")
	if !ok || string(content) != "new section" {
		t.Fatalf("expected newly added section part")
	}
}

func TestContainerSectionNamesSortedNumerically(t *testing.T) {
	parts, order := minimalHWPXParts()
	parts["Contents/section10.xml"] = "<hs:sec xmlns:hp=\"uri\"></hs:sec>"
	parts["Contents/section2.xml"] = "<hs:sec xmlns:hp=\"uri\"></hs:sec>"
	order = append(order, "Contents/section10.xml", "Contents/section2.xml")
	data := buildZip(t, parts, order)

	c, err := OpenContainer(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("OpenContainer: %v", err)
	}
	names := c.SectionNames()
	want := []string{"Contents/section0.xml", "Contents/section2.xml", "Contents/section10.xml"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}

func TestContainerAssembleRoundTrips(t *testing.T) {
	parts, order := minimalHWPXParts()
	data := buildZip(t, parts, order)
	c, err := OpenContainer(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("OpenContainer: %v", err)
	}

	assembled, err := c.Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	c2, err := OpenContainer(bytes.NewReader(assembled), int64(len(assembled)))
	if err != nil {
		t.Fatalf("OpenContainer(assembled): %v", err)
	}
	content, ok := c2.Get("Contents/header.xml")
	if !ok || string(content) != parts["Contents/header.xml"] {
		t.Fatalf("expected header.xml to survive round trip, got %q", content)
	}
}

func TestContainerAssembleStoresMimetypeFirstUncompressed(t *testing.T) {
	parts, order := minimalHWPXParts()
	data := buildZip(t, parts, order)
	c, err := OpenContainer(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("OpenContainer: %v", err)
	}

	assembled, err := c.Assemble()
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(assembled), int64(len(assembled)))
	if err != nil {
		t.Fatalf("zip.NewReader: %v", err)
	}
	if len(zr.File) == 0 || zr.File[0].Name != "mimetype" {
		t.Fatalf("expected mimetype as first archive member")
	}
	if zr.File[0].Method != zip.Store {
		t.Fatalf("expected mimetype to be stored, not compressed")
	}
}
