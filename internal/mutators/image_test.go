package mutators

import (
	"strings"
	"testing"

	"github.com/hwpx-surgeon/hwpx-surgeon/internal/idgen"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/mutationlog"
)

func TestSniffImagePNG(t *testing.T) {
	payload := append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 24)...)
	// length(4)=0x0d ignored; chunk type IHDR at [8:12]; width at [16:20]=100, height at [20:24]=50
	copy(payload[8:12], "IHDR")
	payload[16], payload[17], payload[18], payload[19] = 0, 0, 0, 100
	payload[20], payload[21], payload[22], payload[23] = 0, 0, 0, 50

	mime, w, h, ok := SniffImage(payload)
	if !ok || mime != "image/png" {
		t.Fatalf("expected png detection, got %s ok=%v", mime, ok)
	}
	if w != 100 || h != 50 {
		t.Fatalf("expected 100x50, got %dx%d", w, h)
	}
}

func TestSniffImageGIF(t *testing.T) {
	payload := []byte("GIF89a")
	payload = append(payload, byte(200), byte(0)) // width=200 little-endian
	payload = append(payload, byte(150), byte(0)) // height=150
	payload = append(payload, 0, 0, 0)

	mime, w, h, ok := SniffImage(payload)
	if !ok || mime != "image/gif" {
		t.Fatalf("expected gif detection, got %s", mime)
	}
	if w != 200 || h != 150 {
		t.Fatalf("expected 200x150, got %dx%d", w, h)
	}
}

func TestSniffImageUnrecognized(t *testing.T) {
	_, _, _, ok := SniffImage([]byte("not an image"))
	if ok {
		t.Fatalf("expected unrecognized payload to fail sniffing")
	}
}

func TestResolveInsertDimensionsPreservesExplicit(t *testing.T) {
	ins := mutationlog.ImageInsert{WidthPoint: 50, HeightPoint: 25}
	ResolveInsertDimensions(&ins, 999, 999)
	if ins.WidthPoint != 50 || ins.HeightPoint != 25 {
		t.Fatalf("explicit dimensions should not be overwritten")
	}
}

func TestResolveInsertDimensionsFillsFromPixels(t *testing.T) {
	ins := mutationlog.ImageInsert{}
	ResolveInsertDimensions(&ins, 96, 192)
	if ins.WidthPoint != 72 || ins.HeightPoint != 144 {
		t.Fatalf("expected 96px/192px at 96dpi to convert to 72pt/144pt, got %v/%v", ins.WidthPoint, ins.HeightPoint)
	}
}

func TestApplyImageInsertAppendsAfterFirstParagraph(t *testing.T) {
	section := `<hp:p id="1"><hp:run><hp:t>intro</hp:t></hp:run></hp:p>`
	gen := idgen.New(idgen.AlgFNV1a)

	out, err := ApplyImageInsert(section, mutationlog.ImageInsert{
		InsertAfter: 0, BinaryItemID: "bin1", WidthPoint: 72, HeightPoint: 36,
	}, gen)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `binItemIDRef="bin1"`) {
		t.Fatalf("expected image reference, got: %s", out)
	}
	if !strings.HasPrefix(out, section) {
		t.Fatalf("expected original paragraph preserved at the start, got: %s", out)
	}
}

func TestApplyImageInsertAtStart(t *testing.T) {
	section := `<hp:p id="1"><hp:run><hp:t>intro</hp:t></hp:run></hp:p>`
	gen := idgen.New(idgen.AlgFNV1a)

	out, err := ApplyImageInsert(section, mutationlog.ImageInsert{InsertAfter: -1, BinaryItemID: "bin2"}, gen)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "<hp:p") || strings.Index(out, "bin2") > strings.Index(out, "intro") {
		t.Fatalf("expected image inserted before existing paragraph, got: %s", out)
	}
}

func TestApplyImageInsertOutOfRange(t *testing.T) {
	section := `<hp:p id="1"><hp:run><hp:t>intro</hp:t></hp:run></hp:p>`
	gen := idgen.New(idgen.AlgFNV1a)

	_, err := ApplyImageInsert(section, mutationlog.ImageInsert{InsertAfter: 5}, gen)
	if err == nil {
		t.Fatalf("expected out-of-range error")
	}
}
