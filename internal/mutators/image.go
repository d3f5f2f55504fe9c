package mutators

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/hwpx-surgeon/hwpx-surgeon/internal/idgen"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/mutationlog"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/xmlscan"
)

func findAllRanges(xml, localName string) []xmlscan.Range { return xmlscan.FindAll(xml, localName) }

// imageExtension maps a MIME type to the BinData file extension, the same
// switch shape as the teacher's getImageExtension in pkg/stencil/image.go,
// extended with the formats SniffImage recognizes.
func imageExtension(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/jpeg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/bmp":
		return ".bmp"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

var (
	pngMagic   = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	jpegMagic  = []byte{0xFF, 0xD8, 0xFF}
	gifMagic6  = []byte("GIF87a")
	gifMagic6b = []byte("GIF89a")
	bmpMagic   = []byte("BM")
	riffMagic  = []byte("RIFF")
	webpFourCC = []byte("WEBP")
)

// SniffImage inspects payload's leading bytes to determine its MIME type
// and, for the formats whose header encodes it, pixel dimensions. It
// returns ok=false for unrecognized payloads so the caller can reject the
// insert with an InvalidXMLInputError-equivalent rather than guessing.
func SniffImage(payload []byte) (mimeType string, widthPx, heightPx int, ok bool) {
	switch {
	case bytes.HasPrefix(payload, pngMagic):
		w, h := pngDimensions(payload)
		return "image/png", w, h, true
	case bytes.HasPrefix(payload, jpegMagic):
		w, h := jpegDimensions(payload)
		return "image/jpeg", w, h, true
	case bytes.HasPrefix(payload, gifMagic6) || bytes.HasPrefix(payload, gifMagic6b):
		w, h := gifDimensions(payload)
		return "image/gif", w, h, true
	case bytes.HasPrefix(payload, bmpMagic):
		w, h := bmpDimensions(payload)
		return "image/bmp", w, h, true
	case isWebP(payload):
		w, h := webpDimensions(payload)
		return "image/webp", w, h, true
	default:
		return "", 0, 0, false
	}
}

// isWebP reports whether payload carries a RIFF container with a WEBP
// fourCC, the 12-byte container header every WebP chunk variant shares.
func isWebP(payload []byte) bool {
	return len(payload) >= 12 && bytes.HasPrefix(payload, riffMagic) && bytes.Equal(payload[8:12], webpFourCC)
}

// webpDimensions reads the first chunk following the 12-byte RIFF/WEBP
// header (offset 12: 4-byte fourCC, 4-byte chunk size, chunk body at 20)
// and decodes its width/height per the lossy (VP8 ), lossless (VP8L), or
// extended (VP8X) chunk layout.
func webpDimensions(payload []byte) (int, int) {
	if len(payload) < 20 {
		return 0, 0
	}
	chunk := string(payload[12:16])
	body := payload[20:]
	switch chunk {
	case "VP8 ":
		// Frame tag (3 bytes) + start code (3 bytes) precede two 14-bit
		// little-endian dimensions.
		if len(body) < 10 {
			return 0, 0
		}
		w := int(body[6]) | int(body[7])<<8
		h := int(body[8]) | int(body[9])<<8
		return w & 0x3FFF, h & 0x3FFF
	case "VP8L":
		// Signature byte (0x2F) then 4 bytes packing 14-bit width-1 and
		// 14-bit height-1, little-endian.
		if len(body) < 5 {
			return 0, 0
		}
		bits := uint32(body[1]) | uint32(body[2])<<8 | uint32(body[3])<<16 | uint32(body[4])<<24
		w := int(bits&0x3FFF) + 1
		h := int((bits>>14)&0x3FFF) + 1
		return w, h
	case "VP8X":
		// 1 flags byte + 3 reserved bytes, then 24-bit little-endian
		// canvas width-1 and height-1.
		if len(body) < 10 {
			return 0, 0
		}
		w := int(body[4]) | int(body[5])<<8 | int(body[6])<<16
		h := int(body[7]) | int(body[8])<<8 | int(body[9])<<16
		return w + 1, h + 1
	default:
		return 0, 0
	}
}

// pngDimensions reads the IHDR chunk, which always immediately follows the
// 8-byte signature: 4-byte length, "IHDR", 4-byte width, 4-byte height.
func pngDimensions(payload []byte) (int, int) {
	if len(payload) < 24 {
		return 0, 0
	}
	w := be32(payload[16:20])
	h := be32(payload[20:24])
	return w, h
}

func be32(b []byte) int {
	return int(b[0])<<24 | int(b[1])<<16 | int(b[2])<<8 | int(b[3])
}

// jpegDimensions walks the marker segments for the first SOFn frame header,
// which carries height then width as big-endian uint16s.
func jpegDimensions(payload []byte) (int, int) {
	pos := 2
	for pos+4 <= len(payload) {
		if payload[pos] != 0xFF {
			pos++
			continue
		}
		marker := payload[pos+1]
		if marker == 0xD8 || marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7) {
			pos += 2
			continue
		}
		if pos+4 > len(payload) {
			break
		}
		segLen := int(payload[pos+2])<<8 | int(payload[pos+3])
		isSOF := marker >= 0xC0 && marker <= 0xCF && marker != 0xC4 && marker != 0xC8 && marker != 0xCC
		if isSOF && pos+9 <= len(payload) {
			h := int(payload[pos+5])<<8 | int(payload[pos+6])
			w := int(payload[pos+7])<<8 | int(payload[pos+8])
			return w, h
		}
		pos += 2 + segLen
	}
	return 0, 0
}

// gifDimensions reads the logical screen descriptor's width/height, stored
// little-endian right after the 6-byte signature.
func gifDimensions(payload []byte) (int, int) {
	if len(payload) < 10 {
		return 0, 0
	}
	w := int(payload[6]) | int(payload[7])<<8
	h := int(payload[8]) | int(payload[9])<<8
	return w, h
}

// bmpDimensions reads the BITMAPINFOHEADER's width/height fields at offsets
// 18 and 22, little-endian signed 32-bit (height read as absolute value —
// negative denotes a top-down bitmap, irrelevant to aspect-ratio math here).
func bmpDimensions(payload []byte) (int, int) {
	if len(payload) < 26 {
		return 0, 0
	}
	w := int(int32(le32(payload[18:22])))
	h := int(int32(le32(payload[22:26])))
	if h < 0 {
		h = -h
	}
	return w, h
}

func le32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// pointsPerPixelAt96DPI converts a pixel measurement taken at the
// conventional 96 DPI screen resolution into points (1 point = 1/72 inch).
const pointsPerPixelAt96DPI = 72.0 / 96.0

// ResolveInsertDimensions fills in WidthPoint/HeightPoint on an ImageInsert
// from the sniffed pixel dimensions when the caller left them at zero,
// preserving the image's native aspect ratio.
func ResolveInsertDimensions(ins *mutationlog.ImageInsert, widthPx, heightPx int) {
	switch {
	case ins.WidthPoint == 0 && ins.HeightPoint == 0:
		ins.WidthPoint = float64(widthPx) * pointsPerPixelAt96DPI
		ins.HeightPoint = float64(heightPx) * pointsPerPixelAt96DPI
	case ins.WidthPoint == 0 && heightPx > 0:
		ins.WidthPoint = ins.HeightPoint * float64(widthPx) / float64(heightPx)
	case ins.HeightPoint == 0 && widthPx > 0:
		ins.HeightPoint = ins.WidthPoint * float64(heightPx) / float64(widthPx)
	case ins.WidthPoint == 0:
		ins.WidthPoint = float64(widthPx) * pointsPerPixelAt96DPI
	case ins.HeightPoint == 0:
		ins.HeightPoint = float64(heightPx) * pointsPerPixelAt96DPI
	}
}

// pointToHWPUnit converts points to HWPUNIT (1 point = 100 HWPUNIT, spec
// §GLOSSARY).
func pointToHWPUnit(pt float64) int { return int(pt * 100) }

// ApplyImageInsert splices a new <hp:pic> element into sectionXML
// immediately after the insertAfter-th top-level element (paragraph or
// table), returning the rewritten section XML. The BinData part and its
// manifest entry are written by the façade's InsertImage when the insert is
// queued; this mutator only emits the reference by BinaryItemID.
func ApplyImageInsert(sectionXML string, ins mutationlog.ImageInsert, gen *idgen.Generator) (string, error) {
	insertAt, err := insertionPointAfter(sectionXML, ins.InsertAfter)
	if err != nil {
		return "", err
	}
	picID := ins.ImageID
	if picID == "" {
		picID = gen.NextID("pic")
	}
	block := synthesizePictureParagraph(picID, ins, gen)
	return sectionXML[:insertAt] + block + sectionXML[insertAt:], nil
}

// insertionPointAfter returns the byte offset just past the n-th top-level
// paragraph-or-table element (0-based); n == -1 means "at the very start".
func insertionPointAfter(sectionXML string, n int) (int, error) {
	if n < 0 {
		return 0, nil
	}
	ranges := topLevelParagraphsAndTables(sectionXML)
	if n >= len(ranges) {
		return 0, fmt.Errorf("insert-after index %d out of range (found %d top-level elements)", n, len(ranges))
	}
	return ranges[n].End, nil
}

func topLevelParagraphsAndTables(sectionXML string) []elementRange {
	var all []elementRange
	for _, r := range findAllRanges(sectionXML, "p") {
		all = append(all, elementRange{r.Start, r.End})
	}
	for _, r := range findAllRanges(sectionXML, "tbl") {
		all = append(all, elementRange{r.Start, r.End})
	}
	// Sort by start offset to recover document order across the two kinds.
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && all[j].Start < all[j-1].Start; j-- {
			all[j], all[j-1] = all[j-1], all[j]
		}
	}
	return all
}

type elementRange struct{ Start, End int }

// synthesizePictureParagraph builds a standalone paragraph containing one
// <hp:pic> run, sized from ins and referencing ins.BinaryItemID.
func synthesizePictureParagraph(picID string, ins mutationlog.ImageInsert, gen *idgen.Generator) string {
	widthHWP := pointToHWPUnit(ins.WidthPoint)
	heightHWP := pointToHWPUnit(ins.HeightPoint)

	var b strings.Builder
	b.WriteString(`<hp:p id="`)
	b.WriteString(gen.NextID("p"))
	b.WriteString(`"><hp:run><hp:pic id="`)
	b.WriteString(picID)
	b.WriteString(`" binItemIDRef="`)
	b.WriteString(ins.BinaryItemID)
	b.WriteString(`"><hp:sz width="`)
	b.WriteString(strconv.Itoa(widthHWP))
	b.WriteString(`" height="`)
	b.WriteString(strconv.Itoa(heightHWP))
	b.WriteString(`"/></hp:pic></hp:run></hp:p>`)
	return b.String()
}
