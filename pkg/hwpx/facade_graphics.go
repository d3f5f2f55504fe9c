package hwpx

import (
	"strconv"
	"strings"

	"github.com/hwpx-surgeon/hwpx-surgeon/internal/hwpxerr"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/idgen"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/mutationlog"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/mutators"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/xmlscan"
)

// AspectMode selects how InsertImage resolves the inserted image's
// declared width/height from the caller's hints and the sniffed pixel
// dimensions (spec §4.4's four modes).
type AspectMode int

const (
	// AspectWidthOnly scales height to preserve the native ratio from a
	// caller-supplied width.
	AspectWidthOnly AspectMode = iota
	// AspectHeightOnly scales width to preserve the native ratio from a
	// caller-supplied height.
	AspectHeightOnly
	// AspectNativeCappedToMax uses the native size, shrunk proportionally
	// if either dimension exceeds the caller's max bounds.
	AspectNativeCappedToMax
	// AspectBothWithPreserve uses both caller-supplied dimensions as an
	// upper bound, shrinking whichever axis would otherwise break the
	// native ratio.
	AspectBothWithPreserve
)

// InsertImage registers payload as a new binary item (BinData/<id>.<ext>
// plus a content.hpf manifest entry, added immediately rather than
// deferred to the mutation log, since BinData/manifest bookkeeping is
// outside the five logged kinds' section-XML scope) and queues an
// ImageInsert entry for the section XML anchor itself.
func (d *Document) InsertImage(sectionIndex, insertAfter int, payload []byte, mode AspectMode, width, height, maxWidth, maxHeight float64) (string, error) {
	if _, err := d.Section(sectionIndex); err != nil {
		return "", err
	}
	mimeType, widthPx, heightPx, ok := mutators.SniffImage(payload)
	if !ok {
		return "", &hwpxerr.InvalidXMLInputError{Reason: "unrecognized image payload"}
	}

	widthPt, heightPt := resolveAspect(mode, widthPx, heightPx, width, height, maxWidth, maxHeight)

	d.snapshotForUndo()

	imageID := d.gen.NextID("pic")
	binaryItemID := d.gen.NextID("bin")
	ext := imageExtensionOf(mimeType)
	binDataName := "BinData/" + binaryItemID + ext
	d.container.Set(binDataName, payload)
	d.registerManifestItem(binaryItemID, binDataName, mimeType, idgen.ManifestHashKey(payload))
	d.binaryItems.Add(binaryItemID, mimeType)

	d.log.AppendImageInsert(mutationlog.ImageInsert{
		Section: sectionIndex, InsertAfter: insertAfter,
		ImageID: imageID, BinaryItemID: binaryItemID, MIMEType: mimeType,
		WidthPoint: widthPt, HeightPoint: heightPt, Payload: payload,
	})
	d.markDirty()
	return imageID, nil
}

// resolveAspect implements the four aspect modes described by AspectMode,
// all derived from the native pixel size at 72pt/96px.
func resolveAspect(mode AspectMode, widthPx, heightPx int, width, height, maxWidth, maxHeight float64) (float64, float64) {
	const ptPerPx = 72.0 / 96.0
	nativeW := float64(widthPx) * ptPerPx
	nativeH := float64(heightPx) * ptPerPx
	ratio := 1.0
	if nativeW > 0 {
		ratio = nativeH / nativeW
	}

	switch mode {
	case AspectWidthOnly:
		return width, width * ratio
	case AspectHeightOnly:
		if ratio == 0 {
			return height, height
		}
		return height / ratio, height
	case AspectNativeCappedToMax:
		w, h := nativeW, nativeH
		if maxWidth > 0 && w > maxWidth {
			scale := maxWidth / w
			w, h = w*scale, h*scale
		}
		if maxHeight > 0 && h > maxHeight {
			scale := maxHeight / h
			w, h = w*scale, h*scale
		}
		return w, h
	case AspectBothWithPreserve:
		w, h := width, width*ratio
		if h > height && height > 0 {
			h = height
			w = h / ratio
		}
		return w, h
	default:
		return nativeW, nativeH
	}
}

func imageExtensionOf(mimeType string) string {
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

// registerManifestItem appends an <hh:item> entry to the content.hpf
// manifest part, recording the inserted binary item's hash key per spec
// §4.5's image-insert contract. content.hpf uses the hh namespace prefix,
// which internal/xmlscan does not track (its hp/hs/hc prefix set is scoped
// to section/header parts), so this uses a direct string splice instead.
func (d *Document) registerManifestItem(id, href, mimeType, hashKey string) {
	content, _ := d.container.Get(manifestPartName)
	xml := string(content)
	item := `<hh:item id="` + id + `" href="` + href + `" media-type="` + mimeType + `" hashKey="` + hashKey + `"/>`
	if idx := strings.LastIndex(xml, "</hh:manifest>"); idx >= 0 {
		xml = xml[:idx] + item + xml[idx:]
	} else {
		xml += item
	}
	d.container.Set(manifestPartName, []byte(xml))
}

const manifestPartName = "Contents/content.hpf"

// UpdateImageSize overrides an inserted image's declared width/height,
// patching the section XML's <hp:sz> element directly.
func (d *Document) UpdateImageSize(sectionIndex int, imageID string, widthPoint, heightPoint float64) error {
	name, err := d.sectionPartName(sectionIndex)
	if err != nil {
		return err
	}
	content, _ := d.container.Get(name)
	xml := string(content)

	pic, ok := xmlscan.FindElementByAttr(xml, "pic", "id", imageID)
	if !ok {
		return &hwpxerr.NotFoundError{Kind: "image", Identifier: imageID}
	}
	szRange, ok := xmlscan.FindElement(pic.Slice(xml), "sz")
	if !ok {
		return &hwpxerr.StructuralAnomalyError{Reason: "image carries no size element"}
	}
	szRange = xmlscan.Range{Start: pic.Start + szRange.Start, End: pic.Start + szRange.End}

	d.snapshotForUndo()
	widthHWP := strconv.Itoa(int(widthPoint * 100))
	heightHWP := strconv.Itoa(int(heightPoint * 100))
	xml = setAttr(xml, szRange, "width", widthHWP)
	szRange, _ = xmlscan.FindElementByAttr(xml, "sz", "width", widthHWP)
	xml = setAttr(xml, szRange, "height", heightHWP)
	d.container.Set(name, []byte(xml))

	if err := d.resyncSection(sectionIndex); err != nil {
		return err
	}
	d.markDirty()
	return nil
}

// DeleteImage removes an image's enclosing paragraph entirely (images are
// always wrapped in a standalone paragraph, per ApplyImageInsert's
// synthesizePictureParagraph).
func (d *Document) DeleteImage(sectionIndex int, imageID string) error {
	name, err := d.sectionPartName(sectionIndex)
	if err != nil {
		return err
	}
	content, _ := d.container.Get(name)
	xml := string(content)

	pic, ok := xmlscan.FindElementByAttr(xml, "pic", "id", imageID)
	if !ok {
		return &hwpxerr.NotFoundError{Kind: "image", Identifier: imageID}
	}
	enclosing, ok := enclosingParagraph(xml, pic)
	if !ok {
		return &hwpxerr.StructuralAnomalyError{Reason: "image has no enclosing paragraph"}
	}

	d.snapshotForUndo()
	xml = removeRange(xml, enclosing)
	d.container.Set(name, []byte(xml))

	if err := d.resyncSection(sectionIndex); err != nil {
		return err
	}
	d.markDirty()
	return nil
}

// enclosingParagraph finds the top-level paragraph whose byte range
// contains inner.
func enclosingParagraph(xml string, inner xmlscan.Range) (xmlscan.Range, bool) {
	for _, p := range xmlscan.FindAll(xml, "p") {
		if p.Start <= inner.Start && inner.End <= p.End {
			return p, true
		}
	}
	return xmlscan.Range{}, false
}

// InsertLine appends a standalone line-drawing primitive after the n-th
// top-level element (-1 for the section's start).
func (d *Document) InsertLine(sectionIndex, insertAfter, x1, y1, x2, y2 int) error {
	xml := `<hp:line x1="` + itoa(x1) + `" y1="` + itoa(y1) + `" x2="` + itoa(x2) + `" y2="` + itoa(y2) + `"/>`
	return d.insertDrawingPrimitive(sectionIndex, insertAfter, xml)
}

// InsertRect appends a standalone rectangle primitive.
func (d *Document) InsertRect(sectionIndex, insertAfter, x, y, width, height int) error {
	xml := `<hp:rect x="` + itoa(x) + `" y="` + itoa(y) + `" width="` + itoa(width) + `" height="` + itoa(height) + `"/>`
	return d.insertDrawingPrimitive(sectionIndex, insertAfter, xml)
}

// InsertEllipse appends a standalone ellipse primitive.
func (d *Document) InsertEllipse(sectionIndex, insertAfter, x, y, width, height int) error {
	xml := `<hp:ellipse x="` + itoa(x) + `" y="` + itoa(y) + `" width="` + itoa(width) + `" height="` + itoa(height) + `"/>`
	return d.insertDrawingPrimitive(sectionIndex, insertAfter, xml)
}

// InsertEquation embeds a new equation identified by a fresh id, carrying
// script as its formula source.
func (d *Document) InsertEquation(sectionIndex, insertAfter int, script string) (string, error) {
	id := d.gen.NextID("eqn")
	xml := `<hp:equation id="` + id + `">` + mutators.EscapeText(script) + `</hp:equation>`
	if err := d.insertDrawingPrimitive(sectionIndex, insertAfter, xml); err != nil {
		return "", err
	}
	return id, nil
}

func (d *Document) insertDrawingPrimitive(sectionIndex, insertAfter int, elementXML string) error {
	name, err := d.sectionPartName(sectionIndex)
	if err != nil {
		return err
	}
	content, _ := d.container.Get(name)
	xml := string(content)

	insertAt, ok := topLevelInsertionPoint(xml, insertAfter)
	if !ok {
		return &hwpxerr.NotFoundError{Kind: "element", Identifier: strconv.Itoa(insertAfter)}
	}

	d.snapshotForUndo()
	xml = xml[:insertAt] + elementXML + xml[insertAt:]
	d.container.Set(name, []byte(xml))

	if err := d.resyncSection(sectionIndex); err != nil {
		return err
	}
	d.markDirty()
	return nil
}

// topLevelInsertionPoint returns the byte offset just past the n-th
// top-level paragraph-or-table element (0-based); n == -1 means "at the
// section's start".
func topLevelInsertionPoint(xml string, n int) (int, bool) {
	if n < 0 {
		if sec, ok := xmlscan.FindElement(xml, "sec"); ok {
			tagEnd := strings.IndexByte(sec.Slice(xml), '>')
			if tagEnd >= 0 {
				return sec.Start + tagEnd + 1, true
			}
		}
		return 0, true
	}
	var all []xmlscan.Range
	all = append(all, xmlscan.FindAll(xml, "p")...)
	all = append(all, xmlscan.FindAll(xml, "tbl")...)
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && all[j].Start < all[j-1].Start; j-- {
			all[j], all[j-1] = all[j-1], all[j]
		}
	}
	if n >= len(all) {
		return 0, false
	}
	return all[n].End, true
}
