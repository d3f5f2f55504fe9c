package hwpx

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hwpx-surgeon/hwpx-surgeon/internal/hwpxerr"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/model"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/xmlscan"
)

// blankSectionXML is the minimal valid content of a brand-new section part.
const blankSectionXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?><hs:sec xmlns:hp="http://www.hancom.co.kr/hwpml/2011/paragraph" xmlns:hs="http://www.hancom.co.kr/hwpml/2011/section"></hs:sec>`

// CopyParagraph duplicates a top-level paragraph, re-identifying it via
// idgen (spec invariant 1: a copied subtree always gets a fresh id before
// its containing part is rewritten). When destSectionIndex is the source
// section the copy is inserted immediately after the source paragraph;
// otherwise it is appended at the end of the destination section.
func (d *Document) CopyParagraph(srcSectionIndex int, paragraphID string, destSectionIndex int) (*model.Paragraph, error) {
	if _, err := d.Paragraph(srcSectionIndex, paragraphID); err != nil {
		return nil, err
	}
	srcName, err := d.sectionPartName(srcSectionIndex)
	if err != nil {
		return nil, err
	}
	destName, err := d.sectionPartName(destSectionIndex)
	if err != nil {
		return nil, err
	}
	srcContent, _ := d.container.Get(srcName)
	srcXML := string(srcContent)
	source, ok := xmlscan.FindElementByAttr(srcXML, "p", "id", paragraphID)
	if !ok {
		return nil, &hwpxerr.NotFoundError{Kind: "paragraph", Identifier: paragraphID}
	}
	paragraphXML := source.Slice(srcXML)

	d.snapshotForUndo()
	newID := d.gen.NextID("para")
	copyXML := retagID(paragraphXML, newID)

	destContent, _ := d.container.Get(destName)
	destXML := string(destContent)
	if destSectionIndex == srcSectionIndex {
		destXML = insertAfterRange(destXML, source, copyXML)
	} else {
		destXML = strings.Replace(destXML, "</hs:sec>", copyXML+"</hs:sec>", 1)
	}
	d.container.Set(destName, []byte(destXML))

	if err := d.resyncSection(destSectionIndex); err != nil {
		return nil, err
	}
	d.markDirty()
	return d.Paragraph(destSectionIndex, newID)
}

// retagID rewrites elementXML's own id attribute to newID, leaving any
// descendant ids untouched (descendants of a copied paragraph are runs,
// which carry no id of their own).
func retagID(elementXML, newID string) string {
	tagEnd := strings.IndexByte(elementXML, '>')
	if tagEnd < 0 {
		return elementXML
	}
	opening := elementXML[:tagEnd+1]
	rest := elementXML[tagEnd+1:]
	needle := `id="`
	idx := strings.Index(opening, needle)
	if idx < 0 {
		return elementXML
	}
	valStart := idx + len(needle)
	valEnd := strings.IndexByte(opening[valStart:], '"')
	if valEnd < 0 {
		return elementXML
	}
	newOpening := opening[:valStart] + newID + opening[valStart+valEnd:]
	return newOpening + rest
}

// MoveParagraph relocates a top-level paragraph to immediately after
// afterParagraphID within the same section (afterParagraphID == "" moves
// it to the section's start).
func (d *Document) MoveParagraph(sectionIndex int, paragraphID, afterParagraphID string) error {
	name, err := d.sectionPartName(sectionIndex)
	if err != nil {
		return err
	}
	content, _ := d.container.Get(name)
	xml := string(content)

	moved, ok := xmlscan.FindElementByAttr(xml, "p", "id", paragraphID)
	if !ok {
		return &hwpxerr.NotFoundError{Kind: "paragraph", Identifier: paragraphID}
	}
	paragraphXML := moved.Slice(xml)

	d.snapshotForUndo()
	xml = removeRange(xml, moved)

	if afterParagraphID == "" {
		sec, ok := xmlscan.FindElement(xml, "sec")
		insertAt := 0
		if ok {
			tagEnd := strings.IndexByte(sec.Slice(xml), '>')
			if tagEnd >= 0 {
				insertAt = sec.Start + tagEnd + 1
			}
		}
		xml = xml[:insertAt] + paragraphXML + xml[insertAt:]
	} else {
		target, ok := xmlscan.FindElementByAttr(xml, "p", "id", afterParagraphID)
		if !ok {
			return &hwpxerr.NotFoundError{Kind: "paragraph", Identifier: afterParagraphID}
		}
		xml = insertAfterRange(xml, target, paragraphXML)
	}
	d.container.Set(name, []byte(xml))

	if err := d.resyncSection(sectionIndex); err != nil {
		return err
	}
	d.markDirty()
	return nil
}

// InsertSection inserts a blank section at index, shifting every later
// section's in-archive part name and in-memory index up by one. Index may
// equal SectionCount() to append at the end.
func (d *Document) InsertSection(index int) error {
	if index < 0 || index > len(d.sections) {
		return &hwpxerr.NotFoundError{Kind: "section", Identifier: strconv.Itoa(index)}
	}
	d.snapshotForUndo()

	d.renumberSectionsFrom(index, 1)
	newName := fmt.Sprintf("Contents/section%d.xml", index)
	d.container.Set(newName, []byte(blankSectionXML))

	sec := &model.Section{Index: index}
	d.sections = append(d.sections, nil)
	copy(d.sections[index+1:], d.sections[index:])
	d.sections[index] = sec
	d.reindexSections()

	d.markDirty()
	return nil
}

// DeleteSection removes the section at index entirely, shifting every
// later section's part name and in-memory index down by one.
func (d *Document) DeleteSection(index int) error {
	if index < 0 || index >= len(d.sections) {
		return &hwpxerr.NotFoundError{Kind: "section", Identifier: strconv.Itoa(index)}
	}
	d.snapshotForUndo()

	name, err := d.sectionPartName(index)
	if err != nil {
		return err
	}
	d.removePart(name)
	d.renumberSectionsFrom(index+1, -1)

	d.sections = append(d.sections[:index], d.sections[index+1:]...)
	d.reindexSections()

	d.markDirty()
	return nil
}

// renumberSectionsFrom shifts every container section part whose index is
// >= from by delta (positive to make room, negative to close a gap),
// renaming Contents/sectionN.xml to Contents/section(N+delta).xml.
// Renaming walks in an order that never overwrites a not-yet-moved part:
// ascending when delta is negative (closing a gap from the front),
// descending when delta is positive (opening a gap from the back).
func (d *Document) renumberSectionsFrom(from, delta int) {
	names := d.container.SectionNames()
	var indices []int
	for _, n := range names {
		idx := sectionIndexFromName(n)
		if idx >= from {
			indices = append(indices, idx)
		}
	}
	sort.Ints(indices)
	if delta > 0 {
		for i := len(indices) - 1; i >= 0; i-- {
			d.renamePart(indices[i], indices[i]+delta)
		}
	} else {
		for _, idx := range indices {
			d.renamePart(idx, idx+delta)
		}
	}
}

func (d *Document) renamePart(oldIdx, newIdx int) {
	oldName := fmt.Sprintf("Contents/section%d.xml", oldIdx)
	newName := fmt.Sprintf("Contents/section%d.xml", newIdx)
	content, ok := d.container.Get(oldName)
	if !ok {
		return
	}
	d.removePart(oldName)
	d.container.Set(newName, content)
}

func (d *Document) removePart(name string) {
	parts := d.container.Parts
	for i, p := range parts {
		if p.Name == name {
			d.container.Parts = append(parts[:i], parts[i+1:]...)
			break
		}
	}
	d.container.ReindexParts()
}

func sectionIndexFromName(name string) int {
	trimmed := strings.TrimPrefix(name, "Contents/section")
	trimmed = strings.TrimSuffix(trimmed, ".xml")
	n, _ := strconv.Atoi(trimmed)
	return n
}

func (d *Document) reindexSections() {
	for i, sec := range d.sections {
		if sec != nil {
			sec.Index = i
		}
	}
}

// SetColumnDefinition overrides a section's multi-column layout.
func (d *Document) SetColumnDefinition(sectionIndex, count int, sameSize bool, gapHWPUnit int) error {
	sec, err := d.Section(sectionIndex)
	if err != nil {
		return err
	}
	d.snapshotForUndo()
	sec.ColumnDef = &model.ColumnDefinition{Count: count, SameSize: sameSize, GapHWPUnit: gapHWPUnit}
	d.markDirty()
	return nil
}

// SetPageSettings overrides a section's page geometry.
func (d *Document) SetPageSettings(sectionIndex int, settings model.PageSettings) error {
	sec, err := d.Section(sectionIndex)
	if err != nil {
		return err
	}
	d.snapshotForUndo()
	copied := settings
	sec.PageSetup = &copied
	d.markDirty()
	return nil
}

// GetOutline returns every heading-like paragraph across the document,
// identified by the named styles resolveHeadingStyleIDs marks as headings.
func (d *Document) GetOutline() []model.OutlineEntry {
	return model.Outline(d.sections, d.resolveHeadingStyleIDs())
}
