package hwpx

import (
	"strings"

	"github.com/hwpx-surgeon/hwpx-surgeon/internal/hwpxerr"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/model"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/mutators"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/xmlscan"
)

// Header returns a section's header overlay, or nil if it carries none.
func (d *Document) Header(sectionIndex int) (*model.HeaderFooter, error) {
	sec, err := d.Section(sectionIndex)
	if err != nil {
		return nil, err
	}
	return sec.Header, nil
}

// Footer returns a section's footer overlay, or nil if it carries none.
func (d *Document) Footer(sectionIndex int) (*model.HeaderFooter, error) {
	sec, err := d.Section(sectionIndex)
	if err != nil {
		return nil, err
	}
	return sec.Footer, nil
}

// SetHeaderText replaces a section's header with a single paragraph of
// text, creating the header element if the section had none. No
// mutation-log kind covers overlay furniture, so this patches the section
// XML directly and resyncs.
func (d *Document) SetHeaderText(sectionIndex int, text string) error {
	return d.setOverlayText(sectionIndex, "header", text)
}

// SetFooterText is SetHeaderText for the footer overlay.
func (d *Document) SetFooterText(sectionIndex int, text string) error {
	return d.setOverlayText(sectionIndex, "footer", text)
}

func (d *Document) setOverlayText(sectionIndex int, elementName, text string) error {
	name, err := d.sectionPartName(sectionIndex)
	if err != nil {
		return err
	}
	content, _ := d.container.Get(name)
	xml := string(content)

	paraID := d.gen.NextID("p")
	newElement := "<hp:" + elementName + "><hp:subList><hp:p id=\"" + paraID + "\"><hp:run><hp:t>" +
		mutators.EscapeText(text) + "</hp:t></hp:run></hp:p></hp:subList></hp:" + elementName + ">"

	d.snapshotForUndo()
	if existing, ok := xmlscan.FindElement(xml, elementName); ok {
		xml = replaceRange(xml, existing, newElement)
	} else {
		xml = strings.Replace(xml, "</hs:sec>", newElement+"</hs:sec>", 1)
	}
	d.container.Set(name, []byte(xml))

	if err := d.resyncSection(sectionIndex); err != nil {
		return err
	}
	d.markDirty()
	return nil
}

// Memos returns a section's marginal comments.
func (d *Document) Memos(sectionIndex int) ([]model.Memo, error) {
	sec, err := d.Section(sectionIndex)
	if err != nil {
		return nil, err
	}
	return sec.Memos, nil
}

// InsertMemo attaches a new marginal comment to the runIndex-th run inside
// paragraphID, recorded as a memo-reference element placed after that run
// and a memo appended to the section's memogroup.
func (d *Document) InsertMemo(sectionIndex int, paragraphID string, runIndex int, author, text string) (string, error) {
	p, err := d.Paragraph(sectionIndex, paragraphID)
	if err != nil {
		return "", err
	}
	if runIndex < 0 || runIndex >= len(p.Runs) {
		return "", &hwpxerr.NotFoundError{Kind: "run", Identifier: paragraphID}
	}
	name, err := d.sectionPartName(sectionIndex)
	if err != nil {
		return "", err
	}
	content, _ := d.container.Get(name)
	xml := string(content)

	d.snapshotForUndo()
	memoID := d.gen.NextID("memo")

	para, ok := xmlscan.FindElementByAttr(xml, "p", "id", paragraphID)
	if !ok {
		return "", &hwpxerr.NotFoundError{Kind: "paragraph", Identifier: paragraphID}
	}
	runs := xmlscan.FindAll(para.Slice(xml), "run")
	if runIndex >= len(runs) {
		return "", &hwpxerr.NotFoundError{Kind: "run", Identifier: paragraphID}
	}
	targetRun := xmlscan.Range{Start: para.Start + runs[runIndex].Start, End: para.Start + runs[runIndex].End}
	memoRefXML := `<hp:memoRef id="` + memoID + `"/>`
	xml = insertAfterRange(xml, targetRun, memoRefXML)

	memoXML := `<hp:memogroup><hp:memo id="` + memoID + `" author="` + mutators.EscapeText(author) + `">` +
		mutators.EscapeText(text) + `</hp:memo></hp:memogroup>`
	if existing, ok := xmlscan.FindElement(xml, "memogroup"); ok {
		inner := existing.Slice(xml)
		closeIdx := strings.LastIndex(inner, "</hp:memogroup>")
		newMemo := `<hp:memo id="` + memoID + `" author="` + mutators.EscapeText(author) + `">` +
			mutators.EscapeText(text) + `</hp:memo>`
		updated := inner[:closeIdx] + newMemo + inner[closeIdx:]
		xml = replaceRange(xml, existing, updated)
	} else {
		xml = strings.Replace(xml, "</hs:sec>", memoXML+"</hs:sec>", 1)
	}
	d.container.Set(name, []byte(xml))

	if err := d.resyncSection(sectionIndex); err != nil {
		return "", err
	}
	d.markDirty()
	return memoID, nil
}

// InsertBookmark attaches a named bookmark to a paragraph's run.
func (d *Document) InsertBookmark(sectionIndex int, paragraphID string, runIndex int, name string) error {
	return d.insertRunField(sectionIndex, paragraphID, runIndex, "bookmark", `name="`+mutators.EscapeText(name)+`"`)
}

// InsertHyperlink attaches a hyperlink target to a paragraph's run.
func (d *Document) InsertHyperlink(sectionIndex int, paragraphID string, runIndex int, href string) error {
	return d.insertRunField(sectionIndex, paragraphID, runIndex, "hyperlink", `href="`+mutators.EscapeText(href)+`"`)
}

func (d *Document) insertRunField(sectionIndex int, paragraphID string, runIndex int, elementName, attrsXML string) error {
	name, err := d.sectionPartName(sectionIndex)
	if err != nil {
		return err
	}
	content, _ := d.container.Get(name)
	xml := string(content)

	para, ok := xmlscan.FindElementByAttr(xml, "p", "id", paragraphID)
	if !ok {
		return &hwpxerr.NotFoundError{Kind: "paragraph", Identifier: paragraphID}
	}
	runs := xmlscan.FindAll(para.Slice(xml), "run")
	if runIndex < 0 || runIndex >= len(runs) {
		return &hwpxerr.NotFoundError{Kind: "run", Identifier: paragraphID}
	}
	runRange := xmlscan.Range{Start: para.Start + runs[runIndex].Start, End: para.Start + runs[runIndex].End}
	runXML := runRange.Slice(xml)
	tagEnd := strings.IndexByte(runXML, '>')
	if tagEnd < 0 {
		return &hwpxerr.StructuralAnomalyError{Reason: "run has no recognizable opening tag"}
	}
	insertion := "<hp:" + elementName + " " + attrsXML + "/>"
	newRunXML := runXML[:tagEnd+1] + insertion + runXML[tagEnd+1:]

	d.snapshotForUndo()
	xml = replaceRange(xml, runRange, newRunXML)
	d.container.Set(name, []byte(xml))

	if err := d.resyncSection(sectionIndex); err != nil {
		return err
	}
	d.markDirty()
	return nil
}

// InsertFootnote inserts a footnote element right after the paragraph's
// closing tag, whose sub-list holds one body paragraph carrying text.
func (d *Document) InsertFootnote(sectionIndex int, paragraphID, text string) (string, error) {
	return d.insertNote(sectionIndex, paragraphID, "footnote", text)
}

// InsertEndnote inserts an endnote element right after the paragraph's
// closing tag, whose sub-list holds one body paragraph carrying text.
func (d *Document) InsertEndnote(sectionIndex int, paragraphID, text string) (string, error) {
	return d.insertNote(sectionIndex, paragraphID, "endnote", text)
}

func (d *Document) insertNote(sectionIndex int, paragraphID, kind, text string) (string, error) {
	name, err := d.sectionPartName(sectionIndex)
	if err != nil {
		return "", err
	}
	content, _ := d.container.Get(name)
	xml := string(content)

	para, ok := xmlscan.FindElementByAttr(xml, "p", "id", paragraphID)
	if !ok {
		return "", &hwpxerr.NotFoundError{Kind: "paragraph", Identifier: paragraphID}
	}

	d.snapshotForUndo()
	noteID := d.gen.NextID(kind)
	bodyParaID := d.gen.NextID("p")
	noteXML := "<hp:" + kind + " id=\"" + noteID + "\"><hp:subList><hp:p id=\"" + bodyParaID +
		"\"><hp:run><hp:t>" + mutators.EscapeText(text) + "</hp:t></hp:run></hp:p></hp:subList></hp:" + kind + ">"

	xml = insertAfterRange(xml, para, noteXML)
	d.container.Set(name, []byte(xml))

	if err := d.resyncSection(sectionIndex); err != nil {
		return "", err
	}
	d.markDirty()
	return noteID, nil
}
