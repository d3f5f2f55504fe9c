package hwpx

import (
	"encoding/csv"
	"strconv"
	"strings"

	"github.com/hwpx-surgeon/hwpx-surgeon/internal/hwpxerr"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/idgen"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/model"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/mutationlog"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/mutators"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/typography"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/xmlscan"
)

// Tables returns every top-level table in a section, in document order.
func (d *Document) Tables(sectionIndex int) ([]*model.Table, error) {
	sec, err := d.Section(sectionIndex)
	if err != nil {
		return nil, err
	}
	return sec.Tables(), nil
}

// Table returns the top-level table with the given id in a section.
func (d *Document) Table(sectionIndex int, tableID string) (*model.Table, error) {
	sec, err := d.Section(sectionIndex)
	if err != nil {
		return nil, err
	}
	t := sec.TableByID(tableID)
	if t == nil {
		return nil, &hwpxerr.NotFoundError{Kind: "table", Identifier: tableID}
	}
	return t, nil
}

// GetCell returns the cell at (row, col) of the given table.
func (d *Document) GetCell(sectionIndex int, tableID string, row, col int) (*model.Cell, error) {
	t, err := d.Table(sectionIndex, tableID)
	if err != nil {
		return nil, err
	}
	cell := t.CellAt(row, col)
	if cell == nil {
		return nil, &hwpxerr.NotFoundError{Kind: "cell", Identifier: tableID + "@" + strconv.Itoa(row) + "," + strconv.Itoa(col)}
	}
	return cell, nil
}

// UpdateCell rewrites a cell's text and, optionally, overrides its first
// run's charPrIDRef. Mirrors the model first so in-process reads see the
// change immediately, then queues a CellUpdate entry for save-time replay
// via internal/mutators.ApplyCellUpdate's five-pattern cascade.
func (d *Document) UpdateCell(sectionIndex int, tableID string, row, col int, newText string, charShapeIDRef *int) error {
	cell, err := d.GetCell(sectionIndex, tableID, row, col)
	if err != nil {
		return err
	}
	if charShapeIDRef != nil {
		if _, err := d.styles.ResolveCharShape(*charShapeIDRef); err != nil {
			return &hwpxerr.NotFoundError{Kind: "charShape", Identifier: strconv.Itoa(*charShapeIDRef)}
		}
	}
	d.snapshotForUndo()

	if len(cell.Paragraphs) == 0 {
		cell.Paragraphs = append(cell.Paragraphs, &model.Paragraph{})
	}
	p := cell.Paragraphs[0]
	if len(p.Runs) > 0 {
		p.Runs[0].Text = newText
		p.Runs = p.Runs[:1]
	} else {
		p.Runs = append(p.Runs, &model.Run{Text: newText})
	}
	if charShapeIDRef != nil {
		p.Runs[0].CharShapeIDRef = strconv.Itoa(*charShapeIDRef)
	}
	cell.Paragraphs = cell.Paragraphs[:1]

	d.log.AppendCellUpdate(mutationlog.CellUpdate{
		Section: sectionIndex, TableID: tableID, Row: row, Col: col,
		NewText: newText, CharShapeIDRef: charShapeIDRef,
	})
	d.markDirty()
	return nil
}

// InsertNested inserts a brand-new subtable into a cell of an existing
// table, queuing a NestedTableInsert entry replayed at save time by
// internal/mutators.ApplyNestedTableInsert, which mints the subtable's own
// id via the document's idgen.Generator. Like InsertImage, it does not
// mutate the object model in place — the new sub-table has no id until
// save synthesizes one, so the model would otherwise disagree with what
// gets written; reads only see it once the document is reopened.
func (d *Document) InsertNested(sectionIndex int, parentTableID string, row, col, rowCount, colCount int, initialData [][]string) error {
	if _, err := d.GetCell(sectionIndex, parentTableID, row, col); err != nil {
		return err
	}
	d.snapshotForUndo()

	d.log.AppendNestedTableInsert(mutationlog.NestedTableInsert{
		Section: sectionIndex, ParentTableID: parentTableID, Row: row, Col: col,
		RowCount: rowCount, ColCount: colCount, InitialData: initialData,
	})
	d.markDirty()
	return nil
}

// SetCellProperties overrides a cell's declared column/row span, patching
// the XML directly (no mutation-log kind covers cell-property overrides).
func (d *Document) SetCellProperties(sectionIndex int, tableID string, row, col, colSpan, rowSpan int) error {
	name, err := d.sectionPartName(sectionIndex)
	if err != nil {
		return err
	}
	content, _ := d.container.Get(name)
	xml := string(content)

	tableRange, ok := xmlscan.FindTableByID(xml, tableID)
	if !ok {
		return &hwpxerr.NotFoundError{Kind: "table", Identifier: tableID}
	}
	cellRange, ok := findCellRange(tableRange.Slice(xml), row, col)
	if !ok {
		return &hwpxerr.NotFoundError{Kind: "cell", Identifier: tableID + "@" + strconv.Itoa(row) + "," + strconv.Itoa(col)}
	}
	cellRange = xmlscan.Range{Start: tableRange.Start + cellRange.Start, End: tableRange.Start + cellRange.End}

	d.snapshotForUndo()
	cellXML := cellRange.Slice(xml)
	cellXML = setCellAddrAttr(cellXML, "colSpan", strconv.Itoa(colSpan))
	cellXML = setCellAddrAttr(cellXML, "rowSpan", strconv.Itoa(rowSpan))
	xml = replaceRange(xml, cellRange, cellXML)
	d.container.Set(name, []byte(xml))

	if err := d.resyncSection(sectionIndex); err != nil {
		return err
	}
	d.markDirty()
	return nil
}

// setCellAddrAttr overrides attr on a cell's cellAddr/cellSpan child
// element, trying each in turn since the span lives on cellSpan while the
// coordinate lives on cellAddr, and both are plausible homes depending on
// which attribute is being set.
func setCellAddrAttr(cellXML, attr, value string) string {
	for _, child := range []string{"cellSpan", "cellAddr"} {
		if r, ok := xmlscan.FindElement(cellXML, child); ok {
			return setAttr(cellXML, r, attr, value)
		}
	}
	return cellXML
}

// findCellRange locates the (row, col)-addressed <hp:tc> within tableXML by
// scanning rows and cells positionally and matching their cellAddr
// attributes, falling back to row/col-index addressing if no explicit
// cellAddr is present.
func findCellRange(tableXML string, row, col int) (xmlscan.Range, bool) {
	rows := xmlscan.FindAll(tableXML, "tr")
	if row < 0 || row >= len(rows) {
		return xmlscan.Range{}, false
	}
	rowXML := rows[row].Slice(tableXML)
	cells := xmlscan.FindAll(rowXML, "tc")
	for _, cr := range cells {
		cellXML := cr.Slice(rowXML)
		if cellAddrMatches(cellXML, col) {
			return xmlscan.Range{Start: rows[row].Start + cr.Start, End: rows[row].Start + cr.End}, true
		}
	}
	if col < 0 || col >= len(cells) {
		return xmlscan.Range{}, false
	}
	return xmlscan.Range{Start: rows[row].Start + cells[col].Start, End: rows[row].Start + cells[col].End}, true
}

func cellAddrMatches(cellXML string, col int) bool {
	r, ok := xmlscan.FindElement(cellXML, "cellAddr")
	if !ok {
		return false
	}
	tag := r.Slice(cellXML)
	needle := `colAddr="` + strconv.Itoa(col) + `"`
	return strings.Contains(tag, needle)
}

// InsertRow appends a blank row of colCount cells to the end of a table,
// patching XML directly and resyncing — row insertion carries no dedicated
// mutation-log kind.
func (d *Document) InsertRow(sectionIndex int, tableID string, colCount int) error {
	name, err := d.sectionPartName(sectionIndex)
	if err != nil {
		return err
	}
	content, _ := d.container.Get(name)
	xml := string(content)

	tableRange, ok := xmlscan.FindTableByID(xml, tableID)
	if !ok {
		return &hwpxerr.NotFoundError{Kind: "table", Identifier: tableID}
	}
	tableXML := tableRange.Slice(xml)
	rows := xmlscan.FindAll(tableXML, "tr")
	newRowIndex := len(rows)

	d.snapshotForUndo()
	rowXML := synthesizeRow(d.gen, newRowIndex, colCount)
	closeIdx := strings.LastIndex(tableXML, "</hp:tbl>")
	if closeIdx < 0 {
		return &hwpxerr.StructuralAnomalyError{Reason: "table has no recognizable closing tag"}
	}
	newTableXML := tableXML[:closeIdx] + rowXML + tableXML[closeIdx:]
	xml = xml[:tableRange.Start] + newTableXML + xml[tableRange.End:]
	d.container.Set(name, []byte(xml))

	if err := d.resyncSection(sectionIndex); err != nil {
		return err
	}
	d.markDirty()
	return nil
}

func synthesizeRow(gen *idgen.Generator, rowIndex, colCount int) string {
	var b strings.Builder
	b.WriteString("<hp:tr>")
	for col := 0; col < colCount; col++ {
		b.WriteString(`<hp:tc><hp:cellAddr colAddr="`)
		b.WriteString(itoa(col))
		b.WriteString(`" rowAddr="`)
		b.WriteString(itoa(rowIndex))
		b.WriteString(`"/><hp:subList id="`)
		b.WriteString(gen.NextID("subList"))
		b.WriteString(`"><hp:p id="`)
		b.WriteString(gen.NextID("p"))
		b.WriteString(`"><hp:run><hp:t></hp:t></hp:run></hp:p></hp:subList></hp:tc>`)
	}
	b.WriteString("</hp:tr>")
	return b.String()
}

// DeleteRow removes the n-th row of a table entirely.
func (d *Document) DeleteRow(sectionIndex int, tableID string, row int) error {
	name, err := d.sectionPartName(sectionIndex)
	if err != nil {
		return err
	}
	content, _ := d.container.Get(name)
	xml := string(content)

	tableRange, ok := xmlscan.FindTableByID(xml, tableID)
	if !ok {
		return &hwpxerr.NotFoundError{Kind: "table", Identifier: tableID}
	}
	tableXML := tableRange.Slice(xml)
	rows := xmlscan.FindAll(tableXML, "tr")
	if row < 0 || row >= len(rows) {
		return &hwpxerr.NotFoundError{Kind: "row", Identifier: tableID + "@" + strconv.Itoa(row)}
	}

	d.snapshotForUndo()
	newTableXML := removeRange(tableXML, rows[row])
	xml = xml[:tableRange.Start] + newTableXML + xml[tableRange.End:]
	d.container.Set(name, []byte(xml))

	if err := d.resyncSection(sectionIndex); err != nil {
		return err
	}
	d.markDirty()
	return nil
}

// InsertColumn appends a blank cell to every row of a table.
func (d *Document) InsertColumn(sectionIndex int, tableID string) error {
	name, err := d.sectionPartName(sectionIndex)
	if err != nil {
		return err
	}
	content, _ := d.container.Get(name)
	xml := string(content)

	tableRange, ok := xmlscan.FindTableByID(xml, tableID)
	if !ok {
		return &hwpxerr.NotFoundError{Kind: "table", Identifier: tableID}
	}
	tableXML := tableRange.Slice(xml)
	rows := xmlscan.FindAll(tableXML, "tr")

	d.snapshotForUndo()
	// Rows can carry different cell counts already (spanned cells), so each
	// row's new cell is spliced independently rather than computed once.
	newTableXML := tableXML
	offset := 0
	for rowIdx, r := range rows {
		shiftedEnd := r.End + offset
		shiftedStart := r.Start + offset
		rowXML := newTableXML[shiftedStart:shiftedEnd]
		colCount := len(xmlscan.FindAll(rowXML, "tc"))
		newCell := synthesizeCell(d.gen, rowIdx, colCount)
		closeIdx := strings.LastIndex(rowXML, "</hp:tr>")
		if closeIdx < 0 {
			continue
		}
		insertion := rowXML[:closeIdx] + newCell + rowXML[closeIdx:]
		newTableXML = newTableXML[:shiftedStart] + insertion + newTableXML[shiftedEnd:]
		offset += len(insertion) - len(rowXML)
	}
	xml = xml[:tableRange.Start] + newTableXML + xml[tableRange.End:]
	d.container.Set(name, []byte(xml))

	if err := d.resyncSection(sectionIndex); err != nil {
		return err
	}
	d.markDirty()
	return nil
}

func synthesizeCell(gen *idgen.Generator, rowIndex, colIndex int) string {
	return `<hp:tc><hp:cellAddr colAddr="` + itoa(colIndex) + `" rowAddr="` + itoa(rowIndex) +
		`"/><hp:subList id="` + gen.NextID("subList") + `"><hp:p id="` + gen.NextID("p") +
		`"><hp:run><hp:t></hp:t></hp:run></hp:p></hp:subList></hp:tc>`
}

// DeleteColumn removes the n-th cell from every row of a table.
func (d *Document) DeleteColumn(sectionIndex int, tableID string, col int) error {
	name, err := d.sectionPartName(sectionIndex)
	if err != nil {
		return err
	}
	content, _ := d.container.Get(name)
	xml := string(content)

	tableRange, ok := xmlscan.FindTableByID(xml, tableID)
	if !ok {
		return &hwpxerr.NotFoundError{Kind: "table", Identifier: tableID}
	}
	tableXML := tableRange.Slice(xml)
	rows := xmlscan.FindAll(tableXML, "tr")

	d.snapshotForUndo()
	newTableXML := tableXML
	offset := 0
	for _, r := range rows {
		shiftedStart := r.Start + offset
		shiftedEnd := r.End + offset
		rowXML := newTableXML[shiftedStart:shiftedEnd]
		cells := xmlscan.FindAll(rowXML, "tc")
		if col < 0 || col >= len(cells) {
			continue
		}
		updatedRow := removeRange(rowXML, cells[col])
		newTableXML = newTableXML[:shiftedStart] + updatedRow + newTableXML[shiftedEnd:]
		offset += len(updatedRow) - len(rowXML)
	}
	xml = xml[:tableRange.Start] + newTableXML + xml[tableRange.End:]
	d.container.Set(name, []byte(xml))

	if err := d.resyncSection(sectionIndex); err != nil {
		return err
	}
	d.markDirty()
	return nil
}

// ExportCSV renders a table's cell text as CSV, one row per line, via a
// straightforward encoding/csv.Writer over the model's row/cell text —
// quoting and line-ending handling come from the standard writer rather
// than a hand-rolled RFC4180 escape.
func (d *Document) ExportCSV(sectionIndex int, tableID string) (string, error) {
	t, err := d.Table(sectionIndex, tableID)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	w := csv.NewWriter(&b)
	for _, row := range t.Rows {
		record := make([]string, len(row.Cells))
		for ci, cell := range row.Cells {
			record[ci] = cell.Text()
		}
		if err := w.Write(record); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}
	return strings.TrimSuffix(b.String(), "\n"), nil
}

// InsertTable synthesizes a brand-new top-level table after afterElementID
// (a paragraph or table id), or at the section's end if afterElementID is
// empty. No mutation-log kind covers whole-table creation; the XML is
// built the same way internal/mutators.synthesizeTable builds a subtable.
func (d *Document) InsertTable(sectionIndex int, afterElementID string, rowCount, colCount int, initialData [][]string) (*model.Table, error) {
	name, err := d.sectionPartName(sectionIndex)
	if err != nil {
		return nil, err
	}
	content, _ := d.container.Get(name)
	xml := string(content)

	tableID := d.gen.NextID("tbl")
	tableXML := synthesizeTopLevelTable(d.gen, tableID, rowCount, colCount, initialData)

	d.snapshotForUndo()
	if afterElementID == "" {
		closeIdx := strings.LastIndex(xml, "</hs:sec>")
		if closeIdx < 0 {
			xml += tableXML
		} else {
			xml = xml[:closeIdx] + tableXML + xml[closeIdx:]
		}
	} else {
		target, ok := xmlscan.FindElementByAttr(xml, "p", "id", afterElementID)
		if !ok {
			target, ok = xmlscan.FindTableByID(xml, afterElementID)
		}
		if !ok {
			return nil, &hwpxerr.NotFoundError{Kind: "element", Identifier: afterElementID}
		}
		xml = insertAfterRange(xml, target, tableXML)
	}
	d.container.Set(name, []byte(xml))

	if err := d.resyncSection(sectionIndex); err != nil {
		return nil, err
	}
	d.markDirty()
	return d.Table(sectionIndex, tableID)
}

func synthesizeTopLevelTable(gen *idgen.Generator, tableID string, rowCount, colCount int, initialData [][]string) string {
	var b strings.Builder
	b.WriteString(`<hp:tbl id="`)
	b.WriteString(tableID)
	b.WriteString(`" rowCnt="`)
	b.WriteString(itoa(rowCount))
	b.WriteString(`" colCnt="`)
	b.WriteString(itoa(colCount))
	b.WriteString(`">`)
	for row := 0; row < rowCount; row++ {
		b.WriteString("<hp:tr>")
		for col := 0; col < colCount; col++ {
			text := ""
			if row < len(initialData) && col < len(initialData[row]) {
				text = initialData[row][col]
			}
			b.WriteString(`<hp:tc><hp:cellAddr colAddr="`)
			b.WriteString(itoa(col))
			b.WriteString(`" rowAddr="`)
			b.WriteString(itoa(row))
			b.WriteString(`"/><hp:subList id="`)
			b.WriteString(gen.NextID("subList"))
			b.WriteString(`"><hp:p id="`)
			b.WriteString(gen.NextID("p"))
			b.WriteString(`"><hp:run><hp:t>`)
			b.WriteString(mutators.EscapeText(text))
			b.WriteString(`</hp:t></hp:run></hp:p></hp:subList></hp:tc>`)
		}
		b.WriteString("</hp:tr>")
	}
	b.WriteString("</hp:tbl>")
	return b.String()
}

// HangingIndent sets a paragraph's indent to exactly its leading marker's
// rendered width, recognized and measured by internal/typography.
func (d *Document) HangingIndent(sectionIndex int, paragraphID string, fontSizePt float64) error {
	p, err := d.Paragraph(sectionIndex, paragraphID)
	if err != nil {
		return err
	}
	marker, ok := typography.Recognize(p.Text())
	if !ok {
		return &hwpxerr.StructuralAnomalyError{Reason: "paragraph carries no recognized leading marker"}
	}
	widthHWPUnit := marker.WidthHWPUnit(fontSizePt)

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

	d.snapshotForUndo()
	xml = setAttr(xml, para, "indentHWPUnit", itoa(widthHWPUnit))
	d.container.Set(name, []byte(xml))

	if err := d.resyncSection(sectionIndex); err != nil {
		return err
	}
	d.markDirty()
	return nil
}
