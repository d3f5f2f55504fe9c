package mutators

import (
	"strconv"
	"strings"

	"github.com/hwpx-surgeon/hwpx-surgeon/internal/hwpxerr"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/idgen"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/mutationlog"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/xmlscan"
)

// ApplyNestedTableInsert splices a freshly synthesized sub-table into the
// target cell of parentTableXML (the full range of one <hp:tbl> element, as
// ApplyCellUpdate expects). The synthesized subtree is modeled on
// other_examples/aac14b98_falcomza-docx-chart-updater's trackchanges.go
// approach of building a complete replacement block as a plain string and
// splicing it at a byte offset, rather than building any intermediate
// struct-based tree.
func ApplyNestedTableInsert(parentTableXML string, n mutationlog.NestedTableInsert, gen *idgen.Generator) (string, error) {
	rowRange, err := nthTopLevel(parentTableXML, "tr", n.Row)
	if err != nil {
		return "", err
	}
	rowXML := rowRange.Slice(parentTableXML)

	cellRange, err := nthTopLevel(rowXML, "tc", n.Col)
	if err != nil {
		return "", err
	}
	cellXML := cellRange.Slice(rowXML)

	subTableXML := synthesizeTable(n, gen)

	newCellXML, err := insertIntoCell(cellXML, subTableXML)
	if err != nil {
		return "", err
	}

	newRowXML := rowXML[:cellRange.Start] + newCellXML + rowXML[cellRange.End:]
	newTableXML := parentTableXML[:rowRange.Start] + newRowXML + parentTableXML[rowRange.End:]
	return newTableXML, nil
}

// synthesizeTable builds a complete, self-contained <hp:tbl> element with
// n.RowCount x n.ColCount cells, each carrying a fresh ID and, when
// n.InitialData supplies it, literal starting text.
func synthesizeTable(n mutationlog.NestedTableInsert, gen *idgen.Generator) string {
	tableID := gen.NextID("tbl")
	var b strings.Builder
	b.WriteString(`<hp:tbl id="`)
	b.WriteString(tableID)
	b.WriteString(`" rowCnt="`)
	b.WriteString(strconv.Itoa(n.RowCount))
	b.WriteString(`" colCnt="`)
	b.WriteString(strconv.Itoa(n.ColCount))
	b.WriteString(`">`)

	for row := 0; row < n.RowCount; row++ {
		b.WriteString("<hp:tr>")
		for col := 0; col < n.ColCount; col++ {
			text := ""
			if row < len(n.InitialData) && col < len(n.InitialData[row]) {
				text = n.InitialData[row][col]
			}
			b.WriteString(`<hp:tc><hp:cellAddr colAddr="`)
			b.WriteString(strconv.Itoa(col))
			b.WriteString(`" rowAddr="`)
			b.WriteString(strconv.Itoa(row))
			b.WriteString(`"/><hp:subList id="`)
			b.WriteString(gen.NextID("subList"))
			b.WriteString(`"><hp:p id="`)
			b.WriteString(gen.NextID("p"))
			b.WriteString(`"><hp:run><hp:t>`)
			b.WriteString(EscapeText(text))
			b.WriteString(`</hp:t></hp:run></hp:p></hp:subList></hp:tc>`)
		}
		b.WriteString("</hp:tr>")
	}
	b.WriteString("</hp:tbl>")
	return b.String()
}

// insertIntoCell extends the cell's last paragraph with a fresh run whose
// body is subTableXML, per spec §4.5's "the parent cell's last paragraph
// extended with a run whose body is the sub-table" — the sub-table becomes
// inline content of that run, not a sibling of the paragraph/subList.
func insertIntoCell(cellXML, subTableXML string) (string, error) {
	paragraphs := xmlscan.FindAll(cellXML, "p")
	if len(paragraphs) == 0 {
		return "", &hwpxerr.StructuralAnomalyError{Reason: "target cell has no paragraph to host the nested table"}
	}
	last := paragraphs[len(paragraphs)-1]
	paraXML := last.Slice(cellXML)

	prefix, ok := elementPrefix(paraXML)
	if !ok {
		return "", &hwpxerr.StructuralAnomalyError{Reason: "target paragraph has no recognizable prefix"}
	}
	closeTag := "</" + prefix + ":p>"
	idx := strings.LastIndex(paraXML, closeTag)
	if idx < 0 {
		return "", &hwpxerr.StructuralAnomalyError{Reason: "target paragraph has no recognizable closing tag"}
	}
	run := "<" + prefix + ":run>" + subTableXML + "</" + prefix + ":run>"
	newParaXML := paraXML[:idx] + run + paraXML[idx:]
	return cellXML[:last.Start] + newParaXML + cellXML[last.End:], nil
}

// elementPrefix returns the hp/hs/hc namespace prefix xml's root element
// opens with.
func elementPrefix(xml string) (string, bool) {
	for _, prefix := range runPrefixes {
		if strings.HasPrefix(xml, "<"+prefix+":") {
			return prefix, true
		}
	}
	return "", false
}
