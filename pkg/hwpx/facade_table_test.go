package hwpx

import (
	"strings"
	"testing"
)

func TestUpdateCellRewritesTextAndQueuesLogEntry(t *testing.T) {
	doc := buildTestDocument(t, testTableSection)

	if err := doc.UpdateCell(0, "tbl-1", 0, 0, "new value", nil); err != nil {
		t.Fatalf("UpdateCell: %v", err)
	}
	cell, err := doc.GetCell(0, "tbl-1", 0, 0)
	if err != nil {
		t.Fatalf("GetCell: %v", err)
	}
	if cell.Text() != "new value" {
		t.Fatalf("expected in-memory cell text updated, got %q", cell.Text())
	}
	if !doc.IsDirty() {
		t.Fatalf("expected document marked dirty")
	}
	if doc.log.Len() != 1 {
		t.Fatalf("expected one queued log entry, got %d", doc.log.Len())
	}
}

func TestInsertNestedQueuesLogEntryWithoutMutatingModel(t *testing.T) {
	doc := buildTestDocument(t, testTableSection)

	err := doc.InsertNested(0, "tbl-1", 0, 0, 2, 2, [][]string{{"a", "b"}, {"c", "d"}})
	if err != nil {
		t.Fatalf("InsertNested: %v", err)
	}
	cell, err := doc.GetCell(0, "tbl-1", 0, 0)
	if err != nil {
		t.Fatalf("GetCell: %v", err)
	}
	if cell.NestedTable != nil {
		t.Fatalf("expected the in-memory cell untouched until save/reopen, got %+v", cell.NestedTable)
	}
	if doc.log.Len() != 1 {
		t.Fatalf("expected one queued NestedTableInsert entry, got %d", doc.log.Len())
	}
	entries := doc.log.Peek()
	n := entries[0].NestedTableInsert
	if n == nil || n.RowCount != 2 || n.ColCount != 2 {
		t.Fatalf("expected a queued 2x2 nested-table-insert entry, got %+v", n)
	}
}

func TestInsertRowAddsRowToModel(t *testing.T) {
	doc := buildTestDocument(t, testTableSection)

	if err := doc.InsertRow(0, "tbl-1", 1); err != nil {
		t.Fatalf("InsertRow: %v", err)
	}
	tbl, err := doc.Table(0, "tbl-1")
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 rows after insert, got %d", len(tbl.Rows))
	}
}

func TestInsertTableSynthesizesTopLevelTable(t *testing.T) {
	doc := buildTestDocument(t, testParagraphSection)

	tbl, err := doc.InsertTable(0, "para-1", 2, 2, [][]string{{"x", "y"}, {"z", "w"}})
	if err != nil {
		t.Fatalf("InsertTable: %v", err)
	}
	if tbl.RowCount != 2 || tbl.ColCount != 2 {
		t.Fatalf("expected a 2x2 table, got %dx%d", tbl.RowCount, tbl.ColCount)
	}
	xml, err := doc.GetSectionXML(0)
	if err != nil {
		t.Fatalf("GetSectionXML: %v", err)
	}
	if !strings.Contains(xml, tbl.ID) {
		t.Fatalf("expected new table id present in section XML, got: %s", xml)
	}
}

func TestExportCSVRendersCellText(t *testing.T) {
	doc := buildTestDocument(t, testTableSection)

	csv, err := doc.ExportCSV(0, "tbl-1")
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	if !strings.Contains(csv, "old") {
		t.Fatalf("expected exported CSV to contain cell text, got: %s", csv)
	}
}

func TestExportCSVQuotesEmbeddedCommaAndQuote(t *testing.T) {
	doc := buildTestDocument(t, testTableSection)

	if err := doc.UpdateCell(0, "tbl-1", 0, 0, `value, with "quote"`, nil); err != nil {
		t.Fatalf("UpdateCell: %v", err)
	}
	out, err := doc.ExportCSV(0, "tbl-1")
	if err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	const want = `"value, with ""quote"""`
	if !strings.Contains(out, want) {
		t.Fatalf("expected RFC4180-quoted field %s, got: %s", want, out)
	}
}
