package model

import "testing"

func newTestTable() *Table {
	return &Table{
		ID: "tbl-1",
		Rows: []*Row{
			{Cells: []*Cell{
				{RowAddr: 0, ColAddr: 0, ColSpan: 1, Paragraphs: []*Paragraph{{ID: "p1", Runs: []*Run{{Text: "Cell 0,0"}}}}},
				{RowAddr: 0, ColAddr: 1, ColSpan: 1, Paragraphs: []*Paragraph{{ID: "p2", Runs: []*Run{{Text: "Cell 0,1"}}}}},
			}},
			{Cells: []*Cell{
				{RowAddr: 1, ColAddr: 0, ColSpan: 1, Paragraphs: []*Paragraph{{ID: "p3", Runs: []*Run{{Text: "Cell 1,0"}}}}},
				{RowAddr: 1, ColAddr: 1, ColSpan: 1, Paragraphs: []*Paragraph{{ID: "p4", Runs: []*Run{{Text: "Cell 1,1"}}}}},
			}},
		},
	}
}

func TestCellAt(t *testing.T) {
	tbl := newTestTable()
	cell := tbl.CellAt(1, 1)
	if cell == nil || cell.Text() != "Cell 1,1" {
		t.Fatalf("expected Cell 1,1, got %+v", cell)
	}
}

func TestDescribe(t *testing.T) {
	tbl := newTestTable()
	info := tbl.Describe()
	if info.RowCount != 2 || info.ColumnCount != 2 {
		t.Fatalf("unexpected info: %+v", info)
	}
}

func TestWalkCellsStopsEarly(t *testing.T) {
	tbl := newTestTable()
	count := 0
	tbl.WalkCells(func(row, col int, cell *Cell) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Fatalf("expected walk to stop after 2 cells, got %d", count)
	}
}

func TestSectionLookups(t *testing.T) {
	tbl := newTestTable()
	para := &Paragraph{ID: "top-1", Runs: []*Run{{Text: "hello"}}}
	sec := &Section{Index: 0, Elements: []Element{para, tbl}}

	if sec.TableByID("tbl-1") != tbl {
		t.Fatalf("expected to find table by id")
	}
	if sec.ParagraphByID("top-1") != para {
		t.Fatalf("expected to find paragraph by id")
	}
	if sec.TableByID("missing") != nil {
		t.Fatalf("expected nil for missing table")
	}
}

func TestStyleTablesResolve(t *testing.T) {
	st := NewStyleTables()
	st.CharShapes[5] = &CharShape{ID: 5, SizePt: 10}

	if _, err := st.ResolveCharShape(5); err != nil {
		t.Fatalf("expected charshape 5 to resolve: %v", err)
	}
	if _, err := st.ResolveCharShape(99); err == nil {
		t.Fatalf("expected unresolved charshape to error")
	}
}

func TestOutline(t *testing.T) {
	heading := &Paragraph{ID: "h1", ParaStyleIDRef: "2", Runs: []*Run{{Text: "Chapter 1"}}}
	body := &Paragraph{ID: "b1", ParaStyleIDRef: "0", Runs: []*Run{{Text: "body text"}}}
	sec := &Section{Index: 0, Elements: []Element{heading, body}}

	entries := Outline([]*Section{sec}, map[string]bool{"2": true})
	if len(entries) != 1 || entries[0].Text != "Chapter 1" {
		t.Fatalf("unexpected outline: %+v", entries)
	}
}
