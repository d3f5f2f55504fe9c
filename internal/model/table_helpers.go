// Table structural helpers, generalized from the teacher's TableContext /
// TableInfo (pkg/stencil/table.go): walking rows/cells and reporting grid
// dimensions is schema-agnostic, so the shape transplants directly even
// though the underlying element vocabulary (OOXML w:tbl vs HWPX hp:tbl) is
// different.
package model

// CellAt returns the cell at the given 0-based (row, col) address, or nil
// if out of range. Addressing is by declared coordinate, not array index,
// since spanned cells can make them diverge.
func (t *Table) CellAt(row, col int) *Cell {
	for _, r := range t.Rows {
		for _, c := range r.Cells {
			if c.RowAddr == row && c.ColAddr == col {
				return c
			}
		}
	}
	return nil
}

// Info reports structural information about the table: row count and the
// maximum column count derived from actual cell spans (HWPX tables do not
// always carry an explicit grid, unlike OOXML's tblGrid).
type Info struct {
	RowCount    int
	ColumnCount int
}

// Describe computes an Info summary for the table.
func (t *Table) Describe() Info {
	info := Info{RowCount: len(t.Rows)}
	for _, row := range t.Rows {
		cols := 0
		for _, c := range row.Cells {
			span := c.ColSpan
			if span < 1 {
				span = 1
			}
			cols += span
		}
		if cols > info.ColumnCount {
			info.ColumnCount = cols
		}
	}
	return info
}

// WalkCells calls fn for every cell in the table in row-major order,
// stopping early if fn returns false.
func (t *Table) WalkCells(fn func(row, col int, cell *Cell) bool) {
	for ri, row := range t.Rows {
		for ci, cell := range row.Cells {
			if !fn(ri, ci, cell) {
				return
			}
		}
	}
}

// Section helpers ------------------------------------------------------

// Tables returns every top-level Table element in the section, in document
// order.
func (s *Section) Tables() []*Table {
	var out []*Table
	for _, e := range s.Elements {
		if t, ok := e.(*Table); ok {
			out = append(out, t)
		}
	}
	return out
}

// Paragraphs returns every top-level Paragraph element in the section, in
// document order (paragraphs nested inside table cells are not included;
// use Table.WalkCells for those).
func (s *Section) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, e := range s.Elements {
		if p, ok := e.(*Paragraph); ok {
			out = append(out, p)
		}
	}
	return out
}

// TableByID returns the top-level table with the given ID, or nil.
func (s *Section) TableByID(id string) *Table {
	for _, t := range s.Tables() {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// ParagraphByID returns the top-level paragraph with the given ID, or nil.
func (s *Section) ParagraphByID(id string) *Paragraph {
	for _, p := range s.Paragraphs() {
		if p.ID == id {
			return p
		}
	}
	return nil
}
