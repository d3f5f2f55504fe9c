package mutators

import (
	"strings"
	"testing"

	"github.com/hwpx-surgeon/hwpx-surgeon/internal/idgen"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/mutationlog"
)

func TestApplyNestedTableInsertSplicesSubtree(t *testing.T) {
	parent := oneByOneTable(`<hp:subList><hp:p><hp:run><hp:t>host</hp:t></hp:run></hp:p></hp:subList>`)
	gen := idgen.New(idgen.AlgFNV1a)

	out, err := ApplyNestedTableInsert(parent, mutationlog.NestedTableInsert{
		Row: 0, Col: 0, RowCount: 2, ColCount: 2,
		InitialData: [][]string{{"a", "b"}, {"c", "d"}},
	}, gen)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "<hp:t>host</hp:t>") {
		t.Fatalf("expected original content preserved, got: %s", out)
	}
	for _, want := range []string{"<hp:t>a</hp:t>", "<hp:t>b</hp:t>", "<hp:t>c</hp:t>", "<hp:t>d</hp:t>"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in synthesized subtree, got: %s", want, out)
		}
	}
	if strings.Count(out, "<hp:tbl") != 2 {
		t.Fatalf("expected parent + 1 nested table, got: %s", out)
	}
	if !strings.Contains(out, "<hp:run><hp:tbl") {
		t.Fatalf("expected the sub-table to land inside a run appended to the cell's last paragraph, got: %s", out)
	}
}

func TestApplyNestedTableInsertBlankCellsWithoutInitialData(t *testing.T) {
	parent := oneByOneTable(`<hp:subList><hp:p><hp:run><hp:t>host</hp:t></hp:run></hp:p></hp:subList>`)
	gen := idgen.New(idgen.AlgXXHash3)

	out, err := ApplyNestedTableInsert(parent, mutationlog.NestedTableInsert{
		Row: 0, Col: 0, RowCount: 1, ColCount: 3,
	}, gen)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(out, "<hp:tc>") != 3+1 { // 3 new cells + 1 parent cell
		t.Fatalf("expected 3 blank nested cells, got: %s", out)
	}
}

func TestApplyNestedTableInsertOutOfRangeCol(t *testing.T) {
	parent := oneByOneTable(`<hp:subList><hp:p><hp:run><hp:t>host</hp:t></hp:run></hp:p></hp:subList>`)
	gen := idgen.New(idgen.AlgBlake2b)

	_, err := ApplyNestedTableInsert(parent, mutationlog.NestedTableInsert{Row: 0, Col: 9, RowCount: 1, ColCount: 1}, gen)
	if err == nil {
		t.Fatalf("expected error for out-of-range column")
	}
}
