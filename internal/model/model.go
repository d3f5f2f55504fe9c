// Package model is the in-memory object model of an HWPX document: the
// tree of sections, elements, paragraphs/runs, tables, images, and the
// auxiliary style/binary-item tables they reference. It is populated by an
// external semantic parser on load (out of this package's scope, per the
// spec) or by a minimal template generator for a brand-new document; this
// package only defines the shapes and the read/mutate helpers the façade
// needs.
//
// Element is a closed tagged variant (spec §9: "dynamic dispatch becomes a
// tagged variant") rather than an open class hierarchy: every concrete
// element type implements the unexported isElement marker so a switch over
// elem.(type) is exhaustive by construction.
package model

// Element is any of the seven element kinds a Section can hold, in the
// order that ordering is significant within the section.
type Element interface {
	isElement()
	// ElementID returns the stable identifier of the element, or "" if the
	// element kind has none (lines/rects/ellipses are positional and
	// unreferenced, so they carry no stable id).
	ElementID() string
}

// Section is an ordered sequence of elements, plus the optional
// section-level furniture (header, footer, memo list, page settings,
// column definition). Sections correspond 1:1 to section<i>.xml parts.
type Section struct {
	Index      int
	Elements   []Element
	Header     *HeaderFooter
	Footer     *HeaderFooter
	Memos      []Memo
	PageSetup  *PageSettings
	ColumnDef  *ColumnDefinition
}

// HeaderFooter holds the text-only header/footer overlay content of spec
// §4.4's "styled overlays" verbs.
type HeaderFooter struct {
	Paragraphs []*Paragraph
}

// PageSettings is a minimal page-geometry record; HWPX carries far more,
// but only what set_page_settings can mutate is modeled here, per the
// "fidelity beyond what is explicitly mutated" non-goal.
type PageSettings struct {
	WidthHWPUnit  int
	HeightHWPUnit int
	MarginTop     int
	MarginBottom  int
	MarginLeft    int
	MarginRight   int
}

// ColumnDefinition describes multi-column layout for a section.
type ColumnDefinition struct {
	Count    int
	SameSize bool
	GapHWPUnit int
}

// Memo is a marginal comment/annotation attached to a run via a memo
// back-reference field.
type Memo struct {
	ID     string
	Author string
	Text   string
}

// Paragraph has a stable identifier, an ordered list of runs, and optional
// style references.
type Paragraph struct {
	ID              string
	Runs            []*Run
	ParaShapeIDRef  string
	ParaStyleIDRef  string
}

func (*Paragraph) isElement()        {}
func (p *Paragraph) ElementID() string { return p.ID }

// Text returns the concatenated literal text of all runs, the form used by
// search/replace and hanging-indent marker recognition.
func (p *Paragraph) Text() string {
	var out []byte
	for _, r := range p.Runs {
		out = append(out, r.Text...)
	}
	return string(out)
}

// FieldKind identifies the kind of field a Run carries, if any.
type FieldKind int

const (
	FieldNone FieldKind = iota
	FieldBookmark
	FieldHyperlink
	FieldFootnoteRef
	FieldEndnoteRef
	FieldMemoRef
)

// Field is the optional bookmark/hyperlink/footnote/memo back-reference a
// Run may carry.
type Field struct {
	Kind   FieldKind
	Target string // bookmark name, hyperlink URL, or footnote/memo id
}

// Run is a contiguous stretch of text sharing character properties.
type Run struct {
	Text          string
	CharShapeIDRef string
	Field          *Field
}

// Table has a stable identifier that must appear as the element's id
// attribute in XML, declared row/column counts, a width, and ordered rows.
type Table struct {
	ID       string
	RowCount int
	ColCount int
	WidthHWPUnit int
	Rows     []*Row
}

func (*Table) isElement()        {}
func (t *Table) ElementID() string { return t.ID }

// Row owns an ordered list of cells.
type Row struct {
	Cells []*Cell
}

// Cell owns its paragraphs, its (colAddr,rowAddr) coordinate, its span, and
// its width. Nested tables live as an Element inside one of the cell's
// paragraphs' runs via NestedTable, matching how HWPX embeds a <tbl> inside
// a cell's sub-list.
type Cell struct {
	Paragraphs   []*Paragraph
	ColAddr      int
	RowAddr      int
	ColSpan      int
	RowSpan      int
	WidthHWPUnit int
	NestedTable  *Table // non-nil if this cell's last paragraph wraps a table
}

// Text concatenates the literal text of every paragraph in the cell,
// joined with newlines — used by csv-export and cell-scoped search.
func (c *Cell) Text() string {
	var out string
	for i, p := range c.Paragraphs {
		if i > 0 {
			out += "\n"
		}
		out += p.Text()
	}
	return out
}

// Image has a stable identifier, declared size, a binary-item reference,
// MIME type, and a base64 payload held until save.
type Image struct {
	ID            string
	BinaryItemID  string
	MIMEType      string
	WidthPoint    float64
	HeightPoint   float64
	Base64Payload string
}

func (*Image) isElement()        {}
func (i *Image) ElementID() string { return i.ID }

// Line, Rectangle, Ellipse are positional drawing primitives; they carry no
// stable cross-referenced identifier.
type Line struct {
	X1, Y1, X2, Y2 int
}

func (*Line) isElement()        {}
func (*Line) ElementID() string { return "" }

type Rectangle struct {
	X, Y, Width, Height int
}

func (*Rectangle) isElement()        {}
func (*Rectangle) ElementID() string { return "" }

type Ellipse struct {
	X, Y, Width, Height int
}

func (*Ellipse) isElement()        {}
func (*Ellipse) ElementID() string { return "" }

// Equation embeds a formula by its script source; rendering is out of
// scope, the model only stores what set/insert touch.
type Equation struct {
	ID     string
	Script string
}

func (*Equation) isElement()        {}
func (e *Equation) ElementID() string { return e.ID }
