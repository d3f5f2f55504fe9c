// Package modelload builds the in-memory object model (internal/model)
// from a section part's raw XML. Where the teacher's pkg/stencil/xml
// package declares one Go struct per OOXML element and leans on
// encoding/xml's struct-tag unmarshaling (Table/TableRow/Paragraph/Run in
// table.go, paragraph.go, run.go), this package walks a generic element
// tree instead: HWPX mixes hp:p and hp:tbl siblings directly under hs:sec
// in a way that is awkward to express as typed struct fields, and the rest
// of this module already treats the element vocabulary as data (spec §9's
// tagged-variant guidance) rather than as a fixed struct shape.
//
// The loader is read-only: it never round-trips back to XML. Every
// mutation this module performs goes through internal/mutators' surgical
// byte-offset rewrites instead, so the model the loader builds only needs
// to be accurate enough for the façade's query and search verbs, not
// byte-for-byte reproducible.
package modelload

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/hwpx-surgeon/hwpx-surgeon/internal/model"
)

// node is a generic, namespace-prefix-stripped XML element tree.
type node struct {
	Name     string
	Attrs    map[string]string
	Children []*node
	Text     string
}

func (n *node) attr(name string) string { return n.Attrs[name] }

func (n *node) firstChild(name string) *node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (n *node) allChildren(name string) []*node {
	var out []*node
	for _, c := range n.Children {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// parseTree decodes r into a node tree rooted at the document element.
func parseTree(r io.Reader) (*node, error) {
	dec := xml.NewDecoder(r)
	var stack []*node
	var root *node
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{Name: t.Name.Local, Attrs: make(map[string]string, len(t.Attr))}
			for _, a := range t.Attr {
				n.Attrs[a.Name.Local] = a.Value
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			} else {
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(t)
			}
		}
	}
	return root, nil
}

// LoadSection parses one section part's raw XML into a model.Section.
// Unrecognized elements (settings, furniture this module doesn't edit) are
// silently skipped rather than erroring, matching spec's "fidelity beyond
// what is explicitly mutated" non-goal.
func LoadSection(index int, xmlBytes []byte) (*model.Section, error) {
	root, err := parseTree(strings.NewReader(string(xmlBytes)))
	if err != nil {
		return nil, err
	}
	sec := &model.Section{Index: index}
	if root == nil {
		return sec, nil
	}
	for _, child := range root.Children {
		switch child.Name {
		case "p":
			sec.Elements = append(sec.Elements, loadParagraph(child))
		case "tbl":
			sec.Elements = append(sec.Elements, loadTable(child))
		case "pic", "picture":
			sec.Elements = append(sec.Elements, loadImage(child))
		case "line":
			sec.Elements = append(sec.Elements, loadLine(child))
		case "rect":
			sec.Elements = append(sec.Elements, loadRect(child))
		case "ellipse":
			sec.Elements = append(sec.Elements, loadEllipse(child))
		case "equation":
			sec.Elements = append(sec.Elements, loadEquation(child))
		case "secPr":
			sec.ColumnDef = loadColumnDef(child)
			sec.PageSetup = loadPageSettings(child)
		case "header":
			sec.Header = loadHeaderFooter(child)
		case "footer":
			sec.Footer = loadHeaderFooter(child)
		case "memogroup":
			sec.Memos = loadMemos(child)
		}
	}
	return sec, nil
}

func loadParagraph(n *node) *model.Paragraph {
	p := &model.Paragraph{
		ID:             n.attr("id"),
		ParaShapeIDRef: n.attr("paraPrIDRef"),
		ParaStyleIDRef: n.attr("styleIDRef"),
	}
	for _, rn := range n.allChildren("run") {
		p.Runs = append(p.Runs, loadRun(rn))
	}
	return p
}

func loadRun(n *node) *model.Run {
	r := &model.Run{CharShapeIDRef: n.attr("charPrIDRef")}
	if t := n.firstChild("t"); t != nil {
		r.Text = t.Text
	}
	if bm := n.firstChild("bookmark"); bm != nil {
		r.Field = &model.Field{Kind: model.FieldBookmark, Target: bm.attr("name")}
	} else if hl := n.firstChild("hyperlink"); hl != nil {
		r.Field = &model.Field{Kind: model.FieldHyperlink, Target: hl.attr("href")}
	}
	return r
}

func loadTable(n *node) *model.Table {
	t := &model.Table{ID: n.attr("id")}
	if rc, err := strconv.Atoi(n.attr("rowCnt")); err == nil {
		t.RowCount = rc
	}
	if cc, err := strconv.Atoi(n.attr("colCnt")); err == nil {
		t.ColCount = cc
	}
	for _, trNode := range n.allChildren("tr") {
		row := &model.Row{}
		for _, tcNode := range trNode.allChildren("tc") {
			row.Cells = append(row.Cells, loadCell(tcNode))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

func loadCell(n *node) *model.Cell {
	c := &model.Cell{}
	if addr := n.firstChild("cellAddr"); addr != nil {
		if v, err := strconv.Atoi(addr.attr("colAddr")); err == nil {
			c.ColAddr = v
		}
		if v, err := strconv.Atoi(addr.attr("rowAddr")); err == nil {
			c.RowAddr = v
		}
	}
	if span := n.firstChild("cellSpan"); span != nil {
		if v, err := strconv.Atoi(span.attr("colSpan")); err == nil {
			c.ColSpan = v
		}
		if v, err := strconv.Atoi(span.attr("rowSpan")); err == nil {
			c.RowSpan = v
		}
	}
	if c.ColSpan == 0 {
		c.ColSpan = 1
	}
	if c.RowSpan == 0 {
		c.RowSpan = 1
	}
	sub := n.firstChild("subList")
	if sub != nil {
		for _, pNode := range sub.allChildren("p") {
			c.Paragraphs = append(c.Paragraphs, loadParagraph(pNode))
		}
		if nestedTbl := sub.firstChild("tbl"); nestedTbl != nil {
			c.NestedTable = loadTable(nestedTbl)
		} else if ps := sub.allChildren("p"); len(ps) > 0 {
			for _, run := range ps[len(ps)-1].allChildren("run") {
				if nestedTbl := run.firstChild("tbl"); nestedTbl != nil {
					c.NestedTable = loadTable(nestedTbl)
				}
			}
		}
	}
	return c
}

func loadImage(n *node) *model.Image {
	return &model.Image{
		ID:           n.attr("id"),
		BinaryItemID: n.attr("binaryItemIDRef"),
	}
}

func loadLine(n *node) *model.Line {
	return &model.Line{
		X1: atoiOr(n.attr("x1"), 0), Y1: atoiOr(n.attr("y1"), 0),
		X2: atoiOr(n.attr("x2"), 0), Y2: atoiOr(n.attr("y2"), 0),
	}
}

func loadRect(n *node) *model.Rectangle {
	return &model.Rectangle{
		X: atoiOr(n.attr("x"), 0), Y: atoiOr(n.attr("y"), 0),
		Width: atoiOr(n.attr("width"), 0), Height: atoiOr(n.attr("height"), 0),
	}
}

func loadEllipse(n *node) *model.Ellipse {
	return &model.Ellipse{
		X: atoiOr(n.attr("x"), 0), Y: atoiOr(n.attr("y"), 0),
		Width: atoiOr(n.attr("width"), 0), Height: atoiOr(n.attr("height"), 0),
	}
}

func loadEquation(n *node) *model.Equation {
	return &model.Equation{ID: n.attr("id"), Script: n.Text}
}

func loadColumnDef(n *node) *model.ColumnDefinition {
	cd := n.firstChild("colPr")
	if cd == nil {
		return nil
	}
	return &model.ColumnDefinition{
		Count:      atoiOr(cd.attr("colCount"), 1),
		SameSize:   cd.attr("sameSz") == "1" || cd.attr("sameSz") == "true",
		GapHWPUnit: atoiOr(cd.attr("sameGap"), 0),
	}
}

func loadPageSettings(n *node) *model.PageSettings {
	pg := n.firstChild("pagePr")
	if pg == nil {
		return nil
	}
	margin := pg.firstChild("margin")
	ps := &model.PageSettings{
		WidthHWPUnit:  atoiOr(pg.attr("width"), 0),
		HeightHWPUnit: atoiOr(pg.attr("height"), 0),
	}
	if margin != nil {
		ps.MarginTop = atoiOr(margin.attr("top"), 0)
		ps.MarginBottom = atoiOr(margin.attr("bottom"), 0)
		ps.MarginLeft = atoiOr(margin.attr("left"), 0)
		ps.MarginRight = atoiOr(margin.attr("right"), 0)
	}
	return ps
}

// loadHeaderFooter parses a header/footer overlay's paragraph content,
// ignoring the subList wrapper HWPX wraps it in (spec's header/footer
// verbs are text-only, per the "styled overlays" scope).
func loadHeaderFooter(n *node) *model.HeaderFooter {
	hf := &model.HeaderFooter{}
	list := n.firstChild("subList")
	if list == nil {
		list = n
	}
	for _, pNode := range list.allChildren("p") {
		hf.Paragraphs = append(hf.Paragraphs, loadParagraph(pNode))
	}
	return hf
}

// loadMemos parses a memogroup's memo children into model.Memo records,
// concatenating each memo's nested paragraph text.
func loadMemos(n *node) []model.Memo {
	var out []model.Memo
	for _, m := range n.allChildren("memo") {
		out = append(out, model.Memo{
			ID:     m.attr("id"),
			Author: m.attr("author"),
			Text:   collectText(m),
		})
	}
	return out
}

// collectText recursively concatenates every descendant CharData run under
// n, in document order.
func collectText(n *node) string {
	var b strings.Builder
	b.WriteString(n.Text)
	for _, c := range n.Children {
		b.WriteString(collectText(c))
	}
	return b.String()
}

func atoiOr(s string, fallback int) int {
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

// LoadStyleTables parses the header part's style definitions into
// model.StyleTables. Only the fields the façade's styled-overlay and
// cell-update verbs reference are populated, per the "fidelity beyond what
// is explicitly mutated" non-goal.
func LoadStyleTables(headerXML []byte) (*model.StyleTables, error) {
	root, err := parseTree(strings.NewReader(string(headerXML)))
	if err != nil {
		return nil, err
	}
	tables := model.NewStyleTables()
	if root == nil {
		return tables, nil
	}
	refList := findDescendant(root, "refList")
	if refList == nil {
		return tables, nil
	}
	if charShapes := refList.firstChild("charShapes"); charShapes != nil {
		for i, cs := range charShapes.allChildren("charShape") {
			id := atoiOr(cs.attr("id"), i)
			tables.CharShapes[id] = &model.CharShape{ID: id}
		}
	}
	if paraShapes := refList.firstChild("paraShapes"); paraShapes != nil {
		for i, ps := range paraShapes.allChildren("paraShape") {
			id := atoiOr(ps.attr("id"), i)
			tables.ParaShapes[id] = &model.ParaShape{ID: id}
		}
	}
	if styles := refList.firstChild("styles"); styles != nil {
		for i, st := range styles.allChildren("style") {
			id := atoiOr(st.attr("id"), i)
			tables.NamedStyles[id] = &model.NamedStyle{
				ID:             id,
				Name:           st.attr("name"),
				ParaShapeIDRef: atoiOr(st.attr("paraPrIDRef"), 0),
				CharShapeIDRef: atoiOr(st.attr("charPrIDRef"), 0),
			}
		}
	}
	return tables, nil
}

func findDescendant(n *node, name string) *node {
	if n.Name == name {
		return n
	}
	for _, c := range n.Children {
		if found := findDescendant(c, name); found != nil {
			return found
		}
	}
	return nil
}
