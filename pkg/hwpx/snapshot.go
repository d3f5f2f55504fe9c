package hwpx

import "github.com/hwpx-surgeon/hwpx-surgeon/internal/model"

// elementSnapshot is a JSON-serializable tagged variant of model.Element,
// needed because Section.Elements holds an interface slice and
// goccy/go-json (like encoding/json) cannot unmarshal back into an
// interface without a concrete type to target — the same "dynamic
// dispatch becomes a tagged variant" move internal/mutationlog's Entry
// already applies to its five payload kinds.
type elementSnapshot struct {
	Kind      string
	Paragraph *model.Paragraph `json:",omitempty"`
	Table     *model.Table     `json:",omitempty"`
	Image     *model.Image     `json:",omitempty"`
	Line      *model.Line      `json:",omitempty"`
	Rectangle *model.Rectangle `json:",omitempty"`
	Ellipse   *model.Ellipse   `json:",omitempty"`
	Equation  *model.Equation  `json:",omitempty"`
}

type sectionSnapshot struct {
	Index     int
	Elements  []elementSnapshot
	Header    *model.HeaderFooter
	Footer    *model.HeaderFooter
	Memos     []model.Memo
	PageSetup *model.PageSettings
	ColumnDef *model.ColumnDefinition
}

func snapshotSections(sections []*model.Section) []sectionSnapshot {
	out := make([]sectionSnapshot, len(sections))
	for i, sec := range sections {
		snap := sectionSnapshot{
			Index: sec.Index, Header: sec.Header, Footer: sec.Footer,
			Memos: sec.Memos, PageSetup: sec.PageSetup, ColumnDef: sec.ColumnDef,
		}
		for _, e := range sec.Elements {
			snap.Elements = append(snap.Elements, snapshotElement(e))
		}
		out[i] = snap
	}
	return out
}

func snapshotElement(e model.Element) elementSnapshot {
	switch v := e.(type) {
	case *model.Paragraph:
		return elementSnapshot{Kind: "paragraph", Paragraph: v}
	case *model.Table:
		return elementSnapshot{Kind: "table", Table: v}
	case *model.Image:
		return elementSnapshot{Kind: "image", Image: v}
	case *model.Line:
		return elementSnapshot{Kind: "line", Line: v}
	case *model.Rectangle:
		return elementSnapshot{Kind: "rectangle", Rectangle: v}
	case *model.Ellipse:
		return elementSnapshot{Kind: "ellipse", Ellipse: v}
	case *model.Equation:
		return elementSnapshot{Kind: "equation", Equation: v}
	}
	return elementSnapshot{}
}

func restoreSections(snaps []sectionSnapshot) []*model.Section {
	out := make([]*model.Section, len(snaps))
	for i, snap := range snaps {
		sec := &model.Section{
			Index: snap.Index, Header: snap.Header, Footer: snap.Footer,
			Memos: snap.Memos, PageSetup: snap.PageSetup, ColumnDef: snap.ColumnDef,
		}
		for _, es := range snap.Elements {
			if el := restoreElement(es); el != nil {
				sec.Elements = append(sec.Elements, el)
			}
		}
		out[i] = sec
	}
	return out
}

func restoreElement(es elementSnapshot) model.Element {
	switch es.Kind {
	case "paragraph":
		return es.Paragraph
	case "table":
		return es.Table
	case "image":
		return es.Image
	case "line":
		return es.Line
	case "rectangle":
		return es.Rectangle
	case "ellipse":
		return es.Ellipse
	case "equation":
		return es.Equation
	}
	return nil
}
