package model

// OutlineEntry is one heading-like paragraph surfaced by get_outline,
// identified by the named style it carries (spec §4.4's structural verb
// catalog lists get-outline without further detail; named-style-driven
// heading detection is the straightforward reading given the data model
// already tracks ParaStyleIDRef).
type OutlineEntry struct {
	SectionIndex int
	ParagraphID  string
	StyleIDRef   string
	Text         string
}

// Outline walks every section's top-level paragraphs (headings do not
// appear inside table cells in practice) and returns one OutlineEntry per
// paragraph whose ParaStyleIDRef is in headingStyleIDs, in document order.
func Outline(sections []*Section, headingStyleIDs map[string]bool) []OutlineEntry {
	var out []OutlineEntry
	for _, sec := range sections {
		for _, p := range sec.Paragraphs() {
			if !headingStyleIDs[p.ParaStyleIDRef] {
				continue
			}
			out = append(out, OutlineEntry{
				SectionIndex: sec.Index,
				ParagraphID:  p.ID,
				StyleIDRef:   p.ParaStyleIDRef,
				Text:         p.Text(),
			})
		}
	}
	return out
}
