package hwpx

import (
	"regexp"
	"strings"

	"github.com/hwpx-surgeon/hwpx-surgeon/internal/mutationlog"
)

// Replace queues a literal or regex substitution applied across every
// section at save time by internal/mutators.ApplyTextReplacement.
// includeCells/excludeCells mirror spec §4.4's table-cell scoping flags;
// the underlying mutator scans every text node regardless of table
// nesting, so excludeCells is honored at the façade layer by falling back
// to a per-section, cell-aware replacement instead of the logged global
// entry.
func (d *Document) Replace(pattern, replacement string, regex, caseSensitive, includeCells, excludeCells bool) error {
	d.snapshotForUndo()
	if excludeCells {
		for i := range d.sections {
			if err := d.replaceOutsideCells(i, pattern, replacement, regex, caseSensitive); err != nil {
				return err
			}
		}
		d.markDirty()
		return nil
	}
	d.log.AppendTextReplacement(mutationlog.TextReplacement{
		Section: -1, Pattern: pattern, Replacement: replacement,
		Regex: regex, CaseSensitive: caseSensitive,
		IncludeCells: includeCells, ExcludeCells: excludeCells,
	})
	d.markDirty()
	return nil
}

// ReplaceInSection is Replace scoped to a single section.
func (d *Document) ReplaceInSection(sectionIndex int, pattern, replacement string, regex, caseSensitive bool) error {
	if _, err := d.Section(sectionIndex); err != nil {
		return err
	}
	d.snapshotForUndo()
	d.log.AppendTextReplacement(mutationlog.TextReplacement{
		Section: sectionIndex, Pattern: pattern, Replacement: replacement,
		Regex: regex, CaseSensitive: caseSensitive,
	})
	d.markDirty()
	return nil
}

// ReplaceInCell applies pattern/replacement to a single cell's text,
// expressed to the save pipeline as a CellUpdate rather than a
// TextReplacement, since it targets one (table, row, col) coordinate
// rather than a scan over raw text nodes.
func (d *Document) ReplaceInCell(sectionIndex int, tableID string, row, col int, pattern, replacement string, regex, caseSensitive bool) error {
	cell, err := d.GetCell(sectionIndex, tableID, row, col)
	if err != nil {
		return err
	}
	matcher, err := newCellMatcher(pattern, replacement, regex, caseSensitive)
	if err != nil {
		return err
	}
	newText := matcher(cell.Text())
	return d.UpdateCell(sectionIndex, tableID, row, col, newText, nil)
}

// replaceOutsideCells applies pattern/replacement only to a section's
// top-level paragraphs, leaving every table's cell text untouched — the
// excludeCells disposition.
func (d *Document) replaceOutsideCells(sectionIndex int, pattern, replacement string, regex, caseSensitive bool) error {
	sec, err := d.Section(sectionIndex)
	if err != nil {
		return err
	}
	matcher, err := newCellMatcher(pattern, replacement, regex, caseSensitive)
	if err != nil {
		return err
	}
	for _, p := range sec.Paragraphs() {
		for _, run := range p.Runs {
			newText := matcher(run.Text)
			if newText != run.Text {
				d.log.AppendDirectTextUpdate(mutationlog.DirectTextUpdate{
					Section: sectionIndex, ParagraphID: p.ID, OldText: run.Text, NewText: newText,
				})
				run.Text = newText
			}
		}
	}
	return nil
}

// newCellMatcher returns a function applying the literal or regex
// substitution to an unescaped plain-text string, the same semantics
// internal/mutators.ApplyTextReplacement uses for raw text nodes.
func newCellMatcher(pattern, replacement string, regex, caseSensitive bool) (func(string) string, error) {
	if regex {
		flags := ""
		if !caseSensitive {
			flags = "(?i)"
		}
		re, err := regexp.Compile(flags + pattern)
		if err != nil {
			return nil, err
		}
		return func(s string) string { return re.ReplaceAllString(s, replacement) }, nil
	}
	return func(s string) string {
		if caseSensitive {
			return strings.ReplaceAll(s, pattern, replacement)
		}
		return replaceCaseInsensitive(s, pattern, replacement)
	}, nil
}

// replaceCaseInsensitive performs a literal substring replace ignoring
// case while preserving the surrounding text verbatim.
func replaceCaseInsensitive(s, old, new string) string {
	if old == "" {
		return s
	}
	lowerS := strings.ToLower(s)
	lowerOld := strings.ToLower(old)
	var b strings.Builder
	pos := 0
	for {
		idx := strings.Index(lowerS[pos:], lowerOld)
		if idx < 0 {
			b.WriteString(s[pos:])
			break
		}
		idx += pos
		b.WriteString(s[pos:idx])
		b.WriteString(new)
		pos = idx + len(old)
	}
	return b.String()
}
