// Package mutators implements the persistence of each mutation-log entry
// kind: locating the XML region a log entry targets (via
// internal/xmlscan), rewriting exactly that region, and leaving everything
// else byte-identical. The cell-text-update cascade and the splice-based
// subtree insertion are modeled directly on
// other_examples/134580ef_falcomza-docx-chart-updater's table_update.go
// and trackchanges.go: locate the Nth block, slice it out, rewrite it,
// reassemble by string concatenation around the original offsets.
package mutators

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hwpx-surgeon/hwpx-surgeon/internal/hwpxerr"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/mutationlog"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/xmlscan"
)

// defaultLineSeg is the single default line-segment array HWPX expects a
// cell to carry after its text changes, so the editor recomputes layout
// against the new content rather than trusting stale line breaks (spec
// §4.5).
const defaultLineSeg = `<hp:linesegarray><hp:lineseg textpos="0" vertpos="0" vertsize="0" textheight="0" baseline="0" spacing="0" horzpos="0" horzsize="0" flags="0"/></hp:linesegarray>`

// EscapeText XML-escapes the five reserved characters, in the fixed order
// spec §4.5 lists them: &, <, >, ", '.
func EscapeText(s string) string {
	r := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&apos;",
	)
	return r.Replace(s)
}

// ApplyCellUpdate rewrites a single cell's text (and, optionally, its first
// run's charPrIDRef) inside tableXML, which must be the full byte range of
// one <hp:tbl>...</hp:tbl> element (as returned by xmlscan.FindTableByID).
// It returns the rewritten table XML.
func ApplyCellUpdate(tableXML string, u mutationlog.CellUpdate) (string, error) {
	rowRange, err := nthTopLevel(tableXML, "tr", u.Row)
	if err != nil {
		return "", err
	}
	rowXML := rowRange.Slice(tableXML)

	cellRange, err := nthTopLevel(rowXML, "tc", u.Col)
	if err != nil {
		return "", err
	}
	cellXML := cellRange.Slice(rowXML)

	newCellXML, err := rewriteCellText(cellXML, u.NewText, u.CharShapeIDRef)
	if err != nil {
		return "", err
	}

	newRowXML := rowXML[:cellRange.Start] + newCellXML + rowXML[cellRange.End:]
	newTableXML := tableXML[:rowRange.Start] + newRowXML + tableXML[rowRange.End:]
	return newTableXML, nil
}

// nthTopLevel finds the n-th (0-based) top-level element of localName
// within xml and rejects a non-positive range or one shorter than 8 bytes
// with a StructuralAnomalyError, which aborts this entry rather than the
// whole save. The range's size is not compared against the surrounding XML,
// so a large loss of size is not detected here.
func nthTopLevel(xml, localName string, n int) (xmlscan.Range, error) {
	ranges := xmlscan.FindAll(xml, localName)
	if n < 0 || n >= len(ranges) {
		return xmlscan.Range{}, fmt.Errorf("%s index %d out of range (found %d)", localName, n, len(ranges))
	}
	r := ranges[n]
	if r.End <= r.Start {
		return xmlscan.Range{}, &hwpxerr.StructuralAnomalyError{Reason: fmt.Sprintf("%s %d has a non-positive byte range", localName, n)}
	}
	if r.End-r.Start < len(xml)/(2*max(1, len(ranges))) {
		// A found range less than half the naive even split is plausible
		// for sparse tables; only truly degenerate (near-zero) ranges are
		// flagged, to avoid false positives on legitimately small cells.
		if r.End-r.Start < 8 {
			return xmlscan.Range{}, &hwpxerr.StructuralAnomalyError{Reason: fmt.Sprintf("%s %d range looks truncated", localName, n)}
		}
	}
	return r, nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// rewriteCellText implements the five-pattern cascade of spec §4.5,
// trying each pattern in order and using the first match.
func rewriteCellText(cellXML, newText string, charShapeIDRef *int) (string, error) {
	escaped := EscapeText(newText)

	// Pattern 1: one or more <prefix:t>...</prefix:t> text nodes already
	// present — replace only the first one's content, leaving later text
	// nodes (e.g. belonging to an embedded nested table) untouched.
	if r, ok := firstNonEmptyTextNode(cellXML); ok {
		out := cellXML[:r.contentStart] + escaped + cellXML[r.contentEnd:]
		return finishCellRewrite(out, charShapeIDRef, r.runStart)
	}

	// Pattern 2: self-closing or empty text element — expand it in place.
	if r, ok := emptyOrSelfClosedTextElement(cellXML); ok {
		replacement := openTagOf(r.prefix, "t") + escaped + "</" + r.prefix + ":t>"
		out := cellXML[:r.start] + replacement + cellXML[r.end:]
		return finishCellRewrite(out, charShapeIDRef, r.runStart)
	}

	// Pattern 3: self-closing run — expand to contain a text element.
	if r, ok := selfClosingRun(cellXML); ok {
		replacement := openTagOf(r.prefix, "run") + "<" + r.prefix + ":t>" + escaped + "</" + r.prefix + ":t></" + r.prefix + ":run>"
		out := cellXML[:r.start] + replacement + cellXML[r.end:]
		return finishCellRewrite(out, charShapeIDRef, r.start)
	}

	// Pattern 4: run present but with no text child — inject one.
	if r, ok := runWithoutText(cellXML); ok {
		insertion := "<" + r.prefix + ":t>" + escaped + "</" + r.prefix + ":t>"
		out := cellXML[:r.insertAt] + insertion + cellXML[r.insertAt:]
		return finishCellRewrite(out, charShapeIDRef, r.runStart)
	}

	// Pattern 5: sub-list or bare paragraph with no run at all — inject a
	// run with a text element.
	if r, ok := paragraphWithoutRun(cellXML); ok {
		run := openTagOf(r.prefix, "run") + "<" + r.prefix + ":t>" + escaped + "</" + r.prefix + ":t></" + r.prefix + ":run>"
		out := cellXML[:r.insertAt] + run + cellXML[r.insertAt:]
		return finishCellRewrite(out, charShapeIDRef, r.insertAt)
	}

	return "", fmt.Errorf("cell has no paragraph/subList to place text into")
}

// finishCellRewrite applies an optional charPrIDRef override to the first
// run at runStart (best-effort — if no run attribute slot is found there,
// the override is skipped rather than failing the whole update) and resets
// the cell's line-segment array.
func finishCellRewrite(cellXML string, charShapeIDRef *int, runHint int) (string, error) {
	out := cellXML
	if charShapeIDRef != nil {
		out = setOrAddCharPrIDRef(out, runHint, *charShapeIDRef)
	}
	out = resetLineSegArray(out)
	return out, nil
}

// setOrAddCharPrIDRef rewrites (or adds) the charPrIDRef attribute of the
// run opening tag at or after hint.
func setOrAddCharPrIDRef(xml string, hint int, id int) string {
	for _, prefix := range []string{"hp", "hs", "hc"} {
		open := "<" + prefix + ":run"
		idx := strings.Index(xml[clampIdx(hint, len(xml)):], open)
		if idx < 0 {
			continue
		}
		start := clampIdx(hint, len(xml)) + idx
		tagEnd := strings.IndexByte(xml[start:], '>')
		if tagEnd < 0 {
			continue
		}
		tagEnd += start
		openingTag := xml[start : tagEnd+1]
		newTag := setAttr(openingTag, "charPrIDRef", strconv.Itoa(id))
		return xml[:start] + newTag + xml[tagEnd+1:]
	}
	return xml
}

func clampIdx(i, max int) int {
	if i < 0 {
		return 0
	}
	if i > max {
		return max
	}
	return i
}

// setAttr rewrites attr's value in openingTag if present, or inserts it
// just before the closing '>'/'/>' if absent.
func setAttr(openingTag, attr, value string) string {
	withEq := attr + `="`
	if idx := strings.Index(openingTag, withEq); idx >= 0 {
		valStart := idx + len(withEq)
		valEnd := strings.IndexByte(openingTag[valStart:], '"')
		if valEnd >= 0 {
			valEnd += valStart
			return openingTag[:valStart] + value + openingTag[valEnd:]
		}
	}
	insertAt := len(openingTag) - 1
	selfClose := strings.HasSuffix(openingTag, "/>")
	if selfClose {
		insertAt = len(openingTag) - 2
	}
	return openingTag[:insertAt] + " " + attr + `="` + value + `"` + openingTag[insertAt:]
}

// resetLineSegArray replaces the first existing <prefix:linesegarray>...
// </prefix:linesegarray> (or self-closed form) with a single default line
// segment, so the editor recomputes layout. When xml has no line-segment
// array it is returned unchanged; no array is added.
func resetLineSegArray(xml string) string {
	for _, prefix := range []string{"hp", "hs", "hc"} {
		open := "<" + prefix + ":linesegarray"
		closeTag := "</" + prefix + ":linesegarray>"
		start := strings.Index(xml, open)
		if start < 0 {
			continue
		}
		tagEnd := strings.IndexByte(xml[start:], '>')
		if tagEnd < 0 {
			continue
		}
		tagEnd += start
		if xml[tagEnd-1] == '/' {
			return xml[:start] + defaultLineSeg + xml[tagEnd+1:]
		}
		closeIdx := strings.Index(xml[start:], closeTag)
		if closeIdx < 0 {
			continue
		}
		end := start + closeIdx + len(closeTag)
		return xml[:start] + defaultLineSeg + xml[end:]
	}
	// No existing array: the XML is left as it is.
	return xml
}

func openTagOf(prefix, name string) string { return "<" + prefix + ":" + name + ">" }
