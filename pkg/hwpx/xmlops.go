package hwpx

import (
	"strconv"
	"strings"

	"github.com/hwpx-surgeon/hwpx-surgeon/internal/xmlscan"
)

// setAttr rewrites (or inserts) attr="value" on the opening tag that
// starts at xml[r.Start:], the same splice-before-'>' technique
// internal/mutators' cell.go uses for charPrIDRef overrides, generalized
// to an arbitrary attribute name.
func setAttr(xml string, r xmlscan.Range, attr, value string) string {
	element := r.Slice(xml)
	tagEnd := strings.IndexByte(element, '>')
	if tagEnd < 0 {
		return xml
	}
	selfClosing := tagEnd > 0 && element[tagEnd-1] == '/'
	insertAt := tagEnd
	if selfClosing {
		insertAt--
	}
	opening := element[:insertAt]
	rest := element[insertAt:]

	var rewrittenOpening string
	needle := attr + `="`
	if idx := strings.Index(opening, needle); idx >= 0 {
		valueStart := idx + len(needle)
		valueEnd := strings.IndexByte(opening[valueStart:], '"')
		if valueEnd >= 0 {
			rewrittenOpening = opening[:valueStart] + value + opening[valueStart+valueEnd:]
		}
	}
	if rewrittenOpening == "" {
		rewrittenOpening = opening + " " + attr + `="` + value + `"`
	}
	rewritten := rewrittenOpening + rest
	return xml[:r.Start] + rewritten + xml[r.Start+len(element):]
}

// insertAfterRange splices insertion immediately after r's closing bytes.
func insertAfterRange(xml string, r xmlscan.Range, insertion string) string {
	return xml[:r.End] + insertion + xml[r.End:]
}

// insertBeforeRange splices insertion immediately before r's opening bytes.
func insertBeforeRange(xml string, r xmlscan.Range, insertion string) string {
	return xml[:r.Start] + insertion + xml[r.Start:]
}

// removeRange deletes r's bytes entirely.
func removeRange(xml string, r xmlscan.Range) string {
	return xml[:r.Start] + xml[r.End:]
}

// replaceRange overwrites r's bytes with replacement.
func replaceRange(xml string, r xmlscan.Range, replacement string) string {
	return xml[:r.Start] + replacement + xml[r.End:]
}

func itoa(n int) string { return strconv.Itoa(n) }
