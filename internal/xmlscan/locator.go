// Package xmlscan locates element byte ranges inside HWPX XML parts without
// parsing them. It is a linear scanner with a depth counter, not a DOM: the
// caller gets back half-open byte offsets into the original string, so a
// mutator can slice out exactly the bytes it needs to rewrite and leave
// everything else untouched.
//
// HWPX elements of interest appear under one of three namespace prefixes
// (hp, hs, hc) depending on which part they live in; every lookup here tries
// all three and is otherwise prefix-agnostic.
package xmlscan

import "strings"

// knownPrefixes are the namespace prefixes HWPX parts bind hp/hs/hc to.
// The locator never inspects the xmlns declarations themselves — it just
// tries each prefix when looking for a tag, per spec's "accept any of
// these prefixes" requirement.
var knownPrefixes = []string{"hp", "hs", "hc"}

// Range is a half-open byte range [Start, End) into the scanned text.
type Range struct {
	Start int
	End   int
}

// Empty reports whether the range carries no bytes, which FindX functions
// use as their "not found" sentinel.
func (r Range) Empty() bool { return r.Start == 0 && r.End == 0 }

// Slice returns the range's bytes from xml.
func (r Range) Slice(xml string) string {
	if r.Start < 0 || r.End > len(xml) || r.Start > r.End {
		return ""
	}
	return xml[r.Start:r.End]
}

// FindTableByID returns the byte range of the <prefix:tbl ... id="id" ...>
// ...</prefix:tbl> element matching id, trying each known namespace prefix.
// The depth counter stops only at the depth-0 close of the table whose
// opening tag carried the matching id; a table nested inside another
// table's cell is found by searching each top-level table's body in turn.
func FindTableByID(xml, id string) (Range, bool) {
	for _, prefix := range knownPrefixes {
		if r, ok := findElementWithAttr(xml, prefix, "tbl", "id", id); ok {
			return r, true
		}
	}
	// Table ids are unique across nesting levels, so a table that is not
	// top-level is looked up inside each top-level table's body.
	for _, outer := range FindAll(xml, "tbl") {
		bodyStart := outer.Start + strings.IndexByte(outer.Slice(xml), '>') + 1
		if r, ok := FindTableByID(xml[bodyStart:outer.End], id); ok {
			return Range{Start: bodyStart + r.Start, End: bodyStart + r.End}, true
		}
	}
	return Range{}, false
}

// FindTableByIndex returns the byte range of the n-th (0-based) top-level
// tbl element in document order, regardless of prefix. Top-level means not
// nested inside another tbl of the same name — nested tables are skipped
// over as part of scanning past their parent, exactly like FindAll.
func FindTableByIndex(xml string, n int) (Range, bool) {
	ranges := FindAll(xml, "tbl")
	if n < 0 || n >= len(ranges) {
		return Range{}, false
	}
	return ranges[n], true
}

// FindElementByAttr returns the byte range of the first prefix:localName
// element (trying each known prefix) whose opening tag carries
// attr="value", depth-tracking nested same-named elements while it skips
// over a non-matching one. Unlike FindTableByID it does not descend into
// those nested elements, so only a top-level match is returned. Used for
// an arbitrary element/attribute pair (e.g. a paragraph's id attribute).
func FindElementByAttr(xml, localName, attr, value string) (Range, bool) {
	for _, prefix := range knownPrefixes {
		if r, ok := findElementWithAttr(xml, prefix, localName, attr, value); ok {
			return r, true
		}
	}
	return Range{}, false
}

// FindElement returns the byte range of the first top-level element with the
// given local name, prefix-agnostic.
func FindElement(xml, localName string) (Range, bool) {
	ranges := FindAll(xml, localName)
	if len(ranges) == 0 {
		return Range{}, false
	}
	return ranges[0], true
}

// FindAll returns, in document order, the ranges of all top-level elements
// with the given local name (prefix-agnostic). "Top-level" here means not
// nested within another element of the same local name: the scan advances
// past each matched element's full closing tag before looking for the next
// one, so nested occurrences of the same name are skipped naturally rather
// than reported as siblings.
func FindAll(xml, localName string) []Range {
	var out []Range
	pos := 0
	for pos < len(xml) {
		start, prefix, ok := nextOpenTag(xml, pos, localName)
		if !ok {
			break
		}
		end, ok := scanToMatchingClose(xml, start, prefix, localName)
		if !ok {
			// Unbalanced: depth never returned to zero. Treat as "not
			// found" for this occurrence and stop scanning further —
			// the caller (a façade verb) turns this into a skipped
			// operation with a warning, not a hard failure.
			break
		}
		out = append(out, Range{Start: start, End: end})
		pos = end
	}
	return out
}

// nextOpenTag finds the next "<prefix:localName" or "<prefix:localName "
// occurrence at or after from, across all known prefixes, and returns the
// byte offset of the '<' and the prefix that matched.
func nextOpenTag(xml string, from int, localName string) (int, string, bool) {
	best := -1
	bestPrefix := ""
	for _, prefix := range knownPrefixes {
		openExact := "<" + prefix + ":" + localName + ">"
		openAttr := "<" + prefix + ":" + localName + " "
		openSelf := "<" + prefix + ":" + localName + "/"
		for _, tok := range []string{openExact, openAttr, openSelf} {
			idx := strings.Index(xml[from:], tok)
			if idx < 0 {
				continue
			}
			abs := from + idx
			if best == -1 || abs < best {
				best = abs
				bestPrefix = prefix
			}
		}
	}
	if best == -1 {
		return 0, "", false
	}
	return best, bestPrefix, true
}

// scanToMatchingClose walks forward from the opening tag at start, tracking
// nesting depth of prefix:localName elements, and returns the offset just
// past the matching close tag (i.e. the element's End).
func scanToMatchingClose(xml string, start int, prefix, localName string) (int, bool) {
	open := "<" + prefix + ":" + localName
	closeTag := "</" + prefix + ":" + localName + ">"

	// Is the opening tag itself self-closing?
	tagEnd := strings.IndexByte(xml[start:], '>')
	if tagEnd < 0 {
		return 0, false
	}
	tagEnd += start
	if xml[tagEnd-1] == '/' {
		// Self-closing: depth never goes above 0.
		return tagEnd + 1, true
	}

	depth := 1
	pos := tagEnd + 1
	for depth > 0 {
		nextOpenIdx := strings.Index(xml[pos:], open)
		nextCloseIdx := strings.Index(xml[pos:], closeTag)
		if nextCloseIdx < 0 {
			return 0, false
		}
		if nextOpenIdx >= 0 && nextOpenIdx < nextCloseIdx {
			// Confirm it's a real open (followed by '>' or ' ' or '/'),
			// not a different element name sharing a prefix.
			cand := pos + nextOpenIdx
			after := cand + len(open)
			if after < len(xml) && (xml[after] == '>' || xml[after] == ' ' || xml[after] == '/') {
				// Determine whether this nested open is itself
				// self-closing; if so it doesn't add depth.
				nestedTagEnd := strings.IndexByte(xml[cand:], '>')
				if nestedTagEnd < 0 {
					return 0, false
				}
				nestedTagEnd += cand
				if xml[nestedTagEnd-1] == '/' {
					pos = nestedTagEnd + 1
					continue
				}
				depth++
				pos = nestedTagEnd + 1
				continue
			}
			// False positive (prefix collision with a longer name);
			// skip past it and keep looking.
			pos = cand + len(open)
			continue
		}
		// Next relevant token is the close tag.
		pos = pos + nextCloseIdx + len(closeTag)
		depth--
	}
	return pos, true
}

// findElementWithAttr returns the range of the first prefix:localName
// element whose opening tag carries attr="value" (or attr='value'),
// depth-tracking nested elements of the same name so an attribute match
// inside a nested element is not mistaken for a top-level one.
func findElementWithAttr(xml, prefix, localName, attr, value string) (Range, bool) {
	open := "<" + prefix + ":" + localName
	pos := 0
	for {
		idx := strings.Index(xml[pos:], open)
		if idx < 0 {
			return Range{}, false
		}
		start := pos + idx
		after := start + len(open)
		if after >= len(xml) || !(xml[after] == ' ' || xml[after] == '>' || xml[after] == '/') {
			pos = start + len(open)
			continue
		}
		tagEnd := strings.IndexByte(xml[start:], '>')
		if tagEnd < 0 {
			return Range{}, false
		}
		tagEnd += start
		openingTag := xml[start : tagEnd+1]
		if hasAttr(openingTag, attr, value) {
			end, ok := scanToMatchingClose(xml, start, prefix, localName)
			if !ok {
				return Range{}, false
			}
			return Range{Start: start, End: end}, true
		}
		end, ok := scanToMatchingClose(xml, start, prefix, localName)
		if !ok {
			return Range{}, false
		}
		pos = end
	}
}

// hasAttr reports whether openingTag contains attr="value" or attr='value'
// as a literal substring match — the locator never does general attribute
// parsing, per its documented contract.
func hasAttr(openingTag, attr, value string) bool {
	return strings.Contains(openingTag, attr+`="`+value+`"`) ||
		strings.Contains(openingTag, attr+`='`+value+`'`)
}
