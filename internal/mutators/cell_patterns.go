package mutators

import "strings"

var runPrefixes = []string{"hp", "hs", "hc"}

type textNodeMatch struct {
	contentStart, contentEnd int
	runStart                 int
}

// firstNonEmptyTextNode finds the first <prefix:t>...</prefix:t> element in
// xml whose opening tag is not self-closing, wherever it appears (it need
// not be non-empty content-wise — "non-empty" here means "has a distinct
// open/close tag pair to rewrite between", as opposed to the self-closed
// form pattern 2 handles).
func firstNonEmptyTextNode(xml string) (textNodeMatch, bool) {
	best := -1
	var bestPrefix string
	for _, prefix := range runPrefixes {
		open := "<" + prefix + ":t"
		for from := 0; ; {
			idx := strings.Index(xml[from:], open)
			if idx < 0 {
				break
			}
			idx += from
			if end := idx + len(open); end < len(xml) && (xml[end] == '>' || xml[end] == ' ' || xml[end] == '/') {
				if best == -1 || idx < best {
					best = idx
					bestPrefix = prefix
				}
				break
			}
			from = idx + len(open)
		}
	}
	if best == -1 {
		return textNodeMatch{}, false
	}
	open := "<" + bestPrefix + ":t"
	tagEnd := strings.IndexByte(xml[best:], '>')
	if tagEnd < 0 {
		return textNodeMatch{}, false
	}
	tagEnd += best
	if xml[tagEnd-1] == '/' {
		return textNodeMatch{}, false // self-closed, handled by pattern 2
	}
	contentStart := tagEnd + 1
	closeTag := "</" + bestPrefix + ":t>"
	closeIdx := strings.Index(xml[contentStart:], closeTag)
	if closeIdx < 0 {
		return textNodeMatch{}, false
	}
	contentEnd := contentStart + closeIdx
	runStart := lastRunOpenBefore(xml, best, open)
	return textNodeMatch{contentStart: contentStart, contentEnd: contentEnd, runStart: runStart}, true
}

type rangeMatch struct {
	start, end int
	prefix     string
	runStart   int
}

// emptyOrSelfClosedTextElement finds a self-closing <prefix:t/> element.
func emptyOrSelfClosedTextElement(xml string) (rangeMatch, bool) {
	best := -1
	var bestPrefix string
	for _, prefix := range runPrefixes {
		open := "<" + prefix + ":t"
		search := 0
		for {
			idx := strings.Index(xml[search:], open)
			if idx < 0 {
				break
			}
			idx += search
			tagEnd := strings.IndexByte(xml[idx:], '>')
			if tagEnd < 0 {
				break
			}
			tagEnd += idx
			if xml[tagEnd-1] == '/' {
				if best == -1 || idx < best {
					best = idx
					bestPrefix = prefix
				}
				break
			}
			search = tagEnd + 1
		}
	}
	if best == -1 {
		return rangeMatch{}, false
	}
	tagEnd := strings.IndexByte(xml[best:], '>') + best
	return rangeMatch{start: best, end: tagEnd + 1, prefix: bestPrefix, runStart: lastRunOpenBefore(xml, best, "<"+bestPrefix+":t")}, true
}

// selfClosingRun finds a self-closing <prefix:run/> element.
func selfClosingRun(xml string) (rangeMatch, bool) {
	for _, prefix := range runPrefixes {
		open := "<" + prefix + ":run"
		search := 0
		for {
			idx := strings.Index(xml[search:], open)
			if idx < 0 {
				break
			}
			idx += search
			tagEnd := strings.IndexByte(xml[idx:], '>')
			if tagEnd < 0 {
				break
			}
			tagEnd += idx
			if xml[tagEnd-1] == '/' {
				return rangeMatch{start: idx, end: tagEnd + 1, prefix: prefix}, true
			}
			search = tagEnd + 1
		}
	}
	return rangeMatch{}, false
}

type insertMatch struct {
	insertAt int
	prefix   string
	runStart int
}

// runWithoutText finds an open (non-self-closing) <prefix:run>...</prefix:run>
// that contains no <prefix:t> child, and returns the offset just inside its
// opening tag where a text element should be inserted.
func runWithoutText(xml string) (insertMatch, bool) {
	for _, prefix := range runPrefixes {
		open := "<" + prefix + ":run"
		closeTag := "</" + prefix + ":run>"
		search := 0
		for {
			idx := strings.Index(xml[search:], open)
			if idx < 0 {
				break
			}
			idx += search
			tagEnd := strings.IndexByte(xml[idx:], '>')
			if tagEnd < 0 {
				break
			}
			tagEnd += idx
			if xml[tagEnd-1] == '/' {
				search = tagEnd + 1
				continue
			}
			bodyStart := tagEnd + 1
			closeIdx := strings.Index(xml[bodyStart:], closeTag)
			if closeIdx < 0 {
				search = tagEnd + 1
				continue
			}
			body := xml[bodyStart : bodyStart+closeIdx]
			if !strings.Contains(body, ":t>") && !strings.Contains(body, ":t ") {
				return insertMatch{insertAt: bodyStart, prefix: prefix, runStart: idx}, true
			}
			search = bodyStart + closeIdx + len(closeTag)
		}
	}
	return insertMatch{}, false
}

// paragraphWithoutRun finds the first open <prefix:p> or <prefix:subList>
// element with no <prefix:run> child, returning the offset just inside its
// opening tag.
func paragraphWithoutRun(xml string) (insertMatch, bool) {
	for _, local := range []string{"p", "subList"} {
		for _, prefix := range runPrefixes {
			open := "<" + prefix + ":" + local
			closeTag := "</" + prefix + ":" + local + ">"
			idx := strings.Index(xml, open)
			if idx < 0 {
				continue
			}
			// Ensure we matched the exact tag name, not a longer one sharing
			// the prefix (e.g. "p" inside "picture").
			afterTag := xml[idx+len(open):]
			if len(afterTag) == 0 || (afterTag[0] != ' ' && afterTag[0] != '>' && afterTag[0] != '/') {
				continue
			}
			tagEnd := strings.IndexByte(xml[idx:], '>')
			if tagEnd < 0 {
				continue
			}
			tagEnd += idx
			if xml[tagEnd-1] == '/' {
				continue
			}
			bodyStart := tagEnd + 1
			closeIdx := strings.Index(xml[bodyStart:], closeTag)
			if closeIdx < 0 {
				continue
			}
			body := xml[bodyStart : bodyStart+closeIdx]
			if !strings.Contains(body, ":run") {
				return insertMatch{insertAt: bodyStart, prefix: prefix}, true
			}
		}
	}
	return insertMatch{}, false
}

// lastRunOpenBefore returns the offset of the nearest "<prefix:run" opening
// tag at or before pos, falling back to pos itself if none is found (so
// callers always get a usable hint for setOrAddCharPrIDRef).
func lastRunOpenBefore(xml string, pos int, _ string) int {
	best := -1
	for _, prefix := range runPrefixes {
		open := "<" + prefix + ":run"
		idx := strings.LastIndex(xml[:min(pos+1, len(xml))], open)
		if idx > best {
			best = idx
		}
	}
	if best == -1 {
		return pos
	}
	return best
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
