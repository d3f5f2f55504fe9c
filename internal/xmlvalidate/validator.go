// Package xmlvalidate implements the two validation services HWPX parts
// need before and after surgical mutation: a cheap structural sanity check
// (well-formed enough to not be garbage) and a tag-balance check over a
// fixed vocabulary of structurally important tags. Both are prefix-agnostic
// across hp/hs/hc, following the same depth-counter discipline as
// internal/xmlscan rather than a real parser, so they can run on XML that
// the locator has already partially rewritten.
package xmlvalidate

import (
	"fmt"
	"strings"
)

// minPlausibleLength is the structure check's lower bound for "probably not
// empty/truncated".
const minPlausibleLength = 16

// Severity classifies a tag-balance finding.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// importantTags is the fixed vocabulary the tag-balance check counts, named
// by local tag (prefix-agnostic) and mapped to the wire-schema element they
// represent.
var importantTags = []string{"p", "run", "t", "tbl", "tr", "tc", "subList", "picture", "sec", "colPr", "paraPr"}

// Imbalance is a single tag whose open/close counts disagree.
type Imbalance struct {
	Tag        string
	Opens      int
	Closes     int
	Severity   Severity
	Suggestion string
}

// StructureReport is the result of the structure check.
type StructureReport struct {
	OK       bool
	Problems []string
}

// TagBalanceReport is the result of the tag-balance check.
type TagBalanceReport struct {
	Balanced    bool
	Imbalances  []Imbalance
}

// CheckStructure confirms xml begins with a declaration or element, is not
// truncated (no unterminated "<..." at the end), contains no "<...<"
// pattern (a broken opening — a '<' appearing again before the previous one
// closed), and meets a minimum plausible length.
func CheckStructure(xml string) StructureReport {
	var problems []string

	trimmed := strings.TrimSpace(xml)
	if len(trimmed) < minPlausibleLength {
		problems = append(problems, "content too short to be a valid XML part")
	}
	if trimmed == "" || (trimmed[0] != '<') {
		problems = append(problems, "content does not begin with an XML declaration or element")
	}

	if idx := lastUnterminatedOpen(trimmed); idx >= 0 {
		problems = append(problems, fmt.Sprintf("truncated: unterminated '<' at offset %d", idx))
	}

	if idx := brokenOpeningIndex(trimmed); idx >= 0 {
		problems = append(problems, fmt.Sprintf("broken opening tag ('<' before previous '<' closed) at offset %d", idx))
	}

	return StructureReport{OK: len(problems) == 0, Problems: problems}
}

// lastUnterminatedOpen returns the offset of a '<' that is never followed by
// a '>', or -1 if none exists.
func lastUnterminatedOpen(xml string) int {
	lastOpen := strings.LastIndexByte(xml, '<')
	if lastOpen < 0 {
		return -1
	}
	if strings.IndexByte(xml[lastOpen:], '>') < 0 {
		return lastOpen
	}
	return -1
}

// brokenOpeningIndex scans for a "<...<" pattern: a '<' encountered before
// the previously opened tag's '>' closed it.
func brokenOpeningIndex(xml string) int {
	inTag := false
	tagStart := -1
	for i := 0; i < len(xml); i++ {
		switch xml[i] {
		case '<':
			if inTag {
				return tagStart
			}
			inTag = true
			tagStart = i
		case '>':
			inTag = false
		}
	}
	return -1
}

// CheckTagBalance counts opens (including self-closed) and closes for each
// tag in importantTags across all three hp/hs/hc prefixes and flags
// imbalances with a suggested repair.
func CheckTagBalance(xml string) TagBalanceReport {
	var imbalances []Imbalance
	for _, tag := range importantTags {
		opens, closes := countTag(xml, tag)
		if opens == closes {
			continue
		}
		sev := SeverityError
		var suggestion string
		if opens > closes {
			missing := opens - closes
			suggestion = fmt.Sprintf("add %d closer(s) for <%s>", missing, tag)
		} else {
			orphan := closes - opens
			suggestion = fmt.Sprintf("remove %d orphan closer(s) for <%s>", orphan, tag)
			sev = SeverityWarning
		}
		imbalances = append(imbalances, Imbalance{
			Tag: tag, Opens: opens, Closes: closes,
			Severity: sev, Suggestion: suggestion,
		})
	}
	return TagBalanceReport{Balanced: len(imbalances) == 0, Imbalances: imbalances}
}

// countTag counts opening (non-self-closing), self-closing, and closing
// occurrences of localName across hp/hs/hc prefixes. A self-closed element
// counts once toward both opens and closes so that it never contributes an
// imbalance.
func countTag(xml, localName string) (opens, closes int) {
	for _, prefix := range []string{"hp", "hs", "hc"} {
		open := "<" + prefix + ":" + localName
		closeTag := "</" + prefix + ":" + localName + ">"
		pos := 0
		for {
			idx := strings.Index(xml[pos:], open)
			if idx < 0 {
				break
			}
			start := pos + idx
			after := start + len(open)
			if after >= len(xml) || !(xml[after] == ' ' || xml[after] == '>' || xml[after] == '/') {
				pos = start + len(open)
				continue
			}
			tagEnd := strings.IndexByte(xml[start:], '>')
			if tagEnd < 0 {
				pos = start + len(open)
				continue
			}
			tagEnd += start
			if xml[tagEnd-1] == '/' {
				opens++
				closes++
			} else {
				opens++
			}
			pos = tagEnd + 1
		}
		closes += strings.Count(xml, closeTag)
	}
	return opens, closes
}

// OrphanTblCloser is a byte offset where a stray </*:tbl> closing tag
// appears with no corresponding open (depth went negative).
type OrphanTblCloser struct {
	Offset int
	Token  string
}

// FindOrphanTblClosers tokenizes all tbl opens/closes in document order
// across hp/hs/hc, walks a depth counter, and records every offset where
// depth would go negative (an orphan closer, the target of repair_xml) and
// the residual depth at end of scan (missing closers, diagnosed but not
// auto-synthesized).
func FindOrphanTblClosers(xml string) (orphans []OrphanTblCloser, missingClosers int) {
	type tok struct {
		offset int
		open   bool
		text   string
	}
	var toks []tok
	for _, prefix := range []string{"hp", "hs", "hc"} {
		open := "<" + prefix + ":tbl"
		closeTag := "</" + prefix + ":tbl>"
		pos := 0
		for {
			idx := strings.Index(xml[pos:], open)
			if idx < 0 {
				break
			}
			start := pos + idx
			after := start + len(open)
			if after >= len(xml) || !(xml[after] == ' ' || xml[after] == '>' || xml[after] == '/') {
				pos = start + len(open)
				continue
			}
			tagEnd := strings.IndexByte(xml[start:], '>')
			if tagEnd < 0 {
				pos = start + len(open)
				continue
			}
			tagEnd += start
			if xml[tagEnd-1] != '/' {
				toks = append(toks, tok{offset: start, open: true})
			}
			pos = tagEnd + 1
		}
		pos = 0
		for {
			idx := strings.Index(xml[pos:], closeTag)
			if idx < 0 {
				break
			}
			abs := pos + idx
			toks = append(toks, tok{offset: abs, open: false, text: closeTag})
			pos = abs + len(closeTag)
		}
	}

	// Sort tokens by document order.
	for i := 1; i < len(toks); i++ {
		for j := i; j > 0 && toks[j].offset < toks[j-1].offset; j-- {
			toks[j], toks[j-1] = toks[j-1], toks[j]
		}
	}

	depth := 0
	for _, t := range toks {
		if t.open {
			depth++
			continue
		}
		if depth == 0 {
			orphans = append(orphans, OrphanTblCloser{Offset: t.offset, Token: t.text})
			continue
		}
		depth--
	}
	return orphans, depth
}
