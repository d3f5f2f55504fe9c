package mutators

import (
	"regexp"
	"strings"

	"github.com/hwpx-surgeon/hwpx-surgeon/internal/hwpxerr"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/mutationlog"
)

// ApplyDirectTextUpdate rewrites the first <prefix:t> text node's content
// inside paragraphXML (the full range of one paragraph element) from
// OldText to NewText. OldText is matched as a sanity check — a mismatch is
// reported as an error rather than silently overwriting unrelated text, so
// the caller can surface a clear skip reason.
func ApplyDirectTextUpdate(paragraphXML string, u mutationlog.DirectTextUpdate) (string, error) {
	r, ok := firstNonEmptyTextNode(paragraphXML)
	if !ok {
		if r2, ok2 := emptyOrSelfClosedTextElement(paragraphXML); ok2 {
			if u.OldText != "" {
				return "", &hwpxerr.StructuralAnomalyError{Reason: "paragraph text node is empty but OldText was non-empty"}
			}
			replacement := openTagOf(r2.prefix, "t") + EscapeText(u.NewText) + "</" + r2.prefix + ":t>"
			return paragraphXML[:r2.start] + replacement + paragraphXML[r2.end:], nil
		}
		return "", &hwpxerr.StructuralAnomalyError{Reason: "paragraph has no text node to update"}
	}
	current := paragraphXML[r.contentStart:r.contentEnd]
	if current != EscapeText(u.OldText) && current != u.OldText {
		return "", &hwpxerr.StructuralAnomalyError{Reason: "existing text does not match OldText; refusing to overwrite"}
	}
	return paragraphXML[:r.contentStart] + EscapeText(u.NewText) + paragraphXML[r.contentEnd:], nil
}

// ApplyTextReplacement runs a literal or regex substitution over every
// top-level <prefix:t> text node's content within scopeXML (a section, or
// a single cell when IncludeCells/ExcludeCells scoping has already been
// resolved by the caller), returning the rewritten XML and the number of
// text nodes changed.
func ApplyTextReplacement(scopeXML string, r mutationlog.TextReplacement) (string, int, error) {
	matcher, err := newTextMatcher(r)
	if err != nil {
		return "", 0, err
	}

	var out strings.Builder
	pos := 0
	count := 0
	for {
		node, ok := nextTextNodeFrom(scopeXML, pos)
		if !ok {
			out.WriteString(scopeXML[pos:])
			break
		}
		out.WriteString(scopeXML[pos:node.contentStart])
		content := scopeXML[node.contentStart:node.contentEnd]
		newContent, changed := matcher(content)
		out.WriteString(newContent)
		if changed {
			count++
		}
		pos = node.contentEnd
	}
	return out.String(), count, nil
}

// newTextMatcher builds a function applying r's substitution to one text
// node's raw (already-escaped) content, operating on the unescaped form so
// patterns written by a caller match human-readable text rather than
// escaped entities.
func newTextMatcher(r mutationlog.TextReplacement) (func(string) (string, bool), error) {
	if r.Regex {
		flags := ""
		if !r.CaseSensitive {
			flags = "(?i)"
		}
		re, err := regexp.Compile(flags + r.Pattern)
		if err != nil {
			return nil, err
		}
		return func(escaped string) (string, bool) {
			plain := unescapeXML(escaped)
			if !re.MatchString(plain) {
				return escaped, false
			}
			replaced := re.ReplaceAllString(plain, r.Replacement)
			return EscapeText(replaced), true
		}, nil
	}

	pattern := r.Pattern
	return func(escaped string) (string, bool) {
		plain := unescapeXML(escaped)
		hay := plain
		needle := pattern
		if !r.CaseSensitive {
			hay = strings.ToLower(hay)
			needle = strings.ToLower(needle)
		}
		if !strings.Contains(hay, needle) {
			return escaped, false
		}
		replaced := replaceCaseInsensitiveAware(plain, pattern, r.Replacement, r.CaseSensitive)
		return EscapeText(replaced), true
	}, nil
}

// replaceCaseInsensitiveAware performs a literal substring replace,
// optionally ignoring case while preserving the surrounding text verbatim.
func replaceCaseInsensitiveAware(s, old, new string, caseSensitive bool) string {
	if caseSensitive {
		return strings.ReplaceAll(s, old, new)
	}
	lowerS := strings.ToLower(s)
	lowerOld := strings.ToLower(old)
	if lowerOld == "" {
		return s
	}
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

func unescapeXML(s string) string {
	r := strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
		"&amp;", "&",
	)
	return r.Replace(s)
}

type textNodePos struct{ contentStart, contentEnd int }

// nextTextNodeFrom finds the next open (non-self-closing) <prefix:t>
// element at or after from and returns its content range.
func nextTextNodeFrom(xml string, from int) (textNodePos, bool) {
	best := -1
	var bestPrefix string
	for _, prefix := range runPrefixes {
		idx := strings.Index(xml[from:], "<"+prefix+":t")
		if idx < 0 {
			continue
		}
		abs := from + idx
		if best == -1 || abs < best {
			best = abs
			bestPrefix = prefix
		}
	}
	if best == -1 {
		return textNodePos{}, false
	}
	if end := best + len("<"+bestPrefix+":t"); end >= len(xml) || (xml[end] != '>' && xml[end] != ' ' && xml[end] != '/') {
		return nextTextNodeFrom(xml, best+1)
	}
	tagEnd := strings.IndexByte(xml[best:], '>')
	if tagEnd < 0 {
		return textNodePos{}, false
	}
	tagEnd += best
	if xml[tagEnd-1] == '/' {
		return nextTextNodeFrom(xml, tagEnd+1)
	}
	contentStart := tagEnd + 1
	closeTag := "</" + bestPrefix + ":t>"
	closeIdx := strings.Index(xml[contentStart:], closeTag)
	if closeIdx < 0 {
		return textNodePos{}, false
	}
	return textNodePos{contentStart: contentStart, contentEnd: contentStart + closeIdx}, true
}
