package savepipeline

import (
	"strings"

	"github.com/hwpx-surgeon/hwpx-surgeon/internal/mutators"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/xmlscan"
)

// HeaderPartName is the fixed in-archive path of the part carrying
// document-level metadata and style tables (spec §6).
const HeaderPartName = "Contents/header.xml"

// syncMetadata rewrites the title/author/subject/description elements of
// the header part, in the fixed order listed, skipping any field left
// empty in meta (spec §4.6 step 3: "metadata sync is a single step the
// save pipeline performs directly against the header part").
func syncMetadata(c *Container, meta Metadata) {
	content, ok := c.Get(HeaderPartName)
	if !ok {
		return
	}
	xml := string(content)
	xml = setMetadataField(xml, "title", meta.Title)
	xml = setMetadataField(xml, "author", meta.Creator)
	xml = setMetadataField(xml, "subject", meta.Subject)
	xml = setMetadataField(xml, "description", meta.Description)
	c.Set(HeaderPartName, []byte(xml))
}

func setMetadataField(xml, localName, value string) string {
	if value == "" {
		return xml
	}
	r, ok := xmlscan.FindElement(xml, localName)
	if !ok {
		// The header part binds its own hh prefix, which xmlscan does not
		// scan for; fall back to a literal search for that element.
		open, closeTag := "<hh:"+localName, "</hh:"+localName+">"
		start := strings.Index(xml, open+">")
		if start < 0 {
			start = strings.Index(xml, open+" ")
		}
		end := strings.Index(xml, closeTag)
		if start < 0 || end < start {
			return xml
		}
		r = xmlscan.Range{Start: start, End: end + len(closeTag)}
	}
	element := r.Slice(xml)
	open := firstGreaterThan(element)
	if open < 0 {
		return xml
	}
	close := lastLessThanSlash(element)
	if close < 0 || close < open {
		return xml
	}
	rewritten := element[:open+1] + mutators.EscapeText(value) + element[close:]
	return xml[:r.Start] + rewritten + xml[r.End:]
}

func firstGreaterThan(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == '>' {
			return i
		}
	}
	return -1
}

func lastLessThanSlash(s string) int {
	for i := len(s) - 1; i >= 1; i-- {
		if s[i-1] == '<' && s[i] == '/' {
			return i - 1
		}
	}
	return -1
}

