package savepipeline

import (
	"fmt"

	"github.com/hwpx-surgeon/hwpx-surgeon/internal/hwpxerr"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/hwpxlog"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/idgen"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/mutationlog"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/mutators"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/xmlscan"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/xmlvalidate"
)

// Warning is a non-fatal finding surfaced from applying one mutation-log
// entry (spec §7: structural anomalies are skipped with a warning, not a
// hard failure).
type Warning struct {
	Entry  mutationlog.Entry
	Reason string
}

// Metadata carries the header-part fields the save pipeline syncs
// directly, outside the mutation log (spec §4.6 step 3).
type Metadata struct {
	Title       string
	Creator     string
	Subject     string
	Description string
}

// Run drains entries in their already-sorted order (see mutationlog.Log.
// Drain) and applies each to the appropriate section part of c, validating
// tag balance per touched part before committing its rewritten bytes. A
// part whose post-mutation tag balance fails is rolled back to its
// original bytes and the whole save is reported as failed via a returned
// TagImbalanceError; other warnings (skipped structural anomalies) are
// collected and returned alongside a successful result.
func Run(c *Container, entries []mutationlog.Entry, meta Metadata, gen *idgen.Generator) ([]Warning, error) {
	touched := make(map[string][]byte) // part name -> original bytes, for rollback
	var warnings []Warning

	for _, e := range entries {
		partName := partNameForSection(c, e.SectionIndex())
		if partName == "" {
			warnings = append(warnings, Warning{Entry: e, Reason: "section index out of range"})
			continue
		}
		if _, seen := touched[partName]; !seen {
			current, _ := c.Get(partName)
			touched[partName] = current
		}

		hwpxlog.GetLogger().WithField("part", partName).DebugMutation(e.Kind.String(), e.SectionIndex())

		current, _ := c.Get(partName)
		updated, warn, err := applyEntry(string(current), e, gen)
		if err != nil {
			return warnings, err
		}
		if warn != "" {
			warnings = append(warnings, Warning{Entry: e, Reason: warn})
			continue
		}
		c.Set(partName, []byte(updated))
	}

	for partName, original := range touched {
		current, _ := c.Get(partName)
		report := xmlvalidate.CheckTagBalance(string(current))
		if !report.Balanced {
			c.Set(partName, original)
			return warnings, &hwpxerr.TagImbalanceError{Part: partName, Tag: firstImbalancedTag(report)}
		}
	}

	if meta.Title != "" || meta.Creator != "" || meta.Subject != "" || meta.Description != "" {
		syncMetadata(c, meta)
	}

	hwpxlog.GetLogger().DebugSave(touchedNames(touched))
	return warnings, nil
}

func touchedNames(touched map[string][]byte) []string {
	names := make([]string, 0, len(touched))
	for name := range touched {
		names = append(names, name)
	}
	return names
}

func firstImbalancedTag(report xmlvalidate.TagBalanceReport) string {
	if len(report.Imbalances) == 0 {
		return ""
	}
	return report.Imbalances[0].Tag
}

// applyEntry dispatches one mutation-log entry to its mutator, operating
// directly on the section part's full XML text. On a structural anomaly
// it returns a non-empty warn string rather than an error so the caller
// treats it as a skip.
func applyEntry(sectionXML string, e mutationlog.Entry, gen *idgen.Generator) (updated string, warn string, err error) {
	switch e.Kind {
	case mutationlog.KindCellUpdate:
		u := e.CellUpdate
		tableRange, ok := xmlscan.FindTableByID(sectionXML, u.TableID)
		if !ok {
			return sectionXML, fmt.Sprintf("table %s not found", u.TableID), nil
		}
		newTable, aerr := mutators.ApplyCellUpdate(tableRange.Slice(sectionXML), *u)
		if aerr != nil {
			return sectionXML, aerr.Error(), nil
		}
		return sectionXML[:tableRange.Start] + newTable + sectionXML[tableRange.End:], "", nil

	case mutationlog.KindNestedTableInsert:
		n := e.NestedTableInsert
		tableRange, ok := xmlscan.FindTableByID(sectionXML, n.ParentTableID)
		if !ok {
			return sectionXML, fmt.Sprintf("parent table %s not found", n.ParentTableID), nil
		}
		newTable, aerr := mutators.ApplyNestedTableInsert(tableRange.Slice(sectionXML), *n, gen)
		if aerr != nil {
			return sectionXML, aerr.Error(), nil
		}
		return sectionXML[:tableRange.Start] + newTable + sectionXML[tableRange.End:], "", nil

	case mutationlog.KindDirectTextUpdate:
		d := e.DirectTextUpdate
		paraRange, ok := findParagraphByID(sectionXML, d.ParagraphID)
		if !ok {
			return sectionXML, fmt.Sprintf("paragraph %s not found", d.ParagraphID), nil
		}
		newPara, aerr := mutators.ApplyDirectTextUpdate(paraRange.Slice(sectionXML), *d)
		if aerr != nil {
			return sectionXML, aerr.Error(), nil
		}
		return sectionXML[:paraRange.Start] + newPara + sectionXML[paraRange.End:], "", nil

	case mutationlog.KindTextReplacement:
		r := e.TextReplacement
		newXML, _, aerr := mutators.ApplyTextReplacement(sectionXML, *r)
		if aerr != nil {
			return sectionXML, aerr.Error(), nil
		}
		return newXML, "", nil

	case mutationlog.KindImageInsert:
		i := e.ImageInsert
		newXML, aerr := mutators.ApplyImageInsert(sectionXML, *i, gen)
		if aerr != nil {
			return sectionXML, aerr.Error(), nil
		}
		return newXML, "", nil
	}
	return sectionXML, "unknown mutation kind", nil
}

// findParagraphByID locates a top-level <prefix:p id="..."> element.
func findParagraphByID(xml, id string) (xmlscan.Range, bool) {
	return xmlscan.FindElementByAttr(xml, "p", "id", id)
}

// partNameForSection maps a mutation-log section index to its part name,
// or "" if the section doesn't exist. Section -1 ("all sections", for
// global text replacement) is resolved by the caller issuing one entry per
// actual section before calling Run; Run itself only ever sees concrete
// indices.
func partNameForSection(c *Container, section int) string {
	names := c.SectionNames()
	if section < 0 || section >= len(names) {
		return ""
	}
	return names[section]
}

// ExpandGlobalReplacements rewrites any TextReplacement entry with
// Section == -1 into one concrete entry per section currently in c, so Run
// never has to special-case the global scope.
func ExpandGlobalReplacements(c *Container, entries []mutationlog.Entry) []mutationlog.Entry {
	var out []mutationlog.Entry
	sectionCount := len(c.SectionNames())
	for _, e := range entries {
		if e.Kind != mutationlog.KindTextReplacement || e.TextReplacement.Section != -1 {
			out = append(out, e)
			continue
		}
		for i := 0; i < sectionCount; i++ {
			copyEntry := *e.TextReplacement
			copyEntry.Section = i
			out = append(out, mutationlog.Entry{Kind: mutationlog.KindTextReplacement, TextReplacement: &copyEntry})
		}
	}
	return out
}
