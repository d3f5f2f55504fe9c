package hwpx

import (
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/xmlvalidate"
)

// AnalysisReport summarizes a section part's structural health: well-formed
// enough to scan, tag-balanced across the fixed structural vocabulary, and
// any orphan table closers a repair pass could remove.
type AnalysisReport struct {
	Structure      xmlvalidate.StructureReport
	TagBalance     xmlvalidate.TagBalanceReport
	OrphanTblClose []xmlvalidate.OrphanTblCloser
	MissingClosers int
}

// AnalyzeXML runs both validators plus the orphan-tbl-closer scan over a
// section's current raw XML, without mutating anything.
func (d *Document) AnalyzeXML(sectionIndex int) (AnalysisReport, error) {
	xml, err := d.GetSectionXML(sectionIndex)
	if err != nil {
		return AnalysisReport{}, err
	}
	orphans, missing := xmlvalidate.FindOrphanTblClosers(xml)
	return AnalysisReport{
		Structure:      xmlvalidate.CheckStructure(xml),
		TagBalance:     xmlvalidate.CheckTagBalance(xml),
		OrphanTblClose: orphans,
		MissingClosers: missing,
	}, nil
}

// RepairXML removes every orphan </*:tbl> closer AnalyzeXML would report
// (a stray closing tag with no corresponding open, which CheckTagBalance
// flags as a warning rather than an error since it cannot itself infer
// where the matching opener should have been). It does not attempt to
// synthesize missing closers, since there is no principled place to insert
// one; that case is left for SetSectionXML's manual escape hatch.
func (d *Document) RepairXML(sectionIndex int) (int, error) {
	name, err := d.sectionPartName(sectionIndex)
	if err != nil {
		return 0, err
	}
	content, _ := d.container.Get(name)
	xml := string(content)

	orphans, _ := xmlvalidate.FindOrphanTblClosers(xml)
	if len(orphans) == 0 {
		return 0, nil
	}

	d.snapshotForUndo()
	// Remove from the end backward so earlier offsets stay valid as later
	// ones are spliced out.
	for i := len(orphans) - 1; i >= 0; i-- {
		o := orphans[i]
		xml = xml[:o.Offset] + xml[o.Offset+len(o.Token):]
	}
	d.container.Set(name, []byte(xml))

	if err := d.resyncSection(sectionIndex); err != nil {
		return 0, err
	}
	d.markDirty()
	return len(orphans), nil
}
