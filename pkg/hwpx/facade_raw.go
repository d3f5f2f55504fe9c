package hwpx

import (
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/hwpxerr"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/xmlvalidate"
)

// GetSectionXML returns the raw XML bytes of a section part.
func (d *Document) GetSectionXML(sectionIndex int) (string, error) {
	name, err := d.sectionPartName(sectionIndex)
	if err != nil {
		return "", err
	}
	content, _ := d.container.Get(name)
	return string(content), nil
}

// SetSectionXML overwrites a section part's raw XML wholesale, the escape
// hatch for callers who need structural changes no other façade verb
// covers. The replacement is checked for basic well-formedness and tag
// balance before being committed; a failing replacement leaves the
// section's prior bytes untouched and returns a descriptive error rather
// than corrupting the part.
func (d *Document) SetSectionXML(sectionIndex int, xml string) error {
	name, err := d.sectionPartName(sectionIndex)
	if err != nil {
		return err
	}
	if report := xmlvalidate.CheckStructure(xml); !report.OK {
		return &hwpxerr.InvalidXMLInputError{Reason: report.Problems[0]}
	}
	if report := xmlvalidate.CheckTagBalance(xml); !report.Balanced {
		first := report.Imbalances[0]
		return &hwpxerr.TagImbalanceError{Part: name, Tag: first.Tag}
	}

	previous, _ := d.container.Get(name)
	d.snapshotForUndo()
	d.container.Set(name, []byte(xml))

	if err := d.resyncSection(sectionIndex); err != nil {
		d.container.Set(name, previous)
		return err
	}
	d.markDirty()
	return nil
}

// GetRawXML returns the raw XML bytes of any named container part (header,
// manifest, or a section), with no model parsing performed.
func (d *Document) GetRawXML(partName string) (string, error) {
	content, ok := d.container.Get(partName)
	if !ok {
		return "", &hwpxerr.NotFoundError{Kind: "part", Identifier: partName}
	}
	return string(content), nil
}

// SetRawXML overwrites any named container part's bytes wholesale with no
// validation and no model resync — the unconditional escape hatch for
// parts the object model does not represent at all (the manifest,
// preview text, settings).
func (d *Document) SetRawXML(partName string, xml string) error {
	d.snapshotForUndo()
	d.container.Set(partName, []byte(xml))
	d.markDirty()
	return nil
}
