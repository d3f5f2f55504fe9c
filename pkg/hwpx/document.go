package hwpx

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hwpx-surgeon/hwpx-surgeon/internal/hwpxconfig"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/hwpxerr"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/hwpxlog"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/idgen"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/model"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/modelload"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/mutationlog"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/savepipeline"
	"github.com/hwpx-surgeon/hwpx-surgeon/internal/undoring"
)

// Document is an opened HWPX package: the raw container (for save-pipeline
// replay and the raw escape hatches) plus the parsed object model the rest
// of the façade's verbs read and mutate.
type Document struct {
	path        string
	container   *savepipeline.Container
	sections    []*model.Section
	styles      *model.StyleTables
	binaryItems *model.BinaryItemStore
	log         *mutationlog.Log
	gen         *idgen.Generator
	undo        *undoring.Ring
	metadata    savepipeline.Metadata
	dirty       bool
}

// Open reads path as an HWPX package and parses its sections into the
// object model.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("hwpx: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("hwpx: stat %s: %w", path, err)
	}

	c, err := savepipeline.OpenContainer(f, info.Size())
	if err != nil {
		return nil, err
	}
	return newDocument(path, c)
}

func newDocument(path string, c *savepipeline.Container) (*Document, error) {
	cfg := hwpxconfig.Global()

	var sections []*model.Section
	for idx, name := range c.SectionNames() {
		content, _ := c.Get(name)
		sec, err := modelload.LoadSection(idx, content)
		if err != nil {
			return nil, &hwpxerr.InvalidXMLInputError{Reason: fmt.Sprintf("parsing %s", name), Cause: err}
		}
		sections = append(sections, sec)
	}

	styles := model.NewStyleTables()
	if header, ok := c.Get(savepipeline.HeaderPartName); ok {
		if parsed, err := modelload.LoadStyleTables(header); err == nil {
			styles = parsed
		}
	}

	ring, err := undoring.New(cfg.UndoRingCapacity)
	if err != nil {
		return nil, fmt.Errorf("hwpx: init undo ring: %w", err)
	}

	return &Document{
		path:        path,
		container:   c,
		sections:    sections,
		styles:      styles,
		binaryItems: model.NewBinaryItemStore(),
		log:         mutationlog.New(),
		gen:         idgen.New(idAlgorithmFromConfig(cfg.IDAlgorithm)),
		undo:        ring,
	}, nil
}

func idAlgorithmFromConfig(name string) idgen.Algorithm {
	switch name {
	case "fnv1a":
		return idgen.AlgFNV1a
	case "blake2b":
		return idgen.AlgBlake2b
	default:
		return idgen.AlgXXHash3
	}
}

// Close releases the undo ring's compressor/decompressor. It does not
// save; call Save or SaveAs first if pending edits should be persisted.
func (d *Document) Close() error {
	return d.undo.Close()
}

// IsDirty reports whether any verb has mutated the document since it was
// opened or last saved.
func (d *Document) IsDirty() bool { return d.dirty }

// SectionCount returns the number of sections in the document.
func (d *Document) SectionCount() int { return len(d.sections) }

// Section returns the parsed model for the section at index, or a
// NotFoundError if out of range.
func (d *Document) Section(index int) (*model.Section, error) {
	if index < 0 || index >= len(d.sections) {
		return nil, &hwpxerr.NotFoundError{Kind: "section", Identifier: strconv.Itoa(index)}
	}
	return d.sections[index], nil
}

// SetMetadata stages document-level metadata fields (title/author/
// subject/description) to be synced into the header part on the next
// save. Empty fields are left untouched.
func (d *Document) SetMetadata(meta savepipeline.Metadata) {
	d.metadata = meta
	d.dirty = true
}

// Save writes pending edits back to the path the document was opened
// from.
func (d *Document) Save() error {
	return d.SaveAs(d.path)
}

// SaveAs drains the mutation log, runs the save pipeline against the
// container, assembles the archive, and atomically writes it to path.
// Warnings for skipped entries are logged, not returned, matching spec
// §7's "surface a warning, keep going" disposition for structural
// anomalies.
func (d *Document) SaveAs(path string) error {
	entries := d.log.Drain()
	entries = savepipeline.ExpandGlobalReplacements(d.container, entries)

	warnings, err := savepipeline.Run(d.container, entries, d.metadata, d.gen)
	if err != nil {
		// Put back whatever wasn't applied so a retried Save doesn't lose
		// the pending edits.
		d.log.Restore(append(entries, d.log.Peek()...))
		return err
	}
	for _, w := range warnings {
		hwpxlog.GetLogger().Warn("save: skipped entry (%v): %s", w.Entry.Kind, w.Reason)
	}

	data, err := d.container.Assemble()
	if err != nil {
		return err
	}
	if err := savepipeline.WriteAtomic(path, data); err != nil {
		return err
	}
	d.path = path
	d.dirty = false
	return nil
}

// snapshotForUndo records the current model + container state on the undo
// ring before a mutating verb runs, clearing any redo history (mirroring
// the teacher's cache eviction-on-set behavior).
func (d *Document) snapshotForUndo() {
	d.undo.PushUndo(d.currentSnapshot())
}

// undoBundle carries everything besides the parsed sections that a verb
// might have touched, so Undo/Redo can restore the document to exactly
// where it was.
type undoBundle struct {
	Parts      []savepipeline.Part
	LogEntries []mutationlog.Entry
	Metadata   savepipeline.Metadata
}

// Undo reverts the document to the state before the most recent mutating
// verb, pushing the current state onto the redo stack. It reports false if
// there is nothing to undo.
func (d *Document) Undo() bool {
	snap, ok, err := d.undo.Undo(d.currentSnapshot())
	if err != nil || !ok {
		return false
	}
	d.restoreSnapshot(snap)
	return true
}

// Redo re-applies the most recently undone verb. It reports false if there
// is nothing to redo.
func (d *Document) Redo() bool {
	snap, ok, err := d.undo.Redo(d.currentSnapshot())
	if err != nil || !ok {
		return false
	}
	d.restoreSnapshot(snap)
	return true
}

func (d *Document) currentSnapshot() undoring.Snapshot {
	sectionsJSON, _ := undoring.EncodeSnapshot(snapshotSections(d.sections))
	bundle := undoBundle{Parts: d.container.Parts, LogEntries: d.log.Peek(), Metadata: d.metadata}
	bundleJSON, _ := undoring.EncodeSnapshot(bundle)
	return undoring.Snapshot{Sections: sectionsJSON, Metadata: bundleJSON}
}

func (d *Document) restoreSnapshot(snap undoring.Snapshot) {
	var snaps []sectionSnapshot
	if err := undoring.DecodeSnapshot(snap.Sections, &snaps); err == nil {
		d.sections = restoreSections(snaps)
	}
	var bundle undoBundle
	if err := undoring.DecodeSnapshot(snap.Metadata, &bundle); err == nil {
		d.container.Parts = bundle.Parts
		d.container.ReindexParts()
		d.log.Restore(bundle.LogEntries)
		d.metadata = bundle.Metadata
	}
	d.dirty = true
}

// markDirty flags the document as having pending, unsaved edits.
func (d *Document) markDirty() { d.dirty = true }

// sectionPartName returns the in-archive name of section index's XML part.
func (d *Document) sectionPartName(index int) (string, error) {
	names := d.container.SectionNames()
	if index < 0 || index >= len(names) {
		return "", &hwpxerr.NotFoundError{Kind: "section", Identifier: strconv.Itoa(index)}
	}
	return names[index], nil
}

// resyncSection reparses section index's model from the container's
// current XML, used after a verb rewrites that part's bytes directly
// (the raw escape hatches and the structural verbs that have no
// mutation-log kind of their own).
func (d *Document) resyncSection(index int) error {
	name, err := d.sectionPartName(index)
	if err != nil {
		return err
	}
	content, _ := d.container.Get(name)
	sec, err := modelload.LoadSection(index, content)
	if err != nil {
		return &hwpxerr.InvalidXMLInputError{Reason: fmt.Sprintf("reparsing %s after edit", name), Cause: err}
	}
	d.sections[index] = sec
	return nil
}

// resolveHeadingStyleIDs returns the set of named-style IDs (as the string
// form a paragraph's ParaStyleIDRef carries) whose display name marks them
// as a heading, used by GetOutline.
func (d *Document) resolveHeadingStyleIDs() map[string]bool {
	out := make(map[string]bool)
	for id, style := range d.styles.NamedStyles {
		if strings.Contains(strings.ToLower(style.Name), "heading") {
			out[strconv.Itoa(id)] = true
		}
	}
	return out
}
