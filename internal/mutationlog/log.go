// Package mutationlog is the append-only, typed log of pending edits a
// Document accumulates between saves (spec §3, §4.3). Entries are keyed to
// stable identifiers (table IDs, section indices, coordinates) rather than
// transient XML offsets, because offsets become stale the moment an
// earlier entry in the same save is applied.
//
// The entry kinds are a closed tagged variant, per spec §9's "dynamic
// dispatch becomes a tagged variant" guidance, generalized from the
// teacher's single ImageReplacement struct (pkg/stencil/image.go) to the
// five kinds spec §4.3 names.
package mutationlog

import "sort"

// Kind identifies one of the five mutation-log entry variants.
type Kind int

const (
	KindCellUpdate Kind = iota
	KindNestedTableInsert
	KindDirectTextUpdate
	KindTextReplacement
	KindImageInsert
)

func (k Kind) String() string {
	switch k {
	case KindCellUpdate:
		return "cell-update"
	case KindNestedTableInsert:
		return "nested-table-insert"
	case KindDirectTextUpdate:
		return "direct-text-update"
	case KindTextReplacement:
		return "text-replacement"
	case KindImageInsert:
		return "image-insert"
	default:
		return "unknown"
	}
}

// applyOrder is the fixed pass order spec §4.3 mandates: cell updates →
// nested-table inserts → direct-text updates → text replacements → image
// inserts. Metadata sync (title/creator/subject/description) is not a log
// entry kind — it is a single step the save pipeline performs directly
// against the header part, per spec §4.6 step 3.
var applyOrder = []Kind{
	KindCellUpdate,
	KindNestedTableInsert,
	KindDirectTextUpdate,
	KindTextReplacement,
	KindImageInsert,
}

// CellUpdate updates a cell's text and, optionally, the char-shape
// reference of its first run.
type CellUpdate struct {
	Section          int
	TableID          string
	Row, Col         int
	NewText          string
	CharShapeIDRef   *int
}

// NestedTableInsert inserts a new sub-table into a cell of a parent table.
type NestedTableInsert struct {
	Section       int
	ParentTableID string
	Row, Col      int
	RowCount      int
	ColCount      int
	InitialData   [][]string // optional; nil means blank cells
}

// DirectTextUpdate is a literal old/new text swap scoped to a single
// paragraph run, used by single-paragraph-run edits (update-text-of-run,
// append-text once resolved to a concrete replacement).
type DirectTextUpdate struct {
	Section     int
	ParagraphID string
	OldText     string
	NewText     string
}

// TextReplacement is a global or section-scoped regex/literal replacement
// within a run of XML characters.
type TextReplacement struct {
	Section       int // -1 means "all sections"
	Pattern       string
	Replacement   string
	Regex         bool
	CaseSensitive bool
	IncludeCells  bool
	ExcludeCells  bool
}

// ImageInsert inserts a new image after a given element index in a
// section.
type ImageInsert struct {
	Section      int
	InsertAfter  int
	ImageID      string
	BinaryItemID string
	MIMEType     string
	WidthPoint   float64
	HeightPoint  float64
	Payload      []byte
}

// Entry wraps exactly one of the five payload kinds. Only one of the
// pointer fields is non-nil; Kind says which.
type Entry struct {
	Seq               int // insertion order, used as a stable tie-breaker
	Kind              Kind
	CellUpdate        *CellUpdate
	NestedTableInsert *NestedTableInsert
	DirectTextUpdate  *DirectTextUpdate
	TextReplacement   *TextReplacement
	ImageInsert       *ImageInsert
}

// SectionIndex returns the entry's target section, or -1 for an entry that
// targets every section (a global text replacement).
func (e Entry) SectionIndex() int {
	switch e.Kind {
	case KindCellUpdate:
		return e.CellUpdate.Section
	case KindNestedTableInsert:
		return e.NestedTableInsert.Section
	case KindDirectTextUpdate:
		return e.DirectTextUpdate.Section
	case KindTextReplacement:
		return e.TextReplacement.Section
	case KindImageInsert:
		return e.ImageInsert.Section
	}
	return -1
}

// Log is the append-only, per-document mutation log.
type Log struct {
	entries []Entry
	nextSeq int
}

// New returns an empty Log.
func New() *Log { return &Log{} }

func (l *Log) append(kind Kind, e Entry) {
	e.Kind = kind
	e.Seq = l.nextSeq
	l.nextSeq++
	l.entries = append(l.entries, e)
}

// AppendCellUpdate appends a cell-update entry.
func (l *Log) AppendCellUpdate(u CellUpdate) {
	l.append(KindCellUpdate, Entry{CellUpdate: &u})
}

// AppendNestedTableInsert appends a nested-table-insert entry.
func (l *Log) AppendNestedTableInsert(n NestedTableInsert) {
	l.append(KindNestedTableInsert, Entry{NestedTableInsert: &n})
}

// AppendDirectTextUpdate appends a direct-text-update entry.
func (l *Log) AppendDirectTextUpdate(d DirectTextUpdate) {
	l.append(KindDirectTextUpdate, Entry{DirectTextUpdate: &d})
}

// AppendTextReplacement appends a text-replacement entry.
func (l *Log) AppendTextReplacement(r TextReplacement) {
	l.append(KindTextReplacement, Entry{TextReplacement: &r})
}

// AppendImageInsert appends an image-insert entry.
func (l *Log) AppendImageInsert(i ImageInsert) {
	l.append(KindImageInsert, Entry{ImageInsert: &i})
}

// Len reports the number of pending entries.
func (l *Log) Len() int { return len(l.entries) }

// Drain returns all entries ordered per spec §4.3 — grouped by kind in the
// fixed apply order, and within a kind grouped by section then ordered
// index-descending (so positional drift within one pass never invalidates
// an offset computed earlier in that same pass) — and clears the log.
//
// "Index-descending" here means: within the same section and the same
// parent-element identity, entries are sorted by (row,col) or insertion
// point descending. Grouping by parent-element identity is left to the
// caller (the mutators already resolve table IDs to locations fresh for
// each group), so Drain only guarantees the kind/section/coarse-index
// ordering contract; see internal/mutators for the per-kind fine-grained
// grouping.
func (l *Log) Drain() []Entry {
	entries := l.entries
	l.entries = nil

	kindRank := make(map[Kind]int, len(applyOrder))
	for i, k := range applyOrder {
		kindRank[k] = i
	}

	sort.SliceStable(entries, func(i, j int) bool {
		ki, kj := kindRank[entries[i].Kind], kindRank[entries[j].Kind]
		if ki != kj {
			return ki < kj
		}
		si, sj := entries[i].SectionIndex(), entries[j].SectionIndex()
		if si != sj {
			return si < sj
		}
		return descendingIndexLess(entries[i], entries[j])
	})
	return entries
}

// descendingIndexLess orders two same-kind, same-section entries so that
// the higher positional index sorts first.
func descendingIndexLess(a, b Entry) bool {
	ai, aj := positionKey(a)
	bi, bj := positionKey(b)
	if ai != bi {
		return ai > bi
	}
	return aj > bj
}

// positionKey extracts a (major, minor) sort key approximating the entry's
// XML position, high values first.
func positionKey(e Entry) (int, int) {
	switch e.Kind {
	case KindCellUpdate:
		return e.CellUpdate.Row, e.CellUpdate.Col
	case KindNestedTableInsert:
		return e.NestedTableInsert.Row, e.NestedTableInsert.Col
	case KindImageInsert:
		return e.ImageInsert.InsertAfter, 0
	default:
		return e.Seq, 0
	}
}

// Peek returns a read-only copy of the pending entries without draining
// the log — used by diagnostics/undo inspection.
func (l *Log) Peek() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Restore replaces the log's pending entries wholesale, used by undo/redo
// to roll the log back to (or forward to) a previously Peek'd state
// without disturbing nextSeq's monotonicity.
func (l *Log) Restore(entries []Entry) {
	l.entries = append([]Entry(nil), entries...)
}
