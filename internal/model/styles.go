package model

import "fmt"

// CharShape, ParaShape, NamedStyle, BorderFill, and Font are interned style
// entries keyed by integer IDs that appear as *IDRef attributes across the
// document (spec §3, "Style Tables").
type CharShape struct {
	ID       int
	FontRef  int
	SizePt   float64
	Bold     bool
	Italic   bool
}

type ParaShape struct {
	ID          int
	AlignH      string
	LineSpacing int
}

type NamedStyle struct {
	ID            int
	Name          string
	ParaShapeIDRef int
	CharShapeIDRef int
}

type BorderFill struct {
	ID int
}

type Font struct {
	ID   int
	Name string
}

// StyleTables is the interned catalog referenced by *IDRef attributes.
type StyleTables struct {
	CharShapes  map[int]*CharShape
	ParaShapes  map[int]*ParaShape
	NamedStyles map[int]*NamedStyle
	BorderFills map[int]*BorderFill
	Fonts       map[int]*Font
}

// NewStyleTables returns an initialized, empty StyleTables.
func NewStyleTables() *StyleTables {
	return &StyleTables{
		CharShapes:  make(map[int]*CharShape),
		ParaShapes:  make(map[int]*ParaShape),
		NamedStyles: make(map[int]*NamedStyle),
		BorderFills: make(map[int]*BorderFill),
		Fonts:       make(map[int]*Font),
	}
}

// ResolveCharShape validates invariant 2 ("every *IDRef in a mutated region
// resolves to an entry in the corresponding style table") for a charPrIDRef
// value.
func (s *StyleTables) ResolveCharShape(id int) (*CharShape, error) {
	cs, ok := s.CharShapes[id]
	if !ok {
		return nil, fmt.Errorf("charPrIDRef %d does not resolve to a character shape", id)
	}
	return cs, nil
}

// BinaryItem maps an item ID to its declared MIME type; the payload itself
// is owned by the image that references it until save, per spec §3.
type BinaryItem struct {
	ID       string
	MIMEType string
}

// BinaryItemStore is the document-level map from binary item ID to its
// declared type.
type BinaryItemStore struct {
	items map[string]*BinaryItem
}

// NewBinaryItemStore returns an initialized, empty BinaryItemStore.
func NewBinaryItemStore() *BinaryItemStore {
	return &BinaryItemStore{items: make(map[string]*BinaryItem)}
}

// Add registers a binary item, overwriting any existing entry with the same
// ID.
func (b *BinaryItemStore) Add(id, mimeType string) {
	b.items[id] = &BinaryItem{ID: id, MIMEType: mimeType}
}

// Get looks up a binary item by ID.
func (b *BinaryItemStore) Get(id string) (*BinaryItem, bool) {
	item, ok := b.items[id]
	return item, ok
}

// Len reports how many binary items are registered.
func (b *BinaryItemStore) Len() int { return len(b.items) }
