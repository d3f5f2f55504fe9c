// Package undoring holds the capped undo/redo history of a document: two
// stacks of serialized, compressed model snapshots. It is shaped directly
// on the teacher's TemplateCache (pkg/stencil/cache.go) — a
// container/list-backed, capacity-evicting store protected by a
// sync.RWMutex — repurposed from an LRU keyed by template path to two
// plain stacks keyed by push order, since undo/redo never needs
// random-access lookup, only "pop the most recent."
package undoring

import (
	"bytes"
	"container/list"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
)

// DefaultCapacity is the default number of snapshots retained per stack
// (spec §4.7: "two capped (default 50) stacks").
const DefaultCapacity = 50

// Snapshot is whatever the caller wants preserved across an undo/redo step
// — in practice the document's sections and metadata, never the mutation
// log or on-disk state (spec §4.7's model-only split).
type Snapshot struct {
	Sections []byte // pre-encoded by the caller via goccy/go-json
	Metadata []byte
}

// Ring is a capped undo stack and a capped redo stack sharing one
// compressor/decompressor pair.
type Ring struct {
	mu       sync.Mutex
	undo     *list.List
	redo     *list.List
	capacity int
	enc      *zstd.Encoder
	dec      *zstd.Decoder
}

// New returns a Ring with the given per-stack capacity (DefaultCapacity if
// capacity <= 0), using the fastest zstd level since snapshotting runs on
// every mutating verb.
func New(capacity int) (*Ring, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("undoring: create encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("undoring: create decoder: %w", err)
	}
	return &Ring{
		undo:     list.New(),
		redo:     list.New(),
		capacity: capacity,
		enc:      enc,
		dec:      dec,
	}, nil
}

// Close releases the decoder's background goroutines. The encoder has none
// to release but is closed for symmetry.
func (r *Ring) Close() {
	r.enc.Close()
	r.dec.Close()
}

type entry struct {
	sections []byte
	metadata []byte
}

// PushUndo records snap as the new top of the undo stack, evicting the
// stack's oldest entry if it is at capacity, and clears the redo stack (a
// fresh mutation invalidates any pending redo history — the same rule the
// teacher's cache applies to a stale entry on Set).
func (r *Ring) PushUndo(snap Snapshot) error {
	e, err := r.compress(snap)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	pushCapped(r.undo, e, r.capacity)
	r.redo.Init()
	return nil
}

// Undo pops the most recent undo entry, pushes current onto the redo
// stack, and returns the popped snapshot. ok is false if there is nothing
// to undo.
func (r *Ring) Undo(current Snapshot) (Snapshot, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	front := r.undo.Front()
	if front == nil {
		return Snapshot{}, false, nil
	}
	r.undo.Remove(front)

	curEntry, err := r.compress(current)
	if err != nil {
		return Snapshot{}, false, err
	}
	pushCapped(r.redo, curEntry, r.capacity)

	snap, err := r.decompress(front.Value.(entry))
	if err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}

// Redo pops the most recent redo entry, pushes current back onto the undo
// stack, and returns the popped snapshot.
func (r *Ring) Redo(current Snapshot) (Snapshot, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	front := r.redo.Front()
	if front == nil {
		return Snapshot{}, false, nil
	}
	r.redo.Remove(front)

	curEntry, err := r.compress(current)
	if err != nil {
		return Snapshot{}, false, err
	}
	pushCapped(r.undo, curEntry, r.capacity)

	snap, err := r.decompress(front.Value.(entry))
	if err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}

// UndoDepth and RedoDepth report the number of steps available, for
// callers surfacing undo availability in a UI.
func (r *Ring) UndoDepth() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.undo.Len()
}

func (r *Ring) RedoDepth() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.redo.Len()
}

func pushCapped(l *list.List, e entry, capacity int) {
	l.PushFront(e)
	if l.Len() > capacity {
		l.Remove(l.Back())
	}
}

func (r *Ring) compress(snap Snapshot) (entry, error) {
	return entry{
		sections: r.enc.EncodeAll(snap.Sections, nil),
		metadata: r.enc.EncodeAll(snap.Metadata, nil),
	}, nil
}

func (r *Ring) decompress(e entry) (Snapshot, error) {
	sections, err := r.dec.DecodeAll(e.sections, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("undoring: decompress sections: %w", err)
	}
	metadata, err := r.dec.DecodeAll(e.metadata, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("undoring: decompress metadata: %w", err)
	}
	return Snapshot{Sections: sections, Metadata: metadata}, nil
}

// EncodeSnapshot marshals v (typically a document's sections slice or
// metadata struct) with goccy/go-json, the encoder the rest of the module
// uses for anything that needs JSON.
func EncodeSnapshot(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeSnapshot unmarshals data into v.
func DecodeSnapshot(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
