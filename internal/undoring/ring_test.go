package undoring

import "testing"

func TestPushUndoThenUndoRoundTrips(t *testing.T) {
	r, err := New(5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r.Close()

	if err := r.PushUndo(Snapshot{Sections: []byte("v1")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok, err := r.Undo(Snapshot{Sections: []byte("v2")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected undo to have an entry")
	}
	if string(got.Sections) != "v1" {
		t.Fatalf("expected v1, got %q", got.Sections)
	}
}

func TestUndoThenRedoRestoresCurrent(t *testing.T) {
	r, err := New(5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r.Close()

	_ = r.PushUndo(Snapshot{Sections: []byte("v1")})
	_, _, _ = r.Undo(Snapshot{Sections: []byte("v2")})

	got, ok, err := r.Redo(Snapshot{Sections: []byte("v1")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatalf("expected redo to have an entry")
	}
	if string(got.Sections) != "v2" {
		t.Fatalf("expected v2, got %q", got.Sections)
	}
}

func TestUndoEmptyReturnsFalse(t *testing.T) {
	r, err := New(5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r.Close()

	_, ok, err := r.Undo(Snapshot{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatalf("expected no undo entries")
	}
}

func TestPushUndoClearsRedoStack(t *testing.T) {
	r, err := New(5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r.Close()

	_ = r.PushUndo(Snapshot{Sections: []byte("v1")})
	_, _, _ = r.Undo(Snapshot{Sections: []byte("v2")})
	if r.RedoDepth() != 1 {
		t.Fatalf("expected 1 redo entry before new mutation")
	}

	_ = r.PushUndo(Snapshot{Sections: []byte("v3")})
	if r.RedoDepth() != 0 {
		t.Fatalf("expected redo stack cleared after a new mutation")
	}
}

func TestCapacityEvictsOldest(t *testing.T) {
	r, err := New(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer r.Close()

	_ = r.PushUndo(Snapshot{Sections: []byte("v1")})
	_ = r.PushUndo(Snapshot{Sections: []byte("v2")})
	_ = r.PushUndo(Snapshot{Sections: []byte("v3")})

	if r.UndoDepth() != 2 {
		t.Fatalf("expected capacity-capped depth of 2, got %d", r.UndoDepth())
	}
}

func TestEncodeDecodeSnapshotRoundTrip(t *testing.T) {
	type payload struct {
		Name string
		N    int
	}
	data, err := EncodeSnapshot(payload{Name: "x", N: 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out payload
	if err := DecodeSnapshot(data, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Name != "x" || out.N != 3 {
		t.Fatalf("unexpected round-trip: %+v", out)
	}
}
