package idgen

import "testing"

func TestNextIDUnique(t *testing.T) {
	g := New(AlgXXHash3)
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := g.NextID("tbl")
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestNextIDAllAlgorithms(t *testing.T) {
	for _, alg := range []Algorithm{AlgXXHash3, AlgFNV1a, AlgBlake2b} {
		g := New(alg)
		id1 := g.NextID("para")
		id2 := g.NextID("para")
		if id1 == id2 {
			t.Fatalf("algorithm %v produced colliding ids", alg)
		}
		if id1 == "" {
			t.Fatalf("algorithm %v produced empty id", alg)
		}
	}
}

func TestManifestHashKeyDeterministicAndDistinct(t *testing.T) {
	a := ManifestHashKey([]byte("payload-a"))
	aAgain := ManifestHashKey([]byte("payload-a"))
	b := ManifestHashKey([]byte("payload-b"))

	if a != aAgain {
		t.Fatalf("expected deterministic hash key, got %s vs %s", a, aAgain)
	}
	if a == b {
		t.Fatalf("expected distinct payloads to hash differently")
	}
	if len(a) != 32 {
		t.Fatalf("expected 32-char hash key, got %d", len(a))
	}
}
