package glyph

import (
	"sort"
	"testing"

	"tableflip.dev/daybook/pkg/entry"
)

func TestFor(t *testing.T) {
	if g := For(entry.Synced); g.Symbol != "●" {
		t.Fatalf("expected ●, got %s", g.Symbol)
	}
	if g := For(entry.SyncStatus("bogus")); g.Status != entry.SyncNone {
		t.Fatalf("expected unknown status to read as not synced, got %s", g.Status)
	}
	if g := For(""); g.Status != entry.SyncNone {
		t.Fatalf("expected empty status to read as not synced, got %s", g.Status)
	}
}

func TestByOrder(t *testing.T) {
	gs := Default()
	gs[0], gs[3] = gs[3], gs[0]
	sort.Sort(ByOrder(gs))
	for i, g := range gs {
		if g.Order != i {
			t.Fatalf("expected order %d at %d, got %d", i, i, g.Order)
		}
	}
}
