package sim

import "testing"

func TestPublishSnapshotReflectsCharacterState(t *testing.T) {
	g, err := NewGame(twoTileFloorBlob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	g.Step()
	g.PublishSnapshot()

	snap := g.LatestSnapshot()
	if snap.Frame != g.Frame() {
		t.Fatalf("snapshot frame = %d, want %d", snap.Frame, g.Frame())
	}
	if len(snap.Characters) != 2 {
		t.Fatalf("len(Characters) = %d, want 2", len(snap.Characters))
	}
}

func TestPublishSnapshotSequenceIncreasesEachCall(t *testing.T) {
	g, _ := NewGame(twoTileFloorBlob())

	g.Step()
	g.PublishSnapshot()
	first := g.LatestSnapshot().Sequence

	g.Step()
	g.PublishSnapshot()
	second := g.LatestSnapshot().Sequence

	if second <= first {
		t.Fatalf("sequence did not increase: first=%d second=%d", first, second)
	}
}

func TestLatestSnapshotBeforePublishHasEmptySlices(t *testing.T) {
	g, _ := NewGame(twoTileFloorBlob())

	snap := g.LatestSnapshot()
	if len(snap.Characters) != 0 || len(snap.Spawns) != 0 {
		t.Fatalf("expected empty snapshot before first publish, got %+v", snap)
	}
}
