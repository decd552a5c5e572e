package tilemap

import (
	"testing"

	"forgeengine/internal/fixed"
)

func row(tiles ...Tile) []Tile { return tiles }

func TestTileAtOutOfBoundsIsBlock(t *testing.T) {
	m := New([][]Tile{
		row(Empty, Empty),
		row(Empty, Empty),
	})
	if got := m.TileAt(-1, 0); got != Block {
		t.Fatalf("TileAt(-1,0) = %v, want Block", got)
	}
	if got := m.TileAt(2, 0); got != Block {
		t.Fatalf("TileAt(2,0) = %v, want Block", got)
	}
	if got := m.TileAt(0, 2); got != Block {
		t.Fatalf("TileAt(0,2) = %v, want Block", got)
	}
}

func TestTileAtInBounds(t *testing.T) {
	m := New([][]Tile{
		row(Empty, Block),
		row(Block, Empty),
	})
	if got := m.TileAt(1, 0); got != Block {
		t.Fatalf("TileAt(1,0) = %v, want Block", got)
	}
	if got := m.TileAt(0, 1); got != Block {
		t.Fatalf("TileAt(0,1) = %v, want Block", got)
	}
	if got := m.TileAt(0, 0); got != Empty {
		t.Fatalf("TileAt(0,0) = %v, want Empty", got)
	}
}

func TestNewRaggedPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for ragged grid")
		}
	}()
	New([][]Tile{
		row(Empty, Empty),
		row(Empty),
	})
}

func TestOverlapsSolid(t *testing.T) {
	m := New([][]Tile{
		row(Empty, Block),
		row(Empty, Empty),
	})

	// Box fully inside tile (0,0), no overlap.
	box := AABB{
		MinX: fixed.FromInt(2), MinY: fixed.FromInt(2),
		MaxX: fixed.FromInt(10), MaxY: fixed.FromInt(10),
	}
	if m.OverlapsSolid(box) {
		t.Fatal("expected no overlap in empty tile")
	}

	// Box straddling into the Block tile at (1,0).
	box2 := AABB{
		MinX: fixed.FromInt(10), MinY: fixed.FromInt(2),
		MaxX: fixed.FromInt(20), MaxY: fixed.FromInt(10),
	}
	if !m.OverlapsSolid(box2) {
		t.Fatal("expected overlap with block tile")
	}
}

func TestSweepUnobstructed(t *testing.T) {
	m := New([][]Tile{
		row(Empty, Empty, Empty),
	})
	box := AABB{
		MinX: fixed.FromInt(0), MinY: fixed.FromInt(0),
		MaxX: fixed.FromInt(8), MaxY: fixed.FromInt(8),
	}
	res := m.Sweep(box, fixed.FromInt(10), fixed.Zero)
	if res.Contact {
		t.Fatal("expected no contact moving through empty space")
	}
	if res.Fraction != fixed.One {
		t.Fatalf("Fraction = %v, want 1", res.Fraction)
	}
}

func TestSweepStopsAtWall(t *testing.T) {
	// Tile (1,0) is solid; box starts in tile (0,0) and moves right.
	m := New([][]Tile{
		row(Empty, Block),
	})
	box := AABB{
		MinX: fixed.FromInt(0), MinY: fixed.FromInt(0),
		MaxX: fixed.FromInt(8), MaxY: fixed.FromInt(8),
	}
	res := m.Sweep(box, fixed.FromInt(16), fixed.Zero)
	if !res.Contact {
		t.Fatal("expected contact with wall")
	}
	if res.Axis != AxisX {
		t.Fatalf("Axis = %v, want AxisX", res.Axis)
	}

	// The box's right edge should end up at or before the wall's left edge
	// (x=16), never past it.
	moved := res.Fraction.Mul(fixed.FromInt(16))
	finalRight := box.MaxX.Add(moved)
	if finalRight.Cmp(fixed.FromInt(16)) > 0 {
		t.Fatalf("finalRight = %v, must not exceed 16", finalRight)
	}
}

func TestSweepZeroDelta(t *testing.T) {
	m := New([][]Tile{row(Empty)})
	box := AABB{MinX: fixed.Zero, MinY: fixed.Zero, MaxX: fixed.FromInt(8), MaxY: fixed.FromInt(8)}
	res := m.Sweep(box, fixed.Zero, fixed.Zero)
	if res.Contact || res.Axis != AxisNone {
		t.Fatalf("zero delta sweep should be a no-op, got %+v", res)
	}
}

func TestSweepPanicsOnBothAxes(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic when both axes have nonzero delta")
		}
	}()
	m := New([][]Tile{row(Empty)})
	box := AABB{MinX: fixed.Zero, MinY: fixed.Zero, MaxX: fixed.FromInt(8), MaxY: fixed.FromInt(8)}
	m.Sweep(box, fixed.FromInt(1), fixed.FromInt(1))
}

func TestDimensions(t *testing.T) {
	m := New([][]Tile{
		row(Empty, Empty, Empty),
		row(Empty, Empty, Empty),
	})
	if m.Cols() != 3 || m.Rows() != 2 {
		t.Fatalf("Cols/Rows = %d/%d, want 3/2", m.Cols(), m.Rows())
	}
	if m.WidthPixels() != fixed.FromInt(3*Size) {
		t.Fatalf("WidthPixels = %v, want %v", m.WidthPixels(), fixed.FromInt(3*Size))
	}
	if m.HeightPixels() != fixed.FromInt(2*Size) {
		t.Fatalf("HeightPixels = %v, want %v", m.HeightPixels(), fixed.FromInt(2*Size))
	}
}
