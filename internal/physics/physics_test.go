package physics

import (
	"testing"

	"forgeengine/internal/entity"
	"forgeengine/internal/fixed"
	"forgeengine/internal/tilemap"
)

func flatGround(rows, cols int) *tilemap.Map {
	grid := make([][]tilemap.Tile, rows)
	for y := range grid {
		grid[y] = make([]tilemap.Tile, cols)
		if y == rows-1 {
			for x := range grid[y] {
				grid[y][x] = tilemap.Block
			}
		}
	}
	return tilemap.New(grid)
}

func newCore(x, y int) *entity.EntityCore {
	return &entity.EntityCore{
		PosX:      fixed.FromInt(x),
		PosY:      fixed.FromInt(y),
		Size:      entity.Size{Width: 16, Height: 16},
		Direction: entity.Direction{Horizontal: entity.DirPositive, Vertical: entity.DirPositive},
	}
}

func TestStepAppliesGravity(t *testing.T) {
	tm := flatGround(10, 10)
	core := newCore(32, 32)
	gravity := fixed.FromInt(1)

	Step(core, gravity, tm)

	if core.VelY.Cmp(fixed.Zero) <= 0 {
		t.Fatalf("expected downward velocity after gravity, got %v", core.VelY)
	}
}

func TestStepStopsAtGround(t *testing.T) {
	tm := flatGround(4, 4)
	core := newCore(16, 0)
	core.VelY = fixed.FromInt(100) // large fall, must be clamped by the sweep

	Step(core, fixed.Zero, tm)

	maxY := tm.HeightPixels().Sub(fixed.FromInt(16) /* own height */).Sub(fixed.FromInt(16) /* ground tile */)
	if core.PosY.Cmp(maxY) > 0 {
		t.Fatalf("entity fell past ground: posY=%v", core.PosY)
	}
	if !core.VelY.IsZero() {
		t.Fatalf("expected velocity zeroed on contact, got %v", core.VelY)
	}
}

func TestGroundedWhenRestingOnGround(t *testing.T) {
	tm := flatGround(4, 4)
	core := newCore(16, 16*2) // resting exactly on top of the ground row
	Step(core, fixed.Zero, tm)

	if !Grounded(core) {
		t.Fatal("expected entity resting on ground to be grounded")
	}
}

func TestNegativeGravityMultiplierChecksCeiling(t *testing.T) {
	core := &entity.EntityCore{
		Direction: entity.Direction{Vertical: entity.DirNegative},
		Collision: entity.Collision{Top: true},
	}
	if !Grounded(core) {
		t.Fatal("expected ceiling contact to count as grounded under reversed gravity")
	}
}

func TestNeutralGravityGroundedOnEitherFace(t *testing.T) {
	core := &entity.EntityCore{
		Direction: entity.Direction{Vertical: entity.DirNeutral},
		Collision: entity.Collision{Top: true},
	}
	if !Grounded(core) {
		t.Fatal("expected neutral gravity to treat top contact as grounded too")
	}
}

func TestWallLeaning(t *testing.T) {
	core := &entity.EntityCore{Collision: entity.Collision{Left: true}}
	if !WallLeaning(core) {
		t.Fatal("expected left contact to count as wall-leaning")
	}
}

func TestEarlyExitSkipsGravityWhenRestingWithoutOverlap(t *testing.T) {
	tm := flatGround(10, 10)
	core := newCore(32, 16*8) // resting exactly on top of the ground row
	// no velocity, no overlap, already grounded: Step must still refresh
	// flags (Phase D) via the early-exit path, but not integrate gravity
	// onto velocity.
	Step(core, fixed.FromInt(5), tm)
	if !core.VelY.IsZero() {
		t.Fatalf("early exit should leave velocity untouched, got %v", core.VelY)
	}
}

func TestCorrectionCapLogsWarning(t *testing.T) {
	tm := flatGround(4, 4)
	core := newCore(16, 16) // already overlapping the ground row significantly
	core.PosY = fixed.FromInt(16 * 4) // deep inside solid territory, past the cap

	warnings := Step(core, fixed.Zero, tm)
	if len(warnings) == 0 {
		t.Fatal("expected a correction warning for an overlap beyond MaxCorrectionPixels")
	}
}
