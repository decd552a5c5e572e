// Package physics implements the discrete-tile physics and collision
// kernel: gravity integration, swept movement against a tilemap,
// overlap correction, and collision-flag/grounded derivation. It runs
// once per entity per frame, after the entity's behavior or tick script
// has had a chance to move it.
package physics

import (
	"forgeengine/internal/entity"
	"forgeengine/internal/fixed"
	"forgeengine/internal/tilemap"
)

// Epsilon is the contact tolerance applied around each tile face:
// velocity components driving an entity into a surface within this
// distance are snapped to zero instead of integrated, and collision
// flags stay set for an entity resting exactly against a face.
var Epsilon = fixed.FromRaw(fixed.Scale) // 1 fixed unit

// MaxCorrectionPixels bounds how far Phase C may push an entity back into a
// valid position in one frame, per axis.
const MaxCorrectionPixels = 8

// Warning is a non-fatal event raised when an overlap exceeds
// MaxCorrectionPixels; the caller (internal/sim) is expected to append it to
// the tick's error journal rather than fail the tick.
type Warning struct {
	Axis    tilemap.Axis
	Penetration fixed.Fixed
}

// Step runs Phases A-E of the kernel against core, given the global
// gravity magnitude and the tilemap to collide against. It returns any
// soft warnings raised during position correction.
func Step(core *entity.EntityCore, gravity fixed.Fixed, tm *tilemap.Map) []Warning {
	gm := core.Direction.GravityMultiplier()

	hasVelocity := !core.VelX.IsZero() || !core.VelY.IsZero()
	overlapping := tm.OverlapsSolid(boxAt(core, core.PosX, core.PosY))

	if !hasVelocity && !overlapping {
		deriveFlags(core, tm)
		// Only an entity gravity cannot move (neutral, or already resting
		// against the face its gravity pulls it toward) skips Phases A-C.
		if gm == 0 || Grounded(core) {
			return nil
		}
	}

	// Phase A: gravity application.
	if gm != 0 {
		core.VelY = core.VelY.Add(gravity.Mul(fixed.FromInt(gm)))
	}

	// Phase B: swept movement, X then Y, one axis at a time.
	sweepAxis(core, tm, core.VelX, true)
	sweepAxis(core, tm, core.VelY, false)

	// Phase C: position correction.
	warnings := correct(core, tm)

	// Phase D: collision-flag derivation.
	deriveFlags(core, tm)

	return warnings
}

func boxAt(core *entity.EntityCore, x, y fixed.Fixed) tilemap.AABB {
	return tilemap.AABB{
		MinX: x,
		MinY: y,
		MaxX: x.Add(fixed.FromInt(int(core.Size.Width))),
		MaxY: y.Add(fixed.FromInt(int(core.Size.Height))),
	}
}

func sweepAxis(core *entity.EntityCore, tm *tilemap.Map, delta fixed.Fixed, isX bool) {
	if delta.Abs().Cmp(Epsilon) < 0 && delta.Sign() != 0 {
		// Resting-contact rule: a sub-epsilon push into a surface is
		// snapped to zero rather than swept.
		if wouldPenetrate(core, tm, delta, isX) {
			if isX {
				core.VelX = fixed.Zero
			} else {
				core.VelY = fixed.Zero
			}
			return
		}
	}

	box := boxAt(core, core.PosX, core.PosY)
	var result tilemap.SweepResult
	if isX {
		result = tm.Sweep(box, delta, fixed.Zero)
	} else {
		result = tm.Sweep(box, fixed.Zero, delta)
	}

	moved := delta.Mul(result.Fraction)
	if isX {
		core.PosX = core.PosX.Add(moved)
		if result.Contact {
			core.VelX = fixed.Zero
		}
	} else {
		core.PosY = core.PosY.Add(moved)
		if result.Contact {
			core.VelY = fixed.Zero
		}
	}
}

func wouldPenetrate(core *entity.EntityCore, tm *tilemap.Map, delta fixed.Fixed, isX bool) bool {
	var box tilemap.AABB
	if isX {
		box = boxAt(core, core.PosX.Add(delta), core.PosY)
	} else {
		box = boxAt(core, core.PosX, core.PosY.Add(delta))
	}
	return tm.OverlapsSolid(box)
}

// correct implements Phase C: if the post-move AABB overlaps a solid
// tile, push the entity back along the minimum-penetration axis,
// honoring MaxCorrectionPixels and the velocity/center-of-map tie-break.
func correct(core *entity.EntityCore, tm *tilemap.Map) []Warning {
	box := boxAt(core, core.PosX, core.PosY)
	if !tm.OverlapsSolid(box) {
		return nil
	}

	penX, dirX := penetration(core, tm, true)
	penY, dirY := penetration(core, tm, false)

	axis := tilemap.AxisX
	pen := penX
	dir := dirX
	switch {
	case penY.Cmp(penX) < 0:
		axis, pen, dir = tilemap.AxisY, penY, dirY
	case penY.Cmp(penX) == 0:
		// Tie-break: prefer pushing against the velocity direction.
		if axisPreferred(core, tm) == tilemap.AxisY {
			axis, pen, dir = tilemap.AxisY, penY, dirY
		}
	}

	cap := fixed.FromInt(MaxCorrectionPixels)
	if pen.Cmp(cap) > 0 {
		return []Warning{{Axis: axis, Penetration: pen}}
	}

	push := pen.Mul(fixed.FromInt(dir))
	if axis == tilemap.AxisX {
		core.PosX = core.PosX.Add(push)
	} else {
		core.PosY = core.PosY.Add(push)
	}
	return nil
}

// penetration estimates how far the entity must move along one axis to
// clear solid tiles, and in which direction (-1 or +1), by sweeping the
// reverse direction until clear. It probes both directions and returns
// the smaller of the two pushes.
func penetration(core *entity.EntityCore, tm *tilemap.Map, isX bool) (fixed.Fixed, int) {
	const probe = MaxCorrectionPixels + 1

	pushNeg := findClear(core, tm, isX, -1, probe)
	pushPos := findClear(core, tm, isX, 1, probe)

	if pushNeg.Cmp(pushPos) <= 0 {
		return pushNeg, -1
	}
	return pushPos, 1
}

// findClear returns the smallest nonnegative pixel distance in direction
// dir (-1 or +1) along the chosen axis such that the box is no longer
// overlapping a solid tile, capped at maxProbe (returned as maxProbe+1
// if not found within the probe range, which correct() then rejects via
// MaxCorrectionPixels).
func findClear(core *entity.EntityCore, tm *tilemap.Map, isX bool, dir, maxProbe int) fixed.Fixed {
	for d := 0; d <= maxProbe; d++ {
		delta := fixed.FromInt(d * dir)
		var box tilemap.AABB
		if isX {
			box = boxAt(core, core.PosX.Add(delta), core.PosY)
		} else {
			box = boxAt(core, core.PosX, core.PosY.Add(delta))
		}
		if !tm.OverlapsSolid(box) {
			return fixed.FromInt(d)
		}
	}
	return fixed.FromInt(maxProbe + 1)
}

// axisPreferred breaks a correction tie by favoring the axis with
// nonzero velocity (Y first); if both are zero it favors X when the
// entity's left edge is left of the map's horizontal center, and Y
// otherwise.
func axisPreferred(core *entity.EntityCore, tm *tilemap.Map) tilemap.Axis {
	if !core.VelY.IsZero() {
		return tilemap.AxisY
	}
	if !core.VelX.IsZero() {
		return tilemap.AxisX
	}
	center, err := tm.WidthPixels().Div(fixed.FromInt(2))
	if err != nil {
		return tilemap.AxisY
	}
	if core.PosX.Cmp(center) < 0 {
		return tilemap.AxisX
	}
	return tilemap.AxisY
}

// deriveFlags implements Phase D and E: probes a one-pixel strip outside
// each face for solid contact, and updates Collision accordingly.
func deriveFlags(core *entity.EntityCore, tm *tilemap.Map) {
	box := boxAt(core, core.PosX, core.PosY)
	onePixel := fixed.FromInt(1)

	top := tilemap.AABB{MinX: box.MinX, MaxX: box.MaxX, MinY: box.MinY.Sub(onePixel), MaxY: box.MinY}
	bottom := tilemap.AABB{MinX: box.MinX, MaxX: box.MaxX, MinY: box.MaxY, MaxY: box.MaxY.Add(onePixel)}
	left := tilemap.AABB{MinX: box.MinX.Sub(onePixel), MaxX: box.MinX, MinY: box.MinY, MaxY: box.MaxY}
	right := tilemap.AABB{MinX: box.MaxX, MaxX: box.MaxX.Add(onePixel), MinY: box.MinY, MaxY: box.MaxY}

	core.Collision.Top = tm.OverlapsSolid(top) || tm.OverlapsSolid(expand(box, tilemap.AxisY, -1))
	core.Collision.Bottom = tm.OverlapsSolid(bottom) || tm.OverlapsSolid(expand(box, tilemap.AxisY, 1))
	core.Collision.Left = tm.OverlapsSolid(left) || tm.OverlapsSolid(expand(box, tilemap.AxisX, -1))
	core.Collision.Right = tm.OverlapsSolid(right) || tm.OverlapsSolid(expand(box, tilemap.AxisX, 1))
}

// expand grows box by Epsilon along axis in direction dir, used so a
// resting entity within Epsilon of a face keeps that face's flag set.
func expand(box tilemap.AABB, axis tilemap.Axis, dir int) tilemap.AABB {
	delta := Epsilon.Mul(fixed.FromInt(dir))
	expanded := box
	switch axis {
	case tilemap.AxisY:
		if dir < 0 {
			expanded.MinY = expanded.MinY.Add(delta)
		} else {
			expanded.MaxY = expanded.MaxY.Add(delta)
		}
	case tilemap.AxisX:
		if dir < 0 {
			expanded.MinX = expanded.MinX.Add(delta)
		} else {
			expanded.MaxX = expanded.MaxX.Add(delta)
		}
	}
	return expanded
}

// Grounded reports the Phase E grounded predicate for core given its own
// gravity multiplier.
func Grounded(core *entity.EntityCore) bool {
	switch core.Direction.GravityMultiplier() {
	case 1:
		return core.Collision.Bottom
	case -1:
		return core.Collision.Top
	default:
		return core.Collision.Top || core.Collision.Bottom
	}
}

// WallLeaning reports the IS_WALL_LEANING predicate.
func WallLeaning(core *entity.EntityCore) bool {
	return core.Collision.Left || core.Collision.Right
}
