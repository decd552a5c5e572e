package entity

import "forgeengine/internal/fixed"

// HitboxKind selects the collision-shape test a spawn's Hitbox applies
// against a candidate target point, beyond plain AABB overlap.
type HitboxKind uint8

const (
	// HitboxAABB means no shape test is configured; the caller falls back
	// to the spawn instance's own axis-aligned bounding box.
	HitboxAABB HitboxKind = iota
	HitboxCircle
	HitboxArc
	HitboxLine
)

// Hitbox describes a directional collision shape, tested from a spawn
// instance's own position against a target point. Range and Width share
// the simulation's fixed-point world units. Arc and Line are one-sided:
// they only ever face the instance's Direction.Horizontal, since this is
// a side-view platformer with no omnidirectional facing to sweep
// against.
type Hitbox struct {
	Kind  HitboxKind
	Range fixed.Fixed
	Width fixed.Fixed
}

// Contains reports whether a target at (targetX, targetY) falls inside
// h, tested from an origin at (originX, originY) facing right when
// facingRight is true. Circle ignores facing. Arc is a triangular cone
// whose lateral tolerance grows linearly with forward distance, up to
// Width at Range — the fixed-point stand-in for an angular sweep. Line
// is a constant-width forward band, for a narrow thrust.
func (h Hitbox) Contains(originX, originY fixed.Fixed, facingRight bool, targetX, targetY fixed.Fixed) bool {
	dx := targetX.Sub(originX)
	dy := targetY.Sub(originY)

	switch h.Kind {
	case HitboxCircle:
		distSq := dx.Mul(dx).Add(dy.Mul(dy))
		rangeSq := h.Range.Mul(h.Range)
		return distSq.Cmp(rangeSq) <= 0

	case HitboxArc:
		forward := forwardDistance(dx, facingRight)
		if forward.Sign() < 0 || forward.Cmp(h.Range) > 0 {
			return false
		}
		if h.Range.IsZero() {
			return dy.IsZero()
		}
		tolerance, err := h.Width.Mul(forward).Div(h.Range)
		if err != nil {
			return false
		}
		return dy.Abs().Cmp(tolerance) <= 0

	case HitboxLine:
		forward := forwardDistance(dx, facingRight)
		if forward.Sign() < 0 || forward.Cmp(h.Range) > 0 {
			return false
		}
		return dy.Abs().Cmp(h.Width) <= 0

	default:
		return false
	}
}

// forwardDistance projects dx onto the facing direction, so a target
// behind the origin never satisfies Arc or Line regardless of distance.
func forwardDistance(dx fixed.Fixed, facingRight bool) fixed.Fixed {
	if facingRight {
		return dx
	}
	return dx.Negate()
}
