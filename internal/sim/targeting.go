package sim

import (
	"forgeengine/internal/entity"
	"forgeengine/internal/fixed"
	"forgeengine/internal/group"
)

// acquireTargets runs the automatic target-acquisition pass: every
// character's TargetID/HasTarget/TargetType is recomputed fresh each
// frame against the live roster, so READ_CHARACTER_PROPERTY/
// WRITE_CHARACTER_PROPERTY always resolve against the current fight
// rather than a target that may since have left the group roster or
// died.
//
// A character with no group (never joined, or left) has no enemies by
// group.Registry's AreEnemies rule and so never acquires a target.
func (g *GameState) acquireTargets() {
	for _, c := range g.characters {
		target := bestTarget(c, g.characters, g.Groups)
		if target == nil {
			c.HasTarget = false
			c.TargetID = 0
			c.TargetType = 0
			continue
		}
		c.HasTarget = true
		c.TargetID = target.ID
		c.TargetType = targetTypeCharacter
	}
}

// targetTypeCharacter is the only TargetType this engine's automatic
// acquisition produces; a future spawn-targeting rule would add a
// second value here without disturbing this one.
const targetTypeCharacter = 1

// bestTarget picks self's preferred enemy: highest Enmity first, then
// nearest by squared distance, then lowest character ID, so the result
// is fully deterministic across identical frames. A dead (Health == 0)
// character is never selected.
func bestTarget(self *entity.Character, roster []*entity.Character, groups *group.Registry) *entity.Character {
	var best *entity.Character
	var bestDist fixed.Fixed

	for _, other := range roster {
		if other.ID == self.ID || other.Health == 0 {
			continue
		}
		if !groups.AreEnemies(self.ID, other.ID) {
			continue
		}

		dist := squaredDistance(self, other)
		if best == nil || better(other, dist, best, bestDist) {
			best = other
			bestDist = dist
		}
	}
	return best
}

// better reports whether candidate (at candDist) outranks incumbent (at
// incDist) by the tie-break order: Enmity descending, distance
// ascending, ID ascending.
func better(candidate *entity.Character, candDist fixed.Fixed, incumbent *entity.Character, incDist fixed.Fixed) bool {
	if candidate.Enmity != incumbent.Enmity {
		return candidate.Enmity > incumbent.Enmity
	}
	if cmp := candDist.Cmp(incDist); cmp != 0 {
		return cmp < 0
	}
	return candidate.ID < incumbent.ID
}

func squaredDistance(a, b *entity.Character) fixed.Fixed {
	dx := a.PosX.Sub(b.PosX)
	dy := a.PosY.Sub(b.PosY)
	return dx.Mul(dx).Add(dy.Mul(dy))
}
