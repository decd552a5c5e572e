package simconfig

import (
	"fmt"

	"forgeengine/internal/entity"
	"forgeengine/internal/errkind"
)

// Validate checks every rule the external interfaces section requires
// before any runtime entity is built: referenced ids exist, the tilemap
// is rectangular, table sizes are within limits, every script is
// parseable opcode-by-opcode, and every fixed-point pair has a nonzero
// denominator. Returns the first violation found, wrapped as
// errkind.ConfigInvalid; nil means the blob is safe to build from.
func Validate(b *Blob) error {
	if err := validateTilemap(b.Tilemap); err != nil {
		return err
	}
	if len(b.Characters) > MaxCharacters {
		return invalid(fmt.Sprintf("%d characters exceeds limit of %d", len(b.Characters), MaxCharacters))
	}
	if len(b.Actions) > MaxDefs || len(b.Conditions) > MaxDefs || len(b.Spawns) > MaxDefs || len(b.StatusEffects) > MaxDefs {
		return invalid("a definition table exceeds the configured limit")
	}

	actionIDs := make(map[uint8]bool, len(b.Actions))
	for _, a := range b.Actions {
		if actionIDs[a.ID] {
			return invalid(fmt.Sprintf("duplicate action id %d", a.ID))
		}
		actionIDs[a.ID] = true
		if !scriptOpcodesValid(a.Script) {
			return invalid(fmt.Sprintf("action %d: script fails to parse", a.ID))
		}
	}

	conditionIDs := make(map[uint8]bool, len(b.Conditions))
	for _, c := range b.Conditions {
		if conditionIDs[c.ID] {
			return invalid(fmt.Sprintf("duplicate condition id %d", c.ID))
		}
		conditionIDs[c.ID] = true
		if c.EnergyMul.Den == 0 {
			return invalid(fmt.Sprintf("condition %d: energy_mul has zero denominator", c.ID))
		}
		if !scriptOpcodesValid(c.Script) {
			return invalid(fmt.Sprintf("condition %d: script fails to parse", c.ID))
		}
	}

	spawnIDs := make(map[uint8]bool, len(b.Spawns))
	for _, s := range b.Spawns {
		if spawnIDs[s.ID] {
			return invalid(fmt.Sprintf("duplicate spawn id %d", s.ID))
		}
		spawnIDs[s.ID] = true
		if s.InitialVelX.Den == 0 || s.InitialVelY.Den == 0 {
			return invalid(fmt.Sprintf("spawn %d: initial velocity has zero denominator", s.ID))
		}
		if s.HitboxKind > uint8(entity.HitboxLine) {
			return invalid(fmt.Sprintf("spawn %d: hitbox_kind %d is not a recognized shape", s.ID, s.HitboxKind))
		}
		if s.HitboxKind != uint8(entity.HitboxAABB) && (s.HitboxRange.Den == 0 || s.HitboxWidth.Den == 0) {
			return invalid(fmt.Sprintf("spawn %d: hitbox range/width has zero denominator", s.ID))
		}
		if !scriptOpcodesValid(s.TickScript) {
			return invalid(fmt.Sprintf("spawn %d: tick_script fails to parse", s.ID))
		}
	}

	for _, a := range b.Actions {
		for _, sID := range a.Spawns {
			if sID != 0 && !spawnIDs[sID] {
				return invalid(fmt.Sprintf("action %d references unknown spawn id %d", a.ID, sID))
			}
		}
	}

	statusEffectIDs := make(map[uint8]bool, len(b.StatusEffects))
	for _, se := range b.StatusEffects {
		if statusEffectIDs[se.ID] {
			return invalid(fmt.Sprintf("duplicate status effect id %d", se.ID))
		}
		statusEffectIDs[se.ID] = true
		if !scriptOpcodesValid(se.OnScript) || !scriptOpcodesValid(se.TickScript) || !scriptOpcodesValid(se.OffScript) {
			return invalid(fmt.Sprintf("status effect %d: a script fails to parse", se.ID))
		}
	}

	if b.Gravity.Den == 0 {
		return invalid("gravity has zero denominator")
	}

	characterIDs := make(map[uint16]bool, len(b.Characters))
	for _, ch := range b.Characters {
		if characterIDs[ch.ID] {
			return invalid(fmt.Sprintf("duplicate character id %d", ch.ID))
		}
		characterIDs[ch.ID] = true

		if len(ch.Behaviors) > MaxBehaviors {
			return invalid(fmt.Sprintf("character %d: %d behaviors exceeds limit of %d", ch.ID, len(ch.Behaviors), MaxBehaviors))
		}
		for _, bh := range ch.Behaviors {
			if !conditionIDs[bh.ConditionID] {
				return invalid(fmt.Sprintf("character %d: behavior references unknown condition id %d", ch.ID, bh.ConditionID))
			}
			if !actionIDs[bh.ActionID] {
				return invalid(fmt.Sprintf("character %d: behavior references unknown action id %d", ch.ID, bh.ActionID))
			}
		}

		for _, pair := range []FixedPair{ch.PosX, ch.PosY, ch.JumpForce, ch.MoveSpeed} {
			if pair.Den == 0 {
				return invalid(fmt.Sprintf("character %d: a fixed-point field has zero denominator", ch.ID))
			}
		}
	}

	return nil
}

func validateTilemap(rows [][]uint8) error {
	if len(rows) == 0 {
		return invalid("tilemap has no rows")
	}
	cols := len(rows[0])
	if cols == 0 {
		return invalid("tilemap rows have no columns")
	}
	for r, row := range rows {
		if len(row) != cols {
			return invalid(fmt.Sprintf("tilemap row %d has %d columns, want %d (ragged grid)", r, len(row), cols))
		}
	}
	return nil
}

func invalid(reason string) error {
	return &errkind.ConfigInvalid{Reason: reason}
}
