// Package scheduler implements the per-character, per-frame behavior
// selection rules: energy regeneration, the locked-action shortcut,
// priority-ordered condition evaluation with cooldown/energy gating, and
// the single-behavior-per-frame tie-break.
package scheduler

import (
	"forgeengine/internal/entity"
	"forgeengine/internal/fixed"
	"forgeengine/internal/scriptctx"
	"forgeengine/internal/vm"
)

// Definitions resolves the action/condition tables a running game holds,
// kept separate from scriptctx.GameView because those lookups are
// config-wide rather than per-entity.
type Definitions interface {
	ActionByID(id uint8) (*entity.ActionDefinition, bool)
	ConditionByID(id uint8) (*entity.ConditionDefinition, bool)
}

// Outcome reports what the scheduler did for one character on one frame,
// for the caller's error journal.
type Outcome struct {
	Selected  bool
	ActionID  uint8
	Locked    bool
	ScriptErr error
}

// Run executes the full behavior-scheduler pass for one character on the
// given frame: energy regeneration, the locked-action shortcut, then
// priority-ordered condition evaluation with cooldown/energy gating and a
// single-behavior tie-break.
func Run(c *entity.Character, defs Definitions, game scriptctx.GameView, frame uint32) Outcome {
	regen(c, frame)
	charge(c, frame)

	if c.HasLockedAction {
		return runLocked(c, defs, game, frame)
	}

	for _, b := range c.Behaviors {
		action, ok := defs.ActionByID(b.ActionID)
		if !ok {
			continue
		}
		condition, ok := defs.ConditionByID(b.ConditionID)
		if !ok {
			continue
		}

		cost := effectiveCost(action.EnergyCost, condition.EnergyMul)
		if c.Energy < cost {
			continue
		}
		if c.IsOnCooldown(b.ActionID, action.Cooldown, frame) {
			continue
		}
		if !evalCondition(c, condition, b.ConditionID, game) {
			continue
		}

		err := runAction(c, action, b.ActionID, cost, frame, game)
		return Outcome{Selected: true, ActionID: b.ActionID, ScriptErr: err}
	}

	return Outcome{}
}

// regen implements step 1: energy regeneration on the configured cadence.
func regen(c *entity.Character, frame uint32) {
	if c.EnergyRegenRate == 0 {
		return
	}
	if frame%uint32(c.EnergyRegenRate) != 0 {
		return
	}
	sum := int(c.Energy) + int(c.EnergyRegen)
	if sum > int(c.EnergyCap) {
		sum = int(c.EnergyCap)
	}
	c.Energy = byte(sum)
}

// charge implements the energy_charge counterpart to regen: a byte
// accumulator with no cap field, saturating at 255, incremented on its own
// cadence, for scripts that gate a high-cost action on a charge-up period
// (READ_PROP of CHARACTER_ENERGY_CHARGE and a compare; EXIT_IF_NO_ENERGY
// tests only the Energy pool) rather than the capped, cap-gated Energy
// pool regen() replenishes.
func charge(c *entity.Character, frame uint32) {
	if c.EnergyChargeRate == 0 {
		return
	}
	if frame%uint32(c.EnergyChargeRate) != 0 {
		return
	}
	if c.EnergyCharge != 255 {
		c.EnergyCharge++
	}
}

// effectiveCost computes action.energy_cost * condition.energy_mul,
// truncated and saturated to a byte.
func effectiveCost(base uint8, mul fixed.Fixed) byte {
	product := fixed.FromInt(int(base)).Mul(mul)
	return byte(product.SaturatingInt(0, 255))
}

func runLocked(c *entity.Character, defs Definitions, game scriptctx.GameView, frame uint32) Outcome {
	action, ok := defs.ActionByID(c.LockedActionID)
	if !ok {
		return Outcome{Locked: true}
	}
	err := runAction(c, action, c.LockedActionID, action.EnergyCost, frame, game)
	return Outcome{Selected: true, Locked: true, ActionID: c.LockedActionID, ScriptErr: err}
}

func evalCondition(c *entity.Character, def *entity.ConditionDefinition, conditionID uint8, game scriptctx.GameView) bool {
	ctx := &scriptctx.ConditionContext{Character: c, Condition: def, Game: game}
	m := vm.New(def.Script, ctx, uint16(conditionID))
	result, err := m.Run()
	if err != nil {
		// A script failure during condition evaluation is treated as
		// false rather than propagated.
		return false
	}
	return result != 0
}

func runAction(c *entity.Character, def *entity.ActionDefinition, actionID uint8, cost byte, frame uint32, game scriptctx.GameView) error {
	ctx := &scriptctx.ActionContext{
		Character:     c,
		Action:        def,
		ActionID:      actionID,
		EffectiveCost: cost,
		Frame:         frame,
		Game:          game,
	}
	m := vm.New(def.Script, ctx, uint16(actionID))
	_, err := m.Run()
	return err
}
