// Package statuseffect implements the status-effect instance lifecycle:
// application (stacking up to the definition's limit, refresh at the
// limit, no per-definition reject option), the per-frame tick
// script, and deferred removal running the off script exactly once.
package statuseffect

import (
	"forgeengine/internal/entity"
	"forgeengine/internal/errkind"
	"forgeengine/internal/scriptctx"
	"forgeengine/internal/vm"
)

// MaxPerCharacter bounds how many status effect instances one character
// may carry at once.
const MaxPerCharacter = 32

// Apply attaches def to target. If the character already carries an
// instance of the same definition, stacking is bounded by stack_limit —
// within the limit the stack count increases and on_script runs again;
// at the limit the existing instance is refreshed (duration reset)
// rather than rejected outright, since a reapplied burn should not
// quietly do nothing.
func Apply(target *entity.Character, def *entity.StatusEffectDefinition, frame uint32, game scriptctx.GameView) error {
	for _, inst := range target.StatusEffects {
		if inst.Removed || inst.DefinitionID != def.ID {
			continue
		}
		if inst.StackCount < def.StackLimit {
			inst.StackCount++
			inst.RemainingDuration = def.Duration
			return runScript(def.OnScript, target, def, inst, game)
		}
		inst.RemainingDuration = def.Duration
		return nil
	}

	if len(target.StatusEffects) >= MaxPerCharacter {
		return &errkind.ResourceExhausted{What: "status_effects"}
	}

	inst := &entity.StatusEffectInstance{
		DefinitionID:      def.ID,
		RemainingDuration: def.Duration,
		StackCount:        1,
	}
	target.StatusEffects = append(target.StatusEffects, inst)
	return runScript(def.OnScript, target, def, inst, game)
}

// Defs resolves a StatusEffectDefinition by id.
type Defs interface {
	StatusEffectDefByID(id uint8) (*entity.StatusEffectDefinition, bool)
}

// Tick runs every live instance's tick script in insertion order,
// decrements RemainingDuration, and runs off_script exactly once for any
// instance that reaches zero — all removals are deferred to Prune so
// iteration here never observes a half-destroyed instance.
func Tick(c *entity.Character, defs Defs, game scriptctx.GameView) []error {
	var errs []error

	for _, inst := range c.StatusEffects {
		if inst.Removed {
			continue
		}
		def, ok := defs.StatusEffectDefByID(inst.DefinitionID)
		if !ok {
			inst.Removed = true
			continue
		}

		if len(def.TickScript) > 0 {
			if err := runScript(def.TickScript, c, def, inst, game); err != nil {
				errs = append(errs, err)
			}
		}

		if inst.RemainingDuration > 0 {
			inst.RemainingDuration--
		}
		if inst.RemainingDuration == 0 {
			if err := runScript(def.OffScript, c, def, inst, game); err != nil {
				errs = append(errs, err)
			}
			inst.Removed = true
		}
	}

	return errs
}

// Remove marks every live instance of def on c for removal and runs its
// off_script immediately, for explicit removal triggered outside the
// normal duration countdown (e.g. a cleanse effect). The instance is not
// compacted out of c.StatusEffects until Prune runs.
func Remove(c *entity.Character, def *entity.StatusEffectDefinition, game scriptctx.GameView) error {
	var err error
	for _, inst := range c.StatusEffects {
		if inst.Removed || inst.DefinitionID != def.ID {
			continue
		}
		if e := runScript(def.OffScript, c, def, inst, game); e != nil {
			err = e
		}
		inst.Removed = true
	}
	return err
}

// Prune compacts out every instance marked Removed.
func Prune(c *entity.Character) {
	live := c.StatusEffects[:0]
	for _, inst := range c.StatusEffects {
		if !inst.Removed {
			live = append(live, inst)
		}
	}
	c.StatusEffects = live
}

func runScript(script []byte, c *entity.Character, def *entity.StatusEffectDefinition, inst *entity.StatusEffectInstance, game scriptctx.GameView) error {
	if len(script) == 0 {
		return nil
	}
	ctx := &scriptctx.StatusEffectContext{Character: c, Effect: def, Instance: inst, Game: game}
	m := vm.New(script, ctx, uint16(def.ID))
	_, err := m.Run()
	return err
}
