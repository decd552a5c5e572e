package simconfig

import (
	"forgeengine/internal/entity"
	"forgeengine/internal/fixed"
	"forgeengine/internal/tilemap"
)

// Definitions holds the four immutable definition tables plus the
// tilemap and gravity, keyed by id for O(1) lookup during scheduling,
// spawn creation, and status-effect application.
type Definitions struct {
	Tilemap       *tilemap.Map
	Gravity       fixed.Fixed
	Seed          uint32
	Actions       map[uint8]*entity.ActionDefinition
	Conditions    map[uint8]*entity.ConditionDefinition
	Spawns        map[uint8]*entity.SpawnDefinition
	StatusEffects map[uint8]*entity.StatusEffectDefinition
}

// ActionByID, ConditionByID, SpawnDefByID, and StatusEffectDefByID
// satisfy the lookup interfaces internal/scheduler, internal/spawn, and
// internal/statuseffect each declare against Definitions/GameView.
func (d *Definitions) ActionByID(id uint8) (*entity.ActionDefinition, bool) {
	a, ok := d.Actions[id]
	return a, ok
}

func (d *Definitions) ConditionByID(id uint8) (*entity.ConditionDefinition, bool) {
	c, ok := d.Conditions[id]
	return c, ok
}

func (d *Definitions) SpawnDefByID(id uint8) (*entity.SpawnDefinition, bool) {
	s, ok := d.Spawns[id]
	return s, ok
}

func (d *Definitions) StatusEffectDefByID(id uint8) (*entity.StatusEffectDefinition, bool) {
	se, ok := d.StatusEffects[id]
	return se, ok
}

// Build constructs the runtime Definitions table and initial character
// roster from an already-Validate'd blob. Build does not itself
// validate; callers must call Validate first so that construction never
// has to reject a partially-built game.
func Build(b *Blob) (*Definitions, []*entity.Character) {
	defs := &Definitions{
		Tilemap:       buildTilemap(b.Tilemap),
		Gravity:       toFixed(b.Gravity),
		Seed:          b.Seed,
		Actions:       make(map[uint8]*entity.ActionDefinition, len(b.Actions)),
		Conditions:    make(map[uint8]*entity.ConditionDefinition, len(b.Conditions)),
		Spawns:        make(map[uint8]*entity.SpawnDefinition, len(b.Spawns)),
		StatusEffects: make(map[uint8]*entity.StatusEffectDefinition, len(b.StatusEffects)),
	}

	for _, a := range b.Actions {
		defs.Actions[a.ID] = &entity.ActionDefinition{
			ID:         a.ID,
			EnergyCost: a.EnergyCost,
			Cooldown:   a.Cooldown,
			Args:       a.Args,
			Spawns:     a.Spawns,
			Script:     a.Script,
		}
	}

	for _, c := range b.Conditions {
		defs.Conditions[c.ID] = &entity.ConditionDefinition{
			ID:        c.ID,
			EnergyMul: toFixed(c.EnergyMul),
			Args:      c.Args,
			Script:    c.Script,
		}
	}

	for _, s := range b.Spawns {
		defs.Spawns[s.ID] = &entity.SpawnDefinition{
			ID:               s.ID,
			Size:             entity.Size{Width: s.Width, Height: s.Height},
			InitialVelX:      toFixed(s.InitialVelX),
			InitialVelY:      toFixed(s.InitialVelY),
			InitialDirection: direction(s.InitialDirection),
			InitialLifespan:  s.InitialLifespan,
			TickScript:       s.TickScript,
			Hitbox: entity.Hitbox{
				Kind:  entity.HitboxKind(s.HitboxKind),
				Range: toFixed(s.HitboxRange),
				Width: toFixed(s.HitboxWidth),
			},
		}
	}

	for _, se := range b.StatusEffects {
		defs.StatusEffects[se.ID] = &entity.StatusEffectDefinition{
			ID:         se.ID,
			StackLimit: se.StackLimit,
			Duration:   se.Duration,
			OnScript:   se.OnScript,
			TickScript: se.TickScript,
			OffScript:  se.OffScript,
		}
	}

	characters := make([]*entity.Character, 0, len(b.Characters))
	for _, cb := range b.Characters {
		ch := entity.NewCharacter(cb.ID)
		ch.Group = cb.Group
		ch.PosX = toFixed(cb.PosX)
		ch.PosY = toFixed(cb.PosY)
		ch.Size = entity.Size{Width: cb.Width, Height: cb.Height}
		ch.Direction = direction(cb.Direction)
		ch.Weight = cb.Weight

		ch.HealthCap = cb.HealthCap
		ch.Health = cb.HealthCap
		ch.EnergyCap = cb.EnergyCap
		ch.Energy = cb.EnergyCap
		ch.Power = cb.Power

		ch.JumpForce = toFixed(cb.JumpForce)
		ch.MoveSpeed = toFixed(cb.MoveSpeed)
		ch.Armor = cb.Armor

		ch.EnergyRegen = cb.EnergyRegen
		ch.EnergyRegenRate = cb.EnergyRegenRate
		ch.EnergyChargeRate = cb.EnergyChargeRate

		for _, bh := range cb.Behaviors {
			ch.Behaviors = append(ch.Behaviors, entity.Behavior{ConditionID: bh.ConditionID, ActionID: bh.ActionID})
		}

		characters = append(characters, ch)
	}

	return defs, characters
}
