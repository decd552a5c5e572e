// Package spawn implements the spawn-instance lifecycle: creation by the
// SPAWN opcode family, per-frame tick-script execution followed by
// physics, lifespan decay, and deferred destruction.
package spawn

import (
	"forgeengine/internal/entity"
	"forgeengine/internal/errkind"
	"forgeengine/internal/fixed"
	"forgeengine/internal/physics"
	"forgeengine/internal/scriptctx"
	"forgeengine/internal/tilemap"
	"forgeengine/internal/vm"
)

// Pool holds every live SpawnInstance for one game, capped at Max —
// exceeding it yields errkind.ResourceExhausted, which the caller must
// log and otherwise ignore rather than fail the tick.
type Pool struct {
	instances []*entity.SpawnInstance
	Max       int
}

// NewPool builds an empty pool capped at max live instances.
func NewPool(max int) *Pool {
	return &Pool{Max: max}
}

// Instances returns the live instances in creation order. The slice must
// not be mutated by the caller beyond what Tick/Prune already do.
func (p *Pool) Instances() []*entity.SpawnInstance {
	return p.instances
}

// Len reports the current live instance count.
func (p *Pool) Len() int {
	return len(p.instances)
}

// Create instantiates a SpawnInstance owned by owner from def, at the
// owner's current position: initial velocity, direction, and size come
// from the definition; lifespan is the definition's initial value.
func (p *Pool) Create(owner *entity.Character, def *entity.SpawnDefinition, vars [4]byte) error {
	if len(p.instances) >= p.Max {
		return &errkind.ResourceExhausted{What: "spawns"}
	}
	inst := &entity.SpawnInstance{
		EntityCore: entity.EntityCore{
			PosX:      owner.PosX,
			PosY:      owner.PosY,
			VelX:      def.InitialVelX,
			VelY:      def.InitialVelY,
			Size:      def.Size,
			Direction: def.InitialDirection,
		},
		DefinitionID:      def.ID,
		OwnerID:           owner.ID,
		LifespanRemaining: def.InitialLifespan,
		Vars:              vars,
	}
	p.instances = append(p.instances, inst)
	return nil
}

// Defs resolves a SpawnDefinition by id, the only per-instance lookup
// Tick needs beyond the definition each instance already carries its id
// for.
type Defs interface {
	SpawnDefByID(id uint8) (*entity.SpawnDefinition, bool)
}

// TickOutcome reports one instance's tick-script result, for the
// caller's error journal.
type TickOutcome struct {
	InstanceIndex int
	ScriptErr     error
	Warnings      []physics.Warning
}

// Tick runs the hit-target resolution, then the tick script (if any),
// then the physics kernel, then lifespan decay for every live instance,
// in list order. ownerOf resolves the owning character for a spawn's
// script context; a missing owner leaves the context owner-less
// (scriptctx.SpawnContext tolerates a nil Owner). Physics runs against the
// instance's own EntityCore with the gravity argument either way.
// characters is the full roster, scanned in list order for hit-target
// resolution against def.Hitbox.
func (p *Pool) Tick(defs Defs, game scriptctx.GameView, gravity fixed.Fixed, tm *tilemap.Map, ownerOf func(id uint16) (*entity.Character, bool), characters []*entity.Character) []TickOutcome {
	var outcomes []TickOutcome

	for i, inst := range p.instances {
		if inst.Removed {
			continue
		}

		def, ok := defs.SpawnDefByID(inst.DefinitionID)
		if !ok {
			inst.Removed = true
			continue
		}

		owner, _ := ownerOf(inst.OwnerID)

		resolveHitTarget(inst, def, characters)

		if len(def.TickScript) > 0 {
			ctx := &scriptctx.SpawnContext{Owner: owner, Instance: inst, Def: def, Game: game}
			m := vm.New(def.TickScript, ctx, uint16(inst.DefinitionID))
			if _, err := m.Run(); err != nil {
				outcomes = append(outcomes, TickOutcome{InstanceIndex: i, ScriptErr: err})
			}
		}

		warnings := physics.Step(&inst.EntityCore, gravity, tm)
		if len(warnings) > 0 {
			outcomes = append(outcomes, TickOutcome{InstanceIndex: i, Warnings: warnings})
		}

		if inst.LifespanRemaining > 0 {
			inst.LifespanRemaining--
		}
		if inst.LifespanRemaining == 0 {
			inst.Removed = true
		}
	}

	return outcomes
}

// Prune compacts out every instance marked Removed, implementing the
// deferred-removal rule: in-flight iteration during Tick never observes
// a half-destroyed instance, because removal only takes effect here,
// after the whole pass completes.
func (p *Pool) Prune() {
	live := p.instances[:0]
	for _, inst := range p.instances {
		if !inst.Removed {
			live = append(live, inst)
		}
	}
	p.instances = live
}

// resolveHitTarget recomputes inst's hit target for this frame, exposing
// spawn-vs-character collision to the tick script via
// AddrSpawnHasHitTarget/AddrSpawnHitTarget{Low,High} without the core
// hard-coding any damage formula: the script decides what a hit means.
// def.Hitbox.Kind == HitboxAABB falls back to plain bounding-box overlap
// against each character's own size; any other kind uses a directional
// point test instead. The roster is scanned in list order and the first
// match wins, so the result is deterministic; the spawn's own owner is
// never a valid hit target.
func resolveHitTarget(inst *entity.SpawnInstance, def *entity.SpawnDefinition, characters []*entity.Character) {
	inst.HasHitTarget = false
	inst.HitTargetID = 0

	instBox := tilemap.AABB{
		MinX: inst.PosX,
		MinY: inst.PosY,
		MaxX: inst.PosX.Add(fixed.FromInt(int(inst.Size.Width))),
		MaxY: inst.PosY.Add(fixed.FromInt(int(inst.Size.Height))),
	}
	facingRight := inst.Direction.Horizontal != entity.DirNegative

	for _, c := range characters {
		if c.ID == inst.OwnerID {
			continue
		}

		var hit bool
		if def.Hitbox.Kind == entity.HitboxAABB {
			charBox := tilemap.AABB{
				MinX: c.PosX,
				MinY: c.PosY,
				MaxX: c.PosX.Add(fixed.FromInt(int(c.Size.Width))),
				MaxY: c.PosY.Add(fixed.FromInt(int(c.Size.Height))),
			}
			hit = aabbOverlap(instBox, charBox)
		} else {
			hit = def.Hitbox.Contains(inst.PosX, inst.PosY, facingRight, c.PosX, c.PosY)
		}

		if hit {
			inst.HitTargetID = c.ID
			inst.HasHitTarget = true
			return
		}
	}
}

func aabbOverlap(a, b tilemap.AABB) bool {
	return a.MinX.Cmp(b.MaxX) < 0 && a.MaxX.Cmp(b.MinX) > 0 &&
		a.MinY.Cmp(b.MaxY) < 0 && a.MaxY.Cmp(b.MinY) > 0
}
