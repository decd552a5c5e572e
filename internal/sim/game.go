// Package sim ties the fixed-point, VM, scheduler, physics, spawn, and
// status-effect packages into the per-frame tick orchestrator: GameState
// owns every mutable piece of one running game and implements
// scriptctx.GameView so scripts can reach it.
package sim

import (
	"forgeengine/internal/entity"
	"forgeengine/internal/errkind"
	"forgeengine/internal/fixed"
	"forgeengine/internal/group"
	"forgeengine/internal/physics"
	"forgeengine/internal/rng"
	"forgeengine/internal/scheduler"
	"forgeengine/internal/scriptctx"
	"forgeengine/internal/simconfig"
	"forgeengine/internal/spawn"
	"forgeengine/internal/statuseffect"
	"forgeengine/internal/tilemap"
)

// MaxSpawns bounds the live spawn pool.
const MaxSpawns = 1024

var _ scriptctx.GameView = (*GameState)(nil)

// pendingSpawn is a queued SPAWN/SPAWN_WITH_VARS request. Creation is
// deferred to the end of the frame (step 4 of the tick orchestrator) so
// that no script observes a partially-updated world of its peers.
type pendingSpawn struct {
	ownerID uint16
	def     *entity.SpawnDefinition
	vars    [4]byte
}

// GameState is one running game: frame counter, RNG stream, gravity,
// tilemap, immutable definition tables, the character roster (in the
// list order the determinism contract requires), the live spawn pool,
// affiliation groups, and the event journal.
type GameState struct {
	frame uint32
	seed  uint32
	rng   *rng.State

	defs       *simconfig.Definitions
	characters []*entity.Character
	byID       map[uint16]*entity.Character

	Spawns  *spawn.Pool
	Groups  *group.Registry
	Journal *EventJournal

	snapshots *SnapshotPool

	pending []pendingSpawn
}

// NewGame validates and builds a configuration blob into a ready-to-step
// GameState. Validation failures are returned atomically; no state is
// constructed on error.
func NewGame(b *simconfig.Blob) (*GameState, error) {
	if err := simconfig.Validate(b); err != nil {
		return nil, err
	}
	defs, characters := simconfig.Build(b)

	byID := make(map[uint16]*entity.Character, len(characters))
	for _, c := range characters {
		byID[c.ID] = c
	}

	groups := group.NewRegistry()
	for _, c := range characters {
		groups.Join(c.ID, c.Group)
	}

	return &GameState{
		seed:       b.Seed,
		rng:        rng.New(b.Seed),
		defs:       defs,
		characters: characters,
		byID:       byID,
		Spawns:     spawn.NewPool(MaxSpawns),
		Groups:     groups,
		Journal:    NewEventJournal(),
		snapshots:  NewSnapshotPool(len(characters), MaxSpawns),
	}, nil
}

// Frame, Seed, Gravity, and RNG implement scriptctx.GameView's read-only
// game-wide slice.
func (g *GameState) Frame() uint32        { return g.frame }
func (g *GameState) Seed() uint32         { return g.seed }
func (g *GameState) Gravity() fixed.Fixed { return g.defs.Gravity }
func (g *GameState) RNG() *rng.State      { return g.rng }

// Characters returns the roster in list order, the order the determinism
// contract fixes iteration to.
func (g *GameState) Characters() []*entity.Character { return g.characters }

// Tilemap exposes the immutable tile grid for a host's own rendering or
// tooling needs; the tick orchestrator uses g.defs.Tilemap directly.
func (g *GameState) Tilemap() *tilemap.Map { return g.defs.Tilemap }

// CharacterByID, SpawnDefByID, and StatusEffectDefByID implement the
// remaining lookups scriptctx.GameView needs.
func (g *GameState) CharacterByID(id uint16) (*entity.Character, bool) {
	c, ok := g.byID[id]
	return c, ok
}

func (g *GameState) SpawnDefByID(id uint8) (*entity.SpawnDefinition, bool) {
	return g.defs.SpawnDefByID(id)
}

func (g *GameState) StatusEffectDefByID(id uint8) (*entity.StatusEffectDefinition, bool) {
	return g.defs.StatusEffectDefByID(id)
}

// CreateSpawn queues a spawn creation request; it becomes live at the end
// of the current frame (tick orchestrator step 4). The capacity check
// here is optimistic (current pool plus already-queued requests) so a
// script gets ResourceExhausted promptly rather than discovering it only
// once the queue is flushed.
func (g *GameState) CreateSpawn(ownerID uint16, def *entity.SpawnDefinition, vars [4]byte) error {
	if g.Spawns.Len()+len(g.pending) >= g.Spawns.Max {
		return &errkind.ResourceExhausted{What: "spawns"}
	}
	g.pending = append(g.pending, pendingSpawn{ownerID: ownerID, def: def, vars: vars})
	return nil
}

// ApplyStatusEffectTo attaches def to target, honoring the stack-limit
// refresh rule internal/statuseffect.Apply implements.
func (g *GameState) ApplyStatusEffectTo(target *entity.Character, def *entity.StatusEffectDefinition) error {
	return statuseffect.Apply(target, def, g.frame, g)
}

// Step advances the simulation by exactly one frame, per the tick
// orchestrator: frame increment, per-character behavior/physics/status-
// effect phases in list order, per-spawn phase, then deferred spawn
// creation. Step does not publish a snapshot; callers do that with
// PublishSnapshot. Per-script and per-phase failures are
// recorded to the journal rather than propagated — a Step call only
// fails to fully advance the frame on a condition this package considers
// unreachable in correct configuration.
func (g *GameState) Step() {
	g.frame++
	g.acquireTargets()

	for _, c := range g.characters {
		outcome := scheduler.Run(c, g.defs, g, g.frame)
		if outcome.ScriptErr != nil {
			g.Journal.EmitScriptFailure(g.frame, c.ID, outcome.ScriptErr)
		}

		for _, w := range physics.Step(&c.EntityCore, g.defs.Gravity, g.defs.Tilemap) {
			g.Journal.EmitCorrectionWarning(g.frame, c.ID, w)
		}

		for _, err := range statuseffect.Tick(c, g.defs, g) {
			g.Journal.EmitScriptFailure(g.frame, c.ID, err)
		}
		statuseffect.Prune(c)
	}

	for _, outcome := range g.Spawns.Tick(g.defs, g, g.defs.Gravity, g.defs.Tilemap, g.CharacterByID, g.characters) {
		if outcome.ScriptErr != nil {
			g.Journal.EmitScriptFailure(g.frame, 0, outcome.ScriptErr)
		}
		for _, w := range outcome.Warnings {
			g.Journal.EmitCorrectionWarning(g.frame, 0, w)
		}
	}
	g.Spawns.Prune()

	g.flushPendingSpawns()
}

// flushPendingSpawns implements tick orchestrator step 4: spawn creations
// queued during this frame's action scripts become live now, after every
// entity has already been ticked against the stable pre-frame world.
func (g *GameState) flushPendingSpawns() {
	for _, p := range g.pending {
		owner, ok := g.CharacterByID(p.ownerID)
		if !ok {
			continue
		}
		if err := g.Spawns.Create(owner, p.def, p.vars); err != nil {
			g.Journal.EmitResourceExhausted(g.frame, p.ownerID, err)
		}
	}
	g.pending = g.pending[:0]
}
