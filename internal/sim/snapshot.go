package sim

import (
	"sync/atomic"

	"forgeengine/internal/entity"
)

// snapshotBufferCount mirrors the triple-buffer producer/consumer scheme:
// the tick goroutine always writes into a slot the read side is not
// currently holding, so a concurrent HTTP or WebSocket reader never
// observes a torn snapshot and never blocks the tick.
const snapshotBufferCount = 3

// CharacterSnapshot is an immutable, JSON-serializable copy of one
// character's renderable state. Fixed-point fields are exposed as their
// raw int64 representation (value == raw / fixed.Scale) rather than as
// fixed.Fixed, so the wire format never depends on the simulation's
// internal arithmetic type.
type CharacterSnapshot struct {
	ID    uint16 `json:"id"`
	Group uint8  `json:"group"`

	PosX int64 `json:"pos_x"`
	PosY int64 `json:"pos_y"`
	VelX int64 `json:"vel_x"`
	VelY int64 `json:"vel_y"`

	Health    uint16 `json:"health"`
	HealthCap uint16 `json:"health_cap"`
	Energy    uint8  `json:"energy"`
	EnergyCap uint8  `json:"energy_cap"`

	HasTarget  bool   `json:"has_target"`
	TargetID   uint16 `json:"target_id"`
	ComboCount uint8  `json:"combo_count"`
}

// SpawnSnapshot is an immutable copy of one live spawn instance.
type SpawnSnapshot struct {
	DefinitionID uint16 `json:"definition_id"`
	OwnerID      uint16 `json:"owner_id"`

	PosX int64 `json:"pos_x"`
	PosY int64 `json:"pos_y"`

	LifespanRemaining uint16 `json:"lifespan_remaining"`
}

// GameSnapshot is a complete immutable copy of one frame's renderable
// state. Sequence increases monotonically across writes so a consumer can
// detect a snapshot it has already seen.
type GameSnapshot struct {
	Sequence uint64 `json:"sequence"`
	Frame    uint32 `json:"frame"`

	Characters []CharacterSnapshot `json:"characters"`
	Spawns     []SpawnSnapshot     `json:"spawns"`
}

// SnapshotPool pre-allocates its buffers once and reuses them every write,
// so publishing a snapshot after a tick never allocates on the hot path.
type SnapshotPool struct {
	buffers  [snapshotBufferCount]GameSnapshot
	writeIdx uint32
	readIdx  uint32
	sequence uint64
}

// NewSnapshotPool returns a pool with buffers sized for maxCharacters and
// maxSpawns characters/spawns, so AcquireWrite never needs to grow them.
func NewSnapshotPool(maxCharacters, maxSpawns int) *SnapshotPool {
	p := &SnapshotPool{}
	for i := range p.buffers {
		p.buffers[i] = GameSnapshot{
			Characters: make([]CharacterSnapshot, 0, maxCharacters),
			Spawns:     make([]SpawnSnapshot, 0, maxSpawns),
		}
	}
	return p
}

// AcquireWrite returns the next write slot, its slices truncated to zero
// length but retaining their capacity. Only the producer (the goroutine
// driving Step) may call this.
func (p *SnapshotPool) AcquireWrite() *GameSnapshot {
	idx := atomic.AddUint32(&p.writeIdx, 1) % snapshotBufferCount
	buf := &p.buffers[idx]
	buf.Characters = buf.Characters[:0]
	buf.Spawns = buf.Spawns[:0]
	buf.Sequence = atomic.AddUint64(&p.sequence, 1)
	return buf
}

// PublishWrite makes the most recently acquired write slot visible to
// readers. Must be called after the slot returned by AcquireWrite is fully
// populated.
func (p *SnapshotPool) PublishWrite() {
	atomic.StoreUint32(&p.readIdx, atomic.LoadUint32(&p.writeIdx))
}

// AcquireRead returns the latest published snapshot. Safe to call
// concurrently with AcquireWrite/PublishWrite from any number of readers;
// returns a snapshot with empty slices before the first PublishWrite.
func (p *SnapshotPool) AcquireRead() *GameSnapshot {
	idx := atomic.LoadUint32(&p.readIdx) % snapshotBufferCount
	return &p.buffers[idx]
}

// PublishSnapshot fills the next write buffer from the current game state
// and publishes it. Intended to be called once per Step by whatever
// drives the simulation loop (cmd/enginehost's tick loop, or a test).
func (g *GameState) PublishSnapshot() {
	buf := g.snapshots.AcquireWrite()
	buf.Frame = g.frame

	for _, c := range g.characters {
		buf.Characters = append(buf.Characters, characterSnapshotOf(c))
	}
	for _, s := range g.Spawns.Instances() {
		if s.Removed {
			continue
		}
		buf.Spawns = append(buf.Spawns, SpawnSnapshot{
			DefinitionID:      uint16(s.DefinitionID),
			OwnerID:           s.OwnerID,
			PosX:              s.PosX.Raw(),
			PosY:              s.PosY.Raw(),
			LifespanRemaining: s.LifespanRemaining,
		})
	}

	g.snapshots.PublishWrite()
}

// LatestSnapshot returns the most recently published snapshot. Safe to
// call from any number of concurrent readers.
func (g *GameState) LatestSnapshot() *GameSnapshot {
	return g.snapshots.AcquireRead()
}

func characterSnapshotOf(c *entity.Character) CharacterSnapshot {
	return CharacterSnapshot{
		ID:         c.ID,
		Group:      c.Group,
		PosX:       c.PosX.Raw(),
		PosY:       c.PosY.Raw(),
		VelX:       c.VelX.Raw(),
		VelY:       c.VelY.Raw(),
		Health:     c.Health,
		HealthCap:  c.HealthCap,
		Energy:     c.Energy,
		EnergyCap:  c.EnergyCap,
		HasTarget:  c.HasTarget,
		TargetID:   c.TargetID,
		ComboCount: c.ComboCount,
	}
}
