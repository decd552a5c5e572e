// Package entity defines the simulation's entity model: the shared
// EntityCore embedded by characters and spawns, Character itself, and the
// definition tables (actions, conditions, spawns, status effects) that
// bytecode scripts run against.
package entity

import "forgeengine/internal/fixed"

// DirValue is one axis of an entity's direction. The horizontal and
// vertical axes both use the same three-value enum.
type DirValue uint8

const (
	DirNegative DirValue = 0 // left / up
	DirNeutral  DirValue = 1
	DirPositive DirValue = 2 // right / down
)

// Direction is an entity's facing, also the sole source of its gravity
// sign via Vertical.
type Direction struct {
	Horizontal DirValue
	Vertical   DirValue
}

// DefaultCharacterDirection is the default orientation for newly created
// characters: facing right, falling under normal gravity.
func DefaultCharacterDirection() Direction {
	return Direction{Horizontal: DirPositive, Vertical: DirPositive}
}

// DefaultSpawnDirection is a right-facing orientation with no vertical
// gravity. spawn.Pool.Create does not use it: an instance always takes its
// SpawnDefinition's InitialDirection, whose zero value is left/up.
func DefaultSpawnDirection() Direction {
	return Direction{Horizontal: DirPositive, Vertical: DirNeutral}
}

// GravityMultiplier maps a vertical direction value to the signed
// multiplier applied to the global gravity magnitude. Any value outside
// {0,1,2} maps to 0, leaving room for future direction encodings.
func (d Direction) GravityMultiplier() int {
	switch d.Vertical {
	case DirNegative:
		return -1
	case DirPositive:
		return 1
	default:
		return 0
	}
}

// Collision is the four-sided contact flag set, recomputed every frame by
// the physics kernel. Exactly these four flags are independent; corner
// cases may set two adjacent flags simultaneously.
type Collision struct {
	Top, Right, Bottom, Left bool
}

// Size is an entity's immutable axis-aligned bounding box extent.
type Size struct {
	Width, Height uint16
}

// EntityCore is the state shared by every physical entity in the
// simulation: characters and spawn instances alike.
type EntityCore struct {
	PosX, PosY fixed.Fixed
	VelX, VelY fixed.Fixed
	Size       Size
	Direction  Direction
	Collision  Collision
	Weight     uint8
}

// Behavior is one (condition, action) pair in a character's priority list.
type Behavior struct {
	ConditionID uint8
	ActionID    uint8
}

// Character extends EntityCore with combat and scripting state.
type Character struct {
	EntityCore

	ID    uint16
	Group uint8

	Health, HealthCap uint16
	Energy, EnergyCap uint8
	Power             uint8

	JumpForce fixed.Fixed
	MoveSpeed fixed.Fixed

	Armor [9]uint8

	EnergyRegen     uint8
	EnergyRegenRate uint8 // frames per regen tick; 0 disables regen

	// EnergyCharge accumulates by one every EnergyChargeRate frames (0
	// disables it, like EnergyRegenRate), saturating at 255 rather than
	// draining back down on its own — a script reads it via READ_PROP
	// (CHARACTER_ENERGY_CHARGE) to gate a charged action and writes it
	// back down itself once spent.
	EnergyCharge     uint8
	EnergyChargeRate uint8

	// LockedActionID, when set, forces the scheduler to run this action
	// every frame regardless of other behaviors, until script or the
	// action itself releases the lock.
	LockedActionID   uint8
	HasLockedAction  bool

	// Enmity, TargetID, HasTarget, and TargetType are recomputed every
	// frame by the automatic target-acquisition pass (internal/sim's
	// acquireTargets), not by scripts directly: a script may raise its
	// own Enmity via WRITE_PROP to make itself the next frame's priority
	// pick among its enemies, but TargetID/HasTarget/TargetType are
	// read-only from a script's perspective, resolved fresh each frame
	// rather than cached. READ_CHARACTER_PROPERTY/
	// WRITE_CHARACTER_PROPERTY address whatever HasTarget/TargetID name.
	Enmity     uint16
	TargetID   uint16
	HasTarget  bool
	TargetType uint8

	Behaviors []Behavior

	// ActionLastUsed maps an action id to the frame it last ran
	// APPLY_ENERGY_COST, used for cooldown gating. An action never used
	// has no entry, which the scheduler treats as "not on cooldown".
	ActionLastUsed map[uint8]uint32

	StatusEffects []*StatusEffectInstance

	// ComboCount is exposed to scripts via CHARACTER_COMBO_COUNT
	// (read-only) and in snapshots. Nothing in the engine increments or
	// resets it, so it keeps the value the character was built with.
	ComboCount uint8
}

// NewCharacter builds a Character with sensible defaults: facing right,
// falling under gravity, empty behavior and status lists.
func NewCharacter(id uint16) *Character {
	return &Character{
		EntityCore: EntityCore{
			Direction: DefaultCharacterDirection(),
		},
		ID:             id,
		ActionLastUsed: make(map[uint8]uint32),
	}
}

// IsOnCooldown reports whether actionID may not yet be selected again at
// the given frame: action_last_used[a] + cooldown(a) > frame.
func (c *Character) IsOnCooldown(actionID uint8, cooldown uint16, frame uint32) bool {
	last, ok := c.ActionLastUsed[actionID]
	if !ok {
		return false
	}
	return uint64(last)+uint64(cooldown) > uint64(frame)
}

// ActionDefinition is the static, immutable description of one action: its
// energy cost, cooldown, operand arguments, spawn references, and script.
type ActionDefinition struct {
	ID         uint8
	EnergyCost uint8
	Cooldown   uint16
	Args       [8]uint8
	Spawns     [4]uint8
	Script     []byte
}

// ConditionDefinition is the static description of one condition: the
// energy-cost multiplier applied when scheduling, its arguments, and
// script.
type ConditionDefinition struct {
	ID        uint8
	EnergyMul fixed.Fixed
	Args      [8]uint8
	Script    []byte
}

// SpawnDefinition describes a kind of transient entity created by the
// SPAWN family of opcodes.
type SpawnDefinition struct {
	ID              uint8
	Size            Size
	InitialVelX     fixed.Fixed
	InitialVelY     fixed.Fixed
	InitialDirection Direction
	InitialLifespan uint16
	TickScript      []byte

	// Hitbox, when Kind is not HitboxAABB, is checked by
	// spawn.Pool.Tick against each character's position instead of plain
	// AABB overlap, giving a script-authored attack a directional shape
	// without per-pixel math. The result lands on the instance's own
	// HitTargetID/HasHitTarget fields for the tick script to read.
	Hitbox Hitbox
}

// StatusEffectDefinition describes a status effect's lifecycle scripts and
// stacking rule.
type StatusEffectDefinition struct {
	ID         uint8
	StackLimit uint8
	Duration   uint16
	OnScript   []byte
	TickScript []byte
	OffScript  []byte
}

// SpawnInstance is a live, ticking entity created by a SPAWN opcode.
type SpawnInstance struct {
	EntityCore

	DefinitionID     uint8
	OwnerID          uint16
	LifespanRemaining uint16
	Vars             [4]uint8
	FixedVars        [4]fixed.Fixed

	// HitTargetID and HasHitTarget are recomputed every frame by
	// spawn.Pool.Tick against the instance's SpawnDefinition.Hitbox,
	// before the tick script runs. They are read-only from scripts.
	HitTargetID  uint16
	HasHitTarget bool

	// Removed marks an instance for deferred removal at the end of the
	// spawn-update phase, so in-flight iteration never observes a
	// half-destroyed instance.
	Removed bool
}

// StatusEffectInstance is a live status effect attached to a character.
type StatusEffectInstance struct {
	DefinitionID      uint8
	RemainingDuration uint16
	StackCount        uint8
	Vars              [4]uint8
	FixedVars         [4]fixed.Fixed

	Removed bool
}
