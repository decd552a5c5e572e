// Package simconfig parses and validates the configuration blob that
// describes one game: seed, gravity, tilemap, definition tables, and
// initial characters. The blob is untrusted input — every field is
// checked before any runtime entity is constructed, per the "no partial
// game is created" rule.
package simconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"forgeengine/internal/entity"
	"forgeengine/internal/errkind"
	"forgeengine/internal/fixed"
	"forgeengine/internal/tilemap"
	"forgeengine/internal/vm"
)

// MaxCharacters, MaxBehaviors, and MaxDefs bound the configuration blob's
// own tables, distinct from the runtime pool caps (internal/spawn.Pool,
// internal/statuseffect.MaxPerCharacter) that bound live instances.
const (
	MaxCharacters = 64
	MaxBehaviors  = 32
	MaxDefs       = 256
)

// FixedPair is a fixed-point value at the configuration boundary: a
// numerator/denominator pair, normalized to the internal scale on load.
type FixedPair struct {
	Num int64 `yaml:"num" json:"num"`
	Den int64 `yaml:"den" json:"den"`
}

// BehaviorPair is one (condition_id, action_id) priority-list entry.
type BehaviorPair struct {
	ConditionID uint8 `yaml:"condition_id" json:"condition_id"`
	ActionID    uint8 `yaml:"action_id" json:"action_id"`
}

// ActionBlob is the wire form of entity.ActionDefinition.
type ActionBlob struct {
	ID         uint8    `yaml:"id" json:"id"`
	EnergyCost uint8    `yaml:"energy_cost" json:"energy_cost"`
	Cooldown   uint16   `yaml:"cooldown" json:"cooldown"`
	Args       [8]uint8 `yaml:"args" json:"args"`
	Spawns     [4]uint8 `yaml:"spawns" json:"spawns"`
	Script     []byte   `yaml:"script" json:"script"`
}

// ConditionBlob is the wire form of entity.ConditionDefinition.
type ConditionBlob struct {
	ID        uint8     `yaml:"id" json:"id"`
	EnergyMul FixedPair `yaml:"energy_mul" json:"energy_mul"`
	Args      [8]uint8  `yaml:"args" json:"args"`
	Script    []byte    `yaml:"script" json:"script"`
}

// DirectionBlob is the wire form of entity.Direction.
type DirectionBlob struct {
	Horizontal uint8 `yaml:"horizontal" json:"horizontal"`
	Vertical   uint8 `yaml:"vertical" json:"vertical"`
}

// SpawnBlob is the wire form of entity.SpawnDefinition.
type SpawnBlob struct {
	ID               uint8         `yaml:"id" json:"id"`
	Width            uint16        `yaml:"width" json:"width"`
	Height           uint16        `yaml:"height" json:"height"`
	InitialVelX      FixedPair     `yaml:"initial_vel_x" json:"initial_vel_x"`
	InitialVelY      FixedPair     `yaml:"initial_vel_y" json:"initial_vel_y"`
	InitialDirection DirectionBlob `yaml:"initial_direction" json:"initial_direction"`
	InitialLifespan  uint16        `yaml:"initial_lifespan" json:"initial_lifespan"`
	TickScript       []byte        `yaml:"tick_script" json:"tick_script"`

	// HitboxKind selects the collision-shape test the spawn's hit-target
	// resolution uses: 0 (the zero value) is plain AABB overlap, matching
	// a blob that omits this section entirely. 1=circle, 2=arc, 3=line.
	HitboxKind  uint8     `yaml:"hitbox_kind" json:"hitbox_kind"`
	HitboxRange FixedPair `yaml:"hitbox_range" json:"hitbox_range"`
	HitboxWidth FixedPair `yaml:"hitbox_width" json:"hitbox_width"`
}

// StatusEffectBlob is the wire form of entity.StatusEffectDefinition.
type StatusEffectBlob struct {
	ID         uint8  `yaml:"id" json:"id"`
	StackLimit uint8  `yaml:"stack_limit" json:"stack_limit"`
	Duration   uint16 `yaml:"duration" json:"duration"`
	OnScript   []byte `yaml:"on_script" json:"on_script"`
	TickScript []byte `yaml:"tick_script" json:"tick_script"`
	OffScript  []byte `yaml:"off_script" json:"off_script"`
}

// CharacterBlob is the wire form of entity.Character's initial state.
type CharacterBlob struct {
	ID        uint16         `yaml:"id" json:"id"`
	Group     uint8          `yaml:"group" json:"group"`
	PosX      FixedPair      `yaml:"pos_x" json:"pos_x"`
	PosY      FixedPair      `yaml:"pos_y" json:"pos_y"`
	Width     uint16         `yaml:"width" json:"width"`
	Height    uint16         `yaml:"height" json:"height"`
	Direction DirectionBlob  `yaml:"direction" json:"direction"`
	Weight    uint8          `yaml:"weight" json:"weight"`

	HealthCap uint16 `yaml:"health_cap" json:"health_cap"`
	EnergyCap uint8  `yaml:"energy_cap" json:"energy_cap"`
	Power     uint8  `yaml:"power" json:"power"`

	JumpForce FixedPair `yaml:"jump_force" json:"jump_force"`
	MoveSpeed FixedPair `yaml:"move_speed" json:"move_speed"`

	Armor [9]uint8 `yaml:"armor" json:"armor"`

	EnergyRegen      uint8 `yaml:"energy_regen" json:"energy_regen"`
	EnergyRegenRate  uint8 `yaml:"energy_regen_rate" json:"energy_regen_rate"`
	EnergyChargeRate uint8 `yaml:"energy_charge_rate" json:"energy_charge_rate"`

	Behaviors []BehaviorPair `yaml:"behaviors" json:"behaviors"`
}

// Blob is the complete configuration document: seed, gravity, tilemap,
// the four definition tables, and the initial character roster.
type Blob struct {
	Seed          uint32             `yaml:"seed" json:"seed"`
	Gravity       FixedPair          `yaml:"gravity" json:"gravity"`
	Tilemap       [][]uint8          `yaml:"tilemap" json:"tilemap"`
	Actions       []ActionBlob       `yaml:"actions" json:"actions"`
	Conditions    []ConditionBlob    `yaml:"conditions" json:"conditions"`
	Spawns        []SpawnBlob        `yaml:"spawns" json:"spawns"`
	StatusEffects []StatusEffectBlob `yaml:"status_effects" json:"status_effects"`
	Characters    []CharacterBlob    `yaml:"characters" json:"characters"`
}

// Load reads a configuration document from path. The YAML decoder also
// accepts plain JSON, since JSON is a structural subset of YAML — the
// same entry point serves both the human-authored and wire formats.
func Load(path string) (*Blob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &errkind.ConfigInvalid{Reason: fmt.Sprintf("reading %s: %v", path, err)}
	}
	var b Blob
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, &errkind.ConfigInvalid{Reason: fmt.Sprintf("parsing %s: %v", path, err)}
	}
	return &b, nil
}

func direction(d DirectionBlob) entity.Direction {
	return entity.Direction{
		Horizontal: entity.DirValue(d.Horizontal),
		Vertical:   entity.DirValue(d.Vertical),
	}
}

func toFixed(p FixedPair) fixed.Fixed {
	return fixed.FromRational(p.Num, p.Den)
}

func buildTilemap(rows [][]uint8) *tilemap.Map {
	grid := make([][]tilemap.Tile, len(rows))
	for r, row := range rows {
		grid[r] = make([]tilemap.Tile, len(row))
		for c, t := range row {
			grid[r][c] = tilemap.Tile(t)
		}
	}
	return tilemap.New(grid)
}

func scriptOpcodesValid(script []byte) bool {
	pc := 0
	for pc < len(script) {
		op := vm.Opcode(script[pc])
		if !op.Valid() {
			return false
		}
		width := op.OperandWidth()
		if pc+1+width > len(script) {
			return false
		}
		pc += 1 + width
	}
	return true
}
