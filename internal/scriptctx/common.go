package scriptctx

import (
	"errors"

	"forgeengine/internal/entity"
	"forgeengine/internal/fixed"
	"forgeengine/internal/rng"
)

// errNotWritable is returned by a write attempt against a read-only or
// out-of-context address.
var errNotWritable = errors.New("scriptctx: property not writable in this context")

// errUnknownAddress is returned for an address not present in any table a
// context consults.
var errUnknownAddress = errors.New("scriptctx: unknown property address")

// GameView is the read-only slice of game state every script context
// needs regardless of scope: the seed, frame counter, gravity magnitude,
// RNG stream, and lookups into the character/definition tables.
type GameView interface {
	Frame() uint32
	Seed() uint32
	Gravity() fixed.Fixed
	RNG() *rng.State

	CharacterByID(id uint16) (*entity.Character, bool)
	SpawnDefByID(id uint8) (*entity.SpawnDefinition, bool)
	StatusEffectDefByID(id uint8) (*entity.StatusEffectDefinition, bool)

	// CreateSpawn instantiates a SpawnInstance owned by ownerID from def,
	// seeding its Vars from the given slice (unused slots left zero). It
	// returns errkind.ResourceExhausted if the spawn cap is reached; this
	// must not fail the caller's script.
	CreateSpawn(ownerID uint16, def *entity.SpawnDefinition, vars [4]byte) error

	// ApplyStatusEffectTo attaches def to target, honoring the
	// definition's stack limit. At the limit the existing instance is
	// refreshed; no definition setting rejects the application instead.
	ApplyStatusEffectTo(target *entity.Character, def *entity.StatusEffectDefinition) error
}

// readEntityCoreByte resolves a byte-typed address that exists on every
// EntityCore (size, weight, collision flags), shared by characters and
// spawn instances alike. ok is false if addr is not an EntityCore
// address, letting the caller fall through to its own address table.
func readEntityCoreByte(addr byte, core *entity.EntityCore) (v byte, ok bool) {
	switch addr {
	case AddrCharacterSizeW:
		return saturateU16(core.Size.Width), true
	case AddrCharacterSizeH:
		return saturateU16(core.Size.Height), true
	case AddrCharacterWeight:
		return core.Weight, true
	case AddrCollisionTop:
		return boolByte(core.Collision.Top), true
	case AddrCollisionRight:
		return boolByte(core.Collision.Right), true
	case AddrCollisionBottom:
		return boolByte(core.Collision.Bottom), true
	case AddrCollisionLeft:
		return boolByte(core.Collision.Left), true
	default:
		return 0, false
	}
}

func writeEntityCoreByte(addr byte, core *entity.EntityCore, v byte) (ok bool, err error) {
	switch addr {
	case AddrCharacterWeight:
		core.Weight = v
		return true, nil
	case AddrCharacterSizeW, AddrCharacterSizeH,
		AddrCollisionTop, AddrCollisionRight, AddrCollisionBottom, AddrCollisionLeft:
		return true, errNotWritable
	default:
		return false, nil
	}
}

func readEntityCoreFixed(addr byte, core *entity.EntityCore) (v fixed.Fixed, ok bool) {
	switch addr {
	case AddrCharacterPosX:
		return core.PosX, true
	case AddrCharacterPosY:
		return core.PosY, true
	case AddrCharacterVelX:
		return core.VelX, true
	case AddrCharacterVelY:
		return core.VelY, true
	default:
		return 0, false
	}
}

func writeEntityCoreFixed(addr byte, core *entity.EntityCore, v fixed.Fixed) (ok bool) {
	switch addr {
	case AddrCharacterPosX:
		core.PosX = v
	case AddrCharacterPosY:
		core.PosY = v
	case AddrCharacterVelX:
		core.VelX = v
	case AddrCharacterVelY:
		core.VelY = v
	default:
		return false
	}
	return true
}

// readDirectionFixed implements the direction addresses' read side: a
// signed Fixed in {-1, 0, +1}.
func readDirectionFixed(addr byte, core *entity.EntityCore) fixed.Fixed {
	var dv entity.DirValue
	if addr == AddrDirHorizontal {
		dv = core.Direction.Horizontal
	} else {
		dv = core.Direction.Vertical
	}
	switch dv {
	case entity.DirNegative:
		return fixed.FromInt(-1)
	case entity.DirPositive:
		return fixed.FromInt(1)
	default:
		return fixed.Zero
	}
}

// writeDirectionByte implements the direction addresses' write side: a
// raw byte enum in {0,1,2}.
func writeDirectionByte(addr byte, core *entity.EntityCore, v byte) error {
	if v > 2 {
		return errUnknownAddress
	}
	dv := entity.DirValue(v)
	if addr == AddrDirHorizontal {
		core.Direction.Horizontal = dv
	} else {
		core.Direction.Vertical = dv
	}
	return nil
}

// readCharacterByte resolves the Character-specific byte addresses not
// covered by readEntityCoreByte: health, energy, armor, combo count, and
// (when actionDef is non-nil) the current action definition's fields.
func readCharacterByte(addr byte, c *entity.Character, actionDef *entity.ActionDefinition) (byte, error) {
	if v, ok := readEntityCoreByte(addr, &c.EntityCore); ok {
		return v, nil
	}
	switch {
	case addr == AddrCharacterHealth:
		return saturateU16(c.Health), nil
	case addr == AddrCharacterHealthCap:
		return saturateU16(c.HealthCap), nil
	case addr == AddrCharacterEnergyCap:
		return c.EnergyCap, nil
	case addr == AddrCharacterEnergy:
		return c.Energy, nil
	case addr == AddrCharacterPower:
		return c.Power, nil
	case addr == AddrCharacterGroup:
		return c.Group, nil
	case addr == AddrCharacterComboCount:
		return c.ComboCount, nil
	case addr == AddrCharacterEnmity:
		return saturateU16(c.Enmity), nil
	case addr == AddrCharacterEnergyCharge:
		return c.EnergyCharge, nil
	case addr >= AddrArmorBase && addr < AddrArmorBase+9:
		return c.Armor[addr-AddrArmorBase], nil
	case addr == AddrActionDefEnergyCost:
		if actionDef == nil {
			return 0, errUnknownAddress
		}
		return actionDef.EnergyCost, nil
	case addr == AddrActionDefCooldown:
		if actionDef == nil {
			return 0, errUnknownAddress
		}
		return saturateU16(actionDef.Cooldown), nil
	case addr >= AddrActionDefArgBase && addr < AddrActionDefArgBase+8:
		if actionDef == nil {
			return 0, errUnknownAddress
		}
		return actionDef.Args[addr-AddrActionDefArgBase], nil
	default:
		return 0, errUnknownAddress
	}
}

func writeCharacterByte(addr byte, c *entity.Character, v byte) error {
	if ok, err := writeEntityCoreByte(addr, &c.EntityCore, v); ok {
		return err
	}
	if !characterWritable[addr] && !(addr >= AddrArmorBase && addr < AddrArmorBase+9) {
		return errNotWritable
	}
	switch {
	case addr == AddrCharacterHealth:
		if uint16(v) > c.HealthCap {
			v = saturateU16(c.HealthCap)
		}
		c.Health = uint16(v)
	case addr == AddrCharacterEnergy:
		if v > c.EnergyCap {
			v = c.EnergyCap
		}
		c.Energy = v
	case addr == AddrCharacterPower:
		c.Power = v
	case addr == AddrCharacterEnmity:
		c.Enmity = uint16(v)
	case addr == AddrCharacterEnergyCharge:
		c.EnergyCharge = v
	case addr >= AddrArmorBase && addr < AddrArmorBase+9:
		c.Armor[addr-AddrArmorBase] = v
	default:
		return errNotWritable
	}
	return nil
}

func readCharacterFixed(addr byte, c *entity.Character, game GameView) (fixed.Fixed, error) {
	if v, ok := readEntityCoreFixed(addr, &c.EntityCore); ok {
		return v, nil
	}
	switch addr {
	case AddrGameSeed:
		return fixed.FromInt(int(game.Seed())), nil
	case AddrGameFrame:
		return fixed.FromInt(int(game.Frame())), nil
	case AddrGameGravity:
		return game.Gravity(), nil
	case AddrCharacterJumpForce:
		return c.JumpForce, nil
	case AddrCharacterMoveSpeed:
		return c.MoveSpeed, nil
	default:
		return 0, errUnknownAddress
	}
}

func writeCharacterFixed(addr byte, c *entity.Character, v fixed.Fixed) error {
	if writeEntityCoreFixed(addr, &c.EntityCore, v) {
		return nil
	}
	if !characterWritable[addr] {
		return errNotWritable
	}
	switch addr {
	case AddrCharacterJumpForce:
		c.JumpForce = v
	case AddrCharacterMoveSpeed:
		c.MoveSpeed = v
	default:
		return errNotWritable
	}
	return nil
}

// Grounded implements the physics kernel's grounded predicate for use by
// script contexts answering EXIT_IF_NOT_GROUNDED.
func Grounded(c *entity.Character) bool {
	switch c.Direction.GravityMultiplier() {
	case 1:
		return c.Collision.Bottom
	case -1:
		return c.Collision.Top
	default:
		return c.Collision.Top || c.Collision.Bottom
	}
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func saturateU16(v uint16) byte {
	if v > 255 {
		return 255
	}
	return byte(v)
}
