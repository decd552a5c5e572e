// Package scriptctx adapts the property bus the VM speaks to the four
// kinds of running script: conditions, actions, spawn tick scripts, and
// status effects. It
// owns the address table and the read/write permission rules each
// context variant enforces.
package scriptctx

import "forgeengine/internal/vm"

// Property addresses. The table is open for growth (new addresses may be
// appended); once assigned, an address's meaning and declared type are
// part of the wire contract and must not change.
const (
	AddrGameSeed    = 0x01
	AddrGameFrame   = 0x02
	AddrGameGravity = 0x03

	AddrCharacterPosX       = 0x10
	AddrCharacterPosY       = 0x11
	AddrCharacterSizeW      = 0x12
	AddrCharacterSizeH      = 0x13
	AddrCharacterVelX       = 0x14
	AddrCharacterVelY       = 0x15
	AddrCharacterWeight     = 0x16
	AddrCharacterHealth     = 0x17
	AddrCharacterHealthCap  = 0x18
	AddrCharacterEnergyCap  = 0x19
	AddrCharacterEnergy     = 0x1A
	AddrCharacterPower      = 0x1B
	AddrCharacterJumpForce  = 0x1C
	AddrCharacterMoveSpeed  = 0x1D
	AddrCharacterGroup      = 0x1E
	AddrCharacterComboCount = 0x1F

	// AddrCharacterEnmity is script-writable: raising it (e.g. from a
	// taunt action) makes a character the priority pick of the automatic
	// target-acquisition pass over the lowest-distance tie-break alone.
	// See the target acquisition rule in internal/sim.
	AddrCharacterEnmity = 0x20

	// AddrCharacterEnergyCharge mirrors AddrCharacterEnergy/EnergyCap's
	// read/write pattern for the charge resource accumulated by
	// scheduler.charge(), gated by EnergyChargeRate the same way
	// EnergyRegen is gated by EnergyRegenRate.
	AddrCharacterEnergyCharge = 0x21

	AddrCollisionTop    = 0x26
	AddrCollisionRight  = 0x27
	AddrCollisionBottom = 0x28
	AddrCollisionLeft   = 0x29

	AddrArmorBase = 0x2A // 9 consecutive addresses: 0x2A..0x32

	AddrDirHorizontal = 0x40
	AddrDirVertical   = 0x41

	AddrActionDefEnergyCost = 0x80
	AddrActionDefCooldown   = 0x81
	AddrActionDefArgBase    = 0x82 // 8 consecutive addresses: 0x82..0x89

	// AddrSpawnHasHitTarget and AddrSpawnHitTarget{Low,High} are readable
	// only through READ_SPAWN_PROPERTY, in a spawn's own tick script: they
	// report whether SpawnDefinition.Hitbox found a character this frame,
	// and that character's ID split into bytes (low then high), since
	// READ_SPAWN_PROPERTY/WRITE_SPAWN_PROPERTY only ever move a byte.
	// Read-only: WriteSpawnProperty has no case for them.
	AddrSpawnHasHitTarget  = 0x90
	AddrSpawnHitTargetLow  = 0x91
	AddrSpawnHitTargetHigh = 0x92
)

// propertyKind maps every recognized address to its declared register
// type. ENTITY_DIR_* addresses are deliberately absent here: their kind
// depends on direction (read vs write), so they are handled specially in
// each context's ReadFixedProp/WriteByteProp pair rather than through this
// table.
var propertyKind = map[byte]vm.PropKind{
	AddrGameSeed:    vm.PropFixed,
	AddrGameFrame:   vm.PropFixed,
	AddrGameGravity: vm.PropFixed,

	AddrCharacterPosX:       vm.PropFixed,
	AddrCharacterPosY:       vm.PropFixed,
	AddrCharacterSizeW:      vm.PropByte,
	AddrCharacterSizeH:      vm.PropByte,
	AddrCharacterVelX:       vm.PropFixed,
	AddrCharacterVelY:       vm.PropFixed,
	AddrCharacterWeight:     vm.PropByte,
	AddrCharacterHealth:     vm.PropByte,
	AddrCharacterHealthCap:  vm.PropByte,
	AddrCharacterEnergyCap:  vm.PropByte,
	AddrCharacterEnergy:     vm.PropByte,
	AddrCharacterPower:      vm.PropByte,
	AddrCharacterJumpForce:  vm.PropFixed,
	AddrCharacterMoveSpeed:  vm.PropFixed,
	AddrCharacterGroup:      vm.PropByte,
	AddrCharacterComboCount: vm.PropByte,
	AddrCharacterEnmity:        vm.PropByte,
	AddrCharacterEnergyCharge:  vm.PropByte,

	AddrCollisionTop:    vm.PropByte,
	AddrCollisionRight:  vm.PropByte,
	AddrCollisionBottom: vm.PropByte,
	AddrCollisionLeft:   vm.PropByte,

	AddrActionDefEnergyCost: vm.PropByte,
	AddrActionDefCooldown:   vm.PropByte,
}

func init() {
	for i := byte(0); i < 9; i++ {
		propertyKind[AddrArmorBase+i] = vm.PropByte
	}
	for i := byte(0); i < 8; i++ {
		propertyKind[AddrActionDefArgBase+i] = vm.PropByte
	}
}

// characterWritable lists the character-scalar addresses an ActionContext
// or StatusEffectContext may WRITE_PROP to. Collision flags, size, group,
// combo count, and every GAME_*/ACTION_DEF_* address are read-only from
// scripts: collision and size per the wire contract, group/combo/def
// fields because nothing in the opcode set is meant to rewrite a
// character's identity or its action table mid-game.
var characterWritable = map[byte]bool{
	AddrCharacterPosX:      true,
	AddrCharacterPosY:      true,
	AddrCharacterVelX:      true,
	AddrCharacterVelY:      true,
	AddrCharacterWeight:    true,
	AddrCharacterHealth:    true,
	AddrCharacterEnergy:    true,
	AddrCharacterPower:     true,
	AddrCharacterJumpForce: true,
	AddrCharacterMoveSpeed: true,
	AddrCharacterEnmity:        true,
	AddrCharacterEnergyCharge:  true,
}

func init() {
	for i := byte(0); i < 9; i++ {
		characterWritable[AddrArmorBase+i] = true
	}
}

// propertyReadKind and propertyWriteKind resolve an address's register
// bank for the read and write direction respectively. Every address
// agrees on both except the two ENTITY_DIR_* addresses, which are
// asymmetric by design (see the direction read/write contract in
// DESIGN.md).
func propertyReadKind(addr byte) (vm.PropKind, bool) {
	if addr == AddrDirHorizontal || addr == AddrDirVertical {
		return vm.PropFixed, true
	}
	k, ok := propertyKind[addr]
	return k, ok
}

func propertyWriteKind(addr byte) (vm.PropKind, bool) {
	if addr == AddrDirHorizontal || addr == AddrDirVertical {
		return vm.PropByte, true
	}
	k, ok := propertyKind[addr]
	return k, ok
}

// isDirectionAddr reports whether addr is one of the asymmetric direction
// addresses, which every context must route to readDirectionFixed /
// writeDirectionByte instead of the common tables.
func isDirectionAddr(addr byte) bool {
	return addr == AddrDirHorizontal || addr == AddrDirVertical
}
