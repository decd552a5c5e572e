package scriptctx

import (
	"forgeengine/internal/entity"
	"forgeengine/internal/fixed"
	"forgeengine/internal/rng"
	"forgeengine/internal/vm"
)

// ConditionContext adapts the property bus for a condition script: read
// access to game state and the owning character, write access only to the
// script's own registers (never to the property bus). It implements
// vm.Host.
type ConditionContext struct {
	Character *entity.Character
	Condition *entity.ConditionDefinition
	Game      GameView
}

var _ vm.Host = (*ConditionContext)(nil)

func (c *ConditionContext) PropertyReadKind(addr byte) (vm.PropKind, bool) {
	return propertyReadKind(addr)
}

func (c *ConditionContext) PropertyWriteKind(addr byte) (vm.PropKind, bool) {
	return propertyWriteKind(addr)
}

func (c *ConditionContext) ReadByteProp(addr byte) (byte, error) {
	return readCharacterByte(addr, c.Character, nil)
}

func (c *ConditionContext) ReadFixedProp(addr byte) (fixed.Fixed, error) {
	if isDirectionAddr(addr) {
		return readDirectionFixed(addr, &c.Character.EntityCore), nil
	}
	return readCharacterFixed(addr, c.Character, c.Game)
}

// WriteByteProp and WriteFixedProp always fail: conditions are read-only
// over the property bus, per the script context contract.
func (c *ConditionContext) WriteByteProp(addr byte, v byte) error  { return errNotWritable }
func (c *ConditionContext) WriteFixedProp(addr byte, v fixed.Fixed) error { return errNotWritable }

func (c *ConditionContext) RNG() *rng.State { return c.Game.RNG() }

func (c *ConditionContext) ReadArg(i byte) (byte, error) {
	if int(i) >= len(c.Condition.Args) {
		return 0, errUnknownAddress
	}
	return c.Condition.Args[i], nil
}

func (c *ConditionContext) ReadSpawnVar(i byte) (byte, error)       { return 0, errUnknownAddress }
func (c *ConditionContext) WriteSpawnVar(i byte, v byte) error      { return errNotWritable }
func (c *ConditionContext) ReadSpawnVarFixed(i byte) (fixed.Fixed, error) {
	return 0, errUnknownAddress
}
func (c *ConditionContext) WriteSpawnVarFixed(i byte, v fixed.Fixed) error { return errNotWritable }
func (c *ConditionContext) ReadActionCooldown() (byte, error)       { return 0, errUnknownAddress }
func (c *ConditionContext) ReadActionLastUsed() (fixed.Fixed, error) {
	return 0, errUnknownAddress
}
func (c *ConditionContext) WriteActionLastUsed(frame fixed.Fixed) error { return errNotWritable }
func (c *ConditionContext) IsActionOnCooldown() (bool, error)           { return false, errUnknownAddress }

func (c *ConditionContext) targetCharacter() (*entity.Character, error) {
	if !c.Character.HasTarget {
		return nil, errUnknownAddress
	}
	target, ok := c.Game.CharacterByID(c.Character.TargetID)
	if !ok {
		return nil, errUnknownAddress
	}
	return target, nil
}

func (c *ConditionContext) ReadCharacterProperty(addr byte) (byte, error) {
	target, err := c.targetCharacter()
	if err != nil {
		return 0, err
	}
	return readCharacterByte(addr, target, nil)
}

func (c *ConditionContext) WriteCharacterProperty(addr byte, v byte) error { return errNotWritable }

func (c *ConditionContext) ReadSpawnProperty(addr byte) (byte, error)  { return 0, errUnknownAddress }
func (c *ConditionContext) WriteSpawnProperty(addr byte, v byte) error { return errNotWritable }

func (c *ConditionContext) Energy() byte   { return c.Character.Energy }
func (c *ConditionContext) Grounded() bool { return Grounded(c.Character) }

func (c *ConditionContext) LockAction() error        { return errNotWritable }
func (c *ConditionContext) UnlockAction() error      { return errNotWritable }
func (c *ConditionContext) ApplyEnergyCost() error   { return errNotWritable }
func (c *ConditionContext) ApplyDuration(f byte) error { return errNotWritable }
func (c *ConditionContext) Spawn(defID byte) error   { return errNotWritable }
func (c *ConditionContext) SpawnWithVars(defID, v0, v1, v2, v3 byte) error {
	return errNotWritable
}
func (c *ConditionContext) ApplyStatusEffect(targetKind, defID byte) error { return errNotWritable }

func (c *ConditionContext) LogVariable(v byte) {}
