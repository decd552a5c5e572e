package scriptctx

import (
	"forgeengine/internal/entity"
	"forgeengine/internal/fixed"
	"forgeengine/internal/rng"
	"forgeengine/internal/vm"
)

// ActionContext adapts the property bus for an action script: it may
// mutate the executing character, spawn entities, apply energy costs, and
// set or clear the character's action lock. EffectiveCost is the
// condition-multiplied energy cost the scheduler computed for this
// invocation. It implements vm.Host.
type ActionContext struct {
	Character     *entity.Character
	Action        *entity.ActionDefinition
	ActionID      uint8
	EffectiveCost byte
	Frame         uint32
	Game          GameView

	// EnergyApplied records whether APPLY_ENERGY_COST ran during this
	// invocation. Energy is deducted only by that opcode, so a script that
	// fails before it has spent nothing; nothing in the engine reads this
	// field.
	EnergyApplied bool
}

var _ vm.Host = (*ActionContext)(nil)

func (a *ActionContext) PropertyReadKind(addr byte) (vm.PropKind, bool)  { return propertyReadKind(addr) }
func (a *ActionContext) PropertyWriteKind(addr byte) (vm.PropKind, bool) { return propertyWriteKind(addr) }

func (a *ActionContext) ReadByteProp(addr byte) (byte, error) {
	return readCharacterByte(addr, a.Character, a.Action)
}

func (a *ActionContext) WriteByteProp(addr byte, v byte) error {
	if isDirectionAddr(addr) {
		return writeDirectionByte(addr, &a.Character.EntityCore, v)
	}
	return writeCharacterByte(addr, a.Character, v)
}

func (a *ActionContext) ReadFixedProp(addr byte) (fixed.Fixed, error) {
	if isDirectionAddr(addr) {
		return readDirectionFixed(addr, &a.Character.EntityCore), nil
	}
	return readCharacterFixed(addr, a.Character, a.Game)
}

func (a *ActionContext) WriteFixedProp(addr byte, v fixed.Fixed) error {
	return writeCharacterFixed(addr, a.Character, v)
}

func (a *ActionContext) RNG() *rng.State { return a.Game.RNG() }

func (a *ActionContext) ReadArg(i byte) (byte, error) {
	if int(i) >= len(a.Action.Args) {
		return 0, errUnknownAddress
	}
	return a.Action.Args[i], nil
}

// ReadSpawnVar and WriteSpawnVar are not applicable to an action script:
// there is no "current spawn instance" while running inside a character's
// own action. Use Spawn/SpawnWithVars to create one instead.
func (a *ActionContext) ReadSpawnVar(i byte) (byte, error)  { return 0, errUnknownAddress }
func (a *ActionContext) WriteSpawnVar(i byte, v byte) error { return errNotWritable }

// ReadSpawnVarFixed and WriteSpawnVarFixed are likewise not applicable:
// an action script has no current spawn or status effect instance.
func (a *ActionContext) ReadSpawnVarFixed(i byte) (fixed.Fixed, error) { return 0, errUnknownAddress }
func (a *ActionContext) WriteSpawnVarFixed(i byte, v fixed.Fixed) error { return errNotWritable }

func (a *ActionContext) ReadActionCooldown() (byte, error) {
	return saturateU16(a.Action.Cooldown), nil
}

func (a *ActionContext) ReadActionLastUsed() (fixed.Fixed, error) {
	return fixed.FromInt(int(a.Character.ActionLastUsed[a.ActionID])), nil
}

func (a *ActionContext) WriteActionLastUsed(frame fixed.Fixed) error {
	a.Character.ActionLastUsed[a.ActionID] = uint32(frame.Int())
	return nil
}

func (a *ActionContext) IsActionOnCooldown() (bool, error) {
	return a.Character.IsOnCooldown(a.ActionID, a.Action.Cooldown, a.Frame), nil
}

func (a *ActionContext) resolveTarget(kind byte) (*entity.Character, error) {
	if kind == 0 {
		return a.Character, nil
	}
	if !a.Character.HasTarget {
		return nil, errUnknownAddress
	}
	target, ok := a.Game.CharacterByID(a.Character.TargetID)
	if !ok {
		return nil, errUnknownAddress
	}
	return target, nil
}

func (a *ActionContext) ReadCharacterProperty(addr byte) (byte, error) {
	target, err := a.resolveTarget(1)
	if err != nil {
		return 0, err
	}
	return readCharacterByte(addr, target, nil)
}

func (a *ActionContext) WriteCharacterProperty(addr byte, v byte) error {
	target, err := a.resolveTarget(1)
	if err != nil {
		return err
	}
	return writeCharacterByte(addr, target, v)
}

// ReadSpawnProperty and WriteSpawnProperty are not applicable to an
// action script; they address the EntityCore of a spawn instance's own
// tick script (see SpawnContext).
func (a *ActionContext) ReadSpawnProperty(addr byte) (byte, error)  { return 0, errUnknownAddress }
func (a *ActionContext) WriteSpawnProperty(addr byte, v byte) error { return errNotWritable }

func (a *ActionContext) Energy() byte   { return a.Character.Energy }
func (a *ActionContext) Grounded() bool { return Grounded(a.Character) }

func (a *ActionContext) LockAction() error {
	a.Character.LockedActionID = a.ActionID
	a.Character.HasLockedAction = true
	return nil
}

func (a *ActionContext) UnlockAction() error {
	a.Character.HasLockedAction = false
	return nil
}

// ApplyEnergyCost subtracts EffectiveCost from the character's energy and
// starts the action's cooldown by recording this frame as its last use.
// An action script that never calls this neither spends energy nor
// starts its cooldown.
func (a *ActionContext) ApplyEnergyCost() error {
	if a.Character.Energy < a.EffectiveCost {
		a.Character.Energy = 0
	} else {
		a.Character.Energy -= a.EffectiveCost
	}
	a.Character.ActionLastUsed[a.ActionID] = a.Frame
	a.EnergyApplied = true
	return nil
}

// ApplyDuration is not applicable to an action script; it extends a
// status effect instance's own remaining duration and is only meaningful
// inside StatusEffectContext.
func (a *ActionContext) ApplyDuration(frames byte) error {
	return errNotWritable
}

func (a *ActionContext) Spawn(defID byte) error {
	return a.SpawnWithVars(defID, 0, 0, 0, 0)
}

func (a *ActionContext) SpawnWithVars(defID, v0, v1, v2, v3 byte) error {
	def, ok := a.Game.SpawnDefByID(defID)
	if !ok {
		return errUnknownAddress
	}
	return a.Game.CreateSpawn(a.Character.ID, def, [4]byte{v0, v1, v2, v3})
}

func (a *ActionContext) ApplyStatusEffect(targetKind, defID byte) error {
	target, err := a.resolveTarget(targetKind)
	if err != nil {
		return err
	}
	def, ok := a.Game.StatusEffectDefByID(defID)
	if !ok {
		return errUnknownAddress
	}
	return a.Game.ApplyStatusEffectTo(target, def)
}

func (a *ActionContext) LogVariable(v byte) {}
