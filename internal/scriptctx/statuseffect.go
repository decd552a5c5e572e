package scriptctx

import (
	"forgeengine/internal/entity"
	"forgeengine/internal/fixed"
	"forgeengine/internal/rng"
	"forgeengine/internal/vm"
)

// StatusEffectContext adapts the property bus for a status effect's on,
// tick, or off script. It carries the afflicted character and the
// effect's own instance state, whose Vars/FixedVars live on the instance
// and persist across ticks, reached through READ_SPAWN/WRITE_SPAWN and
// their fixed counterparts. The VM's own registers start zeroed on every
// invocation, as an action's do. ApplyDuration is meaningful only here: it
// extends Instance.RemainingDuration.
type StatusEffectContext struct {
	Character *entity.Character
	Effect    *entity.StatusEffectDefinition
	Instance  *entity.StatusEffectInstance
	Game      GameView
}

var _ vm.Host = (*StatusEffectContext)(nil)

func (s *StatusEffectContext) PropertyReadKind(addr byte) (vm.PropKind, bool) {
	return propertyReadKind(addr)
}

func (s *StatusEffectContext) PropertyWriteKind(addr byte) (vm.PropKind, bool) {
	return propertyWriteKind(addr)
}

func (s *StatusEffectContext) ReadByteProp(addr byte) (byte, error) {
	return readCharacterByte(addr, s.Character, nil)
}

func (s *StatusEffectContext) WriteByteProp(addr byte, v byte) error {
	if isDirectionAddr(addr) {
		return writeDirectionByte(addr, &s.Character.EntityCore, v)
	}
	return writeCharacterByte(addr, s.Character, v)
}

func (s *StatusEffectContext) ReadFixedProp(addr byte) (fixed.Fixed, error) {
	if isDirectionAddr(addr) {
		return readDirectionFixed(addr, &s.Character.EntityCore), nil
	}
	return readCharacterFixed(addr, s.Character, s.Game)
}

func (s *StatusEffectContext) WriteFixedProp(addr byte, v fixed.Fixed) error {
	return writeCharacterFixed(addr, s.Character, v)
}

func (s *StatusEffectContext) RNG() *rng.State { return s.Game.RNG() }

// ReadArg is not applicable: status effect scripts carry no per-use
// argument list the way actions and conditions do. A status effect's
// configurable values live in Instance.Vars/FixedVars instead.
func (s *StatusEffectContext) ReadArg(i byte) (byte, error) { return 0, errUnknownAddress }

func (s *StatusEffectContext) ReadSpawnVar(i byte) (byte, error) {
	if int(i) >= len(s.Instance.Vars) {
		return 0, errUnknownAddress
	}
	return s.Instance.Vars[i], nil
}

func (s *StatusEffectContext) WriteSpawnVar(i byte, v byte) error {
	if int(i) >= len(s.Instance.Vars) {
		return errUnknownAddress
	}
	s.Instance.Vars[i] = v
	return nil
}

func (s *StatusEffectContext) ReadSpawnVarFixed(i byte) (fixed.Fixed, error) {
	if int(i) >= len(s.Instance.FixedVars) {
		return 0, errUnknownAddress
	}
	return s.Instance.FixedVars[i], nil
}

func (s *StatusEffectContext) WriteSpawnVarFixed(i byte, v fixed.Fixed) error {
	if int(i) >= len(s.Instance.FixedVars) {
		return errUnknownAddress
	}
	s.Instance.FixedVars[i] = v
	return nil
}

func (s *StatusEffectContext) ReadActionCooldown() (byte, error)        { return 0, errUnknownAddress }
func (s *StatusEffectContext) ReadActionLastUsed() (fixed.Fixed, error) { return 0, errUnknownAddress }
func (s *StatusEffectContext) WriteActionLastUsed(frame fixed.Fixed) error {
	return errNotWritable
}
func (s *StatusEffectContext) IsActionOnCooldown() (bool, error) { return false, errUnknownAddress }

func (s *StatusEffectContext) targetCharacter(kind byte) (*entity.Character, error) {
	if kind == 0 {
		return s.Character, nil
	}
	if !s.Character.HasTarget {
		return nil, errUnknownAddress
	}
	target, ok := s.Game.CharacterByID(s.Character.TargetID)
	if !ok {
		return nil, errUnknownAddress
	}
	return target, nil
}

func (s *StatusEffectContext) ReadCharacterProperty(addr byte) (byte, error) {
	target, err := s.targetCharacter(1)
	if err != nil {
		return 0, err
	}
	return readCharacterByte(addr, target, nil)
}

func (s *StatusEffectContext) WriteCharacterProperty(addr byte, v byte) error {
	target, err := s.targetCharacter(1)
	if err != nil {
		return err
	}
	return writeCharacterByte(addr, target, v)
}

// ReadSpawnProperty and WriteSpawnProperty are not applicable: a status
// effect script has no spawn instance in scope.
func (s *StatusEffectContext) ReadSpawnProperty(addr byte) (byte, error)  { return 0, errUnknownAddress }
func (s *StatusEffectContext) WriteSpawnProperty(addr byte, v byte) error { return errNotWritable }

func (s *StatusEffectContext) Energy() byte   { return s.Character.Energy }
func (s *StatusEffectContext) Grounded() bool { return Grounded(s.Character) }

// LockAction and UnlockAction are not applicable: a status effect is not
// bound to any action slot.
func (s *StatusEffectContext) LockAction() error   { return errNotWritable }
func (s *StatusEffectContext) UnlockAction() error { return errNotWritable }

func (s *StatusEffectContext) ApplyEnergyCost() error { return errNotWritable }

// ApplyDuration extends the effect instance's remaining lifetime by
// frames, capped so it never exceeds the definition's configured
// Duration ceiling.
func (s *StatusEffectContext) ApplyDuration(frames byte) error {
	extended := s.Instance.RemainingDuration + uint16(frames)
	if extended > s.Effect.Duration {
		extended = s.Effect.Duration
	}
	s.Instance.RemainingDuration = extended
	return nil
}

func (s *StatusEffectContext) Spawn(defID byte) error {
	return s.SpawnWithVars(defID, 0, 0, 0, 0)
}

func (s *StatusEffectContext) SpawnWithVars(defID, v0, v1, v2, v3 byte) error {
	def, ok := s.Game.SpawnDefByID(defID)
	if !ok {
		return errUnknownAddress
	}
	return s.Game.CreateSpawn(s.Character.ID, def, [4]byte{v0, v1, v2, v3})
}

func (s *StatusEffectContext) ApplyStatusEffect(targetKind, defID byte) error {
	target, err := s.targetCharacter(targetKind)
	if err != nil {
		return err
	}
	def, ok := s.Game.StatusEffectDefByID(defID)
	if !ok {
		return errUnknownAddress
	}
	return s.Game.ApplyStatusEffectTo(target, def)
}

func (s *StatusEffectContext) LogVariable(v byte) {}
