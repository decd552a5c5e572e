package scriptctx

import (
	"forgeengine/internal/entity"
	"forgeengine/internal/fixed"
	"forgeengine/internal/rng"
	"forgeengine/internal/vm"
)

// SpawnContext adapts the property bus for a spawn instance's tick
// script. READ_SPAWN_PROPERTY/WRITE_SPAWN_PROPERTY address the spawn
// instance's own EntityCore — the only context in which those opcodes
// apply, since an action or condition script has no spawn instance in
// scope. READ_PROP/WRITE_PROP still address the owning character, so a
// projectile's script can read and even affect its owner.
type SpawnContext struct {
	Owner    *entity.Character
	Instance *entity.SpawnInstance
	Def      *entity.SpawnDefinition
	Game     GameView
}

var _ vm.Host = (*SpawnContext)(nil)

func (s *SpawnContext) PropertyReadKind(addr byte) (vm.PropKind, bool) {
	return propertyReadKind(addr)
}

func (s *SpawnContext) PropertyWriteKind(addr byte) (vm.PropKind, bool) {
	return propertyWriteKind(addr)
}

func (s *SpawnContext) ReadByteProp(addr byte) (byte, error) {
	if s.Owner == nil {
		return 0, errUnknownAddress
	}
	return readCharacterByte(addr, s.Owner, nil)
}

func (s *SpawnContext) WriteByteProp(addr byte, v byte) error {
	if s.Owner == nil {
		return errNotWritable
	}
	if isDirectionAddr(addr) {
		return writeDirectionByte(addr, &s.Owner.EntityCore, v)
	}
	return writeCharacterByte(addr, s.Owner, v)
}

func (s *SpawnContext) ReadFixedProp(addr byte) (fixed.Fixed, error) {
	if s.Owner == nil {
		return 0, errUnknownAddress
	}
	if isDirectionAddr(addr) {
		return readDirectionFixed(addr, &s.Owner.EntityCore), nil
	}
	return readCharacterFixed(addr, s.Owner, s.Game)
}

func (s *SpawnContext) WriteFixedProp(addr byte, v fixed.Fixed) error {
	if s.Owner == nil {
		return errNotWritable
	}
	return writeCharacterFixed(addr, s.Owner, v)
}

func (s *SpawnContext) RNG() *rng.State { return s.Game.RNG() }

// ReadArg is not applicable: a spawn tick script takes its configurable
// values from Instance.Vars/FixedVars instead of a per-use argument list.
func (s *SpawnContext) ReadArg(i byte) (byte, error) { return 0, errUnknownAddress }

func (s *SpawnContext) ReadSpawnVar(i byte) (byte, error) {
	if int(i) >= len(s.Instance.Vars) {
		return 0, errUnknownAddress
	}
	return s.Instance.Vars[i], nil
}

func (s *SpawnContext) WriteSpawnVar(i byte, v byte) error {
	if int(i) >= len(s.Instance.Vars) {
		return errUnknownAddress
	}
	s.Instance.Vars[i] = v
	return nil
}

func (s *SpawnContext) ReadSpawnVarFixed(i byte) (fixed.Fixed, error) {
	if int(i) >= len(s.Instance.FixedVars) {
		return 0, errUnknownAddress
	}
	return s.Instance.FixedVars[i], nil
}

func (s *SpawnContext) WriteSpawnVarFixed(i byte, v fixed.Fixed) error {
	if int(i) >= len(s.Instance.FixedVars) {
		return errUnknownAddress
	}
	s.Instance.FixedVars[i] = v
	return nil
}

func (s *SpawnContext) ReadActionCooldown() (byte, error)        { return 0, errUnknownAddress }
func (s *SpawnContext) ReadActionLastUsed() (fixed.Fixed, error) { return 0, errUnknownAddress }
func (s *SpawnContext) WriteActionLastUsed(frame fixed.Fixed) error {
	return errNotWritable
}
func (s *SpawnContext) IsActionOnCooldown() (bool, error) { return false, errUnknownAddress }

// ReadCharacterProperty and WriteCharacterProperty address the
// instance's current hit target (see AddrSpawnHasHitTarget), not the
// owner — READ_PROP/WRITE_PROP already cover the owner, matching the
// self/target split ActionContext and StatusEffectContext use.
func (s *SpawnContext) ReadCharacterProperty(addr byte) (byte, error) {
	target, err := s.resolveTarget(1)
	if err != nil {
		return 0, err
	}
	return readCharacterByte(addr, target, nil)
}

func (s *SpawnContext) WriteCharacterProperty(addr byte, v byte) error {
	target, err := s.resolveTarget(1)
	if err != nil {
		return err
	}
	return writeCharacterByte(addr, target, v)
}

func (s *SpawnContext) ReadSpawnProperty(addr byte) (byte, error) {
	switch addr {
	case AddrSpawnHasHitTarget:
		return boolByte(s.Instance.HasHitTarget), nil
	case AddrSpawnHitTargetLow:
		return byte(s.Instance.HitTargetID), nil
	case AddrSpawnHitTargetHigh:
		return byte(s.Instance.HitTargetID >> 8), nil
	}
	if v, ok := readEntityCoreByte(addr, &s.Instance.EntityCore); ok {
		return v, nil
	}
	return 0, errUnknownAddress
}

func (s *SpawnContext) WriteSpawnProperty(addr byte, v byte) error {
	if ok, err := writeEntityCoreByte(addr, &s.Instance.EntityCore, v); ok {
		return err
	}
	return errNotWritable
}

// Energy and Grounded report the owning character's state; a spawn has
// no energy pool of its own and "grounded" is meaningful only relative
// to the owner's gravity direction.
func (s *SpawnContext) Energy() byte {
	if s.Owner == nil {
		return 0
	}
	return s.Owner.Energy
}

func (s *SpawnContext) Grounded() bool {
	if s.Owner == nil {
		return false
	}
	return Grounded(s.Owner)
}

func (s *SpawnContext) LockAction() error        { return errNotWritable }
func (s *SpawnContext) UnlockAction() error      { return errNotWritable }
func (s *SpawnContext) ApplyEnergyCost() error   { return errNotWritable }
func (s *SpawnContext) ApplyDuration(f byte) error { return errNotWritable }

func (s *SpawnContext) Spawn(defID byte) error {
	return s.SpawnWithVars(defID, 0, 0, 0, 0)
}

func (s *SpawnContext) SpawnWithVars(defID, v0, v1, v2, v3 byte) error {
	def, ok := s.Game.SpawnDefByID(defID)
	if !ok {
		return errUnknownAddress
	}
	return s.Game.CreateSpawn(s.Instance.OwnerID, def, [4]byte{v0, v1, v2, v3})
}

// resolveTarget picks the character a spawn tick script's targetKind
// argument names: 0 is the owner, 1 is the instance's current hit target
// (see AddrSpawnHasHitTarget), resolved fresh rather than cached since
// resolveHitTarget recomputes it every frame.
func (s *SpawnContext) resolveTarget(targetKind byte) (*entity.Character, error) {
	if targetKind == 0 {
		if s.Owner == nil {
			return nil, errUnknownAddress
		}
		return s.Owner, nil
	}
	if !s.Instance.HasHitTarget {
		return nil, errUnknownAddress
	}
	target, ok := s.Game.CharacterByID(s.Instance.HitTargetID)
	if !ok {
		return nil, errUnknownAddress
	}
	return target, nil
}

func (s *SpawnContext) ApplyStatusEffect(targetKind, defID byte) error {
	target, err := s.resolveTarget(targetKind)
	if err != nil {
		return err
	}
	def, ok := s.Game.StatusEffectDefByID(defID)
	if !ok {
		return errUnknownAddress
	}
	return s.Game.ApplyStatusEffectTo(target, def)
}

func (s *SpawnContext) LogVariable(v byte) {}
