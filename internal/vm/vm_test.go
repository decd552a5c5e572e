package vm

import (
	"errors"
	"testing"

	"forgeengine/internal/errkind"
	"forgeengine/internal/fixed"
	"forgeengine/internal/rng"
)

// fakeHost is a minimal Host used to exercise the VM in isolation, without
// pulling in the entity/scriptctx packages.
type fakeHost struct {
	byteProps  map[byte]byte
	fixedProps map[byte]fixed.Fixed
	kinds      map[byte]PropKind
	writable   map[byte]bool

	rngState *rng.State

	energy   byte
	grounded bool

	lockCalled      bool
	unlockCalled    bool
	energyApplied   bool
	durationApplied byte
	spawned         []byte
	cooldownFlag    bool
	lastUsed        fixed.Fixed
	logged          []byte
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		byteProps:  map[byte]byte{},
		fixedProps: map[byte]fixed.Fixed{},
		kinds:      map[byte]PropKind{},
		writable:   map[byte]bool{},
		rngState:   rng.New(1),
	}
}

func (h *fakeHost) PropertyReadKind(addr byte) (PropKind, bool) {
	k, ok := h.kinds[addr]
	return k, ok
}
func (h *fakeHost) PropertyWriteKind(addr byte) (PropKind, bool) {
	k, ok := h.kinds[addr]
	return k, ok
}
func (h *fakeHost) ReadByteProp(addr byte) (byte, error)  { return h.byteProps[addr], nil }
func (h *fakeHost) ReadFixedProp(addr byte) (fixed.Fixed, error) { return h.fixedProps[addr], nil }
func (h *fakeHost) WriteByteProp(addr byte, v byte) error {
	if !h.writable[addr] {
		return errors.New("not writable")
	}
	h.byteProps[addr] = v
	return nil
}
func (h *fakeHost) WriteFixedProp(addr byte, v fixed.Fixed) error {
	if !h.writable[addr] {
		return errors.New("not writable")
	}
	h.fixedProps[addr] = v
	return nil
}
func (h *fakeHost) RNG() *rng.State                         { return h.rngState }
func (h *fakeHost) ReadArg(i byte) (byte, error)             { return i * 2, nil }
func (h *fakeHost) ReadSpawnVar(i byte) (byte, error)        { return i + 1, nil }
func (h *fakeHost) WriteSpawnVar(i byte, v byte) error       { return nil }
func (h *fakeHost) ReadSpawnVarFixed(i byte) (fixed.Fixed, error) {
	return fixed.FromInt(int(i) + 1), nil
}
func (h *fakeHost) WriteSpawnVarFixed(i byte, v fixed.Fixed) error { return nil }
func (h *fakeHost) ReadActionCooldown() (byte, error)        { return 10, nil }
func (h *fakeHost) ReadActionLastUsed() (fixed.Fixed, error) { return h.lastUsed, nil }
func (h *fakeHost) WriteActionLastUsed(frame fixed.Fixed) error {
	h.lastUsed = frame
	return nil
}
func (h *fakeHost) IsActionOnCooldown() (bool, error) { return h.cooldownFlag, nil }
func (h *fakeHost) ReadCharacterProperty(addr byte) (byte, error) { return h.byteProps[addr], nil }
func (h *fakeHost) WriteCharacterProperty(addr byte, v byte) error {
	h.byteProps[addr] = v
	return nil
}
func (h *fakeHost) ReadSpawnProperty(addr byte) (byte, error) { return h.byteProps[addr], nil }
func (h *fakeHost) WriteSpawnProperty(addr byte, v byte) error {
	h.byteProps[addr] = v
	return nil
}
func (h *fakeHost) Energy() byte   { return h.energy }
func (h *fakeHost) Grounded() bool { return h.grounded }
func (h *fakeHost) LockAction() error {
	h.lockCalled = true
	return nil
}
func (h *fakeHost) UnlockAction() error {
	h.unlockCalled = true
	return nil
}
func (h *fakeHost) ApplyEnergyCost() error {
	h.energyApplied = true
	return nil
}
func (h *fakeHost) ApplyDuration(frames byte) error {
	h.durationApplied = frames
	return nil
}
func (h *fakeHost) Spawn(defID byte) error {
	h.spawned = append(h.spawned, defID)
	return nil
}
func (h *fakeHost) SpawnWithVars(defID byte, v0, v1, v2, v3 byte) error {
	h.spawned = append(h.spawned, defID)
	return nil
}
func (h *fakeHost) LogVariable(v byte) { h.logged = append(h.logged, v) }
func (h *fakeHost) ApplyStatusEffect(targetKind byte, defID byte) error {
	return nil
}

func TestAssignByteThenExitWithVar(t *testing.T) {
	code := []byte{
		byte(OpAssignByte), 0, 42,
		byte(OpExitWithVar), 0,
	}
	m := New(code, newFakeHost(), 1)
	gotCode, err := m.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotCode != 42 {
		t.Fatalf("exit code = %d, want 42", gotCode)
	}
}

func TestFixedAddAndExit(t *testing.T) {
	code := []byte{
		byte(OpAssignFixed), 0, 2, 1, // reg0 = 2/1 = 2.0
		byte(OpAssignFixed), 1, 3, 1, // reg1 = 3.0
		byte(OpAdd), 2, 0, 1, // reg2 = reg0 + reg1 = 5.0
		byte(OpToByte), 0, 2, // vars[0] = byte(5)
		byte(OpExitWithVar), 0,
	}
	m := New(code, newFakeHost(), 1)
	got, err := m.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 5 {
		t.Fatalf("exit code = %d, want 5", got)
	}
}

func TestDivideByZeroFails(t *testing.T) {
	code := []byte{
		byte(OpAssignFixed), 0, 1, 1,
		byte(OpAssignFixed), 1, 0, 1,
		byte(OpDiv), 2, 0, 1,
		byte(OpExit), 0,
	}
	m := New(code, newFakeHost(), 7)
	_, err := m.Run()
	var sf *errkind.ScriptFailure
	if !errors.As(err, &sf) {
		t.Fatalf("expected *errkind.ScriptFailure, got %v", err)
	}
	if sf.Kind != errkind.DivideByZero {
		t.Fatalf("kind = %v, want DivideByZero", sf.Kind)
	}
	if sf.ScriptID != 7 {
		t.Fatalf("scriptID = %d, want 7", sf.ScriptID)
	}
}

func TestReadWritePropRoundTrip(t *testing.T) {
	host := newFakeHost()
	host.kinds[0x1A] = PropByte
	host.writable[0x1A] = true
	host.byteProps[0x1A] = 99

	code := []byte{
		byte(OpReadProp), 0, 0x1A, // vars[0] = 99
		byte(OpAssignByte), 1, 50,
		byte(OpWriteProp), 0x1A, 1, // prop[0x1A] = 50
		byte(OpExitWithVar), 0,
	}
	m := New(code, host, 1)
	got, err := m.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 99 {
		t.Fatalf("exit code = %d, want 99 (pre-write read)", got)
	}
	if host.byteProps[0x1A] != 50 {
		t.Fatalf("property after write = %d, want 50", host.byteProps[0x1A])
	}
}

func TestUnknownPropertyFails(t *testing.T) {
	code := []byte{
		byte(OpReadProp), 0, 0xFF,
		byte(OpExit), 0,
	}
	m := New(code, newFakeHost(), 1)
	_, err := m.Run()
	var sf *errkind.ScriptFailure
	if !errors.As(err, &sf) || sf.Kind != errkind.UnknownProperty {
		t.Fatalf("expected UnknownProperty failure, got %v", err)
	}
}

func TestBudgetExhausted(t *testing.T) {
	// GOTO 0 forever: an infinite loop the VM must cut off.
	code := []byte{
		byte(OpGoto), 0, 0,
	}
	m := New(code, newFakeHost(), 1).WithBudget(50)
	_, err := m.Run()
	var sf *errkind.ScriptFailure
	if !errors.As(err, &sf) || sf.Kind != errkind.BudgetExhausted {
		t.Fatalf("expected BudgetExhausted failure, got %v", err)
	}
}

func TestLockActionDelegatesToHost(t *testing.T) {
	host := newFakeHost()
	code := []byte{
		byte(OpLockAction),
		byte(OpApplyEnergyCost),
		byte(OpExit), 0,
	}
	m := New(code, host, 1)
	if _, err := m.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !host.lockCalled {
		t.Fatal("expected LockAction to be called")
	}
	if !host.energyApplied {
		t.Fatal("expected ApplyEnergyCost to be called")
	}
}

func TestOutOfRegistersFails(t *testing.T) {
	code := []byte{
		byte(OpAssignByte), 255, 1,
		byte(OpExit), 0,
	}
	m := New(code, newFakeHost(), 1)
	_, err := m.Run()
	var sf *errkind.ScriptFailure
	if !errors.As(err, &sf) || sf.Kind != errkind.OutOfRegisters {
		t.Fatalf("expected OutOfRegisters failure, got %v", err)
	}
}

func TestTurnAroundIdiom(t *testing.T) {
	// READ_PROP -> NEGATE -> WRITE_PROP on a fixed-typed property.
	host := newFakeHost()
	host.kinds[0x40] = PropFixed
	host.writable[0x40] = true
	host.fixedProps[0x40] = fixed.FromInt(1)

	code := []byte{
		byte(OpReadProp), 0, 0x40,
		byte(OpNegate), 0,
		byte(OpWriteProp), 0x40, 0,
		byte(OpExit), 0,
	}
	m := New(code, host, 1)
	if _, err := m.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if host.fixedProps[0x40] != fixed.FromInt(-1) {
		t.Fatalf("prop after negate = %v, want -1", host.fixedProps[0x40])
	}
}
