// Package vm implements the stack-free register-machine bytecode
// interpreter that drives conditions, actions, and status-effect scripts.
// The VM itself only understands registers, arithmetic, and control flow;
// everything that touches character or world state is delegated to a Host
// implementation supplied by the caller (see internal/scriptctx).
package vm

import (
	"encoding/binary"

	"forgeengine/internal/errkind"
	"forgeengine/internal/fixed"
	"forgeengine/internal/rng"
)

// NumByteRegs and NumFixedRegs are the sizes of the two register banks.
// 16 of each is the floor a script is guaranteed; scripts that need more
// than this are a content bug, not a VM limitation, and are rejected by
// OutOfRegisters rather than silently growing the banks.
const (
	NumByteRegs  = 16
	NumFixedRegs = 16
)

// PropKind is the declared type of a property bus address.
type PropKind int

const (
	PropByte PropKind = iota
	PropFixed
)

// Host is everything a running script can observe or mutate beyond its own
// registers. The four script contexts in internal/scriptctx (condition,
// action, spawn, status-effect) each implement Host with the permissions
// appropriate to their caller; an out-of-scope operation returns an error
// from the host, which the VM either wraps as an errkind.ScriptFailure or,
// for the action-lifecycle, spawn and status-effect calls, returns
// unchanged.
type Host interface {
	// PropertyReadKind and PropertyWriteKind report the declared register
	// bank for reading and writing addr respectively. These are queried
	// separately, not as one "declared type" per address, because a
	// handful of addresses (entity direction) are asymmetric: read as
	// Fixed, written as a byte enum. ok is false if addr is not
	// recognized for that direction of access.
	PropertyReadKind(addr byte) (kind PropKind, ok bool)
	PropertyWriteKind(addr byte) (kind PropKind, ok bool)
	// ReadByteProp reads a byte-typed property.
	ReadByteProp(addr byte) (byte, error)
	// ReadFixedProp reads a fixed-typed property.
	ReadFixedProp(addr byte) (fixed.Fixed, error)
	// WriteByteProp writes a byte-typed property. Returns an error if addr
	// is not writable in the caller's context.
	WriteByteProp(addr byte, v byte) error
	// WriteFixedProp writes a fixed-typed property.
	WriteFixedProp(addr byte, v fixed.Fixed) error

	// RNG returns the generator scripts draw from for ASSIGN_RANDOM. The
	// same generator backing the tick's RNG, so random script draws take
	// their place in the fixed consumption order.
	RNG() *rng.State

	ReadArg(i byte) (byte, error)
	ReadSpawnVar(i byte) (byte, error)
	WriteSpawnVar(i byte, v byte) error
	// ReadSpawnVarFixed and WriteSpawnVarFixed are ReadSpawnVar/
	// WriteSpawnVar's counterpart for the current spawn or status effect
	// instance's fixed_vars bank.
	ReadSpawnVarFixed(i byte) (fixed.Fixed, error)
	WriteSpawnVarFixed(i byte, v fixed.Fixed) error

	ReadActionCooldown() (byte, error)
	ReadActionLastUsed() (fixed.Fixed, error)
	WriteActionLastUsed(frame fixed.Fixed) error
	IsActionOnCooldown() (bool, error)

	ReadCharacterProperty(addr byte) (byte, error)
	WriteCharacterProperty(addr byte, v byte) error
	ReadSpawnProperty(addr byte) (byte, error)
	WriteSpawnProperty(addr byte, v byte) error

	// Energy and Grounded back EXIT_IF_NO_ENERGY and EXIT_IF_NOT_GROUNDED
	// directly rather than through a property address, since both are
	// control-flow shortcuts rather than general property access.
	Energy() byte
	Grounded() bool

	LockAction() error
	UnlockAction() error
	ApplyEnergyCost() error
	// ApplyDuration extends/refreshes the current status-effect
	// instance's remaining duration. Only meaningful inside a
	// status-effect script; the other contexts return an error, which
	// the VM returns unchanged.
	ApplyDuration(frames byte) error
	Spawn(defID byte) error
	SpawnWithVars(defID byte, v0, v1, v2, v3 byte) error
	// ApplyStatusEffect attaches defID to self (targetKind=0) or to the
	// executing character's current target (targetKind=1).
	ApplyStatusEffect(targetKind byte, defID byte) error

	// LogVariable is a no-op in release builds; debug hosts may record it.
	LogVariable(v byte)
}

// Registers is one script invocation's private scratch space.
type Registers struct {
	Vars  [NumByteRegs]byte
	Fixed [NumFixedRegs]fixed.Fixed
}

// DefaultBudget is the per-invocation instruction ceiling used when the
// caller does not override it. No script may loop unboundedly; exceeding
// this is a typed BudgetExhausted failure, not a hang.
const DefaultBudget = 1024

// VM executes one script invocation against a Host.
type VM struct {
	code  []byte
	pc    int
	regs  Registers
	host  Host
	steps int
	budget int
	scriptID uint16

	exited   bool
	exitCode byte
}

// New creates a VM ready to run code against host. scriptID is carried
// into any ScriptFailure produced during execution, for the error journal.
func New(code []byte, host Host, scriptID uint16) *VM {
	return &VM{
		code:     code,
		host:     host,
		budget:   DefaultBudget,
		scriptID: scriptID,
	}
}

// WithBudget overrides the instruction budget before Run is called.
func (v *VM) WithBudget(n int) *VM {
	v.budget = n
	return v
}

// SetRegisters seeds the VM's registers before Run.
func (v *VM) SetRegisters(r Registers) *VM {
	v.regs = r
	return v
}

// RegisterSnapshot returns the current register contents.
func (v *VM) RegisterSnapshot() Registers {
	return v.regs
}

// ExitCode returns the byte passed to EXIT or EXIT_WITH_VAR once the
// script has terminated successfully.
func (v *VM) ExitCode() byte { return v.exitCode }

// fail wraps a failure kind into a ScriptFailure at the current pc.
func (v *VM) fail(kind errkind.ScriptFailureKind) error {
	return &errkind.ScriptFailure{ScriptID: v.scriptID, PC: v.pc, Kind: kind}
}

// Run executes instructions until EXIT, an error, or budget exhaustion.
// It returns the exit code and any error that terminated the script
// abnormally. A nil error means the script reached an EXIT opcode.
func (v *VM) Run() (byte, error) {
	for !v.exited {
		if v.steps >= v.budget {
			return 0, v.fail(errkind.BudgetExhausted)
		}
		v.steps++
		if err := v.step(); err != nil {
			return 0, err
		}
	}
	return v.exitCode, nil
}

// maxOperands is the widest operand list any opcode uses (SPAWN_WITH_VARS:
// def id plus four immediate var bytes).
const maxOperands = 5

// fetch reads the next instruction, advancing pc, and returns its opcode
// and its raw operand bytes, zero-padded to maxOperands.
func (v *VM) fetch() (Opcode, [maxOperands]byte, error) {
	if v.pc >= len(v.code) {
		return 0, [maxOperands]byte{}, v.fail(errkind.UnknownOpcode)
	}
	op := Opcode(v.code[v.pc])
	if !op.Valid() {
		return 0, [maxOperands]byte{}, v.fail(errkind.UnknownOpcode)
	}
	width := op.OperandWidth()
	if v.pc+1+width > len(v.code) {
		return 0, [maxOperands]byte{}, v.fail(errkind.UnknownOpcode)
	}
	var operands [maxOperands]byte
	copy(operands[:], v.code[v.pc+1:v.pc+1+width])
	v.pc += 1 + width
	return op, operands, nil
}

func (v *VM) byteReg(idx byte) (byte, error) {
	if int(idx) >= NumByteRegs {
		return 0, v.fail(errkind.OutOfRegisters)
	}
	return v.regs.Vars[idx], nil
}

func (v *VM) setByteReg(idx byte, val byte) error {
	if int(idx) >= NumByteRegs {
		return v.fail(errkind.OutOfRegisters)
	}
	v.regs.Vars[idx] = val
	return nil
}

func (v *VM) fixedReg(idx byte) (fixed.Fixed, error) {
	if int(idx) >= NumFixedRegs {
		return 0, v.fail(errkind.OutOfRegisters)
	}
	return v.regs.Fixed[idx], nil
}

func (v *VM) setFixedReg(idx byte, val fixed.Fixed) error {
	if int(idx) >= NumFixedRegs {
		return v.fail(errkind.OutOfRegisters)
	}
	v.regs.Fixed[idx] = val
	return nil
}

// step decodes and executes exactly one instruction.
func (v *VM) step() error {
	op, ops, err := v.fetch()
	if err != nil {
		return err
	}

	switch op {
	case OpExit:
		v.exitCode = ops[0]
		v.exited = true

	case OpExitWithVar:
		val, err := v.byteReg(ops[0])
		if err != nil {
			return err
		}
		v.exitCode = val
		v.exited = true

	case OpExitIfNoEnergy:
		if v.host.Energy() < ops[0] {
			v.exitCode = 0
			v.exited = true
		}

	case OpExitIfCooldown:
		onCooldown, err := v.host.IsActionOnCooldown()
		if err != nil {
			return v.fail(errkind.TypeMismatch)
		}
		if onCooldown {
			v.exitCode = 0
			v.exited = true
		}

	case OpExitIfNotGrounded:
		if !v.host.Grounded() {
			v.exitCode = 0
			v.exited = true
		}

	case OpSkip:
		v.pc += int(ops[0])

	case OpGoto:
		v.pc = int(binary.BigEndian.Uint16(ops[:2]))

	case OpReadProp:
		return v.execReadProp(ops[0], ops[1])
	case OpWriteProp:
		return v.execWriteProp(ops[0], ops[1])

	case OpAssignByte:
		return v.setByteReg(ops[0], ops[1])
	case OpAssignFixed:
		num := int64(int8(ops[1]))
		den := int64(int8(ops[2]))
		return v.setFixedReg(ops[0], fixed.FromRational(num, den))
	case OpAssignRandom:
		return v.setByteReg(ops[0], v.host.RNG().NextByte())

	case OpToByte:
		src, err := v.fixedReg(ops[1])
		if err != nil {
			return err
		}
		return v.setByteReg(ops[0], byte(src.SaturatingInt(0, 255)))
	case OpToFixed:
		src, err := v.byteReg(ops[1])
		if err != nil {
			return err
		}
		return v.setFixedReg(ops[0], fixed.FromInt(int(src)))

	case OpAdd, OpSub, OpMul, OpDiv, OpMin, OpMax:
		return v.execFixedBinary(op, ops[0], ops[1], ops[2])
	case OpNegate:
		a, err := v.fixedReg(ops[0])
		if err != nil {
			return err
		}
		return v.setFixedReg(ops[0], a.Negate())

	case OpAddByte, OpSubByte, OpMulByte, OpDivByte, OpModByte, OpWrappingAdd:
		return v.execByteBinary(op, ops[0], ops[1], ops[2])

	case OpEqual, OpNotEqual, OpLessThan, OpLessThanOrEqual, OpOr, OpAnd:
		return v.execLogic(op, ops[0], ops[1], ops[2])
	case OpNot:
		a, err := v.byteReg(ops[1])
		if err != nil {
			return err
		}
		result := byte(0)
		if a == 0 {
			result = 1
		}
		return v.setByteReg(ops[0], result)

	case OpLockAction:
		return v.host.LockAction()
	case OpUnlockAction:
		return v.host.UnlockAction()
	case OpApplyEnergyCost:
		return v.host.ApplyEnergyCost()
	case OpApplyDuration:
		frames, err := v.byteReg(ops[0])
		if err != nil {
			return err
		}
		return v.host.ApplyDuration(frames)
	case OpSpawn:
		return v.host.Spawn(ops[0])
	case OpSpawnWithVars:
		return v.host.SpawnWithVars(ops[0], ops[1], ops[2], ops[3], ops[4])

	case OpReadArg:
		val, err := v.host.ReadArg(ops[1])
		if err != nil {
			return v.fail(errkind.UnknownProperty)
		}
		return v.setByteReg(ops[0], val)
	case OpReadSpawn:
		val, err := v.host.ReadSpawnVar(ops[1])
		if err != nil {
			return v.fail(errkind.UnknownProperty)
		}
		return v.setByteReg(ops[0], val)
	case OpWriteSpawn:
		src, err := v.byteReg(ops[1])
		if err != nil {
			return err
		}
		if err := v.host.WriteSpawnVar(ops[0], src); err != nil {
			return v.fail(errkind.UnknownProperty)
		}
		return nil
	case OpReadActionCooldown:
		val, err := v.host.ReadActionCooldown()
		if err != nil {
			return v.fail(errkind.UnknownProperty)
		}
		return v.setByteReg(ops[0], val)
	case OpReadActionLastUsed:
		val, err := v.host.ReadActionLastUsed()
		if err != nil {
			return v.fail(errkind.UnknownProperty)
		}
		return v.setFixedReg(ops[0], val)
	case OpWriteActionLastUsed:
		src, err := v.fixedReg(ops[0])
		if err != nil {
			return err
		}
		if err := v.host.WriteActionLastUsed(src); err != nil {
			return v.fail(errkind.UnknownProperty)
		}
		return nil
	case OpIsActionOnCooldown:
		onCooldown, err := v.host.IsActionOnCooldown()
		if err != nil {
			return v.fail(errkind.TypeMismatch)
		}
		result := byte(0)
		if onCooldown {
			result = 1
		}
		return v.setByteReg(ops[0], result)
	case OpReadCharacterProperty:
		val, err := v.host.ReadCharacterProperty(ops[1])
		if err != nil {
			return v.fail(errkind.UnknownProperty)
		}
		return v.setByteReg(ops[0], val)
	case OpWriteCharacterProperty:
		src, err := v.byteReg(ops[1])
		if err != nil {
			return err
		}
		if err := v.host.WriteCharacterProperty(ops[0], src); err != nil {
			return v.fail(errkind.UnknownProperty)
		}
		return nil
	case OpReadSpawnProperty:
		val, err := v.host.ReadSpawnProperty(ops[1])
		if err != nil {
			return v.fail(errkind.UnknownProperty)
		}
		return v.setByteReg(ops[0], val)
	case OpWriteSpawnProperty:
		src, err := v.byteReg(ops[1])
		if err != nil {
			return err
		}
		if err := v.host.WriteSpawnProperty(ops[0], src); err != nil {
			return v.fail(errkind.UnknownProperty)
		}
		return nil

	case OpReadSpawnFixed:
		val, err := v.host.ReadSpawnVarFixed(ops[1])
		if err != nil {
			return v.fail(errkind.UnknownProperty)
		}
		return v.setFixedReg(ops[0], val)
	case OpWriteSpawnFixed:
		src, err := v.fixedReg(ops[1])
		if err != nil {
			return err
		}
		if err := v.host.WriteSpawnVarFixed(ops[0], src); err != nil {
			return v.fail(errkind.UnknownProperty)
		}
		return nil

	case OpLogVariable:
		val, err := v.byteReg(ops[0])
		if err != nil {
			return err
		}
		v.host.LogVariable(val)

	case OpApplyStatusEffect:
		return v.host.ApplyStatusEffect(ops[0], ops[1])

	default:
		return v.fail(errkind.UnknownOpcode)
	}
	return nil
}

func (v *VM) execReadProp(dst, addr byte) error {
	kind, ok := v.host.PropertyReadKind(addr)
	if !ok {
		return v.fail(errkind.UnknownProperty)
	}
	switch kind {
	case PropByte:
		val, err := v.host.ReadByteProp(addr)
		if err != nil {
			return v.fail(errkind.UnknownProperty)
		}
		return v.setByteReg(dst, val)
	case PropFixed:
		val, err := v.host.ReadFixedProp(addr)
		if err != nil {
			return v.fail(errkind.UnknownProperty)
		}
		return v.setFixedReg(dst, val)
	default:
		return v.fail(errkind.TypeMismatch)
	}
}

func (v *VM) execWriteProp(addr, src byte) error {
	kind, ok := v.host.PropertyWriteKind(addr)
	if !ok {
		return v.fail(errkind.UnknownProperty)
	}
	switch kind {
	case PropByte:
		val, err := v.byteReg(src)
		if err != nil {
			return err
		}
		if err := v.host.WriteByteProp(addr, val); err != nil {
			return v.fail(errkind.UnknownProperty)
		}
	case PropFixed:
		val, err := v.fixedReg(src)
		if err != nil {
			return err
		}
		if err := v.host.WriteFixedProp(addr, val); err != nil {
			return v.fail(errkind.UnknownProperty)
		}
	default:
		return v.fail(errkind.TypeMismatch)
	}
	return nil
}

func (v *VM) execFixedBinary(op Opcode, dst, a, b byte) error {
	av, err := v.fixedReg(a)
	if err != nil {
		return err
	}
	bv, err := v.fixedReg(b)
	if err != nil {
		return err
	}
	var result fixed.Fixed
	switch op {
	case OpAdd:
		result = av.Add(bv)
	case OpSub:
		result = av.Sub(bv)
	case OpMul:
		result = av.Mul(bv)
	case OpDiv:
		result, err = av.Div(bv)
		if err != nil {
			return v.fail(errkind.DivideByZero)
		}
	case OpMin:
		result = fixed.Min(av, bv)
	case OpMax:
		result = fixed.Max(av, bv)
	}
	return v.setFixedReg(dst, result)
}

func (v *VM) execByteBinary(op Opcode, dst, a, b byte) error {
	av, err := v.byteReg(a)
	if err != nil {
		return err
	}
	bv, err := v.byteReg(b)
	if err != nil {
		return err
	}
	var result byte
	switch op {
	case OpAddByte:
		sum := int(av) + int(bv)
		if sum > 255 {
			sum = 255
		}
		result = byte(sum)
	case OpSubByte:
		diff := int(av) - int(bv)
		if diff < 0 {
			diff = 0
		}
		result = byte(diff)
	case OpMulByte:
		prod := int(av) * int(bv)
		if prod > 255 {
			prod = 255
		}
		result = byte(prod)
	case OpDivByte:
		if bv == 0 {
			return v.fail(errkind.DivideByZero)
		}
		result = av / bv
	case OpModByte:
		if bv == 0 {
			return v.fail(errkind.DivideByZero)
		}
		result = av % bv
	case OpWrappingAdd:
		result = av + bv
	}
	return v.setByteReg(dst, result)
}

func (v *VM) execLogic(op Opcode, dst, a, b byte) error {
	av, err := v.byteReg(a)
	if err != nil {
		return err
	}
	bv, err := v.byteReg(b)
	if err != nil {
		return err
	}
	var result bool
	switch op {
	case OpEqual:
		result = av == bv
	case OpNotEqual:
		result = av != bv
	case OpLessThan:
		result = av < bv
	case OpLessThanOrEqual:
		result = av <= bv
	case OpOr:
		result = av != 0 || bv != 0
	case OpAnd:
		result = av != 0 && bv != 0
	}
	out := byte(0)
	if result {
		out = 1
	}
	return v.setByteReg(dst, out)
}
