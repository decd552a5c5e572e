package scriptctx

import (
	"testing"

	"forgeengine/internal/entity"
	"forgeengine/internal/fixed"
	"forgeengine/internal/rng"
)

// fakeGame is a minimal GameView backed by a flat character map, enough
// to exercise the self/target address split without pulling in
// internal/sim.
type fakeGame struct {
	characters map[uint16]*entity.Character
}

func (g *fakeGame) Frame() uint32        { return 0 }
func (g *fakeGame) Seed() uint32         { return 0 }
func (g *fakeGame) Gravity() fixed.Fixed { return fixed.Zero }
func (g *fakeGame) RNG() *rng.State      { return rng.New(1) }

func (g *fakeGame) CharacterByID(id uint16) (*entity.Character, bool) {
	c, ok := g.characters[id]
	return c, ok
}
func (g *fakeGame) SpawnDefByID(id uint8) (*entity.SpawnDefinition, bool) { return nil, false }
func (g *fakeGame) StatusEffectDefByID(id uint8) (*entity.StatusEffectDefinition, bool) {
	return nil, false
}
func (g *fakeGame) CreateSpawn(ownerID uint16, def *entity.SpawnDefinition, vars [4]byte) error {
	return nil
}
func (g *fakeGame) ApplyStatusEffectTo(target *entity.Character, def *entity.StatusEffectDefinition) error {
	return nil
}

func TestActionContextReadCharacterPropertyRequiresTarget(t *testing.T) {
	self := entity.NewCharacter(1)
	game := &fakeGame{characters: map[uint16]*entity.Character{1: self}}
	ctx := &ActionContext{Character: self, Action: &entity.ActionDefinition{}, Game: game}

	if _, err := ctx.ReadCharacterProperty(AddrCharacterHealth); err == nil {
		t.Fatal("expected error reading a target property with no target acquired")
	}
}

func TestActionContextReadWriteCharacterPropertyResolvesAcquiredTarget(t *testing.T) {
	self := entity.NewCharacter(1)
	target := entity.NewCharacter(2)
	target.Health = 80
	target.HealthCap = 100
	self.HasTarget = true
	self.TargetID = target.ID

	game := &fakeGame{characters: map[uint16]*entity.Character{1: self, 2: target}}
	ctx := &ActionContext{Character: self, Action: &entity.ActionDefinition{}, Game: game}

	got, err := ctx.ReadCharacterProperty(AddrCharacterHealth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 80 {
		t.Fatalf("ReadCharacterProperty(health) = %d, want 80 (the target's, not self's)", got)
	}

	if err := ctx.WriteCharacterProperty(AddrCharacterHealth, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Health != 10 {
		t.Fatalf("target.Health = %d, want 10 after WriteCharacterProperty", target.Health)
	}
	if self.Health != 0 {
		t.Fatalf("self.Health = %d, want unchanged 0; WriteCharacterProperty must not touch self", self.Health)
	}
}

func TestActionContextEnmityRoundTripsThroughPropertyBus(t *testing.T) {
	self := entity.NewCharacter(1)
	game := &fakeGame{characters: map[uint16]*entity.Character{1: self}}
	ctx := &ActionContext{Character: self, Action: &entity.ActionDefinition{}, Game: game}

	if err := ctx.WriteByteProp(AddrCharacterEnmity, 7); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if self.Enmity != 7 {
		t.Fatalf("self.Enmity = %d, want 7", self.Enmity)
	}
	got, err := ctx.ReadByteProp(AddrCharacterEnmity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 7 {
		t.Fatalf("ReadByteProp(enmity) = %d, want 7", got)
	}
}

func TestActionContextEnergyChargeRoundTripsThroughPropertyBus(t *testing.T) {
	self := entity.NewCharacter(1)
	self.EnergyCharge = 3
	game := &fakeGame{characters: map[uint16]*entity.Character{1: self}}
	ctx := &ActionContext{Character: self, Action: &entity.ActionDefinition{}, Game: game}

	got, err := ctx.ReadByteProp(AddrCharacterEnergyCharge)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 3 {
		t.Fatalf("ReadByteProp(energy_charge) = %d, want 3", got)
	}

	if err := ctx.WriteByteProp(AddrCharacterEnergyCharge, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if self.EnergyCharge != 0 {
		t.Fatalf("self.EnergyCharge = %d, want 0 after a spending action resets it", self.EnergyCharge)
	}
}
