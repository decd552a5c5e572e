package simconfig

import (
	"testing"

	"forgeengine/internal/entity"
)

func minimalBlob() *Blob {
	return &Blob{
		Seed:    1,
		Gravity: FixedPair{Num: 1, Den: 4},
		Tilemap: [][]uint8{{0, 0}, {1, 1}},
		Actions: []ActionBlob{
			{ID: 1, EnergyCost: 5, Cooldown: 10, Script: []byte{0, 0}},
		},
		Conditions: []ConditionBlob{
			{ID: 1, EnergyMul: FixedPair{Num: 1, Den: 1}, Script: []byte{0, 0}},
		},
		Spawns: []SpawnBlob{
			{ID: 2, Width: 4, Height: 4, InitialVelX: FixedPair{Den: 1}, InitialVelY: FixedPair{Den: 1}},
		},
		StatusEffects: []StatusEffectBlob{
			{ID: 3, StackLimit: 1, Duration: 10},
		},
		Characters: []CharacterBlob{
			{
				ID: 1, Width: 16, Height: 16,
				PosX: FixedPair{Den: 1}, PosY: FixedPair{Den: 1},
				JumpForce: FixedPair{Den: 1}, MoveSpeed: FixedPair{Den: 1},
				HealthCap: 100, EnergyCap: 50,
				Behaviors: []BehaviorPair{{ConditionID: 1, ActionID: 1}},
			},
		},
	}
}

func TestValidateAcceptsMinimalBlob(t *testing.T) {
	if err := Validate(minimalBlob()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateRejectsRaggedTilemap(t *testing.T) {
	b := minimalBlob()
	b.Tilemap = [][]uint8{{0, 0}, {1}}
	if err := Validate(b); err == nil {
		t.Fatal("expected error for ragged tilemap")
	}
}

func TestValidateRejectsUnknownConditionReference(t *testing.T) {
	b := minimalBlob()
	b.Characters[0].Behaviors = []BehaviorPair{{ConditionID: 99, ActionID: 1}}
	if err := Validate(b); err == nil {
		t.Fatal("expected error for unknown condition id")
	}
}

func TestValidateRejectsUnknownActionReference(t *testing.T) {
	b := minimalBlob()
	b.Characters[0].Behaviors = []BehaviorPair{{ConditionID: 1, ActionID: 99}}
	if err := Validate(b); err == nil {
		t.Fatal("expected error for unknown action id")
	}
}

func TestValidateRejectsZeroDenominator(t *testing.T) {
	b := minimalBlob()
	b.Gravity = FixedPair{Num: 1, Den: 0}
	if err := Validate(b); err == nil {
		t.Fatal("expected error for zero-denominator gravity")
	}
}

func TestValidateRejectsUnparseableScript(t *testing.T) {
	b := minimalBlob()
	b.Actions[0].Script = []byte{255}
	if err := Validate(b); err == nil {
		t.Fatal("expected error for unparseable script")
	}
}

func TestValidateRejectsDuplicateCharacterID(t *testing.T) {
	b := minimalBlob()
	b.Characters = append(b.Characters, b.Characters[0])
	if err := Validate(b); err == nil {
		t.Fatal("expected error for duplicate character id")
	}
}

func TestValidateRejectsUnknownHitboxKind(t *testing.T) {
	b := minimalBlob()
	b.Spawns[0].HitboxKind = 99
	if err := Validate(b); err == nil {
		t.Fatal("expected error for unrecognized hitbox kind")
	}
}

func TestValidateRejectsHitboxZeroDenominator(t *testing.T) {
	b := minimalBlob()
	b.Spawns[0].HitboxKind = uint8(entity.HitboxCircle)
	b.Spawns[0].HitboxRange = FixedPair{Num: 10, Den: 0}
	if err := Validate(b); err == nil {
		t.Fatal("expected error for zero-denominator hitbox range")
	}
}

func TestBuildAppliesHitboxShape(t *testing.T) {
	b := minimalBlob()
	b.Spawns[0].HitboxKind = uint8(entity.HitboxCircle)
	b.Spawns[0].HitboxRange = FixedPair{Num: 10, Den: 1}
	b.Spawns[0].HitboxWidth = FixedPair{Num: 2, Den: 1}

	defs, _ := Build(b)
	def, ok := defs.SpawnDefByID(2)
	if !ok {
		t.Fatal("expected spawn def 2 to exist")
	}
	if def.Hitbox.Kind != entity.HitboxCircle {
		t.Fatalf("hitbox kind = %v, want HitboxCircle", def.Hitbox.Kind)
	}
	if def.Hitbox.Range.Int() != 10 {
		t.Fatalf("hitbox range = %v, want 10", def.Hitbox.Range.Int())
	}
}

func TestBuildProducesCharacterFromBlob(t *testing.T) {
	b := minimalBlob()
	defs, characters := Build(b)

	if len(characters) != 1 {
		t.Fatalf("len(characters) = %d, want 1", len(characters))
	}
	ch := characters[0]
	if ch.HealthCap != 100 || ch.Health != 100 {
		t.Fatalf("health = %d/%d, want 100/100", ch.Health, ch.HealthCap)
	}
	if len(ch.Behaviors) != 1 || ch.Behaviors[0].ActionID != 1 {
		t.Fatalf("behaviors = %v, want one entry with action id 1", ch.Behaviors)
	}

	if _, ok := defs.ActionByID(1); !ok {
		t.Fatal("expected action 1 to exist in Definitions")
	}
	if _, ok := defs.SpawnDefByID(2); !ok {
		t.Fatal("expected spawn def 2 to exist in Definitions")
	}
	if defs.Tilemap.Rows() != 2 || defs.Tilemap.Cols() != 2 {
		t.Fatalf("tilemap dims = %dx%d, want 2x2", defs.Tilemap.Rows(), defs.Tilemap.Cols())
	}
}
