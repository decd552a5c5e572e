package sim

import (
	"testing"

	"forgeengine/internal/simconfig"
)

// threeCharacterBlob places character 1 (group 0) at x=0 with two group-1
// enemies to its right at different distances (x=10 and x=100), with no
// behaviors so Step's action
// phase never mutates position or energy and only acquireTargets'
// effect is observed.
func threeCharacterBlob() *simconfig.Blob {
	return &simconfig.Blob{
		Seed:    3,
		Gravity: simconfig.FixedPair{Num: 0, Den: 1},
		Tilemap: [][]uint8{{0}},
		Characters: []simconfig.CharacterBlob{
			{
				ID: 1, Group: 0, Width: 16, Height: 16,
				PosX: simconfig.FixedPair{Num: 0, Den: 1}, PosY: simconfig.FixedPair{Num: 0, Den: 1},
				Direction: simconfig.DirectionBlob{Horizontal: 2, Vertical: 1},
				JumpForce: simconfig.FixedPair{Den: 1}, MoveSpeed: simconfig.FixedPair{Den: 1},
				HealthCap: 100, EnergyCap: 50,
			},
			{
				ID: 2, Group: 1, Width: 16, Height: 16,
				PosX: simconfig.FixedPair{Num: 100, Den: 1}, PosY: simconfig.FixedPair{Num: 0, Den: 1},
				Direction: simconfig.DirectionBlob{Horizontal: 2, Vertical: 1},
				JumpForce: simconfig.FixedPair{Den: 1}, MoveSpeed: simconfig.FixedPair{Den: 1},
				HealthCap: 100, EnergyCap: 50,
			},
			{
				ID: 3, Group: 1, Width: 16, Height: 16,
				PosX: simconfig.FixedPair{Num: 10, Den: 1}, PosY: simconfig.FixedPair{Num: 0, Den: 1},
				Direction: simconfig.DirectionBlob{Horizontal: 2, Vertical: 1},
				JumpForce: simconfig.FixedPair{Den: 1}, MoveSpeed: simconfig.FixedPair{Den: 1},
				HealthCap: 100, EnergyCap: 50,
			},
		},
	}
}

func TestAcquireTargetsPicksNearestEnemy(t *testing.T) {
	g, err := NewGame(threeCharacterBlob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	g.Step()

	c1, _ := g.CharacterByID(1)
	if !c1.HasTarget {
		t.Fatal("expected character 1 to acquire a target among its group-1 enemies")
	}
	if c1.TargetID != 3 {
		t.Fatalf("TargetID = %d, want 3 (nearest enemy)", c1.TargetID)
	}
	if c1.TargetType != targetTypeCharacter {
		t.Fatalf("TargetType = %d, want %d", c1.TargetType, targetTypeCharacter)
	}
}

func TestAcquireTargetsPrefersHigherEnmityOverDistance(t *testing.T) {
	g, err := NewGame(threeCharacterBlob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	far, _ := g.CharacterByID(2)
	far.Enmity = 1

	g.Step()

	c1, _ := g.CharacterByID(1)
	if c1.TargetID != 2 {
		t.Fatalf("TargetID = %d, want 2 (higher enmity beats nearer distance)", c1.TargetID)
	}
}

func TestAcquireTargetsSkipsDeadCharacters(t *testing.T) {
	g, err := NewGame(threeCharacterBlob())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	nearest, _ := g.CharacterByID(3)
	nearest.Health = 0

	g.Step()

	c1, _ := g.CharacterByID(1)
	if c1.TargetID != 2 {
		t.Fatalf("TargetID = %d, want 2 (nearest enemy is dead)", c1.TargetID)
	}
}

func TestAcquireTargetsLeavesEnemylessCharacterUntargeted(t *testing.T) {
	b := threeCharacterBlob()
	b.Characters[1].Group = 0
	b.Characters[2].Group = 0

	g, err := NewGame(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g.Step()

	c1, _ := g.CharacterByID(1)
	if c1.HasTarget {
		t.Fatal("expected no target: every character shares group 0 and so is a mutual ally")
	}
}
