package battle

import (
	"math/rand"
	"testing"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

func TestNewCalculator_Bounds(t *testing.T) {
	if _, err := NewCalculator(21, 50, 0.1); err != nil {
		t.Fatalf("valid bounds rejected: %v", err)
	}
	if _, err := NewCalculator(0, 50, 0.1); err != ErrBadLossBounds {
		t.Fatalf("expected ErrBadLossBounds, got %v", err)
	}
	if _, err := NewCalculator(30, 20, 0.1); err != ErrBadLossBounds {
		t.Fatalf("expected ErrBadLossBounds for inverted range, got %v", err)
	}
	if _, err := NewCalculator(21, 101, 0.1); err != ErrBadLossBounds {
		t.Fatalf("expected ErrBadLossBounds for max over 100, got %v", err)
	}
	if _, err := NewCalculator(21, 50, 1.5); err != ErrBadDeathChance {
		t.Fatalf("expected ErrBadDeathChance, got %v", err)
	}
}

func TestCalculator_DrawPercentWithinBounds(t *testing.T) {
	calc, err := NewCalculator(21, 50, 0)
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	rng := rand.New(rand.NewSource(7))
	sides := Sides{
		A: []Combatant{{ID: "a-1", Tokens: 500, Alive: true}},
		B: []Combatant{{ID: "a-2", Tokens: 500, Alive: true}},
	}

	for i := 0; i < 200; i++ {
		out := calc.Draw(rng, sides)
		if out.PercentLoss < 21 || out.PercentLoss > 50 {
			t.Fatalf("percent loss out of bounds: %d", out.PercentLoss)
		}
		if out.Winner != game.SideA && out.Winner != game.SideB {
			t.Fatalf("unexpected winner side: %q", out.Winner)
		}
	}
}

func TestCalculator_DrawWeightedByTokens(t *testing.T) {
	calc, err := NewCalculator(21, 50, 0)
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	rng := rand.New(rand.NewSource(11))
	sides := Sides{
		A: []Combatant{{ID: "rich", Tokens: 9900, Alive: true}},
		B: []Combatant{{ID: "poor", Tokens: 100, Alive: true}},
	}

	winsA := 0
	for i := 0; i < 1000; i++ {
		if calc.Draw(rng, sides).Winner == game.SideA {
			winsA++
		}
	}
	if winsA < 950 {
		t.Fatalf("expected heavy favourite to win ~99%%, won %d/1000", winsA)
	}
}

func TestCalculator_DrawBothBrokeIsFair(t *testing.T) {
	calc, err := NewCalculator(21, 50, 0)
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	rng := rand.New(rand.NewSource(3))
	sides := Sides{
		A: []Combatant{{ID: "a-1", Tokens: 0, Alive: true}},
		B: []Combatant{{ID: "a-2", Tokens: 0, Alive: true}},
	}

	winsA := 0
	for i := 0; i < 2000; i++ {
		if calc.Draw(rng, sides).Winner == game.SideA {
			winsA++
		}
	}
	if winsA < 850 || winsA > 1150 {
		t.Fatalf("expected near coin flip at zero tokens, side a won %d/2000", winsA)
	}
}

func TestCalculator_DeathRollsCoverLivingLosersOnly(t *testing.T) {
	calc, err := NewCalculator(21, 50, 1.0)
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	rng := rand.New(rand.NewSource(5))
	sides := Sides{
		A: []Combatant{{ID: "a-1", Tokens: 1_000_000, Alive: true}},
		B: []Combatant{
			{ID: "a-2", Tokens: 1, Alive: true},
			{ID: "a-3", Tokens: 1, Alive: false},
		},
	}

	for i := 0; i < 50; i++ {
		out := calc.Draw(rng, sides)
		if out.Winner != game.SideA {
			continue
		}
		if died, ok := out.Deaths["a-2"]; !ok || !died {
			t.Fatalf("expected living loser to roll death at chance 1.0: %v", out.Deaths)
		}
		if _, ok := out.Deaths["a-3"]; ok {
			t.Fatalf("dead combatant must not roll death again: %v", out.Deaths)
		}
		return
	}
	t.Fatal("heavy favourite never won in 50 draws")
}

func TestSpoils_FloorsAndSplits(t *testing.T) {
	sides := Sides{
		A: []Combatant{
			{ID: "w-1", Tokens: 10, Alive: true},
			{ID: "w-2", Tokens: 10, Alive: true},
		},
		B: []Combatant{
			{ID: "l-1", Tokens: 101, Alive: true},
			{ID: "l-2", Tokens: 50, Alive: false},
		},
	}

	debits, credits, total := Spoils(sides, game.SideA, 30)

	// floor(101*30/100) = 30, dead loser exempt
	if debits["l-1"] != 30 {
		t.Fatalf("expected 30 debited from l-1, got %d", debits["l-1"])
	}
	if _, ok := debits["l-2"]; ok {
		t.Fatalf("dead loser must not be debited: %v", debits)
	}
	if total != 30 {
		t.Fatalf("expected total 30, got %d", total)
	}
	// 30 split two ways, remainder to first listed winner
	if credits["w-1"] != 15 || credits["w-2"] != 15 {
		t.Fatalf("unexpected credits: %v", credits)
	}
}

func TestSpoils_RemainderToFirstWinner(t *testing.T) {
	sides := Sides{
		A: []Combatant{
			{ID: "w-1", Tokens: 0, Alive: true},
			{ID: "w-2", Tokens: 0, Alive: true},
		},
		B: []Combatant{{ID: "l-1", Tokens: 105, Alive: true}},
	}

	debits, credits, total := Spoils(sides, game.SideA, 30)

	// floor(105*30/100) = 31
	if debits["l-1"] != 31 || total != 31 {
		t.Fatalf("expected 31 debited, got debit=%d total=%d", debits["l-1"], total)
	}
	if credits["w-1"] != 16 || credits["w-2"] != 15 {
		t.Fatalf("expected remainder on first winner, got %v", credits)
	}

	var creditSum uint64
	for _, c := range credits {
		creditSum += c
	}
	if creditSum != total {
		t.Fatalf("credits %d do not balance debits %d", creditSum, total)
	}
}

func TestSpoils_ZeroWhenLosersBroke(t *testing.T) {
	sides := Sides{
		A: []Combatant{{ID: "w-1", Tokens: 10, Alive: true}},
		B: []Combatant{{ID: "l-1", Tokens: 0, Alive: true}},
	}

	debits, credits, total := Spoils(sides, game.SideA, 50)
	if total != 0 || len(debits) != 0 || len(credits) != 0 {
		t.Fatalf("expected no movement, got debits=%v credits=%v total=%d", debits, credits, total)
	}
}
