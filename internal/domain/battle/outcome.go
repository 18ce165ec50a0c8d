package battle

import (
	"errors"
	"math/rand"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

var ErrBadLossBounds = errors.New("loss percent bounds out of range")
var ErrBadDeathChance = errors.New("death chance out of range")

// Calculator draws battle outcomes. The same draw drives both the ledger
// commit and the projection finalize, so everything random is resolved here
// once and carried forward as plain values.
type Calculator struct {
	LossMin     int
	LossMax     int
	DeathChance float64
}

// NewCalculator validates the tuning bounds. Loss percents are inclusive and
// must sit inside [1,100]; death chance is a probability.
func NewCalculator(lossMin, lossMax int, deathChance float64) (Calculator, error) {
	if lossMin < 1 || lossMax > 100 || lossMin > lossMax {
		return Calculator{}, ErrBadLossBounds
	}
	if deathChance < 0 || deathChance > 1 {
		return Calculator{}, ErrBadDeathChance
	}
	return Calculator{LossMin: lossMin, LossMax: lossMax, DeathChance: deathChance}, nil
}

// Outcome is one fully resolved draw. Deaths is keyed by losing agent ID and
// covers living losers only.
type Outcome struct {
	Winner      game.Side
	PercentLoss int
	Deaths      map[string]bool
}

// Draw resolves winner, loss percent, and per-loser death rolls for the given
// sides. Win probability is the winning side's share of the combined living
// token pool; two broke sides flip a fair coin. Each living loser rolls death
// independently.
func (c Calculator) Draw(rng *rand.Rand, sides Sides) Outcome {
	tokensA := sides.LivingTokens(game.SideA)
	tokensB := sides.LivingTokens(game.SideB)

	probA := 0.5
	if total := tokensA + tokensB; total > 0 {
		probA = float64(tokensA) / float64(total)
	}

	winner := game.SideB
	if rng.Float64() < probA {
		winner = game.SideA
	}

	percent := c.LossMin
	if span := c.LossMax - c.LossMin; span > 0 {
		percent += rng.Intn(span + 1)
	}

	deaths := make(map[string]bool)
	for _, loser := range sides.Living(winner.Opponent()) {
		deaths[loser.ID] = rng.Float64() < c.DeathChance
	}

	return Outcome{Winner: winner, PercentLoss: percent, Deaths: deaths}
}

// RollDeaths redraws death flags for the given losers. Used when an outcome
// recovered from the ledger lacks the original projection-side rolls.
func (c Calculator) RollDeaths(rng *rand.Rand, losers []Combatant) map[string]bool {
	deaths := make(map[string]bool, len(losers))
	for _, loser := range losers {
		if !loser.Alive {
			continue
		}
		deaths[loser.ID] = rng.Float64() < c.DeathChance
	}
	return deaths
}

// Spoils computes the deterministic token movement for a resolved outcome.
// Each living loser forfeits percent of its balance, rounded down. The pool
// is split evenly across living winners with any remainder going to the
// side's first listed member, so debits always equal credits.
func Spoils(sides Sides, winner game.Side, percent int) (debits, credits map[string]uint64, total uint64) {
	debits = make(map[string]uint64)
	credits = make(map[string]uint64)

	winners := sides.Living(winner)
	if len(winners) == 0 {
		return debits, credits, 0
	}

	for _, loser := range sides.Living(winner.Opponent()) {
		loss := loser.Tokens * uint64(percent) / 100
		if loss == 0 {
			continue
		}
		debits[loser.ID] = loss
		total += loss
	}
	if total == 0 {
		return debits, credits, 0
	}

	share := total / uint64(len(winners))
	remainder := total % uint64(len(winners))
	for i, w := range winners {
		credit := share
		if i == 0 {
			credit += remainder
		}
		if credit > 0 {
			credits[w.ID] = credit
		}
	}
	return debits, credits, total
}
