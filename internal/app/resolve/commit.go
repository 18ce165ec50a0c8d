package resolve

import (
	"context"
	"fmt"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/ports"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/battle"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

// submitOutcome dispatches a drawn outcome to the ledger operation matching
// the battle's topology. Side membership is frozen at engagement time, so a
// simple battle is always 1v1, agent-vs-alliance 1v2 and
// alliance-vs-alliance 2v2, dead members included.
func (u UseCase) submitOutcome(ctx context.Context, gameLedgerID int, b game.Battle, sides battle.Sides, out battle.Outcome) (ports.Receipt, error) {
	switch b.Topology {
	case game.TopologySimple:
		winner, loser := sides.A[0], sides.B[0]
		if out.Winner == game.SideB {
			winner, loser = loser, winner
		}
		return u.Ledger.ResolveSimple(ctx, gameLedgerID, b.ID, winner.LedgerID, loser.LedgerID, out.PercentLoss)

	case game.TopologyAgentVsAlliance:
		single, pair := sides.A, sides.B
		singleSide := game.SideA
		if len(single) != 1 {
			single, pair = sides.B, sides.A
			singleSide = game.SideB
		}
		if len(single) != 1 || len(pair) != 2 {
			return ports.Receipt{}, fmt.Errorf("battle %s: topology %s with sides %d/%d", b.ID, b.Topology, len(sides.A), len(sides.B))
		}
		return u.Ledger.ResolveAgentVsAlliance(ctx, gameLedgerID, b.ID,
			single[0].LedgerID, pair[0].LedgerID, pair[1].LedgerID,
			out.Winner == singleSide, out.PercentLoss)

	case game.TopologyAllianceVsAlliance:
		if len(sides.A) != 2 || len(sides.B) != 2 {
			return ports.Receipt{}, fmt.Errorf("battle %s: topology %s with sides %d/%d", b.ID, b.Topology, len(sides.A), len(sides.B))
		}
		return u.Ledger.ResolveAllianceVsAlliance(ctx, gameLedgerID, b.ID,
			sides.A[0].LedgerID, sides.A[1].LedgerID,
			sides.B[0].LedgerID, sides.B[1].LedgerID,
			out.Winner == game.SideA, out.PercentLoss)
	}
	return ports.Receipt{}, fmt.Errorf("battle %s: unknown topology %q", b.ID, b.Topology)
}

// sideOfLedgerIDs maps a recorded winner set back onto a battle side.
func sideOfLedgerIDs(sides battle.Sides, winnerLedgerIDs []int) (game.Side, bool) {
	if len(winnerLedgerIDs) == 0 {
		return "", false
	}
	for _, c := range sides.A {
		if c.LedgerID == winnerLedgerIDs[0] {
			return game.SideA, true
		}
	}
	for _, c := range sides.B {
		if c.LedgerID == winnerLedgerIDs[0] {
			return game.SideB, true
		}
	}
	return "", false
}
