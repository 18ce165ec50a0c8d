package battle

import (
	"errors"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

var ErrUnknownCombatant = errors.New("combatant not loaded")

// Combatant is the resolution-time view of one participant. Tokens and Alive
// are read fresh when the battle resolves; side membership is not.
type Combatant struct {
	ID       string
	Name     string
	LedgerID int
	Tokens   uint64
	Alive    bool
}

// Sides holds both battle sides with resolution-time combatant state.
type Sides struct {
	A []Combatant
	B []Combatant
}

// ExpandSides builds the two sides of a new engagement. Each principal pulls
// its ally into the side when an active alliance link exists. Membership is
// fixed here; later alliance changes do not reshape the battle.
func ExpandSides(initiator, defender game.Agent) (sideA, sideB []string) {
	sideA = []string{initiator.ID}
	if initiator.Allied() {
		sideA = append(sideA, initiator.Ally.AllyID)
	}
	sideB = []string{defender.ID}
	if defender.Allied() {
		sideB = append(sideB, defender.Ally.AllyID)
	}
	return sideA, sideB
}

// Classify derives the engagement topology from side sizes.
func Classify(sideA, sideB []string) game.Topology {
	switch {
	case len(sideA) == 1 && len(sideB) == 1:
		return game.TopologySimple
	case len(sideA) > 1 && len(sideB) > 1:
		return game.TopologyAllianceVsAlliance
	default:
		return game.TopologyAgentVsAlliance
	}
}

// SidesFrom rebuilds combatant sides for a persisted battle from freshly
// loaded agents. Every stored participant must be present in byID.
func SidesFrom(b game.Battle, byID map[string]game.Agent) (Sides, error) {
	build := func(ids []string) ([]Combatant, error) {
		out := make([]Combatant, 0, len(ids))
		for _, id := range ids {
			ag, ok := byID[id]
			if !ok {
				return nil, ErrUnknownCombatant
			}
			out = append(out, Combatant{
				ID:       ag.ID,
				Name:     ag.Name,
				LedgerID: ag.LedgerID,
				Tokens:   ag.Tokens,
				Alive:    ag.Alive,
			})
		}
		return out, nil
	}

	a, err := build(b.SideA)
	if err != nil {
		return Sides{}, err
	}
	bs, err := build(b.SideB)
	if err != nil {
		return Sides{}, err
	}
	return Sides{A: a, B: bs}, nil
}

// Side returns the combatants fighting under the given marker.
func (s Sides) Side(side game.Side) []Combatant {
	if side == game.SideA {
		return s.A
	}
	return s.B
}

// LivingTokens sums token balances across the living members of one side.
// Dead members carry no weight in the outcome draw.
func (s Sides) LivingTokens(side game.Side) uint64 {
	var total uint64
	for _, c := range s.Side(side) {
		if c.Alive {
			total += c.Tokens
		}
	}
	return total
}

// Living returns the living members of one side.
func (s Sides) Living(side game.Side) []Combatant {
	members := s.Side(side)
	out := make([]Combatant, 0, len(members))
	for _, c := range members {
		if c.Alive {
			out = append(out, c)
		}
	}
	return out
}

// Wiped reports whether every member of the side is dead.
func (s Sides) Wiped(side game.Side) bool {
	return len(s.Living(side)) == 0
}
