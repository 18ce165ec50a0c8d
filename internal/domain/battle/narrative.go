package battle

import (
	"fmt"
	"strings"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

// Narrative wording for battle events. These strings are what players and the
// story pipeline see, so the phrasing is part of the contract: each topology
// reads differently and names every combatant.

func joinNames(combatants []Combatant) string {
	names := make([]string, 0, len(combatants))
	for _, c := range combatants {
		names = append(names, c.Name)
	}
	return strings.Join(names, " and ")
}

// OutcomeMessage renders the headline for a resolved battle.
func OutcomeMessage(topology game.Topology, winners, losers []Combatant, percent int) string {
	w := joinNames(winners)
	l := joinNames(losers)
	switch topology {
	case game.TopologyAllianceVsAlliance:
		return fmt.Sprintf("The alliance of %s crushed the alliance of %s, seizing %d%% of their tokens", w, l, percent)
	case game.TopologyAgentVsAlliance:
		if len(winners) == 1 {
			return fmt.Sprintf("%s stood alone against the alliance of %s and prevailed, seizing %d%% of their tokens", w, l, percent)
		}
		return fmt.Sprintf("The alliance of %s overwhelmed %s, seizing %d%% of their tokens", w, l, percent)
	default:
		return fmt.Sprintf("%s defeated %s in single combat, seizing %d%% of their tokens", w, l, percent)
	}
}

// SpoilsMessage renders the token transfer summary for a resolved battle.
func SpoilsMessage(winners []Combatant, total uint64) string {
	if total == 0 {
		return fmt.Sprintf("No tokens changed hands; %s won only the glory", joinNames(winners))
	}
	return fmt.Sprintf("%d tokens passed to %s as spoils of battle", total, joinNames(winners))
}

// DeathMessage renders the fall of one combatant.
func DeathMessage(name string) string {
	return fmt.Sprintf("%s fell in battle and will not return", name)
}

// WalkoverMessage renders a forfeit where one side had no living members
// left when the battle came due.
func WalkoverMessage(winners, losers []Combatant) string {
	return fmt.Sprintf("%s claimed victory unopposed; %s could not answer the call", joinNames(winners), joinNames(losers))
}

// StartedMessage renders the opening of an engagement.
func StartedMessage(topology game.Topology, sideA, sideB []Combatant) string {
	a := joinNames(sideA)
	b := joinNames(sideB)
	switch topology {
	case game.TopologyAllianceVsAlliance:
		return fmt.Sprintf("The alliance of %s marched on the alliance of %s", a, b)
	case game.TopologyAgentVsAlliance:
		if len(sideA) == 1 {
			return fmt.Sprintf("%s challenged the alliance of %s", a, b)
		}
		return fmt.Sprintf("The alliance of %s descended on %s", a, b)
	default:
		return fmt.Sprintf("%s challenged %s to battle", a, b)
	}
}
