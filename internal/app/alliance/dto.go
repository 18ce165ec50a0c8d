package alliance

import (
	"time"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

type FormRequest struct {
	GameID      string `json:"game_id"`
	InitiatorID string `json:"initiator_id"`
	JoinerID    string `json:"joiner_id"`
}

type FormResponse struct {
	Alliance game.Alliance `json:"alliance"`
	// Existing is true when the pair was already allied and the call was a
	// no-op returning the standing row.
	Existing bool `json:"existing"`
	// CooldownEndsAt is when the initiator's formation cooldown lapses;
	// zero for the Existing no-op.
	CooldownEndsAt time.Time `json:"cooldown_ends_at"`
}

type BreakRequest struct {
	GameID  string `json:"game_id"`
	AgentID string `json:"agent_id"`
}

type BreakResponse struct {
	Alliance       game.Alliance `json:"alliance"`
	CooldownEndsAt time.Time     `json:"cooldown_ends_at"`
}
