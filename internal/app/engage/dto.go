package engage

import (
	"time"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

type OpenRequest struct {
	GameID      string `json:"game_id"`
	InitiatorID string `json:"initiator_id"`
	DefenderID  string `json:"defender_id"`
}

type OpenResponse struct {
	Battle game.Battle `json:"battle"`
}

type IgnoreRequest struct {
	GameID   string `json:"game_id"`
	AgentID  string `json:"agent_id"`
	TargetID string `json:"target_id"`
}

type IgnoreResponse struct {
	CooldownEndsAt time.Time `json:"cooldown_ends_at"`
}
