package chronicle

import "github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"

type Request struct {
	GameID  string
	AgentID string
	Type    string
	Limit   int
}

type Response struct {
	Events []game.GameEvent `json:"events"`
}
