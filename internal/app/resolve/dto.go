package resolve

import "github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"

type Request struct {
	GameID   string `json:"game_id"`
	BattleID string `json:"battle_id"`
}

type Response struct {
	Battle      game.Battle `json:"battle"`
	TokensMoved uint64      `json:"tokens_moved"`
	Deaths      []string    `json:"deaths,omitempty"`
	Walkover    bool        `json:"walkover"`
	// AlreadyResolved is true when the battle had been finalized before
	// this call; nothing was changed.
	AlreadyResolved bool `json:"already_resolved"`
}
