package status

import "github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"

type Request struct {
	GameID string
}

type Response struct {
	GameID         string          `json:"game_id"`
	LedgerID       int             `json:"ledger_id"`
	Agents         []game.Agent    `json:"agents"`
	Alliances      []game.Alliance `json:"alliances"`
	PendingBattles []game.Battle   `json:"pending_battles"`
}
