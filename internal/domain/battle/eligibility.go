package battle

import (
	"errors"
	"time"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

var (
	ErrSelfTarget     = errors.New("agent cannot engage itself")
	ErrAgentDead      = errors.New("agent is dead")
	ErrTargetDead     = errors.New("target is dead")
	ErrAlreadyEngaged = errors.New("agent already in a pending battle")
	ErrTargetEngaged  = errors.New("target already in a pending battle")
	ErrAlliedTarget   = errors.New("agents share an active alliance")
	ErrCrossGame      = errors.New("agents belong to different games")
)

// CanEngage checks every engagement precondition that reads only the two
// principals. Cooldown and ignore checks live with the stores that hold
// those rows.
func CanEngage(initiator, defender game.Agent) error {
	if initiator.GameID != defender.GameID {
		return ErrCrossGame
	}
	if initiator.ID == defender.ID {
		return ErrSelfTarget
	}
	if !initiator.Alive {
		return ErrAgentDead
	}
	if !defender.Alive {
		return ErrTargetDead
	}
	if initiator.Engaged() {
		return ErrAlreadyEngaged
	}
	if defender.Engaged() {
		return ErrTargetEngaged
	}
	if initiator.Allied() && initiator.Ally.AllyID == defender.ID {
		return ErrAlliedTarget
	}
	return nil
}

// Due reports whether a pending battle is ready to resolve: the wait window
// has elapsed and any retry hold has passed.
func Due(b game.Battle, now time.Time) bool {
	if b.Status != game.BattlePending {
		return false
	}
	if now.Before(b.OpenedAt.Add(b.WaitFor)) {
		return false
	}
	if !b.NextAttemptAt.IsZero() && now.Before(b.NextAttemptAt) {
		return false
	}
	return true
}
