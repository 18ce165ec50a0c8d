package cooldown

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/ports"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

var ErrCoolingDown = errors.New("action is cooling down")

// Gate answers "is this action allowed right now" and issues new cooldowns.
// A cooldown is purely an existence check on rows with ends_at in the
// future; expired rows are left in place for the chronicle.
type Gate struct {
	Cooldowns ports.CooldownRepository
	Durations map[game.CooldownType]time.Duration
	Now       func() time.Time
}

func (g Gate) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

func (g Gate) duration(typ game.CooldownType) time.Duration {
	if d, ok := g.Durations[typ]; ok && d > 0 {
		return d
	}
	return game.DefaultCooldownDurations()[typ]
}

// Check returns ErrCoolingDown when a binding cooldown row exists. An empty
// targetID checks for any cooldown of the type on the agent.
func (g Gate) Check(ctx context.Context, gameID string, typ game.CooldownType, agentID, targetID string) error {
	active, err := g.Cooldowns.ActiveExists(ctx, gameID, typ, agentID, targetID, g.now())
	if err != nil {
		return err
	}
	if active {
		return ErrCoolingDown
	}
	return nil
}

// Issue creates one cooldown owned by agentID. Returns the row so callers
// can surface ends_at.
func (g Gate) Issue(ctx context.Context, gameID string, typ game.CooldownType, agentID, targetID string) (game.Cooldown, error) {
	now := g.now()
	cd := game.Cooldown{
		ID:        uuid.NewString(),
		GameID:    gameID,
		Type:      typ,
		AgentID:   agentID,
		TargetID:  targetID,
		EndsAt:    now.Add(g.duration(typ)),
		CreatedAt: now,
	}
	if err := g.Cooldowns.Create(ctx, cd); err != nil {
		return game.Cooldown{}, err
	}
	return cd, nil
}

// IssuePair creates mirrored cooldowns in both directions so either agent's
// existence check hits. Used for ignore shields and post-break alliance
// holds.
func (g Gate) IssuePair(ctx context.Context, gameID string, typ game.CooldownType, agentA, agentB string) (game.Cooldown, error) {
	first, err := g.Issue(ctx, gameID, typ, agentA, agentB)
	if err != nil {
		return game.Cooldown{}, err
	}
	if _, err := g.Issue(ctx, gameID, typ, agentB, agentA); err != nil {
		return game.Cooldown{}, err
	}
	return first, nil
}
