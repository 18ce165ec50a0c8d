package cooldown

import (
	"context"
	"testing"
	"time"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

type stubCooldownRepo struct {
	rows []game.Cooldown
}

func (s *stubCooldownRepo) Create(_ context.Context, cd game.Cooldown) error {
	s.rows = append(s.rows, cd)
	return nil
}

func (s *stubCooldownRepo) ActiveExists(_ context.Context, gameID string, typ game.CooldownType, agentID, targetID string, now time.Time) (bool, error) {
	for _, cd := range s.rows {
		if cd.GameID != gameID || cd.Type != typ || cd.AgentID != agentID {
			continue
		}
		if targetID != "" && cd.TargetID != targetID {
			continue
		}
		if cd.ActiveAt(now) {
			return true, nil
		}
	}
	return false, nil
}

func TestGate_IssueThenCheck(t *testing.T) {
	repo := &stubCooldownRepo{}
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	gate := Gate{
		Cooldowns: repo,
		Durations: map[game.CooldownType]time.Duration{game.CooldownBattle: time.Hour},
		Now:       func() time.Time { return now },
	}

	if err := gate.Check(context.Background(), "g-1", game.CooldownBattle, "a-1", ""); err != nil {
		t.Fatalf("expected clear gate, got %v", err)
	}

	cd, err := gate.Issue(context.Background(), "g-1", game.CooldownBattle, "a-1", "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if cd.EndsAt != now.Add(time.Hour) {
		t.Fatalf("unexpected ends_at: %s", cd.EndsAt)
	}

	if err := gate.Check(context.Background(), "g-1", game.CooldownBattle, "a-1", ""); err != ErrCoolingDown {
		t.Fatalf("expected ErrCoolingDown, got %v", err)
	}

	// Expired rows stop binding without being deleted.
	now = now.Add(2 * time.Hour)
	if err := gate.Check(context.Background(), "g-1", game.CooldownBattle, "a-1", ""); err != nil {
		t.Fatalf("expected gate clear after expiry, got %v", err)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("expected row kept after expiry, got %d", len(repo.rows))
	}
}

func TestGate_IssuePairShieldsBothDirections(t *testing.T) {
	repo := &stubCooldownRepo{}
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	gate := Gate{
		Cooldowns: repo,
		Durations: map[game.CooldownType]time.Duration{game.CooldownIgnore: 2 * time.Hour},
		Now:       func() time.Time { return now },
	}

	if _, err := gate.IssuePair(context.Background(), "g-1", game.CooldownIgnore, "a-1", "a-2"); err != nil {
		t.Fatalf("issue pair: %v", err)
	}

	if err := gate.Check(context.Background(), "g-1", game.CooldownIgnore, "a-1", "a-2"); err != ErrCoolingDown {
		t.Fatalf("expected forward shield, got %v", err)
	}
	if err := gate.Check(context.Background(), "g-1", game.CooldownIgnore, "a-2", "a-1"); err != ErrCoolingDown {
		t.Fatalf("expected reverse shield, got %v", err)
	}
	if err := gate.Check(context.Background(), "g-1", game.CooldownIgnore, "a-1", "a-3"); err != nil {
		t.Fatalf("expected unrelated pair clear, got %v", err)
	}
}

func TestGate_DefaultDurations(t *testing.T) {
	repo := &stubCooldownRepo{}
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	gate := Gate{Cooldowns: repo, Now: func() time.Time { return now }}

	cd, err := gate.Issue(context.Background(), "g-1", game.CooldownAlliance, "a-1", "a-2")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if cd.EndsAt != now.Add(game.DefaultAllianceCooldown) {
		t.Fatalf("expected default alliance duration, got ends_at %s", cd.EndsAt)
	}
}
