package chronicle

import (
	"context"
	"errors"
	"strings"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/ports"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

var ErrInvalidRequest = errors.New("invalid chronicle request")

const defaultLimit = 100

// UseCase serves the narrative feed. Events come back newest first; an
// agent filter narrows to events the agent initiated or suffered, and a
// type filter narrows to one event kind.
type UseCase struct {
	Events ports.EventRepository
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	req.GameID = strings.TrimSpace(req.GameID)
	req.AgentID = strings.TrimSpace(req.AgentID)
	if req.GameID == "" {
		return Response{}, ErrInvalidRequest
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	var (
		events []game.GameEvent
		err    error
	)
	if req.AgentID != "" {
		events, err = u.Events.ListByAgent(ctx, req.GameID, req.AgentID, limit)
	} else {
		events, err = u.Events.ListByGame(ctx, req.GameID, limit)
	}
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return Response{Events: []game.GameEvent{}}, nil
		}
		return Response{}, err
	}

	if req.Type != "" {
		events = filterByType(events, req.Type)
	}
	return Response{Events: events}, nil
}

func filterByType(events []game.GameEvent, typ string) []game.GameEvent {
	out := make([]game.GameEvent, 0, len(events))
	for _, evt := range events {
		if evt.Type == typ {
			out = append(out, evt)
		}
	}
	return out
}
