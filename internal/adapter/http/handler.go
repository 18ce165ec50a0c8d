package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/alliance"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/chronicle"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/engage"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/ports"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/status"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/battle"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

type Handler struct {
	FormUC      alliance.FormUseCase
	BreakUC     alliance.BreakUseCase
	EngageUC    engage.UseCase
	IgnoreUC    engage.IgnoreUseCase
	StatusUC    status.UseCase
	ChronicleUC chronicle.UseCase
	KPI         kpiSnapshotProvider
}

func (h Handler) RegisterRoutes(s *server.Hertz) {
	s.Use(corsMiddleware())

	api := s.Group("/api")
	api.POST("/alliances/form", h.formAlliance)
	api.POST("/alliances/break", h.breakAlliance)
	api.POST("/battles/open", h.openBattle)
	api.POST("/agents/ignore", h.ignoreAgent)
	api.GET("/status", h.status)
	api.GET("/chronicle", h.chronicle)

	s.GET("/ops/kpi", h.kpi)
}

func (h Handler) formAlliance(c context.Context, ctx *app.RequestContext) {
	var body alliance.FormRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	resp, err := h.FormUC.Execute(c, body)
	if err != nil {
		writeError(ctx, err)
		return
	}

	if resp.Existing {
		ctx.JSON(consts.StatusOK, resp)
		return
	}
	ctx.JSON(consts.StatusCreated, resp)
}

func (h Handler) breakAlliance(c context.Context, ctx *app.RequestContext) {
	var body alliance.BreakRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	resp, err := h.BreakUC.Execute(c, body)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) openBattle(c context.Context, ctx *app.RequestContext) {
	var body engage.OpenRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	resp, err := h.EngageUC.Execute(c, body)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(consts.StatusCreated, resp)
}

func (h Handler) ignoreAgent(c context.Context, ctx *app.RequestContext) {
	var body engage.IgnoreRequest
	if err := decodeJSON(ctx, &body); err != nil {
		writeErrorBody(ctx, consts.StatusBadRequest, "invalid_json", "invalid json")
		return
	}

	resp, err := h.IgnoreUC.Execute(c, body)
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) status(c context.Context, ctx *app.RequestContext) {
	resp, err := h.StatusUC.Execute(c, status.Request{
		GameID: string(ctx.Query("game_id")),
	})
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(consts.StatusOK, resp)
}

func (h Handler) chronicle(c context.Context, ctx *app.RequestContext) {
	limit, _ := strconv.Atoi(string(ctx.Query("limit")))
	resp, err := h.ChronicleUC.Execute(c, chronicle.Request{
		GameID:  string(ctx.Query("game_id")),
		AgentID: string(ctx.Query("agent_id")),
		Type:    string(ctx.Query("type")),
		Limit:   limit,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}

	ctx.JSON(consts.StatusOK, resp)
}

type kpiSnapshotProvider interface {
	SnapshotAny() any
}

func (h Handler) kpi(_ context.Context, ctx *app.RequestContext) {
	if h.KPI == nil {
		writeErrorBody(ctx, consts.StatusNotFound, "not_configured", "kpi provider not configured")
		return
	}
	ctx.JSON(consts.StatusOK, h.KPI.SnapshotAny())
}

func decodeJSON(ctx *app.RequestContext, out any) error {
	body := ctx.Request.Body()
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, alliance.ErrInvalidRequest),
		errors.Is(err, engage.ErrInvalidRequest),
		errors.Is(err, status.ErrInvalidRequest),
		errors.Is(err, chronicle.ErrInvalidRequest),
		errors.Is(err, battle.ErrSelfTarget),
		errors.Is(err, battle.ErrCrossGame):
		writeErrorBody(ctx, consts.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, alliance.ErrAlreadyAllied):
		writeErrorBody(ctx, consts.StatusConflict, "already_allied", err.Error())
	case errors.Is(err, alliance.ErrAllianceCooldown):
		writeErrorBody(ctx, consts.StatusConflict, "alliance_cooldown", err.Error())
	case errors.Is(err, alliance.ErrEngagedAgent):
		writeErrorBody(ctx, consts.StatusConflict, "agent_engaged", err.Error())
	case errors.Is(err, alliance.ErrNotAllied):
		writeErrorBody(ctx, consts.StatusConflict, "not_allied", err.Error())
	case errors.Is(err, engage.ErrIgnoreShield):
		writeErrorBody(ctx, consts.StatusConflict, "ignore_shield", err.Error())
	case errors.Is(err, engage.ErrBattleCooldown):
		writeErrorBody(ctx, consts.StatusConflict, "battle_cooldown", err.Error())
	case errors.Is(err, engage.ErrAlreadyIgnored):
		writeErrorBody(ctx, consts.StatusConflict, "already_ignored", err.Error())
	case errors.Is(err, battle.ErrAgentDead):
		writeErrorBody(ctx, consts.StatusConflict, "agent_dead", err.Error())
	case errors.Is(err, battle.ErrTargetDead):
		writeErrorBody(ctx, consts.StatusConflict, "target_dead", err.Error())
	case errors.Is(err, battle.ErrAlreadyEngaged):
		writeErrorBody(ctx, consts.StatusConflict, "agent_engaged", err.Error())
	case errors.Is(err, battle.ErrTargetEngaged):
		writeErrorBody(ctx, consts.StatusConflict, "target_engaged", err.Error())
	case errors.Is(err, battle.ErrAlliedTarget):
		writeErrorBody(ctx, consts.StatusConflict, "allied_target", err.Error())
	case errors.Is(err, ports.ErrNotFound):
		writeErrorBody(ctx, consts.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, ports.ErrConflict):
		writeErrorBody(ctx, consts.StatusConflict, "conflict", err.Error())
	case errors.Is(err, ports.ErrLedgerUnavailable):
		writeErrorBody(ctx, consts.StatusServiceUnavailable, "ledger_unavailable", err.Error())
	case errors.Is(err, ports.ErrLedgerRejected):
		writeErrorBody(ctx, consts.StatusBadGateway, "ledger_rejected", err.Error())
	default:
		writeErrorBody(ctx, consts.StatusInternalServerError, "internal_error", "internal error")
	}
}

func writeErrorBody(ctx *app.RequestContext, status int, code, message string) {
	ctx.JSON(status, map[string]any{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
