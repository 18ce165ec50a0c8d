// Package rpc talks to the authoritative ledger program through its JSON
// gateway. The engine treats the program as a black box: every call either
// lands atomically and returns a transaction reference, or throws and left
// nothing behind, so the caller may always retry the whole call.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/app/ports"
	"github.com/MiddleEarthAI/mearth-backend-sub000/internal/domain/game"
)

const defaultTimeout = 10 * time.Second

type Client struct {
	baseURL    string
	programTag string
	http       *client.Client
}

func NewClient(baseURL, programTag string, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient, err := client.NewClient(
		client.WithDialTimeout(timeout),
		client.WithClientReadTimeout(timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("build ledger http client: %w", err)
	}
	return &Client{baseURL: baseURL, programTag: programTag, http: httpClient}, nil
}

type receiptBody struct {
	Tx string `json:"tx"`
}

func (c *Client) ResolveSimple(ctx context.Context, gameLedgerID int, battleRef string, winnerLedgerID, loserLedgerID, percentLoss int) (ports.Receipt, error) {
	payload := c.resolvePayload(gameLedgerID, battleRef, percentLoss)
	payload["winner_account"] = AgentAccount(c.programTag, gameLedgerID, winnerLedgerID)
	payload["loser_account"] = AgentAccount(c.programTag, gameLedgerID, loserLedgerID)
	return c.receipt(ctx, "/v1/battle/resolve/simple", payload)
}

func (c *Client) ResolveAgentVsAlliance(ctx context.Context, gameLedgerID int, battleRef string, singleLedgerID, leaderLedgerID, partnerLedgerID int, singleWins bool, percentLoss int) (ports.Receipt, error) {
	payload := c.resolvePayload(gameLedgerID, battleRef, percentLoss)
	payload["single_account"] = AgentAccount(c.programTag, gameLedgerID, singleLedgerID)
	payload["leader_account"] = AgentAccount(c.programTag, gameLedgerID, leaderLedgerID)
	payload["partner_account"] = AgentAccount(c.programTag, gameLedgerID, partnerLedgerID)
	payload["single_wins"] = singleWins
	return c.receipt(ctx, "/v1/battle/resolve/agent-vs-alliance", payload)
}

func (c *Client) ResolveAllianceVsAlliance(ctx context.Context, gameLedgerID int, battleRef string, leaderALedgerID, partnerALedgerID, leaderBLedgerID, partnerBLedgerID int, sideAWins bool, percentLoss int) (ports.Receipt, error) {
	payload := c.resolvePayload(gameLedgerID, battleRef, percentLoss)
	payload["leader_a_account"] = AgentAccount(c.programTag, gameLedgerID, leaderALedgerID)
	payload["partner_a_account"] = AgentAccount(c.programTag, gameLedgerID, partnerALedgerID)
	payload["leader_b_account"] = AgentAccount(c.programTag, gameLedgerID, leaderBLedgerID)
	payload["partner_b_account"] = AgentAccount(c.programTag, gameLedgerID, partnerBLedgerID)
	payload["side_a_wins"] = sideAWins
	return c.receipt(ctx, "/v1/battle/resolve/alliance-vs-alliance", payload)
}

func (c *Client) resolvePayload(gameLedgerID int, battleRef string, percentLoss int) map[string]any {
	return map[string]any{
		"game_account":   GameAccount(c.programTag, gameLedgerID),
		"battle_account": BattleAccount(c.programTag, gameLedgerID, battleRef),
		"battle_ref":     battleRef,
		"percent_loss":   percentLoss,
	}
}

func (c *Client) receipt(ctx context.Context, path string, payload map[string]any) (ports.Receipt, error) {
	var out receiptBody
	if err := c.post(ctx, path, payload, &out); err != nil {
		return ports.Receipt{}, err
	}
	return ports.Receipt{Tx: game.TxRef(out.Tx)}, nil
}

func (c *Client) FormAlliance(ctx context.Context, gameLedgerID, initiatorLedgerID, joinerLedgerID int) (ports.Receipt, error) {
	return c.pairCall(ctx, "/v1/alliance/form", gameLedgerID, initiatorLedgerID, joinerLedgerID)
}

func (c *Client) BreakAlliance(ctx context.Context, gameLedgerID, initiatorLedgerID, joinerLedgerID int) (ports.Receipt, error) {
	return c.pairCall(ctx, "/v1/alliance/break", gameLedgerID, initiatorLedgerID, joinerLedgerID)
}

type outcomeBody struct {
	Committed   bool   `json:"committed"`
	Winners     []int  `json:"winner_ledger_ids"`
	PercentLoss int    `json:"percent_loss"`
	Tx          string `json:"tx"`
}

func (c *Client) BattleOutcome(ctx context.Context, gameLedgerID int, battleRef string) (ports.BattleOutcome, error) {
	payload := map[string]any{
		"game_account":   GameAccount(c.programTag, gameLedgerID),
		"battle_account": BattleAccount(c.programTag, gameLedgerID, battleRef),
		"battle_ref":     battleRef,
	}
	var out outcomeBody
	if err := c.post(ctx, "/v1/battle/outcome", payload, &out); err != nil {
		return ports.BattleOutcome{}, err
	}
	return ports.BattleOutcome{
		Committed:       out.Committed,
		WinnerLedgerIDs: out.Winners,
		PercentLoss:     out.PercentLoss,
		Tx:              game.TxRef(out.Tx),
	}, nil
}

func (c *Client) pairCall(ctx context.Context, path string, gameLedgerID, firstLedgerID, secondLedgerID int) (ports.Receipt, error) {
	payload := map[string]any{
		"game_account":      GameAccount(c.programTag, gameLedgerID),
		"initiator_account": AgentAccount(c.programTag, gameLedgerID, firstLedgerID),
		"target_account":    AgentAccount(c.programTag, gameLedgerID, secondLedgerID),
	}
	var out receiptBody
	if err := c.post(ctx, path, payload, &out); err != nil {
		return ports.Receipt{}, err
	}
	return ports.Receipt{Tx: game.TxRef(out.Tx)}, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, resp := protocol.AcquireRequest(), protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()
	req.SetMethod(consts.MethodPost)
	req.SetRequestURI(c.baseURL + path)
	req.SetBody(body)
	req.Header.SetContentTypeBytes([]byte("application/json"))

	if err := c.http.Do(ctx, req, resp); err != nil {
		return fmt.Errorf("%w: %s: %v", ports.ErrLedgerUnavailable, path, err)
	}
	if err := statusError(resp.StatusCode(), resp.Body()); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if out != nil {
		if err := json.Unmarshal(resp.Body(), out); err != nil {
			return fmt.Errorf("decode ledger response for %s: %w", path, err)
		}
	}
	return nil
}

type gatewayError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// statusError maps a gateway status to an engine sentinel. 409 is the ledger
// rejecting a second commit of the same reference; 5xx is transient; every
// other non-2xx is a hard rejection that retrying cannot fix.
func statusError(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}

	var ge gatewayError
	_ = json.Unmarshal(body, &ge)
	detail := ge.Error.Code
	if detail == "" {
		detail = fmt.Sprintf("status %d", status)
	}

	switch {
	case status == consts.StatusConflict:
		return fmt.Errorf("%w: %s", ports.ErrAlreadyCommitted, detail)
	case status >= 500:
		return fmt.Errorf("%w: %s", ports.ErrLedgerUnavailable, detail)
	default:
		return fmt.Errorf("%w: %s", ports.ErrLedgerRejected, detail)
	}
}
