package game

import "time"

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// AllianceLink is the live alliance edge carried on an agent snapshot.
type AllianceLink struct {
	AllianceID string `json:"alliance_id"`
	AllyID     string `json:"ally_id"`
}

// Agent is the projection row mirroring one ledger agent account.
// Agents are never hard-deleted; death flips Alive and stamps DiedAt.
type Agent struct {
	ID        string        `json:"id"`
	GameID    string        `json:"game_id"`
	LedgerID  int           `json:"ledger_id"`
	Name      string        `json:"name"`
	Position  Position      `json:"position"`
	Tokens    uint64        `json:"tokens"`
	Alive     bool          `json:"alive"`
	DiedAt    *time.Time    `json:"died_at,omitempty"`
	Ally      *AllianceLink `json:"ally,omitempty"`
	BattleID  string        `json:"battle_id,omitempty"`
	Version   int64         `json:"version"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Allied reports whether the agent currently carries an active alliance link.
func (a Agent) Allied() bool {
	return a.Ally != nil && a.Ally.AllyID != ""
}

// Engaged reports whether the agent is a participant in an open battle.
func (a Agent) Engaged() bool {
	return a.BattleID != ""
}

type AllianceStatus string

const (
	AllianceActive AllianceStatus = "active"
	AllianceBroken AllianceStatus = "broken"
)

// Alliance pairs two agents. A row transitions Active → Broken exactly once;
// re-allying the same agents later creates a new row.
type Alliance struct {
	ID          string         `json:"id"`
	GameID      string         `json:"game_id"`
	InitiatorID string         `json:"initiator_id"`
	JoinerID    string         `json:"joiner_id"`
	Status      AllianceStatus `json:"status"`
	TxRef       TxRef          `json:"tx_ref,omitempty"`
	FormedAt    time.Time      `json:"formed_at"`
	BrokenAt    *time.Time     `json:"broken_at,omitempty"`
}

// Includes reports whether both agents belong to this alliance, in either order.
func (al Alliance) Includes(agentA, agentB string) bool {
	return (al.InitiatorID == agentA && al.JoinerID == agentB) ||
		(al.InitiatorID == agentB && al.JoinerID == agentA)
}

// PartnerOf returns the other member of the pair, or "" for a non-member.
func (al Alliance) PartnerOf(agentID string) string {
	switch agentID {
	case al.InitiatorID:
		return al.JoinerID
	case al.JoinerID:
		return al.InitiatorID
	default:
		return ""
	}
}

type CooldownType string

const (
	CooldownBattle   CooldownType = "battle"
	CooldownAlliance CooldownType = "alliance"
	CooldownIgnore   CooldownType = "ignore"
)

// Cooldown is a time-boxed restriction on one action type. Rows are never
// deleted; expiry is a read-time filter on EndsAt.
type Cooldown struct {
	ID        string       `json:"id"`
	GameID    string       `json:"game_id"`
	Type      CooldownType `json:"type"`
	AgentID   string       `json:"agent_id"`
	TargetID  string       `json:"target_id,omitempty"`
	EndsAt    time.Time    `json:"ends_at"`
	CreatedAt time.Time    `json:"created_at"`
}

// ActiveAt reports whether the cooldown still binds at the given instant.
func (c Cooldown) ActiveAt(now time.Time) bool {
	return c.EndsAt.After(now)
}

type Topology string

const (
	TopologySimple             Topology = "simple"
	TopologyAgentVsAlliance    Topology = "agent_vs_alliance"
	TopologyAllianceVsAlliance Topology = "alliance_vs_alliance"
)

type BattleStatus string

const (
	BattlePending  BattleStatus = "pending"
	BattleResolved BattleStatus = "resolved"
)

type Side string

const (
	SideA Side = "a"
	SideB Side = "b"
)

// Opponent returns the opposing side marker.
func (s Side) Opponent() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// TxRef is the opaque transaction reference returned by the ledger program.
type TxRef string

// Battle is one engagement between two sides. Topology is snapshotted when
// the engagement opens; a participant dying during the wait window does not
// reclassify the battle. Status transitions Pending → Resolved exactly once.
type Battle struct {
	ID            string        `json:"id"`
	GameID        string        `json:"game_id"`
	Topology      Topology      `json:"topology"`
	SideA         []string      `json:"side_a"`
	SideB         []string      `json:"side_b"`
	Status        BattleStatus  `json:"status"`
	OpenedAt      time.Time     `json:"opened_at"`
	WaitFor       time.Duration `json:"wait_for"`
	WinnerSide    Side          `json:"winner_side,omitempty"`
	ResolvedAt    *time.Time    `json:"resolved_at,omitempty"`
	TokensMoved   uint64        `json:"tokens_moved"`
	TxRef         TxRef         `json:"tx_ref,omitempty"`
	FailCount     int           `json:"fail_count"`
	NextAttemptAt time.Time     `json:"next_attempt_at"`
}

// Participants returns both sides flattened, side A first.
func (b Battle) Participants() []string {
	out := make([]string, 0, len(b.SideA)+len(b.SideB))
	out = append(out, b.SideA...)
	out = append(out, b.SideB...)
	return out
}

// SideOf returns which side the agent fights on, or "" for a non-participant.
func (b Battle) SideOf(agentID string) Side {
	for _, id := range b.SideA {
		if id == agentID {
			return SideA
		}
	}
	for _, id := range b.SideB {
		if id == agentID {
			return SideB
		}
	}
	return ""
}

// BattleCommit is the outbox marker written immediately after a successful
// ledger commit and before the projection finalizer runs. An unapplied row
// paired with a Pending battle is the signature of a divergent state the
// reconciler repairs.
type BattleCommit struct {
	BattleID    string          `json:"battle_id"`
	GameID      string          `json:"game_id"`
	WinnerSide  Side            `json:"winner_side"`
	PercentLoss int             `json:"percent_loss"`
	Deaths      map[string]bool `json:"deaths"`
	TxRef       TxRef           `json:"tx_ref"`
	CommittedAt time.Time       `json:"committed_at"`
	AppliedAt   *time.Time      `json:"applied_at,omitempty"`
}

// GameEvent is one append-only narrative record. Events are the player-facing
// signal of outcomes and are consumed downstream by the narrative pipeline;
// they are never mutated after insert.
type GameEvent struct {
	ID          string         `json:"id"`
	GameID      string         `json:"game_id"`
	Type        string         `json:"type"`
	InitiatorID string         `json:"initiator_id,omitempty"`
	TargetID    string         `json:"target_id,omitempty"`
	Message     string         `json:"message"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	OccurredAt  time.Time      `json:"occurred_at"`
}

const (
	EventBattleStarted  = "battle_started"
	EventBattleOutcome  = "battle_outcome"
	EventBattleSpoils   = "battle_spoils"
	EventBattleWalkover = "battle_walkover"
	EventAgentDeath     = "agent_death"
	EventAllianceFormed = "alliance_formed"
	EventAllianceBroken = "alliance_broken"
	EventIgnoreDeclared = "ignore_declared"
)
