package rpc

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Account addresses on the ledger program are derived, not stored: any
// client hashing the same program tag and identifiers lands on the same
// address, so no lookup table has to be kept in sync with the ledger.

const defaultProgramTag = "mearth-v1"

// AgentAccount derives the ledger account address for one agent.
func AgentAccount(programTag string, gameLedgerID, agentLedgerID int) string {
	return derive(fmt.Sprintf("%s|game:%d|agent:%d", tag(programTag), gameLedgerID, agentLedgerID))
}

// BattleAccount derives the ledger account address for one battle.
func BattleAccount(programTag string, gameLedgerID int, battleRef string) string {
	return derive(fmt.Sprintf("%s|game:%d|battle:%s", tag(programTag), gameLedgerID, battleRef))
}

// GameAccount derives the ledger account address for the game itself.
func GameAccount(programTag string, gameLedgerID int) string {
	return derive(fmt.Sprintf("%s|game:%d", tag(programTag), gameLedgerID))
}

func tag(programTag string) string {
	if programTag == "" {
		return defaultProgramTag
	}
	return programTag
}

func derive(seed string) string {
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])
}
