package game

import "time"

// Default pacing for engagements and cooldowns. Deployments override these
// through server configuration; the zero value of each knob falls back here.
const (
	DefaultBattleWait       = 30 * time.Minute
	DefaultBattleCooldown   = time.Hour
	DefaultAllianceCooldown = 4 * time.Hour
	DefaultIgnoreCooldown   = 2 * time.Hour
)

// DefaultCooldownDurations returns the built-in duration for each cooldown
// type. Callers get a fresh map and may mutate it.
func DefaultCooldownDurations() map[CooldownType]time.Duration {
	return map[CooldownType]time.Duration{
		CooldownBattle:   DefaultBattleCooldown,
		CooldownAlliance: DefaultAllianceCooldown,
		CooldownIgnore:   DefaultIgnoreCooldown,
	}
}
