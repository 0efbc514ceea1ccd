package model

import "fmt"

// ActionType identifies a concrete moderation action.
type ActionType string

const (
	ActionTimeout ActionType = "timeout"
	ActionKick    ActionType = "kick"
	ActionBan     ActionType = "ban"
)

// TrustRecord holds the cumulative abuse score for a user in a guild.
// The database table will be named 'trust_records'.
type TrustRecord struct {
	GuildID       string `db:"guild_id"`
	UserID        string `db:"user_id"`
	Score         int    `db:"score"`
	LastUpdatedAt int64  `db:"last_updated_at"` // Unix seconds
}

// PunishmentAction describes one action taken when a rule fires.
type PunishmentAction struct {
	Type ActionType `json:"type" mapstructure:"type"`
	// DurationSeconds is the timeout length for "timeout" actions and
	// the optional message-purge window for "ban" actions.
	DurationSeconds int    `json:"duration_seconds,omitempty" mapstructure:"duration_seconds"`
	ReasonTemplate  string `json:"reason_template,omitempty" mapstructure:"reason_template"`
	Notify          bool   `json:"notify,omitempty" mapstructure:"notify"`
}

// Validate rejects malformed actions at configuration load time so the
// executor only ever sees one of the three known action types.
func (a PunishmentAction) Validate() error {
	switch a.Type {
	case ActionTimeout:
		if a.DurationSeconds <= 0 {
			return fmt.Errorf("timeout action requires a positive duration_seconds")
		}
	case ActionKick:
	case ActionBan:
		if a.DurationSeconds < 0 {
			return fmt.Errorf("ban purge window cannot be negative")
		}
	default:
		return fmt.Errorf("unknown action type %q", a.Type)
	}
	return nil
}

// PunishmentRule maps a trust score threshold to an ordered list of actions.
// Rules for a guild carry no ordering or uniqueness guarantee on input; the
// engine sorts them by threshold before evaluation.
type PunishmentRule struct {
	Threshold int                `json:"threshold" mapstructure:"threshold"`
	Actions   []PunishmentAction `json:"actions" mapstructure:"actions"`
}

// Validate checks a single rule.
func (r PunishmentRule) Validate() error {
	if r.Threshold < 0 {
		return fmt.Errorf("rule threshold cannot be negative")
	}
	if len(r.Actions) == 0 {
		return fmt.Errorf("rule with threshold %d has no actions", r.Threshold)
	}
	for i, action := range r.Actions {
		if err := action.Validate(); err != nil {
			return fmt.Errorf("action %d of rule with threshold %d: %w", i, r.Threshold, err)
		}
	}
	return nil
}
