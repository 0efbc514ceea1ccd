package escalation

import "trust-guard/model"

// NextPunishment describes, for display surfaces, which rule applies
// next for a given score. When the score is already past every
// configured threshold, the highest rule is returned with
// AlreadyReached set.
type NextPunishment struct {
	Rule           model.PunishmentRule
	AlreadyReached bool
}

// NextForScore finds the lowest threshold strictly greater than score.
// It never mutates state and returns nil when no rules are configured.
func NextForScore(rules []model.PunishmentRule, score int) *NextPunishment {
	sorted := sortedRules(rules)
	if len(sorted) == 0 {
		return nil
	}
	for _, rule := range sorted {
		if rule.Threshold > score {
			return &NextPunishment{Rule: rule}
		}
	}
	return &NextPunishment{Rule: sorted[len(sorted)-1], AlreadyReached: true}
}
