// Package escalation turns a stream of scored events into a monotonic
// trust score per (guild, user) and at most one punishment decision
// per event.
package escalation

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"trust-guard/detector"
	"trust-guard/model"
	"trust-guard/utils"
)

// TrustStore is the persistence boundary for trust records and
// punishment rules.
type TrustStore interface {
	GetTrustRecord(guildID, userID string) (*model.TrustRecord, error)
	SaveTrustRecord(record *model.TrustRecord) error
	GetPunishmentRules(guildID string) ([]model.PunishmentRule, error)
}

// Executor applies a single punishment action.
type Executor interface {
	Execute(guildID, userID string, action model.PunishmentAction, notifyChannelID string) bool
}

// Manager orchestrates the detection pipeline.
type Manager struct {
	store          TrustStore
	executor       Executor
	detectors      []detector.Detector
	locks          *utils.KeyedMutex
	notifyChannels map[string]string // guildID -> notify channel
	now            func() time.Time
}

func New(store TrustStore, executor Executor, detectors []detector.Detector, notifyChannels map[string]string) *Manager {
	return &Manager{
		store:          store,
		executor:       executor,
		detectors:      detectors,
		locks:          utils.NewKeyedMutex(),
		notifyChannels: notifyChannels,
		now:            time.Now,
	}
}

// Process runs one event through every registered detector, folds the
// resulting deltas into the user's trust record and escalates when a
// punishment threshold is newly crossed. The per-user lock covers only
// the read-modify-write; punishment I/O happens after it is released.
func (m *Manager) Process(dctx *model.DetectionContext) error {
	delta, reasons := m.runDetectors(dctx)
	if delta == 0 {
		return nil
	}

	key := dctx.GuildID + ":" + dctx.UserID

	m.locks.Lock(key)
	record, err := m.store.GetTrustRecord(dctx.GuildID, dctx.UserID)
	if err != nil {
		m.locks.Unlock(key)
		log.Printf("Dropping event %s: failed to load trust record: %v", dctx.MessageID, err)
		return err
	}
	if record == nil {
		record = &model.TrustRecord{GuildID: dctx.GuildID, UserID: dctx.UserID}
	}

	previousScore := record.Score
	record.Score += delta
	record.LastUpdatedAt = m.now().Unix()

	if err := m.store.SaveTrustRecord(record); err != nil {
		m.locks.Unlock(key)
		log.Printf("Dropping event %s: failed to save trust record: %v", dctx.MessageID, err)
		return err
	}
	newScore := record.Score
	m.locks.Unlock(key)

	log.Printf("Trust score for user %s in guild %s: %d -> %d (%s)",
		dctx.UserID, dctx.GuildID, previousScore, newScore, strings.Join(reasons, "; "))

	rules, err := m.store.GetPunishmentRules(dctx.GuildID)
	if err != nil {
		log.Printf("Failed to load punishment rules for guild %s: %v", dctx.GuildID, err)
		return err
	}

	tier, rule := crossedRule(rules, previousScore, newScore)
	if rule == nil {
		return nil
	}

	log.Printf("User %s in guild %s escalated to tier %d (threshold %d)",
		dctx.UserID, dctx.GuildID, tier, rule.Threshold)

	notifyChannelID := m.notifyChannels[dctx.GuildID]
	for _, action := range rule.Actions {
		// independent best effort: one failed action does not stop the rest
		if ok := m.executor.Execute(dctx.GuildID, dctx.UserID, action, notifyChannelID); !ok {
			log.Printf("Action %s of tier %d failed for user %s in guild %s",
				action.Type, tier, dctx.UserID, dctx.GuildID)
		}
	}
	return nil
}

// runDetectors collects the score deltas of all registered detectors.
// A failing or malformed detector contributes zero.
func (m *Manager) runDetectors(dctx *model.DetectionContext) (int, []string) {
	total := 0
	var reasons []string
	for _, d := range m.detectors {
		result, err := m.detectSafely(d, dctx)
		if err != nil {
			log.Printf("Detector %s failed for event %s: %v", d.Name(), dctx.MessageID, err)
			continue
		}
		if result == nil || result.ScoreDelta < 0 {
			log.Printf("Detector %s returned malformed result for event %s, ignoring", d.Name(), dctx.MessageID)
			continue
		}
		total += result.ScoreDelta
		reasons = append(reasons, result.Reasons...)
	}
	return total, reasons
}

// detectSafely shields the pipeline from a panicking detector.
func (m *Manager) detectSafely(d detector.Detector, dctx *model.DetectionContext) (result *model.DetectionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("detector panic: %v", r)
		}
	}()
	return d.Detect(dctx)
}

// crossedRule returns the index and rule of the highest threshold t
// with previousScore < t <= newScore, or (-1, nil) when no threshold
// was newly crossed. The tier index refers to the threshold-ascending
// ordering.
func crossedRule(rules []model.PunishmentRule, previousScore, newScore int) (int, *model.PunishmentRule) {
	sorted := sortedRules(rules)
	for i := len(sorted) - 1; i >= 0; i-- {
		t := sorted[i].Threshold
		if previousScore < t && t <= newScore {
			return i, &sorted[i]
		}
	}
	return -1, nil
}

// sortedRules returns a copy of rules sorted ascending by threshold.
// Input rule sets carry no ordering guarantee.
func sortedRules(rules []model.PunishmentRule) []model.PunishmentRule {
	sorted := make([]model.PunishmentRule, len(rules))
	copy(sorted, rules)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Threshold < sorted[j].Threshold
	})
	return sorted
}
