package model

import "time"

// DetectionContext carries one inbound event through the detector pipeline.
// It is built per event and never persisted.
type DetectionContext struct {
	GuildID   string
	UserID    string
	MessageID string
	Content   string
	Timestamp time.Time
}

// DetectionResult is the outcome of one detector run. Deltas are always
// non-negative; results from independent detectors combine by addition.
type DetectionResult struct {
	ScoreDelta int
	Reasons    []string
	Metadata   map[string]string
}

// BehaviorRecord is a single entry in a user's short-lived activity window.
type BehaviorRecord struct {
	Content   string
	Timestamp time.Time
	EventID   string
}
