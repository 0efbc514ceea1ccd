package escalation

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trust-guard/detector"
	"trust-guard/model"
)

type fakeStore struct {
	mu      sync.Mutex
	records map[string]*model.TrustRecord
	rules   map[string][]model.PunishmentRule

	saves   int
	getErr  error
	saveErr error
	ruleErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		records: make(map[string]*model.TrustRecord),
		rules:   make(map[string][]model.PunishmentRule),
	}
}

func (f *fakeStore) GetTrustRecord(guildID, userID string) (*model.TrustRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	record, ok := f.records[guildID+":"+userID]
	if !ok {
		return nil, nil
	}
	clone := *record
	return &clone, nil
}

func (f *fakeStore) SaveTrustRecord(record *model.TrustRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	clone := *record
	f.records[record.GuildID+":"+record.UserID] = &clone
	f.saves++
	return nil
}

func (f *fakeStore) GetPunishmentRules(guildID string) ([]model.PunishmentRule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ruleErr != nil {
		return nil, f.ruleErr
	}
	return f.rules[guildID], nil
}

func (f *fakeStore) score(guildID, userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[guildID+":"+userID]
	if !ok {
		return 0
	}
	return record.Score
}

type executedAction struct {
	userID string
	action model.PunishmentAction
}

type fakeExecutor struct {
	mu       sync.Mutex
	executed []executedAction
	fail     map[model.ActionType]bool
}

func (f *fakeExecutor) Execute(guildID, userID string, action model.PunishmentAction, notifyChannelID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executed = append(f.executed, executedAction{userID: userID, action: action})
	return !f.fail[action.Type]
}

type stubDetector struct {
	name   string
	detect func(dctx *model.DetectionContext) (*model.DetectionResult, error)
}

func (s stubDetector) Name() string { return s.name }

func (s stubDetector) Detect(dctx *model.DetectionContext) (*model.DetectionResult, error) {
	return s.detect(dctx)
}

func fixedDelta(name string, delta int) stubDetector {
	return stubDetector{
		name: name,
		detect: func(dctx *model.DetectionContext) (*model.DetectionResult, error) {
			return &model.DetectionResult{ScoreDelta: delta, Reasons: []string{name + " triggered"}}, nil
		},
	}
}

func event(userID string) *model.DetectionContext {
	return &model.DetectionContext{
		GuildID:   "g1",
		UserID:    userID,
		MessageID: "m1",
		Content:   "hello",
		Timestamp: time.Now(),
	}
}

func threeTierRules() []model.PunishmentRule {
	// deliberately unsorted: the engine must sort by threshold
	return []model.PunishmentRule{
		{Threshold: 30, Actions: []model.PunishmentAction{{Type: model.ActionBan}}},
		{Threshold: 10, Actions: []model.PunishmentAction{{Type: model.ActionTimeout, DurationSeconds: 600}}},
		{Threshold: 20, Actions: []model.PunishmentAction{{Type: model.ActionKick}}},
	}
}

func TestProcessAggregatesAllDetectorDeltas(t *testing.T) {
	assert := assert.New(t)
	store := newFakeStore()
	executor := &fakeExecutor{}
	m := New(store, executor, []detector.Detector{fixedDelta("a", 2), fixedDelta("b", 3)}, nil)

	for i := 0; i < 4; i++ {
		require.NoError(t, m.Process(event("u1")))
	}

	// 4 events x (2 + 3) with nothing dropped or double counted
	assert.Equal(20, store.score("g1", "u1"))
}

func TestProcessSkipsPersistOnZeroDelta(t *testing.T) {
	assert := assert.New(t)
	store := newFakeStore()
	m := New(store, &fakeExecutor{}, []detector.Detector{fixedDelta("quiet", 0)}, nil)

	require.NoError(t, m.Process(event("u1")))

	assert.Zero(store.saves)
	assert.Zero(store.score("g1", "u1"))
}

func TestProcessFiresOnlyHighestNewlyCrossedRule(t *testing.T) {
	assert := assert.New(t)
	store := newFakeStore()
	store.records["g1:u1"] = &model.TrustRecord{GuildID: "g1", UserID: "u1", Score: 5}
	store.rules["g1"] = threeTierRules()
	executor := &fakeExecutor{}
	m := New(store, executor, []detector.Detector{fixedDelta("spam", 20)}, nil)

	require.NoError(t, m.Process(event("u1")))

	assert.Equal(25, store.score("g1", "u1"))
	// 5 -> 25 crosses 10 and 20; only the 20 rule's action runs
	require.Len(t, executor.executed, 1)
	assert.Equal(model.ActionKick, executor.executed[0].action.Type)
}

func TestProcessNoRepeatPunishmentPastAllThresholds(t *testing.T) {
	assert := assert.New(t)
	store := newFakeStore()
	store.records["g1:u1"] = &model.TrustRecord{GuildID: "g1", UserID: "u1", Score: 35}
	store.rules["g1"] = threeTierRules()
	executor := &fakeExecutor{}
	m := New(store, executor, []detector.Detector{fixedDelta("spam", 5)}, nil)

	require.NoError(t, m.Process(event("u1")))

	assert.Equal(40, store.score("g1", "u1"))
	assert.Empty(executor.executed)
}

func TestProcessExactThresholdCrossing(t *testing.T) {
	assert := assert.New(t)
	store := newFakeStore()
	store.records["g1:u1"] = &model.TrustRecord{GuildID: "g1", UserID: "u1", Score: 9}
	store.rules["g1"] = threeTierRules()
	executor := &fakeExecutor{}
	m := New(store, executor, []detector.Detector{fixedDelta("spam", 1)}, nil)

	require.NoError(t, m.Process(event("u1")))

	// landing exactly on a threshold counts as crossing it
	require.Len(t, executor.executed, 1)
	assert.Equal(model.ActionTimeout, executor.executed[0].action.Type)
}

func TestProcessRunsAllRuleActionsBestEffort(t *testing.T) {
	assert := assert.New(t)
	store := newFakeStore()
	store.rules["g1"] = []model.PunishmentRule{
		{
			Threshold: 5,
			Actions: []model.PunishmentAction{
				{Type: model.ActionTimeout, DurationSeconds: 600},
				{Type: model.ActionKick},
			},
		},
	}
	executor := &fakeExecutor{fail: map[model.ActionType]bool{model.ActionTimeout: true}}
	m := New(store, executor, []detector.Detector{fixedDelta("spam", 6)}, nil)

	require.NoError(t, m.Process(event("u1")))

	// the failed timeout does not stop the kick
	require.Len(t, executor.executed, 2)
	assert.Equal(model.ActionTimeout, executor.executed[0].action.Type)
	assert.Equal(model.ActionKick, executor.executed[1].action.Type)
}

func TestProcessDetectorFailureContributesZero(t *testing.T) {
	assert := assert.New(t)
	store := newFakeStore()
	broken := stubDetector{
		name: "broken",
		detect: func(dctx *model.DetectionContext) (*model.DetectionResult, error) {
			return nil, errors.New("boom")
		},
	}
	panicking := stubDetector{
		name: "panicking",
		detect: func(dctx *model.DetectionContext) (*model.DetectionResult, error) {
			panic("boom")
		},
	}
	malformed := stubDetector{
		name: "malformed",
		detect: func(dctx *model.DetectionContext) (*model.DetectionResult, error) {
			return &model.DetectionResult{ScoreDelta: -5}, nil
		},
	}
	m := New(store, &fakeExecutor{}, []detector.Detector{broken, panicking, malformed, fixedDelta("healthy", 3)}, nil)

	require.NoError(t, m.Process(event("u1")))

	assert.Equal(3, store.score("g1", "u1"))
}

func TestProcessDropsEventOnPersistenceFailure(t *testing.T) {
	assert := assert.New(t)
	store := newFakeStore()
	store.saveErr = errors.New("disk full")
	executor := &fakeExecutor{}
	m := New(store, executor, []detector.Detector{fixedDelta("spam", 5)}, nil)

	err := m.Process(event("u1"))

	assert.Error(err)
	assert.Zero(store.score("g1", "u1"))
	assert.Empty(executor.executed)
}

func TestProcessDropsEventOnLoadFailure(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("corrupt record")
	m := New(store, &fakeExecutor{}, []detector.Detector{fixedDelta("spam", 5)}, nil)

	assert.Error(t, m.Process(event("u1")))
	assert.Zero(t, store.saves)
}

func TestProcessConcurrentUsers(t *testing.T) {
	assert := assert.New(t)
	store := newFakeStore()
	m := New(store, &fakeExecutor{}, []detector.Detector{fixedDelta("spam", 1)}, nil)

	const users = 50
	const eventsPerUser = 20

	var wg sync.WaitGroup
	for u := 0; u < users; u++ {
		userID := fmt.Sprintf("user-%d", u)
		for e := 0; e < eventsPerUser; e++ {
			wg.Add(1)
			go func(userID string) {
				defer wg.Done()
				_ = m.Process(event(userID))
			}(userID)
		}
	}
	wg.Wait()

	// every user's final score matches the serial result: no lost updates
	for u := 0; u < users; u++ {
		assert.Equal(eventsPerUser, store.score("g1", fmt.Sprintf("user-%d", u)))
	}
}

func TestCrossedRule(t *testing.T) {
	assert := assert.New(t)
	rules := threeTierRules()

	tier, rule := crossedRule(rules, 5, 25)
	require.NotNil(t, rule)
	assert.Equal(1, tier)
	assert.Equal(20, rule.Threshold)

	_, rule = crossedRule(rules, 35, 40)
	assert.Nil(rule)

	tier, rule = crossedRule(rules, 0, 100)
	require.NotNil(t, rule)
	assert.Equal(2, tier)
	assert.Equal(30, rule.Threshold)

	_, rule = crossedRule(nil, 0, 100)
	assert.Nil(rule)
}
