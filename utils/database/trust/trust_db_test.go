package trust_db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trust-guard/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Init(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestTrustRecordRoundTrip(t *testing.T) {
	assert := assert.New(t)
	store := openTestStore(t)

	record, err := store.GetTrustRecord("g1", "u1")
	assert.NoError(err)
	assert.Nil(record)

	saved := &model.TrustRecord{
		GuildID:       "g1",
		UserID:        "u1",
		Score:         17,
		LastUpdatedAt: time.Now().Unix(),
	}
	require.NoError(t, store.SaveTrustRecord(saved))

	loaded, err := store.GetTrustRecord("g1", "u1")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(saved.Score, loaded.Score)
	assert.Equal(saved.LastUpdatedAt, loaded.LastUpdatedAt)
}

func TestTrustRecordUpsert(t *testing.T) {
	assert := assert.New(t)
	store := openTestStore(t)

	record := &model.TrustRecord{GuildID: "g1", UserID: "u1", Score: 5, LastUpdatedAt: 100}
	require.NoError(t, store.SaveTrustRecord(record))

	record.Score = 12
	record.LastUpdatedAt = 200
	require.NoError(t, store.SaveTrustRecord(record))

	loaded, err := store.GetTrustRecord("g1", "u1")
	require.NoError(t, err)
	assert.Equal(12, loaded.Score)
	assert.EqualValues(200, loaded.LastUpdatedAt)
}

func TestPunishmentRulesRoundTrip(t *testing.T) {
	assert := assert.New(t)
	store := openTestStore(t)

	rules, err := store.GetPunishmentRules("g1")
	assert.NoError(err)
	assert.Nil(rules)

	has, err := store.HasPunishmentRules("g1")
	assert.NoError(err)
	assert.False(has)

	saved := []model.PunishmentRule{
		{
			Threshold: 20,
			Actions: []model.PunishmentAction{
				{Type: model.ActionTimeout, DurationSeconds: 3600, Notify: true},
			},
		},
		{
			Threshold: 10,
			Actions: []model.PunishmentAction{
				{Type: model.ActionKick, ReasonTemplate: "{user} reached the kick threshold"},
			},
		},
	}
	require.NoError(t, store.SavePunishmentRules("g1", saved))

	loaded, err := store.GetPunishmentRules("g1")
	require.NoError(t, err)
	assert.Equal(saved, loaded)

	has, err = store.HasPunishmentRules("g1")
	assert.NoError(err)
	assert.True(has)
}

func TestDecayTrustScores(t *testing.T) {
	assert := assert.New(t)
	store := openTestStore(t)

	require.NoError(t, store.SaveTrustRecord(&model.TrustRecord{GuildID: "g1", UserID: "high", Score: 10, LastUpdatedAt: 100}))
	require.NoError(t, store.SaveTrustRecord(&model.TrustRecord{GuildID: "g1", UserID: "low", Score: 2, LastUpdatedAt: 100}))
	require.NoError(t, store.SaveTrustRecord(&model.TrustRecord{GuildID: "g1", UserID: "zero", Score: 0, LastUpdatedAt: 100}))

	affected, err := store.DecayTrustScores(5)
	require.NoError(t, err)
	assert.EqualValues(2, affected)

	high, err := store.GetTrustRecord("g1", "high")
	require.NoError(t, err)
	assert.Equal(5, high.Score)

	low, err := store.GetTrustRecord("g1", "low")
	require.NoError(t, err)
	assert.Equal(0, low.Score)
}
