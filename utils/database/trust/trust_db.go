package trust_db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"trust-guard/model"
)

// Store wraps the trust database. Trust records live in a regular
// table; punishment rules are stored per guild as a JSON value so the
// admin surface can replace a guild's rule set atomically.
type Store struct {
	db *sqlx.DB
}

// Init opens the trust database and ensures the tables exist.
func Init(dbPath string) (*Store, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to trust database: %w", err)
	}

	schema := `CREATE TABLE IF NOT EXISTS trust_records (
	          guild_id TEXT NOT NULL,
	          user_id TEXT NOT NULL,
	          score INTEGER NOT NULL,
	          last_updated_at INTEGER NOT NULL,
	          PRIMARY KEY (guild_id, user_id)
	      );
	      CREATE TABLE IF NOT EXISTS guild_rules (
	          guild_id TEXT PRIMARY KEY,
	          rules TEXT NOT NULL
	      );`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to create trust tables: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// GetTrustRecord retrieves the trust record for a user in a guild.
// A missing record returns (nil, nil).
func (s *Store) GetTrustRecord(guildID, userID string) (*model.TrustRecord, error) {
	var record model.TrustRecord
	query := "SELECT * FROM trust_records WHERE guild_id = ? AND user_id = ?"
	err := s.db.Get(&record, query, guildID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trust record for user %s in guild %s: %w", userID, guildID, err)
	}
	return &record, nil
}

// SaveTrustRecord inserts or replaces the trust record for a user.
func (s *Store) SaveTrustRecord(record *model.TrustRecord) error {
	query := `INSERT INTO trust_records (guild_id, user_id, score, last_updated_at)
	          VALUES (:guild_id, :user_id, :score, :last_updated_at)
	          ON CONFLICT (guild_id, user_id) DO UPDATE SET score = excluded.score, last_updated_at = excluded.last_updated_at`
	_, err := s.db.NamedExec(query, record)
	if err != nil {
		return fmt.Errorf("failed to save trust record for user %s in guild %s: %w", record.UserID, record.GuildID, err)
	}
	return nil
}

// GetPunishmentRules retrieves the punishment rule set for a guild.
// A guild without configured rules returns (nil, nil).
func (s *Store) GetPunishmentRules(guildID string) ([]model.PunishmentRule, error) {
	var raw string
	query := "SELECT rules FROM guild_rules WHERE guild_id = ?"
	err := s.db.Get(&raw, query, guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get punishment rules for guild %s: %w", guildID, err)
	}

	var rules []model.PunishmentRule
	if err := json.Unmarshal([]byte(raw), &rules); err != nil {
		return nil, fmt.Errorf("failed to parse punishment rules for guild %s: %w", guildID, err)
	}
	return rules, nil
}

// SavePunishmentRules replaces the punishment rule set for a guild.
func (s *Store) SavePunishmentRules(guildID string, rules []model.PunishmentRule) error {
	raw, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("failed to serialize punishment rules for guild %s: %w", guildID, err)
	}

	query := `INSERT INTO guild_rules (guild_id, rules) VALUES (?, ?)
	          ON CONFLICT (guild_id) DO UPDATE SET rules = excluded.rules`
	if _, err := s.db.Exec(query, guildID, string(raw)); err != nil {
		return fmt.Errorf("failed to save punishment rules for guild %s: %w", guildID, err)
	}
	return nil
}

// HasPunishmentRules reports whether a guild has a stored rule set.
func (s *Store) HasPunishmentRules(guildID string) (bool, error) {
	var count int
	err := s.db.Get(&count, "SELECT COUNT(*) FROM guild_rules WHERE guild_id = ?", guildID)
	if err != nil {
		return false, fmt.Errorf("failed to check punishment rules for guild %s: %w", guildID, err)
	}
	return count > 0, nil
}

// DecayTrustScores reduces every positive score by amount, floored at
// zero, and returns the number of affected records. Used only by the
// opt-in decay job.
func (s *Store) DecayTrustScores(amount int) (int64, error) {
	query := `UPDATE trust_records SET score = MAX(0, score - ?), last_updated_at = ? WHERE score > 0`
	result, err := s.db.Exec(query, amount, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to decay trust scores: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count decayed trust records: %w", err)
	}
	return affected, nil
}
