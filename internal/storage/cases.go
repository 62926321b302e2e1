package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Case is one recorded moderation action.
type Case struct {
	ID          string
	GuildID     string
	Action      string
	ModeratorID string
	TargetID    string
	Reason      string
	Automatic   bool
	CreatedAt   time.Time
}

// AddCase stores c, assigning an ID when it has none, and returns the ID.
func (s *Store) AddCase(ctx context.Context, c Case) (string, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO moderation_cases (id, guild_id, action, moderator_id, target_id, reason, automatic, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, c.ID, c.GuildID, c.Action, c.ModeratorID, c.TargetID, c.Reason, boolToInt(c.Automatic), c.CreatedAt.Unix())
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

// ListCases returns the cases against targetID in guildID, newest first.
// A limit of zero or less returns every case.
func (s *Store) ListCases(ctx context.Context, guildID, targetID string, limit int) ([]Case, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, guild_id, action, moderator_id, target_id, reason, automatic, created_at
		FROM moderation_cases
		WHERE guild_id = ? AND target_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, guildID, targetID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cases []Case
	for rows.Next() {
		var c Case
		var automatic int
		var created int64
		if err := rows.Scan(&c.ID, &c.GuildID, &c.Action, &c.ModeratorID, &c.TargetID, &c.Reason, &automatic, &created); err != nil {
			return nil, err
		}
		c.Automatic = automatic == 1
		c.CreatedAt = time.Unix(created, 0)
		cases = append(cases, c)
	}
	return cases, rows.Err()
}

func (s *Store) CleanupCases(ctx context.Context, retentionDays int) error {
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	_, err := s.db.ExecContext(ctx, `DELETE FROM moderation_cases WHERE created_at < ?`, cutoff.Unix())
	return err
}
