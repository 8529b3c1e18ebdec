package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vadimvoyevoda/ai-planner-sub000/store"
)

func (d *DB) UpsertUserPreferences(ctx context.Context, upsert *store.UpsertUserPreferences) (*store.UserPreferences, error) {
	stmt := `
		INSERT INTO user_preferences (user_id, preferences)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET
			preferences = EXCLUDED.preferences,
			updated_ts = EXTRACT(EPOCH FROM NOW())
		RETURNING user_id, preferences, created_ts, updated_ts`

	prefs := &store.UserPreferences{}
	if err := d.db.QueryRowContext(ctx, stmt, upsert.UserID, upsert.Preferences).Scan(
		&prefs.UserID,
		&prefs.Preferences,
		&prefs.CreatedTs,
		&prefs.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to upsert user preferences: %w", err)
	}

	return prefs, nil
}

func (d *DB) GetUserPreferences(ctx context.Context, find *store.FindUserPreferences) (*store.UserPreferences, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.UserID; v != nil {
		where, args = append(where, "user_id = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT user_id, preferences, created_ts, updated_ts
		FROM user_preferences
		WHERE ` + strings.Join(where, " AND ")

	prefs := &store.UserPreferences{}
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(
		&prefs.UserID,
		&prefs.Preferences,
		&prefs.CreatedTs,
		&prefs.UpdatedTs,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user preferences: %w", err)
	}

	return prefs, nil
}
