package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vadimvoyevoda/ai-planner-sub000/store"
)

func (d *DB) CreateMeeting(ctx context.Context, create *store.Meeting) (*store.Meeting, error) {
	fields := []string{
		"uid", "creator_id", "title", "description", "category_id",
		"location", "start_ts", "end_ts", "ai_notes", "original_note",
	}
	placeholderValues := []any{
		create.UID, create.CreatorID, create.Title, create.Description, create.CategoryID,
		create.Location, create.StartTs, create.EndTs, create.AINotes, create.OriginalNote,
	}

	stmt := `INSERT INTO meeting (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts, updated_ts, row_status`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
		&create.UpdatedTs,
		&create.RowStatus,
	); err != nil {
		return nil, fmt.Errorf("failed to create meeting: %w", err)
	}

	return create, nil
}

func (d *DB) ListMeetings(ctx context.Context, find *store.FindMeeting) ([]*store.Meeting, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "meeting.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "meeting.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.CreatorID; v != nil {
		where, args = append(where, "meeting.creator_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.RowStatus; v != nil {
		where, args = append(where, "meeting.row_status = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.MinStartTs; v != nil {
		where, args = append(where, "meeting.start_ts >= "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.MaxStartTs; v != nil {
		where, args = append(where, "meeting.start_ts < "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, uid, creator_id, created_ts, updated_ts, row_status,
			title, description, category_id, location,
			start_ts, end_ts, ai_notes, original_note
		FROM meeting
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY meeting.start_ts ASC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query meetings: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Meeting, 0)
	for rows.Next() {
		var meeting store.Meeting
		var categoryID sql.NullInt32

		if err := rows.Scan(
			&meeting.ID,
			&meeting.UID,
			&meeting.CreatorID,
			&meeting.CreatedTs,
			&meeting.UpdatedTs,
			&meeting.RowStatus,
			&meeting.Title,
			&meeting.Description,
			&categoryID,
			&meeting.Location,
			&meeting.StartTs,
			&meeting.EndTs,
			&meeting.AINotes,
			&meeting.OriginalNote,
		); err != nil {
			return nil, fmt.Errorf("failed to scan meeting: %w", err)
		}

		if categoryID.Valid {
			meeting.CategoryID = &categoryID.Int32
		}

		list = append(list, &meeting)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate meetings: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateMeeting(ctx context.Context, update *store.UpdateMeeting) error {
	set, args := []string{}, []any{}

	if v := update.RowStatus; v != nil {
		set, args = append(set, "row_status = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Title; v != nil {
		set, args = append(set, "title = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Description; v != nil {
		set, args = append(set, "description = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.CategoryID; v != nil {
		set, args = append(set, "category_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Location; v != nil {
		set, args = append(set, "location = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.StartTs; v != nil {
		set, args = append(set, "start_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.EndTs; v != nil {
		set, args = append(set, "end_ts = "+placeholder(len(args)+1)), append(args, *v)
	}

	if len(set) == 0 {
		return nil
	}

	set = append(set, "updated_ts = EXTRACT(EPOCH FROM NOW())")
	args = append(args, update.ID)

	stmt := `UPDATE meeting SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to update meeting: %w", err)
	}

	return nil
}

func (d *DB) DeleteMeeting(ctx context.Context, delete *store.DeleteMeeting) error {
	stmt := `DELETE FROM meeting WHERE id = ` + placeholder(1)
	result, err := d.db.ExecContext(ctx, stmt, delete.ID)
	if err != nil {
		return fmt.Errorf("failed to delete meeting: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("meeting not found")
	}

	return nil
}
