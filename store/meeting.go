package store

import (
	"context"
	"time"
)

// Meeting is the object representing an accepted meeting.
type Meeting struct {
	ID           int32
	UID          string
	CreatorID    int32
	RowStatus    RowStatus
	CreatedTs    int64
	UpdatedTs    int64
	Title        string
	Description  string
	CategoryID   *int32
	Location     string
	StartTs      int64
	EndTs        int64
	AINotes      string
	OriginalNote string
}

// FindMeeting is the find condition for meeting.
type FindMeeting struct {
	ID        *int32
	UID       *string
	CreatorID *int32

	// MinStartTs keeps only meetings starting at or after the given timestamp.
	MinStartTs *int64
	// MaxStartTs keeps only meetings starting before the given timestamp.
	MaxStartTs *int64

	RowStatus *RowStatus

	Limit  *int
	Offset *int
}

// UpdateMeeting is the update request for meeting.
type UpdateMeeting struct {
	ID          int32
	UpdatedTs   *int64
	RowStatus   *RowStatus
	Title       *string
	Description *string
	CategoryID  *int32
	Location    *string
	StartTs     *int64
	EndTs       *int64
}

// DeleteMeeting is the delete request for meeting.
type DeleteMeeting struct {
	ID int32
}

// CreateMeeting creates a new meeting.
func (s *Store) CreateMeeting(ctx context.Context, create *Meeting) (*Meeting, error) {
	return s.driver.CreateMeeting(ctx, create)
}

// ListMeetings lists meetings with filter, ordered by start_ts ascending.
func (s *Store) ListMeetings(ctx context.Context, find *FindMeeting) ([]*Meeting, error) {
	return s.driver.ListMeetings(ctx, find)
}

// GetMeeting gets a single meeting matching the find condition.
func (s *Store) GetMeeting(ctx context.Context, find *FindMeeting) (*Meeting, error) {
	list, err := s.driver.ListMeetings(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateMeeting updates a meeting.
func (s *Store) UpdateMeeting(ctx context.Context, update *UpdateMeeting) error {
	return s.driver.UpdateMeeting(ctx, update)
}

// DeleteMeeting hard-deletes a meeting.
func (s *Store) DeleteMeeting(ctx context.Context, delete *DeleteMeeting) error {
	return s.driver.DeleteMeeting(ctx, delete)
}

// ParseStartTime parses the meeting start time to time.Time.
func (m *Meeting) ParseStartTime() time.Time {
	return time.Unix(m.StartTs, 0)
}

// ParseEndTime parses the meeting end time to time.Time.
func (m *Meeting) ParseEndTime() time.Time {
	return time.Unix(m.EndTs, 0)
}

// Duration returns the duration of the meeting.
func (m *Meeting) Duration() time.Duration {
	return time.Unix(m.EndTs, 0).Sub(time.Unix(m.StartTs, 0))
}

// OverlapsWith reports whether the meeting overlaps the [startTs, endTs)
// interval. Both intervals use the [start, end) convention.
func (m *Meeting) OverlapsWith(startTs, endTs int64) bool {
	return startTs < m.EndTs && endTs > m.StartTs
}
