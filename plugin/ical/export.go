// Package ical renders a user's meetings as an iCalendar feed so the
// planner's schedule can be subscribed to from regular calendar clients.
package ical

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/vadimvoyevoda/ai-planner-sub000/store"
)

const prodID = "-//ai-planner//meeting feed//EN"

// Store is the subset of store operations the exporter needs.
type Store interface {
	ListMeetings(ctx context.Context, find *store.FindMeeting) ([]*store.Meeting, error)
}

type Exporter struct {
	store Store

	// now is swapped in tests for deterministic DTSTAMP values.
	now func() time.Time
}

// NewExporter creates a calendar exporter over the given store.
func NewExporter(st Store) *Exporter {
	return &Exporter{
		store: st,
		now:   time.Now,
	}
}

// Export serializes the user's upcoming non-archived meetings as a
// VCALENDAR payload. Past meetings are excluded.
func (e *Exporter) Export(ctx context.Context, userID int32) (string, error) {
	normalStatus := store.Normal
	fromTs := e.now().Unix()
	meetings, err := e.store.ListMeetings(ctx, &store.FindMeeting{
		CreatorID:  &userID,
		RowStatus:  &normalStatus,
		MinStartTs: &fromTs,
	})
	if err != nil {
		return "", fmt.Errorf("failed to list meetings for export: %w", err)
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(prodID)

	stamp := e.now().UTC()
	for _, m := range meetings {
		event := cal.AddEvent(m.UID)
		event.SetDtStampTime(stamp)
		event.SetStartAt(m.ParseStartTime().UTC())
		event.SetEndAt(m.ParseEndTime().UTC())
		event.SetSummary(m.Title)
		if m.Description != "" {
			event.SetDescription(m.Description)
		}
		if m.Location != "" {
			event.SetLocation(m.Location)
		}
	}

	return cal.Serialize(), nil
}
