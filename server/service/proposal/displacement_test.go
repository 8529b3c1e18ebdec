package proposal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	plannererr "github.com/vadimvoyevoda/ai-planner-sub000/internal/errors"
	"github.com/vadimvoyevoda/ai-planner-sub000/store"
)

// meetingAt builds an existing meeting covering [start, end).
func meetingAt(start, end time.Time) *store.Meeting {
	return &store.Meeting{
		Title:   "existing",
		StartTs: start.Unix(),
		EndTs:   end.Unix(),
	}
}

func TestDisplaceStartNoConflict(t *testing.T) {
	start := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)

	resolved, err := displaceStart(start, time.Hour, nil, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, start, resolved, "no meetings means no displacement")
}

func TestDisplaceStartPastOverlap(t *testing.T) {
	// Existing meeting 10:00-11:00, proposal 10:30 for 30 minutes with a
	// 15-minute break: resolved start must be at least 11:15.
	busyStart := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	busyEnd := time.Date(2026, 3, 5, 11, 0, 0, 0, time.UTC)
	proposed := time.Date(2026, 3, 5, 10, 30, 0, 0, time.UTC)

	resolved, err := displaceStart(proposed, 30*time.Minute, []*store.Meeting{meetingAt(busyStart, busyEnd)}, 15*time.Minute)
	require.NoError(t, err)
	assert.False(t, resolved.Before(time.Date(2026, 3, 5, 11, 15, 0, 0, time.UTC)))
}

func TestDisplaceStartChainsAcrossMeetings(t *testing.T) {
	// Back-to-back meetings: displacement past the first lands inside the
	// second, so the scan must restart and displace again.
	day := func(h, m int) time.Time { return time.Date(2026, 3, 5, h, m, 0, 0, time.UTC) }
	meetings := []*store.Meeting{
		meetingAt(day(9, 0), day(10, 0)),
		meetingAt(day(10, 30), day(11, 30)),
	}

	resolved, err := displaceStart(day(9, 30), time.Hour, meetings, 30*time.Minute)
	require.NoError(t, err)
	// 9:30 shifts to 10:30 past the first meeting, which overlaps the
	// second, shifting again to 12:00.
	assert.Equal(t, day(12, 0), resolved)
}

func TestDisplaceStartRestartCatchesEarlierMeeting(t *testing.T) {
	// The list is not ordered; displacement past the second entry creates a
	// conflict with the first entry in iteration order.
	day := func(h, m int) time.Time { return time.Date(2026, 3, 5, h, m, 0, 0, time.UTC) }
	meetings := []*store.Meeting{
		meetingAt(day(11, 0), day(12, 0)),
		meetingAt(day(9, 0), day(10, 45)),
	}

	resolved, err := displaceStart(day(9, 0), time.Hour, meetings, 15*time.Minute)
	require.NoError(t, err)
	// 9:00 shifts past the 9:00-10:45 meeting to 11:00, which lands inside
	// the 11:00-12:00 meeting, so the restart shifts again to 12:15.
	assert.Equal(t, day(12, 15), resolved)
}

func TestDisplaceStartInclusiveBoundaries(t *testing.T) {
	day := func(h, m int) time.Time { return time.Date(2026, 3, 5, h, m, 0, 0, time.UTC) }
	meeting := meetingAt(day(10, 0), day(11, 0))

	// Proposal ending exactly at the meeting start still displaces.
	resolved, err := displaceStart(day(9, 0), time.Hour, []*store.Meeting{meeting}, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, day(11, 30), resolved)
}

func TestDisplaceStartCoversMeeting(t *testing.T) {
	day := func(h, m int) time.Time { return time.Date(2026, 3, 5, h, m, 0, 0, time.UTC) }
	meeting := meetingAt(day(10, 0), day(10, 30))

	// A long proposal fully covering the meeting displaces too.
	resolved, err := displaceStart(day(9, 0), 3*time.Hour, []*store.Meeting{meeting}, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, day(11, 0), resolved)
}

func TestDisplaceStartExhaustion(t *testing.T) {
	// With a zero break, displacement lands exactly on the meeting end,
	// which the inclusive boundary still treats as an overlap. The bounded
	// loop must give up instead of spinning.
	day := func(h, m int) time.Time { return time.Date(2026, 3, 5, h, m, 0, 0, time.UTC) }
	meeting := meetingAt(day(10, 0), day(11, 0))

	_, err := displaceStart(day(10, 30), time.Hour, []*store.Meeting{meeting}, 0)
	require.Error(t, err)
	assert.True(t, plannererr.IsCode(err, plannererr.ErrCodeDisplacementExhausted))
}

func BenchmarkDisplaceStart(b *testing.B) {
	base := time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC)
	meetings := make([]*store.Meeting, 0, 50)
	for i := 0; i < 50; i++ {
		start := base.Add(time.Duration(i) * 90 * time.Minute)
		meetings = append(meetings, meetingAt(start, start.Add(time.Hour)))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = displaceStart(base, 30*time.Minute, meetings, 15*time.Minute)
	}
}
