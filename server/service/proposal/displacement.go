package proposal

import (
	"fmt"
	"time"

	plannererr "github.com/vadimvoyevoda/ai-planner-sub000/internal/errors"
	"github.com/vadimvoyevoda/ai-planner-sub000/store"
)

// displaceStart shifts a proposed start time forward past any overlapping
// existing meeting, leaving at least minBreak of gap after each meeting it
// was displaced past. After any displacement the scan restarts from the
// beginning of the list, because the new position may overlap a meeting
// that was already passed in iteration order.
//
// The loop is capped at len(meetings)+displacementExtraPasses passes; each
// displacement moves the start strictly forward past one meeting's end, so
// the cap is only reached on degenerate input. On exhaustion a
// DISPLACEMENT_EXHAUSTED error is returned and the caller drops the day.
func displaceStart(start time.Time, duration time.Duration, meetings []*store.Meeting, minBreak time.Duration) (time.Time, error) {
	maxPasses := len(meetings) + displacementExtraPasses

	for pass := 0; pass < maxPasses; pass++ {
		end := start.Add(duration)
		displaced := false

		for _, m := range meetings {
			mStart := m.ParseStartTime()
			mEnd := m.ParseEndTime()
			if overlapsInclusive(start, end, mStart, mEnd) {
				start = mEnd.Add(minBreak)
				displaced = true
				break
			}
		}

		if !displaced {
			return start, nil
		}
	}

	return time.Time{}, plannererr.DisplacementExhausted(
		fmt.Sprintf("could not find a free slot after %d passes", maxPasses))
}

// overlapsInclusive tests the proposed [start, end] against an existing
// meeting [mStart, mEnd] with inclusive boundaries: a proposal ending
// exactly when a meeting starts still counts as an overlap, forcing a
// break between back-to-back meetings.
func overlapsInclusive(start, end, mStart, mEnd time.Time) bool {
	within := func(t, lo, hi time.Time) bool {
		return !t.Before(lo) && !t.After(hi)
	}
	if within(start, mStart, mEnd) || within(end, mStart, mEnd) {
		return true
	}
	// Proposal fully covers the meeting.
	return !start.After(mStart) && !end.Before(mEnd)
}
