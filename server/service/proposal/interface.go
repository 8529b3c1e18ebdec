package proposal

import (
	"context"
	"time"

	"github.com/vadimvoyevoda/ai-planner-sub000/plugin/ai/note"
	"github.com/vadimvoyevoda/ai-planner-sub000/store"
)

// Service defines the core business logic interface for meeting proposals.
type Service interface {
	// GenerateProposals turns a free-text note into 1-3 candidate meeting
	// slots consistent with the user's preferences and existing calendar.
	GenerateProposals(ctx context.Context, userID int32, req *GenerateRequest) ([]*Proposal, error)

	// AcceptProposal persists the chosen proposal as a meeting and returns
	// any overlapping existing meetings as advisory conflicts. Conflicts
	// never block the write.
	AcceptProposal(ctx context.Context, userID int32, p *Proposal) (*AcceptResult, error)
}

// Store is the interface for store operations needed by the proposal service.
type Store interface {
	GetUserPreferences(ctx context.Context, find *store.FindUserPreferences) (*store.UserPreferences, error)
	ListCategories(ctx context.Context, find *store.FindCategory) ([]*store.Category, error)
	ListMeetings(ctx context.Context, find *store.FindMeeting) ([]*store.Meeting, error)
	CreateMeeting(ctx context.Context, create *store.Meeting) (*store.Meeting, error)
}

// Analyzer is the note-analysis collaborator.
type Analyzer interface {
	Analyze(ctx context.Context, noteText string) (*note.AnalysisResult, error)
}

// Distribution governs how candidate days are picked from the horizon.
type Distribution string

const (
	// Spread samples days evenly across the available list.
	Spread Distribution = "spread"
	// Condensed prefers a run of consecutive calendar days.
	Condensed Distribution = "condensed"
)

// TimeOfDay is a coarse daypart preference.
type TimeOfDay string

const (
	Morning   TimeOfDay = "morning"
	Afternoon TimeOfDay = "afternoon"
	Evening   TimeOfDay = "evening"
)

// Preferences are the resolved scheduling preferences for a user.
// After defaulting, Distribution is always one of the two valid values.
type Preferences struct {
	Distribution        Distribution `json:"distribution"`
	PreferredTimesOfDay []TimeOfDay  `json:"preferred_times_of_day"`
	MinBreakMinutes     *int         `json:"min_break_minutes"`
	UnavailableWeekdays []int        `json:"unavailable_weekdays"` // 0 = Sunday .. 6 = Saturday
}

// GenerateRequest carries the inputs for proposal generation.
type GenerateRequest struct {
	Note                    string
	LocationName            string
	DurationOverrideMinutes *int
}

// Proposal is an ephemeral candidate meeting slot. It is never persisted
// until accepted.
type Proposal struct {
	StartTime    time.Time
	EndTime      time.Time
	Title        string
	Description  string
	Category     *store.Category
	LocationName string
	AINotes      string
	OriginalNote string
}

// MeetingConflict describes an existing meeting overlapping an accepted
// proposal. Advisory only.
type MeetingConflict struct {
	ID        int32
	UID       string
	Title     string
	StartTime time.Time
	EndTime   time.Time
}

// AcceptResult is the outcome of accepting a proposal.
type AcceptResult struct {
	Meeting   *store.Meeting
	Conflicts []*MeetingConflict
}
