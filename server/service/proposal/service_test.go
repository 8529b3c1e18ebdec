package proposal

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadimvoyevoda/ai-planner-sub000/plugin/ai/note"
	plannererr "github.com/vadimvoyevoda/ai-planner-sub000/internal/errors"
	"github.com/vadimvoyevoda/ai-planner-sub000/store"
)

// fixedNow is a Wednesday at noon, so the default seven-day horizon spans
// Thursday through the following Wednesday.
var fixedNow = time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC)

type fakeStore struct {
	prefs         *store.UserPreferences
	prefsErr      error
	categories    []*store.Category
	categoriesErr error
	meetings      []*store.Meeting
	meetingsErr   error
	created       []*store.Meeting
	createErr     error
}

func (f *fakeStore) GetUserPreferences(ctx context.Context, find *store.FindUserPreferences) (*store.UserPreferences, error) {
	return f.prefs, f.prefsErr
}

func (f *fakeStore) ListCategories(ctx context.Context, find *store.FindCategory) ([]*store.Category, error) {
	return f.categories, f.categoriesErr
}

func (f *fakeStore) ListMeetings(ctx context.Context, find *store.FindMeeting) ([]*store.Meeting, error) {
	return f.meetings, f.meetingsErr
}

func (f *fakeStore) CreateMeeting(ctx context.Context, create *store.Meeting) (*store.Meeting, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	create.ID = int32(len(f.created) + 1)
	f.created = append(f.created, create)
	return create, nil
}

type fakeAnalyzer struct {
	result *note.AnalysisResult
	err    error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, noteText string) (*note.AnalysisResult, error) {
	return f.result, f.err
}

func teamSyncAnalysis() *note.AnalysisResult {
	return &note.AnalysisResult{
		AnalyzedNote:             "Team sync tomorrow morning to review the launch plan.",
		SuggestedTitle:           "Team Sync",
		SuggestedDescription:     "Review the launch plan with the team.",
		SuggestedCategory:        note.CategoryGuess{Name: "Business"},
		EstimatedDurationMinutes: 45,
	}
}

func newTestService(st Store, analyzer Analyzer) *service {
	svc := NewService(st, analyzer, time.UTC).(*service)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestGenerateProposalsDefaults(t *testing.T) {
	st := &fakeStore{
		categories: []*store.Category{{ID: 1, Name: "General", SuggestedAttire: "casual"}},
	}
	svc := newTestService(st, &fakeAnalyzer{result: teamSyncAnalysis()})

	proposals, err := svc.GenerateProposals(context.Background(), 1, &GenerateRequest{
		Note:         "Team sync tomorrow morning",
		LocationName: "Room 4",
	})
	require.NoError(t, err)
	require.Len(t, proposals, MaxProposals)

	for i, p := range proposals {
		// Default preferences prefer mornings and exclude weekends.
		assert.Equal(t, 9, p.StartTime.Hour(), "proposal %d should start in the morning", i)
		assert.NotEqual(t, time.Saturday, p.StartTime.Weekday())
		assert.NotEqual(t, time.Sunday, p.StartTime.Weekday())
		assert.Equal(t, 45*time.Minute, p.EndTime.Sub(p.StartTime), "duration must follow the analysis estimate")
		assert.True(t, p.StartTime.After(fixedNow), "proposals start after now")

		assert.Equal(t, "Team Sync", p.Title)
		assert.Equal(t, "Review the launch plan with the team.", p.Description)
		assert.Equal(t, "Room 4", p.LocationName)
		assert.Equal(t, "Team sync tomorrow morning", p.OriginalNote)
		require.NotNil(t, p.Category)
		assert.Equal(t, int32(1), p.Category.ID)
	}

	for i := 1; i < len(proposals); i++ {
		assert.True(t, proposals[i].StartTime.After(proposals[i-1].StartTime), "proposals ordered by start time")
	}
}

func TestGenerateProposalsDurationOverride(t *testing.T) {
	st := &fakeStore{}
	svc := newTestService(st, &fakeAnalyzer{result: teamSyncAnalysis()})

	override := 90
	proposals, err := svc.GenerateProposals(context.Background(), 1, &GenerateRequest{
		Note:                    "Quarterly planning",
		DurationOverrideMinutes: &override,
	})
	require.NoError(t, err)
	require.NotEmpty(t, proposals)
	for _, p := range proposals {
		assert.Equal(t, 90*time.Minute, p.EndTime.Sub(p.StartTime), "explicit override beats the analysis estimate")
	}
}

func TestGenerateProposalsFallbackWindow(t *testing.T) {
	// Every weekday marked unavailable: the fallback window ignores the
	// weekday preference and yields exactly two proposals.
	st := &fakeStore{
		prefs: &store.UserPreferences{
			UserID:      1,
			Preferences: `{"distribution":"spread","preferred_times_of_day":["afternoon"],"min_break_minutes":30,"unavailable_weekdays":[0,1,2,3,4,5,6]}`,
		},
	}
	svc := newTestService(st, &fakeAnalyzer{result: teamSyncAnalysis()})

	proposals, err := svc.GenerateProposals(context.Background(), 1, &GenerateRequest{Note: "Catch-up"})
	require.NoError(t, err)
	require.Len(t, proposals, MinProposals)

	tomorrow := time.Date(2026, 3, 5, 14, 0, 0, 0, time.UTC)
	assert.Equal(t, tomorrow, proposals[0].StartTime)
	assert.Equal(t, tomorrow.AddDate(0, 0, 1), proposals[1].StartTime)
}

func TestGenerateProposalsEveningPreference(t *testing.T) {
	st := &fakeStore{
		prefs: &store.UserPreferences{
			UserID:      1,
			Preferences: `{"distribution":"condensed","preferred_times_of_day":["evening"],"min_break_minutes":15,"unavailable_weekdays":[0,6]}`,
		},
	}
	svc := newTestService(st, &fakeAnalyzer{result: teamSyncAnalysis()})

	proposals, err := svc.GenerateProposals(context.Background(), 1, &GenerateRequest{Note: "Dinner with the board"})
	require.NoError(t, err)
	require.Len(t, proposals, MaxProposals)

	for i, p := range proposals {
		assert.Equal(t, EveningHour, p.StartTime.Hour())
		if i > 0 {
			// Condensed distribution yields consecutive calendar days.
			assert.Equal(t, proposals[i-1].StartTime.AddDate(0, 0, 1), p.StartTime)
		}
	}
}

func TestGenerateProposalsDisplacesAroundMeetings(t *testing.T) {
	// A standing 9:00-10:00 meeting on every candidate day pushes the
	// morning proposals to 10:30 with the default 30-minute break.
	busy := make([]*store.Meeting, 0, DefaultHorizonDays)
	for d := 1; d <= DefaultHorizonDays; d++ {
		day := fixedNow.AddDate(0, 0, d)
		start := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.UTC)
		busy = append(busy, &store.Meeting{
			ID:      int32(d),
			Title:   "standup",
			StartTs: start.Unix(),
			EndTs:   start.Add(time.Hour).Unix(),
		})
	}
	st := &fakeStore{meetings: busy}
	svc := newTestService(st, &fakeAnalyzer{result: teamSyncAnalysis()})

	proposals, err := svc.GenerateProposals(context.Background(), 1, &GenerateRequest{Note: "Design review"})
	require.NoError(t, err)
	require.Len(t, proposals, MaxProposals)
	for _, p := range proposals {
		assert.Equal(t, 10, p.StartTime.Hour())
		assert.Equal(t, 30, p.StartTime.Minute())
	}
}

func TestGenerateProposalsDegradedReads(t *testing.T) {
	// Preferences, categories and meetings failures all degrade to
	// defaults instead of failing the request.
	st := &fakeStore{
		prefsErr:      errors.New("preferences table gone"),
		categoriesErr: errors.New("categories table gone"),
		meetingsErr:   errors.New("meetings table gone"),
	}
	svc := newTestService(st, &fakeAnalyzer{result: teamSyncAnalysis()})

	proposals, err := svc.GenerateProposals(context.Background(), 1, &GenerateRequest{Note: "1:1 with Sam"})
	require.NoError(t, err)
	require.Len(t, proposals, MaxProposals)

	for _, p := range proposals {
		assert.Equal(t, MorningHour, p.StartTime.Hour())
		require.NotNil(t, p.Category)
		assert.Equal(t, "General", p.Category.Name, "empty catalog synthesizes a General category")
	}
}

func TestGenerateProposalsCorruptPreferencesUseDefaults(t *testing.T) {
	st := &fakeStore{
		prefs: &store.UserPreferences{UserID: 1, Preferences: "{not json"},
	}
	svc := newTestService(st, &fakeAnalyzer{result: teamSyncAnalysis()})

	proposals, err := svc.GenerateProposals(context.Background(), 1, &GenerateRequest{Note: "Planning"})
	require.NoError(t, err)
	require.Len(t, proposals, MaxProposals)
	for _, p := range proposals {
		assert.Equal(t, MorningHour, p.StartTime.Hour())
	}
}

func TestGenerateProposalsAnalysisFailureAborts(t *testing.T) {
	st := &fakeStore{}
	analyzeErr := plannererr.AnalysisFailed("model returned garbage", nil)
	svc := newTestService(st, &fakeAnalyzer{err: analyzeErr})

	proposals, err := svc.GenerateProposals(context.Background(), 1, &GenerateRequest{Note: "Sync"})
	require.Error(t, err)
	assert.True(t, plannererr.IsCode(err, plannererr.ErrCodeAnalysisFailed))
	assert.Nil(t, proposals)
}

func TestGenerateProposalsNilRequest(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeAnalyzer{result: teamSyncAnalysis()})

	_, err := svc.GenerateProposals(context.Background(), 1, nil)
	require.Error(t, err)
	assert.True(t, plannererr.IsCode(err, plannererr.ErrCodeInvalidArgument))
}

func TestAcceptProposalPersistsMeeting(t *testing.T) {
	st := &fakeStore{}
	svc := newTestService(st, &fakeAnalyzer{result: teamSyncAnalysis()})

	start := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	result, err := svc.AcceptProposal(context.Background(), 7, &Proposal{
		StartTime:    start,
		EndTime:      start.Add(45 * time.Minute),
		Title:        "Team Sync",
		Description:  "Review the launch plan.",
		Category:     &store.Category{ID: 2, Name: "Business"},
		LocationName: "Room 4",
		AINotes:      "analyzed",
		OriginalNote: "team sync tomorrow",
	})
	require.NoError(t, err)
	require.NotNil(t, result.Meeting)
	assert.Empty(t, result.Conflicts)

	require.Len(t, st.created, 1)
	m := st.created[0]
	assert.NotEmpty(t, m.UID)
	assert.Equal(t, int32(7), m.CreatorID)
	assert.Equal(t, start.Unix(), m.StartTs)
	assert.Equal(t, start.Add(45*time.Minute).Unix(), m.EndTs)
	require.NotNil(t, m.CategoryID)
	assert.Equal(t, int32(2), *m.CategoryID)
	assert.Equal(t, "team sync tomorrow", m.OriginalNote)
}

func TestAcceptProposalReportsConflictsWithoutBlocking(t *testing.T) {
	start := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	st := &fakeStore{
		meetings: []*store.Meeting{{
			ID:      42,
			UID:     "existing-uid",
			Title:   "standup",
			StartTs: start.Add(30 * time.Minute).Unix(),
			EndTs:   start.Add(90 * time.Minute).Unix(),
		}},
	}
	svc := newTestService(st, &fakeAnalyzer{result: teamSyncAnalysis()})

	result, err := svc.AcceptProposal(context.Background(), 1, &Proposal{
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Title:     "Team Sync",
	})
	require.NoError(t, err)
	require.Len(t, result.Conflicts, 1)
	assert.Equal(t, "standup", result.Conflicts[0].Title)
	assert.Equal(t, "existing-uid", result.Conflicts[0].UID)
	assert.Len(t, st.created, 1, "conflicts are advisory, the meeting is still saved")
}

func TestAcceptProposalBoundaryTouchIsNotConflict(t *testing.T) {
	// An existing meeting ending exactly at the proposal start does not
	// overlap under half-open interval semantics.
	start := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	st := &fakeStore{
		meetings: []*store.Meeting{{
			ID:      1,
			Title:   "earlier",
			StartTs: start.Add(-time.Hour).Unix(),
			EndTs:   start.Unix(),
		}},
	}
	svc := newTestService(st, &fakeAnalyzer{result: teamSyncAnalysis()})

	result, err := svc.AcceptProposal(context.Background(), 1, &Proposal{
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Title:     "Team Sync",
	})
	require.NoError(t, err)
	assert.Empty(t, result.Conflicts)
}

func TestAcceptProposalConflictReadFailureStillPersists(t *testing.T) {
	st := &fakeStore{meetingsErr: errors.New("read timeout")}
	svc := newTestService(st, &fakeAnalyzer{result: teamSyncAnalysis()})

	start := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	result, err := svc.AcceptProposal(context.Background(), 1, &Proposal{
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Title:     "Team Sync",
	})
	require.NoError(t, err)
	assert.Empty(t, result.Conflicts)
	assert.Len(t, st.created, 1)
}

func TestAcceptProposalInvalidInterval(t *testing.T) {
	st := &fakeStore{}
	svc := newTestService(st, &fakeAnalyzer{result: teamSyncAnalysis()})

	start := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	_, err := svc.AcceptProposal(context.Background(), 1, &Proposal{
		StartTime: start,
		EndTime:   start,
		Title:     "Team Sync",
	})
	require.Error(t, err)
	assert.True(t, plannererr.IsCode(err, plannererr.ErrCodeInvalidArgument))
	assert.Empty(t, st.created)
}

func TestAcceptProposalPersistenceFailure(t *testing.T) {
	st := &fakeStore{createErr: errors.New("disk full")}
	svc := newTestService(st, &fakeAnalyzer{result: teamSyncAnalysis()})

	start := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	_, err := svc.AcceptProposal(context.Background(), 1, &Proposal{
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Title:     "Team Sync",
	})
	require.Error(t, err)
	assert.True(t, plannererr.IsCode(err, plannererr.ErrCodePersistenceFailed))
}

func TestNormalizePreferences(t *testing.T) {
	got := normalizePreferences(Preferences{
		Distribution:        Distribution("weird"),
		UnavailableWeekdays: []int{-1, 2, 9, 6},
	})
	assert.Equal(t, Spread, got.Distribution)
	require.NotNil(t, got.MinBreakMinutes)
	assert.Equal(t, DefaultMinBreakMinutes, *got.MinBreakMinutes)
	assert.Equal(t, []int{2, 6}, got.UnavailableWeekdays)
}

func TestResolveDuration(t *testing.T) {
	override := 90
	zero := 0

	assert.Equal(t, 90*time.Minute, resolveDuration(&override, 45))
	assert.Equal(t, 45*time.Minute, resolveDuration(nil, 45))
	assert.Equal(t, 45*time.Minute, resolveDuration(&zero, 45), "non-positive override is ignored")
	assert.Equal(t, time.Duration(DefaultDurationMinutes)*time.Minute, resolveDuration(nil, 0))
}
