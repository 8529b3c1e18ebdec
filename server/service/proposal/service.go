// Package proposal implements the meeting proposal engine: it turns a
// free-text note plus the user's scheduling preferences and existing
// calendar into a ranked set of candidate time slots, and performs the
// advisory conflict check applied when a proposal is accepted.
package proposal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"golang.org/x/sync/errgroup"

	"github.com/vadimvoyevoda/ai-planner-sub000/plugin/ai/note"
	plannererr "github.com/vadimvoyevoda/ai-planner-sub000/internal/errors"
	"github.com/vadimvoyevoda/ai-planner-sub000/store"
)

type service struct {
	store    Store
	analyzer Analyzer
	loc      *time.Location

	// now is swapped in tests for deterministic horizons.
	now func() time.Time
}

// NewService creates a new proposal service. The analyzer and store are
// injected by the caller; the service holds no hidden global state.
func NewService(st Store, analyzer Analyzer, loc *time.Location) Service {
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		store:    st,
		analyzer: analyzer,
		loc:      loc,
		now:      time.Now,
	}
}

// defaultPreferences are the documented defaults for users without a
// preferences record: spread distribution, morning/afternoon dayparts,
// a 30-minute break, weekends excluded.
func defaultPreferences() Preferences {
	minBreak := DefaultMinBreakMinutes
	return Preferences{
		Distribution:        Spread,
		PreferredTimesOfDay: []TimeOfDay{Morning, Afternoon},
		MinBreakMinutes:     &minBreak,
		UnavailableWeekdays: []int{0, 6},
	}
}

// GenerateProposals implements Service.
func (s *service) GenerateProposals(ctx context.Context, userID int32, req *GenerateRequest) ([]*Proposal, error) {
	start := time.Now()
	defer func() {
		slog.Debug("proposal generation finished",
			"user_id", userID,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}()

	if req == nil {
		return nil, plannererr.InvalidArgument("request is nil")
	}

	// The four upstream reads are independent; issue them concurrently.
	// Only the analysis failure aborts the request; preferences,
	// categories and meetings degrade to documented defaults.
	var (
		analysis   *note.AnalysisResult
		prefs      Preferences
		categories []*store.Category
		meetings   []*store.Meeting
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		result, err := s.analyzer.Analyze(gctx, req.Note)
		if err != nil {
			return err
		}
		analysis = result
		return nil
	})
	g.Go(func() error {
		prefs = s.loadPreferences(gctx, userID)
		return nil
	})
	g.Go(func() error {
		list, err := s.store.ListCategories(gctx, &store.FindCategory{})
		if err != nil {
			slog.Warn("failed to list categories, using synthesized category",
				"user_id", userID, "error", err)
			return nil
		}
		categories = list
		return nil
	})
	g.Go(func() error {
		list, err := s.listFutureMeetings(gctx, userID)
		if err != nil {
			slog.Warn("failed to list existing meetings, proposing without conflict data",
				"user_id", userID, "error", err)
			return nil
		}
		meetings = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	duration := resolveDuration(req.DurationOverrideMinutes, analysis.EstimatedDurationMinutes)
	category := matchCategory(categories)

	days := availableDays(s.now(), DefaultHorizonDays, prefs.UnavailableWeekdays, s.loc)
	if len(days) == 0 {
		slog.Warn("weekday preferences eliminated the whole horizon, using fallback window",
			"user_id", userID)
		days = fallbackDays(s.now(), s.loc)
	}

	count := MaxProposals
	if len(days) < MaxProposals {
		count = MinProposals
	}
	selected := selectDays(days, count, prefs.Distribution)

	minBreak := time.Duration(DefaultMinBreakMinutes) * time.Minute
	if prefs.MinBreakMinutes != nil {
		minBreak = time.Duration(*prefs.MinBreakMinutes) * time.Minute
	}

	proposals := make([]*Proposal, 0, len(selected))
	for _, day := range selected {
		slotStart := resolveTimeOfDay(day, prefs.PreferredTimesOfDay)
		slotStart, err := displaceStart(slotStart, duration, meetings, minBreak)
		if err != nil {
			// No free slot on this day; exclude it rather than failing
			// the whole request.
			slog.Warn("no free slot found for candidate day",
				"user_id", userID, "day", day.Format("2006-01-02"), "error", err)
			continue
		}

		proposals = append(proposals, &Proposal{
			StartTime:    slotStart,
			EndTime:      slotStart.Add(duration),
			Title:        analysis.SuggestedTitle,
			Description:  analysis.SuggestedDescription,
			Category:     category,
			LocationName: req.LocationName,
			AINotes:      analysis.AnalyzedNote,
			OriginalNote: req.Note,
		})
	}

	if len(proposals) == 0 {
		return nil, plannererr.DisplacementExhausted("no free slot found for any candidate day")
	}

	return proposals, nil
}

// AcceptProposal implements Service.
func (s *service) AcceptProposal(ctx context.Context, userID int32, p *Proposal) (*AcceptResult, error) {
	if p == nil {
		return nil, plannererr.InvalidArgument("proposal is nil")
	}
	if !p.EndTime.After(p.StartTime) {
		return nil, plannererr.InvalidArgument("proposal end time must be after start time")
	}

	// Advisory conflict check: a read failure only loses the warning, it
	// never blocks the write.
	conflicts := s.findAcceptConflicts(ctx, userID, p)

	var categoryID *int32
	if p.Category != nil && p.Category.ID > 0 {
		id := p.Category.ID
		categoryID = &id
	}

	created, err := s.store.CreateMeeting(ctx, &store.Meeting{
		UID:          shortuuid.New(),
		CreatorID:    userID,
		Title:        p.Title,
		Description:  p.Description,
		CategoryID:   categoryID,
		Location:     p.LocationName,
		StartTs:      p.StartTime.Unix(),
		EndTs:        p.EndTime.Unix(),
		AINotes:      p.AINotes,
		OriginalNote: p.OriginalNote,
	})
	if err != nil {
		return nil, plannererr.PersistenceFailed("failed to save meeting", err)
	}

	if len(conflicts) > 0 {
		slog.Info("meeting accepted with conflicts",
			"user_id", userID,
			"meeting_uid", created.UID,
			"conflict_count", len(conflicts),
		)
	}

	return &AcceptResult{Meeting: created, Conflicts: conflicts}, nil
}

// findAcceptConflicts re-queries existing meetings for true overlap with
// the accepted interval using strict [start, end) semantics; the
// generation-time inclusive test is a placement heuristic, this one
// reports real collisions only.
func (s *service) findAcceptConflicts(ctx context.Context, userID int32, p *Proposal) []*MeetingConflict {
	meetings, err := s.listFutureMeetings(ctx, userID)
	if err != nil {
		slog.Warn("conflict check read failed, accepting without conflict info",
			"user_id", userID, "error", err)
		return nil
	}

	conflicts := make([]*MeetingConflict, 0)
	for _, m := range meetings {
		if m.OverlapsWith(p.StartTime.Unix(), p.EndTime.Unix()) {
			conflicts = append(conflicts, &MeetingConflict{
				ID:        m.ID,
				UID:       m.UID,
				Title:     m.Title,
				StartTime: m.ParseStartTime(),
				EndTime:   m.ParseEndTime(),
			})
		}
	}
	return conflicts
}

// listFutureMeetings returns the user's future, non-archived meetings
// ordered by start time ascending.
func (s *service) listFutureMeetings(ctx context.Context, userID int32) ([]*store.Meeting, error) {
	normalStatus := store.Normal
	fromTs := s.now().Unix()
	list, err := s.store.ListMeetings(ctx, &store.FindMeeting{
		CreatorID:  &userID,
		RowStatus:  &normalStatus,
		MinStartTs: &fromTs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	return list, nil
}

// loadPreferences fetches and decodes the user's preferences, degrading to
// the documented defaults on any failure.
func (s *service) loadPreferences(ctx context.Context, userID int32) Preferences {
	record, err := s.store.GetUserPreferences(ctx, &store.FindUserPreferences{UserID: &userID})
	if err != nil {
		slog.Warn("failed to load preferences, using defaults", "user_id", userID, "error", err)
		return defaultPreferences()
	}
	if record == nil {
		return defaultPreferences()
	}

	var prefs Preferences
	if err := json.Unmarshal([]byte(record.Preferences), &prefs); err != nil {
		slog.Warn("failed to decode preferences, using defaults", "user_id", userID, "error", err)
		return defaultPreferences()
	}

	return normalizePreferences(prefs)
}

// normalizePreferences fills gaps so no "unset" state reaches the
// selection pipeline.
func normalizePreferences(prefs Preferences) Preferences {
	if prefs.Distribution != Spread && prefs.Distribution != Condensed {
		prefs.Distribution = Spread
	}
	if prefs.MinBreakMinutes == nil || *prefs.MinBreakMinutes < 0 {
		minBreak := DefaultMinBreakMinutes
		prefs.MinBreakMinutes = &minBreak
	}
	valid := prefs.UnavailableWeekdays[:0]
	for _, wd := range prefs.UnavailableWeekdays {
		if wd >= 0 && wd <= 6 {
			valid = append(valid, wd)
		}
	}
	prefs.UnavailableWeekdays = valid
	return prefs
}

// resolveDuration picks the proposal duration: explicit override, then the
// analysis estimate, then the default.
func resolveDuration(overrideMinutes *int, estimatedMinutes int) time.Duration {
	minutes := DefaultDurationMinutes
	if overrideMinutes != nil && *overrideMinutes > 0 {
		minutes = *overrideMinutes
	} else if estimatedMinutes > 0 {
		minutes = estimatedMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// matchCategory picks the catalog entry for a proposal. The current policy
// takes the first entry, or synthesizes a General category when the
// catalog is empty. Semantic matching against the analysis guess was never
// implemented upstream; the placeholder is kept for compatibility.
func matchCategory(categories []*store.Category) *store.Category {
	if len(categories) > 0 {
		return categories[0]
	}
	return &store.Category{Name: "General"}
}
