package note

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/vadimvoyevoda/ai-planner-sub000/plugin/ai"
	plannererr "github.com/vadimvoyevoda/ai-planner-sub000/internal/errors"
)

const (
	// MaxInputLength bounds the note length passed to the model.
	MaxInputLength = 2000 // characters

	// DefaultDurationMinutes is used when the model omits an estimate.
	DefaultDurationMinutes = 60

	// maxDurationMinutes rejects obviously broken estimates.
	maxDurationMinutes = 8 * 60
)

// ChatCompleter is the chat surface the analyzer needs. *ai.Provider
// satisfies it; tests substitute a fake.
type ChatCompleter interface {
	Chat(ctx context.Context, messages []ai.Message) (string, error)
}

// CategoryGuess is the model's best guess at a meeting category. It may not
// exist in the catalog; matching against the catalog happens downstream.
type CategoryGuess struct {
	Name            string `json:"name"`
	SuggestedAttire string `json:"suggested_attire"`
}

// AnalysisResult represents the analyzed meeting note.
type AnalysisResult struct {
	AnalyzedNote             string
	SuggestedTitle           string
	SuggestedDescription     string
	SuggestedCategory        CategoryGuess
	EstimatedDurationMinutes int
}

// Analyzer turns a free-text meeting note into structured analysis.
type Analyzer struct {
	llm ChatCompleter
}

// NewAnalyzer creates a new note analyzer.
func NewAnalyzer(llm ChatCompleter) *Analyzer {
	return &Analyzer{llm: llm}
}

// llmNoteResponse is the intermediate JSON structure for model output.
type llmNoteResponse struct {
	AnalyzedNote             string        `json:"analyzed_note"`
	SuggestedTitle           string        `json:"suggested_title"`
	SuggestedDescription     string        `json:"suggested_description"`
	SuggestedCategory        CategoryGuess `json:"suggested_category"`
	EstimatedDurationMinutes int           `json:"estimated_duration_minutes"`
}

// Analyze sends the note to the model and validates the structured response.
// All failures surface as ANALYSIS_FAILED; callers must not retry here.
func (a *Analyzer) Analyze(ctx context.Context, noteText string) (*AnalysisResult, error) {
	noteText = strings.TrimSpace(noteText)
	if noteText == "" {
		return nil, plannererr.InvalidArgument("empty note")
	}
	if len(noteText) > MaxInputLength {
		return nil, plannererr.InvalidArgument(
			fmt.Sprintf("note too long: maximum %d characters, got %d", MaxInputLength, len(noteText)))
	}

	plain := FlattenMarkdown(noteText)
	if plain == "" {
		plain = noteText
	}

	response, err := a.llm.Chat(ctx, []ai.Message{
		ai.SystemPrompt(analysisSystemPrompt(time.Now())),
		ai.UserMessage(fmt.Sprintf("Meeting note: %s", plain)),
	})
	if err != nil {
		return nil, plannererr.AnalysisFailed("note analysis request failed", err)
	}

	result, err := parseAnalysisResponse(response)
	if err != nil {
		return nil, plannererr.AnalysisFailed("note analysis returned malformed output", err)
	}
	return result, nil
}

func analysisSystemPrompt(now time.Time) string {
	return fmt.Sprintf(`You are a meeting note analyst. Extract meeting details from the user's note into a strict JSON format.

Current Time: %s

Output Schema (JSON Only):
{
  "analyzed_note": "One-sentence summary of the note",
  "suggested_title": "Short meeting title",
  "suggested_description": "Details, or empty string",
  "suggested_category": {"name": "Business|Interview|Social|General", "suggested_attire": "attire hint, or empty string"},
  "estimated_duration_minutes": int
}

Rules:
1. 'suggested_title' must not contain dates or times.
2. If duration is not implied by the note, use 60.
3. Respond with JSON only, no prose.`, now.Format("2006-01-02 15:04:05"))
}

// parseAnalysisResponse validates the model output against the expected
// schema instead of trusting it as already well-formed.
func parseAnalysisResponse(response string) (*AnalysisResult, error) {
	jsonStr := strings.TrimSpace(response)
	jsonStr = strings.TrimPrefix(jsonStr, "```json")
	jsonStr = strings.TrimPrefix(jsonStr, "```")
	jsonStr = strings.TrimSuffix(jsonStr, "```")

	var llmResp llmNoteResponse
	if err := json.Unmarshal([]byte(jsonStr), &llmResp); err != nil {
		return nil, fmt.Errorf("failed to parse model response: %w. Response: %s", err, response)
	}

	if llmResp.SuggestedTitle == "" {
		return nil, fmt.Errorf("model response missing suggested_title")
	}
	if llmResp.EstimatedDurationMinutes < 0 || llmResp.EstimatedDurationMinutes > maxDurationMinutes {
		return nil, fmt.Errorf("model response has implausible duration: %d", llmResp.EstimatedDurationMinutes)
	}
	if llmResp.EstimatedDurationMinutes == 0 {
		llmResp.EstimatedDurationMinutes = DefaultDurationMinutes
	}
	if llmResp.SuggestedCategory.Name == "" {
		llmResp.SuggestedCategory.Name = "General"
	}

	return &AnalysisResult{
		AnalyzedNote:             llmResp.AnalyzedNote,
		SuggestedTitle:           llmResp.SuggestedTitle,
		SuggestedDescription:     llmResp.SuggestedDescription,
		SuggestedCategory:        llmResp.SuggestedCategory,
		EstimatedDurationMinutes: llmResp.EstimatedDurationMinutes,
	}, nil
}
