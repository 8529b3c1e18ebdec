package note

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vadimvoyevoda/ai-planner-sub000/plugin/ai"
	plannererr "github.com/vadimvoyevoda/ai-planner-sub000/internal/errors"
)

type fakeChat struct {
	response string
	err      error
	lastUser string
}

func (f *fakeChat) Chat(_ context.Context, messages []ai.Message) (string, error) {
	for _, m := range messages {
		if m.Role == "user" {
			f.lastUser = m.Content
		}
	}
	return f.response, f.err
}

func TestAnalyzerValidResponse(t *testing.T) {
	llm := &fakeChat{response: `{
		"analyzed_note": "Team sync with the backend group",
		"suggested_title": "Team Sync",
		"suggested_description": "Weekly backend sync",
		"suggested_category": {"name": "Business", "suggested_attire": "business casual"},
		"estimated_duration_minutes": 30
	}`}
	analyzer := NewAnalyzer(llm)

	result, err := analyzer.Analyze(context.Background(), "Team sync tomorrow morning")
	require.NoError(t, err)
	assert.Equal(t, "Team Sync", result.SuggestedTitle)
	assert.Equal(t, "Business", result.SuggestedCategory.Name)
	assert.Equal(t, 30, result.EstimatedDurationMinutes)
}

func TestAnalyzerCodeFencedResponse(t *testing.T) {
	llm := &fakeChat{response: "```json\n{\"suggested_title\": \"Lunch\", \"suggested_category\": {\"name\": \"Social\"}, \"estimated_duration_minutes\": 45}\n```"}
	analyzer := NewAnalyzer(llm)

	result, err := analyzer.Analyze(context.Background(), "lunch with Anna on Friday")
	require.NoError(t, err)
	assert.Equal(t, "Lunch", result.SuggestedTitle)
	assert.Equal(t, 45, result.EstimatedDurationMinutes)
}

func TestAnalyzerDefaultsApplied(t *testing.T) {
	llm := &fakeChat{response: `{"suggested_title": "Catch up"}`}
	analyzer := NewAnalyzer(llm)

	result, err := analyzer.Analyze(context.Background(), "catch up next week")
	require.NoError(t, err)
	assert.Equal(t, DefaultDurationMinutes, result.EstimatedDurationMinutes)
	assert.Equal(t, "General", result.SuggestedCategory.Name)
}

func TestAnalyzerMalformedResponse(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not json", "I think you should meet on Tuesday."},
		{"missing title", `{"analyzed_note": "x"}`},
		{"implausible duration", `{"suggested_title": "x", "estimated_duration_minutes": 100000}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := NewAnalyzer(&fakeChat{response: tt.response})
			_, err := analyzer.Analyze(context.Background(), "some note")
			require.Error(t, err)
			assert.True(t, plannererr.IsCode(err, plannererr.ErrCodeAnalysisFailed))
		})
	}
}

func TestAnalyzerUpstreamFailurePropagates(t *testing.T) {
	analyzer := NewAnalyzer(&fakeChat{err: fmt.Errorf("upstream down")})
	_, err := analyzer.Analyze(context.Background(), "some note")
	require.Error(t, err)
	assert.True(t, plannererr.IsCode(err, plannererr.ErrCodeAnalysisFailed))
}

func TestAnalyzerInputValidation(t *testing.T) {
	analyzer := NewAnalyzer(&fakeChat{})

	_, err := analyzer.Analyze(context.Background(), "   ")
	assert.True(t, plannererr.IsCode(err, plannererr.ErrCodeInvalidArgument))

	long := make([]byte, MaxInputLength+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = analyzer.Analyze(context.Background(), string(long))
	assert.True(t, plannererr.IsCode(err, plannererr.ErrCodeInvalidArgument))
}

func TestAnalyzerFlattensMarkdownInPrompt(t *testing.T) {
	llm := &fakeChat{response: `{"suggested_title": "Planning"}`}
	analyzer := NewAnalyzer(llm)

	_, err := analyzer.Analyze(context.Background(), "# Planning\n- with **Bob**\n- about *roadmap*")
	require.NoError(t, err)
	assert.NotContains(t, llm.lastUser, "**")
	assert.NotContains(t, llm.lastUser, "# ")
	assert.Contains(t, llm.lastUser, "Bob")
}

func TestFlattenMarkdown(t *testing.T) {
	out := FlattenMarkdown("# Title\n\nSome *emphasis* and a [link](https://example.com).")
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "emphasis")
	assert.Contains(t, out, "link")
	assert.NotContains(t, out, "*")
	assert.NotContains(t, out, "https://example.com")
}
