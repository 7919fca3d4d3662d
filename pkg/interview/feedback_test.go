package interview

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFeedbackComplete(t *testing.T) {
	raw := json.RawMessage(`{
		"overallScore": 91,
		"evaluation": "Great",
		"strengths": ["a"],
		"weaknesses": ["b"],
		"suggestions": ["c", "d"],
		"duration": 120
	}`)

	fb, defaulted := NormalizeFeedback(raw)
	assert.Empty(t, defaulted)
	assert.Equal(t, Feedback{
		OverallScore: 91,
		Evaluation:   "Great",
		Strengths:    []string{"a"},
		Weaknesses:   []string{"b"},
		Suggestions:  []string{"c", "d"},
		Duration:     120,
	}, fb)
	assert.Nil(t, FeedbackDiagnostic(nil, defaulted))
}

func TestNormalizeFeedbackMissingWeaknesses(t *testing.T) {
	raw := json.RawMessage(`{"overallScore": 64, "evaluation": "ok", "strengths": ["s"], "suggestions": ["x"], "duration": 300}`)

	fb, defaulted := NormalizeFeedback(raw)
	def := DefaultFeedback()
	assert.Equal(t, []string{"weaknesses"}, defaulted)
	assert.Equal(t, def.Weaknesses, fb.Weaknesses)
	assert.Equal(t, 64, fb.OverallScore)
	assert.Equal(t, "ok", fb.Evaluation)
	assert.Equal(t, []string{"s"}, fb.Strengths)
	assert.Equal(t, []string{"x"}, fb.Suggestions)
	assert.Equal(t, 300, fb.Duration)
}

func TestNormalizeFeedbackPerFieldValidation(t *testing.T) {
	def := DefaultFeedback()
	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T, fb Feedback, defaulted []string)
	}{
		{
			name: "null fields default",
			raw:  `{"overallScore": null, "evaluation": null}`,
			check: func(t *testing.T, fb Feedback, defaulted []string) {
				assert.Equal(t, def, fb)
				assert.Len(t, defaulted, 6)
			},
		},
		{
			name: "score out of range",
			raw:  `{"overallScore": 140, "evaluation": "e"}`,
			check: func(t *testing.T, fb Feedback, defaulted []string) {
				assert.Equal(t, def.OverallScore, fb.OverallScore)
				assert.Equal(t, "e", fb.Evaluation)
				assert.Contains(t, defaulted, "overallScore")
			},
		},
		{
			name: "wrong types",
			raw:  `{"overallScore": "high", "strengths": "many", "weaknesses": [1, 2], "duration": -5}`,
			check: func(t *testing.T, fb Feedback, defaulted []string) {
				assert.Equal(t, def, fb)
			},
		},
		{
			name: "fractional score rounds",
			raw:  `{"overallScore": 72.6}`,
			check: func(t *testing.T, fb Feedback, defaulted []string) {
				assert.Equal(t, 73, fb.OverallScore)
			},
		},
		{
			name: "empty lists are kept",
			raw:  `{"strengths": []}`,
			check: func(t *testing.T, fb Feedback, defaulted []string) {
				assert.Empty(t, fb.Strengths)
				assert.NotContains(t, defaulted, "strengths")
			},
		},
		{
			name: "non object response",
			raw:  `"Provide final interview feedback"`,
			check: func(t *testing.T, fb Feedback, defaulted []string) {
				assert.Equal(t, def, fb)
				assert.Len(t, defaulted, 6)
			},
		},
		{
			name: "empty body",
			raw:  ``,
			check: func(t *testing.T, fb Feedback, defaulted []string) {
				assert.Equal(t, def, fb)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb, defaulted := NormalizeFeedback(json.RawMessage(tt.raw))
			tt.check(t, fb, defaulted)
		})
	}
}

func TestFeedbackDiagnostic(t *testing.T) {
	d := FeedbackDiagnostic(errors.New("API error 502"), nil)
	require.NotNil(t, d)
	assert.Contains(t, *d, "API error 502")

	d = FeedbackDiagnostic(nil, []string{"weaknesses", "duration"})
	require.NotNil(t, d)
	assert.Contains(t, *d, "weaknesses, duration")
}

func TestDefaultFeedbackIsFreshCopy(t *testing.T) {
	a := DefaultFeedback()
	a.Strengths[0] = "changed"
	assert.NotEqual(t, "changed", DefaultFeedback().Strengths[0])
}
