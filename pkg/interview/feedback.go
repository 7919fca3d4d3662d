package interview

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

const (
	MinScore = 0
	MaxScore = 100
)

// DefaultFeedback is the fixed report used when the backend scoring is
// missing, partial or unreachable.
func DefaultFeedback() Feedback {
	return Feedback{
		OverallScore: 78,
		Evaluation:   "You demonstrated strong communication skills and a solid understanding of your technical background. Your responses were well-structured and showed genuine enthusiasm for the role. However, there's room for improvement in providing more specific examples and quantifying your achievements.",
		Strengths: []string{
			"Clear and articulate communication style",
			"Strong technical knowledge demonstration",
			"Good enthusiasm and positive attitude",
			"Well-prepared with relevant examples",
		},
		Weaknesses: []string{
			"Could provide more quantifiable results in examples",
			"Some responses were slightly lengthy",
			"Need to elaborate more on leadership experiences",
		},
		Suggestions: []string{
			"Practice the STAR method (Situation, Task, Action, Result) to structure your answers more effectively and include measurable outcomes.",
			"Prepare 3-5 key achievements with specific metrics (percentages, dollar amounts, time saved) that you can reference across different questions.",
			"Work on concise responses - aim for 1-2 minute answers for most questions, leaving room for follow-up.",
			"Research common behavioral questions for your target role and prepare tailored examples.",
		},
		Duration: 847,
	}
}

// NormalizeFeedback maps an untrusted call.ended response onto Feedback.
// Every field is validated on its own and falls back to the default when it
// is absent, null or malformed. The returned slice names the defaulted fields.
func NormalizeFeedback(raw json.RawMessage) (Feedback, []string) {
	def := DefaultFeedback()

	var fields map[string]json.RawMessage
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' || json.Unmarshal(trimmed, &fields) != nil {
		return def, []string{"overallScore", "evaluation", "strengths", "weaknesses", "suggestions", "duration"}
	}

	var defaulted []string
	out := Feedback{}

	if v, ok := decodeScore(fields["overallScore"]); ok {
		out.OverallScore = v
	} else {
		out.OverallScore = def.OverallScore
		defaulted = append(defaulted, "overallScore")
	}

	if v, ok := decodeString(fields["evaluation"]); ok {
		out.Evaluation = v
	} else {
		out.Evaluation = def.Evaluation
		defaulted = append(defaulted, "evaluation")
	}

	if v, ok := decodeStrings(fields["strengths"]); ok {
		out.Strengths = v
	} else {
		out.Strengths = def.Strengths
		defaulted = append(defaulted, "strengths")
	}

	if v, ok := decodeStrings(fields["weaknesses"]); ok {
		out.Weaknesses = v
	} else {
		out.Weaknesses = def.Weaknesses
		defaulted = append(defaulted, "weaknesses")
	}

	if v, ok := decodeStrings(fields["suggestions"]); ok {
		out.Suggestions = v
	} else {
		out.Suggestions = def.Suggestions
		defaulted = append(defaulted, "suggestions")
	}

	if v, ok := decodeDuration(fields["duration"]); ok {
		out.Duration = v
	} else {
		out.Duration = def.Duration
		defaulted = append(defaulted, "duration")
	}

	return out, defaulted
}

// FeedbackDiagnostic renders the non-blocking note stored on the session when
// defaults were substituted.
func FeedbackDiagnostic(cause error, defaulted []string) *string {
	switch {
	case cause != nil:
		return strPtr(fmt.Sprintf("Scoring service unavailable (%v); showing default feedback.", cause))
	case len(defaulted) > 0:
		return strPtr("Scoring response incomplete; defaulted: " + strings.Join(defaulted, ", ") + ".")
	default:
		return nil
	}
}

func isNull(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func decodeNumber(raw json.RawMessage) (float64, bool) {
	if isNull(raw) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func decodeScore(raw json.RawMessage) (int, bool) {
	f, ok := decodeNumber(raw)
	if !ok || f < MinScore || f > MaxScore {
		return 0, false
	}
	return int(math.Round(f)), true
}

func decodeDuration(raw json.RawMessage) (int, bool) {
	f, ok := decodeNumber(raw)
	if !ok || f < 0 || f > math.MaxInt32 {
		return 0, false
	}
	return int(math.Round(f)), true
}

func decodeString(raw json.RawMessage) (string, bool) {
	if isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func decodeStrings(raw json.RawMessage) ([]string, bool) {
	if isNull(raw) {
		return nil, false
	}
	var items []string
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, false
	}
	return items, true
}
