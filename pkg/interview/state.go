// Package interview holds the interview session lifecycle: the data model,
// the pure reducer over session events and the Session orchestrator that
// sequences backend round-trips and speech I/O around it.
package interview

import (
	"encoding/json"
	"fmt"
	"time"
)

type Stage string

const (
	StageUpload       Stage = "upload"
	StageReady        Stage = "ready"
	StageInterviewing Stage = "interviewing"
	StageFeedback     Stage = "feedback"
)

type Speaker string

const (
	SpeakerAI   Speaker = "ai"
	SpeakerUser Speaker = "user"
)

// Resume is the uploaded resume as accepted by the upload collaborator.
// ExtractedSections is opaque backend data and is never interpreted here.
type Resume struct {
	FileName          string          `json:"fileName"`
	FileSize          int64           `json:"fileSize"`
	UploadedAt        time.Time       `json:"uploadedAt"`
	ExtractedSections json.RawMessage `json:"extractedSections,omitempty"`
}

// Turn is one utterance in the conversation log. Timestamp is epoch millis.
type Turn struct {
	From      Speaker `json:"from"`
	Text      string  `json:"text"`
	Timestamp int64   `json:"timestamp"`
}

type Feedback struct {
	OverallScore int      `json:"overallScore"`
	Evaluation   string   `json:"evaluation"`
	Strengths    []string `json:"strengths"`
	Weaknesses   []string `json:"weaknesses"`
	Suggestions  []string `json:"suggestions"`
	Duration     int      `json:"duration"`
}

// State is the whole session as views see it. It is owned by a Session and
// only ever handed out as a copy.
type State struct {
	Stage           Stage      `json:"stage"`
	Resume          *Resume    `json:"resume"`
	IsMicActive     bool       `json:"isMicActive"`
	IsProcessing    bool       `json:"isProcessing"`
	Conversation    []Turn     `json:"conversation"`
	CurrentQuestion *string    `json:"currentQuestion"`
	LastError       *string    `json:"lastError"`
	Feedback        *Feedback  `json:"feedback"`
	StartedAt       *time.Time `json:"interviewStartTime"`

	// Speech-derived view state.
	Draft       string `json:"draft"`
	IsSpeaking  bool   `json:"isSpeaking"`
	IsListening bool   `json:"isListening"`

	// Diagnostic explains a silently absorbed failure (default feedback).
	Diagnostic *string `json:"diagnostic"`
}

func InitialState() State {
	return State{
		Stage:        StageUpload,
		IsMicActive:  true,
		Conversation: []Turn{},
	}
}

// Clone returns a deep copy so callers can never alias the owned state.
func (s State) Clone() State {
	out := s
	out.Conversation = append([]Turn{}, s.Conversation...)
	if s.Resume != nil {
		r := *s.Resume
		r.ExtractedSections = append(json.RawMessage(nil), s.Resume.ExtractedSections...)
		out.Resume = &r
	}
	if s.CurrentQuestion != nil {
		q := *s.CurrentQuestion
		out.CurrentQuestion = &q
	}
	if s.LastError != nil {
		e := *s.LastError
		out.LastError = &e
	}
	if s.Feedback != nil {
		f := s.Feedback.clone()
		out.Feedback = &f
	}
	if s.StartedAt != nil {
		t := *s.StartedAt
		out.StartedAt = &t
	}
	if s.Diagnostic != nil {
		d := *s.Diagnostic
		out.Diagnostic = &d
	}
	return out
}

// LastAITurn returns the most recent AI turn, if any.
func (s State) LastAITurn() (Turn, bool) {
	for i := len(s.Conversation) - 1; i >= 0; i-- {
		if s.Conversation[i].From == SpeakerAI {
			return s.Conversation[i], true
		}
	}
	return Turn{}, false
}

// Elapsed is the interview duration so far, truncated to whole seconds.
func (s State) Elapsed(now time.Time) int {
	if s.StartedAt == nil {
		return 0
	}
	d := int(now.Sub(*s.StartedAt) / time.Second)
	if d < 0 {
		return 0
	}
	return d
}

// FormatElapsed renders seconds as mm:ss; minutes keep counting past 59.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func (f Feedback) clone() Feedback {
	out := f
	out.Strengths = append([]string{}, f.Strengths...)
	out.Weaknesses = append([]string{}, f.Weaknesses...)
	out.Suggestions = append([]string{}, f.Suggestions...)
	return out
}

func strPtr(s string) *string {
	return &s
}
