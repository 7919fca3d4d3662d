package interview

import (
	"strings"
	"time"
)

const (
	IntroText           = "Hi, I'm your AI interviewer. Let's begin."
	FallbackFirstPrompt = "Tell me about yourself."
	FallbackFollowUp    = "Thanks for your response. Can you share more details?"

	StartErrorMessage  = "Unable to start the interview. Check the backend server."
	AnswerErrorMessage = "Unable to send your response. Please retry."
)

// Event is an input to Reduce.
type Event interface {
	eventName() string
}

type (
	ResumeAccepted struct{ Resume Resume }

	StartRequested struct{}
	StartSucceeded struct {
		Prompt string
		At     time.Time
	}
	StartFailed struct{}

	AnswerSubmitted struct {
		Text string
		At   time.Time
	}
	AnswerSucceeded struct {
		Prompt string
		At     time.Time
	}
	AnswerFailed struct{}

	EndRequested struct{}
	EndCompleted struct {
		Feedback   Feedback
		Diagnostic *string
	}

	MicToggled       struct{}
	SpeakingChanged  struct{ Speaking bool }
	ListeningChanged struct{ Listening bool }
	DraftRecognized  struct{ Text string }
	DraftEdited      struct{ Text string }

	Restarted struct{}
)

func (ResumeAccepted) eventName() string   { return "upload_complete" }
func (StartRequested) eventName() string   { return "start" }
func (StartSucceeded) eventName() string   { return "start_succeeded" }
func (StartFailed) eventName() string      { return "start_failed" }
func (AnswerSubmitted) eventName() string  { return "send_answer" }
func (AnswerSucceeded) eventName() string  { return "answer_succeeded" }
func (AnswerFailed) eventName() string     { return "answer_failed" }
func (EndRequested) eventName() string     { return "end_interview" }
func (EndCompleted) eventName() string     { return "end_completed" }
func (MicToggled) eventName() string       { return "toggle_mic" }
func (SpeakingChanged) eventName() string  { return "speaking_changed" }
func (ListeningChanged) eventName() string { return "listening_changed" }
func (DraftRecognized) eventName() string  { return "draft_recognized" }
func (DraftEdited) eventName() string      { return "draft_edited" }
func (Restarted) eventName() string        { return "restart" }

// Reduce applies ev to s and returns the next state. It performs no I/O and
// never mutates s; a rejected event returns s unchanged with an error.
func Reduce(s State, ev Event) (State, error) {
	next := s.Clone()

	switch e := ev.(type) {
	case ResumeAccepted:
		if err := expectStage(s, ev, StageUpload); err != nil {
			return s, err
		}
		r := e.Resume
		next.Resume = &r
		next.Stage = StageReady

	case StartRequested:
		if err := expectIdle(s, ev, StageReady); err != nil {
			return s, err
		}
		next.IsProcessing = true
		next.LastError = nil

	case StartSucceeded:
		if err := expectStage(s, ev, StageReady); err != nil {
			return s, err
		}
		prompt := e.Prompt
		if strings.TrimSpace(prompt) == "" {
			prompt = FallbackFirstPrompt
		}
		first := IntroText + " " + prompt
		at := e.At
		next.Stage = StageInterviewing
		next.StartedAt = &at
		next.IsProcessing = false
		next.appendTurn(SpeakerAI, first, e.At)

	case StartFailed:
		if err := expectStage(s, ev, StageReady); err != nil {
			return s, err
		}
		next.IsProcessing = false
		next.LastError = strPtr(StartErrorMessage)

	case AnswerSubmitted:
		text := strings.TrimSpace(e.Text)
		if text == "" {
			return s, ErrEmptyAnswer
		}
		if err := expectIdle(s, ev, StageInterviewing); err != nil {
			return s, err
		}
		next.appendTurn(SpeakerUser, text, e.At)
		next.IsProcessing = true
		next.LastError = nil
		next.Draft = ""

	case AnswerSucceeded:
		if err := expectStage(s, ev, StageInterviewing); err != nil {
			return s, err
		}
		prompt := e.Prompt
		if strings.TrimSpace(prompt) == "" {
			prompt = FallbackFollowUp
		}
		next.IsProcessing = false
		next.appendTurn(SpeakerAI, prompt, e.At)

	case AnswerFailed:
		if err := expectStage(s, ev, StageInterviewing); err != nil {
			return s, err
		}
		next.IsProcessing = false
		next.LastError = strPtr(AnswerErrorMessage)

	case EndRequested:
		if err := expectIdle(s, ev, StageInterviewing); err != nil {
			return s, err
		}
		next.IsProcessing = true
		next.LastError = nil

	case EndCompleted:
		if err := expectStage(s, ev, StageInterviewing); err != nil {
			return s, err
		}
		fb := e.Feedback.clone()
		next.Feedback = &fb
		next.Diagnostic = e.Diagnostic
		next.IsProcessing = false
		next.IsSpeaking = false
		next.IsListening = false
		next.Stage = StageFeedback

	case MicToggled:
		next.IsMicActive = !s.IsMicActive
		if !next.IsMicActive {
			next.IsSpeaking = false
			next.IsListening = false
		}

	case SpeakingChanged:
		if s.Stage != StageInterviewing {
			return s, &TransitionError{Event: ev.eventName(), Stage: s.Stage}
		}
		next.IsSpeaking = e.Speaking

	case ListeningChanged:
		if s.Stage != StageInterviewing {
			return s, &TransitionError{Event: ev.eventName(), Stage: s.Stage}
		}
		next.IsListening = e.Listening

	case DraftRecognized:
		if s.Stage != StageInterviewing {
			return s, &TransitionError{Event: ev.eventName(), Stage: s.Stage}
		}
		if strings.TrimSpace(e.Text) != "" {
			next.Draft = e.Text
		}

	case DraftEdited:
		if err := expectStage(s, ev, StageInterviewing); err != nil {
			return s, err
		}
		next.Draft = e.Text

	case Restarted:
		return InitialState(), nil

	default:
		return s, &TransitionError{Event: "unknown", Stage: s.Stage}
	}

	return next, nil
}

func (s *State) appendTurn(from Speaker, text string, at time.Time) {
	s.Conversation = append(s.Conversation, Turn{From: from, Text: text, Timestamp: at.UnixMilli()})
	if from == SpeakerAI {
		s.CurrentQuestion = strPtr(text)
	}
}

func expectStage(s State, ev Event, stage Stage) error {
	if s.Stage != stage {
		return &TransitionError{Event: ev.eventName(), Stage: s.Stage}
	}
	return nil
}

func expectIdle(s State, ev Event, stage Stage) error {
	if err := expectStage(s, ev, stage); err != nil {
		return err
	}
	if s.IsProcessing {
		return ErrBusy
	}
	return nil
}
