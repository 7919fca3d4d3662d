package interview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func interviewingState(t *testing.T) State {
	t.Helper()
	s := InitialState()
	var err error
	s, err = Reduce(s, ResumeAccepted{Resume: Resume{FileName: "cv.pdf", FileSize: 1024, UploadedAt: t0}})
	require.NoError(t, err)
	s, err = Reduce(s, StartRequested{})
	require.NoError(t, err)
	s, err = Reduce(s, StartSucceeded{Prompt: "Tell me about React.", At: t0})
	require.NoError(t, err)
	return s
}

func TestReduceStageFlow(t *testing.T) {
	s := InitialState()
	assert.Equal(t, StageUpload, s.Stage)
	assert.True(t, s.IsMicActive)

	s, err := Reduce(s, ResumeAccepted{Resume: Resume{FileName: "cv.pdf"}})
	require.NoError(t, err)
	assert.Equal(t, StageReady, s.Stage)
	require.NotNil(t, s.Resume)
	assert.Equal(t, "cv.pdf", s.Resume.FileName)

	s, err = Reduce(s, StartRequested{})
	require.NoError(t, err)
	assert.True(t, s.IsProcessing)

	s, err = Reduce(s, StartSucceeded{Prompt: "Tell me about React.", At: t0})
	require.NoError(t, err)
	assert.Equal(t, StageInterviewing, s.Stage)
	assert.False(t, s.IsProcessing)
	require.Len(t, s.Conversation, 1)
	assert.Equal(t, IntroText+" Tell me about React.", s.Conversation[0].Text)
	assert.Equal(t, t0.UnixMilli(), s.Conversation[0].Timestamp)
	require.NotNil(t, s.CurrentQuestion)
	assert.Equal(t, s.Conversation[0].Text, *s.CurrentQuestion)
	require.NotNil(t, s.StartedAt)

	s, err = Reduce(s, EndRequested{})
	require.NoError(t, err)
	s, err = Reduce(s, EndCompleted{Feedback: DefaultFeedback()})
	require.NoError(t, err)
	assert.Equal(t, StageFeedback, s.Stage)
	assert.Equal(t, DefaultFeedback(), *s.Feedback)
}

func TestReduceStartFallbackPrompt(t *testing.T) {
	for _, prompt := range []string{"", "   "} {
		s := InitialState()
		s, _ = Reduce(s, ResumeAccepted{})
		s, _ = Reduce(s, StartRequested{})
		s, err := Reduce(s, StartSucceeded{Prompt: prompt, At: t0})
		require.NoError(t, err)
		assert.Equal(t, IntroText+" "+FallbackFirstPrompt, *s.CurrentQuestion)
	}
}

func TestReduceRejectsOutOfOrderEvents(t *testing.T) {
	tests := []struct {
		name  string
		state State
		event Event
	}{
		{"start before upload", InitialState(), StartRequested{}},
		{"answer before start", InitialState(), AnswerSubmitted{Text: "hi"}},
		{"end before start", InitialState(), EndRequested{}},
		{"second upload", func() State { s, _ := Reduce(InitialState(), ResumeAccepted{}); return s }(), ResumeAccepted{}},
		{"draft outside interview", InitialState(), DraftEdited{Text: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := Reduce(tt.state, tt.event)
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, tt.state, next)
		})
	}
}

func TestReduceBlankAnswerIsNoop(t *testing.T) {
	s := interviewingState(t)
	for _, text := range []string{"", " ", "\n\t  "} {
		next, err := Reduce(s, AnswerSubmitted{Text: text, At: t0})
		assert.ErrorIs(t, err, ErrEmptyAnswer)
		assert.Equal(t, s, next)
	}
}

func TestReduceAnswerCycle(t *testing.T) {
	s := interviewingState(t)

	s, err := Reduce(s, AnswerSubmitted{Text: "  I built a dashboard.  ", At: t0.Add(time.Second)})
	require.NoError(t, err)
	assert.True(t, s.IsProcessing)
	assert.Equal(t, Turn{From: SpeakerUser, Text: "I built a dashboard.", Timestamp: t0.Add(time.Second).UnixMilli()}, s.Conversation[1])

	_, err = Reduce(s, AnswerSubmitted{Text: "again"})
	assert.ErrorIs(t, err, ErrBusy)
	_, err = Reduce(s, EndRequested{})
	assert.ErrorIs(t, err, ErrBusy)

	s, err = Reduce(s, AnswerSucceeded{Prompt: "", At: t0.Add(2 * time.Second)})
	require.NoError(t, err)
	assert.False(t, s.IsProcessing)
	assert.Len(t, s.Conversation, 3)
	assert.Equal(t, FallbackFollowUp, *s.CurrentQuestion)

	s, _ = Reduce(s, AnswerSubmitted{Text: "more", At: t0})
	s, err = Reduce(s, AnswerFailed{})
	require.NoError(t, err)
	require.NotNil(t, s.LastError)
	assert.Equal(t, AnswerErrorMessage, *s.LastError)
	assert.Equal(t, StageInterviewing, s.Stage)
	assert.Len(t, s.Conversation, 4)
	assert.Equal(t, FallbackFollowUp, *s.CurrentQuestion)
}

func TestReduceStartFailureKeepsReady(t *testing.T) {
	s, _ := Reduce(InitialState(), ResumeAccepted{})
	s, _ = Reduce(s, StartRequested{})
	s, err := Reduce(s, StartFailed{})
	require.NoError(t, err)
	assert.Equal(t, StageReady, s.Stage)
	assert.False(t, s.IsProcessing)
	assert.Equal(t, StartErrorMessage, *s.LastError)

	s, err = Reduce(s, StartRequested{})
	require.NoError(t, err)
	assert.Nil(t, s.LastError)
}

func TestReduceMicToggleClearsSpeechFlags(t *testing.T) {
	s := interviewingState(t)
	s, _ = Reduce(s, SpeakingChanged{Speaking: true})
	s, _ = Reduce(s, ListeningChanged{Listening: true})

	s, err := Reduce(s, MicToggled{})
	require.NoError(t, err)
	assert.False(t, s.IsMicActive)
	assert.False(t, s.IsSpeaking)
	assert.False(t, s.IsListening)

	s, _ = Reduce(s, MicToggled{})
	assert.True(t, s.IsMicActive)
}

func TestReduceDraft(t *testing.T) {
	s := interviewingState(t)
	s, _ = Reduce(s, DraftRecognized{Text: "spoken answer"})
	assert.Equal(t, "spoken answer", s.Draft)
	s, _ = Reduce(s, DraftRecognized{Text: "  "})
	assert.Equal(t, "spoken answer", s.Draft)
	s, _ = Reduce(s, DraftEdited{Text: ""})
	assert.Equal(t, "", s.Draft)
	assert.Len(t, s.Conversation, 1)
}

func TestReduceRestartEqualsInitialState(t *testing.T) {
	s := interviewingState(t)
	s, _ = Reduce(s, MicToggled{})
	s, _ = Reduce(s, EndRequested{})
	s, _ = Reduce(s, EndCompleted{Feedback: DefaultFeedback(), Diagnostic: strPtr("x")})

	s, err := Reduce(s, Restarted{})
	require.NoError(t, err)
	assert.Equal(t, InitialState(), s)
}

func TestReduceDoesNotAliasInput(t *testing.T) {
	s := interviewingState(t)
	next, err := Reduce(s, AnswerSubmitted{Text: "answer", At: t0})
	require.NoError(t, err)
	next.Conversation[0].Text = "mutated"
	assert.NotEqual(t, "mutated", s.Conversation[0].Text)
	assert.Len(t, s.Conversation, 1)
}

func TestStateElapsed(t *testing.T) {
	s := interviewingState(t)
	assert.Equal(t, 0, InitialState().Elapsed(t0))
	assert.Equal(t, 65, s.Elapsed(t0.Add(65*time.Second+400*time.Millisecond)))
	assert.Equal(t, 0, s.Elapsed(t0.Add(-time.Minute)))
}

func TestFormatElapsed(t *testing.T) {
	assert.Equal(t, "00:00", FormatElapsed(0))
	assert.Equal(t, "01:05", FormatElapsed(65))
	assert.Equal(t, "14:07", FormatElapsed(847))
	assert.Equal(t, "61:01", FormatElapsed(3661))
	assert.Equal(t, "00:00", FormatElapsed(-3))
}
