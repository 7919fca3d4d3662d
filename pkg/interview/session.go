package interview

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Gateway is the remote backend that generates prompts and scores the
// interview. Implemented by webhook.Client.
type Gateway interface {
	BeginSession(ctx context.Context) (string, error)
	SubmitAnswer(ctx context.Context, text string) (string, error)
	EndSession(ctx context.Context, conversation []Turn) (json.RawMessage, error)
}

// Speech renders AI turns as audio and captures one spoken answer.
// Speak blocks until playback ends. Listen blocks until the capture window
// resolves and returns "" when nothing was recognized.
// Implemented by speech.Adapter.
type Speech interface {
	Speak(ctx context.Context, text string) error
	Listen(ctx context.Context) (string, error)
	CanListen() bool
}

// Options wires a Session. Gateway is required; the rest is optional.
type Options struct {
	Gateway Gateway
	Speech  Speech
	Now     func() time.Time

	// OnChange receives every committed state. It is called with the session
	// lock held, so it must not block or call back into the Session.
	OnChange func(State)

	// OnFailure receives backend and speech errors that were folded into
	// state instead of being returned.
	OnFailure func(op string, err error)

	// OnComplete is called once per finished interview, after the feedback
	// stage is committed.
	OnComplete func(State)
}

// Session is one user's interview. All intents are safe for concurrent use;
// at most one backend round-trip is outstanding at any time.
type Session struct {
	opts Options

	mu    sync.Mutex
	state State

	// epoch increments on Restart so results of older calls are dropped.
	epoch uint64

	speechCancel context.CancelFunc
	speechWG     sync.WaitGroup
}

func NewSession(opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Session{
		opts:  opts,
		state: InitialState(),
	}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// View calls fn with the current state while holding the session lock, so no
// change is committed or observed in between. fn must not block.
func (s *Session) View(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state.Clone())
}

func (s *Session) UploadComplete(resume Resume) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.commitLocked(ResumeAccepted{Resume: resume}); err != nil {
		return s.state.Clone(), err
	}
	return s.state.Clone(), nil
}

// Start asks the backend for the opening prompt. A backend failure is
// reported through State.LastError and the session stays ready.
func (s *Session) Start(ctx context.Context) (State, error) {
	s.mu.Lock()
	if err := s.commitLocked(StartRequested{}); err != nil {
		defer s.mu.Unlock()
		return s.state.Clone(), err
	}
	epoch := s.epoch
	s.mu.Unlock()

	prompt, callErr := s.opts.Gateway.BeginSession(context.WithoutCancel(ctx))

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return s.state.Clone(), nil
	}
	if callErr != nil {
		s.fail("call.started", callErr)
		_ = s.commitLocked(StartFailed{})
		return s.state.Clone(), nil
	}
	if err := s.commitLocked(StartSucceeded{Prompt: prompt, At: s.opts.Now()}); err != nil {
		return s.state.Clone(), err
	}
	s.startSpeechLocked(true)
	return s.state.Clone(), nil
}

// SendAnswer appends the user's answer right away and then requests the
// next prompt. Blank answers are rejected without touching state.
func (s *Session) SendAnswer(ctx context.Context, text string) (State, error) {
	s.mu.Lock()
	if err := s.commitLocked(AnswerSubmitted{Text: text, At: s.opts.Now()}); err != nil {
		defer s.mu.Unlock()
		return s.state.Clone(), err
	}
	s.stopSpeechLocked()
	epoch := s.epoch
	answer := s.state.Conversation[len(s.state.Conversation)-1].Text
	s.mu.Unlock()

	prompt, callErr := s.opts.Gateway.SubmitAnswer(context.WithoutCancel(ctx), answer)

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return s.state.Clone(), nil
	}
	if callErr != nil {
		s.fail("input.transcription.completed", callErr)
		_ = s.commitLocked(AnswerFailed{})
		return s.state.Clone(), nil
	}
	if err := s.commitLocked(AnswerSucceeded{Prompt: prompt, At: s.opts.Now()}); err != nil {
		return s.state.Clone(), err
	}
	s.startSpeechLocked(true)
	return s.state.Clone(), nil
}

// EndInterview always reaches the feedback stage once accepted: a failed or
// partial scoring response is replaced field by field with defaults.
func (s *Session) EndInterview(ctx context.Context) (State, error) {
	s.mu.Lock()
	if err := s.commitLocked(EndRequested{}); err != nil {
		defer s.mu.Unlock()
		return s.state.Clone(), err
	}
	s.stopSpeechLocked()
	epoch := s.epoch
	conversation := append([]Turn{}, s.state.Conversation...)
	s.mu.Unlock()

	raw, callErr := s.opts.Gateway.EndSession(context.WithoutCancel(ctx), conversation)

	var (
		feedback   Feedback
		diagnostic *string
	)
	if callErr != nil {
		feedback = DefaultFeedback()
		diagnostic = FeedbackDiagnostic(callErr, nil)
	} else {
		var defaulted []string
		feedback, defaulted = NormalizeFeedback(raw)
		diagnostic = FeedbackDiagnostic(nil, defaulted)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch {
		return s.state.Clone(), nil
	}
	if callErr != nil {
		s.fail("call.ended", callErr)
	}
	if err := s.commitLocked(EndCompleted{Feedback: feedback, Diagnostic: diagnostic}); err != nil {
		return s.state.Clone(), err
	}
	if s.opts.OnComplete != nil {
		s.opts.OnComplete(s.state.Clone())
	}
	return s.state.Clone(), nil
}

// ToggleMic flips the microphone. Turning it off cancels any pending
// playback and capture; turning it on mid-interview opens a capture.
func (s *Session) ToggleMic() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.commitLocked(MicToggled{})
	if !s.state.IsMicActive {
		s.stopSpeechLocked()
	} else {
		s.startSpeechLocked(false)
	}
	return s.state.Clone()
}

// EditDraft replaces the answer draft. Drafts are never submitted implicitly.
func (s *Session) EditDraft(text string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.commitLocked(DraftEdited{Text: text})
	return s.state.Clone(), err
}

// Restart resets the session to its initial state from any stage.
func (s *Session) Restart() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopSpeechLocked()
	s.epoch++
	_ = s.commitLocked(Restarted{})
	return s.state.Clone()
}

// Close stops speech work and waits for it to exit.
func (s *Session) Close() {
	s.mu.Lock()
	s.stopSpeechLocked()
	s.mu.Unlock()
	s.speechWG.Wait()
}

func (s *Session) commitLocked(ev Event) error {
	next, err := Reduce(s.state, ev)
	if err != nil {
		return err
	}
	s.state = next
	if s.opts.OnChange != nil {
		s.opts.OnChange(next.Clone())
	}
	return nil
}

func (s *Session) fail(op string, err error) {
	if s.opts.OnFailure != nil {
		s.opts.OnFailure(op, err)
	}
}

// applyFrom commits a speech-driven event unless the session moved on.
func (s *Session) applyFrom(ctx context.Context, epoch uint64, ev Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if epoch != s.epoch || ctx.Err() != nil {
		return false
	}
	return s.commitLocked(ev) == nil
}

func (s *Session) stopSpeechLocked() {
	if s.speechCancel != nil {
		s.speechCancel()
		s.speechCancel = nil
	}
	if s.state.IsSpeaking || s.state.IsListening {
		_ = s.commitLocked(SpeakingChanged{Speaking: false})
		_ = s.commitLocked(ListeningChanged{Listening: false})
	}
}

// startSpeechLocked runs the speak-then-listen chain for the latest AI turn.
// With speak false only the capture step runs.
func (s *Session) startSpeechLocked(speak bool) {
	s.stopSpeechLocked()
	if s.opts.Speech == nil || !s.state.IsMicActive || s.state.Stage != StageInterviewing {
		return
	}
	text := ""
	if speak {
		turn, ok := s.state.LastAITurn()
		if !ok {
			return
		}
		text = turn.Text
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.speechCancel = cancel
	epoch := s.epoch

	s.speechWG.Add(1)
	go func() {
		defer s.speechWG.Done()
		s.runSpeech(ctx, epoch, text)
	}()
}

func (s *Session) runSpeech(ctx context.Context, epoch uint64, text string) {
	if text != "" {
		if !s.applyFrom(ctx, epoch, SpeakingChanged{Speaking: true}) {
			return
		}
		err := s.opts.Speech.Speak(ctx, text)
		s.applyFrom(ctx, epoch, SpeakingChanged{Speaking: false})
		if err != nil {
			if ctx.Err() == nil {
				s.fail("speech.speak", err)
			}
			return
		}
	}

	if !s.opts.Speech.CanListen() {
		return
	}

	// Cancellation point between the two steps: a mic toggle or a newer
	// chain during playback must suppress the capture.
	s.mu.Lock()
	proceed := epoch == s.epoch && ctx.Err() == nil && s.state.IsMicActive
	if proceed {
		proceed = s.commitLocked(ListeningChanged{Listening: true}) == nil
	}
	s.mu.Unlock()
	if !proceed {
		return
	}

	recognized, err := s.opts.Speech.Listen(ctx)
	s.applyFrom(ctx, epoch, ListeningChanged{Listening: false})
	if err != nil {
		if ctx.Err() == nil {
			s.fail("speech.listen", err)
		}
		return
	}
	if recognized != "" {
		s.applyFrom(ctx, epoch, DraftRecognized{Text: recognized})
	}
}
