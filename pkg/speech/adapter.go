package speech

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"interview-practice-be/pkg/interview"
)

const (
	DefaultListenTimeout = 15 * time.Second
	DefaultLanguage      = "en-US"

	// playbackGrace is added to the estimated duration before an
	// unacknowledged utterance is considered finished.
	playbackGrace = 2 * time.Second
)

type AdapterConfig struct {
	Synthesizer   Synthesizer
	Recognizer    Recognizer
	ListenTimeout time.Duration
	Language      string

	// OnEvent receives lifecycle events. It may be called from any goroutine
	// and must not call back into the Adapter.
	OnEvent func(Event)
	Logger  Logger
}

// Adapter owns at most one utterance and one capture at a time.
type Adapter struct {
	cfg AdapterConfig

	mu        sync.Mutex
	utterance *Utterance
	capture   *Capture
}

var _ interview.Speech = &Adapter{}

func NewAdapter(cfg AdapterConfig) *Adapter {
	if cfg.ListenTimeout <= 0 {
		cfg.ListenTimeout = DefaultListenTimeout
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	return &Adapter{cfg: cfg}
}

// Utterance is one rendering of text.
type Utterance struct {
	ID   string
	Text string

	ctx    context.Context
	cancel context.CancelFunc
	ack    chan struct{}
	ackOne sync.Once
	done   chan struct{}
	once   sync.Once

	mu    sync.Mutex
	audio *Audio
	err   error
}

// Done is closed once the utterance ends for any reason.
func (u *Utterance) Done() <-chan struct{} { return u.done }

// Err is nil after a natural end, ErrCanceled after Cancel, or the provider error.
func (u *Utterance) Err() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.err
}

func (u *Utterance) Audio() *Audio {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.audio
}

// Capture is one single-shot listening window.
type Capture struct {
	ID string

	ctx    context.Context
	cancel context.CancelFunc
	clip   chan []byte
	done   chan struct{}
	once   sync.Once

	mu       sync.Mutex
	accepted bool
	text     string
	err      error
}

func (c *Capture) Done() <-chan struct{} { return c.done }

// Result returns the recognized text. "" with a nil error means no match.
func (c *Capture) Result() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, c.err
}

func (a *Adapter) CanListen() bool {
	return a.cfg.Recognizer != nil
}

// Say starts rendering text, canceling any utterance still in progress.
func (a *Adapter) Say(text string) *Utterance {
	u, _ := a.say(context.Background(), text)
	return u
}

// say replaces the current utterance only while caller is still live, so a
// canceled chain cannot end an utterance started after it.
func (a *Adapter) say(caller context.Context, text string) (*Utterance, error) {
	ctx, cancel := context.WithCancel(context.Background())
	u := &Utterance{
		ID:     uuid.NewString(),
		Text:   text,
		ctx:    ctx,
		cancel: cancel,
		ack:    make(chan struct{}),
		done:   make(chan struct{}),
	}

	a.mu.Lock()
	if err := caller.Err(); err != nil {
		a.mu.Unlock()
		cancel()
		return nil, err
	}
	if prev := a.utterance; prev != nil {
		a.finishUtterance(prev, ErrCanceled)
	}
	a.utterance = u
	a.emit(Event{Type: SpeakingStarted, ID: u.ID})
	a.mu.Unlock()

	go a.render(u)
	return u, nil
}

// Speak renders text and blocks until it ends or ctx is done.
func (a *Adapter) Speak(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u, err := a.say(ctx, text)
	if err != nil {
		return err
	}
	select {
	case <-u.Done():
		return u.Err()
	case <-ctx.Done():
		a.finishUtterance(u, ErrCanceled)
		return ctx.Err()
	}
}

func (a *Adapter) render(u *Utterance) {
	if a.cfg.Synthesizer == nil {
		a.finishUtterance(u, nil)
		return
	}

	audio, err := a.cfg.Synthesizer.Synthesize(u.ctx, u.Text)
	if err != nil {
		if u.ctx.Err() != nil {
			return
		}
		a.warn("synthesis failed", map[string]interface{}{"utterance_id": u.ID, "error": err.Error()})
		a.finishUtterance(u, err)
		return
	}

	u.mu.Lock()
	u.audio = audio
	u.mu.Unlock()

	select {
	case <-u.done:
		return
	default:
	}
	a.emit(Event{Type: SpeakingAudio, ID: u.ID})

	wait := audio.Duration
	if wait <= 0 {
		wait = EstimateDuration(u.Text)
	}
	timer := time.NewTimer(wait + playbackGrace)
	defer timer.Stop()

	select {
	case <-u.ack:
	case <-timer.C:
	case <-u.ctx.Done():
		return
	}
	a.finishUtterance(u, nil)
}

// finishUtterance ends u exactly once.
func (a *Adapter) finishUtterance(u *Utterance, err error) {
	u.once.Do(func() {
		u.mu.Lock()
		u.err = err
		u.mu.Unlock()
		u.cancel()
		close(u.done)

		ev := Event{Type: SpeakingEnded, ID: u.ID}
		if err != nil {
			ev.Error = err.Error()
		}
		a.emit(ev)
	})
}

// AckPlayback marks the current utterance as played to the end.
func (a *Adapter) AckPlayback(id string) error {
	a.mu.Lock()
	u := a.utterance
	a.mu.Unlock()
	if u == nil || u.ID != id {
		return ErrUnknownUtterance
	}
	u.ackOne.Do(func() { close(u.ack) })
	if a.cfg.Synthesizer == nil {
		a.finishUtterance(u, nil)
	}
	return nil
}

// Clip returns the synthesized audio of the current utterance.
func (a *Adapter) Clip(id string) (*Audio, error) {
	a.mu.Lock()
	u := a.utterance
	a.mu.Unlock()
	if u == nil || u.ID != id {
		return nil, ErrUnknownUtterance
	}
	audio := u.Audio()
	if audio == nil {
		return nil, ErrUnknownUtterance
	}
	return audio, nil
}

// Open starts a capture window, replacing any open one. It returns nil when
// no recognizer is configured.
func (a *Adapter) Open() *Capture {
	c, _ := a.open(context.Background())
	return c
}

func (a *Adapter) open(caller context.Context) (*Capture, error) {
	if a.cfg.Recognizer == nil {
		a.debug("listen skipped", map[string]interface{}{"error": ErrUnsupported.Error()})
		return nil, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Capture{
		ID:     uuid.NewString(),
		ctx:    ctx,
		cancel: cancel,
		clip:   make(chan []byte, 1),
		done:   make(chan struct{}),
	}

	a.mu.Lock()
	if err := caller.Err(); err != nil {
		a.mu.Unlock()
		cancel()
		return nil, err
	}
	if prev := a.capture; prev != nil {
		a.finishCapture(prev, "", ErrCanceled)
	}
	a.capture = c
	a.emit(Event{Type: ListeningStarted, ID: c.ID})
	a.mu.Unlock()

	go a.listen(c)
	return c, nil
}

// Listen opens a capture and blocks until it resolves or ctx is done.
func (a *Adapter) Listen(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c, err := a.open(ctx)
	if err != nil {
		return "", err
	}
	if c == nil {
		return "", ErrUnsupported
	}
	select {
	case <-c.Done():
		text, err := c.Result()
		if errors.Is(err, ErrCanceled) {
			return "", nil
		}
		return text, err
	case <-ctx.Done():
		a.finishCapture(c, "", ErrCanceled)
		return "", ctx.Err()
	}
}

// Submit hands the recorded clip to the open capture. A capture accepts
// exactly one clip.
func (a *Adapter) Submit(audio []byte) error {
	a.mu.Lock()
	c := a.capture
	a.mu.Unlock()
	if c == nil {
		return ErrNotListening
	}
	select {
	case <-c.done:
		return ErrNotListening
	default:
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accepted {
		return ErrNotListening
	}
	c.accepted = true
	c.clip <- audio
	return nil
}

func (a *Adapter) listen(c *Capture) {
	timer := time.NewTimer(a.cfg.ListenTimeout)
	defer timer.Stop()

	var clip []byte
	select {
	case clip = <-c.clip:
	case <-timer.C:
		a.finishCapture(c, "", nil)
		return
	case <-c.ctx.Done():
		return
	}

	text, err := a.cfg.Recognizer.Transcribe(c.ctx, clip, TranscribeOptions{Language: a.cfg.Language})
	if c.ctx.Err() != nil {
		return
	}
	if err != nil {
		a.warn("recognition failed", map[string]interface{}{"capture_id": c.ID, "error": err.Error()})
	}
	a.finishCapture(c, strings.TrimSpace(text), err)
}

// finishCapture resolves c exactly once with a result, no-match, error or
// cancellation, followed by listening.ended.
func (a *Adapter) finishCapture(c *Capture, text string, err error) {
	c.once.Do(func() {
		c.mu.Lock()
		c.text = text
		c.err = err
		c.mu.Unlock()
		c.cancel()
		close(c.done)

		switch {
		case errors.Is(err, ErrCanceled):
		case err != nil:
			a.emit(Event{Type: ListeningError, ID: c.ID, Error: err.Error()})
		case text == "":
			a.emit(Event{Type: ListeningNoMatch, ID: c.ID})
		default:
			a.emit(Event{Type: ListeningResult, ID: c.ID, Text: text})
		}
		a.emit(Event{Type: ListeningEnded, ID: c.ID})
	})
}

// Cancel stops the current utterance and capture.
func (a *Adapter) Cancel() {
	a.mu.Lock()
	u, c := a.utterance, a.capture
	a.mu.Unlock()
	if u != nil {
		a.finishUtterance(u, ErrCanceled)
	}
	if c != nil {
		a.finishCapture(c, "", ErrCanceled)
	}
}

func (a *Adapter) emit(ev Event) {
	if a.cfg.OnEvent != nil {
		a.cfg.OnEvent(ev)
	}
}

func (a *Adapter) debug(msg string, details map[string]interface{}) {
	if a.cfg.Logger != nil {
		a.cfg.Logger.Debug("SPEECH", msg, details)
	}
}

func (a *Adapter) warn(msg string, details map[string]interface{}) {
	if a.cfg.Logger != nil {
		a.cfg.Logger.Warn("SPEECH", msg, details)
	}
}
