package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"interview-practice-be/internal/dto"
	"interview-practice-be/internal/mapper"
	"interview-practice-be/internal/pkg/logger"
	"interview-practice-be/internal/pkg/mailer"
	"interview-practice-be/internal/pkg/serverutils"
	"interview-practice-be/internal/repository/contract"
	"interview-practice-be/internal/repository/specification"
	"interview-practice-be/internal/websocket"
	"interview-practice-be/pkg/events"
	"interview-practice-be/pkg/interview"
	"interview-practice-be/pkg/resume"
	"interview-practice-be/pkg/speech"
	"interview-practice-be/pkg/store"
	"interview-practice-be/pkg/webhook"
)

const (
	defaultRecordLimit = 20
	maxRecordLimit     = 100
	eventTimeout       = 5 * time.Second
)

type IInterviewService interface {
	CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error)
	GetState(ctx context.Context, sessionID string) (interview.State, error)
	Snapshot(sessionID string) (interview.State, bool)
	View(sessionID string, fn func(interview.State)) bool
	CloseSession(ctx context.Context, sessionID string) error

	UploadResume(ctx context.Context, sessionID, fileName, contentType string, content []byte) (interview.State, error)
	CompleteUpload(ctx context.Context, sessionID string, req *dto.UploadCompleteRequest) (interview.State, error)
	Start(ctx context.Context, sessionID string) (interview.State, error)
	ToggleMic(ctx context.Context, sessionID string) (interview.State, error)
	EditDraft(ctx context.Context, sessionID string, req *dto.DraftRequest) (interview.State, error)
	SendAnswer(ctx context.Context, sessionID string, req *dto.AnswerRequest) (interview.State, error)
	EndInterview(ctx context.Context, sessionID string) (interview.State, error)
	Restart(ctx context.Context, sessionID string) (interview.State, error)

	SubmitAudio(ctx context.Context, sessionID string, audio []byte) error
	SpeechClip(ctx context.Context, sessionID, utteranceID string) (*speech.Audio, error)
	AckSpeech(ctx context.Context, sessionID, utteranceID string) error

	EmailFeedback(ctx context.Context, sessionID string, req *dto.EmailFeedbackRequest) error
	ListRecords(ctx context.Context, sessionID string, req *dto.RecordListRequest) (*dto.RecordListResponse, error)
}

// SessionStore holds live sessions. Implemented by memory.SessionRepository.
type SessionStore interface {
	Save(session *store.Session)
	Get(sessionID string) (*store.Session, error)
	// Peek reads without extending the session lifetime.
	Peek(sessionID string) (*store.Session, error)
	Delete(sessionID string)
}

// Broadcaster pushes frames to a session's views. Implemented by websocket.Hub.
type Broadcaster interface {
	Publish(sessionID string, msg websocket.Message)
}

type ResumeUploader interface {
	Upload(ctx context.Context, fileName, declaredType string, content []byte) (interview.Resume, error)
}

// SpeechProviders are shared by every session; each session gets its own
// Adapter on top of them.
type SpeechProviders struct {
	Synthesizer   speech.Synthesizer
	Recognizer    speech.Recognizer
	ListenTimeout time.Duration
	Language      string
}

type InterviewServiceDeps struct {
	Sessions    SessionStore
	Gateway     interview.Gateway
	Uploader    ResumeUploader
	Speech      SpeechProviders
	Broadcaster Broadcaster
	Events      events.Publisher
	Archive     IPublisherService
	Records     contract.InterviewRecordRepository
	Mailer      mailer.IFeedbackMailer
	Logger      logger.ILogger

	JWTSecret  string
	SessionTTL time.Duration
	Now        func() time.Time
}

type interviewService struct {
	deps   InterviewServiceDeps
	mapper *mapper.InterviewMapper
}

func NewInterviewService(deps InterviewServiceDeps) IInterviewService {
	if deps.Events == nil {
		deps.Events = events.NopPublisher{}
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.SessionTTL <= 0 {
		deps.SessionTTL = time.Hour
	}
	return &interviewService{
		deps:   deps,
		mapper: mapper.NewInterviewMapper(),
	}
}

func (s *interviewService) CreateSession(ctx context.Context) (*dto.CreateSessionResponse, error) {
	id := uuid.NewString()
	now := s.deps.Now()

	token, err := serverutils.IssueSessionToken(s.deps.JWTSecret, id, s.deps.SessionTTL)
	if err != nil {
		return nil, err
	}

	sess := &store.Session{ID: id, CreatedAt: now}
	sess.Speech = speech.NewAdapter(speech.AdapterConfig{
		Synthesizer:   s.deps.Speech.Synthesizer,
		Recognizer:    s.deps.Speech.Recognizer,
		ListenTimeout: s.deps.Speech.ListenTimeout,
		Language:      s.deps.Speech.Language,
		OnEvent: func(ev speech.Event) {
			s.broadcast(id, websocket.Message{Type: websocket.TypeSpeech, Data: ev})
		},
		Logger: s.deps.Logger,
	})
	sess.Interview = interview.NewSession(interview.Options{
		Gateway: s.deps.Gateway,
		Speech:  sess.Speech,
		Now:     s.deps.Now,
		OnChange: func(st interview.State) {
			s.broadcast(id, websocket.Message{Type: websocket.TypeState, Data: st})
		},
		OnFailure: func(op string, err error) {
			s.logFailure(id, op, err)
		},
		OnComplete: func(st interview.State) {
			go s.archive(id, st)
		},
	})
	s.deps.Sessions.Save(sess)

	s.deps.Logger.Info("INTERVIEW", "Session created", map[string]interface{}{"session_id": id})

	return &dto.CreateSessionResponse{
		SessionId: id,
		Token:     token,
		ExpiresAt: now.Add(s.deps.SessionTTL),
		State:     sess.Interview.Snapshot(),
	}, nil
}

func (s *interviewService) GetState(ctx context.Context, sessionID string) (interview.State, error) {
	sess, err := s.deps.Sessions.Get(sessionID)
	if err != nil {
		return interview.State{}, err
	}
	return sess.Interview.Snapshot(), nil
}

// Snapshot serves the websocket stream. It does not count as activity, so an
// idle session still expires while a socket is open.
func (s *interviewService) Snapshot(sessionID string) (interview.State, bool) {
	sess, err := s.deps.Sessions.Peek(sessionID)
	if err != nil {
		return interview.State{}, false
	}
	return sess.Interview.Snapshot(), true
}

func (s *interviewService) View(sessionID string, fn func(interview.State)) bool {
	sess, err := s.deps.Sessions.Peek(sessionID)
	if err != nil {
		return false
	}
	sess.Interview.View(fn)
	return true
}

func (s *interviewService) CloseSession(ctx context.Context, sessionID string) error {
	if _, err := s.deps.Sessions.Get(sessionID); err != nil {
		return err
	}
	// Eviction closes the session.
	s.deps.Sessions.Delete(sessionID)
	return nil
}

func (s *interviewService) UploadResume(ctx context.Context, sessionID, fileName, contentType string, content []byte) (interview.State, error) {
	sess, err := s.deps.Sessions.Get(sessionID)
	if err != nil {
		return interview.State{}, err
	}

	// Refuse before spending an upload on a session that cannot take it.
	if st := sess.Interview.Snapshot(); st.Stage != interview.StageUpload {
		return st, &interview.TransitionError{Event: "upload_complete", Stage: st.Stage}
	}
	if _, err := resume.Validate(fileName, contentType, content); err != nil {
		return sess.Interview.Snapshot(), err
	}

	res, err := s.deps.Uploader.Upload(ctx, fileName, contentType, content)
	if err != nil {
		s.deps.Logger.Warn("INTERVIEW", "Resume upload failed", map[string]interface{}{
			"session_id": sessionID,
			"file_name":  fileName,
			"error":      err.Error(),
		})
		return sess.Interview.Snapshot(), err
	}
	return sess.Interview.UploadComplete(res)
}

func (s *interviewService) CompleteUpload(ctx context.Context, sessionID string, req *dto.UploadCompleteRequest) (interview.State, error) {
	sess, err := s.deps.Sessions.Get(sessionID)
	if err != nil {
		return interview.State{}, err
	}
	return sess.Interview.UploadComplete(interview.Resume{
		FileName:          req.FileName,
		FileSize:          req.FileSize,
		UploadedAt:        s.deps.Now(),
		ExtractedSections: req.ExtractedSections,
	})
}

func (s *interviewService) Start(ctx context.Context, sessionID string) (interview.State, error) {
	sess, err := s.deps.Sessions.Get(sessionID)
	if err != nil {
		return interview.State{}, err
	}
	st, err := sess.Interview.Start(ctx)
	if err != nil {
		return st, err
	}
	if st.Stage == interview.StageInterviewing && st.StartedAt != nil {
		s.publishEvent(events.InterviewStarted(sessionID, *st.StartedAt))
	}
	return st, nil
}

func (s *interviewService) ToggleMic(ctx context.Context, sessionID string) (interview.State, error) {
	sess, err := s.deps.Sessions.Get(sessionID)
	if err != nil {
		return interview.State{}, err
	}
	return sess.Interview.ToggleMic(), nil
}

func (s *interviewService) EditDraft(ctx context.Context, sessionID string, req *dto.DraftRequest) (interview.State, error) {
	sess, err := s.deps.Sessions.Get(sessionID)
	if err != nil {
		return interview.State{}, err
	}
	return sess.Interview.EditDraft(req.Text)
}

func (s *interviewService) SendAnswer(ctx context.Context, sessionID string, req *dto.AnswerRequest) (interview.State, error) {
	sess, err := s.deps.Sessions.Get(sessionID)
	if err != nil {
		return interview.State{}, err
	}
	return sess.Interview.SendAnswer(ctx, req.Text)
}

func (s *interviewService) EndInterview(ctx context.Context, sessionID string) (interview.State, error) {
	sess, err := s.deps.Sessions.Get(sessionID)
	if err != nil {
		return interview.State{}, err
	}
	return sess.Interview.EndInterview(ctx)
}

func (s *interviewService) Restart(ctx context.Context, sessionID string) (interview.State, error) {
	sess, err := s.deps.Sessions.Get(sessionID)
	if err != nil {
		return interview.State{}, err
	}
	return sess.Interview.Restart(), nil
}

func (s *interviewService) SubmitAudio(ctx context.Context, sessionID string, audio []byte) error {
	sess, err := s.deps.Sessions.Get(sessionID)
	if err != nil {
		return err
	}
	return sess.Speech.Submit(audio)
}

func (s *interviewService) SpeechClip(ctx context.Context, sessionID, utteranceID string) (*speech.Audio, error) {
	sess, err := s.deps.Sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Speech.Clip(utteranceID)
}

func (s *interviewService) AckSpeech(ctx context.Context, sessionID, utteranceID string) error {
	sess, err := s.deps.Sessions.Get(sessionID)
	if err != nil {
		return err
	}
	return sess.Speech.AckPlayback(utteranceID)
}

func (s *interviewService) EmailFeedback(ctx context.Context, sessionID string, req *dto.EmailFeedbackRequest) error {
	sess, err := s.deps.Sessions.Get(sessionID)
	if err != nil {
		return err
	}
	if s.deps.Mailer == nil {
		return mailer.ErrNotConfigured
	}
	return s.deps.Mailer.SendFeedbackReport(req.Email, sess.Interview.Snapshot())
}

func (s *interviewService) ListRecords(ctx context.Context, sessionID string, req *dto.RecordListRequest) (*dto.RecordListResponse, error) {
	if s.deps.Records == nil {
		return nil, contract.ErrRepositoryUnavailable
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultRecordLimit
	}
	if limit > maxRecordLimit {
		limit = maxRecordLimit
	}

	// A session token only ever sees its own records.
	specs := []specification.Specification{specification.BySessionID{SessionID: sessionID}}
	if req.MinScore > 0 {
		specs = append(specs, specification.MinScore{Score: req.MinScore})
	}
	if req.UsedDefaults {
		specs = append(specs, specification.UsedDefaults{})
	}

	total, err := s.deps.Records.Count(ctx, specs...)
	if err != nil {
		return nil, err
	}

	records, err := s.deps.Records.FindAll(ctx, append(specs,
		specification.OrderBy{Field: "completed_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)...)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.InterviewRecordResponse, 0, len(records))
	for _, r := range records {
		items = append(items, s.mapper.RecordToResponse(r))
	}
	return &dto.RecordListResponse{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// logFailure reports an unreachable or failing gateway as an error; client
// side rejections and speech problems are warnings.
func (s *interviewService) logFailure(sessionID, op string, err error) {
	details := map[string]interface{}{
		"session_id": sessionID,
		"op":         op,
		"error":      err.Error(),
	}

	var (
		backendErr *webhook.BackendError
		networkErr *webhook.NetworkError
	)
	switch {
	case errors.As(err, &backendErr) && backendErr.IsServerError(), errors.As(err, &networkErr):
		s.deps.Logger.Error("INTERVIEW", "Gateway unavailable", details)
	default:
		s.deps.Logger.Warn("INTERVIEW", "Operation failed", details)
	}
}

// archive queues the finished interview and announces it. It runs off the
// session lock.
func (s *interviewService) archive(sessionID string, st interview.State) {
	if st.Feedback == nil {
		return
	}
	completedAt := s.deps.Now()

	if s.deps.Archive != nil {
		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		err := s.deps.Archive.PublishArchive(ctx, dto.ArchiveInterviewMessage{
			RecordId:    uuid.New(),
			SessionId:   sessionID,
			State:       st,
			CompletedAt: completedAt,
		})
		cancel()
		if err != nil {
			s.deps.Logger.Error("INTERVIEW", "Failed to queue archive", map[string]interface{}{
				"session_id": sessionID,
				"error":      err.Error(),
			})
		}
	}

	s.publishEvent(events.InterviewCompleted(
		sessionID,
		st.Feedback.OverallScore,
		st.Feedback.Duration,
		len(st.Conversation),
		st.Diagnostic != nil,
		completedAt,
	))
}

func (s *interviewService) publishEvent(ev events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()
	if err := s.deps.Events.Publish(ctx, ev); err != nil {
		s.deps.Logger.Warn("INTERVIEW", "Failed to publish event", map[string]interface{}{
			"type":  ev.EventType(),
			"error": err.Error(),
		})
	}
}

func (s *interviewService) broadcast(sessionID string, msg websocket.Message) {
	if s.deps.Broadcaster != nil {
		s.deps.Broadcaster.Publish(sessionID, msg)
	}
}
