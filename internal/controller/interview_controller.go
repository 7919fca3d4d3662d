package controller

import (
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"interview-practice-be/internal/dto"
	"interview-practice-be/internal/pkg/serverutils"
	"interview-practice-be/internal/service"
	"interview-practice-be/pkg/resume"
)

const maxAudioSize = 25 * 1024 * 1024

type IInterviewController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	GetState(ctx *fiber.Ctx) error
	CloseSession(ctx *fiber.Ctx) error
	UploadResume(ctx *fiber.Ctx) error
	CompleteUpload(ctx *fiber.Ctx) error
	Start(ctx *fiber.Ctx) error
	ToggleMic(ctx *fiber.Ctx) error
	EditDraft(ctx *fiber.Ctx) error
	SendAnswer(ctx *fiber.Ctx) error
	EndInterview(ctx *fiber.Ctx) error
	Restart(ctx *fiber.Ctx) error
	SubmitAudio(ctx *fiber.Ctx) error
	SpeechClip(ctx *fiber.Ctx) error
	AckSpeech(ctx *fiber.Ctx) error
	EmailFeedback(ctx *fiber.Ctx) error
	ListRecords(ctx *fiber.Ctx) error
}

type interviewController struct {
	service   service.IInterviewService
	jwtSecret string
}

func NewInterviewController(service service.IInterviewService, jwtSecret string) IInterviewController {
	return &interviewController{service: service, jwtSecret: jwtSecret}
}

func (c *interviewController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/interview/v1")
	h.Post("/sessions", c.CreateSession)

	s := h.Group("/session", serverutils.SessionMiddleware(c.jwtSecret))
	s.Get("", c.GetState)
	s.Delete("", c.CloseSession)
	s.Post("/resume", c.UploadResume)
	s.Put("/resume", c.CompleteUpload)
	s.Post("/start", c.Start)
	s.Post("/mic/toggle", c.ToggleMic)
	s.Put("/draft", c.EditDraft)
	s.Post("/answers", c.SendAnswer)
	s.Post("/end", c.EndInterview)
	s.Post("/restart", c.Restart)
	s.Post("/audio", c.SubmitAudio)
	s.Get("/speech/:id", c.SpeechClip)
	s.Post("/speech/:id/ended", c.AckSpeech)
	s.Post("/feedback/email", c.EmailFeedback)
	s.Get("/records", c.ListRecords)
}

func sessionID(ctx *fiber.Ctx) string {
	id, _ := ctx.Locals(serverutils.SessionIDLocal).(string)
	return id
}

func (c *interviewController) CreateSession(ctx *fiber.Ctx) error {
	res, err := c.service.CreateSession(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.Response{
		Success: true,
		Code:    fiber.StatusCreated,
		Message: "Success create session",
		Data:    res,
	})
}

func (c *interviewController) GetState(ctx *fiber.Ctx) error {
	res, err := c.service.GetState(ctx.UserContext(), sessionID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}

func (c *interviewController) CloseSession(ctx *fiber.Ctx) error {
	if err := c.service.CloseSession(ctx.UserContext(), sessionID(ctx)); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success close session", nil))
}

func (c *interviewController) UploadResume(ctx *fiber.Ctx) error {
	header, err := ctx.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "file is required")
	}
	if header.Size > resume.MaxFileSize {
		return resume.ErrFileTooLarge
	}
	content, err := readPart(header, resume.MaxFileSize)
	if err != nil {
		return err
	}

	res, err := c.service.UploadResume(ctx.UserContext(), sessionID(ctx), header.Filename, header.Header.Get("Content-Type"), content)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success upload resume", res))
}

func (c *interviewController) CompleteUpload(ctx *fiber.Ctx) error {
	var req dto.UploadCompleteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.CompleteUpload(ctx.UserContext(), sessionID(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success complete upload", res))
}

func (c *interviewController) Start(ctx *fiber.Ctx) error {
	res, err := c.service.Start(ctx.UserContext(), sessionID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success start interview", res))
}

func (c *interviewController) ToggleMic(ctx *fiber.Ctx) error {
	res, err := c.service.ToggleMic(ctx.UserContext(), sessionID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success toggle mic", res))
}

func (c *interviewController) EditDraft(ctx *fiber.Ctx) error {
	var req dto.DraftRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	res, err := c.service.EditDraft(ctx.UserContext(), sessionID(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success update draft", res))
}

func (c *interviewController) SendAnswer(ctx *fiber.Ctx) error {
	var req dto.AnswerRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendAnswer(ctx.UserContext(), sessionID(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success send answer", res))
}

func (c *interviewController) EndInterview(ctx *fiber.Ctx) error {
	res, err := c.service.EndInterview(ctx.UserContext(), sessionID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success end interview", res))
}

func (c *interviewController) Restart(ctx *fiber.Ctx) error {
	res, err := c.service.Restart(ctx.UserContext(), sessionID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success restart interview", res))
}

func (c *interviewController) SubmitAudio(ctx *fiber.Ctx) error {
	header, err := ctx.FormFile("audio")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "audio is required")
	}
	if header.Size > maxAudioSize {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "audio clip is too large")
	}
	audio, err := readPart(header, maxAudioSize)
	if err != nil {
		return err
	}

	if err := c.service.SubmitAudio(ctx.UserContext(), sessionID(ctx), audio); err != nil {
		return err
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.Response{
		Success: true,
		Code:    fiber.StatusAccepted,
		Message: "Audio accepted",
	})
}

func (c *interviewController) SpeechClip(ctx *fiber.Ctx) error {
	audio, err := c.service.SpeechClip(ctx.UserContext(), sessionID(ctx), ctx.Params("id"))
	if err != nil {
		return err
	}
	ctx.Set(fiber.HeaderContentType, audio.ContentType)
	ctx.Set(fiber.HeaderCacheControl, "no-store")
	return ctx.Send(audio.Data)
}

func (c *interviewController) AckSpeech(ctx *fiber.Ctx) error {
	if err := c.service.AckSpeech(ctx.UserContext(), sessionID(ctx), ctx.Params("id")); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success acknowledge playback", nil))
}

func (c *interviewController) EmailFeedback(ctx *fiber.Ctx) error {
	var req dto.EmailFeedbackRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.EmailFeedback(ctx.UserContext(), sessionID(ctx), &req); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Feedback report sent", nil))
}

func (c *interviewController) ListRecords(ctx *fiber.Ctx) error {
	var req dto.RecordListRequest
	if err := ctx.QueryParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid query")
	}

	res, err := c.service.ListRecords(ctx.UserContext(), sessionID(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get records", res))
}

func readPart(header *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, limit))
}
