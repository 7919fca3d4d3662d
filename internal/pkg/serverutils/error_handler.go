package serverutils

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"interview-practice-be/internal/pkg/mailer"
	"interview-practice-be/internal/repository/contract"
	"interview-practice-be/pkg/interview"
	"interview-practice-be/pkg/speech"
	"interview-practice-be/pkg/store"
	"interview-practice-be/pkg/webhook"
)

// ErrorHandlerMiddleware turns handler errors into the response envelope.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		code, message := StatusFor(err)
		return ctx.Status(code).JSON(ErrorResponse(code, message))
	}
}

// StatusFor maps an error to an HTTP status and client-facing message.
func StatusFor(err error) (int, string) {
	var (
		fiberErr      *fiber.Error
		validationErr *interview.ValidationError
		fieldErrs     validator.ValidationErrors
		backendErr    *webhook.BackendError
		networkErr    *webhook.NetworkError
	)

	switch {
	case errors.As(err, &fiberErr):
		return fiberErr.Code, fiberErr.Message
	case errors.As(err, &validationErr):
		return fiber.StatusBadRequest, validationErr.Reason
	case errors.As(err, &fieldErrs):
		return fiber.StatusBadRequest, validationMessage(fieldErrs)
	case errors.Is(err, store.ErrSessionNotFound), errors.Is(err, speech.ErrUnknownUtterance):
		return fiber.StatusNotFound, err.Error()
	case errors.Is(err, interview.ErrBusy),
		errors.Is(err, interview.ErrInvalidTransition),
		errors.Is(err, speech.ErrNotListening):
		return fiber.StatusConflict, err.Error()
	case errors.Is(err, speech.ErrUnsupported), errors.Is(err, contract.ErrRepositoryUnavailable),
		errors.Is(err, mailer.ErrNotConfigured):
		return fiber.StatusServiceUnavailable, err.Error()
	case errors.As(err, &backendErr), errors.As(err, &networkErr):
		return fiber.StatusBadGateway, err.Error()
	default:
		return fiber.StatusInternalServerError, "Internal server error"
	}
}
