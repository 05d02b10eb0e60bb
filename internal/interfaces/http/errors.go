package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/greengrocer-ims/internal/application/dto"
	"github.com/jhoicas/greengrocer-ims/internal/domain"
	"github.com/jhoicas/greengrocer-ims/internal/domain/entity"
)

// errorMapping código HTTP y código de error para cada error de dominio.
var errorMapping = []struct {
	target error
	status int
	code   string
}{
	{entity.ErrSameWarehouse, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInvalidInput, fiber.StatusBadRequest, "VALIDATION"},
	{domain.ErrInvalidTransition, fiber.StatusConflict, "INVALID_TRANSITION"},
	{domain.ErrInsufficientStock, fiber.StatusConflict, "INSUFFICIENT_STOCK"},
	{domain.ErrEmailAlreadyExists, fiber.StatusConflict, "EMAIL_EXISTS"},
	{domain.ErrDuplicate, fiber.StatusConflict, "DUPLICATE"},
	{domain.ErrConflict, fiber.StatusConflict, "CONFLICT"},
	{domain.ErrInvalidCredentials, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrUnauthorized, fiber.StatusUnauthorized, "UNAUTHORIZED"},
	{domain.ErrPermissionDenied, fiber.StatusForbidden, "PERMISSION_DENIED"},
	{domain.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN"},
	{domain.ErrUserNotFound, fiber.StatusNotFound, "NOT_FOUND"},
	{domain.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND"},
}

// errorCode devuelve estado y código para err; lo desconocido es 500 INTERNAL.
func errorCode(err error) (int, string) {
	var ve *validationError
	if errors.As(err, &ve) {
		return fiber.StatusBadRequest, "VALIDATION"
	}
	for _, m := range errorMapping {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return fiber.StatusInternalServerError, "INTERNAL"
}

// writeError responde con el ErrorResponse correspondiente a err.
func writeError(c *fiber.Ctx, err error) error {
	status, _ := errorCode(err)
	if status == fiber.StatusInternalServerError {
		requestLogger(c).Error().Err(err).Msg("error interno")
	}
	return c.Status(status).JSON(errorResponse(err))
}

const internalErrorMessage = "error interno del servidor"

// errorResponse arma el cuerpo de error para el cliente. Los errores internos
// no exponen su texto; la causa queda en el log.
func errorResponse(err error) dto.ErrorResponse {
	status, code := errorCode(err)
	if status == fiber.StatusInternalServerError {
		return dto.ErrorResponse{Code: code, Message: internalErrorMessage}
	}
	return dto.ErrorResponse{Code: code, Message: err.Error()}
}

// fail responde un error con código explícito.
func fail(c *fiber.Ctx, status int, code, msg string) error {
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

// ErrorHandler handler de errores de la app fiber: los *fiber.Error conservan su
// código y el resto pasa por el mapeo de dominio.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fail(c, fe.Code, codeForStatus(fe.Code), fe.Message)
	}
	return writeError(c, err)
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusMethodNotAllowed:
		return "METHOD_NOT_ALLOWED"
	case fiber.StatusTooManyRequests:
		return "RATE_LIMITED"
	case fiber.StatusRequestEntityTooLarge:
		return "BODY_TOO_LARGE"
	}
	if status >= 500 {
		return "INTERNAL"
	}
	return "BAD_REQUEST"
}
