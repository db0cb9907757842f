package apierr

import (
	"errors"
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
)

type AppError struct {
	Code    string        `json:"code"`
	Status  int           `json:"-"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

type ErrorDetail struct {
	Table   string `json:"table,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

type ErrorResponse struct {
	Error *AppError `json:"error"`
}

func New(code string, status int, msg string) *AppError {
	return &AppError{Code: code, Status: status, Message: msg}
}

func UnknownEntity(name string) *AppError {
	return &AppError{
		Code:    "UNKNOWN_ENTITY",
		Status:  fiber.StatusNotFound,
		Message: fmt.Sprintf("Unknown entity: %s", name),
	}
}

func UnknownField(entity, field string) *AppError {
	return &AppError{
		Code:    "UNKNOWN_FIELD",
		Status:  fiber.StatusNotFound,
		Message: fmt.Sprintf("Unknown field %s on entity %s", field, entity),
	}
}

func UnresolvedType(table, field string) *AppError {
	return &AppError{
		Code:    "UNRESOLVED_TYPE",
		Status:  fiber.StatusUnprocessableEntity,
		Message: fmt.Sprintf("No column type for %s.%s", table, field),
		Details: []ErrorDetail{{Table: table, Field: field, Message: "mapper returned no type"}},
	}
}

func SyncFailed(details []ErrorDetail) *AppError {
	return &AppError{
		Code:    "SYNC_FAILED",
		Status:  fiber.StatusBadGateway,
		Message: "Schema sync failed",
		Details: details,
	}
}

func Unauthorized(msg string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Status: fiber.StatusUnauthorized, Message: msg}
}

func Forbidden(msg string) *AppError {
	return &AppError{Code: "FORBIDDEN", Status: fiber.StatusForbidden, Message: msg}
}

// Handler is the fiber ErrorHandler. AppErrors are rendered as-is; anything
// else is logged and hidden behind INTERNAL_ERROR.
func Handler(c *fiber.Ctx, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.Status(appErr.Status).JSON(ErrorResponse{Error: appErr})
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(ErrorResponse{
			Error: &AppError{Code: "HTTP_ERROR", Message: fiberErr.Message},
		})
	}

	log.Printf("ERROR: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
		Error: &AppError{
			Code:    "INTERNAL_ERROR",
			Message: "Internal server error",
		},
	})
}
