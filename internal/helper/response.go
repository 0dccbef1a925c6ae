package helper

import (
	"context"
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/Leganyst/production-scheduler/internal/capacity"
)

// Success — ответ 200 в общем конверте {code,status,message,data}.
func Success(c *fiber.Ctx, message string, data any) error {
	return SuccessWithCode(c, fiber.StatusOK, message, data)
}

func SuccessWithCode(c *fiber.Ctx, code int, message string, data any) error {
	return c.Status(code).JSON(fiber.Map{
		"code":    code,
		"status":  "success",
		"message": message,
		"data":    data,
	})
}

func Error(c *fiber.Ctx, code int, message string) error {
	return c.Status(code).JSON(fiber.Map{
		"code":    code,
		"status":  "error",
		"message": message,
	})
}

func ErrorWithDetails(c *fiber.Ctx, code int, message string, details any) error {
	return c.Status(code).JSON(fiber.Map{
		"code":    code,
		"status":  "error",
		"message": message,
		"errors":  details,
	})
}

// ValidationError раскладывает ошибки validator.v10 по полям.
func ValidationError(c *fiber.Ctx, err error) error {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return Error(c, fiber.StatusBadRequest, "Invalid input")
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[fe.Field()] = fe.Tag()
	}
	return ErrorWithDetails(c, fiber.StatusBadRequest, "Validation failed", fields)
}

// StatusOf — HTTP-код для ошибки движка.
func StatusOf(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, capacity.ErrInvalid):
		return fiber.StatusBadRequest
	case errors.Is(err, capacity.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, capacity.ErrConflictingSnapshot):
		return fiber.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

// FromError отдаёт ошибку в общем конверте. Внутренние ошибки пишутся в лог,
// клиенту уходит только общее сообщение.
func FromError(c *fiber.Ctx, err error) error {
	code := StatusOf(err)
	if code >= fiber.StatusInternalServerError {
		log.Printf("[HTTP] %s %s: %v", c.Method(), c.OriginalURL(), err)
		return Error(c, code, "Internal server error")
	}
	return Error(c, code, err.Error())
}
