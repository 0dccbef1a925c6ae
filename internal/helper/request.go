package helper

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Leganyst/production-scheduler/internal/calendar"
)

var validate = validator.New()

// ParseBody разбирает JSON-тело и прогоняет validate-теги.
// При ошибке ответ уже отправлен, handler должен вернуть её как есть.
func ParseBody(c *fiber.Ctx, out any) (bool, error) {
	if err := c.BodyParser(out); err != nil {
		return false, Error(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if err := validate.Struct(out); err != nil {
		return false, ValidationError(c, err)
	}
	return true, nil
}

// ParamUUID читает uuid из пути.
func ParamUUID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(c.Params(name))
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// QueryDate читает дату YYYY-MM-DD из query. Пустое значение — nil.
func QueryDate(c *fiber.Ctx, name string) (*calendar.Date, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, nil
	}
	d, err := calendar.ParseDate(raw)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, name+": "+err.Error())
	}
	return &d, nil
}

// RequiredQueryDate — как QueryDate, но параметр обязателен.
func RequiredQueryDate(c *fiber.Ctx, name string) (calendar.Date, error) {
	d, err := QueryDate(c, name)
	if err != nil {
		return calendar.Date{}, err
	}
	if d == nil {
		return calendar.Date{}, fiber.NewError(fiber.StatusBadRequest, name+" is required")
	}
	return *d, nil
}
