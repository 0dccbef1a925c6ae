package controller

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/Leganyst/production-scheduler/internal/calendar"
	"github.com/Leganyst/production-scheduler/internal/capacity"
	"github.com/Leganyst/production-scheduler/internal/dto"
	"github.com/Leganyst/production-scheduler/internal/helper"
	"github.com/Leganyst/production-scheduler/internal/placement"
)

type CapacityController struct {
	Engine *capacity.Engine
	Placer *placement.Placer
}

func NewCapacityController(engine *capacity.Engine, placer *placement.Placer) *CapacityController {
	return &CapacityController{Engine: engine, Placer: placer}
}

// =========================
// Календарь
// =========================

// GET /api/capacity/calendar/:line_id?start_date=&days=
// Без start_date календарь идёт от начала текущей недели линии; days учитывается в обоих случаях.
func (ctrl *CapacityController) GetCalendar(c *fiber.Ctx) error {
	lineID, err := helper.ParamUUID(c, "line_id")
	if err != nil {
		return helper.FromError(c, err)
	}
	start, err := helper.QueryDate(c, "start_date")
	if err != nil {
		return helper.FromError(c, err)
	}
	nDays, err := strconv.Atoi(c.Query("days", "0"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "days must be an integer")
	}

	ctx := c.UserContext()
	if start == nil {
		today, err := ctrl.Engine.Today(ctx, lineID)
		if err != nil {
			return helper.FromError(c, err)
		}
		ws := calendar.WeekStartOf(today, ctrl.Engine.Config().WeekStart)
		start = &ws
	}

	days, err := ctrl.Engine.GetCalendar(ctx, lineID, *start, nDays)
	if err != nil {
		return helper.FromError(c, err)
	}

	return helper.Success(c, "Calendar", dto.ToCalendarResponse(lineID, *start, days))
}

// GET /api/capacity/day/:line_id/:date
func (ctrl *CapacityController) GetDay(c *fiber.Ctx) error {
	lineID, err := helper.ParamUUID(c, "line_id")
	if err != nil {
		return helper.FromError(c, err)
	}
	date, err := calendar.ParseDate(c.Params("date"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, err.Error())
	}

	day, err := ctrl.Engine.EffectiveDay(c.UserContext(), lineID, date)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Day capacity", dto.ToDayResponse(day))
}

// =========================
// Смены
// =========================

func (ctrl *CapacityController) ListShifts(c *fiber.Ctx) error {
	lineID, err := helper.ParamUUID(c, "line_id")
	if err != nil {
		return helper.FromError(c, err)
	}
	shifts, err := ctrl.Engine.ListShifts(c.UserContext(), lineID)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Shifts", shifts)
}

func (ctrl *CapacityController) CreateShift(c *fiber.Ctx) error {
	lineID, err := helper.ParamUUID(c, "line_id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var body dto.CreateShiftRequest
	if ok, err := helper.ParseBody(c, &body); !ok {
		return err
	}
	spec, err := body.ToSpec()
	if err != nil {
		return helper.FromError(c, err)
	}

	ctx := c.UserContext()
	id, err := ctrl.Engine.CreateShift(ctx, lineID, spec)
	if err != nil {
		return helper.FromError(c, err)
	}
	sh, err := ctrl.Engine.GetShift(ctx, id)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Shift created", sh)
}

func (ctrl *CapacityController) UpdateShift(c *fiber.Ctx) error {
	id, err := helper.ParamUUID(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var body dto.UpdateShiftRequest
	if ok, err := helper.ParseBody(c, &body); !ok {
		return err
	}
	patch, err := body.ToPatch()
	if err != nil {
		return helper.FromError(c, err)
	}

	ctx := c.UserContext()
	if err := ctrl.Engine.UpdateShift(ctx, id, patch); err != nil {
		return helper.FromError(c, err)
	}
	sh, err := ctrl.Engine.GetShift(ctx, id)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Shift updated", sh)
}

func (ctrl *CapacityController) DeleteShift(c *fiber.Ctx) error {
	id, err := helper.ParamUUID(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := ctrl.Engine.DeleteShift(c.UserContext(), id); err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Shift deleted", nil)
}

// POST /api/capacity/shifts/:id/breaks
func (ctrl *CapacityController) AddBreak(c *fiber.Ctx) error {
	shiftID, err := helper.ParamUUID(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var body dto.BreakRequest
	if ok, err := helper.ParseBody(c, &body); !ok {
		return err
	}
	spec, err := body.ToSpec()
	if err != nil {
		return helper.FromError(c, err)
	}

	ctx := c.UserContext()
	if _, err := ctrl.Engine.AddBreak(ctx, shiftID, spec); err != nil {
		return helper.FromError(c, err)
	}
	sh, err := ctrl.Engine.GetShift(ctx, shiftID)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Break added", sh)
}

func (ctrl *CapacityController) RemoveBreak(c *fiber.Ctx) error {
	id, err := helper.ParamUUID(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := ctrl.Engine.RemoveBreak(c.UserContext(), id); err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Break removed", nil)
}

// =========================
// Переопределения
// =========================

// GET /api/capacity/lines/:line_id/overrides?from=&to=&page=&per_page=
func (ctrl *CapacityController) ListOverrides(c *fiber.Ctx) error {
	lineID, err := helper.ParamUUID(c, "line_id")
	if err != nil {
		return helper.FromError(c, err)
	}
	from, err := helper.RequiredQueryDate(c, "from")
	if err != nil {
		return helper.FromError(c, err)
	}
	to, err := helper.RequiredQueryDate(c, "to")
	if err != nil {
		return helper.FromError(c, err)
	}

	list, err := ctrl.Engine.ListOverrides(c.UserContext(), lineID, from, to)
	if err != nil {
		return helper.FromError(c, err)
	}
	page := calendar.Paginate(list, c.QueryInt("page", 1), c.QueryInt("per_page", calendar.DefaultPerPage))
	return helper.Success(c, "Overrides", page)
}

func (ctrl *CapacityController) CreateOverride(c *fiber.Ctx) error {
	lineID, err := helper.ParamUUID(c, "line_id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var body dto.CreateOverrideRequest
	if ok, err := helper.ParseBody(c, &body); !ok {
		return err
	}

	ctx := c.UserContext()
	id, err := ctrl.Engine.CreateOverride(ctx, lineID, body.ToSpec())
	if err != nil {
		return helper.FromError(c, err)
	}
	o, err := ctrl.Engine.GetOverride(ctx, id)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Override created", o)
}

func (ctrl *CapacityController) UpdateOverride(c *fiber.Ctx) error {
	id, err := helper.ParamUUID(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var body dto.UpdateOverrideRequest
	if ok, err := helper.ParseBody(c, &body); !ok {
		return err
	}

	ctx := c.UserContext()
	if err := ctrl.Engine.UpdateOverride(ctx, id, body.ToPatch()); err != nil {
		return helper.FromError(c, err)
	}
	o, err := ctrl.Engine.GetOverride(ctx, id)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Override updated", o)
}

func (ctrl *CapacityController) DeleteOverride(c *fiber.Ctx) error {
	id, err := helper.ParamUUID(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := ctrl.Engine.DeleteOverride(c.UserContext(), id); err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Override deleted", nil)
}

// POST /api/capacity/lines/:line_id/overtime
func (ctrl *CapacityController) AddOvertime(c *fiber.Ctx) error {
	lineID, err := helper.ParamUUID(c, "line_id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var body dto.OvertimeRequest
	if ok, err := helper.ParseBody(c, &body); !ok {
		return err
	}

	ctx := c.UserContext()
	id, err := ctrl.Engine.AddOvertime(ctx, lineID, body.Date, body.ExtraHours, body.Reason)
	if err != nil {
		return helper.FromError(c, err)
	}
	o, err := ctrl.Engine.GetOverride(ctx, id)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Overtime added", o)
}

// GET /api/capacity/lines/:line_id/latest-start?due_date=&hours=
func (ctrl *CapacityController) LatestStart(c *fiber.Ctx) error {
	lineID, err := helper.ParamUUID(c, "line_id")
	if err != nil {
		return helper.FromError(c, err)
	}
	due, err := helper.RequiredQueryDate(c, "due_date")
	if err != nil {
		return helper.FromError(c, err)
	}
	hours, err := decimal.NewFromString(c.Query("hours"))
	if err != nil {
		return helper.Error(c, fiber.StatusBadRequest, "hours must be a number")
	}

	start, err := ctrl.Placer.LatestStart(c.UserContext(), lineID, due, hours)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Latest start", dto.LatestStartResponse{
		LineID:      lineID,
		DueDate:     due,
		Hours:       hours,
		LatestStart: start,
	})
}
