package controller

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Leganyst/production-scheduler/internal/capacity"
	"github.com/Leganyst/production-scheduler/internal/dto"
	"github.com/Leganyst/production-scheduler/internal/helper"
	"github.com/Leganyst/production-scheduler/internal/placement"
)

type LineController struct {
	Engine    *capacity.Engine
	Placement *placement.Service
}

func NewLineController(engine *capacity.Engine, placementSvc *placement.Service) *LineController {
	return &LineController{Engine: engine, Placement: placementSvc}
}

// GET /api/lines?all=true — по умолчанию только активные.
func (ctrl *LineController) ListLines(c *fiber.Ctx) error {
	lines, err := ctrl.Engine.ListLines(c.UserContext(), !c.QueryBool("all", false))
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Lines", lines)
}

func (ctrl *LineController) GetLine(c *fiber.Ctx) error {
	id, err := helper.ParamUUID(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	l, err := ctrl.Engine.GetLine(c.UserContext(), id)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Line", l)
}

func (ctrl *LineController) CreateLine(c *fiber.Ctx) error {
	var body dto.CreateLineRequest
	if ok, err := helper.ParseBody(c, &body); !ok {
		return err
	}
	l, err := ctrl.Engine.CreateLine(c.UserContext(), body.ToSpec())
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Line created", l)
}

func (ctrl *LineController) UpdateLine(c *fiber.Ctx) error {
	id, err := helper.ParamUUID(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	var body dto.UpdateLineRequest
	if ok, err := helper.ParseBody(c, &body); !ok {
		return err
	}
	l, err := ctrl.Engine.UpdateLine(c.UserContext(), id, body.ToPatch())
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Line updated", l)
}

// DELETE /api/lines/:id — мягкая деактивация.
func (ctrl *LineController) DeactivateLine(c *fiber.Ctx) error {
	id, err := helper.ParamUUID(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	if err := ctrl.Engine.DeactivateLine(c.UserContext(), id); err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Line deactivated", nil)
}

// POST /api/lines/:id/place?anchor= — без anchor раскладка идёт от сегодняшнего дня линии.
func (ctrl *LineController) PlaceLine(c *fiber.Ctx) error {
	id, err := helper.ParamUUID(c, "id")
	if err != nil {
		return helper.FromError(c, err)
	}
	anchor, err := helper.QueryDate(c, "anchor")
	if err != nil {
		return helper.FromError(c, err)
	}

	ctx := c.UserContext()
	if anchor == nil {
		today, err := ctrl.Engine.Today(ctx, id)
		if err != nil {
			return helper.FromError(c, err)
		}
		anchor = &today
	}

	assignments, err := ctrl.Placement.PlaceLine(ctx, id, *anchor)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Line placed", dto.PlaceLineResponse{
		LineID:      id,
		Anchor:      *anchor,
		Assignments: assignments,
	})
}

// GET /api/lines/:id/schedule?from=&to=
func (ctrl *LineController) Schedule(c *fiber.Ctx) error {
	id, err := helper.ParamUUID(c, "id")
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

	rows, err := ctrl.Placement.Schedule(c.UserContext(), id, from, to)
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Schedule", dto.ToPlacementDTOs(rows))
}
