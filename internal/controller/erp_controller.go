package controller

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Leganyst/production-scheduler/internal/dto"
	"github.com/Leganyst/production-scheduler/internal/helper"
	"github.com/Leganyst/production-scheduler/internal/reconcile"
)

type ERPController struct {
	Feed       *reconcile.Feed
	Reconciler *reconcile.Reconciler
}

func NewERPController(feed *reconcile.Feed, rec *reconcile.Reconciler) *ERPController {
	return &ERPController{Feed: feed, Reconciler: rec}
}

// POST /api/erp/changes
func (ctrl *ERPController) IngestChange(c *fiber.Ctx) error {
	var body dto.ChangeRequest
	if ok, err := helper.ParseBody(c, &body); !ok {
		return err
	}
	id, err := ctrl.Feed.Ingest(c.UserContext(), body.ToChange())
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusAccepted, "Change queued", fiber.Map{"id": id})
}

// GET /api/erp/changes/pending?limit=
func (ctrl *ERPController) Pending(c *fiber.Ctx) error {
	events, err := ctrl.Feed.Pending(c.UserContext(), c.QueryInt("limit", 100))
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Pending changes", events)
}

// POST /api/erp/work-orders
func (ctrl *ERPController) AddWorkOrder(c *fiber.Ctx) error {
	var body dto.WorkOrderRequest
	if ok, err := helper.ParseBody(c, &body); !ok {
		return err
	}
	wo := body.ToModel()
	if err := ctrl.Feed.AddWorkOrder(c.UserContext(), wo); err != nil {
		return helper.FromError(c, err)
	}
	return helper.SuccessWithCode(c, fiber.StatusCreated, "Work order created", fiber.Map{"id": wo.ID, "wo_number": wo.WONumber})
}

// POST /api/erp/drain — внеочередной проход reconciler.
func (ctrl *ERPController) Drain(c *fiber.Ctx) error {
	res, err := ctrl.Reconciler.Drain(c.UserContext())
	if err != nil {
		return helper.FromError(c, err)
	}
	return helper.Success(c, "Changes applied", res)
}
