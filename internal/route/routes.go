package route

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/Leganyst/production-scheduler/internal/capacity"
	"github.com/Leganyst/production-scheduler/internal/controller"
	"github.com/Leganyst/production-scheduler/internal/placement"
	"github.com/Leganyst/production-scheduler/internal/reconcile"
)

// Deps — всё, что нужно обработчикам.
type Deps struct {
	DB         *gorm.DB
	Engine     *capacity.Engine
	Placement  *placement.Service
	Feed       *reconcile.Feed
	Reconciler *reconcile.Reconciler
}

var startTime = time.Now()

func SetupRoutes(app *fiber.App, d Deps) {
	BaseRoutes(app, d.DB)

	api := app.Group("/api")

	capCtrl := controller.NewCapacityController(d.Engine, d.Placement.Placer())
	capGroup := api.Group("/capacity")
	capGroup.Get("/calendar/:line_id", capCtrl.GetCalendar)
	capGroup.Get("/day/:line_id/:date", capCtrl.GetDay)

	capGroup.Get("/lines/:line_id/shifts", capCtrl.ListShifts)
	capGroup.Post("/lines/:line_id/shifts", capCtrl.CreateShift)
	capGroup.Put("/shifts/:id", capCtrl.UpdateShift)
	capGroup.Delete("/shifts/:id", capCtrl.DeleteShift)
	capGroup.Post("/shifts/:id/breaks", capCtrl.AddBreak)
	capGroup.Delete("/breaks/:id", capCtrl.RemoveBreak)

	capGroup.Get("/lines/:line_id/overrides", capCtrl.ListOverrides)
	capGroup.Post("/lines/:line_id/overrides", capCtrl.CreateOverride)
	capGroup.Put("/overrides/:id", capCtrl.UpdateOverride)
	capGroup.Delete("/overrides/:id", capCtrl.DeleteOverride)
	capGroup.Post("/lines/:line_id/overtime", capCtrl.AddOvertime)
	capGroup.Get("/lines/:line_id/latest-start", capCtrl.LatestStart)

	lineCtrl := controller.NewLineController(d.Engine, d.Placement)
	lines := api.Group("/lines")
	lines.Get("/", lineCtrl.ListLines)
	lines.Post("/", lineCtrl.CreateLine)
	lines.Get("/:id", lineCtrl.GetLine)
	lines.Put("/:id", lineCtrl.UpdateLine)
	lines.Delete("/:id", lineCtrl.DeactivateLine)
	lines.Post("/:id/place", lineCtrl.PlaceLine)
	lines.Get("/:id/schedule", lineCtrl.Schedule)

	erpCtrl := controller.NewERPController(d.Feed, d.Reconciler)
	erp := api.Group("/erp")
	erp.Post("/changes", erpCtrl.IngestChange)
	erp.Get("/changes/pending", erpCtrl.Pending)
	erp.Post("/work-orders", erpCtrl.AddWorkOrder)
	erp.Post("/drain", erpCtrl.Drain)
}

func BaseRoutes(app *fiber.App, db *gorm.DB) {
	app.Get("/health", func(c *fiber.Ctx) error {
		dbStatus := "Connected"
		serverStatus := "OK"
		httpStatus := fiber.StatusOK

		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.UserContext()) != nil {
			dbStatus = "Database connection error"
			serverStatus = "DOWN"
			httpStatus = fiber.StatusServiceUnavailable
		}

		return c.Status(httpStatus).JSON(fiber.Map{
			"status":         serverStatus,
			"database":       dbStatus,
			"server_time":    time.Now().Format(time.RFC3339),
			"uptime_seconds": int(time.Since(startTime).Seconds()),
		})
	})
}
