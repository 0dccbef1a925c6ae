package route

import (
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Leganyst/production-scheduler/internal/helper"
)

type AppConfig struct {
	CORSOrigins string
	// Выключает access-лог (тесты).
	Quiet bool
}

// NewApp — fiber.App с JSON на sonic и базовыми middleware.
func NewApp(cfg AppConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return helper.FromError(c, err)
		},
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))
	if !cfg.Quiet {
		app.Use(logger.New(logger.Config{
			TimeFormat: "2006-01-02 15:04:05",
			Format:     "[${time}] ${ip} - ${method} ${path} - ${status} - ${latency}\n",
		}))
	}

	origins := cfg.CORSOrigins
	if origins == "" {
		origins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	return app
}
