package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/healthsurge/backend/internal/observability"
	"github.com/healthsurge/backend/internal/service"
)

// Dependencies are the collaborators the HTTP layer needs
type Dependencies struct {
	Scorer     *service.Scorer
	Dispatcher *service.Dispatcher
	Contacts   service.ContactRepository
	Historical service.HistoricalRepository
	Auditor    *service.Auditor
	Metrics    *observability.Metrics
}

// AppConfig controls the Fiber app and its middleware
type AppConfig struct {
	AllowOrigins string
	AccessLog    bool
}

// NewApp builds the Fiber app with middleware and routes
func NewApp(cfg AppConfig, deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "HealthSurge API v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		ErrorHandler: ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	if cfg.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowOrigins,
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "*",
	}))

	SetupRoutes(app, deps)
	return app
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, deps Dependencies) {
	handler := NewHandler(deps)

	// Liveness and health
	app.Get("/", handler.Root)
	app.Get("/health", handler.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Prediction
	app.Post("/predict", handler.Predict)
	app.Get("/historical", handler.GetHistorical)

	// Notifications
	app.Post("/execute_emergency", handler.ExecuteEmergency)
	app.Post("/call_staff", handler.CallStaff)
	app.Post("/send_restock_email", handler.SendRestockEmail)

	// Contact roster
	app.Get("/contacts", handler.GetContacts)
	app.Post("/contacts/add", handler.AddContact)
	app.Post("/contacts/delete/:contact_id", handler.DeleteContact)
}

// ErrorHandler renders errors as {"error": true, "message": ...}
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
