package web

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/busview/busview/internal/core/explorer"
	"github.com/busview/busview/web/handlers/api"
	"github.com/busview/busview/web/middleware"
)

type WebServer struct {
	config   *Config
	Explorer *explorer.Service
	registry *prometheus.Registry
}

type Config struct {
	JwtKey        string
	WebServerPort string
	EnableMetrics bool
	ApiPrefix     string
	PeekTimeout   time.Duration
}

func NewWebServer(config *Config, svc *explorer.Service, registry *prometheus.Registry) (*WebServer, error) {
	if config.ApiPrefix == "" {
		config.ApiPrefix = "/api"
	}
	return &WebServer{
		config:   config,
		Explorer: svc,
		registry: registry,
	}, nil
}

func (ws *WebServer) SetupApp(logFile *os.File) *fiber.App {
	app := ws.configServer(logFile)

	if ws.config.EnableMetrics && ws.registry != nil {
		log.Info().Str("path", "/metrics").Msg("Metrics endpoint enabled")
		app.Get("/metrics", adaptor.HTTPHandler(
			promhttp.HandlerFor(ws.registry, promhttp.HandlerOpts{})))
	}

	ws.AddApi(app)
	ws.AddAdminApi(app)
	return app
}

func (ws *WebServer) AddApi(app *fiber.App) {
	jwt := middleware.JwtMiddleware(ws.config.JwtKey)

	// Public API routes
	app.Post(ws.config.ApiPrefix+"/login", func(c *fiber.Ctx) error {
		return api.Login(c, ws.config.JwtKey)
	})

	// Protected API routes
	apiGrp := app.Group(ws.config.ApiPrefix)
	apiGrp.Use(jwt)

	// Connection routes

	apiGrp.Get("/connection", func(c *fiber.Ctx) error {
		return api.GetConnection(c, ws.Explorer)
	})
	apiGrp.Put("/connection", func(c *fiber.Ctx) error {
		return api.ChangeConnection(c, ws.Explorer)
	})
	apiGrp.Get("/options/:kind", api.GetCreateOptions)

	// Queue routes

	apiGrp.Get("/queues", func(c *fiber.Ctx) error {
		return api.ListQueues(c, ws.Explorer)
	})
	apiGrp.Post("/queues", func(c *fiber.Ctx) error {
		return api.CreateQueue(c, ws.Explorer)
	})
	apiGrp.Get("/queues/:queue", func(c *fiber.Ctx) error {
		return api.GetQueue(c, ws.Explorer)
	})
	apiGrp.Delete("/queues/:queue", func(c *fiber.Ctx) error {
		return api.DeleteQueue(c, ws.Explorer)
	})
	apiGrp.Post("/queues/:queue/messages", func(c *fiber.Ctx) error {
		return api.SendToQueue(c, ws.Explorer)
	})
	apiGrp.Post("/queues/:queue/peek", func(c *fiber.Ctx) error {
		return api.PeekQueue(c, ws.Explorer, ws.config.PeekTimeout)
	})
	apiGrp.Delete("/queues/:queue/content", func(c *fiber.Ctx) error {
		return api.PurgeQueue(c, ws.Explorer)
	})
	apiGrp.Post("/queues/:queue/view", func(c *fiber.Ctx) error {
		return api.ViewQueue(c, ws.Explorer)
	})

	// Topic routes

	apiGrp.Get("/topics", func(c *fiber.Ctx) error {
		return api.ListTopics(c, ws.Explorer)
	})
	apiGrp.Post("/topics", func(c *fiber.Ctx) error {
		return api.CreateTopic(c, ws.Explorer)
	})
	apiGrp.Get("/topics/:topic", func(c *fiber.Ctx) error {
		return api.GetTopic(c, ws.Explorer)
	})
	apiGrp.Delete("/topics/:topic", func(c *fiber.Ctx) error {
		return api.DeleteTopic(c, ws.Explorer)
	})
	apiGrp.Post("/topics/:topic/messages", func(c *fiber.Ctx) error {
		return api.SendToTopic(c, ws.Explorer)
	})
	apiGrp.Post("/topics/:topic/view", func(c *fiber.Ctx) error {
		return api.ViewTopic(c, ws.Explorer)
	})

	// Subscription routes

	apiGrp.Get("/topics/:topic/subscriptions", func(c *fiber.Ctx) error {
		return api.ListSubscriptions(c, ws.Explorer)
	})
	apiGrp.Post("/topics/:topic/subscriptions", func(c *fiber.Ctx) error {
		return api.CreateSubscription(c, ws.Explorer)
	})
	apiGrp.Get("/topics/:topic/subscriptions/:subscription", func(c *fiber.Ctx) error {
		return api.GetSubscription(c, ws.Explorer)
	})
	apiGrp.Delete("/topics/:topic/subscriptions/:subscription", func(c *fiber.Ctx) error {
		return api.DeleteSubscription(c, ws.Explorer)
	})
	apiGrp.Post("/topics/:topic/subscriptions/:subscription/peek", func(c *fiber.Ctx) error {
		return api.PeekSubscription(c, ws.Explorer, ws.config.PeekTimeout)
	})
	apiGrp.Delete("/topics/:topic/subscriptions/:subscription/content", func(c *fiber.Ctx) error {
		return api.PurgeSubscription(c, ws.Explorer)
	})
	apiGrp.Post("/topics/:topic/subscriptions/:subscription/view", func(c *fiber.Ctx) error {
		return api.ViewSubscription(c, ws.Explorer)
	})

	// Rule routes

	apiGrp.Get("/topics/:topic/subscriptions/:subscription/rules", func(c *fiber.Ctx) error {
		return api.ListRules(c, ws.Explorer)
	})
	apiGrp.Post("/topics/:topic/subscriptions/:subscription/rules", func(c *fiber.Ctx) error {
		return api.CreateRule(c, ws.Explorer)
	})
	apiGrp.Get("/topics/:topic/subscriptions/:subscription/rules/:rule", func(c *fiber.Ctx) error {
		return api.GetRule(c, ws.Explorer)
	})
	apiGrp.Delete("/topics/:topic/subscriptions/:subscription/rules/:rule", func(c *fiber.Ctx) error {
		return api.DeleteRule(c, ws.Explorer)
	})
	apiGrp.Post("/topics/:topic/subscriptions/:subscription/rules/:rule/view", func(c *fiber.Ctx) error {
		return api.ViewRule(c, ws.Explorer)
	})

	// Detail view routes

	apiGrp.Get("/view", func(c *fiber.Ctx) error {
		return api.GetActiveView(c, ws.Explorer)
	})
	apiGrp.Get("/view/:stateId", func(c *fiber.Ctx) error {
		return api.GetViewState(c, ws.Explorer)
	})
	apiGrp.Post("/view/:stateId/ui", func(c *fiber.Ctx) error {
		return api.SetViewUI(c, ws.Explorer)
	})
	apiGrp.Post("/view/:stateId/messages", func(c *fiber.Ctx) error {
		return api.SendViewMessage(c, ws.Explorer)
	})
	apiGrp.Post("/view/:stateId/peek", func(c *fiber.Ctx) error {
		return api.PeekView(c, ws.Explorer, ws.config.PeekTimeout)
	})
	apiGrp.Post("/view/:stateId/peek-deadletter", func(c *fiber.Ctx) error {
		return api.PeekViewDeadLetter(c, ws.Explorer, ws.config.PeekTimeout)
	})
}

func (ws *WebServer) AddAdminApi(app *fiber.App) {
	// Admin API routes
	apiAdminGrp := app.Group(ws.config.ApiPrefix + "/admin")
	apiAdminGrp.Use(middleware.JwtMiddleware(ws.config.JwtKey))
	apiAdminGrp.Get("/users", api.GetUsers)
	apiAdminGrp.Post("/users", api.AddUser)
}

func (ws *WebServer) configServer(logFile *os.File) *fiber.App {
	config := fiber.Config{
		Prefork:               false,
		AppName:               "busview-management-api",
		DisableStartupMessage: true,
	}
	app := fiber.New(config)

	// Enable CORS
	app.Use(middleware.CORSMiddleware())

	app.Use(logger.New(logger.Config{
		Output: logFile,
	}))
	return app
}
