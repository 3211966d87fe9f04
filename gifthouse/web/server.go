package web

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/ellavondegurechaff/gogift/gifthouse/database/repositories"
	"github.com/ellavondegurechaff/gogift/gifthouse/engine"
	"github.com/ellavondegurechaff/gogift/gifthouse/services"
)

// Server is the HTTP surface: read APIs, bid submission, the SSE event
// stream, and artwork management. The engine itself knows nothing about it.
type Server struct {
	app      *fiber.App
	registry *engine.Registry
	auctions repositories.AuctionRepository
	users    repositories.UserRepository
	hub      *Hub
	spaces   *services.SpacesService
}

// NewServer builds the fiber app. spaces may be nil; the artwork
// endpoints answer 503 and responses omit artwork URLs in that case.
func NewServer(registry *engine.Registry, auctions repositories.AuctionRepository, users repositories.UserRepository, hub *Hub, spaces *services.SpacesService, corsOrigins []string) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "gogift",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(compress.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(corsOrigins, ","),
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(requestLogger())

	s := &Server{
		app:      app,
		registry: registry,
		auctions: auctions,
		users:    users,
		hub:      hub,
		spaces:   spaces,
	}
	s.routes()
	return s
}

func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		// The SSE stream holds its connection open; logging it on return
		// would stamp the whole stream lifetime as one slow request.
		if strings.HasSuffix(c.Path(), "/events") {
			return err
		}

		slog.Debug("Request handled",
			slog.String("type", "web"),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", c.Response().StatusCode()),
			slog.Duration("took", time.Since(start)))
		return err
	}
}

func (s *Server) routes() {
	api := s.app.Group("/api")

	api.Get("/auctions", s.listAuctions)
	api.Post("/auctions", s.createAuction)
	api.Get("/auctions/:id", s.getAuction)
	api.Get("/auctions/:id/leaderboard", s.getLeaderboard)
	api.Post("/auctions/:id/start", s.startAuction)
	api.Post("/auctions/:id/bids", s.placeBid)
	api.Get("/auctions/:id/events", s.streamEvents)
	api.Post("/auctions/:id/artwork", s.uploadGiftArtwork)
	api.Delete("/auctions/:id/artwork", s.deleteGiftArtwork)
	api.Post("/users/:id/avatar", s.uploadAvatar)

	s.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}

func (s *Server) Listen(addr string) error {
	slog.Info("Web server listening",
		slog.String("type", "web"),
		slog.String("addr", addr))
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
