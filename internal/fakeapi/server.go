// Package fakeapi is an in-memory implementation of the writex backend
// contract. It backs the client tests and local development and keeps no
// state beyond the process.
package fakeapi

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/crypto/bcrypt"

	"writex/internal/observability"
)

// Options configures a Server.
type Options struct {
	JWTSecret string
	Logger    *slog.Logger
	// Registry receives the HTTP metrics. A private registry is used when nil.
	Registry *prometheus.Registry
	// BcryptCost defaults to bcrypt.DefaultCost.
	BcryptCost int
	// CommentDeleteMessageOnly makes comment deletion answer with a message
	// instead of the updated post.
	CommentDeleteMessageOnly bool
}

// Server is the fake backend.
type Server struct {
	app     *fiber.App
	data    *store
	control *control
	secret  []byte
	cost    int
	logger  *slog.Logger
	opts    Options
}

// New builds the fiber app with every route registered.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.JWTSecret == "" {
		opts.JWTSecret = "writex-fakeapi-development-secret"
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}

	s := &Server{
		data:    newStore(),
		control: newControl(),
		secret:  []byte(opts.JWTSecret),
		cost:    opts.BcryptCost,
		logger:  opts.Logger.With(slog.String("component", "fakeapi")),
		opts:    opts,
	}

	app := fiber.New(fiber.Config{
		AppName:               "writex-fakeapi",
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})

	prom := fiberprometheus.NewWithRegistry(opts.Registry, "writex-fakeapi", "writex", "fakeapi", nil)

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(prom.Middleware)
	app.Use(s.requestLogger())
	prom.RegisterAt(app, "/metrics")

	api := app.Group("/api", s.control.middleware)
	s.routes(api)

	s.app = app
	return s
}

func (s *Server) routes(api fiber.Router) {
	auth := api.Group("/auth")
	auth.Post("/register", s.register)
	auth.Post("/login", s.login)
	auth.Get("/me", s.authRequired, s.me)

	posts := api.Group("/posts", s.authRequired)
	posts.Get("/", s.listPosts)
	posts.Post("/", s.createPost)
	posts.Put("/:id", s.updatePost)
	posts.Delete("/:id", s.deletePost)
	posts.Post("/:id/like", s.toggleLike)
	posts.Post("/:id/comment", s.addComment)
	posts.Delete("/:id/comments/:commentId", s.deleteComment)

	notes := api.Group("/notes", s.authRequired)
	notes.Get("/", s.listNotes)
	notes.Post("/", s.createNote)
	notes.Put("/:id", s.updateNote)
	notes.Delete("/:id", s.deleteNote)

	users := api.Group("/users", s.authRequired)
	users.Get("/", s.listUsers)
	users.Get("/me/follow", s.followLists)
	users.Put("/profile", s.updateProfile)
	users.Get("/:id", s.getUser)
	users.Post("/:id/follow", s.toggleFollow)
}

// App exposes the fiber app, mainly for app.Test in handler tests.
func (s *Server) App() *fiber.App { return s.app }

// Listen serves on addr until Shutdown.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Serve serves on an existing listener until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	return s.app.Listener(ln)
}

// Shutdown stops the server, waiting for in-flight requests up to ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{"message": err.Error()})
}

func (s *Server) requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		ctx := c.UserContext()
		if rid, ok := c.Locals("requestid").(string); ok {
			ctx = observability.WithRequestID(ctx, rid)
			c.SetUserContext(ctx)
		}

		err := c.Next()

		s.logger.DebugContext(ctx, "request",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Int("status", c.Response().StatusCode()),
			slog.Duration("duration", time.Since(start)),
		)
		return err
	}
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"message": message})
}
