// Package httpapi exposes the scheduling console over HTTP with fiber. Each
// request runs its own Board or Roster against the shared backend, so the
// workflows keep their sequential, reload-after-write behaviour.
package httpapi

import (
	"context"
	"expvar"
	"io"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"soutenancecore/internal/console"
	"soutenancecore/internal/export"
	"soutenancecore/pkg/domain"
)

// Backend is the console contract plus the track listing.
type Backend interface {
	console.Backend
	ListSpecialites(ctx context.Context) ([]domain.Specialite, error)
}

// Exporter queues schedule exports.
type Exporter interface {
	Enqueue(ctx context.Context, req export.Request) (export.Record, error)
	Get(id string) (export.Record, bool)
}

// Logger matches the service logger.
type Logger interface {
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Config wires the server dependencies. Exports, Gatherer, Logger and
// AccessLog are optional.
type Config struct {
	Backend        Backend
	Exports        Exporter
	Gatherer       prometheus.Gatherer
	Logger         Logger
	AccessLog      io.Writer
	ConsoleOptions []console.Option
	RequestTimeout time.Duration
	// Expvar serves the process expvar map at /debug/vars.
	Expvar bool
}

type server struct {
	backend  Backend
	exports  Exporter
	logger   Logger
	consoleO []console.Option
	timeout  time.Duration
}

// New builds the fiber application.
func New(cfg Config) *fiber.App {
	s := &server{
		backend:  cfg.Backend,
		exports:  cfg.Exports,
		logger:   cfg.Logger,
		consoleO: cfg.ConsoleOptions,
		timeout:  cfg.RequestTimeout,
	}
	if s.logger == nil {
		s.logger = noopLogger{}
	}
	if s.timeout <= 0 {
		s.timeout = 30 * time.Second
	}
	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	app := fiber.New(fiber.Config{
		AppName:               "soutenanced",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	if cfg.AccessLog != nil {
		app.Use(logger.New(logger.Config{
			Output: cfg.AccessLog,
			Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
		}))
	}
	app.Use(cors.New())

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return Success(c, "ok", fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	if cfg.Expvar {
		app.Get("/debug/vars", adaptor.HTTPHandler(expvar.Handler()))
	}

	api := app.Group("/api/v1", s.withDeadline)
	api.Get("/specialites", s.listSpecialites)
	api.Get("/specialites/:id", s.getSpecialite)

	s.rosterRoutes(api)

	api.Get("/specialites/:id/defences", s.listDefences)
	api.Post("/specialites/:id/defences", s.composeDefence)
	api.Delete("/specialites/:id/defences", s.deleteDefences)

	api.Post("/specialites/:id/exports", s.createExport)
	api.Get("/exports/:id", s.getExport)
	return app
}

func (s *server) withDeadline(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), s.timeout)
	defer cancel()
	c.SetUserContext(ctx)
	return c.Next()
}

// options returns the console options for one request. Deletions over HTTP
// are confirmed by the request itself.
func (s *server) options(n console.Notifier) []console.Option {
	opts := append([]console.Option(nil), s.consoleO...)
	return append(opts, console.WithConfirmer(console.AlwaysConfirm), console.WithNotifier(n))
}

func (s *server) listSpecialites(c *fiber.Ctx) error {
	list, err := s.backend.ListSpecialites(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return Success(c, "Specialites loaded", list)
}

func (s *server) getSpecialite(c *fiber.Ctx) error {
	sp, err := s.backend.GetSpecialite(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return Success(c, "Specialite loaded", sp)
}

type notice struct {
	Level   console.NoticeLevel `json:"level"`
	Message string              `json:"message"`
}

// noticeLog collects the notices raised while serving one request.
type noticeLog struct {
	mu    sync.Mutex
	items []notice
}

func (n *noticeLog) Notify(_ context.Context, level console.NoticeLevel, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.items = append(n.items, notice{Level: level, Message: message})
}

func (n *noticeLog) list() []notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notice{}, n.items...)
}

// message returns the last notice, or fallback when none was raised.
func (n *noticeLog) message(fallback string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.items) == 0 {
		return fallback
	}
	return n.items[len(n.items)-1].Message
}

type idsBody struct {
	IDs []string `json:"ids"`
}

func parseIDs(c *fiber.Ctx) ([]string, error) {
	var body idsBody
	if err := c.BodyParser(&body); err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "invalid body: "+err.Error())
	}
	return body.IDs, nil
}
