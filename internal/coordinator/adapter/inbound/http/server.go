package http_handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anthanhphan/go-ramstore/internal/coordinator/config"
	"github.com/anthanhphan/go-ramstore/internal/coordinator/domain"
	"github.com/anthanhphan/go-ramstore/internal/coordinator/port"
	"github.com/anthanhphan/go-ramstore/internal/coordinator/stats"
	"github.com/anthanhphan/go-ramstore/pkg/cluster"
	"github.com/anthanhphan/go-ramstore/pkg/idgen"
	"github.com/anthanhphan/go-ramstore/pkg/shard"
	sdklogger "github.com/anthanhphan/gosdk/logger"
)

type Server struct {
	app     *fiber.App
	cfg     *config.Config
	service port.RecoveryService
}

type startRecoveryRequest struct {
	ServerID   uint64 `json:"server_id"`
	Generation uint32 `json:"generation"`
}

type nodeView struct {
	cluster.NodeIdentity
	Addr         string `json:"addr"`
	Capabilities string `json:"capabilities"`
}

func NewServer(cfg *config.Config, service port.RecoveryService) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())

	s := &Server{
		app:     app,
		cfg:     cfg,
		service: service,
	}

	// Routes
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	s.app.Post("/recoveries", s.handleStartRecovery)
	s.app.Get("/recoveries", s.handleListRecoveries)
	s.app.Get("/recoveries/:id", s.handleGetRecovery)
	s.app.Put("/tablets/:server_id/:generation", s.handlePutTablets)
	s.app.Get("/nodes", s.handleListNodes)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(stats.Gather, promhttp.HandlerOpts{})))
}

func (s *Server) Start() error {
	return s.app.Listen(s.cfg.Server.Addr)
}

func (s *Server) Stop(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) sendJSONError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func (s *Server) handleStartRecovery(c *fiber.Ctx) error {
	var req startRecoveryRequest
	if err := c.BodyParser(&req); err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if req.ServerID == 0 {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Missing 'server_id'")
	}
	crashed := cluster.NodeIdentity{ID: req.ServerID, Generation: req.Generation}

	id, err := s.service.StartRecovery(c.UserContext(), crashed)
	switch {
	case err == nil:
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"id": id})
	case errors.Is(err, domain.ErrRecoveryInProgress):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"id": id, "error": err.Error()})
	case domain.IsFatal(err):
		sdklogger.Errorw("Recovery rejected", "crashed", crashed.String(), "recovery_id", id, "error", err.Error())
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"id": id, "error": err.Error()})
	case errors.Is(err, context.Canceled):
		return s.sendJSONError(c, fiber.StatusServiceUnavailable, err.Error())
	default:
		sdklogger.Errorw("Recovery failed to start", "crashed", crashed.String(), "error", err.Error())
		return s.sendJSONError(c, fiber.StatusInternalServerError, err.Error())
	}
}

func (s *Server) handleListRecoveries(c *fiber.Ctx) error {
	return c.JSON(s.service.ListRecoveries())
}

func (s *Server) handleGetRecovery(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Invalid recovery id")
	}

	st, err := s.service.GetRecovery(id)
	if errors.Is(err, domain.ErrRecoveryNotFound) {
		// Ids carry the issuing coordinator; point callers at it.
		if issuer := idgen.Parse(id).NodeID; issuer != s.cfg.Server.CoordinatorID {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error":       err.Error(),
				"coordinator": issuer,
			})
		}
		return s.sendJSONError(c, fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return s.sendJSONError(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(st)
}

func (s *Server) handlePutTablets(c *fiber.Ctx) error {
	serverID, err := strconv.ParseUint(c.Params("server_id"), 10, 64)
	if err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Invalid server id")
	}
	generation, err := strconv.ParseUint(c.Params("generation"), 10, 32)
	if err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Invalid generation")
	}

	var tablets []shard.Tablet
	if err := c.BodyParser(&tablets); err != nil {
		return s.sendJSONError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	node := cluster.NodeIdentity{ID: serverID, Generation: uint32(generation)}
	if err := s.service.PutTablets(c.UserContext(), node, tablets); err != nil {
		if errors.Is(err, domain.ErrInvalidTablet) {
			return s.sendJSONError(c, fiber.StatusBadRequest, err.Error())
		}
		sdklogger.Errorw("Storing tablets failed", "node", node.String(), "error", err.Error())
		return s.sendJSONError(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleListNodes(c *fiber.Ctx) error {
	nodes := s.service.ListNodes()
	out := make([]nodeView, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, nodeView{
			NodeIdentity: n.Identity,
			Addr:         n.Addr,
			Capabilities: n.Capabilities.String(),
		})
	}
	return c.JSON(out)
}
