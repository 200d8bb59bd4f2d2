// Package api exposes workflow records and the graph editor over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/meikuraledutech/wfgraph"
	"github.com/meikuraledutech/wfgraph/ctxlog"
	"golang.org/x/sync/singleflight"
)

// Server routes requests to the store and keeps one editor per template.
type Server struct {
	store    wfgraph.Store
	pageSize int
	logger   *slog.Logger

	mu      sync.Mutex
	editors map[string]*wfgraph.Editor
	opening singleflight.Group
}

// New builds the fiber app serving store.
func New(store wfgraph.Store, pageSize int, logger *slog.Logger) *fiber.App {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:    store,
		pageSize: pageSize,
		logger:   logger,
		editors:  make(map[string]*wfgraph.Editor),
	}

	// Route params are kept in the editor registry, so they must not alias
	// fasthttp's reused request buffers.
	app := fiber.New(fiber.Config{Immutable: true})
	app.Use(s.requestLogger)
	s.routes(app)
	return app
}

func (s *Server) requestLogger(c fiber.Ctx) error {
	start := time.Now()
	logger := s.logger.With("method", c.Method(), "path", c.Path())
	c.SetContext(ctxlog.WithLogger(c.Context(), logger))

	err := c.Next()
	logger.Debug("request served",
		"status", c.Response().StatusCode(), "duration", time.Since(start))
	return err
}

func (s *Server) routes(app *fiber.App) {
	// ── Schema ────────────────────────────────────────────────────────
	app.Post("/schema", func(c fiber.Ctx) error {
		if err := s.store.CreateSchema(c.Context()); err != nil {
			return fail(c, err)
		}
		return c.JSON(fiber.Map{"message": "schema created"})
	})

	app.Delete("/schema", func(c fiber.Ctx) error {
		if err := s.store.DropSchema(c.Context()); err != nil {
			return fail(c, err)
		}
		s.forgetAll()
		return c.JSON(fiber.Map{"message": "schema dropped"})
	})

	// ── Records ───────────────────────────────────────────────────────
	app.Put("/templates/:id/nodes", func(c fiber.Ctx) error {
		var records []wfgraph.Record
		if err := c.Bind().JSON(&records); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
		}
		out, err := s.store.ReplaceRecords(c.Context(), c.Params("id"), records)
		if err != nil {
			return fail(c, err)
		}
		s.forget(c.Params("id"))
		return c.JSON(out)
	})

	app.Get("/templates/:id/nodes", func(c fiber.Ctx) error {
		page, err := queryInt(c, "page", 1)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid page"})
		}
		size, err := queryInt(c, "page_size", s.pageSize)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid page_size"})
		}
		p, err := s.store.ListRecords(c.Context(), c.Params("id"), page, size)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(p)
	})

	app.Get("/templates/:id/nodes/:node", func(c fiber.Ctx) error {
		r, err := s.store.GetRecord(c.Context(), c.Params("id"), c.Params("node"))
		if err != nil {
			return fail(c, err)
		}
		if r == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "node not found"})
		}
		return c.JSON(r)
	})

	app.Delete("/templates/:id/nodes/:node", func(c fiber.Ctx) error {
		if err := s.store.DeleteRecord(c.Context(), c.Params("id"), c.Params("node")); err != nil {
			return fail(c, err)
		}
		s.forget(c.Params("id"))
		return c.SendStatus(fiber.StatusNoContent)
	})

	app.Delete("/templates/:id", func(c fiber.Ctx) error {
		if err := s.store.DeleteTemplate(c.Context(), c.Params("id")); err != nil {
			return fail(c, err)
		}
		s.forget(c.Params("id"))
		return c.SendStatus(fiber.StatusNoContent)
	})

	// ── Graph editor ──────────────────────────────────────────────────
	app.Get("/templates/:id/graph", func(c fiber.Ctx) error {
		e, err := s.editor(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(graphResponse(e, e.Graph()))
	})

	app.Get("/templates/:id/graph/mermaid", func(c fiber.Ctx) error {
		e, err := s.editor(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		return c.SendString(wfgraph.Mermaid(e.Graph()))
	})

	app.Delete("/templates/:id/graph/nodes/:node", func(c fiber.Ctx) error {
		nodeID, err := strconv.Atoi(c.Params("node"))
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid node id"})
		}
		e, err := s.editor(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		g, err := e.Remove(c.Context(), nodeID)
		if err != nil {
			return fail(c, err)
		}
		return c.JSON(graphResponse(e, g))
	})

	app.Post("/templates/:id/graph/save", func(c fiber.Ctx) error {
		e, err := s.editor(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		if err := e.Save(c.Context(), s.store); err != nil {
			return fail(c, err)
		}
		return c.JSON(graphResponse(e, e.Graph()))
	})

	app.Post("/templates/:id/graph/reload", func(c fiber.Ctx) error {
		e, err := s.editor(c.Context(), c.Params("id"))
		if err != nil {
			return fail(c, err)
		}
		if err := e.Reload(c.Context(), s.store); err != nil {
			return fail(c, err)
		}
		return c.JSON(graphResponse(e, e.Graph()))
	})
}

// editor returns the open editor for a template, loading it on first use.
// The registry lock is not held while records are fetched; concurrent first
// requests for the same template share one load.
func (s *Server) editor(ctx context.Context, templateID string) (*wfgraph.Editor, error) {
	templateID = strings.Clone(templateID)

	s.mu.Lock()
	e, ok := s.editors[templateID]
	s.mu.Unlock()
	if ok {
		return e, nil
	}

	v, err, _ := s.opening.Do(templateID, func() (any, error) {
		opened, err := wfgraph.Open(ctx, s.store, templateID, s.pageSize)
		if err != nil {
			return nil, err
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if existing, ok := s.editors[templateID]; ok {
			return existing, nil
		}
		s.editors[templateID] = opened
		return opened, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*wfgraph.Editor), nil
}

// forget drops the editor of a template whose records changed underneath it.
func (s *Server) forget(templateID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.editors, templateID)
}

func (s *Server) forgetAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editors = make(map[string]*wfgraph.Editor)
}

type graphBody struct {
	TemplateID string         `json:"template_id"`
	Nodes      []wfgraph.Node `json:"nodes"`
	Edges      []wfgraph.Edge `json:"edges"`
	Removed    []string       `json:"removed"`
}

func graphResponse(e *wfgraph.Editor, g wfgraph.Graph) graphBody {
	return graphBody{
		TemplateID: e.TemplateID(),
		Nodes:      g.Nodes,
		Edges:      g.Edges,
		Removed:    e.Removed(),
	}
}

func queryInt(c fiber.Ctx, key string, def int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}

// fail maps an error to its HTTP status and writes it as JSON.
func fail(c fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var fetchErr *wfgraph.FetchError
	switch {
	case errors.Is(err, wfgraph.ErrStartNode):
		status = fiber.StatusBadRequest
	case errors.Is(err, wfgraph.ErrNodeNotFound):
		status = fiber.StatusNotFound
	case errors.As(err, &fetchErr):
		status = fiber.StatusBadGateway
	case errors.Is(err, wfgraph.ErrDuplicateRecord),
		errors.Is(err, wfgraph.ErrUnknownSuccessor),
		errors.Is(err, wfgraph.ErrCycleDetected),
		errors.Is(err, wfgraph.ErrDuplicateEdge),
		errors.Is(err, wfgraph.ErrDanglingEdge),
		errors.Is(err, wfgraph.ErrUnreachable),
		errors.Is(err, wfgraph.ErrStartNodeMissing):
		status = fiber.StatusUnprocessableEntity
	}
	if status == fiber.StatusInternalServerError {
		ctxlog.FromContext(c.Context()).Error("request failed", "error", err)
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
