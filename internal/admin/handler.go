package admin

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"schemasync/internal/apierr"
	"schemasync/internal/auth"
	"schemasync/internal/metadata"
	"schemasync/internal/store"
	"schemasync/internal/syncrun"
)

type Handler struct {
	registry *metadata.Registry
	mapper   metadata.ColumnMapper
	runner   *syncrun.Runner
}

func NewHandler(reg *metadata.Registry, mapper metadata.ColumnMapper, runner *syncrun.Runner) *Handler {
	return &Handler{registry: reg, mapper: mapper, runner: runner}
}

// RegisterAdminRoutes mounts the read routes openly and guards the sync
// routes with syncMW (auth + admin in production).
func RegisterAdminRoutes(app *fiber.App, h *Handler, syncMW ...fiber.Handler) {
	admin := app.Group("/api/_admin")

	admin.Get("/entities", h.ListEntities)
	admin.Get("/entities/:name", h.GetEntity)
	admin.Get("/entities/:name/fields/:field", h.GetField)

	syncHandlers := append(append([]fiber.Handler{}, syncMW...), h.SyncEntity)
	admin.Post("/entities/:name/sync", syncHandlers...)
	allHandlers := append(append([]fiber.Handler{}, syncMW...), h.SyncAll)
	admin.Post("/sync", allHandlers...)
}

type entitySummary struct {
	Name   string   `json:"name"`
	Table  string   `json:"table"`
	Fields []string `json:"fields"`
}

type fieldInfo struct {
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"`
	Constraints string `json:"constraints,omitempty"`
	Explicit    bool   `json:"explicit"`
	Unique      bool   `json:"unique"`
	NotNull     bool   `json:"not_null"`
	Select      bool   `json:"select"`
	Error       string `json:"error,omitempty"`
}

type entityDetail struct {
	Name   string      `json:"name"`
	Table  string      `json:"table"`
	Fields []fieldInfo `json:"fields"`
}

// --- Entity Endpoints ---

func (h *Handler) ListEntities(c *fiber.Ctx) error {
	entities := h.registry.AllEntities()
	out := make([]entitySummary, 0, len(entities))
	for _, e := range entities {
		out = append(out, entitySummary{Name: e.Name(), Table: e.Table(), Fields: e.Fields()})
	}
	return c.JSON(fiber.Map{"data": out})
}

func (h *Handler) GetEntity(c *fiber.Ctx) error {
	e, err := h.lookup(c.Params("name"))
	if err != nil {
		return err
	}

	detail := entityDetail{Name: e.Name(), Table: e.Table(), Fields: make([]fieldInfo, 0, len(e.Fields()))}
	for _, name := range e.Fields() {
		info, err := h.describe(e, name)
		if err != nil {
			info.Error = err.Error()
		}
		detail.Fields = append(detail.Fields, info)
	}
	return c.JSON(fiber.Map{"data": detail})
}

func (h *Handler) GetField(c *fiber.Ctx) error {
	e, err := h.lookup(c.Params("name"))
	if err != nil {
		return err
	}
	field := c.Params("field")
	if _, ok := e.Field(field); !ok {
		return apierr.UnknownField(e.Name(), field)
	}

	info, err := h.describe(e, field)
	if errors.Is(err, metadata.ErrUnresolvedType) {
		return apierr.UnresolvedType(e.Table(), field)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": info})
}

// --- Sync Endpoints ---

func (h *Handler) SyncEntity(c *fiber.Ctx) error {
	e, err := h.lookup(c.Params("name"))
	if err != nil {
		return err
	}
	return h.sync(c, []*metadata.Entity{e})
}

func (h *Handler) SyncAll(c *fiber.Ctx) error {
	return h.sync(c, h.registry.AllEntities())
}

func (h *Handler) sync(c *fiber.Ctx, entities []*metadata.Entity) error {
	ctx := c.UserContext()
	if caller := auth.CallerFrom(c); caller != nil {
		ctx = store.WithActor(ctx, caller.Subject)
	}
	report, err := h.runner.Run(ctx, entities)
	if err != nil {
		var details []apierr.ErrorDetail
		for _, res := range report.Failed() {
			details = append(details, apierr.ErrorDetail{Table: res.Table, Message: res.Err.Error()})
		}
		return apierr.SyncFailed(details)
	}
	return c.JSON(fiber.Map{"data": report})
}

func (h *Handler) lookup(name string) (*metadata.Entity, error) {
	e := h.registry.GetEntity(name)
	if e == nil {
		return nil, apierr.UnknownEntity(name)
	}
	return e, nil
}

func (h *Handler) describe(e *metadata.Entity, name string) (fieldInfo, error) {
	f, _ := e.Field(name)
	_, explicit := f.Explicit()
	info := fieldInfo{
		Name:     name,
		Explicit: explicit,
		Unique:   f.Unique,
		NotNull:  f.NotNull,
		Select:   f.Select,
	}
	info.Type, _ = e.FieldType(name, h.mapper)
	cons, _, err := e.FieldConstraints(name, h.mapper)
	if err != nil {
		return info, err
	}
	info.Constraints = cons
	return info, nil
}
