package handler // handler defines http handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/tourism-gateway/internal/model"
	"github.com/iliyamo/tourism-gateway/internal/queue"
	"github.com/iliyamo/tourism-gateway/internal/repository"
)

// Fixed response messages.
const (
	msgAdded   = "Data added successfully"
	msgUpdated = "Data updated successfully"
	msgDeleted = "Data deleted successfully"
)

const publishTimeout = 2 * time.Second

// EntityHandler serves the CRUD routes of every entity. Each method returns
// the echo handler for one (method, entity) pair.
type EntityHandler struct {
	Repo   *repository.TableRepo
	Events queue.Publisher
	Log    *zap.Logger
}

// NewEntityHandler constructs an EntityHandler and panics if repo is nil.
// A nil publisher disables change events and a nil logger discards logs.
func NewEntityHandler(repo *repository.TableRepo, events queue.Publisher, log *zap.Logger) *EntityHandler {
	if repo == nil {
		panic("nil repository passed to NewEntityHandler")
	}
	if events == nil {
		events = queue.NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &EntityHandler{Repo: repo, Events: events, Log: log}
}

// Get handles GET /<entity>/{id}. A missing row is answered with 200 and
// a JSON null body.
func (h *EntityHandler) Get(e model.Entity) echo.HandlerFunc {
	return func(c echo.Context) error {
		row, err := h.Repo.Get(c.Request().Context(), e, pathID(c))
		if err != nil {
			return err
		}
		if row == nil {
			return c.JSON(http.StatusOK, nil)
		}
		return c.JSON(http.StatusOK, row)
	}
}

// List handles the GET fallback and returns every row of e as an array.
func (h *EntityHandler) List(e model.Entity) echo.HandlerFunc {
	return func(c echo.Context) error {
		rows, err := h.Repo.List(c.Request().Context(), e)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, rows)
	}
}

// Create handles POST /<entity>/. The generated key is not part of the
// response.
func (h *EntityHandler) Create(m model.Mutation) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := decodeBody(c)
		if err != nil {
			return err
		}
		a, err := m.Bind(body)
		if err != nil {
			return err
		}
		id, err := h.Repo.Insert(c.Request().Context(), m.Entity, a)
		if err != nil {
			return err
		}
		key := ""
		if id > 0 {
			key = strconv.FormatInt(id, 10)
		}
		h.publish(c, queue.NewRowChanged(m.Entity.Name, queue.OpCreate, key, a.Map(), 1))
		return c.JSON(http.StatusCreated, echo.Map{"message": msgAdded})
	}
}

// Update handles PUT /<entity>/{id}. No existence check is made: the
// response is 200 even when no row matched the id.
func (h *EntityHandler) Update(m model.Mutation) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := decodeBody(c)
		if err != nil {
			return err
		}
		a, err := m.Bind(body)
		if err != nil {
			return err
		}
		id := pathID(c)
		n, err := h.Repo.Update(c.Request().Context(), m.Entity, id, a)
		if err != nil {
			return err
		}
		if n == 0 {
			h.Log.Debug("update matched no row",
				zap.String("entity", m.Entity.Name), zap.String("id", id))
		}
		h.publish(c, queue.NewRowChanged(m.Entity.Name, queue.OpUpdate, id, a.Map(), n))
		return c.JSON(http.StatusOK, echo.Map{"message": msgUpdated})
	}
}

// Delete handles DELETE /<entity>/{id}. Zero affected rows is a 404 naming
// the entity.
func (h *EntityHandler) Delete(e model.Entity) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := pathID(c)
		if err := h.Repo.Delete(c.Request().Context(), e, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return &NotFoundError{Entity: e}
			}
			return err
		}
		h.publish(c, queue.NewRowChanged(e.Name, queue.OpDelete, id, nil, 1))
		return c.JSON(http.StatusOK, echo.Map{"message": msgDeleted})
	}
}

// Unsupported answers a method on a path no entity serves.
func (h *EntityHandler) Unsupported(method string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return &ClientError{Message: "Invalid endpoint for " + method}
	}
}

// publish is best effort: failures are logged and never reach the client.
func (h *EntityHandler) publish(c echo.Context, ev queue.RowChanged) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request().Context()), publishTimeout)
	defer cancel()
	if err := h.Events.Publish(ctx, ev); err != nil {
		h.Log.Warn("publish change event failed",
			zap.String("entity", ev.Entity),
			zap.String("operation", ev.Operation),
			zap.Error(err))
	}
}

// pathID returns the last path segment after the entity prefix, which may
// be empty.
func pathID(c echo.Context) string {
	rest := c.Param("*")
	if i := strings.LastIndexByte(rest, '/'); i >= 0 {
		return rest[i+1:]
	}
	return rest
}

// decodeBody parses the request body as a single JSON object. An empty body
// is treated as an empty object; anything after the object is rejected.
func decodeBody(c echo.Context) (map[string]any, error) {
	body := map[string]any{}
	dec := json.NewDecoder(c.Request().Body)
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, &ClientError{Message: "Invalid request body", Err: err}
	}
	// trailing whitespace is fine, a second value or stray bytes are not
	if dec.More() {
		return nil, &ClientError{Message: "Invalid request body", Err: errors.New("unexpected data after JSON object")}
	}
	return body, nil
}
