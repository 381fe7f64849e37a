// Package runtime provides HTTP handlers that drive the embedded runtime
// through the bridge.
package runtime

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/lirancohen/portal/internal/api/core"
)

// maxEventLimit caps GET /runtime/events page size.
const maxEventLimit = 500

// Handler handles runtime-related HTTP requests.
type Handler struct {
	deps *core.Deps
}

// New creates a new runtime handler.
func New(deps *core.Deps) *Handler {
	return &Handler{deps: deps}
}

// RegisterRoutes registers all runtime routes on the given group.
// The group is expected to require login.
//   - POST /runtime/messages
//   - GET /runtime/status
//   - GET /runtime/events
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/runtime/messages", h.HandleSendMessage)
	g.GET("/runtime/status", h.HandleStatus)
	g.GET("/runtime/events", h.HandleListEvents)
}

// HandleSendMessage forwards a message to a runtime object.
// POST /api/v1/runtime/messages
func (h *Handler) HandleSendMessage(c echo.Context) error {
	var req core.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Object == "" || req.Method == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "object and method are required")
	}

	var params []any
	if len(req.Parameter) > 0 {
		var parameter any
		if err := json.Unmarshal(req.Parameter, &parameter); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid parameter")
		}
		params = append(params, parameter)
	}

	sent := h.deps.Bridge.SendMessage(req.Object, req.Method, params...)
	var published any = ""
	if len(params) > 0 {
		published = params[0]
	}
	h.deps.Broadcaster.PublishSend(req.Object, req.Method, published, sent)

	if !sent {
		return c.JSON(http.StatusServiceUnavailable, core.SendMessageResponse{
			Sent:  false,
			Error: "runtime unavailable",
		})
	}
	return c.JSON(http.StatusOK, core.SendMessageResponse{Sent: true})
}

// HandleStatus reports whether the runtime is loaded.
// GET /api/v1/runtime/status
func (h *Handler) HandleStatus(c echo.Context) error {
	events := h.deps.Runtime.Events
	if events == nil {
		events = []string{}
	}
	return c.JSON(http.StatusOK, core.RuntimeStatusResponse{
		Loaded: h.deps.Bridge.IsLoaded(),
		Global: h.deps.Runtime.Global,
		Events: events,
	})
}

// HandleListEvents returns recorded runtime events, newest first.
// GET /api/v1/runtime/events?name=&limit=
func (h *Handler) HandleListEvents(c echo.Context) error {
	if h.deps.Events == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "event log not available")
	}

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		limit = min(n, maxEventLimit)
	}

	events, err := h.deps.Events.List(c.QueryParam("name"), limit)
	if err != nil {
		h.deps.Logger.Error("failed to list runtime events", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list events")
	}

	resp := make([]core.EventResponse, 0, len(events))
	for _, e := range events {
		resp = append(resp, core.ToEventResponse(e))
	}
	return c.JSON(http.StatusOK, map[string]any{
		"events": resp,
		"count":  len(resp),
	})
}
