package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/khoward/worktrack/internal/services"
	"github.com/khoward/worktrack/pkg/logger"
)

type EventsHandler struct {
	hub *services.ChangeHub
}

func NewEventsHandler(hub *services.ChangeHub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream pushes row change events over SSE. An optional tables
// parameter narrows the feed ("?tables=projects,tasks"). Auth runs in
// middleware; EventSource cannot set headers, so the route also
// accepts access_token as a query parameter.
// GET /api/events
func (h *EventsHandler) Stream(c *gin.Context) {
	var tables map[string]bool
	if spec := c.Query("tables"); spec != "" {
		tables = make(map[string]bool)
		for _, t := range strings.Split(spec, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tables[t] = true
			}
		}
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	clientID := uuid.New().String()
	events := h.hub.Subscribe(clientID)
	defer h.hub.Unsubscribe(clientID)

	logger.Info().Str("client_id", clientID).Int("total", h.hub.ClientCount()).Msg("Event stream client connected")

	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-events:
			if !ok {
				return false
			}
			if tables != nil && !tables[event.Table] {
				return true
			}
			data, err := json.Marshal(event)
			if err != nil {
				logger.Error().Err(err).Msg("Event stream marshal error")
				return true
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			c.Writer.Flush()
			return true
		case <-c.Request.Context().Done():
			logger.Info().Str("client_id", clientID).Msg("Event stream client disconnected")
			return false
		}
	})
}
