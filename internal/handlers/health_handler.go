package handlers

import (
	"context"
	"time"

	"github.com/fra-atlas/atlas-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// PingFunc checks a backing dependency.
type PingFunc func(ctx context.Context) error

type HealthHandler struct {
	pingStore   PingFunc
	analyzerSet bool
}

func NewHealthHandler(pingStore PingFunc, analyzerConfigured bool) *HealthHandler {
	return &HealthHandler{pingStore: pingStore, analyzerSet: analyzerConfigured}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	storeStatus := "ok"
	if h.pingStore != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := h.pingStore(ctx); err != nil {
			storeStatus = "unhealthy: " + err.Error()
		}
	}

	analyzerStatus := "configured"
	if !h.analyzerSet {
		analyzerStatus = "disabled"
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Store:     storeStatus,
		Analyzer:  analyzerStatus,
	})
}
