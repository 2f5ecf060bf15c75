package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"profilehub/pkg/logger"
)

// Pinger is anything whose reachability the health endpoints report.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	store Pinger
}

var healthHandler *HealthHandler

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{
		store: store,
	}
}

func SetupHealthHandler(store Pinger) {
	healthHandler = NewHealthHandler(store)
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "Server is running",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (h *HealthHandler) CheckStoreHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		logger.Error("Store health check failed: %v", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "Store connection failed",
			"error":  err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "Store connected successfully",
	})
}
