package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger: то, что умеет проверить соединение с БД (*sqlx.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// CacheStatus сообщает, доступен ли внешний кэш.
type CacheStatus interface {
	Available() bool
}

type HealthHandler struct {
	db    Pinger
	cache CacheStatus
}

// NewHealthHandler создаёт health handler. cache может быть nil, если Redis не настроен.
func NewHealthHandler(db Pinger, cache CacheStatus) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// Health обрабатывает GET /health. Недоступный кэш помечается degraded без смены статуса.
func (h *HealthHandler) Health(c *gin.Context) {
	checks := make(map[string]string)
	status := "healthy"

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		status = "unhealthy"
	} else {
		checks["database"] = "healthy"
	}

	switch {
	case h.cache == nil:
		checks["cache"] = "in-memory"
	case h.cache.Available():
		checks["cache"] = "healthy"
	default:
		checks["cache"] = "degraded"
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
	})
}
