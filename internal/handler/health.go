package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

type HealthHandler struct {
	db     *pgxpool.Pool
	cache  *redis.Client
	broker *amqp.Connection
}

func NewHealthHandler(db *pgxpool.Pool, cache *redis.Client, broker *amqp.Connection) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, broker: broker}
}

// Healthz reports process liveness only.
func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz checks every backing service and reports them individually, so a
// degraded dependency is visible from the probe response.
func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx := c.Request.Context()

	checks := gin.H{"postgres": "ok", "redis": "ok", "rabbitmq": "ok"}
	ready := true

	if err := h.db.Ping(ctx); err != nil {
		checks["postgres"] = "down"
		ready = false
	}
	if err := h.cache.Ping(ctx).Err(); err != nil {
		checks["redis"] = "down"
		ready = false
	}
	if h.broker.IsClosed() {
		checks["rabbitmq"] = "down"
		ready = false
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "checks": checks})
}
