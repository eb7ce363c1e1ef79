package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/lendora/loan-origination/pkg/response"
)

type HealthHandler struct {
	Pool  *pgxpool.Pool
	Redis *redis.Client
}

func NewHealthHandler(pool *pgxpool.Pool, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{Pool: pool, Redis: rdb}
}

// Check GET /health
// Reports liveness plus backing-store connectivity. A down database makes the
// whole report unhealthy; redis degrades to a per-check failure.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true

	start := time.Now()
	if err := h.Pool.Ping(ctx); err != nil {
		checks["postgres"] = gin.H{"status": "down", "error": err.Error()}
		healthy = false
	} else {
		checks["postgres"] = gin.H{"status": "up", "latency_ms": time.Since(start).Milliseconds()}
	}

	start = time.Now()
	if err := h.Redis.Ping(ctx).Err(); err != nil {
		checks["redis"] = gin.H{"status": "down", "error": err.Error()}
	} else {
		checks["redis"] = gin.H{"status": "up", "latency_ms": time.Since(start).Milliseconds()}
	}

	status := http.StatusOK
	msg := "healthy"
	if !healthy {
		status = http.StatusServiceUnavailable
		msg = "unhealthy"
	}
	response.Success(c, status, gin.H{"checks": checks, "time": time.Now().UTC()}, msg)
}
