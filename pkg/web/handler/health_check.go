package handler

import (
	"context"
	"net/http"
	"time"

	"account-service/pkg/web/model"

	"github.com/cloudwego/hertz/pkg/app"
)

type HealthCheckHandler struct {
	startedAt time.Time
}

func NewHealthCheckHandler() *HealthCheckHandler {
	return &HealthCheckHandler{startedAt: time.Now()}
}

// HealthCheck 存活检查，不探测存储
func (h *HealthCheckHandler) HealthCheck(ctx context.Context, c *app.RequestContext) {
	c.JSON(http.StatusOK, model.HealthRes{
		Success:   true,
		Message:   "Server is running",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
	})
}
