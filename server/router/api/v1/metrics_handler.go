package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/melodic-ai/melodic/server/internal/observability"
)

type metricsResponse struct {
	*observability.MetricsSnapshot
	SuccessRate float64 `json:"successRate"`
}

// GetMetrics handles GET /api/metrics: process-local provider call counters
// since the last restart.
func (s *APIV1Service) GetMetrics(c echo.Context) error {
	snapshot := observability.GlobalMetrics().Snapshot()
	return c.JSON(http.StatusOK, &metricsResponse{
		MetricsSnapshot: snapshot,
		SuccessRate:     snapshot.SuccessRate(),
	})
}
