package handler

import (
	"net/http"
	"time"

	"fieldops/internal/middleware"
	"fieldops/internal/service"
	"fieldops/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statsService service.StatisticsService
}

func NewStatisticsHandler(statsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statsService: statsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	stats := router.Group("/api/statistics")
	stats.Use(middleware.RequireAuth(), middleware.RequireRole("admin", "office"))
	{
		stats.GET("/revenue", h.GetRevenue)
	}
}

// GetRevenue returns billed vs collected totals over a date range
// @Summary      Revenue statistics
// @Description  Aggregates issued invoices (drafts excluded) in the range, with a monthly breakdown
// @Tags         statistics
// @Security     BearerAuth
// @Produce      json
// @Param        start_date  query     string  false  "Start date YYYY-MM-DD (default: first day of current month)"
// @Param        end_date    query     string  false  "End date YYYY-MM-DD (default: today)"
// @Success      200         {object}  response.Response{data=service.RevenueSummary}
// @Failure      400         {object}  response.Response
// @Router       /api/statistics/revenue [get]
func (h *StatisticsHandler) GetRevenue(c *gin.Context) {
	now := time.Now()
	startDate := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	endDate := time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, time.UTC)

	if raw := c.Query("start_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid start_date: expected YYYY-MM-DD"))
			return
		}
		startDate = parsed
	}
	if raw := c.Query("end_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid end_date: expected YYYY-MM-DD"))
			return
		}
		endDate = parsed.Add(24*time.Hour - time.Second)
	}

	if endDate.Before(startDate) {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "end_date must not precede start_date"))
		return
	}

	summary, err := h.statsService.GetRevenue(c.Request.Context(), middleware.AccountID(c), startDate, endDate)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}
