package handler

import (
	"net/http"

	"fieldops/internal/middleware"
	"fieldops/internal/service"
	"fieldops/pkg/pagination"
	"fieldops/pkg/response"

	"github.com/gin-gonic/gin"
)

type JobHandler struct {
	jobService service.JobService
}

func NewJobHandler(jobService service.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

func (h *JobHandler) RegisterRoutes(router *gin.RouterGroup) {
	jobs := router.Group("/api/jobs")
	jobs.Use(middleware.RequireAuth())
	{
		jobs.POST("", h.CreateJob)
		jobs.GET("", h.ListJobs)
		jobs.GET("/:id", h.GetJob)
		jobs.PUT("/:id", h.UpdateJob)
		jobs.PUT("/:id/status", h.UpdateJobStatus)
		jobs.DELETE("/:id", middleware.RequireRole("admin", "office"), h.DeleteJob)
	}
}

// CreateJob creates a new job for a customer
// @Summary      Create job
// @Tags         jobs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateJobRequest  true  "Create Job Payload"
// @Success      201      {object}  response.Response{data=service.JobResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/jobs [post]
func (h *JobHandler) CreateJob(c *gin.Context) {
	var req service.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	job, err := h.jobService.Create(c.Request.Context(), middleware.AccountID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, job))
}

// ListJobs returns a paginated job list
// @Summary      List jobs
// @Tags         jobs
// @Security     BearerAuth
// @Produce      json
// @Param        status       query     string  false  "Filter by status (SCHEDULED, IN_PROGRESS, COMPLETED, CANCELLED)"
// @Param        customer_id  query     string  false  "Filter by customer"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Number of items per page (default 20)"
// @Success      200          {object}  response.Response{data=object}
// @Router       /api/jobs [get]
func (h *JobHandler) ListJobs(c *gin.Context) {
	params := pagination.Parse(c)

	jobs, total, err := h.jobService.List(c.Request.Context(), middleware.AccountID(c), c.Query("status"), c.Query("customer_id"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}

// GetJob returns one job
// @Summary      Get job
// @Tags         jobs
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response{data=service.JobResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/jobs/{id} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	job, err := h.jobService.Get(c.Request.Context(), middleware.AccountID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, job))
}

// UpdateJob updates job fields
// @Summary      Update job
// @Tags         jobs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                    true  "Job ID"
// @Param        payload  body      service.UpdateJobRequest  true  "Update Job Payload"
// @Success      200      {object}  response.Response{data=service.JobResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/jobs/{id} [put]
func (h *JobHandler) UpdateJob(c *gin.Context) {
	var req service.UpdateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	job, err := h.jobService.Update(c.Request.Context(), middleware.AccountID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, job))
}

// UpdateJobStatus moves a job through its workflow
// @Summary      Update job status
// @Description  Sets the job status; a COMPLETED job is the billable trigger for invoice creation
// @Tags         jobs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                          true  "Job ID"
// @Param        payload  body      service.UpdateJobStatusRequest  true  "Status Payload"
// @Success      200      {object}  response.Response{data=service.JobResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/jobs/{id}/status [put]
func (h *JobHandler) UpdateJobStatus(c *gin.Context) {
	var req service.UpdateJobStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	job, err := h.jobService.UpdateStatus(c.Request.Context(), middleware.AccountID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, job))
}

// DeleteJob soft-deletes a job
// @Summary      Delete job
// @Tags         jobs
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/jobs/{id} [delete]
func (h *JobHandler) DeleteJob(c *gin.Context) {
	if err := h.jobService.Delete(c.Request.Context(), middleware.AccountID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
