package handler

import (
	"net/http"

	"fieldops/internal/middleware"
	"fieldops/internal/service"
	"fieldops/pkg/pagination"
	"fieldops/pkg/response"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
}

func NewInvoiceHandler(invoiceService service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/api/invoices")
	invoices.Use(middleware.RequireAuth())
	{
		invoices.POST("", middleware.RequireRole("admin", "office"), h.CreateInvoice)
		invoices.GET("", h.ListInvoices)
		invoices.GET("/:id", h.GetInvoice)
		invoices.PUT("/:id/recalculate", middleware.RequireRole("admin", "office"), h.RecalculateInvoice)
		invoices.POST("/:id/send", middleware.RequireRole("admin", "office"), h.SendInvoice)
		invoices.POST("/:id/mark-viewed", h.MarkInvoiceViewed)
		invoices.POST("/:id/accept", h.AcceptInvoice)
		invoices.POST("/:id/payments", middleware.RequireRole("admin", "office"), h.RecordPayment)
		invoices.DELETE("/:id", middleware.RequireRole("admin", "office"), h.DeleteInvoice)
	}
}

// CreateInvoice creates a new draft invoice for a job
// @Summary      Create invoice
// @Description  Creates a draft invoice for a job with computed totals
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateInvoiceRequest  true  "Create Invoice Payload"
// @Success      201      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), middleware.AccountID(c), middleware.UserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// ListInvoices returns a paginated list of the account's invoices
// @Summary      List invoices
// @Description  Retrieves a paginated list of invoices, optionally filtered by status, customer, or job
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        status       query     string  false  "Filter by stored status (DRAFT, SENT, VIEWED, ACCEPTED, PAID)"
// @Param        customer_id  query     string  false  "Filter by customer"
// @Param        job_id       query     string  false  "Filter by job"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Number of items per page (default 20)"
// @Success      200          {object}  response.Response{data=object}
// @Failure      500          {object}  response.Response
// @Router       /api/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	params := pagination.Parse(c)

	filter := service.InvoiceFilter{
		Status:     c.Query("status"),
		CustomerID: c.Query("customer_id"),
		JobID:      c.Query("job_id"),
		Page:       params.Page,
		Limit:      params.Limit,
	}

	invoices, total, err := h.invoiceService.List(c.Request.Context(), middleware.AccountID(c), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"invoices": invoices,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// GetInvoice returns one invoice with its payments
// @Summary      Get invoice
// @Description  Retrieves an invoice with its payment history; status reflects the read-time overdue projection
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.Get(c.Request.Context(), middleware.AccountID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// RecalculateInvoice reruns the totals calculator on a draft invoice
// @Summary      Recalculate invoice
// @Description  Replaces the financial fields of a draft invoice; fails with a conflict once the invoice has been sent
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                             true  "Invoice ID"
// @Param        payload  body      service.RecalculateInvoiceRequest  true  "Financial field edits"
// @Success      200      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/invoices/{id}/recalculate [put]
func (h *InvoiceHandler) RecalculateInvoice(c *gin.Context) {
	var req service.RecalculateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.Recalculate(c.Request.Context(), middleware.AccountID(c), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// SendInvoice issues a draft invoice to the customer
// @Summary      Send invoice
// @Description  Transitions a draft to SENT, freezes financials, and dispatches the PDF/email; dispatch failures surface as warnings
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id                path      string  true   "Invoice ID"
// @Param        allow_zero_total  query     bool    false  "Allow sending a zero-total invoice"
// @Success      200               {object}  response.Response{data=service.InvoiceResponse}
// @Failure      409               {object}  response.Response
// @Router       /api/invoices/{id}/send [post]
func (h *InvoiceHandler) SendInvoice(c *gin.Context) {
	allowZeroTotal := c.Query("allow_zero_total") == "true"

	invoice, warnings, err := h.invoiceService.Send(c.Request.Context(), middleware.AccountID(c), middleware.UserID(c), c.Param("id"), allowZeroTotal)
	if err != nil {
		respondError(c, err)
		return
	}

	if len(warnings) > 0 {
		c.JSON(http.StatusOK, response.SuccessWithWarnings(http.StatusOK, invoice, warnings))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// MarkInvoiceViewed records that the customer opened the invoice
// @Summary      Mark invoice viewed
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/invoices/{id}/mark-viewed [post]
func (h *InvoiceHandler) MarkInvoiceViewed(c *gin.Context) {
	invoice, err := h.invoiceService.MarkViewed(c.Request.Context(), middleware.AccountID(c), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// AcceptInvoice records the customer's approval of the invoice
// @Summary      Accept invoice
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/invoices/{id}/accept [post]
func (h *InvoiceHandler) AcceptInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.Accept(c.Request.Context(), middleware.AccountID(c), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// RecordPayment applies a payment to an invoice
// @Summary      Record payment
// @Description  Appends an immutable payment; rejects amounts exceeding the remaining balance with 422
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Invoice ID"
// @Param        payload  body      service.RecordPaymentRequest  true  "Payment Payload"
// @Success      201      {object}  response.Response{data=service.RecordPaymentResult}
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.invoiceService.RecordPayment(c.Request.Context(), middleware.AccountID(c), middleware.UserID(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// DeleteInvoice soft-deletes an unpaid invoice
// @Summary      Delete invoice
// @Description  Deletes an invoice; fails with a conflict once any payment has been recorded
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	if err := h.invoiceService.Delete(c.Request.Context(), middleware.AccountID(c), middleware.UserID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
