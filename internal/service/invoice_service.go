package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"fieldops/internal/apperr"
	"fieldops/internal/billing"
	"fieldops/internal/model"
	"fieldops/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

// --- DTOs ---

type CreateInvoiceRequest struct {
	JobID        string `json:"job_id" binding:"required"`
	CustomerID   string `json:"customer_id" binding:"required"`
	DueDate      string `json:"due_date" binding:"required"` // YYYY-MM-DD
	LaborHours   string `json:"labor_hours"`
	HourlyRate   string `json:"hourly_rate"`
	MaterialCost string `json:"material_cost"`
	TaxRate      string `json:"tax_rate"` // fraction; falls back to the account default when empty
	Notes        string `json:"notes"`
}

// RecalculateInvoiceRequest carries financial edits for a draft invoice.
// Nil leaves a field unchanged; an empty string clears an optional field.
type RecalculateInvoiceRequest struct {
	LaborHours   *string `json:"labor_hours"`
	HourlyRate   *string `json:"hourly_rate"`
	MaterialCost *string `json:"material_cost"`
	TaxRate      *string `json:"tax_rate"`
	DueDate      *string `json:"due_date"`
}

type RecordPaymentRequest struct {
	Amount    string `json:"amount" binding:"required"`
	Method    string `json:"method" binding:"required,oneof=CASH CHECK CARD ACH OTHER"`
	Date      string `json:"date" binding:"required"` // YYYY-MM-DD
	Reference string `json:"reference"`
	Notes     string `json:"notes"`
}

type InvoiceFilter struct {
	Status     string // stored status: DRAFT, SENT, VIEWED, ACCEPTED, PAID
	CustomerID string
	JobID      string
	Page       int
	Limit      int
}

type InvoiceResponse struct {
	ID           string            `json:"id"`
	InvoiceNo    string            `json:"invoice_no"`
	JobID        string            `json:"job_id"`
	CustomerID   string            `json:"customer_id"`
	InvoiceDate  string            `json:"invoice_date"`
	DueDate      string            `json:"due_date"`
	LaborHours   *string           `json:"labor_hours"`
	HourlyRate   *string           `json:"hourly_rate"`
	LaborAmount  string            `json:"labor_amount"`
	MaterialCost string            `json:"material_cost"`
	Subtotal     string            `json:"subtotal"`
	TaxRate      string            `json:"tax_rate"`
	TaxAmount    string            `json:"tax_amount"`
	TotalAmount  string            `json:"total_amount"`
	PaidAmount   string            `json:"paid_amount"`
	Balance      string            `json:"balance"`
	Status       string            `json:"status"` // effective status: OVERDUE substituted at read time
	SentAt       *string           `json:"sent_at"`
	ViewedAt     *string           `json:"viewed_at"`
	AcceptedAt   *string           `json:"accepted_at"`
	PaymentDate  *string           `json:"payment_date"`
	Notes        string            `json:"notes"`
	Payments     []PaymentResponse `json:"payments,omitempty"`
	CreatedAt    string            `json:"created_at"`
}

type PaymentResponse struct {
	ID          string `json:"id"`
	InvoiceID   string `json:"invoice_id"`
	Amount      string `json:"amount"`
	Method      string `json:"method"`
	PaymentDate string `json:"payment_date"`
	Reference   string `json:"reference"`
	Notes       string `json:"notes"`
	CreatedAt   string `json:"created_at"`
}

// RecordPaymentResult bundles the created payment with the invoice it was
// applied to, as observed inside the same transaction.
type RecordPaymentResult struct {
	Payment PaymentResponse `json:"payment"`
	Invoice InvoiceResponse `json:"invoice"`
}

// --- Collaborators ---

// PDFRenderer produces a document for a finalized invoice. Failures never
// roll back the triggering state transition.
type PDFRenderer interface {
	RenderInvoice(ctx context.Context, invoice *model.Invoice, customer *model.Customer) ([]byte, error)
}

// EmailDispatcher delivers a sent invoice to the customer.
type EmailDispatcher interface {
	SendInvoice(ctx context.Context, recipient string, invoice *model.Invoice, pdf []byte) error
}

// EventNotifier publishes invoice lifecycle events to the account's
// connected clients.
type EventNotifier interface {
	Publish(accountID uuid.UUID, event string, payload interface{})
}

// AuditRecorder appends an audit trail entry; implementations are
// best-effort and must not fail the recorded operation.
type AuditRecorder interface {
	Record(ctx context.Context, accountID uuid.UUID, userID *uuid.UUID, action, entityID, entityName string)
}

// --- Interface ---

type InvoiceService interface {
	Create(ctx context.Context, accountID uuid.UUID, actorID *uuid.UUID, req CreateInvoiceRequest) (InvoiceResponse, error)
	Get(ctx context.Context, accountID uuid.UUID, id string) (InvoiceResponse, error)
	List(ctx context.Context, accountID uuid.UUID, filter InvoiceFilter) ([]InvoiceResponse, int64, error)
	Recalculate(ctx context.Context, accountID uuid.UUID, actorID *uuid.UUID, id string, req RecalculateInvoiceRequest) (InvoiceResponse, error)
	Send(ctx context.Context, accountID uuid.UUID, actorID *uuid.UUID, id string, allowZeroTotal bool) (InvoiceResponse, []string, error)
	MarkViewed(ctx context.Context, accountID uuid.UUID, actorID *uuid.UUID, id string) (InvoiceResponse, error)
	Accept(ctx context.Context, accountID uuid.UUID, actorID *uuid.UUID, id string) (InvoiceResponse, error)
	RecordPayment(ctx context.Context, accountID uuid.UUID, actorID *uuid.UUID, id string, req RecordPaymentRequest) (RecordPaymentResult, error)
	Delete(ctx context.Context, accountID uuid.UUID, actorID *uuid.UUID, id string) error
}

type invoiceService struct {
	invoiceRepo  repository.InvoiceRepository
	jobRepo      repository.JobRepository
	customerRepo repository.CustomerRepository
	accountRepo  repository.AccountRepository
	txManager    repository.TransactionManager
	renderer     PDFRenderer
	mailer       EmailDispatcher
	notifier     EventNotifier
	audit        AuditRecorder
	now          func() time.Time
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	jobRepo repository.JobRepository,
	customerRepo repository.CustomerRepository,
	accountRepo repository.AccountRepository,
	txManager repository.TransactionManager,
	renderer PDFRenderer,
	mailer EmailDispatcher,
	notifier EventNotifier,
	audit AuditRecorder,
) InvoiceService {
	return &invoiceService{
		invoiceRepo:  invoiceRepo,
		jobRepo:      jobRepo,
		customerRepo: customerRepo,
		accountRepo:  accountRepo,
		txManager:    txManager,
		renderer:     renderer,
		mailer:       mailer,
		notifier:     notifier,
		audit:        audit,
		now:          time.Now,
	}
}

// --- Implementation ---

func (s *invoiceService) Create(ctx context.Context, accountID uuid.UUID, actorID *uuid.UUID, req CreateInvoiceRequest) (InvoiceResponse, error) {
	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return InvoiceResponse{}, apperr.Validationf("invalid job_id")
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return InvoiceResponse{}, apperr.Validationf("invalid customer_id")
	}
	dueDate, err := time.Parse(dateLayout, req.DueDate)
	if err != nil {
		return InvoiceResponse{}, apperr.Validationf("invalid due_date: expected YYYY-MM-DD")
	}

	job, err := s.jobRepo.FindByID(ctx, accountID, jobID)
	if err != nil {
		return InvoiceResponse{}, asNotFound(err, "job")
	}
	if job.Status == model.JobStatusCancelled {
		return InvoiceResponse{}, apperr.Validationf("cannot invoice a cancelled job")
	}
	if _, err := s.customerRepo.FindByID(ctx, accountID, customerID); err != nil {
		return InvoiceResponse{}, asNotFound(err, "customer")
	}
	if job.CustomerID != customerID {
		return InvoiceResponse{}, apperr.Validationf("job does not belong to the given customer")
	}

	laborHours, err := parseOptionalDecimal(req.LaborHours, "labor_hours")
	if err != nil {
		return InvoiceResponse{}, err
	}
	hourlyRate, err := parseOptionalDecimal(req.HourlyRate, "hourly_rate")
	if err != nil {
		return InvoiceResponse{}, err
	}
	materialCost, err := parseDecimalOrZero(req.MaterialCost, "material_cost")
	if err != nil {
		return InvoiceResponse{}, err
	}

	taxRate := decimal.Zero
	if req.TaxRate != "" {
		taxRate, err = parseDecimalOrZero(req.TaxRate, "tax_rate")
		if err != nil {
			return InvoiceResponse{}, err
		}
	} else {
		account, accErr := s.accountRepo.FindByID(ctx, accountID)
		if accErr != nil {
			return InvoiceResponse{}, asNotFound(accErr, "account")
		}
		taxRate = account.DefaultTaxRate
	}

	totals, err := billing.ComputeTotals(billing.TotalsInput{
		LaborHours:   laborHours,
		HourlyRate:   hourlyRate,
		MaterialCost: materialCost,
		TaxRate:      taxRate,
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	invoiceDate := s.now()
	var invoice model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoiceNo, genErr := s.generateInvoiceNo(txCtx, accountID, invoiceDate)
		if genErr != nil {
			return fmt.Errorf("failed to generate invoice number: %w", genErr)
		}

		invoice = model.Invoice{
			AccountID:    accountID,
			JobID:        jobID,
			CustomerID:   customerID,
			InvoiceNo:    invoiceNo,
			InvoiceDate:  invoiceDate,
			DueDate:      dueDate,
			LaborHours:   laborHours,
			HourlyRate:   hourlyRate,
			LaborAmount:  totals.LaborAmount,
			MaterialCost: materialCost,
			Subtotal:     totals.Subtotal,
			TaxRate:      taxRate,
			TaxAmount:    totals.TaxAmount,
			TotalAmount:  totals.TotalAmount,
			PaidAmount:   decimal.Zero,
			Status:       billing.StatusDraft,
			Notes:        req.Notes,
		}
		return s.invoiceRepo.Create(txCtx, &invoice)
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	s.audit.Record(ctx, accountID, actorID, model.ActionCreateInvoice, invoice.ID.String(), invoice.InvoiceNo)
	s.notifier.Publish(accountID, "invoice.created", toInvoiceResponse(invoice, nil, s.now()))

	return toInvoiceResponse(invoice, nil, s.now()), nil
}

func (s *invoiceService) Get(ctx context.Context, accountID uuid.UUID, id string) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, apperr.Validationf("invalid invoice id")
	}

	invoice, err := s.invoiceRepo.FindByIDWithPayments(ctx, accountID, invoiceID)
	if err != nil {
		return InvoiceResponse{}, asNotFound(err, "invoice")
	}
	return toInvoiceResponse(*invoice, invoice.Payments, s.now()), nil
}

func (s *invoiceService) List(ctx context.Context, accountID uuid.UUID, filter InvoiceFilter) ([]InvoiceResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.InvoiceListFilter{
		Status: filter.Status,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	if filter.CustomerID != "" {
		customerID, err := uuid.Parse(filter.CustomerID)
		if err != nil {
			return nil, 0, apperr.Validationf("invalid customer_id filter")
		}
		repoFilter.CustomerID = &customerID
	}
	if filter.JobID != "" {
		jobID, err := uuid.Parse(filter.JobID)
		if err != nil {
			return nil, 0, apperr.Validationf("invalid job_id filter")
		}
		repoFilter.JobID = &jobID
	}

	invoices, total, err := s.invoiceRepo.List(ctx, accountID, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch invoices: %w", err)
	}

	now := s.now()
	result := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, toInvoiceResponse(inv, nil, now))
	}
	return result, total, nil
}

func (s *invoiceService) Recalculate(ctx context.Context, accountID uuid.UUID, actorID *uuid.UUID, id string, req RecalculateInvoiceRequest) (InvoiceResponse, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, apperr.Validationf("invalid invoice id")
	}

	var invoice *model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		invoice, findErr = s.invoiceRepo.FindByIDForUpdate(txCtx, accountID, invoiceID)
		if findErr != nil {
			return asNotFound(findErr, "invoice")
		}

		if stateErr := billing.ValidateRecalculate(invoice.Status); stateErr != nil {
			return stateErr
		}

		laborHours := invoice.LaborHours
		hourlyRate := invoice.HourlyRate
		materialCost := invoice.MaterialCost
		taxRate := invoice.TaxRate

		if req.LaborHours != nil {
			laborHours, err = parseOptionalDecimal(*req.LaborHours, "labor_hours")
			if err != nil {
				return err
			}
		}
		if req.HourlyRate != nil {
			hourlyRate, err = parseOptionalDecimal(*req.HourlyRate, "hourly_rate")
			if err != nil {
				return err
			}
		}
		if req.MaterialCost != nil {
			materialCost, err = parseDecimalOrZero(*req.MaterialCost, "material_cost")
			if err != nil {
				return err
			}
		}
		if req.TaxRate != nil {
			taxRate, err = parseDecimalOrZero(*req.TaxRate, "tax_rate")
			if err != nil {
				return err
			}
		}
		if req.DueDate != nil {
			dueDate, parseErr := time.Parse(dateLayout, *req.DueDate)
			if parseErr != nil {
				return apperr.Validationf("invalid due_date: expected YYYY-MM-DD")
			}
			invoice.DueDate = dueDate
		}

		totals, calcErr := billing.ComputeTotals(billing.TotalsInput{
			LaborHours:   laborHours,
			HourlyRate:   hourlyRate,
			MaterialCost: materialCost,
			TaxRate:      taxRate,
		})
		if calcErr != nil {
			return calcErr
		}

		// Derived fields are fully replaced, never adjusted in place.
		invoice.LaborHours = laborHours
		invoice.HourlyRate = hourlyRate
		invoice.LaborAmount = totals.LaborAmount
		invoice.MaterialCost = materialCost
		invoice.Subtotal = totals.Subtotal
		invoice.TaxRate = taxRate
		invoice.TaxAmount = totals.TaxAmount
		invoice.TotalAmount = totals.TotalAmount

		return s.invoiceRepo.Update(txCtx, invoice)
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	s.audit.Record(ctx, accountID, actorID, model.ActionRecalculate, invoice.ID.String(), invoice.InvoiceNo)

	return toInvoiceResponse(*invoice, nil, s.now()), nil
}

// Send freezes the invoice's financial fields and dispatches the document to
// the customer. The PDF render and email are attempted after the transition
// commits; their failure is reported as warnings, never as a rollback.
func (s *invoiceService) Send(ctx context.Context, accountID uuid.UUID, actorID *uuid.UUID, id string, allowZeroTotal bool) (InvoiceResponse, []string, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return InvoiceResponse{}, nil, apperr.Validationf("invalid invoice id")
	}

	var invoice *model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		invoice, findErr = s.invoiceRepo.FindByIDForUpdate(txCtx, accountID, invoiceID)
		if findErr != nil {
			return asNotFound(findErr, "invoice")
		}

		if stateErr := billing.ValidateSend(invoice.Status, invoice.TotalAmount, allowZeroTotal); stateErr != nil {
			return stateErr
		}

		now := s.now()
		invoice.Status = billing.StatusSent
		invoice.SentAt = &now
		return s.invoiceRepo.Update(txCtx, invoice)
	})
	if err != nil {
		return InvoiceResponse{}, nil, err
	}

	warnings := s.dispatchInvoice(ctx, invoice)

	s.audit.Record(ctx, accountID, actorID, model.ActionSendInvoice, invoice.ID.String(), invoice.InvoiceNo)
	s.notifier.Publish(accountID, "invoice.sent", toInvoiceResponse(*invoice, nil, s.now()))

	return toInvoiceResponse(*invoice, nil, s.now()), warnings, nil
}

// dispatchInvoice runs the post-send side effects. Each failure is logged
// and downgraded to a response warning; the send itself already committed.
func (s *invoiceService) dispatchInvoice(ctx context.Context, invoice *model.Invoice) []string {
	var warnings []string

	customer, err := s.customerRepo.FindByID(ctx, invoice.AccountID, invoice.CustomerID)
	if err != nil {
		depErr := apperr.Dependency("failed to load customer for dispatch", err)
		log.Printf("invoice %s dispatch: %v", invoice.InvoiceNo, depErr)
		return append(warnings, depErr.Error())
	}

	pdf, err := s.renderer.RenderInvoice(ctx, invoice, customer)
	if err != nil {
		depErr := apperr.Dependency("pdf generation failed", err)
		log.Printf("invoice %s dispatch: %v", invoice.InvoiceNo, depErr)
		warnings = append(warnings, depErr.Error())
	}

	if customer.Email == "" {
		warnings = append(warnings, "customer has no email address; invoice not delivered")
		return warnings
	}

	if err := s.mailer.SendInvoice(ctx, customer.Email, invoice, pdf); err != nil {
		depErr := apperr.Dependency("email dispatch failed", err)
		log.Printf("invoice %s dispatch: %v", invoice.InvoiceNo, depErr)
		warnings = append(warnings, depErr.Error())
	}

	return warnings
}

func (s *invoiceService) MarkViewed(ctx context.Context, accountID uuid.UUID, actorID *uuid.UUID, id string) (InvoiceResponse, error) {
	invoice, err := s.transition(ctx, accountID, id, func(inv *model.Invoice) error {
		if stateErr := billing.ValidateMarkViewed(inv.Status); stateErr != nil {
			return stateErr
		}
		now := s.now()
		inv.Status = billing.StatusViewed
		inv.ViewedAt = &now
		return nil
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	s.audit.Record(ctx, accountID, actorID, model.ActionMarkViewed, invoice.ID.String(), invoice.InvoiceNo)

	return toInvoiceResponse(*invoice, nil, s.now()), nil
}

func (s *invoiceService) Accept(ctx context.Context, accountID uuid.UUID, actorID *uuid.UUID, id string) (InvoiceResponse, error) {
	invoice, err := s.transition(ctx, accountID, id, func(inv *model.Invoice) error {
		if stateErr := billing.ValidateAccept(inv.Status); stateErr != nil {
			return stateErr
		}
		now := s.now()
		inv.Status = billing.StatusAccepted
		inv.AcceptedAt = &now
		return nil
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	s.audit.Record(ctx, accountID, actorID, model.ActionAcceptInvoice, invoice.ID.String(), invoice.InvoiceNo)

	return toInvoiceResponse(*invoice, nil, s.now()), nil
}

// transition applies mutate to a row-locked invoice in one transaction.
func (s *invoiceService) transition(ctx context.Context, accountID uuid.UUID, id string, mutate func(*model.Invoice) error) (*model.Invoice, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validationf("invalid invoice id")
	}

	var invoice *model.Invoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		invoice, findErr = s.invoiceRepo.FindByIDForUpdate(txCtx, accountID, invoiceID)
		if findErr != nil {
			return asNotFound(findErr, "invoice")
		}
		if mutErr := mutate(invoice); mutErr != nil {
			return mutErr
		}
		return s.invoiceRepo.Update(txCtx, invoice)
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// RecordPayment appends an immutable payment, updates the paid amount, and
// applies the derived PAID transition, all under the invoice's row lock so
// two payments that individually fit the balance cannot both slip through.
func (s *invoiceService) RecordPayment(ctx context.Context, accountID uuid.UUID, actorID *uuid.UUID, id string, req RecordPaymentRequest) (RecordPaymentResult, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return RecordPaymentResult{}, apperr.Validationf("invalid invoice id")
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return RecordPaymentResult{}, apperr.Validationf("invalid amount: %s", req.Amount)
	}
	if !amount.IsPositive() {
		return RecordPaymentResult{}, apperr.Validationf("amount must be greater than zero")
	}
	paymentDate, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		return RecordPaymentResult{}, apperr.Validationf("invalid date: expected YYYY-MM-DD")
	}

	var invoice *model.Invoice
	var payment model.Payment
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		invoice, findErr = s.invoiceRepo.FindByIDForUpdate(txCtx, accountID, invoiceID)
		if findErr != nil {
			return asNotFound(findErr, "invoice")
		}

		if stateErr := billing.ValidatePayment(invoice.Status); stateErr != nil {
			return stateErr
		}

		newPaid := invoice.PaidAmount.Add(amount)
		if newPaid.GreaterThan(invoice.TotalAmount) {
			// Never clamp: an excess payment usually means a duplicate
			// submission, and capping it would hide the caller's error.
			remaining := invoice.TotalAmount.Sub(invoice.PaidAmount)
			return apperr.Overpaymentf("payment of %s exceeds the remaining balance of %s", amount.StringFixed(2), remaining.StringFixed(2))
		}

		payment = model.Payment{
			AccountID:   accountID,
			InvoiceID:   invoice.ID,
			Amount:      amount,
			Method:      req.Method,
			PaymentDate: paymentDate,
			Reference:   req.Reference,
			Notes:       req.Notes,
		}
		if createErr := s.invoiceRepo.CreatePayment(txCtx, &payment); createErr != nil {
			return fmt.Errorf("failed to record payment: %w", createErr)
		}

		invoice.PaidAmount = newPaid
		invoice.PaymentDate = &paymentDate
		if newPaid.Equal(invoice.TotalAmount) {
			invoice.Status = billing.StatusPaid
		}
		return s.invoiceRepo.Update(txCtx, invoice)
	})
	if err != nil {
		return RecordPaymentResult{}, err
	}

	s.audit.Record(ctx, accountID, actorID, model.ActionRecordPayment, invoice.ID.String(), invoice.InvoiceNo)
	event := "payment.recorded"
	if invoice.Status == billing.StatusPaid {
		event = "invoice.paid"
	}
	s.notifier.Publish(accountID, event, toInvoiceResponse(*invoice, nil, s.now()))

	return RecordPaymentResult{
		Payment: toPaymentResponse(payment),
		Invoice: toInvoiceResponse(*invoice, nil, s.now()),
	}, nil
}

func (s *invoiceService) Delete(ctx context.Context, accountID uuid.UUID, actorID *uuid.UUID, id string) error {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return apperr.Validationf("invalid invoice id")
	}

	var invoiceNo string
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, findErr := s.invoiceRepo.FindByIDForUpdate(txCtx, accountID, invoiceID)
		if findErr != nil {
			return asNotFound(findErr, "invoice")
		}

		if invoice.PaidAmount.IsPositive() {
			return apperr.StateConflict(invoice.Status.String(), "cannot delete an invoice with recorded payments")
		}

		invoiceNo = invoice.InvoiceNo
		return s.invoiceRepo.Delete(txCtx, accountID, invoiceID)
	})
	if err != nil {
		return err
	}

	s.audit.Record(ctx, accountID, actorID, model.ActionDeleteInvoice, invoiceID.String(), invoiceNo)
	return nil
}

// generateInvoiceNo assigns the next slot in the account's date-based
// sequence, e.g. INV-20260831-00004. Counting happens inside the caller's
// transaction so concurrent creates cannot claim the same number.
func (s *invoiceService) generateInvoiceNo(ctx context.Context, accountID uuid.UUID, invoiceDate time.Time) (string, error) {
	prefix := "INV-" + invoiceDate.Format("20060102") + "-"
	count, err := s.invoiceRepo.CountByPrefix(ctx, accountID, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

// --- Helpers ---

func asNotFound(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(resource)
	}
	return fmt.Errorf("failed to load %s: %w", resource, err)
}

func parseOptionalDecimal(raw, field string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperr.Validationf("invalid %s: %s", field, raw)
	}
	return &d, nil
}

func parseDecimalOrZero(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, apperr.Validationf("invalid %s: %s", field, raw)
	}
	return d, nil
}

// --- Mapping ---

func toInvoiceResponse(inv model.Invoice, payments []model.Payment, now time.Time) InvoiceResponse {
	resp := InvoiceResponse{
		ID:           inv.ID.String(),
		InvoiceNo:    inv.InvoiceNo,
		JobID:        inv.JobID.String(),
		CustomerID:   inv.CustomerID.String(),
		InvoiceDate:  inv.InvoiceDate.Format(dateLayout),
		DueDate:      inv.DueDate.Format(dateLayout),
		LaborAmount:  inv.LaborAmount.StringFixed(2),
		MaterialCost: inv.MaterialCost.StringFixed(2),
		Subtotal:     inv.Subtotal.StringFixed(2),
		TaxRate:      inv.TaxRate.String(),
		TaxAmount:    inv.TaxAmount.StringFixed(2),
		TotalAmount:  inv.TotalAmount.StringFixed(2),
		PaidAmount:   inv.PaidAmount.StringFixed(2),
		Balance:      inv.TotalAmount.Sub(inv.PaidAmount).StringFixed(2),
		Status:       billing.Effective(inv.Status, inv.DueDate, inv.PaidAmount, inv.TotalAmount, now).String(),
		Notes:        inv.Notes,
		CreatedAt:    inv.CreatedAt.Format(time.RFC3339),
	}

	if inv.LaborHours != nil {
		v := inv.LaborHours.String()
		resp.LaborHours = &v
	}
	if inv.HourlyRate != nil {
		v := inv.HourlyRate.StringFixed(2)
		resp.HourlyRate = &v
	}
	if inv.SentAt != nil {
		v := inv.SentAt.Format(time.RFC3339)
		resp.SentAt = &v
	}
	if inv.ViewedAt != nil {
		v := inv.ViewedAt.Format(time.RFC3339)
		resp.ViewedAt = &v
	}
	if inv.AcceptedAt != nil {
		v := inv.AcceptedAt.Format(time.RFC3339)
		resp.AcceptedAt = &v
	}
	if inv.PaymentDate != nil {
		v := inv.PaymentDate.Format(dateLayout)
		resp.PaymentDate = &v
	}
	for _, p := range payments {
		resp.Payments = append(resp.Payments, toPaymentResponse(p))
	}

	return resp
}

func toPaymentResponse(p model.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID.String(),
		InvoiceID:   p.InvoiceID.String(),
		Amount:      p.Amount.StringFixed(2),
		Method:      p.Method,
		PaymentDate: p.PaymentDate.Format(dateLayout),
		Reference:   p.Reference,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}
