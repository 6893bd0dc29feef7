package service

import (
	"context"
	"testing"
	"time"

	"fieldops/internal/apperr"
	"fieldops/internal/billing"
	"fieldops/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type invoiceServiceFixture struct {
	invoiceRepo  *mockInvoiceRepo
	jobRepo      *mockJobRepo
	customerRepo *mockCustomerRepo
	accountRepo  *mockAccountRepo
	renderer     *mockRenderer
	mailer       *mockMailer
	notifier     *mockNotifier
	audit        *mockAudit
	svc          *invoiceService

	accountID  uuid.UUID
	customerID uuid.UUID
	jobID      uuid.UUID
	now        time.Time
}

func newInvoiceServiceFixture(t *testing.T) *invoiceServiceFixture {
	t.Helper()

	f := &invoiceServiceFixture{
		invoiceRepo:  &mockInvoiceRepo{},
		jobRepo:      &mockJobRepo{},
		customerRepo: &mockCustomerRepo{},
		accountRepo:  &mockAccountRepo{},
		renderer:     &mockRenderer{},
		mailer:       &mockMailer{},
		notifier:     &mockNotifier{},
		audit:        &mockAudit{},
		accountID:    uuid.New(),
		customerID:   uuid.New(),
		jobID:        uuid.New(),
		now:          time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
	}

	svc := NewInvoiceService(
		f.invoiceRepo,
		f.jobRepo,
		f.customerRepo,
		f.accountRepo,
		stubTxManager{},
		f.renderer,
		f.mailer,
		f.notifier,
		f.audit,
	).(*invoiceService)
	svc.now = func() time.Time { return f.now }
	f.svc = svc

	// Recording side effects never affects test outcomes.
	f.audit.On("Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return()
	f.notifier.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return()

	return f
}

func (f *invoiceServiceFixture) job(status string) *model.Job {
	return &model.Job{
		ID:         f.jobID,
		AccountID:  f.accountID,
		CustomerID: f.customerID,
		Title:      "Water heater replacement",
		Status:     status,
	}
}

func (f *invoiceServiceFixture) customer() *model.Customer {
	return &model.Customer{
		ID:        f.customerID,
		AccountID: f.accountID,
		Name:      "Jane Homeowner",
		Email:     "jane@example.com",
	}
}

func (f *invoiceServiceFixture) invoice(status billing.Status) *model.Invoice {
	return &model.Invoice{
		ID:           uuid.New(),
		AccountID:    f.accountID,
		JobID:        f.jobID,
		CustomerID:   f.customerID,
		InvoiceNo:    "INV-20260831-00001",
		InvoiceDate:  f.now,
		DueDate:      f.now.AddDate(0, 0, 30),
		LaborAmount:  decimal.RequireFromString("255.00"),
		MaterialCost: decimal.RequireFromString("120.00"),
		Subtotal:     decimal.RequireFromString("375.00"),
		TaxRate:      decimal.RequireFromString("0.08"),
		TaxAmount:    decimal.RequireFromString("30.00"),
		TotalAmount:  decimal.RequireFromString("405.00"),
		PaidAmount:   decimal.Zero,
		Status:       status,
	}
}

// --- Create ---

func TestCreateInvoiceComputesTotals(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	f.jobRepo.On("FindByID", mock.Anything, f.accountID, f.jobID).Return(f.job(model.JobStatusCompleted), nil)
	f.customerRepo.On("FindByID", mock.Anything, f.accountID, f.customerID).Return(f.customer(), nil)
	f.invoiceRepo.On("CountByPrefix", mock.Anything, f.accountID, "INV-20260831-").Return(int64(3), nil)

	var created *model.Invoice
	f.invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Invoice")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*model.Invoice) }).
		Return(nil)

	resp, err := f.svc.Create(context.Background(), f.accountID, nil, CreateInvoiceRequest{
		JobID:        f.jobID.String(),
		CustomerID:   f.customerID.String(),
		DueDate:      "2026-09-30",
		LaborHours:   "3",
		HourlyRate:   "85",
		MaterialCost: "120",
		TaxRate:      "0.08",
	})

	assert.NoError(t, err)
	assert.NotNil(t, created)
	assert.Equal(t, "INV-20260831-00004", created.InvoiceNo)
	assert.Equal(t, billing.StatusDraft, created.Status)
	assert.Equal(t, "255.00", created.LaborAmount.StringFixed(2))
	assert.Equal(t, "375.00", created.Subtotal.StringFixed(2))
	assert.Equal(t, "30.00", created.TaxAmount.StringFixed(2))
	assert.Equal(t, "405.00", created.TotalAmount.StringFixed(2))
	assert.True(t, created.PaidAmount.IsZero())

	assert.Equal(t, "DRAFT", resp.Status)
	assert.Equal(t, "405.00", resp.Balance)
	f.notifier.AssertCalled(t, "Publish", f.accountID, "invoice.created", mock.Anything)
}

func TestCreateInvoiceFallsBackToAccountTaxRate(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	f.jobRepo.On("FindByID", mock.Anything, f.accountID, f.jobID).Return(f.job(model.JobStatusCompleted), nil)
	f.customerRepo.On("FindByID", mock.Anything, f.accountID, f.customerID).Return(f.customer(), nil)
	f.accountRepo.On("FindByID", mock.Anything, f.accountID).Return(&model.Account{
		ID:             f.accountID,
		DefaultTaxRate: decimal.RequireFromString("0.0825"),
	}, nil)
	f.invoiceRepo.On("CountByPrefix", mock.Anything, f.accountID, mock.Anything).Return(int64(0), nil)

	var created *model.Invoice
	f.invoiceRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.Invoice")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*model.Invoice) }).
		Return(nil)

	_, err := f.svc.Create(context.Background(), f.accountID, nil, CreateInvoiceRequest{
		JobID:        f.jobID.String(),
		CustomerID:   f.customerID.String(),
		DueDate:      "2026-09-30",
		MaterialCost: "100",
	})

	assert.NoError(t, err)
	assert.Equal(t, "0.0825", created.TaxRate.String())
	assert.Equal(t, "8.25", created.TaxAmount.StringFixed(2))
	assert.Equal(t, "108.25", created.TotalAmount.StringFixed(2))
}

func TestCreateInvoiceRejectsCancelledJob(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	f.jobRepo.On("FindByID", mock.Anything, f.accountID, f.jobID).Return(f.job(model.JobStatusCancelled), nil)

	_, err := f.svc.Create(context.Background(), f.accountID, nil, CreateInvoiceRequest{
		JobID:      f.jobID.String(),
		CustomerID: f.customerID.String(),
		DueDate:    "2026-09-30",
	})

	assert.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	f.invoiceRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateInvoiceRejectsForeignJob(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	otherCustomer := uuid.New()
	f.jobRepo.On("FindByID", mock.Anything, f.accountID, f.jobID).Return(f.job(model.JobStatusCompleted), nil)
	f.customerRepo.On("FindByID", mock.Anything, f.accountID, otherCustomer).Return(&model.Customer{ID: otherCustomer, AccountID: f.accountID}, nil)

	_, err := f.svc.Create(context.Background(), f.accountID, nil, CreateInvoiceRequest{
		JobID:      f.jobID.String(),
		CustomerID: otherCustomer.String(),
		DueDate:    "2026-09-30",
	})

	assert.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

// --- Recalculate ---

func TestRecalculateReplacesDerivedFields(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	inv := f.invoice(billing.StatusDraft)
	inv.LaborHours = decPtr("3")
	inv.HourlyRate = decPtr("85")

	f.invoiceRepo.On("FindByIDForUpdate", mock.Anything, f.accountID, inv.ID).Return(inv, nil)
	f.invoiceRepo.On("Update", mock.Anything, inv).Return(nil)

	hours := "5"
	resp, err := f.svc.Recalculate(context.Background(), f.accountID, nil, inv.ID.String(), RecalculateInvoiceRequest{
		LaborHours: &hours,
	})

	assert.NoError(t, err)
	// 5h * 85 = 425, +120 materials = 545, tax 43.60, total 588.60
	assert.Equal(t, "425.00", inv.LaborAmount.StringFixed(2))
	assert.Equal(t, "545.00", inv.Subtotal.StringFixed(2))
	assert.Equal(t, "43.60", inv.TaxAmount.StringFixed(2))
	assert.Equal(t, "588.60", inv.TotalAmount.StringFixed(2))
	assert.Equal(t, "588.60", resp.TotalAmount)
}

func TestRecalculateRejectedAfterSend(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	inv := f.invoice(billing.StatusSent)
	f.invoiceRepo.On("FindByIDForUpdate", mock.Anything, f.accountID, inv.ID).Return(inv, nil)

	hours := "10"
	_, err := f.svc.Recalculate(context.Background(), f.accountID, nil, inv.ID.String(), RecalculateInvoiceRequest{
		LaborHours: &hours,
	})

	assert.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindStateConflict))
	f.invoiceRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)

	var appErr *apperr.Error
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, "SENT", appErr.State)
}

// --- Send ---

func TestSendTransitionsAndDispatches(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	inv := f.invoice(billing.StatusDraft)
	f.invoiceRepo.On("FindByIDForUpdate", mock.Anything, f.accountID, inv.ID).Return(inv, nil)
	f.invoiceRepo.On("Update", mock.Anything, inv).Return(nil)
	f.customerRepo.On("FindByID", mock.Anything, f.accountID, f.customerID).Return(f.customer(), nil)
	f.renderer.On("RenderInvoice", mock.Anything, inv, mock.Anything).Return([]byte("pdf"), nil)
	f.mailer.On("SendInvoice", mock.Anything, "jane@example.com", inv, []byte("pdf")).Return(nil)

	resp, warnings, err := f.svc.Send(context.Background(), f.accountID, nil, inv.ID.String(), false)

	assert.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, billing.StatusSent, inv.Status)
	assert.NotNil(t, inv.SentAt)
	assert.Equal(t, "SENT", resp.Status)
	f.notifier.AssertCalled(t, "Publish", f.accountID, "invoice.sent", mock.Anything)
}

func TestSendDispatchFailureBecomesWarning(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	inv := f.invoice(billing.StatusDraft)
	f.invoiceRepo.On("FindByIDForUpdate", mock.Anything, f.accountID, inv.ID).Return(inv, nil)
	f.invoiceRepo.On("Update", mock.Anything, inv).Return(nil)
	f.customerRepo.On("FindByID", mock.Anything, f.accountID, f.customerID).Return(f.customer(), nil)
	f.renderer.On("RenderInvoice", mock.Anything, inv, mock.Anything).Return(nil, assert.AnError)
	f.mailer.On("SendInvoice", mock.Anything, "jane@example.com", inv, mock.Anything).Return(assert.AnError)

	_, warnings, err := f.svc.Send(context.Background(), f.accountID, nil, inv.ID.String(), false)

	// The transition committed; side-effect failures surface as warnings.
	assert.NoError(t, err)
	assert.Len(t, warnings, 2)
	assert.Equal(t, billing.StatusSent, inv.Status)
}

func TestSendZeroTotalNeedsOverride(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	inv := f.invoice(billing.StatusDraft)
	inv.LaborAmount = decimal.Zero
	inv.MaterialCost = decimal.Zero
	inv.Subtotal = decimal.Zero
	inv.TaxAmount = decimal.Zero
	inv.TotalAmount = decimal.Zero

	f.invoiceRepo.On("FindByIDForUpdate", mock.Anything, f.accountID, inv.ID).Return(inv, nil)

	_, _, err := f.svc.Send(context.Background(), f.accountID, nil, inv.ID.String(), false)
	assert.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindStateConflict))

	// Explicit override for courtesy/warranty invoices.
	f.invoiceRepo.On("Update", mock.Anything, inv).Return(nil)
	f.customerRepo.On("FindByID", mock.Anything, f.accountID, f.customerID).Return(f.customer(), nil)
	f.renderer.On("RenderInvoice", mock.Anything, inv, mock.Anything).Return([]byte("pdf"), nil)
	f.mailer.On("SendInvoice", mock.Anything, "jane@example.com", inv, mock.Anything).Return(nil)

	_, _, err = f.svc.Send(context.Background(), f.accountID, nil, inv.ID.String(), true)
	assert.NoError(t, err)
	assert.Equal(t, billing.StatusSent, inv.Status)
}

// --- MarkViewed / Accept ---

func TestMarkViewedOnlyFromSent(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	inv := f.invoice(billing.StatusSent)
	f.invoiceRepo.On("FindByIDForUpdate", mock.Anything, f.accountID, inv.ID).Return(inv, nil)
	f.invoiceRepo.On("Update", mock.Anything, inv).Return(nil)

	resp, err := f.svc.MarkViewed(context.Background(), f.accountID, nil, inv.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, billing.StatusViewed, inv.Status)
	assert.NotNil(t, inv.ViewedAt)
	assert.Equal(t, "VIEWED", resp.Status)
}

func TestAcceptFromSentSkippingViewed(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	inv := f.invoice(billing.StatusSent)
	f.invoiceRepo.On("FindByIDForUpdate", mock.Anything, f.accountID, inv.ID).Return(inv, nil)
	f.invoiceRepo.On("Update", mock.Anything, inv).Return(nil)

	_, err := f.svc.Accept(context.Background(), f.accountID, nil, inv.ID.String())
	assert.NoError(t, err)
	assert.Equal(t, billing.StatusAccepted, inv.Status)
	assert.NotNil(t, inv.AcceptedAt)
}

// --- RecordPayment ---

func TestRecordPaymentInFullMarksPaid(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	inv := f.invoice(billing.StatusAccepted)
	f.invoiceRepo.On("FindByIDForUpdate", mock.Anything, f.accountID, inv.ID).Return(inv, nil)
	f.invoiceRepo.On("CreatePayment", mock.Anything, mock.AnythingOfType("*model.Payment")).Return(nil)
	f.invoiceRepo.On("Update", mock.Anything, inv).Return(nil)

	result, err := f.svc.RecordPayment(context.Background(), f.accountID, nil, inv.ID.String(), RecordPaymentRequest{
		Amount: "405.00",
		Method: model.PaymentMethodCheck,
		Date:   "2026-08-31",
	})

	assert.NoError(t, err)
	assert.Equal(t, billing.StatusPaid, inv.Status)
	assert.Equal(t, "405.00", inv.PaidAmount.StringFixed(2))
	assert.Equal(t, "2026-08-31", *result.Invoice.PaymentDate)
	assert.Equal(t, "PAID", result.Invoice.Status)
	assert.Equal(t, "0.00", result.Invoice.Balance)
	f.notifier.AssertCalled(t, "Publish", f.accountID, "invoice.paid", mock.Anything)
}

func TestRecordPartialPaymentsSumToPaidAmount(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	inv := f.invoice(billing.StatusSent)
	f.invoiceRepo.On("FindByIDForUpdate", mock.Anything, f.accountID, inv.ID).Return(inv, nil)
	f.invoiceRepo.On("CreatePayment", mock.Anything, mock.AnythingOfType("*model.Payment")).Return(nil)
	f.invoiceRepo.On("Update", mock.Anything, inv).Return(nil)

	first, err := f.svc.RecordPayment(context.Background(), f.accountID, nil, inv.ID.String(), RecordPaymentRequest{
		Amount: "200.00",
		Method: model.PaymentMethodCash,
		Date:   "2026-08-20",
	})
	assert.NoError(t, err)
	assert.Equal(t, billing.StatusSent, inv.Status)
	assert.Equal(t, "205.00", first.Invoice.Balance)
	f.notifier.AssertCalled(t, "Publish", f.accountID, "payment.recorded", mock.Anything)

	second, err := f.svc.RecordPayment(context.Background(), f.accountID, nil, inv.ID.String(), RecordPaymentRequest{
		Amount: "205.00",
		Method: model.PaymentMethodCard,
		Date:   "2026-08-31",
	})
	assert.NoError(t, err)
	assert.Equal(t, billing.StatusPaid, inv.Status)
	assert.Equal(t, "405.00", inv.PaidAmount.StringFixed(2))
	assert.Equal(t, "0.00", second.Invoice.Balance)
	// PaymentDate tracks the most recent payment.
	assert.Equal(t, "2026-08-31", *second.Invoice.PaymentDate)
}

func TestRecordPaymentOverpaymentRejected(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	inv := f.invoice(billing.StatusSent)
	inv.PaidAmount = decimal.RequireFromString("400.00")
	f.invoiceRepo.On("FindByIDForUpdate", mock.Anything, f.accountID, inv.ID).Return(inv, nil)

	_, err := f.svc.RecordPayment(context.Background(), f.accountID, nil, inv.ID.String(), RecordPaymentRequest{
		Amount: "10.00",
		Method: model.PaymentMethodCash,
		Date:   "2026-08-31",
	})

	assert.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindOverpayment))
	assert.Contains(t, err.Error(), "5.00") // remaining balance named in the message

	// Never clamped, never partially applied.
	assert.Equal(t, "400.00", inv.PaidAmount.StringFixed(2))
	assert.Equal(t, billing.StatusSent, inv.Status)
	f.invoiceRepo.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything)
	f.invoiceRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestRecordPaymentOnDraftSettlesInFull(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	// A full payment settles any open invoice, even one never sent.
	inv := f.invoice(billing.StatusDraft)
	f.invoiceRepo.On("FindByIDForUpdate", mock.Anything, f.accountID, inv.ID).Return(inv, nil)
	f.invoiceRepo.On("CreatePayment", mock.Anything, mock.AnythingOfType("*model.Payment")).Return(nil)
	f.invoiceRepo.On("Update", mock.Anything, inv).Return(nil)

	result, err := f.svc.RecordPayment(context.Background(), f.accountID, nil, inv.ID.String(), RecordPaymentRequest{
		Amount: "405.00",
		Method: model.PaymentMethodCash,
		Date:   "2026-08-31",
	})

	assert.NoError(t, err)
	assert.Equal(t, billing.StatusPaid, inv.Status)
	assert.Equal(t, "PAID", result.Invoice.Status)
	assert.Equal(t, "0.00", result.Invoice.Balance)
	f.notifier.AssertCalled(t, "Publish", f.accountID, "invoice.paid", mock.Anything)
}

func TestRecordPaymentRejectedWhenAlreadyPaid(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	inv := f.invoice(billing.StatusPaid)
	inv.PaidAmount = inv.TotalAmount
	f.invoiceRepo.On("FindByIDForUpdate", mock.Anything, f.accountID, inv.ID).Return(inv, nil)

	_, err := f.svc.RecordPayment(context.Background(), f.accountID, nil, inv.ID.String(), RecordPaymentRequest{
		Amount: "10.00",
		Method: model.PaymentMethodCash,
		Date:   "2026-08-31",
	})

	assert.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindStateConflict))
	f.invoiceRepo.AssertNotCalled(t, "CreatePayment", mock.Anything, mock.Anything)
}

func TestRecordPaymentRejectsNonPositiveAmount(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	for _, amount := range []string{"0", "-5.00", "abc"} {
		_, err := f.svc.RecordPayment(context.Background(), f.accountID, nil, uuid.NewString(), RecordPaymentRequest{
			Amount: amount,
			Method: model.PaymentMethodCash,
			Date:   "2026-08-31",
		})
		assert.Error(t, err, "amount %q", amount)
		assert.True(t, apperr.Is(err, apperr.KindValidation), "amount %q", amount)
	}
}

// --- Delete ---

func TestDeleteRejectedWithPayments(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	inv := f.invoice(billing.StatusSent)
	inv.PaidAmount = decimal.RequireFromString("100.00")
	f.invoiceRepo.On("FindByIDForUpdate", mock.Anything, f.accountID, inv.ID).Return(inv, nil)

	err := f.svc.Delete(context.Background(), f.accountID, nil, inv.ID.String())

	assert.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindStateConflict))
	f.invoiceRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteUnpaidInvoice(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	inv := f.invoice(billing.StatusDraft)
	f.invoiceRepo.On("FindByIDForUpdate", mock.Anything, f.accountID, inv.ID).Return(inv, nil)
	f.invoiceRepo.On("Delete", mock.Anything, f.accountID, inv.ID).Return(nil)

	assert.NoError(t, f.svc.Delete(context.Background(), f.accountID, nil, inv.ID.String()))
	f.invoiceRepo.AssertCalled(t, "Delete", mock.Anything, f.accountID, inv.ID)
}

// --- Read-time overdue projection ---

func TestGetProjectsOverdueStatus(t *testing.T) {
	f := newInvoiceServiceFixture(t)

	inv := f.invoice(billing.StatusSent)
	inv.DueDate = f.now.AddDate(0, 0, -5)
	f.invoiceRepo.On("FindByIDWithPayments", mock.Anything, f.accountID, inv.ID).Return(inv, nil)

	resp, err := f.svc.Get(context.Background(), f.accountID, inv.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, "OVERDUE", resp.Status)
	// Stored status untouched: the projection is read-time only.
	assert.Equal(t, billing.StatusSent, inv.Status)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
