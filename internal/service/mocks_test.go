package service

import (
	"context"

	"fieldops/internal/model"
	"fieldops/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// --- Repository mocks ---

type mockInvoiceRepo struct {
	mock.Mock
}

func (m *mockInvoiceRepo) Create(ctx context.Context, invoice *model.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *mockInvoiceRepo) Update(ctx context.Context, invoice *model.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func (m *mockInvoiceRepo) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	return m.Called(ctx, accountID, id).Error(0)
}

func (m *mockInvoiceRepo) FindByID(ctx context.Context, accountID, id uuid.UUID) (*model.Invoice, error) {
	args := m.Called(ctx, accountID, id)
	if inv := args.Get(0); inv != nil {
		return inv.(*model.Invoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInvoiceRepo) FindByIDForUpdate(ctx context.Context, accountID, id uuid.UUID) (*model.Invoice, error) {
	args := m.Called(ctx, accountID, id)
	if inv := args.Get(0); inv != nil {
		return inv.(*model.Invoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInvoiceRepo) FindByIDWithPayments(ctx context.Context, accountID, id uuid.UUID) (*model.Invoice, error) {
	args := m.Called(ctx, accountID, id)
	if inv := args.Get(0); inv != nil {
		return inv.(*model.Invoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInvoiceRepo) List(ctx context.Context, accountID uuid.UUID, filter repository.InvoiceListFilter) ([]model.Invoice, int64, error) {
	args := m.Called(ctx, accountID, filter)
	var invoices []model.Invoice
	if v := args.Get(0); v != nil {
		invoices = v.([]model.Invoice)
	}
	return invoices, args.Get(1).(int64), args.Error(2)
}

func (m *mockInvoiceRepo) CountByPrefix(ctx context.Context, accountID uuid.UUID, prefix string) (int64, error) {
	args := m.Called(ctx, accountID, prefix)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockInvoiceRepo) CreatePayment(ctx context.Context, payment *model.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *mockInvoiceRepo) ListPayments(ctx context.Context, accountID, invoiceID uuid.UUID) ([]model.Payment, error) {
	args := m.Called(ctx, accountID, invoiceID)
	var payments []model.Payment
	if v := args.Get(0); v != nil {
		payments = v.([]model.Payment)
	}
	return payments, args.Error(1)
}

type mockJobRepo struct {
	mock.Mock
}

func (m *mockJobRepo) Create(ctx context.Context, job *model.Job) error {
	return m.Called(ctx, job).Error(0)
}

func (m *mockJobRepo) Update(ctx context.Context, job *model.Job) error {
	return m.Called(ctx, job).Error(0)
}

func (m *mockJobRepo) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	return m.Called(ctx, accountID, id).Error(0)
}

func (m *mockJobRepo) FindByID(ctx context.Context, accountID, id uuid.UUID) (*model.Job, error) {
	args := m.Called(ctx, accountID, id)
	if job := args.Get(0); job != nil {
		return job.(*model.Job), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockJobRepo) List(ctx context.Context, accountID uuid.UUID, status string, customerID *uuid.UUID, page, limit int) ([]model.Job, int64, error) {
	args := m.Called(ctx, accountID, status, customerID, page, limit)
	var jobs []model.Job
	if v := args.Get(0); v != nil {
		jobs = v.([]model.Job)
	}
	return jobs, args.Get(1).(int64), args.Error(2)
}

type mockCustomerRepo struct {
	mock.Mock
}

func (m *mockCustomerRepo) Create(ctx context.Context, customer *model.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *mockCustomerRepo) Update(ctx context.Context, customer *model.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *mockCustomerRepo) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	return m.Called(ctx, accountID, id).Error(0)
}

func (m *mockCustomerRepo) FindByID(ctx context.Context, accountID, id uuid.UUID) (*model.Customer, error) {
	args := m.Called(ctx, accountID, id)
	if c := args.Get(0); c != nil {
		return c.(*model.Customer), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCustomerRepo) List(ctx context.Context, accountID uuid.UUID, search string, page, limit int) ([]model.Customer, int64, error) {
	args := m.Called(ctx, accountID, search, page, limit)
	var customers []model.Customer
	if v := args.Get(0); v != nil {
		customers = v.([]model.Customer)
	}
	return customers, args.Get(1).(int64), args.Error(2)
}

type mockAccountRepo struct {
	mock.Mock
}

func (m *mockAccountRepo) Create(ctx context.Context, account *model.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *mockAccountRepo) Update(ctx context.Context, account *model.Account) error {
	return m.Called(ctx, account).Error(0)
}

func (m *mockAccountRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Account, error) {
	args := m.Called(ctx, id)
	if a := args.Get(0); a != nil {
		return a.(*model.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAccountRepo) FindByName(ctx context.Context, name string) (*model.Account, error) {
	args := m.Called(ctx, name)
	if a := args.Get(0); a != nil {
		return a.(*model.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

// stubTxManager runs the function directly: the mocked repositories have no
// real transaction to join.
type stubTxManager struct{}

func (stubTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

// --- Collaborator mocks ---

type mockRenderer struct {
	mock.Mock
}

func (m *mockRenderer) RenderInvoice(ctx context.Context, invoice *model.Invoice, customer *model.Customer) ([]byte, error) {
	args := m.Called(ctx, invoice, customer)
	var pdf []byte
	if v := args.Get(0); v != nil {
		pdf = v.([]byte)
	}
	return pdf, args.Error(1)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendInvoice(ctx context.Context, recipient string, invoice *model.Invoice, pdf []byte) error {
	return m.Called(ctx, recipient, invoice, pdf).Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Publish(accountID uuid.UUID, event string, payload interface{}) {
	m.Called(accountID, event, payload)
}

type mockAudit struct {
	mock.Mock
}

func (m *mockAudit) Record(ctx context.Context, accountID uuid.UUID, userID *uuid.UUID, action, entityID, entityName string) {
	m.Called(ctx, accountID, userID, action, entityID, entityName)
}
