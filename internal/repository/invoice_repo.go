package repository

import (
	"context"

	"fieldops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InvoiceListFilter narrows List results. Status filters on the stored
// status column; the OVERDUE projection is applied by the service layer.
type InvoiceListFilter struct {
	Status     string
	CustomerID *uuid.UUID
	JobID      *uuid.UUID
	Page       int
	Limit      int
}

// InvoiceRepository is account-scoped: every lookup carries the owning
// account id so cross-tenant ids behave as missing records.
type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	Update(ctx context.Context, invoice *model.Invoice) error
	Delete(ctx context.Context, accountID, id uuid.UUID) error
	FindByID(ctx context.Context, accountID, id uuid.UUID) (*model.Invoice, error)
	FindByIDForUpdate(ctx context.Context, accountID, id uuid.UUID) (*model.Invoice, error)
	FindByIDWithPayments(ctx context.Context, accountID, id uuid.UUID) (*model.Invoice, error)
	List(ctx context.Context, accountID uuid.UUID, filter InvoiceListFilter) ([]model.Invoice, int64, error)
	CountByPrefix(ctx context.Context, accountID uuid.UUID, prefix string) (int64, error)
	CreatePayment(ctx context.Context, payment *model.Payment) error
	ListPayments(ctx context.Context, accountID, invoiceID uuid.UUID) ([]model.Payment, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Create(invoice).Error
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Save(invoice).Error
}

func (r *invoiceRepository) Delete(ctx context.Context, accountID, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("account_id = ? AND id = ?", accountID, id).Delete(&model.Invoice{}).Error
}

func (r *invoiceRepository) FindByID(ctx context.Context, accountID, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := GetDB(ctx, r.db).First(&invoice, "account_id = ? AND id = ?", accountID, id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

// FindByIDForUpdate locks the invoice row for the remainder of the current
// transaction. Concurrent payment submissions against the same invoice
// serialize here, so the overpayment check cannot race.
func (r *invoiceRepository) FindByIDForUpdate(ctx context.Context, accountID, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&invoice, "account_id = ? AND id = ?", accountID, id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindByIDWithPayments(ctx context.Context, accountID, id uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	err := GetDB(ctx, r.db).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("payments.created_at ASC") }).
		First(&invoice, "account_id = ? AND id = ?", accountID, id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) List(ctx context.Context, accountID uuid.UUID, filter InvoiceListFilter) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	db := GetDB(ctx, r.db)
	apply := func(q *gorm.DB) *gorm.DB {
		q = q.Where("account_id = ?", accountID)
		if filter.Status != "" {
			q = q.Where("status = ?", filter.Status)
		}
		if filter.CustomerID != nil {
			q = q.Where("customer_id = ?", *filter.CustomerID)
		}
		if filter.JobID != nil {
			q = q.Where("job_id = ?", *filter.JobID)
		}
		return q
	}

	if err := apply(db.Model(&model.Invoice{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := apply(db.Model(&model.Invoice{})).Order("created_at DESC").Offset(offset).Limit(filter.Limit).Find(&invoices).Error; err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

func (r *invoiceRepository) CountByPrefix(ctx context.Context, accountID uuid.UUID, prefix string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Invoice{}).
		Unscoped(). // soft-deleted invoices still consume their sequence slot
		Where("account_id = ? AND invoice_no LIKE ?", accountID, prefix+"%").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *invoiceRepository) CreatePayment(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Create(payment).Error
}

func (r *invoiceRepository) ListPayments(ctx context.Context, accountID, invoiceID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	err := GetDB(ctx, r.db).
		Where("account_id = ? AND invoice_id = ?", accountID, invoiceID).
		Order("created_at ASC").
		Find(&payments).Error
	if err != nil {
		return nil, err
	}
	return payments, nil
}
