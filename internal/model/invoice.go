package model

import (
	"time"

	"fieldops/internal/billing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentMethod enum constants
const (
	PaymentMethodCash  = "CASH"
	PaymentMethodCheck = "CHECK"
	PaymentMethodCard  = "CARD"
	PaymentMethodACH   = "ACH"
	PaymentMethodOther = "OTHER"
)

// Invoice is the billing document for one job. Monetary fields are derived
// by the billing calculator and frozen once the invoice leaves DRAFT.
type Invoice struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AccountID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_invoices_account_no;index" json:"account_id"`
	JobID     uuid.UUID `gorm:"type:uuid;not null;index" json:"job_id"`

	CustomerID uuid.UUID `gorm:"type:uuid;not null;index" json:"customer_id"`

	InvoiceNo   string    `gorm:"type:varchar(30);not null;uniqueIndex:idx_invoices_account_no" json:"invoice_no"`
	InvoiceDate time.Time `gorm:"type:date;not null" json:"invoice_date"`
	DueDate     time.Time `gorm:"type:date;not null" json:"due_date"`

	LaborHours   *decimal.Decimal `gorm:"type:decimal(10,2)" json:"labor_hours"`
	HourlyRate   *decimal.Decimal `gorm:"type:decimal(18,4)" json:"hourly_rate"`
	LaborAmount  decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0" json:"labor_amount"`
	MaterialCost decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0" json:"material_cost"`
	Subtotal     decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0" json:"subtotal"`
	TaxRate      decimal.Decimal  `gorm:"type:decimal(10,4);not null;default:0" json:"tax_rate"` // fraction, e.g. 0.08 = 8%
	TaxAmount    decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0" json:"tax_amount"`
	TotalAmount  decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0" json:"total_amount"`
	PaidAmount   decimal.Decimal  `gorm:"type:decimal(18,2);not null;default:0" json:"paid_amount"`

	Status      billing.Status `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	SentAt      *time.Time     `json:"sent_at"`
	ViewedAt    *time.Time     `json:"viewed_at"`
	AcceptedAt  *time.Time     `json:"accepted_at"`
	PaymentDate *time.Time     `gorm:"type:date" json:"payment_date"` // date of the most recent payment

	Notes string `gorm:"type:text" json:"notes"`

	Payments []Payment `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Payment is one immutable receipt against an invoice. Corrections are new
// entries, never edits, so the ledger stays an audit trail.
type Payment struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AccountID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"account_id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	Method      string          `gorm:"type:varchar(20);not null" json:"method"` // CASH, CHECK, CARD, ACH, OTHER
	PaymentDate time.Time       `gorm:"type:date;not null" json:"payment_date"`
	Reference   string          `gorm:"type:varchar(100)" json:"reference"`
	Notes       string          `gorm:"type:text" json:"notes"`
	CreatedAt   time.Time       `json:"created_at"`
}
