package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateInvoice = "CREATE_INVOICE"
	ActionRecalculate   = "RECALCULATE_INVOICE"
	ActionSendInvoice   = "SEND_INVOICE"
	ActionMarkViewed    = "MARK_INVOICE_VIEWED"
	ActionAcceptInvoice = "ACCEPT_INVOICE"
	ActionRecordPayment = "RECORD_PAYMENT"
	ActionDeleteInvoice = "DELETE_INVOICE"
)

// AuditLog tracks Who, What, and When for invoice lifecycle changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	AccountID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"account_id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/invoice no)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
