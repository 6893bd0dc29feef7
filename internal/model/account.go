package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Account is the tenant root: every customer, job, invoice, and payment
// belongs to exactly one account.
type Account struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name           string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	ContactEmail   string          `gorm:"type:varchar(255)" json:"contact_email"`
	Phone          string          `gorm:"type:varchar(50)" json:"phone"`
	Address        string          `gorm:"type:text" json:"address"`
	DefaultTaxRate decimal.Decimal `gorm:"type:decimal(10,4);not null;default:0" json:"default_tax_rate"` // fraction, e.g. 0.08 = 8%
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}
