package database

import (
	"log"
	"time"

	"fieldops/internal/model"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed creates a demo account with an admin user, a customer, and two jobs.
// It is idempotent: keyed on the account name, a second run is a no-op.
func Seed(db *gorm.DB) error {
	var existing model.Account
	err := db.Where("name = ?", "Acme Field Services").First(&existing).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	account := model.Account{
		Name:           "Acme Field Services",
		ContactEmail:   "office@acmefield.example",
		Phone:          "555-0100",
		Address:        "100 Main St, Springfield",
		DefaultTaxRate: decimal.RequireFromString("0.08"),
	}
	if err := db.Create(&account).Error; err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := model.User{
		AccountID: account.ID,
		Name:      "Admin",
		Email:     "admin@acmefield.example",
		Password:  string(hashed),
		Role:      model.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	customer := model.Customer{
		AccountID: account.ID,
		Name:      "Jane Homeowner",
		Email:     "jane@example.com",
		Phone:     "555-0199",
		Address:   "42 Elm St, Springfield",
		IsActive:  true,
	}
	if err := db.Create(&customer).Error; err != nil {
		return err
	}

	scheduled := time.Now().Add(48 * time.Hour)
	completed := time.Now().Add(-24 * time.Hour)
	jobs := []model.Job{
		{
			AccountID:   account.ID,
			CustomerID:  customer.ID,
			Title:       "Water heater replacement",
			Description: "Replace 40-gallon water heater in basement",
			Status:      model.JobStatusCompleted,
			CompletedAt: &completed,
		},
		{
			AccountID:   account.ID,
			CustomerID:  customer.ID,
			Title:       "Annual HVAC inspection",
			Status:      model.JobStatusScheduled,
			ScheduledAt: &scheduled,
		},
	}
	for i := range jobs {
		if err := db.Create(&jobs[i]).Error; err != nil {
			return err
		}
	}

	log.Println("Seeded demo account:", account.Name)
	return nil
}
