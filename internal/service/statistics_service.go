package service

import (
	"context"
	"time"

	"fieldops/internal/billing"
	"fieldops/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RevenueDataPoint struct {
	Period      string `json:"period"` // YYYY-MM
	Billed      string `json:"billed"`
	Collected   string `json:"collected"`
	Outstanding string `json:"outstanding"`
}

type RevenueSummary struct {
	StartDate        time.Time          `json:"start_date"`
	EndDate          time.Time          `json:"end_date"`
	TotalBilled      string             `json:"total_billed"`
	TotalCollected   string             `json:"total_collected"`
	TotalOutstanding string             `json:"total_outstanding"`
	OpenInvoices     int64              `json:"open_invoices"`
	Monthly          []RevenueDataPoint `json:"monthly"`
}

type StatisticsService interface {
	GetRevenue(ctx context.Context, accountID uuid.UUID, startDate, endDate time.Time) (RevenueSummary, error)
}

type statisticsService struct {
	db *gorm.DB
}

func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

// GetRevenue aggregates billed vs collected amounts across issued invoices.
// Drafts are excluded: an unsent invoice is not yet revenue.
func (s *statisticsService) GetRevenue(ctx context.Context, accountID uuid.UUID, startDate, endDate time.Time) (RevenueSummary, error) {
	summary := RevenueSummary{StartDate: startDate, EndDate: endDate}

	var totals struct {
		Billed    decimal.Decimal
		Collected decimal.Decimal
	}
	err := s.db.WithContext(ctx).Model(&model.Invoice{}).
		Select("COALESCE(SUM(total_amount), 0) as billed, COALESCE(SUM(paid_amount), 0) as collected").
		Where("account_id = ? AND status <> ? AND invoice_date >= ? AND invoice_date <= ?",
			accountID, billing.StatusDraft, startDate, endDate).
		Scan(&totals).Error
	if err != nil {
		return RevenueSummary{}, err
	}

	var openInvoices int64
	err = s.db.WithContext(ctx).Model(&model.Invoice{}).
		Where("account_id = ? AND status NOT IN ? AND invoice_date >= ? AND invoice_date <= ?",
			accountID, []billing.Status{billing.StatusDraft, billing.StatusPaid}, startDate, endDate).
		Count(&openInvoices).Error
	if err != nil {
		return RevenueSummary{}, err
	}

	var monthly []struct {
		Period    string
		Billed    decimal.Decimal
		Collected decimal.Decimal
	}
	err = s.db.WithContext(ctx).Model(&model.Invoice{}).
		Select("to_char(invoice_date, 'YYYY-MM') as period, COALESCE(SUM(total_amount), 0) as billed, COALESCE(SUM(paid_amount), 0) as collected").
		Where("account_id = ? AND status <> ? AND invoice_date >= ? AND invoice_date <= ?",
			accountID, billing.StatusDraft, startDate, endDate).
		Group("to_char(invoice_date, 'YYYY-MM')").
		Order("period ASC").
		Scan(&monthly).Error
	if err != nil {
		return RevenueSummary{}, err
	}

	summary.TotalBilled = totals.Billed.StringFixed(2)
	summary.TotalCollected = totals.Collected.StringFixed(2)
	summary.TotalOutstanding = totals.Billed.Sub(totals.Collected).StringFixed(2)
	summary.OpenInvoices = openInvoices

	summary.Monthly = make([]RevenueDataPoint, 0, len(monthly))
	for _, m := range monthly {
		summary.Monthly = append(summary.Monthly, RevenueDataPoint{
			Period:      m.Period,
			Billed:      m.Billed.StringFixed(2),
			Collected:   m.Collected.StringFixed(2),
			Outstanding: m.Billed.Sub(m.Collected).StringFixed(2),
		})
	}

	return summary, nil
}
