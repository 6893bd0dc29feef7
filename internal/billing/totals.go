// Package billing holds the pure invoice domain: totals computation and the
// status state machine. Nothing here touches storage or transport.
package billing

import (
	"fieldops/internal/apperr"

	"github.com/shopspring/decimal"
)

// TotalsInput carries the financial inputs of an invoice. LaborHours and
// HourlyRate are optional; when either is nil the labor amount is zero.
// TaxRate is a fraction (0.08 = 8%), never a percentage.
type TotalsInput struct {
	LaborHours   *decimal.Decimal
	HourlyRate   *decimal.Decimal
	MaterialCost decimal.Decimal
	TaxRate      decimal.Decimal
}

// Totals are the derived monetary fields, each rounded to 2 decimal places
// at the point it becomes a stored field.
type Totals struct {
	LaborAmount decimal.Decimal
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	TotalAmount decimal.Decimal
}

// ComputeTotals derives labor amount, subtotal, tax, and total from the
// inputs. Deterministic and side-effect free: recomputation fully replaces
// the derived fields, it never adjusts them incrementally. Negative inputs
// are rejected; an all-zero invoice is legal (courtesy/warranty work).
//
// Rounding is half-up to 2 decimals and happens only where a value is
// stored: the hours-by-rate product is carried exactly until it lands in
// LaborAmount, and the tax product until it lands in TaxAmount.
func ComputeTotals(in TotalsInput) (Totals, error) {
	if in.LaborHours != nil && in.LaborHours.IsNegative() {
		return Totals{}, apperr.Validationf("labor_hours must not be negative")
	}
	if in.HourlyRate != nil && in.HourlyRate.IsNegative() {
		return Totals{}, apperr.Validationf("hourly_rate must not be negative")
	}
	if in.MaterialCost.IsNegative() {
		return Totals{}, apperr.Validationf("material_cost must not be negative")
	}
	if in.TaxRate.IsNegative() {
		return Totals{}, apperr.Validationf("tax_rate must not be negative")
	}

	labor := decimal.Zero
	if in.LaborHours != nil && in.HourlyRate != nil {
		labor = in.LaborHours.Mul(*in.HourlyRate).Round(2)
	}

	subtotal := labor.Add(in.MaterialCost).Round(2)
	tax := subtotal.Mul(in.TaxRate).Round(2)
	total := subtotal.Add(tax)

	return Totals{
		LaborAmount: labor,
		Subtotal:    subtotal,
		TaxAmount:   tax,
		TotalAmount: total,
	}, nil
}
