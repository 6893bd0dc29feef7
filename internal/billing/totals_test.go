package billing

import (
	"testing"

	"fieldops/internal/apperr"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name         string
		in           TotalsInput
		wantLabor    string
		wantSubtotal string
		wantTax      string
		wantTotal    string
	}{
		{
			name: "labor plus materials with tax",
			in: TotalsInput{
				LaborHours:   decPtr("3"),
				HourlyRate:   decPtr("85"),
				MaterialCost: dec("120"),
				TaxRate:      dec("0.08"),
			},
			wantLabor:    "255.00",
			wantSubtotal: "375.00",
			wantTax:      "30.00",
			wantTotal:    "405.00",
		},
		{
			name: "fractional hours round half-up",
			in: TotalsInput{
				LaborHours:   decPtr("1.5"),
				HourlyRate:   decPtr("99.99"),
				MaterialCost: dec("0"),
				TaxRate:      dec("0"),
			},
			// 1.5 * 99.99 = 149.985 -> 149.99
			wantLabor:    "149.99",
			wantSubtotal: "149.99",
			wantTax:      "0.00",
			wantTotal:    "149.99",
		},
		{
			name: "tax rounds on the subtotal, not per component",
			in: TotalsInput{
				LaborHours:   decPtr("2"),
				HourlyRate:   decPtr("33.33"),
				MaterialCost: dec("10.01"),
				TaxRate:      dec("0.0825"),
			},
			// subtotal 76.67, tax 6.325275 -> 6.33
			wantLabor:    "66.66",
			wantSubtotal: "76.67",
			wantTax:      "6.33",
			wantTotal:    "83.00",
		},
		{
			name: "missing hourly rate yields zero labor",
			in: TotalsInput{
				LaborHours:   decPtr("4"),
				HourlyRate:   nil,
				MaterialCost: dec("50"),
				TaxRate:      dec("0.10"),
			},
			wantLabor:    "0.00",
			wantSubtotal: "50.00",
			wantTax:      "5.00",
			wantTotal:    "55.00",
		},
		{
			name:         "all-zero invoice is legal",
			in:           TotalsInput{MaterialCost: dec("0"), TaxRate: dec("0")},
			wantLabor:    "0.00",
			wantSubtotal: "0.00",
			wantTax:      "0.00",
			wantTotal:    "0.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeTotals(tt.in)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantLabor, got.LaborAmount.StringFixed(2))
			assert.Equal(t, tt.wantSubtotal, got.Subtotal.StringFixed(2))
			assert.Equal(t, tt.wantTax, got.TaxAmount.StringFixed(2))
			assert.Equal(t, tt.wantTotal, got.TotalAmount.StringFixed(2))
		})
	}
}

func TestComputeTotalsRejectsNegatives(t *testing.T) {
	tests := []struct {
		name string
		in   TotalsInput
	}{
		{"negative hours", TotalsInput{LaborHours: decPtr("-1"), HourlyRate: decPtr("85")}},
		{"negative rate", TotalsInput{LaborHours: decPtr("1"), HourlyRate: decPtr("-85")}},
		{"negative materials", TotalsInput{MaterialCost: dec("-0.01")}},
		{"negative tax rate", TotalsInput{TaxRate: dec("-0.08")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeTotals(tt.in)
			assert.Error(t, err)
			assert.True(t, apperr.Is(err, apperr.KindValidation))
		})
	}
}

func TestComputeTotalsIsDeterministic(t *testing.T) {
	in := TotalsInput{
		LaborHours:   decPtr("7.25"),
		HourlyRate:   decPtr("112.50"),
		MaterialCost: dec("384.17"),
		TaxRate:      dec("0.0875"),
	}

	first, err := ComputeTotals(in)
	assert.NoError(t, err)
	for i := 0; i < 100; i++ {
		again, err := ComputeTotals(in)
		assert.NoError(t, err)
		assert.True(t, first.TotalAmount.Equal(again.TotalAmount))
		assert.True(t, first.TaxAmount.Equal(again.TaxAmount))
	}
}
