package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arrendix/protecciones/internal/config"
	"github.com/arrendix/protecciones/internal/policy"
	xerrors "github.com/arrendix/protecciones/internal/xerrors"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestQuote(t *testing.T) {
	calc := NewCalculator(config.PricingConfig{})

	tests := []struct {
		name      string
		rent      string
		guarantor policy.GuarantorType
		premium   string
		iva       string
		total     string
	}{
		{"low bracket", "12000", policy.GuarantorNone, "4800", "768", "5568"},
		{"bracket edge", "15000", policy.GuarantorNone, "6000", "960", "6960"},
		{"middle bracket with aval", "20000", policy.GuarantorAval, "6000", "960", "6960"},
		{"top bracket with both", "50000", policy.GuarantorBoth, "10000", "1600", "11600"},
		{"minimum premium", "5000", policy.GuarantorNone, "3500", "560", "4060"},
		{"cents", "12345.67", policy.GuarantorNone, "4938.27", "790.12", "5728.39"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := calc.Quote(d(tt.rent), tt.guarantor)
			require.NoError(t, err)
			assert.True(t, q.Premium.Equal(d(tt.premium)), "premium %s", q.Premium)
			assert.True(t, q.IVA.Equal(d(tt.iva)), "iva %s", q.IVA)
			assert.True(t, q.TotalPrice.Equal(d(tt.total)), "total %s", q.TotalPrice)
		})
	}
}

func TestQuote_CustomIVA(t *testing.T) {
	q, err := NewCalculator(config.PricingConfig{IVARate: d("0.08")}).Quote(d("12000"), policy.GuarantorNone)
	require.NoError(t, err)
	assert.True(t, q.IVA.Equal(d("384")))
}

func TestQuote_InvalidInput(t *testing.T) {
	calc := NewCalculator(config.PricingConfig{})

	_, err := calc.Quote(decimal.Zero, policy.GuarantorNone)
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

	_, err = calc.Quote(d("-10"), policy.GuarantorNone)
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)

	_, err = calc.Quote(d("10000"), "SPOUSE")
	assert.ErrorIs(t, err, xerrors.ErrInvalidInput)
}
