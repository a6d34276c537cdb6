// Package pricing computes the premium charged for a policy.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/arrendix/protecciones/internal/config"
	"github.com/arrendix/protecciones/internal/policy"
	xerrors "github.com/arrendix/protecciones/internal/xerrors"
)

// bracket applies rate to monthly rents up to and including Max.
// A zero Max closes the table.
type bracket struct {
	Max  decimal.Decimal
	Rate decimal.Decimal
}

var brackets = []bracket{
	{Max: decimal.NewFromInt(15000), Rate: decimal.RequireFromString("0.40")},
	{Max: decimal.NewFromInt(40000), Rate: decimal.RequireFromString("0.35")},
	{Max: decimal.Zero, Rate: decimal.RequireFromString("0.30")},
}

// A guarantor lowers the risk, and the rate, of a policy.
var guarantorDiscount = map[policy.GuarantorType]decimal.Decimal{
	policy.GuarantorNone:         decimal.Zero,
	policy.GuarantorJointObligor: decimal.RequireFromString("0.05"),
	policy.GuarantorAval:         decimal.RequireFromString("0.05"),
	policy.GuarantorBoth:         decimal.RequireFromString("0.10"),
}

var minimumPremium = decimal.NewFromInt(3500)

// Quote is a priced policy.
type Quote struct {
	Rent       decimal.Decimal `json:"rent"`
	Rate       decimal.Decimal `json:"rate"`
	Premium    decimal.Decimal `json:"premium"`
	IVA        decimal.Decimal `json:"iva"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
}

type Calculator struct {
	ivaRate decimal.Decimal
}

func NewCalculator(cfg config.PricingConfig) *Calculator {
	rate := cfg.IVARate
	if rate.IsZero() {
		rate = decimal.RequireFromString("0.16")
	}
	return &Calculator{ivaRate: rate}
}

// Quote prices a policy for a monthly rent.
func (c *Calculator) Quote(rent decimal.Decimal, g policy.GuarantorType) (Quote, error) {
	if !rent.IsPositive() {
		return Quote{}, fmt.Errorf("%w: rent must be positive", xerrors.ErrInvalidInput)
	}
	discount, ok := guarantorDiscount[g]
	if !ok {
		return Quote{}, fmt.Errorf("%w: unknown guarantor type %q", xerrors.ErrInvalidInput, g)
	}

	rate := rateFor(rent).Sub(discount)
	premium := rent.Mul(rate).Round(2)
	if premium.LessThan(minimumPremium) {
		premium = minimumPremium
	}
	iva := premium.Mul(c.ivaRate).Round(2)

	return Quote{
		Rent:       rent.Round(2),
		Rate:       rate,
		Premium:    premium,
		IVA:        iva,
		TotalPrice: premium.Add(iva),
	}, nil
}

func rateFor(rent decimal.Decimal) decimal.Decimal {
	for _, b := range brackets {
		if b.Max.IsZero() || rent.LessThanOrEqual(b.Max) {
			return b.Rate
		}
	}
	return brackets[len(brackets)-1].Rate
}
