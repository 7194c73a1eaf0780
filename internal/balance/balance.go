// Package balance computes realized and projected account balances.
//
// All arithmetic is exact fixed-point decimal. The only rounding happens
// in RecomputeOnInsert, which floors debits to whole units before
// subtracting while credits keep full precision. The rule is asymmetric
// on purpose; it mirrors how the business records expected impact of
// pending debits.
package balance

import (
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits for all monetary values.
const Scale = 2

// Projected returns the balance that would result if every pending fund
// settling at or before asOf were applied to the stored balance.
// Funds with a later settlement date are excluded.
func Projected(stored decimal.Decimal, funds []domain.IncomingFund, asOf time.Time) (decimal.Decimal, error) {
	projected := stored

	for _, f := range funds {
		if f.SettlementDate.After(asOf) {
			continue
		}

		amount, err := decimal.NewFromString(f.Amount)
		if err != nil {
			return decimal.Decimal{}, err
		}

		projected = projected.Add(amount)
	}

	return projected, nil
}

// RecomputeOnInsert produces the account's new projected balance when a
// fund with the incoming amount is added to the given pending funds.
//
// Debits contribute minus their absolute value rounded to whole units
// (half away from zero); credits contribute their full amount. Zero
// amounts contribute nothing. The result starts from zero: it is a
// projection over pending funds only, never the realized balance.
func RecomputeOnInsert(incoming decimal.Decimal, funds []domain.IncomingFund) (decimal.Decimal, error) {
	projected := apply(decimal.Zero, incoming)

	for _, f := range funds {
		amount, err := decimal.NewFromString(f.Amount)
		if err != nil {
			return decimal.Decimal{}, err
		}

		projected = apply(projected, amount)
	}

	return projected, nil
}

func apply(total, amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return total.Sub(amount.Abs().Round(0))
	}

	return total.Add(amount)
}

// StripZone normalizes t to the canonical timezone-naive form: the wall
// clock reading is kept and the zone information is dropped. Settlement
// dates must pass through here before storage or comparison.
func StripZone(t time.Time) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	return time.Date(year, month, day, hour, min, sec, t.Nanosecond(), time.UTC)
}
