package finance

import (
	"github.com/shopspring/decimal"

	"github.com/subscriptio/subscriptio/internal/models"
)

var hundred = decimal.NewFromInt(100)

// ComputeSplits maps each participant share to an owed amount for the given
// total: percent shares take total*value/100, fixed shares take the value
// as-is. Each amount is rounded half-up to cents.
//
// This is a pure per-participant mapping. Nothing enforces that percentages
// sum to 100 or that fixed shares cover the total; use ValidateSplit to check
// a payment's splits against its amount.
func ComputeSplits(participants []models.ParticipantShare, total float64) []models.Split {
	if len(participants) == 0 {
		return nil
	}

	// Shares are computed in decimal so that e.g. 25% of 19.99 is exactly
	// 4.9975 before rounding, not a float64 an ulp below it.
	totalDec := decimal.NewFromFloat(total)
	splits := make([]models.Split, 0, len(participants))
	for _, p := range participants {
		var amount decimal.Decimal
		switch p.Kind {
		case models.SharePercent:
			amount = totalDec.Mul(decimal.NewFromFloat(p.Value)).Div(hundred)
		case models.ShareFixed:
			amount = decimal.NewFromFloat(p.Value)
		}
		rounded, _ := amount.Round(2).Float64()
		splits = append(splits, models.Split{
			PersonID: p.PersonID,
			Amount:   rounded,
		})
	}
	return splits
}

// SplitCheck is the result of comparing a payment's splits to its total.
type SplitCheck struct {
	// Valid is true when the summed splits match the payment amount within
	// a cent.
	Valid bool `json:"valid"`

	// TotalSplitAmount is the sum of all split amounts.
	TotalSplitAmount float64 `json:"totalSplitAmount"`

	// OwnerAmount is the unassigned positive remainder, attributed to the
	// subscription owner (e.g. when percent shares do not cover 100%).
	OwnerAmount float64 `json:"ownerAmount"`
}

// ValidateSplit checks the consistency of a payment's splits against its
// total amount. A payment with no splits is valid and fully owner-funded.
func ValidateSplit(p models.Payment) SplitCheck {
	if len(p.Splits) == 0 {
		return SplitCheck{Valid: true, OwnerAmount: p.Amount}
	}

	var sum float64
	for _, s := range p.Splits {
		sum += s.Amount
	}

	diff := p.Amount - sum
	check := SplitCheck{
		Valid:            diff < 0.01 && diff > -0.01,
		TotalSplitAmount: RoundCents(sum),
	}
	if diff > 0 {
		check.OwnerAmount = RoundCents(diff)
	}
	return check
}
