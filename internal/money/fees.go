package money

import "nof0-trading-agents/internal/types"

var (
	minCommission   = MustNew("5.00")
	commissionRate  = MustNew("0.0003")
	stampTaxRate    = MustNew("0.0005")
	transferFeeRate = MustNew("0.00001")
	minTransferFee  = MustNew("1.00")
)

// Fees is the per-leg cost breakdown of a simulated fill.
type Fees struct {
	Commission  Amount
	StampTax    Amount
	TransferFee Amount
}

// Total sums the three fee components.
func (f Fees) Total() Amount {
	return f.Commission.Add(f.StampTax).Add(f.TransferFee).RoundCash()
}

// CalculateFees computes the A-share fee schedule from spec §6.3 for a
// single order leg: commission is charged both ways with a five-yuan
// floor, stamp tax only applies to sells, and the transfer fee only
// applies to Shanghai-listed names (Shenzhen waives it) with its own
// one-yuan floor once it applies at all.
func CalculateFees(side types.OrderSide, exchange types.Exchange, notional Amount) Fees {
	commission := notional.Mul(commissionRate).RoundCash()
	if commission.LessThan(minCommission) {
		commission = minCommission
	}

	stampTax := Zero
	if side == types.OrderSideSell {
		stampTax = notional.Mul(stampTaxRate).RoundCash()
	}

	transferFee := Zero
	if exchange == types.ExchangeShanghai {
		transferFee = notional.Mul(transferFeeRate).RoundCash()
		if transferFee.IsPositive() && transferFee.LessThan(minTransferFee) {
			transferFee = minTransferFee
		}
	}

	return Fees{
		Commission:  commission,
		StampTax:    stampTax,
		TransferFee: transferFee,
	}
}
