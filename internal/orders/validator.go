// Package orders implements the Order Processor state machine (spec
// §4.8): Pending -> validate -> Validated|Rejected -> settle -> Filled|Rejected.
package orders

import (
	"time"

	"nof0-trading-agents/internal/money"
	"nof0-trading-agents/internal/types"
)

// priceBandTolerance is the +/-10% window around prev_close a fill
// price must fall within.
var priceBandTolerance = money.MustNew("0.10")

const lotSize = 100

// Request is the decision translated into an order-processor input.
type Request struct {
	AgentID            string
	StockCode          string
	Side               types.OrderSide
	Quantity           int64
	Price              money.Amount
	PrevClose          money.Amount
	EnforceMarketHours bool
}

// PositionView is the subset of a held position the validator needs.
type PositionView struct {
	Exists  bool
	Shares  int64
	BuyDate time.Time
}

// Result is the outcome of validation; Reason is zero-value when Approved.
type Result struct {
	Approved bool
	Reason   types.RejectReason
	Quantity int64 // after lot rounding (buy only)
	Fees     money.Fees
}

// Validate runs the ordered rule checks from spec §4.8 and stops at
// the first failure. today/marketOpen are passed in rather than read
// from time.Now()/the calendar package directly so the checks are
// deterministic under test.
func Validate(req Request, pos PositionView, today time.Time, marketOpen bool, cashAvailable money.Amount, exchange types.Exchange) Result {
	if req.StockCode == "" || req.Quantity <= 0 || !req.Price.IsPositive() {
		return Result{Reason: types.RejectInvalidQuantity}
	}

	qty := req.Quantity
	if req.Side == types.OrderSideBuy {
		qty = roundDownToLot(qty)
		if qty == 0 {
			return Result{Reason: types.RejectLotSize}
		}
	}

	if req.EnforceMarketHours && !marketOpen {
		return Result{Reason: types.RejectMarketClosed}
	}

	if !withinPriceBand(req.Price, req.PrevClose) {
		return Result{Reason: types.RejectPriceOutOfBand}
	}

	if req.Side == types.OrderSideSell {
		if !pos.Exists || !isBeforeDay(pos.BuyDate, today) {
			return Result{Reason: types.RejectTPlusOneLocked}
		}
		if qty > pos.Shares {
			return Result{Reason: types.RejectInsufficientShares}
		}
	}

	notional := money.FromInt(qty).Mul(req.Price)
	fees := money.CalculateFees(req.Side, exchange, notional)

	if req.Side == types.OrderSideBuy {
		total := notional.Add(fees.Total())
		if cashAvailable.LessThan(total) {
			return Result{Reason: types.RejectInsufficientCash}
		}
	} else {
		proceeds := notional.Sub(fees.Total())
		if proceeds.IsNegative() {
			return Result{Reason: types.RejectFeesExceedProceeds}
		}
	}

	return Result{Approved: true, Quantity: qty, Fees: fees}
}

func roundDownToLot(qty int64) int64 {
	return (qty / lotSize) * lotSize
}

func withinPriceBand(price, prevClose money.Amount) bool {
	if prevClose.IsZero() {
		return false
	}
	deviation := price.Sub(prevClose).Abs().Div(prevClose)
	return deviation.LessOrEqual(priceBandTolerance)
}

// isBeforeDay compares calendar days (ignoring time-of-day) in today's
// location, true when buyDate is strictly before today — the T+1 rule.
func isBeforeDay(buyDate, today time.Time) bool {
	buyDate = buyDate.In(today.Location())
	by, bm, bd := buyDate.Date()
	ty, tm, td := today.Date()
	if by != ty {
		return by < ty
	}
	if bm != tm {
		return bm < tm
	}
	return bd < td
}
