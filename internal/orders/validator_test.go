package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"nof0-trading-agents/internal/money"
	"nof0-trading-agents/internal/types"
)

func TestValidateBuyWithinRulesApproves(t *testing.T) {
	req := Request{
		StockCode: "600000", Side: types.OrderSideBuy, Quantity: 300,
		Price: money.MustNew("10.00"), PrevClose: money.MustNew("10.00"),
	}
	result := Validate(req, PositionView{}, time.Now(), true, money.MustNew("100000.00"), types.ExchangeShanghai)

	assert.True(t, result.Approved)
	assert.Equal(t, int64(300), result.Quantity)
}

func TestValidateBuyRoundsDownToLot(t *testing.T) {
	req := Request{
		StockCode: "600000", Side: types.OrderSideBuy, Quantity: 250,
		Price: money.MustNew("10.00"), PrevClose: money.MustNew("10.00"),
	}
	result := Validate(req, PositionView{}, time.Now(), true, money.MustNew("100000.00"), types.ExchangeShanghai)

	assert.True(t, result.Approved)
	assert.Equal(t, int64(200), result.Quantity)
}

func TestValidateBuyLotSizeZeroRejects(t *testing.T) {
	req := Request{
		StockCode: "600000", Side: types.OrderSideBuy, Quantity: 50,
		Price: money.MustNew("10.00"), PrevClose: money.MustNew("10.00"),
	}
	result := Validate(req, PositionView{}, time.Now(), true, money.MustNew("100000.00"), types.ExchangeShanghai)

	assert.False(t, result.Approved)
	assert.Equal(t, types.RejectLotSize, result.Reason)
}

func TestValidateSellTPlusOneRejectsSameDayBuy(t *testing.T) {
	today := time.Date(2026, 7, 30, 10, 0, 0, 0, time.UTC)
	req := Request{
		StockCode: "600000", Side: types.OrderSideSell, Quantity: 100,
		Price: money.MustNew("10.00"), PrevClose: money.MustNew("10.00"),
	}
	pos := PositionView{Exists: true, Shares: 100, BuyDate: today}
	result := Validate(req, pos, today, true, money.Zero, types.ExchangeShanghai)

	assert.False(t, result.Approved)
	assert.Equal(t, types.RejectTPlusOneLocked, result.Reason)
}

func TestValidateSellAllowedAfterT1(t *testing.T) {
	today := time.Date(2026, 7, 30, 10, 0, 0, 0, time.UTC)
	yesterday := time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC)
	req := Request{
		StockCode: "600000", Side: types.OrderSideSell, Quantity: 100,
		Price: money.MustNew("10.00"), PrevClose: money.MustNew("10.00"),
	}
	pos := PositionView{Exists: true, Shares: 100, BuyDate: yesterday}
	result := Validate(req, pos, today, true, money.Zero, types.ExchangeShanghai)

	assert.True(t, result.Approved)
}

func TestValidatePriceOutOfBandRejects(t *testing.T) {
	req := Request{
		StockCode: "600000", Side: types.OrderSideBuy, Quantity: 100,
		Price: money.MustNew("11.50"), PrevClose: money.MustNew("10.00"),
	}
	result := Validate(req, PositionView{}, time.Now(), true, money.MustNew("100000.00"), types.ExchangeShanghai)

	assert.False(t, result.Approved)
	assert.Equal(t, types.RejectPriceOutOfBand, result.Reason)
}

func TestValidateInsufficientCashRejects(t *testing.T) {
	req := Request{
		StockCode: "600000", Side: types.OrderSideBuy, Quantity: 100,
		Price: money.MustNew("10.00"), PrevClose: money.MustNew("10.00"),
	}
	result := Validate(req, PositionView{}, time.Now(), true, money.MustNew("5.00"), types.ExchangeShanghai)

	assert.False(t, result.Approved)
	assert.Equal(t, types.RejectInsufficientCash, result.Reason)
}

func TestValidateInsufficientSharesRejects(t *testing.T) {
	today := time.Date(2026, 7, 30, 10, 0, 0, 0, time.UTC)
	yesterday := time.Date(2026, 7, 29, 10, 0, 0, 0, time.UTC)
	req := Request{
		StockCode: "600000", Side: types.OrderSideSell, Quantity: 500,
		Price: money.MustNew("10.00"), PrevClose: money.MustNew("10.00"),
	}
	pos := PositionView{Exists: true, Shares: 100, BuyDate: yesterday}
	result := Validate(req, pos, today, true, money.Zero, types.ExchangeShanghai)

	assert.False(t, result.Approved)
	assert.Equal(t, types.RejectInsufficientShares, result.Reason)
}

func TestValidateMarketClosedRejectsWhenEnforced(t *testing.T) {
	req := Request{
		StockCode: "600000", Side: types.OrderSideBuy, Quantity: 100,
		Price: money.MustNew("10.00"), PrevClose: money.MustNew("10.00"),
		EnforceMarketHours: true,
	}
	result := Validate(req, PositionView{}, time.Now(), false, money.MustNew("100000.00"), types.ExchangeShanghai)

	assert.False(t, result.Approved)
	assert.Equal(t, types.RejectMarketClosed, result.Reason)
}
