package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nof0-trading-agents/internal/types"
)

func TestCalculateFeesBuySideShanghai(t *testing.T) {
	notional := MustNew("100000")
	fees := CalculateFees(types.OrderSideBuy, types.ExchangeShanghai, notional)

	assert.True(t, fees.Commission.Equal(MustNew("30.00")))
	assert.True(t, fees.StampTax.IsZero())
	assert.True(t, fees.TransferFee.Equal(MustNew("1.00")))
}

func TestCalculateFeesSellSideShenzhen(t *testing.T) {
	notional := MustNew("100000")
	fees := CalculateFees(types.OrderSideSell, types.ExchangeShenzhen, notional)

	assert.True(t, fees.Commission.Equal(MustNew("30.00")))
	assert.True(t, fees.StampTax.Equal(MustNew("50.00")))
	assert.True(t, fees.TransferFee.IsZero())
}

func TestCalculateFeesCommissionFloor(t *testing.T) {
	notional := MustNew("1000")
	fees := CalculateFees(types.OrderSideBuy, types.ExchangeShenzhen, notional)

	assert.True(t, fees.Commission.Equal(minCommission))
}

func TestCalculateFeesTransferFloor(t *testing.T) {
	notional := MustNew("5000")
	fees := CalculateFees(types.OrderSideBuy, types.ExchangeShanghai, notional)

	assert.True(t, fees.TransferFee.Equal(minTransferFee))
}

func TestAmountRoundCashBankersRounding(t *testing.T) {
	a := MustNew("1.005")
	assert.Equal(t, "1.00", a.RoundCash().String())

	b := MustNew("1.015")
	assert.Equal(t, "1.02", b.RoundCash().String())
}

func TestAmountJSONRoundTrip(t *testing.T) {
	a := MustNew("123.4567")
	data, err := a.MarshalJSON()
	require.NoError(t, err)

	var out Amount
	require.NoError(t, out.UnmarshalJSON(data))
	assert.True(t, a.Equal(out))
}

func TestAmountArithmetic(t *testing.T) {
	a := MustNew("10.5")
	b := MustNew("3.25")

	assert.True(t, a.Add(b).Equal(MustNew("13.75")))
	assert.True(t, a.Sub(b).Equal(MustNew("7.25")))
	assert.True(t, a.Mul(b).Equal(MustNew("34.125")))
}
