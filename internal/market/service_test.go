package market

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"nof0-trading-agents/internal/money"
)

func spotWithChange(code string, changePct float64, turnoverRate float64) Spot {
	return Spot{
		StockCode:    code,
		Name:         code,
		Close:        money.MustNew("10.00"),
		Amount:       money.MustNew("1000000"),
		ChangePct:    changePct,
		TurnoverRate: turnoverRate,
	}
}

func TestComputeSentimentBandsAndActivity(t *testing.T) {
	spots := []Spot{
		spotWithChange("A", 5, 6),
		spotWithChange("B", 3, 6),
		spotWithChange("C", -1, 6),
		spotWithChange("D", 0, 6),
	}
	s := computeSentiment(spots)

	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Up)
	assert.Equal(t, 1, s.Down)
	assert.Equal(t, 1, s.Flat)
	assert.Equal(t, 50, s.FearGreedIndex)
	assert.Equal(t, "neutral", s.FearGreedBand)
	assert.Equal(t, "active", s.TradingActivity)
}

func TestComputeSentimentLimitMoveThreshold(t *testing.T) {
	spots := []Spot{
		spotWithChange("A", 9.9, 1),
		spotWithChange("B", -9.95, 1),
		spotWithChange("C", 9.8, 1),
	}
	s := computeSentiment(spots)

	assert.Equal(t, 1, s.LimitUp)
	assert.Equal(t, 1, s.LimitDown)
	assert.Equal(t, "low", s.TradingActivity)
	assert.Equal(t, "low", s.Volatility)
}

func TestComputeSentimentVolatilityElevatedOnWideTurnoverSpread(t *testing.T) {
	spots := []Spot{
		spotWithChange("A", 1, 1),
		spotWithChange("B", 1, 20),
		spotWithChange("C", 1, 1),
	}
	s := computeSentiment(spots)

	assert.Equal(t, "elevated", s.Volatility)
}

func TestTopByAmountOrdersDescendingAndCaps(t *testing.T) {
	spots := make([]Spot, 0, 5)
	amounts := []string{"100", "500", "300", "900", "200"}
	for i, amt := range amounts {
		sp := spotWithChange(string(rune('A'+i)), 0, 1)
		sp.Amount = money.MustNew(amt)
		spots = append(spots, sp)
	}

	top := topByAmount(spots, 3)
	assert.Len(t, top, 3)
	assert.Equal(t, "900", top[0].Amount.String())
	assert.Equal(t, "500", top[1].Amount.String())
	assert.Equal(t, "300", top[2].Amount.String())
}

func TestComputeIndexOverviewFiltersToTrackedNames(t *testing.T) {
	spots := []Spot{
		{Name: "上证指数", Close: money.MustNew("3000.00"), ChangePct: 1.2},
		{Name: "某小盘股", Close: money.MustNew("12.00"), ChangePct: 3.0},
	}
	overview := computeIndexOverview(spots)
	assert.Len(t, overview, 1)
	assert.Equal(t, "上证指数", overview[0].Name)
}
