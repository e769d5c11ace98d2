package prompt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"nof0-trading-agents/internal/model"
	"nof0-trading-agents/internal/money"
)

func TestHotStocksQuotesCapsToThreeDailyRowsAscending(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 7, d, 0, 0, 0, 0, time.UTC) }
	rows := []*model.Quotes{
		{TradeDate: day(25), Open: money.MustNew("10"), High: money.MustNew("10"), Low: money.MustNew("9"), Close: money.MustNew("9.5"), PrevClose: money.MustNew("10"), Volume: 1000000},
		{TradeDate: day(28), Open: money.MustNew("9.5"), High: money.MustNew("11"), Low: money.MustNew("9"), Close: money.MustNew("10.5"), PrevClose: money.MustNew("9.5"), Volume: 2000000},
		{TradeDate: day(29), Open: money.MustNew("10.5"), High: money.MustNew("12"), Low: money.MustNew("10"), Close: money.MustNew("11"), PrevClose: money.MustNew("10.5"), Volume: 1500000},
		{TradeDate: day(30), Open: money.MustNew("11"), High: money.MustNew("11.5"), Low: money.MustNew("10.8"), Close: money.MustNew("11.2"), PrevClose: money.MustNew("11"), Volume: 1200000},
	}
	out := HotStocksQuotes(map[string][]*model.Quotes{"600000": rows}, map[string]string{"600000": "浦发银行"})

	assert.Contains(t, out, "## 热门股票近3日行情")
	assert.NotContains(t, out, "2026-07-25")
	assert.Contains(t, out, "2026-07-28")
	assert.Contains(t, out, "2026-07-30")
}

func TestPositionsQuotesIncludesSharesAndAvgCost(t *testing.T) {
	positions := []*model.Positions{{StockCode: "600000", Shares: 300, AvgCost: money.MustNew("10.50")}}
	out := PositionsQuotes(positions, map[string][]*model.Quotes{}, map[string]string{"600000": "浦发银行"})

	assert.Contains(t, out, "### 600000 浦发银行")
	assert.Contains(t, out, "持仓: 300股, 成本价: 10.50")
}

func TestFormatPctSignsPositiveAndNegative(t *testing.T) {
	assert.Equal(t, "+5.00%", formatPct(money.MustNew("5")))
	assert.Equal(t, "-3.00%", formatPct(money.MustNew("-3")))
	assert.Equal(t, "0.00%", formatPct(money.Zero))
}
