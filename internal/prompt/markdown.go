package prompt

import (
	"fmt"
	"strings"

	"nof0-trading-agents/internal/model"
	"nof0-trading-agents/internal/money"
)

const (
	hotStocksMaxSymbols  = 20
	hotStocksDailyRows   = 3
	positionsMaxDailyRows = 30
)

// HotStocksQuotes renders the "## 热门股票近3日行情" block: up to 20
// symbols, most recent 3 daily rows each, ascending by date.
func HotStocksQuotes(rows map[string][]*model.Quotes, names map[string]string) string {
	var b strings.Builder
	b.WriteString("## 热门股票近3日行情\n")
	b.WriteString("| 股票代码 | 股票名称 | 日期 | 开盘 | 最高 | 最低 | 收盘 | 涨跌幅 | 成交量(万手) |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|---|\n")

	count := 0
	for code, quotes := range rows {
		if count >= hotStocksMaxSymbols {
			break
		}
		tail := lastN(quotes, hotStocksDailyRows)
		for i, q := range tail {
			var prev money.Amount
			if i == 0 {
				prev = q.PrevClose
			} else {
				prev = tail[i-1].Close
			}
			changePct := changePercent(q.Close, prev)
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
				code, names[code], q.TradeDate.Format("2006-01-02"),
				formatPrice(q.Open), formatPrice(q.High), formatPrice(q.Low), formatPrice(q.Close),
				formatPct(changePct), formatVolume(q.Volume)))
		}
		count++
	}
	return b.String()
}

// PositionsQuotes renders one "### <code> <name>" section per holding,
// each with a shares/avg_cost line and up to 30 ascending daily rows.
func PositionsQuotes(positions []*model.Positions, quotesByCode map[string][]*model.Quotes, names map[string]string) string {
	var b strings.Builder
	for _, pos := range positions {
		b.WriteString(fmt.Sprintf("### %s %s\n", pos.StockCode, names[pos.StockCode]))
		b.WriteString(fmt.Sprintf("持仓: %d股, 成本价: %s\n", pos.Shares, formatPrice(pos.AvgCost)))
		b.WriteString("| 日期 | 开盘 | 最高 | 最低 | 收盘 | 涨跌幅 | 成交量(万手) |\n")
		b.WriteString("|---|---|---|---|---|---|---|\n")

		tail := lastN(quotesByCode[pos.StockCode], positionsMaxDailyRows)
		for i, q := range tail {
			var prev money.Amount
			if i == 0 {
				prev = q.PrevClose
			} else {
				prev = tail[i-1].Close
			}
			changePct := changePercent(q.Close, prev)
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s | %s |\n",
				q.TradeDate.Format("2006-01-02"),
				formatPrice(q.Open), formatPrice(q.High), formatPrice(q.Low), formatPrice(q.Close),
				formatPct(changePct), formatVolume(q.Volume)))
		}
	}
	return b.String()
}

func changePercent(close, prevClose money.Amount) money.Amount {
	if prevClose.IsZero() {
		return money.Zero
	}
	return close.Sub(prevClose).Div(prevClose).Mul(money.FromInt(100))
}

func formatPrice(a money.Amount) string {
	return a.Round(2).String()
}

func formatPct(a money.Amount) string {
	rounded := a.Round(2)
	if rounded.IsNegative() || rounded.IsZero() {
		return rounded.String() + "%"
	}
	return "+" + rounded.String() + "%"
}

func formatVolume(shares int64) string {
	lots := money.FromInt(shares).Div(money.FromInt(10000))
	return lots.Round(1).String()
}

func lastN(rows []*model.Quotes, n int) []*model.Quotes {
	if len(rows) <= n {
		return rows
	}
	return rows[len(rows)-n:]
}
