package market

import "nof0-trading-agents/internal/money"

// Spot is one row of the upstream A-share snapshot: the raw per-symbol
// tick the whole service derives its artifacts from.
type Spot struct {
	StockCode    string
	Name         string
	Open         money.Amount
	High         money.Amount
	Low          money.Amount
	Close        money.Amount
	PrevClose    money.Amount
	ChangePct    float64      // percent, signed
	Volume       int64        // shares
	Amount       money.Amount // yuan traded, used to rank hot stocks
	TurnoverRate float64      // percent
}

// Sentiment is the market-breadth artifact derived from one snapshot.
type Sentiment struct {
	Up              int
	Down            int
	Flat            int
	Total           int
	LimitUp         int
	LimitDown       int
	FearGreedIndex  int
	FearGreedBand   string
	AvgTurnover     float64
	TradingActivity string
	Volatility      string // low|elevated, keyed off the turnover spread across spots
}

// IndexQuote is one row of the fixed index-overview lookup.
type IndexQuote struct {
	Name      string
	Close     money.Amount
	ChangePct float64
}

// Bundle is the composed payload get_market_data_for_prompt returns.
type Bundle struct {
	Sentiment     Sentiment
	IndexOverview []IndexQuote
	HotStocks     []Spot
}

// fixed index-overview lookup set, per spec §4.3.
var trackedIndexNames = []string{
	"上证指数", "深证成指", "创业板指", "科创50", "沪深300", "中证500",
}

const limitMovePct = 9.9

func band(fearGreed int) string {
	switch {
	case fearGreed >= 70:
		return "extreme-greed"
	case fearGreed >= 55:
		return "optimistic"
	case fearGreed >= 45:
		return "neutral"
	case fearGreed >= 30:
		return "pessimistic"
	default:
		return "extreme-fear"
	}
}

func activityLabel(avgTurnover float64) string {
	switch {
	case avgTurnover > 5:
		return "active"
	case avgTurnover > 2:
		return "normal"
	default:
		return "low"
	}
}
