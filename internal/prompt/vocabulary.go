package prompt

// Vocabulary is the fixed set of placeholders a template may reference
// (spec §4.5). ListPlaceholders (GET /templates/placeholders) returns
// exactly this list.
var Vocabulary = []string{
	// account state
	"cash", "market_value", "return_rate", "positions",
	// technical indicators
	"ma", "macd", "kdj", "rsi", "boll",
	// capital flow
	"individual_flow", "flow_ranking", "north_bound_flow",
	// fundamentals
	"financial_metrics", "balance_sheet", "cash_flow",
	// sentiment
	"news_sentiment", "market_sentiment",
	// history
	"quote_history", "decision_history",
	// market overview
	"stock_list", "index_overview", "sector_flow", "hot_stocks", "limit_up_down",
	// system time
	"current_time", "current_date", "current_weekday", "is_trading_day",
	// derived Markdown blocks
	"hot_stocks_quotes", "positions_quotes",
}

func knownPlaceholder(name string) bool {
	for _, v := range Vocabulary {
		if v == name {
			return true
		}
	}
	return false
}
