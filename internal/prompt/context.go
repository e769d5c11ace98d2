package prompt

import (
	"context"
	"fmt"
	"time"

	"nof0-trading-agents/internal/calendar"
	"nof0-trading-agents/internal/market"
	"nof0-trading-agents/internal/model"
	"nof0-trading-agents/internal/money"
	"nof0-trading-agents/internal/quote"
	"nof0-trading-agents/internal/repo"
)

// ContextBuilder assembles the placeholder map for one agent's
// decision cycle: account state, the latest market snapshot, and the
// derived Markdown blocks.
type ContextBuilder struct {
	repo   *repo.Set
	market *market.Service
	quotes *quote.Service
}

func NewContextBuilder(r *repo.Set, mkt *market.Service, q *quote.Service) *ContextBuilder {
	return &ContextBuilder{repo: r, market: mkt, quotes: q}
}

// Build collects the render context for agentID. Unpopulated
// placeholders (fundamentals, capital flow, sentiment news — sourced
// from upstream feeds not modeled here) are simply absent from the
// map; Render fills them with "" for lenient templates.
func (b *ContextBuilder) Build(ctx context.Context, agentID string) (map[string]string, error) {
	out := map[string]string{}

	agent, err := b.repo.Agents.FindOne(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("prompt: load agent %s: %w", agentID, err)
	}
	positions, err := b.repo.Positions.ListByAgent(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("prompt: load positions for %s: %w", agentID, err)
	}

	marketValue := money.Zero
	quotesByCode := map[string][]*model.Quotes{}
	namesByCode := map[string]string{}
	for _, pos := range positions {
		latest, qerr := b.quotes.GetLatest(ctx, pos.StockCode)
		if qerr == nil {
			marketValue = marketValue.Add(money.FromInt(pos.Shares).Mul(latest.Close))
		}
		from := time.Now().AddDate(0, 0, -60)
		history, herr := b.quotes.GetRange(ctx, pos.StockCode, from, time.Now())
		if herr == nil {
			quotesByCode[pos.StockCode] = history
		}
	}

	totalEquity := agent.CurrentCash.Add(marketValue)
	returnRate := money.Zero
	if agent.InitialCash.IsPositive() {
		returnRate = totalEquity.Sub(agent.InitialCash).Div(agent.InitialCash).Mul(money.FromInt(100))
	}

	out["cash"] = agent.CurrentCash.Round(2).String()
	out["market_value"] = marketValue.Round(2).String()
	out["return_rate"] = returnRate.Round(2).String()
	out["positions"] = formatPositionsLine(positions)

	now := time.Now()
	out["current_time"] = now.Format("2006-01-02 15:04:05")
	out["current_date"] = now.Format("2006-01-02")
	out["current_weekday"] = now.Weekday().String()
	if calendar.IsTradingDay(now) {
		out["is_trading_day"] = "true"
	} else {
		out["is_trading_day"] = "false"
	}

	if b.market != nil {
		bundle, berr := b.market.GetMarketDataForPrompt(ctx)
		if berr == nil && bundle != nil {
			out["hot_stocks"] = formatHotStocksLine(bundle.HotStocks)
			out["index_overview"] = formatIndexOverviewLine(bundle.IndexOverview)
			out["market_sentiment"] = formatSentimentLine(bundle.Sentiment)
			out["limit_up_down"] = fmt.Sprintf("up=%d down=%d", bundle.Sentiment.LimitUp, bundle.Sentiment.LimitDown)

			hotQuotes := map[string][]*model.Quotes{}
			for _, h := range bundle.HotStocks {
				namesByCode[h.StockCode] = h.Name
				from := time.Now().AddDate(0, 0, -10)
				rows, herr := b.quotes.GetRange(ctx, h.StockCode, from, time.Now())
				if herr == nil {
					hotQuotes[h.StockCode] = rows
				}
			}
			out["hot_stocks_quotes"] = HotStocksQuotes(hotQuotes, namesByCode)
		}
	}

	out["positions_quotes"] = PositionsQuotes(positions, quotesByCode, namesByCode)

	return out, nil
}

func formatPositionsLine(positions []*model.Positions) string {
	if len(positions) == 0 {
		return "(no open positions)"
	}
	s := ""
	for i, p := range positions {
		if i > 0 {
			s += "; "
		}
		s += fmt.Sprintf("%s: %d股 @ %s", p.StockCode, p.Shares, p.AvgCost.Round(2).String())
	}
	return s
}

func formatHotStocksLine(hot []market.Spot) string {
	s := ""
	for i, h := range hot {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s(%s) %.2f%%", h.StockCode, h.Name, h.ChangePct)
	}
	return s
}

func formatIndexOverviewLine(overview []market.IndexQuote) string {
	s := ""
	for i, idx := range overview {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%s %s (%.2f%%)", idx.Name, idx.Close.Round(2).String(), idx.ChangePct)
	}
	return s
}

func formatSentimentLine(s market.Sentiment) string {
	return fmt.Sprintf("fear_greed=%d(%s) activity=%s up=%d down=%d flat=%d",
		s.FearGreedIndex, s.FearGreedBand, s.TradingActivity, s.Up, s.Down, s.Flat)
}
