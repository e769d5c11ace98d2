// Package market implements the Market Data Service (spec §4.3): one
// upstream snapshot call fans out into the sentiment, index-overview,
// and hot-stocks artifacts consumed by the Prompt Manager.
package market

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"nof0-trading-agents/internal/model"
	"nof0-trading-agents/internal/quote"
	"nof0-trading-agents/internal/repo"
)

// SpotFetcher is the upstream A-share snapshot source. A production
// wiring points this at a market-data vendor; tests substitute a
// fixed in-memory fetcher.
type SpotFetcher interface {
	FetchSpot(ctx context.Context) ([]Spot, error)
}

const (
	dataTypeSentiment = "market_sentiment"
	dataTypeIndex     = "index_overview"
	dataTypeHot       = "hot_stocks"

	hotStockTopN = 20
)

// Service owns refresh_all/get_market_data_for_prompt.
type Service struct {
	fetcher SpotFetcher
	repo    *repo.Set
	quotes  *quote.Service
	logger  logx.Logger
}

func NewService(fetcher SpotFetcher, r *repo.Set, q *quote.Service) *Service {
	return &Service{fetcher: fetcher, repo: r, quotes: q, logger: logx.WithContext(context.Background())}
}

// RefreshAll fetches the upstream snapshot exactly once and derives
// sentiment, index overview, and hot stocks from that single dataframe.
func (s *Service) RefreshAll(ctx context.Context) error {
	spots, err := s.fetcher.FetchSpot(ctx)
	if err != nil {
		return fmt.Errorf("market: fetch spot: %w", err)
	}

	today := time.Now().In(mustShanghai())

	sentiment := computeSentiment(spots)
	if err := s.persistSnapshot(ctx, dataTypeSentiment, today, sentiment); err != nil {
		return err
	}

	overview := computeIndexOverview(spots)
	if err := s.persistSnapshot(ctx, dataTypeIndex, today, overview); err != nil {
		return err
	}

	hot := topByAmount(spots, hotStockTopN)
	if err := s.persistSnapshot(ctx, dataTypeHot, today, hot); err != nil {
		return err
	}

	hotQuotes := make([]quote.Upsert, 0, len(hot))
	for _, h := range hot {
		hotQuotes = append(hotQuotes, spotToQuoteUpsert(h, today))
	}
	success, fail := s.quotes.UpsertQuotes(ctx, hotQuotes)
	s.logger.Infof("market: hot stock quote upsert success=%d fail=%d", success, fail)

	return nil
}

// GetMarketDataForPrompt composes the latest snapshot of each artifact
// type into the bundle the Prompt Manager substitutes into templates.
func (s *Service) GetMarketDataForPrompt(ctx context.Context) (*Bundle, error) {
	var bundle Bundle

	if err := s.loadSnapshot(ctx, dataTypeSentiment, &bundle.Sentiment); err != nil {
		return nil, err
	}
	if err := s.loadSnapshot(ctx, dataTypeIndex, &bundle.IndexOverview); err != nil {
		return nil, err
	}
	if err := s.loadSnapshot(ctx, dataTypeHot, &bundle.HotStocks); err != nil {
		return nil, err
	}
	return &bundle, nil
}

func computeSentiment(spots []Spot) Sentiment {
	var s Sentiment
	var turnoverSum float64
	for _, sp := range spots {
		switch {
		case sp.ChangePct > 0:
			s.Up++
		case sp.ChangePct < 0:
			s.Down++
		default:
			s.Flat++
		}
		if sp.ChangePct >= limitMovePct {
			s.LimitUp++
		}
		if sp.ChangePct <= -limitMovePct {
			s.LimitDown++
		}
		turnoverSum += sp.TurnoverRate
	}
	s.Total = len(spots)
	if s.Total > 0 {
		s.FearGreedIndex = int(roundHalfAwayFromZero(100 * float64(s.Up) / float64(s.Total)))
		s.AvgTurnover = turnoverSum / float64(s.Total)
	}
	s.FearGreedBand = band(s.FearGreedIndex)
	s.TradingActivity = activityLabel(s.AvgTurnover)
	s.Volatility = volatilityLabel(turnoverSpread(spots, s.AvgTurnover))
	return s
}

// turnoverSpread is the population standard deviation of TurnoverRate
// across spots, the same dataframe computeSentiment's other fields
// derive from.
func turnoverSpread(spots []Spot, avgTurnover float64) float64 {
	if len(spots) == 0 {
		return 0
	}
	var sumSq float64
	for _, sp := range spots {
		diff := sp.TurnoverRate - avgTurnover
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(spots)))
}

func volatilityLabel(spread float64) string {
	if spread > 3 {
		return "elevated"
	}
	return "low"
}

func computeIndexOverview(spots []Spot) []IndexQuote {
	byName := make(map[string]Spot, len(spots))
	for _, sp := range spots {
		byName[sp.Name] = sp
	}

	overview := make([]IndexQuote, 0, len(trackedIndexNames))
	for _, name := range trackedIndexNames {
		sp, ok := byName[name]
		if !ok {
			continue
		}
		overview = append(overview, IndexQuote{Name: name, Close: sp.Close, ChangePct: sp.ChangePct})
	}
	return overview
}

func topByAmount(spots []Spot, n int) []Spot {
	sorted := make([]Spot, len(spots))
	copy(sorted, spots)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Amount.GreaterThan(sorted[j].Amount)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func spotToQuoteUpsert(sp Spot, tradeDate time.Time) quote.Upsert {
	return quote.Upsert{
		StockCode: sp.StockCode,
		TradeDate: tradeDate,
		Open:      sp.Open,
		High:      sp.High,
		Low:       sp.Low,
		Close:     sp.Close,
		PrevClose: sp.PrevClose,
		Volume:    sp.Volume,
		Turnover:  sp.Amount,
	}
}

func (s *Service) persistSnapshot(ctx context.Context, dataType string, date time.Time, payload interface{}) error {
	body, err := encodeJSON(payload)
	if err != nil {
		return fmt.Errorf("market: encode %s snapshot: %w", dataType, err)
	}
	return s.repo.MarketData.Upsert(ctx, &model.MarketDataSnapshots{
		DataType: dataType,
		DataDate: date,
		Payload:  body,
	})
}

func (s *Service) loadSnapshot(ctx context.Context, dataType string, dest interface{}) error {
	row, err := s.repo.MarketData.GetLatest(ctx, dataType)
	if err != nil {
		if err == model.ErrNotFound {
			return nil
		}
		return err
	}
	return decodeJSON(row.Payload, dest)
}

func roundHalfAwayFromZero(v float64) float64 {
	if v >= 0 {
		return float64(int64(v + 0.5))
	}
	return float64(int64(v - 0.5))
}

func mustShanghai() *time.Location {
	loc, err := time.LoadLocation("Asia/Shanghai")
	if err != nil {
		return time.FixedZone("CST", 8*60*60)
	}
	return loc
}
