// Package quote implements the Quote Service (spec §4.4): routine and
// targeted sync of daily OHLCV rows, deduplicated on
// (stock_code, trade_date), with idempotent batch upsert.
package quote

import (
	"context"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"nof0-trading-agents/internal/model"
	"nof0-trading-agents/internal/money"
	"nof0-trading-agents/internal/repo"
)

// Upsert is one daily OHLCV row to persist, independent of whichever
// upstream shape produced it (market snapshot, backfill feed, ...).
type Upsert struct {
	StockCode string
	TradeDate time.Time
	Open      money.Amount
	High      money.Amount
	Low       money.Amount
	Close     money.Amount
	PrevClose money.Amount
	Volume    int64
	Turnover  money.Amount
}

// DailyFetcher is the upstream source for a stock's historical daily
// bars, used by SyncQuotes/SyncSpecificStocks.
type DailyFetcher interface {
	FetchDaily(ctx context.Context, stockCode string, days int) ([]Upsert, error)
}

type Service struct {
	fetcher DailyFetcher
	repo    *repo.Set
	logger  logx.Logger
}

func NewService(fetcher DailyFetcher, r *repo.Set) *Service {
	return &Service{fetcher: fetcher, repo: r, logger: logx.WithContext(context.Background())}
}

// UpsertQuotes batch-writes rows, continuing past individual failures
// and returning (success, fail) counts rather than aborting the batch.
func (s *Service) UpsertQuotes(ctx context.Context, rows []Upsert) (success, fail int) {
	for _, row := range rows {
		if err := s.repo.Quotes.Upsert(ctx, &model.Quotes{
			StockCode: row.StockCode,
			TradeDate: row.TradeDate,
			Open:      row.Open,
			High:      row.High,
			Low:       row.Low,
			Close:     row.Close,
			PrevClose: row.PrevClose,
			Volume:    row.Volume,
			Turnover:  row.Turnover,
		}); err != nil {
			s.logger.Errorf("quote: upsert %s %s failed: %v", row.StockCode, row.TradeDate.Format("2006-01-02"), err)
			fail++
			continue
		}
		success++
	}
	return success, fail
}

// SyncQuotes is the routine daily sync. forceFull re-fetches a wider
// trailing window (30 days) instead of just the latest session (2
// days, enough to backfill a single missed run without a full replay).
func (s *Service) SyncQuotes(ctx context.Context, stockCodes []string, forceFull bool) (success, fail int, err error) {
	days := 2
	if forceFull {
		days = 30
	}
	return s.SyncSpecificStocks(ctx, stockCodes, days)
}

// SyncSpecificStocks targets a specific stock set for a backfill of
// the given trailing window length.
func (s *Service) SyncSpecificStocks(ctx context.Context, stockCodes []string, days int) (success, fail int, err error) {
	for _, code := range stockCodes {
		rows, ferr := s.fetcher.FetchDaily(ctx, code, days)
		if ferr != nil {
			s.logger.Errorf("quote: fetch daily for %s failed: %v", code, ferr)
			fail++
			continue
		}
		sOk, sFail := s.UpsertQuotes(ctx, rows)
		success += sOk
		fail += sFail
	}
	return success, fail, nil
}

// GetLatest returns the most recent quote row for a symbol.
func (s *Service) GetLatest(ctx context.Context, stockCode string) (*model.Quotes, error) {
	return s.repo.Quotes.GetLatest(ctx, stockCode)
}

// GetRange returns a symbol's quote rows within [from, to], ascending
// by trade date — the shape the Prompt Manager's Markdown blocks need.
func (s *Service) GetRange(ctx context.Context, stockCode string, from, to time.Time) ([]*model.Quotes, error) {
	return s.repo.Quotes.GetRange(ctx, stockCode, from, to)
}
