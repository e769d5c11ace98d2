package quote

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"nof0-trading-agents/internal/model"
	"nof0-trading-agents/internal/money"
	"nof0-trading-agents/internal/repo"
)

type stubFetcher struct {
	rows map[string][]Upsert
	err  error
}

func (f *stubFetcher) FetchDaily(ctx context.Context, stockCode string, days int) ([]Upsert, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.rows[stockCode], nil
}

type fakeQuotesModel struct {
	upserted []*model.Quotes
	failOn   string
}

func (f *fakeQuotesModel) Upsert(ctx context.Context, data *model.Quotes) error {
	if data.StockCode == f.failOn {
		return assert.AnError
	}
	f.upserted = append(f.upserted, data)
	return nil
}

func (f *fakeQuotesModel) GetLatest(ctx context.Context, stockCode string) (*model.Quotes, error) {
	return nil, model.ErrNotFound
}

func (f *fakeQuotesModel) GetLatestMany(ctx context.Context, stockCodes []string) ([]*model.Quotes, error) {
	return nil, nil
}

func (f *fakeQuotesModel) GetRange(ctx context.Context, stockCode string, from, to time.Time) ([]*model.Quotes, error) {
	return nil, nil
}

func TestSyncSpecificStocksAggregatesSuccessAndFail(t *testing.T) {
	fakeModel := &fakeQuotesModel{failOn: "000001"}
	set := &repo.Set{Quotes: fakeModel}

	f := &stubFetcher{rows: map[string][]Upsert{
		"600000": {{StockCode: "600000", TradeDate: time.Now(), Close: money.MustNew("10.00")}},
		"000001": {{StockCode: "000001", TradeDate: time.Now(), Close: money.MustNew("20.00")}},
	}}

	s := NewService(f, set)
	success, fail, err := s.SyncSpecificStocks(context.Background(), []string{"600000", "000001"}, 2)

	assert.NoError(t, err)
	assert.Equal(t, 1, success)
	assert.Equal(t, 1, fail)
	assert.Len(t, fakeModel.upserted, 1)
}

func TestSyncQuotesForceFullUsesWiderWindow(t *testing.T) {
	var seenDays int
	f := &recordingFetcher{onFetch: func(days int) { seenDays = days }}
	set := &repo.Set{Quotes: &fakeQuotesModel{}}
	s := NewService(f, set)

	_, _, err := s.SyncQuotes(context.Background(), []string{"600000"}, true)
	assert.NoError(t, err)
	assert.Equal(t, 30, seenDays)
}

type recordingFetcher struct {
	onFetch func(days int)
}

func (f *recordingFetcher) FetchDaily(ctx context.Context, stockCode string, days int) ([]Upsert, error) {
	f.onFetch(days)
	return nil, nil
}
