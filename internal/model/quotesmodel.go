package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"nof0-trading-agents/internal/money"
)

var (
	quotesFieldNames = []string{
		"stock_code", "trade_date", "open", "high", "low", "close", "prev_close",
		"volume", "turnover", "created_at",
	}
	quotesRows             = strings.Join(quotesFieldNames, ",")
	quotesInsertFieldNames = quotesFieldNames[:len(quotesFieldNames)-1]
	quotesInsertCols       = strings.Join(quotesInsertFieldNames, ",")
)

// Quotes is the row shape of spec §3 "Stock Quote", unique on
// (stock_code, trade_date).
type Quotes struct {
	StockCode string       `db:"stock_code"`
	TradeDate time.Time    `db:"trade_date"`
	Open      money.Amount `db:"open"`
	High      money.Amount `db:"high"`
	Low       money.Amount `db:"low"`
	Close     money.Amount `db:"close"`
	PrevClose money.Amount `db:"prev_close"`
	Volume    int64        `db:"volume"`
	Turnover  money.Amount `db:"turnover"`
	CreatedAt time.Time    `db:"created_at"`
}

// QuotesModel is the interface the repository layer depends on.
type QuotesModel interface {
	Upsert(ctx context.Context, data *Quotes) error
	GetLatest(ctx context.Context, stockCode string) (*Quotes, error)
	GetLatestMany(ctx context.Context, stockCodes []string) ([]*Quotes, error)
	GetRange(ctx context.Context, stockCode string, from, to time.Time) ([]*Quotes, error)
}

type customQuotesModel struct {
	*defaultQuotesModel
}

type defaultQuotesModel struct {
	conn  sqlx.SqlConn
	table string
}

// NewQuotesModel returns the plain (uncached) model for quotes.
func NewQuotesModel(conn sqlx.SqlConn) QuotesModel {
	return &customQuotesModel{
		defaultQuotesModel: &defaultQuotesModel{conn: conn, table: `"stock_quotes"`},
	}
}

func (m *defaultQuotesModel) Upsert(ctx context.Context, data *Quotes) error {
	query := fmt.Sprintf(`insert into %s (%s,created_at) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,now())
		on conflict (stock_code, trade_date) do update set
			open=$3, high=$4, low=$5, close=$6, prev_close=$7, volume=$8, turnover=$9`,
		m.table, quotesInsertCols)
	_, err := m.conn.ExecCtx(ctx, query,
		data.StockCode, data.TradeDate, data.Open, data.High, data.Low,
		data.Close, data.PrevClose, data.Volume, data.Turnover)
	return err
}

func (m *defaultQuotesModel) GetLatest(ctx context.Context, stockCode string) (*Quotes, error) {
	var resp Quotes
	query := fmt.Sprintf(
		"select %s from %s where stock_code = $1 order by trade_date desc limit 1",
		quotesRows, m.table)
	err := m.conn.QueryRowCtx(ctx, &resp, query, stockCode)
	switch err {
	case nil:
		return &resp, nil
	case sqlx.ErrNotFound:
		return nil, ErrNotFound
	default:
		return nil, err
	}
}

// GetLatestMany fetches one row per stock code using the teacher's
// distinct-on idiom.
func (m *defaultQuotesModel) GetLatestMany(ctx context.Context, stockCodes []string) ([]*Quotes, error) {
	if len(stockCodes) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`select distinct on (stock_code) %s from %s
		where stock_code = any($1) order by stock_code, trade_date desc`, quotesRows, m.table)
	var rows []*Quotes
	if err := m.conn.QueryRowsCtx(ctx, &rows, query, pq.Array(stockCodes)); err != nil {
		return nil, err
	}
	return rows, nil
}

func (m *defaultQuotesModel) GetRange(ctx context.Context, stockCode string, from, to time.Time) ([]*Quotes, error) {
	query := fmt.Sprintf(
		"select %s from %s where stock_code = $1 and trade_date between $2 and $3 order by trade_date",
		quotesRows, m.table)
	var rows []*Quotes
	if err := m.conn.QueryRowsCtx(ctx, &rows, query, stockCode, from, to); err != nil {
		return nil, err
	}
	return rows, nil
}
