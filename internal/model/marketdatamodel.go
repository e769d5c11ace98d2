package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var (
	marketDataFieldNames = []string{"data_type", "data_date", "payload", "created_at"}
	marketDataRows       = strings.Join(marketDataFieldNames, ",")
)

// MarketDataSnapshots is the row shape of spec §3 "Market Data Snapshot",
// unique on (data_type, data_date). Payload holds the JSON-encoded
// sentiment/overview/hot-stocks body for that data_type.
type MarketDataSnapshots struct {
	DataType  string    `db:"data_type"`
	DataDate  time.Time `db:"data_date"`
	Payload   string    `db:"payload"`
	CreatedAt time.Time `db:"created_at"`
}

// MarketDataModel is the interface the repository layer depends on.
type MarketDataModel interface {
	Upsert(ctx context.Context, data *MarketDataSnapshots) error
	GetLatest(ctx context.Context, dataType string) (*MarketDataSnapshots, error)
}

type customMarketDataModel struct {
	*defaultMarketDataModel
}

type defaultMarketDataModel struct {
	conn  sqlx.SqlConn
	table string
}

// NewMarketDataModel returns the plain (uncached) model for market data snapshots.
func NewMarketDataModel(conn sqlx.SqlConn) MarketDataModel {
	return &customMarketDataModel{
		defaultMarketDataModel: &defaultMarketDataModel{conn: conn, table: `"market_data_snapshots"`},
	}
}

func (m *defaultMarketDataModel) Upsert(ctx context.Context, data *MarketDataSnapshots) error {
	query := fmt.Sprintf(`insert into %s (data_type, data_date, payload, created_at) values ($1,$2,$3,now())
		on conflict (data_type, data_date) do update set payload=$3`, m.table)
	_, err := m.conn.ExecCtx(ctx, query, data.DataType, data.DataDate, data.Payload)
	return err
}

func (m *defaultMarketDataModel) GetLatest(ctx context.Context, dataType string) (*MarketDataSnapshots, error) {
	var resp MarketDataSnapshots
	query := fmt.Sprintf(
		"select %s from %s where data_type = $1 order by data_date desc limit 1",
		marketDataRows, m.table)
	err := m.conn.QueryRowCtx(ctx, &resp, query, dataType)
	switch err {
	case nil:
		return &resp, nil
	case sqlx.ErrNotFound:
		return nil, ErrNotFound
	default:
		return nil, err
	}
}
