package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlc"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"nof0-trading-agents/internal/money"
)

var (
	positionsFieldNames = []string{"agent_id", "stock_code", "shares", "avg_cost", "buy_date"}
	positionsRows       = strings.Join(positionsFieldNames, ",")

	cacheNof0PositionPrefix = "cache:nof0:position:"
)

// Positions is the row shape of one non-zero holding (spec §3 "Position").
// Unique on (agent_id, stock_code); the row is deleted, never left at
// zero shares, per invariant 5.
type Positions struct {
	AgentID   string       `db:"agent_id"`
	StockCode string       `db:"stock_code"`
	Shares    int64        `db:"shares"`
	AvgCost   money.Amount `db:"avg_cost"`
	BuyDate   time.Time    `db:"buy_date"`
}

// PositionsModel is the interface the repository layer depends on.
type PositionsModel interface {
	Get(ctx context.Context, agentID, stockCode string) (*Positions, error)
	ListByAgent(ctx context.Context, agentID string) ([]*Positions, error)
	ActiveByAgents(ctx context.Context, agentIDs []string) ([]*Positions, error)
	Upsert(ctx context.Context, data *Positions) error
	Delete(ctx context.Context, agentID, stockCode string) error
}

type customPositionsModel struct {
	*defaultPositionsModel
}

type defaultPositionsModel struct {
	sqlc.CachedConn
	table string
}

// NewPositionsModel returns the cached model implementation for positions.
func NewPositionsModel(conn sqlx.SqlConn, c cache.CacheConf) PositionsModel {
	return &customPositionsModel{
		defaultPositionsModel: newPositionsModel(conn, c),
	}
}

func newPositionsModel(conn sqlx.SqlConn, c cache.CacheConf) *defaultPositionsModel {
	return &defaultPositionsModel{
		CachedConn: sqlc.NewConn(conn, c),
		table:      `"positions"`,
	}
}

func (m *defaultPositionsModel) cacheKey(agentID, stockCode string) string {
	return fmt.Sprintf("%s%s:%s", cacheNof0PositionPrefix, agentID, stockCode)
}

func (m *defaultPositionsModel) Get(ctx context.Context, agentID, stockCode string) (*Positions, error) {
	key := m.cacheKey(agentID, stockCode)
	var resp Positions
	err := m.QueryRowCtx(ctx, &resp, key, func(ctx context.Context, conn sqlx.SqlConn, v interface{}) error {
		query := fmt.Sprintf("select %s from %s where agent_id = $1 and stock_code = $2 limit 1", positionsRows, m.table)
		return conn.QueryRowCtx(ctx, v, query, agentID, stockCode)
	})
	switch err {
	case nil:
		return &resp, nil
	case sqlx.ErrNotFound:
		return nil, ErrNotFound
	default:
		return nil, err
	}
}

func (m *defaultPositionsModel) ListByAgent(ctx context.Context, agentID string) ([]*Positions, error) {
	var rows []*Positions
	query := fmt.Sprintf("select %s from %s where agent_id = $1 order by stock_code", positionsRows, m.table)
	if err := m.QueryRowsNoCacheCtx(ctx, &rows, query, agentID); err != nil {
		return nil, err
	}
	return rows, nil
}

// ActiveByAgents fetches all positions across a set of agents in one
// round trip, grounded on the teacher's pq.Array-based IN-clause idiom.
func (m *defaultPositionsModel) ActiveByAgents(ctx context.Context, agentIDs []string) ([]*Positions, error) {
	if len(agentIDs) == 0 {
		return nil, nil
	}
	var rows []*Positions
	query := fmt.Sprintf("select %s from %s where agent_id = any($1) order by agent_id, stock_code", positionsRows, m.table)
	if err := m.QueryRowsNoCacheCtx(ctx, &rows, query, pq.Array(agentIDs)); err != nil {
		return nil, err
	}
	return rows, nil
}

// Upsert persists a position row: invariant 6's avg-cost recompute and
// invariant 5's "delete at zero shares" are both decided by the caller
// (internal/repo's ApplyBuyFill/ApplySellFill), this just writes the
// result.
func (m *defaultPositionsModel) Upsert(ctx context.Context, data *Positions) error {
	key := m.cacheKey(data.AgentID, data.StockCode)
	_, err := m.ExecCtx(ctx, func(ctx context.Context, conn sqlx.SqlConn) (interface{}, error) {
		query := fmt.Sprintf(`insert into %s (%s) values ($1,$2,$3,$4,$5)
			on conflict (agent_id, stock_code) do update set shares=$3, avg_cost=$4, buy_date=$5`,
			m.table, positionsRows)
		return conn.ExecCtx(ctx, query, data.AgentID, data.StockCode, data.Shares, data.AvgCost, data.BuyDate)
	}, key)
	return err
}

func (m *defaultPositionsModel) Delete(ctx context.Context, agentID, stockCode string) error {
	key := m.cacheKey(agentID, stockCode)
	_, err := m.ExecCtx(ctx, func(ctx context.Context, conn sqlx.SqlConn) (interface{}, error) {
		query := fmt.Sprintf("delete from %s where agent_id = $1 and stock_code = $2", m.table)
		return conn.ExecCtx(ctx, query, agentID, stockCode)
	}, key)
	return err
}
