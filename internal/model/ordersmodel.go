package model

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"nof0-trading-agents/internal/money"
)

var (
	ordersFieldNames = []string{
		"order_id", "agent_id", "stock_code", "side", "quantity", "price",
		"status", "reject_reason", "reason", "llm_request_log_id", "created_at",
	}
	ordersRows             = strings.Join(ordersFieldNames, ",")
	ordersInsertFieldNames = ordersFieldNames[:len(ordersFieldNames)-1]
	ordersInsertCols       = strings.Join(ordersInsertFieldNames, ",")
)

// Orders is the row shape of spec §3 "Order". hold-side rows carry no
// stock/quantity/price and are recorded as filled synthetic rows.
type Orders struct {
	OrderID          string         `db:"order_id"`
	AgentID          string         `db:"agent_id"`
	StockCode        sql.NullString `db:"stock_code"`
	Side             string         `db:"side"`
	Quantity         sql.NullInt64  `db:"quantity"`
	Price            *money.Amount  `db:"price"`
	Status           string         `db:"status"`
	RejectReason     sql.NullString `db:"reject_reason"`
	Reason           string         `db:"reason"`
	LLMRequestLogID  sql.NullInt64  `db:"llm_request_log_id"`
	CreatedAt        time.Time      `db:"created_at"`
}

// OrderFilter narrows OrdersModel.ListByAgent.
type OrderFilter struct {
	Status string
	Limit  int
	Offset int
}

// OrdersModel is the interface the repository layer depends on.
type OrdersModel interface {
	Insert(ctx context.Context, data *Orders) error
	FindOne(ctx context.Context, orderID string) (*Orders, error)
	ListByAgent(ctx context.Context, agentID string, filter OrderFilter) ([]*Orders, error)
	UpdateStatus(ctx context.Context, orderID, status string, rejectReason sql.NullString) error
	CountByAgent(ctx context.Context, agentID, status string) (int64, error)
}

type customOrdersModel struct {
	*defaultOrdersModel
}

type defaultOrdersModel struct {
	conn  sqlx.SqlConn
	table string
}

// NewOrdersModel returns the plain (uncached) model for orders: an
// append-mostly audit table gains nothing from a cache-aside layer.
func NewOrdersModel(conn sqlx.SqlConn) OrdersModel {
	return &customOrdersModel{
		defaultOrdersModel: &defaultOrdersModel{conn: conn, table: `"orders"`},
	}
}

func (m *defaultOrdersModel) Insert(ctx context.Context, data *Orders) error {
	query := fmt.Sprintf("insert into %s (%s,created_at) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now())",
		m.table, ordersInsertCols)
	_, err := m.conn.ExecCtx(ctx, query,
		data.OrderID, data.AgentID, data.StockCode, data.Side, data.Quantity,
		data.Price, data.Status, data.RejectReason, data.Reason, data.LLMRequestLogID)
	return err
}

func (m *defaultOrdersModel) FindOne(ctx context.Context, orderID string) (*Orders, error) {
	var resp Orders
	query := fmt.Sprintf("select %s from %s where order_id = $1 limit 1", ordersRows, m.table)
	err := m.conn.QueryRowCtx(ctx, &resp, query, orderID)
	switch err {
	case nil:
		return &resp, nil
	case sqlx.ErrNotFound:
		return nil, ErrNotFound
	default:
		return nil, err
	}
}

func (m *defaultOrdersModel) ListByAgent(ctx context.Context, agentID string, filter OrderFilter) ([]*Orders, error) {
	args := []interface{}{agentID}
	where := "agent_id = $1"
	if filter.Status != "" {
		where += " and status = $2"
		args = append(args, filter.Status)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, filter.Offset)
	query := fmt.Sprintf("select %s from %s where %s order by created_at desc limit $%d offset $%d",
		ordersRows, m.table, where, len(args)-1, len(args))

	var rows []*Orders
	if err := m.conn.QueryRowsCtx(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (m *defaultOrdersModel) UpdateStatus(ctx context.Context, orderID, status string, rejectReason sql.NullString) error {
	query := fmt.Sprintf("update %s set status=$1, reject_reason=$2 where order_id=$3", m.table)
	_, err := m.conn.ExecCtx(ctx, query, status, rejectReason, orderID)
	return err
}

func (m *defaultOrdersModel) CountByAgent(ctx context.Context, agentID, status string) (int64, error) {
	var count int64
	args := []interface{}{agentID}
	where := "agent_id = $1"
	if status != "" {
		where += " and status = $2"
		args = append(args, status)
	}
	query := fmt.Sprintf("select count(*) from %s where %s", m.table, where)
	err := m.conn.QueryRowCtx(ctx, &count, query, args...)
	return count, err
}
