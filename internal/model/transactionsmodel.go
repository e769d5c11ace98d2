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
	transactionsFieldNames = []string{
		"tx_id", "order_id", "agent_id", "stock_code", "side", "quantity", "price",
		"commission", "stamp_tax", "transfer_fee", "executed_at",
	}
	transactionsRows             = strings.Join(transactionsFieldNames, ",")
	transactionsInsertFieldNames = transactionsFieldNames[:len(transactionsFieldNames)-1]
	transactionsInsertCols       = strings.Join(transactionsInsertFieldNames, ",")
)

// Transactions is the row shape of spec §3 "Transaction": one per
// filled order, including the synthetic hold/wait rows whose fee
// columns are null.
type Transactions struct {
	TxID         string         `db:"tx_id"`
	OrderID      string         `db:"order_id"`
	AgentID      string         `db:"agent_id"`
	StockCode    sql.NullString `db:"stock_code"`
	Side         string         `db:"side"`
	Quantity     sql.NullInt64  `db:"quantity"`
	Price        *money.Amount  `db:"price"`
	Commission   *money.Amount  `db:"commission"`
	StampTax     *money.Amount  `db:"stamp_tax"`
	TransferFee  *money.Amount  `db:"transfer_fee"`
	ExecutedAt   time.Time      `db:"executed_at"`
}

// TransactionsModel is the interface the repository layer depends on.
type TransactionsModel interface {
	Insert(ctx context.Context, data *Transactions) error
	ListByAgent(ctx context.Context, agentID string, limit, offset int) ([]*Transactions, error)
	SumFeesByAgent(ctx context.Context, agentID string) (money.Amount, error)
}

type customTransactionsModel struct {
	*defaultTransactionsModel
}

type defaultTransactionsModel struct {
	conn  sqlx.SqlConn
	table string
}

// NewTransactionsModel returns the plain (uncached) model for transactions.
func NewTransactionsModel(conn sqlx.SqlConn) TransactionsModel {
	return &customTransactionsModel{
		defaultTransactionsModel: &defaultTransactionsModel{conn: conn, table: `"transactions"`},
	}
}

func (m *defaultTransactionsModel) Insert(ctx context.Context, data *Transactions) error {
	query := fmt.Sprintf("insert into %s (%s,executed_at) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now())",
		m.table, transactionsInsertCols)
	_, err := m.conn.ExecCtx(ctx, query,
		data.TxID, data.OrderID, data.AgentID, data.StockCode, data.Side, data.Quantity,
		data.Price, data.Commission, data.StampTax, data.TransferFee)
	return err
}

func (m *defaultTransactionsModel) ListByAgent(ctx context.Context, agentID string, limit, offset int) ([]*Transactions, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf("select %s from %s where agent_id = $1 order by executed_at desc limit $2 offset $3",
		transactionsRows, m.table)
	var rows []*Transactions
	if err := m.conn.QueryRowsCtx(ctx, &rows, query, agentID, limit, offset); err != nil {
		return nil, err
	}
	return rows, nil
}

func (m *defaultTransactionsModel) SumFeesByAgent(ctx context.Context, agentID string) (money.Amount, error) {
	var total money.Amount
	query := fmt.Sprintf(
		"select coalesce(sum(coalesce(commission,0)+coalesce(stamp_tax,0)+coalesce(transfer_fee,0)),0) from %s where agent_id = $1",
		m.table)
	err := m.conn.QueryRowCtx(ctx, &total, query, agentID)
	if err != nil {
		return money.Zero, err
	}
	return total, nil
}
