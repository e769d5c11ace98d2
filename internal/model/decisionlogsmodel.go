package model

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var (
	decisionLogsFieldNames = []string{
		"id", "agent_id", "task_id", "llm_request_log_id", "order_id",
		"classification", "detail", "created_at",
	}
	decisionLogsRows             = strings.Join(decisionLogsFieldNames, ",")
	decisionLogsInsertFieldNames = decisionLogsFieldNames[1 : len(decisionLogsFieldNames)-1]
	decisionLogsInsertCols       = strings.Join(decisionLogsInsertFieldNames, ",")
)

// Classification values for a DecisionLogs row (spec §3,
// status∈{success,no_trade,api_error}). A cycle that ran to completion
// is "success" whether or not it placed a trade; "no_trade" is
// reserved for a failure that isn't an API-facing one, and
// "api_error" for a failure that keyword-matches as such.
const (
	ClassificationSuccess  = "success"
	ClassificationNoTrade  = "no_trade"
	ClassificationAPIError = "api_error"
)

// DecisionLogs is the row shape of spec §3 "Decision Log": one row per
// decision cycle attempt for an agent, successful or not.
type DecisionLogs struct {
	ID               int64          `db:"id"`
	AgentID          string         `db:"agent_id"`
	TaskID           sql.NullInt64  `db:"task_id"`
	LLMRequestLogID  sql.NullInt64  `db:"llm_request_log_id"`
	OrderID          sql.NullString `db:"order_id"`
	Classification   string         `db:"classification"`
	Detail           string         `db:"detail"`
	CreatedAt        time.Time      `db:"created_at"`
}

// DecisionLogsModel is the interface the repository layer depends on.
type DecisionLogsModel interface {
	Insert(ctx context.Context, data *DecisionLogs) (int64, error)
	ListByAgent(ctx context.Context, agentID string, limit int) ([]*DecisionLogs, error)
}

type customDecisionLogsModel struct {
	*defaultDecisionLogsModel
}

type defaultDecisionLogsModel struct {
	conn  sqlx.SqlConn
	table string
}

// NewDecisionLogsModel returns the plain (uncached) model for decision logs.
func NewDecisionLogsModel(conn sqlx.SqlConn) DecisionLogsModel {
	return &customDecisionLogsModel{
		defaultDecisionLogsModel: &defaultDecisionLogsModel{conn: conn, table: `"decision_logs"`},
	}
}

func (m *defaultDecisionLogsModel) Insert(ctx context.Context, data *DecisionLogs) (int64, error) {
	query := fmt.Sprintf("insert into %s (%s,created_at) values ($1,$2,$3,$4,$5,$6,now()) returning id",
		m.table, decisionLogsInsertCols)
	var id int64
	err := m.conn.QueryRowCtx(ctx, &id, query,
		data.AgentID, data.TaskID, data.LLMRequestLogID, data.OrderID,
		data.Classification, data.Detail)
	return id, err
}

func (m *defaultDecisionLogsModel) ListByAgent(ctx context.Context, agentID string, limit int) ([]*DecisionLogs, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(
		"select %s from %s where agent_id = $1 order by created_at desc limit $2",
		decisionLogsRows, m.table)
	var rows []*DecisionLogs
	if err := m.conn.QueryRowsCtx(ctx, &rows, query, agentID, limit); err != nil {
		return nil, err
	}
	return rows, nil
}
