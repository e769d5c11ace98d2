package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var (
	taskLogsFieldNames = []string{
		"id", "task_id", "agent_id", "success", "message", "created_at",
	}
	taskLogsRows             = strings.Join(taskLogsFieldNames, ",")
	taskLogsInsertFieldNames = taskLogsFieldNames[1 : len(taskLogsFieldNames)-1]
	taskLogsInsertCols       = strings.Join(taskLogsInsertFieldNames, ",")
)

// TaskLogs is the row shape of spec §3 "Task Log": one row per agent
// sub-result within a System Task's dispatch, used to compute the
// aggregate status rule (failed only if all sub-results failed and
// count > 0).
type TaskLogs struct {
	ID        int64     `db:"id"`
	TaskID    int64     `db:"task_id"`
	AgentID   string    `db:"agent_id"`
	Success   bool      `db:"success"`
	Message   string    `db:"message"`
	CreatedAt time.Time `db:"created_at"`
}

// TaskLogsModel is the interface the repository layer depends on.
type TaskLogsModel interface {
	Insert(ctx context.Context, data *TaskLogs) error
	ListByTask(ctx context.Context, taskID int64) ([]*TaskLogs, error)
	CountFailuresByTask(ctx context.Context, taskID int64) (total int64, failed int64, err error)
}

type customTaskLogsModel struct {
	*defaultTaskLogsModel
}

type defaultTaskLogsModel struct {
	conn  sqlx.SqlConn
	table string
}

// NewTaskLogsModel returns the plain (uncached) model for task logs.
func NewTaskLogsModel(conn sqlx.SqlConn) TaskLogsModel {
	return &customTaskLogsModel{
		defaultTaskLogsModel: &defaultTaskLogsModel{conn: conn, table: `"task_logs"`},
	}
}

func (m *defaultTaskLogsModel) Insert(ctx context.Context, data *TaskLogs) error {
	query := fmt.Sprintf("insert into %s (%s,created_at) values ($1,$2,$3,$4,now())",
		m.table, taskLogsInsertCols)
	_, err := m.conn.ExecCtx(ctx, query, data.TaskID, data.AgentID, data.Success, data.Message)
	return err
}

func (m *defaultTaskLogsModel) ListByTask(ctx context.Context, taskID int64) ([]*TaskLogs, error) {
	query := fmt.Sprintf("select %s from %s where task_id = $1 order by created_at", taskLogsRows, m.table)
	var rows []*TaskLogs
	if err := m.conn.QueryRowsCtx(ctx, &rows, query, taskID); err != nil {
		return nil, err
	}
	return rows, nil
}

func (m *defaultTaskLogsModel) CountFailuresByTask(ctx context.Context, taskID int64) (int64, int64, error) {
	query := fmt.Sprintf(
		`select count(*) as total, count(*) filter (where not success) as failed
		 from %s where task_id = $1`, m.table)
	var row struct {
		Total  int64 `db:"total"`
		Failed int64 `db:"failed"`
	}
	if err := m.conn.QueryRowCtx(ctx, &row, query, taskID); err != nil {
		return 0, 0, err
	}
	return row.Total, row.Failed, nil
}
