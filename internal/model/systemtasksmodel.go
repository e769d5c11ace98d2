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
	systemTasksFieldNames = []string{
		"id", "task_type", "status", "paused", "scheduled_at", "started_at",
		"finished_at", "detail",
	}
	systemTasksRows = strings.Join(systemTasksFieldNames, ",")
)

// SystemTasks is the row shape of spec §3 "System Task": one row per
// scheduler dispatch (agent_decision / quote_sync / market_refresh).
type SystemTasks struct {
	ID          int64          `db:"id"`
	TaskType    string         `db:"task_type"`
	Status      string         `db:"status"`
	Paused      bool           `db:"paused"`
	ScheduledAt time.Time      `db:"scheduled_at"`
	StartedAt   sql.NullTime   `db:"started_at"`
	FinishedAt  sql.NullTime   `db:"finished_at"`
	Detail      sql.NullString `db:"detail"`
}

// SystemTasksModel is the interface the repository layer depends on.
type SystemTasksModel interface {
	Insert(ctx context.Context, data *SystemTasks) (int64, error)
	FindOne(ctx context.Context, id int64) (*SystemTasks, error)
	UpdateStatus(ctx context.Context, id int64, status string, detail string) error
	MarkStarted(ctx context.Context, id int64) error
	ListByType(ctx context.Context, taskType string, limit int) ([]*SystemTasks, error)
	IsPaused(ctx context.Context, taskType string) (bool, error)
}

type customSystemTasksModel struct {
	*defaultSystemTasksModel
}

type defaultSystemTasksModel struct {
	conn  sqlx.SqlConn
	table string
}

// NewSystemTasksModel returns the plain (uncached) model for system tasks.
func NewSystemTasksModel(conn sqlx.SqlConn) SystemTasksModel {
	return &customSystemTasksModel{
		defaultSystemTasksModel: &defaultSystemTasksModel{conn: conn, table: `"system_tasks"`},
	}
}

func (m *defaultSystemTasksModel) Insert(ctx context.Context, data *SystemTasks) (int64, error) {
	query := fmt.Sprintf(
		"insert into %s (task_type, status, paused, scheduled_at) values ($1,$2,$3,$4) returning id",
		m.table)
	var id int64
	err := m.conn.QueryRowCtx(ctx, &id, query, data.TaskType, data.Status, data.Paused, data.ScheduledAt)
	return id, err
}

func (m *defaultSystemTasksModel) FindOne(ctx context.Context, id int64) (*SystemTasks, error) {
	var resp SystemTasks
	query := fmt.Sprintf("select %s from %s where id = $1 limit 1", systemTasksRows, m.table)
	err := m.conn.QueryRowCtx(ctx, &resp, query, id)
	switch err {
	case nil:
		return &resp, nil
	case sqlx.ErrNotFound:
		return nil, ErrNotFound
	default:
		return nil, err
	}
}

func (m *defaultSystemTasksModel) MarkStarted(ctx context.Context, id int64) error {
	query := fmt.Sprintf("update %s set status='running', started_at=now() where id=$1", m.table)
	_, err := m.conn.ExecCtx(ctx, query, id)
	return err
}

// UpdateStatus records the terminal status of a task: success, failed
// (only when every agent sub-result failed and at least one ran), or
// skipped (paused / non-trading-day).
func (m *defaultSystemTasksModel) UpdateStatus(ctx context.Context, id int64, status string, detail string) error {
	query := fmt.Sprintf("update %s set status=$1, detail=$2, finished_at=now() where id=$3", m.table)
	_, err := m.conn.ExecCtx(ctx, query, status, detail, id)
	return err
}

func (m *defaultSystemTasksModel) ListByType(ctx context.Context, taskType string, limit int) ([]*SystemTasks, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(
		"select %s from %s where task_type = $1 order by scheduled_at desc limit $2",
		systemTasksRows, m.table)
	var rows []*SystemTasks
	if err := m.conn.QueryRowsCtx(ctx, &rows, query, taskType, limit); err != nil {
		return nil, err
	}
	return rows, nil
}

func (m *defaultSystemTasksModel) IsPaused(ctx context.Context, taskType string) (bool, error) {
	var paused bool
	query := fmt.Sprintf(
		"select paused from %s where task_type = $1 order by scheduled_at desc limit 1", m.table)
	err := m.conn.QueryRowCtx(ctx, &paused, query, taskType)
	switch err {
	case nil:
		return paused, nil
	case sqlx.ErrNotFound:
		return false, nil
	default:
		return false, err
	}
}
