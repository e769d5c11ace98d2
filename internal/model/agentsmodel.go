package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlc"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"nof0-trading-agents/internal/money"
)

var (
	agentsFieldNames        = []string{"id", "name", "initial_cash", "current_cash", "template_id", "provider_id", "model_name", "status", "schedule_type", "created_at", "updated_at"}
	agentsRows              = strings.Join(agentsFieldNames, ",")
	agentsRowsExpectAutoSet = strings.Join(agentsFieldNames[1:], ",")

	cacheNof0AgentsIDPrefix = "cache:nof0:agents:id:"
)

// Agents is the row shape of the agent table (spec §3 "Agent").
type Agents struct {
	ID           string       `db:"id"`
	Name         string       `db:"name"`
	InitialCash  money.Amount `db:"initial_cash"`
	CurrentCash  money.Amount `db:"current_cash"`
	TemplateID   string       `db:"template_id"`
	ProviderID   string       `db:"provider_id"`
	ModelName    string       `db:"model_name"`
	Status       string       `db:"status"`
	ScheduleType string       `db:"schedule_type"`
	CreatedAt    time.Time    `db:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at"`
}

// ListFilter narrows AgentsModel.List, mirroring the GET /agents query parameters.
type ListFilter struct {
	Status    string
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

// AgentsModel is the interface the repository layer depends on.
type AgentsModel interface {
	Insert(ctx context.Context, data *Agents) error
	FindOne(ctx context.Context, id string) (*Agents, error)
	Update(ctx context.Context, data *Agents) error
	UpdateStatus(ctx context.Context, id, status string) error
	UpdateCash(ctx context.Context, id string, cash money.Amount) error
	List(ctx context.Context, filter ListFilter) ([]*Agents, error)
}

type customAgentsModel struct {
	*defaultAgentsModel
}

type defaultAgentsModel struct {
	sqlc.CachedConn
	table string
}

// NewAgentsModel returns the cached model implementation for agents.
func NewAgentsModel(conn sqlx.SqlConn, c cache.CacheConf) AgentsModel {
	return &customAgentsModel{
		defaultAgentsModel: newAgentsModel(conn, c),
	}
}

func newAgentsModel(conn sqlx.SqlConn, c cache.CacheConf) *defaultAgentsModel {
	return &defaultAgentsModel{
		CachedConn: sqlc.NewConn(conn, c),
		table:      `"agents"`,
	}
}

func (m *defaultAgentsModel) cacheKey(id string) string {
	return fmt.Sprintf("%s%s", cacheNof0AgentsIDPrefix, id)
}

func (m *defaultAgentsModel) Insert(ctx context.Context, data *Agents) error {
	query := fmt.Sprintf(
		"insert into %s (id,%s) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,now(),now())",
		m.table, agentsRowsExpectAutoSet)
	_, err := m.ExecCtx(ctx, func(ctx context.Context, conn sqlx.SqlConn) (interface{}, error) {
		return conn.ExecCtx(ctx, query, data.ID, data.Name, data.InitialCash, data.CurrentCash,
			data.TemplateID, data.ProviderID, data.ModelName, data.Status, data.ScheduleType)
	})
	return err
}

func (m *defaultAgentsModel) FindOne(ctx context.Context, id string) (*Agents, error) {
	key := m.cacheKey(id)
	var resp Agents
	err := m.QueryRowCtx(ctx, &resp, key, func(ctx context.Context, conn sqlx.SqlConn, v interface{}) error {
		query := fmt.Sprintf("select %s from %s where id = $1 limit 1", agentsRows, m.table)
		return conn.QueryRowCtx(ctx, v, query, id)
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

func (m *defaultAgentsModel) Update(ctx context.Context, data *Agents) error {
	key := m.cacheKey(data.ID)
	_, err := m.ExecCtx(ctx, func(ctx context.Context, conn sqlx.SqlConn) (interface{}, error) {
		query := fmt.Sprintf(
			"update %s set name=$1, template_id=$2, provider_id=$3, model_name=$4, schedule_type=$5, updated_at=now() where id=$6",
			m.table)
		return conn.ExecCtx(ctx, query, data.Name, data.TemplateID, data.ProviderID,
			data.ModelName, data.ScheduleType, data.ID)
	}, key)
	return err
}

func (m *defaultAgentsModel) UpdateStatus(ctx context.Context, id, status string) error {
	key := m.cacheKey(id)
	_, err := m.ExecCtx(ctx, func(ctx context.Context, conn sqlx.SqlConn) (interface{}, error) {
		query := fmt.Sprintf("update %s set status=$1, updated_at=now() where id=$2", m.table)
		return conn.ExecCtx(ctx, query, status, id)
	}, key)
	return err
}

// UpdateCash is the single authoritative cash write per cycle (spec §4.8
// "after all decisions for the cycle, single portfolio.update_cash and
// agent.current_cash write").
func (m *defaultAgentsModel) UpdateCash(ctx context.Context, id string, cash money.Amount) error {
	key := m.cacheKey(id)
	_, err := m.ExecCtx(ctx, func(ctx context.Context, conn sqlx.SqlConn) (interface{}, error) {
		query := fmt.Sprintf("update %s set current_cash=$1, updated_at=now() where id=$2", m.table)
		return conn.ExecCtx(ctx, query, cash, id)
	}, key)
	return err
}

func (m *defaultAgentsModel) List(ctx context.Context, filter ListFilter) ([]*Agents, error) {
	var conds []string
	var args []interface{}
	argN := 1

	if filter.Status != "" {
		conds = append(conds, fmt.Sprintf("status = $%d", argN))
		args = append(args, filter.Status)
		argN++
	} else {
		conds = append(conds, "status != 'deleted'")
	}

	where := ""
	if len(conds) > 0 {
		where = "where " + strings.Join(conds, " and ")
	}

	sortCol := "created_at"
	if filter.SortBy == "name" {
		sortCol = "name"
	}
	sortDir := "desc"
	if strings.EqualFold(filter.SortOrder, "asc") {
		sortDir = "asc"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf("select %s from %s %s order by %s %s limit $%d offset $%d",
		agentsRows, m.table, where, sortCol, sortDir, argN, argN+1)
	args = append(args, limit, filter.Offset)

	var rows []*Agents
	err := m.QueryRowsNoCacheCtx(ctx, &rows, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
