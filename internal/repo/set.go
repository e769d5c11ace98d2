// Package repo bundles the per-table models (internal/model) into one
// dependency-injected Set, the way the source this was adapted from
// wired its store layer: callers depend on repo.Set, never on a bare
// sqlx.SqlConn or an individual model directly.
package repo

import (
	"github.com/zeromicro/go-zero/core/stores/cache"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"nof0-trading-agents/internal/model"
)

// Config is the subset of connection settings repo.New needs: a
// Postgres DSN and the Redis nodes backing the cache-aside models.
type Config struct {
	DataSource string
	CacheConf  cache.CacheConf
}

// Set is the single handle every service-layer component depends on.
type Set struct {
	Conn sqlx.SqlConn

	Agents        model.AgentsModel
	Positions     model.PositionsModel
	Orders        model.OrdersModel
	Transactions  model.TransactionsModel
	Quotes        model.QuotesModel
	MarketData    model.MarketDataModel
	Providers     model.LLMProvidersModel
	Templates     model.PromptTemplatesModel
	LLMLogs       model.LLMRequestLogsModel
	DecisionLogs  model.DecisionLogsModel
	SystemTasks   model.SystemTasksModel
	TaskLogs      model.TaskLogsModel
}

// New wires a Set from a raw Postgres DSN, matching the shape of the
// deleted teacher's internal/repo/deps.go: one sqlx.SqlConn shared
// across every model, cache-aside models additionally wired to Redis.
func New(c Config) *Set {
	conn := sqlx.NewSqlConn("postgres", c.DataSource)
	return NewFromConn(conn, c.CacheConf)
}

// NewFromConn builds a Set from an already-constructed connection,
// primarily so tests can substitute a *sqlx.mockConn.
func NewFromConn(conn sqlx.SqlConn, cacheConf cache.CacheConf) *Set {
	return &Set{
		Conn:         conn,
		Agents:       model.NewAgentsModel(conn, cacheConf),
		Positions:    model.NewPositionsModel(conn, cacheConf),
		Orders:       model.NewOrdersModel(conn),
		Transactions: model.NewTransactionsModel(conn),
		Quotes:       model.NewQuotesModel(conn),
		MarketData:   model.NewMarketDataModel(conn),
		Providers:    model.NewLLMProvidersModel(conn),
		Templates:    model.NewPromptTemplatesModel(conn),
		LLMLogs:      model.NewLLMRequestLogsModel(conn),
		DecisionLogs: model.NewDecisionLogsModel(conn),
		SystemTasks:  model.NewSystemTasksModel(conn),
		TaskLogs:     model.NewTaskLogsModel(conn),
	}
}
