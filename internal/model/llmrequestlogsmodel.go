package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

// PromptTruncateLimit is the character cap on stored prompt/response
// bodies (spec §3 "LLM Request Log"), applied by Insert itself.
const PromptTruncateLimit = 10000

var (
	llmRequestLogsFieldNames = []string{
		"id", "agent_id", "provider_id", "model_name", "prompt", "response",
		"latency_ms", "status", "tokens_in", "tokens_out", "error", "created_at",
	}
	llmRequestLogsRows             = strings.Join(llmRequestLogsFieldNames, ",")
	llmRequestLogsInsertFieldNames = llmRequestLogsFieldNames[1 : len(llmRequestLogsFieldNames)-1]
	llmRequestLogsInsertCols       = strings.Join(llmRequestLogsInsertFieldNames, ",")
)

// LLMRequestLogs is the row shape of spec §3 "LLM Request Log": the raw
// request/response pair behind a decision, truncated to
// PromptTruncateLimit characters.
type LLMRequestLogs struct {
	ID         int64     `db:"id"`
	AgentID    string    `db:"agent_id"`
	ProviderID string    `db:"provider_id"`
	ModelName  string    `db:"model_name"`
	Prompt     string    `db:"prompt"`
	Response   string    `db:"response"`
	LatencyMs  int64     `db:"latency_ms"`
	Status     string    `db:"status"`
	TokensIn   int       `db:"tokens_in"`
	TokensOut  int       `db:"tokens_out"`
	Error      string    `db:"error"`
	CreatedAt  time.Time `db:"created_at"`
}

// LLMRequestLogsModel is the interface the repository layer depends on.
type LLMRequestLogsModel interface {
	Insert(ctx context.Context, data *LLMRequestLogs) (int64, error)
	FindOne(ctx context.Context, id int64) (*LLMRequestLogs, error)
	ListByAgent(ctx context.Context, agentID string, limit int) ([]*LLMRequestLogs, error)
}

type customLLMRequestLogsModel struct {
	*defaultLLMRequestLogsModel
}

type defaultLLMRequestLogsModel struct {
	conn  sqlx.SqlConn
	table string
}

// NewLLMRequestLogsModel returns the plain (uncached) model for LLM request logs.
func NewLLMRequestLogsModel(conn sqlx.SqlConn) LLMRequestLogsModel {
	return &customLLMRequestLogsModel{
		defaultLLMRequestLogsModel: &defaultLLMRequestLogsModel{conn: conn, table: `"llm_request_logs"`},
	}
}

// Truncate clamps s to PromptTruncateLimit characters, matching spec
// §3's storage cap on prompt/response bodies.
func Truncate(s string) string {
	r := []rune(s)
	if len(r) <= PromptTruncateLimit {
		return s
	}
	return string(r[:PromptTruncateLimit])
}

func (m *defaultLLMRequestLogsModel) Insert(ctx context.Context, data *LLMRequestLogs) (int64, error) {
	query := fmt.Sprintf("insert into %s (%s,created_at) values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,now()) returning id",
		m.table, llmRequestLogsInsertCols)
	var id int64
	err := m.conn.QueryRowCtx(ctx, &id, query,
		data.AgentID, data.ProviderID, data.ModelName, Truncate(data.Prompt),
		Truncate(data.Response), data.LatencyMs, data.Status, data.TokensIn, data.TokensOut, data.Error)
	return id, err
}

func (m *defaultLLMRequestLogsModel) FindOne(ctx context.Context, id int64) (*LLMRequestLogs, error) {
	var resp LLMRequestLogs
	query := fmt.Sprintf("select %s from %s where id = $1 limit 1", llmRequestLogsRows, m.table)
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

func (m *defaultLLMRequestLogsModel) ListByAgent(ctx context.Context, agentID string, limit int) ([]*LLMRequestLogs, error) {
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(
		"select %s from %s where agent_id = $1 order by created_at desc limit $2",
		llmRequestLogsRows, m.table)
	var rows []*LLMRequestLogs
	if err := m.conn.QueryRowsCtx(ctx, &rows, query, agentID, limit); err != nil {
		return nil, err
	}
	return rows, nil
}
