package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var (
	providersFieldNames = []string{
		"id", "name", "base_url", "api_key", "default_model", "active", "created_at",
	}
	providersRows = strings.Join(providersFieldNames, ",")
)

// LLMProviders is the row shape of spec §3 "LLM Provider": the wire
// endpoint + credential an Agent's model_name resolves against.
type LLMProviders struct {
	ID           string    `db:"id"`
	Name         string    `db:"name"`
	BaseURL      string    `db:"base_url"`
	APIKey       string    `db:"api_key"`
	DefaultModel string    `db:"default_model"`
	Active       bool      `db:"active"`
	CreatedAt    time.Time `db:"created_at"`
}

// LLMProvidersModel is the interface the repository layer depends on.
type LLMProvidersModel interface {
	FindOne(ctx context.Context, id string) (*LLMProviders, error)
	ListActive(ctx context.Context) ([]*LLMProviders, error)
}

type customLLMProvidersModel struct {
	*defaultLLMProvidersModel
}

type defaultLLMProvidersModel struct {
	conn  sqlx.SqlConn
	table string
}

// NewLLMProvidersModel returns the plain (uncached) model for LLM providers.
func NewLLMProvidersModel(conn sqlx.SqlConn) LLMProvidersModel {
	return &customLLMProvidersModel{
		defaultLLMProvidersModel: &defaultLLMProvidersModel{conn: conn, table: `"llm_providers"`},
	}
}

func (m *defaultLLMProvidersModel) FindOne(ctx context.Context, id string) (*LLMProviders, error) {
	var resp LLMProviders
	query := fmt.Sprintf("select %s from %s where id = $1 limit 1", providersRows, m.table)
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

func (m *defaultLLMProvidersModel) ListActive(ctx context.Context) ([]*LLMProviders, error) {
	var rows []*LLMProviders
	query := fmt.Sprintf("select %s from %s where active = true order by name", providersRows, m.table)
	if err := m.conn.QueryRowsCtx(ctx, &rows, query); err != nil {
		return nil, err
	}
	return rows, nil
}
