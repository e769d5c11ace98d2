package model

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/stores/sqlx"
)

var (
	templatesFieldNames = []string{"id", "name", "body", "strict", "created_at", "updated_at"}
	templatesRows       = strings.Join(templatesFieldNames, ",")
)

// PromptTemplates is the row shape of spec §3 "Prompt Template". Strict
// controls whether placeholder substitution (internal/prompt's regexp
// engine) fails on a missing key or substitutes an empty string.
type PromptTemplates struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Body      string    `db:"body"`
	Strict    bool      `db:"strict"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// PromptTemplatesModel is the interface the repository layer depends on.
type PromptTemplatesModel interface {
	Insert(ctx context.Context, data *PromptTemplates) error
	FindOne(ctx context.Context, id string) (*PromptTemplates, error)
	Update(ctx context.Context, data *PromptTemplates) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*PromptTemplates, error)
}

type customPromptTemplatesModel struct {
	*defaultPromptTemplatesModel
}

type defaultPromptTemplatesModel struct {
	conn  sqlx.SqlConn
	table string
}

// NewPromptTemplatesModel returns the plain (uncached) model for prompt templates.
func NewPromptTemplatesModel(conn sqlx.SqlConn) PromptTemplatesModel {
	return &customPromptTemplatesModel{
		defaultPromptTemplatesModel: &defaultPromptTemplatesModel{conn: conn, table: `"prompt_templates"`},
	}
}

func (m *defaultPromptTemplatesModel) Insert(ctx context.Context, data *PromptTemplates) error {
	query := fmt.Sprintf(
		"insert into %s (id, name, body, strict, created_at, updated_at) values ($1,$2,$3,$4,now(),now())",
		m.table)
	_, err := m.conn.ExecCtx(ctx, query, data.ID, data.Name, data.Body, data.Strict)
	return err
}

func (m *defaultPromptTemplatesModel) FindOne(ctx context.Context, id string) (*PromptTemplates, error) {
	var resp PromptTemplates
	query := fmt.Sprintf("select %s from %s where id = $1 limit 1", templatesRows, m.table)
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

func (m *defaultPromptTemplatesModel) Update(ctx context.Context, data *PromptTemplates) error {
	query := fmt.Sprintf(
		"update %s set name=$1, body=$2, strict=$3, updated_at=now() where id=$4", m.table)
	_, err := m.conn.ExecCtx(ctx, query, data.Name, data.Body, data.Strict, data.ID)
	return err
}

func (m *defaultPromptTemplatesModel) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf("delete from %s where id = $1", m.table)
	_, err := m.conn.ExecCtx(ctx, query, id)
	return err
}

func (m *defaultPromptTemplatesModel) List(ctx context.Context) ([]*PromptTemplates, error) {
	var rows []*PromptTemplates
	query := fmt.Sprintf("select %s from %s order by name", templatesRows, m.table)
	if err := m.conn.QueryRowsCtx(ctx, &rows, query); err != nil {
		return nil, err
	}
	return rows, nil
}
