package prompt

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"nof0-trading-agents/internal/model"
	"nof0-trading-agents/internal/repo"
)

// Manager owns template CRUD and rendering, backed by repo.Set.
type Manager struct {
	repo *repo.Set
}

func NewManager(r *repo.Set) *Manager {
	return &Manager{repo: r}
}

func (m *Manager) Create(ctx context.Context, name, body string, strict bool) (*model.PromptTemplates, error) {
	if err := ValidateTemplate(body); err != nil {
		return nil, err
	}
	t := &model.PromptTemplates{ID: uuid.NewString(), Name: name, Body: body, Strict: strict}
	if err := m.repo.Templates.Insert(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (m *Manager) Get(ctx context.Context, id string) (*model.PromptTemplates, error) {
	return m.repo.Templates.FindOne(ctx, id)
}

func (m *Manager) Update(ctx context.Context, t *model.PromptTemplates) error {
	if err := ValidateTemplate(t.Body); err != nil {
		return err
	}
	return m.repo.Templates.Update(ctx, t)
}

func (m *Manager) Delete(ctx context.Context, id string) error {
	return m.repo.Templates.Delete(ctx, id)
}

func (m *Manager) List(ctx context.Context) ([]*model.PromptTemplates, error) {
	return m.repo.Templates.List(ctx)
}

// RenderForAgent resolves the template bound to an agent and renders
// it with the supplied context map, per spec §4.5 step 1.
func (m *Manager) RenderForAgent(ctx context.Context, templateID string, renderCtx map[string]string) (string, error) {
	t, err := m.repo.Templates.FindOne(ctx, templateID)
	if err != nil {
		return "", fmt.Errorf("prompt: resolve template %s: %w", templateID, err)
	}
	return Render(t.Body, renderCtx, t.Strict)
}
