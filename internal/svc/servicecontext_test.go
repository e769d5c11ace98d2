package svc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nof0-trading-agents/internal/agentmgr"
	"nof0-trading-agents/internal/config"
	"nof0-trading-agents/internal/model"
	"nof0-trading-agents/internal/money"
	"nof0-trading-agents/internal/repo"
	"nof0-trading-agents/internal/task"
)

type fakeAgents struct{ rows []*model.Agents }

func (f *fakeAgents) Insert(ctx context.Context, data *model.Agents) error { return nil }
func (f *fakeAgents) FindOne(ctx context.Context, id string) (*model.Agents, error) {
	return nil, model.ErrNotFound
}
func (f *fakeAgents) Update(ctx context.Context, data *model.Agents) error       { return nil }
func (f *fakeAgents) UpdateStatus(ctx context.Context, id, status string) error { return nil }
func (f *fakeAgents) UpdateCash(ctx context.Context, id string, cash money.Amount) error {
	return nil
}
func (f *fakeAgents) List(ctx context.Context, filter model.ListFilter) ([]*model.Agents, error) {
	return f.rows, nil
}

type fakePositions struct{ byAgent map[string][]*model.Positions }

func (f *fakePositions) Get(ctx context.Context, agentID, stockCode string) (*model.Positions, error) {
	return nil, model.ErrNotFound
}
func (f *fakePositions) ListByAgent(ctx context.Context, agentID string) ([]*model.Positions, error) {
	return f.byAgent[agentID], nil
}
func (f *fakePositions) ActiveByAgents(ctx context.Context, agentIDs []string) ([]*model.Positions, error) {
	return nil, nil
}
func (f *fakePositions) Upsert(ctx context.Context, data *model.Positions) error { return nil }
func (f *fakePositions) Delete(ctx context.Context, agentID, stockCode string) error {
	return nil
}

type stubRunner struct{}

func (stubRunner) RunCycle(ctx context.Context, agentID string) (agentmgr.CycleResult, error) {
	return agentmgr.CycleResult{}, nil
}

func TestRegisterAgentWatchlistDedupesAcrossAgents(t *testing.T) {
	r := &repo.Set{
		Agents: &fakeAgents{rows: []*model.Agents{{ID: "a1", Status: "active"}, {ID: "a2", Status: "active"}}},
		Positions: &fakePositions{byAgent: map[string][]*model.Positions{
			"a1": {{AgentID: "a1", StockCode: "600519"}, {AgentID: "a1", StockCode: "000001"}},
			"a2": {{AgentID: "a2", StockCode: "600519"}},
		}},
	}
	executor := task.NewExecutor(r, stubRunner{}, nil, nil, nil)
	svcCtx := &ServiceContext{Config: config.Config{}, Repo: r, Task: executor}

	require.NoError(t, svcCtx.RegisterAgentWatchlist(context.Background()))

	watched := executor.WatchedStocks()
	assert.ElementsMatch(t, []string{"600519", "000001"}, watched)
}
