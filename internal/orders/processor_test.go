package orders

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nof0-trading-agents/internal/model"
	"nof0-trading-agents/internal/money"
	"nof0-trading-agents/internal/repo"
	"nof0-trading-agents/internal/types"
)

type fakeAgents struct {
	agent *model.Agents
}

func (f *fakeAgents) Insert(ctx context.Context, data *model.Agents) error { return nil }
func (f *fakeAgents) FindOne(ctx context.Context, id string) (*model.Agents, error) {
	return f.agent, nil
}
func (f *fakeAgents) Update(ctx context.Context, data *model.Agents) error       { return nil }
func (f *fakeAgents) UpdateStatus(ctx context.Context, id, status string) error { return nil }
func (f *fakeAgents) UpdateCash(ctx context.Context, id string, cash money.Amount) error {
	f.agent.CurrentCash = cash
	return nil
}
func (f *fakeAgents) List(ctx context.Context, filter model.ListFilter) ([]*model.Agents, error) {
	return nil, nil
}

type fakePositions struct {
	byKey map[string]*model.Positions
}

func key(agentID, code string) string { return agentID + "|" + code }

func (f *fakePositions) Get(ctx context.Context, agentID, stockCode string) (*model.Positions, error) {
	p, ok := f.byKey[key(agentID, stockCode)]
	if !ok {
		return nil, model.ErrNotFound
	}
	return p, nil
}
func (f *fakePositions) ListByAgent(ctx context.Context, agentID string) ([]*model.Positions, error) {
	return nil, nil
}
func (f *fakePositions) ActiveByAgents(ctx context.Context, agentIDs []string) ([]*model.Positions, error) {
	return nil, nil
}
func (f *fakePositions) Upsert(ctx context.Context, data *model.Positions) error {
	cp := *data
	f.byKey[key(data.AgentID, data.StockCode)] = &cp
	return nil
}
func (f *fakePositions) Delete(ctx context.Context, agentID, stockCode string) error {
	delete(f.byKey, key(agentID, stockCode))
	return nil
}

type fakeQuotes struct {
	latest *model.Quotes
}

func (f *fakeQuotes) Upsert(ctx context.Context, data *model.Quotes) error { return nil }
func (f *fakeQuotes) GetLatest(ctx context.Context, stockCode string) (*model.Quotes, error) {
	if f.latest == nil {
		return nil, model.ErrNotFound
	}
	return f.latest, nil
}
func (f *fakeQuotes) GetLatestMany(ctx context.Context, stockCodes []string) ([]*model.Quotes, error) {
	return nil, nil
}
func (f *fakeQuotes) GetRange(ctx context.Context, stockCode string, from, to time.Time) ([]*model.Quotes, error) {
	return nil, nil
}

type fakeOrders struct {
	saved []*model.Orders
}

func (f *fakeOrders) Insert(ctx context.Context, data *model.Orders) error {
	f.saved = append(f.saved, data)
	return nil
}
func (f *fakeOrders) FindOne(ctx context.Context, orderID string) (*model.Orders, error) {
	return nil, model.ErrNotFound
}
func (f *fakeOrders) ListByAgent(ctx context.Context, agentID string, filter model.OrderFilter) ([]*model.Orders, error) {
	return nil, nil
}
func (f *fakeOrders) UpdateStatus(ctx context.Context, orderID, status string, rejectReason sql.NullString) error {
	return nil
}
func (f *fakeOrders) CountByAgent(ctx context.Context, agentID, status string) (int64, error) {
	return 0, nil
}

type fakeTransactions struct {
	saved []*model.Transactions
}

func (f *fakeTransactions) Insert(ctx context.Context, data *model.Transactions) error {
	f.saved = append(f.saved, data)
	return nil
}
func (f *fakeTransactions) ListByAgent(ctx context.Context, agentID string, limit, offset int) ([]*model.Transactions, error) {
	return nil, nil
}
func (f *fakeTransactions) SumFeesByAgent(ctx context.Context, agentID string) (money.Amount, error) {
	return money.Zero, nil
}

func newTestProcessor(agent *model.Agents, positions map[string]*model.Positions, latestQuote *model.Quotes) (*Processor, *fakeAgents, *fakeOrders, *fakeTransactions) {
	fa := &fakeAgents{agent: agent}
	fp := &fakePositions{byKey: positions}
	fq := &fakeQuotes{latest: latestQuote}
	fo := &fakeOrders{}
	ft := &fakeTransactions{}
	set := &repo.Set{Agents: fa, Positions: fp, Quotes: fq, Orders: fo, Transactions: ft}
	return NewProcessor(set), fa, fo, ft
}

func TestProcessBuyWithinRulesFillsAndReportsCashDelta(t *testing.T) {
	agent := &model.Agents{ID: "a1", CurrentCash: money.MustNew("100000.00")}
	quote := &model.Quotes{StockCode: "600000", PrevClose: money.MustNew("10.00")}
	proc, fa, _, ft := newTestProcessor(agent, map[string]*model.Positions{}, quote)

	outcome, err := proc.Process(context.Background(), Decision{
		AgentID: "a1", Action: types.DecisionBuy, StockCode: "600000",
		Quantity: 300, Price: money.MustNew("10.00"),
	})

	require.NoError(t, err)
	assert.True(t, outcome.Filled)
	assert.Equal(t, int64(300), outcome.Quantity)
	assert.True(t, outcome.CashDelta.LessThan(money.Zero))
	assert.True(t, fa.agent.CurrentCash.Equal(money.MustNew("100000.00")), "Process must not write cash itself")
	assert.Len(t, ft.saved, 1)
}

func TestProcessHoldCreatesSyntheticRowWithoutCashChange(t *testing.T) {
	agent := &model.Agents{ID: "a1", CurrentCash: money.MustNew("100000.00")}
	proc, fa, fo, ft := newTestProcessor(agent, map[string]*model.Positions{}, nil)

	outcome, err := proc.Process(context.Background(), Decision{AgentID: "a1", Action: types.DecisionHold})

	require.NoError(t, err)
	assert.True(t, outcome.Filled)
	assert.True(t, outcome.CashDelta.Equal(money.Zero))
	assert.True(t, fa.agent.CurrentCash.Equal(money.MustNew("100000.00")))
	assert.Len(t, fo.saved, 1)
	assert.False(t, fo.saved[0].StockCode.Valid)
	assert.Len(t, ft.saved, 1)
	assert.Nil(t, ft.saved[0].Price)
}

func TestProcessSellT1ViolationRejectsWithoutCashChange(t *testing.T) {
	agent := &model.Agents{ID: "a1", CurrentCash: money.MustNew("50000.00")}
	today := time.Now()
	positions := map[string]*model.Positions{
		key("a1", "600000"): {AgentID: "a1", StockCode: "600000", Shares: 100, AvgCost: money.MustNew("9.00"), BuyDate: today},
	}
	quote := &model.Quotes{StockCode: "600000", PrevClose: money.MustNew("10.00")}
	proc, fa, fo, _ := newTestProcessor(agent, positions, quote)

	outcome, err := proc.Process(context.Background(), Decision{
		AgentID: "a1", Action: types.DecisionSell, StockCode: "600000",
		Quantity: 100, Price: money.MustNew("10.00"),
	})

	require.NoError(t, err)
	assert.False(t, outcome.Filled)
	assert.Equal(t, types.RejectTPlusOneLocked, outcome.Reason)
	assert.True(t, outcome.CashDelta.Equal(money.Zero))
	assert.True(t, fa.agent.CurrentCash.Equal(money.MustNew("50000.00")))
	assert.Equal(t, string(types.OrderStatusRejected), fo.saved[0].Status)
}
