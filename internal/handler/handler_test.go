package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeromicro/go-zero/rest/pathvar"

	"nof0-trading-agents/internal/apperr"
	"nof0-trading-agents/internal/config"
	"nof0-trading-agents/internal/model"
	"nof0-trading-agents/internal/money"
	"nof0-trading-agents/internal/prompt"
	"nof0-trading-agents/internal/quote"
	"nof0-trading-agents/internal/repo"
	"nof0-trading-agents/internal/svc"
)

type fakeAgents struct {
	rows map[string]*model.Agents
}

func newFakeAgents() *fakeAgents { return &fakeAgents{rows: map[string]*model.Agents{}} }

func (f *fakeAgents) Insert(ctx context.Context, data *model.Agents) error {
	f.rows[data.ID] = data
	return nil
}
func (f *fakeAgents) FindOne(ctx context.Context, id string) (*model.Agents, error) {
	row, ok := f.rows[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return row, nil
}
func (f *fakeAgents) Update(ctx context.Context, data *model.Agents) error {
	f.rows[data.ID] = data
	return nil
}
func (f *fakeAgents) UpdateStatus(ctx context.Context, id, status string) error {
	if row, ok := f.rows[id]; ok {
		row.Status = status
	}
	return nil
}
func (f *fakeAgents) UpdateCash(ctx context.Context, id string, cash money.Amount) error {
	if row, ok := f.rows[id]; ok {
		row.CurrentCash = cash
	}
	return nil
}
func (f *fakeAgents) List(ctx context.Context, filter model.ListFilter) ([]*model.Agents, error) {
	var out []*model.Agents
	for _, row := range f.rows {
		if filter.Status != "" && row.Status != filter.Status {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

type fakeQuotes struct{ rows map[string]*model.Quotes }

func (f *fakeQuotes) Upsert(ctx context.Context, data *model.Quotes) error { return nil }
func (f *fakeQuotes) GetLatest(ctx context.Context, stockCode string) (*model.Quotes, error) {
	row, ok := f.rows[stockCode]
	if !ok {
		return nil, model.ErrNotFound
	}
	return row, nil
}
func (f *fakeQuotes) GetLatestMany(ctx context.Context, stockCodes []string) ([]*model.Quotes, error) {
	return nil, nil
}
func (f *fakeQuotes) GetRange(ctx context.Context, stockCode string, from, to time.Time) ([]*model.Quotes, error) {
	return nil, nil
}

func newTestServiceContext(agents *fakeAgents) *svc.ServiceContext {
	r := &repo.Set{Agents: agents, Quotes: &fakeQuotes{rows: map[string]*model.Quotes{}}}
	return &svc.ServiceContext{
		Config:    config.Config{},
		Repo:      r,
		Templates: prompt.NewManager(r),
		Quotes:    quote.NewService(nil, r),
	}
}

func withPathVar(r *http.Request, key, value string) *http.Request {
	return r.WithContext(pathvar.WithVars(r.Context(), map[string]string{key: value}))
}

func TestGetAgentHandlerNotFound(t *testing.T) {
	svcCtx := newTestServiceContext(newFakeAgents())
	req := httptest.NewRequest(http.MethodGet, "/agents/missing", nil)
	req = withPathVar(req, "id", "missing")
	rec := httptest.NewRecorder()

	getAgentHandler(svcCtx)(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "AGENT_NOT_FOUND", body.ErrorCode)
}

func TestListAgentsHandlerExcludesDeleted(t *testing.T) {
	agents := newFakeAgents()
	agents.rows["a1"] = &model.Agents{ID: "a1", Status: "active"}
	agents.rows["a2"] = &model.Agents{ID: "a2", Status: "deleted"}
	svcCtx := newTestServiceContext(agents)

	req := httptest.NewRequest(http.MethodGet, "/agents?status=all", nil)
	rec := httptest.NewRecorder()

	listAgentsHandler(svcCtx)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var out []agentResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "a1", out[0].ID)
}

func TestWriteErrorUsesPublicCodeOverTaxonomyCode(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, apperr.New(apperr.CodeUnavailable, "no upstream").WithPublicCode("STOCK_DATA_ERROR"))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "STOCK_DATA_ERROR", body.ErrorCode)
	assert.Equal(t, "no upstream", body.Message)
}

func TestWriteErrorFallsBackToUpperSnakeCode(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, apperr.New(apperr.CodeInvalidArgument, "bad input"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INVALID_ARGUMENT", body.ErrorCode)
}

func TestStockQuoteHandlerNotFound(t *testing.T) {
	svcCtx := newTestServiceContext(newFakeAgents())
	req := httptest.NewRequest(http.MethodGet, "/stocks/000001/quote", nil)
	req = withPathVar(req, "code", "000001")
	rec := httptest.NewRecorder()

	stockQuoteHandler(svcCtx)(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "STOCK_NOT_FOUND", body.ErrorCode)
	assert.Equal(t, "000001", body.StockCode)
}

func TestUnsupportedStockDataHandlerReportsStockDataError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/stocks/000001/news", nil)
	req = withPathVar(req, "code", "000001")
	rec := httptest.NewRecorder()

	unsupportedStockDataHandler("news")(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body errorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "STOCK_DATA_ERROR", body.ErrorCode)
}

func TestListPlaceholdersHandlerReturnsVocabulary(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/templates/placeholders", nil)
	rec := httptest.NewRecorder()

	listPlaceholdersHandler()(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["placeholders"])
}
