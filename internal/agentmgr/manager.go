// Package agentmgr implements the Agent Manager decision cycle (spec
// §4.7): render the prompt, call the LLM, parse decisions, and hand
// each one to the order processor.
package agentmgr

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"nof0-trading-agents/internal/journal"
	"nof0-trading-agents/internal/lock"
	"nof0-trading-agents/internal/model"
	"nof0-trading-agents/internal/money"
	"nof0-trading-agents/internal/orders"
	"nof0-trading-agents/internal/prompt"
	"nof0-trading-agents/internal/repo"
	"nof0-trading-agents/internal/types"
)

// DialResult is one LLM round trip's raw content plus the accounting
// data the LLM Request Log entity (spec §3) records alongside it.
type DialResult struct {
	Content   string
	Status    string // "success" or "error", independent of a parse failure downstream
	TokensIn  int
	TokensOut int
}

// Manager runs one agent's decision cycle end to end: lock, render,
// call, parse, settle, log.
type Manager struct {
	repo      *repo.Set
	locker    *lock.Locker
	templates *prompt.Manager
	ctxBuild  *prompt.ContextBuilder
	processor *orders.Processor
	dial      func(ctx context.Context, providerBaseURL, apiKey, model, renderedPrompt string) (DialResult, error)
	journal   *journal.Writer // optional; nil disables the local mirror
	logger    logx.Logger
}

// NewManager wires the decision-cycle dependencies. dial is the LLM
// call: given a resolved provider/model and the rendered prompt, it
// returns the raw JSON decisions payload plus token usage (or an error
// classified by the caller into "api_error"). j may be nil to skip the
// local journal mirror entirely (the database tables remain
// authoritative regardless).
func NewManager(r *repo.Set, locker *lock.Locker, templates *prompt.Manager, ctxBuild *prompt.ContextBuilder, processor *orders.Processor,
	dial func(ctx context.Context, providerBaseURL, apiKey, model, renderedPrompt string) (DialResult, error), j *journal.Writer) *Manager {
	return &Manager{
		repo: r, locker: locker, templates: templates, ctxBuild: ctxBuild, processor: processor,
		dial: dial, journal: j, logger: logx.WithContext(context.Background()),
	}
}

// RunCycle acquires the agent's decision lock (non-blocking per spec
// §4.1), executes the cycle, settles every decision, and appends a
// Decision Log row classifying the outcome.
func (m *Manager) RunCycle(ctx context.Context, agentID string) (CycleResult, error) {
	handle, ok := m.locker.Acquire(ctx, lock.NamespaceDecision, agentID)
	if !ok {
		return CycleResult{}, fmt.Errorf("agentmgr: agent %s is busy", agentID)
	}
	defer handle.Release(ctx)

	result := m.executeDecisionCycle(ctx, agentID)

	classification := classify(result)
	detail := result.ErrorMessage
	if detail == "" && result.Success {
		detail = summarizeDecisions(result.Decisions)
	}
	if _, err := m.repo.DecisionLogs.Insert(ctx, &model.DecisionLogs{
		AgentID:        agentID,
		Classification: classification,
		Detail:         detail,
	}); err != nil {
		m.logger.Errorf("agentmgr: decision log insert failed for %s: %v", agentID, err)
	}

	m.writeJournal(agentID, result, classification)

	if !result.Success {
		return result, nil
	}

	var cashDelta money.Amount
	var traded bool
	for _, d := range result.Decisions {
		outcome, err := m.settle(ctx, agentID, d)
		if err != nil {
			m.logger.Errorf("agentmgr: settle decision for %s failed: %v", agentID, err)
			continue
		}
		if outcome.Filled && (d.Decision == string(types.DecisionBuy) || d.Decision == string(types.DecisionSell)) {
			cashDelta = cashDelta.Add(outcome.CashDelta)
			traded = true
		}
	}

	if traded {
		if err := m.repo.AdjustCash(ctx, agentID, cashDelta); err != nil {
			m.logger.Errorf("agentmgr: cash adjustment failed for %s: %v", agentID, err)
		}
	}

	return result, nil
}

// executeDecisionCycle implements spec §4.7 steps 1-4.
func (m *Manager) executeDecisionCycle(ctx context.Context, agentID string) CycleResult {
	agent, err := m.repo.Agents.FindOne(ctx, agentID)
	if err != nil {
		return CycleResult{ErrorMessage: err.Error(), ErrorClass: "api_error"}
	}

	renderCtx, err := m.ctxBuild.Build(ctx, agentID)
	if err != nil {
		return CycleResult{ErrorMessage: err.Error(), ErrorClass: "api_error"}
	}

	renderedPrompt, err := m.templates.RenderForAgent(ctx, agent.TemplateID, renderCtx)
	if err != nil {
		return CycleResult{ErrorMessage: err.Error(), ErrorClass: "api_error"}
	}

	provider, err := m.repo.Providers.FindOne(ctx, agent.ProviderID)
	if err != nil {
		return CycleResult{ErrorMessage: err.Error(), ErrorClass: "api_error"}
	}

	started := time.Now()
	dialResult, callErr := m.dial(ctx, provider.BaseURL, provider.APIKey, agent.ModelName, renderedPrompt)
	latencyMs := time.Since(started).Milliseconds()

	status := dialResult.Status
	if status == "" {
		status = dialStatus(callErr)
	}

	logID, logErr := m.repo.LLMLogs.Insert(ctx, &model.LLMRequestLogs{
		AgentID:    agentID,
		ProviderID: provider.ID,
		ModelName:  agent.ModelName,
		Prompt:     renderedPrompt,
		Response:   dialResult.Content,
		LatencyMs:  latencyMs,
		Status:     status,
		TokensIn:   dialResult.TokensIn,
		TokensOut:  dialResult.TokensOut,
		Error:      errString(callErr),
	})
	if logErr != nil {
		m.logger.Errorf("agentmgr: llm request log insert failed: %v", logErr)
	}

	if callErr != nil {
		return CycleResult{ErrorMessage: callErr.Error(), ErrorClass: "api_error"}
	}

	var contract decisionContract
	if err := json.Unmarshal([]byte(dialResult.Content), &contract); err != nil {
		return CycleResult{ErrorMessage: err.Error(), ErrorClass: "parse_error"}
	}

	for i := range contract.Decisions {
		contract.Decisions[i].llmRequestLogID = logID
	}

	return CycleResult{Success: true, Decisions: contract.Decisions}
}

func (m *Manager) settle(ctx context.Context, agentID string, d LLMDecision) (orders.Outcome, error) {
	action := types.DecisionAction(d.Decision)

	var qty int64
	if d.Quantity != nil {
		qty = *d.Quantity
	}
	var price money.Amount
	if d.Price != nil {
		price = money.FromFloat(*d.Price)
	}

	var logID sql.NullInt64
	if d.llmRequestLogID != 0 {
		logID = sql.NullInt64{Int64: d.llmRequestLogID, Valid: true}
	}

	return m.processor.Process(ctx, orders.Decision{
		AgentID:         agentID,
		Action:          action,
		StockCode:       d.StockCode,
		Quantity:        qty,
		Price:           price,
		LLMRequestLogID: logID,
	})
}

// writeJournal mirrors the cycle's outcome to the local journal, best
// effort: a write failure here never fails the cycle, since the
// database rows already written are the authoritative record.
func (m *Manager) writeJournal(agentID string, r CycleResult, classification string) {
	if m.journal == nil {
		return
	}
	decisionsJSON, err := json.Marshal(r.Decisions)
	if err != nil {
		decisionsJSON = nil
	}
	if _, err := m.journal.WriteCycle(&journal.CycleRecord{
		AgentID:        agentID,
		DecisionsJSON:  string(decisionsJSON),
		Classification: classification,
		Success:        r.Success,
		ErrorMessage:   r.ErrorMessage,
	}); err != nil {
		m.logger.Errorf("agentmgr: journal write failed for %s: %v", agentID, err)
	}
}

// classify assigns the Decision Log status (spec §3). "no_trade" is
// reserved for a failed cycle that doesn't look API-related; a cycle
// that completes, traded or not, is always "success". A failure's
// status comes from the keyword match on ErrorMessage alone, whatever
// its ErrorClass.
func classify(r CycleResult) string {
	if !r.Success {
		if looksLikeAPIFailure(r.ErrorMessage) {
			return model.ClassificationAPIError
		}
		return model.ClassificationNoTrade
	}
	return model.ClassificationSuccess
}

// dialStatus derives an LLM Request Log status when the dial closure
// doesn't set one explicitly.
func dialStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// looksLikeAPIFailure matches the keyword set spec §7 assigns to a
// failed cycle's Decision Log entry: "timeout|connection|api|
// llm|request|response|http".
func looksLikeAPIFailure(msg string) bool {
	lower := strings.ToLower(msg)
	for _, kw := range []string{"timeout", "connection", "api", "llm", "request", "response", "http"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func summarizeDecisions(decisions []LLMDecision) string {
	var parts []string
	for _, d := range decisions {
		parts = append(parts, d.Decision)
	}
	return strings.Join(parts, ",")
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
