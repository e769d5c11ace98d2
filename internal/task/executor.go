// Package task implements the Task Executor & Scheduler (spec §4.9):
// dispatch by task_type, per-task skip rules (paused / non-trading-day),
// and the aggregate status rule for fan-out across a population of
// agents.
package task

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/logx"

	"nof0-trading-agents/internal/agentmgr"
	"nof0-trading-agents/internal/calendar"
	"nof0-trading-agents/internal/market"
	"nof0-trading-agents/internal/model"
	"nof0-trading-agents/internal/quote"
	"nof0-trading-agents/internal/repo"
)

// AgentRunner is the one agentmgr.Manager method the scheduler needs.
// Narrowed to an interface (rather than depending on *agentmgr.Manager
// directly) so the fan-out/aggregate-status logic can be unit tested
// without a real Redis-backed decision lock.
type AgentRunner interface {
	RunCycle(ctx context.Context, agentID string) (agentmgr.CycleResult, error)
}

// Executor runs one System Task row end to end: create it, check the
// skip rules, dispatch to the right collaborator, record the result.
type Executor struct {
	repo    *repo.Set
	agents  AgentRunner
	quotes  *quote.Service
	mkt     *market.Service
	watched []string // stock universe for quote_sync, set by caller
	logger  logx.Logger
}

// NewExecutor wires the scheduler's collaborators. watchedStocks is the
// quote_sync universe (the union of every agent's held + watched
// symbols); callers refresh it as agents' positions change.
func NewExecutor(r *repo.Set, agents AgentRunner, quotes *quote.Service, mkt *market.Service, watchedStocks []string) *Executor {
	return &Executor{
		repo: r, agents: agents, quotes: quotes, mkt: mkt,
		watched: watchedStocks, logger: logx.WithContext(context.Background()),
	}
}

// Run dispatches taskType now: creates the System Task row, applies
// the skip rules, executes, and records the terminal status.
func (e *Executor) Run(ctx context.Context, taskType string, tradingDayOnly bool) error {
	now := time.Now().In(calendar.Location())

	taskID, err := e.repo.SystemTasks.Insert(ctx, &model.SystemTasks{
		TaskType:    taskType,
		Status:      StatusRunning,
		ScheduledAt: now,
	})
	if err != nil {
		return fmt.Errorf("task: create system task: %w", err)
	}

	paused, err := e.repo.SystemTasks.IsPaused(ctx, taskType)
	if err != nil {
		e.logger.Errorf("task: paused check failed for %s: %v", taskType, err)
	}
	if paused {
		return e.finish(ctx, taskID, StatusSkipped, "任务已暂停 (task paused)")
	}

	if tradingDayOnly && !calendar.IsTradingDay(now) {
		return e.finish(ctx, taskID, StatusSkipped, calendar.SkipReason(now))
	}

	if err := e.repo.SystemTasks.MarkStarted(ctx, taskID); err != nil {
		e.logger.Errorf("task: mark started failed for task %d: %v", taskID, err)
	}

	switch taskType {
	case TypeAgentDecision:
		return e.runAgentDecision(ctx, taskID)
	case TypeQuoteSync:
		return e.runQuoteSync(ctx, taskID)
	case TypeMarketRefresh:
		return e.runMarketRefresh(ctx, taskID)
	default:
		return e.finish(ctx, taskID, StatusFailed, fmt.Sprintf("unknown task_type %q", taskType))
	}
}

// runAgentDecision fans out RunCycle across every active agent
// concurrently (spec §5: each agent holds its own decision lock, so
// there is no cross-agent barrier). The task fails only when every
// agent's sub-result failed and at least one ran.
func (e *Executor) runAgentDecision(ctx context.Context, taskID int64) error {
	results, err := e.fanOutAgentDecisions(ctx, taskID)
	if err != nil {
		return e.finish(ctx, taskID, StatusFailed, err.Error())
	}
	if len(results) == 0 {
		return e.finish(ctx, taskID, StatusSuccess, "no active agents")
	}
	return e.finishAgentResults(ctx, taskID, results)
}

// fanOutAgentDecisions runs RunCycle for every active agent under
// taskID, concurrently, and returns each agent's outcome.
func (e *Executor) fanOutAgentDecisions(ctx context.Context, taskID int64) ([]AgentResult, error) {
	agents, err := e.repo.Agents.List(ctx, model.ListFilter{Status: "active"})
	if err != nil {
		return nil, fmt.Errorf("list active agents: %w", err)
	}

	results := make([]AgentResult, len(agents))
	var wg sync.WaitGroup
	for i, a := range agents {
		wg.Add(1)
		go func(i int, agentID string) {
			defer wg.Done()
			results[i] = e.runOneAgent(ctx, taskID, agentID)
		}(i, a.ID)
	}
	wg.Wait()
	return results, nil
}

// TriggerAll runs one ad hoc agent_decision pass over every active
// agent outside the schedule (spec §6.1 POST /agents/trigger-all),
// still recording a System Task row and per-agent Task Logs for audit,
// and returns each agent's outcome directly to the caller.
func (e *Executor) TriggerAll(ctx context.Context) ([]AgentResult, error) {
	now := time.Now().In(calendar.Location())
	taskID, err := e.repo.SystemTasks.Insert(ctx, &model.SystemTasks{
		TaskType:    TypeAgentDecision,
		Status:      StatusRunning,
		ScheduledAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("task: create system task: %w", err)
	}
	if err := e.repo.SystemTasks.MarkStarted(ctx, taskID); err != nil {
		e.logger.Errorf("task: mark started failed for task %d: %v", taskID, err)
	}

	results, err := e.fanOutAgentDecisions(ctx, taskID)
	if err != nil {
		if finishErr := e.finish(ctx, taskID, StatusFailed, err.Error()); finishErr != nil {
			e.logger.Errorf("task: finish failed for task %d: %v", taskID, finishErr)
		}
		return nil, err
	}
	if err := e.finishAgentResults(ctx, taskID, results); err != nil {
		e.logger.Errorf("task: finish agent results failed for task %d: %v", taskID, err)
	}
	return results, nil
}

func (e *Executor) runOneAgent(ctx context.Context, taskID int64, agentID string) AgentResult {
	cycle, err := e.agents.RunCycle(ctx, agentID)
	result := AgentResult{AgentID: agentID}
	switch {
	case err != nil:
		// Lock acquisition failed (agent busy); RunCycle never reached
		// the decision-log write for this attempt.
		result.Message = err.Error()
	case cycle.Success:
		result.Success = true
		result.Message = summarizeCycle(cycle)
	default:
		result.Message = cycle.ErrorMessage
	}
	if logErr := e.repo.TaskLogs.Insert(ctx, &model.TaskLogs{
		TaskID: taskID, AgentID: agentID, Success: result.Success, Message: result.Message,
	}); logErr != nil {
		e.logger.Errorf("task: task log insert failed for agent %s: %v", agentID, logErr)
	}
	return result
}

// finishAgentResults applies the aggregate status rule: failed only if
// every sub-result failed (and at least one ran); otherwise success,
// even when some agents failed individually.
func (e *Executor) finishAgentResults(ctx context.Context, taskID int64, results []AgentResult) error {
	allFailed := true
	for _, r := range results {
		if r.Success {
			allFailed = false
			break
		}
	}
	status := StatusSuccess
	if allFailed {
		status = StatusFailed
	}
	detail, err := json.Marshal(results)
	if err != nil {
		detail = []byte(fmt.Sprintf("%d agents, marshal error: %v", len(results), err))
	}
	return e.finish(ctx, taskID, status, string(detail))
}

func (e *Executor) runQuoteSync(ctx context.Context, taskID int64) error {
	success, fail, err := e.quotes.SyncQuotes(ctx, e.watched, false)
	if err != nil {
		return e.finish(ctx, taskID, StatusFailed, err.Error())
	}
	status := StatusSuccess
	if success == 0 && fail > 0 {
		status = StatusFailed
	}
	return e.finish(ctx, taskID, status, fmt.Sprintf("synced %d, failed %d", success, fail))
}

func (e *Executor) runMarketRefresh(ctx context.Context, taskID int64) error {
	if err := e.mkt.RefreshAll(ctx); err != nil {
		return e.finish(ctx, taskID, StatusFailed, err.Error())
	}
	return e.finish(ctx, taskID, StatusSuccess, "market data refreshed")
}

func (e *Executor) finish(ctx context.Context, taskID int64, status, detail string) error {
	if err := e.repo.SystemTasks.UpdateStatus(ctx, taskID, status, detail); err != nil {
		return fmt.Errorf("task: update status: %w", err)
	}
	return nil
}

// SetWatchedStocks refreshes the quote_sync universe; called by the
// scheduler daemon whenever the agent population's holdings change.
func (e *Executor) SetWatchedStocks(stockCodes []string) {
	e.watched = stockCodes
}

// WatchedStocks returns the current quote_sync universe.
func (e *Executor) WatchedStocks() []string {
	return e.watched
}

func summarizeCycle(cycle agentmgr.CycleResult) string {
	if len(cycle.Decisions) == 0 {
		return "no decisions"
	}
	return fmt.Sprintf("%d decisions", len(cycle.Decisions))
}
