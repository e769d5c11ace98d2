package task

// TaskType enumerates the dispatch kinds spec §4.9 recognizes. A
// System Task row's task_type selects which branch of Executor.Run runs.
const (
	TypeAgentDecision = "agent_decision"
	TypeQuoteSync     = "quote_sync"
	TypeMarketRefresh = "market_refresh"
)

// Status is a System Task's terminal (or in-flight) state.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// AgentResult is one agent's outcome within an agent_decision task,
// logged as a single TaskLogs row and folded into the task's detail.
type AgentResult struct {
	AgentID string `json:"agent_id"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}
