package agentmgr

// LLMDecision is one entry of the LLM's parsed response, per spec §4.7
// step 3. Quantity/Price are omitted by the model for hold/wait.
type LLMDecision struct {
	Decision  string   `json:"decision"`
	StockCode string   `json:"stock_code,omitempty"`
	Quantity  *int64   `json:"quantity,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	Reason    string   `json:"reason"`

	// llmRequestLogID is stamped in after parsing so downstream order
	// rows can reference the request that produced them; never part
	// of the LLM's own JSON response.
	llmRequestLogID int64
}

// decisionContract is the envelope the LLM is asked to return: a flat
// list of decisions for the cycle. Named distinctly from LLMDecision
// so the JSON schema generator sees the wrapping shape.
type decisionContract struct {
	Decisions []LLMDecision `json:"decisions"`
}

// CycleResult is execute_decision_cycle's return shape (spec §4.7).
type CycleResult struct {
	Success      bool
	Decisions    []LLMDecision
	ErrorMessage string
	ErrorClass   string // "api_error" | "parse_error" | ""
}
