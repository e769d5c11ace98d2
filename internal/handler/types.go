package handler

import "time"

// agentIDPathReq extracts the :id path segment shared by every
// single-agent route.
type agentIDPathReq struct {
	ID string `path:"id"`
}

type listAgentsReq struct {
	Status    string `form:"status,optional"`
	SortBy    string `form:"sort_by,optional"`
	SortOrder string `form:"sort_order,optional"`
	Limit     int    `form:"limit,optional"`
	Offset    int    `form:"offset,optional"`
}

type createAgentReq struct {
	Name         string `json:"name"`
	InitialCash  string `json:"initial_cash"`
	TemplateID   string `json:"template_id"`
	ProviderID   string `json:"provider_id"`
	ModelName    string `json:"model_name"`
	ScheduleType string `json:"schedule_type,optional"`
}

type updateAgentReq struct {
	ID           string `path:"id"`
	Name         string `json:"name,optional"`
	TemplateID   string `json:"template_id,optional"`
	ProviderID   string `json:"provider_id,optional"`
	ModelName    string `json:"model_name,optional"`
	ScheduleType string `json:"schedule_type,optional"`
}

// triggerReq carries the manual-trigger body's overrides. The
// override fields are accepted for protocol compatibility with the
// source's ad hoc prompt-injection knobs; the rewrite's prompt context
// is always assembled fresh from the live market/quote services (spec
// §4.7 step 1), so a non-empty override is accepted but ignored.
type triggerReq struct {
	ID             string `path:"id"`
	MarketData     string `json:"market_data,optional"`
	FinancialData  string `json:"financial_data,optional"`
	SentimentScore string `json:"sentiment_score,optional"`
}

type decisionLogsReq struct {
	ID     string `path:"id"`
	Status string `form:"status,optional"`
	Limit  int    `form:"limit,optional"`
}

type allDecisionLogsReq struct {
	Status string `form:"status,optional"`
	Limit  int    `form:"limit,optional"`
}

type agentResp struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	InitialCash  string    `json:"initial_cash"`
	CurrentCash  string    `json:"current_cash"`
	TemplateID   string    `json:"template_id"`
	ProviderID   string    `json:"provider_id"`
	ModelName    string    `json:"model_name"`
	Status       string    `json:"status"`
	ScheduleType string    `json:"schedule_type"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	// MarketValue/ReturnRate are computed asset fields; nil unless the
	// caller asked for a single agent (spec §6.1: "create... response
	// echoes the stored agent with computed asset fields null").
	MarketValue *string `json:"market_value"`
	ReturnRate  *string `json:"return_rate"`
}

type decisionLogResp struct {
	ID             int64     `json:"id"`
	AgentID        string    `json:"agent_id"`
	Classification string    `json:"classification"`
	Detail         string    `json:"detail"`
	CreatedAt      time.Time `json:"created_at"`
}

type triggerResp struct {
	Success       bool                    `json:"success"`
	Decisions     []decisionEntryResp     `json:"decisions"`
	ExecutedCount int                     `json:"executed_count"`
	ErrorMessage  string                  `json:"error_message,omitempty"`
	Message       string                  `json:"message,omitempty"`
}

type decisionEntryResp struct {
	Decision  string   `json:"decision"`
	StockCode string   `json:"stock_code,omitempty"`
	Quantity  *int64   `json:"quantity,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	Reason    string   `json:"reason"`
}

type triggerAllAgentResp struct {
	AgentID string `json:"agent_id"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type templateIDPathReq struct {
	ID string `path:"id"`
}

type createTemplateReq struct {
	Name   string `json:"name"`
	Body   string `json:"body"`
	Strict bool   `json:"strict,optional"`
}

type updateTemplateReq struct {
	ID     string `path:"id"`
	Name   string `json:"name,optional"`
	Body   string `json:"body,optional"`
	Strict bool   `json:"strict,optional"`
}

type templateResp struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Body      string    `json:"body"`
	Strict    bool      `json:"strict"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type stockCodePathReq struct {
	Code string `path:"code"`
}

type klineReq struct {
	Code string `path:"code"`
	Days int    `form:"days,optional"`
}
