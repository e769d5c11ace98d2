package handler

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/rest/httpx"

	"nof0-trading-agents/internal/agentmgr"
	"nof0-trading-agents/internal/apperr"
	"nof0-trading-agents/internal/model"
	"nof0-trading-agents/internal/money"
	"nof0-trading-agents/internal/svc"
	"nof0-trading-agents/internal/types"
)

func toAgentResp(a *model.Agents) agentResp {
	return agentResp{
		ID: a.ID, Name: a.Name, InitialCash: a.InitialCash.String(), CurrentCash: a.CurrentCash.String(),
		TemplateID: a.TemplateID, ProviderID: a.ProviderID, ModelName: a.ModelName,
		Status: a.Status, ScheduleType: a.ScheduleType, CreatedAt: a.CreatedAt, UpdatedAt: a.UpdatedAt,
	}
}

func listAgentsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req listAgentsReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(w, apperr.New(apperr.CodeInvalidArgument, err.Error()))
			return
		}
		status := req.Status
		if status == "" {
			status = string(types.AgentStatusActive)
		}
		if status == "all" {
			status = ""
		}
		agents, err := svcCtx.Repo.Agents.List(r.Context(), model.ListFilter{
			Status: status, SortBy: req.SortBy, SortOrder: req.SortOrder, Limit: req.Limit, Offset: req.Offset,
		})
		if err != nil {
			writeError(w, apperr.Wrap(apperr.CodeInternal, "list agents", err))
			return
		}
		out := make([]agentResp, 0, len(agents))
		for _, a := range agents {
			if a.Status == string(types.AgentStatusDeleted) {
				continue
			}
			out = append(out, toAgentResp(a))
		}
		writeOK(w, out)
	}
}

func createAgentHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createAgentReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(w, apperr.New(apperr.CodeInvalidArgument, err.Error()))
			return
		}
		cash, err := money.New(req.InitialCash)
		if err != nil {
			writeError(w, apperr.Wrap(apperr.CodeInvalidArgument, "invalid initial_cash", err))
			return
		}
		scheduleType := req.ScheduleType
		if scheduleType == "" {
			scheduleType = "manual"
		}
		agent := &model.Agents{
			ID: uuid.NewString(), Name: req.Name, InitialCash: cash, CurrentCash: cash,
			TemplateID: req.TemplateID, ProviderID: req.ProviderID, ModelName: req.ModelName,
			Status: string(types.AgentStatusActive), ScheduleType: scheduleType,
		}
		if err := svcCtx.Repo.Agents.Insert(r.Context(), agent); err != nil {
			writeError(w, apperr.Wrap(apperr.CodeInternal, "create agent", err))
			return
		}
		writeOK(w, toAgentResp(agent))
	}
}

func getAgentHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req agentIDPathReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(w, apperr.New(apperr.CodeInvalidArgument, err.Error()))
			return
		}
		agent, err := svcCtx.Repo.Agents.FindOne(r.Context(), req.ID)
		if err != nil {
			writeError(w, agentNotFound(req.ID, err))
			return
		}
		resp := toAgentResp(agent)
		if mv, rr, ok := computeAssets(r, svcCtx, agent); ok {
			resp.MarketValue = &mv
			resp.ReturnRate = &rr
		}
		writeOK(w, resp)
	}
}

// computeAssets derives market_value/return_rate for one agent: cash
// plus each holding's latest close, compared against initial_cash.
func computeAssets(r *http.Request, svcCtx *svc.ServiceContext, agent *model.Agents) (marketValue, returnRate string, ok bool) {
	positions, err := svcCtx.Repo.Positions.ListByAgent(r.Context(), agent.ID)
	if err != nil {
		return "", "", false
	}
	total := agent.CurrentCash
	for _, pos := range positions {
		latest, qerr := svcCtx.Quotes.GetLatest(r.Context(), pos.StockCode)
		if qerr != nil {
			continue
		}
		total = total.Add(latest.Close.Mul(money.FromInt(pos.Shares)))
	}
	if agent.InitialCash.IsZero() {
		return total.String(), "0", true
	}
	rate := total.Sub(agent.InitialCash).Div(agent.InitialCash).Mul(money.FromInt(100))
	return total.String(), rate.Round(2).String(), true
}

func updateAgentHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateAgentReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(w, apperr.New(apperr.CodeInvalidArgument, err.Error()))
			return
		}
		agent, err := svcCtx.Repo.Agents.FindOne(r.Context(), req.ID)
		if err != nil {
			writeError(w, agentNotFound(req.ID, err))
			return
		}
		if req.Name != "" {
			agent.Name = req.Name
		}
		if req.TemplateID != "" {
			agent.TemplateID = req.TemplateID
		}
		if req.ProviderID != "" {
			agent.ProviderID = req.ProviderID
		}
		if req.ModelName != "" {
			agent.ModelName = req.ModelName
		}
		if req.ScheduleType != "" {
			agent.ScheduleType = req.ScheduleType
		}
		if err := svcCtx.Repo.Agents.Update(r.Context(), agent); err != nil {
			writeError(w, apperr.Wrap(apperr.CodeInternal, "update agent", err))
			return
		}
		writeOK(w, toAgentResp(agent))
	}
}

func deleteAgentHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req agentIDPathReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(w, apperr.New(apperr.CodeInvalidArgument, err.Error()))
			return
		}
		if _, err := svcCtx.Repo.Agents.FindOne(r.Context(), req.ID); err != nil {
			writeError(w, agentNotFound(req.ID, err))
			return
		}
		if err := svcCtx.Repo.Agents.UpdateStatus(r.Context(), req.ID, string(types.AgentStatusDeleted)); err != nil {
			writeError(w, apperr.Wrap(apperr.CodeInternal, "delete agent", err))
			return
		}
		writeOK(w, map[string]bool{"success": true})
	}
}

func setAgentStatusHandler(svcCtx *svc.ServiceContext, status types.AgentStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req agentIDPathReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(w, apperr.New(apperr.CodeInvalidArgument, err.Error()))
			return
		}
		if _, err := svcCtx.Repo.Agents.FindOne(r.Context(), req.ID); err != nil {
			writeError(w, agentNotFound(req.ID, err))
			return
		}
		if err := svcCtx.Repo.Agents.UpdateStatus(r.Context(), req.ID, string(status)); err != nil {
			writeError(w, apperr.Wrap(apperr.CodeInternal, "update agent status", err))
			return
		}
		writeOK(w, map[string]bool{"success": true})
	}
}

// triggerAgentHandler runs one ad hoc decision cycle (spec §6.1 POST
// /agents/{id}/trigger). "agent busy" is a 200-OK body per §7's
// concurrency error semantics, not an HTTP error status.
func triggerAgentHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req triggerReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(w, apperr.New(apperr.CodeInvalidArgument, err.Error()))
			return
		}
		agent, err := svcCtx.Repo.Agents.FindOne(r.Context(), req.ID)
		if err != nil {
			writeError(w, agentNotFound(req.ID, err))
			return
		}
		if agent.Status == string(types.AgentStatusPaused) {
			writeError(w, apperr.New(apperr.CodeInvalidArgument, "agent is paused").WithPublicCode("AGENT_PAUSED"))
			return
		}
		if agent.Status == string(types.AgentStatusDeleted) {
			writeError(w, agentNotFound(req.ID, nil))
			return
		}

		cycle, err := svcCtx.AgentMgr.RunCycle(r.Context(), req.ID)
		if err != nil {
			writeOK(w, triggerResp{Success: false, ErrorMessage: err.Error()})
			return
		}
		writeOK(w, toTriggerResp(cycle))
	}
}

func toTriggerResp(cycle agentmgr.CycleResult) triggerResp {
	resp := triggerResp{Success: cycle.Success, ErrorMessage: cycle.ErrorMessage, ExecutedCount: len(cycle.Decisions)}
	for _, d := range cycle.Decisions {
		resp.Decisions = append(resp.Decisions, decisionEntryResp{
			Decision: d.Decision, StockCode: d.StockCode, Quantity: d.Quantity, Price: d.Price, Reason: d.Reason,
		})
	}
	if resp.Success && resp.Message == "" {
		resp.Message = "decision cycle completed"
	}
	return resp
}

// triggerAllAgentsHandler fans the decision cycle out across every
// active agent (spec §6.1 POST /agents/trigger-all, §4.9).
func triggerAllAgentsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results, err := svcCtx.Task.TriggerAll(r.Context())
		if err != nil {
			writeError(w, apperr.Wrap(apperr.CodeInternal, "trigger all agents", err))
			return
		}
		out := make([]triggerAllAgentResp, 0, len(results))
		for _, res := range results {
			out = append(out, triggerAllAgentResp{AgentID: res.AgentID, Success: res.Success, Message: res.Message})
		}
		writeOK(w, out)
	}
}

func decisionLogsForAgentHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req decisionLogsReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(w, apperr.New(apperr.CodeInvalidArgument, err.Error()))
			return
		}
		limit := req.Limit
		if limit <= 0 {
			limit = 50
		}
		rows, err := svcCtx.Repo.DecisionLogs.ListByAgent(r.Context(), req.ID, limit)
		if err != nil {
			writeError(w, apperr.Wrap(apperr.CodeInternal, "list decision logs", err))
			return
		}
		writeOK(w, toDecisionLogResps(rows, req.Status))
	}
}

func decisionLogsAllHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req allDecisionLogsReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(w, apperr.New(apperr.CodeInvalidArgument, err.Error()))
			return
		}
		limit := req.Limit
		if limit <= 0 {
			limit = 100
		}
		agents, err := svcCtx.Repo.Agents.List(r.Context(), model.ListFilter{})
		if err != nil {
			writeError(w, apperr.Wrap(apperr.CodeInternal, "list agents", err))
			return
		}
		var all []*model.DecisionLogs
		for _, a := range agents {
			rows, err := svcCtx.Repo.DecisionLogs.ListByAgent(r.Context(), a.ID, limit)
			if err != nil {
				continue
			}
			all = append(all, rows...)
		}
		writeOK(w, toDecisionLogResps(all, req.Status))
	}
}

func toDecisionLogResps(rows []*model.DecisionLogs, statusFilter string) []decisionLogResp {
	out := make([]decisionLogResp, 0, len(rows))
	for _, row := range rows {
		if statusFilter != "" && !strings.EqualFold(row.Classification, statusFilter) {
			continue
		}
		out = append(out, decisionLogResp{
			ID: row.ID, AgentID: row.AgentID, Classification: row.Classification,
			Detail: row.Detail, CreatedAt: row.CreatedAt,
		})
	}
	return out
}

func agentNotFound(id string, err error) *apperr.Error {
	return apperr.Wrap(apperr.CodeNotFound, "agent "+id+" not found", err).WithPublicCode("AGENT_NOT_FOUND")
}
