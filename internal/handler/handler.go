package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/rest"

	"nof0-trading-agents/internal/svc"
	"nof0-trading-agents/internal/types"
)

// RegisterHandlers wires every route spec §6.1 names onto server,
// mirroring the teacher's goctl-scaffolded nof0.go entrypoint
// (rest.MustNewServer + RegisterHandlers + svc.NewServiceContext).
func RegisterHandlers(server *rest.Server, svcCtx *svc.ServiceContext) {
	guard := adminAuth(svcCtx)

	server.AddRoutes([]rest.Route{
		{Method: http.MethodGet, Path: "/agents", Handler: listAgentsHandler(svcCtx)},
		{Method: http.MethodGet, Path: "/agents/{id}", Handler: getAgentHandler(svcCtx)},
		{Method: http.MethodGet, Path: "/agents/{id}/decision-logs", Handler: decisionLogsForAgentHandler(svcCtx)},
		{Method: http.MethodGet, Path: "/agents/decision-logs/all", Handler: decisionLogsAllHandler(svcCtx)},

		{Method: http.MethodGet, Path: "/templates", Handler: listTemplatesHandler(svcCtx)},
		{Method: http.MethodGet, Path: "/templates/placeholders", Handler: listPlaceholdersHandler()},
		{Method: http.MethodGet, Path: "/templates/{id}", Handler: getTemplateHandler(svcCtx)},

		{Method: http.MethodGet, Path: "/stocks/{code}/info", Handler: stockInfoHandler(svcCtx)},
		{Method: http.MethodGet, Path: "/stocks/{code}/quote", Handler: stockQuoteHandler(svcCtx)},
		{Method: http.MethodGet, Path: "/stocks/{code}/kline", Handler: stockKlineHandler(svcCtx)},
		{Method: http.MethodGet, Path: "/stocks/{code}/minute", Handler: unsupportedStockDataHandler("minute bars")},
		{Method: http.MethodGet, Path: "/stocks/{code}/capital-flow", Handler: unsupportedStockDataHandler("capital flow")},
		{Method: http.MethodGet, Path: "/stocks/{code}/capital-distribution", Handler: unsupportedStockDataHandler("capital distribution")},
		{Method: http.MethodGet, Path: "/stocks/{code}/profile", Handler: unsupportedStockDataHandler("company profile")},
		{Method: http.MethodGet, Path: "/stocks/{code}/shareholders", Handler: unsupportedStockDataHandler("shareholder structure")},
		{Method: http.MethodGet, Path: "/stocks/{code}/news", Handler: unsupportedStockDataHandler("news")},
		{Method: http.MethodGet, Path: "/stocks/{code}/analyst-ratings", Handler: unsupportedStockDataHandler("analyst ratings")},
		{Method: http.MethodGet, Path: "/stocks/{code}/financials", Handler: unsupportedStockDataHandler("financial statements")},
		{Method: http.MethodGet, Path: "/stocks/{code}/balance-sheet", Handler: unsupportedStockDataHandler("balance sheet")},
		{Method: http.MethodGet, Path: "/stocks/{code}/cash-flow", Handler: unsupportedStockDataHandler("cash flow statement")},
		{Method: http.MethodGet, Path: "/stocks/{code}/ai-analysis", Handler: unsupportedStockDataHandler("ai analysis")},
		{Method: http.MethodPost, Path: "/stocks/{code}/ai-analysis", Handler: unsupportedStockDataHandler("ai analysis")},
	})

	server.AddRoutes(rest.WithMiddlewares(
		[]rest.Middleware{guard},
		[]rest.Route{
			{Method: http.MethodPost, Path: "/agents", Handler: createAgentHandler(svcCtx)},
			{Method: http.MethodPut, Path: "/agents/{id}", Handler: updateAgentHandler(svcCtx)},
			{Method: http.MethodDelete, Path: "/agents/{id}", Handler: deleteAgentHandler(svcCtx)},
			{Method: http.MethodPost, Path: "/agents/{id}/trigger", Handler: triggerAgentHandler(svcCtx)},
			{Method: http.MethodPost, Path: "/agents/{id}/pause", Handler: setAgentStatusHandler(svcCtx, types.AgentStatusPaused)},
			{Method: http.MethodPost, Path: "/agents/{id}/resume", Handler: setAgentStatusHandler(svcCtx, types.AgentStatusActive)},
			{Method: http.MethodPost, Path: "/agents/trigger-all", Handler: triggerAllAgentsHandler(svcCtx)},

			{Method: http.MethodPost, Path: "/templates", Handler: createTemplateHandler(svcCtx)},
			{Method: http.MethodPut, Path: "/templates/{id}", Handler: updateTemplateHandler(svcCtx)},
			{Method: http.MethodDelete, Path: "/templates/{id}", Handler: deleteTemplateHandler(svcCtx)},
		}...,
	))
}
