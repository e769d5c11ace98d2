// Package svc bundles every collaborator the HTTP server (cmd/server)
// and the scheduler daemon (cmd/worker) both need into one
// dependency-injected ServiceContext, grounded on the teacher's
// internal/svc/servicecontext.go wiring pattern.
package svc

import (
	"context"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/zeromicro/go-zero/core/stores/redis"
	"github.com/zeromicro/go-zero/core/stores/sqlx"

	"nof0-trading-agents/internal/agentmgr"
	"nof0-trading-agents/internal/config"
	"nof0-trading-agents/internal/journal"
	"nof0-trading-agents/pkg/confkit"
	"nof0-trading-agents/internal/llmclient"
	"nof0-trading-agents/internal/lock"
	"nof0-trading-agents/internal/market"
	"nof0-trading-agents/internal/model"
	"nof0-trading-agents/internal/orders"
	"nof0-trading-agents/internal/prompt"
	"nof0-trading-agents/internal/provider/eastmoney"
	"nof0-trading-agents/internal/quote"
	"nof0-trading-agents/internal/repo"
	"nof0-trading-agents/internal/task"
)

// ServiceContext is the single handle every HTTP handler and every
// scheduled task depends on.
type ServiceContext struct {
	Config config.Config

	Repo *repo.Set

	Locker    *lock.Locker
	Templates *prompt.Manager
	CtxBuild  *prompt.ContextBuilder
	Processor *orders.Processor
	AgentMgr  *agentmgr.Manager
	Quotes    *quote.Service
	Market    *market.Service
	Task      *task.Executor
}

// NewServiceContext wires every collaborator from c, dialing Postgres
// and the two Redis roles (cache-aside models, decision locks) and
// resolving the LLM dial closure agentmgr.Manager uses per provider
// row rather than a single fixed client.
func NewServiceContext(c config.Config) (*ServiceContext, error) {
	conn := sqlx.NewSqlConn("pgx", c.Postgres.DataSource)
	r := repo.NewFromConn(conn, c.Cache)

	lockStore := redis.MustNewRedis(c.LockRedisConf())
	locker := lock.NewLocker(lockStore)

	templates := prompt.NewManager(r)

	fetcher := eastmoney.New(10 * time.Second)
	quotes := quote.NewService(fetcher, r)
	mkt := market.NewService(fetcher, r, quotes)

	ctxBuild := prompt.NewContextBuilder(r, mkt, quotes)
	processor := orders.NewProcessor(r)

	var journalWriter *journal.Writer
	if c.JournalDir != "" {
		journalWriter = journal.NewWriter(confkit.ResolvePath(c.BaseDir(), c.JournalDir))
	}

	mgr := agentmgr.NewManager(r, locker, templates, ctxBuild, processor, dialFor(r), journalWriter)

	executor := task.NewExecutor(r, mgr, quotes, mkt, c.WatchedStocks)

	return &ServiceContext{
		Config:    c,
		Repo:      r,
		Locker:    locker,
		Templates: templates,
		CtxBuild:  ctxBuild,
		Processor: processor,
		AgentMgr:  mgr,
		Quotes:    quotes,
		Market:    mkt,
		Task:      executor,
	}, nil
}

// dialFor resolves agentmgr.Manager's LLM dial closure: given a
// provider's base URL/key and the rendered prompt, build an
// OpenAI-compatible client for that provider and run one non-streamed
// chat completion, returning the first choice's raw content alongside
// the token usage spec.md:47's LLM Request Log wants recorded.
func dialFor(r *repo.Set) func(ctx context.Context, baseURL, apiKey, modelName, renderedPrompt string) (agentmgr.DialResult, error) {
	return func(ctx context.Context, baseURL, apiKey, modelName, renderedPrompt string) (agentmgr.DialResult, error) {
		client, err := llmclient.NewClient(llmclient.FromProvider(baseURL, apiKey, modelName, 60*time.Second, 3))
		if err != nil {
			return agentmgr.DialResult{Status: "error"}, fmt.Errorf("svc: build llm client: %w", err)
		}
		defer client.Close()

		resp, err := client.Chat(ctx, &llmclient.ChatRequest{
			Model: modelName,
			Messages: []llmclient.Message{
				{Role: "user", Content: renderedPrompt},
			},
		})
		if err != nil {
			return agentmgr.DialResult{Status: "error"}, err
		}
		if len(resp.Choices) == 0 {
			return agentmgr.DialResult{Status: "error"}, errors.New("llmclient: response has no choices")
		}
		return agentmgr.DialResult{
			Content:   resp.Choices[0].Message.Content,
			Status:    "success",
			TokensIn:  resp.Usage.PromptTokens,
			TokensOut: resp.Usage.CompletionTokens,
		}, nil
	}
}

// RegisterAgentWatchlist refreshes the quote_sync universe with every
// distinct stock code currently held by any active agent, called
// periodically by cmd/worker alongside the scheduler loop.
func (s *ServiceContext) RegisterAgentWatchlist(ctx context.Context) error {
	agents, err := s.Repo.Agents.List(ctx, model.ListFilter{Status: "active"})
	if err != nil {
		return err
	}

	seen := map[string]struct{}{}
	var codes []string
	for _, a := range agents {
		positions, err := s.Repo.Positions.ListByAgent(ctx, a.ID)
		if err != nil {
			continue
		}
		for _, p := range positions {
			if _, ok := seen[p.StockCode]; ok {
				continue
			}
			seen[p.StockCode] = struct{}{}
			codes = append(codes, p.StockCode)
		}
	}
	s.Task.SetWatchedStocks(codes)
	return nil
}
