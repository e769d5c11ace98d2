// Scheduler daemon: runs the agent-decision/quote-sync/market-refresh
// cadence of spec §4.9 outside the HTTP request path, adapted from the
// teacher's cmd/cron/main.go signal.NotifyContext + goroutine-per-task
// shutdown pattern.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nof0-trading-agents/internal/config"
	"nof0-trading-agents/internal/svc"
	"nof0-trading-agents/internal/task"
)

const (
	watchlistRefreshInterval = 10 * time.Minute
	shutdownTimeout          = 10 * time.Second
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)
	log.Println("[worker] starting scheduler daemon...")

	cfg := config.MustLoad()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svcCtx, err := svc.NewServiceContext(*cfg)
	if err != nil {
		log.Fatalf("[worker] build service context: %v", err)
	}

	if err := svcCtx.RegisterAgentWatchlist(ctx); err != nil {
		log.Printf("[worker] initial watchlist build failed: %v", err)
	}

	scheduler := task.NewScheduler(svcCtx.Task, scheduleFromConfig(cfg.Schedule))

	done := make(chan struct{})
	go func() {
		scheduler.Start(ctx)
		close(done)
	}()

	go runWatchlistRefresh(ctx, svcCtx)

	log.Println("[worker] scheduler daemon started. Press Ctrl+C to stop.")
	<-ctx.Done()
	log.Println("[worker] shutdown signal received, waiting for tasks to finish...")

	select {
	case <-done:
		log.Println("[worker] all schedule loops stopped cleanly")
	case <-time.After(shutdownTimeout):
		log.Println("[worker] shutdown timeout exceeded, exiting")
	}
}

// scheduleFromConfig overrides task.DefaultSchedule's intervals with
// any non-zero cfg values, keeping DefaultSchedule's task types and
// TradingDayOnly flags.
func scheduleFromConfig(cfg config.ScheduleConf) []task.ScheduleEntry {
	overrides := map[string]time.Duration{
		task.TypeAgentDecision: cfg.AgentDecisionInterval,
		task.TypeQuoteSync:     cfg.QuoteSyncInterval,
		task.TypeMarketRefresh: cfg.MarketRefreshInterval,
	}

	entries := make([]task.ScheduleEntry, len(task.DefaultSchedule))
	copy(entries, task.DefaultSchedule)
	for i, e := range entries {
		if interval, ok := overrides[e.TaskType]; ok && interval > 0 {
			entries[i].Interval = interval
		}
	}
	return entries
}

// runWatchlistRefresh keeps the quote_sync universe in sync with every
// active agent's currently-held positions.
func runWatchlistRefresh(ctx context.Context, svcCtx *svc.ServiceContext) {
	ticker := time.NewTicker(watchlistRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := svcCtx.RegisterAgentWatchlist(ctx); err != nil {
				log.Printf("[worker] watchlist refresh failed: %v", err)
			}
		}
	}
}
