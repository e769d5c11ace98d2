package task

import (
	"context"
	"sync"
	"time"

	"github.com/zeromicro/go-zero/core/logx"
)

// ScheduleEntry binds a task type to a fixed interval and whether it
// should be skipped on non-trading days, mirroring the deleted
// teacher's cron goroutine-per-monitor layout.
type ScheduleEntry struct {
	TaskType       string
	Interval       time.Duration
	TradingDayOnly bool
}

// DefaultSchedule matches spec §4.9's cadence: agent decisions run
// every 30 minutes during the trading day, quotes sync every 5
// minutes, market data refreshes once an hour.
var DefaultSchedule = []ScheduleEntry{
	{TaskType: TypeAgentDecision, Interval: 30 * time.Minute, TradingDayOnly: true},
	{TaskType: TypeQuoteSync, Interval: 5 * time.Minute, TradingDayOnly: true},
	{TaskType: TypeMarketRefresh, Interval: time.Hour, TradingDayOnly: false},
}

// Scheduler runs one ticker goroutine per schedule entry and stops
// them all on context cancellation, the same shape as the deleted
// teacher's cmd/cron/main.go.
type Scheduler struct {
	executor *Executor
	schedule []ScheduleEntry
	logger   logx.Logger
}

// NewScheduler builds a scheduler over the given entries (pass
// DefaultSchedule for spec §4.9's stock cadence, or a trimmed list in
// tests).
func NewScheduler(executor *Executor, schedule []ScheduleEntry) *Scheduler {
	return &Scheduler{executor: executor, schedule: schedule, logger: logx.WithContext(context.Background())}
}

// Start launches one goroutine per schedule entry and blocks until ctx
// is cancelled, at which point every goroutine has exited.
func (s *Scheduler) Start(ctx context.Context) {
	var wg sync.WaitGroup
	for _, entry := range s.schedule {
		wg.Add(1)
		go func(entry ScheduleEntry) {
			defer wg.Done()
			s.runLoop(ctx, entry)
		}(entry)
	}
	wg.Wait()
}

func (s *Scheduler) runLoop(ctx context.Context, entry ScheduleEntry) {
	ticker := time.NewTicker(entry.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.executor.Run(ctx, entry.TaskType, entry.TradingDayOnly); err != nil {
				s.logger.Errorf("task: scheduled run of %s failed: %v", entry.TaskType, err)
			}
		}
	}
}
