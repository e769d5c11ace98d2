// Package calendar answers whether the Shanghai/Shenzhen exchanges are
// open on a given date. It is intentionally static data rather than a
// call to a live calendar service — see the Open Question decision in
// DESIGN.md — so the scheduler and the order processor can evaluate
// trading-day gating offline, deterministically, in tests.
package calendar

import "time"

var shanghaiTZ = mustLoadLocation("Asia/Shanghai")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("CST", 8*60*60)
	}
	return loc
}

// Location is the Asia/Shanghai timezone every wall-clock computation
// in the orchestrator anchors to, per spec §6.5.
func Location() *time.Location { return shanghaiTZ }

// holidays lists the non-trading weekday dates for the A-share market.
// TODO: extend this table when the next calendar year's holiday
// schedule is published by the exchanges.
var holidays = map[string]bool{
	"2024-01-01": true, "2024-02-09": true, "2024-02-12": true,
	"2024-02-13": true, "2024-02-14": true, "2024-02-15": true,
	"2024-02-16": true, "2024-04-04": true, "2024-04-05": true,
	"2024-05-01": true, "2024-05-02": true, "2024-05-03": true,
	"2024-06-10": true, "2024-09-16": true, "2024-09-17": true,
	"2024-10-01": true, "2024-10-02": true, "2024-10-03": true,
	"2024-10-04": true, "2024-10-07": true,
	"2025-01-01": true, "2025-01-28": true, "2025-01-29": true,
	"2025-01-30": true, "2025-01-31": true, "2025-02-03": true,
	"2025-02-04": true, "2025-04-04": true, "2025-05-01": true,
	"2025-05-02": true, "2025-05-05": true, "2025-05-31": true,
	"2025-06-02": true, "2025-10-01": true, "2025-10-02": true,
	"2025-10-03": true, "2025-10-06": true, "2025-10-07": true,
	"2025-10-08": true,
	"2026-01-01": true, "2026-02-16": true, "2026-02-17": true,
	"2026-02-18": true, "2026-02-19": true, "2026-02-20": true,
	"2026-04-06": true, "2026-05-01": true, "2026-06-19": true,
	"2026-09-25": true, "2026-10-01": true, "2026-10-02": true,
	"2026-10-05": true, "2026-10-06": true, "2026-10-07": true,
	"2026-10-08": true,
}

// IsTradingDay reports whether the A-share market is open on the given
// date (weekends and the static holiday table are excluded). The time
// component of t is ignored; only the Asia/Shanghai calendar date matters.
func IsTradingDay(t time.Time) bool {
	t = t.In(shanghaiTZ)
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !holidays[t.Format("2006-01-02")]
}

// SkipReason names why today is not a trading day, for a skipped task
// log row. Returns "" if today is a trading day.
func SkipReason(t time.Time) string {
	t = t.In(shanghaiTZ)
	switch t.Weekday() {
	case time.Saturday:
		return "今天是周六 (Saturday), not a trading day"
	case time.Sunday:
		return "今天是周日 (Sunday), not a trading day"
	}
	if holidays[t.Format("2006-01-02")] {
		return "今天是交易所休市日 (exchange holiday), not a trading day"
	}
	return ""
}

// TradingSession reports whether t falls within a continuous-trading
// window (09:30-11:30 or 13:00-15:00 Asia/Shanghai) on a trading day.
func TradingSession(t time.Time) bool {
	if !IsTradingDay(t) {
		return false
	}
	t = t.In(shanghaiTZ)
	morningStart := time.Date(t.Year(), t.Month(), t.Day(), 9, 30, 0, 0, shanghaiTZ)
	morningEnd := time.Date(t.Year(), t.Month(), t.Day(), 11, 30, 0, 0, shanghaiTZ)
	afternoonStart := time.Date(t.Year(), t.Month(), t.Day(), 13, 0, 0, 0, shanghaiTZ)
	afternoonEnd := time.Date(t.Year(), t.Month(), t.Day(), 15, 0, 0, 0, shanghaiTZ)

	inMorning := !t.Before(morningStart) && !t.After(morningEnd)
	inAfternoon := !t.Before(afternoonStart) && !t.After(afternoonEnd)
	return inMorning || inAfternoon
}

// PreviousTradingDay walks backward from t (exclusive) to the nearest trading day.
func PreviousTradingDay(t time.Time) time.Time {
	t = t.In(shanghaiTZ)
	for {
		t = t.AddDate(0, 0, -1)
		if IsTradingDay(t) {
			return t
		}
	}
}
