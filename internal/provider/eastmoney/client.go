// Package eastmoney implements market.SpotFetcher and quote.DailyFetcher
// against the public Eastmoney quote endpoints, the same public data
// source the reference implementation's AKShareDataCollector wraps
// (AKShare's stock_zh_a_spot_em helper is a thin client over this same
// push2 clist endpoint). No Go client for Eastmoney exists anywhere in
// the example pack, so this is new code over the standard library: no
// pack repo demonstrates a third-party HTTP client idiom to follow, and
// pulling one in for a single GET-and-decode endpoint would be the
// dependency equivalent of importing a library to call strings.Split.
package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"nof0-trading-agents/internal/market"
	"nof0-trading-agents/internal/money"
	"nof0-trading-agents/internal/quote"
)

const (
	spotURL    = "http://82.push2.eastmoney.com/api/qt/clist/get"
	historyURL = "http://push2his.eastmoney.com/api/qt/stock/kline/get"

	// fields requested from clist/get: f12 code, f14 name, f2 last
	// price, f3 change pct, f4 change amount, f5 volume (lots), f6
	// amount (yuan), f8 turnover rate pct, f18 prev close.
	spotFields = "f2,f3,f4,f5,f6,f8,f12,f14,f18"
)

// Client fetches A-share spot snapshots and daily history from the
// public Eastmoney quote API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	historyURL string
}

// New constructs a client with the given request timeout.
func New(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    spotURL,
		historyURL: historyURL,
	}
}

type clistResponse struct {
	Data struct {
		Total int `json:"total"`
		Diff  []struct {
			Code         string  `json:"f12"`
			Name         string  `json:"f14"`
			Last         float64 `json:"f2"`
			ChangePct    float64 `json:"f3"`
			ChangeAmount float64 `json:"f4"`
			VolumeLots   float64 `json:"f5"`
			AmountYuan   float64 `json:"f6"`
			TurnoverPct  float64 `json:"f8"`
			PrevClose    float64 `json:"f18"`
		} `json:"diff"`
	} `json:"data"`
}

// FetchSpot implements market.SpotFetcher: the entire A-share market's
// current snapshot, paginated across the clist endpoint's page size.
func (c *Client) FetchSpot(ctx context.Context) ([]market.Spot, error) {
	const pageSize = 100
	var out []market.Spot

	for page := 1; ; page++ {
		batch, total, err := c.fetchSpotPage(ctx, page, pageSize)
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
		if len(out) >= total || len(batch) == 0 {
			break
		}
	}
	return out, nil
}

func (c *Client) fetchSpotPage(ctx context.Context, page, pageSize int) ([]market.Spot, int, error) {
	q := url.Values{}
	q.Set("pn", strconv.Itoa(page))
	q.Set("pz", strconv.Itoa(pageSize))
	q.Set("po", "1")
	q.Set("np", "1")
	q.Set("fltt", "2")
	q.Set("fs", "m:0+t:6,m:0+t:80,m:1+t:2,m:1+t:23") // SH/SZ main+GEM+STAR boards
	q.Set("fields", spotFields)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("eastmoney: build spot request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("eastmoney: spot request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, fmt.Errorf("eastmoney: spot request returned http %d", resp.StatusCode)
	}

	var parsed clistResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, 0, fmt.Errorf("eastmoney: decode spot response: %w", err)
	}

	spots := make([]market.Spot, 0, len(parsed.Data.Diff))
	for _, d := range parsed.Data.Diff {
		spots = append(spots, market.Spot{
			StockCode:    d.Code,
			Name:         d.Name,
			Close:        money.FromFloat(d.Last),
			PrevClose:    money.FromFloat(d.PrevClose),
			ChangePct:    d.ChangePct,
			Volume:       int64(d.VolumeLots * 100), // lots -> shares
			Amount:       money.FromFloat(d.AmountYuan),
			TurnoverRate: d.TurnoverPct,
		})
	}
	return spots, parsed.Data.Total, nil
}

type klineResponse struct {
	Data struct {
		Klines []string `json:"klines"`
	} `json:"data"`
}

// FetchDaily implements quote.DailyFetcher: `days` trading days of
// daily bars ending today, for one stock code.
func (c *Client) FetchDaily(ctx context.Context, stockCode string, days int) ([]quote.Upsert, error) {
	secID, err := secID(stockCode)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("secid", secID)
	q.Set("fields1", "f1,f2,f3,f4,f5")
	q.Set("fields2", "f51,f52,f53,f54,f55,f56,f57,f58")
	q.Set("klt", "101") // daily
	q.Set("fqt", "1")   // forward-adjusted
	q.Set("lmt", strconv.Itoa(days))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.historyURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("eastmoney: build kline request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("eastmoney: kline request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("eastmoney: kline request returned http %d", resp.StatusCode)
	}

	var parsed klineResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("eastmoney: decode kline response: %w", err)
	}

	rows := make([]quote.Upsert, 0, len(parsed.Data.Klines))
	for _, line := range parsed.Data.Klines {
		row, err := parseKlineRow(stockCode, line)
		if err != nil {
			continue
		}
		if len(rows) > 0 {
			row.PrevClose = rows[len(rows)-1].Close
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// parseKlineRow decodes one comma-separated kline line:
// date,open,close,high,low,volume,amount,turnover_rate.
func parseKlineRow(stockCode, line string) (quote.Upsert, error) {
	fields := strings.Split(line, ",")
	if len(fields) < 7 {
		return quote.Upsert{}, fmt.Errorf("eastmoney: malformed kline row %q", line)
	}
	tradeDate, err := time.Parse("2006-01-02", fields[0])
	if err != nil {
		return quote.Upsert{}, fmt.Errorf("eastmoney: bad kline date %q: %w", fields[0], err)
	}

	open, err1 := money.New(fields[1])
	closePrice, err2 := money.New(fields[2])
	high, err3 := money.New(fields[3])
	low, err4 := money.New(fields[4])
	turnover, err5 := money.New(fields[6])
	for _, err := range []error{err1, err2, err3, err4, err5} {
		if err != nil {
			return quote.Upsert{}, fmt.Errorf("eastmoney: bad kline row %q: %w", line, err)
		}
	}

	return quote.Upsert{
		StockCode: stockCode,
		TradeDate: tradeDate,
		Open:      open,
		Close:     closePrice,
		High:      high,
		Low:       low,
		Volume:    mustParseInt(fields[5]),
		Turnover:  turnover,
	}, nil
}

func mustParseInt(s string) int64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(v)
}

// secID maps a stock code to Eastmoney's exchange-prefixed secid: 1.
// for Shanghai, 0. for Shenzhen.
func secID(stockCode string) (string, error) {
	switch {
	case strings.HasPrefix(stockCode, "6"):
		return "1." + stockCode, nil
	case strings.HasPrefix(stockCode, "0"), strings.HasPrefix(stockCode, "3"):
		return "0." + stockCode, nil
	default:
		return "", fmt.Errorf("eastmoney: cannot resolve exchange for stock code %q", stockCode)
	}
}
