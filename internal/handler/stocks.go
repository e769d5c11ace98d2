// Stock data endpoints (spec §6.1): read-through over the Quote
// Service for the artifacts this orchestrator actually ingests
// (daily OHLCV). The source's remaining stock-data routes
// (capital-flow, capital-distribution, profile, shareholders, news, analyst-ratings,
// financials, balance-sheet, cash-flow, ai-analysis, minute bars) name
// upstream feeds this rewrite never wires a fetcher for — spec.md
// itself treats "the market-data ingestion pipeline" as an external
// contract, and this system only implements the A-share spot/kline
// corner of it (internal/provider/eastmoney). Those routes report
// STOCK_DATA_ERROR rather than silently returning empty data.
package handler

import (
	"net/http"
	"time"

	"github.com/zeromicro/go-zero/rest/httpx"

	"nof0-trading-agents/internal/apperr"
	"nof0-trading-agents/internal/model"
	"nof0-trading-agents/internal/svc"
)

type quoteResp struct {
	StockCode string    `json:"stock_code"`
	TradeDate time.Time `json:"trade_date"`
	Open      string    `json:"open"`
	High      string    `json:"high"`
	Low       string    `json:"low"`
	Close     string    `json:"close"`
	PrevClose string    `json:"prev_close"`
	Volume    int64     `json:"volume"`
}

func toQuoteResp(q *model.Quotes) quoteResp {
	return quoteResp{
		StockCode: q.StockCode, TradeDate: q.TradeDate,
		Open: q.Open.String(), High: q.High.String(), Low: q.Low.String(),
		Close: q.Close.String(), PrevClose: q.PrevClose.String(), Volume: q.Volume,
	}
}

func stockQuoteHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req stockCodePathReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(w, apperr.New(apperr.CodeInvalidArgument, err.Error()))
			return
		}
		q, err := svcCtx.Quotes.GetLatest(r.Context(), req.Code)
		if err != nil {
			writeErrorForStock(w, stockNotFound(req.Code, err), req.Code)
			return
		}
		writeOK(w, toQuoteResp(q))
	}
}

// stockInfoHandler aliases the latest quote: the only stable-schema
// metadata this system tracks per symbol is its own daily bars.
func stockInfoHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return stockQuoteHandler(svcCtx)
}

func stockKlineHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req klineReq
		if err := httpx.Parse(r, &req); err != nil {
			writeError(w, apperr.New(apperr.CodeInvalidArgument, err.Error()))
			return
		}
		days := req.Days
		if days <= 0 {
			days = 30
		}
		to := time.Now()
		from := to.AddDate(0, 0, -days)
		rows, err := svcCtx.Quotes.GetRange(r.Context(), req.Code, from, to)
		if err != nil {
			writeErrorForStock(w, apperr.Wrap(apperr.CodeUnavailable, "load kline", err).WithPublicCode("STOCK_DATA_ERROR"), req.Code)
			return
		}
		if len(rows) == 0 {
			writeErrorForStock(w, stockNotFound(req.Code, nil), req.Code)
			return
		}
		out := make([]quoteResp, 0, len(rows))
		for _, row := range rows {
			out = append(out, toQuoteResp(row))
		}
		writeOK(w, out)
	}
}

// unsupportedStockDataHandler reports STOCK_DATA_ERROR for a named
// stock-data route this system never wires an upstream fetcher for.
func unsupportedStockDataHandler(feed string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req stockCodePathReq
		_ = httpx.Parse(r, &req)
		writeErrorForStock(w, apperr.New(apperr.CodeUnavailable, feed+" has no upstream source in this deployment").WithPublicCode("STOCK_DATA_ERROR"), req.Code)
	}
}

func stockNotFound(code string, err error) *apperr.Error {
	return apperr.Wrap(apperr.CodeNotFound, "stock "+code+" not found", err).WithPublicCode("STOCK_NOT_FOUND")
}
