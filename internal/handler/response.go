// Package handler implements the HTTP surface (spec §6.1): CRUD for
// agents and prompt templates, manual/fan-out decision triggers,
// decision-log queries, and read-through stock data, all wired to one
// svc.ServiceContext.
package handler

import (
	"net/http"

	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"

	"nof0-trading-agents/internal/apperr"
)

// errorBody is the standard error shape spec §6.1 names:
// {error_code, message, [stock_code]}.
type errorBody struct {
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	StockCode string `json:"stock_code,omitempty"`
}

func writeOK(w http.ResponseWriter, v interface{}) {
	httpx.OkJson(w, v)
}

// writeError maps err to the standard error body. apperr.Error carries
// its own HTTP status and code; anything else is INTERNAL_ERROR 500.
func writeError(w http.ResponseWriter, err error) {
	writeErrorForStock(w, err, "")
}

func writeErrorForStock(w http.ResponseWriter, err error, stockCode string) {
	code := "INTERNAL_ERROR"
	status := http.StatusInternalServerError
	message := err.Error()
	if appErr, ok := err.(*apperr.Error); ok {
		code = appErr.PublicCode
		if code == "" {
			code = upperSnake(string(appErr.Code))
		}
		status = appErr.HTTPStatus()
		message = appErr.Message
	}
	logx.Errorf("handler: %v", err)
	httpx.WriteJson(w, status, errorBody{ErrorCode: code, Message: message, StockCode: stockCode})
}

func upperSnake(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}
