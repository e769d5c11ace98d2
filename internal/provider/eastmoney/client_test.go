package eastmoney

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchSpotParsesOnePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"total":1,"diff":[
			{"f12":"600000","f14":"浦发银行","f2":10.50,"f3":2.5,"f4":0.25,"f5":12345.0,"f6":98765432.0,"f8":3.2,"f18":10.25}
		]}}`))
	}))
	defer server.Close()

	client := New(0)
	client.baseURL = server.URL

	spots, err := client.FetchSpot(context.Background())

	require.NoError(t, err)
	require.Len(t, spots, 1)
	assert.Equal(t, "600000", spots[0].StockCode)
	assert.Equal(t, "浦发银行", spots[0].Name)
	assert.Equal(t, "10.5", spots[0].Close.String())
	assert.Equal(t, int64(1234500), spots[0].Volume)
}

func TestFetchDailyComputesPrevCloseFromPriorRow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"klines":[
			"2026-07-28,10.00,10.20,10.30,9.90,100000,1020000,1.1",
			"2026-07-29,10.20,10.50,10.60,10.10,110000,1150000,1.2"
		]}}`))
	}))
	defer server.Close()

	client := New(0)
	client.historyURL = server.URL

	rows, err := client.FetchDaily(context.Background(), "600000", 2)

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].PrevClose.IsZero())
	assert.Equal(t, "10.20", rows[1].PrevClose.String())
}

func TestSecIDMapsShanghaiAndShenzhen(t *testing.T) {
	sh, err := secID("600000")
	require.NoError(t, err)
	assert.Equal(t, "1.600000", sh)

	sz, err := secID("000001")
	require.NoError(t, err)
	assert.Equal(t, "0.000001", sz)

	_, err = secID("999999")
	assert.Error(t, err)
}
