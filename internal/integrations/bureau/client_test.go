package bureau

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dan9191/fintrack/internal/models"
)

const reportBody = `{
  "creditScore": 750,
  "trades": [
    {"tradeId": "EXP_1001", "accountType": "Personal Loan", "accountNumber": "XXXX1234",
     "currentBalance": 500000.00, "interestRate": 12.5, "originalAmount": 600000.00,
     "openDate": "2025-10-19", "tenureMonths": 36, "status": "Active"},
    {"tradeId": "EXP_1002", "accountType": "Car Loan", "accountNumber": "XXXX5678",
     "interestRate": 9.25, "openDate": "2026-04-22", "tenureMonths": 60, "status": "Active"}
  ]
}`

func TestFetchTrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/credit-report", r.URL.Path)
		assert.Equal(t, "Bearer key-1", r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ABCDE1234F", body["pan"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(reportBody))
	}))
	defer srv.Close()
	logger, _ := test.NewNullLogger()

	client := NewClient("key-1", "ABCDE1234F", logger, WithBaseURL(srv.URL))
	trades, err := client.FetchTrades(context.Background())

	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.Equal(t, "EXP_1001", trades[0].TradeID)
	assert.True(t, decimal.RequireFromString("600000").Equal(*trades[0].OriginalAmount))
	assert.Equal(t, 36, trades[0].TenureMonths)
	assert.Nil(t, trades[1].OriginalAmount)
}

func TestFetchTrades_BadTradeKeepsTheRest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"creditScore": 710, "trades": [
			{"tradeId": "EXP_2001", "accountType": "Home Loan", "interestRate": 8.4,
			 "originalAmount": 4500000, "openDate": "2024-02-01", "tenureMonths": 240},
			{"tradeId": "EXP_2002", "accountType": "Home Loan", "interestRate": 8.4,
			 "originalAmount": 4500000, "openDate": "2024-02-01", "tenureMonths": "240"}
		]}`))
	}))
	defer srv.Close()
	logger, _ := test.NewNullLogger()

	trades, err := NewClient("k", "p", logger, WithBaseURL(srv.URL)).FetchTrades(context.Background())

	require.NoError(t, err)
	require.Len(t, trades, 2)
	assert.NoError(t, trades[0].Malformed())
	assert.Equal(t, 240, trades[0].TenureMonths)
	assert.Equal(t, "EXP_2002", trades[1].TradeID)
	assert.ErrorIs(t, trades[1].Malformed(), models.ErrMalformedRecord)
}

func TestFetchTrades_Errors(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"unauthorized": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad key", http.StatusUnauthorized)
		},
		"malformed payload": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"trades": [`))
		},
	}
	for name, handler := range tests {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(handler)
			defer srv.Close()
			logger, _ := test.NewNullLogger()

			_, err := NewClient("k", "p", logger, WithBaseURL(srv.URL)).FetchTrades(context.Background())
			assert.ErrorIs(t, err, models.ErrSourceUnavailable)
		})
	}
}

func TestAPIError(t *testing.T) {
	err := &APIError{StatusCode: 503, Message: "maintenance"}
	assert.Contains(t, err.Error(), "503")
	assert.ErrorIs(t, err, models.ErrSourceUnavailable)
}
