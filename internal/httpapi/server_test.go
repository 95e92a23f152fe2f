package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlackForgeOfficial/ShadowEconomy/internal/config"
	"github.com/BlackForgeOfficial/ShadowEconomy/internal/ledger"
	"github.com/BlackForgeOfficial/ShadowEconomy/internal/models"
	"github.com/BlackForgeOfficial/ShadowEconomy/internal/storage/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	led, err := ledger.New(context.Background(), memory.NewMemoryBalanceStore(), ledger.Options{Logger: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = led.Close(ctx)
	})
	return NewServer(config.Default().Server, led, zerolog.Nop(), nil)
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestServer_DepositThenBalance(t *testing.T) {
	s := newTestServer(t)
	id := uuid.New()

	rec := do(t, s, http.MethodPost, fmt.Sprintf("/accounts/%s/deposit", id), `{"amount":"12.50"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(t, s, http.MethodGet, fmt.Sprintf("/accounts/%s/balance", id), "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp balanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, id.String(), resp.AccountID)
	assert.True(t, resp.Balance.Equal(decimal.RequireFromString("12.50")), "got %s", resp.Balance)
}

func TestServer_RejectionsMapTo422(t *testing.T) {
	s := newTestServer(t)
	id := uuid.New()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"negative_deposit", http.MethodPost, fmt.Sprintf("/accounts/%s/deposit", id), `{"amount":"-5"}`},
		{"zero_deposit", http.MethodPost, fmt.Sprintf("/accounts/%s/deposit", id), `{"amount":"0"}`},
		{"overdraw", http.MethodPost, fmt.Sprintf("/accounts/%s/withdraw", id), `{"amount":"60"}`},
		{"negative_set", http.MethodPut, fmt.Sprintf("/accounts/%s/balance", id), `{"amount":"-1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, tt.method, tt.path, tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())

			var resp rejectionResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestServer_BadInputs(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/accounts/not-a-uuid/balance", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodPost, fmt.Sprintf("/accounts/%s/deposit", uuid.New()), `{bad json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, s, http.MethodGet, "/top?n=-3", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Top(t *testing.T) {
	s := newTestServer(t)

	a := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	b := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	rec := do(t, s, http.MethodPut, fmt.Sprintf("/accounts/%s/balance", a), `{"amount":"300"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, s, http.MethodPut, fmt.Sprintf("/accounts/%s/balance", b), `{"amount":"100"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, s, http.MethodGet, "/top?n=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []models.Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, a, entries[0].ID)

	// n=0 is a defined empty result, not an error.
	rec = do(t, s, http.MethodGet, "/top?n=0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)
	rec := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
