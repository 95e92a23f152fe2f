package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/BlackForgeOfficial/ShadowEconomy/internal/ledger"
	"github.com/BlackForgeOfficial/ShadowEconomy/internal/models"
)

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type balanceResponse struct {
	AccountID string          `json:"account_id"`
	Balance   decimal.Decimal `json:"balance"`
}

type rejectionResponse struct {
	Error   string          `json:"error"`
	Balance decimal.Decimal `json:"balance"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}
	s.respond(w, r, id, s.ledger.Balance(id))
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}
	req, ok := decodeAmount(w, r)
	if !ok {
		return
	}
	s.respond(w, r, id, s.ledger.Deposit(id, req.Amount))
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}
	req, ok := decodeAmount(w, r)
	if !ok {
		return
	}
	s.respond(w, r, id, s.ledger.Withdraw(id, req.Amount))
}

func (s *Server) handleSetBalance(w http.ResponseWriter, r *http.Request) {
	id, ok := accountID(w, r)
	if !ok {
		return
	}
	req, ok := decodeAmount(w, r)
	if !ok {
		return
	}
	s.respond(w, r, id, s.ledger.SetBalance(id, req.Amount))
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	n := 10
	if raw := r.URL.Query().Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "n must be a non-negative integer", http.StatusBadRequest)
			return
		}
		n = parsed
	}

	entries, err := s.ledger.TopBalances(n).Await(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if entries == nil {
		entries = []models.Account{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// respond awaits an operation handle and maps its resolution: success to
// 200, validation rejection to 422, storage fault to 503.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, id uuid.UUID, res *ledger.Result[ledger.Outcome]) {
	out, err := res.Await(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !out.OK {
		writeJSON(w, http.StatusUnprocessableEntity, rejectionResponse{
			Error:   string(out.Reason),
			Balance: out.Balance,
		})
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{AccountID: id.String(), Balance: out.Balance})
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusServiceUnavailable
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusRequestTimeout
	}
	s.log.Error().Err(err).Str("path", r.URL.Path).Msg("operation failed")
	http.Error(w, err.Error(), status)
}

func accountID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "invalid account id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func decodeAmount(w http.ResponseWriter, r *http.Request) (amountRequest, bool) {
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
