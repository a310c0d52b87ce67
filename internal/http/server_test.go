package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finview/internal/core"
	"finview/internal/ledger/memory"
)

func newTestServer(t *testing.T, txs []core.Transaction, accounts []core.Account) *Server {
	t.Helper()
	s := NewServer(":0", memory.NewSeeded(txs, accounts), Options{})
	t.Cleanup(func() {
		s.cacheManager.Stop()
		s.rateLimiter.stop()
	})
	return s
}

func doRequest(s *Server, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func seedTxs() []core.Transaction {
	now := time.Now()
	return []core.Transaction{
		{ID: "t1", Type: core.Income, Amount: decimal.NewFromInt(1000), Description: "Salary", AccountFrom: "HDFC", Date: now.AddDate(0, 0, -1)},
		{ID: "t2", Type: core.Expense, Amount: decimal.NewFromInt(400), Description: "Dinner", Category: "Food", AccountFrom: "HDFC", Date: now.AddDate(0, 0, -2)},
		{ID: "t3", Type: core.Expense, Amount: decimal.NewFromInt(100), Description: "Snacks", Category: "Food", AccountFrom: "HDFC", Date: now.AddDate(0, 0, -3)},
		{ID: "t4", Type: core.Transfer, Amount: decimal.NewFromInt(50), AccountFrom: "HDFC", AccountTo: "SBI", Date: now.AddDate(0, 0, -1)},
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := doRequest(s, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := doRequest(s, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestDashboard(t *testing.T) {
	s := newTestServer(t, seedTxs(), nil)
	rec := doRequest(s, http.MethodGet, "/api/dashboard?mode=Weekly", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var view struct {
		Summary struct {
			Income  string `json:"income"`
			Expense string `json:"expense"`
			Balance string `json:"balance"`
		} `json:"summary"`
		BalancePercent float64 `json:"balancePercent"`
		TopCategory    struct {
			Name string `json:"name"`
		} `json:"topCategory"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if view.Summary.Income != "1000" || view.Summary.Expense != "500" || view.Summary.Balance != "500" {
		t.Fatalf("summary = %+v, want income 1000, expense 500, balance 500", view.Summary)
	}
	if view.BalancePercent != 50 {
		t.Fatalf("balancePercent = %v, want 50", view.BalancePercent)
	}
	if view.TopCategory.Name != "Food" {
		t.Fatalf("topCategory = %q, want Food", view.TopCategory.Name)
	}
}

func TestDashboardRejectsBadMode(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := doRequest(s, http.MethodGet, "/api/dashboard?mode=Quarterly", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestBreakdownSorting(t *testing.T) {
	s := newTestServer(t, seedTxs(), nil)
	rec := doRequest(s, http.MethodGet, "/api/categories/breakdown?sort=name", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(s, http.MethodGet, "/api/categories/breakdown?sort=sideways", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for invalid sort", rec.Code)
	}
}

func TestCreateTransaction(t *testing.T) {
	s := newTestServer(t, nil, nil)

	body := `{"type":"expense","amount":"42.50","description":"Coffee","category":"Food","accountFrom":"HDFC","date":"2025-06-10"}`
	rec := doRequest(s, http.MethodPost, "/api/transactions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var created core.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created transaction should carry an ID")
	}
	if !created.Amount.Equal(decimal.RequireFromString("42.50")) {
		t.Fatalf("amount = %s, want 42.50", created.Amount)
	}
}

func TestCreateTransactionRejectsInvalid(t *testing.T) {
	s := newTestServer(t, nil, nil)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"not json", "{{{", http.StatusBadRequest},
		{"bad amount", `{"type":"expense","amount":"-5","accountFrom":"HDFC","date":"2025-06-10"}`, http.StatusUnprocessableEntity},
		{"bad type", `{"type":"loan","amount":"5","accountFrom":"HDFC","date":"2025-06-10"}`, http.StatusUnprocessableEntity},
		{"missing account", `{"type":"expense","amount":"5","date":"2025-06-10"}`, http.StatusUnprocessableEntity},
		{"transfer to self", `{"type":"transfer","amount":"5","accountFrom":"HDFC","accountTo":"HDFC","date":"2025-06-10"}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(s, http.MethodPost, "/api/transactions", tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d, body = %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestUpdateMissingTransaction(t *testing.T) {
	s := newTestServer(t, nil, nil)

	body := `{"type":"expense","amount":"5","accountFrom":"HDFC","date":"2025-06-10"}`
	rec := doRequest(s, http.MethodPut, "/api/transactions/missing", body)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestDeleteTransaction(t *testing.T) {
	s := newTestServer(t, seedTxs(), nil)

	rec := doRequest(s, http.MethodDelete, "/api/transactions/t2", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}

	rec = doRequest(s, http.MethodDelete, "/api/transactions/t2", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 on second delete", rec.Code)
	}
}

func TestWriteInvalidatesCachedViews(t *testing.T) {
	s := newTestServer(t, nil, nil)

	rec := doRequest(s, http.MethodGet, "/api/summary", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	before := rec.Body.String()

	body := `{"type":"income","amount":"100","accountFrom":"HDFC","date":"2025-06-10"}`
	if rec := doRequest(s, http.MethodPost, "/api/transactions", body); rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d", rec.Code)
	}

	rec = doRequest(s, http.MethodGet, "/api/summary", "")
	if rec.Body.String() == before {
		t.Fatal("summary should change after a write, cache was not invalidated")
	}
}

func TestListTransactionsFilters(t *testing.T) {
	s := newTestServer(t, seedTxs(), nil)

	rec := doRequest(s, http.MethodGet, "/api/transactions?type=expense&category=Food", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var view struct {
		Transactions []core.Transaction `json:"transactions"`
		Groups       []core.DayGroup    `json:"groups"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(view.Transactions) != 2 {
		t.Fatalf("len(transactions) = %d, want 2", len(view.Transactions))
	}
	for _, tx := range view.Transactions {
		if tx.Category != "Food" {
			t.Fatalf("unexpected transaction in filtered list: %+v", tx)
		}
	}
	if len(view.Groups) == 0 {
		t.Fatal("expected day groups")
	}
}

func TestExportCSV(t *testing.T) {
	s := newTestServer(t, seedTxs(), nil)

	rec := doRequest(s, http.MethodGet, "/api/transactions/export?type=expense", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("content type = %q, want text/csv", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "attachment") {
		t.Fatalf("content disposition = %q", cd)
	}

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	if lines[0] != "Type,Amount,Description,Category,Division,Account From,Account To,Date" {
		t.Fatalf("header = %q", lines[0])
	}
	if len(lines) != 3 {
		t.Fatalf("len(lines) = %d, want header plus 2 expenses", len(lines))
	}
}

func TestAccounts(t *testing.T) {
	accounts := []core.Account{
		{ID: "a1", Name: "HDFC", Balance: decimal.NewFromInt(700)},
		{ID: "a2", Name: "SBI", Balance: decimal.NewFromInt(300)},
	}
	s := newTestServer(t, nil, accounts)

	rec := doRequest(s, http.MethodGet, "/api/accounts", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var view struct {
		Accounts     []core.Account `json:"accounts"`
		TotalBalance string         `json:"totalBalance"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(view.Accounts) != 2 {
		t.Fatalf("len(accounts) = %d, want 2", len(view.Accounts))
	}
	if view.TotalBalance != "1000" {
		t.Fatalf("totalBalance = %q, want 1000", view.TotalBalance)
	}
}

func TestAccountActivity(t *testing.T) {
	s := newTestServer(t, seedTxs(), nil)

	rec := doRequest(s, http.MethodGet, "/api/accounts/SBI/activity", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var txs []core.Transaction
	if err := json.Unmarshal(rec.Body.Bytes(), &txs); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(txs) != 1 || txs[0].ID != "t4" {
		t.Fatalf("activity = %+v, want only the transfer touching SBI", txs)
	}
}

func TestRateLimitOnWrites(t *testing.T) {
	s := newTestServer(t, nil, nil)

	var limited bool
	for i := 0; i < 70; i++ {
		rec := doRequest(s, http.MethodDelete, "/api/transactions/nope", "")
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Fatal("expected rate limiting to kick in on repeated writes")
	}
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t, nil, nil)
	rec := doRequest(s, http.MethodGet, "/api/summary", "")
	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Fatalf("X-Content-Type-Options = %q", got)
	}
	if got := rec.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Fatalf("X-Frame-Options = %q", got)
	}
}
