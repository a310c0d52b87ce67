package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"finview/internal/core"
)

const filterDateLayout = "2006-01-02"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// respondCached serves the marshaled view model from the cache when
// fresh, recomputing via build otherwise. Only successful payloads are
// cached.
func (s *Server) respondCached(w http.ResponseWriter, r *http.Request, build func() (any, error)) {
	key := r.URL.RequestURI()

	if body, found := s.viewCache.Get(key); found {
		slog.DebugContext(r.Context(), "View cache hit", "key", key)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
		return
	}

	v, err := build()
	if err != nil {
		slog.ErrorContext(r.Context(), "View build failed", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	body, err := json.Marshal(v)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to marshal view", "key", key, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	body = append(body, '\n')

	s.viewCache.Set(key, body)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// invalidateViews drops all cached view models after a ledger write.
func (s *Server) invalidateViews() {
	s.viewCache.Clear()
}

// parseViewParams reads window and filter parameters from the query.
func parseViewParams(r *http.Request, defaultMode core.WindowMode) (core.ViewParams, error) {
	q := r.URL.Query()

	p := core.ViewParams{
		Mode:     defaultMode,
		Division: core.FilterAll,
		Type:     core.FilterAll,
		Category: core.FilterAll,
	}

	if v := strings.TrimSpace(q.Get("mode")); v != "" {
		mode := core.WindowMode(v)
		switch mode {
		case core.Weekly, core.Monthly, core.Yearly, core.AllTime:
			p.Mode = mode
		default:
			return core.ViewParams{}, fmt.Errorf("invalid mode %q", v)
		}
	}
	if v := strings.TrimSpace(q.Get("division")); v != "" {
		p.Division = v
	}
	if v := strings.TrimSpace(q.Get("type")); v != "" {
		p.Type = v
	}
	if v := strings.TrimSpace(q.Get("category")); v != "" {
		p.Category = v
	}
	p.Search = strings.TrimSpace(q.Get("q"))

	if v := strings.TrimSpace(q.Get("from")); v != "" {
		from, err := time.Parse(filterDateLayout, v)
		if err != nil {
			return core.ViewParams{}, fmt.Errorf("invalid from date %q", v)
		}
		p.From = from
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		to, err := time.Parse(filterDateLayout, v)
		if err != nil {
			return core.ViewParams{}, fmt.Errorf("invalid to date %q", v)
		}
		p.To = to
	}

	return p, nil
}

func parseLimit(r *http.Request, fallback int) int {
	v := strings.TrimSpace(r.URL.Query().Get("limit"))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// transactionPayload is the request body for creates and updates.
// Amount travels as a string to keep decimal precision.
type transactionPayload struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Division    string `json:"division"`
	AccountFrom string `json:"accountFrom"`
	AccountTo   string `json:"accountTo"`
	Date        string `json:"date"`
}

func (p transactionPayload) toTransaction() (core.Transaction, error) {
	amount, err := core.ParseAmount(p.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("amount: %w", err)
	}

	var date time.Time
	if v := strings.TrimSpace(p.Date); v != "" {
		date, err = time.Parse(time.RFC3339, v)
		if err != nil {
			date, err = time.Parse(filterDateLayout, v)
		}
		if err != nil {
			return core.Transaction{}, fmt.Errorf("date: %w", err)
		}
	}

	t := core.Transaction{
		Type:        core.TransactionType(strings.TrimSpace(p.Type)),
		Amount:      amount,
		Description: sanitizeInput(p.Description),
		Category:    sanitizeInput(p.Category),
		Division:    sanitizeInput(p.Division),
		AccountFrom: sanitizeInput(p.AccountFrom),
		AccountTo:   sanitizeInput(p.AccountTo),
		Date:        date,
	}
	return t, t.Validate()
}

// sanitizeInput removes control characters and trims whitespace
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
