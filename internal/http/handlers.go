package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finview/internal/analytics"
	"finview/internal/core"
	"finview/internal/export"
	"finview/internal/ledger"
)

// dashboardView is everything the dashboard renders in one payload.
type dashboardView struct {
	Summary        core.Summary         `json:"summary"`
	BalancePercent float64              `json:"balancePercent"`
	TopCategory    core.RankedCategory  `json:"topCategory"`
	Breakdown      []core.CategoryShare `json:"breakdown"`
	Trend          []core.TrendPoint    `json:"trend"`
	Recent         []core.Transaction   `json:"recent"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	p, err := parseViewParams(r, core.Monthly)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.respondCached(w, r, func() (any, error) {
		txs, err := s.store.ListTransactions(r.Context())
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}

		windowed := analytics.FilterByWindow(txs, p.Mode, time.Now())
		summary := analytics.Summarize(windowed)

		return dashboardView{
			Summary:        summary,
			BalancePercent: analytics.BalancePercent(summary),
			TopCategory:    analytics.TopCategory(windowed),
			Breakdown: analytics.TopN(
				analytics.BreakdownByCategory(windowed, core.FilterAll, "", analytics.ByAmountDesc),
				analytics.DonutSlices),
			Trend:  analytics.BuildTrend(windowed),
			Recent: analytics.RecentActivity(windowed, analytics.DefaultRecentLimit),
		}, nil
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	p, err := parseViewParams(r, core.AllTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.respondCached(w, r, func() (any, error) {
		txs, err := s.store.ListTransactions(r.Context())
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		filtered := analytics.Filter(analytics.FilterByWindow(txs, p.Mode, time.Now()), p)
		summary := analytics.Summarize(filtered)
		return map[string]any{
			"summary":        summary,
			"balancePercent": analytics.BalancePercent(summary),
		}, nil
	})
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	p, err := parseViewParams(r, core.Monthly)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.respondCached(w, r, func() (any, error) {
		txs, err := s.store.ListTransactions(r.Context())
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		windowed := analytics.FilterByWindow(txs, p.Mode, time.Now())
		return analytics.BuildTrend(windowed), nil
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.respondCached(w, r, func() (any, error) {
		txs, err := s.store.ListTransactions(r.Context())
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		return analytics.Categories(txs), nil
	})
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	p, err := parseViewParams(r, core.AllTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	order := analytics.ByAmountDesc
	if v := strings.TrimSpace(r.URL.Query().Get("sort")); v != "" {
		order = analytics.SortOrder(v)
		switch order {
		case analytics.ByAmountDesc, analytics.ByAmountAsc, analytics.ByName:
		default:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid sort %q", v))
			return
		}
	}

	s.respondCached(w, r, func() (any, error) {
		txs, err := s.store.ListTransactions(r.Context())
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		windowed := analytics.FilterByWindow(txs, p.Mode, time.Now())
		return analytics.BreakdownByCategory(windowed, p.Division, p.Search, order), nil
	})
}

func (s *Server) handleTopCategory(w http.ResponseWriter, r *http.Request) {
	p, err := parseViewParams(r, core.Monthly)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.respondCached(w, r, func() (any, error) {
		txs, err := s.store.ListTransactions(r.Context())
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		windowed := analytics.FilterByWindow(txs, p.Mode, time.Now())
		return analytics.TopCategory(windowed), nil
	})
}

// transactionsView pairs the flat filtered list with its day grouping.
type transactionsView struct {
	Transactions []core.Transaction `json:"transactions"`
	Groups       []core.DayGroup    `json:"groups"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	p, err := parseViewParams(r, core.AllTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.respondCached(w, r, func() (any, error) {
		txs, err := s.store.ListTransactions(r.Context())
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		now := time.Now()
		filtered := analytics.Filter(analytics.FilterByWindow(txs, p.Mode, now), p)
		sorted := analytics.RecentActivity(filtered, len(filtered))
		return transactionsView{
			Transactions: sorted,
			Groups:       analytics.GroupByDay(sorted, now),
		}, nil
	})
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var payload transactionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := payload.toTransaction()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	created, err := s.store.CreateTransaction(r.Context(), t)
	if err != nil {
		slog.ErrorContext(r.Context(), "Create transaction failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.invalidateViews()
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var payload transactionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	t, err := payload.toTransaction()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	updated, err := s.store.UpdateTransaction(r.Context(), id, t)
	if errors.Is(err, ledger.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Update transaction failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.invalidateViews()
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	err := s.store.DeleteTransaction(r.Context(), id)
	if errors.Is(err, ledger.ErrNotFound) {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Delete transaction failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.invalidateViews()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	p, err := parseViewParams(r, core.AllTime)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txs, err := s.store.ListTransactions(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	now := time.Now()
	filtered := analytics.Filter(analytics.FilterByWindow(txs, p.Mode, now), p)
	sorted := analytics.RecentActivity(filtered, len(filtered))

	filename := fmt.Sprintf("transactions-%s.csv", now.Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := export.WriteCSV(w, sorted); err != nil {
		slog.ErrorContext(r.Context(), "CSV write failed", "error", err)
	}
}

// accountsView pairs the account list with the sum of balances.
type accountsView struct {
	Accounts     []core.Account  `json:"accounts"`
	TotalBalance decimal.Decimal `json:"totalBalance"`
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	s.respondCached(w, r, func() (any, error) {
		accounts, err := s.store.ListAccounts(r.Context())
		if err != nil {
			return nil, fmt.Errorf("list accounts: %w", err)
		}
		return accountsView{
			Accounts:     accounts,
			TotalBalance: analytics.TotalBalance(accounts),
		}, nil
	})
}

func (s *Server) handleAccountActivity(w http.ResponseWriter, r *http.Request) {
	account := r.PathValue("name")
	limit := parseLimit(r, analytics.DefaultAccountLimit)

	s.respondCached(w, r, func() (any, error) {
		txs, err := s.store.ListTransactions(r.Context())
		if err != nil {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		return analytics.AccountActivity(txs, account, limit), nil
	})
}
