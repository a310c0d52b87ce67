// Package apiclient talks to an upstream finance API over HTTP and
// exposes it through the ledger interfaces.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"finview/internal/core"
	"finview/internal/ledger"
)

var ErrUpstream = errors.New("upstream api error")

// Client is a ledger.Store backed by a remote HTTP API.
type Client struct {
	baseURL string
	http    *http.Client
}

var _ ledger.Store = (*Client)(nil)

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// NewWithHTTPClient is used by tests to inject a custom transport.
func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	c := New(baseURL)
	c.http = hc
	return c
}

func (c *Client) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	var out []core.Transaction
	if err := c.get(ctx, "/api/transactions", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListAccounts(ctx context.Context) ([]core.Account, error) {
	var out []core.Account
	if err := c.get(ctx, "/api/accounts", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	var out core.Transaction
	if err := c.send(ctx, http.MethodPost, "/api/transactions", t, &out); err != nil {
		return core.Transaction{}, err
	}
	return out, nil
}

func (c *Client) UpdateTransaction(ctx context.Context, id string, t core.Transaction) (core.Transaction, error) {
	var out core.Transaction
	path := "/api/transactions/" + url.PathEscape(id)
	if err := c.send(ctx, http.MethodPut, path, t, &out); err != nil {
		return core.Transaction{}, err
	}
	return out, nil
}

func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	path := "/api/transactions/" + url.PathEscape(id)
	return c.send(ctx, http.MethodDelete, path, nil, nil)
}

// Snapshot holds a consistent read of the upstream ledger.
type Snapshot struct {
	Transactions []core.Transaction
	Accounts     []core.Account
}

// LoadSnapshot fetches transactions and accounts concurrently.
func (c *Client) LoadSnapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		txs, err := c.ListTransactions(ctx)
		if err != nil {
			return err
		}
		snap.Transactions = txs
		return nil
	})
	g.Go(func() error {
		accounts, err := c.ListAccounts(ctx)
		if err != nil {
			return err
		}
		snap.Accounts = accounts
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.send(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		payload = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ledger.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %s %s returned %d: %s", ErrUpstream, method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", path, err)
	}
	return nil
}
