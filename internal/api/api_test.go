package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"raffle/internal/api"
	"raffle/internal/beacon"
	"raffle/internal/blockchain"
	"raffle/internal/program"
	"raffle/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const start = int64(1_700_000_000)

type client struct {
	t      *testing.T
	server *httptest.Server
}

func (c *client) do(method, path string, body any, out any) int {
	c.t.Helper()
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, c.server.URL+path, reader)
	require.NoError(c.t, err)
	resp, err := c.server.Client().Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func newClient(t *testing.T, now *atomic.Int64, opts ...api.OptionFunc) *client {
	t.Helper()
	s, err := storage.NewSqliteStorage("")
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, s.Close()) })

	p := program.New(s, program.WithClock(func() time.Time { return time.Unix(now.Load(), 0) }))
	server := httptest.NewServer(api.NewServer(p, opts...).Router())
	t.Cleanup(server.Close)
	return &client{t: t, server: server}
}

func newWallet(t *testing.T) string {
	t.Helper()
	id, err := blockchain.NewIdentity()
	require.NoError(t, err)
	return id.ToRaw()
}

type errorBody struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func TestRaffleLifecycle(t *testing.T) {
	now := &atomic.Int64{}
	now.Store(start)
	registry := prometheus.NewRegistry()
	c := newClient(t, now,
		api.WithFaucet(true),
		api.WithBeacon(beacon.NewStaticSource(beacon.Seed{9})),
		api.WithGatherer(registry),
	)

	operator := newWallet(t)
	buyer := newWallet(t)
	for _, wallet := range []string{operator, buyer} {
		var balance map[string]string
		require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/wallets/"+wallet+"/deposit", map[string]string{"amount": "5"}, &balance))
		assert.Equal(t, "5", balance["balance"])
	}

	var ledger map[string]any
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/ledgers", map[string]any{"payer": operator, "capacity": 10}, &ledger))

	var created map[string]any
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/raffles", map[string]any{
		"operator":     operator,
		"ledger":       ledger["ledger"],
		"endTimestamp": start + 60,
		"ticketPrice":  "0.1",
		"capacity":     10,
		"feePercent":   10,
	}, &created))
	address := created["address"].(string)
	assert.Equal(t, "0.1", created["ticketPrice"])
	assert.Equal(t, float64(10), created["capacity"])

	var purchase map[string]any
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/raffles/"+address+"/tickets", map[string]any{"buyer": buyer, "quantity": 3}, &purchase))
	assert.Equal(t, "0.03", purchase["fee"])
	assert.Equal(t, "0.27", purchase["net"])

	var failure errorBody
	require.Equal(t, http.StatusConflict, c.do(http.MethodPost, "/raffles/"+address+"/reveal", map[string]any{"caller": operator}, &failure))
	assert.Equal(t, "raffle_still_running", failure.Code)

	now.Store(start + 61)
	var draw map[string]any
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/raffles/"+address+"/reveal", map[string]any{"caller": operator}, &draw))
	assert.Equal(t, buyer, draw["winner"])
	assert.NotEmpty(t, draw["seed"])

	require.Equal(t, http.StatusConflict, c.do(http.MethodPost, "/raffles/"+address+"/close", map[string]any{"caller": operator}, &failure))
	assert.Equal(t, "prize_not_claimed", failure.Code)

	require.Equal(t, http.StatusForbidden, c.do(http.MethodPost, "/raffles/"+address+"/claim", map[string]any{"caller": operator, "authority": operator}, &failure))
	assert.Equal(t, "not_winner", failure.Code)

	var settlement map[string]string
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/raffles/"+address+"/claim", map[string]any{"caller": buyer, "authority": operator}, &settlement))
	assert.Equal(t, "0.24", settlement["prize"])
	assert.Equal(t, "0.03", settlement["fee"])

	var entrants map[string]any
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/raffles/"+address+"/entrants", nil, &entrants))
	assert.Len(t, entrants["entries"], 3)

	var closed map[string]string
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/raffles/"+address+"/close", map[string]any{"caller": operator}, &closed))
	assert.NotEqual(t, "0", closed["reclaimed"])

	require.Equal(t, http.StatusNotFound, c.do(http.MethodGet, "/raffles/"+address+"/entrants", nil, &failure))
	assert.Equal(t, "not_found", failure.Code)

	var shown map[string]any
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/raffles/"+address, nil, &shown))
	assert.Equal(t, true, shown["closed"])
	assert.Equal(t, true, shown["prizeClaimed"])
	assert.Equal(t, draw["index"], shown["winner"])

	var list []map[string]any
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/raffles", nil, &list))
	assert.Len(t, list, 1)

	var history []map[string]any
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/raffles/"+address+"/history", nil, &history))
	assert.Len(t, history, 5)
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/history", nil, &history))
	assert.Len(t, history, 8)

	resp, err := c.server.Client().Get(c.server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRevealWithExplicitRandomness(t *testing.T) {
	now := &atomic.Int64{}
	now.Store(start)
	c := newClient(t, now, api.WithFaucet(true))

	operator := newWallet(t)
	buyers := []string{newWallet(t), newWallet(t)}
	for _, wallet := range append([]string{operator}, buyers...) {
		require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/wallets/"+wallet+"/deposit", map[string]string{"amount": "1"}, nil))
	}
	var ledger map[string]any
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/ledgers", map[string]any{"payer": operator, "capacity": 5}, &ledger))
	var created map[string]any
	require.Equal(t, http.StatusCreated, c.do(http.MethodPost, "/raffles", map[string]any{
		"operator":     operator,
		"ledger":       ledger["ledger"],
		"endTimestamp": start + 1,
		"ticketPrice":  "0.01",
		"capacity":     5,
	}, &created))
	address := created["address"].(string)
	for _, buyer := range buyers {
		require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/raffles/"+address+"/tickets", map[string]any{"buyer": buyer, "quantity": 1}, nil))
	}
	now.Store(start + 2)

	var failure errorBody
	require.Equal(t, http.StatusBadRequest, c.do(http.MethodPost, "/raffles/"+address+"/reveal", map[string]any{"caller": operator}, &failure))
	assert.Equal(t, "randomness_required", failure.Code)

	var draw map[string]any
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/raffles/"+address+"/reveal", map[string]any{"caller": operator, "randomness": 7}, &draw))
	assert.Equal(t, float64(1), draw["index"])
	assert.Equal(t, buyers[1], draw["winner"])
}

func TestRequestErrors(t *testing.T) {
	now := &atomic.Int64{}
	now.Store(start)
	c := newClient(t, now)
	wallet := newWallet(t)

	tests := map[string]struct {
		method string
		path   string
		body   any
		status int
		code   string
	}{
		"faucet disabled": {http.MethodPost, "/wallets/" + wallet + "/deposit", map[string]string{"amount": "1"}, http.StatusForbidden, "faucet_disabled"},
		"bad identity":    {http.MethodGet, "/wallets/nope/balance", nil, http.StatusBadRequest, "bad_request"},
		"unknown raffle":  {http.MethodGet, "/raffles/" + wallet, nil, http.StatusNotFound, "not_found"},
		"unknown field":   {http.MethodPost, "/ledgers", map[string]any{"payer": wallet, "size": 3}, http.StatusBadRequest, "bad_request"},
		"zero capacity":   {http.MethodPost, "/ledgers", map[string]any{"payer": wallet, "capacity": 0}, http.StatusBadRequest, "invalid_max_entrants"},
		"no funds":        {http.MethodPost, "/ledgers", map[string]any{"payer": wallet, "capacity": 1}, http.StatusPaymentRequired, "insufficient_funds"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var failure errorBody
			assert.Equal(t, tc.status, c.do(tc.method, tc.path, tc.body, &failure))
			assert.Equal(t, tc.code, failure.Code)
		})
	}
}

func TestEmptyListsEncodeAsArrays(t *testing.T) {
	now := &atomic.Int64{}
	now.Store(start)
	c := newClient(t, now)

	resp, err := c.server.Client().Get(c.server.URL + "/raffles")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(body)))
}
