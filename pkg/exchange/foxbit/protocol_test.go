package foxbit

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renard/pkg/core"
)

func TestRouteTable(t *testing.T) {
	p := NewProtocol()

	tests := []struct {
		op       core.Operation
		method   string
		path     string
		category core.APICategory
		weight   int
	}{
		{core.OpFetchCurrencies, http.MethodGet, "currencies", core.CategoryPublic, 5},
		{core.OpFetchMarkets, http.MethodGet, "markets", core.CategoryPublic, 5},
		{core.OpFetchTicker, http.MethodGet, "markets/{market}/ticker/24hr", core.CategoryPublic, 15},
		{core.OpFetchTickers, http.MethodGet, "markets/ticker/24hr", core.CategoryPublic, 60},
		{core.OpFetchOrderBook, http.MethodGet, "markets/{market}/orderbook", core.CategoryPublic, 6},
		{core.OpFetchTrades, http.MethodGet, "markets/{market}/trades/history", core.CategoryPublic, 12},
		{core.OpFetchOHLCV, http.MethodGet, "markets/{market}/candlesticks", core.CategoryPublic, 12},
		{core.OpFetchBalance, http.MethodGet, "accounts", core.CategoryPrivate, 2},
		{core.OpCreateOrder, http.MethodPost, "orders", core.CategoryPrivate, 2},
		{core.OpCancelOrder, http.MethodPut, "orders/cancel", core.CategoryPrivate, 2},
		{core.OpEditOrder, http.MethodPost, "orders/cancel-replace", core.CategoryPrivate, 3},
		{core.OpFetchOrder, http.MethodGet, "orders/by-order-id/{id}", core.CategoryPrivate, 2},
		{core.OpFetchOrders, http.MethodGet, "orders", core.CategoryPrivate, 2},
		{core.OpFetchMyTrades, http.MethodGet, "trades", core.CategoryPrivate, 6},
		{core.OpFetchDepositAddress, http.MethodGet, "deposits/address", core.CategoryPrivate, 10},
		{core.OpFetchDeposits, http.MethodGet, "deposits", core.CategoryPrivate, 10},
		{core.OpFetchWithdrawals, http.MethodGet, "withdrawals", core.CategoryPrivate, 10},
		{core.OpWithdraw, http.MethodPost, "withdrawals", core.CategoryPrivate, 10},
		{core.OpFetchStatus, http.MethodGet, "status", core.CategoryStatus, 30},
	}

	for _, tt := range tests {
		r, err := p.Route(tt.op)
		require.NoError(t, err, tt.op.String())
		assert.Equal(t, tt.method, r.method, tt.op.String())
		assert.Equal(t, tt.path, r.path, tt.op.String())
		assert.Equal(t, tt.category, r.endpoint.Category, tt.op.String())
		assert.Equal(t, tt.weight, r.weight, tt.op.String())
		assert.Equal(t, tt.weight, p.Weight(tt.op), tt.op.String())
	}
}

func TestParseOrderTypeCaseInsensitive(t *testing.T) {
	for _, input := range []string{"limit", "LIMIT", "Limit"} {
		typ, err := core.ParseOrderType(input)
		require.NoError(t, err, input)
		assert.Equal(t, core.TypeLimit, typ)
	}

	typ, err := core.ParseOrderType("stop_market")
	require.NoError(t, err)
	assert.Equal(t, core.TypeStopMarket, typ)
}

func TestParseOrderTypeRejected(t *testing.T) {
	_, err := core.ParseOrderType("SWAP")
	require.Error(t, err)
	assert.True(t, core.IsInvalidOrderError(err))
	assert.Contains(t, err.Error(), "SWAP")
}

func TestFormatPrecision(t *testing.T) {
	tests := []struct {
		value    string
		places   int
		expected string
	}{
		{"0.123456789", 8, "0.12345679"},
		{"290000", 2, "290000.00"},
		{"0.420000", 2, "0.42"},
		{"1", 0, "1"},
	}

	for _, tt := range tests {
		got, err := formatPrecision(parseDecimal(tt.value), tt.places)
		require.NoError(t, err, tt.value)
		assert.Equal(t, tt.expected, got, tt.value)
	}

	_, err := formatPrecision(nil, 2)
	assert.Error(t, err)
}

func TestApplyOrderShape(t *testing.T) {
	m := core.Market{
		Symbol:          "BTC/BRL",
		PricePrecision:  2,
		AmountPrecision: 8,
	}
	amount := parseDecimal("0.42")
	price := parseDecimal("290000.1234")

	tests := []struct {
		typ      core.OrderType
		expected map[string]string
		absent   []string
	}{
		{
			typ:      core.TypeLimit,
			expected: map[string]string{"quantity": "0.42000000", "price": "290000.12"},
			absent:   []string{"stop_price", "amount"},
		},
		{
			typ:      core.TypeMarket,
			expected: map[string]string{"quantity": "0.42000000"},
			absent:   []string{"price", "stop_price", "amount"},
		},
		{
			typ:      core.TypeStopMarket,
			expected: map[string]string{"stop_price": "290000.12", "quantity": "0.42000000"},
			absent:   []string{"price", "amount"},
		},
		{
			typ:      core.TypeInstant,
			expected: map[string]string{"amount": "0.42"},
			absent:   []string{"price", "stop_price", "quantity"},
		},
	}

	for _, tt := range tests {
		params := core.NewParams()
		err := applyOrderShape(params, m, tt.typ, amount, price)
		require.NoError(t, err, string(tt.typ))

		for key, want := range tt.expected {
			assert.Equal(t, want, params.GetString(key), "%s %s", tt.typ, key)
		}
		for _, key := range tt.absent {
			_, ok := params.Get(key)
			assert.False(t, ok, "%s should not set %s", tt.typ, key)
		}
	}
}

func TestApplyOrderShapeMissingValues(t *testing.T) {
	m := core.Market{PricePrecision: 2, AmountPrecision: 8}

	err := applyOrderShape(core.NewParams(), m, core.TypeLimit, parseDecimal("1"), nil)
	assert.Error(t, err)

	err = applyOrderShape(core.NewParams(), m, core.TypeMarket, nil, nil)
	assert.Error(t, err)
}

func TestClampPageSize(t *testing.T) {
	assert.Equal(t, 100, clampPageSize(250, maxOrdersPageSize))
	assert.Equal(t, 200, clampPageSize(500, maxTradesPageSize))
	assert.Equal(t, 500, clampPageSize(9999, maxCandlesPageSize))
	assert.Equal(t, 50, clampPageSize(50, maxOrdersPageSize))
}
