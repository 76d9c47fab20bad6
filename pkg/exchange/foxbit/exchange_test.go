package foxbit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renard/pkg/core"
	"renard/pkg/exchange"
)

func newTestExchange(t *testing.T) *FoxbitExchange {
	t.Helper()
	ex, err := New(core.DefaultConfig("foxbit"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ex.Close() })
	return ex
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(&core.Config{})
	assert.Error(t, err)
}

func TestNameAndVersion(t *testing.T) {
	ex := newTestExchange(t)
	assert.Equal(t, "foxbit", ex.Name())
	assert.Equal(t, "v3", ex.Version())
}

func TestCreateOrderRejectsInvalidTypeBeforeNetwork(t *testing.T) {
	ex := newTestExchange(t)

	_, err := ex.CreateOrder(context.Background(), &exchange.OrderRequest{
		Symbol: "BTC/BRL",
		Side:   core.SideBuy,
		Type:   core.OrderType("SWAP"),
	})
	require.Error(t, err)
	assert.True(t, core.IsInvalidOrderError(err))
}

func TestFetchMyTradesRequiresSymbol(t *testing.T) {
	ex := newTestExchange(t)

	_, err := ex.FetchMyTrades(context.Background(), "")
	assert.ErrorIs(t, err, core.ErrSymbolRequired)
}

func TestEditOrderRequiresSymbol(t *testing.T) {
	ex := newTestExchange(t)

	_, err := ex.EditOrder(context.Background(), "123", &exchange.OrderRequest{
		Side: core.SideBuy,
		Type: core.TypeLimit,
	})
	assert.ErrorIs(t, err, core.ErrSymbolRequired)
}

func TestMarketLookupWithoutRegistry(t *testing.T) {
	ex := newTestExchange(t)

	_, err := ex.market("BTC/BRL")
	assert.ErrorIs(t, err, core.ErrMarketsNotLoaded)

	_, err = ex.currency("BTC")
	assert.ErrorIs(t, err, core.ErrMarketsNotLoaded)
}

func TestMarketLookup(t *testing.T) {
	ex := newTestExchange(t)
	ex.marketsBySymbol = map[string]core.Market{
		"BTC/BRL": {ID: "btcbrl", Symbol: "BTC/BRL", BaseID: "btc", QuoteID: "brl"},
	}
	ex.marketsByID = map[string]core.Market{
		"btcbrl": ex.marketsBySymbol["BTC/BRL"],
	}

	m, err := ex.market("BTC/BRL")
	require.NoError(t, err)
	assert.Equal(t, "btcbrl", requestSymbol(m))
	assert.Equal(t, "BTC/BRL", ex.symbolByID("btcbrl"))
	assert.Equal(t, "", ex.symbolByID("ethbrl"))

	_, err = ex.market("ETH/BRL")
	require.Error(t, err)
	assert.True(t, core.IsErrorCode(err, core.ErrCodeInvalidSymbol))
}

func TestBuildOrderParamsOrderAndOptionals(t *testing.T) {
	ex := newTestExchange(t)
	m := core.Market{
		Symbol:          "BTC/BRL",
		BaseID:          "btc",
		QuoteID:         "brl",
		PricePrecision:  2,
		AmountPrecision: 8,
	}

	params, err := ex.buildOrderParams(m, core.TypeLimit, &exchange.OrderRequest{
		Symbol:        "BTC/BRL",
		Side:          core.SideBuy,
		Amount:        parseDecimal("0.42"),
		Price:         parseDecimal("290000"),
		ClientOrderID: "451637946501",
		PostOnly:      true,
		Remark:        "note",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"market_symbol", "side", "type", "quantity", "price",
		"client_order_id", "remark", "post_only",
	}, params.Keys())
	assert.Equal(t, "btcbrl", params.GetString("market_symbol"))
	assert.Equal(t, "BUY", params.GetString("side"))
	assert.Equal(t, "LIMIT", params.GetString("type"))
	assert.Equal(t, "0.42000000", params.GetString("quantity"))
	assert.Equal(t, "290000.00", params.GetString("price"))
}

func TestCredentialsSelection(t *testing.T) {
	ex := newTestExchange(t)

	_, err := ex.credentials()
	require.Error(t, err)
	assert.True(t, core.IsErrorCode(err, core.ErrCodeNoCredentials))

	ex.config.Credentials = &core.Credentials{APIKey: "k", SecretKey: "s"}
	creds, err := ex.credentials()
	require.NoError(t, err)
	assert.Equal(t, "k", creds.APIKey)
}

func TestRegister(t *testing.T) {
	container := exchange.NewContainer()
	require.NoError(t, Register(container, core.DefaultConfig("foxbit")))

	ex, err := container.Get("foxbit")
	require.NoError(t, err)
	assert.Equal(t, "foxbit", ex.Name())
}
