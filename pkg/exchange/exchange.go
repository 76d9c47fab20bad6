package exchange

import (
	"context"

	"github.com/cockroachdb/apd/v3"

	"renard/pkg/core"
)

// Exchange defines the unified interface for interacting with a venue.
// Every implementation normalizes its proprietary payloads into the
// canonical records in pkg/core.
type Exchange interface {
	Name() string
	Version() string

	LoadMarkets(ctx context.Context) error
	FetchCurrencies(ctx context.Context) (map[string]core.Currency, error)
	FetchMarkets(ctx context.Context) ([]core.Market, error)

	FetchTicker(ctx context.Context, symbol string) (*core.Ticker, error)
	FetchTickers(ctx context.Context, symbols ...string) (map[string]core.Ticker, error)
	FetchOrderBook(ctx context.Context, symbol string, opts ...Option) (*core.OrderBook, error)
	FetchTrades(ctx context.Context, symbol string, opts ...Option) ([]core.Trade, error)
	FetchOHLCV(ctx context.Context, symbol, timeframe string, opts ...Option) ([]core.Candle, error)

	FetchBalance(ctx context.Context) (map[string]core.Balance, error)

	CreateOrder(ctx context.Context, req *OrderRequest) (*core.Order, error)
	CancelOrder(ctx context.Context, id string, opts ...Option) (*core.Order, error)
	CancelAllOrders(ctx context.Context, symbol string) ([]core.Order, error)
	EditOrder(ctx context.Context, id string, req *OrderRequest) (*core.Order, error)
	FetchOrder(ctx context.Context, id string) (*core.Order, error)
	FetchOrders(ctx context.Context, symbol string, opts ...Option) ([]core.Order, error)
	FetchOpenOrders(ctx context.Context, symbol string, opts ...Option) ([]core.Order, error)
	FetchClosedOrders(ctx context.Context, symbol string, opts ...Option) ([]core.Order, error)
	FetchMyTrades(ctx context.Context, symbol string, opts ...Option) ([]core.Trade, error)

	FetchDepositAddress(ctx context.Context, code string, opts ...Option) (*core.DepositAddress, error)
	FetchDeposits(ctx context.Context, code string, opts ...Option) ([]core.Transaction, error)
	FetchWithdrawals(ctx context.Context, code string, opts ...Option) ([]core.Transaction, error)
	FetchTransactions(ctx context.Context, code string, opts ...Option) ([]core.Transaction, error)
	Withdraw(ctx context.Context, req *WithdrawRequest) (*core.Transaction, error)

	FetchStatus(ctx context.Context) (*core.ExchangeStatus, error)
}

// OrderRequest contains the parameters to place or replace an order.
// Amount is a base-currency quantity, except for INSTANT orders where it
// is a quote-currency amount.
type OrderRequest struct {
	Symbol        string
	Side          core.OrderSide
	Type          core.OrderType
	Amount        *apd.Decimal
	Price         *apd.Decimal
	ClientOrderID string
	PostOnly      bool
	Remark        string
}

// WithdrawRequest contains the parameters to request a withdrawal.
type WithdrawRequest struct {
	Code    string
	Amount  *apd.Decimal
	Address string
	Tag     string
	Network string
}
