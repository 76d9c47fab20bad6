package core

// Operation represents a logical exchange operation.
type Operation int

// Operation constants cover the full surface of the venue integration.
const (
	// OpFetchCurrencies retrieves the asset reference list.
	OpFetchCurrencies Operation = iota
	// OpFetchMarkets retrieves the trading pair reference list.
	OpFetchMarkets
	// OpFetchTicker retrieves the 24h ticker for one market.
	OpFetchTicker
	// OpFetchTickers retrieves 24h tickers for all markets.
	OpFetchTickers
	// OpFetchOrderBook retrieves a depth snapshot.
	OpFetchOrderBook
	// OpFetchTrades retrieves public trade history for a market.
	OpFetchTrades
	// OpFetchOHLCV retrieves candlestick data.
	OpFetchOHLCV
	// OpFetchBalance retrieves account balances.
	OpFetchBalance
	// OpCreateOrder submits a new order.
	OpCreateOrder
	// OpCancelOrder cancels one order, or all orders when typed ALL/MARKET.
	OpCancelOrder
	// OpEditOrder atomically cancels one order and creates a replacement.
	OpEditOrder
	// OpFetchOrder retrieves one order by exchange id.
	OpFetchOrder
	// OpFetchOrders retrieves orders, optionally filtered by state.
	OpFetchOrders
	// OpFetchMyTrades retrieves the account's own trades.
	OpFetchMyTrades
	// OpFetchDepositAddress retrieves a funding address.
	OpFetchDepositAddress
	// OpFetchDeposits retrieves deposit history.
	OpFetchDeposits
	// OpFetchWithdrawals retrieves withdrawal history.
	OpFetchWithdrawals
	// OpWithdraw requests a withdrawal.
	OpWithdraw
	// OpFetchStatus queries service health on the status host.
	OpFetchStatus
)

// String returns the string representation of the operation.
func (o Operation) String() string {
	return [...]string{
		"FETCH_CURRENCIES",
		"FETCH_MARKETS",
		"FETCH_TICKER",
		"FETCH_TICKERS",
		"FETCH_ORDER_BOOK",
		"FETCH_TRADES",
		"FETCH_OHLCV",
		"FETCH_BALANCE",
		"CREATE_ORDER",
		"CANCEL_ORDER",
		"EDIT_ORDER",
		"FETCH_ORDER",
		"FETCH_ORDERS",
		"FETCH_MY_TRADES",
		"FETCH_DEPOSIT_ADDRESS",
		"FETCH_DEPOSITS",
		"FETCH_WITHDRAWALS",
		"WITHDRAW",
		"FETCH_STATUS",
	}[o]
}
