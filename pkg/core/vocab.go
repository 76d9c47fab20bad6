package core

import "strings"

// OrderSide represents the direction of an order or trade.
type OrderSide string

// Order side constants use the unified lowercase vocabulary.
const (
	SideBuy  OrderSide = "buy"
	SideSell OrderSide = "sell"
)

// ParseOrderSide lowercases a venue side string ("BUY", "SELL") into the
// unified vocabulary. Unknown values pass through lowercased.
func ParseOrderSide(s string) OrderSide {
	return OrderSide(strings.ToLower(s))
}

// OrderType represents how an order executes. Values use the venue's
// uppercase vocabulary because they travel on the wire unchanged.
type OrderType string

// Order types accepted for order creation and modification.
const (
	// TypeLimit executes at a given price or better; requires quantity and price.
	TypeLimit OrderType = "LIMIT"
	// TypeMarket executes immediately at the best price; requires quantity.
	TypeMarket OrderType = "MARKET"
	// TypeStopMarket triggers a market order at a stop price; requires
	// quantity and a stop price.
	TypeStopMarket OrderType = "STOP_MARKET"
	// TypeInstant buys or sells a quote-currency amount instead of a
	// base-currency quantity.
	TypeInstant OrderType = "INSTANT"
)

// ParseOrderType upper-cases the input and validates it against the closed
// set of accepted types. Invalid types are rejected here, before any
// request is built.
func ParseOrderType(s string) (OrderType, error) {
	t := OrderType(strings.ToUpper(s))
	switch t {
	case TypeLimit, TypeMarket, TypeStopMarket, TypeInstant:
		return t, nil
	}
	return "", &ExchangeError{
		Type:    ErrorTypeInvalidOrder,
		Code:    string(ErrCodeInvalidOrder),
		Message: "invalid order type: " + string(t) + ". Must be one of LIMIT, MARKET, STOP_MARKET, INSTANT",
	}
}

// OrderStatus is the unified order lifecycle state. Raw venue statuses
// outside the mapping tables pass through unchanged, so the type is a
// string rather than a closed enum.
type OrderStatus string

const (
	OrderOpen     OrderStatus = "open"
	OrderClosed   OrderStatus = "closed"
	OrderCanceled OrderStatus = "canceled"
)

// TransactionType distinguishes deposits from withdrawals.
type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionWithdrawal TransactionType = "withdrawal"
)

// TransactionStatus is the unified transaction state, with the same
// passthrough behavior as OrderStatus.
type TransactionStatus string

const (
	TransactionPending  TransactionStatus = "pending"
	TransactionOK       TransactionStatus = "ok"
	TransactionFailed   TransactionStatus = "failed"
	TransactionCanceled TransactionStatus = "canceled"
)
