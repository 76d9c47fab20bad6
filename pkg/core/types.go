package core

import (
	"time"

	"github.com/cockroachdb/apd/v3"
)

// Currency is the venue-neutral description of a tradable asset.
// Instances are immutable once built and keyed by unified Code.
type Currency struct {
	// ID is the venue's own symbol for the asset (e.g. "btc").
	ID string `json:"id"`
	// Code is the unified currency code (e.g. "BTC").
	Code string `json:"code"`
	// Name is the display name reported by the venue.
	Name string `json:"name"`
	// Precision is the number of decimal places the venue tracks.
	Precision int `json:"precision"`
	// Deposit reports whether deposits are accepted.
	Deposit bool `json:"deposit"`
	// Withdraw reports whether withdrawals are enabled.
	Withdraw bool `json:"withdraw"`
	// Fee is the flat withdrawal fee, when published.
	Fee *apd.Decimal `json:"fee,omitempty"`
	// MinDeposit is the minimum deposit amount, when published.
	MinDeposit *apd.Decimal `json:"min_deposit,omitempty"`
	// MinWithdraw is the minimum withdrawal amount, when published.
	MinWithdraw *apd.Decimal `json:"min_withdraw,omitempty"`
}

// Market is immutable reference data for one trading pair, loaded once per
// session.
type Market struct {
	// ID is the venue's market symbol (e.g. "btcbrl").
	ID string `json:"id"`
	// Symbol is the unified "BASE/QUOTE" pair.
	Symbol string `json:"symbol"`
	// Base and Quote are unified currency codes.
	Base  string `json:"base"`
	Quote string `json:"quote"`
	// BaseID and QuoteID are the venue's currency symbols.
	BaseID  string `json:"base_id"`
	QuoteID string `json:"quote_id"`
	// PricePrecision, AmountPrecision and CostPrecision are decimal places.
	PricePrecision  int `json:"price_precision"`
	AmountPrecision int `json:"amount_precision"`
	CostPrecision   int `json:"cost_precision"`
	// MinAmount and MinPrice are the venue's order minimums.
	MinAmount *apd.Decimal `json:"min_amount,omitempty"`
	MinPrice  *apd.Decimal `json:"min_price,omitempty"`
	// FeeSide names the currency side fees are charged on.
	FeeSide string `json:"fee_side"`
}

// Ticker is a derived market snapshot; it is never persisted.
type Ticker struct {
	Symbol     string       `json:"symbol"`
	Timestamp  time.Time    `json:"timestamp"`
	Bid        *apd.Decimal `json:"bid,omitempty"`
	BidVolume  *apd.Decimal `json:"bid_volume,omitempty"`
	Ask        *apd.Decimal `json:"ask,omitempty"`
	AskVolume  *apd.Decimal `json:"ask_volume,omitempty"`
	High       *apd.Decimal `json:"high,omitempty"`
	Low        *apd.Decimal `json:"low,omitempty"`
	Open       *apd.Decimal `json:"open,omitempty"`
	Close      *apd.Decimal `json:"close,omitempty"`
	Last       *apd.Decimal `json:"last,omitempty"`
	Change     *apd.Decimal `json:"change,omitempty"`
	Percentage *apd.Decimal `json:"percentage,omitempty"`
	BaseVolume *apd.Decimal `json:"base_volume,omitempty"`
}

// BookLevel is a single (price, volume) entry in an order book.
type BookLevel struct {
	Price  apd.Decimal `json:"price"`
	Volume apd.Decimal `json:"volume"`
}

// OrderBook is a depth snapshot. Bids are ordered descending and asks
// ascending by convention of the source feed.
type OrderBook struct {
	Symbol    string      `json:"symbol"`
	Timestamp time.Time   `json:"timestamp"`
	Bids      []BookLevel `json:"bids"`
	Asks      []BookLevel `json:"asks"`
}

// Fee describes a fee attached to a trade or transaction.
type Fee struct {
	// Currency is the unified code the fee is charged in.
	Currency string `json:"currency,omitempty"`
	// Cost is the absolute fee amount.
	Cost *apd.Decimal `json:"cost,omitempty"`
	// Rate is Cost divided by the net amount, when derivable.
	Rate *apd.Decimal `json:"rate,omitempty"`
}

// Trade is a single execution, public or private.
type Trade struct {
	ID        string       `json:"id"`
	OrderID   string       `json:"order_id,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
	Symbol    string       `json:"symbol"`
	Side      OrderSide    `json:"side"`
	Price     *apd.Decimal `json:"price,omitempty"`
	Amount    *apd.Decimal `json:"amount,omitempty"`
	// Cost is always recomputed as Amount times Price.
	Cost *apd.Decimal `json:"cost,omitempty"`
	Fee  *Fee         `json:"fee,omitempty"`
}

// Order is the unified order record.
type Order struct {
	ID            string       `json:"id"`
	ClientOrderID string       `json:"client_order_id,omitempty"`
	Timestamp     time.Time    `json:"timestamp"`
	Status        OrderStatus  `json:"status"`
	Symbol        string       `json:"symbol"`
	Type          OrderType    `json:"type"`
	Side          OrderSide    `json:"side"`
	Price         *apd.Decimal `json:"price,omitempty"`
	// Average is the average fill price.
	Average *apd.Decimal `json:"average,omitempty"`
	// Amount is Filled + Remaining, present only when both are known.
	Amount    *apd.Decimal `json:"amount,omitempty"`
	Filled    *apd.Decimal `json:"filled,omitempty"`
	Remaining *apd.Decimal `json:"remaining,omitempty"`
	Cost      *apd.Decimal `json:"cost,omitempty"`
}

// Transaction is a deposit or withdrawal record.
type Transaction struct {
	// ID is the venue serial number ("sn").
	ID string `json:"id"`
	// TxID is the on-chain transaction hash, when present.
	TxID      string          `json:"txid,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Type      TransactionType `json:"type"`
	Network   string          `json:"network,omitempty"`
	Address   string          `json:"address,omitempty"`
	Tag       string          `json:"tag,omitempty"`
	// Amount is net of the fee when both gross amount and fee are known.
	Amount   *apd.Decimal      `json:"amount,omitempty"`
	Currency string            `json:"currency"`
	Status   TransactionStatus `json:"status"`
	Fee      *Fee              `json:"fee,omitempty"`
}

// DepositAddress is the funding address for a currency on one network.
type DepositAddress struct {
	Address  string `json:"address"`
	Tag      string `json:"tag,omitempty"`
	Currency string `json:"currency"`
	Network  string `json:"network,omitempty"`
}

// Balance holds the funds of a single asset.
type Balance struct {
	Asset string       `json:"asset"`
	Free  *apd.Decimal `json:"free,omitempty"`
	Used  *apd.Decimal `json:"used,omitempty"`
	Total *apd.Decimal `json:"total,omitempty"`
}

// Candle is one OHLCV bar. Volume is base-currency volume.
type Candle struct {
	Timestamp time.Time   `json:"timestamp"`
	Open      apd.Decimal `json:"open"`
	High      apd.Decimal `json:"high"`
	Low       apd.Decimal `json:"low"`
	Close     apd.Decimal `json:"close"`
	Volume    apd.Decimal `json:"volume"`
}

// ExchangeStatus reports the venue's service health.
type ExchangeStatus struct {
	// Status is "ok", "maintenance", or the raw venue value passed through.
	Status string `json:"status"`
	// Updated is the venue's last-updated timestamp, verbatim.
	Updated string `json:"updated,omitempty"`
}
