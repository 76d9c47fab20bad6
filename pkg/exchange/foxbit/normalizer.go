package foxbit

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/apd/v3"

	"renard/pkg/core"
)

// flexString decodes JSON strings, numbers and null into a plain string.
// The venue is inconsistent about quoting identifiers, so every id field
// uses this type.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := sonic.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	*s = flexString(b)
	return nil
}

func (s flexString) String() string { return string(s) }

// Raw payload shapes, field names verbatim from the venue.

type rawDepositInfo struct {
	MinAmount string `json:"min_amount"`
}

type rawWithdrawInfo struct {
	Enabled   bool   `json:"enabled"`
	MinAmount string `json:"min_amount"`
	Fee       string `json:"fee"`
}

type rawCurrency struct {
	Symbol       string           `json:"symbol"`
	Name         string           `json:"name"`
	Precision    int              `json:"precision"`
	DepositInfo  *rawDepositInfo  `json:"deposit_info"`
	WithdrawInfo *rawWithdrawInfo `json:"withdraw_info"`
}

type rawAsset struct {
	Symbol    string `json:"symbol"`
	Precision int    `json:"precision"`
}

type rawMarket struct {
	Symbol      string   `json:"symbol"`
	QuantityMin string   `json:"quantity_min"`
	PriceMin    string   `json:"price_min"`
	Base        rawAsset `json:"base"`
	Quote       rawAsset `json:"quote"`
}

type rawQuote struct {
	Price  string `json:"price"`
	Volume string `json:"volume"`
}

type rawTicker struct {
	MarketSymbol string `json:"market_symbol"`
	LastTrade    *struct {
		Price  string `json:"price"`
		Volume string `json:"volume"`
		Date   string `json:"date"`
	} `json:"last_trade"`
	Rolling24h *struct {
		PriceChange        string `json:"price_change"`
		PriceChangePercent string `json:"price_change_percent"`
		Volume             string `json:"volume"`
		Open               string `json:"open"`
		High               string `json:"high"`
		Low                string `json:"low"`
	} `json:"rolling_24h"`
	Best *struct {
		Bid *rawQuote `json:"bid"`
		Ask *rawQuote `json:"ask"`
	} `json:"best"`
}

type rawOrderBook struct {
	Timestamp int64       `json:"timestamp"`
	Bids      [][2]string `json:"bids"`
	Asks      [][2]string `json:"asks"`
}

// rawTrade covers both public trades (volume, taker_side) and the
// account's own trades (quantity, side, fee).
type rawTrade struct {
	ID                flexString `json:"id"`
	OrderID           flexString `json:"order_id"`
	Price             string     `json:"price"`
	Volume            string     `json:"volume"`
	Quantity          string     `json:"quantity"`
	Side              string     `json:"side"`
	TakerSide         string     `json:"taker_side"`
	Fee               string     `json:"fee"`
	FeeCurrencySymbol string     `json:"fee_currency_symbol"`
	CreatedAt         string     `json:"created_at"`
}

type rawOrder struct {
	ID               flexString `json:"id"`
	SN               string     `json:"sn"`
	ClientOrderID    flexString `json:"client_order_id"`
	MarketSymbol     string     `json:"market_symbol"`
	Side             string     `json:"side"`
	Type             string     `json:"type"`
	State            string     `json:"state"`
	Price            string     `json:"price"`
	PriceAvg         string     `json:"price_avg"`
	Quantity         string     `json:"quantity"`
	QuantityExecuted string     `json:"quantity_executed"`
	CreatedAt        string     `json:"created_at"`
	FundsReceived    string     `json:"funds_received"`
}

type rawTransaction struct {
	SN             string `json:"sn"`
	State          string `json:"state"`
	CurrencySymbol string `json:"currency_symbol"`
	Amount         string `json:"amount"`
	Fee            string `json:"fee"`
	NetworkCode    string `json:"network_code"`
	DestinationTag string `json:"destination_tag"`
	CreatedAt      string `json:"created_at"`
	DetailsCrypto  *struct {
		TransactionID      string `json:"transaction_id"`
		ReceivingAddress   string `json:"receiving_address"`
		DestinationAddress string `json:"destination_address"`
	} `json:"details_crypto"`
}

type rawDepositAddress struct {
	CurrencySymbol string `json:"currency_symbol"`
	Address        string `json:"address"`
	DestinationTag string `json:"destination_tag"`
	Network        *struct {
		Name string `json:"name"`
		Code string `json:"code"`
	} `json:"network"`
}

type rawAccount struct {
	CurrencySymbol   string `json:"currency_symbol"`
	Balance          string `json:"balance"`
	BalanceAvailable string `json:"balance_available"`
	BalanceLocked    string `json:"balance_locked"`
}

type rawStatus struct {
	Data struct {
		Attributes struct {
			Status    string `json:"status"`
			UpdatedAt string `json:"updatedAt"`
		} `json:"attributes"`
	} `json:"data"`
}

// Response envelopes. Most list endpoints wrap their payload in "data".

type currenciesEnvelope struct {
	Data []rawCurrency `json:"data"`
}

type marketsEnvelope struct {
	Data []rawMarket `json:"data"`
}

type tickersEnvelope struct {
	Data []rawTicker `json:"data"`
}

type tradesEnvelope struct {
	Data []rawTrade `json:"data"`
}

type ordersEnvelope struct {
	Data []rawOrder `json:"data"`
}

type transactionsEnvelope struct {
	Data []rawTransaction `json:"data"`
}

type accountsEnvelope struct {
	Data []rawAccount `json:"data"`
}

type cancelReplaceEnvelope struct {
	Cancel *rawOrder `json:"cancel"`
	Create *rawOrder `json:"create"`
}

// Normalizer maps raw venue payloads into the unified records in pkg/core.
// All methods are pure; the only external context is the unified symbol of
// an already resolved market.
type Normalizer struct{}

// NewNormalizer creates a Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Currency maps one raw asset entry.
func (n *Normalizer) Currency(raw rawCurrency) core.Currency {
	c := core.Currency{
		ID:        raw.Symbol,
		Code:      currencyCode(raw.Symbol),
		Name:      raw.Name,
		Precision: raw.Precision,
		Deposit:   true,
	}
	if raw.DepositInfo != nil {
		c.MinDeposit = parseDecimal(raw.DepositInfo.MinAmount)
	}
	if raw.WithdrawInfo != nil {
		c.Withdraw = raw.WithdrawInfo.Enabled
		c.Fee = parseDecimal(raw.WithdrawInfo.Fee)
		c.MinWithdraw = parseDecimal(raw.WithdrawInfo.MinAmount)
	}
	return c
}

// Currencies maps the asset list into a code-keyed map. When two raw
// entries collapse to the same unified code the first one wins.
func (n *Normalizer) Currencies(raw []rawCurrency) map[string]core.Currency {
	result := make(map[string]core.Currency, len(raw))
	for _, rc := range raw {
		c := n.Currency(rc)
		if _, ok := result[c.Code]; ok {
			continue
		}
		result[c.Code] = c
	}
	return result
}

// Market maps one raw trading pair entry. Price and cost precision come
// from the quote asset, amount precision from the base asset.
func (n *Normalizer) Market(raw rawMarket) core.Market {
	base := currencyCode(raw.Base.Symbol)
	quote := currencyCode(raw.Quote.Symbol)
	return core.Market{
		ID:              raw.Symbol,
		Symbol:          base + "/" + quote,
		Base:            base,
		Quote:           quote,
		BaseID:          raw.Base.Symbol,
		QuoteID:         raw.Quote.Symbol,
		PricePrecision:  raw.Quote.Precision,
		AmountPrecision: raw.Base.Precision,
		CostPrecision:   raw.Quote.Precision,
		MinAmount:       parseDecimal(raw.QuantityMin),
		MinPrice:        parseDecimal(raw.PriceMin),
		FeeSide:         "quote",
	}
}

// Ticker merges the three sections of a raw ticker into one snapshot. The
// timestamp and last price come from the last trade, OHLC statistics from
// the rolling 24h window and the top of book from the best section. Close
// always equals last.
func (n *Normalizer) Ticker(raw rawTicker, symbol string) core.Ticker {
	t := core.Ticker{Symbol: symbol}
	if raw.LastTrade != nil {
		t.Timestamp, _ = parseTimestamp(raw.LastTrade.Date)
		t.Last = parseDecimal(raw.LastTrade.Price)
		t.Close = parseDecimal(raw.LastTrade.Price)
	}
	if raw.Rolling24h != nil {
		t.Open = parseDecimal(raw.Rolling24h.Open)
		t.High = parseDecimal(raw.Rolling24h.High)
		t.Low = parseDecimal(raw.Rolling24h.Low)
		t.Change = parseDecimal(raw.Rolling24h.PriceChange)
		t.Percentage = parseDecimal(raw.Rolling24h.PriceChangePercent)
		t.BaseVolume = parseDecimal(raw.Rolling24h.Volume)
	}
	if raw.Best != nil {
		if raw.Best.Bid != nil {
			t.Bid = parseDecimal(raw.Best.Bid.Price)
			t.BidVolume = parseDecimal(raw.Best.Bid.Volume)
		}
		if raw.Best.Ask != nil {
			t.Ask = parseDecimal(raw.Best.Ask.Price)
			t.AskVolume = parseDecimal(raw.Best.Ask.Volume)
		}
	}
	return t
}

// OrderBook maps a raw depth snapshot. Levels with unparsable numbers are
// dropped rather than zeroed.
func (n *Normalizer) OrderBook(raw rawOrderBook, symbol string) core.OrderBook {
	book := core.OrderBook{
		Symbol:    symbol,
		Timestamp: time.UnixMilli(raw.Timestamp).UTC(),
		Bids:      parseBookSide(raw.Bids),
		Asks:      parseBookSide(raw.Asks),
	}
	return book
}

func parseBookSide(levels [][2]string) []core.BookLevel {
	out := make([]core.BookLevel, 0, len(levels))
	for _, level := range levels {
		price := parseDecimal(level[0])
		volume := parseDecimal(level[1])
		if price == nil || volume == nil {
			continue
		}
		out = append(out, core.BookLevel{Price: *price, Volume: *volume})
	}
	return out
}

// Trade maps one execution, public or private. The account-scoped side
// field takes precedence over taker_side when both are present; the amount
// comes from volume for public trades and quantity for private ones. Cost
// is always recomputed as amount times price.
func (n *Normalizer) Trade(raw rawTrade, symbol string) core.Trade {
	side := raw.Side
	if side == "" {
		side = raw.TakerSide
	}

	amount := parseDecimal(raw.Volume)
	if amount == nil {
		amount = parseDecimal(raw.Quantity)
	}
	price := parseDecimal(raw.Price)

	t := core.Trade{
		ID:      raw.ID.String(),
		OrderID: raw.OrderID.String(),
		Symbol:  symbol,
		Side:    core.ParseOrderSide(side),
		Price:   price,
		Amount:  amount,
		Cost:    mulDecimal(amount, price),
	}
	t.Timestamp, _ = parseTimestamp(raw.CreatedAt)

	if cost := parseDecimal(raw.Fee); cost != nil {
		t.Fee = &core.Fee{
			Currency: currencyCode(raw.FeeCurrencySymbol),
			Cost:     cost,
		}
	}
	return t
}

// OrderStatus maps a venue order state into the unified vocabulary.
// Unknown states pass through unchanged.
func (n *Normalizer) OrderStatus(state string) core.OrderStatus {
	switch state {
	case "PARTIALLY_CANCELED", "ACTIVE", "PARTIALLY_FILLED":
		return core.OrderOpen
	case "FILLED":
		return core.OrderClosed
	case "CANCELED":
		return core.OrderCanceled
	default:
		return core.OrderStatus(state)
	}
}

// Order maps one raw order. The venue reports quantity as the remaining
// size and quantity_executed as the filled size; the total amount is only
// reconstructed when both are present.
func (n *Normalizer) Order(raw rawOrder, symbol string) core.Order {
	filled := parseDecimal(raw.QuantityExecuted)
	remaining := parseDecimal(raw.Quantity)

	o := core.Order{
		ID:            raw.ID.String(),
		ClientOrderID: raw.ClientOrderID.String(),
		Status:        n.OrderStatus(raw.State),
		Symbol:        symbol,
		Type:          core.OrderType(raw.Type),
		Side:          core.ParseOrderSide(raw.Side),
		Price:         parseDecimal(raw.Price),
		Average:       parseDecimal(raw.PriceAvg),
		Filled:        filled,
		Remaining:     remaining,
		Cost:          parseDecimal(raw.FundsReceived),
	}
	o.Timestamp, _ = parseTimestamp(raw.CreatedAt)

	if filled != nil && remaining != nil {
		o.Amount = addDecimal(filled, remaining)
	}
	return o
}

// TransactionStatus maps a venue transaction state into the unified
// vocabulary. Unknown states pass through unchanged.
func (n *Normalizer) TransactionStatus(state string) core.TransactionStatus {
	switch state {
	case "SUBMITTING", "SUBMITTED", "WARNING", "UNBLOCKED", "BLOCKED", "PROCESSING":
		return core.TransactionPending
	case "ACCEPTED", "DONE":
		return core.TransactionOK
	case "REJECTED", "FAILED":
		return core.TransactionFailed
	case "CANCELLED", "CANCELED":
		return core.TransactionCanceled
	default:
		return core.TransactionStatus(state)
	}
}

// Transaction maps one deposit or withdrawal. The serial number prefix
// distinguishes the two kinds, the amount is net of the fee when both are
// known, and the fee rate is the fee divided by the net amount, absent
// when the net amount is zero.
func (n *Normalizer) Transaction(raw rawTransaction) core.Transaction {
	txType := core.TransactionDeposit
	if strings.HasPrefix(raw.SN, "W") {
		txType = core.TransactionWithdrawal
	}

	gross := parseDecimal(raw.Amount)
	fee := parseDecimal(raw.Fee)
	amount := gross
	if gross != nil && fee != nil {
		amount = subDecimal(gross, fee)
	}

	t := core.Transaction{
		ID:       raw.SN,
		Type:     txType,
		Network:  raw.NetworkCode,
		Tag:      raw.DestinationTag,
		Amount:   amount,
		Currency: currencyCode(raw.CurrencySymbol),
		Status:   n.TransactionStatus(raw.State),
	}
	t.Timestamp, _ = parseTimestamp(raw.CreatedAt)

	if raw.DetailsCrypto != nil {
		t.TxID = raw.DetailsCrypto.TransactionID
		t.Address = raw.DetailsCrypto.ReceivingAddress
		if t.Address == "" {
			t.Address = raw.DetailsCrypto.DestinationAddress
		}
	}

	if fee != nil {
		t.Fee = &core.Fee{
			Currency: t.Currency,
			Cost:     fee,
			Rate:     quoDecimal(fee, amount),
		}
	}
	return t
}

// MergeTransactions concatenates two transaction lists and stable-sorts
// the result by ascending timestamp, so records sharing a timestamp keep
// their relative input order.
func (n *Normalizer) MergeTransactions(lists ...[]core.Transaction) []core.Transaction {
	var merged []core.Transaction
	for _, list := range lists {
		merged = append(merged, list...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})
	return merged
}

// DepositAddress maps a raw funding address. The network code is reported
// lowercase by the venue and uppercased in the unified record.
func (n *Normalizer) DepositAddress(raw rawDepositAddress, code string) core.DepositAddress {
	addr := core.DepositAddress{
		Address:  raw.Address,
		Tag:      raw.DestinationTag,
		Currency: code,
	}
	if raw.Network != nil {
		addr.Network = strings.ToUpper(raw.Network.Code)
	}
	return addr
}

// Balances maps the account list into a code-keyed balance map.
func (n *Normalizer) Balances(raw []rawAccount) map[string]core.Balance {
	result := make(map[string]core.Balance, len(raw))
	for _, acct := range raw {
		code := currencyCode(acct.CurrencySymbol)
		result[code] = core.Balance{
			Asset: code,
			Free:  parseDecimal(acct.BalanceAvailable),
			Used:  parseDecimal(acct.BalanceLocked),
			Total: parseDecimal(acct.Balance),
		}
	}
	return result
}

// Candle maps one candlestick row. The venue packs eleven columns; the
// unified record keeps the open timestamp, OHLC and the base volume from
// column six.
func (n *Normalizer) Candle(row []flexString) (core.Candle, error) {
	if len(row) < 7 {
		return core.Candle{}, fmt.Errorf("candlestick row has %d columns, want at least 7", len(row))
	}

	ms, err := strconv.ParseInt(row[0].String(), 10, 64)
	if err != nil {
		return core.Candle{}, fmt.Errorf("candlestick timestamp: %w", err)
	}

	c := core.Candle{Timestamp: time.UnixMilli(ms).UTC()}
	fields := []struct {
		idx int
		dst *apd.Decimal
	}{
		{1, &c.Open},
		{2, &c.High},
		{3, &c.Low},
		{4, &c.Close},
		{6, &c.Volume},
	}
	for _, f := range fields {
		d := parseDecimal(row[f.idx].String())
		if d == nil {
			return core.Candle{}, fmt.Errorf("candlestick column %d: bad decimal %q", f.idx, row[f.idx])
		}
		*f.dst = *d
	}
	return c, nil
}

// Status maps the status host payload. NORMAL and UNDER_MAINTENANCE map to
// the unified vocabulary; anything else passes through unchanged.
func (n *Normalizer) Status(raw rawStatus) core.ExchangeStatus {
	status := raw.Data.Attributes.Status
	switch status {
	case "NORMAL":
		status = "ok"
	case "UNDER_MAINTENANCE":
		status = "maintenance"
	}
	return core.ExchangeStatus{
		Status:  status,
		Updated: raw.Data.Attributes.UpdatedAt,
	}
}

// currencyCode is the unified code for a venue currency symbol.
func currencyCode(id string) string {
	return strings.ToUpper(id)
}

func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	return time.Parse(time.RFC3339, s)
}

// parseDecimal parses a venue decimal string, returning nil for absent or
// malformed values so optional fields stay absent.
func parseDecimal(s string) *apd.Decimal {
	if s == "" {
		return nil
	}
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return nil
	}
	return d
}

func mulDecimal(a, b *apd.Decimal) *apd.Decimal {
	if a == nil || b == nil {
		return nil
	}
	var out apd.Decimal
	if _, err := decCtx.Mul(&out, a, b); err != nil {
		return nil
	}
	return &out
}

func addDecimal(a, b *apd.Decimal) *apd.Decimal {
	if a == nil || b == nil {
		return nil
	}
	var out apd.Decimal
	if _, err := decCtx.Add(&out, a, b); err != nil {
		return nil
	}
	return &out
}

func subDecimal(a, b *apd.Decimal) *apd.Decimal {
	if a == nil || b == nil {
		return nil
	}
	var out apd.Decimal
	if _, err := decCtx.Sub(&out, a, b); err != nil {
		return nil
	}
	return &out
}

// quoDecimal divides a by b, returning nil when b is absent or zero.
func quoDecimal(a, b *apd.Decimal) *apd.Decimal {
	if a == nil || b == nil || b.IsZero() {
		return nil
	}
	var out apd.Decimal
	if _, err := decCtx.Quo(&out, a, b); err != nil {
		return nil
	}
	return &out
}
