package foxbit

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	httpClient "renard/internal/http"
	"renard/internal/keyring"
	"renard/internal/ratelimit"
	"renard/pkg/core"
	"renard/pkg/exchange"
)

// iso8601Millis renders timestamps the way the venue expects its
// start_time filters.
const iso8601Millis = "2006-01-02T15:04:05.000Z"

// FoxbitExchange implements the Exchange interface for Foxbit spot
// markets. It provides weighted rate limiting and API key rotation.
type FoxbitExchange struct {
	config      *core.Config
	keyRing     *keyring.KeyRing
	httpClient  *httpClient.Client
	rateLimiter *ratelimit.RateLimiter
	logger      zerolog.Logger
	normalizer  *Normalizer
	protocol    *Protocol

	marketsMu       sync.RWMutex
	marketsBySymbol map[string]core.Market
	marketsByID     map[string]core.Market
	currencies      map[string]core.Currency
}

// Option is a functional option for configuring the FoxbitExchange.
type Option func(*Options)

// Options holds configuration options for the FoxbitExchange.
type Options struct {
	KeyRing *keyring.KeyRing
	Logger  zerolog.Logger
}

// WithKeyRing returns an option that sets the API key ring for key rotation.
func WithKeyRing(kr *keyring.KeyRing) Option {
	return func(o *Options) {
		o.KeyRing = kr
	}
}

// WithLogger returns an option that sets the logger for the exchange.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// New creates a new FoxbitExchange instance with the given configuration
// and options. It initializes the HTTP client and the weighted rate
// limiter based on the config.
func New(config *core.Config, opts ...Option) (*FoxbitExchange, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	options := &Options{
		Logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(options)
	}

	client, err := httpClient.NewClient(&httpClient.Config{
		Timeout:      config.Timeout,
		MaxRetries:   config.MaxRetries,
		RetryWaitMin: config.RetryWaitMin,
		RetryWaitMax: config.RetryWaitMax,
	}, options.Logger)
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	var rl *ratelimit.RateLimiter
	if config.RateLimitWeight > 0 {
		rl = ratelimit.New(config.RateLimitWeight, config.RateLimitPeriod)
	}

	return &FoxbitExchange{
		config:      config,
		keyRing:     options.KeyRing,
		httpClient:  client,
		rateLimiter: rl,
		logger:      options.Logger,
		normalizer:  NewNormalizer(),
		protocol:    NewProtocol(),
	}, nil
}

// Name returns the exchange identifier "foxbit".
func (e *FoxbitExchange) Name() string {
	return "foxbit"
}

// Version returns the Foxbit REST API version.
func (e *FoxbitExchange) Version() string {
	return "v3"
}

// Close releases resources used by the exchange, including the HTTP client.
func (e *FoxbitExchange) Close() error {
	if e.httpClient != nil {
		return e.httpClient.Close()
	}
	return nil
}

// LoadMarkets fetches the currency and market reference data and builds
// the immutable lookup registry used to resolve symbols. It is safe to
// call repeatedly; each call replaces the registry atomically.
func (e *FoxbitExchange) LoadMarkets(ctx context.Context) error {
	currencies, err := e.FetchCurrencies(ctx)
	if err != nil {
		return fmt.Errorf("fetch currencies: %w", err)
	}

	markets, err := e.FetchMarkets(ctx)
	if err != nil {
		return fmt.Errorf("fetch markets: %w", err)
	}

	bySymbol := make(map[string]core.Market, len(markets))
	byID := make(map[string]core.Market, len(markets))
	for _, m := range markets {
		bySymbol[m.Symbol] = m
		byID[m.ID] = m
	}

	e.marketsMu.Lock()
	e.marketsBySymbol = bySymbol
	e.marketsByID = byID
	e.currencies = currencies
	e.marketsMu.Unlock()

	e.logger.Debug().
		Int("markets", len(markets)).
		Int("currencies", len(currencies)).
		Msg("markets loaded")
	return nil
}

func (e *FoxbitExchange) ensureMarkets(ctx context.Context) error {
	e.marketsMu.RLock()
	loaded := e.marketsBySymbol != nil
	e.marketsMu.RUnlock()
	if loaded {
		return nil
	}
	return e.LoadMarkets(ctx)
}

// market resolves a unified symbol against the loaded registry.
func (e *FoxbitExchange) market(symbol string) (core.Market, error) {
	e.marketsMu.RLock()
	defer e.marketsMu.RUnlock()
	if e.marketsBySymbol == nil {
		return core.Market{}, core.ErrMarketsNotLoaded
	}
	m, ok := e.marketsBySymbol[symbol]
	if !ok {
		return core.Market{}, core.NewExchangeError(e.Name(), core.ErrorTypeBadRequest, 0,
			"unknown market symbol: "+symbol).WithCode(core.ErrCodeInvalidSymbol)
	}
	return m, nil
}

// symbolByID resolves a venue market symbol, returning the unified symbol
// or "" when the registry does not know it.
func (e *FoxbitExchange) symbolByID(id string) string {
	e.marketsMu.RLock()
	defer e.marketsMu.RUnlock()
	if m, ok := e.marketsByID[id]; ok {
		return m.Symbol
	}
	return ""
}

// currency resolves a unified currency code against the loaded registry.
func (e *FoxbitExchange) currency(code string) (core.Currency, error) {
	e.marketsMu.RLock()
	defer e.marketsMu.RUnlock()
	if e.currencies == nil {
		return core.Currency{}, core.ErrMarketsNotLoaded
	}
	c, ok := e.currencies[code]
	if !ok {
		return core.Currency{}, core.NewExchangeError(e.Name(), core.ErrorTypeBadRequest, 0,
			"unknown currency code: "+code).WithCode(core.ErrCodeInvalidSymbol)
	}
	return c, nil
}

// requestSymbol is the venue's market request parameter, the concatenated
// base and quote currency symbols.
func requestSymbol(m core.Market) string {
	return m.BaseID + m.QuoteID
}

// FetchCurrencies retrieves the asset reference list keyed by unified code.
func (e *FoxbitExchange) FetchCurrencies(ctx context.Context) (map[string]core.Currency, error) {
	resp, err := e.doRequest(ctx, core.OpFetchCurrencies, nil)
	if err != nil {
		return nil, err
	}

	var envelope currenciesEnvelope
	if err := sonic.Unmarshal(resp.Bytes(), &envelope); err != nil {
		return nil, fmt.Errorf("decode currencies: %w", err)
	}
	return e.normalizer.Currencies(envelope.Data), nil
}

// FetchMarkets retrieves the trading pair reference list.
func (e *FoxbitExchange) FetchMarkets(ctx context.Context) ([]core.Market, error) {
	resp, err := e.doRequest(ctx, core.OpFetchMarkets, nil)
	if err != nil {
		return nil, err
	}

	var envelope marketsEnvelope
	if err := sonic.Unmarshal(resp.Bytes(), &envelope); err != nil {
		return nil, fmt.Errorf("decode markets: %w", err)
	}

	markets := make([]core.Market, 0, len(envelope.Data))
	for _, raw := range envelope.Data {
		markets = append(markets, e.normalizer.Market(raw))
	}
	return markets, nil
}

// FetchTicker retrieves the rolling 24h ticker for one market.
func (e *FoxbitExchange) FetchTicker(ctx context.Context, symbol string) (*core.Ticker, error) {
	if err := e.ensureMarkets(ctx); err != nil {
		return nil, err
	}
	m, err := e.market(symbol)
	if err != nil {
		return nil, err
	}

	params := core.NewParams().Set("market", requestSymbol(m))
	resp, err := e.doRequest(ctx, core.OpFetchTicker, params)
	if err != nil {
		return nil, err
	}

	var envelope tickersEnvelope
	if err := sonic.Unmarshal(resp.Bytes(), &envelope); err != nil {
		return nil, fmt.Errorf("decode ticker: %w", err)
	}
	if len(envelope.Data) == 0 {
		return nil, core.NewExchangeError(e.Name(), core.ErrorTypeNotFound, resp.StatusCode(),
			"no ticker for market "+symbol)
	}

	ticker := e.normalizer.Ticker(envelope.Data[0], m.Symbol)
	return &ticker, nil
}

// FetchTickers retrieves rolling 24h tickers for all markets, keyed by
// unified symbol. When symbols are given only those markets are returned.
func (e *FoxbitExchange) FetchTickers(ctx context.Context, symbols ...string) (map[string]core.Ticker, error) {
	if err := e.ensureMarkets(ctx); err != nil {
		return nil, err
	}

	wanted := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		wanted[s] = true
	}

	resp, err := e.doRequest(ctx, core.OpFetchTickers, nil)
	if err != nil {
		return nil, err
	}

	var envelope tickersEnvelope
	if err := sonic.Unmarshal(resp.Bytes(), &envelope); err != nil {
		return nil, fmt.Errorf("decode tickers: %w", err)
	}

	result := make(map[string]core.Ticker, len(envelope.Data))
	for _, raw := range envelope.Data {
		symbol := e.symbolByID(raw.MarketSymbol)
		if symbol == "" {
			continue
		}
		if len(wanted) > 0 && !wanted[symbol] {
			continue
		}
		result[symbol] = e.normalizer.Ticker(raw, symbol)
	}
	return result, nil
}

// FetchOrderBook retrieves a depth snapshot for one market. The depth
// defaults to 20 levels per side.
func (e *FoxbitExchange) FetchOrderBook(ctx context.Context, symbol string, opts ...exchange.Option) (*core.OrderBook, error) {
	options := exchange.ApplyOptions(opts...)
	if err := e.ensureMarkets(ctx); err != nil {
		return nil, err
	}
	m, err := e.market(symbol)
	if err != nil {
		return nil, err
	}

	depth := options.Limit
	if depth <= 0 {
		depth = 20
	}

	params := core.NewParams().
		Set("market", requestSymbol(m)).
		Set("depth", depth)

	resp, err := e.doRequest(ctx, core.OpFetchOrderBook, params)
	if err != nil {
		return nil, err
	}

	var raw rawOrderBook
	if err := sonic.Unmarshal(resp.Bytes(), &raw); err != nil {
		return nil, fmt.Errorf("decode order book: %w", err)
	}

	book := e.normalizer.OrderBook(raw, m.Symbol)
	return &book, nil
}

// FetchTrades retrieves public trade history for one market, newest first.
func (e *FoxbitExchange) FetchTrades(ctx context.Context, symbol string, opts ...exchange.Option) ([]core.Trade, error) {
	options := exchange.ApplyOptions(opts...)
	if err := e.ensureMarkets(ctx); err != nil {
		return nil, err
	}
	m, err := e.market(symbol)
	if err != nil {
		return nil, err
	}

	params := core.NewParams().Set("market", requestSymbol(m))
	if options.Limit > 0 {
		params.Set("page_size", clampPageSize(options.Limit, maxTradesPageSize))
	}

	resp, err := e.doRequest(ctx, core.OpFetchTrades, params)
	if err != nil {
		return nil, err
	}

	var envelope tradesEnvelope
	if err := sonic.Unmarshal(resp.Bytes(), &envelope); err != nil {
		return nil, fmt.Errorf("decode trades: %w", err)
	}

	trades := make([]core.Trade, 0, len(envelope.Data))
	for _, raw := range envelope.Data {
		trades = append(trades, e.normalizer.Trade(raw, m.Symbol))
	}
	return trades, nil
}

// FetchOHLCV retrieves candlestick data for one market.
func (e *FoxbitExchange) FetchOHLCV(ctx context.Context, symbol, timeframe string, opts ...exchange.Option) ([]core.Candle, error) {
	options := exchange.ApplyOptions(opts...)
	if err := e.ensureMarkets(ctx); err != nil {
		return nil, err
	}
	m, err := e.market(symbol)
	if err != nil {
		return nil, err
	}

	params := core.NewParams().
		Set("market", requestSymbol(m)).
		Set("interval", timeframe)
	if !options.Since.IsZero() {
		params.Set("start_time", options.Since.UTC().Format(iso8601Millis))
	}
	if options.Limit > 0 {
		params.Set("limit", clampPageSize(options.Limit, maxCandlesPageSize))
	}

	resp, err := e.doRequest(ctx, core.OpFetchOHLCV, params)
	if err != nil {
		return nil, err
	}

	var rows [][]flexString
	if err := sonic.Unmarshal(resp.Bytes(), &rows); err != nil {
		return nil, fmt.Errorf("decode candlesticks: %w", err)
	}

	candles := make([]core.Candle, 0, len(rows))
	for _, row := range rows {
		candle, err := e.normalizer.Candle(row)
		if err != nil {
			return nil, err
		}
		candles = append(candles, candle)
	}
	return candles, nil
}

// FetchBalance retrieves account balances keyed by unified currency code.
func (e *FoxbitExchange) FetchBalance(ctx context.Context) (map[string]core.Balance, error) {
	resp, err := e.doRequest(ctx, core.OpFetchBalance, nil)
	if err != nil {
		return nil, err
	}

	var envelope accountsEnvelope
	if err := sonic.Unmarshal(resp.Bytes(), &envelope); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	return e.normalizer.Balances(envelope.Data), nil
}

// CreateOrder submits a new order. The order type is validated before any
// request is built; LIMIT orders take quantity and price, MARKET orders
// quantity, STOP_MARKET orders quantity and a stop price fed from the
// Price field, and INSTANT orders a quote-currency amount.
func (e *FoxbitExchange) CreateOrder(ctx context.Context, req *exchange.OrderRequest) (*core.Order, error) {
	typ, err := core.ParseOrderType(string(req.Type))
	if err != nil {
		return nil, err
	}
	if err := e.ensureMarkets(ctx); err != nil {
		return nil, err
	}
	m, err := e.market(req.Symbol)
	if err != nil {
		return nil, err
	}

	params, err := e.buildOrderParams(m, typ, req)
	if err != nil {
		return nil, err
	}

	resp, err := e.doRequest(ctx, core.OpCreateOrder, params)
	if err != nil {
		return nil, err
	}

	var raw rawOrder
	if err := sonic.Unmarshal(resp.Bytes(), &raw); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}

	order := e.normalizer.Order(raw, m.Symbol)
	if order.Side == "" {
		order.Side = req.Side
	}
	if order.Type == "" {
		order.Type = typ
	}
	return &order, nil
}

func (e *FoxbitExchange) buildOrderParams(m core.Market, typ core.OrderType, req *exchange.OrderRequest) (*core.ParamList, error) {
	params := core.NewParams().
		Set("market_symbol", requestSymbol(m)).
		Set("side", strings.ToUpper(string(req.Side))).
		Set("type", string(typ))

	if err := applyOrderShape(params, m, typ, req.Amount, req.Price); err != nil {
		return nil, err
	}

	if req.ClientOrderID != "" {
		params.Set("client_order_id", req.ClientOrderID)
	}
	if req.Remark != "" {
		params.Set("remark", req.Remark)
	}
	if req.PostOnly {
		params.Set("post_only", true)
	}
	return params, nil
}

// CancelOrder cancels a single order by exchange id.
func (e *FoxbitExchange) CancelOrder(ctx context.Context, id string, opts ...exchange.Option) (*core.Order, error) {
	_ = exchange.ApplyOptions(opts...)

	params := core.NewParams().
		Set("id", id).
		Set("type", "ID")

	resp, err := e.doRequest(ctx, core.OpCancelOrder, params)
	if err != nil {
		return nil, err
	}

	var envelope ordersEnvelope
	if err := sonic.Unmarshal(resp.Bytes(), &envelope); err != nil {
		return nil, fmt.Errorf("decode cancel response: %w", err)
	}
	if len(envelope.Data) == 0 {
		return nil, core.NewExchangeError(e.Name(), core.ErrorTypeNotFound, resp.StatusCode(),
			"order not found: "+id)
	}

	order := e.normalizer.Order(envelope.Data[0], e.symbolByID(envelope.Data[0].MarketSymbol))
	return &order, nil
}

// CancelAllOrders cancels every open order, or every open order in one
// market when a symbol is given.
func (e *FoxbitExchange) CancelAllOrders(ctx context.Context, symbol string) ([]core.Order, error) {
	params := core.NewParams()
	if symbol == "" {
		params.Set("type", "ALL")
	} else {
		if err := e.ensureMarkets(ctx); err != nil {
			return nil, err
		}
		m, err := e.market(symbol)
		if err != nil {
			return nil, err
		}
		params.Set("type", "MARKET")
		params.Set("market_symbol", requestSymbol(m))
	}

	resp, err := e.doRequest(ctx, core.OpCancelOrder, params)
	if err != nil {
		return nil, err
	}

	var envelope ordersEnvelope
	if err := sonic.Unmarshal(resp.Bytes(), &envelope); err != nil {
		return nil, fmt.Errorf("decode cancel response: %w", err)
	}

	orders := make([]core.Order, 0, len(envelope.Data))
	for _, raw := range envelope.Data {
		orders = append(orders, e.normalizer.Order(raw, symbol))
	}
	return orders, nil
}

// EditOrder atomically cancels an order and creates a replacement via the
// venue's cancel-replace endpoint in ALLOW_FAILURE mode.
func (e *FoxbitExchange) EditOrder(ctx context.Context, id string, req *exchange.OrderRequest) (*core.Order, error) {
	if req.Symbol == "" {
		return nil, core.ErrSymbolRequired
	}
	typ, err := core.ParseOrderType(string(req.Type))
	if err != nil {
		return nil, err
	}
	if err := e.ensureMarkets(ctx); err != nil {
		return nil, err
	}
	m, err := e.market(req.Symbol)
	if err != nil {
		return nil, err
	}

	create := core.NewParams().
		Set("type", string(typ)).
		Set("side", strings.ToUpper(string(req.Side))).
		Set("market_symbol", requestSymbol(m))
	if err := applyOrderShape(create, m, typ, req.Amount, req.Price); err != nil {
		return nil, err
	}
	if req.ClientOrderID != "" {
		create.Set("client_order_id", req.ClientOrderID)
	}

	cancel := core.NewParams().
		Set("type", "ID").
		Set("id", id)

	params := core.NewParams().
		Set("mode", "ALLOW_FAILURE").
		Set("cancel", cancel).
		Set("create", create)

	resp, err := e.doRequest(ctx, core.OpEditOrder, params)
	if err != nil {
		return nil, err
	}

	var envelope cancelReplaceEnvelope
	if err := sonic.Unmarshal(resp.Bytes(), &envelope); err != nil {
		return nil, fmt.Errorf("decode cancel-replace response: %w", err)
	}
	if envelope.Create == nil {
		return nil, core.NewExchangeError(e.Name(), core.ErrorTypeServerError, resp.StatusCode(),
			"cancel-replace response missing create section")
	}

	order := e.normalizer.Order(*envelope.Create, m.Symbol)
	if order.Side == "" {
		order.Side = req.Side
	}
	if order.Type == "" {
		order.Type = typ
	}
	return &order, nil
}

// FetchOrder retrieves one order by exchange id.
func (e *FoxbitExchange) FetchOrder(ctx context.Context, id string) (*core.Order, error) {
	if err := e.ensureMarkets(ctx); err != nil {
		return nil, err
	}

	params := core.NewParams().Set("id", id)
	resp, err := e.doRequest(ctx, core.OpFetchOrder, params)
	if err != nil {
		return nil, err
	}

	var raw rawOrder
	if err := sonic.Unmarshal(resp.Bytes(), &raw); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}

	order := e.normalizer.Order(raw, e.symbolByID(raw.MarketSymbol))
	return &order, nil
}

// FetchOrders retrieves orders, optionally filtered by market, start time
// and venue state via options.
func (e *FoxbitExchange) FetchOrders(ctx context.Context, symbol string, opts ...exchange.Option) ([]core.Order, error) {
	options := exchange.ApplyOptions(opts...)
	return e.fetchOrdersByState(ctx, symbol, options.State, options)
}

// FetchOpenOrders retrieves all unfilled open orders.
func (e *FoxbitExchange) FetchOpenOrders(ctx context.Context, symbol string, opts ...exchange.Option) ([]core.Order, error) {
	options := exchange.ApplyOptions(opts...)
	return e.fetchOrdersByState(ctx, symbol, "ACTIVE", options)
}

// FetchClosedOrders retrieves all fully filled orders.
func (e *FoxbitExchange) FetchClosedOrders(ctx context.Context, symbol string, opts ...exchange.Option) ([]core.Order, error) {
	options := exchange.ApplyOptions(opts...)
	return e.fetchOrdersByState(ctx, symbol, "FILLED", options)
}

func (e *FoxbitExchange) fetchOrdersByState(ctx context.Context, symbol, state string, options *exchange.Options) ([]core.Order, error) {
	if err := e.ensureMarkets(ctx); err != nil {
		return nil, err
	}

	params := core.NewParams()
	if state != "" {
		params.Set("state", state)
	}

	resolvedSymbol := ""
	if symbol != "" {
		m, err := e.market(symbol)
		if err != nil {
			return nil, err
		}
		resolvedSymbol = m.Symbol
		params.Set("market_symbol", requestSymbol(m))
	}
	if !options.Since.IsZero() {
		params.Set("start_time", options.Since.UTC().Format(iso8601Millis))
	}
	if options.Limit > 0 {
		params.Set("page_size", clampPageSize(options.Limit, maxOrdersPageSize))
	}

	resp, err := e.doRequest(ctx, core.OpFetchOrders, params)
	if err != nil {
		return nil, err
	}

	var envelope ordersEnvelope
	if err := sonic.Unmarshal(resp.Bytes(), &envelope); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	orders := make([]core.Order, 0, len(envelope.Data))
	for _, raw := range envelope.Data {
		sym := resolvedSymbol
		if sym == "" {
			sym = e.symbolByID(raw.MarketSymbol)
		}
		orders = append(orders, e.normalizer.Order(raw, sym))
	}
	return orders, nil
}

// FetchMyTrades retrieves the account's own trades for one market. The
// venue scopes this endpoint per market, so the symbol is required.
func (e *FoxbitExchange) FetchMyTrades(ctx context.Context, symbol string, opts ...exchange.Option) ([]core.Trade, error) {
	if symbol == "" {
		return nil, core.ErrSymbolRequired
	}
	options := exchange.ApplyOptions(opts...)
	if err := e.ensureMarkets(ctx); err != nil {
		return nil, err
	}
	m, err := e.market(symbol)
	if err != nil {
		return nil, err
	}

	params := core.NewParams().Set("market_symbol", requestSymbol(m))
	if !options.Since.IsZero() {
		params.Set("start_time", options.Since.UTC().Format(iso8601Millis))
	}
	if options.Limit > 0 {
		params.Set("page_size", clampPageSize(options.Limit, maxOrdersPageSize))
	}
	if options.OrderID != "" {
		params.Set("order_id", options.OrderID)
	}

	resp, err := e.doRequest(ctx, core.OpFetchMyTrades, params)
	if err != nil {
		return nil, err
	}

	var envelope tradesEnvelope
	if err := sonic.Unmarshal(resp.Bytes(), &envelope); err != nil {
		return nil, fmt.Errorf("decode trades: %w", err)
	}

	trades := make([]core.Trade, 0, len(envelope.Data))
	for _, raw := range envelope.Data {
		trades = append(trades, e.normalizer.Trade(raw, m.Symbol))
	}
	return trades, nil
}

// FetchDepositAddress retrieves the funding address for a currency. When a
// network is requested via options the response network must match it.
func (e *FoxbitExchange) FetchDepositAddress(ctx context.Context, code string, opts ...exchange.Option) (*core.DepositAddress, error) {
	options := exchange.ApplyOptions(opts...)
	if err := e.ensureMarkets(ctx); err != nil {
		return nil, err
	}
	cur, err := e.currency(code)
	if err != nil {
		return nil, err
	}

	params := core.NewParams().Set("currency_symbol", cur.ID)
	if options.Network != "" {
		params.Set("network_code", options.Network)
	}

	resp, err := e.doRequest(ctx, core.OpFetchDepositAddress, params)
	if err != nil {
		return nil, err
	}

	var raw rawDepositAddress
	if err := sonic.Unmarshal(resp.Bytes(), &raw); err != nil {
		return nil, fmt.Errorf("decode deposit address: %w", err)
	}

	addr := e.normalizer.DepositAddress(raw, cur.Code)
	if options.Network != "" && !strings.EqualFold(addr.Network, options.Network) {
		return nil, core.ErrNetworkMismatch
	}
	return &addr, nil
}

// FetchDeposits retrieves deposit history, filtered client-side by
// currency code when one is given.
func (e *FoxbitExchange) FetchDeposits(ctx context.Context, code string, opts ...exchange.Option) ([]core.Transaction, error) {
	return e.fetchTransactionList(ctx, core.OpFetchDeposits, code, opts...)
}

// FetchWithdrawals retrieves withdrawal history, filtered client-side by
// currency code when one is given.
func (e *FoxbitExchange) FetchWithdrawals(ctx context.Context, code string, opts ...exchange.Option) ([]core.Transaction, error) {
	return e.fetchTransactionList(ctx, core.OpFetchWithdrawals, code, opts...)
}

func (e *FoxbitExchange) fetchTransactionList(ctx context.Context, op core.Operation, code string, opts ...exchange.Option) ([]core.Transaction, error) {
	options := exchange.ApplyOptions(opts...)

	params := core.NewParams()
	if options.Limit > 0 {
		params.Set("page_size", clampPageSize(options.Limit, maxOrdersPageSize))
	}
	if !options.Since.IsZero() {
		params.Set("start_time", options.Since.UTC().Format(iso8601Millis))
	}

	resp, err := e.doRequest(ctx, op, params)
	if err != nil {
		return nil, err
	}

	var envelope transactionsEnvelope
	if err := sonic.Unmarshal(resp.Bytes(), &envelope); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}

	transactions := make([]core.Transaction, 0, len(envelope.Data))
	for _, raw := range envelope.Data {
		tx := e.normalizer.Transaction(raw)
		if code != "" && tx.Currency != code {
			continue
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

// FetchTransactions retrieves withdrawals and deposits and merges them
// into one list, stable-sorted by ascending timestamp.
func (e *FoxbitExchange) FetchTransactions(ctx context.Context, code string, opts ...exchange.Option) ([]core.Transaction, error) {
	withdrawals, err := e.FetchWithdrawals(ctx, code, opts...)
	if err != nil {
		return nil, err
	}
	deposits, err := e.FetchDeposits(ctx, code, opts...)
	if err != nil {
		return nil, err
	}
	return e.normalizer.MergeTransactions(withdrawals, deposits), nil
}

// Withdraw requests a withdrawal to an external address.
func (e *FoxbitExchange) Withdraw(ctx context.Context, req *exchange.WithdrawRequest) (*core.Transaction, error) {
	if req.Amount == nil {
		return nil, core.NewExchangeError(e.Name(), core.ErrorTypeBadRequest, 0,
			"withdraw amount is required").WithCode(core.ErrCodeBadRequest)
	}
	if err := e.ensureMarkets(ctx); err != nil {
		return nil, err
	}
	cur, err := e.currency(req.Code)
	if err != nil {
		return nil, err
	}

	params := core.NewParams().
		Set("currency_symbol", cur.ID).
		Set("amount", req.Amount.Text('f')).
		Set("destination_address", req.Address)
	if req.Tag != "" {
		params.Set("destination_tag", req.Tag)
	}
	if req.Network != "" {
		params.Set("network_code", req.Network)
	}

	resp, err := e.doRequest(ctx, core.OpWithdraw, params)
	if err != nil {
		return nil, err
	}

	var raw rawTransaction
	if err := sonic.Unmarshal(resp.Bytes(), &raw); err != nil {
		return nil, fmt.Errorf("decode withdrawal: %w", err)
	}

	tx := e.normalizer.Transaction(raw)
	tx.Type = core.TransactionWithdrawal
	return &tx, nil
}

// FetchStatus queries service health on the status host.
func (e *FoxbitExchange) FetchStatus(ctx context.Context) (*core.ExchangeStatus, error) {
	resp, err := e.doRequest(ctx, core.OpFetchStatus, nil)
	if err != nil {
		return nil, err
	}

	var raw rawStatus
	if err := sonic.Unmarshal(resp.Bytes(), &raw); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}

	status := e.normalizer.Status(raw)
	return &status, nil
}

// doRequest consumes the route's rate weight, signs the request with the
// active credentials when the endpoint is private, executes it and maps
// non-2xx responses to ExchangeError.
func (e *FoxbitExchange) doRequest(ctx context.Context, op core.Operation, params *core.ParamList) (*resty.Response, error) {
	r, err := e.protocol.Route(op)
	if err != nil {
		return nil, err
	}

	if e.rateLimiter != nil {
		if err := e.rateLimiter.WaitWeight(ctx, r.weight); err != nil {
			return nil, fmt.Errorf("rate limit: %w", err)
		}
	}

	var creds *core.Credentials
	if r.endpoint.Category == core.CategoryPrivate {
		creds, err = e.credentials()
		if err != nil {
			return nil, err
		}
	}

	signed, err := e.protocol.BuildRequest(op, params, creds)
	if err != nil {
		return nil, fmt.Errorf("sign request: %w", err)
	}

	start := time.Now()
	resp, err := e.httpClient.Do(ctx, signed)
	if err != nil {
		if e.keyRing != nil && r.endpoint.Category == core.CategoryPrivate {
			e.keyRing.OnError(err)
		}
		return nil, err
	}

	e.logger.Debug().
		Str("operation", op.String()).
		Int("status", resp.StatusCode()).
		Dur("elapsed", time.Since(start)).
		Msg("request complete")

	if err := e.protocol.CheckResponse(e.Name(), resp); err != nil {
		if e.keyRing != nil && r.endpoint.Category == core.CategoryPrivate {
			e.keyRing.OnError(err)
		}
		return nil, err
	}
	return resp, nil
}

// credentials selects the signing key pair, preferring the key ring when
// one is configured.
func (e *FoxbitExchange) credentials() (*core.Credentials, error) {
	if e.keyRing != nil {
		key := e.keyRing.Current()
		if key == nil {
			return nil, core.NewExchangeError(e.Name(), core.ErrorTypeAuthentication, 401,
				"no available API key").WithCode(core.ErrCodeNoAPIKey)
		}
		e.keyRing.MarkUsed()
		return &core.Credentials{APIKey: key.Key, SecretKey: key.Secret}, nil
	}
	if e.config.Credentials == nil {
		return nil, core.NewExchangeError(e.Name(), core.ErrorTypeAuthentication, 401,
			"no credentials configured").WithCode(core.ErrCodeNoCredentials)
	}
	return e.config.Credentials, nil
}

// Register creates a FoxbitExchange and registers it with the container.
// This is a convenience function for dependency injection setup.
func Register(container *exchange.Container, config *core.Config, opts ...Option) error {
	ex, err := New(config, opts...)
	if err != nil {
		return fmt.Errorf("create foxbit exchange: %w", err)
	}
	container.Register("foxbit", ex)
	return nil
}
