package foxbit

import (
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/apd/v3"
	"resty.dev/v3"

	"renard/pkg/core"
)

// Pagination caps enforced before a request is built.
const (
	maxTradesPageSize  = 200
	maxOrdersPageSize  = 100
	maxCandlesPageSize = 500
)

// route maps one logical operation onto the venue's REST surface.
type route struct {
	method   string
	path     string
	endpoint core.Endpoint
	weight   int
}

var (
	publicV3  = core.Endpoint{Category: core.CategoryPublic, Version: "v3"}
	privateV3 = core.Endpoint{Category: core.CategoryPrivate, Version: "v3"}
	statusAPI = core.Endpoint{Category: core.CategoryStatus}
)

// routes is the static table of every venue endpoint with its documented
// rate weight.
var routes = map[core.Operation]route{
	core.OpFetchCurrencies:     {http.MethodGet, "currencies", publicV3, 5},
	core.OpFetchMarkets:        {http.MethodGet, "markets", publicV3, 5},
	core.OpFetchTicker:         {http.MethodGet, "markets/{market}/ticker/24hr", publicV3, 15},
	core.OpFetchTickers:        {http.MethodGet, "markets/ticker/24hr", publicV3, 60},
	core.OpFetchOrderBook:      {http.MethodGet, "markets/{market}/orderbook", publicV3, 6},
	core.OpFetchTrades:         {http.MethodGet, "markets/{market}/trades/history", publicV3, 12},
	core.OpFetchOHLCV:          {http.MethodGet, "markets/{market}/candlesticks", publicV3, 12},
	core.OpFetchBalance:        {http.MethodGet, "accounts", privateV3, 2},
	core.OpCreateOrder:         {http.MethodPost, "orders", privateV3, 2},
	core.OpCancelOrder:         {http.MethodPut, "orders/cancel", privateV3, 2},
	core.OpEditOrder:           {http.MethodPost, "orders/cancel-replace", privateV3, 3},
	core.OpFetchOrder:          {http.MethodGet, "orders/by-order-id/{id}", privateV3, 2},
	core.OpFetchOrders:         {http.MethodGet, "orders", privateV3, 2},
	core.OpFetchMyTrades:       {http.MethodGet, "trades", privateV3, 6},
	core.OpFetchDepositAddress: {http.MethodGet, "deposits/address", privateV3, 10},
	core.OpFetchDeposits:       {http.MethodGet, "deposits", privateV3, 10},
	core.OpFetchWithdrawals:    {http.MethodGet, "withdrawals", privateV3, 10},
	core.OpWithdraw:            {http.MethodPost, "withdrawals", privateV3, 10},
	core.OpFetchStatus:         {http.MethodGet, "status", statusAPI, 30},
}

// Protocol owns the route table and the wire-level request/response rules.
type Protocol struct {
	signer *Signer
}

// NewProtocol creates a Protocol with a production signer.
func NewProtocol() *Protocol {
	return &Protocol{signer: NewSigner()}
}

// Route returns the route for op.
func (p *Protocol) Route(op core.Operation) (route, error) {
	r, ok := routes[op]
	if !ok {
		return route{}, fmt.Errorf("no route for operation %s", op)
	}
	return r, nil
}

// Weight returns the rate weight consumed by op, or 1 for unknown ops.
func (p *Protocol) Weight(op core.Operation) int {
	if r, ok := routes[op]; ok {
		return r.weight
	}
	return 1
}

// BuildRequest looks up the route for op and signs the request.
func (p *Protocol) BuildRequest(op core.Operation, params *core.ParamList, creds *core.Credentials) (*core.SignedRequest, error) {
	r, err := p.Route(op)
	if err != nil {
		return nil, err
	}
	return p.signer.Sign(r.method, r.path, r.endpoint, params, creds)
}

// errorEnvelope is the venue's error payload shape.
type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

// CheckResponse converts a non-2xx response into an ExchangeError
// classified by status code, carrying the venue's error code and message
// when the body exposes them.
func (p *Protocol) CheckResponse(exchange string, resp *resty.Response) error {
	status := resp.StatusCode()
	if status >= 200 && status < 300 {
		return nil
	}

	errorType := core.ErrorTypeServerError
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		errorType = core.ErrorTypeAuthentication
	case status == http.StatusNotFound:
		errorType = core.ErrorTypeNotFound
	case status == http.StatusTooManyRequests:
		errorType = core.ErrorTypeRateLimit
	case status >= 400 && status < 500:
		errorType = core.ErrorTypeBadRequest
	}

	message := resp.Status()
	code := ""
	var envelope errorEnvelope
	if err := sonic.Unmarshal(resp.Bytes(), &envelope); err == nil {
		switch {
		case envelope.Error.Message != "":
			message = envelope.Error.Message
			code = envelope.Error.Code
		case envelope.Message != "":
			message = envelope.Message
		}
	}

	exErr := core.NewExchangeError(exchange, errorType, status, message)
	exErr.Code = code
	return exErr
}

var decCtx = apd.BaseContext.WithPrecision(38)

// formatPrecision renders d quantized to the given number of decimal
// places, the form the venue requires for order quantities and prices.
func formatPrecision(d *apd.Decimal, places int) (string, error) {
	if d == nil {
		return "", fmt.Errorf("missing decimal value")
	}
	var q apd.Decimal
	if _, err := decCtx.Quantize(&q, d, int32(-places)); err != nil {
		return "", fmt.Errorf("quantize to %d places: %w", places, err)
	}
	return q.Text('f'), nil
}

// applyOrderShape appends the per-type parameters of an order create or
// replace request. LIMIT takes quantity and price, MARKET takes quantity,
// STOP_MARKET takes quantity and a stop price fed from the price argument,
// and INSTANT takes a quote-currency amount at price precision.
func applyOrderShape(params *core.ParamList, m core.Market, typ core.OrderType, amount, price *apd.Decimal) error {
	switch typ {
	case core.TypeLimit:
		quantity, err := formatPrecision(amount, m.AmountPrecision)
		if err != nil {
			return fmt.Errorf("order quantity: %w", err)
		}
		limitPrice, err := formatPrecision(price, m.PricePrecision)
		if err != nil {
			return fmt.Errorf("order price: %w", err)
		}
		params.Set("quantity", quantity)
		params.Set("price", limitPrice)
	case core.TypeMarket:
		quantity, err := formatPrecision(amount, m.AmountPrecision)
		if err != nil {
			return fmt.Errorf("order quantity: %w", err)
		}
		params.Set("quantity", quantity)
	case core.TypeStopMarket:
		stopPrice, err := formatPrecision(price, m.PricePrecision)
		if err != nil {
			return fmt.Errorf("stop price: %w", err)
		}
		quantity, err := formatPrecision(amount, m.AmountPrecision)
		if err != nil {
			return fmt.Errorf("order quantity: %w", err)
		}
		params.Set("stop_price", stopPrice)
		params.Set("quantity", quantity)
	case core.TypeInstant:
		instantAmount, err := formatPrecision(amount, m.PricePrecision)
		if err != nil {
			return fmt.Errorf("instant amount: %w", err)
		}
		params.Set("amount", instantAmount)
	default:
		return &core.ExchangeError{
			Type:    core.ErrorTypeInvalidOrder,
			Code:    string(core.ErrCodeInvalidOrder),
			Message: "invalid order type: " + string(typ),
		}
	}
	return nil
}

// clampPageSize caps a requested page size to the route's maximum.
func clampPageSize(limit, max int) int {
	if limit > max {
		return max
	}
	return limit
}
