package exchange

import "time"

// Option is a functional option applied to a single call.
type Option func(*Options)

// Options carries per-call filters and pagination hints.
type Options struct {
	// Limit caps the number of records returned; each operation clamps it
	// to the venue's page-size maximum.
	Limit int
	// Since filters records at or after this time. Serialized as ISO-8601.
	Since time.Time
	// State filters orders by venue state (e.g. "ACTIVE", "FILLED").
	State string
	// OrderID filters own trades by parent order.
	OrderID string
	// Network selects the blockchain network for deposit addresses.
	Network string
}

// WithLimit caps the number of records returned.
func WithLimit(limit int) Option {
	return func(o *Options) {
		o.Limit = limit
	}
}

// WithSince filters records at or after the given time.
func WithSince(since time.Time) Option {
	return func(o *Options) {
		o.Since = since
	}
}

// WithState filters orders by venue state.
func WithState(state string) Option {
	return func(o *Options) {
		o.State = state
	}
}

// WithOrderID filters own trades by parent order id.
func WithOrderID(id string) Option {
	return func(o *Options) {
		o.OrderID = id
	}
}

// WithNetwork selects the blockchain network for a deposit address.
func WithNetwork(network string) Option {
	return func(o *Options) {
		o.Network = network
	}
}

// ApplyOptions folds the given options into an Options value.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
