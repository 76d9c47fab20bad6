package core

// APICategory classifies endpoints by authentication and host.
type APICategory int

const (
	// CategoryPublic endpoints need no credentials.
	CategoryPublic APICategory = iota
	// CategoryPrivate endpoints carry authentication headers.
	CategoryPrivate
	// CategoryStatus endpoints live on the status host and bypass both the
	// version prefix and authentication.
	CategoryStatus
)

// String returns the string representation of the category.
func (c APICategory) String() string {
	return [...]string{"public", "private", "status"}[c]
}

// Endpoint describes which API surface a route belongs to: its category
// and its version path segment (e.g. "v3").
type Endpoint struct {
	Category APICategory `json:"category"`
	Version  string      `json:"version"`
}

// SignedRequest is a fully built wire request: absolute URL, serialized
// body, and all headers including authentication when the endpoint
// requires it.
type SignedRequest struct {
	URL     string            `json:"url"`
	Method  string            `json:"method"`
	Body    []byte            `json:"body,omitempty"`
	Headers map[string]string `json:"headers"`
}
