package foxbit

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"renard/pkg/core"
)

var testCreds = &core.Credentials{
	APIKey:    "test-api-key",
	SecretKey: "test-secret-key",
}

func fixedSigner(ms int64) *Signer {
	s := NewSigner()
	s.now = func() time.Time { return time.UnixMilli(ms) }
	return s
}

func hmacHex(secret, preImage string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(preImage))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestSignPrivateGet(t *testing.T) {
	s := fixedSigner(1713187921336)

	params := core.NewParams().
		Set("market_symbol", "btcbrl").
		Set("state", "ACTIVE")

	req, err := s.Sign(http.MethodGet, "orders", privateV3, params, testCreds)
	require.NoError(t, err)

	assert.Equal(t, "https://api.foxbit.com.br/rest/v3/orders?market_symbol=btcbrl&state=ACTIVE", req.URL)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Nil(t, req.Body)

	preImage := "1713187921336" + "GET" + "/rest/v3/orders" + "market_symbol=btcbrl&state=ACTIVE"
	assert.Equal(t, hmacHex(testCreds.SecretKey, preImage), req.Headers["X-FB-ACCESS-SIGNATURE"])
	assert.Equal(t, testCreds.APIKey, req.Headers["X-FB-ACCESS-KEY"])
	assert.Equal(t, "1713187921336", req.Headers["X-FB-ACCESS-TIMESTAMP"])
	assert.Equal(t, "application/json", req.Headers["Content-Type"])
}

func TestSignDeterministic(t *testing.T) {
	buildParams := func() *core.ParamList {
		return core.NewParams().Set("page_size", 100).Set("state", "ACTIVE")
	}

	s := fixedSigner(1700000000000)
	first, err := s.Sign(http.MethodGet, "orders", privateV3, buildParams(), testCreds)
	require.NoError(t, err)
	second, err := s.Sign(http.MethodGet, "orders", privateV3, buildParams(), testCreds)
	require.NoError(t, err)

	assert.Equal(t, first.Headers["X-FB-ACCESS-SIGNATURE"], second.Headers["X-FB-ACCESS-SIGNATURE"])
	assert.Equal(t, first.URL, second.URL)
}

func TestSignInsertionOrderChangesSignature(t *testing.T) {
	s := fixedSigner(1700000000000)

	ab := core.NewParams().Set("a", "1").Set("b", "2")
	ba := core.NewParams().Set("b", "2").Set("a", "1")

	first, err := s.Sign(http.MethodGet, "orders", privateV3, ab, testCreds)
	require.NoError(t, err)
	second, err := s.Sign(http.MethodGet, "orders", privateV3, ba, testCreds)
	require.NoError(t, err)

	assert.NotEqual(t, first.Headers["X-FB-ACCESS-SIGNATURE"], second.Headers["X-FB-ACCESS-SIGNATURE"])
	assert.Equal(t, "https://api.foxbit.com.br/rest/v3/orders?a=1&b=2", first.URL)
	assert.Equal(t, "https://api.foxbit.com.br/rest/v3/orders?b=2&a=1", second.URL)
}

func TestSignQueryIsEncodedButPreImageIsNot(t *testing.T) {
	s := fixedSigner(1700000000000)

	params := core.NewParams().Set("start_time", "2024-01-01T00:00:00.000Z")
	req, err := s.Sign(http.MethodGet, "deposits", privateV3, params, testCreds)
	require.NoError(t, err)

	// The URL carries the escaped form while the signature covers the raw
	// key=value serialization.
	assert.Contains(t, req.URL, "start_time=2024-01-01T00%3A00%3A00.000Z")
	preImage := "1700000000000" + "GET" + "/rest/v3/deposits" + "start_time=2024-01-01T00:00:00.000Z"
	assert.Equal(t, hmacHex(testCreds.SecretKey, preImage), req.Headers["X-FB-ACCESS-SIGNATURE"])
}

func TestSignPathPlaceholders(t *testing.T) {
	s := fixedSigner(1700000000000)

	params := core.NewParams().
		Set("market", "btcbrl").
		Set("page_size", 50)

	req, err := s.Sign(http.MethodGet, "markets/{market}/trades/history", publicV3, params, nil)
	require.NoError(t, err)

	// The placeholder value moves into the path and out of the query.
	assert.Equal(t, "https://api.foxbit.com.br/rest/v3/markets/btcbrl/trades/history?page_size=50", req.URL)
}

func TestSignMissingPathPlaceholder(t *testing.T) {
	s := fixedSigner(1700000000000)

	_, err := s.Sign(http.MethodGet, "orders/by-order-id/{id}", privateV3, core.NewParams(), testCreds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "id")
}

func TestSignPrivatePostBody(t *testing.T) {
	s := fixedSigner(1713187921336)

	params := core.NewParams().
		Set("market_symbol", "btcbrl").
		Set("side", "BUY").
		Set("type", "LIMIT").
		Set("quantity", "0.42").
		Set("price", "290000.0")

	req, err := s.Sign(http.MethodPost, "orders", privateV3, params, testCreds)
	require.NoError(t, err)

	expectedBody := `{"market_symbol":"btcbrl","side":"BUY","type":"LIMIT","quantity":"0.42","price":"290000.0"}`
	assert.Equal(t, expectedBody, string(req.Body))
	assert.Equal(t, "https://api.foxbit.com.br/rest/v3/orders", req.URL)

	preImage := "1713187921336" + "POST" + "/rest/v3/orders" + expectedBody
	assert.Equal(t, hmacHex(testCreds.SecretKey, preImage), req.Headers["X-FB-ACCESS-SIGNATURE"])
}

func TestSignPublicHasNoAuthHeaders(t *testing.T) {
	s := fixedSigner(1700000000000)

	req, err := s.Sign(http.MethodGet, "currencies", publicV3, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://api.foxbit.com.br/rest/v3/currencies", req.URL)
	assert.Equal(t, map[string]string{"Content-Type": "application/json"}, req.Headers)
}

func TestSignStatusHost(t *testing.T) {
	s := fixedSigner(1700000000000)

	req, err := s.Sign(http.MethodGet, "status", statusAPI, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, "https://metadata-v2.foxbit.com.br/api/status", req.URL)
	assert.NotContains(t, req.Headers, "X-FB-ACCESS-KEY")
}

func TestSignPrivateWithoutCredentials(t *testing.T) {
	s := fixedSigner(1700000000000)

	_, err := s.Sign(http.MethodGet, "accounts", privateV3, nil, nil)
	assert.ErrorIs(t, err, core.ErrNoCredentials)

	_, err = s.Sign(http.MethodGet, "accounts", privateV3, nil, &core.Credentials{APIKey: "k"})
	assert.ErrorIs(t, err, core.ErrNoCredentials)
}
