package foxbit

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"renard/pkg/core"
)

const (
	apiURL    = "https://api.foxbit.com.br"
	statusURL = "https://metadata-v2.foxbit.com.br/api"
)

// Signer builds fully signed wire requests. It is stateless apart from the
// clock, which is injectable so signatures can be reproduced in tests.
type Signer struct {
	apiURL    string
	statusURL string
	now       func() time.Time
}

// NewSigner returns a Signer pointed at the production hosts.
func NewSigner() *Signer {
	return &Signer{
		apiURL:    apiURL,
		statusURL: statusURL,
		now:       time.Now,
	}
}

// Sign builds the request for one route. Path placeholders of the form
// {name} consume the matching parameter before the query or body is built.
// Private endpoints are signed over the pre-image
//
//	timestamp + METHOD + fullPath + signatureQuery + body
//
// where signatureQuery is the unencoded insertion-ordered key=value list
// for GET requests, and body is the ordered JSON object for POST and PUT.
// Public and status endpoints carry no authentication headers.
func (s *Signer) Sign(method, path string, ep core.Endpoint, params *core.ParamList, creds *core.Credentials) (*core.SignedRequest, error) {
	if params == nil {
		params = core.NewParams()
	}

	interpolated, err := interpolatePath(path, params)
	if err != nil {
		return nil, err
	}

	fullPath := "/rest/" + ep.Version + "/" + interpolated
	host := s.apiURL
	if ep.Category == core.CategoryStatus {
		fullPath = "/status"
		host = s.statusURL
	}
	url := host + fullPath

	timestamp := strconv.FormatInt(s.now().UnixMilli(), 10)

	var body []byte
	signatureQuery := ""
	switch method {
	case http.MethodGet:
		if params.Len() > 0 {
			url += "?" + params.Encode()
			signatureQuery = params.SignatureString()
		}
	case http.MethodPost, http.MethodPut:
		body, err = params.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported method: %s", method)
	}

	headers := map[string]string{
		"Content-Type": "application/json",
	}

	if ep.Category == core.CategoryPrivate {
		if creds == nil || creds.APIKey == "" || creds.SecretKey == "" {
			return nil, core.ErrNoCredentials
		}
		preImage := timestamp + method + fullPath + signatureQuery + string(body)
		mac := hmac.New(sha256.New, []byte(creds.SecretKey))
		mac.Write([]byte(preImage))
		headers["X-FB-ACCESS-KEY"] = creds.APIKey
		headers["X-FB-ACCESS-TIMESTAMP"] = timestamp
		headers["X-FB-ACCESS-SIGNATURE"] = hex.EncodeToString(mac.Sum(nil))
	}

	return &core.SignedRequest{
		URL:     url,
		Method:  method,
		Body:    body,
		Headers: headers,
	}, nil
}

// interpolatePath substitutes {name} tokens from params and removes the
// consumed keys so they do not reappear in the query or body.
func interpolatePath(path string, params *core.ParamList) (string, error) {
	if !strings.Contains(path, "{") {
		return path, nil
	}

	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, "{") || !strings.HasSuffix(seg, "}") {
			continue
		}
		name := seg[1 : len(seg)-1]
		value := params.GetString(name)
		if value == "" {
			return "", fmt.Errorf("missing path parameter %q", name)
		}
		segments[i] = value
		params.Delete(name)
	}
	return strings.Join(segments, "/"), nil
}
