package core

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/bytedance/sonic"
)

// ParamList is a request parameter mapping that remembers insertion order.
// The venue's signature pre-image serializes GET parameters in the exact
// order the caller inserted them, so a plain map cannot be used to carry
// request parameters.
type ParamList struct {
	keys   []string
	values map[string]any
}

// NewParams returns an empty ParamList.
func NewParams() *ParamList {
	return &ParamList{values: make(map[string]any)}
}

// Set inserts or replaces a parameter. A replaced key keeps its original
// position.
func (p *ParamList) Set(key string, value any) *ParamList {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
	return p
}

// Get returns the value for key and whether it is present.
func (p *ParamList) Get(key string) (any, bool) {
	v, ok := p.values[key]
	return v, ok
}

// GetString returns the value for key rendered as a string, or "" when
// absent.
func (p *ParamList) GetString(key string) string {
	v, ok := p.values[key]
	if !ok {
		return ""
	}
	return stringify(v)
}

// Delete removes a parameter if present.
func (p *ParamList) Delete(key string) {
	if _, ok := p.values[key]; !ok {
		return
	}
	delete(p.values, key)
	for i, k := range p.keys {
		if k == key {
			p.keys = append(p.keys[:i], p.keys[i+1:]...)
			return
		}
	}
}

// Len returns the number of parameters.
func (p *ParamList) Len() int {
	return len(p.keys)
}

// Keys returns the keys in insertion order.
func (p *ParamList) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Encode renders the parameters as a URL-encoded query string in insertion
// order.
func (p *ParamList) Encode() string {
	var b strings.Builder
	for i, k := range p.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(k))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(stringify(p.values[k])))
	}
	return b.String()
}

// SignatureString renders the parameters as an unencoded key=value&...
// string in insertion order. This is the form fed into the signature
// pre-image, distinct from the URL-encoded query string.
func (p *ParamList) SignatureString() string {
	var b strings.Builder
	for i, k := range p.keys {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(stringify(p.values[k]))
	}
	return b.String()
}

// MarshalJSON renders the parameters as a JSON object in insertion order.
// Values marshal through sonic, so nested objects are allowed in request
// bodies.
func (p *ParamList) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range p.keys {
		if i > 0 {
			b.WriteByte(',')
		}
		kb, err := sonic.Marshal(k)
		if err != nil {
			return nil, err
		}
		b.Write(kb)
		b.WriteByte(':')
		vb, err := sonic.Marshal(p.values[k])
		if err != nil {
			return nil, fmt.Errorf("marshal param %q: %w", k, err)
		}
		b.Write(vb)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(v)
	}
}
