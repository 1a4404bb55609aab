// Package transport executes HTTP requests whose sockets are constrained to
// the bound network interface. Two concrete strategies exist: Bound builds a
// fresh connection per call through the bound dialer, Pooled fronts a shared
// http.Client with a cookie-injection hook. Fallback composes them, retrying
// transport-level failures of the primary on the secondary.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"
)

// Request describes a single HTTP exchange to perform.
type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte

	// DisableRedirects makes a 3xx the final response instead of following
	// it. The login flow needs this to observe a 302's Set-Cookie.
	DisableRedirects bool
}

// Response is the completed side of an exchange. Immutable once returned.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
	FetchedAt  time.Time
}

// Transport executes exchanges. Implementations must normalize every
// platform-level socket error into *Error; raw errors never cross this
// boundary.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// Source reports the interface the transport must bind its sockets to.
// An empty name with ok=true means no device constraint (stub platforms,
// tests against loopback).
type Source interface {
	BoundInterface() (ifname string, ok bool)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func() (string, bool)

// BoundInterface implements Source.
func (f SourceFunc) BoundInterface() (string, bool) { return f() }

// NewGet builds a GET request, with optional extra headers.
func NewGet(rawurl string, headers http.Header) *Request {
	return &Request{Method: http.MethodGet, URL: rawurl, Headers: headers}
}

// NewJSONPost builds a POST with a JSON-encoded body.
func NewJSONPost(rawurl string, payload any, headers http.Header) (*Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Kind: KindMalformed, Cause: fmt.Sprintf("encode json body: %v", err)}
	}
	if headers == nil {
		headers = http.Header{}
	}
	headers.Set("Content-Type", "application/json")
	return &Request{Method: http.MethodPost, URL: rawurl, Headers: headers, Body: body}, nil
}

// NewFormPost builds a POST with a URL-encoded form body.
func NewFormPost(rawurl string, form url.Values) *Request {
	headers := http.Header{}
	headers.Set("Content-Type", "application/x-www-form-urlencoded")
	return &Request{
		Method:  http.MethodPost,
		URL:     rawurl,
		Headers: headers,
		Body:    []byte(form.Encode()),
	}
}

// NewMultipartPost builds a POST with a multipart form body.
func NewMultipartPost(rawurl string, fields map[string]string) (*Request, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, &Error{Kind: KindMalformed, Cause: fmt.Sprintf("write multipart field: %v", err)}
		}
	}
	if err := writer.Close(); err != nil {
		return nil, &Error{Kind: KindMalformed, Cause: fmt.Sprintf("close multipart writer: %v", err)}
	}
	headers := http.Header{}
	headers.Set("Content-Type", writer.FormDataContentType())
	return &Request{Method: http.MethodPost, URL: rawurl, Headers: headers, Body: buf.Bytes()}, nil
}
