package auth

import (
	"fmt"
	"net/http"
)

// Transport sets "Authorization: Bearer <token>" on outgoing requests.
//
// The token comes from the request context (WithToken) when present,
// otherwise from Source. With neither, the request is sent unchanged.
type Transport struct {
	Source TokenSource
	Base   http.RoundTripper
}

// NewTransport returns a Transport over base; nil base uses
// http.DefaultTransport.
func NewTransport(src TokenSource, base http.RoundTripper) *Transport {
	return &Transport{Source: src, Base: base}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := TokenFromContext(req.Context())
	if token == "" && t.Source != nil {
		var err error
		token, err = t.Source.Token(req.Context())
		if err != nil {
			closeBody(req)
			return nil, fmt.Errorf("auth: %s %s: %w", req.Method, req.URL.Path, err)
		}
	}

	if token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return t.base().RoundTrip(req)
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

// RoundTrippers must close the request body even on error.
func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}
