/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package httpbinding resolves DIDs through an HTTP(S) universal resolver endpoint.
package httpbinding

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/exp/slices"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/did"
	"github.com/hyperledger/aries-zkcomm-go/pkg/vdr"
)

var logger = log.New("zkcomm/vdr/httpbinding")

const (
	didLDJson = "application/did+ld+json"
	didJSON   = "application/did+json"
	jsonType  = "application/json"
)

type authTokenProvider interface {
	AuthToken() (string, error)
}

// VDR via HTTP(s) endpoint.
type VDR struct {
	endpointURL       string
	client            *http.Client
	accept            Accept
	resolveAuthToken  string
	authTokenProvider authTokenProvider
}

// Accept is method to accept did method.
type Accept func(method string) bool

// New creates new DID Resolver.
func New(endpointURL string, opts ...Option) (*VDR, error) {
	v := &VDR{client: &http.Client{}, accept: func(method string) bool { return true }}

	for _, opt := range opts {
		opt(v)
	}

	_, err := url.ParseRequestURI(endpointURL)
	if err != nil {
		return nil, fmt.Errorf("base URL invalid: %w", err)
	}

	v.endpointURL = endpointURL

	return v, nil
}

// Accept did method.
func (v *VDR) Accept(method string) bool {
	return v.accept(method)
}

// Read resolves didID at the endpoint, `{endpoint}/{didID}`.
func (v *VDR) Read(ctx context.Context, didID string) (*did.Doc, error) {
	reqURL, err := url.ParseRequestURI(v.endpointURL)
	if err != nil {
		return nil, fmt.Errorf("url parse request uri failed: %w", err)
	}

	reqURL.Path = path.Join(reqURL.Path, didID)

	data, err := v.resolveDID(ctx, reqURL.String())
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, vdr.ErrNotFound
	}

	return did.ParseDocumentResolution(data)
}

func (v *VDR) resolveDID(ctx context.Context, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("HTTP create get request failed: %w", err)
	}

	req.Header.Add("Accept", didLDJson)

	authToken := v.resolveAuthToken

	if v.authTokenProvider != nil {
		token, err := v.authTokenProvider.AuthToken()
		if err != nil {
			return nil, fmt.Errorf("get auth token: %w", err)
		}

		authToken = "Bearer " + token
	}

	if authToken != "" {
		req.Header.Add("Authorization", authToken)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP Get request failed: %w", err)
	}

	defer closeResponseBody(resp.Body)

	gotBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body failed: %w", err)
	}

	contentType := resp.Header.Get("Content-type")

	switch {
	case resp.StatusCode == http.StatusOK && documentType(contentType):
		return gotBody, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, vdr.ErrNotFound
	}

	return nil, fmt.Errorf("unsupported response from DID resolver [%v] header [%s] body [%s]",
		resp.StatusCode, contentType, gotBody)
}

func documentType(contentType string) bool {
	for _, t := range []string{didLDJson, didJSON, jsonType} {
		if strings.Contains(contentType, t) {
			return true
		}
	}

	return false
}

// Option configures the http binding.
type Option func(opts *VDR)

// WithTimeout option is for definition of HTTP(s) timeout value of DID Resolver.
func WithTimeout(timeout time.Duration) Option {
	return func(opts *VDR) {
		opts.client.Timeout = timeout
	}
}

// WithHTTPClient option is for custom http client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(opts *VDR) {
		opts.client = httpClient
	}
}

// WithAccept option is for accept did method.
func WithAccept(accept Accept) Option {
	return func(opts *VDR) {
		opts.accept = accept
	}
}

// WithResolveAuthToken add auth token for resolve.
func WithResolveAuthToken(authToken string) Option {
	return func(opts *VDR) {
		opts.resolveAuthToken = "Bearer " + authToken
	}
}

// WithResolveAuthTokenProvider add auth token provider.
func WithResolveAuthTokenProvider(p authTokenProvider) Option {
	return func(opts *VDR) {
		opts.authTokenProvider = p
	}
}

// AcceptMethods accepts only the listed methods.
func AcceptMethods(methods ...string) Accept {
	return func(method string) bool {
		return slices.Contains(methods, method)
	}
}

func closeResponseBody(respBody io.Closer) {
	e := respBody.Close()
	if e != nil {
		logger.Errorf("Failed to close response body: %v", e)
	}
}
