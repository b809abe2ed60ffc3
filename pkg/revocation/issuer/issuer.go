/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package issuer resolves SparseMerkleTreeProof statuses by fetching the revocation status from the issuer.
package issuer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-zkcomm-go/pkg/common/errkind"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/verifiable"
	"github.com/hyperledger/aries-zkcomm-go/pkg/revocation"
)

var logger = log.New("zkcomm/revocation/issuer")

const maxResponseSize = 1 << 20

// Resolver fetches revocation statuses from the URL in the status id.
type Resolver struct {
	client *http.Client
}

// Option configures the resolver.
type Option func(r *Resolver)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		r.client = client
	}
}

// New returns a resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{client: http.DefaultClient}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve fetches the status. Transport failures are returned as they are; nothing is retried.
func (r *Resolver) Resolve(ctx context.Context, status *verifiable.CredentialStatus,
	_ ...revocation.ResolveOption) (*verifiable.RevocationStatus, error) {
	const op = "issuer Resolve"

	statusType := string(verifiable.SparseMerkleTreeProof)

	if status == nil {
		return nil, errkind.Missing(op, "credentialStatus")
	}

	if _, err := url.ParseRequestURI(status.ID); err != nil {
		return nil, errkind.New(errkind.MalformedStatusID, op, err).WithStatusType(statusType)
	}

	body, err := Get(ctx, r.client, status.ID)
	if err != nil {
		return nil, errkind.New(errkind.FetchFailed, op, err).WithStatusType(statusType)
	}

	rs, err := verifiable.ParseRevocationStatus(body)
	if err != nil {
		return nil, errkind.New(errkind.MalformedResponse, op, err).WithStatusType(statusType)
	}

	logger.Debugf("resolved status %s: revoked=%t", status.ID, rs.Revoked())

	return rs, nil
}

// Get fetches uri and returns the body of a 200 response.
func Get(ctx context.Context, client *http.Client, uri string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("HTTP create get request failed: %w", err)
	}

	req.Header.Add("Accept", "application/json")

	return Do(client, req)
}

// Do sends req and returns the body of a 200 response.
func Do(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP %s request failed: %w", req.Method, err)
	}

	defer closeResponseBody(resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("reading response body failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected response [%d] body [%s]", resp.StatusCode, body)
	}

	return body, nil
}

func closeResponseBody(respBody io.Closer) {
	if err := respBody.Close(); err != nil {
		logger.Errorf("Failed to close response body: %v", err)
	}
}
