/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package agent resolves Iden3commRevocationStatusV1.0 statuses by sending a revocation status request
// message to the issuer agent.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-zkcomm-go/pkg/common/errkind"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/message"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/transport"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/verifiable"
	"github.com/hyperledger/aries-zkcomm-go/pkg/revocation"
	"github.com/hyperledger/aries-zkcomm-go/pkg/revocation/issuer"
)

var logger = log.New("zkcomm/revocation/agent")

// Unpacker unpacks agent responses that arrive in an envelope.
type Unpacker interface {
	Unpack(ctx context.Context, envelope []byte) (*message.BasicMessage, transport.MediaType, error)
}

// Resolver asks the issuer agent for the status.
type Resolver struct {
	client   *http.Client
	unpacker Unpacker
}

// Option configures the resolver.
type Option func(r *Resolver)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		r.client = client
	}
}

// WithUnpacker sets how responses are unpacked. By default they must be plain messages.
func WithUnpacker(u Unpacker) Option {
	return func(r *Resolver) {
		r.unpacker = u
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

// Resolve posts a revocation status request from the holder to the issuer at the status id.
func (r *Resolver) Resolve(ctx context.Context, status *verifiable.CredentialStatus,
	opts ...revocation.ResolveOption) (*verifiable.RevocationStatus, error) {
	const op = "agent Resolve"

	statusType := string(verifiable.Iden3commRevocationStatusV1)

	if status == nil {
		return nil, errkind.Missing(op, "credentialStatus")
	}

	o := revocation.NewResolveOpts(opts...)

	if o.IssuerDID == "" {
		return nil, errkind.Missing(op, "issuerDID").WithStatusType(statusType)
	}

	if o.UserDID == "" {
		return nil, errkind.Missing(op, "userDID").WithStatusType(statusType)
	}

	if _, err := url.ParseRequestURI(status.ID); err != nil {
		return nil, errkind.New(errkind.MalformedStatusID, op, err).WithStatusType(statusType)
	}

	msg, err := message.NewRevocationStatusRequest(o.UserDID, o.IssuerDID, status.RevocationNonce)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	reqBytes, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("%s: marshal request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, status.ID, bytes.NewReader(reqBytes))
	if err != nil {
		return nil, errkind.New(errkind.FetchFailed, op, err).WithStatusType(statusType)
	}

	req.Header.Set("Content-Type", "application/json")

	respBytes, err := issuer.Do(r.client, req)
	if err != nil {
		return nil, errkind.New(errkind.FetchFailed, op, err).WithStatusType(statusType)
	}

	resp, err := r.unpack(ctx, respBytes)
	if err != nil {
		return nil, errkind.New(errkind.MalformedResponse, op, err).WithStatusType(statusType)
	}

	if resp.Type != message.RevocationStatusResponseMessageType {
		return nil, errkind.Errorf(errkind.MalformedResponse, op, "unexpected response type '%s'", resp.Type).
			WithStatusType(statusType)
	}

	rs, err := verifiable.ParseRevocationStatus(resp.Body)
	if err != nil {
		return nil, errkind.New(errkind.MalformedResponse, op, err).WithStatusType(statusType)
	}

	logger.Debugf("agent %s answered request %s: revoked=%t", o.IssuerDID, msg.ID, rs.Revoked())

	return rs, nil
}

func (r *Resolver) unpack(ctx context.Context, data []byte) (*message.BasicMessage, error) {
	if r.unpacker == nil {
		return message.Parse(data)
	}

	msg, _, err := r.unpacker.Unpack(ctx, data)

	return msg, err
}
