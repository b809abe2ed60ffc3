/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package revocation turns credential status pointers into revocation statuses by dispatching to the
// resolver registered for the status type.
package revocation

import (
	"context"
	"math/big"

	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/verifiable"
)

// Resolver resolves one kind of credential status.
type Resolver interface {
	Resolve(ctx context.Context, status *verifiable.CredentialStatus,
		opts ...ResolveOption) (*verifiable.RevocationStatus, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, status *verifiable.CredentialStatus,
	opts ...ResolveOption) (*verifiable.RevocationStatus, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, status *verifiable.CredentialStatus,
	opts ...ResolveOption) (*verifiable.RevocationStatus, error) {
	return f(ctx, status, opts...)
}

// ResolveOpts are the per-call inputs some resolvers need.
type ResolveOpts struct {
	// IssuerDID is the DID of the credential issuer.
	IssuerDID string
	// UserDID is the DID of the credential holder, the sender of agent status requests.
	UserDID string
	// IssuerState is the issuer state the credential's own proof was made against.
	IssuerState *big.Int
}

// ResolveOption sets a resolve input.
type ResolveOption func(opts *ResolveOpts)

// WithIssuerDID sets the issuer DID.
func WithIssuerDID(did string) ResolveOption {
	return func(opts *ResolveOpts) {
		opts.IssuerDID = did
	}
}

// WithUserDID sets the holder DID.
func WithUserDID(did string) ResolveOption {
	return func(opts *ResolveOpts) {
		opts.UserDID = did
	}
}

// WithIssuerState sets the issuer state anchor.
func WithIssuerState(state *big.Int) ResolveOption {
	return func(opts *ResolveOpts) {
		opts.IssuerState = state
	}
}

// NewResolveOpts applies opts.
func NewResolveOpts(opts ...ResolveOption) *ResolveOpts {
	o := &ResolveOpts{}

	for _, opt := range opts {
		opt(o)
	}

	return o
}
