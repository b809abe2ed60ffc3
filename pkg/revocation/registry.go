/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package revocation

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/exp/slices"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-zkcomm-go/pkg/common/errkind"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/verifiable"
)

var logger = log.New("zkcomm/revocation")

// ErrRevoked is returned when every candidate credential is revoked.
var ErrRevoked = errors.New("credential revoked")

// Registry maps status types to resolvers.
//
// Resolvers must be registered before the Registry is used concurrently; registration itself is not
// synchronized.
type Registry struct {
	resolvers map[verifiable.StatusType]Resolver
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{resolvers: map[verifiable.StatusType]Resolver{}}
}

// Register registers resolver for statusType. The last registration of a status type wins.
func (r *Registry) Register(statusType verifiable.StatusType, resolver Resolver) {
	if _, ok := r.resolvers[statusType]; ok {
		logger.Debugf("replacing resolver for status type %s", statusType)
	}

	r.resolvers[statusType] = resolver
}

// Get returns the resolver of statusType.
func (r *Registry) Get(statusType verifiable.StatusType) (Resolver, bool) {
	res, ok := r.resolvers[statusType]

	return res, ok
}

// StatusTypes returns the registered status types in sorted order.
func (r *Registry) StatusTypes() []verifiable.StatusType {
	types := make([]verifiable.StatusType, 0, len(r.resolvers))

	for t := range r.resolvers {
		types = append(types, t)
	}

	slices.Sort(types)

	return types
}

// Resolve resolves status with the resolver registered for its type.
func (r *Registry) Resolve(ctx context.Context, status *verifiable.CredentialStatus,
	opts ...ResolveOption) (*verifiable.RevocationStatus, error) {
	const op = "revocation Resolve"

	if status == nil {
		return nil, errkind.Missing(op, "credentialStatus")
	}

	res, ok := r.Get(status.Type)
	if !ok {
		return nil, errkind.New(errkind.ResolverNotFound, op, nil).WithStatusType(string(status.Type))
	}

	return res.Resolve(ctx, status, opts...)
}

// ResolveWithFallback resolves status and, when that fails, each issuer fallback in turn. The first
// successful resolution is returned whether revoked or not.
func (r *Registry) ResolveWithFallback(ctx context.Context, status *verifiable.CredentialStatus,
	opts ...ResolveOption) (*verifiable.RevocationStatus, error) {
	const op = "revocation ResolveWithFallback"

	if status == nil {
		return nil, errkind.Missing(op, "credentialStatus")
	}

	var errs []error

	for _, s := range Candidates(status) {
		rs, err := r.Resolve(ctx, s, opts...)
		if err == nil {
			return rs, nil
		}

		logger.Debugf("resolve %s status %s failed: %s", s.Type, s.ID, err)

		errs = append(errs, err)
	}

	return nil, errors.Join(errs...)
}

// Candidates returns status followed by its chain of issuer fallbacks.
func Candidates(status *verifiable.CredentialStatus) []*verifiable.CredentialStatus {
	var out []*verifiable.CredentialStatus

	for s := status; s != nil && len(out) < maxFallbacks; s = s.StatusIssuer {
		out = append(out, s)
	}

	return out
}

const maxFallbacks = 8

// Candidate is one credential status to check, with its own resolve inputs.
type Candidate struct {
	Status *verifiable.CredentialStatus
	Opts   []ResolveOption
}

// FirstNonRevoked resolves the candidates in order and returns the index and status of the first one that
// is not revoked. Individual failures are logged and skipped; it fails only when every candidate failed or
// is revoked, with ErrRevoked when at least one was revoked.
func FirstNonRevoked(ctx context.Context, registry *Registry, candidates []Candidate) (int,
	*verifiable.RevocationStatus, error) {
	var (
		errs    []error
		revoked int
	)

	for i, c := range candidates {
		if err := ctx.Err(); err != nil {
			return -1, nil, err
		}

		s, err := registry.Resolve(ctx, c.Status, c.Opts...)
		if err != nil {
			logger.Infof("candidate %d: resolve failed: %s", i, err)

			errs = append(errs, fmt.Errorf("candidate %d: %w", i, err))

			continue
		}

		if s.Revoked() {
			revoked++

			continue
		}

		return i, s, nil
	}

	if revoked > 0 {
		errs = append([]error{ErrRevoked}, errs...)
	}

	if len(errs) == 0 {
		return -1, nil, errors.New("no candidates")
	}

	return -1, nil, errors.Join(errs...)
}
