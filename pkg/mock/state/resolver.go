/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package state holds a mock published-state resolver.
package state

import (
	"context"
	"math/big"

	"github.com/iden3/go-iden3-core/v2/w3c"

	"github.com/hyperledger/aries-zkcomm-go/pkg/state"
)

// Resolver serves states and roots keyed by their decimal value.
type Resolver struct {
	States map[string]*state.Info
	Roots  map[string]*state.RootInfo
	Err    error
}

// ResolveState returns the state info.
func (r *Resolver) ResolveState(_ context.Context, _ *w3c.DID, s *big.Int) (*state.Info, error) {
	if r.Err != nil {
		return nil, r.Err
	}

	info, ok := r.States[s.String()]
	if !ok {
		return nil, state.ErrStateNotFound
	}

	return info, nil
}

// ResolveGlobalRoot returns the root info.
func (r *Resolver) ResolveGlobalRoot(_ context.Context, _ *w3c.DID, root *big.Int) (*state.RootInfo, error) {
	if r.Err != nil {
		return nil, r.Err
	}

	info, ok := r.Roots[root.String()]
	if !ok {
		return nil, state.ErrRootNotFound
	}

	return info, nil
}
