/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package state holds identity-state helpers and the published-state resolver interface.
package state

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	core "github.com/iden3/go-iden3-core/v2"
	"github.com/iden3/go-iden3-core/v2/w3c"
)

var (
	// ErrStateNotFound is returned when an identity state was never published.
	ErrStateNotFound = errors.New("identity state not found")
	// ErrRootNotFound is returned when a global identity state tree root was never published.
	ErrRootNotFound = errors.New("global root not found")
)

// Info is the published record of an identity state.
type Info struct {
	ID                  *big.Int
	State               *big.Int
	ReplacedByState     *big.Int
	CreatedAtTimestamp  int64
	ReplacedAtTimestamp int64
}

// Latest reports whether the state has not been replaced.
func (i *Info) Latest() bool {
	return i.ReplacedAtTimestamp == 0
}

// RootInfo is the published record of a global identity state tree (GIST) root.
type RootInfo struct {
	Root                *big.Int
	ReplacedByRoot      *big.Int
	CreatedAtTimestamp  int64
	ReplacedAtTimestamp int64
}

// Latest reports whether the root has not been replaced.
func (i *RootInfo) Latest() bool {
	return i.ReplacedAtTimestamp == 0
}

// Resolver reads the published identity states. The DID selects the chain to read from.
type Resolver interface {
	ResolveState(ctx context.Context, did *w3c.DID, state *big.Int) (*Info, error)
	ResolveGlobalRoot(ctx context.Context, did *w3c.DID, root *big.Int) (*RootInfo, error)
}

// IsGenesisState reports whether state is the genesis state of the identity named by did, that is whether
// the identifier was derived from it.
func IsGenesisState(did string, state *big.Int) (bool, error) {
	parsed, err := w3c.ParseDID(did)
	if err != nil {
		return false, fmt.Errorf("is genesis state: %w", err)
	}

	id, err := core.IDFromDID(*parsed)
	if err != nil {
		return false, fmt.Errorf("is genesis state: %w", err)
	}

	return IsGenesisStateID(id, state)
}

// IsGenesisStateID is IsGenesisState for a parsed identifier.
func IsGenesisStateID(id core.ID, state *big.Int) (bool, error) {
	if state == nil {
		return false, errors.New("is genesis state: state is nil")
	}

	genesis, err := core.NewIDFromIdenState(id.Type(), state)
	if err != nil {
		return false, fmt.Errorf("is genesis state: %w", err)
	}

	return id.Equal(genesis), nil
}
