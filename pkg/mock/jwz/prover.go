/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jwz holds a mock proving system. Its proofs carry correct authV2 public signals but no
// cryptography; never use it in production.
package jwz

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	core "github.com/iden3/go-iden3-core/v2"
	"github.com/iden3/go-iden3-core/v2/w3c"
	"github.com/iden3/go-rapidsnark/types"

	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/circuits"
)

// MockProtocol marks proofs produced by Prover.
const MockProtocol = "mock"

type witness struct {
	Hash   string             `json:"hash"`
	Sender string             `json:"sender"`
	Cir    circuits.CircuitID `json:"circuit"`
}

// WitnessPreparer encodes the message hash and sender as the witness.
type WitnessPreparer struct {
	Err error
}

// PrepareWitness returns the JSON witness.
func (w *WitnessPreparer) PrepareWitness(_ context.Context, messageHash *big.Int, senderDID string,
	circuitID circuits.CircuitID) ([]byte, error) {
	if w.Err != nil {
		return nil, w.Err
	}

	return json.Marshal(&witness{Hash: messageHash.String(), Sender: senderDID, Cir: circuitID})
}

// Prover emits authV2 public signals [userID, challenge, gistRoot] for the witness sender and hash.
type Prover struct {
	GISTRoot *big.Int
	Err      error
	Calls    int
}

// Prove returns a mock proof.
func (p *Prover) Prove(_ context.Context, _, w []byte) (*types.ZKProof, error) {
	p.Calls++

	if p.Err != nil {
		return nil, p.Err
	}

	var wit witness

	if err := json.Unmarshal(w, &wit); err != nil {
		return nil, fmt.Errorf("mock prover: %w", err)
	}

	did, err := w3c.ParseDID(wit.Sender)
	if err != nil {
		return nil, fmt.Errorf("mock prover: %w", err)
	}

	id, err := core.IDFromDID(*did)
	if err != nil {
		return nil, fmt.Errorf("mock prover: %w", err)
	}

	root := p.GISTRoot
	if root == nil {
		root = big.NewInt(1)
	}

	return &types.ZKProof{
		Proof: &types.ProofData{
			A:        []string{"1", "2", "1"},
			B:        [][]string{{"1", "0"}, {"2", "0"}, {"1", "0"}},
			C:        []string{"3", "4", "1"},
			Protocol: MockProtocol,
		},
		PubSignals: []string{id.BigInt().String(), wit.Hash, root.String()},
	}, nil
}

// Verifier accepts mock proofs unless Err is set.
type Verifier struct {
	Err   error
	Calls int
}

// Verify the proof.
func (v *Verifier) Verify(_ context.Context, proof *types.ZKProof, _ []byte) error {
	v.Calls++

	if v.Err != nil {
		return v.Err
	}

	if proof == nil || proof.Proof == nil || proof.Proof.Protocol != MockProtocol {
		return fmt.Errorf("mock verifier: not a mock proof")
	}

	return nil
}
