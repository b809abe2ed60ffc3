/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jwz

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/iden3/go-rapidsnark/types"
	"github.com/iden3/go-rapidsnark/verifier"

	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/circuits"
)

// ErrProofInvalid is returned by verifiers for proofs that do not verify.
var ErrProofInvalid = errors.New("proof invalid")

// Prover produces a proof of witness with provingKey.
type Prover interface {
	Prove(ctx context.Context, provingKey, witness []byte) (*types.ZKProof, error)
}

// ProofVerifier verifies a proof with verificationKey.
type ProofVerifier interface {
	Verify(ctx context.Context, proof *types.ZKProof, verificationKey []byte) error
}

// WitnessPreparer derives the circuit witness for a message hash and sender.
type WitnessPreparer interface {
	PrepareWitness(ctx context.Context, messageHash *big.Int, senderDID string,
		circuitID circuits.CircuitID) ([]byte, error)
}

// ProverFunc adapts a function to the Prover interface.
type ProverFunc func(ctx context.Context, provingKey, witness []byte) (*types.ZKProof, error)

// Prove calls f.
func (f ProverFunc) Prove(ctx context.Context, provingKey, witness []byte) (*types.ZKProof, error) {
	return f(ctx, provingKey, witness)
}

// ProofVerifierFunc adapts a function to the ProofVerifier interface.
type ProofVerifierFunc func(ctx context.Context, proof *types.ZKProof, verificationKey []byte) error

// Verify calls f.
func (f ProofVerifierFunc) Verify(ctx context.Context, proof *types.ZKProof, verificationKey []byte) error {
	return f(ctx, proof, verificationKey)
}

// WitnessPreparerFunc adapts a function to the WitnessPreparer interface.
type WitnessPreparerFunc func(ctx context.Context, messageHash *big.Int, senderDID string,
	circuitID circuits.CircuitID) ([]byte, error)

// PrepareWitness calls f.
func (f WitnessPreparerFunc) PrepareWitness(ctx context.Context, messageHash *big.Int, senderDID string,
	circuitID circuits.CircuitID) ([]byte, error) {
	return f(ctx, messageHash, senderDID, circuitID)
}

// Groth16Verifier verifies groth16 proofs over BN254 with a snarkjs JSON verification key.
type Groth16Verifier struct{}

// Verify verifies proof with the JSON verification key.
func (Groth16Verifier) Verify(_ context.Context, proof *types.ZKProof, verificationKey []byte) error {
	if proof == nil || proof.Proof == nil {
		return fmt.Errorf("%w: no proof", ErrProofInvalid)
	}

	if err := verifier.VerifyGroth16(*proof, verificationKey); err != nil {
		return fmt.Errorf("%w: %v", ErrProofInvalid, err) //nolint:errorlint
	}

	return nil
}
