/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package zkp includes a Packer implementation for zero-knowledge proof envelopes. The sender is
// authenticated by a circuit proof over the message hash whose public signals name the sender's identity.
package zkp

import (
	"context"
	"fmt"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-zkcomm-go/pkg/common/errkind"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/message"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/packer"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/transport"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/circuits"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/jwz"
)

var logger = log.New("zkcomm/packer/zkp")

// PublicSignalsVerifier checks the public signals of a verified proof against external state, for example
// that the global identity root the proof was made against is published.
type PublicSignalsVerifier func(ctx context.Context, circuitID circuits.CircuitID, signals []string) error

// ProvingParams are the collaborators needed to produce proofs for one proving method.
type ProvingParams struct {
	ProvingKey []byte
	Prover     jwz.Prover
	Witness    jwz.WitnessPreparer
}

// VerificationParams are the collaborators needed to accept proofs of one proving method.
type VerificationParams struct {
	Key      []byte
	Verifier jwz.ProofVerifier
	// VerifySignals is optional.
	VerifySignals PublicSignalsVerifier
}

// Params are the pack parameters of the zkp packer.
type Params struct {
	// Alg defaults to groth16.
	Alg       jwz.ProvingAlg
	CircuitID circuits.CircuitID
}

// MediaType of the params.
func (Params) MediaType() transport.MediaType {
	return transport.MediaTypeZKPMessage
}

func (p Params) key() jwz.ProvingMethodKey {
	alg := p.Alg
	if alg == "" {
		alg = jwz.Groth16
	}

	return jwz.ProvingMethodKey{Alg: alg, CircuitID: p.CircuitID}
}

// Packer packs zero-knowledge proof envelopes.
type Packer struct {
	verification map[jwz.ProvingMethodKey]VerificationParams
	proving      map[jwz.ProvingMethodKey]ProvingParams
}

// New returns a zkp packer. Either map may be nil for a packer that only verifies or only proves.
func New(verification map[jwz.ProvingMethodKey]VerificationParams,
	proving map[jwz.ProvingMethodKey]ProvingParams) *Packer {
	p := &Packer{
		verification: map[jwz.ProvingMethodKey]VerificationParams{},
		proving:      map[jwz.ProvingMethodKey]ProvingParams{},
	}

	for k, v := range verification {
		p.verification[k] = v
	}

	for k, v := range proving {
		p.proving[k] = v
	}

	return p
}

// Pack proves the sender's control of the message and returns `header.payload.proof`.
func (p *Packer) Pack(ctx context.Context, payload []byte, params packer.Params) ([]byte, error) {
	const op = "zkp Pack"

	var zp Params

	switch v := params.(type) {
	case Params:
		zp = v
	case *Params:
		if v == nil {
			return nil, errkind.Missing(op, "params")
		}

		zp = *v
	default:
		return nil, errkind.Missing(op, "params")
	}

	key := zp.key()

	pp, ok := p.proving[key]
	if !ok {
		return nil, errkind.Errorf(errkind.NoProvingMethod, op, "no proving method %s", key).
			WithCircuit(string(key.CircuitID))
	}

	msg, err := message.Parse(payload)
	if err != nil {
		return nil, errkind.New(errkind.MalformedMessage, op, err)
	}

	if msg.From == "" {
		return nil, errkind.Missing(op, "from")
	}

	token, err := jwz.NewToken(key, transport.MediaTypeZKPMessage.String(), payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	witness, err := pp.Witness.PrepareWitness(ctx, token.MessageHash(), msg.From, key.CircuitID)
	if err != nil {
		return nil, fmt.Errorf("%s: prepare witness: %w", op, err)
	}

	token.ZKProof, err = pp.Prover.Prove(ctx, pp.ProvingKey, witness)
	if err != nil {
		return nil, fmt.Errorf("%s: prove: %w", op, err)
	}

	compact, err := token.CompactSerialize()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	logger.Debugf("packed message %s from %s with %s", msg.ID, msg.From, key)

	return []byte(compact), nil
}

// MediaType of the packer.
func (p *Packer) MediaType() transport.MediaType {
	return transport.MediaTypeZKPMessage
}
