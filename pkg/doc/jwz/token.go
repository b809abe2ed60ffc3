/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jwz implements zero-knowledge proof tokens: a compact `header.payload.proof` serialization
// whose authenticity rests on a circuit proof over the hash of `header.payload` instead of a signature.
package jwz

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/iden3/go-iden3-crypto/constants"
	"github.com/iden3/go-rapidsnark/types"

	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/circuits"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/jose"
)

// ProvingAlg is a proving system.
type ProvingAlg string

// Groth16 is the groth16 proving system over BN254.
const Groth16 ProvingAlg = "groth16"

// ProvingMethodKey identifies a proving method by proving system and circuit.
type ProvingMethodKey struct {
	Alg       ProvingAlg
	CircuitID circuits.CircuitID
}

func (k ProvingMethodKey) String() string {
	return fmt.Sprintf("%s:%s", k.Alg, k.CircuitID)
}

// Token is a zero-knowledge proof token.
type Token struct {
	Alg       ProvingAlg
	CircuitID circuits.CircuitID
	Headers   jose.Headers
	Payload   []byte
	ZKProof   *types.ZKProof

	rawHeader  string
	rawPayload string
}

// NewToken builds an unproven token for payload. typ is the media type declared in the header.
func NewToken(key ProvingMethodKey, typ string, payload []byte) (*Token, error) {
	headers := jose.Headers{
		jose.HeaderAlgorithm: string(key.Alg),
		jose.HeaderCircuitID: string(key.CircuitID),
		jose.HeaderCritical:  []string{jose.HeaderCircuitID},
		jose.HeaderType:      typ,
	}

	headerBytes, err := json.Marshal(headers)
	if err != nil {
		return nil, fmt.Errorf("marshal token header: %w", err)
	}

	return &Token{
		Alg:        key.Alg,
		CircuitID:  key.CircuitID,
		Headers:    headers,
		Payload:    payload,
		rawHeader:  base64.RawURLEncoding.EncodeToString(headerBytes),
		rawPayload: base64.RawURLEncoding.EncodeToString(payload),
	}, nil
}

// Parse parses a compact token. The proof is decoded but not verified.
func Parse(token string) (*Token, error) {
	jws, err := jose.ParseCompact(token)
	if err != nil {
		return nil, err
	}

	alg, ok := jws.ProtectedHeaders.Algorithm()
	if !ok || alg == "" {
		return nil, errors.New("token header has no 'alg'")
	}

	circuitID, ok := jws.ProtectedHeaders.CircuitID()
	if !ok || circuitID == "" {
		return nil, errors.New("token header has no 'circuitId'")
	}

	if crit, hasCrit := jws.ProtectedHeaders.Critical(); hasCrit {
		for _, c := range crit {
			if c != jose.HeaderCircuitID {
				return nil, fmt.Errorf("token header has unsupported critical header '%s'", c)
			}
		}
	} else if _, present := jws.ProtectedHeaders[jose.HeaderCritical]; present {
		return nil, errors.New("token header 'crit' must be a list of strings")
	}

	proof := &types.ZKProof{}

	err = json.Unmarshal(jws.Signature, proof)
	if err != nil {
		return nil, fmt.Errorf("unmarshal token proof: %w", err)
	}

	if proof.Proof == nil {
		return nil, errors.New("token has no proof")
	}

	input := jws.SigningInput()
	rawHeader, rawPayload := splitInput(input)

	return &Token{
		Alg:        ProvingAlg(alg),
		CircuitID:  circuits.CircuitID(circuitID),
		Headers:    jws.ProtectedHeaders,
		Payload:    jws.Payload,
		ZKProof:    proof,
		rawHeader:  rawHeader,
		rawPayload: rawPayload,
	}, nil
}

func splitInput(input []byte) (string, string) {
	for i, b := range input {
		if b == '.' {
			return string(input[:i]), string(input[i+1:])
		}
	}

	return string(input), ""
}

// Method returns the proving method key of the token.
func (t *Token) Method() ProvingMethodKey {
	return ProvingMethodKey{Alg: t.Alg, CircuitID: t.CircuitID}
}

// SigningInput returns `base64url(header).base64url(payload)`.
func (t *Token) SigningInput() []byte {
	return []byte(t.rawHeader + "." + t.rawPayload)
}

// MessageHash returns the SHA-256 hash of the signing input reduced into the BN254 scalar field. This is
// the challenge the proof must commit to.
func (t *Token) MessageHash() *big.Int {
	sum := sha256.Sum256(t.SigningInput())

	return new(big.Int).Mod(new(big.Int).SetBytes(sum[:]), constants.Q)
}

// CompactSerialize returns `header.payload.proof`.
func (t *Token) CompactSerialize() (string, error) {
	if t.ZKProof == nil {
		return "", errors.New("token is not proven")
	}

	proofBytes, err := json.Marshal(t.ZKProof)
	if err != nil {
		return "", fmt.Errorf("marshal token proof: %w", err)
	}

	return string(t.SigningInput()) + "." + base64.RawURLEncoding.EncodeToString(proofBytes), nil
}
