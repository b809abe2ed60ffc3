/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package circuits knows the public signal layout of the circuits zero-knowledge envelopes are proven with.
package circuits

import (
	"errors"
	"fmt"
	"math/big"

	core "github.com/iden3/go-iden3-core/v2"
	"github.com/iden3/go-merkletree-sql/v2"
)

// CircuitID is the name of a circuit.
type CircuitID string

const (
	// AuthV2CircuitID proves control of an identity and binds a challenge to it.
	AuthV2CircuitID CircuitID = "authV2"
	// AtomicQuerySigV2CircuitID proves a query over a signed credential.
	AtomicQuerySigV2CircuitID CircuitID = "credentialAtomicQuerySigV2"
	// AtomicQueryMTPV2CircuitID proves a query over a credential published in the issuer claims tree.
	AtomicQueryMTPV2CircuitID CircuitID = "credentialAtomicQueryMTPV2"
)

// ErrUnknownCircuit is returned for circuits whose public signals are not known.
var ErrUnknownCircuit = errors.New("unknown circuit")

const authV2SignalsCount = 3

// AuthV2PubSignals are the public signals of the authV2 circuit: [userID, challenge, gistRoot].
type AuthV2PubSignals struct {
	UserID    *core.ID
	Challenge *big.Int
	GISTRoot  *merkletree.Hash
}

// UnmarshalAuthV2PubSignals decodes the decimal public signals of an authV2 proof.
func UnmarshalAuthV2PubSignals(signals []string) (*AuthV2PubSignals, error) {
	if len(signals) != authV2SignalsCount {
		return nil, fmt.Errorf("authV2: expected %d public signals, got %d", authV2SignalsCount, len(signals))
	}

	userInt, ok := new(big.Int).SetString(signals[0], 10) //nolint:gomnd
	if !ok {
		return nil, fmt.Errorf("authV2: invalid userID signal '%s'", signals[0])
	}

	userID, err := core.IDFromInt(userInt)
	if err != nil {
		return nil, fmt.Errorf("authV2: userID: %w", err)
	}

	challenge, ok := new(big.Int).SetString(signals[1], 10) //nolint:gomnd
	if !ok {
		return nil, fmt.Errorf("authV2: invalid challenge signal '%s'", signals[1])
	}

	gistRoot, err := merkletree.NewHashFromString(signals[2])
	if err != nil {
		return nil, fmt.Errorf("authV2: gistRoot: %w", err)
	}

	return &AuthV2PubSignals{
		UserID:    &userID,
		Challenge: challenge,
		GISTRoot:  gistRoot,
	}, nil
}

// Signals returns the decimal public signals.
func (s *AuthV2PubSignals) Signals() []string {
	return []string{s.UserID.BigInt().String(), s.Challenge.String(), s.GISTRoot.BigInt().String()}
}

// SenderDID returns the DID of the identity a proof of circuitID was produced for. Circuits without a
// known identity signal fail with ErrUnknownCircuit.
func SenderDID(circuitID CircuitID, signals []string) (string, error) {
	switch circuitID {
	case AuthV2CircuitID:
		s, err := UnmarshalAuthV2PubSignals(signals)
		if err != nil {
			return "", err
		}

		d, err := core.ParseDIDFromID(*s.UserID)
		if err != nil {
			return "", fmt.Errorf("authV2: userID to DID: %w", err)
		}

		return d.String(), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownCircuit, circuitID)
	}
}

// Challenge returns the challenge a proof of circuitID commits to.
func Challenge(circuitID CircuitID, signals []string) (*big.Int, error) {
	switch circuitID {
	case AuthV2CircuitID:
		s, err := UnmarshalAuthV2PubSignals(signals)
		if err != nil {
			return nil, err
		}

		return s.Challenge, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownCircuit, circuitID)
	}
}
