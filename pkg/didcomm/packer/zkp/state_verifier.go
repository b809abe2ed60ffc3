/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package zkp

import (
	"context"
	"fmt"
	"time"

	core "github.com/iden3/go-iden3-core/v2"

	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/circuits"
	"github.com/hyperledger/aries-zkcomm-go/pkg/state"
	"github.com/hyperledger/aries-zkcomm-go/pkg/verification/policy"
)

// NewAuthV2StateVerifier returns a verifier accepting authV2 proofs made against a published global
// identity root that is the latest one or was replaced within the accepted state transition delay.
func NewAuthV2StateVerifier(resolver state.Resolver, opts ...policy.Option) PublicSignalsVerifier {
	p := policy.New(opts...)

	return func(ctx context.Context, circuitID circuits.CircuitID, signals []string) error {
		if circuitID != circuits.AuthV2CircuitID {
			return fmt.Errorf("%w: %s", circuits.ErrUnknownCircuit, circuitID)
		}

		s, err := circuits.UnmarshalAuthV2PubSignals(signals)
		if err != nil {
			return err
		}

		userDID, err := core.ParseDIDFromID(*s.UserID)
		if err != nil {
			return fmt.Errorf("authV2: userID to DID: %w", err)
		}

		info, err := resolver.ResolveGlobalRoot(ctx, userDID, s.GISTRoot.BigInt())
		if err != nil {
			return fmt.Errorf("resolve global root: %w", err)
		}

		if info.Latest() {
			return nil
		}

		return p.CheckStateTransitionDelay(time.Unix(info.ReplacedAtTimestamp, 0))
	}
}
