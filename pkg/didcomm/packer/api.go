/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package packer

import (
	"context"

	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/message"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/transport"
)

// Params are the packer specific pack parameters. Each packer accepts only its own params type,
// which reports the media type it was built for.
type Params interface {
	MediaType() transport.MediaType
}

// Packer wraps protocol messages into one envelope kind and unwraps them back.
// Implementations are stateless beyond read-only construction time configuration and safe for concurrent use.
type Packer interface {
	// Pack a JSON protocol message payload into an envelope.
	// returns:
	// 		[]byte containing the envelope
	//		error if the payload is malformed or packing failed
	Pack(ctx context.Context, payload []byte, params Params) ([]byte, error)
	// Unpack an envelope and return the validated protocol message.
	Unpack(ctx context.Context, envelope []byte) (*message.BasicMessage, error)
	// MediaType returns the media type of the envelope, as found in the `typ` field.
	MediaType() transport.MediaType
}
