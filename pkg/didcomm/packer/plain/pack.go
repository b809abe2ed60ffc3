/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package plain includes a Packer implementation for unsigned, unencrypted JSON messages.
//
// A plain envelope provides neither authenticity nor confidentiality. It is only fit for transport
// convenience or for content that authenticates itself.
package plain

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hyperledger/aries-zkcomm-go/pkg/common/errkind"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/message"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/packer"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/transport"
)

// Packer packs plain JSON messages.
type Packer struct{}

// New returns a plain Packer.
func New() *Packer {
	return &Packer{}
}

// Params are the (empty) pack parameters of the plain packer.
type Params struct{}

// MediaType of the params.
func (Params) MediaType() transport.MediaType {
	return transport.MediaTypePlainMessage
}

// Pack sets the plain `typ` on the payload message and re-serializes it. params are ignored.
func (p *Packer) Pack(_ context.Context, payload []byte, _ packer.Params) ([]byte, error) {
	msg, err := message.Parse(payload)
	if err != nil {
		return nil, errkind.New(errkind.MalformedMessage, "plain Pack", err)
	}

	msg.Typ = transport.MediaTypePlainMessage

	envelope, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("plain Pack: marshal message: %w", err)
	}

	return envelope, nil
}

// Unpack parses the envelope as a message.
func (p *Packer) Unpack(_ context.Context, envelope []byte) (*message.BasicMessage, error) {
	msg, err := message.Parse(envelope)
	if err != nil {
		return nil, errkind.New(errkind.MalformedMessage, "plain Unpack", err)
	}

	return msg, nil
}

// MediaType of plain envelopes.
func (p *Packer) MediaType() transport.MediaType {
	return transport.MediaTypePlainMessage
}
