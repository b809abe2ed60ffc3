/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package packer

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/message"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/packer"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/transport"
)

// Packer is a mock packer. Without PackValue/UnpackValue it produces a compact envelope
// `header.payload.` with an empty signature segment and no protection. Never use this in production.
type Packer struct {
	Type        transport.MediaType
	PackValue   func(payload []byte, params packer.Params) ([]byte, error)
	UnpackValue func(envelope []byte) (*message.BasicMessage, error)
	PackCalls   int
	UnpackCalls int
}

type header struct {
	Type transport.MediaType `json:"typ,omitempty"`
}

// Pack the payload.
func (p *Packer) Pack(_ context.Context, payload []byte, params packer.Params) ([]byte, error) {
	p.PackCalls++

	if p.PackValue != nil {
		return p.PackValue(payload, params)
	}

	headerBytes, err := json.Marshal(&header{Type: p.Type})
	if err != nil {
		return nil, err
	}

	return []byte(base64.RawURLEncoding.EncodeToString(headerBytes) + "." +
		base64.RawURLEncoding.EncodeToString(payload) + "."), nil
}

// Unpack the envelope.
func (p *Packer) Unpack(_ context.Context, envelope []byte) (*message.BasicMessage, error) {
	p.UnpackCalls++

	if p.UnpackValue != nil {
		return p.UnpackValue(envelope)
	}

	parts := strings.Split(string(envelope), ".")
	if len(parts) != 3 { //nolint:gomnd
		return nil, fmt.Errorf("mock packer: expected 3 segments, got %d", len(parts))
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, err
	}

	return message.Parse(payload)
}

// MediaType of the mock envelopes.
func (p *Packer) MediaType() transport.MediaType {
	return p.Type
}
