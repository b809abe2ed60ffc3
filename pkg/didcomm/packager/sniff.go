/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package packager

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/hyperledger/aries-zkcomm-go/pkg/common/errkind"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/transport"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/jose"
)

type headerStub struct {
	Type transport.MediaType `json:"typ,omitempty"`
}

// GetMediaType classifies an envelope by its declared media type without fully parsing it.
// Plain messages carry `typ` at the top level; compact envelopes carry it in the first
// base64url segment. Signatures and proofs are not looked at.
func GetMediaType(envelope []byte) (transport.MediaType, error) {
	const op = "sniff envelope"

	trimmed := bytes.TrimSpace(envelope)
	if len(trimmed) == 0 {
		return "", errkind.Errorf(errkind.MalformedEnvelope, op, "empty envelope")
	}

	var (
		headerBytes []byte
		err         error
	)

	if trimmed[0] == '{' { // plain JSON message
		headerBytes = trimmed
	} else { // compact serialized
		headerBytes, err = jose.DecodeSegment(string(bytes.SplitN(trimmed, []byte("."), 2)[0])) //nolint:gomnd
		if err != nil {
			return "", errkind.New(errkind.MalformedEnvelope, op, fmt.Errorf("decode header: %w", err))
		}
	}

	h := &headerStub{}

	err = json.Unmarshal(headerBytes, h)
	if err != nil {
		return "", errkind.New(errkind.MalformedEnvelope, op, fmt.Errorf("parse header: %w", err))
	}

	if h.Type == "" {
		return "", errkind.Errorf(errkind.MalformedEnvelope, op, "header has no 'typ'")
	}

	return h.Type, nil
}
