/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package packager

import (
	"encoding/json"

	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/message"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/transport"
)

// UnpackRequest model
//
// This is used for unpacking an envelope of any registered media type.
type UnpackRequest struct {
	// Envelope is the compact (JWS, JWZ) or JSON (plain) envelope.
	Envelope string `json:"envelope"`
}

// UnpackResponse model
//
// This is the verified message and the media type it arrived in.
type UnpackResponse struct {
	MediaType transport.MediaType   `json:"mediaType"`
	Message   *message.BasicMessage `json:"message"`
}

// PackRequest model
//
// This is used for packing a protocol message.
type PackRequest struct {
	MediaType transport.MediaType `json:"mediaType"`
	Message   json.RawMessage     `json:"message"`
	// Params are the packer parameters: `alg` and `kid` for signed envelopes, `alg` and `circuitId` for
	// zero-knowledge envelopes.
	Params map[string]interface{} `json:"params,omitempty"`
}

// PackResponse model
//
// This is the packed envelope.
type PackResponse struct {
	Envelope string `json:"envelope"`
}

// MediaTypesResponse model
//
// This is the list of media types the packager handles.
type MediaTypesResponse struct {
	MediaTypes []transport.MediaType `json:"mediaTypes"`
}
