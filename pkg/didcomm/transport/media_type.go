/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package transport

import "fmt"

// MediaType is the declared envelope kind found in the `typ` field of a message or a protected header.
type MediaType string

const (
	// MediaTypePlainMessage is the media type of an unsigned, unencrypted JSON message.
	MediaTypePlainMessage MediaType = "application/iden3comm-plain-json"
	// MediaTypeSignedMessage is the media type of a JWS compact envelope.
	MediaTypeSignedMessage MediaType = "application/iden3comm-signed-json"
	// MediaTypeZKPMessage is the media type of a zero-knowledge proof token envelope.
	MediaTypeZKPMessage MediaType = "application/iden3-zkp-json"
)

// String returns the media type as a string.
func (m MediaType) String() string {
	return string(m)
}

// ParseMediaType returns the known media type matching typ.
func ParseMediaType(typ string) (MediaType, error) {
	switch mt := MediaType(typ); mt {
	case MediaTypePlainMessage, MediaTypeSignedMessage, MediaTypeZKPMessage:
		return mt, nil
	default:
		return "", fmt.Errorf("unsupported: typ=%s", typ)
	}
}
