/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jose

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const jwsPartsCount = 3

// ErrMalformedCompact is returned when a compact serialization does not have three base64url parts.
var ErrMalformedCompact = errors.New("invalid compact serialization")

// JSONWebSignature is a compact serialized JWS (or a token of the same shape whose last part is not
// a signature).
type JSONWebSignature struct {
	ProtectedHeaders Headers
	Payload          []byte
	Signature        []byte

	rawHeader  string
	rawPayload string
}

// ParseCompact parses a `header.payload.signature` serialization. Nothing is verified.
func ParseCompact(compact string) (*JSONWebSignature, error) {
	parts := strings.Split(strings.TrimSpace(compact), ".")
	if len(parts) != jwsPartsCount {
		return nil, fmt.Errorf("%w: expected %d parts, got %d", ErrMalformedCompact, jwsPartsCount, len(parts))
	}

	headerBytes, err := DecodeSegment(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: decode header: %v", ErrMalformedCompact, err) //nolint:errorlint
	}

	headers := Headers{}

	err = json.Unmarshal(headerBytes, &headers)
	if err != nil {
		return nil, fmt.Errorf("%w: unmarshal header: %v", ErrMalformedCompact, err) //nolint:errorlint
	}

	payload, err := DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: decode payload: %v", ErrMalformedCompact, err) //nolint:errorlint
	}

	signature, err := DecodeSegment(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: decode signature: %v", ErrMalformedCompact, err) //nolint:errorlint
	}

	return &JSONWebSignature{
		ProtectedHeaders: headers,
		Payload:          payload,
		Signature:        signature,
		rawHeader:        parts[0],
		rawPayload:       parts[1],
	}, nil
}

// NewJWS builds a JWS over payload with the given protected headers. The signature is left empty.
func NewJWS(headers Headers, payload []byte) (*JSONWebSignature, error) {
	headerBytes, err := json.Marshal(headers)
	if err != nil {
		return nil, fmt.Errorf("marshal JWS header: %w", err)
	}

	return &JSONWebSignature{
		ProtectedHeaders: headers,
		Payload:          payload,
		rawHeader:        base64.RawURLEncoding.EncodeToString(headerBytes),
		rawPayload:       base64.RawURLEncoding.EncodeToString(payload),
	}, nil
}

// SigningInput returns `base64url(header).base64url(payload)` exactly as serialized.
func (s *JSONWebSignature) SigningInput() []byte {
	return []byte(s.rawHeader + "." + s.rawPayload)
}

// SerializeCompact returns the compact serialization of the JWS.
func (s *JSONWebSignature) SerializeCompact() string {
	return s.rawHeader + "." + s.rawPayload + "." + base64.RawURLEncoding.EncodeToString(s.Signature)
}

// DecodeSegment decodes a base64url segment, with or without padding.
func DecodeSegment(seg string) ([]byte, error) {
	b, err := base64.RawURLEncoding.DecodeString(seg)
	if err == nil {
		return b, nil
	}

	if b, err2 := base64.URLEncoding.DecodeString(seg); err2 == nil {
		return b, nil
	}

	return nil, err
}
