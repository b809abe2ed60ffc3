/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package message defines the protocol message carried inside every envelope.
package message

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/transport"
)

// ProtocolType is a URI-like purpose tag of a message.
type ProtocolType string

// Iden3Protocol is the base URI of the protocol messages.
const Iden3Protocol = "https://iden3-communication.io/"

// Protocol message types.
const (
	// AuthorizationRequestMessageType requests a zero-knowledge authorization response.
	AuthorizationRequestMessageType ProtocolType = Iden3Protocol + "authorization/1.0/request"
	// AuthorizationResponseMessageType carries a zero-knowledge authorization response.
	AuthorizationResponseMessageType ProtocolType = Iden3Protocol + "authorization/1.0/response"
	// RevocationStatusRequestMessageType requests the revocation status of a credential from its issuer agent.
	RevocationStatusRequestMessageType ProtocolType = Iden3Protocol + "revocation/1.0/request-status"
	// RevocationStatusResponseMessageType carries a revocation status.
	RevocationStatusResponseMessageType ProtocolType = Iden3Protocol + "revocation/1.0/status"
)

// BasicMessage is the protocol message. It is immutable once unpacked.
type BasicMessage struct {
	ID          string              `json:"id"`
	Typ         transport.MediaType `json:"typ,omitempty"`
	Type        ProtocolType        `json:"type"`
	ThreadID    string              `json:"thid,omitempty"`
	Body        json.RawMessage     `json:"body,omitempty"`
	From        string              `json:"from,omitempty"`
	To          string              `json:"to,omitempty"`
	CreatedTime *int64              `json:"created_time,omitempty"`
	ExpiresTime *int64              `json:"expires_time,omitempty"`
}

// Parse decodes a message and validates its shape. Type-incorrect fields are rejected, never coerced.
//
// id and type must be non-empty strings and body must be a JSON object. from, to, thid and typ are
// optional but must be strings when present.
func Parse(data []byte) (*BasicMessage, error) {
	var raw map[string]json.RawMessage

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}

	if raw == nil {
		return nil, fmt.Errorf("parse message: message is null")
	}

	for _, field := range []string{"id", "type"} {
		s, err := stringField(raw, field)
		if err != nil {
			return nil, err
		}

		if s == "" {
			return nil, fmt.Errorf("parse message: field '%s' is required", field)
		}
	}

	for _, field := range []string{"typ", "thid", "from", "to"} {
		if _, err := stringField(raw, field); err != nil {
			return nil, err
		}
	}

	body, ok := raw["body"]
	if !ok {
		return nil, fmt.Errorf("parse message: field 'body' is required")
	}

	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("parse message: field 'body' must be an object")
	}

	msg := &BasicMessage{}

	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("parse message: %w", err)
	}

	return msg, nil
}

func stringField(raw map[string]json.RawMessage, field string) (string, error) {
	v, ok := raw[field]
	if !ok {
		return "", nil
	}

	var s string

	if err := json.Unmarshal(v, &s); err != nil {
		return "", fmt.Errorf("parse message: field '%s' must be a string", field)
	}

	return s, nil
}

// DecodeBody unmarshals the message body into v.
func (m *BasicMessage) DecodeBody(v interface{}) error {
	if len(m.Body) == 0 {
		return fmt.Errorf("message %s has no body", m.ID)
	}

	return json.Unmarshal(m.Body, v)
}
