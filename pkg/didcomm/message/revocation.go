/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package message

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/transport"
)

// RevocationStatusRequestMessageBody is the body of a revocation status request.
type RevocationStatusRequestMessageBody struct {
	RevocationNonce uint64 `json:"revocation_nonce"`
}

// NewRevocationStatusRequest builds a plain revocation status request for nonce, addressed from -> to.
func NewRevocationStatusRequest(from, to string, nonce uint64) (*BasicMessage, error) {
	body, err := json.Marshal(RevocationStatusRequestMessageBody{RevocationNonce: nonce})
	if err != nil {
		return nil, fmt.Errorf("marshal revocation status request body: %w", err)
	}

	id := uuid.New().String()

	return &BasicMessage{
		ID:       id,
		ThreadID: id,
		Typ:      transport.MediaTypePlainMessage,
		Type:     RevocationStatusRequestMessageType,
		Body:     body,
		From:     from,
		To:       to,
	}, nil
}
