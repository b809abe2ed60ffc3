/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package revocation

import (
	"encoding/json"

	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/verifiable"
)

// ResolveStatusRequest model
//
// This is used for resolving the revocation status of one credential.
type ResolveStatusRequest struct {
	// CredentialStatus is the `credentialStatus` object of the credential.
	CredentialStatus json.RawMessage `json:"credentialStatus"`
	// Options are the resolve inputs: `issuerDID`, `userDID` and `issuerState` (decimal or 0x hex).
	Options map[string]interface{} `json:"options,omitempty"`
}

// ResolveStatusResponse model
//
// This is the resolved revocation status.
type ResolveStatusResponse struct {
	Revoked bool                         `json:"revoked"`
	Status  *verifiable.RevocationStatus `json:"status"`
}

// FirstNonRevokedRequest model
//
// This is used for picking the first credential, in order, that is not revoked.
type FirstNonRevokedRequest struct {
	Candidates []ResolveStatusRequest `json:"candidates"`
}

// FirstNonRevokedResponse model
//
// This is the index of the first credential that is not revoked, with its status.
type FirstNonRevokedResponse struct {
	Index  int                          `json:"index"`
	Status *verifiable.RevocationStatus `json:"status"`
}

// StatusTypesResponse model
//
// This is the list of credential status types a resolver is registered for.
type StatusTypesResponse struct {
	StatusTypes []verifiable.StatusType `json:"statusTypes"`
}
