/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package vdr

import (
	"encoding/json"
)

// resolveDIDReq model
//
// This is used for resolving a DID document.
//
// swagger:parameters resolveDIDReq
type resolveDIDReq struct { // nolint: unused,deadcode
	// The base64 URL encoded DID or DID URL.
	//
	// in: path
	// required: true
	ID string `json:"id"`
}

// resolveDIDRes model
//
// This is the resolved DID document.
//
// swagger:response resolveDIDRes
type resolveDIDRes struct { // nolint: unused,deadcode
	// in: body
	json.RawMessage
}
