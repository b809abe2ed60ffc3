/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package revocation

import (
	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/command/revocation"
)

// resolveStatusReq model
//
// This is used for resolving the revocation status of a credential.
//
// swagger:parameters resolveStatusReq
type resolveStatusReq struct { // nolint: unused,deadcode
	// in: body
	revocation.ResolveStatusRequest
}

// resolveStatusRes model
//
// swagger:response resolveStatusRes
type resolveStatusRes struct { // nolint: unused,deadcode
	// in: body
	revocation.ResolveStatusResponse
}

// firstNonRevokedReq model
//
// This is used for picking the first credential that is not revoked.
//
// swagger:parameters firstNonRevokedReq
type firstNonRevokedReq struct { // nolint: unused,deadcode
	// in: body
	revocation.FirstNonRevokedRequest
}

// firstNonRevokedRes model
//
// swagger:response firstNonRevokedRes
type firstNonRevokedRes struct { // nolint: unused,deadcode
	// in: body
	revocation.FirstNonRevokedResponse
}

// statusTypesRes model
//
// swagger:response statusTypesRes
type statusTypesRes struct { // nolint: unused,deadcode
	// in: body
	revocation.StatusTypesResponse
}
