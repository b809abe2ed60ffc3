/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package packager

import (
	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/command/packager"
)

// unpackReq model
//
// This is used for unpack request.
//
// swagger:parameters unpackReq
type unpackReq struct { // nolint: unused,deadcode
	// in: body
	packager.UnpackRequest
}

// unpackRes model
//
// This is the unpacked message with the media type of its envelope.
//
// swagger:response unpackRes
type unpackRes struct { // nolint: unused,deadcode
	// in: body
	packager.UnpackResponse
}

// packReq model
//
// This is used for pack request.
//
// swagger:parameters packReq
type packReq struct { // nolint: unused,deadcode
	// in: body
	packager.PackRequest
}

// packRes model
//
// swagger:response packRes
type packRes struct { // nolint: unused,deadcode
	// in: body
	packager.PackResponse
}

// mediaTypesRes model
//
// swagger:response mediaTypesRes
type mediaTypesRes struct { // nolint: unused,deadcode
	// in: body
	packager.MediaTypesResponse
}
