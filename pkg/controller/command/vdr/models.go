/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package vdr

// IDArg model
//
// This is used for querying a DID by its ID.
type IDArg struct {
	// ID is the DID or a DID URL.
	ID string `json:"id"`
}
