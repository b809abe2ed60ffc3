/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package zkcomm exchanges iden3 messages over plain, signed and zero-knowledge proof envelopes, and resolves
// the revocation status of the credentials they carry.
//
// Packages for end developer usage
//
// pkg/didcomm/packager: packs a message into the envelope of a media type and unpacks any supported envelope,
// detecting its media type.
//
// pkg/didcomm/packer/plain, pkg/didcomm/packer/jws, pkg/didcomm/packer/zkp: the envelope packers.
//
// pkg/verification/policy: decorates a packager with the identity state acceptance policy.
//
// pkg/revocation: the registry of credential status resolvers, keyed by status type. The resolvers live in
// pkg/revocation/issuer, pkg/revocation/agent, pkg/revocation/onchain and pkg/revocation/rhs.
//
// pkg/controller: the command and REST controllers served by cmd/zkcomm-rest.
//
// Basic workflow
//
//	1) Create the packers and a packager.New with them.
//	2) Register status resolvers with revocation.NewRegistry.
//	3) Unpack incoming envelopes and resolve the status of credentials they carry.
package zkcomm
