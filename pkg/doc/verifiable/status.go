/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package verifiable holds the credential status pointer and the revocation status it resolves to.
package verifiable

import (
	"encoding/json"
	"fmt"

	"github.com/iden3/go-merkletree-sql/v2"

	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/merkle"
)

// StatusType is the kind of a credential status, which selects the resolver.
type StatusType string

// Credential status types.
const (
	// SparseMerkleTreeProof statuses are fetched from the issuer directly.
	SparseMerkleTreeProof StatusType = "SparseMerkleTreeProof"
	// Iden3ReverseSparseMerkleTreeProof statuses are rebuilt from a reverse hash service.
	Iden3ReverseSparseMerkleTreeProof StatusType = "Iden3ReverseSparseMerkleTreeProof"
	// Iden3commRevocationStatusV1 statuses are requested from the issuer agent with a protocol message.
	Iden3commRevocationStatusV1 StatusType = "Iden3commRevocationStatusV1.0"
	// Iden3OnchainSparseMerkleTreeProof2023 statuses are read from an on-chain contract.
	Iden3OnchainSparseMerkleTreeProof2023 StatusType = "Iden3OnchainSparseMerkleTreeProof2023"
)

// CredentialStatus points at the revocation status of a credential.
type CredentialStatus struct {
	ID              string            `json:"id"`
	Type            StatusType        `json:"type"`
	RevocationNonce uint64            `json:"revocationNonce"`
	StatusIssuer    *CredentialStatus `json:"statusIssuer,omitempty"`
}

// ParseCredentialStatus decodes a credential status. id and type are required.
func ParseCredentialStatus(data []byte) (*CredentialStatus, error) {
	var s CredentialStatus

	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse credential status: %w", err)
	}

	if s.ID == "" || s.Type == "" {
		return nil, fmt.Errorf("parse credential status: 'id' and 'type' are required")
	}

	return &s, nil
}

// TreeState is a snapshot of the issuer's identity state and the tree roots it commits to, as decimal
// strings.
type TreeState struct {
	State              *string `json:"state"`
	ClaimsTreeRoot     *string `json:"claimsTreeRoot,omitempty"`
	RevocationTreeRoot *string `json:"revocationTreeRoot,omitempty"`
	RootOfRoots        *string `json:"rootOfRoots,omitempty"`
}

// NewTreeState returns the snapshot of the given hashes. Any may be nil.
func NewTreeState(state, claimsRoot, revocationRoot, rootOfRoots *merkletree.Hash) TreeState {
	str := func(h *merkletree.Hash) *string {
		if h == nil {
			return nil
		}

		s := h.BigInt().String()

		return &s
	}

	return TreeState{
		State:              str(state),
		ClaimsTreeRoot:     str(claimsRoot),
		RevocationTreeRoot: str(revocationRoot),
		RootOfRoots:        str(rootOfRoots),
	}
}

// RevocationRoot returns the revocation tree root, if set.
func (t TreeState) RevocationRoot() (*merkletree.Hash, error) {
	if t.RevocationTreeRoot == nil {
		return nil, fmt.Errorf("tree state has no revocation tree root")
	}

	return merkletree.NewHashFromString(*t.RevocationTreeRoot)
}

// RevocationStatus is a Merkle proof of (non-)membership of a revocation nonce in the issuer revocation
// tree, together with the issuer state the tree belongs to.
type RevocationStatus struct {
	Issuer TreeState    `json:"issuer"`
	MTP    merkle.Proof `json:"mtp"`
}

// Revoked reports whether the nonce is in the revocation tree.
func (s *RevocationStatus) Revoked() bool {
	return s.MTP.Existence
}

type rawProof struct {
	Existence *bool              `json:"existence"`
	Siblings  *[]string          `json:"siblings"`
	NodeAux   *merkle.RawNodeAux `json:"node_aux,omitempty"`
}

type rawRevocationStatus struct {
	Issuer *TreeState `json:"issuer"`
	MTP    *rawProof  `json:"mtp"`
}

// ParseRevocationStatus decodes a revocation status in the wire form, in which the proof carries every
// sibling. issuer.state, mtp.existence and mtp.siblings are required.
func ParseRevocationStatus(data []byte) (*RevocationStatus, error) {
	var raw rawRevocationStatus

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse revocation status: %w", err)
	}

	switch {
	case raw.MTP == nil:
		return nil, fmt.Errorf("parse revocation status: 'mtp' is required")
	case raw.MTP.Existence == nil:
		return nil, fmt.Errorf("parse revocation status: 'mtp.existence' is required")
	case raw.MTP.Siblings == nil:
		return nil, fmt.Errorf("parse revocation status: 'mtp.siblings' is required")
	case raw.Issuer == nil || raw.Issuer.State == nil:
		return nil, fmt.Errorf("parse revocation status: 'issuer.state' is required")
	}

	mtp, err := merkle.ConvertRawProof(&merkle.RawProof{
		Existence: *raw.MTP.Existence,
		Siblings:  *raw.MTP.Siblings,
		NodeAux:   raw.MTP.NodeAux,
	})
	if err != nil {
		return nil, fmt.Errorf("parse revocation status: %w", err)
	}

	return &RevocationStatus{Issuer: *raw.Issuer, MTP: *mtp}, nil
}
