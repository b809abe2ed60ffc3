/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package rhs

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/iden3/go-iden3-crypto/poseidon"
	"github.com/iden3/go-merkletree-sql/v2"
)

// NodeType is the kind of a reverse hash service node.
type NodeType int

// Node types.
const (
	NodeTypeUnknown NodeType = iota
	// NodeTypeMiddle has children [left, right].
	NodeTypeMiddle
	// NodeTypeLeaf has children [key, value, 1].
	NodeTypeLeaf
	// NodeTypeState has children [claimsTreeRoot, revocationTreeRoot, rootOfRoots].
	NodeTypeState
)

func (t NodeType) String() string {
	switch t {
	case NodeTypeMiddle:
		return "middle"
	case NodeTypeLeaf:
		return "leaf"
	case NodeTypeState:
		return "state"
	default:
		return "unknown"
	}
}

const (
	middleArity = 2
	leafArity   = 3
)

// ProofNode is a node published to the reverse hash service: the Poseidon hash of its children.
type ProofNode struct {
	Hash     *merkletree.Hash
	Children []*merkletree.Hash
}

// NewProofNode hashes children into a node.
func NewProofNode(children ...*merkletree.Hash) (*ProofNode, error) {
	h, err := hashChildren(children)
	if err != nil {
		return nil, err
	}

	return &ProofNode{Hash: h, Children: children}, nil
}

// Type classifies the node by its children.
func (n *ProofNode) Type() NodeType {
	switch len(n.Children) {
	case middleArity:
		return NodeTypeMiddle
	case leafArity:
		if n.Children[2].BigInt().Cmp(big.NewInt(1)) == 0 {
			return NodeTypeLeaf
		}

		return NodeTypeState
	default:
		return NodeTypeUnknown
	}
}

// Validate checks that the node hash is the hash of its children.
func (n *ProofNode) Validate() error {
	if n.Hash == nil {
		return fmt.Errorf("node has no hash")
	}

	h, err := hashChildren(n.Children)
	if err != nil {
		return err
	}

	if *h != *n.Hash {
		return fmt.Errorf("node hash %s does not match its children", n.Hash.Hex())
	}

	return nil
}

func hashChildren(children []*merkletree.Hash) (*merkletree.Hash, error) {
	if len(children) == 0 {
		return nil, fmt.Errorf("node has no children")
	}

	ints := make([]*big.Int, len(children))

	for i, c := range children {
		if c == nil {
			return nil, fmt.Errorf("node child %d is nil", i)
		}

		ints[i] = c.BigInt()
	}

	h, err := poseidon.Hash(ints)
	if err != nil {
		return nil, fmt.Errorf("hash node: %w", err)
	}

	return merkletree.NewHashFromBigInt(h)
}

type jsonNode struct {
	Hash     string   `json:"hash"`
	Children []string `json:"children"`
}

// MarshalJSON writes hashes as hex.
func (n ProofNode) MarshalJSON() ([]byte, error) {
	jn := jsonNode{Children: make([]string, len(n.Children))}

	if n.Hash != nil {
		jn.Hash = n.Hash.Hex()
	}

	for i, c := range n.Children {
		jn.Children[i] = c.Hex()
	}

	return json.Marshal(jn)
}

// UnmarshalJSON reads hex hashes.
func (n *ProofNode) UnmarshalJSON(data []byte) error {
	var jn jsonNode

	if err := json.Unmarshal(data, &jn); err != nil {
		return err
	}

	h, err := merkletree.NewHashFromHex(jn.Hash)
	if err != nil {
		return fmt.Errorf("node hash: %w", err)
	}

	children := make([]*merkletree.Hash, len(jn.Children))

	for i, c := range jn.Children {
		children[i], err = merkletree.NewHashFromHex(c)
		if err != nil {
			return fmt.Errorf("node child %d: %w", i, err)
		}
	}

	n.Hash = h
	n.Children = children

	return nil
}
