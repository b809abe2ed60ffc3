/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package merkle holds the canonical form of sparse Merkle tree (non-)membership proofs. The tree itself
// lives elsewhere; only proofs cross the wire.
package merkle

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/iden3/go-merkletree-sql/v2"
)

// NodeAux is the leaf found on the path of a non-membership proof whose key differs from the one asked for.
type NodeAux struct {
	Key   *merkletree.Hash
	Value *merkletree.Hash
}

// Proof is a compressed Merkle proof: only non-zero siblings are stored, NotEmpties records per level
// whether the sibling was non-zero.
type Proof struct {
	Existence  bool
	Depth      uint
	NotEmpties []byte
	Siblings   []*merkletree.Hash
	NodeAux    *NodeAux
}

// RawNodeAux is NodeAux as decimal strings.
type RawNodeAux struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// RawProof is the uncompressed wire form: every sibling, zero or not, as a decimal string.
type RawProof struct {
	Existence bool        `json:"existence"`
	Siblings  []string    `json:"siblings"`
	NodeAux   *RawNodeAux `json:"node_aux,omitempty"`
}

// ConvertRawProof builds the canonical proof: zero siblings are dropped and flagged in NotEmpties, depth is
// the raw sibling count. NodeAux is kept only for non-membership proofs.
func ConvertRawProof(raw *RawProof) (*Proof, error) {
	p := &Proof{
		Existence:  raw.Existence,
		Depth:      uint(len(raw.Siblings)),
		NotEmpties: make([]byte, (len(raw.Siblings)+7)/8), //nolint:gomnd
	}

	for i, s := range raw.Siblings {
		h, err := merkletree.NewHashFromString(s)
		if err != nil {
			return nil, fmt.Errorf("convert proof: sibling %d: %w", i, err)
		}

		if isZero(h) {
			continue
		}

		setBit(p.NotEmpties, uint(i))
		p.Siblings = append(p.Siblings, h)
	}

	if raw.NodeAux != nil && !raw.Existence {
		key, err := merkletree.NewHashFromString(raw.NodeAux.Key)
		if err != nil {
			return nil, fmt.Errorf("convert proof: node_aux key: %w", err)
		}

		value, err := merkletree.NewHashFromString(raw.NodeAux.Value)
		if err != nil {
			return nil, fmt.Errorf("convert proof: node_aux value: %w", err)
		}

		p.NodeAux = &NodeAux{Key: key, Value: value}
	}

	return p, nil
}

// NewProof builds a canonical proof from every sibling on the path.
func NewProof(existence bool, allSiblings []*merkletree.Hash, aux *NodeAux) *Proof {
	p := &Proof{
		Existence:  existence,
		Depth:      uint(len(allSiblings)),
		NotEmpties: make([]byte, (len(allSiblings)+7)/8), //nolint:gomnd
	}

	for i, h := range allSiblings {
		if h == nil || isZero(h) {
			continue
		}

		setBit(p.NotEmpties, uint(i))
		p.Siblings = append(p.Siblings, h)
	}

	if !existence {
		p.NodeAux = aux
	}

	return p
}

// AllSiblings re-expands the zero siblings.
func (p *Proof) AllSiblings() []*merkletree.Hash {
	all := make([]*merkletree.Hash, 0, p.Depth)
	next := 0

	for i := uint(0); i < p.Depth; i++ {
		if testBit(p.NotEmpties, i) && next < len(p.Siblings) {
			all = append(all, p.Siblings[next])
			next++

			continue
		}

		all = append(all, &merkletree.HashZero)
	}

	return all
}

// Raw returns the uncompressed wire form.
func (p *Proof) Raw() *RawProof {
	all := p.AllSiblings()

	raw := &RawProof{Existence: p.Existence, Siblings: make([]string, len(all))}

	for i, h := range all {
		raw.Siblings[i] = h.BigInt().String()
	}

	if p.NodeAux != nil {
		raw.NodeAux = &RawNodeAux{Key: p.NodeAux.Key.BigInt().String(), Value: p.NodeAux.Value.BigInt().String()}
	}

	return raw
}

// MarshalJSON writes the uncompressed wire form.
func (p Proof) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Raw())
}

// UnmarshalJSON reads the uncompressed wire form.
func (p *Proof) UnmarshalJSON(data []byte) error {
	var raw RawProof

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	converted, err := ConvertRawProof(&raw)
	if err != nil {
		return err
	}

	*p = *converted

	return nil
}

// Tree converts the proof to the merkletree representation.
func (p *Proof) Tree() (*merkletree.Proof, error) {
	var aux *merkletree.NodeAux
	if p.NodeAux != nil {
		aux = &merkletree.NodeAux{Key: p.NodeAux.Key, Value: p.NodeAux.Value}
	}

	return merkletree.NewProofFromData(p.Existence, p.AllSiblings(), aux)
}

// Verify checks the proof for key and value against root. For non-membership value is ignored.
func (p *Proof) Verify(root *merkletree.Hash, key, value *big.Int) error {
	if root == nil {
		return errors.New("verify proof: root is nil")
	}

	tp, err := p.Tree()
	if err != nil {
		return fmt.Errorf("verify proof: %w", err)
	}

	if !merkletree.VerifyProof(root, tp, key, value) {
		return errors.New("verify proof: proof does not match root")
	}

	return nil
}

func isZero(h *merkletree.Hash) bool {
	return *h == merkletree.HashZero
}

func setBit(bitmap []byte, n uint) {
	bitmap[n/8] |= 1 << (n % 8) //nolint:gomnd
}

func testBit(bitmap []byte, n uint) bool {
	if int(n/8) >= len(bitmap) { //nolint:gomnd
		return false
	}

	return bitmap[n/8]&(1<<(n%8)) != 0 //nolint:gomnd
}
