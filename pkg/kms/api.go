/*
 Copyright SecureKey Technologies Inc. All Rights Reserved.

 SPDX-License-Identifier: Apache-2.0
*/

package kms

import (
	"context"
	"encoding/hex"
	"fmt"
)

// KeyType is the key system of a key.
type KeyType string

const (
	// ECDSASecp256k1Type is a secp256k1 key. Signatures are made over a 32 byte digest and returned as
	// 65 bytes R || S || V.
	ECDSASecp256k1Type KeyType = "Secp256k1"
	// ED25519Type is an Ed25519 key. Signatures are made over the whole message.
	ED25519Type KeyType = "ED25519"
)

// KeyID identifies a key by its key system and hex encoded public key.
type KeyID struct {
	Type KeyType
	ID   string
}

// NewKeyID returns the KeyID of the public key pub.
func NewKeyID(kt KeyType, pub []byte) KeyID {
	return KeyID{Type: kt, ID: hex.EncodeToString(pub)}
}

func (k KeyID) String() string {
	return fmt.Sprintf("%s:%s", k.Type, k.ID)
}

// KeyManager performs raw signing with keys it holds. Private key material never leaves it.
type KeyManager interface {
	// Sign signs data with the key kid. For secp256k1 keys data is the digest to sign.
	Sign(ctx context.Context, kid KeyID, data []byte) ([]byte, error)
	// PublicKey returns the public key bytes of kid.
	PublicKey(ctx context.Context, kid KeyID) ([]byte, error)
}
