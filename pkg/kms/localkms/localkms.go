/*
 Copyright SecureKey Technologies Inc. All Rights Reserved.

 SPDX-License-Identifier: Apache-2.0
*/

// Package localkms is an in-memory implementation of kms.KeyManager. Keys live only as long as the
// LocalKMS instance; it is meant for tests and single-process deployments.
package localkms

import (
	"context"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/hyperledger/aries-zkcomm-go/pkg/kms"
)

// ErrKeyNotFound is returned when the requested key is not held by the KMS.
var ErrKeyNotFound = errors.New("key not found")

// LocalKMS holds private keys in memory.
type LocalKMS struct {
	mu   sync.RWMutex
	keys map[kms.KeyID]interface{}
}

// New will create a new, empty LocalKMS.
func New() *LocalKMS {
	return &LocalKMS{keys: map[kms.KeyID]interface{}{}}
}

// Create generates a new key of type kt and returns its KeyID.
func (l *LocalKMS) Create(kt kms.KeyType) (kms.KeyID, error) {
	switch kt {
	case kms.ECDSASecp256k1Type:
		priv, err := crypto.GenerateKey()
		if err != nil {
			return kms.KeyID{}, fmt.Errorf("create: generate secp256k1 key: %w", err)
		}

		return l.ImportSecp256k1(priv), nil
	case kms.ED25519Type:
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return kms.KeyID{}, fmt.Errorf("create: generate ed25519 key: %w", err)
		}

		return l.ImportED25519(priv), nil
	default:
		return kms.KeyID{}, fmt.Errorf("create: key type '%s' not supported", kt)
	}
}

// ImportSecp256k1 stores priv and returns its KeyID. The KeyID is built from the compressed public key.
func (l *LocalKMS) ImportSecp256k1(priv *ecdsa.PrivateKey) kms.KeyID {
	kid := kms.NewKeyID(kms.ECDSASecp256k1Type, crypto.CompressPubkey(&priv.PublicKey))

	l.put(kid, priv)

	return kid
}

// ImportED25519 stores priv and returns its KeyID.
func (l *LocalKMS) ImportED25519(priv ed25519.PrivateKey) kms.KeyID {
	pub, _ := priv.Public().(ed25519.PublicKey) //nolint:errcheck

	kid := kms.NewKeyID(kms.ED25519Type, pub)

	l.put(kid, priv)

	return kid
}

func (l *LocalKMS) put(kid kms.KeyID, priv interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.keys[kid] = priv
}

func (l *LocalKMS) get(kid kms.KeyID) (interface{}, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	priv, ok := l.keys[kid]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, kid)
	}

	return priv, nil
}

// Sign signs data with the key kid.
func (l *LocalKMS) Sign(_ context.Context, kid kms.KeyID, data []byte) ([]byte, error) {
	priv, err := l.get(kid)
	if err != nil {
		return nil, err
	}

	switch k := priv.(type) {
	case *ecdsa.PrivateKey:
		sig, err := crypto.Sign(data, k)
		if err != nil {
			return nil, fmt.Errorf("sign: %w", err)
		}

		return sig, nil
	case ed25519.PrivateKey:
		return ed25519.Sign(k, data), nil
	default:
		return nil, fmt.Errorf("sign: unsupported key %T", priv)
	}
}

// PublicKey returns the public key bytes of kid.
func (l *LocalKMS) PublicKey(_ context.Context, kid kms.KeyID) ([]byte, error) {
	priv, err := l.get(kid)
	if err != nil {
		return nil, err
	}

	switch k := priv.(type) {
	case *ecdsa.PrivateKey:
		return crypto.CompressPubkey(&k.PublicKey), nil
	case ed25519.PrivateKey:
		pub, _ := k.Public().(ed25519.PublicKey) //nolint:errcheck

		return pub, nil
	default:
		return nil, fmt.Errorf("public key: unsupported key %T", priv)
	}
}
