/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jose

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
)

// JWS algorithms.
const (
	// ES256K is ECDSA over secp256k1 with SHA-256; the signature is R || S.
	ES256K = "ES256K"
	// ES256KR is ES256K with a recovery byte appended: R || S || V.
	ES256KR = "ES256K-R"
	// EdDSA is Ed25519.
	EdDSA = "EdDSA"
)

const (
	es256kSigLen  = 64
	es256krSigLen = 65

	// legacy recovery ids are offset by 27.
	legacyRecoveryOffset = 27
)

// ErrSignatureInvalid is returned when a signature does not verify.
var ErrSignatureInvalid = errors.New("signature invalid")

// Digest returns the SHA-256 digest the secp256k1 algorithms sign.
func Digest(signingInput []byte) []byte {
	d := sha256.Sum256(signingInput)

	return d[:]
}

// Verify verifies signature over signingInput with the raw public key pub for the algorithm alg.
// ES256K-R signatures are verified by recovering the signer key and comparing it with pub.
func Verify(alg string, signingInput, signature, pub []byte) error {
	switch alg {
	case ES256K:
		if len(signature) != es256kSigLen {
			return fmt.Errorf("%w: %s signature must be %d bytes", ErrSignatureInvalid, alg, es256kSigLen)
		}

		if !crypto.VerifySignature(pub, Digest(signingInput), signature) {
			return ErrSignatureInvalid
		}

		return nil
	case ES256KR:
		recovered, err := RecoverPublicKey(signingInput, signature)
		if err != nil {
			return err
		}

		if !sameSecp256k1Key(recovered, pub) {
			return ErrSignatureInvalid
		}

		return nil
	case EdDSA:
		if len(pub) != ed25519.PublicKeySize {
			return fmt.Errorf("%w: invalid Ed25519 public key length %d", ErrSignatureInvalid, len(pub))
		}

		if !ed25519.Verify(pub, signingInput, signature) {
			return ErrSignatureInvalid
		}

		return nil
	default:
		return fmt.Errorf("unsupported JWS algorithm '%s'", alg)
	}
}

// RecoverPublicKey recovers the uncompressed secp256k1 public key from an ES256K-R signature.
func RecoverPublicKey(signingInput, signature []byte) ([]byte, error) {
	if len(signature) != es256krSigLen {
		return nil, fmt.Errorf("%w: %s signature must be %d bytes", ErrSignatureInvalid, ES256KR, es256krSigLen)
	}

	sig := make([]byte, es256krSigLen)
	copy(sig, signature)

	if sig[64] >= legacyRecoveryOffset {
		sig[64] -= legacyRecoveryOffset
	}

	pub, err := crypto.Ecrecover(Digest(signingInput), sig)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err) //nolint:errorlint
	}

	// Ecrecover does not reject malleable high-S signatures.
	if !crypto.VerifySignature(pub, Digest(signingInput), sig[:64]) {
		return nil, ErrSignatureInvalid
	}

	return pub, nil
}

func sameSecp256k1Key(a, b []byte) bool {
	ka, err := unmarshalSecp256k1(a)
	if err != nil {
		return false
	}

	kb, err := unmarshalSecp256k1(b)
	if err != nil {
		return false
	}

	return ka.X.Cmp(kb.X) == 0 && ka.Y.Cmp(kb.Y) == 0
}

func unmarshalSecp256k1(pub []byte) (*ecdsa.PublicKey, error) {
	if len(pub) == 33 { //nolint:gomnd
		return crypto.DecompressPubkey(pub)
	}

	return crypto.UnmarshalPubkey(pub)
}
