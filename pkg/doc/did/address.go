/*
Copyright SecureKey Technologies Inc. All Rights Reserved.
SPDX-License-Identifier: Apache-2.0
*/

package did

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"
)

const (
	caip10Parts    = 3
	addressHexLen  = 40
	addressByteLen = 20
)

// AccountAddress returns the lower-cased 0x prefixed address of a CAIP-10 account id
// (`<namespace>:<reference>:<address>`).
func AccountAddress(accountID string) (string, error) {
	parts := strings.Split(accountID, ":")
	if len(parts) != caip10Parts || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("invalid blockchain account id: %s", accountID)
	}

	addr := strings.TrimPrefix(strings.ToLower(parts[2]), "0x")

	if len(addr) != addressHexLen {
		return "", fmt.Errorf("invalid blockchain account address: %s", parts[2])
	}

	if _, err := hex.DecodeString(addr); err != nil {
		return "", fmt.Errorf("invalid blockchain account address: %s", parts[2])
	}

	return "0x" + addr, nil
}

// AddressFromPublicKey derives the lower-cased 0x prefixed account address of a secp256k1 public key,
// compressed or not: the last 20 bytes of the keccak-256 hash of the uncompressed point.
func AddressFromPublicKey(pub []byte) (string, error) {
	var uncompressed []byte

	switch len(pub) {
	case 33: //nolint:gomnd
		key, err := crypto.DecompressPubkey(pub)
		if err != nil {
			return "", fmt.Errorf("decompress public key: %w", err)
		}

		uncompressed = crypto.FromECDSAPub(key)
	case 65: //nolint:gomnd
		uncompressed = pub
	default:
		return "", fmt.Errorf("invalid secp256k1 public key length %d", len(pub))
	}

	h := sha3.NewLegacyKeccak256()
	h.Write(uncompressed[1:]) //nolint:errcheck

	sum := h.Sum(nil)

	return "0x" + hex.EncodeToString(sum[len(sum)-addressByteLen:]), nil
}
