/*
Copyright SecureKey Technologies Inc. All Rights Reserved.
SPDX-License-Identifier: Apache-2.0
*/

package did

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/base58"
	"github.com/ethereum/go-ethereum/crypto"
	gojose "github.com/go-jose/go-jose/v3"
	"github.com/multiformats/go-multibase"

	"github.com/hyperledger/aries-zkcomm-go/pkg/kms"
)

// Verification method types with a fixed key system.
const (
	EcdsaSecp256k1VerificationKey2019 = "EcdsaSecp256k1VerificationKey2019"
	EcdsaSecp256k1RecoveryMethod2020  = "EcdsaSecp256k1RecoveryMethod2020"
	Ed25519VerificationKey2018        = "Ed25519VerificationKey2018"
	Ed25519VerificationKey2020        = "Ed25519VerificationKey2020"
	JSONWebKey2020                    = "JsonWebKey2020"
	Multikey                          = "Multikey"
)

const (
	crvSecp256k1 = "secp256k1"
	crvEd25519   = "Ed25519"

	secp256k1CoordLen = 32
)

// multicodec prefixes of multibase encoded keys.
var (
	secp256k1PubCodec = []byte{0xe7, 0x01} //nolint:gochecknoglobals
	ed25519PubCodec   = []byte{0xed, 0x01} //nolint:gochecknoglobals
)

// NewVerificationMethodFromBytes creates a new verification method with the given raw public key.
func NewVerificationMethodFromBytes(id, kType, controller string, value []byte) *VerificationMethod {
	vm := &VerificationMethod{
		ID:         id,
		Type:       kType,
		Controller: controller,
		Value:      value,
	}

	vm.KeyType = keyTypeOf(kType, "", value)

	return vm
}

// NewBlockchainAccountMethod creates a new verification method that identifies a secp256k1 key by its
// CAIP-10 blockchain account id (`eip155:<chainId>:<address>`).
func NewBlockchainAccountMethod(id, kType, controller, accountID string) *VerificationMethod {
	return &VerificationMethod{
		ID:                  id,
		Type:                kType,
		Controller:          controller,
		KeyType:             kms.ECDSASecp256k1Type,
		BlockchainAccountID: accountID,
	}
}

func decodeVerificationMethod(docID string, rawVM map[string]interface{}) (*VerificationMethod, error) {
	vm := &VerificationMethod{
		ID:         absoluteID(docID, stringEntry(rawVM[jsonldID])),
		Type:       stringEntry(rawVM[jsonldType]),
		Controller: stringEntry(rawVM[jsonldController]),
	}

	if vm.ID == "" {
		return nil, errors.New("verification method has no id")
	}

	crv, err := decodeKey(vm, rawVM)
	if err != nil {
		return nil, fmt.Errorf("verification method %s: %w", vm.ID, err)
	}

	if vm.KeyType == "" {
		vm.KeyType = keyTypeOf(vm.Type, crv, vm.Value)
	}

	return vm, nil
}

// decodeKey fills in the key material of vm from the one key encoding field present in rawVM. A method
// without any encoding field is left without key material. It returns the JWK curve when there is one.
func decodeKey(vm *VerificationMethod, rawVM map[string]interface{}) (string, error) {
	switch {
	case stringEntry(rawVM[jsonldPublicKeyBase58]) != "":
		vm.Value = base58.Decode(stringEntry(rawVM[jsonldPublicKeyBase58]))
		if len(vm.Value) == 0 {
			return "", errors.New("decode public key base58 failed")
		}
	case stringEntry(rawVM[jsonldPublicKeyBase64]) != "":
		value, err := decodeBase64(stringEntry(rawVM[jsonldPublicKeyBase64]))
		if err != nil {
			return "", fmt.Errorf("decode public key base64 failed: %w", err)
		}

		vm.Value = value
	case stringEntry(rawVM[jsonldPublicKeyHex]) != "":
		value, err := hex.DecodeString(strings.TrimPrefix(stringEntry(rawVM[jsonldPublicKeyHex]), "0x"))
		if err != nil {
			return "", fmt.Errorf("decode public key hex failed: %w", err)
		}

		vm.Value = value
	case stringEntry(rawVM[jsonldPublicKeyMultibase]) != "":
		return "", decodeMultibase(vm, stringEntry(rawVM[jsonldPublicKeyMultibase]))
	case stringEntry(rawVM[jsonldBlockchainAccountID]) != "":
		accountID := stringEntry(rawVM[jsonldBlockchainAccountID])

		if _, err := AccountAddress(accountID); err != nil {
			return "", err
		}

		vm.BlockchainAccountID = accountID
		vm.KeyType = kms.ECDSASecp256k1Type
	case rawVM[jsonldPublicKeyJwk] != nil:
		return decodePublicKeyJwk(vm, rawVM[jsonldPublicKeyJwk])
	}

	return "", nil
}

func decodeBase64(s string) ([]byte, error) {
	for _, enc := range []*base64.Encoding{
		base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding,
	} {
		if b, err := enc.DecodeString(s); err == nil {
			return b, nil
		}
	}

	return nil, errors.New("illegal base64 data")
}

func decodeMultibase(vm *VerificationMethod, s string) error {
	_, value, err := multibase.Decode(s)
	if err != nil {
		return fmt.Errorf("decode public key multibase failed: %w", err)
	}

	switch {
	case hasPrefix(value, secp256k1PubCodec):
		vm.Value = value[len(secp256k1PubCodec):]
		vm.KeyType = kms.ECDSASecp256k1Type
	case hasPrefix(value, ed25519PubCodec):
		vm.Value = value[len(ed25519PubCodec):]
		vm.KeyType = kms.ED25519Type
	default:
		vm.Value = value
	}

	return nil
}

func hasPrefix(b, prefix []byte) bool {
	return len(b) > len(prefix) && string(b[:len(prefix)]) == string(prefix)
}

type rawJWK struct {
	Kty string `json:"kty"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
}

func decodePublicKeyJwk(vm *VerificationMethod, jwkValue interface{}) (string, error) {
	jwkBytes, err := json.Marshal(jwkValue)
	if err != nil {
		return "", fmt.Errorf("failed to marshal '%s', cause: %w ", jsonldPublicKeyJwk, err)
	}

	raw := &rawJWK{}

	err = json.Unmarshal(jwkBytes, raw)
	if err != nil {
		return "", fmt.Errorf("unmarshal JWK: %w", err)
	}

	// go-jose does not know secp256k1, the point is assembled from its coordinates.
	if raw.Crv == crvSecp256k1 {
		vm.Value, err = secp256k1FromJWK(raw)
		vm.KeyType = kms.ECDSASecp256k1Type

		return raw.Crv, err
	}

	jwk := &gojose.JSONWebKey{}

	err = jwk.UnmarshalJSON(jwkBytes)
	if err != nil {
		return "", fmt.Errorf("unmarshal JWK: %w", err)
	}

	switch k := jwk.Key.(type) {
	case ed25519.PublicKey:
		vm.Value = k
		vm.KeyType = kms.ED25519Type
	case *ecdsa.PublicKey:
		vm.Value = append([]byte{0x04}, append(pad32(k.X.Bytes()), pad32(k.Y.Bytes())...)...) //nolint:gomnd
		// not a key system the packers sign with, kept under its curve name.
		vm.KeyType = kms.KeyType(k.Curve.Params().Name)
	default:
		return "", fmt.Errorf("JWK key type %T is not supported", jwk.Key)
	}

	vm.jsonWebKey = jwk

	return raw.Crv, nil
}

func secp256k1FromJWK(raw *rawJWK) ([]byte, error) {
	x, err := base64.RawURLEncoding.DecodeString(raw.X)
	if err != nil {
		return nil, fmt.Errorf("decode JWK x: %w", err)
	}

	y, err := base64.RawURLEncoding.DecodeString(raw.Y)
	if err != nil {
		return nil, fmt.Errorf("decode JWK y: %w", err)
	}

	if len(x) > secp256k1CoordLen || len(y) > secp256k1CoordLen {
		return nil, errors.New("JWK coordinates are too long for secp256k1")
	}

	value := append([]byte{0x04}, append(pad32(x), pad32(y)...)...) //nolint:gomnd

	if _, err = crypto.UnmarshalPubkey(value); err != nil {
		return nil, fmt.Errorf("JWK is not a secp256k1 point: %w", err)
	}

	return value, nil
}

func pad32(b []byte) []byte {
	if len(b) >= secp256k1CoordLen {
		return b
	}

	return append(make([]byte, secp256k1CoordLen-len(b)), b...)
}

func keyTypeOf(vmType, crv string, value []byte) kms.KeyType {
	switch {
	case vmType == EcdsaSecp256k1VerificationKey2019, vmType == EcdsaSecp256k1RecoveryMethod2020,
		crv == crvSecp256k1:
		return kms.ECDSASecp256k1Type
	case vmType == Ed25519VerificationKey2018, vmType == Ed25519VerificationKey2020, crv == crvEd25519:
		return kms.ED25519Type
	}

	// the method type does not imply a key system, fall back on the key length.
	switch len(value) {
	case 33, 65: //nolint:gomnd
		return kms.ECDSASecp256k1Type
	case ed25519.PublicKeySize:
		return kms.ED25519Type
	}

	return ""
}
