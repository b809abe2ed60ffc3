/*
Copyright SecureKey Technologies Inc. All Rights Reserved.
SPDX-License-Identifier: Apache-2.0
*/

package did

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"

	"github.com/btcsuite/btcutil/base58"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/multiformats/go-multibase"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-zkcomm-go/pkg/kms"
)

const testDID = "did:example:123456789abcdefghi"

func TestParse(t *testing.T) {
	d, err := Parse("did:iden3:polygon:mumbai:x3HstHLj2rTp6HHXk2WczYP7w3rpCsRbwCMeaQ2H2")
	require.NoError(t, err)
	require.Equal(t, "iden3", d.Method)
	require.Equal(t, "polygon:mumbai:x3HstHLj2rTp6HHXk2WczYP7w3rpCsRbwCMeaQ2H2", d.MethodSpecificID)
	require.Equal(t, "did:iden3:polygon:mumbai:x3HstHLj2rTp6HHXk2WczYP7w3rpCsRbwCMeaQ2H2", d.String())

	for _, bad := range []string{"", "did:", "did:Example:x", "urn:example:x", "did:example:"} {
		_, err = Parse(bad)
		require.Error(t, err, bad)
	}

	require.Equal(t, testDID, FromURL(testDID+"#key-1"))
	require.Equal(t, testDID, FromURL(testDID+"/7?contractAddress=1:0x00"))
	require.Equal(t, testDID, FromURL(testDID))
}

func TestParseDocument(t *testing.T) {
	secpKey, err := crypto.GenerateKey()
	require.NoError(t, err)

	compressed := crypto.CompressPubkey(&secpKey.PublicKey)
	uncompressed := crypto.FromECDSAPub(&secpKey.PublicKey)

	edPub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	multibaseKey, err := multibase.Encode(multibase.Base58BTC, append([]byte{0xed, 0x01}, edPub...))
	require.NoError(t, err)

	address := crypto.PubkeyToAddress(secpKey.PublicKey).Hex()

	doc := fmt.Sprintf(`{
	"@context": ["https://www.w3.org/ns/did/v1"],
	"id": %[1]q,
	"verificationMethod": [
		{"id": "#hex", "type": "EcdsaSecp256k1VerificationKey2019", "controller": %[1]q, "publicKeyHex": %[2]q},
		{"id": "#b58", "type": "Ed25519VerificationKey2018", "controller": %[1]q, "publicKeyBase58": %[3]q},
		{"id": "#b64", "type": "Ed25519VerificationKey2020", "controller": %[1]q, "publicKeyBase64": %[4]q},
		{"id": "#mb", "type": "Multikey", "controller": %[1]q, "publicKeyMultibase": %[5]q},
		{"id": "#jwk", "type": "JsonWebKey2020", "controller": %[1]q, "publicKeyJwk": {
			"kty": "EC", "crv": "secp256k1", "x": %[6]q, "y": %[7]q}},
		{"id": "#edjwk", "type": "JsonWebKey2020", "controller": %[1]q, "publicKeyJwk": {
			"kty": "OKP", "crv": "Ed25519", "x": %[8]q}},
		{"id": "#eth", "type": "EcdsaSecp256k1RecoveryMethod2020", "controller": %[1]q,
			"blockchainAccountId": "eip155:1:%[9]s"},
		{"id": "#none", "type": "EcdsaSecp256k1VerificationKey2019", "controller": %[1]q}
	],
	"authentication": [
		"#jwk",
		{"id": "#embedded", "type": "Ed25519VerificationKey2018", "publicKeyBase58": %[3]q},
		"#hex"
	],
	"service": [{"id": "#agent", "type": "Iden3CommServiceV1", "serviceEndpoint": "https://agent.example.com"}]
}`, testDID, hex.EncodeToString(compressed), base58.Encode(edPub),
		base64.StdEncoding.EncodeToString(edPub), multibaseKey,
		base64.RawURLEncoding.EncodeToString(uncompressed[1:33]),
		base64.RawURLEncoding.EncodeToString(uncompressed[33:]),
		base64.RawURLEncoding.EncodeToString(edPub), address)

	parsed, err := ParseDocument([]byte(doc))
	require.NoError(t, err)

	require.Equal(t, testDID, parsed.ID)
	require.Equal(t, []string{ContextV1}, parsed.Context)
	require.Len(t, parsed.VerificationMethod, 8)
	require.Len(t, parsed.Authentication, 3)
	require.True(t, parsed.Authentication[1].Embedded)
	require.False(t, parsed.Authentication[0].Embedded)
	require.Len(t, parsed.Service, 1)
	require.Equal(t, testDID+"#agent", parsed.Service[0].ID)
	require.Equal(t, "https://agent.example.com", parsed.Service[0].ServiceEndpoint)

	t.Run("key encodings", func(t *testing.T) {
		for _, tc := range []struct {
			id      string
			value   []byte
			keyType kms.KeyType
		}{
			{id: "#hex", value: compressed, keyType: kms.ECDSASecp256k1Type},
			{id: "#b58", value: edPub, keyType: kms.ED25519Type},
			{id: "#b64", value: edPub, keyType: kms.ED25519Type},
			{id: "#mb", value: edPub, keyType: kms.ED25519Type},
			{id: "#jwk", value: uncompressed, keyType: kms.ECDSASecp256k1Type},
			{id: "#edjwk", value: edPub, keyType: kms.ED25519Type},
		} {
			vm, ok := parsed.LookupVerificationMethod(tc.id)
			require.True(t, ok, tc.id)
			require.Equal(t, []byte(tc.value), vm.Value, tc.id)
			require.Equal(t, tc.keyType, vm.KeyType, tc.id)
			require.True(t, vm.HasKeyMaterial())
		}

		vm, ok := parsed.LookupVerificationMethod(testDID + "#edjwk")
		require.True(t, ok)
		require.NotNil(t, vm.JSONWebKey())

		vm, ok = parsed.LookupVerificationMethod("#eth")
		require.True(t, ok)
		require.Empty(t, vm.Value)
		require.Equal(t, "eip155:1:"+address, vm.BlockchainAccountID)
		require.Equal(t, kms.ECDSASecp256k1Type, vm.KeyType)
		require.True(t, vm.HasKeyMaterial())

		vm, ok = parsed.LookupVerificationMethod("#none")
		require.True(t, ok)
		require.False(t, vm.HasKeyMaterial())

		_, ok = parsed.LookupVerificationMethod("#missing")
		require.False(t, ok)
	})

	t.Run("authentication candidates come first and are de-duplicated", func(t *testing.T) {
		var ids []string

		for _, vm := range parsed.AuthenticationCandidates() {
			ids = append(ids, strings.TrimPrefix(vm.ID, testDID))
		}

		require.Equal(t, []string{"#jwk", "#embedded", "#hex", "#b58", "#b64", "#mb", "#edjwk", "#eth", "#none"}, ids)
	})

	t.Run("serialize and parse again", func(t *testing.T) {
		docBytes, err := parsed.JSONBytes()
		require.NoError(t, err)

		again, err := ParseDocument(docBytes)
		require.NoError(t, err)
		require.Equal(t, len(parsed.AuthenticationCandidates()), len(again.AuthenticationCandidates()))

		for _, vm := range parsed.AuthenticationCandidates() {
			other, ok := again.LookupVerificationMethod(vm.ID)
			require.True(t, ok, vm.ID)
			require.Equal(t, vm.Value, other.Value, vm.ID)
			require.Equal(t, vm.BlockchainAccountID, other.BlockchainAccountID, vm.ID)
			require.Equal(t, vm.KeyType, other.KeyType, vm.ID)
		}
	})
}

func TestParseDocumentErrors(t *testing.T) {
	for _, tc := range []struct {
		name   string
		doc    string
		errMsg string
	}{
		{name: "not json", doc: `{`, errMsg: "JSON marshalling of did doc bytes failed"},
		{name: "null", doc: `null`, errMsg: "document payload is not provided"},
		{name: "no id", doc: `{}`, errMsg: "did document has no id"},
		{name: "bad hex", doc: `{"id":"did:ex:1","verificationMethod":[{"id":"#k","publicKeyHex":"zz"}]}`,
			errMsg: "decode public key hex failed"},
		{name: "bad base58", doc: `{"id":"did:ex:1","verificationMethod":[{"id":"#k","publicKeyBase58":"0OIl"}]}`,
			errMsg: "decode public key base58 failed"},
		{name: "bad account", doc: `{"id":"did:ex:1","verificationMethod":[{"id":"#k","blockchainAccountId":"0x1"}]}`,
			errMsg: "invalid blockchain account id"},
		{name: "method without id", doc: `{"id":"did:ex:1","verificationMethod":[{"publicKeyHex":"00"}]}`,
			errMsg: "verification method has no id"},
		{name: "dangling authentication", doc: `{"id":"did:ex:1","authentication":["#k"]}`,
			errMsg: "authentication key did:ex:1#k not exist"},
		{name: "bad authentication entry", doc: `{"id":"did:ex:1","authentication":[1]}`,
			errMsg: "authentication entry of type float64 is not supported"},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseDocument([]byte(tc.doc))
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.errMsg)
		})
	}
}

func TestParseDocumentResolution(t *testing.T) {
	doc := `{"id":"did:ex:1","verificationMethod":[{"id":"#k","publicKeyHex":"0011"}]}`

	parsed, err := ParseDocumentResolution([]byte(`{"didDocument":` + doc + `,"didResolutionMetadata":{}}`))
	require.NoError(t, err)
	require.Equal(t, "did:ex:1", parsed.ID)

	parsed, err = ParseDocumentResolution([]byte(doc))
	require.NoError(t, err)
	require.Equal(t, "did:ex:1#k", parsed.VerificationMethod[0].ID)
}

func TestBuildDoc(t *testing.T) {
	vm := NewVerificationMethodFromBytes(testDID+"#k1", Ed25519VerificationKey2018, testDID, make([]byte, 32))
	eth := NewBlockchainAccountMethod(testDID+"#k2", EcdsaSecp256k1RecoveryMethod2020, testDID,
		"eip155:1:0x0000000000000000000000000000000000000001")

	doc := BuildDoc(testDID, WithVerificationMethod(*vm, *eth), WithAuthentication(*eth),
		WithService(Service{ID: testDID + "#s", Type: "t", ServiceEndpoint: "https://example.com"}))

	require.Equal(t, kms.ED25519Type, vm.KeyType)
	require.Equal(t, []string{ContextV1}, doc.Context)
	require.Equal(t, eth.ID, doc.AuthenticationCandidates()[0].ID)
	require.Equal(t, vm.ID, doc.AuthenticationCandidates()[1].ID)
	require.Len(t, doc.Service, 1)
}

func TestAddresses(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	expected := strings.ToLower(crypto.PubkeyToAddress(key.PublicKey).Hex())

	addr, err := AddressFromPublicKey(crypto.CompressPubkey(&key.PublicKey))
	require.NoError(t, err)
	require.Equal(t, expected, addr)

	addr, err = AddressFromPublicKey(crypto.FromECDSAPub(&key.PublicKey))
	require.NoError(t, err)
	require.Equal(t, expected, addr)

	_, err = AddressFromPublicKey([]byte{1, 2, 3})
	require.EqualError(t, err, "invalid secp256k1 public key length 3")

	addr, err = AccountAddress("eip155:80001:" + crypto.PubkeyToAddress(key.PublicKey).Hex())
	require.NoError(t, err)
	require.Equal(t, expected, addr)

	for _, bad := range []string{"eip155:1", ":1:0x00", "eip155:1:0x00", "eip155:1:0xzz00000000000000000000000000000000000000"} {
		_, err = AccountAddress(bad)
		require.Error(t, err, bad)
	}
}
