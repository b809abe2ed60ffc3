/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jws includes a Packer implementation to build and parse JWS compact envelopes. The sender is
// authenticated by a signature made with one of the verification methods of its DID document.
package jws

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-zkcomm-go/pkg/common/errkind"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/message"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/packer"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/transport"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/did"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/jose"
	"github.com/hyperledger/aries-zkcomm-go/pkg/kms"
)

var logger = log.New("zkcomm/packer/jws")

const (
	es256kSigLen       = 64
	es256krSigLen      = 65
	uncompressedKeyLen = 65
)

// Signer signs on behalf of the sender. data is the SHA-256 digest of the signing input for ES256K and
// ES256K-R, and the signing input itself for EdDSA.
type Signer func(ctx context.Context, data []byte) ([]byte, error)

// SigningParams are the pack parameters of the JWS packer.
type SigningParams struct {
	// Alg is the JWS algorithm: ES256K, ES256K-R or EdDSA. Required.
	Alg string
	// KID selects the verification method of the sender. Defaults to the first authentication candidate.
	KID string
	// DIDDoc is the sender's DID document. It is resolved from the message sender when not set.
	DIDDoc *did.Doc
	// Signer signs instead of the key manager. Required for blockchain account methods.
	Signer Signer
}

// MediaType of the params.
func (p *SigningParams) MediaType() transport.MediaType {
	return transport.MediaTypeSignedMessage
}

// Packer packs JWS envelopes.
type Packer struct {
	resolver   did.Resolver
	keyManager kms.KeyManager
}

// New returns a JWS Packer. resolver resolves sender DID documents; keyManager signs when no Signer is
// given in the pack parameters. Either may be nil when the corresponding path is never used.
func New(resolver did.Resolver, keyManager kms.KeyManager) *Packer {
	return &Packer{
		resolver:   resolver,
		keyManager: keyManager,
	}
}

// MediaType of JWS envelopes.
func (p *Packer) MediaType() transport.MediaType {
	return transport.MediaTypeSignedMessage
}

// Pack signs payload with the sender's verification method.
func (p *Packer) Pack(ctx context.Context, payload []byte, params packer.Params) ([]byte, error) {
	const op = "jws Pack"

	sp, ok := params.(*SigningParams)
	if !ok || sp == nil {
		return nil, errkind.Errorf(errkind.MissingOption, op, "expected *jws.SigningParams, got %T", params).
			WithMediaType(transport.MediaTypeSignedMessage.String())
	}

	if sp.Alg == "" {
		return nil, errkind.Missing(op, "alg")
	}

	msg, err := message.Parse(payload)
	if err != nil {
		return nil, errkind.New(errkind.MalformedMessage, op, err)
	}

	if msg.From == "" {
		return nil, errkind.Missing(op, "from")
	}

	doc := sp.DIDDoc
	if doc == nil {
		doc, err = p.resolve(ctx, op, msg.From)
		if err != nil {
			return nil, err
		}
	}

	vm, err := selectMethod(op, doc, sp.KID)
	if err != nil {
		return nil, err
	}

	if !vm.HasKeyMaterial() {
		return nil, errkind.Errorf(errkind.KeyMaterialNotFound, op, "verification method %s has no key material", vm.ID)
	}

	if err = checkAlg(op, sp.Alg, vm); err != nil {
		return nil, err
	}

	jws, err := jose.NewJWS(jose.Headers{
		jose.HeaderAlgorithm: sp.Alg,
		jose.HeaderKeyID:     vm.ID,
		jose.HeaderType:      transport.MediaTypeSignedMessage,
	}, payload)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	jws.Signature, err = p.sign(ctx, sp, vm, jws.SigningInput())
	if err != nil {
		return nil, err
	}

	logger.Debugf("packed message %s from %s with %s", msg.ID, vm.ID, sp.Alg)

	return []byte(jws.SerializeCompact()), nil
}

func (p *Packer) resolve(ctx context.Context, op, didURL string) (*did.Doc, error) {
	if p.resolver == nil {
		return nil, errkind.Missing(op, "resolver")
	}

	doc, err := p.resolver.Resolve(ctx, did.FromURL(didURL))
	if err != nil {
		return nil, errkind.New(errkind.FetchFailed, op, fmt.Errorf("resolve %s: %w", did.FromURL(didURL), err))
	}

	return doc, nil
}

func selectMethod(op string, doc *did.Doc, kid string) (*did.VerificationMethod, error) {
	if kid != "" {
		vm, ok := doc.LookupVerificationMethod(kid)
		if !ok {
			return nil, errkind.Errorf(errkind.NoVerificationMethod, op, "verification method %s not found in %s",
				kid, doc.ID)
		}

		return vm, nil
	}

	candidates := doc.AuthenticationCandidates()
	if len(candidates) == 0 {
		return nil, errkind.Errorf(errkind.NoVerificationMethod, op, "%s has no verification methods", doc.ID)
	}

	return &candidates[0], nil
}

func checkAlg(op, alg string, vm *did.VerificationMethod) error {
	var expected kms.KeyType

	switch alg {
	case jose.ES256K, jose.ES256KR:
		expected = kms.ECDSASecp256k1Type
	case jose.EdDSA:
		expected = kms.ED25519Type
	default:
		return errkind.Errorf(errkind.KeyMaterialNotFound, op, "unsupported JWS algorithm '%s'", alg)
	}

	if vm.KeyType != expected {
		return errkind.Errorf(errkind.KeyMaterialNotFound, op, "verification method %s holds a %s key, %s needs %s",
			vm.ID, vm.KeyType, alg, expected)
	}

	if vm.BlockchainAccountID != "" && len(vm.Value) == 0 && alg != jose.ES256KR {
		return errkind.Errorf(errkind.KeyMaterialNotFound, op, "blockchain account method %s only supports %s",
			vm.ID, jose.ES256KR)
	}

	return nil
}

func (p *Packer) sign(ctx context.Context, sp *SigningParams, vm *did.VerificationMethod,
	signingInput []byte) ([]byte, error) {
	const op = "jws Pack"

	data := signingInput
	if sp.Alg != jose.EdDSA {
		data = jose.Digest(signingInput)
	}

	var (
		sig []byte
		err error
	)

	switch {
	case sp.Signer != nil:
		sig, err = sp.Signer(ctx, data)
	case vm.BlockchainAccountID != "" && len(vm.Value) == 0:
		return nil, errkind.Errorf(errkind.SignerRequired, op, "blockchain account method %s needs a signer", vm.ID)
	case p.keyManager == nil:
		return nil, errkind.Errorf(errkind.SignerRequired, op, "no signer and no key manager")
	default:
		sig, err = p.keyManager.Sign(ctx, kmsKeyID(vm), data)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: sign: %w", op, err)
	}

	switch sp.Alg {
	case jose.ES256K:
		// key managers return the recovery byte as well.
		if len(sig) == es256krSigLen {
			sig = sig[:es256kSigLen]
		}
	case jose.ES256KR:
		if len(sig) != es256krSigLen {
			return nil, fmt.Errorf("%s: %s signer returned %d bytes", op, jose.ES256KR, len(sig))
		}
	}

	return sig, nil
}

// kmsKeyID returns the key manager id of vm. secp256k1 keys are always addressed by their compressed form.
func kmsKeyID(vm *did.VerificationMethod) kms.KeyID {
	pub := vm.Value

	if vm.KeyType == kms.ECDSASecp256k1Type && len(pub) == uncompressedKeyLen {
		if k, err := crypto.UnmarshalPubkey(pub); err == nil {
			pub = crypto.CompressPubkey(k)
		}
	}

	return kms.NewKeyID(vm.KeyType, pub)
}
