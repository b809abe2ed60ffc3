/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jws

import (
	"context"
	"fmt"

	"github.com/hyperledger/aries-zkcomm-go/pkg/common/errkind"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/message"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/transport"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/did"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/jose"
)

// Unpack verifies the envelope signature against the sender's DID document and returns the message.
//
// The signer DID named by the header kid must be the message sender. When a kid is given only that
// verification method is tried; it is never substituted by another key of the document.
func (p *Packer) Unpack(ctx context.Context, envelope []byte) (*message.BasicMessage, error) {
	const op = "jws Unpack"

	jws, err := jose.ParseCompact(string(envelope))
	if err != nil {
		return nil, errkind.New(errkind.MalformedEnvelope, op, err)
	}

	if typ, ok := jws.ProtectedHeaders.Type(); ok && typ != transport.MediaTypeSignedMessage.String() {
		return nil, errkind.Errorf(errkind.MalformedEnvelope, op, "unexpected typ '%s'", typ).WithMediaType(typ)
	}

	alg, ok := jws.ProtectedHeaders.Algorithm()
	if !ok || alg == "" {
		return nil, errkind.Errorf(errkind.MalformedEnvelope, op, "header has no 'alg'")
	}

	msg, err := message.Parse(jws.Payload)
	if err != nil {
		return nil, errkind.New(errkind.MalformedMessage, op, err)
	}

	if msg.From == "" {
		return nil, errkind.Errorf(errkind.MalformedMessage, op, "signed message has no 'from'")
	}

	kid, hasKID := jws.ProtectedHeaders.KeyID()
	if hasKID && did.FromURL(kid) != did.FromURL(msg.From) {
		return nil, errkind.Errorf(errkind.SenderMismatch, op, "kid %s does not belong to sender %s", kid, msg.From)
	}

	doc, err := p.resolve(ctx, op, msg.From)
	if err != nil {
		return nil, err
	}

	var candidates []did.VerificationMethod

	if hasKID {
		vm, found := doc.LookupVerificationMethod(kid)
		if !found {
			return nil, errkind.Errorf(errkind.KeyNotFound, op, "kid %s not found in %s", kid, doc.ID)
		}

		candidates = []did.VerificationMethod{*vm}
	} else {
		candidates = doc.AuthenticationCandidates()
	}

	for i := range candidates {
		err = verifyWithMethod(alg, jws.SigningInput(), jws.Signature, &candidates[i])
		if err == nil {
			logger.Debugf("verified message %s from %s with %s", msg.ID, candidates[i].ID, alg)

			return msg, nil
		}

		logger.Debugf("verification of message %s with %s failed: %s", msg.ID, candidates[i].ID, err)
	}

	return nil, errkind.Errorf(errkind.SignatureInvalid, op, "no verification method of %s verifies the signature",
		doc.ID)
}

// verifyWithMethod verifies sig with the key material of vm. Blockchain account methods are verified by
// recovering the signer key and comparing its address with the account address.
func verifyWithMethod(alg string, signingInput, sig []byte, vm *did.VerificationMethod) error {
	if len(vm.Value) > 0 {
		return jose.Verify(alg, signingInput, sig, vm.Value)
	}

	if vm.BlockchainAccountID == "" {
		return fmt.Errorf("verification method %s has no key material", vm.ID)
	}

	if alg != jose.ES256KR {
		return fmt.Errorf("blockchain account method %s needs %s, got %s", vm.ID, jose.ES256KR, alg)
	}

	pub, err := jose.RecoverPublicKey(signingInput, sig)
	if err != nil {
		return err
	}

	recovered, err := did.AddressFromPublicKey(pub)
	if err != nil {
		return err
	}

	expected, err := did.AccountAddress(vm.BlockchainAccountID)
	if err != nil {
		return err
	}

	if recovered != expected {
		return fmt.Errorf("%w: signer %s is not account %s", jose.ErrSignatureInvalid, recovered, expected)
	}

	return nil
}
