/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package zkp

import (
	"context"
	"errors"

	"github.com/hyperledger/aries-zkcomm-go/pkg/common/errkind"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/message"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/transport"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/circuits"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/did"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/jwz"
)

// Unpack verifies the envelope proof and returns the message.
//
// The identity named by the proof's public signals must be the message sender. The binding is checked
// before the proof itself, so a message whose from was altered fails as unbound; acceptance requires
// every check to pass. Circuits without a known identity signal are rejected.
func (p *Packer) Unpack(ctx context.Context, envelope []byte) (*message.BasicMessage, error) {
	const op = "zkp Unpack"

	token, err := jwz.Parse(string(envelope))
	if err != nil {
		return nil, errkind.New(errkind.MalformedEnvelope, op, err)
	}

	if typ, ok := token.Headers.Type(); ok && typ != transport.MediaTypeZKPMessage.String() {
		return nil, errkind.Errorf(errkind.MalformedEnvelope, op, "unexpected typ '%s'", typ).WithMediaType(typ)
	}

	circuit := string(token.CircuitID)

	vp, ok := p.verification[token.Method()]
	if !ok {
		return nil, errkind.Errorf(errkind.UnsupportedCircuit, op, "no verification method %s", token.Method()).
			WithCircuit(circuit)
	}

	msg, err := message.Parse(token.Payload)
	if err != nil {
		return nil, errkind.New(errkind.MalformedMessage, op, err)
	}

	if err = bindSender(token, msg); err != nil {
		logger.Warnf("message %s: %s", msg.ID, err)

		return nil, err
	}

	challenge, err := circuits.Challenge(token.CircuitID, token.ZKProof.PubSignals)
	if err != nil {
		return nil, errkind.New(errkind.ProofInvalid, op, err).WithCircuit(circuit)
	}

	if challenge.Cmp(token.MessageHash()) != 0 {
		return nil, errkind.Errorf(errkind.ProofInvalid, op, "proof challenge does not match message hash").
			WithCircuit(circuit)
	}

	if err = vp.Verifier.Verify(ctx, token.ZKProof, vp.Key); err != nil {
		return nil, errkind.New(errkind.ProofInvalid, op, err).WithCircuit(circuit)
	}

	if vp.VerifySignals != nil {
		if err = vp.VerifySignals(ctx, token.CircuitID, token.ZKProof.PubSignals); err != nil {
			return nil, errkind.New(errkind.StateVerificationFailed, op, err).WithCircuit(circuit)
		}
	}

	logger.Debugf("verified message %s from %s with %s", msg.ID, msg.From, token.Method())

	return msg, nil
}

func bindSender(token *jwz.Token, msg *message.BasicMessage) error {
	const op = "zkp Unpack"

	circuit := string(token.CircuitID)

	sender, err := circuits.SenderDID(token.CircuitID, token.ZKProof.PubSignals)
	if errors.Is(err, circuits.ErrUnknownCircuit) {
		return errkind.New(errkind.UnknownCircuit, op, err).WithCircuit(circuit)
	}

	if err != nil {
		return errkind.New(errkind.SenderNotBound, op, err).WithCircuit(circuit)
	}

	if msg.From == "" || did.FromURL(msg.From) != sender {
		return errkind.Errorf(errkind.SenderNotBound, op, "proof identity %s is not sender '%s'", sender, msg.From).
			WithCircuit(circuit)
	}

	return nil
}
