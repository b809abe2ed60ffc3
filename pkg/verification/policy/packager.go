/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package policy

import (
	"context"
	"time"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/message"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/packager"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/transport"
)

var logger = log.New("zkcomm/policy")

// Packager is a packager that also enforces message age on unpack.
type Packager struct {
	*packager.Packager
	opts *Options
}

// NewPackager wraps p. Unpacked messages carrying created_time must be within the accepted proof
// generation delay, and messages carrying expires_time must not have expired.
func NewPackager(p *packager.Packager, opts ...Option) *Packager {
	return &Packager{Packager: p, opts: New(opts...)}
}

// Unpack unpacks the envelope and applies the policy to the message.
func (p *Packager) Unpack(ctx context.Context, envelope []byte) (*message.BasicMessage, transport.MediaType,
	error) {
	msg, mt, err := p.Packager.Unpack(ctx, envelope)
	if err != nil {
		return nil, "", err
	}

	if err = p.Check(msg); err != nil {
		logger.Warnf("rejected %s message %s from %s: %s", mt, msg.ID, msg.From, err)

		return nil, "", err
	}

	return msg, mt, nil
}

// UnpackWithType is Unpack without media type sniffing.
func (p *Packager) UnpackWithType(ctx context.Context, mediaType transport.MediaType,
	envelope []byte) (*message.BasicMessage, error) {
	msg, err := p.Packager.UnpackWithType(ctx, mediaType, envelope)
	if err != nil {
		return nil, err
	}

	if err = p.Check(msg); err != nil {
		return nil, err
	}

	return msg, nil
}

// Check applies the message age policy to msg.
func (p *Packager) Check(msg *message.BasicMessage) error {
	if msg.CreatedTime != nil {
		if err := p.opts.CheckProofGenerationDelay(time.Unix(*msg.CreatedTime, 0)); err != nil {
			return err
		}
	}

	if msg.ExpiresTime != nil {
		return p.opts.CheckExpiration(time.Unix(*msg.ExpiresTime, 0))
	}

	return nil
}
