/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package packager

import (
	"context"

	"golang.org/x/exp/slices"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-zkcomm-go/pkg/common/errkind"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/message"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/packer"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/transport"
)

var logger = log.New("zkcomm/packager")

// Packager routes pack and unpack calls to the packer registered for a media type.
//
// Packers must be registered before the Packager is used concurrently; registration itself is not
// synchronized.
type Packager struct {
	packers map[transport.MediaType]packer.Packer
}

// New returns a new Packager with the given packers registered.
func New(packers ...packer.Packer) *Packager {
	p := &Packager{packers: map[transport.MediaType]packer.Packer{}}

	p.RegisterPackers(packers...)

	return p
}

// RegisterPackers registers packers by their media type. The last registration of a media type wins.
func (bp *Packager) RegisterPackers(packers ...packer.Packer) {
	for _, p := range packers {
		if _, ok := bp.packers[p.MediaType()]; ok {
			logger.Debugf("replacing packer for media type %s", p.MediaType())
		}

		bp.packers[p.MediaType()] = p
	}
}

// MediaTypes returns the registered media types in sorted order.
func (bp *Packager) MediaTypes() []transport.MediaType {
	mts := make([]transport.MediaType, 0, len(bp.packers))

	for mt := range bp.packers {
		mts = append(mts, mt)
	}

	slices.Sort(mts)

	return mts
}

// IsSupported reports whether a packer is registered for mediaType.
func (bp *Packager) IsSupported(mediaType transport.MediaType) bool {
	_, ok := bp.packers[mediaType]

	return ok
}

// Pack packs payload into an envelope of the given media type.
func (bp *Packager) Pack(ctx context.Context, mediaType transport.MediaType, payload []byte,
	params packer.Params) ([]byte, error) {
	p, err := bp.packerFor("packager Pack", mediaType)
	if err != nil {
		return nil, err
	}

	envelope, err := p.Pack(ctx, payload, params)
	if err != nil {
		return nil, err
	}

	return envelope, nil
}

// Unpack sniffs the envelope media type, unpacks it with the matching packer and returns both
// the message and the media type it arrived in.
func (bp *Packager) Unpack(ctx context.Context, envelope []byte) (*message.BasicMessage, transport.MediaType,
	error) {
	mediaType, err := GetMediaType(envelope)
	if err != nil {
		return nil, "", err
	}

	msg, err := bp.UnpackWithType(ctx, mediaType, envelope)
	if err != nil {
		return nil, "", err
	}

	return msg, mediaType, nil
}

// UnpackWithType unpacks the envelope with the packer registered for mediaType, without sniffing.
func (bp *Packager) UnpackWithType(ctx context.Context, mediaType transport.MediaType,
	envelope []byte) (*message.BasicMessage, error) {
	p, err := bp.packerFor("packager Unpack", mediaType)
	if err != nil {
		return nil, err
	}

	msg, err := p.Unpack(ctx, envelope)
	if err != nil {
		logger.Debugf("unpack of %s envelope failed: %s", mediaType, err)

		return nil, err
	}

	return msg, nil
}

func (bp *Packager) packerFor(op string, mediaType transport.MediaType) (packer.Packer, error) {
	p, ok := bp.packers[mediaType]
	if !ok {
		return nil, errkind.New(errkind.UnsupportedMediaType, op, nil).WithMediaType(mediaType.String())
	}

	return p, nil
}
