/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package policy

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-zkcomm-go/pkg/common/errkind"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/packager"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/packer/plain"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/transport"
)

func TestOptions(t *testing.T) {
	now := time.Unix(1700000000, 0)
	clock := func() time.Time { return now }

	t.Run("defaults", func(t *testing.T) {
		o := New()
		require.Equal(t, DefaultStateTransitionDelay, o.AcceptedStateTransitionDelay)
		require.Equal(t, DefaultProofGenerationDelay, o.AcceptedProofGenerationDelay)
		require.NotNil(t, o.Now)
	})

	t.Run("state transition delay", func(t *testing.T) {
		o := New(WithNow(clock), WithAcceptedStateTransitionDelay(time.Minute))

		require.NoError(t, o.CheckStateTransitionDelay(now.Add(-time.Minute)))
		require.NoError(t, o.CheckStateTransitionDelay(now.Add(time.Second)))

		err := o.CheckStateTransitionDelay(now.Add(-time.Minute - time.Second))
		require.ErrorIs(t, err, errkind.PolicyViolation)
		require.Contains(t, err.Error(), "state was replaced 1m1s ago")
	})

	t.Run("proof generation delay", func(t *testing.T) {
		o := New(WithNow(clock), WithAcceptedProofGenerationDelay(time.Hour))

		require.NoError(t, o.CheckProofGenerationDelay(now.Add(-time.Hour)))

		err := o.CheckProofGenerationDelay(now.Add(-2 * time.Hour))
		require.ErrorIs(t, err, errkind.PolicyViolation)
	})

	t.Run("expiration", func(t *testing.T) {
		o := New(WithNow(clock))

		require.NoError(t, o.CheckExpiration(now))
		require.ErrorIs(t, o.CheckExpiration(now.Add(-time.Second)), errkind.PolicyViolation)
	})
}

func TestPackager(t *testing.T) {
	now := time.Unix(1700000000, 0)
	ctx := context.Background()

	p := NewPackager(packager.New(plain.New()), WithNow(func() time.Time { return now }),
		WithAcceptedProofGenerationDelay(time.Hour))

	msg := func(extra string) []byte {
		return []byte(fmt.Sprintf(`{"id":"1","type":"t","body":{}%s}`, extra))
	}

	t.Run("no timestamps", func(t *testing.T) {
		m, mt, err := p.Unpack(ctx, msg(""))
		require.NoError(t, err)
		require.Equal(t, transport.MediaTypePlainMessage, mt)
		require.Equal(t, "1", m.ID)
	})

	t.Run("fresh message", func(t *testing.T) {
		m, err := p.UnpackWithType(ctx, transport.MediaTypePlainMessage,
			msg(fmt.Sprintf(`,"created_time":%d,"expires_time":%d`, now.Unix()-60, now.Unix()+60)))
		require.NoError(t, err)
		require.Equal(t, now.Unix()-60, *m.CreatedTime)
	})

	t.Run("old message", func(t *testing.T) {
		_, _, err := p.Unpack(ctx, msg(fmt.Sprintf(`,"created_time":%d`, now.Add(-2*time.Hour).Unix())))
		require.ErrorIs(t, err, errkind.PolicyViolation)

		_, err = p.UnpackWithType(ctx, transport.MediaTypePlainMessage,
			msg(fmt.Sprintf(`,"created_time":%d`, now.Add(-2*time.Hour).Unix())))
		require.ErrorIs(t, err, errkind.PolicyViolation)
	})

	t.Run("expired message", func(t *testing.T) {
		_, _, err := p.Unpack(ctx, msg(fmt.Sprintf(`,"expires_time":%d`, now.Unix()-1)))
		require.ErrorIs(t, err, errkind.PolicyViolation)
	})

	t.Run("unpack errors pass through", func(t *testing.T) {
		_, _, err := p.Unpack(ctx, []byte("@@"))
		require.True(t, errors.Is(err, errkind.MalformedEnvelope))

		_, err = p.UnpackWithType(ctx, transport.MediaTypeZKPMessage, msg(""))
		require.ErrorIs(t, err, errkind.UnsupportedMediaType)
	})

	t.Run("pack is the wrapped packager", func(t *testing.T) {
		out, err := p.Pack(ctx, transport.MediaTypePlainMessage, msg(""), plain.Params{})
		require.NoError(t, err)
		require.Contains(t, string(out), `"typ":"application/iden3comm-plain-json"`)
	})
}
