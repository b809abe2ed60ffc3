/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package controller

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/command"
	packagercmd "github.com/hyperledger/aries-zkcomm-go/pkg/controller/command/packager"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/packager"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/packer/plain"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/transport"
	"github.com/hyperledger/aries-zkcomm-go/pkg/revocation"
	"github.com/hyperledger/aries-zkcomm-go/pkg/vdr"
)

func TestGetCommandHandlers(t *testing.T) {
	t.Run("all collaborators", func(t *testing.T) {
		handlers, err := GetCommandHandlers(&Provider{
			Packager:           packager.New(plain.New()),
			RevocationRegistry: revocation.NewRegistry(),
			VDR:                vdr.New(),
		})
		require.NoError(t, err)
		require.Len(t, handlers, 8)

		names := map[string]bool{}
		for _, h := range handlers {
			names[h.Name()] = true
		}

		require.Equal(t, map[string]bool{"packager": true, "revocation": true, "vdr": true}, names)
	})

	t.Run("only the packager", func(t *testing.T) {
		handlers, err := GetCommandHandlers(&Provider{Packager: packager.New(plain.New())})
		require.NoError(t, err)
		require.Len(t, handlers, 3)

		exec, ok := command.Lookup(handlers, packagercmd.CommandName, packagercmd.MediaTypesCommandMethod)
		require.True(t, ok)

		var b bytes.Buffer
		require.NoError(t, exec(&b, nil))
		require.Contains(t, b.String(), string(transport.MediaTypePlainMessage))

		_, ok = command.Lookup(handlers, "revocation", "ResolveStatus")
		require.False(t, ok)
	})

	t.Run("nothing to expose", func(t *testing.T) {
		_, err := GetCommandHandlers(&Provider{})
		require.ErrorIs(t, err, errNothingExposed)
	})
}

func TestGetRESTHandlers(t *testing.T) {
	t.Run("all collaborators", func(t *testing.T) {
		handlers, err := GetRESTHandlers(&Provider{
			Packager:           packager.New(plain.New()),
			RevocationRegistry: revocation.NewRegistry(),
			VDR:                vdr.New(),
		})
		require.NoError(t, err)
		require.Len(t, handlers, 8)

		paths := map[string]bool{}
		for _, h := range handlers {
			require.False(t, paths[h.Method()+" "+h.Path()], "duplicate route %s %s", h.Method(), h.Path())
			paths[h.Method()+" "+h.Path()] = true
		}
	})

	t.Run("nothing to expose", func(t *testing.T) {
		_, err := GetRESTHandlers(&Provider{})
		require.ErrorIs(t, err, errNothingExposed)
	})
}
