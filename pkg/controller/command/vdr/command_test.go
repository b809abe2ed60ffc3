/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package vdr

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/command"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/did"
	"github.com/hyperledger/aries-zkcomm-go/pkg/vdr"
)

const aliceDID = "did:example:alice"

func TestNew(t *testing.T) {
	cmd := New(vdr.New())
	require.NotNil(t, cmd)
	require.Len(t, cmd.GetHandlers(), 2)
}

func TestResolveDID(t *testing.T) {
	registry := vdr.New(vdr.WithMethod(vdr.Static{aliceDID: did.BuildDoc(aliceDID)}))
	cmd := New(registry)

	t.Run("test resolve did - success", func(t *testing.T) {
		var b bytes.Buffer

		cmdErr := cmd.ResolveDID(&b, bytes.NewBufferString(`{"id":"did:example:alice#key-1"}`))
		require.NoError(t, cmdErr)

		doc, err := did.ParseDocument(b.Bytes())
		require.NoError(t, err)
		require.Equal(t, aliceDID, doc.ID)
	})

	t.Run("test resolve did - invalid request", func(t *testing.T) {
		var b bytes.Buffer

		cmdErr := cmd.ResolveDID(&b, bytes.NewBufferString("--"))
		require.Error(t, cmdErr)
		require.Equal(t, command.ValidationError, cmdErr.Type())
		require.Equal(t, InvalidRequestErrorCode, cmdErr.Code())
		require.Contains(t, cmdErr.Error(), "request decode")
	})

	t.Run("test resolve did - empty id", func(t *testing.T) {
		var b bytes.Buffer

		cmdErr := cmd.ResolveDID(&b, bytes.NewBufferString(`{}`))
		require.Error(t, cmdErr)
		require.Equal(t, InvalidRequestErrorCode, cmdErr.Code())
		require.Contains(t, cmdErr.Error(), errEmptyDIDID)
	})

	t.Run("test resolve did - not found", func(t *testing.T) {
		var b bytes.Buffer

		cmdErr := cmd.ResolveDID(&b, bytes.NewBufferString(`{"id":"did:example:bob"}`))
		require.Error(t, cmdErr)
		require.Equal(t, command.ValidationError, cmdErr.Type())
		require.Equal(t, ResolveDIDErrorCode, cmdErr.Code())
		require.ErrorIs(t, cmdErr, vdr.ErrNotFound)
	})

	t.Run("test resolve did - resolver failure", func(t *testing.T) {
		var b bytes.Buffer

		failing := New(did.ResolverFunc(func(context.Context, string) (*did.Doc, error) {
			return nil, errors.New("network down")
		}))

		cmdErr := failing.ResolveDID(&b, bytes.NewBufferString(`{"id":"did:example:bob"}`))
		require.Error(t, cmdErr)
		require.Equal(t, command.ExecuteError, cmdErr.Type())
		require.Contains(t, cmdErr.Error(), "network down")
	})
}

func TestPurgeCache(t *testing.T) {
	t.Run("test purge cache - success", func(t *testing.T) {
		var b bytes.Buffer

		cmd := New(vdr.New(vdr.WithCache(10, time.Minute)))

		cmdErr := cmd.PurgeCache(&b, nil)
		require.NoError(t, cmdErr)
		require.JSONEq(t, `{}`, b.String())
	})

	t.Run("test purge cache - resolver without cache", func(t *testing.T) {
		var b bytes.Buffer

		cmd := New(did.ResolverFunc(func(context.Context, string) (*did.Doc, error) {
			return nil, vdr.ErrNotFound
		}))

		cmdErr := cmd.PurgeCache(&b, nil)
		require.Error(t, cmdErr)
		require.Equal(t, PurgeCacheErrorCode, cmdErr.Code())
	})
}
