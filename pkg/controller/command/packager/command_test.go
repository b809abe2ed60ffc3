/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package packager

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"testing"

	core "github.com/iden3/go-iden3-core/v2"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/command"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/packager"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/packer/plain"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/packer/zkp"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/transport"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/circuits"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/jwz"
	mockjwz "github.com/hyperledger/aries-zkcomm-go/pkg/mock/jwz"
)

func senderDID(t *testing.T) string {
	t.Helper()

	typ, err := core.BuildDIDType(core.DIDMethodPolygonID, core.Polygon, core.Mumbai)
	require.NoError(t, err)

	id, err := core.NewIDFromIdenState(typ, big.NewInt(7))
	require.NoError(t, err)

	did, err := core.ParseDIDFromID(*id)
	require.NoError(t, err)

	return did.String()
}

func newCommand() *Command {
	key := jwz.ProvingMethodKey{Alg: jwz.Groth16, CircuitID: circuits.AuthV2CircuitID}

	zk := zkp.New(
		map[jwz.ProvingMethodKey]zkp.VerificationParams{key: {Key: []byte("vk"), Verifier: &mockjwz.Verifier{}}},
		map[jwz.ProvingMethodKey]zkp.ProvingParams{key: {ProvingKey: []byte("pk"), Prover: &mockjwz.Prover{},
			Witness: &mockjwz.WitnessPreparer{}}})

	return New(packager.New(plain.New(), zk))
}

func exec(t *testing.T, fn command.Exec, request interface{}) (*bytes.Buffer, command.Error) {
	t.Helper()

	var req bytes.Buffer

	switch r := request.(type) {
	case string:
		req.WriteString(r)
	default:
		require.NoError(t, json.NewEncoder(&req).Encode(r))
	}

	var rw bytes.Buffer

	return &rw, fn(&rw, &req)
}

func TestCommand(t *testing.T) {
	c := newCommand()
	require.Len(t, c.GetHandlers(), 3)

	from := senderDID(t)
	msg := json.RawMessage(fmt.Sprintf(`{"id":"1","type":"https://iden3-communication.io/authorization/1.0/response",`+
		`"from":%q,"to":"did:example:verifier","body":{}}`, from))

	t.Run("media types", func(t *testing.T) {
		rw, err := exec(t, c.MediaTypes, "")
		require.Nil(t, err)

		var res MediaTypesResponse
		require.NoError(t, json.Unmarshal(rw.Bytes(), &res))
		require.Equal(t, []transport.MediaType{transport.MediaTypeZKPMessage, transport.MediaTypePlainMessage},
			res.MediaTypes)
	})

	for _, mt := range []transport.MediaType{transport.MediaTypePlainMessage, transport.MediaTypeZKPMessage} {
		t.Run("pack and unpack "+mt.String(), func(t *testing.T) {
			rw, cmdErr := exec(t, c.Pack, &PackRequest{MediaType: mt, Message: msg,
				Params: map[string]interface{}{}})
			require.Nil(t, cmdErr)

			var packed PackResponse
			require.NoError(t, json.Unmarshal(rw.Bytes(), &packed))
			require.NotEmpty(t, packed.Envelope)

			rw, cmdErr = exec(t, c.Unpack, &UnpackRequest{Envelope: packed.Envelope})
			require.Nil(t, cmdErr)

			var unpacked UnpackResponse
			require.NoError(t, json.Unmarshal(rw.Bytes(), &unpacked))
			require.Equal(t, mt, unpacked.MediaType)
			require.Equal(t, from, unpacked.Message.From)
		})
	}

	t.Run("zkp params", func(t *testing.T) {
		_, cmdErr := exec(t, c.Pack, &PackRequest{MediaType: transport.MediaTypeZKPMessage, Message: msg,
			Params: map[string]interface{}{"alg": "groth16", "circuitId": "authV2"}})
		require.Nil(t, cmdErr)

		_, cmdErr = exec(t, c.Pack, &PackRequest{MediaType: transport.MediaTypeZKPMessage, Message: msg,
			Params: map[string]interface{}{"circuitId": "credentialAtomicQuerySigV2"}})
		require.NotNil(t, cmdErr)
		require.Equal(t, PackErrorCode, cmdErr.Code())
		require.Equal(t, command.ValidationError, cmdErr.Type())
		require.Contains(t, cmdErr.Error(), "no proving method")

		_, cmdErr = exec(t, c.Pack, &PackRequest{MediaType: transport.MediaTypeZKPMessage, Message: msg,
			Params: map[string]interface{}{"unknown": true}})
		require.NotNil(t, cmdErr)
		require.Equal(t, InvalidRequestErrorCode, cmdErr.Code())
	})

	t.Run("unsupported media type", func(t *testing.T) {
		_, cmdErr := exec(t, c.Pack, &PackRequest{MediaType: transport.MediaTypeSignedMessage, Message: msg,
			Params: map[string]interface{}{"alg": "ES256K", "kid": "#key-1"}})
		require.NotNil(t, cmdErr)
		require.Equal(t, PackErrorCode, cmdErr.Code())
		require.Contains(t, cmdErr.Error(), "unsupported media type")

		_, cmdErr = exec(t, c.Pack, &PackRequest{MediaType: "application/unknown", Message: msg})
		require.NotNil(t, cmdErr)
		require.Equal(t, PackErrorCode, cmdErr.Code())
	})

	t.Run("rejected envelope", func(t *testing.T) {
		_, cmdErr := exec(t, c.Unpack, &UnpackRequest{Envelope: `{"typ":"application/iden3comm-plain-json"}`})
		require.NotNil(t, cmdErr)
		require.Equal(t, UnpackErrorCode, cmdErr.Code())
		require.Equal(t, command.ValidationError, cmdErr.Type())
		require.Contains(t, cmdErr.Error(), "malformed message")
	})

	t.Run("invalid requests", func(t *testing.T) {
		for _, tc := range []struct {
			fn      command.Exec
			request interface{}
			errMsg  string
		}{
			{c.Unpack, "{", "request decode"},
			{c.Unpack, &UnpackRequest{}, errEmptyEnvelope},
			{c.Pack, "[]", "request decode"},
			{c.Pack, &PackRequest{Message: msg}, errEmptyMediaType},
			{c.Pack, &PackRequest{MediaType: transport.MediaTypePlainMessage}, errEmptyMessage},
		} {
			_, cmdErr := exec(t, tc.fn, tc.request)
			require.NotNil(t, cmdErr)
			require.Equal(t, InvalidRequestErrorCode, cmdErr.Code())
			require.Equal(t, command.ValidationError, cmdErr.Type())
			require.Contains(t, cmdErr.Error(), tc.errMsg)
		}
	})
}
