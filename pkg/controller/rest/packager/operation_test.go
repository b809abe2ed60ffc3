/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package packager

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/command"
	cmdpackager "github.com/hyperledger/aries-zkcomm-go/pkg/controller/command/packager"
	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/rest"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/packager"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/packer/plain"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/transport"
)

const msg = `{"id":"1","type":"https://iden3-communication.io/basic/1.0/message","from":"did:example:alice",` +
	`"to":"did:example:bob","body":{}}`

func TestOperation_GetAPIHandlers(t *testing.T) {
	svc := New(packager.New(plain.New()))
	require.Len(t, svc.GetRESTHandlers(), 3)
}

func TestPackUnpack(t *testing.T) {
	svc := New(packager.New(plain.New()))

	t.Run("test media types - success", func(t *testing.T) {
		handler := lookupHandler(t, svc, MediaTypesPath, http.MethodGet)
		buf, code := sendRequestToHandler(t, handler, nil, MediaTypesPath)
		require.Equal(t, http.StatusOK, code)

		var res cmdpackager.MediaTypesResponse
		require.NoError(t, json.Unmarshal(buf.Bytes(), &res))
		require.Equal(t, []transport.MediaType{transport.MediaTypePlainMessage}, res.MediaTypes)
	})

	var envelope string

	t.Run("test pack - success", func(t *testing.T) {
		req, err := json.Marshal(&cmdpackager.PackRequest{MediaType: transport.MediaTypePlainMessage,
			Message: json.RawMessage(msg)})
		require.NoError(t, err)

		handler := lookupHandler(t, svc, PackPath, http.MethodPost)
		buf, code := sendRequestToHandler(t, handler, bytes.NewBuffer(req), PackPath)
		require.Equal(t, http.StatusOK, code)

		var res cmdpackager.PackResponse
		require.NoError(t, json.Unmarshal(buf.Bytes(), &res))
		require.NotEmpty(t, res.Envelope)

		envelope = res.Envelope
	})

	t.Run("test unpack - success", func(t *testing.T) {
		req, err := json.Marshal(&cmdpackager.UnpackRequest{Envelope: envelope})
		require.NoError(t, err)

		handler := lookupHandler(t, svc, UnpackPath, http.MethodPost)
		buf, code := sendRequestToHandler(t, handler, bytes.NewBuffer(req), UnpackPath)
		require.Equal(t, http.StatusOK, code)

		var res cmdpackager.UnpackResponse
		require.NoError(t, json.Unmarshal(buf.Bytes(), &res))
		require.Equal(t, transport.MediaTypePlainMessage, res.MediaType)
		require.Equal(t, "did:example:alice", res.Message.From)
	})

	t.Run("test unpack - invalid request", func(t *testing.T) {
		handler := lookupHandler(t, svc, UnpackPath, http.MethodPost)
		buf, code := sendRequestToHandler(t, handler, bytes.NewBufferString(`{}`), UnpackPath)
		require.Equal(t, http.StatusBadRequest, code)
		verifyError(t, cmdpackager.InvalidRequestErrorCode, "envelope", buf.Bytes())
	})

	t.Run("test pack - unsupported media type", func(t *testing.T) {
		req, err := json.Marshal(&cmdpackager.PackRequest{MediaType: transport.MediaTypeZKPMessage,
			Message: json.RawMessage(msg)})
		require.NoError(t, err)

		handler := lookupHandler(t, svc, PackPath, http.MethodPost)
		buf, code := sendRequestToHandler(t, handler, bytes.NewBuffer(req), PackPath)
		require.Equal(t, http.StatusBadRequest, code)
		verifyError(t, cmdpackager.PackErrorCode, "unsupported media type", buf.Bytes())
	})
}

func lookupHandler(t *testing.T, op *Operation, path, method string) rest.Handler {
	t.Helper()

	for _, h := range op.GetRESTHandlers() {
		if h.Path() == path && h.Method() == method {
			return h
		}
	}

	require.Fail(t, "unable to find handler")

	return nil
}

// sendRequestToHandler reads response from given http handle func.
func sendRequestToHandler(t *testing.T, handler rest.Handler, requestBody io.Reader,
	path string) (*bytes.Buffer, int) {
	t.Helper()

	req, err := http.NewRequest(handler.Method(), path, requestBody)
	require.NoError(t, err)

	router := mux.NewRouter()
	router.HandleFunc(handler.Path(), handler.Handle()).Methods(handler.Method())

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	return rr.Body, rr.Code
}

func verifyError(t *testing.T, expectedCode command.Code, expectedMsg string, data []byte) {
	t.Helper()

	errResponse := struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}{}
	require.NoError(t, json.Unmarshal(data, &errResponse))

	require.EqualValues(t, expectedCode, errResponse.Code)
	require.Contains(t, errResponse.Message, expectedMsg)
}
