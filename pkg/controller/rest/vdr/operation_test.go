/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package vdr

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/command/vdr"
	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/rest"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/did"
	vdrapi "github.com/hyperledger/aries-zkcomm-go/pkg/vdr"
)

const aliceDID = "did:example:alice"

func newOperation() *Operation {
	return New(vdrapi.New(
		vdrapi.WithMethod(vdrapi.Static{aliceDID: did.BuildDoc(aliceDID)}),
		vdrapi.WithCache(10, time.Minute)))
}

func TestOperation_GetAPIHandlers(t *testing.T) {
	require.Len(t, newOperation().GetRESTHandlers(), 2)
}

func TestResolveDID(t *testing.T) {
	svc := newOperation()
	handler := lookupHandler(t, svc, ResolveDIDPath, http.MethodGet)

	t.Run("test resolve did - success", func(t *testing.T) {
		for _, enc := range []*base64.Encoding{base64.URLEncoding, base64.StdEncoding} {
			buf, code := sendRequestToHandler(t, handler, nil,
				fmt.Sprintf("%s/%s", vdrDIDPath+"/resolve", enc.EncodeToString([]byte(aliceDID+"#key-1"))))
			require.Equal(t, http.StatusOK, code)

			doc, err := did.ParseDocument(buf.Bytes())
			require.NoError(t, err)
			require.Equal(t, aliceDID, doc.ID)
		}
	})

	t.Run("test resolve did - not base64", func(t *testing.T) {
		buf, code := sendRequestToHandler(t, handler, nil, vdrDIDPath+"/resolve/not-base64!")
		require.Equal(t, http.StatusBadRequest, code)
		verifyError(t, buf.Bytes(), vdr.InvalidRequestErrorCode, "failed to decode id")
	})

	t.Run("test resolve did - not found", func(t *testing.T) {
		buf, code := sendRequestToHandler(t, handler, nil,
			vdrDIDPath+"/resolve/"+base64.URLEncoding.EncodeToString([]byte("did:example:bob")))
		require.Equal(t, http.StatusBadRequest, code)
		verifyError(t, buf.Bytes(), vdr.ResolveDIDErrorCode, "does not exist")
	})
}

func TestPurgeCache(t *testing.T) {
	svc := newOperation()
	handler := lookupHandler(t, svc, CachePath, http.MethodDelete)

	buf, code := sendRequestToHandler(t, handler, nil, CachePath)
	require.Equal(t, http.StatusOK, code)
	require.JSONEq(t, `{}`, buf.String())
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

func verifyError(t *testing.T, data []byte, expectedCode interface{}, expectedMsg string) {
	t.Helper()

	errResponse := struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}{}
	require.NoError(t, json.Unmarshal(data, &errResponse))

	require.EqualValues(t, expectedCode, errResponse.Code)
	require.Contains(t, errResponse.Message, expectedMsg)
}
