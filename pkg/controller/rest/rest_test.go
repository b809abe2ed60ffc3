/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package rest

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-zkcomm-go/pkg/common/errkind"
	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/command"
)

const testCode = command.Code(command.Revocation) + 1

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) genericErrorBody {
	t.Helper()

	var body genericErrorBody

	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))

	return body
}

func TestSendError(t *testing.T) {
	for _, tc := range []struct {
		name   string
		err    command.Error
		status int
	}{
		{"validation", command.NewValidationError(testCode, errors.New("bad request")), http.StatusBadRequest},
		{"execute", command.NewExecuteError(testCode, errors.New("upstream down")), http.StatusInternalServerError},
		{
			"kind error from a rejected envelope",
			command.NewKindError(testCode, errkind.New(errkind.SenderNotBound, "zkp Unpack", nil)),
			http.StatusBadRequest,
		},
		{
			"kind error from a failed fetch",
			command.NewKindError(testCode, errkind.New(errkind.FetchFailed, "issuer Resolve", errors.New("timeout"))),
			http.StatusInternalServerError,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()

			SendError(rr, tc.err)

			require.Equal(t, tc.status, rr.Code)
			require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			require.Equal(t, genericErrorBody{Code: testCode, Message: tc.err.Error()}, decodeBody(t, rr))
		})
	}
}

func TestSendHTTPStatusError(t *testing.T) {
	rr := httptest.NewRecorder()

	SendHTTPStatusError(rr, http.StatusUnauthorized, command.UnknownStatus, errors.New("missing token"))

	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Equal(t, genericErrorBody{Code: command.UnknownStatus, Message: "missing token"}, decodeBody(t, rr))

	t.Run("write failure is logged", func(t *testing.T) {
		SendHTTPStatusError(failingWriter{}, http.StatusBadRequest, command.UnknownStatus, errors.New("x"))
		SendError(failingWriter{}, command.NewExecuteError(command.UnknownStatus, errors.New("x")))
	})
}

func TestExecute(t *testing.T) {
	t.Run("command error", func(t *testing.T) {
		rr := httptest.NewRecorder()

		Execute(func(io.Writer, io.Reader) command.Error {
			return command.NewValidationError(1, errors.New("sample"))
		}, rr, nil)

		require.Equal(t, http.StatusBadRequest, rr.Code)
		require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		require.JSONEq(t, `{"code":1,"message":"sample"}`, rr.Body.String())
	})

	t.Run("success", func(t *testing.T) {
		rr := httptest.NewRecorder()

		Execute(func(rw io.Writer, req io.Reader) command.Error {
			_, err := io.Copy(rw, req)
			require.NoError(t, err)

			return nil
		}, rr, strings.NewReader(`{"echo":true}`))

		require.Equal(t, http.StatusOK, rr.Code)
		require.JSONEq(t, `{"echo":true}`, rr.Body.String())
	})
}

type failingWriter struct{}

func (failingWriter) Header() http.Header { return http.Header{} }

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func (failingWriter) WriteHeader(int) {}
