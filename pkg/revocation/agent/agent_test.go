/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-zkcomm-go/pkg/common/errkind"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/message"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/packager"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/packer/plain"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/transport"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/verifiable"
	"github.com/hyperledger/aries-zkcomm-go/pkg/revocation"
)

const (
	issuerDID = "did:polygonid:polygon:mumbai:2qCU58EJgrELNZCDkSU23dQHZsBgAFWLNpNezo1g6b"
	userDID   = "did:polygonid:polygon:mumbai:2qFDziX3k3h7To2jDJbQiXFtcozbgSNNasTt5HeQTk"
)

func agentServer(t *testing.T, reply func(req *message.BasicMessage) string) *httptest.Server {
	t.Helper()

	router := mux.NewRouter()
	router.HandleFunc("/agent", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req message.BasicMessage

		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		_, _ = w.Write([]byte(reply(&req)))
	}).Methods(http.MethodPost)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return srv
}

func statusResponse(req *message.BasicMessage, body string) string {
	return fmt.Sprintf(`{"id":"%s","typ":"%s","thid":"%s","type":"%s","from":"%s","to":"%s","body":%s}`,
		uuid.New().String(), transport.MediaTypePlainMessage, req.ThreadID, message.RevocationStatusResponseMessageType,
		req.To, req.From, body)
}

func TestResolve(t *testing.T) {
	ctx := context.Background()

	var got *message.BasicMessage

	srv := agentServer(t, func(req *message.BasicMessage) string {
		got = req

		var body message.RevocationStatusRequestMessageBody

		require.NoError(t, req.DecodeBody(&body))

		if body.RevocationNonce == 7 {
			return statusResponse(req, `{"issuer":{"state":"1"},"mtp":{"existence":true,"siblings":["0","3"]}}`)
		}

		return statusResponse(req, `{"issuer":{"state":"1"},"mtp":{"existence":false,"siblings":[]}}`)
	})

	status := &verifiable.CredentialStatus{ID: srv.URL + "/agent", Type: verifiable.Iden3commRevocationStatusV1,
		RevocationNonce: 7}

	r := New(WithHTTPClient(srv.Client()))

	rs, err := r.Resolve(ctx, status, revocation.WithIssuerDID(issuerDID), revocation.WithUserDID(userDID))
	require.NoError(t, err)
	require.True(t, rs.Revoked())
	require.Equal(t, uint(2), rs.MTP.Depth)

	require.Equal(t, message.RevocationStatusRequestMessageType, got.Type)
	require.Equal(t, userDID, got.From)
	require.Equal(t, issuerDID, got.To)
	require.Equal(t, got.ID, got.ThreadID)

	_, err = uuid.Parse(got.ID)
	require.NoError(t, err)

	t.Run("not revoked through a packager", func(t *testing.T) {
		s := *status
		s.RevocationNonce = 8

		rs, err := New(WithHTTPClient(srv.Client()), WithUnpacker(packager.New(plain.New()))).
			Resolve(ctx, &s, revocation.WithIssuerDID(issuerDID), revocation.WithUserDID(userDID))
		require.NoError(t, err)
		require.False(t, rs.Revoked())
	})
}

func TestResolveErrors(t *testing.T) {
	ctx := context.Background()
	opts := []revocation.ResolveOption{revocation.WithIssuerDID(issuerDID), revocation.WithUserDID(userDID)}

	t.Run("options", func(t *testing.T) {
		r := New()
		status := &verifiable.CredentialStatus{ID: "https://agent.example.com", RevocationNonce: 1}

		_, err := r.Resolve(ctx, status, revocation.WithUserDID(userDID))
		require.ErrorIs(t, err, errkind.MissingOption)
		require.Contains(t, err.Error(), "option=issuerDID")

		_, err = r.Resolve(ctx, status, revocation.WithIssuerDID(issuerDID))
		require.ErrorIs(t, err, errkind.MissingOption)
		require.Contains(t, err.Error(), "option=userDID")

		_, err = r.Resolve(ctx, nil, opts...)
		require.ErrorIs(t, err, errkind.MissingOption)

		_, err = r.Resolve(ctx, &verifiable.CredentialStatus{ID: "agent"}, opts...)
		require.ErrorIs(t, err, errkind.MalformedStatusID)
	})

	for _, tc := range []struct {
		name  string
		reply func(req *message.BasicMessage) string
		kind  errkind.Kind
	}{
		{name: "not a message", reply: func(*message.BasicMessage) string { return `[]` },
			kind: errkind.MalformedResponse},
		{name: "wrong type", reply: func(*message.BasicMessage) string {
			return fmt.Sprintf(`{"id":"1","type":"%s","body":{}}`, message.RevocationStatusRequestMessageType)
		}, kind: errkind.MalformedResponse},
		{name: "bad status body", reply: func(req *message.BasicMessage) string {
			return statusResponse(req, `{"mtp":{"siblings":["x"]}}`)
		}, kind: errkind.MalformedResponse},
		{name: "empty status body", reply: func(req *message.BasicMessage) string {
			return statusResponse(req, `{}`)
		}, kind: errkind.MalformedResponse},
		{name: "error status body", reply: func(req *message.BasicMessage) string {
			return statusResponse(req, `{"error":"status service unavailable"}`)
		}, kind: errkind.MalformedResponse},
		{name: "status body without issuer state", reply: func(req *message.BasicMessage) string {
			return statusResponse(req, `{"mtp":{"existence":false,"siblings":[]}}`)
		}, kind: errkind.MalformedResponse},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			srv := agentServer(t, tc.reply)

			rs, err := New(WithHTTPClient(srv.Client())).Resolve(ctx,
				&verifiable.CredentialStatus{ID: srv.URL + "/agent"}, opts...)
			require.ErrorIs(t, err, tc.kind)
			require.Nil(t, rs)
		})
	}

	t.Run("agent error", func(t *testing.T) {
		srv := agentServer(t, func(*message.BasicMessage) string { return "" })

		_, err := New(WithHTTPClient(srv.Client())).Resolve(ctx,
			&verifiable.CredentialStatus{ID: srv.URL + "/missing"}, opts...)
		require.ErrorIs(t, err, errkind.FetchFailed)
	})
}
