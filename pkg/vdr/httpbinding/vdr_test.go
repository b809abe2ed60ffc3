/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package httpbinding

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-zkcomm-go/pkg/vdr"
)

const doc = `{
  "@context": ["https://www.w3.org/ns/did/v1"],
  "id": "did:example:334455",
  "verificationMethod": [
    {
      "id": "did:example:334455#keys-1",
      "type": "Ed25519VerificationKey2018",
      "controller": "did:example:334455",
      "publicKeyBase58": "H3C2AVvLMv6gmMNam3uVAjZpfkcJCwDwnZn6z3wXmqPV"
    }
  ],
  "authentication": ["#keys-1"]
}`

const didResolutionData = `{
  "@context": "https://w3id.org/did-resolution/v1",
  "didDocument": ` + doc + `
}`

func serve(t *testing.T, path string, status int, contentType, body string) string {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		require.Equal(t, path, req.URL.String())

		if contentType != "" {
			res.Header().Add("Content-type", contentType)
		}

		res.WriteHeader(status)
		_, err := res.Write([]byte(body))
		require.NoError(t, err)
	}))
	t.Cleanup(srv.Close)

	return srv.URL
}

type tokenProvider struct {
	token string
	err   error
}

func (p *tokenProvider) AuthToken() (string, error) {
	return p.token, p.err
}

func TestNew(t *testing.T) {
	_, err := New("https://uniresolver.io/")
	require.NoError(t, err)

	_, err = New("invalid url")
	require.ErrorContains(t, err, "base URL invalid")

	r, err := New("https://uniresolver.io/", WithAccept(AcceptMethods("web", "key")),
		WithTimeout(time.Second))
	require.NoError(t, err)
	require.True(t, r.Accept("web"))
	require.False(t, r.Accept("polygonid"))
	require.Equal(t, time.Second, r.client.Timeout)

	r, err = New("https://uniresolver.io/")
	require.NoError(t, err)
	require.True(t, r.Accept("anything"))
}

func TestRead(t *testing.T) {
	ctx := context.Background()

	t.Run("document", func(t *testing.T) {
		r, err := New(serve(t, "/did:example:334455", http.StatusOK, didLDJson, doc), WithResolveAuthToken("tk1"))
		require.NoError(t, err)

		got, err := r.Read(ctx, "did:example:334455")
		require.NoError(t, err)
		require.Equal(t, "did:example:334455", got.ID)
		require.Len(t, got.Authentication, 1)
	})

	t.Run("resolution", func(t *testing.T) {
		r, err := New(serve(t, "/did:example:334455", http.StatusOK, "application/json", didResolutionData))
		require.NoError(t, err)

		got, err := r.Read(ctx, "did:example:334455")
		require.NoError(t, err)
		require.Equal(t, "did:example:334455", got.ID)
	})

	t.Run("base path", func(t *testing.T) {
		for _, base := range []string{"/document", "/document/"} {
			url := serve(t, "/document/did:example:334455", http.StatusOK, didJSON, doc)

			r, err := New(url + base)
			require.NoError(t, err)

			_, err = r.Read(ctx, "did:example:334455")
			require.NoError(t, err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		r, err := New(serve(t, "/did:example:334455", http.StatusOK, didLDJson, ""))
		require.NoError(t, err)

		_, err = r.Read(ctx, "did:example:334455")
		require.ErrorIs(t, err, vdr.ErrNotFound)
	})

	t.Run("not found", func(t *testing.T) {
		r, err := New(serve(t, "/did:example:334455", http.StatusNotFound, "", "no such did"))
		require.NoError(t, err)

		_, err = r.Read(ctx, "did:example:334455")
		require.ErrorIs(t, err, vdr.ErrNotFound)
	})

	t.Run("unsupported response", func(t *testing.T) {
		r, err := New(serve(t, "/did:example:334455", http.StatusForbidden, "", ""))
		require.NoError(t, err)

		_, err = r.Read(ctx, "did:example:334455")
		require.ErrorContains(t, err, "unsupported response from DID resolver")
	})

	t.Run("auth token provider", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
			require.Equal(t, "Bearer tk2", req.Header.Get("Authorization"))
			res.Header().Add("Content-type", didLDJson)
			_, _ = res.Write([]byte(doc))
		}))
		t.Cleanup(srv.Close)

		r, err := New(srv.URL, WithResolveAuthTokenProvider(&tokenProvider{token: "tk2"}))
		require.NoError(t, err)

		_, err = r.Read(ctx, "did:example:334455")
		require.NoError(t, err)

		r, err = New(srv.URL, WithResolveAuthTokenProvider(&tokenProvider{err: errors.New("expired")}))
		require.NoError(t, err)

		_, err = r.Read(ctx, "did:example:334455")
		require.ErrorContains(t, err, "expired")
	})

	t.Run("request failed", func(t *testing.T) {
		r, err := New("http://127.0.0.1:1", WithHTTPClient(&http.Client{}))
		require.NoError(t, err)

		_, err = r.Read(ctx, "did:example:334455")
		require.ErrorContains(t, err, "HTTP Get request failed")
	})
}

func TestRegistry(t *testing.T) {
	r, err := New(serve(t, "/did:example:334455", http.StatusOK, didLDJson, doc), WithAccept(AcceptMethods("example")))
	require.NoError(t, err)

	registry := vdr.New(vdr.WithMethod(r))

	got, err := registry.Resolve(context.Background(), "did:example:334455#keys-1")
	require.NoError(t, err)
	require.Equal(t, "did:example:334455", got.ID)
}
