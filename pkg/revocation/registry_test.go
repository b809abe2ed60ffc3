/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package revocation

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-zkcomm-go/pkg/common/errkind"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/merkle"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/verifiable"
)

func fixed(revoked bool, err error) ResolverFunc {
	return func(context.Context, *verifiable.CredentialStatus, ...ResolveOption) (*verifiable.RevocationStatus,
		error) {
		if err != nil {
			return nil, err
		}

		return &verifiable.RevocationStatus{MTP: merkle.Proof{Existence: revoked}}, nil
	}
}

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()

	t.Run("miss", func(t *testing.T) {
		_, ok := r.Get(verifiable.SparseMerkleTreeProof)
		require.False(t, ok)

		_, err := r.Resolve(ctx, &verifiable.CredentialStatus{Type: verifiable.SparseMerkleTreeProof})
		require.ErrorIs(t, err, errkind.ResolverNotFound)
		require.Contains(t, err.Error(), "statusType=SparseMerkleTreeProof")

		_, err = r.Resolve(ctx, nil)
		require.ErrorIs(t, err, errkind.MissingOption)
	})

	t.Run("last registration wins", func(t *testing.T) {
		r.Register(verifiable.SparseMerkleTreeProof, fixed(true, nil))
		r.Register(verifiable.SparseMerkleTreeProof, fixed(false, nil))
		r.Register(verifiable.Iden3commRevocationStatusV1, fixed(true, nil))

		s, err := r.Resolve(ctx, &verifiable.CredentialStatus{Type: verifiable.SparseMerkleTreeProof})
		require.NoError(t, err)
		require.False(t, s.Revoked())

		require.Equal(t, []verifiable.StatusType{verifiable.Iden3commRevocationStatusV1,
			verifiable.SparseMerkleTreeProof}, r.StatusTypes())
	})

	t.Run("options reach the resolver", func(t *testing.T) {
		var got *ResolveOpts

		r.Register(verifiable.Iden3OnchainSparseMerkleTreeProof2023, ResolverFunc(func(_ context.Context,
			_ *verifiable.CredentialStatus, opts ...ResolveOption) (*verifiable.RevocationStatus, error) {
			got = NewResolveOpts(opts...)

			return &verifiable.RevocationStatus{}, nil
		}))

		_, err := r.Resolve(ctx, &verifiable.CredentialStatus{Type: verifiable.Iden3OnchainSparseMerkleTreeProof2023},
			WithIssuerDID("did:issuer"), WithUserDID("did:user"), WithIssuerState(big.NewInt(5)))
		require.NoError(t, err)
		require.Equal(t, &ResolveOpts{IssuerDID: "did:issuer", UserDID: "did:user", IssuerState: big.NewInt(5)}, got)
	})
}

func TestResolveWithFallback(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	r.Register(verifiable.Iden3ReverseSparseMerkleTreeProof, fixed(false, errkind.New(errkind.ProofNotAvailable,
		"rhs", nil)))
	r.Register(verifiable.SparseMerkleTreeProof, fixed(true, nil))

	status := &verifiable.CredentialStatus{
		Type:         verifiable.Iden3ReverseSparseMerkleTreeProof,
		StatusIssuer: &verifiable.CredentialStatus{Type: verifiable.SparseMerkleTreeProof},
	}

	require.Len(t, Candidates(status), 2)
	require.Empty(t, Candidates(nil))

	s, err := r.ResolveWithFallback(ctx, status)
	require.NoError(t, err)
	require.True(t, s.Revoked())

	_, err = r.ResolveWithFallback(ctx, &verifiable.CredentialStatus{Type: verifiable.Iden3ReverseSparseMerkleTreeProof})
	require.ErrorIs(t, err, errkind.ProofNotAvailable)

	_, err = r.ResolveWithFallback(ctx, nil)
	require.ErrorIs(t, err, errkind.MissingOption)

	t.Run("fallback chain is bounded", func(t *testing.T) {
		loop := &verifiable.CredentialStatus{Type: verifiable.Iden3ReverseSparseMerkleTreeProof}
		loop.StatusIssuer = loop

		require.Len(t, Candidates(loop), maxFallbacks)
	})
}

func TestFirstNonRevoked(t *testing.T) {
	ctx := context.Background()
	r := NewRegistry()
	r.Register("revoked", fixed(true, nil))
	r.Register("valid", fixed(false, nil))
	r.Register("broken", fixed(false, errkind.New(errkind.ContractCallFailed, "onchain", errors.New("rpc"))))

	c := func(t verifiable.StatusType) Candidate {
		return Candidate{Status: &verifiable.CredentialStatus{Type: t}}
	}

	t.Run("continues past failures", func(t *testing.T) {
		i, s, err := FirstNonRevoked(ctx, r, []Candidate{c("broken"), c("unknown"), c("revoked"), c("valid")})
		require.NoError(t, err)
		require.Equal(t, 3, i)
		require.False(t, s.Revoked())
	})

	t.Run("all failed", func(t *testing.T) {
		i, _, err := FirstNonRevoked(ctx, r, []Candidate{c("broken"), c("unknown")})
		require.Equal(t, -1, i)
		require.ErrorIs(t, err, errkind.ContractCallFailed)
		require.ErrorIs(t, err, errkind.ResolverNotFound)
		require.NotErrorIs(t, err, ErrRevoked)
	})

	t.Run("all revoked or failed", func(t *testing.T) {
		_, _, err := FirstNonRevoked(ctx, r, []Candidate{c("revoked"), c("broken")})
		require.ErrorIs(t, err, ErrRevoked)
		require.ErrorIs(t, err, errkind.ContractCallFailed)
	})

	t.Run("none", func(t *testing.T) {
		_, _, err := FirstNonRevoked(ctx, r, nil)
		require.EqualError(t, err, "no candidates")
	})

	t.Run("canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		_, _, err := FirstNonRevoked(cctx, r, []Candidate{c("valid")})
		require.ErrorIs(t, err, context.Canceled)
	})
}
