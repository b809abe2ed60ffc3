/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package rhs resolves Iden3ReverseSparseMerkleTreeProof statuses by rebuilding the revocation proof from
// the nodes the issuer published to a reverse hash service.
package rhs

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"strings"

	"github.com/iden3/go-merkletree-sql/v2"
	"gopkg.in/resty.v1"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-zkcomm-go/pkg/common/errkind"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/merkle"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/verifiable"
	"github.com/hyperledger/aries-zkcomm-go/pkg/revocation"
	"github.com/hyperledger/aries-zkcomm-go/pkg/state"
)

var logger = log.New("zkcomm/revocation/rhs")

// DefaultMaxDepth is the deepest revocation tree walked.
const DefaultMaxDepth = 40

// ErrNodeNotFound is returned when the service has no node for a hash.
var ErrNodeNotFound = errors.New("node not found")

// Resolver walks the reverse hash service.
type Resolver struct {
	client   *resty.Client
	maxDepth int
}

// Option configures the resolver.
type Option func(r *Resolver)

// WithRestyClient sets the HTTP client.
func WithRestyClient(client *resty.Client) Option {
	return func(r *Resolver) {
		r.client = client
	}
}

// WithMaxDepth sets the deepest tree level walked.
func WithMaxDepth(depth int) Option {
	return func(r *Resolver) {
		r.maxDepth = depth
	}
}

// New returns a resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{maxDepth: DefaultMaxDepth}

	for _, opt := range opts {
		opt(r)
	}

	if r.client == nil {
		r.client = resty.New()
	}

	return r
}

type nodeResponse struct {
	Node   *ProofNode `json:"node"`
	Status string     `json:"status"`
}

// Resolve rebuilds the proof of the credential nonce against the revocation tree committed to by the
// issuer state. The state is taken from the options, or from the `state` query parameter of the status id.
//
// A state the service does not know is accepted as unrevoked when it is the issuer's genesis state, since
// nothing was ever published for it.
func (r *Resolver) Resolve(ctx context.Context, status *verifiable.CredentialStatus,
	opts ...revocation.ResolveOption) (*verifiable.RevocationStatus, error) {
	const op = "rhs Resolve"

	statusType := string(verifiable.Iden3ReverseSparseMerkleTreeProof)

	if status == nil {
		return nil, errkind.Missing(op, "credentialStatus")
	}

	o := revocation.NewResolveOpts(opts...)

	if o.IssuerDID == "" {
		return nil, errkind.Missing(op, "issuerDID").WithStatusType(statusType)
	}

	base, idState, err := parseID(status.ID)
	if err != nil {
		return nil, errkind.New(errkind.MalformedStatusID, op, err).WithStatusType(statusType)
	}

	issuerState := idState
	if o.IssuerState != nil {
		issuerState, err = merkletree.NewHashFromBigInt(o.IssuerState)
		if err != nil {
			return nil, &errkind.Error{Kind: errkind.MissingOption, Op: op, Option: "issuerState", Err: err}
		}
	}

	if issuerState == nil {
		return nil, errkind.Missing(op, "issuerState").WithStatusType(statusType)
	}

	stateNode, err := r.node(ctx, base, issuerState)
	if errors.Is(err, ErrNodeNotFound) {
		return r.unpublished(op, o.IssuerDID, issuerState, err)
	}

	if err != nil {
		return nil, err
	}

	if stateNode.Type() != NodeTypeState {
		return nil, errkind.Errorf(errkind.MalformedResponse, op, "issuer state node is a %s node", stateNode.Type())
	}

	nonce := new(big.Int).SetUint64(status.RevocationNonce)

	mtp, err := r.walk(ctx, base, stateNode.Children[1], nonce)
	if err != nil {
		return nil, err
	}

	logger.Debugf("rebuilt proof of nonce %d at depth %d: revoked=%t", status.RevocationNonce, mtp.Depth,
		mtp.Existence)

	return &verifiable.RevocationStatus{
		Issuer: verifiable.NewTreeState(issuerState, stateNode.Children[0], stateNode.Children[1],
			stateNode.Children[2]),
		MTP: *mtp,
	}, nil
}

func (r *Resolver) unpublished(op, issuerDID string, issuerState *merkletree.Hash,
	cause error) (*verifiable.RevocationStatus, error) {
	genesis, err := state.IsGenesisState(issuerDID, issuerState.BigInt())
	if err != nil {
		return nil, &errkind.Error{Kind: errkind.MissingOption, Op: op, Option: "issuerDID", Err: err}
	}

	if !genesis {
		return nil, errkind.New(errkind.ProofNotAvailable, op, cause).
			WithStatusType(string(verifiable.Iden3ReverseSparseMerkleTreeProof))
	}

	logger.Debugf("issuer %s is in its genesis state, nothing was revoked", issuerDID)

	return &verifiable.RevocationStatus{
		Issuer: verifiable.NewTreeState(issuerState, nil, nil, nil),
		MTP:    *merkle.NewProof(false, nil, nil),
	}, nil
}

// walk follows the key of nonce from root down to a leaf or an empty subtree.
func (r *Resolver) walk(ctx context.Context, base string, root *merkletree.Hash,
	nonce *big.Int) (*merkle.Proof, error) {
	const op = "rhs Resolve"

	key, err := merkletree.NewHashFromBigInt(nonce)
	if err != nil {
		return nil, errkind.New(errkind.MalformedStatusID, op, err)
	}

	var siblings []*merkletree.Hash

	next := root

	for depth := 0; depth < r.maxDepth; depth++ {
		if *next == merkletree.HashZero {
			return r.verified(root, merkle.NewProof(false, siblings, nil), nonce, nil)
		}

		n, err := r.node(ctx, base, next)
		if errors.Is(err, ErrNodeNotFound) {
			return nil, errkind.New(errkind.ProofNotAvailable, op, err).
				WithStatusType(string(verifiable.Iden3ReverseSparseMerkleTreeProof))
		}

		if err != nil {
			return nil, err
		}

		switch n.Type() {
		case NodeTypeLeaf:
			if *n.Children[0] == *key {
				return r.verified(root, merkle.NewProof(true, siblings, nil), nonce, n.Children[1])
			}

			return r.verified(root, merkle.NewProof(false, siblings,
				&merkle.NodeAux{Key: n.Children[0], Value: n.Children[1]}), nonce, nil)
		case NodeTypeMiddle:
			if testBit(key, uint(depth)) {
				siblings = append(siblings, n.Children[0])
				next = n.Children[1]
			} else {
				siblings = append(siblings, n.Children[1])
				next = n.Children[0]
			}
		default:
			return nil, errkind.Errorf(errkind.MalformedResponse, op, "unexpected %s node %s at depth %d",
				n.Type(), n.Hash.Hex(), depth)
		}
	}

	return nil, errkind.Errorf(errkind.ProofNotAvailable, op, "tree is deeper than %d levels", r.maxDepth)
}

// verified checks the rebuilt proof against the revocation root. value is the value of the leaf found for
// the nonce; it is nil for non-membership proofs.
func (r *Resolver) verified(root *merkletree.Hash, p *merkle.Proof, nonce *big.Int,
	value *merkletree.Hash) (*merkle.Proof, error) {
	v := big.NewInt(0)
	if value != nil {
		v = value.BigInt()
	}

	if err := p.Verify(root, nonce, v); err != nil {
		return nil, errkind.New(errkind.MalformedResponse, "rhs Resolve", err)
	}

	return p, nil
}

func (r *Resolver) node(ctx context.Context, base string, h *merkletree.Hash) (*ProofNode, error) {
	const op = "rhs Resolve"

	var out nodeResponse

	resp, err := r.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetResult(&out).
		Get(base + "/node/" + h.Hex())
	if err != nil {
		return nil, errkind.New(errkind.FetchFailed, op, err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNodeNotFound, h.Hex())
	}

	if !resp.IsSuccess() {
		return nil, errkind.Errorf(errkind.FetchFailed, op, "unexpected response [%d] body [%s]",
			resp.StatusCode(), resp.Body())
	}

	if out.Node == nil {
		return nil, errkind.Errorf(errkind.MalformedResponse, op, "response has no node")
	}

	if *out.Node.Hash != *h {
		return nil, errkind.Errorf(errkind.MalformedResponse, op, "asked for node %s, got %s", h.Hex(),
			out.Node.Hash.Hex())
	}

	if err = out.Node.Validate(); err != nil {
		return nil, errkind.New(errkind.MalformedResponse, op, err)
	}

	return out.Node, nil
}

// parseID returns the service base URL and the issuer state named by the status id, if any.
func parseID(id string) (string, *merkletree.Hash, error) {
	u, err := url.ParseRequestURI(id)
	if err != nil {
		return "", nil, err
	}

	var issuerState *merkletree.Hash

	if s := u.Query().Get("state"); s != "" {
		issuerState, err = merkletree.NewHashFromHex(s)
		if err != nil {
			return "", nil, fmt.Errorf("state: %w", err)
		}
	}

	u.RawQuery = ""
	u.Fragment = ""
	u.Path = strings.TrimSuffix(strings.TrimSuffix(u.Path, "/"), "/node")

	return strings.TrimSuffix(u.String(), "/"), issuerState, nil
}

func testBit(h *merkletree.Hash, n uint) bool {
	return h[n/8]&(1<<(n%8)) != 0 //nolint:gomnd
}
