/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package onchain resolves Iden3OnchainSparseMerkleTreeProof2023 statuses by reading the issuer revocation
// status from its on-chain credential status contract.
package onchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	core "github.com/iden3/go-iden3-core/v2"
	"github.com/iden3/go-iden3-core/v2/w3c"
	"github.com/iden3/go-merkletree-sql/v2"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-zkcomm-go/pkg/common/errkind"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/merkle"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/verifiable"
	"github.com/hyperledger/aries-zkcomm-go/pkg/ethereum"
	"github.com/hyperledger/aries-zkcomm-go/pkg/revocation"
)

var logger = log.New("zkcomm/revocation/onchain")

// MethodGetRevocationStatus is the contract method read by the resolver.
const MethodGetRevocationStatus = "getRevocationStatus"

// StatusABI is the ABI of the credential status contract method.
const StatusABI = `[{"inputs":[{"internalType":"uint256","name":"id","type":"uint256"},` +
	`{"internalType":"uint64","name":"nonce","type":"uint64"}],"name":"getRevocationStatus","outputs":[` +
	`{"components":[{"components":[{"internalType":"uint256","name":"state","type":"uint256"},` +
	`{"internalType":"uint256","name":"claimsTreeRoot","type":"uint256"},` +
	`{"internalType":"uint256","name":"revocationTreeRoot","type":"uint256"},` +
	`{"internalType":"uint256","name":"rootOfRoots","type":"uint256"}],` +
	`"internalType":"struct IOnchainCredentialStatusResolver.IdentityStateRoots","name":"issuer","type":"tuple"},` +
	`{"components":[{"internalType":"uint256","name":"root","type":"uint256"},` +
	`{"internalType":"bool","name":"existence","type":"bool"},` +
	`{"internalType":"uint256[]","name":"siblings","type":"uint256[]"},` +
	`{"internalType":"uint256","name":"index","type":"uint256"},` +
	`{"internalType":"uint256","name":"value","type":"uint256"},` +
	`{"internalType":"bool","name":"auxExistence","type":"bool"},` +
	`{"internalType":"uint256","name":"auxIndex","type":"uint256"},` +
	`{"internalType":"uint256","name":"auxValue","type":"uint256"}],` +
	`"internalType":"struct IOnchainCredentialStatusResolver.Proof","name":"mtp","type":"tuple"}],` +
	`"internalType":"struct IOnchainCredentialStatusResolver.CredentialStatus","name":"","type":"tuple"}],` +
	`"stateMutability":"view","type":"function"}]`

//nolint:gochecknoglobals
var statusABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(StatusABI))
	if err != nil {
		panic(err)
	}

	return parsed
}()

// IdentityStateRoots is the issuer snapshot returned by the contract.
type IdentityStateRoots struct {
	State              *big.Int
	ClaimsTreeRoot     *big.Int
	RevocationTreeRoot *big.Int
	RootOfRoots        *big.Int
}

// Proof is the proof returned by the contract. Siblings include zeros.
type Proof struct {
	Root         *big.Int
	Existence    bool
	Siblings     []*big.Int
	Index        *big.Int
	Value        *big.Int
	AuxExistence bool
	AuxIndex     *big.Int
	AuxValue     *big.Int
}

// CredentialStatus is the tuple returned by the contract.
type CredentialStatus struct {
	Issuer IdentityStateRoots
	Mtp    Proof
}

// Resolver reads revocation statuses from chain.
type Resolver struct {
	configs ethereum.Configs
	dial    ethereum.ContractCallerFactory

	mu      sync.Mutex
	callers map[int64]bind.ContractCaller
}

// Option configures the resolver.
type Option func(r *Resolver)

// WithContractCallerFactory sets how chain connections are opened. Connections are reused per chain.
func WithContractCallerFactory(f ethereum.ContractCallerFactory) Option {
	return func(r *Resolver) {
		r.dial = f
	}
}

// New returns a resolver for the configured chains.
func New(configs []ethereum.Config, opts ...Option) *Resolver {
	r := &Resolver{
		configs: append(ethereum.Configs(nil), configs...),
		dial:    ethereum.DialContractCaller,
		callers: map[int64]bind.ContractCaller{},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Resolve reads the status of the credential nonce. The contract named by the status id wins over the
// one derived from the issuer DID.
func (r *Resolver) Resolve(ctx context.Context, status *verifiable.CredentialStatus,
	opts ...revocation.ResolveOption) (*verifiable.RevocationStatus, error) {
	const op = "onchain Resolve"

	statusType := string(verifiable.Iden3OnchainSparseMerkleTreeProof2023)

	if status == nil {
		return nil, errkind.Missing(op, "credentialStatus")
	}

	o := revocation.NewResolveOpts(opts...)
	if o.IssuerDID == "" {
		return nil, errkind.Missing(op, "issuerDID").WithStatusType(statusType)
	}

	issuerDID, err := w3c.ParseDID(o.IssuerDID)
	if err != nil {
		return nil, &errkind.Error{Kind: errkind.MissingOption, Op: op, Option: "issuerDID", Err: err}
	}

	issuerID, err := core.IDFromDID(*issuerDID)
	if err != nil {
		return nil, &errkind.Error{Kind: errkind.MissingOption, Op: op, Option: "issuerDID", Err: err}
	}

	id, err := ParseID(status.ID)
	if errors.Is(err, ErrNonceMismatch) {
		return nil, errkind.New(errkind.RevocationNonceMismatch, op, err).WithStatusType(statusType)
	}

	if err != nil {
		return nil, errkind.New(errkind.MalformedStatusID, op, err).WithStatusType(statusType)
	}

	if id.Nonce != nil && *id.Nonce != status.RevocationNonce {
		return nil, errkind.Errorf(errkind.RevocationNonceMismatch, op, "status id nonce %d, credential nonce %d",
			*id.Nonce, status.RevocationNonce).WithStatusType(statusType)
	}

	chainID, address, err := contractOf(id, issuerDID, issuerID)
	if err != nil {
		return nil, err
	}

	caller, err := r.caller(ctx, chainID)
	if err != nil {
		return nil, err
	}

	contract := bind.NewBoundContract(address, statusABI, caller, nil, nil)

	var out []interface{}

	err = contract.Call(&bind.CallOpts{Context: ctx}, &out, MethodGetRevocationStatus, issuerID.BigInt(),
		status.RevocationNonce)
	if err != nil {
		return nil, errkind.New(errkind.ContractCallFailed, op, err).WithChain(chainID)
	}

	if len(out) == 0 {
		return nil, errkind.Errorf(errkind.ContractCallFailed, op, "empty result").WithChain(chainID)
	}

	cs, ok := abi.ConvertType(out[0], new(CredentialStatus)).(*CredentialStatus)
	if !ok {
		return nil, errkind.Errorf(errkind.MalformedResponse, op, "unexpected result type %T", out[0]).
			WithChain(chainID)
	}

	rs, err := convert(cs)
	if err != nil {
		return nil, errkind.New(errkind.MalformedResponse, op, err).WithChain(chainID)
	}

	logger.Debugf("read status of nonce %d of %s on chain %d: revoked=%t", status.RevocationNonce,
		o.IssuerDID, chainID, rs.Revoked())

	return rs, nil
}

func contractOf(id *StatusID, issuerDID *w3c.DID, issuerID core.ID) (int64, common.Address, error) {
	const op = "onchain Resolve"

	if id.HasContract {
		return id.ChainID, id.Contract(), nil
	}

	chainID, err := ethereum.ChainIDFromDID(issuerDID)
	if err != nil {
		return 0, common.Address{}, errkind.New(errkind.UnsupportedChain, op, err)
	}

	addr, err := core.EthAddressFromID(issuerID)
	if err != nil {
		return 0, common.Address{}, errkind.Errorf(errkind.MalformedStatusID, op,
			"no contract address in status id and none derivable from issuer: %w", err)
	}

	return chainID, common.Address(addr), nil
}

func (r *Resolver) caller(ctx context.Context, chainID int64) (bind.ContractCaller, error) {
	const op = "onchain Resolve"

	cfg, ok := r.configs.ForChain(chainID)
	if !ok {
		return nil, errkind.Errorf(errkind.UnsupportedChain, op, "no RPC configured").WithChain(chainID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.callers[chainID]; ok {
		return c, nil
	}

	c, err := r.dial(ctx, cfg)
	if err != nil {
		return nil, errkind.New(errkind.ContractCallFailed, op, err).WithChain(chainID)
	}

	r.callers[chainID] = c

	return c, nil
}

func convert(cs *CredentialStatus) (*verifiable.RevocationStatus, error) {
	hash := func(i *big.Int) (*merkletree.Hash, error) {
		if i == nil {
			return &merkletree.HashZero, nil
		}

		return merkletree.NewHashFromBigInt(i)
	}

	siblings := make([]*merkletree.Hash, len(cs.Mtp.Siblings))

	for i, s := range cs.Mtp.Siblings {
		h, err := hash(s)
		if err != nil {
			return nil, fmt.Errorf("sibling %d: %w", i, err)
		}

		siblings[i] = h
	}

	var aux *merkle.NodeAux

	if !cs.Mtp.Existence && cs.Mtp.AuxExistence {
		key, err := hash(cs.Mtp.AuxIndex)
		if err != nil {
			return nil, fmt.Errorf("aux index: %w", err)
		}

		value, err := hash(cs.Mtp.AuxValue)
		if err != nil {
			return nil, fmt.Errorf("aux value: %w", err)
		}

		aux = &merkle.NodeAux{Key: key, Value: value}
	}

	roots := make([]*merkletree.Hash, 4) //nolint:gomnd

	for i, v := range []*big.Int{cs.Issuer.State, cs.Issuer.ClaimsTreeRoot, cs.Issuer.RevocationTreeRoot,
		cs.Issuer.RootOfRoots} {
		h, err := hash(v)
		if err != nil {
			return nil, fmt.Errorf("issuer state: %w", err)
		}

		roots[i] = h
	}

	return &verifiable.RevocationStatus{
		Issuer: verifiable.NewTreeState(roots[0], roots[1], roots[2], roots[3]),
		MTP:    *merkle.NewProof(cs.Mtp.Existence, siblings, aux),
	}, nil
}
