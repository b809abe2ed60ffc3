/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ethstate reads published identity states and global roots from the State contract.
package ethstate

import (
	"context"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	core "github.com/iden3/go-iden3-core/v2"
	"github.com/iden3/go-iden3-core/v2/w3c"
	"github.com/pkg/errors"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-zkcomm-go/pkg/ethereum"
	"github.com/hyperledger/aries-zkcomm-go/pkg/state"
)

var logger = log.New("zkcomm/state/ethstate")

// State contract methods.
const (
	MethodGetStateInfoByIDAndState = "getStateInfoByIdAndState"
	MethodGetGISTRootInfo          = "getGISTRootInfo"
)

// StateABI is the read-only part of the State contract ABI.
const StateABI = `[` +
	`{"inputs":[{"internalType":"uint256","name":"id","type":"uint256"},` +
	`{"internalType":"uint256","name":"state","type":"uint256"}],"name":"getStateInfoByIdAndState","outputs":[` +
	`{"components":[{"internalType":"uint256","name":"id","type":"uint256"},` +
	`{"internalType":"uint256","name":"state","type":"uint256"},` +
	`{"internalType":"uint256","name":"replacedByState","type":"uint256"},` +
	`{"internalType":"uint256","name":"createdAtTimestamp","type":"uint256"},` +
	`{"internalType":"uint256","name":"replacedAtTimestamp","type":"uint256"},` +
	`{"internalType":"uint256","name":"createdAtBlock","type":"uint256"},` +
	`{"internalType":"uint256","name":"replacedAtBlock","type":"uint256"}],` +
	`"internalType":"struct IState.StateInfo","name":"","type":"tuple"}],` +
	`"stateMutability":"view","type":"function"},` +
	`{"inputs":[{"internalType":"uint256","name":"root","type":"uint256"}],"name":"getGISTRootInfo","outputs":[` +
	`{"components":[{"internalType":"uint256","name":"root","type":"uint256"},` +
	`{"internalType":"uint256","name":"replacedByRoot","type":"uint256"},` +
	`{"internalType":"uint256","name":"createdAtTimestamp","type":"uint256"},` +
	`{"internalType":"uint256","name":"replacedAtTimestamp","type":"uint256"},` +
	`{"internalType":"uint256","name":"createdAtBlock","type":"uint256"},` +
	`{"internalType":"uint256","name":"replacedAtBlock","type":"uint256"}],` +
	`"internalType":"struct IState.GistRootInfo","name":"","type":"tuple"}],` +
	`"stateMutability":"view","type":"function"}]`

//nolint:gochecknoglobals
var stateABI = func() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(StateABI))
	if err != nil {
		panic(err)
	}

	return parsed
}()

// StateInfo is the state record returned by the contract.
type StateInfo struct {
	Id                  *big.Int //nolint:revive,stylecheck
	State               *big.Int
	ReplacedByState     *big.Int
	CreatedAtTimestamp  *big.Int
	ReplacedAtTimestamp *big.Int
	CreatedAtBlock      *big.Int
	ReplacedAtBlock     *big.Int
}

// GistRootInfo is the root record returned by the contract.
type GistRootInfo struct {
	Root                *big.Int
	ReplacedByRoot      *big.Int
	CreatedAtTimestamp  *big.Int
	ReplacedAtTimestamp *big.Int
	CreatedAtBlock      *big.Int
	ReplacedAtBlock     *big.Int
}

// Reader reads the State contract of the chain the DID lives on.
type Reader struct {
	configs ethereum.Configs
	dial    ethereum.ContractCallerFactory

	mu      sync.Mutex
	callers map[int64]bind.ContractCaller
}

// Option configures the reader.
type Option func(r *Reader)

// WithContractCallerFactory sets how chain connections are opened.
func WithContractCallerFactory(f ethereum.ContractCallerFactory) Option {
	return func(r *Reader) {
		r.dial = f
	}
}

// New returns a reader. Only chains with a StateContract are readable.
func New(configs []ethereum.Config, opts ...Option) *Reader {
	r := &Reader{
		configs: append(ethereum.Configs(nil), configs...),
		dial:    ethereum.DialContractCaller,
		callers: map[int64]bind.ContractCaller{},
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// ResolveState returns the record of state of the identity named by did.
func (r *Reader) ResolveState(ctx context.Context, did *w3c.DID, s *big.Int) (*state.Info, error) {
	if s == nil {
		return nil, errors.New("resolve state: state is nil")
	}

	id, err := core.IDFromDID(*did)
	if err != nil {
		return nil, errors.Wrap(err, "resolve state")
	}

	var out []interface{}

	err = r.call(ctx, did, &out, MethodGetStateInfoByIDAndState, id.BigInt(), s)
	if err != nil {
		return nil, errors.WithMessagef(err, "resolve state %s of %s", s, did)
	}

	info, ok := abi.ConvertType(out[0], new(StateInfo)).(*StateInfo)
	if !ok {
		return nil, errors.Errorf("resolve state: unexpected result type %T", out[0])
	}

	return &state.Info{
		ID:                  info.Id,
		State:               info.State,
		ReplacedByState:     info.ReplacedByState,
		CreatedAtTimestamp:  int64Of(info.CreatedAtTimestamp),
		ReplacedAtTimestamp: int64Of(info.ReplacedAtTimestamp),
	}, nil
}

// ResolveGlobalRoot returns the record of a global identity state tree root. The DID selects the chain.
func (r *Reader) ResolveGlobalRoot(ctx context.Context, did *w3c.DID, root *big.Int) (*state.RootInfo, error) {
	if root == nil {
		return nil, errors.New("resolve global root: root is nil")
	}

	var out []interface{}

	err := r.call(ctx, did, &out, MethodGetGISTRootInfo, root)
	if err != nil {
		return nil, errors.WithMessagef(err, "resolve global root %s", root)
	}

	info, ok := abi.ConvertType(out[0], new(GistRootInfo)).(*GistRootInfo)
	if !ok {
		return nil, errors.Errorf("resolve global root: unexpected result type %T", out[0])
	}

	return &state.RootInfo{
		Root:                info.Root,
		ReplacedByRoot:      info.ReplacedByRoot,
		CreatedAtTimestamp:  int64Of(info.CreatedAtTimestamp),
		ReplacedAtTimestamp: int64Of(info.ReplacedAtTimestamp),
	}, nil
}

func (r *Reader) call(ctx context.Context, did *w3c.DID, out *[]interface{}, method string,
	args ...interface{}) error {
	chainID, err := ethereum.ChainIDFromDID(did)
	if err != nil {
		return errors.Wrap(err, "chain of DID")
	}

	cfg, ok := r.configs.ForChain(chainID)
	if !ok || cfg.StateContract == "" {
		return errors.Errorf("no state contract configured for chain %d", chainID)
	}

	caller, err := r.caller(ctx, cfg)
	if err != nil {
		return err
	}

	contract := bind.NewBoundContract(common.HexToAddress(cfg.StateContract), stateABI, caller, nil, nil)

	err = contract.Call(&bind.CallOpts{Context: ctx}, out, method, args...)
	if err != nil {
		return notFound(method, err)
	}

	if len(*out) == 0 {
		return errors.Errorf("%s: empty result", method)
	}

	logger.Debugf("called %s on chain %d", method, chainID)

	return nil
}

// notFound maps the contract revert for unknown entries to the state sentinels.
func notFound(method string, err error) error {
	if !strings.Contains(err.Error(), "does not exist") {
		return errors.Wrap(err, method)
	}

	if method == MethodGetGISTRootInfo {
		return errors.Wrap(state.ErrRootNotFound, err.Error())
	}

	return errors.Wrap(state.ErrStateNotFound, err.Error())
}

func (r *Reader) caller(ctx context.Context, cfg ethereum.Config) (bind.ContractCaller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.callers[cfg.ChainID]; ok {
		return c, nil
	}

	c, err := r.dial(ctx, cfg)
	if err != nil {
		return nil, errors.WithMessagef(err, "connect chain %d", cfg.ChainID)
	}

	r.callers[cfg.ChainID] = c

	return c, nil
}

func int64Of(i *big.Int) int64 {
	if i == nil {
		return 0
	}

	return i.Int64()
}
