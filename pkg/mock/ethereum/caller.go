/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ethereum holds a mock contract caller that answers calls by ABI method name.
package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	geth "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Handler answers a call with the method outputs.
type Handler func(to common.Address, args []interface{}) ([]interface{}, error)

// ContractCaller decodes calls with ABI and dispatches them to Handlers.
type ContractCaller struct {
	ABI      abi.ABI
	Handlers map[string]Handler

	mu    sync.Mutex
	calls []string
}

// CodeAt reports code at every address.
func (c *ContractCaller) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x1}, nil
}

// CallContract decodes and answers the call.
func (c *ContractCaller) CallContract(_ context.Context, call geth.CallMsg, _ *big.Int) ([]byte, error) {
	if len(call.Data) < 4 { //nolint:gomnd
		return nil, fmt.Errorf("mock caller: short call data")
	}

	method, err := c.ABI.MethodById(call.Data[:4])
	if err != nil {
		return nil, fmt.Errorf("mock caller: %w", err)
	}

	c.mu.Lock()
	c.calls = append(c.calls, method.Name)
	c.mu.Unlock()

	h, ok := c.Handlers[method.Name]
	if !ok {
		return nil, fmt.Errorf("mock caller: no handler for %s", method.Name)
	}

	args, err := method.Inputs.Unpack(call.Data[4:])
	if err != nil {
		return nil, fmt.Errorf("mock caller: %w", err)
	}

	var to common.Address
	if call.To != nil {
		to = *call.To
	}

	out, err := h(to, args)
	if err != nil {
		return nil, err
	}

	return method.Outputs.Pack(out...)
}

// Calls returns the names of the methods called so far.
func (c *ContractCaller) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]string(nil), c.calls...)
}
