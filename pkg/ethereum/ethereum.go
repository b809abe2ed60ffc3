/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package ethereum holds the chain RPC configuration shared by the on-chain readers.
package ethereum

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/ethclient"
	core "github.com/iden3/go-iden3-core/v2"
	"github.com/iden3/go-iden3-core/v2/w3c"
)

// Config is the RPC configuration of one chain.
type Config struct {
	ChainID int64
	URL     string
	// StateContract is the address of the identity State contract on the chain, if any.
	StateContract string
}

// Configs is a list of chain configurations.
type Configs []Config

// ForChain returns the configuration of chainID.
func (c Configs) ForChain(chainID int64) (Config, bool) {
	for _, cfg := range c {
		if cfg.ChainID == chainID {
			return cfg, true
		}
	}

	return Config{}, false
}

// ParseConfig parses `chainID=rpcURL` or `chainID=rpcURL@stateContract`.
func ParseConfig(s string) (Config, error) {
	parts := strings.SplitN(s, "=", 2) //nolint:gomnd
	if len(parts) != 2 || parts[1] == "" { //nolint:gomnd
		return Config{}, fmt.Errorf("invalid chain config '%s', expected chainID=rpcURL[@stateContract]", s)
	}

	chainID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Config{}, fmt.Errorf("invalid chain id in '%s': %w", s, err)
	}

	cfg := Config{ChainID: chainID, URL: parts[1]}

	if i := strings.LastIndex(parts[1], "@"); i > 0 && strings.HasPrefix(parts[1][i+1:], "0x") {
		cfg.URL = parts[1][:i]
		cfg.StateContract = parts[1][i+1:]
	}

	return cfg, nil
}

// ContractCallerFactory opens a read-only contract caller for a chain.
type ContractCallerFactory func(ctx context.Context, cfg Config) (bind.ContractCaller, error)

// DialContractCaller dials the chain RPC endpoint.
func DialContractCaller(ctx context.Context, cfg Config) (bind.ContractCaller, error) {
	client, err := ethclient.DialContext(ctx, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial chain %d: %w", cfg.ChainID, err)
	}

	return client, nil
}

// RegisterChainID makes DIDs on blockchain/network resolve to chainID.
func RegisterChainID(blockchain, network string, chainID int) error {
	return core.RegisterChainID(core.Blockchain(blockchain), core.NetworkID(network), chainID)
}

// ParseChainMapping parses `blockchain:network=chainID`, as in `polygon:amoy=80002`.
func ParseChainMapping(s string) (string, string, int, error) {
	parts := strings.SplitN(s, "=", 2) //nolint:gomnd

	names := strings.SplitN(parts[0], ":", 2) //nolint:gomnd
	if len(parts) != 2 || len(names) != 2 || names[0] == "" || names[1] == "" { //nolint:gomnd
		return "", "", 0, fmt.Errorf("invalid chain mapping '%s', expected blockchain:network=chainID", s)
	}

	chainID, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", "", 0, fmt.Errorf("invalid chain id in '%s': %w", s, err)
	}

	return names[0], names[1], chainID, nil
}

// ChainIDFromDID returns the chain of an identity DID.
func ChainIDFromDID(did *w3c.DID) (int64, error) {
	chainID, err := core.ChainIDfromDID(*did)
	if err != nil {
		return 0, err
	}

	return int64(chainID), nil
}
