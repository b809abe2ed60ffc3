/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package onchain

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

const (
	queryContractAddress = "contractAddress"
	queryRevocationNonce = "revocationNonce"
)

// ErrNonceMismatch is returned when nonces named by a status id or its credential status disagree.
var ErrNonceMismatch = errors.New("revocation nonce mismatch")

// StatusID is a parsed on-chain status id: `<locator>[/<nonce>][?contractAddress=<chainId>:<address>]
// [&revocationNonce=<nonce>]`.
type StatusID struct {
	Locator string
	// Nonce is the nonce named by the id, if any.
	Nonce *uint64
	// ChainID and ContractAddress are set when HasContract. The address is kept as written.
	ChainID         int64
	ContractAddress string
	HasContract     bool
}

// Contract returns the contract address. Short addresses are left-padded.
func (s *StatusID) Contract() common.Address {
	return common.HexToAddress(s.ContractAddress)
}

// ParseID parses an on-chain status id. A nonce given both in the path and in the query must agree.
func ParseID(id string) (*StatusID, error) {
	if id == "" {
		return nil, fmt.Errorf("status id is empty")
	}

	locator, rawQuery, _ := strings.Cut(id, "?")

	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return nil, fmt.Errorf("status id query: %w", err)
	}

	s := &StatusID{Locator: locator}

	if i := strings.LastIndex(locator, "/"); i >= 0 {
		if n, err := strconv.ParseUint(locator[i+1:], 10, 64); err == nil {
			s.Locator = locator[:i]
			s.Nonce = &n
		}
	}

	if v := query.Get(queryRevocationNonce); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("status id %s '%s' is not a number", queryRevocationNonce, v)
		}

		if s.Nonce != nil && *s.Nonce != n {
			return nil, fmt.Errorf("%w: status id path %d, query %d", ErrNonceMismatch, *s.Nonce, n)
		}

		s.Nonce = &n
	}

	if v := query.Get(queryContractAddress); v != "" {
		chain, addr, ok := strings.Cut(v, ":")
		if !ok {
			return nil, fmt.Errorf("status id %s '%s' is not <chainId>:<address>", queryContractAddress, v)
		}

		s.ChainID, err = strconv.ParseInt(chain, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("status id chain id '%s' is not a number", chain)
		}

		if !validAddress(addr) {
			return nil, fmt.Errorf("status id contract address '%s' is invalid", addr)
		}

		s.ContractAddress = addr
		s.HasContract = true
	}

	return s, nil
}

// validAddress accepts 0x-prefixed hex of at most 20 bytes.
func validAddress(addr string) bool {
	digits := strings.TrimPrefix(strings.TrimPrefix(addr, "0x"), "0X")
	if len(digits) == len(addr) || digits == "" || len(digits) > 2*common.AddressLength {
		return false
	}

	return strings.Trim(digits, "0123456789abcdefABCDEF") == ""
}
