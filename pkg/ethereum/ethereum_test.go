/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package ethereum

import (
	"testing"

	"github.com/iden3/go-iden3-core/v2/w3c"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig("80001=https://rpc.example.com")
	require.NoError(t, err)
	require.Equal(t, Config{ChainID: 80001, URL: "https://rpc.example.com"}, cfg)

	cfg, err = ParseConfig("137=https://user@rpc.example.com@0x134B1BE34911E39A8397ec6289782989729807a4")
	require.NoError(t, err)
	require.Equal(t, Config{ChainID: 137, URL: "https://user@rpc.example.com",
		StateContract: "0x134B1BE34911E39A8397ec6289782989729807a4"}, cfg)

	for _, bad := range []string{"", "80001", "80001=", "x=https://rpc"} {
		_, err = ParseConfig(bad)
		require.Error(t, err, bad)
	}

	configs := Configs{{ChainID: 1, URL: "a"}, {ChainID: 2, URL: "b"}}

	c, ok := configs.ForChain(2)
	require.True(t, ok)
	require.Equal(t, "b", c.URL)

	_, ok = configs.ForChain(3)
	require.False(t, ok)
}

func TestChainMapping(t *testing.T) {
	blockchain, network, chainID, err := ParseChainMapping("testchain:testnet=4242")
	require.NoError(t, err)
	require.Equal(t, "testchain", blockchain)
	require.Equal(t, "testnet", network)
	require.Equal(t, 4242, chainID)

	for _, bad := range []string{"testchain=1", "testchain:testnet", ":x=1", "a:b=x"} {
		_, _, _, err = ParseChainMapping(bad)
		require.Error(t, err, bad)
	}
}

func TestChainIDFromDID(t *testing.T) {
	did, err := w3c.ParseDID("did:polygonid:polygon:mumbai:2qCU58EJgrELNZCDkSU23dQHZsBgAFWLNpNezo1g6b")
	require.NoError(t, err)

	chainID, err := ChainIDFromDID(did)
	require.NoError(t, err)
	require.EqualValues(t, 80001, chainID)
}
