/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package startcmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/ethclient"
	"gopkg.in/resty.v1"

	"github.com/hyperledger/aries-zkcomm-go/pkg/controller"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/packager"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/packer"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/packer/jws"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/packer/plain"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/packer/zkp"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/circuits"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/jwz"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/verifiable"
	"github.com/hyperledger/aries-zkcomm-go/pkg/ethereum"
	"github.com/hyperledger/aries-zkcomm-go/pkg/kms/localkms"
	"github.com/hyperledger/aries-zkcomm-go/pkg/revocation"
	"github.com/hyperledger/aries-zkcomm-go/pkg/revocation/agent"
	"github.com/hyperledger/aries-zkcomm-go/pkg/revocation/issuer"
	"github.com/hyperledger/aries-zkcomm-go/pkg/revocation/onchain"
	"github.com/hyperledger/aries-zkcomm-go/pkg/revocation/rhs"
	"github.com/hyperledger/aries-zkcomm-go/pkg/state/ethstate"
	"github.com/hyperledger/aries-zkcomm-go/pkg/vdr"
	"github.com/hyperledger/aries-zkcomm-go/pkg/vdr/httpbinding"
	"github.com/hyperledger/aries-zkcomm-go/pkg/verification/policy"
)

func createProvider(parameters *daemonParameters) (*controller.Provider, error) {
	for _, m := range parameters.chainMappings {
		blockchain, network, chainID, err := ethereum.ParseChainMapping(m)
		if err != nil {
			return nil, err
		}

		if err = ethereum.RegisterChainID(blockchain, network, chainID); err != nil {
			return nil, fmt.Errorf("register chain mapping %s: %w", m, err)
		}
	}

	if err := waitForChains(parameters.chains, parameters.rpcTimeout); err != nil {
		return nil, err
	}

	registry, err := createVDR(parameters)
	if err != nil {
		return nil, err
	}

	pkg, err := createPackager(parameters, registry)
	if err != nil {
		return nil, err
	}

	return &controller.Provider{
		Packager:           pkg,
		RevocationRegistry: createRevocationRegistry(parameters, pkg),
		VDR:                registry,
	}, nil
}

func createVDR(parameters *daemonParameters) (*vdr.Registry, error) {
	const numPartsResolverOption = 2

	var opts []vdr.Option

	for _, httpResolver := range parameters.httpResolvers {
		r := strings.Split(httpResolver, "@")
		if len(r) != numPartsResolverOption {
			return nil, fmt.Errorf("invalid http resolver options found")
		}

		httpVDR, err := httpbinding.New(r[1],
			httpbinding.WithTimeout(parameters.httpTimeout),
			httpbinding.WithAccept(httpbinding.AcceptMethods(strings.Split(r[0], "|")...)))
		if err != nil {
			return nil, fmt.Errorf("failed to setup http resolver :  %w", err)
		}

		opts = append(opts, vdr.WithMethod(httpVDR))
	}

	if parameters.didCacheSize > 0 {
		opts = append(opts, vdr.WithCache(parameters.didCacheSize, parameters.didCacheTTL))
	}

	return vdr.New(opts...), nil
}

func createPackager(parameters *daemonParameters, registry *vdr.Registry) (*policy.Packager, error) {
	var policyOpts []policy.Option

	if parameters.stateTransitionDelay > 0 {
		policyOpts = append(policyOpts, policy.WithAcceptedStateTransitionDelay(parameters.stateTransitionDelay))
	}

	if parameters.proofGenerationDelay > 0 {
		policyOpts = append(policyOpts, policy.WithAcceptedProofGenerationDelay(parameters.proofGenerationDelay))
	}

	packers := []packer.Packer{plain.New(), jws.New(registry, localkms.New())}

	verification, err := loadVerificationKeys(parameters.verificationKeys)
	if err != nil {
		return nil, err
	}

	if len(verification) > 0 {
		signals := zkp.NewAuthV2StateVerifier(ethstate.New(parameters.chains), policyOpts...)

		for k, v := range verification {
			v.VerifySignals = signals
			verification[k] = v
		}

		packers = append(packers, zkp.New(verification, nil))
	}

	return policy.NewPackager(packager.New(packers...), policyOpts...), nil
}

func loadVerificationKeys(values []string) (map[jwz.ProvingMethodKey]zkp.VerificationParams, error) {
	const numPartsKeyOption = 2

	verification := map[jwz.ProvingMethodKey]zkp.VerificationParams{}

	for _, v := range values {
		parts := strings.SplitN(v, "=", numPartsKeyOption)
		if len(parts) != numPartsKeyOption || parts[0] == "" || parts[1] == "" {
			return nil, fmt.Errorf("invalid verification key '%s', expected circuitId=path", v)
		}

		key, err := os.ReadFile(parts[1])
		if err != nil {
			return nil, fmt.Errorf("read verification key of %s: %w", parts[0], err)
		}

		method := jwz.ProvingMethodKey{Alg: jwz.Groth16, CircuitID: circuits.CircuitID(parts[0])}
		verification[method] = zkp.VerificationParams{Key: key, Verifier: jwz.Groth16Verifier{}}

		logger.Infof("accepting %s proofs", method)
	}

	return verification, nil
}

func createRevocationRegistry(parameters *daemonParameters, unpacker agent.Unpacker) *revocation.Registry {
	client := &http.Client{Timeout: parameters.httpTimeout}

	registry := revocation.NewRegistry()
	registry.Register(verifiable.SparseMerkleTreeProof, issuer.New(issuer.WithHTTPClient(client)))
	registry.Register(verifiable.Iden3commRevocationStatusV1,
		agent.New(agent.WithHTTPClient(client), agent.WithUnpacker(unpacker)))
	registry.Register(verifiable.Iden3OnchainSparseMerkleTreeProof2023, onchain.New(parameters.chains))
	registry.Register(verifiable.Iden3ReverseSparseMerkleTreeProof,
		rhs.New(rhs.WithRestyClient(resty.New().SetTimeout(parameters.httpTimeout))))

	return registry
}

// waitForChains waits until every chain RPC endpoint answers with the chain id it is configured for.
func waitForChains(chains []ethereum.Config, timeout uint64) error {
	for _, cfg := range chains {
		cfg := cfg

		err := backoff.RetryNotify(
			func() error {
				return checkChain(cfg)
			},
			backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), timeout),
			func(retryErr error, t time.Duration) {
				logger.Warnf("chain %d is not available, will sleep for %s before trying again : %s",
					cfg.ChainID, t, retryErr)
			},
		)
		if err != nil {
			return fmt.Errorf("failed to connect to chain %d at %s : %w", cfg.ChainID, cfg.URL, err)
		}
	}

	return nil
}

func checkChain(cfg ethereum.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second) //nolint:gomnd
	defer cancel()

	client, err := ethclient.DialContext(ctx, cfg.URL)
	if err != nil {
		return backoff.Permanent(err)
	}

	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return err
	}

	if chainID.Int64() != cfg.ChainID {
		return backoff.Permanent(fmt.Errorf("endpoint serves chain %s", chainID))
	}

	return nil
}
