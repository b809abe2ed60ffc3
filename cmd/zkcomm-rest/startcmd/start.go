/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package startcmd

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-zkcomm-go/pkg/controller"
	"github.com/hyperledger/aries-zkcomm-go/pkg/ethereum"
)

const (
	// api host flag.
	apiHostFlagName      = "api-host"
	apiHostEnvKey        = "ZKCOMM_API_HOST"
	apiHostFlagShorthand = "a"
	apiHostFlagUsage     = "Host Name:Port." +
		" Alternatively, this can be set with the following environment variable: " + apiHostEnvKey

	// api token flag.
	apiTokenFlagName      = "api-token"
	apiTokenEnvKey        = "ZKCOMM_API_TOKEN" // nolint:gosec
	apiTokenFlagShorthand = "t"
	apiTokenFlagUsage     = "Check for bearer token in the authorization header (optional)." +
		" Alternatively, this can be set with the following environment variable: " + apiTokenEnvKey

	// log level.
	logLevelFlagName  = "log-level"
	logLevelEnvKey    = "ZKCOMM_LOG_LEVEL"
	logLevelFlagUsage = "Log level." +
		" Possible values [INFO] [DEBUG] [ERROR] [WARNING] [CRITICAL] . Defaults to INFO if not set." +
		" Alternatively, this can be set with the following environment variable: " + logLevelEnvKey

	// log format.
	logFormatFlagName  = "log-format"
	logFormatEnvKey    = "ZKCOMM_LOG_FORMAT"
	logFormatFlagUsage = "Log format." +
		" Possible values [json] [console]. Defaults to json if not set." +
		" Alternatively, this can be set with the following environment variable: " + logFormatEnvKey

	// http resolver url flag.
	httpResolverFlagName      = "http-resolver-url"
	httpResolverEnvKey        = "ZKCOMM_HTTP_RESOLVER"
	httpResolverFlagShorthand = "r"
	httpResolverFlagUsage     = "HTTP binding DID resolver method and url. Values should be in `method@url` format." +
		" This flag can be repeated, allowing multiple http resolvers." +
		" Alternatively, this can be set with the following environment variable (in CSV format): " +
		httpResolverEnvKey

	// did cache flags.
	didCacheSizeFlagName  = "did-cache-size"
	didCacheSizeEnvKey    = "ZKCOMM_DID_CACHE_SIZE"
	didCacheSizeFlagUsage = "Number of resolved DID documents kept in memory. 0 disables the cache." +
		" Default: " + didCacheSizeDefault + "." +
		" Alternatively, this can be set with the following environment variable: " + didCacheSizeEnvKey
	didCacheSizeDefault = "100"

	didCacheTTLFlagName  = "did-cache-ttl"
	didCacheTTLEnvKey    = "ZKCOMM_DID_CACHE_TTL"
	didCacheTTLFlagUsage = "How long a resolved DID document is kept, as a duration (e.g. 5m). 0 keeps documents" +
		" until evicted. Alternatively, this can be set with the following environment variable: " + didCacheTTLEnvKey

	// chain flags.
	chainFlagName      = "chain"
	chainEnvKey        = "ZKCOMM_CHAIN"
	chainFlagShorthand = "c"
	chainFlagUsage     = "Chain RPC endpoint. Values should be in `chainID=rpcURL` or" +
		" `chainID=rpcURL@stateContractAddress` format." +
		" This flag can be repeated, allowing multiple chains." +
		" Alternatively, this can be set with the following environment variable (in CSV format): " + chainEnvKey

	chainMappingFlagName  = "chain-mapping"
	chainMappingEnvKey    = "ZKCOMM_CHAIN_MAPPING"
	chainMappingFlagUsage = "Registers the chain id of a DID blockchain and network." +
		" Values should be in `blockchain:network=chainID` format." +
		" Alternatively, this can be set with the following environment variable (in CSV format): " +
		chainMappingEnvKey

	rpcTimeoutFlagName  = "rpc-timeout"
	rpcTimeoutEnvKey    = "ZKCOMM_RPC_TIMEOUT"
	rpcTimeoutFlagUsage = "Total time in seconds to wait until the chain RPC endpoints are available before" +
		" giving up. Default: " + rpcTimeoutDefault + " seconds." +
		" Alternatively, this can be set with the following environment variable: " + rpcTimeoutEnvKey
	rpcTimeoutDefault = "30"

	// outbound http timeout flag.
	httpTimeoutFlagName  = "http-timeout"
	httpTimeoutEnvKey    = "ZKCOMM_HTTP_TIMEOUT"
	httpTimeoutFlagUsage = "Timeout of outbound HTTP requests (DID resolution, issuer and reverse hash service)," +
		" as a duration. Default: " + httpTimeoutDefault + "." +
		" Alternatively, this can be set with the following environment variable: " + httpTimeoutEnvKey
	httpTimeoutDefault = "30s"

	// zero-knowledge verification keys flag.
	verificationKeyFlagName      = "verification-key"
	verificationKeyEnvKey        = "ZKCOMM_VERIFICATION_KEY"
	verificationKeyFlagShorthand = "z"
	verificationKeyFlagUsage     = "Groth16 verification key of a circuit. Values should be in `circuitId=path`" +
		" format. Zero-knowledge envelopes are only accepted when at least one key is set." +
		" Alternatively, this can be set with the following environment variable (in CSV format): " +
		verificationKeyEnvKey

	// verification policy flags.
	stateTransitionDelayFlagName  = "accepted-state-transition-delay"
	stateTransitionDelayEnvKey    = "ZKCOMM_ACCEPTED_STATE_TRANSITION_DELAY"
	stateTransitionDelayFlagUsage = "How long a replaced identity state or global root is still accepted," +
		" as a duration. Defaults to 5m if not set." +
		" Alternatively, this can be set with the following environment variable: " + stateTransitionDelayEnvKey

	proofGenerationDelayFlagName  = "accepted-proof-generation-delay"
	proofGenerationDelayEnvKey    = "ZKCOMM_ACCEPTED_PROOF_GENERATION_DELAY"
	proofGenerationDelayFlagUsage = "How old an unpacked message may be, by its created_time, as a duration." +
		" Defaults to 24h if not set." +
		" Alternatively, this can be set with the following environment variable: " + proofGenerationDelayEnvKey

	tlsCertFileFlagName  = "tls-cert-file"
	tlsCertFileEnvKey    = "TLS_CERT_FILE"
	tlsCertFileFlagUsage = "tls certificate file." +
		" Alternatively, this can be set with the following environment variable: " + tlsCertFileEnvKey

	tlsKeyFileFlagName      = "tls-key-file"
	tlsKeyFileEnvKey        = "TLS_KEY_FILE"
	tlsKeyFileFlagShorthand = "k"
	tlsKeyFileFlagUsage     = "tls key file." +
		" Alternatively, this can be set with the following environment variable: " + tlsKeyFileEnvKey
)

var (
	errMissingHost = errors.New("host not provided")
	logger         = log.New("zkcomm/rest")
)

type daemonParameters struct {
	server                  server
	host, token             string
	tlsCertFile, tlsKeyFile string
	httpResolvers           []string
	didCacheSize            int
	didCacheTTL             time.Duration
	httpTimeout             time.Duration
	chains                  []ethereum.Config
	chainMappings           []string
	rpcTimeout              uint64
	verificationKeys        []string
	stateTransitionDelay    time.Duration
	proofGenerationDelay    time.Duration
}

type server interface {
	ListenAndServe(host string, router http.Handler, certFile, keyFile string) error
}

// HTTPServer represents an actual server implementation.
type HTTPServer struct{}

// ListenAndServe starts the server using the standard Go HTTP server implementation.
func (s *HTTPServer) ListenAndServe(host string, router http.Handler, certFile, keyFile string) error {
	if certFile != "" && keyFile != "" {
		return http.ListenAndServeTLS(host, certFile, keyFile, router)
	}

	return http.ListenAndServe(host, router) //nolint:gosec
}

// Cmd returns the Cobra start command.
func Cmd(server server) (*cobra.Command, error) {
	startCmd := createStartCMD(server)

	createFlags(startCmd)

	return startCmd, nil
}

func createStartCMD(server server) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the controller API",
		Long:  `Start the envelope and credential revocation controller API`,
		RunE: func(cmd *cobra.Command, args []string) error {
			parameters, err := getParameters(cmd)
			if err != nil {
				return err
			}

			parameters.server = server

			return startDaemon(parameters)
		},
	}
}

func getParameters(cmd *cobra.Command) (*daemonParameters, error) { //nolint:funlen,gocyclo
	logFormat, err := getUserSetVar(cmd, logFormatFlagName, logFormatEnvKey, true)
	if err != nil {
		return nil, err
	}

	logLevel, err := getUserSetVar(cmd, logLevelFlagName, logLevelEnvKey, true)
	if err != nil {
		return nil, err
	}

	if err = initLogging(logFormat, logLevel); err != nil {
		return nil, err
	}

	host, err := getUserSetVar(cmd, apiHostFlagName, apiHostEnvKey, false)
	if err != nil {
		return nil, err
	}

	token, err := getUserSetVar(cmd, apiTokenFlagName, apiTokenEnvKey, true)
	if err != nil {
		return nil, err
	}

	httpResolvers, err := getUserSetVars(cmd, httpResolverFlagName, httpResolverEnvKey, true)
	if err != nil {
		return nil, err
	}

	didCacheSize, err := getInt(cmd, didCacheSizeFlagName, didCacheSizeEnvKey, didCacheSizeDefault)
	if err != nil {
		return nil, err
	}

	didCacheTTL, err := getDuration(cmd, didCacheTTLFlagName, didCacheTTLEnvKey, "0")
	if err != nil {
		return nil, err
	}

	httpTimeout, err := getDuration(cmd, httpTimeoutFlagName, httpTimeoutEnvKey, httpTimeoutDefault)
	if err != nil {
		return nil, err
	}

	chains, err := getChains(cmd)
	if err != nil {
		return nil, err
	}

	chainMappings, err := getUserSetVars(cmd, chainMappingFlagName, chainMappingEnvKey, true)
	if err != nil {
		return nil, err
	}

	rpcTimeout, err := getInt(cmd, rpcTimeoutFlagName, rpcTimeoutEnvKey, rpcTimeoutDefault)
	if err != nil {
		return nil, err
	}

	verificationKeys, err := getUserSetVars(cmd, verificationKeyFlagName, verificationKeyEnvKey, true)
	if err != nil {
		return nil, err
	}

	stateTransitionDelay, err := getDuration(cmd, stateTransitionDelayFlagName, stateTransitionDelayEnvKey, "0")
	if err != nil {
		return nil, err
	}

	proofGenerationDelay, err := getDuration(cmd, proofGenerationDelayFlagName, proofGenerationDelayEnvKey, "0")
	if err != nil {
		return nil, err
	}

	tlsCertFile, err := getUserSetVar(cmd, tlsCertFileFlagName, tlsCertFileEnvKey, true)
	if err != nil {
		return nil, err
	}

	tlsKeyFile, err := getUserSetVar(cmd, tlsKeyFileFlagName, tlsKeyFileEnvKey, true)
	if err != nil {
		return nil, err
	}

	return &daemonParameters{
		host:                 host,
		token:                token,
		tlsCertFile:          tlsCertFile,
		tlsKeyFile:           tlsKeyFile,
		httpResolvers:        httpResolvers,
		didCacheSize:         didCacheSize,
		didCacheTTL:          didCacheTTL,
		httpTimeout:          httpTimeout,
		chains:               chains,
		chainMappings:        chainMappings,
		rpcTimeout:           uint64(rpcTimeout),
		verificationKeys:     verificationKeys,
		stateTransitionDelay: stateTransitionDelay,
		proofGenerationDelay: proofGenerationDelay,
	}, nil
}

func getChains(cmd *cobra.Command) ([]ethereum.Config, error) {
	values, err := getUserSetVars(cmd, chainFlagName, chainEnvKey, true)
	if err != nil {
		return nil, err
	}

	chains := make([]ethereum.Config, 0, len(values))

	for _, v := range values {
		cfg, err := ethereum.ParseConfig(v)
		if err != nil {
			return nil, err
		}

		chains = append(chains, cfg)
	}

	return chains, nil
}

func getInt(cmd *cobra.Command, flagName, envKey, defaultValue string) (int, error) {
	v, err := getUserSetVar(cmd, flagName, envKey, true)
	if err != nil {
		return 0, err
	}

	if v == "" {
		v = defaultValue
	}

	i, err := strconv.Atoi(v)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("failed to parse %s '%s': expected a non negative integer", flagName, v)
	}

	return i, nil
}

func getDuration(cmd *cobra.Command, flagName, envKey, defaultValue string) (time.Duration, error) {
	v, err := getUserSetVar(cmd, flagName, envKey, true)
	if err != nil {
		return 0, err
	}

	if v == "" {
		v = defaultValue
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s '%s': %w", flagName, v, err)
	}

	return d, nil
}

func createFlags(startCmd *cobra.Command) {
	// api host flag
	startCmd.Flags().StringP(apiHostFlagName, apiHostFlagShorthand, "", apiHostFlagUsage)

	// api token flag
	startCmd.Flags().StringP(apiTokenFlagName, apiTokenFlagShorthand, "", apiTokenFlagUsage)

	// log level
	startCmd.Flags().StringP(logLevelFlagName, "", "", logLevelFlagUsage)

	// log format
	startCmd.Flags().StringP(logFormatFlagName, "", "", logFormatFlagUsage)

	// http resolver url flag
	startCmd.Flags().StringSliceP(httpResolverFlagName, httpResolverFlagShorthand, []string{},
		httpResolverFlagUsage)

	// did cache
	startCmd.Flags().StringP(didCacheSizeFlagName, "", "", didCacheSizeFlagUsage)
	startCmd.Flags().StringP(didCacheTTLFlagName, "", "", didCacheTTLFlagUsage)

	// chains
	startCmd.Flags().StringSliceP(chainFlagName, chainFlagShorthand, []string{}, chainFlagUsage)
	startCmd.Flags().StringSliceP(chainMappingFlagName, "", []string{}, chainMappingFlagUsage)
	startCmd.Flags().StringP(rpcTimeoutFlagName, "", "", rpcTimeoutFlagUsage)

	// outbound http timeout
	startCmd.Flags().StringP(httpTimeoutFlagName, "", "", httpTimeoutFlagUsage)

	// verification keys
	startCmd.Flags().StringSliceP(verificationKeyFlagName, verificationKeyFlagShorthand, []string{},
		verificationKeyFlagUsage)

	// verification policy
	startCmd.Flags().StringP(stateTransitionDelayFlagName, "", "", stateTransitionDelayFlagUsage)
	startCmd.Flags().StringP(proofGenerationDelayFlagName, "", "", proofGenerationDelayFlagUsage)

	// tls
	startCmd.Flags().StringP(tlsCertFileFlagName, "", "", tlsCertFileFlagUsage)
	startCmd.Flags().StringP(tlsKeyFileFlagName, tlsKeyFileFlagShorthand, "", tlsKeyFileFlagUsage)
}

func getUserSetVar(cmd *cobra.Command, flagName, envKey string, isOptional bool) (string, error) {
	if cmd.Flags().Changed(flagName) {
		value, err := cmd.Flags().GetString(flagName)
		if err != nil {
			return "", fmt.Errorf(flagName+" flag not found: %s", err)
		}

		return value, nil
	}

	value, isSet := os.LookupEnv(envKey)

	if isOptional || isSet {
		return value, nil
	}

	return "", errors.New("Neither " + flagName + " (command line flag) nor " + envKey +
		" (environment variable) have been set.")
}

func getUserSetVars(cmd *cobra.Command, flagName, envKey string, isOptional bool) ([]string, error) {
	if cmd.Flags().Changed(flagName) {
		value, err := cmd.Flags().GetStringSlice(flagName)
		if err != nil {
			return nil, fmt.Errorf(flagName+" flag not found: %s", err)
		}

		return value, nil
	}

	value, isSet := os.LookupEnv(envKey)

	var values []string

	if isSet {
		values = strings.Split(value, ",")
	}

	if isOptional || isSet {
		return values, nil
	}

	return nil, fmt.Errorf(" %s not set. "+
		"It must be set via either command line or environment variable", flagName)
}

func initLogging(format, level string) error {
	provider, err := newZapProvider(format)
	if err != nil {
		return err
	}

	log.Initialize(provider)

	if level != "" {
		lvl, parseErr := log.ParseLevel(level)
		if parseErr != nil {
			return fmt.Errorf("failed to parse log level '%s' : %w", level, parseErr)
		}

		log.SetLevel("", lvl)

		logger.Infof("logger level set to %s", level)
	}

	return nil
}

func validateAuthorizationBearerToken(w http.ResponseWriter, r *http.Request, token string) bool {
	actHdr := r.Header.Get("Authorization")
	expHdr := "Bearer " + token

	if subtle.ConstantTimeCompare([]byte(actHdr), []byte(expHdr)) != 1 {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("Unauthorised.\n")) // nolint:gosec,errcheck

		return false
	}

	return true
}

func authorizationMiddleware(token string) mux.MiddlewareFunc {
	middleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if validateAuthorizationBearerToken(w, r, token) {
				next.ServeHTTP(w, r)
			}
		})
	}

	return middleware
}

func startDaemon(parameters *daemonParameters) error {
	if parameters.host == "" {
		return errMissingHost
	}

	ctx, err := createProvider(parameters)
	if err != nil {
		return fmt.Errorf("failed to start zkcomm rest on port [%s] : %w", parameters.host, err)
	}

	// get all HTTP REST API handlers available for controller API
	handlers, err := controller.GetRESTHandlers(ctx)
	if err != nil {
		return fmt.Errorf("failed to start zkcomm rest on port [%s], failed to get rest service api :  %w",
			parameters.host, err)
	}

	router := mux.NewRouter()

	if parameters.token != "" {
		router.Use(authorizationMiddleware(parameters.token))
	}

	for _, handler := range handlers {
		router.HandleFunc(handler.Path(), handler.Handle()).Methods(handler.Method())
	}

	logger.Infof("Starting zkcomm rest on host [%s]", parameters.host)
	// start server on given port and serve using given handlers
	handler := cors.New(
		cors.Options{
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodHead},
			AllowedHeaders: []string{"Origin", "Accept", "Content-Type", "X-Requested-With", "Authorization"},
		},
	).Handler(router)

	err = parameters.server.ListenAndServe(parameters.host, handler, parameters.tlsCertFile, parameters.tlsKeyFile)
	if err != nil {
		return fmt.Errorf("failed to start zkcomm rest on port [%s], cause:  %w", parameters.host, err)
	}

	return nil
}
