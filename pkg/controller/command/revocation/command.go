/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package revocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/command"
	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/verifiable"
	"github.com/hyperledger/aries-zkcomm-go/pkg/internal/logutil"
	"github.com/hyperledger/aries-zkcomm-go/pkg/revocation"
)

var logger = log.New("zkcomm/command/revocation")

// Error codes.
const (
	// InvalidRequestErrorCode is typically a code for invalid requests.
	InvalidRequestErrorCode = command.Code(iota + command.Revocation)

	// ResolveStatusErrorCode for status resolution errors.
	ResolveStatusErrorCode

	// AllRevokedErrorCode when no candidate credential is usable.
	AllRevokedErrorCode
)

// constants for the revocation controller's methods.
const (
	// command name.
	CommandName = "revocation"

	// command methods.
	ResolveStatusCommandMethod   = "ResolveStatus"
	FirstNonRevokedCommandMethod = "FirstNonRevoked"
	StatusTypesCommandMethod     = "StatusTypes"

	// error messages.
	errEmptyCredentialStatus = "credentialStatus is mandatory"
	errEmptyCandidates       = "candidates are mandatory"

	// log constants.
	statusTypeKey = "statusType"
)

// Command contains command operations provided by revocation controller.
type Command struct {
	registry *revocation.Registry
}

// New returns new revocation controller command instance.
func New(registry *revocation.Registry) *Command {
	return &Command{registry: registry}
}

// GetHandlers returns list of all commands supported by this controller command.
func (c *Command) GetHandlers() []command.Handler {
	return []command.Handler{
		cmdutil.NewCommandHandler(CommandName, ResolveStatusCommandMethod, c.ResolveStatus),
		cmdutil.NewCommandHandler(CommandName, FirstNonRevokedCommandMethod, c.FirstNonRevoked),
		cmdutil.NewCommandHandler(CommandName, StatusTypesCommandMethod, c.StatusTypes),
	}
}

// ResolveStatus resolves the revocation status of a credential, falling back to the issuer status chain.
func (c *Command) ResolveStatus(rw io.Writer, req io.Reader) command.Error {
	var request ResolveStatusRequest

	err := json.NewDecoder(req).Decode(&request)
	if err != nil {
		logutil.LogInfo(logger, CommandName, ResolveStatusCommandMethod, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf("request decode : %w", err))
	}

	candidate, err := toCandidate(&request)
	if err != nil {
		logutil.LogInfo(logger, CommandName, ResolveStatusCommandMethod, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, err)
	}

	status, err := c.registry.ResolveWithFallback(context.Background(), candidate.Status, candidate.Opts...)
	if err != nil {
		logutil.LogFailure(logger, CommandName, ResolveStatusCommandMethod, err,
			logutil.CreateKeyValueString(statusTypeKey, string(candidate.Status.Type)))

		return command.NewKindError(ResolveStatusErrorCode, fmt.Errorf("resolve status: %w", err))
	}

	command.WriteNillableResponse(rw, &ResolveStatusResponse{Revoked: status.Revoked(), Status: status}, logger)

	logutil.LogDebug(logger, CommandName, ResolveStatusCommandMethod, "success",
		logutil.CreateKeyValueString(statusTypeKey, string(candidate.Status.Type)),
		logutil.CreateKeyValueString("revoked", strconv.FormatBool(status.Revoked())))

	return nil
}

// FirstNonRevoked returns the first candidate credential, in request order, that is not revoked.
func (c *Command) FirstNonRevoked(rw io.Writer, req io.Reader) command.Error {
	var request FirstNonRevokedRequest

	err := json.NewDecoder(req).Decode(&request)
	if err != nil {
		logutil.LogInfo(logger, CommandName, FirstNonRevokedCommandMethod, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf("request decode : %w", err))
	}

	if len(request.Candidates) == 0 {
		logutil.LogDebug(logger, CommandName, FirstNonRevokedCommandMethod, errEmptyCandidates)
		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyCandidates))
	}

	candidates := make([]revocation.Candidate, len(request.Candidates))

	for i := range request.Candidates {
		candidate, err := toCandidate(&request.Candidates[i])
		if err != nil {
			logutil.LogInfo(logger, CommandName, FirstNonRevokedCommandMethod, err.Error())
			return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf("candidate %d: %w", i, err))
		}

		candidates[i] = *candidate
	}

	i, status, err := revocation.FirstNonRevoked(context.Background(), c.registry, candidates)
	if err != nil {
		logutil.LogError(logger, CommandName, FirstNonRevokedCommandMethod, err.Error())

		if errors.Is(err, revocation.ErrRevoked) {
			return command.NewValidationError(AllRevokedErrorCode, err)
		}

		return command.NewExecuteError(ResolveStatusErrorCode, err)
	}

	command.WriteNillableResponse(rw, &FirstNonRevokedResponse{Index: i, Status: status}, logger)

	logutil.LogDebug(logger, CommandName, FirstNonRevokedCommandMethod, "success",
		logutil.CreateKeyValueString("index", strconv.Itoa(i)))

	return nil
}

// StatusTypes lists the credential status types resolvers are registered for.
func (c *Command) StatusTypes(rw io.Writer, _ io.Reader) command.Error {
	command.WriteNillableResponse(rw, &StatusTypesResponse{StatusTypes: c.registry.StatusTypes()}, logger)

	return nil
}

type resolveOptions struct {
	IssuerDID   string
	UserDID     string
	IssuerState string
}

func toCandidate(request *ResolveStatusRequest) (*revocation.Candidate, error) {
	if len(request.CredentialStatus) == 0 {
		return nil, errors.New(errEmptyCredentialStatus)
	}

	status, err := verifiable.ParseCredentialStatus(request.CredentialStatus)
	if err != nil {
		return nil, err
	}

	var o resolveOptions

	if err = command.DecodeOptions(request.Options, &o); err != nil {
		return nil, err
	}

	var opts []revocation.ResolveOption

	if o.IssuerDID != "" {
		opts = append(opts, revocation.WithIssuerDID(o.IssuerDID))
	}

	if o.UserDID != "" {
		opts = append(opts, revocation.WithUserDID(o.UserDID))
	}

	if o.IssuerState != "" {
		s, ok := new(big.Int).SetString(o.IssuerState, 0)
		if !ok {
			return nil, fmt.Errorf("issuerState '%s' is not a number", o.IssuerState)
		}

		opts = append(opts, revocation.WithIssuerState(s))
	}

	return &revocation.Candidate{Status: status, Opts: opts}, nil
}
