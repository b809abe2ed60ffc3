/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package vdr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/command"
	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/did"
	"github.com/hyperledger/aries-zkcomm-go/pkg/internal/logutil"
	"github.com/hyperledger/aries-zkcomm-go/pkg/vdr"
)

var logger = log.New("zkcomm/command/vdr")

// Error codes.
const (
	// InvalidRequestErrorCode is typically a code for invalid requests.
	InvalidRequestErrorCode = command.Code(iota + command.VDR)

	// ResolveDIDErrorCode for resolve did error.
	ResolveDIDErrorCode

	// PurgeCacheErrorCode for purge cache error.
	PurgeCacheErrorCode
)

// constants for the VDR controller's methods.
const (
	// command name.
	CommandName = "vdr"

	// command methods.
	ResolveDIDCommandMethod = "ResolveDID"
	PurgeCacheCommandMethod = "PurgeCache"

	// error messages.
	errEmptyDIDID = "did is mandatory"

	// log constants.
	didID = "did"
)

type purger interface {
	Purge()
}

// Command contains command operations provided by vdr controller.
type Command struct {
	resolver did.Resolver
}

// New returns new vdr controller command instance.
func New(resolver did.Resolver) *Command {
	return &Command{resolver: resolver}
}

// GetHandlers returns list of all commands supported by this controller command.
func (o *Command) GetHandlers() []command.Handler {
	return []command.Handler{
		cmdutil.NewCommandHandler(CommandName, ResolveDIDCommandMethod, o.ResolveDID),
		cmdutil.NewCommandHandler(CommandName, PurgeCacheCommandMethod, o.PurgeCache),
	}
}

// ResolveDID resolve did.
func (o *Command) ResolveDID(rw io.Writer, req io.Reader) command.Error {
	var request IDArg

	err := json.NewDecoder(req).Decode(&request)
	if err != nil {
		logutil.LogInfo(logger, CommandName, ResolveDIDCommandMethod, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf("request decode : %w", err))
	}

	if request.ID == "" {
		logutil.LogDebug(logger, CommandName, ResolveDIDCommandMethod, errEmptyDIDID)
		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyDIDID))
	}

	doc, err := o.resolver.Resolve(context.Background(), request.ID)
	if err != nil {
		logutil.LogError(logger, CommandName, ResolveDIDCommandMethod, "resolve did doc: "+err.Error(),
			logutil.CreateKeyValueString(didID, request.ID))

		if errors.Is(err, vdr.ErrNotFound) {
			return command.NewValidationError(ResolveDIDErrorCode, fmt.Errorf("resolve did doc: %w", err))
		}

		return command.NewExecuteError(ResolveDIDErrorCode, fmt.Errorf("resolve did doc: %w", err))
	}

	docBytes, err := doc.JSONBytes()
	if err != nil {
		logutil.LogError(logger, CommandName, ResolveDIDCommandMethod, "marshal did doc: "+err.Error(),
			logutil.CreateKeyValueString(didID, request.ID))

		return command.NewExecuteError(ResolveDIDErrorCode, fmt.Errorf("marshal did doc: %w", err))
	}

	_, err = rw.Write(docBytes)
	if err != nil {
		logger.Errorf("Unable to send error response, %s", err)
	}

	logutil.LogDebug(logger, CommandName, ResolveDIDCommandMethod, "success",
		logutil.CreateKeyValueString(didID, request.ID))

	return nil
}

// PurgeCache drops every cached DID document.
func (o *Command) PurgeCache(rw io.Writer, _ io.Reader) command.Error {
	p, ok := o.resolver.(purger)
	if !ok {
		logutil.LogDebug(logger, CommandName, PurgeCacheCommandMethod, "resolver has no cache")
		return command.NewValidationError(PurgeCacheErrorCode, errors.New("resolver has no cache"))
	}

	p.Purge()

	command.WriteNillableResponse(rw, nil, logger)

	logutil.LogDebug(logger, CommandName, PurgeCacheCommandMethod, "success")

	return nil
}
