/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package controller

import (
	"errors"

	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/command"
	packagercmd "github.com/hyperledger/aries-zkcomm-go/pkg/controller/command/packager"
	revocationcmd "github.com/hyperledger/aries-zkcomm-go/pkg/controller/command/revocation"
	vdrcmd "github.com/hyperledger/aries-zkcomm-go/pkg/controller/command/vdr"
	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/rest"
	packagerrest "github.com/hyperledger/aries-zkcomm-go/pkg/controller/rest/packager"
	revocationrest "github.com/hyperledger/aries-zkcomm-go/pkg/controller/rest/revocation"
	vdrrest "github.com/hyperledger/aries-zkcomm-go/pkg/controller/rest/vdr"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/did"
	"github.com/hyperledger/aries-zkcomm-go/pkg/revocation"
)

// Provider holds the collaborators exposed by the controller. Unset collaborators are not exposed.
type Provider struct {
	Packager           packagercmd.Packager
	RevocationRegistry *revocation.Registry
	VDR                did.Resolver
}

var errNothingExposed = errors.New("controller: no packager, revocation registry or DID resolver to expose")

// GetRESTHandlers returns all REST handlers provided by controller.
func GetRESTHandlers(ctx *Provider) ([]rest.Handler, error) {
	var allHandlers []rest.Handler

	if ctx.Packager != nil {
		allHandlers = append(allHandlers, packagerrest.New(ctx.Packager).GetRESTHandlers()...)
	}

	if ctx.RevocationRegistry != nil {
		allHandlers = append(allHandlers, revocationrest.New(ctx.RevocationRegistry).GetRESTHandlers()...)
	}

	if ctx.VDR != nil {
		allHandlers = append(allHandlers, vdrrest.New(ctx.VDR).GetRESTHandlers()...)
	}

	if len(allHandlers) == 0 {
		return nil, errNothingExposed
	}

	return allHandlers, nil
}

// GetCommandHandlers returns all command handlers provided by controller.
func GetCommandHandlers(ctx *Provider) ([]command.Handler, error) {
	var allHandlers []command.Handler

	if ctx.Packager != nil {
		allHandlers = append(allHandlers, packagercmd.New(ctx.Packager).GetHandlers()...)
	}

	if ctx.RevocationRegistry != nil {
		allHandlers = append(allHandlers, revocationcmd.New(ctx.RevocationRegistry).GetHandlers()...)
	}

	if ctx.VDR != nil {
		allHandlers = append(allHandlers, vdrcmd.New(ctx.VDR).GetHandlers()...)
	}

	if len(allHandlers) == 0 {
		return nil, errNothingExposed
	}

	return allHandlers, nil
}
