/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package revocation

import (
	"io"
	"net/http"

	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/command"
	cmdrevocation "github.com/hyperledger/aries-zkcomm-go/pkg/controller/command/revocation"
	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/rest"
	"github.com/hyperledger/aries-zkcomm-go/pkg/revocation"
)

// constants for revocation operations.
const (
	RevocationOperationID = "/revocation"
	ResolveStatusPath     = RevocationOperationID + "/status"
	FirstNonRevokedPath   = RevocationOperationID + "/first-non-revoked"
	StatusTypesPath       = RevocationOperationID + "/status-types"
)

type revocationCommand interface {
	ResolveStatus(rw io.Writer, req io.Reader) command.Error
	FirstNonRevoked(rw io.Writer, req io.Reader) command.Error
	StatusTypes(rw io.Writer, req io.Reader) command.Error
}

// Operation contains basic common operations provided by controller REST API.
type Operation struct {
	handlers []rest.Handler
	command  revocationCommand
}

// New returns new revocation operations rest client instance.
func New(registry *revocation.Registry) *Operation {
	o := &Operation{command: cmdrevocation.New(registry)}
	o.registerHandler()

	return o
}

// GetRESTHandlers get all controller API handler available for this service.
func (o *Operation) GetRESTHandlers() []rest.Handler {
	return o.handlers
}

// registerHandler register handlers to be exposed from this protocol service as REST API endpoints.
func (o *Operation) registerHandler() {
	o.handlers = []rest.Handler{
		cmdutil.NewHTTPHandler(ResolveStatusPath, http.MethodPost, o.ResolveStatus),
		cmdutil.NewHTTPHandler(FirstNonRevokedPath, http.MethodPost, o.FirstNonRevoked),
		cmdutil.NewHTTPHandler(StatusTypesPath, http.MethodGet, o.StatusTypes),
	}
}

// ResolveStatus swagger:route POST /revocation/status revocation resolveStatusReq
//
// Resolves the revocation status of a credential.
//
// Responses:
//    default: genericError
//        200: resolveStatusRes
func (o *Operation) ResolveStatus(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.ResolveStatus, rw, req.Body)
}

// FirstNonRevoked swagger:route POST /revocation/first-non-revoked revocation firstNonRevokedReq
//
// Returns the first of the given credentials that is not revoked.
//
// Responses:
//    default: genericError
//        200: firstNonRevokedRes
func (o *Operation) FirstNonRevoked(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.FirstNonRevoked, rw, req.Body)
}

// StatusTypes swagger:route GET /revocation/status-types revocation statusTypes
//
// Lists the credential status types that can be resolved.
//
// Responses:
//    default: genericError
//        200: statusTypesRes
func (o *Operation) StatusTypes(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.StatusTypes, rw, req.Body)
}
