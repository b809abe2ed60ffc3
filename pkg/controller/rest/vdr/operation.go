/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package vdr

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/command"
	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/command/vdr"
	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/rest"
	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/did"
)

// constants for the VDR operations.
const (
	VDROperationID = "/vdr"
	vdrDIDPath     = VDROperationID + "/did"
	ResolveDIDPath = vdrDIDPath + "/resolve/{id}"
	CachePath      = VDROperationID + "/cache"
)

type vdrCommand interface {
	ResolveDID(rw io.Writer, req io.Reader) command.Error
	PurgeCache(rw io.Writer, req io.Reader) command.Error
}

// Operation contains basic common operations provided by controller REST API.
type Operation struct {
	handlers []rest.Handler
	command  vdrCommand
}

// New returns new vdr operations rest client instance.
func New(resolver did.Resolver) *Operation {
	o := &Operation{command: vdr.New(resolver)}
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
		cmdutil.NewHTTPHandler(ResolveDIDPath, http.MethodGet, o.ResolveDID),
		cmdutil.NewHTTPHandler(CachePath, http.MethodDelete, o.PurgeCache),
	}
}

// ResolveDID swagger:route GET /vdr/did/resolve/{id} vdr resolveDIDReq
//
// Resolve did.
//
// Responses:
//    default: genericError
//        200: resolveDIDRes
func (o *Operation) ResolveDID(rw http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	decoded, err := base64.URLEncoding.DecodeString(id)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(id)
	}

	if err != nil {
		rest.SendHTTPStatusError(rw, http.StatusBadRequest, vdr.InvalidRequestErrorCode,
			fmt.Errorf("failed to decode id '%s': %w", id, err))

		return
	}

	request, err := json.Marshal(&vdr.IDArg{ID: string(decoded)})
	if err != nil {
		rest.SendHTTPStatusError(rw, http.StatusInternalServerError, vdr.ResolveDIDErrorCode, err)

		return
	}

	rest.Execute(o.command.ResolveDID, rw, bytes.NewBuffer(request))
}

// PurgeCache swagger:route DELETE /vdr/cache vdr purgeCache
//
// Drops cached DID documents.
//
// Responses:
//    default: genericError
func (o *Operation) PurgeCache(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.PurgeCache, rw, req.Body)
}
