/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package packager

import (
	"io"
	"net/http"

	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/command"
	cmdpackager "github.com/hyperledger/aries-zkcomm-go/pkg/controller/command/packager"
	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/rest"
)

// constants for packager operations.
const (
	PackagerOperationID = "/packager"
	UnpackPath          = PackagerOperationID + "/unpack"
	PackPath            = PackagerOperationID + "/pack"
	MediaTypesPath      = PackagerOperationID + "/mediatypes"
)

type packagerCommand interface {
	Unpack(rw io.Writer, req io.Reader) command.Error
	Pack(rw io.Writer, req io.Reader) command.Error
	MediaTypes(rw io.Writer, req io.Reader) command.Error
}

// Operation contains basic common operations provided by controller REST API.
type Operation struct {
	handlers []rest.Handler
	command  packagerCommand
}

// New returns new packager operations rest client instance.
func New(p cmdpackager.Packager) *Operation {
	o := &Operation{command: cmdpackager.New(p)}
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
		cmdutil.NewHTTPHandler(UnpackPath, http.MethodPost, o.Unpack),
		cmdutil.NewHTTPHandler(PackPath, http.MethodPost, o.Pack),
		cmdutil.NewHTTPHandler(MediaTypesPath, http.MethodGet, o.MediaTypes),
	}
}

// Unpack swagger:route POST /packager/unpack packager unpackReq
//
// Unpacks an envelope of any supported media type and authenticates its sender.
//
// Responses:
//    default: genericError
//        200: unpackRes
func (o *Operation) Unpack(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.Unpack, rw, req.Body)
}

// Pack swagger:route POST /packager/pack packager packReq
//
// Packs a message into an envelope of the requested media type.
//
// Responses:
//    default: genericError
//        200: packRes
func (o *Operation) Pack(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.Pack, rw, req.Body)
}

// MediaTypes swagger:route GET /packager/mediatypes packager mediaTypes
//
// Lists the media types the packager handles.
//
// Responses:
//    default: genericError
//        200: mediaTypesRes
func (o *Operation) MediaTypes(rw http.ResponseWriter, req *http.Request) {
	rest.Execute(o.command.MediaTypes, rw, req.Body)
}
