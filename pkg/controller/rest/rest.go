/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package rest

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/command"
)

var logger = log.New("zkcomm/rest")

// Handler serves one controller API route.
type Handler interface {
	Path() string
	Method() string
	Handle() http.HandlerFunc
}

// genericError is the error response of the controller API.
// swagger:response genericError
type genericError struct { //nolint:unused
	// in: body
	Body genericErrorBody
}

type genericErrorBody struct {
	Code    command.Code `json:"code"`
	Message string       `json:"message"`
}

// SendError writes err as a genericError: 400 for validation errors, 500 otherwise.
func SendError(rw http.ResponseWriter, err command.Error) {
	var status int

	switch err.Type() {
	case command.ValidationError:
		status = http.StatusBadRequest
	default:
		status = http.StatusInternalServerError
	}

	SendHTTPStatusError(rw, status, err.Code(), err)
}

// SendHTTPStatusError sends given http status code to response with error body.
func SendHTTPStatusError(rw http.ResponseWriter, httpStatus int, code command.Code, err error) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(httpStatus)

	e := json.NewEncoder(rw).Encode(genericErrorBody{
		Code:    code,
		Message: err.Error(),
	})
	if e != nil {
		logger.Errorf("Unable to send error response, %s", e)
	}
}

// Execute runs exec on the request body. A command error is written as a genericError.
func Execute(exec command.Exec, rw http.ResponseWriter, req io.Reader) {
	rw.Header().Set("Content-Type", "application/json")

	err := exec(rw, req)
	if err != nil {
		SendError(rw, err)
	}
}
