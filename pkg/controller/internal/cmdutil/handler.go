/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package cmdutil builds the command and REST handlers exposed by the controllers.
package cmdutil

import (
	"net/http"

	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/command"
)

// HTTPHandler binds a handle func to a route.
type HTTPHandler struct {
	path   string
	method string
	handle http.HandlerFunc
}

// NewHTTPHandler returns a handler serving method requests on path.
func NewHTTPHandler(path, method string, handle http.HandlerFunc) *HTTPHandler {
	return &HTTPHandler{path: path, method: method, handle: handle}
}

// Path is the route template, mux variables included.
func (h *HTTPHandler) Path() string { return h.path }

// Method is the HTTP method.
func (h *HTTPHandler) Method() string { return h.method }

// Handle returns the handle func.
func (h *HTTPHandler) Handle() http.HandlerFunc { return h.handle }

// CommandHandler binds an Exec to a command name and method, e.g. "packager"/"Unpack".
type CommandHandler struct {
	name   string
	method string
	exec   command.Exec
}

// NewCommandHandler returns a handler for the named command method.
func NewCommandHandler(name, method string, exec command.Exec) *CommandHandler {
	return &CommandHandler{name: name, method: method, exec: exec}
}

// Name is the command name.
func (c *CommandHandler) Name() string { return c.name }

// Method is the command method.
func (c *CommandHandler) Method() string { return c.method }

// Handle returns the Exec.
func (c *CommandHandler) Handle() command.Exec { return c.exec }
