/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package command

import (
	"io"
)

// Exec runs a command: it reads a JSON request from req and writes a JSON response to rw.
type Exec func(rw io.Writer, req io.Reader) Error

// Handler exposes one method of a command.
type Handler interface {
	Name() string
	Method() string
	Handle() Exec
}

// Lookup returns the Exec of the name/method pair among handlers.
func Lookup(handlers []Handler, name, method string) (Exec, bool) {
	for _, h := range handlers {
		if h.Name() == name && h.Method() == method {
			return h.Handle(), true
		}
	}

	return nil, false
}
