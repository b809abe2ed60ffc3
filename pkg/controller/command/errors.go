/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package command

import (
	"github.com/hyperledger/aries-zkcomm-go/pkg/common/errkind"
)

// Type is command error type.
type Type int32

const (
	// ValidationError is error type for command validation errors.
	ValidationError Type = iota

	// ExecuteError is error type for command execution failure.
	ExecuteError Type = iota
)

// Code is the error code of command errors.
type Code int32

const (
	// UnknownStatus default error code for unknown errors.
	UnknownStatus Code = iota
)

// Group is the error groups.
// Note: recommended to use [0-9]*000 pattern for any new entries.
type Group int32

const (
	// Common error group for general command errors.
	Common Group = 1000

	// Packager error group for envelope pack and unpack errors.
	Packager Group = 2000

	// Revocation error group for credential status resolution errors.
	Revocation Group = 3000

	// VDR error group for DID resolution errors.
	VDR Group = 4000
)

// Error is the  interface for representing an command error condition, with the nil value representing no error.
type Error interface {
	error
	// Code returns error code for this command error.
	Code() Code
	// Type returns error type for this command error.
	Type() Type
}

// NewValidationError returns new command validation error.
func NewValidationError(code Code, err error) Error {
	return &commandError{err, code, ValidationError}
}

// NewExecuteError returns new command execute error.
func NewExecuteError(code Code, err error) Error {
	return &commandError{err, code, ExecuteError}
}

// NewKindError returns a command error typed by the error kind of err: caller misuse and rejected input are
// validation errors, failures to reach or read a collaborator are execute errors.
func NewKindError(code Code, err error) Error {
	switch errkind.KindOf(err).Category() {
	case errkind.Resolution:
		return NewExecuteError(code, err)
	default:
		return NewValidationError(code, err)
	}
}

// commandError implements basic command Error.
type commandError struct {
	error
	code    Code
	errType Type
}

func (c *commandError) Code() Code {
	return c.code
}

func (c *commandError) Type() Type {
	return c.errType
}

// Unwrap returns the cause.
func (c *commandError) Unwrap() error {
	return c.error
}
