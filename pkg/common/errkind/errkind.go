/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package errkind holds the error taxonomy shared by the envelope and revocation layers.
//
// Every failure surfaced by a packer or a resolver carries exactly one Kind together with the
// structured fields relevant to it (media type, circuit id, chain id, status type, option name),
// so that security logging can tell causes apart without parsing message text.
//
// Kinds implement error, which makes them usable as errors.Is targets:
//
//	if errors.Is(err, errkind.SenderNotBound) { ... }
package errkind

import (
	"errors"
	"fmt"
	"strings"
)

// Category groups kinds by the way callers are expected to react to them.
type Category int32

const (
	// Routing errors are fatal per call and never retried.
	Routing Category = iota
	// Authentication errors are fatal and must never be downgraded to "accepted but unverified".
	Authentication
	// Resolution errors are reported per credential and must not abort a batch.
	Resolution
	// Configuration errors indicate caller misuse.
	Configuration
)

// Kind is a single error kind.
type Kind int32

// Error kinds.
const (
	Unknown Kind = iota

	// routing.
	MalformedEnvelope
	UnsupportedMediaType
	MalformedMessage

	// authentication.
	SenderMismatch
	SignatureInvalid
	KeyNotFound
	NoVerificationMethod
	KeyMaterialNotFound
	ProofInvalid
	StateVerificationFailed
	SenderNotBound
	UnknownCircuit
	UnsupportedCircuit
	PolicyViolation

	// resolution.
	ResolverNotFound
	UnsupportedChain
	ContractCallFailed
	ProofNotAvailable
	MalformedStatusID
	RevocationNonceMismatch
	MalformedResponse
	FetchFailed

	// configuration.
	MissingOption
	NoProvingMethod
	SignerRequired
)

//nolint:gochecknoglobals
var kindNames = map[Kind]string{
	Unknown:                 "unknown",
	MalformedEnvelope:       "malformed envelope",
	UnsupportedMediaType:    "unsupported media type",
	MalformedMessage:        "malformed message",
	SenderMismatch:          "sender mismatch",
	SignatureInvalid:        "signature invalid",
	KeyNotFound:             "key not found",
	NoVerificationMethod:    "no verification method",
	KeyMaterialNotFound:     "key material not found",
	ProofInvalid:            "proof invalid",
	StateVerificationFailed: "state verification failed",
	SenderNotBound:          "sender not bound to proof",
	UnknownCircuit:          "unknown circuit",
	UnsupportedCircuit:      "unsupported circuit",
	PolicyViolation:         "verification policy violation",
	ResolverNotFound:        "resolver not found",
	UnsupportedChain:        "unsupported chain",
	ContractCallFailed:      "contract call failed",
	ProofNotAvailable:       "proof not available",
	MalformedStatusID:       "malformed status id",
	RevocationNonceMismatch: "revocation nonce mismatch",
	MalformedResponse:       "malformed response",
	FetchFailed:             "fetch failed",
	MissingOption:           "missing option",
	NoProvingMethod:         "no proving method",
	SignerRequired:          "signer required",
}

// String returns the kind name.
func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return fmt.Sprintf("kind(%d)", int32(k))
}

// Error makes Kind usable as an errors.Is target.
func (k Kind) Error() string {
	return k.String()
}

// Category returns the category of the kind.
func (k Kind) Category() Category {
	switch {
	case k >= SenderMismatch && k <= PolicyViolation:
		return Authentication
	case k >= ResolverNotFound && k <= FetchFailed:
		return Resolution
	case k >= MissingOption:
		return Configuration
	default:
		return Routing
	}
}

// Error is a classified failure.
type Error struct {
	Kind       Kind
	Op         string
	MediaType  string
	CircuitID  string
	ChainID    int64
	StatusType string
	Option     string
	Err        error
}

// New returns a new classified error for operation op wrapping err (which may be nil).
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf returns a new classified error whose cause is built from format and args.
func Errorf(kind Kind, op, format string, args ...interface{}) *Error {
	return New(kind, op, fmt.Errorf(format, args...))
}

// Missing returns a MissingOption error naming the missing option.
func Missing(op, option string) *Error {
	return &Error{Kind: MissingOption, Op: op, Option: option}
}

// WithMediaType sets the media type field.
func (e *Error) WithMediaType(mt string) *Error {
	e.MediaType = mt

	return e
}

// WithCircuit sets the circuit id field.
func (e *Error) WithCircuit(id string) *Error {
	e.CircuitID = id

	return e
}

// WithChain sets the chain id field.
func (e *Error) WithChain(id int64) *Error {
	e.ChainID = id

	return e
}

// WithStatusType sets the credential status type field.
func (e *Error) WithStatusType(t string) *Error {
	e.StatusType = t

	return e
}

func (e *Error) Error() string {
	var sb strings.Builder

	if e.Op != "" {
		sb.WriteString(e.Op)
		sb.WriteString(": ")
	}

	sb.WriteString(e.Kind.String())

	fields := make([]string, 0, 5) //nolint:gomnd

	if e.MediaType != "" {
		fields = append(fields, "mediaType="+e.MediaType)
	}

	if e.CircuitID != "" {
		fields = append(fields, "circuitId="+e.CircuitID)
	}

	if e.ChainID != 0 {
		fields = append(fields, fmt.Sprintf("chainId=%d", e.ChainID))
	}

	if e.StatusType != "" {
		fields = append(fields, "statusType="+e.StatusType)
	}

	if e.Option != "" {
		fields = append(fields, "option="+e.Option)
	}

	if len(fields) > 0 {
		sb.WriteString(" [")
		sb.WriteString(strings.Join(fields, " "))
		sb.WriteString("]")
	}

	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}

	return sb.String()
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the Kind of e.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)

	return ok && k == e.Kind
}

// KindOf returns the kind of the first classified error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return Unknown
}
