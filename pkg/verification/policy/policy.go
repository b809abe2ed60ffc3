/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package policy holds the time windows within which stale identity state and old proofs are still
// accepted.
package policy

import (
	"time"

	"github.com/hyperledger/aries-zkcomm-go/pkg/common/errkind"
)

const (
	// DefaultStateTransitionDelay is how long a replaced state or global root stays acceptable.
	DefaultStateTransitionDelay = 5 * time.Minute
	// DefaultProofGenerationDelay is how old a message may be when it is unpacked.
	DefaultProofGenerationDelay = 24 * time.Hour
)

// Options is the verification policy.
type Options struct {
	AcceptedStateTransitionDelay time.Duration
	AcceptedProofGenerationDelay time.Duration
	Now                          func() time.Time
}

// Option configures the policy.
type Option func(opts *Options)

// WithAcceptedStateTransitionDelay sets how long a replaced state stays acceptable.
func WithAcceptedStateTransitionDelay(d time.Duration) Option {
	return func(opts *Options) {
		opts.AcceptedStateTransitionDelay = d
	}
}

// WithAcceptedProofGenerationDelay sets how old a message may be.
func WithAcceptedProofGenerationDelay(d time.Duration) Option {
	return func(opts *Options) {
		opts.AcceptedProofGenerationDelay = d
	}
}

// WithNow sets the clock.
func WithNow(now func() time.Time) Option {
	return func(opts *Options) {
		opts.Now = now
	}
}

// New returns the policy with defaults applied before opts.
func New(opts ...Option) *Options {
	o := &Options{
		AcceptedStateTransitionDelay: DefaultStateTransitionDelay,
		AcceptedProofGenerationDelay: DefaultProofGenerationDelay,
		Now:                          time.Now,
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// CheckStateTransitionDelay fails when a state replaced at replacedAt is outside the accepted window.
func (o *Options) CheckStateTransitionDelay(replacedAt time.Time) error {
	if age := o.Now().Sub(replacedAt); age > o.AcceptedStateTransitionDelay {
		return errkind.Errorf(errkind.PolicyViolation, "policy",
			"state was replaced %s ago, accepted delay is %s", age.Truncate(time.Second),
			o.AcceptedStateTransitionDelay)
	}

	return nil
}

// CheckProofGenerationDelay fails when a message created at createdAt is outside the accepted window.
func (o *Options) CheckProofGenerationDelay(createdAt time.Time) error {
	if age := o.Now().Sub(createdAt); age > o.AcceptedProofGenerationDelay {
		return errkind.Errorf(errkind.PolicyViolation, "policy",
			"message was created %s ago, accepted delay is %s", age.Truncate(time.Second),
			o.AcceptedProofGenerationDelay)
	}

	return nil
}

// CheckExpiration fails when expiresAt has passed.
func (o *Options) CheckExpiration(expiresAt time.Time) error {
	if now := o.Now(); now.After(expiresAt) {
		return errkind.Errorf(errkind.PolicyViolation, "policy", "message expired at %s",
			expiresAt.UTC().Format(time.RFC3339))
	}

	return nil
}
