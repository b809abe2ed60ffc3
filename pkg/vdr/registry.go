/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package vdr resolves DIDs through the method resolvers registered with it, caching resolved documents.
package vdr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bluele/gcache"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-zkcomm-go/pkg/doc/did"
)

var logger = log.New("zkcomm/vdr")

// ErrNotFound is returned when a DID has no document.
var ErrNotFound = errors.New("DID does not exist")

// Method resolves the DIDs of the methods it accepts.
type Method interface {
	Accept(method string) bool
	Read(ctx context.Context, didID string) (*did.Doc, error)
}

// Option is a registry option.
type Option func(opts *Registry)

// Registry resolves DIDs with the first method that accepts them.
//
// Methods are registered at construction; the registry is safe for concurrent use afterwards.
type Registry struct {
	methods []Method
	cache   gcache.Cache
}

// New returns a registry.
func New(opts ...Option) *Registry {
	r := &Registry{}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// WithMethod adds a DID method implementation.
func WithMethod(m Method) Option {
	return func(opts *Registry) {
		opts.methods = append(opts.methods, m)
	}
}

// WithCache caches up to size resolved documents for ttl. A zero ttl keeps documents until evicted.
func WithCache(size int, ttl time.Duration) Option {
	return func(opts *Registry) {
		b := gcache.New(size).LRU()
		if ttl > 0 {
			b = b.Expiration(ttl)
		}

		opts.cache = b.Build()
	}
}

// Resolve returns the document of a DID. DID URLs resolve to the document of their DID.
func (r *Registry) Resolve(ctx context.Context, didURL string) (*did.Doc, error) {
	id := did.FromURL(didURL)

	if r.cache != nil {
		if v, err := r.cache.Get(id); err == nil {
			if doc, ok := v.(*did.Doc); ok {
				return doc, nil
			}
		}
	}

	method, err := GetDidMethod(id)
	if err != nil {
		return nil, err
	}

	m, err := r.resolveMethod(method)
	if err != nil {
		return nil, err
	}

	doc, err := m.Read(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}

		return nil, fmt.Errorf("did method read failed: %w", err)
	}

	if r.cache != nil {
		if err = r.cache.Set(id, doc); err != nil {
			logger.Warnf("cache document of %s: %v", id, err)
		}
	}

	return doc, nil
}

// Purge drops cached documents.
func (r *Registry) Purge() {
	if r.cache != nil {
		r.cache.Purge()
	}
}

func (r *Registry) resolveMethod(method string) (Method, error) {
	for _, m := range r.methods {
		if m.Accept(method) {
			return m, nil
		}
	}

	return nil, fmt.Errorf("did method %s not supported", method)
}

// GetDidMethod returns the method of a DID.
func GetDidMethod(didID string) (string, error) {
	const numPartsDID = 3

	didParts := strings.Split(didID, ":")
	if len(didParts) < numPartsDID || didParts[0] != "did" {
		return "", fmt.Errorf("wrong format did input: %s", didID)
	}

	return didParts[1], nil
}

// Static serves fixed documents, keyed by DID.
type Static map[string]*did.Doc

// Accept accepts the methods of the documents held.
func (s Static) Accept(method string) bool {
	for id := range s {
		if m, err := GetDidMethod(id); err == nil && m == method {
			return true
		}
	}

	return false
}

// Read returns the document held for didID.
func (s Static) Read(_ context.Context, didID string) (*did.Doc, error) {
	doc, ok := s[didID]
	if !ok {
		return nil, ErrNotFound
	}

	return doc, nil
}
