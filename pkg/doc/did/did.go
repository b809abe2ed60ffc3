/*
Copyright SecureKey Technologies Inc. All Rights Reserved.
SPDX-License-Identifier: Apache-2.0
*/

package did

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// DID is parsed according to the generic syntax: https://w3c.github.io/did-core/#generic-did-syntax
type DID struct {
	Scheme           string // Scheme is always "did"
	Method           string // Method is the specific DID methods
	MethodSpecificID string // MethodSpecificID is the unique ID computed or assigned by the DID method
}

// String returns a string representation of this DID.
func (d *DID) String() string {
	return fmt.Sprintf("%s:%s:%s", d.Scheme, d.Method, d.MethodSpecificID)
}

const idchar = `a-zA-Z0-9-_\.`

var didRegex = regexp.MustCompile(fmt.Sprintf(`^did:[a-z0-9]+:(:+|[:%s]+)*[%s]+$`, idchar, idchar)) //nolint:gochecknoglobals,lll

// Parse parses the string according to the generic DID syntax.
// See https://w3c.github.io/did-core/#generic-did-syntax.
func Parse(did string) (*DID, error) {
	if !didRegex.MatchString(did) {
		return nil, fmt.Errorf(
			"invalid did: %s. Make sure it conforms to the generic DID syntax: https://w3c.github.io/did-core/#generic-did-syntax", //nolint:lll
			did)
	}

	parts := strings.SplitN(did, ":", 3) //nolint:gomnd

	return &DID{
		Scheme:           "did",
		Method:           parts[1],
		MethodSpecificID: parts[2],
	}, nil
}

// FromURL returns the DID part of a DID URL: everything before the first '#', '?' or '/'
// following the method specific id.
func FromURL(didURL string) string {
	if i := strings.IndexAny(didURL, "#?/"); i >= 0 {
		return didURL[:i]
	}

	return didURL
}

// Resolver resolves a DID to its document.
type Resolver interface {
	Resolve(ctx context.Context, did string) (*Doc, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, did string) (*Doc, error)

// Resolve calls f(ctx, did).
func (f ResolverFunc) Resolve(ctx context.Context, did string) (*Doc, error) {
	return f(ctx, did)
}
