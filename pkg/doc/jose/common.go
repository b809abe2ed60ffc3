/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jose

// IANA registered JOSE headers (https://tools.ietf.org/html/rfc7515#section-4.1)
const (
	// HeaderAlgorithm identifies the cryptographic algorithm used to secure the JWS.
	HeaderAlgorithm = "alg" // string

	// HeaderKeyID is a hint indicating which key was used to secure the JWS.
	HeaderKeyID = "kid" // string

	// HeaderType is used by JWS applications to declare the media type of this complete JWS.
	HeaderType = "typ" // string

	// HeaderCritical lists the header extensions a recipient must understand.
	HeaderCritical = "crit" // array
)

// HeaderCircuitID names the circuit a zero-knowledge proof token was produced with.
const HeaderCircuitID = "circuitId" // string

// Headers represents JOSE headers.
type Headers map[string]interface{}

// KeyID gets Key ID from JOSE headers.
func (h Headers) KeyID() (string, bool) {
	return h.stringValue(HeaderKeyID)
}

// Algorithm gets Algorithm from JOSE headers.
func (h Headers) Algorithm() (string, bool) {
	return h.stringValue(HeaderAlgorithm)
}

// Type gets the media type from JOSE headers.
func (h Headers) Type() (string, bool) {
	return h.stringValue(HeaderType)
}

// CircuitID gets the circuit id from JOSE headers.
func (h Headers) CircuitID() (string, bool) {
	return h.stringValue(HeaderCircuitID)
}

// Critical gets the critical header names from JOSE headers.
func (h Headers) Critical() ([]string, bool) {
	raw, ok := h[HeaderCritical]
	if !ok {
		return nil, false
	}

	switch crit := raw.(type) {
	case []string:
		return crit, true
	case []interface{}:
		names := make([]string, 0, len(crit))

		for _, c := range crit {
			s, ok := c.(string)
			if !ok {
				return nil, false
			}

			names = append(names, s)
		}

		return names, true
	}

	return nil, false
}

func (h Headers) stringValue(key string) (string, bool) {
	raw, ok := h[key]
	if !ok {
		return "", false
	}

	str, ok := raw.(string)

	return str, ok
}
