/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package command

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mitchellh/mapstructure"

	"github.com/hyperledger/aries-framework-go/spi/log"
)

// WriteNillableResponse is a utility function that writes v to w.
// If v is nil then an empty object is written.
func WriteNillableResponse(w io.Writer, v interface{}, l log.Logger) {
	obj := v
	if v == nil {
		obj = map[string]interface{}{}
	}

	if err := json.NewEncoder(w).Encode(obj); err != nil {
		l.Errorf("Unable to send error response, %s", err)
	}
}

// DecodeOptions decodes a loosely typed option map, as sent in requests, into out. Keys match field names
// case-insensitively or the `mapstructure` tag; numbers given as strings are converted. Unknown keys are
// rejected.
func DecodeOptions(in map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("options decoder: %w", err)
	}

	if err = decoder.Decode(in); err != nil {
		return fmt.Errorf("decode options: %w", err)
	}

	return nil
}
