/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package logutil formats controller log lines as `command=[..] action=[..] key=[value].. msg=[..]`.
package logutil

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-zkcomm-go/pkg/common/errkind"
)

// LogError logs a failed command action.
func LogError(logger *log.Log, command, action, errMsg string, data ...string) {
	logger.Errorf("command=[%s] action=[%s] %s errMsg=[%s]", command, action, data, errMsg)
}

// LogDebug logs a command action.
func LogDebug(logger *log.Log, command, action, msg string, data ...string) {
	logger.Debugf("command=[%s] action=[%s] %s msg=[%s]", command, action, data, msg)
}

// LogInfo logs a command action.
func LogInfo(logger *log.Log, command, action, msg string, data ...string) {
	logger.Infof("command=[%s] action=[%s] %s msg=[%s]", command, action, data, msg)
}

// LogFailure logs err together with the structured fields of its error kind, so that rejected envelopes and
// unresolvable statuses can be told apart without parsing the message.
func LogFailure(logger *log.Log, command, action string, err error, data ...string) {
	LogError(logger, command, action, err.Error(), append(data, KindFields(err)...)...)
}

// KindFields returns the key/value strings of the classified error in err's chain, if any.
func KindFields(err error) []string {
	var e *errkind.Error

	if err == nil || !errors.As(err, &e) {
		return nil
	}

	fields := []string{CreateKeyValueString("kind", e.Kind.String())}

	for _, kv := range [][2]string{
		{"op", e.Op},
		{"mediaType", e.MediaType},
		{"circuitId", e.CircuitID},
		{"statusType", e.StatusType},
		{"option", e.Option},
	} {
		if kv[1] != "" {
			fields = append(fields, CreateKeyValueString(kv[0], kv[1]))
		}
	}

	if e.ChainID != 0 {
		fields = append(fields, CreateKeyValueString("chainId", strconv.FormatInt(e.ChainID, 10)))
	}

	return fields
}

// CreateKeyValueString creates a concatenated string.
func CreateKeyValueString(key, val string) string {
	return fmt.Sprintf("%s=[%s]", key, val)
}
