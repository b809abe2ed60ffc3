/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package startcmd

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	spilog "github.com/hyperledger/aries-framework-go/spi/log"
)

const (
	logFormatJSON    = "json"
	logFormatConsole = "console"
)

// zapProvider hands out named zap loggers. Levels are filtered by the module levels of the log package, so
// zap itself lets everything through.
type zapProvider struct {
	base *zap.SugaredLogger
}

func newZapProvider(format string) (*zapProvider, error) {
	config := zap.NewProductionConfig()

	switch format {
	case "", logFormatJSON:
	case logFormatConsole:
		config.Encoding = logFormatConsole
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		return nil, fmt.Errorf("unsupported log format '%s'", format)
	}

	config.OutputPaths = []string{"stdout"}
	config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	config.DisableStacktrace = true

	l, err := config.Build(zap.AddCallerSkip(2)) //nolint:gomnd
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}

	return &zapProvider{base: l.Sugar()}, nil
}

// GetLogger returns the logger of module.
func (p *zapProvider) GetLogger(module string) spilog.Logger {
	return p.base.Named(module)
}
