/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package packager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/hyperledger/aries-framework-go/component/log"

	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/command"
	"github.com/hyperledger/aries-zkcomm-go/pkg/controller/internal/cmdutil"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/message"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/packer"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/packer/jws"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/packer/plain"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/packer/zkp"
	"github.com/hyperledger/aries-zkcomm-go/pkg/didcomm/transport"
	"github.com/hyperledger/aries-zkcomm-go/pkg/internal/logutil"
)

var logger = log.New("zkcomm/command/packager")

// Error codes.
const (
	// InvalidRequestErrorCode is typically a code for invalid requests.
	InvalidRequestErrorCode = command.Code(iota + command.Packager)

	// UnpackErrorCode for unpack errors.
	UnpackErrorCode

	// PackErrorCode for pack errors.
	PackErrorCode
)

// constants for the packager controller's methods.
const (
	// command name.
	CommandName = "packager"

	// command methods.
	UnpackCommandMethod     = "Unpack"
	PackCommandMethod       = "Pack"
	MediaTypesCommandMethod = "MediaTypes"

	// error messages.
	errEmptyEnvelope  = "envelope is mandatory"
	errEmptyMediaType = "mediaType is mandatory"
	errEmptyMessage   = "message is mandatory"

	// log constants.
	mediaTypeKey = "mediaType"
)

// Packager packs and unpacks envelopes.
type Packager interface {
	Pack(ctx context.Context, mediaType transport.MediaType, payload []byte, params packer.Params) ([]byte, error)
	Unpack(ctx context.Context, envelope []byte) (*message.BasicMessage, transport.MediaType, error)
	MediaTypes() []transport.MediaType
}

// Command contains command operations provided by packager controller.
type Command struct {
	packager Packager
}

// New returns new packager controller command instance.
func New(p Packager) *Command {
	return &Command{packager: p}
}

// GetHandlers returns list of all commands supported by this controller command.
func (c *Command) GetHandlers() []command.Handler {
	return []command.Handler{
		cmdutil.NewCommandHandler(CommandName, UnpackCommandMethod, c.Unpack),
		cmdutil.NewCommandHandler(CommandName, PackCommandMethod, c.Pack),
		cmdutil.NewCommandHandler(CommandName, MediaTypesCommandMethod, c.MediaTypes),
	}
}

// Unpack sniffs, verifies and unpacks an envelope.
func (c *Command) Unpack(rw io.Writer, req io.Reader) command.Error {
	var request UnpackRequest

	err := json.NewDecoder(req).Decode(&request)
	if err != nil {
		logutil.LogInfo(logger, CommandName, UnpackCommandMethod, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf("request decode : %w", err))
	}

	if request.Envelope == "" {
		logutil.LogDebug(logger, CommandName, UnpackCommandMethod, errEmptyEnvelope)
		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyEnvelope))
	}

	msg, mediaType, err := c.packager.Unpack(context.Background(), []byte(request.Envelope))
	if err != nil {
		logutil.LogFailure(logger, CommandName, UnpackCommandMethod, err)

		return command.NewKindError(UnpackErrorCode, fmt.Errorf("unpack: %w", err))
	}

	command.WriteNillableResponse(rw, &UnpackResponse{MediaType: mediaType, Message: msg}, logger)

	logutil.LogDebug(logger, CommandName, UnpackCommandMethod, "success",
		logutil.CreateKeyValueString(mediaTypeKey, mediaType.String()),
		logutil.CreateKeyValueString("from", msg.From))

	return nil
}

// Pack packs a protocol message into an envelope of the requested media type.
func (c *Command) Pack(rw io.Writer, req io.Reader) command.Error {
	var request PackRequest

	err := json.NewDecoder(req).Decode(&request)
	if err != nil {
		logutil.LogInfo(logger, CommandName, PackCommandMethod, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, fmt.Errorf("request decode : %w", err))
	}

	if request.MediaType == "" {
		logutil.LogDebug(logger, CommandName, PackCommandMethod, errEmptyMediaType)
		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyMediaType))
	}

	if len(request.Message) == 0 {
		logutil.LogDebug(logger, CommandName, PackCommandMethod, errEmptyMessage)
		return command.NewValidationError(InvalidRequestErrorCode, errors.New(errEmptyMessage))
	}

	params, err := packParams(request.MediaType, request.Params)
	if err != nil {
		logutil.LogInfo(logger, CommandName, PackCommandMethod, err.Error())
		return command.NewValidationError(InvalidRequestErrorCode, err)
	}

	envelope, err := c.packager.Pack(context.Background(), request.MediaType, request.Message, params)
	if err != nil {
		logutil.LogFailure(logger, CommandName, PackCommandMethod, err,
			logutil.CreateKeyValueString(mediaTypeKey, request.MediaType.String()))

		return command.NewKindError(PackErrorCode, fmt.Errorf("pack: %w", err))
	}

	command.WriteNillableResponse(rw, &PackResponse{Envelope: string(envelope)}, logger)

	logutil.LogDebug(logger, CommandName, PackCommandMethod, "success",
		logutil.CreateKeyValueString(mediaTypeKey, request.MediaType.String()))

	return nil
}

// MediaTypes lists the media types the packager handles.
func (c *Command) MediaTypes(rw io.Writer, _ io.Reader) command.Error {
	command.WriteNillableResponse(rw, &MediaTypesResponse{MediaTypes: c.packager.MediaTypes()}, logger)

	return nil
}

// packParams decodes the request params into the params type of the media type packer.
func packParams(mediaType transport.MediaType, raw map[string]interface{}) (packer.Params, error) {
	switch mediaType {
	case transport.MediaTypePlainMessage:
		return plain.Params{}, nil
	case transport.MediaTypeSignedMessage:
		var opts struct {
			Alg string
			KID string
		}

		if err := command.DecodeOptions(raw, &opts); err != nil {
			return nil, err
		}

		return &jws.SigningParams{Alg: opts.Alg, KID: opts.KID}, nil
	case transport.MediaTypeZKPMessage:
		p := zkp.Params{}

		if err := command.DecodeOptions(raw, &p); err != nil {
			return nil, err
		}

		return p, nil
	default:
		return nil, nil
	}
}
