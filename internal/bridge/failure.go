package bridge

import (
	"errors"

	"github.com/roach88/docbridge/internal/tagging"
)

// Host-visible failure codes.
const (
	CodeCyclicValue          = "cyclic-value"
	CodeUnsupportedType      = "unsupported-type"
	CodeUnknownTypeTag       = "unknown-type-tag"
	CodeInvalidReferencePath = "invalid-reference-path"
	CodeDepthExceeded        = "depth-exceeded"
	CodeMalformedPayload     = "malformed-payload"
	CodeCodec                = "codec"
	CodeInternal             = "internal"
)

var kindCodes = map[tagging.ErrorKind]string{
	tagging.CyclicValue:          CodeCyclicValue,
	tagging.UnsupportedType:      CodeUnsupportedType,
	tagging.UnknownTypeTag:       CodeUnknownTypeTag,
	tagging.InvalidReferencePath: CodeInvalidReferencePath,
	tagging.DepthExceeded:        CodeDepthExceeded,
	tagging.MalformedPayload:     CodeMalformedPayload,
}

// Failure is the descriptive error handed to the host.
type Failure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// Error implements the error interface.
func (f *Failure) Error() string {
	if f.Path != "" {
		return f.Code + " at " + f.Path + ": " + f.Message
	}
	return f.Code + ": " + f.Message
}

// HostError turns an error from Export or Import into a Failure.
// Returns nil for a nil error.
func HostError(err error) *Failure {
	if err == nil {
		return nil
	}
	var te *tagging.Error
	if errors.As(err, &te) {
		msg := te.Message
		if te.Err != nil {
			msg += ": " + te.Err.Error()
		}
		return &Failure{Code: kindCodes[te.Kind], Message: msg, Path: te.Path}
	}
	if errors.Is(err, ErrCodec) {
		return &Failure{Code: CodeCodec, Message: err.Error()}
	}
	return &Failure{Code: CodeInternal, Message: err.Error()}
}
