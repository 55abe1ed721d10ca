package cli

import (
	"errors"

	"github.com/roach88/docbridge/internal/bridge"
	"github.com/roach88/docbridge/internal/fsclient"
	"github.com/roach88/docbridge/internal/store"
	"github.com/roach88/docbridge/internal/tagging"
)

// Error codes for failures outside the conversion layer. Conversion
// failures use the bridge codes ("cyclic-value", "unknown-type-tag"...).
const (
	ErrCodeNotFound        = "not-found"
	ErrCodeInvalidArgument = "invalid-argument"
	ErrCodeLoadFailed      = "load-failed"
	ErrCodeDatabase        = "database"
	ErrCodeWriteFailed     = "write-failed"
)

// classify picks the reported code, path and exit code for err.
func classify(err error) (code, path string, exit int) {
	switch {
	case isConversionError(err):
		f := bridge.HostError(err)
		return f.Code, f.Path, ExitFailure
	case errors.Is(err, store.ErrNotFound), errors.Is(err, fsclient.ErrNotFound):
		return ErrCodeNotFound, "", ExitFailure
	case errors.Is(err, store.ErrInvalidArgument), errors.Is(err, fsclient.ErrInvalidArgument):
		return ErrCodeInvalidArgument, "", ExitFailure
	default:
		return ErrCodeDatabase, "", ExitCommandError
	}
}

func isConversionError(err error) bool {
	_, ok := tagging.KindOf(err)
	return ok || errors.Is(err, bridge.ErrCodec)
}

// report prints err through the formatter and returns the ExitError the
// command should fail with.
func report(f *OutputFormatter, message string, err error) error {
	code, path, exit := classify(err)
	_ = f.Error(code, message+": "+err.Error(), path)
	return WrapExitError(exit, message, err)
}

// reportCode is report with a fixed code, for failures before any
// conversion or database work.
func reportCode(f *OutputFormatter, code, message string, err error) error {
	_ = f.Error(code, message+": "+err.Error(), "")
	return WrapExitError(ExitCommandError, message, err)
}
