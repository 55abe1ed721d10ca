package cli

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/docbridge/internal/bridge"
	"github.com/roach88/docbridge/internal/hostvalue"
	"github.com/roach88/docbridge/internal/tagging"
	"github.com/roach88/docbridge/internal/value"
	"github.com/roach88/docbridge/internal/wire"
)

// NewTagCommand creates the tag command.
func NewTagCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tag <file>",
		Short: "Encode a host document in tagged wire form",
		Long: `Load a host document and print its tagged wire encoding.

The file format follows the extension: .yaml/.yml (with !geopoint, !timestamp,
!ref, !blob, !serverTimestamp, !increment, !arrayUnion, !arrayRemove and
!delete tags), .json (tagged JSON) or .cue. With --codec msgpack the bytes
are printed as hex.

Examples:
  docbridge tag user.yaml
  docbridge tag --codec msgpack user.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTag(rootOpts, args[0], cmd)
		},
	}
}

func runTag(opts *RootOptions, file string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	v, err := loadHostFile(f, file)
	if err != nil {
		return err
	}

	b, err := newBridge(opts, cmd, nil)
	if err != nil {
		return reportCode(f, ErrCodeInvalidArgument, "invalid codec", err)
	}
	data, err := b.Export(v)
	if err != nil {
		return report(f, "tag failed", err)
	}
	f.VerboseLog("Tagged %s with %s codec (%d bytes)", file, b.Codec.Name(), len(data))

	if b.Codec.Name() == "msgpack" {
		text := hex.EncodeToString(data)
		return f.Success(text+"\n", text)
	}
	return f.Success(string(data)+"\n", json.RawMessage(data))
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <file>",
		Short: "Resolve tagged wire data into database values",
		Long: `Read tagged wire data, resolve it, and print the result as tagged YAML.

References are checked as document paths. With --codec msgpack the file
holds hex, as printed by "docbridge tag --codec msgpack".

Examples:
  docbridge resolve user.json
  docbridge resolve --format json user.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(rootOpts, args[0], cmd)
		},
	}
}

func runResolve(opts *RootOptions, file string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd)

	data, err := os.ReadFile(file)
	if err != nil {
		return reportCode(f, ErrCodeLoadFailed, "failed to read file", err)
	}

	b, err := newBridge(opts, cmd, nil)
	if err != nil {
		return reportCode(f, ErrCodeInvalidArgument, "invalid codec", err)
	}
	if b.Codec.Name() == "msgpack" {
		if data, err = hex.DecodeString(strings.TrimSpace(string(data))); err != nil {
			return reportCode(f, ErrCodeLoadFailed, "failed to decode hex", err)
		}
	}

	v, err := b.Import(data)
	if err != nil {
		return report(f, "resolve failed", err)
	}
	return outputValue(f, v)
}

// loadHostFile loads a host document, reporting failures.
func loadHostFile(f *OutputFormatter, file string) (value.Value, error) {
	v, err := hostvalue.Load(file)
	if err != nil {
		if isConversionError(err) {
			return nil, report(f, "failed to load "+file, err)
		}
		return nil, reportCode(f, ErrCodeLoadFailed, "failed to load "+file, err)
	}
	f.VerboseLog("Loaded %s (%s)", file, value.Kind(v))
	return v, nil
}

func newBridge(opts *RootOptions, cmd *cobra.Command, h tagging.Handle) (*bridge.Bridge, error) {
	codec, err := wire.ByName(opts.Codec)
	if err != nil {
		return nil, err
	}
	return &bridge.Bridge{
		Handle: h,
		Codec:  codec,
		Logger: newLogger(opts, cmd.ErrOrStderr()),
	}, nil
}

// outputValue prints v as tagged YAML, or as tagged JSON in the JSON
// response.
func outputValue(f *OutputFormatter, v value.Value) error {
	if f.Format == "json" {
		raw, err := taggedJSON(v)
		if err != nil {
			return report(f, "failed to encode value", err)
		}
		return f.Success("", raw)
	}
	text, err := hostvalue.ToYAML(v)
	if err != nil {
		return reportCode(f, ErrCodeWriteFailed, "failed to render yaml", err)
	}
	return f.Success(string(text), nil)
}

func taggedJSON(v value.Value) (json.RawMessage, error) {
	tagged, err := tagging.Tag(v)
	if err != nil {
		return nil, err
	}
	data, err := wire.JSON{}.Marshal(tagged)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", bridge.ErrCodec, err)
	}
	return data, nil
}
