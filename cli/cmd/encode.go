package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/opencontainers/go-digest"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	slogcontext "github.com/veqryn/slog-context"

	"ocm.software/open-component-model/bindings/go/safejson"
	"ocm.software/open-component-model/bindings/go/safejson/cli/internal/document"
	"ocm.software/open-component-model/bindings/go/safejson/cli/internal/flags/enum"
	"ocm.software/open-component-model/bindings/go/safejson/cli/internal/flags/file"
	"ocm.software/open-component-model/bindings/go/safejson/cli/internal/redact"
)

func encode(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	opts, err := optionsFromFlags(flags)
	if err != nil {
		return err
	}
	opts.Logger = slogcontext.FromCtx(ctx)

	value, err := readDocument(cmd)
	if err != nil {
		return err
	}

	enc := safejson.New(opts)
	canonical, err := flags.GetBool(FlagCanonical)
	if err != nil {
		return err
	}
	var out []byte
	if canonical {
		out, err = enc.EncodeCanonical(value)
	} else {
		out, err = enc.Encode(value)
	}
	if err != nil {
		return fmt.Errorf("could not encode document: %w", err)
	}
	slogcontext.Log(ctx, slog.LevelDebug, "encoded document", slog.Int("bytes", len(out)), slog.Bool("canonical", canonical))

	algorithm, err := flags.GetString(FlagDigest)
	if err != nil {
		return err
	}
	if algorithm != "" {
		alg := digest.Algorithm(algorithm)
		if !alg.Available() {
			return fmt.Errorf("unsupported digest algorithm %q", algorithm)
		}
		out = []byte(alg.FromBytes(out).String())
	}

	_, err = cmd.OutOrStdout().Write(append(out, '\n'))
	return err
}

// optionsFromFlags builds the encoder options. The key list is only set if
// --keys was given, so an explicitly empty list prints every object as {}.
func optionsFromFlags(flags *pflag.FlagSet) (safejson.Options, error) {
	var opts safejson.Options

	indent, err := flags.GetString(FlagIndent)
	if err != nil {
		return opts, err
	}
	opts.Indent = indentOf(indent)

	if flags.Changed(FlagKeys) {
		keys, err := flags.GetStringSlice(FlagKeys)
		if err != nil {
			return opts, err
		}
		entries := make([]any, len(keys))
		for i, key := range keys {
			entries[i] = key
		}
		opts.Keys = safejson.NewKeyList(entries...)
	}

	patterns, err := flags.GetStringArray(FlagRedact)
	if err != nil {
		return opts, err
	}
	if len(patterns) > 0 {
		if opts.Replacer, err = redact.Replacer(patterns); err != nil {
			return opts, err
		}
	}

	if opts.SortKeys, err = flags.GetBool(FlagSortKeys); err != nil {
		return opts, err
	}
	return opts, nil
}

// indentOf reads a number as a count of spaces and anything else as the indentation itself.
func indentOf(value string) string {
	if n, err := strconv.Atoi(value); err == nil {
		return safejson.Indent(n)
	}
	return safejson.Indent(value)
}

func readDocument(cmd *cobra.Command) (any, error) {
	flags := cmd.Flags()
	path, err := file.Get(flags, FlagFile)
	if err != nil {
		return nil, err
	}
	format, err := enum.Get(flags, FlagInputFormat)
	if err != nil {
		return nil, err
	}

	r, err := path.Open(cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}

	value, err := document.Decode(data, format, func(raw []byte) error {
		return validate(flags, raw)
	})
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	return value, nil
}

func validate(flags *pflag.FlagSet, raw []byte) error {
	location, err := flags.GetString(FlagSchema)
	if err != nil || location == "" {
		return err
	}
	data, err := os.ReadFile(location)
	if err != nil {
		return fmt.Errorf("could not read schema: %w", err)
	}
	schema, err := document.CompileSchema(location, data)
	if err != nil {
		return err
	}
	if err := document.Validate(schema, raw); err != nil {
		return fmt.Errorf("document does not match schema %s: %w", location, err)
	}
	return nil
}
