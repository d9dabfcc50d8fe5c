package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/opencontainers/go-digest"
	"github.com/spf13/cobra"
	slogcontext "github.com/veqryn/slog-context"

	"ocm.software/open-component-model/bindings/go/safejson/cli/cmd/version"
	"ocm.software/open-component-model/bindings/go/safejson/cli/internal/document"
	"ocm.software/open-component-model/bindings/go/safejson/cli/internal/flags/enum"
	"ocm.software/open-component-model/bindings/go/safejson/cli/internal/flags/file"
	"ocm.software/open-component-model/bindings/go/safejson/cli/internal/flags/log"
)

const (
	FlagFile        = "file"
	FlagInputFormat = "input-format"
	FlagIndent      = "indent"
	FlagKeys        = "keys"
	FlagSortKeys    = "sort-keys"
	FlagCanonical   = "canonical"
	FlagRedact      = "redact"
	FlagSchema      = "schema"
	FlagDigest      = "digest"
)

// Execute runs the root command. This is called by main.main().
func Execute() {
	err := New().Execute()
	if err != nil {
		os.Exit(1)
	}
}

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "safejson",
		Short: "Re-encode a JSON or YAML document",
		Long: `Read a JSON or YAML document and print it as JSON.

The document is decoded with its member order intact and encoded again,
optionally indented, restricted to a set of member names, sorted or in the
canonical form of RFC 8785.`,
		Example: `  # pretty print a document
  safejson --indent 2 < document.json

  # keep only the name and version members of every object
  safejson --file component.yaml --input-format yaml --keys name,version

  # digest of the canonical form
  safejson --canonical --digest --file document.json

  # hide credentials
  safejson --redact password --redact '*Token' --file config.json`,
		Args:              cobra.NoArgs,
		PersistentPreRunE: preRunE,
		RunE:              encode,
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}

	file.VarP(cmd.Flags(), FlagFile, "f", file.Stdin, `document to read, "-" reads standard input`)
	enum.VarP(cmd.Flags(), FlagInputFormat, "i", document.Formats, `format of the input document, "auto" tells json and yaml apart by content`)
	cmd.Flags().String(FlagIndent, "", `indentation per level, a number of spaces or a string (at most 10 characters)`)
	cmd.Flags().StringSlice(FlagKeys, nil, `only print object members with these names, in this order`)
	cmd.Flags().Bool(FlagSortKeys, false, `print object members sorted by name`)
	cmd.Flags().Bool(FlagCanonical, false, fmt.Sprintf(`print the RFC 8785 canonical form, --%s is ignored`, FlagIndent))
	cmd.Flags().StringArray(FlagRedact, nil, `replace the values of object members whose name matches this glob pattern (repeatable)`)
	cmd.Flags().String(FlagSchema, "", `validate the document against this JSON schema before printing it`)
	cmd.Flags().String(FlagDigest, "", `print the digest of the output instead of the output, e.g. --digest=sha512`)
	cmd.Flags().Lookup(FlagDigest).NoOptDefVal = string(digest.SHA256)
	cmd.MarkFlagsMutuallyExclusive(FlagKeys, FlagRedact)
	log.RegisterLoggingFlags(cmd.PersistentFlags())

	cmd.AddCommand(version.New())
	return cmd
}

// preRunE configures the logger from the logging flags and stores it in the command context.
func preRunE(cmd *cobra.Command, _ []string) error {
	logger, err := log.GetBaseLogger(cmd)
	if err != nil {
		return fmt.Errorf("could not retrieve logger: %w", err)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(slogcontext.NewCtx(ctx, logger))
	return nil
}
