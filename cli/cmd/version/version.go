package version

import (
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"ocm.software/open-component-model/bindings/go/safejson"
	"ocm.software/open-component-model/bindings/go/safejson/cli/internal/flags/enum"
)

const (
	FlagFormat                = "format"
	FlagFormatShortHand       = "o"
	FlagFormatJSON            = "json"
	FlagFormatGoBuildInfo     = "gobuildinfo"
	FlagFormatGoBuildInfoJSON = "gobuildinfojson"
)

// BuildVersion overrides the module version detected from the build information.
// It can be set at build time with
//
//	-ldflags "-X ocm.software/open-component-model/bindings/go/safejson/cli/cmd/version.BuildVersion=1.2.3"
var BuildVersion = "n/a"

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the build version of safejson",
		Long: fmt.Sprintf(`Print the build version of safejson.

With %[1]q (the default) the version is split into its semantic version parts.
With %[2]q the Go build information is printed as reported by "go version -m",
with %[3]q the same information is printed as JSON.`, FlagFormatJSON, FlagFormatGoBuildInfo, FlagFormatGoBuildInfoJSON),
		Example: fmt.Sprintf(`safejson version --%s %s`, FlagFormat, FlagFormatGoBuildInfo),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := enum.Get(cmd.Flags(), FlagFormat)
			if err != nil {
				return err
			}
			bi, ok := debug.ReadBuildInfo()
			if !ok {
				return fmt.Errorf("no build info available")
			}
			if BuildVersion != "n/a" {
				bi.Main.Version = BuildVersion
			}
			return write(cmd.OutOrStdout(), format, bi)
		},
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}

	enum.VarP(cmd.Flags(), FlagFormat, FlagFormatShortHand, []string{
		FlagFormatJSON,
		FlagFormatGoBuildInfo,
		FlagFormatGoBuildInfoJSON,
	}, "output format of the build information")
	return cmd
}

func write(w io.Writer, format string, bi *debug.BuildInfo) error {
	var out []byte
	var err error
	switch format {
	case FlagFormatJSON:
		out, err = safejson.MarshalIndent(GetInfo(bi), "  ")
	case FlagFormatGoBuildInfoJSON:
		out, err = safejson.MarshalIndent(bi, "  ")
	case FlagFormatGoBuildInfo:
		_, err = io.Copy(w, strings.NewReader(bi.String()))
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
	if err != nil {
		return err
	}
	_, err = w.Write(append(out, '\n'))
	return err
}
