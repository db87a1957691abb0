package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/gravigo-ml/gravigo/internal/buildinfo"
)

func versionCmd(outW io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(*cobra.Command, []string) {
			fmt.Fprintln(outW, buildinfo.String())
		},
	}
}
