package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/gravigo-ml/gravigo/internal/app"
)

func composeCmd(outW io.Writer, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "compose [overrides...]",
		Short: "Print the fully composed and resolved configuration as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.appConfig(args)
			if err != nil {
				return err
			}
			tree, err := app.NewApp(outW, cfg).Compose()
			if err != nil {
				return err
			}
			raw, err := tree.Marshal()
			if err != nil {
				return err
			}
			_, err = outW.Write(raw)
			return err
		},
	}
}
