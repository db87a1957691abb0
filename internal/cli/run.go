package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/gravigo-ml/gravigo/internal/app"
)

func runCmd(outW io.Writer, opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "run [overrides...]",
		Short: "Compose the experiment configuration and execute the training run",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.appConfig(args)
			if err != nil {
				return err
			}
			return app.NewApp(outW, cfg).Run(cmd.Context())
		},
	}
}
