package cmd

import (
	"fmt"

	"github.com/foomo/vacuumpartshub/observability"
	"github.com/foomo/vacuumpartshub/site"
	"github.com/spf13/cobra"
)

func newBuildCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Render the whole site into static files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := opts.renderer()
			if err != nil {
				return err
			}
			builder := site.NewBuilder(opts.logger, opts.resolver(), renderer, observability.NewMetrics(), site.Settings{
				OutDir:      opts.cfg.OutDir,
				Concurrency: opts.cfg.Concurrency,
			})
			report, err := builder.Build(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "built %d models, %d problems, %d files into %s\n",
				report.Models, report.Problems, report.Pages, opts.cfg.OutDir)
			return err
		},
	}
	cmd.Flags().StringP("out", "o", "", "Output directory")
	cmd.Flags().Int("concurrency", 0, "Number of pages rendered in parallel")
	_ = opts.v.BindPFlag("out_dir", cmd.Flags().Lookup("out"))
	_ = opts.v.BindPFlag("concurrency", cmd.Flags().Lookup("concurrency"))
	return cmd
}
