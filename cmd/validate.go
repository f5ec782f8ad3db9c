package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

func newValidateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Decode every model file and report all broken ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := opts.resolver().Validate()
			if err != nil && count == 0 {
				return err
			}
			errs := multierr.Errors(err)
			for _, e := range errs {
				fmt.Fprintln(cmd.ErrOrStderr(), e)
			}
			if len(errs) > 0 {
				return fmt.Errorf("%d of %d model files are invalid", len(errs), count)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%d model files ok\n", count)
			return err
		},
	}
}
