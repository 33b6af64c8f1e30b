package cmd

import (
	"github.com/spf13/cobra"

	"github.com/covidtimeseries/metadata/internal/options"
)

func newDistributionCmd(opts *globalOptions) *cobra.Command {
	var (
		filter string
		paths  bool
	)

	cmd := &cobra.Command{
		Use:   "distribution <uuid>",
		Short: "Fetch a distribution and its data element paths",
		Long: `Fetch a distribution by uuid.

With --options the data elements are flattened into UI option records,
optionally filtered to number-typed elements or elements with permissible
values. With --paths a map of data element uuid to logical path is printed.`,
		Example: `  registryctl distribution 6f1c2b9e-3d4a-4c5b-8e7f-0a1b2c3d4e5f
  registryctl distribution 6f1c2b9e-3d4a-4c5b-8e7f-0a1b2c3d4e5f --options all
  registryctl distribution 6f1c2b9e-3d4a-4c5b-8e7f-0a1b2c3d4e5f --options values
  registryctl distribution 6f1c2b9e-3d4a-4c5b-8e7f-0a1b2c3d4e5f --paths`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.newService(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()

			var result any
			switch {
			case cmd.Flags().Changed("options"):
				result, err = svc.DistributionOptions(ctx, args[0], filter)
			case paths:
				result, err = svc.DistributionPaths(ctx, args[0])
			default:
				result, err = svc.GetDistribution(ctx, args[0])
			}
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), result, opts.selector)
		},
	}

	cmd.Flags().StringVar(&filter, "options", options.FilterAll, "Print UI options, filtered by one of: all, number, values")
	cmd.Flags().BoolVar(&paths, "paths", false, "Print data element uuid to logical path map")
	cmd.MarkFlagsMutuallyExclusive("options", "paths")

	return cmd
}
