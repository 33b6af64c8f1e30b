package cmd

import (
	"github.com/spf13/cobra"
)

func newDatasetSpecificationCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "dss <uuid>",
		Aliases: []string{"dataset-specification"},
		Short:   "Fetch a dataset specification and its data elements",
		Example: `  registryctl dss 6f1c2b9e-3d4a-4c5b-8e7f-0a1b2c3d4e5f
  registryctl dss 6f1c2b9e-3d4a-4c5b-8e7f-0a1b2c3d4e5f --select '$.dssdeinclusionSet[*].dataElement.uuid'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.newService(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()

			dss, err := svc.GetDatasetSpecification(ctx, args[0])
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), dss, opts.selector)
		},
	}
}
