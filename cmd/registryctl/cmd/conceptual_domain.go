package cmd

import (
	"github.com/spf13/cobra"
)

func newConceptualDomainCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "conceptual-domain <id>",
		Aliases: []string{"cd"},
		Short:   "Fetch a conceptual domain and its value meanings by registry id",
		Example: `  registryctl conceptual-domain 4711
  registryctl cd 4711 --select '$.valuemeaningSet[*].name'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.newService(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			ctx, cancel := opts.context(cmd)
			defer cancel()

			cd, err := svc.GetConceptualDomain(ctx, args[0])
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), cd, opts.selector)
		},
	}
}
