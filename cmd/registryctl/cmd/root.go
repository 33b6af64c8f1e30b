package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/covidtimeseries/metadata/internal/pkg/logger"
	"github.com/covidtimeseries/metadata/internal/registry"
	"github.com/covidtimeseries/metadata/internal/service"
)

// Version is set at build time
var Version = "dev"

// globalOptions are the persistent flags shared by every subcommand
type globalOptions struct {
	endpoint string
	timeout  time.Duration
	selector string
	verbose  bool
}

// NewRootCmd builds the registryctl command tree
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "registryctl",
		Short: "Query the Aristotle metadata registry",
		Long: `registryctl fetches distribution, dataset specification and conceptual
domain metadata from the Aristotle metadata registry and prints it as JSON.

Examples:
  registryctl distribution 6f1c2b9e-3d4a-4c5b-8e7f-0a1b2c3d4e5f
  registryctl distribution 6f1c2b9e-3d4a-4c5b-8e7f-0a1b2c3d4e5f --options number
  registryctl dss 6f1c2b9e-3d4a-4c5b-8e7f-0a1b2c3d4e5f --select '$.dssdeinclusionSet[*].dataElement.name'
  registryctl conceptual-domain 4711`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.endpoint, "endpoint", "", "Registry GraphQL endpoint (or set REGISTRY_ENDPOINT)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", registry.DefaultTimeout, "Request timeout")
	root.PersistentFlags().StringVar(&opts.selector, "select", "", "JSONPath expression applied to the output")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log registry requests to stderr")

	root.AddCommand(newDistributionCmd(opts))
	root.AddCommand(newDatasetSpecificationCmd(opts))
	root.AddCommand(newConceptualDomainCmd(opts))

	return root
}

// Execute runs the CLI
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(root.ErrOrStderr(), "Error: %s\n", describe(err))
		return err
	}
	return nil
}

// getEndpoint returns the endpoint from flag or environment
func (o *globalOptions) getEndpoint() string {
	if o.endpoint != "" {
		return o.endpoint
	}
	return os.Getenv("REGISTRY_ENDPOINT")
}

// newService builds a metadata service for one CLI invocation. There is no
// cache or circuit breaker; each run makes at most one registry call.
func (o *globalOptions) newService(stderr io.Writer) (*service.MetadataService, error) {
	log := zap.NewNop()
	if o.verbose {
		log = newVerboseLogger(stderr)
	}

	client, err := registry.New(registry.Config{
		Endpoint:  o.getEndpoint(),
		Timeout:   o.timeout,
		UserAgent: "registryctl/" + Version,
		Logger:    log,
	})
	if err != nil {
		return nil, err
	}
	log.Debug("using registry", zap.String("endpoint", client.Endpoint()))

	return service.NewMetadataService(client, nil, nil, log), nil
}

// context bounds a command run by the timeout flag
func (o *globalOptions) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, o.timeout)
}

func newVerboseLogger(w io.Writer) *zap.Logger {
	log, _ := logger.New(logger.Config{Level: "debug", Format: "console", Output: w})
	return log
}
