// registryctl queries the metadata registry from the command line
package main

import (
	"os"

	"github.com/covidtimeseries/metadata/cmd/registryctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
