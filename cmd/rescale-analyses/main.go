// Rescale Analyses - list analyses and run the actions the current user may take.
//
// Build with:
//
//	go build -ldflags "-X github.com/rescale/rescale-analyses/internal/version.Version=vX.Y.Z" ./cmd/rescale-analyses
package main

import (
	"os"

	"github.com/rescale/rescale-analyses/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
