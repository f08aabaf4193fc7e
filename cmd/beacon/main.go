// Package main is the entry point for the beacon CLI tool.
package main

import (
	"os"

	"github.com/beaconhq/beacon/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
