// Package main provides the entry point for the metis CLI.
package main

import (
	"os"

	"github.com/randalmurphal/metis/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
