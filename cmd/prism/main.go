// Package main is the entry point for the prism binary.
package main

import (
	"os"

	"prism-console/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
