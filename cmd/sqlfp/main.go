// Command sqlfp fingerprints a SQL statement from the command line.
package main

import (
	"os"

	"github.com/mstute/sqlfp/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
