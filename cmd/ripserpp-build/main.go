package main

import (
	"os"

	"github.com/contriboss/ripserplusplus-build/internal/cli"
)

func main() {
	// fang prints the error
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
