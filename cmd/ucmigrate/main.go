package main

import (
	"os"

	"github.com/databrickslabs/ucmigrate/cmd/ucmigrate/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
