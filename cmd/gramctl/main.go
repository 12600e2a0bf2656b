package main

import (
	"os"

	"github.com/gramctl-io/gramctl/cmd/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
