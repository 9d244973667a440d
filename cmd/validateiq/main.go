package main

import (
	"os"

	"github.com/validateiq/validateiq/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
