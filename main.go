package main

import (
	"errors"
	"os"

	"preflight/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		if errors.Is(err, cli.ErrNotReady) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
