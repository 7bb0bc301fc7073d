package main

import (
	"os"

	"github.com/jchaskell/cr/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
