package main

import (
	"os"

	"github.com/felixgeelhaar/specforge/internal/infrastructure/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
