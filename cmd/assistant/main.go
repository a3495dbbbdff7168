package main

import (
	"os"

	"github.com/mejaggi/nexus-answers-56/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
