package main

import (
	"os"

	"github.com/devsquared/ooroo/cmd/ooroo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
