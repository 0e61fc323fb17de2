package main

import (
	"os"

	"github.com/eac-lang/eac/cmd/eac/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
