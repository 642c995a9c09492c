package main

import (
	"os"

	"github.com/rustyeddy/torb/cmd/torb/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
