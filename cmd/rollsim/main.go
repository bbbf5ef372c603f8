package main

import (
	"os"

	"github.com/rustyeddy/rollsim/cmd/rollsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
