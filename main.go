package main

import (
	"os"

	"github.com/edvald/garden-1/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
