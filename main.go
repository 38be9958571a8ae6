package main

import (
	"os"

	"github.com/probablyup/spectrum/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
