package main

import (
	"os"

	"github.com/spigell/cvscan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
