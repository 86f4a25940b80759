package main

import (
	"os"

	"github.com/ZanzyTHEbar/fiq/fiq/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
