package main

import (
	"os"

	"github.com/gnolang/treduce/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
