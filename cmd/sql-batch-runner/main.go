package main

import (
	"os"

	"github.com/iyuangang/sql-batch-runner/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
