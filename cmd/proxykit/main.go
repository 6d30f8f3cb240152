package main

import (
	"os"

	"github.com/funvibe/proxykit/cmd/proxykit/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
