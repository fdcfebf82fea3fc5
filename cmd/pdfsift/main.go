// Package main provides the entry point for the pdfsift CLI.
package main

import (
	"os"

	"github.com/pdfsift/pdfsift/cmd/pdfsift/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
