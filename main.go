// Package main provides the entry point for the eftools CLI.
// It initializes and executes the root command.
package main

import (
	"github.com/cesarempathy/ef-tools/cmd"
)

func main() {
	cmd.Execute()
}
