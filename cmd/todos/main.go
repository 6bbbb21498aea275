// Package main runs the todos CLI.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/todos/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
