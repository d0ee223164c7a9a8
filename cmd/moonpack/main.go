package main

import (
	"fmt"
	"os"

	"github.com/moonpack-dev/moonpack/pkg/cli"
	"github.com/moonpack-dev/moonpack/pkg/console"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		os.Exit(1)
	}
}
