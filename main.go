package main

import (
	"io"
	"os"

	"github.com/temirov/depctl/cmd/cli"
)

// main executes the depctl command-line application.
func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

func run(arguments []string, standardInput io.Reader, standardOutput io.Writer, standardError io.Writer) int {
	if len(arguments) > 0 {
		arguments = arguments[1:]
	}
	return cli.Run(arguments, standardInput, standardOutput, standardError)
}
