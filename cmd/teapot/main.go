package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/gookit/color"

	"github.com/teapot-build/teapot/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		// A failing child program already wrote its own output; pass its
		// exit code through without adding noise.
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "%s %v\n", color.Style{color.FgRed, color.OpBold}.Sprint("error:"), err)
		os.Exit(1)
	}
}
