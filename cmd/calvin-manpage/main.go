package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/calvin/cmd/calvin"
	"github.com/arthur-debert/calvin/internal/version"
)

func main() {
	rootCmd := calvin.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "CALVIN",
		Section: "1",
		Source:  "calvin " + version.Get().Version,
		Manual:  "calvin manual",
	}

	err := doc.GenMan(rootCmd, header, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
