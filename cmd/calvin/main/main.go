package main

import (
	"os"

	"github.com/arthur-debert/calvin/cmd/calvin"
	"github.com/arthur-debert/calvin/pkg/ui"
)

func main() {
	rootCmd := calvin.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		// Paths and remediation go to stderr so stdout stays parseable
		format := ui.FormatAuto
		if f := rootCmd.PersistentFlags().Lookup("json"); f != nil && f.Value.String() == "true" {
			format = ui.FormatJSON
		}
		if r, rerr := ui.NewRenderer(format, os.Stderr); rerr == nil {
			_ = r.RenderError(err)
		}
		os.Exit(1)
	}
}
