// Command reversi plays Reversi over a shared property space.
package main

import (
	"os"

	"github.com/FireRat666/Banter-Reversi/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		format, _ := cmd.PersistentFlags().GetString("format")
		f := &cli.OutputFormatter{Format: format, Writer: os.Stdout, ErrWriter: os.Stderr}
		f.Report(err)
		os.Exit(cli.GetExitCode(err))
	}
}
