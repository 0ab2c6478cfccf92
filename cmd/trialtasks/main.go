package main

import (
	"fmt"
	"os"

	"github.com/ignatij/trialtasks/internal/cli"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "trialtasks",
	Short: "Trial task registry: HTTP server and command-line client",
}

func main() {
	cli.SetupCLI(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
