package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/wordofday/internal/cli"
	"codeberg.org/snonux/wordofday/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command; the processor is only built once the
	// configuration has been read
	rootCmd := cli.CreateRootCommand(flags, func(config *cli.Config) (cli.Runner, error) {
		return processor.NewProcessor(context.Background(), config)
	})

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
