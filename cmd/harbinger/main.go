package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/harbinger-games/harbinger/internal/interfaces/cli/migrate"
	"github.com/harbinger-games/harbinger/internal/interfaces/cli/server"
	"github.com/harbinger-games/harbinger/internal/interfaces/cli/token"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "harbinger",
		Short: "Harbinger - matchmaking backend",
		Long:  `Harbinger runs the matchmaking HTTP API, its database migrations and developer tooling.`,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		token.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
