// cmd/trialtasks-migrate/main.go
package main

import (
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/ignatij/trialtasks/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{Use: "trialtasks-migrate"}

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down]",
	Short:     "Run database migrations",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down"},
	Run: func(cmd *cobra.Command, args []string) {
		connStr, _ := cmd.Flags().GetString("db")
		if connStr == "" {
			configPath, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(configPath)
			if err != nil {
				fmt.Printf("Failed to load configuration: %v\n", err)
				os.Exit(1)
			}
			connStr, err = cfg.DB.ConnString()
			if err != nil {
				fmt.Printf("Error: --db flag or DB_* env vars required: %v\n", err)
				os.Exit(1)
			}
		}
		source, _ := cmd.Flags().GetString("source")

		m, err := migrate.New(source, connStr)
		if err != nil {
			fmt.Printf("Failed to initialize migrations: %v\n", err)
			os.Exit(1)
		}
		defer m.Close()

		direction := "up"
		if len(args) == 1 {
			direction = args[0]
		}
		if direction == "down" {
			err = m.Down()
		} else {
			err = m.Up()
		}
		if err != nil && err != migrate.ErrNoChange {
			fmt.Printf("Failed to apply migrations: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Migrations applied successfully (%s)\n", direction)
	},
}

func main() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().String("db", "", "Database connection string (optional if DB_* env vars are set)")
	migrateCmd.Flags().String("config", "config.yaml", "Configuration file (optional)")
	migrateCmd.Flags().String("source", "file://migrations", "Migrations source URL")
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
