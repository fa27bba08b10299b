package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/shared"
	mysqlrepo "hotel_booking/internal/storage/mysql"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "hotelctl",
		Short: "Operator tooling for the hotel booking API: schema, seed data, accounts",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Logger = observability.NewLogger(os.Getenv("APP_ENV"))
		},
	}

	root.AddCommand(newKeysCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newSeedCmd())
	root.AddCommand(newUserCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDB loads config, connects to MySQL and brings the schema up to date.
func openDB(ctx context.Context) (shared.Config, *sql.DB, error) {
	cfg, err := shared.Load()
	if err != nil {
		return shared.Config{}, nil, err
	}
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		return shared.Config{}, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return shared.Config{}, nil, fmt.Errorf("ping: %w", err)
	}
	if err := mysqlrepo.Migrate(ctx, db); err != nil {
		db.Close()
		return shared.Config{}, nil, err
	}
	return cfg, db, nil
}
