package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/shopfront/database/seeders"
	"github.com/shashiranjanraj/shopfront/internal/kernel"
	"github.com/shashiranjanraj/shopfront/pkg/database"
	"github.com/shashiranjanraj/shopfront/pkg/queue"
	"github.com/shashiranjanraj/shopfront/pkg/recordstore"
)

// shopfront db:migrate
var migrateCmd = &cobra.Command{
	Use:   "db:migrate",
	Short: "Create the records and failed_batches tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := database.Connect(); err != nil {
			return err
		}

		fmt.Println("Running migrations…")
		if err := recordstore.NewSQLStore(database.DB, recordstore.DefaultSchema()).Migrate(); err != nil {
			return err
		}
		if _, err := queue.NewGormFailedStore(database.DB); err != nil {
			return err
		}
		fmt.Println("Done.")
		return nil
	},
}

// shopfront db:seed
var seedCmd = &cobra.Command{
	Use:   "db:seed",
	Short: "Create demo products in the configured record store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		app, err := kernel.Boot(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		fmt.Println("Running seeders…")
		return seeders.RunAll(ctx, seeders.Services{Products: app.Products, Stock: app.Stock}, os.Stdout)
	},
}
