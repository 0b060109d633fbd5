// Command shopfront runs the catalogue API, the import queue worker and the
// maintenance tasks.
//
//	shopfront serve            # HTTP + gRPC
//	shopfront serve --worker   # ... plus the queue worker in-process
//	shopfront queue:work       # batch consumer only
//	shopfront import:parse uploaded/products.csv
//	shopfront route:list
//	shopfront db:migrate
//	shopfront db:seed
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/shopfront/config"
	"github.com/shashiranjanraj/shopfront/pkg/logger"
)

func main() {
	err := rootCmd.Execute()
	logger.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "shopfront",
	Short:         "Product catalogue service",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Load(); err != nil {
			return err
		}
		if config.LogMongoURI() != "" {
			if err := logger.AttachMongo(); err != nil {
				logger.Warn("mongo log sink disabled", "error", err)
			}
		}
		return nil
	},
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	rootCmd.AddCommand(queueWorkCmd)
	rootCmd.AddCommand(queueFailedCmd)
	rootCmd.AddCommand(importParseCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}
