package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/shopfront/config"
	"github.com/shashiranjanraj/shopfront/internal/kernel"
)

var queueWorkersFlag int

// shopfront queue:work
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Consume ingest messages and create products in batches",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		if queueWorkersFlag > 0 {
			config.Set("QUEUE_WORKERS", fmt.Sprint(queueWorkersFlag))
		}

		app, err := kernel.Boot(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		fmt.Printf("Queue worker started (%s, %d workers). Press Ctrl+C to stop.\n",
			app.Queue.Name(), config.QueueWorkers())
		if err := app.Consumer().Run(ctx); err != nil {
			return err
		}
		fmt.Println("Queue worker stopped.")
		return nil
	},
}

// shopfront queue:failed
var queueFailedCmd = &cobra.Command{
	Use:   "queue:failed",
	Short: "List batches that failed processing",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		app, err := kernel.Boot(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		failed, err := app.Failed.List(ctx)
		if err != nil {
			return err
		}
		if len(failed) == 0 {
			fmt.Println("No failed batches.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "FAILED AT\tDRIVER\tMESSAGES\tERROR")
		for _, fb := range failed {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				fb.FailedAt.Format("2006-01-02 15:04:05"), fb.Driver, strings.Join(fb.MessageIDs, ","), fb.Err)
		}
		return w.Flush()
	},
}

// shopfront import:parse <key>...
var importParseCmd = &cobra.Command{
	Use:   "import:parse <key>...",
	Short: "Parse uploaded CSV files onto the ingest queue",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		app, err := kernel.Boot(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		for _, key := range args {
			res, err := app.Import.ParseFile(ctx, key)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			if res.Skipped {
				fmt.Printf("%s: skipped (not under uploaded/)\n", key)
				continue
			}
			fmt.Printf("%s: %d rows queued, moved to %s\n", key, res.Sent, res.MovedTo)
		}
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 0, "Number of concurrent batch workers (default QUEUE_WORKERS)")
}
