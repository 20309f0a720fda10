package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-login/internal/database"
	"github.com/kozaktomas/face-login/internal/database/postgres"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List recent register and login attempts",
	Long:  `List the newest entries of the audit log. Requires DATABASE_URL.`,
	RunE:  runEvents,
}

func init() {
	rootCmd.AddCommand(eventsCmd)

	eventsCmd.Flags().Int("limit", database.DefaultRecentEvents, "Number of events to show")
}

func runEvents(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	if cfg.Database.URL == "" {
		return errors.New("DATABASE_URL environment variable is required")
	}

	ctx := context.Background()
	pool, err := postgres.Open(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize PostgreSQL: %w", err)
	}
	defer pool.Close()

	return listEvents(ctx, os.Stdout, postgres.NewAuthEventRepository(pool), mustGetInt(cmd, "limit"))
}

// listEvents prints the newest events as a table.
func listEvents(ctx context.Context, out io.Writer, reader database.AuthEventReader, limit int) error {
	events, err := reader.Recent(ctx, limit)
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}

	if len(events) == 0 {
		fmt.Fprintln(out, "No events recorded yet")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tSESSION\tKIND\tOUTCOME\tDISTANCE")
	for _, e := range events {
		distance := "-"
		if e.Distance != nil {
			distance = fmt.Sprintf("%.4f", *e.Distance)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.Local().Format(time.DateTime), e.SessionID, e.Kind, e.Outcome, distance)
	}
	return w.Flush()
}
