package cli

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"

	"quiz-runner-service/internal/config"
	pgstore "quiz-runner-service/internal/infra/postgres"
)

// NewExportCmd writes a session's participant results as CSV.
func NewExportCmd(configPath *string) *cobra.Command {
	var sessionID, outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a session's results as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			if sessionID == "" {
				return fmt.Errorf("--session is required")
			}
			return exportSession(cmd.Context(), *configPath, sessionID, outPath)
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "session id to export")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (stdout when empty)")
	return cmd
}

func exportSession(ctx context.Context, configPath, sessionID, outPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}

	pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	rows, err := pgstore.NewSessionStore(pool).ListSessionResults(ctx, sessionID)
	if err != nil {
		return err
	}

	var out io.Writer = os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	return writeResultsCSV(out, rows)
}

func writeResultsCSV(out io.Writer, rows []pgstore.SessionResultRow) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"first_name", "last_name", "email", "correct", "wrong", "score"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			row.FirstName,
			row.LastName,
			row.Email,
			strconv.Itoa(row.Correct),
			strconv.Itoa(row.Wrong),
			strconv.Itoa(row.Score),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
