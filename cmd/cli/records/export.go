package records

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/crucial707/cpe-tracker/cmd/cli/config"
	"github.com/crucial707/cpe-tracker/internal/common"
	"github.com/crucial707/cpe-tracker/internal/export"
	"github.com/crucial707/cpe-tracker/internal/models"
)

// ==========================
// EXPORT
// ==========================
func exportCmd(open config.Opener) *cobra.Command {
	var username, start, end, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a user's records as CSV",
		Long: `Export a user's records created between --start and --end (YYYY-MM-DD,
both inclusive, either optional). Writes to stdout unless --out is given;
--out may be a directory, in which case the web download filename is used.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rng, err := export.ParseRange(start, end)
			if err != nil {
				var verr *common.ValidationError
				if errors.As(err, &verr) {
					return errors.New(verr.Message)
				}
				return err
			}

			svc, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			user, err := lookupUser(cmd.Context(), svc, username)
			if err != nil {
				return err
			}
			recs, err := svc.Records.Range(cmd.Context(), user.ID, rng.Start, rng.End)
			if err != nil {
				return err
			}

			if out == "" {
				return export.WriteCSV(cmd.OutOrStdout(), recs)
			}

			path := out
			if fi, err := os.Stat(out); err == nil && fi.IsDir() {
				path = filepath.Join(out, rng.Filename())
			}
			if err := writeCSVFile(path, recs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d records to %s\n", len(recs), path)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "Username")
	cmd.Flags().StringVar(&start, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&end, "end", "", "End date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&out, "out", "", "Output file or directory (default stdout)")
	cmd.MarkFlagRequired("user")
	return cmd
}

// writeCSVFile writes recs to path. A failed close is reported like a failed
// write, since buffered data may not have reached the disk.
func writeCSVFile(path string, recs []models.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteCSV(f, recs); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
