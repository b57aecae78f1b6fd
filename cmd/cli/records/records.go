package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crucial707/cpe-tracker/cmd/cli/config"
	"github.com/crucial707/cpe-tracker/cmd/cli/output"
	"github.com/crucial707/cpe-tracker/internal/common"
	"github.com/crucial707/cpe-tracker/internal/export"
	"github.com/crucial707/cpe-tracker/internal/models"
)

// ==========================
// Init Records
// ==========================
func InitRecords(rootCmd *cobra.Command, open config.Opener) {
	recordsCmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect a user's training records",
	}

	recordsCmd.AddCommand(
		listRecordsCmd(open),
		summaryCmd(open),
	)

	rootCmd.AddCommand(recordsCmd, exportCmd(open))
}

// ==========================
// LIST
// ==========================
func listRecordsCmd(open config.Opener) *cobra.Command {
	var username string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's records, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			user, err := lookupUser(cmd.Context(), svc, username)
			if err != nil {
				return err
			}
			recs, err := svc.Records.List(cmd.Context(), user.ID)
			if err != nil {
				return err
			}

			if asJSON {
				return output.RenderJSON(cmd.OutOrStdout(), recs)
			}
			if len(recs) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No records for %s.\n", user.Username)
				return nil
			}

			headers := []string{"ID", "Training", "Category", "Hours", "Link", "Date Added"}
			var rows [][]interface{}
			for _, r := range recs {
				rows = append(rows, []interface{}{
					r.ID, r.TrainingName, r.Category, export.FormatHours(r.Hours), r.Link,
					r.CreatedAt.Format(export.TimestampLayout),
				})
			}
			output.RenderTable(cmd.OutOrStdout(), headers, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "Username")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output raw JSON")
	cmd.MarkFlagRequired("user")
	return cmd
}

// ==========================
// SUMMARY
// ==========================
func summaryCmd(open config.Opener) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show total hours and hours per category",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			user, err := lookupUser(cmd.Context(), svc, username)
			if err != nil {
				return err
			}
			d, err := svc.Records.Dashboard(cmd.Context(), user.ID)
			if err != nil {
				return err
			}

			var rows [][]interface{}
			for _, c := range d.CategoryHours {
				rows = append(rows, []interface{}{c.Category, export.FormatHours(c.Hours)})
			}
			rows = append(rows, []interface{}{"Total", export.FormatHours(d.TotalHours)})
			output.RenderTable(cmd.OutOrStdout(), []string{"Category", "Hours"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "user", "", "Username")
	cmd.MarkFlagRequired("user")
	return cmd
}

func lookupUser(ctx context.Context, svc *config.Services, username string) (*models.User, error) {
	user, err := svc.Users.Lookup(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, fmt.Errorf("user %q not found", username)
		}
		return nil, err
	}
	return user, nil
}
