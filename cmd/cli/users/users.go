package users

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crucial707/cpe-tracker/cmd/cli/config"
	"github.com/crucial707/cpe-tracker/internal/common"
	"github.com/crucial707/cpe-tracker/internal/service"
)

// ==========================
// CLI Command Init
// ==========================
func InitUsers(rootCmd *cobra.Command, open config.Opener) {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
		Long: `Create or delete CPE tracker accounts directly in the store.
Deleting a user also deletes all of that user's training records.`,
	}

	usersCmd.AddCommand(createUserCmd(open), deleteUserCmd(open))
	rootCmd.AddCommand(usersCmd)
}

// ==========================
// Create User
// ==========================
func createUserCmd(open config.Opener) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a user",
		Long:  "Create a user. The password is read from stdin when --password is omitted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				pw, err := promptPassword(cmd.InOrStdin(), cmd.OutOrStdout())
				if err != nil {
					return err
				}
				password = pw
			}

			svc, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			user, err := svc.Users.Register(cmd.Context(), service.Credentials{Username: username, Password: password})
			if err != nil {
				var verr *common.ValidationError
				switch {
				case errors.Is(err, common.ErrConflict):
					return fmt.Errorf("username %q already exists", strings.TrimSpace(username))
				case errors.As(err, &verr):
					return errors.New(verr.Message)
				}
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "User %s created (id %d).\n", user.Username, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when empty)")
	cmd.MarkFlagRequired("username")
	return cmd
}

// ==========================
// Delete User
// ==========================
func deleteUserCmd(open config.Opener) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a user and all of their records",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer svc.Close()

			user, err := svc.Users.Lookup(cmd.Context(), username)
			if err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return fmt.Errorf("user %q not found", username)
				}
				return err
			}
			if err := svc.Users.Delete(cmd.Context(), user.ID); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "User %s deleted.\n", user.Username)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username")
	cmd.MarkFlagRequired("username")
	return cmd
}
