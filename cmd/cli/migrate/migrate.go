package migrate

import (
	"fmt"

	"github.com/spf13/cobra"

	appconfig "github.com/crucial707/cpe-tracker/internal/config"
	"github.com/crucial707/cpe-tracker/internal/db"
)

// Migrator is the schema operations the command needs.
type Migrator struct {
	Up      func(databaseURL string) error
	Version func(databaseURL string) (uint, bool, error)
}

// InitMigrate registers migrate and migrate version on rootCmd.
func InitMigrate(rootCmd *cobra.Command) {
	rootCmd.AddCommand(migrateCmd(Migrator{Up: db.Run, Version: db.Version}))
}

func migrateCmd(m Migrator) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := appconfig.Load()
			if cfg.Store == appconfig.StoreMemory {
				fmt.Fprintln(cmd.OutOrStdout(), "STORE=memory: nothing to migrate.")
				return nil
			}
			if err := m.Up(cfg.DatabaseURL()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrations applied to %s/%s.\n", cfg.DBHost, cfg.DBName)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := appconfig.Load()
			if cfg.Store == appconfig.StoreMemory {
				fmt.Fprintln(cmd.OutOrStdout(), "STORE=memory: no schema version.")
				return nil
			}
			v, dirty, err := m.Version(cfg.DatabaseURL())
			if err != nil {
				return err
			}
			if dirty {
				fmt.Fprintf(cmd.OutOrStdout(), "Schema version %d (dirty: a migration failed part way).\n", v)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema version %d.\n", v)
			return nil
		},
	})
	return cmd
}
