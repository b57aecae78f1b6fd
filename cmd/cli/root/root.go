package root

import (
	"github.com/spf13/cobra"
)

// Exported RootCmd
var RootCmd = &cobra.Command{
	Use:   "cpectl",
	Short: "CPE tracker admin CLI",
	Long: `Administrative commands for the CPE tracker: apply migrations, manage
users, inspect records and export CSV files directly against the store.`,
	SilenceUsage: true,
}

// GetRoot returns the RootCmd
func GetRoot() *cobra.Command {
	return RootCmd
}
