package main

import (
	"fmt"
	"os"

	"github.com/crucial707/cpe-tracker/cmd/cli/config"
	"github.com/crucial707/cpe-tracker/cmd/cli/migrate"
	"github.com/crucial707/cpe-tracker/cmd/cli/records"
	"github.com/crucial707/cpe-tracker/cmd/cli/root"
	"github.com/crucial707/cpe-tracker/cmd/cli/users"
)

func main() {
	rootCmd := root.GetRoot()
	migrate.InitMigrate(rootCmd)
	users.InitUsers(rootCmd, config.Open)
	records.InitRecords(rootCmd, config.Open)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
