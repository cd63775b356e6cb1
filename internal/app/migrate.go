package app

import (
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		defer func() { _ = env.log.Sync() }()
		_, closeStore, err := env.openStore(cmd.Context())
		if err != nil {
			return err
		}
		return closeStore()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
