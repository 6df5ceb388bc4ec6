package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vibast-solutions/ms-go-signup/app/repository"
	"github.com/vibast-solutions/ms-go-signup/app/service"
	"github.com/vibast-solutions/ms-go-signup/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/spf13/cobra"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete consumed and expired confirmation records",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		db, err := sql.Open("mysql", cfg.DSN())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := db.Ping(); err != nil {
			return err
		}

		signupService := service.NewSignupService(
			db,
			repository.NewUserRepository(db),
			repository.NewConfirmationRepository(db),
			nil,
			cfg,
		)

		removed, err := signupService.PruneConfirmations(context.Background())
		if err != nil {
			return err
		}

		fmt.Printf("removed: %d\n", removed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pruneCmd)
}
