package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	apperrors "github.com/johnquangdev/ifocus/errors"
	"github.com/johnquangdev/ifocus/internal/infrastructure/database"
)

// NewMigrateCmd creates the 'migrate' command
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending Postgres schema migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.cfg.Database.Driver != "postgres" {
				return apperrors.ErrInvalidArgument("migrate only applies to the postgres driver; the sqlite schema belongs to the web application")
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}
			n, err := database.Migrate(db, a.logger)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migrations\n", n)
			return err
		},
	}
}
