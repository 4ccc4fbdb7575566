package cli

import (
	"github.com/spf13/cobra"

	apperrors "github.com/johnquangdev/ifocus/errors"
)

// NewRootCmd builds the ifocus command tree
func NewRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "ifocus",
		Short: "Focus analytics and insight generation for iFocus assignments",
		Long: `ifocus turns recorded focus samples into metrics, heatmaps and
AI-written insights for students and teachers.

Configuration is read from .env and the environment (DB_*, STORAGE_*,
LLM_*, REDIS_*, KAFKA_*, WORKER_*, HEATMAP_*, LOG_*).`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringSlice("env-file", nil, "Load variables from these .env files (default .env)")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return apperrors.ErrInvalidArgument(err.Error())
	})

	root.AddCommand(NewRunCmd())
	root.AddCommand(NewReportCmd())
	root.AddCommand(NewHeatmapCmd())
	root.AddCommand(NewMigrateCmd())

	return root
}
