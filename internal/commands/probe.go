package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/docdecrypt/internal/config"
	"github.com/idelchi/docdecrypt/internal/logic"
)

// NewProbeCommand creates a new cobra command reporting the available capabilities.
func NewProbeCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Report which decryption capabilities are available",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.Show {
				return show(cfg)
			}

			return logic.Probe(cmd.Context(), cfg)
		},
	}
}
