package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/docdecrypt/internal/config"
	"github.com/idelchi/docdecrypt/internal/logic"
)

// NewDecryptCommand creates a new cobra command for the decrypt subcommand.
func NewDecryptCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "decrypt [flags] [paths...]",
		Aliases: []string{"dec"},
		Short:   "Decrypt files and directories",
		Long: `Decrypts every given file. Directories are walked recursively and their files
filtered by --include and --exclude, matched against file names. Outputs and status
records from earlier runs are skipped. Without arguments the working directory is used.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Show {
				return show(cfg)
			}

			if len(args) == 0 {
				cfg.Files = []string{"."}
			} else {
				cfg.Files = args
			}

			return logic.Run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringSliceP("include", "i", nil, "Glob patterns of file names to include")
	cmd.Flags().StringSliceP("exclude", "e", nil, "Glob patterns of file names to exclude")
	cmd.Flags().String("include-from", "", "JSONC file with an array of include patterns")
	cmd.Flags().String("exclude-from", "", "JSONC file with an array of exclude patterns")

	return cmd
}
