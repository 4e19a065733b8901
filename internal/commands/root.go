package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/gogen/pkg/cobraext"

	"github.com/idelchi/docdecrypt/internal/config"
	"github.com/idelchi/docdecrypt/internal/decrypt"
	"github.com/idelchi/docdecrypt/internal/logic"
	"github.com/idelchi/docdecrypt/internal/native"
	"github.com/idelchi/docdecrypt/internal/remote"
)

// EnvPrefix is the prefix of the environment variables bound to flags.
const EnvPrefix = "DOCDECRYPT"

// NewRootCommand creates the root command with common configuration.
// It sets up environment variable binding and flag handling.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	root := cobraext.NewDefaultRootCommand(version)

	root.Use = "docdecrypt [flags] [file]"
	root.Short = "Recover the plain content of protected documents"
	root.Long = `Recovers the plain content of documents protected by a document-security product.

Each file is handed to the vendor's native library when it is installed, then to
the vendor's decryption service when one is configured. As a last resort, and only
with --allow-identity-fallback, the file is copied unchanged and marked as such.

Given a file, docdecrypt writes <name>.decrypted and a status record <name>.txt
beside it and exits 0 on success or when the file is not protected.`
	root.Args = cobra.MaximumNArgs(1)
	root.SilenceUsage = true
	root.SilenceErrors = true

	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		return configure(cmd, cfg)
	}

	root.RunE = func(cmd *cobra.Command, args []string) error {
		if cfg.Show {
			return show(cfg)
		}

		if len(args) == 0 {
			return cmd.Help()
		}

		cfg.Files = args

		return logic.Run(cmd.Context(), cfg)
	}

	flags := root.PersistentFlags()

	flags.BoolP("show", "s", false, "Show the configuration and exit")
	flags.StringP("config", "c", "", "Path to a YAML configuration file")
	flags.String("log-level", "warn", "Log level (debug, info, warn, error, fatal)")
	flags.IntP("parallel", "j", 1, "Number of files processed concurrently")
	flags.BoolP("quiet", "q", false, "Suppress non-error output")
	flags.Bool("dry", false, "Show which files would be processed without decrypting")
	flags.Bool("stats", false, "Print statistics after processing")

	flags.String("library", native.DefaultLibraryName, "File name of the vendor's native library")
	flags.StringSlice("library-path", nil, "Additional directories (or library files) to search first")
	flags.String("vendor-dir", native.DefaultVendorDir, "Vendor directory under Program Files")
	flags.Bool("no-native", false, "Do not use the native library")

	flags.String("remote-url", "", "URL of the decryption service, empty disables it")
	flags.String("health-url", "", "URL of the health check, defaults to <remote-url>/../health")
	flags.Duration("probe-timeout", remote.DefaultProbeTimeout, "Timeout of the health check")
	flags.Duration("remote-timeout", remote.DefaultTimeout, "Timeout of a decryption request")
	flags.String("max-upload-size", "100MiB", "Largest file sent to the decryption service")
	flags.Bool("send-device-id", false, "Identify this machine to the decryption service")

	flags.Bool("allow-identity-fallback", false, "Copy files unchanged when no decryption is possible")
	flags.String("decrypted-ext", decrypt.DefaultDecryptedExt, "Extension of decrypted outputs")
	flags.String("status-ext", decrypt.DefaultStatusExt, "Extension of status records")
	flags.Bool("preserve-timestamps", false, "Give outputs the modification time of their input")

	root.AddCommand(NewDecryptCommand(cfg), NewProbeCommand(cfg))

	return root
}

// configure merges .env, environment, config file and flags into cfg and validates it.
func configure(cmd *cobra.Command, cfg *config.Config) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}

	log.SetHandler(cli.New(os.Stderr))
	log.SetLevel(level)

	return nil
}

// show prints the effective configuration as YAML.
func show(cfg *config.Config) error {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	fmt.Print(string(out)) //nolint:forbidigo

	return nil
}
