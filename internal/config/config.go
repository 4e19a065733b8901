// Package config holds the runtime configuration bound from flags, environment and config files.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/idelchi/gogen/pkg/validator"

	"github.com/idelchi/docdecrypt/internal/decrypt"
)

// Config is the complete runtime configuration.
type Config struct {
	// Common flags
	Show     bool   `yaml:"-"`
	Config   string `yaml:"-"`
	Quiet    bool   `yaml:"quiet"`
	Dry      bool   `yaml:"dry"`
	Stats    bool   `yaml:"stats"`
	Parallel int    `yaml:"parallel"                            validate:"gte=1"                                label:"--parallel"`
	LogLevel string `yaml:"log-level" mapstructure:"log-level" validate:"oneof=debug info warn error fatal" label:"--log-level"`

	Native   Native   `mapstructure:",squash" yaml:",inline"`
	Remote   Remote   `mapstructure:",squash" yaml:",inline"`
	Output   Output   `mapstructure:",squash" yaml:",inline"`
	Selector Selector `mapstructure:",squash" yaml:",inline"`

	Include     []string `yaml:"include,omitempty"`
	Exclude     []string `yaml:"exclude,omitempty"`
	IncludeFrom string   `yaml:"include-from" mapstructure:"include-from" validate:"omitempty,file" label:"--include-from"`
	ExcludeFrom string   `yaml:"exclude-from" mapstructure:"exclude-from" validate:"omitempty,file" label:"--exclude-from"`

	// Positional arguments
	Files []string `mapstructure:"-" yaml:"-"`
}

// Native locates the vendor library.
type Native struct {
	Disabled    bool     `mapstructure:"no-native"    yaml:"no-native"`
	Library     string   `mapstructure:"library"      yaml:"library"      validate:"required" label:"--library"`
	SearchPaths []string `mapstructure:"library-path" yaml:"library-path,omitempty"`
	VendorDir   string   `mapstructure:"vendor-dir"   yaml:"vendor-dir"`
}

// Remote configures the decryption service. An empty URL disables it.
type Remote struct {
	URL          string        `mapstructure:"remote-url"      yaml:"remote-url"      validate:"omitempty,url" label:"--remote-url"`
	HealthURL    string        `mapstructure:"health-url"      yaml:"health-url"      validate:"omitempty,url" label:"--health-url"`
	ProbeTimeout time.Duration `mapstructure:"probe-timeout"   yaml:"probe-timeout"   validate:"gt=0"          label:"--probe-timeout"`
	Timeout      time.Duration `mapstructure:"remote-timeout"  yaml:"remote-timeout"  validate:"gt=0"          label:"--remote-timeout"`
	MaxSize      string        `mapstructure:"max-upload-size" yaml:"max-upload-size" validate:"required"      label:"--max-upload-size"`
	SendDeviceID bool          `mapstructure:"send-device-id"  yaml:"send-device-id"`

	// MaxBytes is MaxSize parsed by Validate.
	MaxBytes int64 `mapstructure:"-" yaml:"-"`
}

// Output controls where artifacts are written.
type Output struct {
	DecryptedExt       string `mapstructure:"decrypted-ext"       yaml:"decrypted-ext" validate:"ext"                      label:"--decrypted-ext"`
	StatusExt          string `mapstructure:"status-ext"          yaml:"status-ext"    validate:"ext,nefield=DecryptedExt" label:"--status-ext"`
	PreserveTimestamps bool   `mapstructure:"preserve-timestamps" yaml:"preserve-timestamps"`
}

// Selector holds the fallback policy.
type Selector struct {
	AllowIdentity bool `mapstructure:"allow-identity-fallback" yaml:"allow-identity-fallback"`
}

// Layout returns the artifact layout.
func (c *Config) Layout() decrypt.Layout {
	return decrypt.Layout{DecryptedExt: c.Output.DecryptedExt, StatusExt: c.Output.StatusExt}
}

// Validate validates the configuration against the struct tags and derives parsed values.
func (c *Config) Validate() error {
	validate := validator.NewValidator()

	if err := registerExt(validate); err != nil {
		return err
	}

	if errs := validate.Validate(c); len(errs) > 0 {
		return fmt.Errorf("validating configuration: %w", errors.Join(errs...))
	}

	size, err := humanize.ParseBytes(c.Remote.MaxSize)
	if err != nil {
		return fmt.Errorf("invalid --max-upload-size %q: %w", c.Remote.MaxSize, err)
	}

	c.Remote.MaxBytes = int64(size) //nolint:gosec // upload limits are far below MaxInt64

	return nil
}
