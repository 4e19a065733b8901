package logic

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"

	"github.com/idelchi/docdecrypt/internal/config"
	"github.com/idelchi/docdecrypt/internal/native"
)

// ErrNoCapability is returned by Probe when neither the native library nor the remote service is usable.
var ErrNoCapability = errors.New("no decryption capability available")

// Probe reports where the native library was found, or every location searched,
// and whether the remote service answers its health check.
func Probe(ctx context.Context, cfg *config.Config) error {
	ok := color.New(color.FgGreen)
	bad := color.New(color.FgRed)

	var available bool

	switch {
	case cfg.Native.Disabled:
		fmt.Println("native: disabled") //nolint:forbidigo
	default:
		strategy := native.New(nativeOptions(cfg))

		if path, found := strategy.Locate(); found {
			available = true

			ok.Printf("native: %s\n", path) //nolint:errcheck
		} else {
			bad.Printf("native: %s not found, searched:\n", cfg.Native.Library) //nolint:errcheck

			for _, candidate := range strategy.Candidates() {
				fmt.Printf("  %s\n", candidate) //nolint:forbidigo
			}
		}
	}

	client, err := remoteClient(cfg)
	if err != nil {
		return err
	}

	switch {
	case client == nil:
		fmt.Println("remote: not configured") //nolint:forbidigo
	default:
		if err := client.Ping(ctx); err != nil {
			bad.Printf("remote: %s unreachable: %v\n", client.HealthEndpoint(), err) //nolint:errcheck
		} else {
			available = true

			ok.Printf("remote: %s reachable\n", client.Endpoint()) //nolint:errcheck
		}
	}

	if cfg.Selector.AllowIdentity {
		color.Yellow("identity: allowed, files may be copied without decryption")
	}

	if !available {
		return ErrNoCapability
	}

	return nil
}
