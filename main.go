// Command docdecrypt recovers the plain content of documents protected by a document-security product.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/fatih/color"

	"github.com/idelchi/docdecrypt/internal/commands"
	"github.com/idelchi/docdecrypt/internal/config"
)

// Global variable for CI stamping.
var version = "unknown - unofficial & generated by unknown"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	var cfg config.Config

	err := commands.NewRootCommand(&cfg, version).ExecuteContext(ctx)

	stop()

	if err != nil {
		color.New(color.FgRed).Fprintf(color.Error, "docdecrypt: %v\n", err) //nolint:errcheck
		os.Exit(1)
	}
}
