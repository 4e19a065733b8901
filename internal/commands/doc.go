// Package commands provides the command-line interface for the docdecrypt tool.
//
// It implements commands for:
//   - decrypting a single file (root command)
//   - decrypting files and directories in batch
//   - probing which decryption capabilities are available
//
// The package handles command-line parsing, configuration validation,
// and environment variable binding through cobra and viper.
package commands
