package commands_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idelchi/docdecrypt/internal/commands"
	"github.com/idelchi/docdecrypt/internal/config"
)

func execute(t *testing.T, args ...string) (*config.Config, error) {
	t.Helper()

	var cfg config.Config

	root := commands.NewRootCommand(&cfg, "test")
	root.SetArgs(args)
	root.SetOut(os.Stderr)

	return &cfg, root.Execute()
}

func TestDecryptDryRun(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report.docx"), []byte("x"), 0o600))

	t.Setenv("DOCDECRYPT_PARALLEL", "3")
	t.Setenv("DOCDECRYPT_REMOTE_URL", "http://127.0.0.1:1/decrypt")

	cfg, err := execute(t, "dec", "--dry", "--quiet", "--no-native", "--max-upload-size", "2MiB", dir)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Parallel)
	assert.Equal(t, "http://127.0.0.1:1/decrypt", cfg.Remote.URL)
	assert.True(t, cfg.Native.Disabled)
	assert.Equal(t, int64(2<<20), cfg.Remote.MaxBytes)
	assert.Equal(t, 10*time.Second, cfg.Remote.ProbeTimeout)
	assert.Equal(t, []string{filepath.Join(dir, "report.docx")}, cfg.Files)
	assert.NoFileExists(t, filepath.Join(dir, "report.decrypted"))
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "docdecrypt.yml")

	content := "decrypted-ext: .plain\nallow-identity-fallback: true\nparallel: 2\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := execute(t, "--config", path, "--show")
	require.NoError(t, err)

	assert.Equal(t, ".plain", cfg.Output.DecryptedExt)
	assert.True(t, cfg.Selector.AllowIdentity)
	assert.Equal(t, 2, cfg.Parallel)
}

func TestInvalidConfigurationIsRejected(t *testing.T) {
	_, err := execute(t, "--status-ext", ".decrypted", "--show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--status-ext")
}

func TestRootFailsForMissingFile(t *testing.T) {
	_, err := execute(t, "--no-native", "--allow-identity-fallback", filepath.Join(t.TempDir(), "missing.docx"))
	require.Error(t, err)
}
