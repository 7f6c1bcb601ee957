package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "motion", cmd.Use)
	assert.Contains(t, cmd.Long, "action lists")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"compile", "validate", "simulate", "run", "serve", "send", "test", "replay", "sessions", "trace"}

	for _, name := range commands {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	assert.Equal(t, "false", verbose.DefValue)

	format := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, format)
	assert.Equal(t, "text", format.DefValue)

	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("db"))
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "validate", pageDoc, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "motion.yaml")
	require.NoError(t, os.WriteFile(path, []byte("journal:\n  path: "+filepath.Join(dir, "from-config.db")+"\n"), 0o644))

	// The journal comes from the config file, so simulate creates it there.
	_, err := execute(t, "simulate", pageDoc, "--click", "box", "--config", path)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "from-config.db"))

	// --db wins over the file.
	override := filepath.Join(dir, "override.db")
	_, err = execute(t, "simulate", pageDoc, "--click", "box", "--config", path, "--db", override)
	require.NoError(t, err)
	assert.FileExists(t, override)
}

func TestConfigFile_Missing(t *testing.T) {
	_, err := execute(t, "validate", pageDoc, "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
