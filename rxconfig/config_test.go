package rxconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Run("falls back to a queue and a delay scheduler at info level", func(t *testing.T) {
		cfg := Default()

		assert.Equal(t, "info", cfg.LogLevel)
		require.Len(t, cfg.Schedulers, 2)
		assert.Equal(t, "main", cfg.Schedulers[0].Name)
		assert.Equal(t, "queue", cfg.Schedulers[0].Kind)
		assert.Equal(t, "delay", cfg.Schedulers[1].Kind)
		assert.Equal(t, 50*time.Millisecond, cfg.Schedulers[1].Leeway)
	})
}

func TestLoad(t *testing.T) {
	t.Run("parses a YAML document into a Config", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		contents := `
logLevel: debug
schedulers:
  - name: main
    kind: queue
  - name: timers
    kind: delay
    leeway: 100ms
`
		require.NoError(t, writeFile(path, contents))

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "debug", cfg.LogLevel)
		require.Len(t, cfg.Schedulers, 2)
		assert.Equal(t, "timers", cfg.Schedulers[1].Name)
		assert.Equal(t, 100*time.Millisecond, cfg.Schedulers[1].Leeway)
	})

	t.Run("returns an error when the file doesn't exist", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("returns an error on malformed YAML", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, writeFile(path, "schedulers: [this is not valid: :"))

		_, err := Load(path)
		assert.Error(t, err)
	})
}

func writeFile(path, contents string) error {
	return os.WriteFile(path, []byte(contents), 0o644)
}
