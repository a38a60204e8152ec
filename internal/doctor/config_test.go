package doctor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".pulse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestConfigFileCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("explicit file", func(t *testing.T) {
		path := writeConfig(t, "version: 1\n")
		res := (&ConfigFileCheck{ConfigPath: path}).Run(ctx)
		assert.Equal(t, StatusPass, res.Status)
		assert.Equal(t, "Config file: .pulse.yaml", res.Message)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		res := (&ConfigFileCheck{ConfigPath: filepath.Join(t.TempDir(), "nope.yaml")}).Run(ctx)
		assert.Equal(t, StatusFail, res.Status)
		assert.Contains(t, res.Message, "not found")
		assert.NotEmpty(t, res.Suggestion)
	})

	t.Run("no file anywhere", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("HOME", t.TempDir())

		res := (&ConfigFileCheck{}).Run(ctx)
		assert.Equal(t, StatusWarn, res.Status)
		assert.Contains(t, res.Message, "built-in defaults")
	})
}

func TestConfigSchemaCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		path := writeConfig(t, "version: 1\napi:\n  base_url: http://localhost:5000\n")
		res := (&ConfigSchemaCheck{ConfigPath: path}).Run(ctx)
		assert.Equal(t, StatusPass, res.Status)
		assert.Contains(t, res.Message, "4 widgets")
		assert.Contains(t, res.Message, "5s")
	})

	t.Run("invalid thresholds", func(t *testing.T) {
		path := writeConfig(t, "thresholds:\n  medium: 90\n  high: 80\n")
		res := (&ConfigSchemaCheck{ConfigPath: path}).Run(ctx)
		assert.Equal(t, StatusFail, res.Status)
		assert.Contains(t, res.Message, "thresholds.medium")
		assert.Contains(t, res.Suggestion, "thresholds")
	})

	t.Run("broken yaml", func(t *testing.T) {
		path := writeConfig(t, "api: [\n")
		res := (&ConfigSchemaCheck{ConfigPath: path}).Run(ctx)
		assert.Equal(t, StatusFail, res.Status)
	})
}

func TestNewConfigChecks(t *testing.T) {
	checks := NewConfigChecks("")
	require.Len(t, checks, 2)
	for _, c := range checks {
		assert.Equal(t, CategoryConfig, c.Category())
	}
}
