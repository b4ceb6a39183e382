package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	cmd := newRootCmd()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"migrate", "seed-taxonomy", "sweep-temp", "create-admin"}, names)
}

func TestCreateAdmin_RequiresFlags(t *testing.T) {
	_, err := run(t, "create-admin", "--email", "werkhof@gemeinde.example")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password")
}

func TestSeedTaxonomy_RejectsBrokenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("types:\n  - slug: lighting\n    unknown_field: 1\n"), 0o644))

	_, err := run(t, "seed-taxonomy", path)
	assert.Error(t, err)

	_, err = run(t, "seed-taxonomy")
	assert.Error(t, err)
}

func TestSweepTemp_LocalStorage(t *testing.T) {
	root := t.TempDir()
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORAGE_DRIVER", "local")
	t.Setenv("MEDIA_STORAGE_PATH", root)
	t.Setenv("DEFAULT_LOCALE", "de")
	t.Setenv("DRAFT_TTL", "2h")

	require.NoError(t, os.MkdirAll(filepath.Join(root, "temp"), 0o755))
	old := filepath.Join(root, "temp", "abandoned.jpg")
	require.NoError(t, os.WriteFile(old, []byte("x"), 0o644))
	stale := time.Now().Add(-72 * time.Hour)
	require.NoError(t, os.Chtimes(old, stale, stale))
	require.NoError(t, os.WriteFile(filepath.Join(root, "temp", "fresh.jpg"), []byte("x"), 0o644))

	out, err := run(t, "sweep-temp", "--older-than", "24h")
	require.NoError(t, err)
	assert.Contains(t, out, "temp/abandoned.jpg")
	assert.NotContains(t, out, "fresh.jpg")
	assert.FileExists(t, old)

	out, err = run(t, "sweep-temp", "--older-than", "24h", "--delete")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "удалено: 1 из 1"), out)
	assert.NoFileExists(t, old)
}

func TestSweepTemp_RefusesDeleteBelowDraftTTL(t *testing.T) {
	root := t.TempDir()
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORAGE_DRIVER", "local")
	t.Setenv("MEDIA_STORAGE_PATH", root)
	t.Setenv("DEFAULT_LOCALE", "de")
	t.Setenv("DRAFT_TTL", "48h")

	require.NoError(t, os.MkdirAll(filepath.Join(root, "temp"), 0o755))
	live := filepath.Join(root, "temp", "live.jpg")
	require.NoError(t, os.WriteFile(live, []byte("x"), 0o644))
	age := time.Now().Add(-30 * time.Hour)
	require.NoError(t, os.Chtimes(live, age, age))

	out, err := run(t, "sweep-temp", "--older-than", "24h", "--delete")
	require.Error(t, err)
	assert.Contains(t, out, "DRAFT_TTL")
	assert.FileExists(t, live)
}
