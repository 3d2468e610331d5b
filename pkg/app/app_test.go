package app

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikeboe/newsletter-helper/pkg/config"
	"github.com/mikeboe/newsletter-helper/pkg/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		GoogleApiKey: "test-key",
		Model:        "gemini-2.5-flash",
		NotesFile:    filepath.Join(t.TempDir(), "notes.json"),
	}
}

func TestNewUsesFileStoreWithoutDatabase(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	require.NoError(t, storage.NewFileStore(cfg.NotesFile).Set(ctx, storage.NotesKey, "saved earlier"))

	a, err := New(ctx, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	require.NoError(t, err)
	defer a.Close()

	assert.Equal(t, "saved earlier", a.Studio.Snapshot().Notes)
	assert.Nil(t, a.db)
}

func TestNewRequiresAPIKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.GoogleApiKey = ""

	_, err := New(context.Background(), cfg, slog.Default(), nil)
	assert.Error(t, err)
}

func TestWithTimeout(t *testing.T) {
	a := &App{Config: &config.Config{}}
	ctx, cancel := a.WithTimeout(context.Background())
	defer cancel()
	_, ok := ctx.Deadline()
	assert.False(t, ok)

	a.Config.ModelTimeout = time.Minute
	ctx, cancel = a.WithTimeout(context.Background())
	defer cancel()
	_, ok = ctx.Deadline()
	assert.True(t, ok)
}
