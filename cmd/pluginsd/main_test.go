package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	cfg.Catalog = filepath.Join(t.TempDir(), "missing.json")
	_, err = newApp(context.Background(), cfg)
	assert.Error(t, err)

	cfg.Catalog = filepath.Join(t.TempDir(), "plugins.json")
	require.NoError(t, os.WriteFile(cfg.Catalog, []byte(`[
		{"name": "Core", "required": true},
		{"name": "Spotify", "dependencies": ["Core"]}
	]`), 0o644))
	app, err := newApp(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, app)
}

// 后面的步骤失败的时候，前面拿到的资源要倒序释放
func TestClosers(t *testing.T) {
	logger, hook := test.NewNullLogger()
	var order []string
	var cs closers
	cs.add(func(ctx context.Context) error {
		order = append(order, "tracing")
		return nil
	})
	cs.add(func(ctx context.Context) error {
		order = append(order, "backend")
		return errors.New("close failed")
	})
	cs.close(context.Background(), logger)

	assert.Equal(t, []string{"backend", "tracing"}, order)
	require.Len(t, hook.AllEntries(), 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestNewAppFailureAfterBackend(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	dir := t.TempDir()
	cfg.Catalog = filepath.Join(dir, "plugins.json")
	require.NoError(t, os.WriteFile(cfg.Catalog, []byte(`[{"name": "Core"}]`), 0o644))
	cfg.Store.Backend = "sqlite"
	cfg.Store.DSN = filepath.Join(dir, "settings.db")
	cfg.Store.Table = "snapshots"
	cfg.Store.Codec = "xml"

	_, err = newApp(context.Background(), cfg)
	assert.ErrorContains(t, err, "未知的编码")
}

func TestSetupLogger(t *testing.T) {
	assert.NoError(t, setupLogger(LogConfig{Level: "debug", JSON: true}))
	assert.Error(t, setupLogger(LogConfig{Level: "loud"}))
}
