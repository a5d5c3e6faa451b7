package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"pagebuilder/internal/config"
	"pagebuilder/internal/domain"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Driver:       "sqlite",
		DataDir:      t.TempDir(),
		Autosave:     config.AutosaveOff,
		Debounce:     10 * time.Millisecond,
		HistoryLimit: 20,
	}
}

func TestApp_StartupShutdownPersists(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	a := New(cfg, zerolog.Nop())
	require.NoError(t, a.Startup(ctx))
	require.NoError(t, a.StartBackground(ctx))

	ed, err := a.Pages().CreatePage(ctx, "Home", nil)
	require.NoError(t, err)
	_, err = ed.InsertNew(domain.RootID, domain.BlockTypeText, domain.PositionInner)
	require.NoError(t, err)
	require.NoError(t, a.Shutdown(ctx))

	_, err = os.Stat(filepath.Join(cfg.DataDir, "pagebuilder.db"))
	require.NoError(t, err)

	again := New(cfg, zerolog.Nop())
	require.NoError(t, again.Startup(ctx))
	t.Cleanup(func() { again.Shutdown(ctx) })
	reopened, err := again.Pages().OpenPage(ctx, ed.PageID())
	require.NoError(t, err)
	require.Len(t, reopened.Tree(), 1)
}

func TestApp_StartBackground(t *testing.T) {
	ctx := context.Background()

	a := New(testConfig(t), zerolog.Nop())
	require.Error(t, a.StartBackground(ctx), "before startup")

	cfg := testConfig(t)
	cfg.Autosave = "@every 1h"
	cfg.ImportDir = t.TempDir()
	a = New(cfg, zerolog.Nop())
	require.NoError(t, a.Startup(ctx))
	require.NoError(t, a.StartBackground(ctx))
	require.NoError(t, a.Shutdown(ctx))

	cfg.Autosave = "whenever"
	cfg.ImportDir = ""
	a = New(cfg, zerolog.Nop())
	require.NoError(t, a.Startup(ctx))
	require.Error(t, a.StartBackground(ctx))
	require.NoError(t, a.Shutdown(ctx))
}

func TestApp_StartupUnknownDriver(t *testing.T) {
	cfg := testConfig(t)
	cfg.Driver = "oracle"
	require.Error(t, New(cfg, zerolog.Nop()).Startup(context.Background()))
}
