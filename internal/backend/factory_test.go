package backend

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

func TestCreateMemoryBackend(t *testing.T) {
	f := NewFactory(log.Nop())
	res, err := f.CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: t.TempDir()})
	require.NoError(t, err)
	assert.NotNil(t, res.Store)
	assert.Nil(t, res.Cleanup)
}

func TestCreateSQLiteBackend(t *testing.T) {
	f := NewFactory(nil)
	res, err := f.CreateBackend(context.Background(), Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "fintrack.db"),
	})
	require.NoError(t, err)
	require.NotNil(t, res.Cleanup)
	defer res.Cleanup()
	_, ok := res.Store.(*storage.SQLRepository)
	assert.True(t, ok)
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	f := NewFactory(nil)
	cases := []Config{
		{Type: "mongo"},
		{Type: SQLiteBackend},
		{Type: PostgresBackend},
		{Type: SheetsBackend, GoogleIncomeSheet: "Income", GoogleExpensesSheet: "Expenses"},
	}
	for _, c := range cases {
		_, err := f.CreateBackend(context.Background(), c)
		assert.Error(t, err, "type %s", c.Type)
	}
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	cfg := &config.Config{DataBackend: "postgres", PostgresDSN: "postgres://localhost/fintrack", DataDirectory: "seed"}
	bc, err := FromAppConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, PostgresBackend, bc.Type)
	assert.Equal(t, "postgres://localhost/fintrack", bc.PostgresDSN)
	assert.Equal(t, "seed", bc.DataDirectory)

	_, err = FromAppConfig(&config.Config{DataBackend: "csv"})
	assert.Error(t, err)
}

func TestGetBackendTypeStrings(t *testing.T) {
	assert.Equal(t, []string{"memory", "sqlite", "postgres", "sheets"}, GetBackendTypeStrings())
}
