package database

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestConfigNewOpensSQLite(t *testing.T) {
	cfg := Config{DSN: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), MaxOpenConns: 1, ConnMaxIdle: 60}

	db, err := cfg.New()
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, sqlDB.Ping())
	require.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	require.Equal(t, 1, one)
}

func TestMustNewPanicsOnBadDSN(t *testing.T) {
	cfg := Config{DSN: "file:/nonexistent-dir/sub/clubs.db?mode=ro"}
	require.Panics(t, func() { cfg.MustNew() })
}
