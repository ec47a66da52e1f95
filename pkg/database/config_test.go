package database

import (
	"fmt"
	"testing"

	"resumebot-ai/internal/constants"
	"resumebot-ai/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeDatabaseConnectionIsIdempotent(t *testing.T) {
	cfg := DatabaseConfigModel{
		Driver: constants.DatabaseDriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}

	db, err := InitializeDatabaseConnection(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	again, err := InitializeDatabaseConnection(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(again) })

	for _, table := range []interface{}{&models.Conversation{}, &models.MessageRecord{}, &models.DocumentRevision{}} {
		assert.True(t, db.Migrator().HasTable(table))
	}
}

func TestDialectorForRejectsBadConfig(t *testing.T) {
	_, err := dialectorFor("oracle", "dsn")
	assert.Error(t, err)

	_, err = dialectorFor(constants.DatabaseDriverSQLite, " ")
	assert.Error(t, err)

	d, err := dialectorFor("POSTGRES", "postgres://localhost/db")
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())
}
