package docmind

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/docmind/agent"
	"github.com/poiesic/docmind/ai/mock"
	"github.com/poiesic/docmind/core"
	"github.com/poiesic/docmind/ingestion"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "db"), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		db := newTestDatabase(t)

		assert.NotNil(t, db.FileRepository())
		assert.NotNil(t, db.ChunkRepository())
		assert.NotNil(t, db.SessionRepository())
		assert.NotNil(t, db.MetricsRepository())
		assert.NotNil(t, db.BookingRepository())
		assert.NotNil(t, db.VectorStore())
		assert.NotNil(t, db.Provider())
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0644))

		db, err := NewDatabase(tmpFile, WithProvider(mock.NewMockProvider()))
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("in-memory storage", func(t *testing.T) {
		db, err := NewDatabase("", WithInMemoryStorage(), WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		require.NotNil(t, db)
		assert.NoError(t, db.Close())
	})
}

func TestDatabase_Close(t *testing.T) {
	db, err := NewDatabase(t.TempDir(), WithProvider(mock.NewMockProvider()))
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}

func TestDatabase_FactoryMethods(t *testing.T) {
	db := newTestDatabase(t)

	t.Run("can create ingestion pipeline", func(t *testing.T) {
		pipeline, err := db.NewIngestionPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("can create session memory", func(t *testing.T) {
		sessions := db.NewSessionMemory()
		require.NotNil(t, sessions)
	})

	t.Run("can create agent", func(t *testing.T) {
		eng, err := db.NewAgent(nil)
		require.NoError(t, err)
		require.NotNil(t, eng)
	})
}

func TestDatabase_EndToEnd(t *testing.T) {
	db := newTestDatabase(t)
	ctx := context.Background()

	pipeline, err := db.NewIngestionPipeline(ingestion.WithPoolSize(2))
	require.NoError(t, err)
	defer pipeline.Release()

	record, err := pipeline.Ingest(ctx, "faq.txt",
		"Our refund policy allows returns within 14 days of purchase.\n\n"+
			"Shipping takes three to five business days.", nil)
	require.NoError(t, err)
	require.Equal(t, core.FileStatusCompleted, record.Status)

	eng, err := db.NewAgent(nil)
	require.NoError(t, err)

	resp, err := eng.Query(ctx, agent.QueryRequest{Query: "what is the refund policy?"})
	require.NoError(t, err)
	assert.False(t, resp.Degraded)
	assert.Contains(t, resp.Answer, "14 days")
	assert.NotEmpty(t, resp.Sources)
}
