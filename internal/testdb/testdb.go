// AngelaMos | 2026
// testdb.go

// Package testdb opens a migrated, empty Postgres database for
// integration tests. Tests are skipped unless STACKIT_TEST_DATABASE_URL
// is set.
package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/stackit/internal/config"
	"github.com/carterperez-dev/stackit/internal/core"
)

const (
	EnvURL = "STACKIT_TEST_DATABASE_URL"

	// lockKey serializes integration tests across packages, which go test
	// runs as concurrent processes against the same database.
	lockKey = 7270001
)

func Open(t *testing.T) *sqlx.DB {
	t.Helper()

	url := os.Getenv(EnvURL)
	if url == "" {
		t.Skipf("%s not set", EnvURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := core.NewDatabase(ctx, config.DatabaseConfig{
		URL:             url,
		MaxOpenConns:    8,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
		ConnMaxIdleTime: time.Minute,
	})
	require.NoError(t, err)

	lock, err := db.DB.Conn(ctx)
	require.NoError(t, err)
	_, err = lock.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, lockKey)
	require.NoError(t, err)

	t.Cleanup(func() {
		//nolint:errcheck // test teardown
		_, _ = lock.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, lockKey)
		_ = lock.Close() //nolint:errcheck // test teardown
		_ = db.Close()   //nolint:errcheck // test teardown
	})

	require.NoError(t, core.Migrate(ctx, db.DB))

	_, err = db.DB.ExecContext(ctx, `
		TRUNCATE notifications, question_views, votes, answers, questions, users CASCADE`)
	require.NoError(t, err)

	return db.DB
}

// CreateUser inserts an active user and returns its id.
func CreateUser(t *testing.T, db *sqlx.DB, name string) string {
	t.Helper()

	id := core.NewID()
	_, err := db.ExecContext(context.Background(), `
		INSERT INTO users (id, external_id, email, first_name)
		VALUES ($1, $2, $3, $4)`,
		id, "ext-"+id, fmt.Sprintf("%s-%s@example.com", name, id[:8]), name)
	require.NoError(t, err)

	return id
}

// CreateQuestion inserts an active question and returns its id.
func CreateQuestion(t *testing.T, db *sqlx.DB, authorID, title string, tags ...string) string {
	t.Helper()

	id := core.NewID()
	_, err := db.ExecContext(context.Background(), `
		INSERT INTO questions (id, title, body, tags, author_id)
		VALUES ($1, $2, $3, $4, $5)`,
		id, title, "Body of "+title, core.StringList(tags), authorID)
	require.NoError(t, err)

	return id
}

// CreateAnswer inserts an active answer and returns its id.
func CreateAnswer(t *testing.T, db *sqlx.DB, questionID, authorID string) string {
	t.Helper()

	id := core.NewID()
	_, err := db.ExecContext(context.Background(), `
		INSERT INTO answers (id, question_id, author_id, body)
		VALUES ($1, $2, $3, $4)`,
		id, questionID, authorID, "A sufficiently long answer body")
	require.NoError(t, err)

	return id
}

// Exec runs a statement and fails the test on error.
func Exec(t *testing.T, db *sqlx.DB, query string, args ...any) sql.Result {
	t.Helper()

	res, err := db.ExecContext(context.Background(), query, args...)
	require.NoError(t, err)
	return res
}
