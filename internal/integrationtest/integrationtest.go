// Package integrationtest provides db helpers used in integration tests.
package integrationtest

import (
	"database/sql"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-ledger/cmd/httpserver"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/rs/zerolog"
)

// SetupServer returns test server that cleans up database after each integration test.
func SetupServer(t *testing.T) *httpserver.Server {
	config, err := configpkg.Load("../../configs")
	if err != nil {
		t.Fatalf(`configpkg.Load("../../configs") returned error: %v`, err)
	}

	zerolog.SetGlobalLevel(zerolog.FatalLevel)

	logger := middleware.CreateLogger(config)

	db := SetupDB(t, config.DBDriver, config.DBSource)

	gin.SetMode(gin.ReleaseMode)

	server, err := httpserver.New(db, logger, config)
	if err != nil {
		t.Fatalf(`httpserver.New(db, logger, config) returned error: %v`, err)
	}

	return server
}

// Flush flushes accounts, funds, sessions and users without touching the
// seeded roles and permissions.
func Flush(t *testing.T, db *sql.DB) {
	t.Helper()

	const query = `TRUNCATE TABLE incoming_funds, accounts, sessions, users CASCADE`

	if _, err := db.Exec(query); err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}
}

// SetupTX sets up a database transaction to be used in tests.
//
// Once the tests are done it will rollback the transaction.
func SetupTX(t *testing.T, driver, source string) *sql.Tx {
	t.Helper()

	db, err := dbpkg.Setup(driver, source)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("db.Begin() failed: %v", err)
	}

	t.Cleanup(func() {
		if err := tx.Rollback(); err != nil {
			t.Fatalf("tx.Rollback() failed: %v", err)
		}
		if err := db.Close(); err != nil {
			t.Fatalf("db.Close() failed: %v", err)
		}
	})

	return tx
}

// SetupDB sets up connection with database for testing and then cleans it.
func SetupDB(t *testing.T, driver, source string) *sql.DB {
	t.Helper()

	db, err := dbpkg.Setup(driver, source)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	t.Cleanup(func() {
		Flush(t, db)

		if err := db.Close(); err != nil {
			t.Fatalf("db cleanup failed. err: %v", err)
		}
	})

	return db
}
