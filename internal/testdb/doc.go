//go:build integration

// Package testdb provides helpers for tests that run against a real
// PostgreSQL database.
//
// Tests run inside a transaction that is rolled back when the test
// finishes, so they can use t.Parallel() without interfering with each
// other:
//
//	func TestSomething(t *testing.T) {
//	    t.Parallel()
//	    db := testdb.GetTestDBWithT(t)
//
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sqlx.Tx) {
//	        users := postgres.NewPostgresUserStore(tx, 4, logger)
//	        ...
//	    })
//	}
//
// The database URL is read from PREP_TEST_DATABASE_URL, falling back to
// DATABASE_URL. Tests are skipped when neither is set. Migrations are
// applied once per test binary.
package testdb
