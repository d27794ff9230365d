// Package postgres implements the store interfaces on PostgreSQL using sqlx
// over the pgx driver, and owns the embedded goose migrations.
package postgres
