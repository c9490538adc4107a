// Package postgres provides PostgreSQL implementations of the
// application's persistence interfaces.
package postgres
