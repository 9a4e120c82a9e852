// Package store provides read access to the users row store.
package store

import (
	"context"

	"github.com/ashureev/taskpilot/internal/domain"
)

// ListUsersQuery is the one statement issued against the users table.
const ListUsersQuery = `SELECT * FROM users`

// Repository defines the interface for reading user data.
type Repository interface {
	// ListUsers returns every row of the users table, in store order.
	ListUsers(ctx context.Context) ([]domain.UserRecord, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
