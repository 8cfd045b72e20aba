package database

import (
	"context"
	"log"
)

// User is the row model for the users table.
type User struct {
	ID    int    `db:"id"`
	Name  string `db:"name"`
	Email string `db:"email"`
}

// CreateTable creates the users table if it doesn't exist
func (db *DB) CreateTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			name VARCHAR(100),
			email VARCHAR(100)
		)
	`
	_, err := db.ExecContext(ctx, query)
	return err
}

// InsertUsers inserts sample users using named queries
func (db *DB) InsertUsers(ctx context.Context) error {
	users := []User{
		{Name: "Alice", Email: "alice@example.com"},
		{Name: "Bob", Email: "bob@example.com"},
		{Name: "Charlie", Email: "charlie@example.com"},
	}

	for _, user := range users {
		_, err := db.NamedExecContext(ctx,
			"INSERT INTO users (name, email) VALUES (:name, :email) ON CONFLICT DO NOTHING",
			user,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// QueryUsers selects users with struct scanning
func (db *DB) QueryUsers(ctx context.Context) error {
	var users []User
	err := db.SelectContext(ctx, &users, "SELECT id, name, email FROM users LIMIT 10")
	if err != nil {
		return err
	}

	log.Printf("Queried %d users", len(users))
	return nil
}

// GetUser fetches a single user by name
func (db *DB) GetUser(ctx context.Context, name string) (*User, error) {
	var user User
	err := db.GetContext(ctx, &user,
		"SELECT id, name, email FROM users WHERE name = $1 LIMIT 1", name)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// InsertWithTransaction demonstrates commit and rollback spans
func (db *DB) InsertWithTransaction(ctx context.Context) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	_, err = tx.NamedExecContext(ctx,
		"INSERT INTO users (name, email) VALUES (:name, :email) ON CONFLICT DO NOTHING",
		User{Name: "Dave", Email: "dave@example.com"},
	)
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}
