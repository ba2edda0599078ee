package queries

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const userColumns = `user_id, email, password_hash, display_name, auth_provider, created_at, last_login_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(
		&u.UserID,
		&u.Email,
		&u.PasswordHash,
		&u.DisplayName,
		&u.AuthProvider,
		&u.CreatedAt,
		&u.LastLoginAt,
	)
	return u, err
}

const createUser = `
INSERT INTO users (email, password_hash, display_name, auth_provider)
VALUES ($1, $2, $3, $4)
RETURNING ` + userColumns

type CreateUserParams struct {
	Email        pgtype.Text
	PasswordHash pgtype.Text
	DisplayName  string
	AuthProvider string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser, arg.Email, arg.PasswordHash, arg.DisplayName, arg.AuthProvider)
	return scanUser(row)
}

const getUserByEmail = `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`

func (q *Queries) GetUserByEmail(ctx context.Context, email pgtype.Text) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByEmail, email))
}

const getUserByID = `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

func (q *Queries) GetUserByID(ctx context.Context, userID pgtype.UUID) (User, error) {
	return scanUser(q.db.QueryRow(ctx, getUserByID, userID))
}

const updateUserLogin = `UPDATE users SET last_login_at = now() WHERE user_id = $1`

func (q *Queries) UpdateUserLogin(ctx context.Context, userID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, updateUserLogin, userID)
	return err
}

const updateUserPassword = `UPDATE users SET password_hash = $2 WHERE user_id = $1`

type UpdateUserPasswordParams struct {
	UserID       pgtype.UUID
	PasswordHash pgtype.Text
}

func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.Exec(ctx, updateUserPassword, arg.UserID, arg.PasswordHash)
	return err
}
