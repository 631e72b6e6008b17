package db

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

const sessionTTL = 30 * 24 * time.Hour

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         string    `json:"role"`
	Avatar       *string   `json:"avatar,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == "admin" || u.Role == "team_lead"
}

type UserPatch struct {
	Name   *string
	Email  *string
	Role   *string
	Avatar *string
}

// Users

const userColumns = "id, email, name, role, avatar, password_hash, created_at"

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.Avatar, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (d *DB) CreateUser(ctx context.Context, email, name, role, passwordHash string) (*User, error) {
	res, err := d.sql.ExecContext(ctx,
		"INSERT INTO users (email, name, role, password_hash) VALUES (?, ?, ?, ?)",
		strings.ToLower(email), name, role, passwordHash,
	)
	if isUniqueViolation(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, _ := res.LastInsertId()
	return d.UserByID(ctx, id)
}

func (d *DB) UserByID(ctx context.Context, id int64) (*User, error) {
	u, err := scanUser(d.sql.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (d *DB) UserByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(d.sql.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", strings.ToLower(email)))
	if err != nil {
		return nil, notFound(err)
	}
	return u, nil
}

func (d *DB) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := d.sql.QueryContext(ctx, "SELECT "+userColumns+" FROM users ORDER BY id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (d *DB) UpdateUser(ctx context.Context, id int64, p UserPatch) (*User, error) {
	u, err := d.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Email != nil {
		u.Email = strings.ToLower(*p.Email)
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Avatar != nil {
		u.Avatar = p.Avatar
	}

	_, err = d.sql.ExecContext(ctx,
		"UPDATE users SET name = ?, email = ?, role = ?, avatar = ? WHERE id = ?",
		u.Name, u.Email, u.Role, u.Avatar, id,
	)
	if isUniqueViolation(err) {
		return nil, ErrConflict
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return u, nil
}

// SyncAdmins makes sure every listed email has an admin account. Missing
// accounts are created with the given password hash and a name taken from the
// email's local part.
func (d *DB) SyncAdmins(ctx context.Context, emails []string, passwordHash string) (created []string, err error) {
	for _, email := range emails {
		email = strings.TrimSpace(strings.ToLower(email))
		if email == "" {
			continue
		}
		var exists bool
		if err := d.sql.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)", email).Scan(&exists); err != nil {
			return created, fmt.Errorf("check admin %s: %w", email, err)
		}
		if exists {
			if _, err := d.sql.ExecContext(ctx, "UPDATE users SET role = 'admin' WHERE email = ?", email); err != nil {
				return created, fmt.Errorf("promote admin %s: %w", email, err)
			}
			continue
		}
		name, _, _ := strings.Cut(email, "@")
		if _, err := d.CreateUser(ctx, email, name, "admin", passwordHash); err != nil {
			return created, fmt.Errorf("create admin %s: %w", email, err)
		}
		created = append(created, email)
	}
	return created, nil
}

// Sessions

func (d *DB) CreateSession(ctx context.Context, userID int64) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	expires := time.Now().Add(sessionTTL)

	_, err := d.sql.ExecContext(ctx,
		"INSERT INTO sessions (user_id, token, expires_at) VALUES (?, ?, ?)",
		userID, token, expires,
	)
	if err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return token, nil
}

func (d *DB) UserBySession(ctx context.Context, token string) (*User, error) {
	var userID int64
	var expiresAt time.Time
	err := d.sql.QueryRowContext(ctx,
		"SELECT user_id, expires_at FROM sessions WHERE token = ?", token,
	).Scan(&userID, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	if time.Now().After(expiresAt) {
		d.DeleteSession(ctx, token)
		return nil, ErrNotFound
	}
	return d.UserByID(ctx, userID)
}

func (d *DB) DeleteSession(ctx context.Context, token string) {
	d.sql.ExecContext(ctx, "DELETE FROM sessions WHERE token = ?", token)
}
