package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/kidandcat/tracker/internal/db"
)

// MaxPasswordLen is the longest password bcrypt accepts.
const MaxPasswordLen = 72

type ctxKey struct{}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

func WithUser(ctx context.Context, u *db.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// CurrentUser returns the user the auth middleware attached to the request,
// or nil.
func CurrentUser(r *http.Request) *db.User {
	u, _ := r.Context().Value(ctxKey{}).(*db.User)
	return u
}

// Lookup resolves the request's bearer token without requiring one.
func Lookup(r *http.Request, d *db.DB) *db.User {
	token := BearerToken(r)
	if token == "" {
		return nil
	}
	u, err := d.UserBySession(r.Context(), token)
	if err != nil {
		return nil
	}
	return u
}

func Logout(r *http.Request, d *db.DB) {
	if token := BearerToken(r); token != "" {
		d.DeleteSession(r.Context(), token)
	}
}

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
